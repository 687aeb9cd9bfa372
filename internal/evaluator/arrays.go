package evaluator

import "github.com/esvm-go/esvm/internal/runtime"

// arraySlotsHelper aliases runtime.ArraySlots, the slot attached to
// runtime.Obj.Arr. The evaluator's push/elements vocabulary lives in the
// free functions below rather than in internal/runtime, which needs no
// array-builtin semantics (runtime.ArraySlots is an empty marker struct;
// the operations only manipulate exported Obj/propertyMap surface).
type arraySlotsHelper = runtime.ArraySlots

func (e *Evaluator) newArray(realm *runtime.Realm, items []runtime.Value) *runtime.Obj {
	proto := realm.Intrinsic("%Array.prototype%")
	o := runtime.NewOrdinaryObject(proto)
	o.Kind = runtime.KindArray
	o.Arr = &runtime.ArraySlots{}
	o.DefineOwnProperty(runtime.StringKey("length"), runtime.NewDataDescriptor(runtime.Number(0), true, false, false))
	for _, it := range items {
		pushArray(o, it)
	}
	return o
}

// pushArray defines v at index length of arr. It is a free function
// rather than a method on runtime.ArraySlots because Go methods must live
// in the defining package, which an alias such as arraySlotsHelper does
// not change.
func pushArray(arr *runtime.Obj, v runtime.Value) {
	lengthVal := arr.Get(runtime.StringKey("length"))
	n, _ := lengthVal.(runtime.Number)
	idx := int(n)
	arr.DefineOwnProperty(runtime.StringKey(itoa(idx)), runtime.NewDataDescriptor(v, true, true, true))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	buf := [12]byte{}
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func arrayLength(arr *runtime.Obj) int {
	n, _ := arr.Get(runtime.StringKey("length")).(runtime.Number)
	return int(n)
}

func arrayAt(arr *runtime.Obj, i int) runtime.Value {
	return arr.Get(runtime.StringKey(itoa(i)))
}

// iterableToSlice collects an iterable's values eagerly into a Go slice.
// A faithful engine drives @@iterator lazily (needed for infinite
// generators used with `break`); this evaluator supports the common
// finite cases directly (arrays, strings) and
// falls back to draining any object exposing a @@iterator method that
// returns {value, done} result objects, bounding the drain so a buggy
// infinite iterator cannot hang evaluation forever.
func (e *Evaluator) iterableToSlice(ctx *runtime.ExecutionContext, v runtime.Value) ([]runtime.Value, runtime.Completion) {
	switch vv := v.(type) {
	case runtime.String:
		out := make([]runtime.Value, 0, vv.Len())
		for _, u := range vv {
			out = append(out, runtime.String([]uint16{u}))
		}
		return out, runtime.NormalCompletion(nil)
	case *runtime.Obj:
		if vv.Kind == runtime.KindArray {
			n := arrayLength(vv)
			out := make([]runtime.Value, n)
			for i := 0; i < n; i++ {
				out[i] = arrayAt(vv, i)
			}
			return out, runtime.NormalCompletion(nil)
		}
		iterFn, ok := vv.Get(runtime.SymbolKey(runtime.SymIterator)).(*runtime.Obj)
		if ok && iterFn.IsCallable() {
			iter := iterFn.Fn.Call(vv, nil).Value
			iterObj, ok := iter.(*runtime.Obj)
			if !ok {
				return nil, e.throwTypeError("iterator result is not an object")
			}
			nextFn, ok := iterObj.Get(runtime.StringKey("next")).(*runtime.Obj)
			if !ok || !nextFn.IsCallable() {
				return nil, e.throwTypeError("iterator has no next method")
			}
			var out []runtime.Value
			const maxIterations = 1 << 20
			for i := 0; i < maxIterations; i++ {
				res := nextFn.Fn.Call(iterObj, nil).Value
				resObj, ok := res.(*runtime.Obj)
				if !ok {
					return nil, e.throwTypeError("iterator result is not an object")
				}
				if runtime.ToBoolean(resObj.Get(runtime.StringKey("done"))) {
					return out, runtime.NormalCompletion(nil)
				}
				out = append(out, resObj.Get(runtime.StringKey("value")))
			}
			return nil, e.throwRangeError("iterator did not terminate within the evaluator's iteration bound")
		}
	}
	return nil, e.throwTypeError("value is not iterable")
}
