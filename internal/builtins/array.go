package builtins

import (
	"sort"

	"github.com/esvm-go/esvm/internal/plugin"
	"github.com/esvm-go/esvm/internal/runtime"
)

// ArrayPlugin builds %Array.prototype% and the Array constructor. The
// small array helpers below duplicate internal/evaluator/arrays.go's
// (exotic array length writeback), since this package cannot reach the
// evaluator's unexported methods directly — the same tradeoff
// internal/runtime/conversion.go makes.
func ArrayPlugin() plugin.Plugin {
	return plugin.Plugin{
		ID:               "array",
		Depends:          []string{"core"},
		CreateIntrinsics: createArrayIntrinsics,
	}
}

func createArrayIntrinsics(realm *runtime.Realm, globals *plugin.Globals) error {
	proto := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	proto.Kind = runtime.KindArray
	proto.Arr = &runtime.ArraySlots{}
	proto.DefineOwnProperty(runtime.StringKey("length"), runtime.NewDataDescriptor(runtime.Number(0), true, false, false))
	realm.Intrinsics["%Array.prototype%"] = proto

	ctor := newConstructor(realm, "Array", 1, proto,
		func(this runtime.Value, args []runtime.Value) runtime.Completion { return arrayConstruct(realm, args) },
		func(args []runtime.Value, newTarget *runtime.Obj) runtime.Completion { return arrayConstruct(realm, args) },
	)
	staticMethod(realm, ctor, "isArray", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, isObj := argAt(args, 0).(*runtime.Obj)
		return ok(runtime.Boolean(isObj && o.Kind == runtime.KindArray))
	})
	staticMethod(realm, ctor, "of", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return ok(newArrayObj(realm, args))
	})
	staticMethod(realm, ctor, "from", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		items, c := iterableOrArrayLikeToSlice(realm, argAt(args, 0))
		if items == nil && c.IsAbrupt() {
			return c
		}
		if mapFn, isFn := argAt(args, 1).(*runtime.Obj); isFn && mapFn.IsCallable() {
			mapped := make([]runtime.Value, len(items))
			for i, v := range items {
				mapped[i] = mapFn.Fn.Call(argAt(args, 2), []runtime.Value{v, runtime.Number(i)}).Value
			}
			items = mapped
		}
		return ok(newArrayObj(realm, items))
	})
	realm.Intrinsics["%Array%"] = ctor
	globals.Stage("Array", runtime.NewDataDescriptor(ctor, true, false, true))

	installArrayPrototypeMethods(realm, proto)
	return nil
}

func arrayConstruct(realm *runtime.Realm, args []runtime.Value) runtime.Completion {
	if len(args) == 1 {
		if n, isNum := args[0].(runtime.Number); isNum {
			ln := int(n)
			if float64(ln) != float64(n) || ln < 0 {
				return throwRange(realm, "Invalid array length")
			}
			arr := newArrayObj(realm, nil)
			arr.DefineOwnProperty(runtime.StringKey("length"), runtime.NewDataDescriptor(runtime.Number(ln), true, false, false))
			return ok(arr)
		}
	}
	return ok(newArrayObj(realm, args))
}

func newArrayObj(realm *runtime.Realm, items []runtime.Value) *runtime.Obj {
	o := runtime.NewOrdinaryObject(realm.Intrinsic("%Array.prototype%"))
	o.Kind = runtime.KindArray
	o.Arr = &runtime.ArraySlots{}
	o.DefineOwnProperty(runtime.StringKey("length"), runtime.NewDataDescriptor(runtime.Number(0), true, false, false))
	for _, v := range items {
		arrPush(o, v)
	}
	return o
}

func arrLen(o *runtime.Obj) int {
	n, _ := o.Get(runtime.StringKey("length")).(runtime.Number)
	return int(n)
}

func arrAt(o *runtime.Obj, i int) runtime.Value {
	return o.Get(runtime.StringKey(indexKey(i)))
}

func arrSet(o *runtime.Obj, i int, v runtime.Value) {
	o.DefineOwnProperty(runtime.StringKey(indexKey(i)), runtime.NewDataDescriptor(v, true, true, true))
}

func arrPush(o *runtime.Obj, v runtime.Value) {
	arrSet(o, arrLen(o), v)
}

func indexKey(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [12]byte
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

func iterableOrArrayLikeToSlice(realm *runtime.Realm, v runtime.Value) ([]runtime.Value, runtime.Completion) {
	switch vv := v.(type) {
	case runtime.String:
		out := make([]runtime.Value, 0, vv.Len())
		for _, u := range vv {
			out = append(out, runtime.String([]uint16{u}))
		}
		return out, runtime.NormalCompletion(nil)
	case *runtime.Obj:
		if vv.Kind == runtime.KindArray {
			n := arrLen(vv)
			out := make([]runtime.Value, n)
			for i := 0; i < n; i++ {
				out[i] = arrAt(vv, i)
			}
			return out, runtime.NormalCompletion(nil)
		}
		if iterFn, isFn := vv.Get(runtime.SymbolKey(runtime.SymIterator)).(*runtime.Obj); isFn && iterFn.IsCallable() {
			return drainIterator(realm, vv, iterFn)
		}
		n := arrLen(vv)
		out := make([]runtime.Value, n)
		for i := 0; i < n; i++ {
			out[i] = vv.Get(runtime.StringKey(indexKey(i)))
		}
		return out, runtime.NormalCompletion(nil)
	}
	return nil, throwType(realm, "value is not iterable or array-like")
}

func drainIterator(realm *runtime.Realm, target *runtime.Obj, iterFn *runtime.Obj) ([]runtime.Value, runtime.Completion) {
	iter, isObj := iterFn.Fn.Call(target, nil).Value.(*runtime.Obj)
	if !isObj {
		return nil, throwType(realm, "iterator result is not an object")
	}
	nextFn, isFn := iter.Get(runtime.StringKey("next")).(*runtime.Obj)
	if !isFn || !nextFn.IsCallable() {
		return nil, throwType(realm, "iterator has no next method")
	}
	var out []runtime.Value
	const maxIterations = 1 << 20
	for i := 0; i < maxIterations; i++ {
		res, isObj := nextFn.Fn.Call(iter, nil).Value.(*runtime.Obj)
		if !isObj {
			return nil, throwType(realm, "iterator result is not an object")
		}
		if runtime.ToBoolean(res.Get(runtime.StringKey("done"))) {
			return out, runtime.NormalCompletion(nil)
		}
		out = append(out, res.Get(runtime.StringKey("value")))
	}
	return nil, throwRange(realm, "iterator did not terminate within the runtime's iteration bound")
}

func installArrayPrototypeMethods(realm *runtime.Realm, proto *runtime.Obj) {
	method(realm, proto, "push", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, c := asObject(realm, this, "push")
		if o == nil {
			return c
		}
		for _, v := range args {
			arrPush(o, v)
		}
		return ok(runtime.Number(arrLen(o)))
	})
	method(realm, proto, "pop", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, c := asObject(realm, this, "pop")
		if o == nil {
			return c
		}
		n := arrLen(o)
		if n == 0 {
			return undef()
		}
		v := arrAt(o, n-1)
		o.Delete(runtime.StringKey(indexKey(n - 1)))
		o.DefineOwnProperty(runtime.StringKey("length"), runtime.NewDataDescriptor(runtime.Number(n-1), true, false, false))
		return ok(v)
	})
	method(realm, proto, "shift", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, c := asObject(realm, this, "shift")
		if o == nil {
			return c
		}
		n := arrLen(o)
		if n == 0 {
			return undef()
		}
		first := arrAt(o, 0)
		for i := 1; i < n; i++ {
			arrSet(o, i-1, arrAt(o, i))
		}
		o.Delete(runtime.StringKey(indexKey(n - 1)))
		o.DefineOwnProperty(runtime.StringKey("length"), runtime.NewDataDescriptor(runtime.Number(n-1), true, false, false))
		return ok(first)
	})
	method(realm, proto, "unshift", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, c := asObject(realm, this, "unshift")
		if o == nil {
			return c
		}
		n := arrLen(o)
		shift := len(args)
		for i := n - 1; i >= 0; i-- {
			arrSet(o, i+shift, arrAt(o, i))
		}
		for i, v := range args {
			arrSet(o, i, v)
		}
		return ok(runtime.Number(n + shift))
	})
	method(realm, proto, "slice", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, c := asObject(realm, this, "slice")
		if o == nil {
			return c
		}
		n := arrLen(o)
		start := clampIndex(argAt(args, 0), n, 0)
		end := clampIndex(argAt(args, 1), n, n)
		if _, isUndef := argAt(args, 1).(runtime.Undefined); isUndef {
			end = n
		}
		var out []runtime.Value
		for i := start; i < end; i++ {
			out = append(out, arrAt(o, i))
		}
		return ok(newArrayObj(realm, out))
	})
	method(realm, proto, "splice", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, c := asObject(realm, this, "splice")
		if o == nil {
			return c
		}
		n := arrLen(o)
		start := clampIndex(argAt(args, 0), n, 0)
		deleteCount := n - start
		if len(args) > 1 {
			dc := int(runtime.ToNumber(args[1]))
			if dc < 0 {
				dc = 0
			}
			if dc > n-start {
				dc = n - start
			}
			deleteCount = dc
		}
		items := argsTail(args, 2)
		var removed []runtime.Value
		for i := 0; i < deleteCount; i++ {
			removed = append(removed, arrAt(o, start+i))
		}
		tail := make([]runtime.Value, 0, n-start-deleteCount)
		for i := start + deleteCount; i < n; i++ {
			tail = append(tail, arrAt(o, i))
		}
		idx := start
		for _, v := range items {
			arrSet(o, idx, v)
			idx++
		}
		for _, v := range tail {
			arrSet(o, idx, v)
			idx++
		}
		newLen := idx
		for i := newLen; i < n; i++ {
			o.Delete(runtime.StringKey(indexKey(i)))
		}
		o.DefineOwnProperty(runtime.StringKey("length"), runtime.NewDataDescriptor(runtime.Number(newLen), true, false, false))
		return ok(newArrayObj(realm, removed))
	})
	method(realm, proto, "concat", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, c := asObject(realm, this, "concat")
		if o == nil {
			return c
		}
		var out []runtime.Value
		n := arrLen(o)
		for i := 0; i < n; i++ {
			out = append(out, arrAt(o, i))
		}
		for _, a := range args {
			if ao, isObj := a.(*runtime.Obj); isObj && ao.Kind == runtime.KindArray {
				m := arrLen(ao)
				for i := 0; i < m; i++ {
					out = append(out, arrAt(ao, i))
				}
				continue
			}
			out = append(out, a)
		}
		return ok(newArrayObj(realm, out))
	})
	method(realm, proto, "join", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, c := asObject(realm, this, "join")
		if o == nil {
			return c
		}
		sep := ","
		if s, isStr := argAt(args, 0).(runtime.String); isStr {
			sep = s.String()
		} else if _, isUndef := argAt(args, 0).(runtime.Undefined); !isUndef && len(args) > 0 {
			sep = runtime.ToGoString(args[0])
		}
		n := arrLen(o)
		parts := make([]string, n)
		for i := 0; i < n; i++ {
			v := arrAt(o, i)
			switch v.(type) {
			case runtime.Undefined, runtime.Null, nil:
				parts[i] = ""
			default:
				parts[i] = runtime.ToGoString(v)
			}
		}
		return ok(runtime.NewStringFromGo(joinStrings(parts, sep)))
	})
	method(realm, proto, "reverse", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, c := asObject(realm, this, "reverse")
		if o == nil {
			return c
		}
		n := arrLen(o)
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			vi, vj := arrAt(o, i), arrAt(o, j)
			arrSet(o, i, vj)
			arrSet(o, j, vi)
		}
		return ok(o)
	})
	method(realm, proto, "indexOf", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, c := asObject(realm, this, "indexOf")
		if o == nil {
			return c
		}
		target := argAt(args, 0)
		n := arrLen(o)
		for i := 0; i < n; i++ {
			if runtime.SameValueZero(arrAt(o, i), target) {
				return ok(runtime.Number(i))
			}
		}
		return ok(runtime.Number(-1))
	})
	method(realm, proto, "includes", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, c := asObject(realm, this, "includes")
		if o == nil {
			return c
		}
		target := argAt(args, 0)
		n := arrLen(o)
		for i := 0; i < n; i++ {
			if runtime.SameValueZero(arrAt(o, i), target) {
				return ok(runtime.Boolean(true))
			}
		}
		return ok(runtime.Boolean(false))
	})
	method(realm, proto, "find", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return arrayIterateFor(realm, this, args, true)
	})
	method(realm, proto, "findIndex", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return arrayIterateFor(realm, this, args, false)
	})
	method(realm, proto, "forEach", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, c := asObject(realm, this, "forEach")
		if o == nil {
			return c
		}
		cb, isFn := argAt(args, 0).(*runtime.Obj)
		if !isFn || !cb.IsCallable() {
			return throwType(realm, "callback is not a function")
		}
		n := arrLen(o)
		for i := 0; i < n; i++ {
			if cc := cb.Fn.Call(argAt(args, 1), []runtime.Value{arrAt(o, i), runtime.Number(i), o}); cc.IsAbrupt() {
				return cc
			}
		}
		return undef()
	})
	method(realm, proto, "map", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, c := asObject(realm, this, "map")
		if o == nil {
			return c
		}
		cb, isFn := argAt(args, 0).(*runtime.Obj)
		if !isFn || !cb.IsCallable() {
			return throwType(realm, "callback is not a function")
		}
		n := arrLen(o)
		out := make([]runtime.Value, n)
		for i := 0; i < n; i++ {
			cc := cb.Fn.Call(argAt(args, 1), []runtime.Value{arrAt(o, i), runtime.Number(i), o})
			if cc.IsAbrupt() {
				return cc
			}
			out[i] = cc.Value
		}
		return ok(newArrayObj(realm, out))
	})
	method(realm, proto, "filter", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, c := asObject(realm, this, "filter")
		if o == nil {
			return c
		}
		cb, isFn := argAt(args, 0).(*runtime.Obj)
		if !isFn || !cb.IsCallable() {
			return throwType(realm, "callback is not a function")
		}
		n := arrLen(o)
		var out []runtime.Value
		for i := 0; i < n; i++ {
			v := arrAt(o, i)
			cc := cb.Fn.Call(argAt(args, 1), []runtime.Value{v, runtime.Number(i), o})
			if cc.IsAbrupt() {
				return cc
			}
			if runtime.ToBoolean(cc.Value) {
				out = append(out, v)
			}
		}
		return ok(newArrayObj(realm, out))
	})
	method(realm, proto, "reduce", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, c := asObject(realm, this, "reduce")
		if o == nil {
			return c
		}
		cb, isFn := argAt(args, 0).(*runtime.Obj)
		if !isFn || !cb.IsCallable() {
			return throwType(realm, "callback is not a function")
		}
		n := arrLen(o)
		i := 0
		var acc runtime.Value
		if len(args) > 1 {
			acc = args[1]
		} else {
			if n == 0 {
				return throwType(realm, "Reduce of empty array with no initial value")
			}
			acc = arrAt(o, 0)
			i = 1
		}
		for ; i < n; i++ {
			cc := cb.Fn.Call(runtime.Undefined{}, []runtime.Value{acc, arrAt(o, i), runtime.Number(i), o})
			if cc.IsAbrupt() {
				return cc
			}
			acc = cc.Value
		}
		return ok(acc)
	})
	method(realm, proto, "some", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, c := asObject(realm, this, "some")
		if o == nil {
			return c
		}
		cb, isFn := argAt(args, 0).(*runtime.Obj)
		if !isFn || !cb.IsCallable() {
			return throwType(realm, "callback is not a function")
		}
		n := arrLen(o)
		for i := 0; i < n; i++ {
			cc := cb.Fn.Call(argAt(args, 1), []runtime.Value{arrAt(o, i), runtime.Number(i), o})
			if cc.IsAbrupt() {
				return cc
			}
			if runtime.ToBoolean(cc.Value) {
				return ok(runtime.Boolean(true))
			}
		}
		return ok(runtime.Boolean(false))
	})
	method(realm, proto, "every", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, c := asObject(realm, this, "every")
		if o == nil {
			return c
		}
		cb, isFn := argAt(args, 0).(*runtime.Obj)
		if !isFn || !cb.IsCallable() {
			return throwType(realm, "callback is not a function")
		}
		n := arrLen(o)
		for i := 0; i < n; i++ {
			cc := cb.Fn.Call(argAt(args, 1), []runtime.Value{arrAt(o, i), runtime.Number(i), o})
			if cc.IsAbrupt() {
				return cc
			}
			if !runtime.ToBoolean(cc.Value) {
				return ok(runtime.Boolean(false))
			}
		}
		return ok(runtime.Boolean(true))
	})
	method(realm, proto, "sort", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, c := asObject(realm, this, "sort")
		if o == nil {
			return c
		}
		n := arrLen(o)
		vals := make([]runtime.Value, n)
		for i := 0; i < n; i++ {
			vals[i] = arrAt(o, i)
		}
		cmp, hasCmp := argAt(args, 0).(*runtime.Obj)
		var sortErr runtime.Completion
		sort.SliceStable(vals, func(i, j int) bool {
			if sortErr.IsAbrupt() {
				return false
			}
			if hasCmp && cmp.IsCallable() {
				cc := cmp.Fn.Call(runtime.Undefined{}, []runtime.Value{vals[i], vals[j]})
				if cc.IsAbrupt() {
					sortErr = cc
					return false
				}
				return runtime.ToNumber(cc.Value) < 0
			}
			return runtime.ToGoString(vals[i]) < runtime.ToGoString(vals[j])
		})
		if sortErr.IsAbrupt() {
			return sortErr
		}
		for i, v := range vals {
			arrSet(o, i, v)
		}
		return ok(o)
	})
	method(realm, proto, "toString", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, c := asObject(realm, this, "toString")
		if o == nil {
			return c
		}
		joinMethod, isFn := o.Get(runtime.StringKey("join")).(*runtime.Obj)
		if isFn && joinMethod.IsCallable() {
			return joinMethod.Fn.Call(o, nil)
		}
		return ok(runtime.NewStringFromGo("[object Array]"))
	})
	symbolMethod(realm, proto, runtime.SymIterator, "[Symbol.iterator]", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, c := asObject(realm, this, "[Symbol.iterator]")
		if o == nil {
			return c
		}
		return ok(newArrayIterator(realm, o))
	})
}

func arrayIterateFor(realm *runtime.Realm, this runtime.Value, args []runtime.Value, wantFind bool) runtime.Completion {
	o, c := asObject(realm, this, "find")
	if o == nil {
		return c
	}
	cb, isFn := argAt(args, 0).(*runtime.Obj)
	if !isFn || !cb.IsCallable() {
		return throwType(realm, "callback is not a function")
	}
	n := arrLen(o)
	for i := 0; i < n; i++ {
		v := arrAt(o, i)
		cc := cb.Fn.Call(argAt(args, 1), []runtime.Value{v, runtime.Number(i), o})
		if cc.IsAbrupt() {
			return cc
		}
		if runtime.ToBoolean(cc.Value) {
			if wantFind {
				return ok(v)
			}
			return ok(runtime.Number(i))
		}
	}
	if wantFind {
		return undef()
	}
	return ok(runtime.Number(-1))
}

// newArrayIterator builds a minimal %ArrayIteratorPrototype%-shaped
// object: a plain object carrying a
// closure-backed "next" method, good enough to drive for-of/spread/
// destructuring without a distinct per-kind iterator class hierarchy.
func newArrayIterator(realm *runtime.Realm, arr *runtime.Obj) *runtime.Obj {
	idx := 0
	iter := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	method(realm, iter, "next", 0, func(_ runtime.Value, _ []runtime.Value) runtime.Completion {
		res := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
		if idx >= arrLen(arr) {
			res.DefineOwnProperty(runtime.StringKey("done"), runtime.NewDataDescriptor(runtime.Boolean(true), true, true, true))
			res.DefineOwnProperty(runtime.StringKey("value"), runtime.NewDataDescriptor(runtime.Undefined{}, true, true, true))
			return ok(res)
		}
		v := arrAt(arr, idx)
		idx++
		res.DefineOwnProperty(runtime.StringKey("done"), runtime.NewDataDescriptor(runtime.Boolean(false), true, true, true))
		res.DefineOwnProperty(runtime.StringKey("value"), runtime.NewDataDescriptor(v, true, true, true))
		return ok(res)
	})
	symbolMethod(realm, iter, runtime.SymIterator, "[Symbol.iterator]", 0, func(this runtime.Value, _ []runtime.Value) runtime.Completion {
		return ok(this)
	})
	return iter
}

func clampIndex(v runtime.Value, length, dflt int) int {
	if _, isUndef := v.(runtime.Undefined); isUndef {
		return dflt
	}
	n := int(runtime.ToNumber(v))
	if n < 0 {
		n += length
		if n < 0 {
			n = 0
		}
	}
	if n > length {
		n = length
	}
	return n
}

func joinStrings(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}
