package runtime

import (
	"math"
	"strconv"
	"strings"
)

// ToPrimitive implements enough of ECMA-262's ToPrimitive for built-ins that
// live outside internal/evaluator: try @@toPrimitive first (hint "default"),
// then valueOf, then toString, matching the order OrdinaryToPrimitive uses.
// internal/evaluator keeps its own copy for the hot binary-operator path;
// this one is the copy built-ins and internal/realm reach
// for, since they cannot import internal/evaluator without a cycle.
func ToPrimitive(v Value) Value {
	obj, ok := v.(*Obj)
	if !ok {
		return v
	}
	if exotic, ok := obj.Get(SymbolKey(SymToPrimitive)).(*Obj); ok && exotic.IsCallable() {
		r := exotic.Fn.Call(obj, []Value{NewStringFromGo("default")}).Value
		if _, isObj := r.(*Obj); !isObj && r != nil {
			return r
		}
	}
	if valueOf, ok := obj.Get(StringKey("valueOf")).(*Obj); ok && valueOf.IsCallable() {
		r := valueOf.Fn.Call(obj, nil).Value
		if _, isObj := r.(*Obj); !isObj && r != nil {
			return r
		}
	}
	if toString, ok := obj.Get(StringKey("toString")).(*Obj); ok && toString.IsCallable() {
		r := toString.Fn.Call(obj, nil).Value
		if _, isObj := r.(*Obj); !isObj && r != nil {
			return r
		}
	}
	return NewStringFromGo(obj.String())
}

// ToNumber implements ECMA-262's ToNumber.
func ToNumber(v Value) float64 {
	switch vv := ToPrimitive(v).(type) {
	case Number:
		return float64(vv)
	case Boolean:
		if vv {
			return 1
		}
		return 0
	case Undefined:
		return math.NaN()
	case Null:
		return 0
	case String:
		s := strings.TrimSpace(vv.String())
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

// ToInt32/ToUint32 implement ECMA-262's integer-clamping conversions used by
// bitwise operators and Array length coercion.
func ToInt32(v Value) int32 {
	f := ToNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	u := uint32(int64(f))
	return int32(u)
}

func ToUint32(v Value) uint32 {
	f := ToNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return uint32(int64(f))
}

// ToGoString implements ECMA-262's ToString, returning a plain Go string for
// callers (builtins, diagnostics) that do not need the UTF-16-precise
// runtime.String.
func ToGoString(v Value) string {
	switch vv := ToPrimitive(v).(type) {
	case String:
		return vv.String()
	default:
		if vv == nil {
			return ""
		}
		return vv.String()
	}
}

// ToStringValue is ToGoString wrapped back into a runtime.String, the shape
// most built-in string-returning methods want to hand back.
func ToStringValue(v Value) String {
	return NewStringFromGo(ToGoString(v))
}

// ToObject implements ECMA-262's ToObject for the primitive wrapper kinds,
// using realm's intrinsic prototypes; objects pass through unchanged.
// Undefined/Null have no object form and return nil (callers throw
// TypeError, since this package cannot synthesize a realm-specific error
// message on its own).
func ToObject(realm *Realm, v Value) *Obj {
	switch vv := v.(type) {
	case *Obj:
		return vv
	case String:
		o := NewOrdinaryObject(realm.Intrinsic("%String.prototype%"))
		o.Kind = KindStringWrap
		o.Str = &StringWrapSlots{Data: vv}
		o.DefineOwnProperty(StringKey("length"), NewDataDescriptor(Number(vv.Len()), false, false, false))
		return o
	case Number:
		o := NewOrdinaryObject(realm.Intrinsic("%Number.prototype%"))
		o.HostData = vv
		return o
	case Boolean:
		o := NewOrdinaryObject(realm.Intrinsic("%Boolean.prototype%"))
		o.HostData = vv
		return o
	case *Symbol:
		o := NewOrdinaryObject(realm.Intrinsic("%Symbol.prototype%"))
		o.HostData = vv
		return o
	case BigInt:
		o := NewOrdinaryObject(realm.Intrinsic("%BigInt.prototype%"))
		o.HostData = vv
		return o
	}
	return nil
}

// ToPropertyKey implements ECMA-262's ToPropertyKey: symbols become symbol
// keys, everything else is coerced through ToGoString.
func ToPropertyKey(v Value) PropertyKey {
	if s, ok := v.(*Symbol); ok {
		return SymbolKey(s)
	}
	return StringKey(ToGoString(v))
}

// IsCallableValue reports whether v is an object with a [[Call]] slot,
// the check built-ins repeat constantly when validating arguments.
func IsCallableValue(v Value) (*Obj, bool) {
	o, ok := v.(*Obj)
	if !ok || !o.IsCallable() {
		return nil, false
	}
	return o, true
}

// NumberToGoString renders a Number the way spec's Number::toString(10)
// does for the common (non-radix, non-exponential) case; internal/evaluator
// and built-in Number.prototype.toString both want this exact formatting.
func NumberToGoString(n float64) string {
	return Number(n).String()
}
