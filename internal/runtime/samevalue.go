package runtime

import "math"

// SameValue implements the spec's SameValue algorithm (used by
// Object.is, property-descriptor reconfiguration checks, and
// [[SetPrototypeOf]]): like ===, except NaN equals NaN and +0 does not
// equal -0.
func SameValue(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case Undefined, Null:
		return true
	case Boolean:
		bv, ok := b.(Boolean)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		if !ok {
			return false
		}
		if math.IsNaN(float64(av)) && math.IsNaN(float64(bv)) {
			return true
		}
		if float64(av) == 0 && float64(bv) == 0 {
			return av.IsNegZero() == bv.IsNegZero()
		}
		return av == bv
	case BigInt:
		bv, ok := b.(BigInt)
		return ok && av.V.Cmp(bv.V) == 0
	case String:
		bv, ok := b.(String)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case *Symbol:
		bv, ok := b.(*Symbol)
		return ok && av == bv
	case *Obj:
		bv, ok := b.(*Obj)
		return ok && av == bv
	}
	return a == b
}

// SameValueZero is SameValue except +0 and -0 compare equal; used by
// Array.prototype.includes, Map/Set key equality, and elsewhere the spec
// calls for it explicitly.
func SameValueZero(a, b Value) bool {
	if an, ok := a.(Number); ok {
		if bn, ok := b.(Number); ok {
			if math.IsNaN(float64(an)) && math.IsNaN(float64(bn)) {
				return true
			}
			return float64(an) == float64(bn)
		}
		return false
	}
	return SameValue(a, b)
}

// ToBoolean implements the spec's ToBoolean abstract operation for
// primitive and object values (objects are always truthy).
func ToBoolean(v Value) bool {
	switch t := v.(type) {
	case Undefined, Null:
		return false
	case Boolean:
		return bool(t)
	case Number:
		f := float64(t)
		return f != 0 && !math.IsNaN(f)
	case BigInt:
		return t.V.Sign() != 0
	case String:
		return len(t) > 0
	default:
		return true
	}
}
