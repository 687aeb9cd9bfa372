package runtime

import (
	"math"
	"testing"
)

func TestSameValueDistinguishesNaNAndSignedZero(t *testing.T) {
	if !SameValue(Number(math.NaN()), Number(math.NaN())) {
		t.Error("SameValue(NaN, NaN) should be true")
	}
	if SameValue(Number(0), Number(math.Copysign(0, -1))) {
		t.Error("SameValue(+0, -0) should be false")
	}
	if !SameValue(Number(0), Number(0)) {
		t.Error("SameValue(+0, +0) should be true")
	}
}

func TestSameValueZeroTreatsSignedZeroAsEqual(t *testing.T) {
	if !SameValueZero(Number(0), Number(math.Copysign(0, -1))) {
		t.Error("SameValueZero(+0, -0) should be true")
	}
	if !SameValueZero(Number(math.NaN()), Number(math.NaN())) {
		t.Error("SameValueZero(NaN, NaN) should be true")
	}
}

func TestSameValueComparesStringsByContent(t *testing.T) {
	if !SameValue(NewStringFromGo("abc"), NewStringFromGo("abc")) {
		t.Error("equal strings should compare SameValue-equal")
	}
	if SameValue(NewStringFromGo("abc"), NewStringFromGo("abd")) {
		t.Error("different strings should not compare SameValue-equal")
	}
}

func TestSameValueObjectsByIdentity(t *testing.T) {
	a := NewOrdinaryObject(nil)
	b := NewOrdinaryObject(nil)
	if SameValue(a, b) {
		t.Error("two distinct objects should not be SameValue-equal")
	}
	if !SameValue(a, a) {
		t.Error("an object should be SameValue-equal to itself")
	}
}

func TestToBoolean(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"undefined", Undefined{}, false},
		{"null", Null{}, false},
		{"zero", Number(0), false},
		{"nan", Number(math.NaN()), false},
		{"nonzero", Number(1), true},
		{"empty string", NewStringFromGo(""), false},
		{"nonempty string", NewStringFromGo("x"), true},
		{"object", NewOrdinaryObject(nil), true},
	}
	for _, tt := range tests {
		if got := ToBoolean(tt.v); got != tt.want {
			t.Errorf("ToBoolean(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
