package runtime

import "testing"

func TestNewOrdinaryObjectDefaults(t *testing.T) {
	o := NewOrdinaryObject(nil)
	if o.Kind != KindOrdinary {
		t.Errorf("Kind = %v, want KindOrdinary", o.Kind)
	}
	if !o.Extensible {
		t.Error("a fresh object should be extensible")
	}
	if o.Prototype != nil {
		t.Error("NewOrdinaryObject(nil) should have no prototype")
	}
}

func TestDefineOwnPropertyThenGet(t *testing.T) {
	o := NewOrdinaryObject(nil)
	ok := o.DefineOwnProperty(StringKey("x"), NewDataDescriptor(Number(42), true, true, true))
	if !ok {
		t.Fatal("DefineOwnProperty() = false, want true on a fresh extensible object")
	}
	got := o.Get(StringKey("x"))
	n, isNum := got.(Number)
	if !isNum || n != 42 {
		t.Errorf("Get(\"x\") = %#v, want Number(42)", got)
	}
}

func TestGetMissingPropertyReturnsUndefined(t *testing.T) {
	o := NewOrdinaryObject(nil)
	got := o.Get(StringKey("missing"))
	if _, ok := got.(Undefined); !ok {
		t.Errorf("Get(\"missing\") = %#v, want Undefined", got)
	}
}

func TestGetWalksPrototypeChain(t *testing.T) {
	parent := NewOrdinaryObject(nil)
	parent.DefineOwnProperty(StringKey("inherited"), NewDataDescriptor(NewStringFromGo("from parent"), true, true, true))
	child := NewOrdinaryObject(parent)

	got := child.Get(StringKey("inherited"))
	s, ok := got.(String)
	if !ok || s.String() != "from parent" {
		t.Errorf("Get(\"inherited\") = %#v, want String(\"from parent\")", got)
	}
}

func TestHasPropertyChecksPrototypeChain(t *testing.T) {
	parent := NewOrdinaryObject(nil)
	parent.DefineOwnProperty(StringKey("x"), NewDataDescriptor(Number(1), true, true, true))
	child := NewOrdinaryObject(parent)

	if !child.HasProperty(StringKey("x")) {
		t.Error("HasProperty should see an inherited own property")
	}
	if child.HasProperty(StringKey("y")) {
		t.Error("HasProperty should not see a property nobody defines")
	}
}

func TestSetOnNonWritableDataPropertyFails(t *testing.T) {
	o := NewOrdinaryObject(nil)
	o.DefineOwnProperty(StringKey("frozen"), NewDataDescriptor(Number(1), false, true, true))

	ok := o.Set(StringKey("frozen"), Number(2), o)
	if ok {
		t.Error("Set() on a non-writable property should return false")
	}
	n, _ := o.Get(StringKey("frozen")).(Number)
	if n != 1 {
		t.Errorf("value changed to %v despite non-writable property", n)
	}
}

func TestSetCreatesOwnPropertyWhenNoneExistsAnywhere(t *testing.T) {
	o := NewOrdinaryObject(nil)
	ok := o.Set(StringKey("fresh"), NewStringFromGo("hi"), o)
	if !ok {
		t.Fatal("Set() on a never-before-seen key should succeed")
	}
	got := o.Get(StringKey("fresh"))
	s, ok := got.(String)
	if !ok || s.String() != "hi" {
		t.Errorf("Get(\"fresh\") = %#v, want String(\"hi\")", got)
	}
}

func TestDeleteConfigurableProperty(t *testing.T) {
	o := NewOrdinaryObject(nil)
	o.DefineOwnProperty(StringKey("x"), NewDataDescriptor(Number(1), true, true, true))
	if !o.Delete(StringKey("x")) {
		t.Fatal("Delete() of a configurable property should succeed")
	}
	if o.HasProperty(StringKey("x")) {
		t.Error("deleted property should no longer be present")
	}
}

func TestDeleteNonConfigurablePropertyFails(t *testing.T) {
	o := NewOrdinaryObject(nil)
	o.DefineOwnProperty(StringKey("x"), NewDataDescriptor(Number(1), true, true, false))
	if o.Delete(StringKey("x")) {
		t.Error("Delete() of a non-configurable property should fail")
	}
	if !o.HasProperty(StringKey("x")) {
		t.Error("non-configurable property should still be present after a failed delete")
	}
}

func TestDeleteAbsentPropertyReportsSuccess(t *testing.T) {
	o := NewOrdinaryObject(nil)
	if !o.Delete(StringKey("never-there")) {
		t.Error("Delete() of an absent key should report success per spec")
	}
}

func TestDefineOwnPropertyRejectsWhenNotExtensible(t *testing.T) {
	o := NewOrdinaryObject(nil)
	o.PreventExtensions()
	ok := o.DefineOwnProperty(StringKey("x"), NewDataDescriptor(Number(1), true, true, true))
	if ok {
		t.Error("DefineOwnProperty of a new key on a non-extensible object should fail")
	}
}

func TestSetPrototypeOfRejectsCycle(t *testing.T) {
	a := NewOrdinaryObject(nil)
	b := NewOrdinaryObject(a)
	if a.SetPrototypeOf(b) {
		t.Error("SetPrototypeOf should reject a prototype chain cycle")
	}
}

func TestSetPrototypeOfRejectsWhenNotExtensible(t *testing.T) {
	a := NewOrdinaryObject(nil)
	other := NewOrdinaryObject(nil)
	a.PreventExtensions()
	if a.SetPrototypeOf(other) {
		t.Error("SetPrototypeOf on a non-extensible object should fail")
	}
}

func TestIsCallableAndIsConstructor(t *testing.T) {
	plain := NewOrdinaryObject(nil)
	if plain.IsCallable() || plain.IsConstructor() {
		t.Error("a plain ordinary object should be neither callable nor a constructor")
	}

	fn := NewOrdinaryObject(nil)
	fn.Kind = KindFunction
	fn.Fn = &FunctionSlots{
		Call: func(this Value, args []Value) Completion { return NormalCompletion(Undefined{}) },
	}
	if !fn.IsCallable() {
		t.Error("a function with Fn.Call set should be callable")
	}
	if fn.IsConstructor() {
		t.Error("a function with no Fn.Construct should not be a constructor")
	}
}

func TestOwnPropertyKeysReflectsDefinedProperties(t *testing.T) {
	o := NewOrdinaryObject(nil)
	o.DefineOwnProperty(StringKey("a"), NewDataDescriptor(Number(1), true, true, true))
	o.DefineOwnProperty(StringKey("b"), NewDataDescriptor(Number(2), true, true, true))

	keys := o.OwnPropertyKeys()
	if len(keys) != 2 {
		t.Fatalf("OwnPropertyKeys() returned %d keys, want 2", len(keys))
	}
}

func TestGetOwnPropertyReturnsIndependentCopy(t *testing.T) {
	o := NewOrdinaryObject(nil)
	o.DefineOwnProperty(StringKey("x"), NewDataDescriptor(Number(1), true, true, true))

	d := o.GetOwnProperty(StringKey("x"))
	d.Value = Number(999)

	got := o.Get(StringKey("x"))
	n, _ := got.(Number)
	if n != 1 {
		t.Errorf("mutating a GetOwnProperty() result leaked into the object's storage, got %v", n)
	}
}

func TestCanonicalNumericIndex(t *testing.T) {
	tests := []struct {
		key     string
		wantIdx uint32
		wantOk  bool
	}{
		{"0", 0, true},
		{"1", 1, true},
		{"42", 42, true},
		{"01", 0, false},
		{"-1", 0, false},
		{"", 0, false},
		{"x", 0, false},
	}
	for _, tt := range tests {
		idx, ok := StringKey(tt.key).CanonicalNumericIndex()
		if ok != tt.wantOk || (ok && idx != tt.wantIdx) {
			t.Errorf("CanonicalNumericIndex(%q) = (%d, %v), want (%d, %v)", tt.key, idx, ok, tt.wantIdx, tt.wantOk)
		}
	}
}
