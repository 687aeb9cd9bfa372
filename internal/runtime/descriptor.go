package runtime

// PropertyDescriptor is the two-shape record from ECMA-262: a data descriptor
// carries {Value, Writable}, an accessor descriptor carries {Get, Set}; both
// carry {Enumerable, Configurable}. Pointers (rather than bool) for the
// tri-state fields let DefineOwnProperty see "field absent" (nil) versus
// "field explicitly false/true" when applying a partial descriptor —
// ECMA-262 allows a descriptor passed to DefineOwnProperty to be partial.
type PropertyDescriptor struct {
	Value        Value
	Get          Value // a callable Value, or nil
	Set          Value // a callable Value, or nil
	Writable     *bool
	Enumerable   *bool
	Configurable *bool
}

func boolPtr(b bool) *bool { return &b }

// NewDataDescriptor builds a fully-populated data descriptor.
func NewDataDescriptor(value Value, writable, enumerable, configurable bool) *PropertyDescriptor {
	return &PropertyDescriptor{
		Value:        value,
		Writable:     boolPtr(writable),
		Enumerable:   boolPtr(enumerable),
		Configurable: boolPtr(configurable),
	}
}

// NewAccessorDescriptor builds a fully-populated accessor descriptor.
func NewAccessorDescriptor(get, set Value, enumerable, configurable bool) *PropertyDescriptor {
	return &PropertyDescriptor{
		Get:          get,
		Set:          set,
		Enumerable:   boolPtr(enumerable),
		Configurable: boolPtr(configurable),
	}
}

// IsDataDescriptor reports whether this descriptor has a Value/Writable
// field set.
func (d *PropertyDescriptor) IsDataDescriptor() bool {
	if d == nil {
		return false
	}
	return d.Value != nil || d.Writable != nil
}

// IsAccessorDescriptor reports whether this descriptor has a Get/Set field
// set.
func (d *PropertyDescriptor) IsAccessorDescriptor() bool {
	if d == nil {
		return false
	}
	return d.Get != nil || d.Set != nil
}

// IsGenericDescriptor reports whether the descriptor specifies neither a
// value/writable pair nor a get/set pair (only Enumerable/Configurable, or
// nothing at all).
func (d *PropertyDescriptor) IsGenericDescriptor() bool {
	return d != nil && !d.IsDataDescriptor() && !d.IsAccessorDescriptor()
}

func boolVal(p *bool) bool {
	return p != nil && *p
}

// Clone returns a shallow copy, used so ValidateAndApplyPropertyDescriptor
// can default missing incoming fields from `current` without mutating the
// caller's descriptor.
func (d *PropertyDescriptor) Clone() *PropertyDescriptor {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

// CompletePropertyDescriptor fills in defaults for absent fields the way
// FromPropertyDescriptor does for object-literal descriptors: Value ->
// undefined, Get/Set -> undefined, Writable/Enumerable/Configurable ->
// false, for whichever shape (data or accessor) the descriptor is missing
// fields for.
func CompletePropertyDescriptor(d *PropertyDescriptor) *PropertyDescriptor {
	c := d.Clone()
	if c == nil {
		c = &PropertyDescriptor{}
	}
	if !c.IsAccessorDescriptor() {
		if c.Value == nil {
			c.Value = Undefined{}
		}
		if c.Writable == nil {
			c.Writable = boolPtr(false)
		}
	} else {
		if c.Get == nil {
			c.Get = Undefined{}
		}
		if c.Set == nil {
			c.Set = Undefined{}
		}
	}
	if c.Enumerable == nil {
		c.Enumerable = boolPtr(false)
	}
	if c.Configurable == nil {
		c.Configurable = boolPtr(false)
	}
	return c
}
