package runtime

// This file holds the exotic-object internal-method overrides dispatched
// from object.go's essential methods. Keeping them out of object.go keeps
// the ordinary-object path (the common case) readable on its own.

// ---- Proxy exotic object (ECMA-262 "Proxy exotic object": every trap
// forwards to the handler when present, else to the target directly) ----

func (o *Obj) proxyInvariantPanicIfRevoked() bool {
	return o.Proxy == nil || o.Proxy.Target == nil
}

func (o *Obj) proxyTrap(name string) *Obj {
	if o.Proxy == nil || o.Proxy.Handler == nil {
		return nil
	}
	v := o.Proxy.Handler.Get(StringKey(name))
	fn, ok := v.(*Obj)
	if !ok || !fn.IsCallable() {
		return nil
	}
	return fn
}

func (o *Obj) proxyGetPrototypeOf() *Obj {
	if o.proxyInvariantPanicIfRevoked() {
		return nil
	}
	if trap := o.proxyTrap("getPrototypeOf"); trap != nil {
		res := trap.Fn.Call(o.Proxy.Handler, []Value{o.Proxy.Target}).Value
		if p, ok := res.(*Obj); ok {
			return p
		}
		return nil
	}
	return o.Proxy.Target.GetPrototypeOf()
}

func (o *Obj) proxySetPrototypeOf(proto *Obj) bool {
	if o.proxyInvariantPanicIfRevoked() {
		return false
	}
	if trap := o.proxyTrap("setPrototypeOf"); trap != nil {
		var protoVal Value = Null{}
		if proto != nil {
			protoVal = proto
		}
		res := trap.Fn.Call(o.Proxy.Handler, []Value{o.Proxy.Target, protoVal}).Value
		return ToBoolean(res)
	}
	return o.Proxy.Target.SetPrototypeOf(proto)
}

func (o *Obj) proxyIsExtensible() bool {
	if o.proxyInvariantPanicIfRevoked() {
		return false
	}
	if trap := o.proxyTrap("isExtensible"); trap != nil {
		return ToBoolean(trap.Fn.Call(o.Proxy.Handler, []Value{o.Proxy.Target}).Value)
	}
	return o.Proxy.Target.IsExtensible()
}

func (o *Obj) proxyPreventExtensions() bool {
	if o.proxyInvariantPanicIfRevoked() {
		return false
	}
	if trap := o.proxyTrap("preventExtensions"); trap != nil {
		return ToBoolean(trap.Fn.Call(o.Proxy.Handler, []Value{o.Proxy.Target}).Value)
	}
	return o.Proxy.Target.PreventExtensions()
}

func (o *Obj) proxyGetOwnProperty(key PropertyKey) *PropertyDescriptor {
	if o.proxyInvariantPanicIfRevoked() {
		return nil
	}
	if trap := o.proxyTrap("getOwnPropertyDescriptor"); trap != nil {
		res := trap.Fn.Call(o.Proxy.Handler, []Value{o.Proxy.Target, keyToValue(key)}).Value
		if res == nil {
			return nil
		}
		if _, isUndef := res.(Undefined); isUndef {
			return nil
		}
		descObj, ok := res.(*Obj)
		if !ok {
			return nil
		}
		return objectToPropertyDescriptor(descObj)
	}
	return o.Proxy.Target.GetOwnProperty(key)
}

func (o *Obj) proxyDefineOwnProperty(key PropertyKey, desc *PropertyDescriptor) bool {
	if o.proxyInvariantPanicIfRevoked() {
		return false
	}
	if trap := o.proxyTrap("defineProperty"); trap != nil {
		res := trap.Fn.Call(o.Proxy.Handler, []Value{o.Proxy.Target, keyToValue(key), propertyDescriptorToObject(o.Realm, desc)}).Value
		return ToBoolean(res)
	}
	return o.Proxy.Target.DefineOwnProperty(key, desc)
}

func (o *Obj) proxyHasProperty(key PropertyKey) bool {
	if o.proxyInvariantPanicIfRevoked() {
		return false
	}
	if trap := o.proxyTrap("has"); trap != nil {
		return ToBoolean(trap.Fn.Call(o.Proxy.Handler, []Value{o.Proxy.Target, keyToValue(key)}).Value)
	}
	return o.Proxy.Target.HasProperty(key)
}

func (o *Obj) proxyGet(key PropertyKey, receiver Value) Value {
	if o.proxyInvariantPanicIfRevoked() {
		return Undefined{}
	}
	if trap := o.proxyTrap("get"); trap != nil {
		return trap.Fn.Call(o.Proxy.Handler, []Value{o.Proxy.Target, keyToValue(key), receiver}).Value
	}
	return o.Proxy.Target.GetWithReceiver(key, receiver)
}

func (o *Obj) proxySet(key PropertyKey, value Value, receiver Value) bool {
	if o.proxyInvariantPanicIfRevoked() {
		return false
	}
	if trap := o.proxyTrap("set"); trap != nil {
		return ToBoolean(trap.Fn.Call(o.Proxy.Handler, []Value{o.Proxy.Target, keyToValue(key), value, receiver}).Value)
	}
	return o.Proxy.Target.Set(key, value, receiver)
}

func (o *Obj) proxyDelete(key PropertyKey) bool {
	if o.proxyInvariantPanicIfRevoked() {
		return false
	}
	if trap := o.proxyTrap("deleteProperty"); trap != nil {
		return ToBoolean(trap.Fn.Call(o.Proxy.Handler, []Value{o.Proxy.Target, keyToValue(key)}).Value)
	}
	return o.Proxy.Target.Delete(key)
}

func (o *Obj) proxyOwnPropertyKeys() []PropertyKey {
	if o.proxyInvariantPanicIfRevoked() {
		return nil
	}
	if trap := o.proxyTrap("ownKeys"); trap != nil {
		res := trap.Fn.Call(o.Proxy.Handler, []Value{o.Proxy.Target}).Value
		if arr, ok := res.(*Obj); ok && arr.Kind == KindArray {
			out := make([]PropertyKey, 0)
			for _, k := range arr.OwnPropertyKeys() {
				if _, isIdx := k.CanonicalNumericIndex(); !isIdx && k.Str != "length" {
					continue
				}
				v := arr.Get(k)
				switch vv := v.(type) {
				case String:
					out = append(out, StringKey(vv.String()))
				case *Symbol:
					out = append(out, SymbolKey(vv))
				}
			}
			return out
		}
	}
	return o.Proxy.Target.OwnPropertyKeys()
}

func keyToValue(key PropertyKey) Value {
	if key.IsSym {
		return key.Sym
	}
	return NewStringFromGo(key.Str)
}

// objectToPropertyDescriptor/propertyDescriptorToObject bridge a Proxy
// trap's plain-object descriptor representation and our internal
// *PropertyDescriptor; kept minimal (used only by the proxy traps, not the
// hot ordinary path).
func objectToPropertyDescriptor(o *Obj) *PropertyDescriptor {
	d := &PropertyDescriptor{}
	if o.HasProperty(StringKey("value")) {
		d.Value = o.Get(StringKey("value"))
	}
	if o.HasProperty(StringKey("get")) {
		d.Get = o.Get(StringKey("get"))
	}
	if o.HasProperty(StringKey("set")) {
		d.Set = o.Get(StringKey("set"))
	}
	if o.HasProperty(StringKey("writable")) {
		d.Writable = boolPtr(ToBoolean(o.Get(StringKey("writable"))))
	}
	if o.HasProperty(StringKey("enumerable")) {
		d.Enumerable = boolPtr(ToBoolean(o.Get(StringKey("enumerable"))))
	}
	if o.HasProperty(StringKey("configurable")) {
		d.Configurable = boolPtr(ToBoolean(o.Get(StringKey("configurable"))))
	}
	return d
}

func propertyDescriptorToObject(r *Realm, d *PropertyDescriptor) *Obj {
	var proto *Obj
	if r != nil {
		proto = r.Intrinsic("%Object.prototype%")
	}
	o := NewOrdinaryObject(proto)
	if d.Value != nil {
		o.DefineOwnProperty(StringKey("value"), NewDataDescriptor(d.Value, true, true, true))
	}
	if d.Get != nil {
		o.DefineOwnProperty(StringKey("get"), NewDataDescriptor(d.Get, true, true, true))
	}
	if d.Set != nil {
		o.DefineOwnProperty(StringKey("set"), NewDataDescriptor(d.Set, true, true, true))
	}
	if d.Writable != nil {
		o.DefineOwnProperty(StringKey("writable"), NewDataDescriptor(Boolean(*d.Writable), true, true, true))
	}
	if d.Enumerable != nil {
		o.DefineOwnProperty(StringKey("enumerable"), NewDataDescriptor(Boolean(*d.Enumerable), true, true, true))
	}
	if d.Configurable != nil {
		o.DefineOwnProperty(StringKey("configurable"), NewDataDescriptor(Boolean(*d.Configurable), true, true, true))
	}
	return o
}

// ---- String exotic object (ECMA-262: indexed own properties mirror the
// wrapped string's UTF-16 code units, non-configurable/non-writable) ----

func (o *Obj) stringExoticGetOwnProperty(key PropertyKey) *PropertyDescriptor {
	if o.Str == nil {
		return nil
	}
	idx, ok := key.CanonicalNumericIndex()
	if !ok || int(idx) >= len(o.Str.Data) {
		return nil
	}
	ch := String{o.Str.Data[idx]}
	return NewDataDescriptor(ch, false, true, false)
}

// stringExoticRejects reports whether defining key on a String exotic
// object must fail outright (an in-range index: the slot is fixed by the
// wrapped primitive and cannot be redefined).
func (o *Obj) stringExoticRejects(key PropertyKey, desc *PropertyDescriptor) bool {
	if o.Str == nil {
		return false
	}
	idx, ok := key.CanonicalNumericIndex()
	if !ok || int(idx) >= len(o.Str.Data) {
		return false
	}
	current := o.stringExoticGetOwnProperty(key)
	_, stillOk := ValidateAndApplyPropertyDescriptor(current, o.Extensible, desc)
	return !stillOk
}

// ---- mapped Arguments exotic object (ECMA-262: sloppy-mode arguments
// object indices alias the corresponding parameter binding) ----

func (o *Obj) argumentsGetOwnProperty(key PropertyKey) *PropertyDescriptor {
	if o.Args == nil || o.Args.ParameterMap == nil {
		return nil
	}
	idx, ok := key.CanonicalNumericIndex()
	if !ok {
		return nil
	}
	get, ok := o.Args.ParameterMap[idx]
	if !ok {
		return nil
	}
	val, _ := get()
	return NewDataDescriptor(val, true, true, true)
}

func (o *Obj) argumentsDefineOwnProperty(key PropertyKey, desc *PropertyDescriptor) bool {
	if o.Args == nil || o.Args.ParameterMap == nil {
		return o.ordinaryDefineOwnProperty(key, desc)
	}
	idx, isMapped := key.CanonicalNumericIndex()
	_, hasSetter := o.Args.ParameterMap[idx]
	if !isMapped || !hasSetter {
		return o.ordinaryDefineOwnProperty(key, desc)
	}
	if desc.Value != nil {
		_, setParam := o.Args.ParameterMap[idx]()
		if setParam != nil {
			setParam(desc.Value)
		}
	}
	if desc.Writable != nil && !*desc.Writable {
		delete(o.Args.ParameterMap, idx)
	}
	return o.ordinaryDefineOwnProperty(key, desc)
}

func (o *Obj) argumentsDelete(key PropertyKey) bool {
	ok := func() bool {
		desc := o.GetOwnProperty(key)
		if desc == nil {
			return true
		}
		if !boolVal(desc.Configurable) {
			return false
		}
		o.props.delete(key)
		return true
	}()
	if ok && o.Args != nil {
		if idx, isIdx := key.CanonicalNumericIndex(); isIdx {
			delete(o.Args.ParameterMap, idx)
		}
	}
	return ok
}

// ---- Array exotic object (ECMA-262: writing an index >= length grows
// length; writing length truncates/rejects per the array-length
// invariant) ----

func (o *Obj) arrayDefineOwnProperty(key PropertyKey, desc *PropertyDescriptor) bool {
	if key.Str == "length" && !key.IsSym {
		return o.arraySetLength(desc)
	}
	idx, ok := key.CanonicalNumericIndex()
	if !ok {
		return o.ordinaryDefineOwnProperty(key, desc)
	}
	lengthDesc, _ := o.props.get(StringKey("length"))
	oldLen := uint32(0)
	if lengthDesc != nil {
		if n, ok := lengthDesc.Value.(Number); ok {
			oldLen = uint32(n)
		}
	}
	if idx >= oldLen && lengthDesc != nil && !boolVal(lengthDesc.Writable) {
		return false
	}
	if !o.ordinaryDefineOwnProperty(key, desc) {
		return false
	}
	if idx >= oldLen && lengthDesc != nil {
		updated := lengthDesc.Clone()
		updated.Value = Number(idx + 1)
		o.props.set(StringKey("length"), updated)
	}
	return true
}

func (o *Obj) arraySetLength(desc *PropertyDescriptor) bool {
	if desc.Value == nil {
		return o.ordinaryDefineOwnProperty(StringKey("length"), desc)
	}
	newLen, ok := desc.Value.(Number)
	if !ok {
		return false
	}
	newLenU := uint32(newLen)
	if float64(newLenU) != float64(newLen) {
		return false // RangeError in the evaluator's ToUint32/array-length coercion
	}
	lengthDesc, _ := o.props.get(StringKey("length"))
	oldLen := uint32(0)
	if lengthDesc != nil {
		if n, ok := lengthDesc.Value.(Number); ok {
			oldLen = uint32(n)
		}
	}
	if newLenU >= oldLen {
		d := desc.Clone()
		d.Value = Number(newLenU)
		return o.ordinaryDefineOwnProperty(StringKey("length"), d)
	}
	if lengthDesc != nil && !boolVal(lengthDesc.Writable) {
		return false
	}
	for _, idx := range append([]uint32(nil), o.props.intKeys...) {
		if idx >= newLenU {
			if !o.Delete(StringKey(uint32ToString(idx))) {
				d := desc.Clone()
				d.Value = Number(idx + 1)
				o.ordinaryDefineOwnProperty(StringKey("length"), d)
				return false
			}
		}
	}
	d := desc.Clone()
	d.Value = Number(newLenU)
	return o.ordinaryDefineOwnProperty(StringKey("length"), d)
}
