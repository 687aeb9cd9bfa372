package builtins

import (
	"github.com/esvm-go/esvm/internal/plugin"
	"github.com/esvm-go/esvm/internal/runtime"
)

// CorePlugin builds %Object.prototype% and %Function.prototype% (every
// other intrinsic's prototype chain eventually reaches these two) plus
// the Object and Function constructors.
// internal/realm.Build special-cases "core" as the plugin every other
// plugin depends on, so it must run first and create these two intrinsics
// before any other CreateIntrinsics hook touches realm.Intrinsic(...).
func CorePlugin() plugin.Plugin {
	return plugin.Plugin{
		ID:                       "core",
		CreateIntrinsics:         createCoreIntrinsics,
		SetDefaultGlobalBindings: setCoreGlobalBindings,
	}
}

func createCoreIntrinsics(realm *runtime.Realm, globals *plugin.Globals) error {
	objProto := runtime.NewOrdinaryObject(nil)
	realm.Intrinsics["%Object.prototype%"] = objProto

	fnProto := runtime.NewOrdinaryObject(objProto)
	fnProto.Kind = runtime.KindFunction
	fnProto.Fn = &runtime.FunctionSlots{Name: "", Length: 0, Call: func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return undef()
	}}
	realm.Intrinsics["%Function.prototype%"] = fnProto

	installObjectPrototypeMethods(realm, objProto)
	installFunctionPrototypeMethods(realm, fnProto)

	objectCtor := newConstructor(realm, "Object", 1, objProto,
		func(this runtime.Value, args []runtime.Value) runtime.Completion {
			return objectConstruct(realm, args)
		},
		func(args []runtime.Value, newTarget *runtime.Obj) runtime.Completion {
			return objectConstruct(realm, args)
		},
	)
	installObjectStatics(realm, objectCtor, objProto)
	realm.Intrinsics["%Object%"] = objectCtor

	functionCtor := newConstructor(realm, "Function", 1, fnProto,
		func(this runtime.Value, args []runtime.Value) runtime.Completion {
			return throwType(realm, "Function constructor requires a host-supplied parser; this runtime only evaluates pre-built ASTs")
		},
		func(args []runtime.Value, newTarget *runtime.Obj) runtime.Completion {
			return throwType(realm, "Function constructor requires a host-supplied parser; this runtime only evaluates pre-built ASTs")
		},
	)
	realm.Intrinsics["%Function%"] = functionCtor

	globals.Stage("Object", runtime.NewDataDescriptor(objectCtor, true, false, true))
	globals.Stage("Function", runtime.NewDataDescriptor(functionCtor, true, false, true))
	globals.Stage("undefined", runtime.NewDataDescriptor(runtime.Undefined{}, false, false, false))
	globals.Stage("NaN", runtime.NewDataDescriptor(runtime.Number(nan()), false, false, false))
	globals.Stage("Infinity", runtime.NewDataDescriptor(runtime.Number(inf()), false, false, false))
	return nil
}

func setCoreGlobalBindings(realm *runtime.Realm, globals *plugin.Globals) {
	// Nothing beyond what CreateIntrinsics already staged; core has no
	// bindings that depend on another plugin's intrinsics.
}

func objectConstruct(realm *runtime.Realm, args []runtime.Value) runtime.Completion {
	v := argAt(args, 0)
	switch v.(type) {
	case runtime.Undefined, runtime.Null, nil:
		return ok(runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%")))
	}
	if o := runtime.ToObject(realm, v); o != nil {
		return ok(o)
	}
	return ok(runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%")))
}

func installObjectPrototypeMethods(realm *runtime.Realm, proto *runtime.Obj) {
	method(realm, proto, "hasOwnProperty", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, c := asObject(realm, this, "hasOwnProperty")
		if o == nil {
			o = runtime.ToObject(realm, this)
			if o == nil {
				return c
			}
		}
		key := runtime.ToPropertyKey(argAt(args, 0))
		return ok(runtime.Boolean(o.GetOwnProperty(key) != nil))
	})
	method(realm, proto, "isPrototypeOf", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		other, isObj := argAt(args, 0).(*runtime.Obj)
		if !isObj {
			return ok(runtime.Boolean(false))
		}
		self, isObj2 := this.(*runtime.Obj)
		if !isObj2 {
			return ok(runtime.Boolean(false))
		}
		p := other.GetPrototypeOf()
		for p != nil {
			if p == self {
				return ok(runtime.Boolean(true))
			}
			p = p.GetPrototypeOf()
		}
		return ok(runtime.Boolean(false))
	})
	method(realm, proto, "propertyIsEnumerable", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o := runtime.ToObject(realm, this)
		if o == nil {
			return ok(runtime.Boolean(false))
		}
		desc := o.GetOwnProperty(runtime.ToPropertyKey(argAt(args, 0)))
		if desc == nil {
			return ok(runtime.Boolean(false))
		}
		return ok(runtime.Boolean(desc.Enumerable != nil && *desc.Enumerable))
	})
	method(realm, proto, "toString", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		tag := "Object"
		if o, isObj := this.(*runtime.Obj); isObj {
			if s, hasTag := o.Get(runtime.SymbolKey(runtime.SymToStringTag)).(runtime.String); hasTag {
				tag = s.String()
			} else if o.IsCallable() {
				tag = "Function"
			} else if o.Kind == runtime.KindArray {
				tag = "Array"
			} else if o.Kind == runtime.KindError {
				tag = "Error"
			}
		}
		switch this.(type) {
		case runtime.Undefined:
			return ok(runtime.NewStringFromGo("[object Undefined]"))
		case runtime.Null:
			return ok(runtime.NewStringFromGo("[object Null]"))
		}
		return ok(runtime.NewStringFromGo("[object " + tag + "]"))
	})
	method(realm, proto, "valueOf", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return ok(runtime.ToObject(realm, this))
	})
}

func installFunctionPrototypeMethods(realm *runtime.Realm, proto *runtime.Obj) {
	method(realm, proto, "call", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		fn, isFn := this.(*runtime.Obj)
		if !isFn || !fn.IsCallable() {
			return throwType(realm, "call invoked on non-callable")
		}
		thisArg := argAt(args, 0)
		rest := []runtime.Value{}
		if len(args) > 1 {
			rest = args[1:]
		}
		return fn.Fn.Call(thisArg, rest)
	})
	method(realm, proto, "apply", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		fn, isFn := this.(*runtime.Obj)
		if !isFn || !fn.IsCallable() {
			return throwType(realm, "apply invoked on non-callable")
		}
		thisArg := argAt(args, 0)
		argList := argAt(args, 1)
		switch v := argList.(type) {
		case runtime.Undefined, runtime.Null:
			return fn.Fn.Call(thisArg, nil)
		case *runtime.Obj:
			n := arrLen(v)
			callArgs := make([]runtime.Value, n)
			for i := 0; i < n; i++ {
				callArgs[i] = arrAt(v, i)
			}
			return fn.Fn.Call(thisArg, callArgs)
		}
		return throwType(realm, "CreateListFromArrayLike called on non-object")
	})
	method(realm, proto, "bind", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		target, isFn := this.(*runtime.Obj)
		if !isFn || !target.IsCallable() {
			return throwType(realm, "bind invoked on non-callable")
		}
		boundThis := argAt(args, 0)
		boundArgs := append([]runtime.Value{}, argsTail(args, 1)...)
		bound := runtime.NewOrdinaryObject(realm.Intrinsic("%Function.prototype%"))
		bound.Kind = runtime.KindBoundFunction
		bound.Bound = &runtime.BoundSlots{Target: target, This: boundThis, Args: boundArgs}
		bound.Fn = &runtime.FunctionSlots{
			Name:   "bound " + target.Fn.Name,
			Length: maxInt(0, target.Fn.Length-len(boundArgs)),
			Call: func(_ runtime.Value, callArgs []runtime.Value) runtime.Completion {
				return target.Fn.Call(boundThis, append(append([]runtime.Value{}, boundArgs...), callArgs...))
			},
		}
		if target.IsConstructor() {
			bound.Fn.Construct = func(callArgs []runtime.Value, newTarget *runtime.Obj) runtime.Completion {
				return target.Fn.Construct(append(append([]runtime.Value{}, boundArgs...), callArgs...), newTarget)
			}
		}
		return ok(bound)
	})
	method(realm, proto, "toString", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		fn, isFn := this.(*runtime.Obj)
		if !isFn || fn.Fn == nil {
			return throwType(realm, "toString invoked on non-function")
		}
		return ok(runtime.NewStringFromGo("function " + fn.Fn.Name + "() { [native code] }"))
	})
	symbolMethod(realm, proto, runtime.SymHasInstance, "[Symbol.hasInstance]", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		ctor, isFn := this.(*runtime.Obj)
		if !isFn {
			return ok(runtime.Boolean(false))
		}
		target, isObj := argAt(args, 0).(*runtime.Obj)
		if !isObj {
			return ok(runtime.Boolean(false))
		}
		protoVal := ctor.Get(runtime.StringKey("prototype"))
		protoObj, isProto := protoVal.(*runtime.Obj)
		if !isProto {
			return throwType(realm, "prototype is not an object")
		}
		p := target.GetPrototypeOf()
		for p != nil {
			if p == protoObj {
				return ok(runtime.Boolean(true))
			}
			p = p.GetPrototypeOf()
		}
		return ok(runtime.Boolean(false))
	})
}

func installObjectStatics(realm *runtime.Realm, ctor, objProto *runtime.Obj) {
	staticMethod(realm, ctor, "keys", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o := runtime.ToObject(realm, argAt(args, 0))
		if o == nil {
			return throwType(realm, "Object.keys called on null or undefined")
		}
		return ok(newArrayObj(realm, enumerableOwnStringKeys(o)))
	})
	staticMethod(realm, ctor, "values", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o := runtime.ToObject(realm, argAt(args, 0))
		if o == nil {
			return throwType(realm, "Object.values called on null or undefined")
		}
		keys := enumerableOwnStringKeys(o)
		vals := make([]runtime.Value, len(keys))
		for i, k := range keys {
			vals[i] = o.Get(runtime.StringKey(k.String()))
		}
		return ok(newArrayObj(realm, vals))
	})
	staticMethod(realm, ctor, "entries", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o := runtime.ToObject(realm, argAt(args, 0))
		if o == nil {
			return throwType(realm, "Object.entries called on null or undefined")
		}
		keys := enumerableOwnStringKeys(o)
		pairs := make([]runtime.Value, len(keys))
		for i, k := range keys {
			pairs[i] = newArrayObj(realm, []runtime.Value{k, o.Get(runtime.StringKey(k.String()))})
		}
		return ok(newArrayObj(realm, pairs))
	})
	staticMethod(realm, ctor, "assign", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		target := runtime.ToObject(realm, argAt(args, 0))
		if target == nil {
			return throwType(realm, "Object.assign target cannot be null or undefined")
		}
		for _, src := range argsTail(args, 1) {
			srcObj := runtime.ToObject(realm, src)
			if srcObj == nil {
				continue
			}
			for _, k := range enumerableOwnStringKeys(srcObj) {
				target.Set(runtime.StringKey(k.String()), srcObj.Get(runtime.StringKey(k.String())), target)
			}
		}
		return ok(target)
	})
	staticMethod(realm, ctor, "freeze", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, isObj := argAt(args, 0).(*runtime.Obj)
		if !isObj {
			return ok(argAt(args, 0))
		}
		o.PreventExtensions()
		for _, k := range o.OwnPropertyKeys() {
			d := o.GetOwnProperty(k)
			nd := d.Clone()
			if nd.IsDataDescriptor() {
				f := false
				nd.Writable = &f
			}
			f := false
			nd.Configurable = &f
			o.DefineOwnProperty(k, nd)
		}
		return ok(o)
	})
	staticMethod(realm, ctor, "isFrozen", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, isObj := argAt(args, 0).(*runtime.Obj)
		if !isObj {
			return ok(runtime.Boolean(true))
		}
		if o.IsExtensible() {
			return ok(runtime.Boolean(false))
		}
		for _, k := range o.OwnPropertyKeys() {
			d := o.GetOwnProperty(k)
			if d.Configurable != nil && *d.Configurable {
				return ok(runtime.Boolean(false))
			}
			if d.IsDataDescriptor() && d.Writable != nil && *d.Writable {
				return ok(runtime.Boolean(false))
			}
		}
		return ok(runtime.Boolean(true))
	})
	staticMethod(realm, ctor, "create", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		var proto *runtime.Obj
		switch p := argAt(args, 0).(type) {
		case *runtime.Obj:
			proto = p
		case runtime.Null:
		default:
			return throwType(realm, "Object prototype may only be an Object or null")
		}
		o := runtime.NewOrdinaryObject(proto)
		if props, isObj := argAt(args, 1).(*runtime.Obj); isObj {
			for _, k := range enumerableOwnStringKeys(props) {
				desc := runtime.NewDataDescriptor(props.Get(runtime.StringKey(k.String())), true, true, true)
				o.DefineOwnProperty(k, desc)
			}
		}
		return ok(o)
	})
	staticMethod(realm, ctor, "getPrototypeOf", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o := runtime.ToObject(realm, argAt(args, 0))
		if o == nil {
			return throwType(realm, "Object.getPrototypeOf called on null or undefined")
		}
		if p := o.GetPrototypeOf(); p != nil {
			return ok(p)
		}
		return ok(runtime.Null{})
	})
	staticMethod(realm, ctor, "setPrototypeOf", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, isObj := argAt(args, 0).(*runtime.Obj)
		if !isObj {
			return ok(argAt(args, 0))
		}
		var proto *runtime.Obj
		switch p := argAt(args, 1).(type) {
		case *runtime.Obj:
			proto = p
		case runtime.Null:
		default:
			return throwType(realm, "Object prototype may only be an Object or null")
		}
		if !o.SetPrototypeOf(proto) {
			return throwType(realm, "#<Object> is not extensible")
		}
		return ok(o)
	})
	staticMethod(realm, ctor, "defineProperty", 3, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, isObj := argAt(args, 0).(*runtime.Obj)
		if !isObj {
			return throwType(realm, "Object.defineProperty called on non-object")
		}
		key := runtime.ToPropertyKey(argAt(args, 1))
		desc, c := toPropertyDescriptor(realm, argAt(args, 2))
		if desc == nil {
			return c
		}
		if !o.DefineOwnProperty(key, desc) {
			return throwType(realm, "Cannot redefine property: "+key.String())
		}
		return ok(o)
	})
	staticMethod(realm, ctor, "getOwnPropertyNames", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o := runtime.ToObject(realm, argAt(args, 0))
		if o == nil {
			return throwType(realm, "Object.getOwnPropertyNames called on null or undefined")
		}
		var keys []runtime.Value
		for _, k := range o.OwnPropertyKeys() {
			if !k.IsSym {
				keys = append(keys, runtime.NewStringFromGo(k.Str))
			}
		}
		return ok(newArrayObj(realm, keys))
	})
	staticMethod(realm, ctor, "getOwnPropertyDescriptor", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o := runtime.ToObject(realm, argAt(args, 0))
		if o == nil {
			return throwType(realm, "Object.getOwnPropertyDescriptor called on null or undefined")
		}
		d := o.GetOwnProperty(runtime.ToPropertyKey(argAt(args, 1)))
		if d == nil {
			return ok(runtime.Undefined{})
		}
		return ok(fromPropertyDescriptor(realm, d))
	})
	staticMethod(realm, ctor, "is", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return ok(runtime.Boolean(runtime.SameValue(argAt(args, 0), argAt(args, 1))))
	})
}

// enumerableOwnStringKeys implements spec's EnumerableOwnPropertyNames for
// the "key" kind, in array-index-then-insertion order.
func enumerableOwnStringKeys(o *runtime.Obj) []runtime.Value {
	var keys []runtime.Value
	for _, k := range o.OwnPropertyKeys() {
		if k.IsSym {
			continue
		}
		d := o.GetOwnProperty(k)
		if d != nil && d.Enumerable != nil && *d.Enumerable {
			keys = append(keys, runtime.NewStringFromGo(k.Str))
		}
	}
	return keys
}

func toPropertyDescriptor(realm *runtime.Realm, v runtime.Value) (*runtime.PropertyDescriptor, runtime.Completion) {
	o, isObj := v.(*runtime.Obj)
	if !isObj {
		return nil, throwType(realm, "Property description must be an object")
	}
	d := &runtime.PropertyDescriptor{}
	if o.HasProperty(runtime.StringKey("enumerable")) {
		b := runtime.ToBoolean(o.Get(runtime.StringKey("enumerable")))
		d.Enumerable = &b
	}
	if o.HasProperty(runtime.StringKey("configurable")) {
		b := runtime.ToBoolean(o.Get(runtime.StringKey("configurable")))
		d.Configurable = &b
	}
	if o.HasProperty(runtime.StringKey("value")) {
		d.Value = o.Get(runtime.StringKey("value"))
	}
	if o.HasProperty(runtime.StringKey("writable")) {
		b := runtime.ToBoolean(o.Get(runtime.StringKey("writable")))
		d.Writable = &b
	}
	if o.HasProperty(runtime.StringKey("get")) {
		d.Get = o.Get(runtime.StringKey("get"))
	}
	if o.HasProperty(runtime.StringKey("set")) {
		d.Set = o.Get(runtime.StringKey("set"))
	}
	if (d.Get != nil || d.Set != nil) && (d.Value != nil || d.Writable != nil) {
		return nil, throwType(realm, "Invalid property descriptor: cannot both specify accessors and a value or writable attribute")
	}
	return d, runtime.Completion{}
}

func fromPropertyDescriptor(realm *runtime.Realm, d *runtime.PropertyDescriptor) *runtime.Obj {
	o := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	if d.IsDataDescriptor() {
		o.DefineOwnProperty(runtime.StringKey("value"), runtime.NewDataDescriptor(d.Value, true, true, true))
		o.DefineOwnProperty(runtime.StringKey("writable"), runtime.NewDataDescriptor(runtime.Boolean(d.Writable != nil && *d.Writable), true, true, true))
	} else {
		get, set := runtime.Value(runtime.Undefined{}), runtime.Value(runtime.Undefined{})
		if d.Get != nil {
			get = d.Get
		}
		if d.Set != nil {
			set = d.Set
		}
		o.DefineOwnProperty(runtime.StringKey("get"), runtime.NewDataDescriptor(get, true, true, true))
		o.DefineOwnProperty(runtime.StringKey("set"), runtime.NewDataDescriptor(set, true, true, true))
	}
	o.DefineOwnProperty(runtime.StringKey("enumerable"), runtime.NewDataDescriptor(runtime.Boolean(d.Enumerable != nil && *d.Enumerable), true, true, true))
	o.DefineOwnProperty(runtime.StringKey("configurable"), runtime.NewDataDescriptor(runtime.Boolean(d.Configurable != nil && *d.Configurable), true, true, true))
	return o
}

func argsTail(args []runtime.Value, from int) []runtime.Value {
	if from >= len(args) {
		return nil
	}
	return args[from:]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
