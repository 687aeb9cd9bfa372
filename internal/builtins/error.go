package builtins

import (
	"github.com/esvm-go/esvm/internal/plugin"
	"github.com/esvm-go/esvm/internal/runtime"
)

// errorSubtypes lists ECMA-262's NativeError kinds, each sharing
// %Error.prototype%'s method set through its own subclass prototype.
var errorSubtypes = []string{"TypeError", "RangeError", "ReferenceError", "SyntaxError", "URIError", "EvalError"}

// ErrorPlugin builds %Error.prototype%, the Error constructor, and the six
// NativeError subclasses every throw site in internal/evaluator and
// internal/runtime (via Realm.NewError) expects to find already linked by
// the time the evaluator runs.
func ErrorPlugin() plugin.Plugin {
	return plugin.Plugin{
		ID:               "error",
		Depends:          []string{"core"},
		CreateIntrinsics: createErrorIntrinsics,
	}
}

func createErrorIntrinsics(realm *runtime.Realm, globals *plugin.Globals) error {
	proto := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	proto.Kind = runtime.KindError
	proto.DefineOwnProperty(runtime.StringKey("name"), runtime.NewDataDescriptor(runtime.NewStringFromGo("Error"), true, false, true))
	proto.DefineOwnProperty(runtime.StringKey("message"), runtime.NewDataDescriptor(runtime.NewStringFromGo(""), true, false, true))
	method(realm, proto, "toString", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, c := asObject(realm, this, "Error.prototype.toString")
		if o == nil {
			return c
		}
		name := "Error"
		if n, isStr := o.Get(runtime.StringKey("name")).(runtime.String); isStr {
			name = n.String()
		}
		msg := ""
		if m, isStr := o.Get(runtime.StringKey("message")).(runtime.String); isStr {
			msg = m.String()
		}
		if msg == "" {
			return ok(runtime.NewStringFromGo(name))
		}
		if name == "" {
			return ok(runtime.NewStringFromGo(msg))
		}
		return ok(runtime.NewStringFromGo(name + ": " + msg))
	})
	realm.Intrinsics["%Error.prototype%"] = proto

	errorCtor := makeErrorConstructor(realm, "Error", proto)
	realm.Intrinsics["%Error%"] = errorCtor
	globals.Stage("Error", runtime.NewDataDescriptor(errorCtor, true, false, true))

	for _, kind := range errorSubtypes {
		subProto := runtime.NewOrdinaryObject(proto)
		subProto.Kind = runtime.KindError
		subProto.DefineOwnProperty(runtime.StringKey("name"), runtime.NewDataDescriptor(runtime.NewStringFromGo(kind), true, false, true))
		subProto.DefineOwnProperty(runtime.StringKey("message"), runtime.NewDataDescriptor(runtime.NewStringFromGo(""), true, false, true))
		realm.Intrinsics["%"+kind+".prototype%"] = subProto

		ctor := makeErrorConstructor(realm, kind, subProto)
		ctor.SetPrototypeOf(errorCtor)
		realm.Intrinsics["%"+kind+"%"] = ctor
		globals.Stage(kind, runtime.NewDataDescriptor(ctor, true, false, true))
	}

	aggProto := runtime.NewOrdinaryObject(proto)
	aggProto.Kind = runtime.KindError
	aggProto.DefineOwnProperty(runtime.StringKey("name"), runtime.NewDataDescriptor(runtime.NewStringFromGo("AggregateError"), true, false, true))
	aggProto.DefineOwnProperty(runtime.StringKey("message"), runtime.NewDataDescriptor(runtime.NewStringFromGo(""), true, false, true))
	realm.Intrinsics["%AggregateError.prototype%"] = aggProto
	aggCtor := newConstructor(realm, "AggregateError", 2, aggProto,
		func(this runtime.Value, args []runtime.Value) runtime.Completion {
			return makeAggregateError(realm, aggProto, args)
		},
		func(args []runtime.Value, newTarget *runtime.Obj) runtime.Completion {
			return makeAggregateError(realm, aggProto, args)
		},
	)
	aggCtor.SetPrototypeOf(errorCtor)
	realm.Intrinsics["%AggregateError%"] = aggCtor
	globals.Stage("AggregateError", runtime.NewDataDescriptor(aggCtor, true, false, true))
	return nil
}

func makeErrorConstructor(realm *runtime.Realm, name string, proto *runtime.Obj) *runtime.Obj {
	build := func(args []runtime.Value) runtime.Completion {
		o := runtime.NewOrdinaryObject(proto)
		o.Kind = runtime.KindError
		if len(args) > 0 {
			if _, isUndef := args[0].(runtime.Undefined); !isUndef {
				o.DefineOwnProperty(runtime.StringKey("message"), runtime.NewDataDescriptor(runtime.ToStringValue(args[0]), true, false, true))
			}
		}
		if opts, isObj := argAt(args, 1).(*runtime.Obj); isObj && opts.HasProperty(runtime.StringKey("cause")) {
			o.DefineOwnProperty(runtime.StringKey("cause"), runtime.NewDataDescriptor(opts.Get(runtime.StringKey("cause")), true, false, true))
		}
		return ok(o)
	}
	return newConstructor(realm, name, 1, proto,
		func(this runtime.Value, args []runtime.Value) runtime.Completion { return build(args) },
		func(args []runtime.Value, newTarget *runtime.Obj) runtime.Completion { return build(args) },
	)
}

func makeAggregateError(realm *runtime.Realm, proto *runtime.Obj, args []runtime.Value) runtime.Completion {
	o := runtime.NewOrdinaryObject(proto)
	o.Kind = runtime.KindError
	errs, c := iterableOrArrayLikeToSlice(realm, argAt(args, 0))
	if c.IsAbrupt() {
		return c
	}
	o.DefineOwnProperty(runtime.StringKey("errors"), runtime.NewDataDescriptor(newArrayObj(realm, errs), true, false, true))
	if len(args) > 1 {
		if _, isUndef := args[1].(runtime.Undefined); !isUndef {
			o.DefineOwnProperty(runtime.StringKey("message"), runtime.NewDataDescriptor(runtime.ToStringValue(args[1]), true, false, true))
		}
	}
	return ok(o)
}
