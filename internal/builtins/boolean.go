package builtins

import (
	"github.com/esvm-go/esvm/internal/plugin"
	"github.com/esvm-go/esvm/internal/runtime"
)

// BooleanPlugin builds %Boolean.prototype% and the Boolean constructor.
func BooleanPlugin() plugin.Plugin {
	return plugin.Plugin{
		ID:               "boolean",
		Depends:          []string{"core"},
		CreateIntrinsics: createBooleanIntrinsics,
	}
}

func createBooleanIntrinsics(realm *runtime.Realm, globals *plugin.Globals) error {
	proto := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	proto.HostData = runtime.Boolean(false)
	realm.Intrinsics["%Boolean.prototype%"] = proto

	ctor := newConstructor(realm, "Boolean", 1, proto,
		func(this runtime.Value, args []runtime.Value) runtime.Completion {
			return ok(runtime.Boolean(runtime.ToBoolean(argAt(args, 0))))
		},
		func(args []runtime.Value, newTarget *runtime.Obj) runtime.Completion {
			o := runtime.NewOrdinaryObject(proto)
			o.HostData = runtime.Boolean(runtime.ToBoolean(argAt(args, 0)))
			return ok(o)
		},
	)
	realm.Intrinsics["%Boolean%"] = ctor
	globals.Stage("Boolean", runtime.NewDataDescriptor(ctor, true, false, true))

	method(realm, proto, "toString", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		b, c := thisBooleanValue(realm, this)
		if c.IsAbrupt() {
			return c
		}
		return ok(runtime.NewStringFromGo(b.String()))
	})
	method(realm, proto, "valueOf", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		b, c := thisBooleanValue(realm, this)
		if c.IsAbrupt() {
			return c
		}
		return ok(b)
	})
	return nil
}

func thisBooleanValue(realm *runtime.Realm, this runtime.Value) (runtime.Boolean, runtime.Completion) {
	switch v := this.(type) {
	case runtime.Boolean:
		return v, runtime.Completion{}
	case *runtime.Obj:
		if b, isBool := v.HostData.(runtime.Boolean); isBool {
			return b, runtime.Completion{}
		}
	}
	return false, throwType(realm, "Boolean.prototype method called on incompatible receiver")
}
