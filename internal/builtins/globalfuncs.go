package builtins

import (
	"math"
	"strings"

	"github.com/esvm-go/esvm/internal/plugin"
	"github.com/esvm-go/esvm/internal/runtime"
)

// GlobalFunctionsPlugin stages the free-standing global functions that
// live directly on the global object (not reachable through any
// constructor): parseInt, parseFloat, isNaN, isFinite, plus globalThis
// itself once the global object exists.
func GlobalFunctionsPlugin() plugin.Plugin {
	return plugin.Plugin{
		ID:                       "globalfuncs",
		Depends:                  []string{"core"},
		SetDefaultGlobalBindings: setGlobalFunctionBindings,
	}
}

func setGlobalFunctionBindings(realm *runtime.Realm, globals *plugin.Globals) {
	stage := func(name string, length int, fn func(this runtime.Value, args []runtime.Value) runtime.Completion) {
		globals.Stage(name, runtime.NewDataDescriptor(nativeFn(realm, name, length, fn), true, false, true))
	}
	stage("parseInt", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		radix := 0
		if len(args) > 1 {
			radix = int(runtime.ToNumber(args[1]))
		}
		return ok(runtime.Number(parseIntLeading(strings.TrimSpace(runtime.ToGoString(argAt(args, 0))), radix)))
	})
	stage("parseFloat", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return ok(runtime.Number(parseFloatLeading(runtime.ToGoString(argAt(args, 0)))))
	})
	stage("isNaN", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return ok(runtime.Boolean(math.IsNaN(runtime.ToNumber(argAt(args, 0)))))
	})
	stage("isFinite", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		f := runtime.ToNumber(argAt(args, 0))
		return ok(runtime.Boolean(!math.IsNaN(f) && !math.IsInf(f, 0)))
	})
	globals.Stage("globalThis", runtime.NewDataDescriptor(realm.GlobalObj, true, false, true))
}
