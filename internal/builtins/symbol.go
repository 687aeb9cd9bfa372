package builtins

import (
	"github.com/esvm-go/esvm/internal/plugin"
	"github.com/esvm-go/esvm/internal/runtime"
)

// SymbolPlugin builds %Symbol.prototype%, the Symbol function (callable but
// not constructible, per spec) and the well-known symbol static properties
// (Symbol.iterator etc.), wiring runtime.SymIterator and friends onto the
// global Symbol object so script code can reference them.
func SymbolPlugin() plugin.Plugin {
	return plugin.Plugin{
		ID:               "symbol",
		Depends:          []string{"core"},
		CreateIntrinsics: createSymbolIntrinsics,
	}
}

var symbolRegistry = map[string]*runtime.Symbol{}

func createSymbolIntrinsics(realm *runtime.Realm, globals *plugin.Globals) error {
	proto := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	realm.Intrinsics["%Symbol.prototype%"] = proto

	ctor := newConstructor(realm, "Symbol", 0, proto,
		func(this runtime.Value, args []runtime.Value) runtime.Completion {
			desc := ""
			if len(args) > 0 {
				if _, isUndef := args[0].(runtime.Undefined); !isUndef {
					desc = runtime.ToGoString(args[0])
				}
			}
			return ok(runtime.NewSymbol(desc))
		},
		func(args []runtime.Value, newTarget *runtime.Obj) runtime.Completion {
			return throwType(realm, "Symbol is not a constructor")
		},
	)
	stageWellKnown := func(name string, sym *runtime.Symbol) {
		ctor.DefineOwnProperty(runtime.StringKey(name), runtime.NewDataDescriptor(sym, false, false, false))
	}
	stageWellKnown("iterator", runtime.SymIterator)
	stageWellKnown("asyncIterator", runtime.SymAsyncIterator)
	stageWellKnown("hasInstance", runtime.SymHasInstance)
	stageWellKnown("toPrimitive", runtime.SymToPrimitive)
	stageWellKnown("toStringTag", runtime.SymToStringTag)
	stageWellKnown("species", runtime.SymSpecies)

	staticMethod(realm, ctor, "for", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		key := runtime.ToGoString(argAt(args, 0))
		if s, found := symbolRegistry[key]; found {
			return ok(s)
		}
		s := runtime.NewSymbol(key)
		symbolRegistry[key] = s
		return ok(s)
	})

	realm.Intrinsics["%Symbol%"] = ctor
	globals.Stage("Symbol", runtime.NewDataDescriptor(ctor, true, false, true))

	method(realm, proto, "toString", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		s, isSym := this.(*runtime.Symbol)
		if !isSym {
			if o, isObj := this.(*runtime.Obj); isObj {
				s, isSym = o.HostData.(*runtime.Symbol)
			}
		}
		if !isSym {
			return throwType(realm, "Symbol.prototype.toString called on incompatible receiver")
		}
		return ok(runtime.NewStringFromGo(s.String()))
	})
	return nil
}
