package builtins

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/esvm-go/esvm/internal/plugin"
	"github.com/esvm-go/esvm/internal/runtime"
)

// regexpData is the native slot backing a RegExp object: the compiled
// regexp2.Regexp (dlclark/regexp2 rather than the standard library,
// because it supports JS-only constructs RE2 cannot: backreferences and
// lookaround) plus the source/flags pair needed for .source/.flags and
// re-serialization.
type regexpData struct {
	re     *regexp2.Regexp
	source string
	flags  string
}

// RegExpPlugin builds the RegExp constructor and %RegExp.prototype%.
func RegExpPlugin() plugin.Plugin {
	return plugin.Plugin{
		ID:               "regexp",
		Depends:          []string{"core"},
		CreateIntrinsics: createRegExpIntrinsics,
	}
}

func createRegExpIntrinsics(realm *runtime.Realm, globals *plugin.Globals) error {
	proto := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	realm.Intrinsics["%RegExp.prototype%"] = proto

	ctor := newConstructor(realm, "RegExp", 2, proto,
		func(this runtime.Value, args []runtime.Value) runtime.Completion {
			return regexpConstruct(realm, proto, args)
		},
		func(args []runtime.Value, newTarget *runtime.Obj) runtime.Completion {
			return regexpConstruct(realm, proto, args)
		},
	)
	realm.Intrinsics["%RegExp%"] = ctor
	globals.Stage("RegExp", runtime.NewDataDescriptor(ctor, true, false, true))

	installRegExpPrototypeMethods(realm, proto)
	return nil
}

func regexpConstruct(realm *runtime.Realm, proto *runtime.Obj, args []runtime.Value) runtime.Completion {
	source, flags := "", ""
	switch v := argAt(args, 0).(type) {
	case *runtime.Obj:
		if d, isRe := v.HostData.(*regexpData); isRe {
			source, flags = d.source, d.flags
		} else {
			source = runtime.ToGoString(v)
		}
	case runtime.Undefined:
		source = ""
	default:
		source = runtime.ToGoString(v)
	}
	if len(args) > 1 {
		if _, isUndef := args[1].(runtime.Undefined); !isUndef {
			flags = runtime.ToGoString(args[1])
		}
	}
	opts := regexp2.None
	if strings.Contains(flags, "i") {
		opts |= regexp2.IgnoreCase
	}
	if strings.Contains(flags, "s") {
		opts |= regexp2.Singleline
	}
	if strings.Contains(flags, "m") {
		opts |= regexp2.Multiline
	}
	re, err := regexp2.Compile(source, opts)
	if err != nil {
		return throwType(realm, "Invalid regular expression: "+err.Error())
	}
	o := runtime.NewOrdinaryObject(proto)
	o.HostData = &regexpData{re: re, source: source, flags: flags}
	o.DefineOwnProperty(runtime.StringKey("lastIndex"), runtime.NewDataDescriptor(runtime.Number(0), true, false, false))
	o.DefineOwnProperty(runtime.StringKey("source"), runtime.NewDataDescriptor(runtime.NewStringFromGo(source), false, false, false))
	o.DefineOwnProperty(runtime.StringKey("flags"), runtime.NewDataDescriptor(runtime.NewStringFromGo(flags), false, false, false))
	o.DefineOwnProperty(runtime.StringKey("global"), runtime.NewDataDescriptor(runtime.Boolean(strings.Contains(flags, "g")), false, false, false))
	return ok(o)
}

func thisRegExpData(realm *runtime.Realm, this runtime.Value, who string) (*runtime.Obj, *regexpData, runtime.Completion) {
	o, isObj := this.(*runtime.Obj)
	if !isObj {
		return nil, nil, throwType(realm, who+" called on non-object")
	}
	d, isRe := o.HostData.(*regexpData)
	if !isRe {
		return nil, nil, throwType(realm, who+" called on incompatible receiver")
	}
	return o, d, runtime.Completion{}
}

func installRegExpPrototypeMethods(realm *runtime.Realm, proto *runtime.Obj) {
	method(realm, proto, "test", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		_, d, c := thisRegExpData(realm, this, "RegExp.prototype.test")
		if d == nil {
			return c
		}
		m, err := d.re.FindStringMatch(runtime.ToGoString(argAt(args, 0)))
		if err != nil {
			return throwType(realm, "regular expression execution failed: "+err.Error())
		}
		return ok(runtime.Boolean(m != nil))
	})
	method(realm, proto, "exec", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		o, d, c := thisRegExpData(realm, this, "RegExp.prototype.exec")
		if d == nil {
			return c
		}
		s := runtime.ToGoString(argAt(args, 0))
		global := runtime.ToBoolean(o.Get(runtime.StringKey("global")))
		start := 0
		if global {
			start = int(runtime.ToNumber(o.Get(runtime.StringKey("lastIndex"))))
		}
		if start < 0 || start > len(s) {
			o.Set(runtime.StringKey("lastIndex"), runtime.Number(0), o)
			return ok(runtime.Null{})
		}
		m, err := d.re.FindStringMatchStartingAt(s, start)
		if err != nil {
			return throwType(realm, "regular expression execution failed: "+err.Error())
		}
		if m == nil {
			if global {
				o.Set(runtime.StringKey("lastIndex"), runtime.Number(0), o)
			}
			return ok(runtime.Null{})
		}
		if global {
			o.Set(runtime.StringKey("lastIndex"), runtime.Number(m.Index+m.Length), o)
		}
		return ok(matchResultArray(realm, s, m))
	})
	method(realm, proto, "toString", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		_, d, c := thisRegExpData(realm, this, "RegExp.prototype.toString")
		if d == nil {
			return c
		}
		return ok(runtime.NewStringFromGo("/" + d.source + "/" + d.flags))
	})
}

func matchResultArray(realm *runtime.Realm, s string, m *regexp2.Match) *runtime.Obj {
	groups := m.Groups()
	items := make([]runtime.Value, len(groups))
	for i, g := range groups {
		if len(g.Captures) == 0 {
			items[i] = runtime.Undefined{}
			continue
		}
		items[i] = runtime.NewStringFromGo(g.String())
	}
	arr := newArrayObj(realm, items)
	arr.DefineOwnProperty(runtime.StringKey("index"), runtime.NewDataDescriptor(runtime.Number(m.Index), true, true, true))
	arr.DefineOwnProperty(runtime.StringKey("input"), runtime.NewDataDescriptor(runtime.NewStringFromGo(s), true, true, true))
	return arr
}
