package builtins

import (
	"strings"

	"github.com/esvm-go/esvm/internal/plugin"
	"github.com/esvm-go/esvm/internal/runtime"
)

// StringPlugin builds %String.prototype% and the String constructor/exotic
// wrapper shape (ECMA-262's "string exotic" own-property-per-code-unit
// object, modeled by runtime.StringWrapSlots/stringExoticGetOwnProperty).
func StringPlugin() plugin.Plugin {
	return plugin.Plugin{
		ID:               "string",
		Depends:          []string{"core"},
		CreateIntrinsics: createStringIntrinsics,
	}
}

func createStringIntrinsics(realm *runtime.Realm, globals *plugin.Globals) error {
	proto := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	proto.Kind = runtime.KindStringWrap
	proto.Str = &runtime.StringWrapSlots{Data: runtime.NewStringFromGo("")}
	realm.Intrinsics["%String.prototype%"] = proto

	ctor := newConstructor(realm, "String", 1, proto,
		func(this runtime.Value, args []runtime.Value) runtime.Completion {
			if len(args) == 0 {
				return ok(runtime.NewStringFromGo(""))
			}
			if s, isSym := args[0].(*runtime.Symbol); isSym {
				return ok(runtime.NewStringFromGo(s.String()))
			}
			return ok(runtime.ToStringValue(args[0]))
		},
		func(args []runtime.Value, newTarget *runtime.Obj) runtime.Completion {
			s := runtime.NewStringFromGo("")
			if len(args) > 0 {
				s = runtime.ToStringValue(args[0])
			}
			o := runtime.ToObject(realm, s)
			o.Prototype = proto
			return ok(o)
		},
	)
	staticMethod(realm, ctor, "fromCharCode", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		units := make([]uint16, len(args))
		for i, a := range args {
			units[i] = uint16(int64(runtime.ToNumber(a)))
		}
		return ok(runtime.String(units))
	})
	realm.Intrinsics["%String%"] = ctor
	globals.Stage("String", runtime.NewDataDescriptor(ctor, true, false, true))

	installStringPrototypeMethods(realm, proto)
	return nil
}

func thisStringValue(realm *runtime.Realm, this runtime.Value, who string) (runtime.String, runtime.Completion) {
	switch v := this.(type) {
	case runtime.String:
		return v, runtime.Completion{}
	case *runtime.Obj:
		if v.Kind == runtime.KindStringWrap && v.Str != nil {
			return v.Str.Data, runtime.Completion{}
		}
	}
	return nil, throwType(realm, who+" called on incompatible receiver")
}

func installStringPrototypeMethods(realm *runtime.Realm, proto *runtime.Obj) {
	method(realm, proto, "toString", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		s, c := thisStringValue(realm, this, "String.prototype.toString")
		if s == nil {
			return c
		}
		return ok(s)
	})
	method(realm, proto, "valueOf", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		s, c := thisStringValue(realm, this, "String.prototype.valueOf")
		if s == nil {
			return c
		}
		return ok(s)
	})
	method(realm, proto, "charAt", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		s := runtime.ToStringValue(this)
		i := int(runtime.ToNumber(argAt(args, 0)))
		if i < 0 || i >= s.Len() {
			return ok(runtime.NewStringFromGo(""))
		}
		return ok(runtime.String([]uint16{s[i]}))
	})
	method(realm, proto, "charCodeAt", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		s := runtime.ToStringValue(this)
		i := int(runtime.ToNumber(argAt(args, 0)))
		if i < 0 || i >= s.Len() {
			return ok(runtime.Number(nan()))
		}
		return ok(runtime.Number(s[i]))
	})
	method(realm, proto, "indexOf", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		s := runtime.ToGoString(this)
		needle := runtime.ToGoString(argAt(args, 0))
		return ok(runtime.Number(strings.Index(s, needle)))
	})
	method(realm, proto, "lastIndexOf", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		s := runtime.ToGoString(this)
		needle := runtime.ToGoString(argAt(args, 0))
		return ok(runtime.Number(strings.LastIndex(s, needle)))
	})
	method(realm, proto, "includes", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return ok(runtime.Boolean(strings.Contains(runtime.ToGoString(this), runtime.ToGoString(argAt(args, 0)))))
	})
	method(realm, proto, "startsWith", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return ok(runtime.Boolean(strings.HasPrefix(runtime.ToGoString(this), runtime.ToGoString(argAt(args, 0)))))
	})
	method(realm, proto, "endsWith", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return ok(runtime.Boolean(strings.HasSuffix(runtime.ToGoString(this), runtime.ToGoString(argAt(args, 0)))))
	})
	method(realm, proto, "slice", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		s := runtime.ToStringValue(this)
		n := s.Len()
		start := clampIndex(argAt(args, 0), n, 0)
		end := n
		if _, isUndef := argAt(args, 1).(runtime.Undefined); !isUndef && len(args) > 1 {
			end = clampIndex(args[1], n, n)
		}
		if start >= end {
			return ok(runtime.NewStringFromGo(""))
		}
		return ok(runtime.String(append([]uint16{}, s[start:end]...)))
	})
	method(realm, proto, "substring", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		s := runtime.ToStringValue(this)
		n := s.Len()
		a := clampUnsigned(argAt(args, 0), n, 0)
		b := n
		if _, isUndef := argAt(args, 1).(runtime.Undefined); !isUndef && len(args) > 1 {
			b = clampUnsigned(args[1], n, n)
		}
		if a > b {
			a, b = b, a
		}
		return ok(runtime.String(append([]uint16{}, s[a:b]...)))
	})
	method(realm, proto, "toUpperCase", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return ok(runtime.NewStringFromGo(strings.ToUpper(runtime.ToGoString(this))))
	})
	method(realm, proto, "toLowerCase", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return ok(runtime.NewStringFromGo(strings.ToLower(runtime.ToGoString(this))))
	})
	method(realm, proto, "trim", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return ok(runtime.NewStringFromGo(strings.TrimSpace(runtime.ToGoString(this))))
	})
	method(realm, proto, "split", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		s := runtime.ToGoString(this)
		sepArg := argAt(args, 0)
		if _, isUndef := sepArg.(runtime.Undefined); isUndef {
			return ok(newArrayObj(realm, []runtime.Value{runtime.NewStringFromGo(s)}))
		}
		sep := runtime.ToGoString(sepArg)
		var parts []string
		if sep == "" {
			for _, r := range s {
				parts = append(parts, string(r))
			}
		} else {
			parts = strings.Split(s, sep)
		}
		out := make([]runtime.Value, len(parts))
		for i, p := range parts {
			out[i] = runtime.NewStringFromGo(p)
		}
		return ok(newArrayObj(realm, out))
	})
	method(realm, proto, "replace", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		s := runtime.ToGoString(this)
		pattern := runtime.ToGoString(argAt(args, 0))
		if repl, isFn := argAt(args, 1).(*runtime.Obj); isFn && repl.IsCallable() {
			idx := strings.Index(s, pattern)
			if idx < 0 {
				return ok(runtime.NewStringFromGo(s))
			}
			r := repl.Fn.Call(runtime.Undefined{}, []runtime.Value{runtime.NewStringFromGo(pattern), runtime.Number(idx), runtime.NewStringFromGo(s)})
			return ok(runtime.NewStringFromGo(s[:idx] + runtime.ToGoString(r.Value) + s[idx+len(pattern):]))
		}
		replacement := runtime.ToGoString(argAt(args, 1))
		return ok(runtime.NewStringFromGo(strings.Replace(s, pattern, replacement, 1)))
	})
	method(realm, proto, "replaceAll", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		s := runtime.ToGoString(this)
		pattern := runtime.ToGoString(argAt(args, 0))
		replacement := runtime.ToGoString(argAt(args, 1))
		return ok(runtime.NewStringFromGo(strings.ReplaceAll(s, pattern, replacement)))
	})
	method(realm, proto, "repeat", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		n := int(runtime.ToNumber(argAt(args, 0)))
		if n < 0 {
			return throwRange(realm, "Invalid count value")
		}
		return ok(runtime.NewStringFromGo(strings.Repeat(runtime.ToGoString(this), n)))
	})
	method(realm, proto, "padStart", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return ok(runtime.NewStringFromGo(pad(runtime.ToGoString(this), args, true)))
	})
	method(realm, proto, "padEnd", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return ok(runtime.NewStringFromGo(pad(runtime.ToGoString(this), args, false)))
	})
	method(realm, proto, "concat", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		out := runtime.ToGoString(this)
		for _, a := range args {
			out += runtime.ToGoString(a)
		}
		return ok(runtime.NewStringFromGo(out))
	})
	method(realm, proto, "at", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		s := runtime.ToStringValue(this)
		n := s.Len()
		i := int(runtime.ToNumber(argAt(args, 0)))
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return undef()
		}
		return ok(runtime.String([]uint16{s[i]}))
	})
	symbolMethod(realm, proto, runtime.SymIterator, "[Symbol.iterator]", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		s := runtime.ToStringValue(this)
		idx := 0
		iter := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
		method(realm, iter, "next", 0, func(_ runtime.Value, _ []runtime.Value) runtime.Completion {
			res := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
			if idx >= s.Len() {
				res.DefineOwnProperty(runtime.StringKey("done"), runtime.NewDataDescriptor(runtime.Boolean(true), true, true, true))
				res.DefineOwnProperty(runtime.StringKey("value"), runtime.NewDataDescriptor(runtime.Undefined{}, true, true, true))
				return ok(res)
			}
			v := runtime.String([]uint16{s[idx]})
			idx++
			res.DefineOwnProperty(runtime.StringKey("done"), runtime.NewDataDescriptor(runtime.Boolean(false), true, true, true))
			res.DefineOwnProperty(runtime.StringKey("value"), runtime.NewDataDescriptor(v, true, true, true))
			return ok(res)
		})
		symbolMethod(realm, iter, runtime.SymIterator, "[Symbol.iterator]", 0, func(this runtime.Value, _ []runtime.Value) runtime.Completion {
			return ok(this)
		})
		return ok(iter)
	})
}

func clampUnsigned(v runtime.Value, length, dflt int) int {
	if _, isUndef := v.(runtime.Undefined); isUndef {
		return dflt
	}
	n := int(runtime.ToNumber(v))
	if n < 0 {
		n = 0
	}
	if n > length {
		n = length
	}
	return n
}

func pad(s string, args []runtime.Value, start bool) string {
	targetLen := int(runtime.ToNumber(argAt(args, 0)))
	filler := " "
	if f, isStr := argAt(args, 1).(runtime.String); isStr {
		filler = f.String()
	}
	if filler == "" || targetLen <= len([]rune(s)) {
		return s
	}
	need := targetLen - len([]rune(s))
	var b strings.Builder
	for b.Len() < need {
		b.WriteString(filler)
	}
	padding := b.String()
	padding = string([]rune(padding)[:need])
	if start {
		return padding + s
	}
	return s + padding
}
