package builtins

import (
	"math"
	"strconv"

	"github.com/esvm-go/esvm/internal/plugin"
	"github.com/esvm-go/esvm/internal/runtime"
)

// NumberPlugin builds %Number.prototype% and the Number constructor with
// its Annex-familiar static constants (EPSILON, MAX_SAFE_INTEGER, ...).
func NumberPlugin() plugin.Plugin {
	return plugin.Plugin{
		ID:               "number",
		Depends:          []string{"core"},
		CreateIntrinsics: createNumberIntrinsics,
	}
}

func createNumberIntrinsics(realm *runtime.Realm, globals *plugin.Globals) error {
	proto := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	proto.HostData = runtime.Number(0)
	realm.Intrinsics["%Number.prototype%"] = proto

	ctor := newConstructor(realm, "Number", 1, proto,
		func(this runtime.Value, args []runtime.Value) runtime.Completion {
			if len(args) == 0 {
				return ok(runtime.Number(0))
			}
			return ok(runtime.Number(runtime.ToNumber(args[0])))
		},
		func(args []runtime.Value, newTarget *runtime.Obj) runtime.Completion {
			n := runtime.Number(0)
			if len(args) > 0 {
				n = runtime.Number(runtime.ToNumber(args[0]))
			}
			o := runtime.NewOrdinaryObject(proto)
			o.HostData = n
			return ok(o)
		},
	)
	stage := func(name string, v float64) {
		ctor.DefineOwnProperty(runtime.StringKey(name), runtime.NewDataDescriptor(runtime.Number(v), false, false, false))
	}
	stage("EPSILON", 2.220446049250313e-16)
	stage("MAX_SAFE_INTEGER", 9007199254740991)
	stage("MIN_SAFE_INTEGER", -9007199254740991)
	stage("MAX_VALUE", math.MaxFloat64)
	stage("MIN_VALUE", 5e-324)
	stage("POSITIVE_INFINITY", math.Inf(1))
	stage("NEGATIVE_INFINITY", math.Inf(-1))
	stage("NaN", math.NaN())
	staticMethod(realm, ctor, "isInteger", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		n, isNum := argAt(args, 0).(runtime.Number)
		if !isNum {
			return ok(runtime.Boolean(false))
		}
		f := float64(n)
		return ok(runtime.Boolean(!math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f)))
	})
	staticMethod(realm, ctor, "isFinite", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		n, isNum := argAt(args, 0).(runtime.Number)
		return ok(runtime.Boolean(isNum && !math.IsNaN(float64(n)) && !math.IsInf(float64(n), 0)))
	})
	staticMethod(realm, ctor, "isNaN", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		n, isNum := argAt(args, 0).(runtime.Number)
		return ok(runtime.Boolean(isNum && math.IsNaN(float64(n))))
	})
	staticMethod(realm, ctor, "parseFloat", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return ok(runtime.Number(parseFloatLeading(runtime.ToGoString(argAt(args, 0)))))
	})
	staticMethod(realm, ctor, "parseInt", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		radix := 10
		if len(args) > 1 {
			radix = int(runtime.ToNumber(args[1]))
		}
		return ok(runtime.Number(parseIntLeading(runtime.ToGoString(argAt(args, 0)), radix)))
	})
	realm.Intrinsics["%Number%"] = ctor
	globals.Stage("Number", runtime.NewDataDescriptor(ctor, true, false, true))

	method(realm, proto, "toString", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		n, c := thisNumberValue(realm, this)
		if c.IsAbrupt() {
			return c
		}
		radix := 10
		if len(args) > 0 {
			if _, isUndef := args[0].(runtime.Undefined); !isUndef {
				radix = int(runtime.ToNumber(args[0]))
			}
		}
		if radix == 10 {
			return ok(runtime.NewStringFromGo(n.String()))
		}
		return ok(runtime.NewStringFromGo(strconv.FormatInt(int64(n), radix)))
	})
	method(realm, proto, "valueOf", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		n, c := thisNumberValue(realm, this)
		if c.IsAbrupt() {
			return c
		}
		return ok(n)
	})
	method(realm, proto, "toFixed", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		n, c := thisNumberValue(realm, this)
		if c.IsAbrupt() {
			return c
		}
		digits := 0
		if len(args) > 0 {
			digits = int(runtime.ToNumber(args[0]))
		}
		return ok(runtime.NewStringFromGo(strconv.FormatFloat(float64(n), 'f', digits, 64)))
	})
	return nil
}

func thisNumberValue(realm *runtime.Realm, this runtime.Value) (runtime.Number, runtime.Completion) {
	switch v := this.(type) {
	case runtime.Number:
		return v, runtime.Completion{}
	case *runtime.Obj:
		if n, isNum := v.HostData.(runtime.Number); isNum {
			return n, runtime.Completion{}
		}
	}
	return 0, throwType(realm, "Number.prototype method called on incompatible receiver")
}

func parseFloatLeading(s string) float64 {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n') {
		i++
	}
	j := i
	if j < len(s) && (s[j] == '+' || s[j] == '-') {
		j++
	}
	start := j
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j < len(s) && s[j] == '.' {
		j++
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
	}
	if j == start || (j == start+1 && s[start] == '.') {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s[i:j], 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func parseIntLeading(s string, radix int) float64 {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n') {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	if radix == 0 {
		radix = 10
	}
	if radix == 16 && i+1 < len(s) && s[i] == '0' && (s[i+1] == 'x' || s[i+1] == 'X') {
		i += 2
	}
	start := i
	for i < len(s) && digitValue(s[i]) < radix {
		i++
	}
	if i == start {
		return math.NaN()
	}
	n, err := strconv.ParseInt(s[start:i], radix, 64)
	if err != nil {
		return math.NaN()
	}
	if neg {
		return -float64(n)
	}
	return float64(n)
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return 99
}
