package builtins

import (
	"math"

	"github.com/esvm-go/esvm/internal/plugin"
	"github.com/esvm-go/esvm/internal/runtime"
)

// MathPlugin builds the Math namespace object, backed by the standard
// math package: the operations are specified as IEEE-754 libm-equivalent,
// which is exactly what math provides.
func MathPlugin() plugin.Plugin {
	return plugin.Plugin{
		ID:               "math",
		Depends:          []string{"core"},
		CreateIntrinsics: createMathIntrinsics,
	}
}

func createMathIntrinsics(realm *runtime.Realm, globals *plugin.Globals) error {
	m := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	m.DefineOwnProperty(runtime.SymbolKey(runtime.SymToStringTag), runtime.NewDataDescriptor(runtime.NewStringFromGo("Math"), false, false, true))

	stageConst := func(name string, v float64) {
		m.DefineOwnProperty(runtime.StringKey(name), runtime.NewDataDescriptor(runtime.Number(v), false, false, false))
	}
	stageConst("PI", math.Pi)
	stageConst("E", math.E)
	stageConst("LN2", math.Ln2)
	stageConst("LN10", math.Log(10))
	stageConst("LOG2E", 1/math.Ln2)
	stageConst("LOG10E", 1/math.Log(10))
	stageConst("SQRT2", math.Sqrt2)
	stageConst("SQRT1_2", math.Sqrt(0.5))

	unary := func(name string, fn func(float64) float64) {
		staticMethod(realm, m, name, 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
			return ok(runtime.Number(fn(runtime.ToNumber(argAt(args, 0)))))
		})
	}
	unary("abs", math.Abs)
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("trunc", math.Trunc)
	unary("sqrt", math.Sqrt)
	unary("cbrt", math.Cbrt)
	unary("sign", func(f float64) float64 {
		switch {
		case math.IsNaN(f):
			return math.NaN()
		case f > 0:
			return 1
		case f < 0:
			return -1
		}
		return f
	})
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("tan", math.Tan)
	unary("asin", math.Asin)
	unary("acos", math.Acos)
	unary("atan", math.Atan)
	unary("sinh", math.Sinh)
	unary("cosh", math.Cosh)
	unary("tanh", math.Tanh)
	unary("log", math.Log)
	unary("log2", math.Log2)
	unary("log10", math.Log10)
	unary("exp", math.Exp)
	unary("round", func(f float64) float64 {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return f
		}
		return math.Floor(f + 0.5)
	})
	staticMethod(realm, m, "pow", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return ok(runtime.Number(math.Pow(runtime.ToNumber(argAt(args, 0)), runtime.ToNumber(argAt(args, 1)))))
	})
	staticMethod(realm, m, "atan2", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return ok(runtime.Number(math.Atan2(runtime.ToNumber(argAt(args, 0)), runtime.ToNumber(argAt(args, 1)))))
	})
	staticMethod(realm, m, "max", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		best := math.Inf(-1)
		for _, a := range args {
			f := runtime.ToNumber(a)
			if math.IsNaN(f) {
				return ok(runtime.Number(math.NaN()))
			}
			if f > best {
				best = f
			}
		}
		return ok(runtime.Number(best))
	})
	staticMethod(realm, m, "min", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		best := math.Inf(1)
		for _, a := range args {
			f := runtime.ToNumber(a)
			if math.IsNaN(f) {
				return ok(runtime.Number(math.NaN()))
			}
			if f < best {
				best = f
			}
		}
		return ok(runtime.Number(best))
	})
	staticMethod(realm, m, "hypot", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		sum := 0.0
		for _, a := range args {
			f := runtime.ToNumber(a)
			sum += f * f
		}
		return ok(runtime.Number(math.Sqrt(sum)))
	})
	staticMethod(realm, m, "random", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		if realm.Random != nil {
			return ok(runtime.Number(realm.Random()))
		}
		return ok(runtime.Number(pseudoRandom()))
	})

	realm.Intrinsics["%Math%"] = m
	globals.Stage("Math", runtime.NewDataDescriptor(m, true, false, true))
	return nil
}
