// Package builtins implements the library-surface collaborator objects:
// Object, Function, Array, String, Number, Boolean, Symbol, Math, JSON,
// Map, Set, Error (and subclasses), Promise, and RegExp, each as a
// plugin.Plugin. None of this
// re-implements evaluator semantics (the core's job); each method here
// calls back into the object model's [[Get]]/[[Set]]/[[Call]] the same way
// a real ECMAScript built-in is specified as "ordinary JS-observable
// operations dressed up as native code."
package builtins

import (
	"math"
	"math/rand"

	"github.com/esvm-go/esvm/internal/runtime"
)

func nan() float64 { return math.NaN() }
func inf() float64 { return math.Inf(1) }

// pseudoRandom backs Math.random when a host hasn't installed
// realm.Random (the host's optional deterministic PRNG hook).
func pseudoRandom() float64 { return rand.Float64() }

// argAt returns args[i] or undefined, the same helper every built-in
// method needs for optional trailing parameters.
func argAt(args []runtime.Value, i int) runtime.Value {
	if i < len(args) {
		return args[i]
	}
	return runtime.Undefined{}
}

// nativeFn wraps a Go closure as a callable *runtime.Obj with name/length
// own properties, the native-function shape every built-in method is built
// from (ECMA-262: FunctionSlots.Call as a plain closure field).
func nativeFn(realm *runtime.Realm, name string, length int, fn func(this runtime.Value, args []runtime.Value) runtime.Completion) *runtime.Obj {
	o := runtime.NewOrdinaryObject(realm.Intrinsic("%Function.prototype%"))
	o.Kind = runtime.KindFunction
	o.Fn = &runtime.FunctionSlots{Name: name, Length: length, Call: fn}
	o.DefineOwnProperty(runtime.StringKey("name"), runtime.NewDataDescriptor(runtime.NewStringFromGo(name), false, false, true))
	o.DefineOwnProperty(runtime.StringKey("length"), runtime.NewDataDescriptor(runtime.Number(length), false, false, true))
	return o
}

// method installs a non-enumerable, writable, configurable method on proto
// — the standard attribute set spec Annex "Properties of the X Prototype
// Object" sections give every built-in method.
func method(realm *runtime.Realm, proto *runtime.Obj, name string, length int, fn func(this runtime.Value, args []runtime.Value) runtime.Completion) {
	proto.DefineOwnProperty(runtime.StringKey(name), runtime.NewDataDescriptor(nativeFn(realm, name, length, fn), true, false, true))
}

func symbolMethod(realm *runtime.Realm, proto *runtime.Obj, sym *runtime.Symbol, name string, length int, fn func(this runtime.Value, args []runtime.Value) runtime.Completion) {
	proto.DefineOwnProperty(runtime.SymbolKey(sym), runtime.NewDataDescriptor(nativeFn(realm, name, length, fn), true, false, true))
}

// staticMethod installs a method directly on a constructor object (e.g.
// Array.isArray, Object.keys).
func staticMethod(realm *runtime.Realm, ctor *runtime.Obj, name string, length int, fn func(this runtime.Value, args []runtime.Value) runtime.Completion) {
	ctor.DefineOwnProperty(runtime.StringKey(name), runtime.NewDataDescriptor(nativeFn(realm, name, length, fn), true, false, true))
}

// newConstructor builds a constructor function object: callable via Call
// (invoked without `new`, per each built-in's own rule for that case) and
// via Construct, linked to proto through both directions (ctor.prototype
// and proto.constructor) the way MakeConstructor does.
func newConstructor(realm *runtime.Realm, name string, length int, proto *runtime.Obj, call func(this runtime.Value, args []runtime.Value) runtime.Completion, construct func(args []runtime.Value, newTarget *runtime.Obj) runtime.Completion) *runtime.Obj {
	ctor := runtime.NewOrdinaryObject(realm.Intrinsic("%Function.prototype%"))
	ctor.Kind = runtime.KindFunction
	ctor.Fn = &runtime.FunctionSlots{Name: name, Length: length, Call: call, Construct: construct}
	ctor.DefineOwnProperty(runtime.StringKey("name"), runtime.NewDataDescriptor(runtime.NewStringFromGo(name), false, false, true))
	ctor.DefineOwnProperty(runtime.StringKey("length"), runtime.NewDataDescriptor(runtime.Number(length), false, false, true))
	ctor.DefineOwnProperty(runtime.StringKey("prototype"), runtime.NewDataDescriptor(proto, false, false, false))
	proto.DefineOwnProperty(runtime.StringKey("constructor"), runtime.NewDataDescriptor(ctor, true, false, true))
	return ctor
}

func throwType(realm *runtime.Realm, msg string) runtime.Completion {
	return runtime.ThrowCompletion(realm.NewError("TypeError", msg))
}

func throwRange(realm *runtime.Realm, msg string) runtime.Completion {
	return runtime.ThrowCompletion(realm.NewError("RangeError", msg))
}

func ok(v runtime.Value) runtime.Completion { return runtime.NormalCompletion(v) }

func undef() runtime.Completion { return runtime.NormalCompletion(runtime.Undefined{}) }

// asObject requires this to be an object, throwing the standard
// "called on non-object" TypeError shape otherwise.
func asObject(realm *runtime.Realm, this runtime.Value, method string) (*runtime.Obj, runtime.Completion) {
	o, ok := this.(*runtime.Obj)
	if !ok {
		return nil, throwType(realm, method+" called on non-object")
	}
	return o, runtime.Completion{}
}
