package builtins

import (
	"github.com/esvm-go/esvm/internal/plugin"
	"github.com/esvm-go/esvm/internal/promise"
	"github.com/esvm-go/esvm/internal/runtime"
)

// PromisePlugin builds the Promise constructor/prototype over
// internal/promise's capability/microtask machinery (ECMA-262). The
// AsyncFunctionStart await-continuation path (internal/evaluator) attaches
// reactions directly via promise.PerformPromiseThen and never goes through
// these script-facing methods; this plugin only wires the methods script
// code calls (`new Promise(executor)`, `.then`, statics).
func PromisePlugin() plugin.Plugin {
	return plugin.Plugin{
		ID:               "promise",
		Depends:          []string{"core"},
		CreateIntrinsics: createPromiseIntrinsics,
	}
}

func createPromiseIntrinsics(realm *runtime.Realm, globals *plugin.Globals) error {
	proto := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	realm.Intrinsics["%Promise.prototype%"] = proto

	ctor := newConstructor(realm, "Promise", 1, proto,
		func(this runtime.Value, args []runtime.Value) runtime.Completion {
			return throwType(realm, "Promise constructor cannot be invoked without 'new'")
		},
		func(args []runtime.Value, newTarget *runtime.Obj) runtime.Completion {
			executor, isFn := argAt(args, 0).(*runtime.Obj)
			if !isFn || !executor.IsCallable() {
				return throwType(realm, "Promise resolver is not a function")
			}
			cap := promise.NewCapability(realm)
			cap.Promise.Prototype = proto
			resolveFn := nativeFn(realm, "", 1, func(_ runtime.Value, a []runtime.Value) runtime.Completion {
				promise.Resolve(cap, argAt(a, 0))
				return undef()
			})
			rejectFn := nativeFn(realm, "", 1, func(_ runtime.Value, a []runtime.Value) runtime.Completion {
				promise.Reject(cap, argAt(a, 0))
				return undef()
			})
			if cc := executor.Fn.Call(runtime.Undefined{}, []runtime.Value{resolveFn, rejectFn}); cc.IsAbrupt() {
				promise.Reject(cap, cc.Value)
			}
			return ok(cap.Promise)
		},
	)
	realm.Intrinsics["%Promise%"] = ctor
	globals.Stage("Promise", runtime.NewDataDescriptor(ctor, true, false, true))

	staticMethod(realm, ctor, "resolve", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return ok(promise.PromiseResolve(realm, argAt(args, 0)))
	})
	staticMethod(realm, ctor, "reject", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		cap := promise.NewCapability(realm)
		promise.Reject(cap, argAt(args, 0))
		return ok(cap.Promise)
	})
	staticMethod(realm, ctor, "all", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return promiseCombinator(realm, argAt(args, 0), combinatorAll)
	})
	staticMethod(realm, ctor, "allSettled", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return promiseCombinator(realm, argAt(args, 0), combinatorAllSettled)
	})
	staticMethod(realm, ctor, "race", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return promiseCombinator(realm, argAt(args, 0), combinatorRace)
	})
	staticMethod(realm, ctor, "any", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return promiseCombinator(realm, argAt(args, 0), combinatorAny)
	})

	method(realm, proto, "then", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		p, _, isPromise := promise.IsPromise(this)
		if !isPromise {
			return throwType(realm, "Promise.prototype.then called on incompatible receiver")
		}
		resultCap := promise.NewCapability(realm)
		resultCap.Promise.Prototype = proto
		onFulfilled := handlerFor(argAt(args, 0), promise.IdentityHandler)
		onRejected := handlerFor(argAt(args, 1), promise.ThrowHandler)
		promise.PerformPromiseThen(realm, p, onFulfilled, onRejected, resultCap)
		return ok(resultCap.Promise)
	})
	method(realm, proto, "catch", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		thenFn := proto.Get(runtime.StringKey("then")).(*runtime.Obj)
		return thenFn.Fn.Call(this, []runtime.Value{runtime.Undefined{}, argAt(args, 0)})
	})
	method(realm, proto, "finally", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		onFinally, isFn := argAt(args, 0).(*runtime.Obj)
		thenFn := proto.Get(runtime.StringKey("then")).(*runtime.Obj)
		if !isFn || !onFinally.IsCallable() {
			return thenFn.Fn.Call(this, args)
		}
		wrapFulfill := nativeFn(realm, "", 1, func(_ runtime.Value, a []runtime.Value) runtime.Completion {
			if cc := onFinally.Fn.Call(runtime.Undefined{}, nil); cc.IsAbrupt() {
				return cc
			}
			return ok(argAt(a, 0))
		})
		wrapReject := nativeFn(realm, "", 1, func(_ runtime.Value, a []runtime.Value) runtime.Completion {
			if cc := onFinally.Fn.Call(runtime.Undefined{}, nil); cc.IsAbrupt() {
				return cc
			}
			return runtime.ThrowCompletion(argAt(a, 0))
		})
		return thenFn.Fn.Call(this, []runtime.Value{wrapFulfill, wrapReject})
	})
	return nil
}

func handlerFor(v runtime.Value, dflt promise.Handler) promise.Handler {
	fn, isFn := v.(*runtime.Obj)
	if !isFn || !fn.IsCallable() {
		return dflt
	}
	return func(value runtime.Value) runtime.Completion {
		return fn.Fn.Call(runtime.Undefined{}, []runtime.Value{value})
	}
}

type combinatorKind int

const (
	combinatorAll combinatorKind = iota
	combinatorAllSettled
	combinatorRace
	combinatorAny
)

// promiseCombinator implements the four static combinators over the same
// PerformPromiseThen primitive each uses in the spec's own pseudocode.
func promiseCombinator(realm *runtime.Realm, iterable runtime.Value, kind combinatorKind) runtime.Completion {
	items, c := iterableOrArrayLikeToSlice(realm, iterable)
	if c.IsAbrupt() {
		return c
	}
	resultCap := promise.NewCapability(realm)
	resultCap.Promise.Prototype = realm.Intrinsic("%Promise.prototype%")

	n := len(items)
	if n == 0 {
		switch kind {
		case combinatorAll, combinatorAllSettled:
			promise.Resolve(resultCap, newArrayObj(realm, nil))
		case combinatorAny:
			promise.Reject(resultCap, realm.NewError("AggregateError", "All promises were rejected"))
		}
		return ok(resultCap.Promise)
	}

	results := make([]runtime.Value, n)
	remaining := n
	errs := make([]runtime.Value, n)

	for i, item := range items {
		i := i
		p := promise.PromiseResolve(realm, item)
		onFulfilled := promise.Handler(func(v runtime.Value) runtime.Completion {
			switch kind {
			case combinatorAll:
				results[i] = v
				remaining--
				if remaining == 0 {
					promise.Resolve(resultCap, newArrayObj(realm, results))
				}
			case combinatorAllSettled:
				results[i] = settledResult(realm, "fulfilled", v)
				remaining--
				if remaining == 0 {
					promise.Resolve(resultCap, newArrayObj(realm, results))
				}
			case combinatorRace:
				promise.Resolve(resultCap, v)
			case combinatorAny:
				promise.Resolve(resultCap, v)
			}
			return runtime.NormalCompletion(runtime.Undefined{})
		})
		onRejected := promise.Handler(func(v runtime.Value) runtime.Completion {
			switch kind {
			case combinatorAll:
				promise.Reject(resultCap, v)
			case combinatorAllSettled:
				results[i] = settledResult(realm, "rejected", v)
				remaining--
				if remaining == 0 {
					promise.Resolve(resultCap, newArrayObj(realm, results))
				}
			case combinatorRace:
				promise.Reject(resultCap, v)
			case combinatorAny:
				errs[i] = v
				remaining--
				if remaining == 0 {
					agg := realm.NewError("AggregateError", "All promises were rejected")
					agg.DefineOwnProperty(runtime.StringKey("errors"), runtime.NewDataDescriptor(newArrayObj(realm, errs), true, false, true))
					promise.Reject(resultCap, agg)
				}
			}
			return runtime.NormalCompletion(runtime.Undefined{})
		})
		promise.PerformPromiseThen(realm, p, onFulfilled, onRejected, nil)
	}
	return ok(resultCap.Promise)
}

func settledResult(realm *runtime.Realm, status string, value runtime.Value) *runtime.Obj {
	o := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	o.DefineOwnProperty(runtime.StringKey("status"), runtime.NewDataDescriptor(runtime.NewStringFromGo(status), true, true, true))
	if status == "fulfilled" {
		o.DefineOwnProperty(runtime.StringKey("value"), runtime.NewDataDescriptor(value, true, true, true))
	} else {
		o.DefineOwnProperty(runtime.StringKey("reason"), runtime.NewDataDescriptor(value, true, true, true))
	}
	return o
}
