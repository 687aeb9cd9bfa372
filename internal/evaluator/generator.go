package evaluator

import (
	"github.com/esvm-go/esvm/ast"
	"github.com/esvm-go/esvm/internal/evaluator/suspend"
	"github.com/esvm-go/esvm/internal/promise"
	"github.com/esvm-go/esvm/internal/runtime"
)

// generatorState is the per-invocation coroutine bookkeeping stashed on an
// ExecutionContext (ctx.Generator, typed any in internal/runtime to avoid
// an import cycle). Statement/block evaluation copies the ExecutionContext
// by value (see evalBlock), so this single pointer set once at call start
// is visible to every nested evalYield/evalAwait inside the body without
// having to walk the environment chain.
type generatorState struct {
	co    *suspend.Coroutine
	realm *runtime.Realm
	async bool // await is meaningful; only async generators see both tokens

	// queue serializes concurrent next()/throw()/return() calls against an
	// async generator (ECMA-262's AsyncGeneratorRequest queue): only one
	// may drive the coroutine at a time, so a call arriving while another
	// is still in flight (awaiting a promise) waits its turn.
	queue []asyncGenRequest
	busy  bool

	// liveNotified guards OnGeneratorLifecycle's -1 against firing more
	// than once for a single coroutine (each of the three drivers below
	// reaches its own sig.Done branch exactly once in the normal case,
	// but this keeps the count correct even if that ever changes).
	liveNotified bool
}

func (e *Evaluator) notifyGeneratorDone(gs *generatorState) {
	if gs.liveNotified {
		return
	}
	gs.liveNotified = true
	e.notifyGeneratorLifecycle(-1)
}

type resumeKind int

const (
	resumeNormal resumeKind = iota
	resumeThrow
	resumeReturn
)

// resumption is what a driver injects into a suspended coroutine body,
// the completion that getting back to the call site of yield/await should
// produce (ECMA-262's GeneratorResume(generator, completion) parameter).
type resumption struct {
	kind  resumeKind
	value runtime.Value
}

// yieldToken is what the body goroutine hands the driver at a `yield`
// (non-delegating) suspension point.
type yieldToken struct{ value runtime.Value }

// awaitToken is what the body goroutine hands the driver at an `await`
// suspension point.
type awaitToken struct{ value runtime.Value }

type asyncGenRequest struct {
	resumption resumption
	cap        *promise.Capability
}

// startGenerator implements ECMA-262's [[Call]] for a (non-async)
// generator function: returns its generator object immediately without
// running any body statement (GeneratorStart leaves it in suspendedStart).
func (e *Evaluator) startGenerator(ctx *runtime.ExecutionContext, fnObj *runtime.Obj, fn ast.FunctionLike, args []runtime.Value) *runtime.Obj {
	gs := &generatorState{realm: ctx.Realm}
	ctx.Generator = gs
	gs.co = suspend.Start(func(first any) any {
		return runGeneratorBody(e, ctx, fn, args, first)
	})
	e.notifyGeneratorLifecycle(1)
	return e.newGeneratorObject(ctx.Realm, gs)
}

// startAsyncFunction implements ECMA-262's AsyncFunctionStart: runs the
// body synchronously up to its first `await` (or to completion) before
// returning, then drives the rest from promise reactions queued on
// internal/promise's microtask queue.
func (e *Evaluator) startAsyncFunction(ctx *runtime.ExecutionContext, fn ast.FunctionLike, args []runtime.Value) *runtime.Obj {
	gs := &generatorState{async: true, realm: ctx.Realm}
	ctx.Generator = gs
	cap := promise.NewCapability(ctx.Realm)
	gs.co = suspend.Start(func(first any) any {
		return runGeneratorBody(e, ctx, fn, args, first)
	})
	e.notifyGeneratorLifecycle(1)
	e.pumpAsyncFunction(ctx.Realm, gs, cap, resumption{kind: resumeNormal})
	return cap.Promise
}

// startAsyncGenerator implements ECMA-262's [[Call]] for an async
// generator function: like startGenerator, returns its iterator object
// without running any body statement.
func (e *Evaluator) startAsyncGenerator(ctx *runtime.ExecutionContext, fnObj *runtime.Obj, fn ast.FunctionLike, args []runtime.Value) *runtime.Obj {
	gs := &generatorState{async: true, realm: ctx.Realm}
	ctx.Generator = gs
	gs.co = suspend.Start(func(first any) any {
		return runGeneratorBody(e, ctx, fn, args, first)
	})
	e.notifyGeneratorLifecycle(1)
	return e.newAsyncGeneratorObject(ctx.Realm, gs)
}

// runGeneratorBody is the coroutine body shared by every generator/async
// flavor: a throw/return completion injected before the body ever ran
// (spec's GeneratorResume on a suspendedStart generator) short-circuits
// without executing a single statement; otherwise the function body runs
// to completion, its final Completion becoming the coroutine's result.
func runGeneratorBody(e *Evaluator, ctx *runtime.ExecutionContext, fn ast.FunctionLike, args []runtime.Value, first any) any {
	if r, ok := first.(resumption); ok {
		switch r.kind {
		case resumeThrow:
			return runtime.ThrowCompletion(r.value)
		case resumeReturn:
			return runtime.ReturnCompletion(r.value)
		}
	}
	return e.runFunctionBody(ctx, fn, args)
}

// evalYield implements ECMA-262's yield/yield* evaluation: a plain yield
// suspends the coroutine and resumes with whatever completion the next
// next()/throw()/return() call injects; yield* drains a delegate iterable,
// forwarding each of the delegate's next()/throw()/return() results as this
// generator's own, the way spec's Yield* algorithm describes.
func (e *Evaluator) evalYield(ctx *runtime.ExecutionContext, n *ast.YieldExpressionNode) runtime.Completion {
	gs, ok := ctx.Generator.(*generatorState)
	if !ok || gs == nil {
		return e.throwSyntaxError("'yield' is only valid inside a generator")
	}
	var v runtime.Value = runtime.Undefined{}
	if n.Argument != nil {
		c := e.evalExpression(ctx, n.Argument)
		if c.IsAbrupt() {
			return c
		}
		v = c.Value
	}
	if n.Delegate {
		return e.evalYieldDelegate(ctx, gs, v)
	}
	return e.generatorYieldOne(ctx, gs, v)
}

// generatorYieldOne suspends at one yielded value, awaiting it first for an
// async generator (ECMA-262's AsyncGeneratorYield performs an Await before
// handing the value to the caller), then blocks until resumed.
func (e *Evaluator) generatorYieldOne(ctx *runtime.ExecutionContext, gs *generatorState, v runtime.Value) runtime.Completion {
	if gs.async {
		c := e.awaitValue(gs, v)
		if c.IsAbrupt() {
			return c
		}
		v = c.Value
	}
	injected := gs.co.Yield(yieldToken{value: v})
	return resumeCompletion(injected)
}

// evalYieldDelegate implements yield* (ECMA-262 Yield*): repeatedly calls
// the delegate's next(), forwarding each produced value as this
// generator's own yielded value, until the delegate reports done; a
// throw()/return() injected into this generator while delegating is
// forwarded to the delegate's throw()/return() method first (falling back
// to closing the delegate and rethrowing/returning directly if it lacks
// one), matching the spec's iterator-closing fallback.
func (e *Evaluator) evalYieldDelegate(ctx *runtime.ExecutionContext, gs *generatorState, iterable runtime.Value) runtime.Completion {
	iterObj, c := e.getIterator(ctx, iterable, gs.async)
	if c.IsAbrupt() {
		return c
	}
	sent := resumption{kind: resumeNormal, value: runtime.Undefined{}}
	for {
		var resultC runtime.Completion
		var hasMethod bool
		switch sent.kind {
		case resumeThrow:
			resultC, hasMethod = e.callIteratorMethod(ctx, iterObj, "throw", sent.value, gs.async)
			if !hasMethod {
				e.closeIterator(ctx, iterObj, gs.async)
				return e.throwTypeError("iterator does not have a throw method")
			}
		case resumeReturn:
			resultC, hasMethod = e.callIteratorMethod(ctx, iterObj, "return", sent.value, gs.async)
			if !hasMethod {
				return runtime.ReturnCompletion(sent.value)
			}
			if resultC.IsAbrupt() {
				return resultC
			}
			if done, val := iterResultFields(resultC.Value); done {
				return runtime.ReturnCompletion(val)
			}
		default:
			resultC, _ = e.callIteratorMethod(ctx, iterObj, "next", sent.value, gs.async)
		}
		if resultC.IsAbrupt() {
			return resultC
		}
		done, val := iterResultFields(resultC.Value)
		if done {
			return runtime.NormalCompletion(val)
		}
		injected := gs.co.Yield(yieldToken{value: val})
		sent, _ = resumeFromInjected(injected)
	}
}

func resumeFromInjected(injected any) (resumption, bool) {
	r, ok := injected.(resumption)
	return r, ok
}

// callIteratorMethod invokes name on iterObj, reporting whether the method
// exists at all (the caller decides what "absent" means for next/throw/
// return, which each have different fallback semantics per ECMA-262's
// IteratorClose/Yield*), awaiting the result first when the delegate is an
// async iterator.
func (e *Evaluator) callIteratorMethod(ctx *runtime.ExecutionContext, iterObj *runtime.Obj, name string, arg runtime.Value, isAsync bool) (runtime.Completion, bool) {
	fn, ok := iterObj.Get(runtime.StringKey(name)).(*runtime.Obj)
	if !ok || !fn.IsCallable() {
		return runtime.Completion{}, false
	}
	c := fn.Fn.Call(iterObj, []runtime.Value{arg})
	if c.IsAbrupt() {
		return c, true
	}
	if isAsync {
		return e.awaitValueInline(ctx, c.Value), true
	}
	return c, true
}

// closeIterator best-effort calls iterObj.return() (ECMA-262's
// IteratorClose), ignoring its result: used when this generator's
// delegation loop abandons a delegate because it has no throw method.
func (e *Evaluator) closeIterator(ctx *runtime.ExecutionContext, iterObj *runtime.Obj, isAsync bool) {
	if fn, ok := iterObj.Get(runtime.StringKey("return")).(*runtime.Obj); ok && fn.IsCallable() {
		fn.Fn.Call(iterObj, nil)
	}
}

func iterResultFields(v runtime.Value) (bool, runtime.Value) {
	obj, ok := v.(*runtime.Obj)
	if !ok {
		return true, runtime.Undefined{}
	}
	return runtime.ToBoolean(obj.Get(runtime.StringKey("done"))), obj.Get(runtime.StringKey("value"))
}

func (e *Evaluator) getIterator(ctx *runtime.ExecutionContext, v runtime.Value, async bool) (*runtime.Obj, runtime.Completion) {
	obj, ok := v.(*runtime.Obj)
	if !ok {
		return nil, e.throwTypeError("value is not iterable")
	}
	symbol := runtime.SymIterator
	if async {
		symbol = runtime.SymAsyncIterator
	}
	iterFn, ok := obj.Get(runtime.SymbolKey(symbol)).(*runtime.Obj)
	if !ok && async {
		// Fall back to a synchronous iterator wrapped in CreateAsyncFromSyncIterator
		// is not implemented; yield* of a sync iterable inside an async
		// generator uses the sync protocol directly instead.
		iterFn, ok = obj.Get(runtime.SymbolKey(runtime.SymIterator)).(*runtime.Obj)
	}
	if !ok || !iterFn.IsCallable() {
		return nil, e.throwTypeError("value is not iterable")
	}
	c := iterFn.Fn.Call(obj, nil)
	if c.IsAbrupt() {
		return nil, c
	}
	iterObj, ok := c.Value.(*runtime.Obj)
	if !ok {
		return nil, e.throwTypeError("iterator result is not an object")
	}
	return iterObj, runtime.NormalCompletion(nil)
}

// awaitValue suspends a coroutine at an await point and blocks until the
// driver resumes it with the settled value/throw (used from synchronous
// body code, i.e. evalAwait and AsyncGeneratorYield's implicit Await).
func (e *Evaluator) awaitValue(gs *generatorState, v runtime.Value) runtime.Completion {
	injected := gs.co.Yield(awaitToken{value: v})
	return resumeCompletion(injected)
}

// awaitValueInline awaits a value without an enclosing generatorState,
// used by yield*'s delegation loop when draining an async delegate: the
// delegate's own next()/throw()/return() call already returns a promise,
// which this generator's own coroutine must await before resuming its
// delegation loop.
func (e *Evaluator) awaitValueInline(ctx *runtime.ExecutionContext, v runtime.Value) runtime.Completion {
	gs, ok := ctx.Generator.(*generatorState)
	if !ok || gs == nil {
		return runtime.NormalCompletion(v)
	}
	return e.awaitValue(gs, v)
}

func resumeCompletion(injected any) runtime.Completion {
	r, ok := injected.(resumption)
	if !ok {
		return runtime.NormalCompletion(runtime.Undefined{})
	}
	switch r.kind {
	case resumeThrow:
		return runtime.ThrowCompletion(r.value)
	case resumeReturn:
		return runtime.ReturnCompletion(r.value)
	default:
		return runtime.NormalCompletion(r.value)
	}
}

// evalAwait implements ECMA-262's Await: suspends the running async
// function/async generator coroutine until the awaited value's promise
// settles.
func (e *Evaluator) evalAwait(ctx *runtime.ExecutionContext, n *ast.AwaitExpressionNode) runtime.Completion {
	gs, ok := ctx.Generator.(*generatorState)
	if !ok || gs == nil {
		return e.throwSyntaxError("'await' is only valid inside an async function")
	}
	c := e.evalExpression(ctx, n.Argument)
	if c.IsAbrupt() {
		return c
	}
	return e.awaitValue(gs, c.Value)
}

// pumpAsyncFunction drives an async function's coroutine forward one step,
// re-entering itself from a promise reaction whenever the body suspends at
// an await, until the body completes and settles cap.
func (e *Evaluator) pumpAsyncFunction(realm *runtime.Realm, gs *generatorState, cap *promise.Capability, r resumption) {
	sig := gs.co.Resume(r)
	if sig.Done {
		e.notifyGeneratorDone(gs)
		c, _ := sig.Result.(runtime.Completion)
		if c.Type == runtime.Throw {
			promise.Reject(cap, c.Value)
		} else {
			promise.Resolve(cap, orUndefined(c.Value))
		}
		return
	}
	tok, _ := sig.Token.(awaitToken)
	awaited := promise.PromiseResolve(realm, tok.value)
	promise.PerformPromiseThen(realm, awaited,
		func(v runtime.Value) runtime.Completion {
			e.pumpAsyncFunction(realm, gs, cap, resumption{kind: resumeNormal, value: v})
			return runtime.NormalCompletion(runtime.Undefined{})
		},
		func(v runtime.Value) runtime.Completion {
			e.pumpAsyncFunction(realm, gs, cap, resumption{kind: resumeThrow, value: v})
			return runtime.NormalCompletion(runtime.Undefined{})
		},
		nil,
	)
}

func orUndefined(v runtime.Value) runtime.Value {
	if v == nil {
		return runtime.Undefined{}
	}
	return v
}

// newGeneratorObject builds the iterator object ECMA-262's
// CreateIteratorFromClosure returns for a sync generator: next/return/throw
// methods closing over gs, plus a @@iterator returning itself. No shared
// %GeneratorPrototype% intrinsic is assembled (no builtins package wires
// one yet), so each generator gets its own copies of these methods rather
// than inheriting them — functionally equivalent for script-visible
// behavior, just not object-identity-equal across different generator
// instances.
func (e *Evaluator) newGeneratorObject(realm *runtime.Realm, gs *generatorState) *runtime.Obj {
	obj := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	obj.DefineOwnProperty(runtime.StringKey("next"), runtime.NewDataDescriptor(
		e.nativeFunction(realm, "next", 1, func(args []runtime.Value) runtime.Completion {
			return e.generatorResume(gs, resumption{kind: resumeNormal, value: argOrUndefined(args, 0)})
		}), true, false, true))
	obj.DefineOwnProperty(runtime.StringKey("return"), runtime.NewDataDescriptor(
		e.nativeFunction(realm, "return", 1, func(args []runtime.Value) runtime.Completion {
			return e.generatorResume(gs, resumption{kind: resumeReturn, value: argOrUndefined(args, 0)})
		}), true, false, true))
	obj.DefineOwnProperty(runtime.StringKey("throw"), runtime.NewDataDescriptor(
		e.nativeFunction(realm, "throw", 1, func(args []runtime.Value) runtime.Completion {
			return e.generatorResume(gs, resumption{kind: resumeThrow, value: argOrUndefined(args, 0)})
		}), true, false, true))
	obj.DefineOwnProperty(runtime.SymbolKey(runtime.SymIterator), runtime.NewDataDescriptor(
		e.nativeFunction(realm, "[Symbol.iterator]", 0, func(args []runtime.Value) runtime.Completion {
			return runtime.NormalCompletion(obj)
		}), true, false, true))
	return obj
}

// generatorResume implements ECMA-262's GeneratorResume/GeneratorResumeAbrupt:
// resuming an already-completed generator answers {value: undefined,
// done: true} for next(), {value: <argument>, done: true} for return(), and
// rethrows the injected value for throw().
func (e *Evaluator) generatorResume(gs *generatorState, r resumption) runtime.Completion {
	if gs.co.Finished() {
		switch r.kind {
		case resumeThrow:
			return runtime.ThrowCompletion(r.value)
		case resumeReturn:
			return runtime.NormalCompletion(iterResultObject(gs.realm, r.value, true))
		default:
			return runtime.NormalCompletion(iterResultObject(gs.realm, runtime.Undefined{}, true))
		}
	}
	sig := gs.co.Resume(r)
	if sig.Done {
		e.notifyGeneratorDone(gs)
		c, _ := sig.Result.(runtime.Completion)
		if c.Type == runtime.Throw {
			return c
		}
		return runtime.NormalCompletion(iterResultObject(gs.realm, orUndefined(c.Value), true))
	}
	tok, _ := sig.Token.(yieldToken)
	return runtime.NormalCompletion(iterResultObject(gs.realm, tok.value, false))
}

func argOrUndefined(args []runtime.Value, i int) runtime.Value {
	if i < len(args) {
		return args[i]
	}
	return runtime.Undefined{}
}

func iterResultObject(realm *runtime.Realm, value runtime.Value, done bool) *runtime.Obj {
	o := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	o.DefineOwnProperty(runtime.StringKey("value"), runtime.NewDataDescriptor(value, true, true, true))
	o.DefineOwnProperty(runtime.StringKey("done"), runtime.NewDataDescriptor(runtime.Boolean(done), true, true, true))
	return o
}

// nativeFunction wraps a Go closure as a minimal callable *runtime.Obj —
// used for generator/async-generator methods, which have no ECMAScript
// source to interpret.
func (e *Evaluator) nativeFunction(realm *runtime.Realm, name string, length int, fn func(args []runtime.Value) runtime.Completion) *runtime.Obj {
	o := runtime.NewOrdinaryObject(realm.Intrinsic("%Function.prototype%"))
	o.Kind = runtime.KindFunction
	o.Fn = &runtime.FunctionSlots{
		Name:   name,
		Length: length,
		Call:   func(this runtime.Value, args []runtime.Value) runtime.Completion { return fn(args) },
	}
	o.DefineOwnProperty(runtime.StringKey("name"), runtime.NewDataDescriptor(runtime.NewStringFromGo(name), false, false, true))
	o.DefineOwnProperty(runtime.StringKey("length"), runtime.NewDataDescriptor(runtime.Number(length), false, false, true))
	return o
}

// newAsyncGeneratorObject builds the async iterator object ECMA-262
// describes for async generator functions: next/return/throw all return
// Promises (rather than settling synchronously like their sync-generator
// counterparts), and requests are queued/serialized since a caller may
// call next() again before a previous call's promise has settled.
func (e *Evaluator) newAsyncGeneratorObject(realm *runtime.Realm, gs *generatorState) *runtime.Obj {
	obj := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	enqueue := func(kind resumeKind) *runtime.Obj {
		return e.nativeFunction(realm, "", 1, func(args []runtime.Value) runtime.Completion {
			cap := promise.NewCapability(realm)
			req := asyncGenRequest{resumption: resumption{kind: kind, value: argOrUndefined(args, 0)}, cap: cap}
			gs.queue = append(gs.queue, req)
			e.drainAsyncGeneratorQueue(realm, gs)
			return runtime.NormalCompletion(cap.Promise)
		})
	}
	obj.DefineOwnProperty(runtime.StringKey("next"), runtime.NewDataDescriptor(enqueue(resumeNormal), true, false, true))
	obj.DefineOwnProperty(runtime.StringKey("return"), runtime.NewDataDescriptor(enqueue(resumeReturn), true, false, true))
	obj.DefineOwnProperty(runtime.StringKey("throw"), runtime.NewDataDescriptor(enqueue(resumeThrow), true, false, true))
	obj.DefineOwnProperty(runtime.SymbolKey(runtime.SymAsyncIterator), runtime.NewDataDescriptor(
		e.nativeFunction(realm, "[Symbol.asyncIterator]", 0, func(args []runtime.Value) runtime.Completion {
			return runtime.NormalCompletion(obj)
		}), true, false, true))
	return obj
}

// drainAsyncGeneratorQueue implements ECMA-262's
// AsyncGeneratorDrainQueue: processes queued requests one at a time,
// resuming the coroutine for the head request and, once it settles or
// suspends at an await, either moving straight to the next queued request
// (if the coroutine completed) or waiting for that await's promise to
// settle before continuing (if it's mid-body).
func (e *Evaluator) drainAsyncGeneratorQueue(realm *runtime.Realm, gs *generatorState) {
	if gs.busy || len(gs.queue) == 0 {
		return
	}
	gs.busy = true
	req := gs.queue[0]
	gs.queue = gs.queue[1:]
	e.stepAsyncGenerator(realm, gs, req)
}

func (e *Evaluator) stepAsyncGenerator(realm *runtime.Realm, gs *generatorState, req asyncGenRequest) {
	if gs.co.Finished() && req.resumption.kind != resumeNormal {
		switch req.resumption.kind {
		case resumeThrow:
			promise.Reject(req.cap, req.resumption.value)
		case resumeReturn:
			promise.Resolve(req.cap, iterResultObject(realm, req.resumption.value, true))
		}
		gs.busy = false
		e.drainAsyncGeneratorQueue(realm, gs)
		return
	}
	sig := gs.co.Resume(req.resumption)
	if sig.Done {
		e.notifyGeneratorDone(gs)
		c, _ := sig.Result.(runtime.Completion)
		if c.Type == runtime.Throw {
			promise.Reject(req.cap, c.Value)
		} else {
			promise.Resolve(req.cap, iterResultObject(realm, orUndefined(c.Value), true))
		}
		gs.busy = false
		e.drainAsyncGeneratorQueue(realm, gs)
		return
	}
	switch tok := sig.Token.(type) {
	case awaitToken:
		awaited := promise.PromiseResolve(realm, tok.value)
		promise.PerformPromiseThen(realm, awaited,
			func(v runtime.Value) runtime.Completion {
				e.stepAsyncGenerator(realm, gs, asyncGenRequest{resumption: resumption{kind: resumeNormal, value: v}, cap: req.cap})
				return runtime.NormalCompletion(runtime.Undefined{})
			},
			func(v runtime.Value) runtime.Completion {
				e.stepAsyncGenerator(realm, gs, asyncGenRequest{resumption: resumption{kind: resumeThrow, value: v}, cap: req.cap})
				return runtime.NormalCompletion(runtime.Undefined{})
			},
			nil,
		)
	case yieldToken:
		promise.Resolve(req.cap, iterResultObject(realm, tok.value, false))
		gs.busy = false
		e.drainAsyncGeneratorQueue(realm, gs)
	}
}
