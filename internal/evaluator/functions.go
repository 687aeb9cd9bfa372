package evaluator

import (
	"github.com/esvm-go/esvm/ast"
	"github.com/esvm-go/esvm/internal/runtime"
)

// instantiateFunctionObject implements ECMA-262's OrdinaryFunctionCreate
// for function declarations/expressions: captures the defining lexical
// environment and private environment by closure, wires Call/Construct to
// runFunctionBody, and (for non-arrow, non-generator, non-async functions)
// links a fresh
// `.prototype` object the way MakeConstructor does. Call/Construct are
// closures stored on the object rather than an interpreter dispatching on
// an AST pointer each call.
func (e *Evaluator) instantiateFunctionObject(ctx *runtime.ExecutionContext, fn ast.FunctionLike) *runtime.Obj {
	return e.makeFunction(ctx, fn, ctx.LexicalEnvironment, ctx.PrivateEnvironment, false)
}

func (e *Evaluator) instantiateArrowFunction(ctx *runtime.ExecutionContext, fn *ast.ArrowFunctionExpressionNode) *runtime.Obj {
	return e.makeFunction(ctx, fn, ctx.LexicalEnvironment, ctx.PrivateEnvironment, true)
}

func (e *Evaluator) makeFunction(ctx *runtime.ExecutionContext, fn ast.FunctionLike, scope runtime.EnvironmentRecord, privEnv *runtime.PrivateEnvironment, isArrow bool) *runtime.Obj {
	proto := ctx.Realm.Intrinsic("%Function.prototype%")
	obj := runtime.NewOrdinaryObject(proto)
	obj.Kind = runtime.KindFunction
	obj.Realm = ctx.Realm

	// Strictness comes from the parser's propagated annotation on the
	// function node; it decides ThisMode for non-arrows (ThisGlobal means
	// a sloppy call substitutes the global object for a nullish `this`).
	strict := fn.IsStrict()
	thisMode := runtime.ThisStrict
	switch {
	case isArrow:
		thisMode = runtime.ThisLexical
	case !strict:
		thisMode = runtime.ThisGlobal
	}

	slots := &runtime.FunctionSlots{
		Environment:        scope,
		PrivateEnvironment: privEnv,
		FormalParameters:   fn.FunctionParams(),
		ECMAScriptCode:     fn.FunctionBody(),
		ThisMode:           thisMode,
		Strict:             strict,
		Name:               fn.Name(),
		Length:             countExpectedArgs(fn.FunctionParams()),
		IsGenerator:        fn.IsGenerator(),
		IsAsync:            fn.IsAsync(),
	}
	obj.Fn = slots

	slots.Call = func(this runtime.Value, args []runtime.Value) runtime.Completion {
		return e.callFunction(ctx.Realm, obj, fn, this, args, nil, isArrow)
	}
	if !isArrow && !fn.IsGenerator() && !fn.IsAsync() {
		slots.Construct = func(args []runtime.Value, newTarget *runtime.Obj) runtime.Completion {
			return e.constructOrdinaryFunction(ctx.Realm, obj, fn, args, newTarget)
		}
		protoObj := runtime.NewOrdinaryObject(ctx.Realm.Intrinsic("%Object.prototype%"))
		protoObj.DefineOwnProperty(runtime.StringKey("constructor"), runtime.NewDataDescriptor(obj, true, false, true))
		obj.DefineOwnProperty(runtime.StringKey("prototype"), runtime.NewDataDescriptor(protoObj, true, false, false))
	}
	obj.DefineOwnProperty(runtime.StringKey("name"), runtime.NewDataDescriptor(runtime.NewStringFromGo(fn.Name()), false, false, true))
	obj.DefineOwnProperty(runtime.StringKey("length"), runtime.NewDataDescriptor(runtime.Number(slots.Length), false, false, true))
	return obj
}

// countExpectedArgs implements ECMA-262's "expected argument count" rule:
// counts leading simple parameters, stopping at the first default-valued
// or rest parameter.
func countExpectedArgs(params []ast.Node) int {
	n := 0
	for _, p := range params {
		switch p.(type) {
		case *ast.AssignmentPatternNode, *ast.RestElementNode:
			return n
		}
		n++
	}
	return n
}

// newFunctionContext builds the execution context for one call/construct of
// an ECMAScript function: a FunctionEnvironment as both lexical and variable
// environment (ECMA-262's PrepareForOrdinaryCall), with `this` bound
// eagerly for non-derived/non-arrow calls.
func (e *Evaluator) newFunctionContext(realm *runtime.Realm, fnObj *runtime.Obj, this runtime.Value, newTarget *runtime.Obj, isArrow bool) *runtime.ExecutionContext {
	if isArrow {
		return &runtime.ExecutionContext{
			Function:            fnObj,
			Realm:               realm,
			LexicalEnvironment:  fnObj.Fn.Environment,
			VariableEnvironment: fnObj.Fn.Environment,
			PrivateEnvironment:  fnObj.Fn.PrivateEnvironment,
		}
	}
	fenv := runtime.NewFunctionEnvironment(fnObj, newTarget, fnObj.Fn.Environment)
	if fenv.ThisMode != runtime.ThisLexical && fnObj.Fn.ConstructorKind != runtime.ConstructorDerived {
		// OrdinaryCallBindThis: a sloppy (ThisGlobal) call substitutes the
		// global object for a nullish `this`; strict calls bind it as-is.
		if fenv.ThisMode == runtime.ThisGlobal {
			switch this.(type) {
			case nil, runtime.Undefined, runtime.Null:
				this = realm.GlobalObj
			}
		}
		fenv.BindThisValue(this)
	}
	return &runtime.ExecutionContext{
		Function:            fnObj,
		Realm:                realm,
		LexicalEnvironment:  fenv,
		VariableEnvironment: fenv,
		PrivateEnvironment:  fnObj.Fn.PrivateEnvironment,
	}
}

// runFunctionBody installs the arguments object (non-arrow functions only)
// and runs functionDeclarationInstantiation in ctx, then runs fn's body to
// completion, returning the function-call-level completion
// (OrdinaryCallEvaluateBody): Normal/Return both yield a value,
// Throw propagates.
func (e *Evaluator) runFunctionBody(ctx *runtime.ExecutionContext, fn ast.FunctionLike, args []runtime.Value) runtime.Completion {
	if !fn.IsArrow() {
		e.installArgumentsObject(ctx, fn, args)
	}
	if c := e.functionDeclarationInstantiation(ctx, fn, args); c.IsAbrupt() {
		return c
	}
	body := fn.FunctionBody()
	var result runtime.Completion
	if arrow, ok := fn.(*ast.ArrowFunctionExpressionNode); ok && arrow.ExpressionBody {
		result = e.evalExpression(ctx, body)
		if result.IsAbrupt() {
			return result
		}
		return runtime.ReturnCompletion(result.Value)
	}
	block, ok := body.(*ast.BlockStatementNode)
	if !ok {
		return runtime.NormalCompletion(runtime.Undefined{})
	}
	result = e.evalStatementList(ctx, block.Body)
	if result.Type == runtime.Throw {
		return result
	}
	if result.Type == runtime.Return {
		return runtime.NormalCompletion(result.Value)
	}
	return runtime.NormalCompletion(runtime.Undefined{})
}

// installArgumentsObject creates the (unmapped) arguments exotic object
// ECMA-262 requires for every non-arrow call and binds it in the callee's
// top-level scope, unless a plain identifier parameter is named
// "arguments". It runs before functionDeclarationInstantiation, so the
// body's own declarations are not yet bound when it checks. This
// evaluator always builds the unmapped form (Args.
// ParameterMap left nil), which internal/runtime/exotic.go's fallback
// already treats as a plain ordinary object — sloppy-mode parameter
// aliasing through `arguments[i]` is not implemented.
func (e *Evaluator) installArgumentsObject(ctx *runtime.ExecutionContext, fn ast.FunctionLike, args []runtime.Value) {
	env := ctx.VariableEnvironment
	if env.HasBinding("arguments") {
		return
	}
	for _, p := range fn.FunctionParams() {
		if id, ok := p.(*ast.IdentifierNode); ok && id.Name == "arguments" {
			return
		}
	}
	proto := ctx.Realm.Intrinsic("%Object.prototype%")
	argsObj := runtime.NewOrdinaryObject(proto)
	argsObj.Kind = runtime.KindArguments
	argsObj.Args = &runtime.ArgumentsSlots{}
	for i, v := range args {
		argsObj.DefineOwnProperty(runtime.StringKey(itoa(i)), runtime.NewDataDescriptor(v, true, true, true))
	}
	argsObj.DefineOwnProperty(runtime.StringKey("length"), runtime.NewDataDescriptor(runtime.Number(len(args)), true, false, true))
	if valuesFn := ctx.Realm.Intrinsic("%Array.prototype.values%"); valuesFn != nil {
		argsObj.DefineOwnProperty(runtime.SymbolKey(runtime.SymIterator), runtime.NewDataDescriptor(valuesFn, true, false, true))
	}
	env.CreateMutableBinding("arguments", false)
	env.InitializeBinding("arguments", argsObj)
}

// callFunction dispatches ECMA-262's [[Call]] across the sync/generator/
// async combinations: a generator or async-generator function returns its
// iterator object without running any body statements yet (suspendedStart);
// a plain async function kicks off a coroutine driven against
// internal/promise and returns its promise immediately; everything else
// runs synchronously to completion.
func (e *Evaluator) callFunction(realm *runtime.Realm, fnObj *runtime.Obj, fn ast.FunctionLike, this runtime.Value, args []runtime.Value, newTarget *runtime.Obj, isArrow bool) runtime.Completion {
	if e.CallStack.Depth() >= e.MaxCallDepth {
		return e.throwRangeError("Maximum call stack size exceeded")
	}
	ctx := e.newFunctionContext(realm, fnObj, this, newTarget, isArrow)
	e.CallStack.Push(ctx)
	defer e.CallStack.Pop()

	switch {
	case fn.IsGenerator() && fn.IsAsync():
		return runtime.NormalCompletion(e.startAsyncGenerator(ctx, fnObj, fn, args))
	case fn.IsGenerator():
		return runtime.NormalCompletion(e.startGenerator(ctx, fnObj, fn, args))
	case fn.IsAsync():
		return runtime.NormalCompletion(e.startAsyncFunction(ctx, fn, args))
	default:
		return e.runFunctionBody(ctx, fn, args)
	}
}

// constructOrdinaryFunction implements ECMA-262's [[Construct]] for a
// base (non-derived, non-arrow, non-generator/async) function: allocates a
// fresh ordinary object linked to the function's `.prototype`, runs the
// body with `this` already bound to it, and returns the body's returned
// object (if any) or the newly allocated one otherwise.
func (e *Evaluator) constructOrdinaryFunction(realm *runtime.Realm, fnObj *runtime.Obj, fn ast.FunctionLike, args []runtime.Value, newTarget *runtime.Obj) runtime.Completion {
	if e.CallStack.Depth() >= e.MaxCallDepth {
		return e.throwRangeError("Maximum call stack size exceeded")
	}
	if newTarget == nil {
		newTarget = fnObj
	}

	// A derived class constructor's `this` does not exist until its body
	// calls super(...); an ordinary/base constructor
	// allocates `this` eagerly and binds it before the body runs.
	if fnObj.Fn.IsClassConstructor && fnObj.Fn.ConstructorKind == runtime.ConstructorDerived {
		ctx := e.newFunctionContext(realm, fnObj, nil, newTarget, false)
		e.CallStack.Push(ctx)
		defer e.CallStack.Pop()
		c := e.runFunctionBody(ctx, fn, args)
		if c.IsAbrupt() {
			return c
		}
		fenv := ctx.LexicalEnvironment.(*runtime.FunctionEnvironment)
		thisC := fenv.GetThisBinding()
		if thisC.IsAbrupt() {
			return thisC
		}
		if resultObj, ok := c.Value.(*runtime.Obj); ok {
			return runtime.NormalCompletion(resultObj)
		}
		return runtime.NormalCompletion(thisC.Value)
	}

	protoVal := newTarget.Get(runtime.StringKey("prototype"))
	proto, ok := protoVal.(*runtime.Obj)
	if !ok {
		proto = realm.Intrinsic("%Object.prototype%")
	}
	thisObj := runtime.NewOrdinaryObject(proto)

	ctx := e.newFunctionContext(realm, fnObj, thisObj, newTarget, false)
	e.CallStack.Push(ctx)
	defer e.CallStack.Pop()

	if fnObj.Fn.IsClassConstructor {
		if c := e.initializeInstanceFields(ctx, fnObj, thisObj); c.IsAbrupt() {
			return c
		}
	}
	c := e.runFunctionBody(ctx, fn, args)
	if c.IsAbrupt() {
		return c
	}
	if resultObj, ok := c.Value.(*runtime.Obj); ok {
		return runtime.NormalCompletion(resultObj)
	}
	return runtime.NormalCompletion(thisObj)
}

// evalCall implements ECMA-262's function-call evaluation: resolves the
// callee (tracking `this` for member/optional calls), short-circuits an
// optional chain whose base was nullish, and special-cases `super(...)`.
func (e *Evaluator) evalCall(ctx *runtime.ExecutionContext, n *ast.CallExpressionNode) runtime.Completion {
	if _, ok := n.Callee.(*ast.SuperExpressionNode); ok {
		return e.evalSuperCall(ctx, n)
	}

	var thisArg runtime.Value = runtime.Undefined{}
	var calleeVal runtime.Value
	if member, ok := n.Callee.(*ast.MemberExpressionNode); ok {
		rr := e.evalMemberReference(ctx, member)
		if rr.c.IsAbrupt() {
			return rr.c
		}
		if member.Optional && rr.ref.BaseValue == nil && rr.ref.BaseEnv == nil {
			return runtime.NormalCompletion(runtime.Undefined{})
		}
		gc := runtime.GetValue(ctx.Realm, rr.ref)
		if gc.IsAbrupt() {
			return gc
		}
		calleeVal = gc.Value
		thisArg = rr.ref.GetThisValue()
	} else {
		cc := e.evalExpression(ctx, n.Callee)
		if cc.IsAbrupt() {
			return cc
		}
		calleeVal = cc.Value
	}

	if n.Optional && isNullish(calleeVal) {
		return runtime.NormalCompletion(runtime.Undefined{})
	}

	args, ac := e.evalArguments(ctx, n.Arguments)
	if ac.IsAbrupt() {
		return ac
	}

	fnObj, ok := calleeVal.(*runtime.Obj)
	if !ok || !fnObj.IsCallable() {
		return e.throwTypeError(calleeName(n.Callee) + " is not a function")
	}
	if e.CallStack.Depth() >= e.MaxCallDepth {
		return e.throwRangeError("Maximum call stack size exceeded")
	}
	return fnObj.Fn.Call(thisArg, args)
}

func calleeName(n ast.Node) string {
	switch c := n.(type) {
	case *ast.IdentifierNode:
		return c.Name
	case *ast.MemberExpressionNode:
		if id, ok := c.Property.(*ast.IdentifierNode); ok {
			return id.Name
		}
	}
	return "value"
}

// evalArguments evaluates a call/new argument list, expanding any
// SpreadElementNode entries via iterableToSlice (ArgumentListEvaluation).
func (e *Evaluator) evalArguments(ctx *runtime.ExecutionContext, nodes []ast.Node) ([]runtime.Value, runtime.Completion) {
	var args []runtime.Value
	for _, a := range nodes {
		if spread, ok := a.(*ast.SpreadElementNode); ok {
			c := e.evalExpression(ctx, spread.Argument)
			if c.IsAbrupt() {
				return nil, c
			}
			items, ic := e.iterableToSlice(ctx, c.Value)
			if ic.IsAbrupt() {
				return nil, ic
			}
			args = append(args, items...)
			continue
		}
		c := e.evalExpression(ctx, a)
		if c.IsAbrupt() {
			return nil, c
		}
		args = append(args, c.Value)
	}
	return args, runtime.NormalCompletion(nil)
}

// evalNew implements ECMA-262's `new` evaluation: requires a constructor,
// evaluates arguments, and delegates to [[Construct]].
func (e *Evaluator) evalNew(ctx *runtime.ExecutionContext, n *ast.NewExpressionNode) runtime.Completion {
	cc := e.evalExpression(ctx, n.Callee)
	if cc.IsAbrupt() {
		return cc
	}
	ctor, ok := cc.Value.(*runtime.Obj)
	if !ok || !ctor.IsConstructor() {
		return e.throwTypeError(calleeName(n.Callee) + " is not a constructor")
	}
	args, ac := e.evalArguments(ctx, n.Arguments)
	if ac.IsAbrupt() {
		return ac
	}
	if e.CallStack.Depth() >= e.MaxCallDepth {
		return e.throwRangeError("Maximum call stack size exceeded")
	}
	return ctor.Fn.Construct(args, ctor)
}
