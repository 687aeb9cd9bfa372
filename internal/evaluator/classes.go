package evaluator

import (
	"github.com/esvm-go/esvm/ast"
	"github.com/esvm-go/esvm/internal/runtime"
)

// instanceField is one class-field initializer captured at
// ClassDefinitionEvaluation time (ECMA-262's "class field initializer
// list" stashed on the constructor), run in prototype-chain order right
// after `this` becomes available: immediately for a base class, right
// after `super(...)` returns for a derived one.
type instanceField struct {
	key       runtime.PropertyKey
	isPrivate bool
	privName  *runtime.PrivateName
	value     ast.Node // nil means "no initializer", binds undefined
}

// classFieldsData is the HostData a class constructor object carries
// listing its own (non-static) instance fields; static fields are
// evaluated once at class-definition time instead and need no such list.
type classFieldsData struct {
	fields []*instanceField
}

// pendingMember is a method/accessor/field collected while walking a class
// body, before the constructor object exists (a static member's home
// object is the constructor itself, which isn't built until every member
// has been classified).
type pendingMember struct {
	key      runtime.PropertyKey
	priv     *runtime.PrivateName
	kind     string // "method" | "get" | "set"
	fnNode   *ast.FunctionExpressionNode
	isField  bool
	field    ast.Node // field initializer expression, nil meaning no initializer
}

func (e *Evaluator) evalClassDeclaration(ctx *runtime.ExecutionContext, n *ast.ClassDeclarationNode) runtime.Completion {
	ctor, c := e.classDefinitionEvaluation(ctx, n.ID, n.SuperClass, n.Body)
	if c.IsAbrupt() {
		return c
	}
	if n.ID != nil {
		ctx.LexicalEnvironment.InitializeBinding(n.ID.Name, ctor)
	}
	return runtime.NormalCompletion(nil)
}

func (e *Evaluator) evalClassExpression(ctx *runtime.ExecutionContext, n *ast.ClassExpressionNode) runtime.Completion {
	ctor, c := e.classDefinitionEvaluation(ctx, n.ID, n.SuperClass, n.Body)
	if c.IsAbrupt() {
		return c
	}
	return runtime.NormalCompletion(ctor)
}

// classDefinitionEvaluation implements ECMA-262's ClassDefinitionEvaluation:
// builds the class's own scope (so the class name binds inside the class
// body for recursive self-reference, matching `let`-style TDZ), evaluates
// the superclass expression, derives the constructor's and prototype's
// respective [[Prototype]] links from it, then installs every member
// (methods/accessors/private methods onto the prototype or constructor,
// fields deferred to per-instance/per-class initializer lists) walking
// ClassBodyNode.Body in source order.
func (e *Evaluator) classDefinitionEvaluation(ctx *runtime.ExecutionContext, id *ast.IdentifierNode, superClassExpr ast.Node, body *ast.ClassBodyNode) (*runtime.Obj, runtime.Completion) {
	classEnv := runtime.NewDeclarativeEnvironment(ctx.LexicalEnvironment)
	if id != nil {
		classEnv.CreateImmutableBinding(id.Name, true)
	}
	classCtx := *ctx
	classCtx.LexicalEnvironment = classEnv
	classCtx.PrivateEnvironment = runtime.NewPrivateEnvironment(ctx.PrivateEnvironment)

	var protoParent, ctorParent *runtime.Obj
	constructorKind := runtime.ConstructorBase
	if superClassExpr != nil {
		sc := e.evalExpression(&classCtx, superClassExpr)
		if sc.IsAbrupt() {
			return nil, sc
		}
		if _, isNull := sc.Value.(runtime.Null); isNull {
			protoParent, ctorParent = nil, ctx.Realm.Intrinsic("%Function.prototype%")
		} else {
			superCtor, ok := sc.Value.(*runtime.Obj)
			if !ok || !superCtor.IsConstructor() {
				return nil, e.throwTypeError("Class extends value is not a constructor")
			}
			protoVal := superCtor.Get(runtime.StringKey("prototype"))
			protoParent, ok = protoVal.(*runtime.Obj)
			if !ok {
				return nil, e.throwTypeError("Class extends value does not have a valid prototype")
			}
			ctorParent = superCtor
		}
		constructorKind = runtime.ConstructorDerived
	} else {
		protoParent = ctx.Realm.Intrinsic("%Object.prototype%")
	}

	proto := runtime.NewOrdinaryObject(protoParent)

	// Register every private name declared anywhere in the body before
	// evaluating any member, since a method may reference a private name
	// declared later in source order (spec: private names are hoisted to
	// the class's PrivateEnvironment).
	for _, m := range body.Body {
		switch md := m.(type) {
		case *ast.PropertyDefinitionNode:
			if md.IsPrivate {
				declarePrivateName(classCtx.PrivateEnvironment, privateKeyName(md.Key))
			}
		case *ast.MethodDefinitionNode:
			if _, ok := md.Key.(*ast.PrivateIdentifierNode); ok {
				declarePrivateName(classCtx.PrivateEnvironment, privateKeyName(md.Key))
			}
		}
	}

	var ctorNode *ast.FunctionExpressionNode
	var instanceMembers, staticMembers []pendingMember

	for _, m := range body.Body {
		switch md := m.(type) {
		case *ast.MethodDefinitionNode:
			if md.Kind == "constructor" {
				ctorNode = md.Value
				continue
			}
			key, priv, c := e.classMemberKey(&classCtx, md.Key, md.Computed)
			if c != nil {
				return nil, *c
			}
			pm := pendingMember{key: key, priv: priv, kind: md.Kind, fnNode: md.Value}
			if md.Static {
				staticMembers = append(staticMembers, pm)
			} else {
				instanceMembers = append(instanceMembers, pm)
			}
		case *ast.PropertyDefinitionNode:
			key, priv, c := e.classMemberKey(&classCtx, md.Key, md.Computed)
			if c != nil {
				return nil, *c
			}
			pm := pendingMember{key: key, priv: priv, isField: true, field: md.Value}
			if md.Static {
				staticMembers = append(staticMembers, pm)
			} else {
				instanceMembers = append(instanceMembers, pm)
			}
		}
	}

	var ctorFn ast.FunctionLike
	if ctorNode != nil {
		ctorFn = ctorNode
	} else {
		ctorFn = syntheticConstructor(constructorKind)
	}
	ctor := e.makeFunction(&classCtx, ctorFn, classEnv, classCtx.PrivateEnvironment, false)
	markClassStrict(ctor)
	ctor.Fn.IsClassConstructor = true
	ctor.Fn.ConstructorKind = constructorKind
	ctor.Fn.HomeObject = proto
	if ctorParent != nil {
		ctor.SetPrototypeOf(ctorParent)
	}
	ctor.DefineOwnProperty(runtime.StringKey("prototype"), runtime.NewDataDescriptor(proto, false, false, false))
	proto.DefineOwnProperty(runtime.StringKey("constructor"), runtime.NewDataDescriptor(ctor, true, false, true))

	var fields classFieldsData
	for _, pm := range instanceMembers {
		if pm.isField {
			fields.fields = append(fields.fields, &instanceField{key: pm.key, isPrivate: pm.priv != nil, privName: pm.priv, value: pm.field})
			continue
		}
		fn := e.makeFunction(&classCtx, pm.fnNode, classEnv, classCtx.PrivateEnvironment, false)
		markClassStrict(fn)
		fn.Fn.HomeObject = proto
		fn.Fn.Construct = nil
		installClassMethod(proto, pm.key, pm.priv, fn, pm.kind)
	}
	ctor.HostData = &fields

	if id != nil {
		classEnv.InitializeBinding(id.Name, ctor)
		ctor.DefineOwnProperty(runtime.StringKey("name"), runtime.NewDataDescriptor(runtime.NewStringFromGo(id.Name), false, false, true))
	}

	staticCtx := e.newFunctionContext(ctx.Realm, ctor, ctor, nil, false)
	staticCtx.PrivateEnvironment = classCtx.PrivateEnvironment
	for _, pm := range staticMembers {
		if pm.isField {
			f := &instanceField{key: pm.key, isPrivate: pm.priv != nil, privName: pm.priv, value: pm.field}
			if c := e.runFieldInitializer(staticCtx, ctor, f); c.IsAbrupt() {
				return nil, c
			}
			continue
		}
		fn := e.makeFunction(&classCtx, pm.fnNode, classEnv, classCtx.PrivateEnvironment, false)
		markClassStrict(fn)
		fn.Fn.HomeObject = ctor
		fn.Fn.Construct = nil
		installClassMethod(ctor, pm.key, pm.priv, fn, pm.kind)
	}

	return ctor, runtime.NormalCompletion(nil)
}

// markClassStrict forces strict-function semantics on a class member's
// function object: class bodies are always strict code, independent of the
// parser's annotation on the enclosing script.
func markClassStrict(fn *runtime.Obj) {
	fn.Fn.Strict = true
	if fn.Fn.ThisMode == runtime.ThisGlobal {
		fn.Fn.ThisMode = runtime.ThisStrict
	}
}

func installClassMethod(target *runtime.Obj, key runtime.PropertyKey, priv *runtime.PrivateName, fn *runtime.Obj, kind string) {
	if priv != nil {
		if target.Priv == nil {
			target.Priv = &runtime.PrivateSlots{Elements: map[*runtime.PrivateName]runtime.Value{}}
		}
		target.Priv.Elements[priv] = fn
		return
	}
	switch kind {
	case "get":
		existing := target.GetOwnProperty(key)
		var setter runtime.Value
		if existing != nil {
			setter = existing.Set
		}
		target.DefineOwnProperty(key, runtime.NewAccessorDescriptor(fn, setter, false, true))
	case "set":
		existing := target.GetOwnProperty(key)
		var getter runtime.Value
		if existing != nil {
			getter = existing.Get
		}
		target.DefineOwnProperty(key, runtime.NewAccessorDescriptor(getter, fn, false, true))
	default:
		target.DefineOwnProperty(key, runtime.NewDataDescriptor(fn, true, false, true))
	}
}

func (e *Evaluator) classMemberKey(ctx *runtime.ExecutionContext, keyNode ast.Node, computed bool) (runtime.PropertyKey, *runtime.PrivateName, *runtime.Completion) {
	if priv, ok := keyNode.(*ast.PrivateIdentifierNode); ok {
		name := ctx.PrivateEnvironment.Resolve(priv.Name)
		return runtime.PropertyKey{}, name, nil
	}
	if computed {
		c := e.evalExpression(ctx, keyNode)
		if c.IsAbrupt() {
			return runtime.PropertyKey{}, nil, &c
		}
		return e.toPropertyKey(c.Value), nil, nil
	}
	switch k := keyNode.(type) {
	case *ast.IdentifierNode:
		return runtime.StringKey(k.Name), nil, nil
	case *ast.StringLiteralNode:
		return runtime.StringKey(k.Value), nil, nil
	case *ast.NumericLiteralNode:
		return runtime.StringKey(runtime.Number(k.Value).String()), nil, nil
	}
	return runtime.PropertyKey{}, nil, nil
}

// declarePrivateName adds description to env's own scope if some enclosing
// scope hasn't already declared it (ECMA-262: private names are hoisted
// per-class, one PrivateName identity per description per class body).
func declarePrivateName(env *runtime.PrivateEnvironment, description string) {
	if description == "" {
		return
	}
	if _, exists := env.Names[description]; exists {
		return
	}
	env.Names[description] = runtime.NewPrivateName(description)
}

func privateKeyName(keyNode ast.Node) string {
	if priv, ok := keyNode.(*ast.PrivateIdentifierNode); ok {
		return priv.Name
	}
	return ""
}

// syntheticConstructor supplies the default constructor body ECMA-262
// requires when a class omits one: a base class gets an empty body, a
// derived class gets the equivalent of `constructor(...args){ super(...args); }`.
// Represented directly as an ast.FunctionExpressionNode with a synthesized
// body rather than a hand-rolled Go closure, so it flows through the exact
// same makeFunction/runFunctionBody path as an authored constructor.
func syntheticConstructor(kind runtime.ConstructorKind) ast.FunctionLike {
	if kind != runtime.ConstructorDerived {
		return &ast.FunctionExpressionNode{Body: &ast.BlockStatementNode{Body: nil}}
	}
	restParam := &ast.RestElementNode{Argument: &ast.IdentifierNode{Name: "args"}}
	superCall := &ast.ExpressionStatementNode{
		Expression: &ast.CallExpressionNode{
			Callee:    &ast.SuperExpressionNode{},
			Arguments: []ast.Node{&ast.SpreadElementNode{Argument: &ast.IdentifierNode{Name: "args"}}},
		},
	}
	return &ast.FunctionExpressionNode{
		Params: []ast.Node{restParam},
		Body:   &ast.BlockStatementNode{Body: []ast.Node{superCall}},
	}
}

// initializeInstanceFields runs every non-static field initializer declared
// on fnObj's class, in source order, against the newly created/super-
// returned instance.
func (e *Evaluator) initializeInstanceFields(ctx *runtime.ExecutionContext, fnObj *runtime.Obj, instance *runtime.Obj) runtime.Completion {
	data, ok := fnObj.HostData.(*classFieldsData)
	if !ok || data == nil {
		return runtime.NormalCompletion(nil)
	}
	fieldCtx := e.newFunctionContext(ctx.Realm, fnObj, instance, nil, false)
	fieldCtx.PrivateEnvironment = fnObj.Fn.PrivateEnvironment
	for _, f := range data.fields {
		if c := e.runFieldInitializer(fieldCtx, instance, f); c.IsAbrupt() {
			return c
		}
	}
	return runtime.NormalCompletion(nil)
}

func (e *Evaluator) runFieldInitializer(ctx *runtime.ExecutionContext, target *runtime.Obj, f *instanceField) runtime.Completion {
	var v runtime.Value = runtime.Undefined{}
	if f.value != nil {
		c := e.evalExpression(ctx, f.value)
		if c.IsAbrupt() {
			return c
		}
		v = c.Value
	}
	if f.isPrivate {
		runtime.PrivateElementSet(target, f.privName, v)
		return runtime.NormalCompletion(nil)
	}
	target.DefineOwnProperty(f.key, runtime.NewDataDescriptor(v, true, true, true))
	return runtime.NormalCompletion(nil)
}

// evalSuperCall implements ECMA-262's super(...) evaluation inside a
// derived class constructor: constructs the superclass (found via the
// running constructor's own [[Prototype]] link, which ClassDefinitionEvaluation
// set to the superclass constructor), binds the result as `this`, then runs
// this class's own instance field initializers.
func (e *Evaluator) evalSuperCall(ctx *runtime.ExecutionContext, n *ast.CallExpressionNode) runtime.Completion {
	fenv := enclosingFunctionEnvironment(ctx.LexicalEnvironment)
	if fenv == nil || fenv.FunctionObject == nil || fenv.FunctionObject.Fn.ConstructorKind != runtime.ConstructorDerived {
		return e.throwSyntaxError("'super' keyword is only valid inside a derived class constructor")
	}
	ctorObj := fenv.FunctionObject
	parent := ctorObj.GetPrototypeOf()
	if parent == nil || !parent.IsConstructor() {
		return e.throwTypeError("Super constructor is not a constructor")
	}
	args, ac := e.evalArguments(ctx, n.Arguments)
	if ac.IsAbrupt() {
		return ac
	}
	newTarget := fenv.NewTarget
	if newTarget == nil {
		newTarget = ctorObj
	}
	if e.CallStack.Depth() >= e.MaxCallDepth {
		return e.throwRangeError("Maximum call stack size exceeded")
	}
	rc := parent.Fn.Construct(args, newTarget)
	if rc.IsAbrupt() {
		return rc
	}
	thisObj, ok := rc.Value.(*runtime.Obj)
	if !ok {
		return e.throwTypeError("Super constructor did not return an object")
	}
	if bc := fenv.BindThisValue(thisObj); bc.IsAbrupt() {
		return bc
	}
	if c := e.initializeInstanceFields(ctx, ctorObj, thisObj); c.IsAbrupt() {
		return c
	}
	return runtime.NormalCompletion(thisObj)
}
