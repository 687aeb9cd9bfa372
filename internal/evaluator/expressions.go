package evaluator

import (
	"math"
	"math/big"

	"github.com/esvm-go/esvm/ast"
	"github.com/esvm-go/esvm/internal/runtime"
)

func (e *Evaluator) evalExpression(ctx *runtime.ExecutionContext, n ast.Node) runtime.Completion {
	switch expr := n.(type) {
	case *ast.NumericLiteralNode:
		return runtime.NormalCompletion(runtime.Number(expr.Value))
	case *ast.StringLiteralNode:
		return runtime.NormalCompletion(runtime.NewStringFromGo(expr.Value))
	case *ast.BooleanLiteralNode:
		return runtime.NormalCompletion(runtime.Boolean(expr.Value))
	case *ast.NullLiteralNode:
		return runtime.NormalCompletion(runtime.Null{})
	case *ast.BigIntLiteralNode:
		v, ok := new(big.Int).SetString(expr.Raw, 10)
		if !ok {
			return e.throwSyntaxError("invalid BigInt literal")
		}
		return runtime.NormalCompletion(runtime.NewBigInt(v))
	case *ast.IdentifierNode:
		if expr.Name == "undefined" {
			return runtime.NormalCompletion(runtime.Undefined{})
		}
		ref := runtime.ResolveBinding(ctx.LexicalEnvironment, expr.Name, expr.Strict)
		return runtime.GetValue(ctx.Realm, ref)
	case *ast.ThisExpressionNode:
		return e.evalThis(ctx)
	case *ast.TemplateLiteralNode:
		return e.evalTemplateLiteral(ctx, expr)
	case *ast.ArrayExpressionNode:
		return e.evalArrayExpression(ctx, expr)
	case *ast.ObjectExpressionNode:
		return e.evalObjectExpression(ctx, expr)
	case *ast.FunctionExpressionNode:
		return runtime.NormalCompletion(e.instantiateFunctionObject(ctx, expr))
	case *ast.ArrowFunctionExpressionNode:
		return runtime.NormalCompletion(e.instantiateArrowFunction(ctx, expr))
	case *ast.ClassExpressionNode:
		return e.evalClassExpression(ctx, expr)
	case *ast.UnaryExpressionNode:
		return e.evalUnary(ctx, expr)
	case *ast.UpdateExpressionNode:
		return e.evalUpdate(ctx, expr)
	case *ast.BinaryExpressionNode:
		return e.evalBinary(ctx, expr)
	case *ast.LogicalExpressionNode:
		return e.evalLogical(ctx, expr)
	case *ast.AssignmentExpressionNode:
		return e.evalAssignment(ctx, expr)
	case *ast.ConditionalExpressionNode:
		tc := e.evalExpression(ctx, expr.Test)
		if tc.IsAbrupt() {
			return tc
		}
		if runtime.ToBoolean(tc.Value) {
			return e.evalExpression(ctx, expr.Consequent)
		}
		return e.evalExpression(ctx, expr.Alternate)
	case *ast.SequenceExpressionNode:
		var last runtime.Completion
		for _, sub := range expr.Expressions {
			last = e.evalExpression(ctx, sub)
			if last.IsAbrupt() {
				return last
			}
		}
		return last
	case *ast.CallExpressionNode:
		return e.evalCall(ctx, expr)
	case *ast.NewExpressionNode:
		return e.evalNew(ctx, expr)
	case *ast.MemberExpressionNode:
		rr := e.evalMemberReference(ctx, expr)
		if rr.c.IsAbrupt() {
			return rr.c
		}
		if rr.ref.BaseValue == nil && rr.ref.BaseEnv == nil && rr.c.Value == nil {
			return runtime.NormalCompletion(runtime.Undefined{}) // short-circuited optional chain
		}
		return runtime.GetValue(ctx.Realm, rr.ref)
	case *ast.SpreadElementNode:
		return e.evalExpression(ctx, expr.Argument)
	case *ast.YieldExpressionNode:
		return e.evalYield(ctx, expr)
	case *ast.AwaitExpressionNode:
		return e.evalAwait(ctx, expr)
	case *ast.TaggedTemplateExpressionNode:
		return e.evalTaggedTemplate(ctx, expr)
	case *ast.MetaPropertyNode:
		return e.evalMetaProperty(ctx, expr)
	case *ast.SuperExpressionNode:
		return e.throwSyntaxError("'super' keyword is only valid inside a method")
	default:
		return e.throwSyntaxError("unsupported expression node")
	}
}

func (e *Evaluator) evalThis(ctx *runtime.ExecutionContext) runtime.Completion {
	fenv := enclosingFunctionEnvironment(ctx.LexicalEnvironment)
	if fenv != nil && fenv.HasThisBinding() {
		return fenv.GetThisBinding()
	}
	if genv, ok := globalEnvOf(ctx.LexicalEnvironment); ok {
		return runtime.NormalCompletion(genv.GetThisBinding())
	}
	return runtime.NormalCompletion(runtime.Undefined{})
}

func globalEnvOf(env runtime.EnvironmentRecord) (*runtime.GlobalEnvironment, bool) {
	for e := env; e != nil; e = e.Outer() {
		if g, ok := e.(*runtime.GlobalEnvironment); ok {
			return g, true
		}
	}
	return nil, false
}

func (e *Evaluator) evalMetaProperty(ctx *runtime.ExecutionContext, n *ast.MetaPropertyNode) runtime.Completion {
	if n.Meta == "new" && n.Property == "target" {
		if ctx.Function != nil {
			c := e.CallStack.Current()
			_ = c
		}
		if nt := newTargetOf(ctx); nt != nil {
			return runtime.NormalCompletion(nt)
		}
		return runtime.NormalCompletion(runtime.Undefined{})
	}
	return runtime.NormalCompletion(runtime.Undefined{})
}

func newTargetOf(ctx *runtime.ExecutionContext) *runtime.Obj {
	if fenv := enclosingFunctionEnvironment(ctx.LexicalEnvironment); fenv != nil {
		return fenv.NewTarget
	}
	return nil
}

func (e *Evaluator) evalTemplateLiteral(ctx *runtime.ExecutionContext, n *ast.TemplateLiteralNode) runtime.Completion {
	var units []uint16
	for i, q := range n.Quasis {
		units = append(units, []uint16(runtime.NewStringFromGo(q.Cooked))...)
		if i < len(n.Expressions) {
			c := e.evalExpression(ctx, n.Expressions[i])
			if c.IsAbrupt() {
				return c
			}
			units = append(units, []uint16(runtime.NewStringFromGo(e.toGoString(c.Value)))...)
		}
	}
	return runtime.NormalCompletion(runtime.String(units))
}

func (e *Evaluator) evalTaggedTemplate(ctx *runtime.ExecutionContext, n *ast.TaggedTemplateExpressionNode) runtime.Completion {
	tagC := e.evalExpression(ctx, n.Tag)
	if tagC.IsAbrupt() {
		return tagC
	}
	fn, ok := tagC.Value.(*runtime.Obj)
	if !ok || !fn.IsCallable() {
		return e.throwTypeError("tag is not a function")
	}
	strings, cached := ctx.Realm.TemplateCache[n.Quasi]
	var raw *runtime.Obj
	if !cached {
		strings = e.newArray(ctx.Realm, nil)
		raw = e.newArray(ctx.Realm, nil)
	}
	args := []runtime.Value{strings}
	for i, q := range n.Quasi.Quasis {
		if !cached {
			pushArray(strings, runtime.NewStringFromGo(q.Cooked))
			pushArray(raw, runtime.NewStringFromGo(q.Raw))
		}
		if i < len(n.Quasi.Expressions) {
			c := e.evalExpression(ctx, n.Quasi.Expressions[i])
			if c.IsAbrupt() {
				return c
			}
			args = append(args, c.Value)
		}
	}
	if !cached {
		strings.DefineOwnProperty(runtime.StringKey("raw"), runtime.NewDataDescriptor(raw, false, false, false))
		ctx.Realm.TemplateCache[n.Quasi] = strings
	}
	return fn.Fn.Call(runtime.Undefined{}, args)
}

func (e *Evaluator) evalArrayExpression(ctx *runtime.ExecutionContext, n *ast.ArrayExpressionNode) runtime.Completion {
	arr := e.newArray(ctx.Realm, nil)
	for _, el := range n.Elements {
		if el == nil {
			pushArray(arr, runtime.Undefined{})
			continue
		}
		if spread, ok := el.(*ast.SpreadElementNode); ok {
			c := e.evalExpression(ctx, spread.Argument)
			if c.IsAbrupt() {
				return c
			}
			items, ic := e.iterableToSlice(ctx, c.Value)
			if ic.IsAbrupt() {
				return ic
			}
			for _, item := range items {
				pushArray(arr, item)
			}
			continue
		}
		c := e.evalExpression(ctx, el)
		if c.IsAbrupt() {
			return c
		}
		pushArray(arr, c.Value)
	}
	return runtime.NormalCompletion(arr)
}

func (e *Evaluator) evalObjectExpression(ctx *runtime.ExecutionContext, n *ast.ObjectExpressionNode) runtime.Completion {
	proto := ctx.Realm.Intrinsic("%Object.prototype%")
	obj := runtime.NewOrdinaryObject(proto)
	for _, p := range n.Properties {
		if spread, ok := p.(*ast.SpreadElementNode); ok {
			c := e.evalExpression(ctx, spread.Argument)
			if c.IsAbrupt() {
				return c
			}
			if src, ok := c.Value.(*runtime.Obj); ok {
				for _, k := range src.OwnPropertyKeys() {
					desc := src.GetOwnProperty(k)
					if desc == nil || desc.Enumerable == nil || !*desc.Enumerable {
						continue
					}
					obj.Set(k, src.Get(k), obj)
				}
			}
			continue
		}
		prop := p.(*ast.PropertyNode)
		var key runtime.PropertyKey
		if prop.Computed {
			kc := e.evalExpression(ctx, prop.Key)
			if kc.IsAbrupt() {
				return kc
			}
			key = e.toPropertyKey(kc.Value)
		} else {
			switch k := prop.Key.(type) {
			case *ast.IdentifierNode:
				key = runtime.StringKey(k.Name)
			case *ast.StringLiteralNode:
				key = runtime.StringKey(k.Value)
			case *ast.NumericLiteralNode:
				key = runtime.StringKey(runtime.Number(k.Value).String())
			}
		}
		vc := e.evalExpression(ctx, prop.Value)
		if vc.IsAbrupt() {
			return vc
		}
		switch prop.Kind {
		case "get":
			fn := vc.Value.(*runtime.Obj)
			existing := obj.GetOwnProperty(key)
			var setter runtime.Value
			if existing != nil {
				setter = existing.Set
			}
			obj.DefineOwnProperty(key, runtime.NewAccessorDescriptor(fn, setter, true, true))
		case "set":
			fn := vc.Value.(*runtime.Obj)
			existing := obj.GetOwnProperty(key)
			var getter runtime.Value
			if existing != nil {
				getter = existing.Get
			}
			obj.DefineOwnProperty(key, runtime.NewAccessorDescriptor(getter, fn, true, true))
		default:
			obj.DefineOwnProperty(key, runtime.NewDataDescriptor(vc.Value, true, true, true))
		}
	}
	return runtime.NormalCompletion(obj)
}

func (e *Evaluator) evalUnary(ctx *runtime.ExecutionContext, n *ast.UnaryExpressionNode) runtime.Completion {
	if n.Operator == "typeof" {
		if id, ok := n.Argument.(*ast.IdentifierNode); ok {
			ref := runtime.ResolveBinding(ctx.LexicalEnvironment, id.Name, false)
			if ref.IsUnresolvable() {
				return runtime.NormalCompletion(runtime.NewStringFromGo("undefined"))
			}
		}
	}
	if n.Operator == "delete" {
		rr := e.evalReference(ctx, n.Argument)
		if rr.c.IsAbrupt() {
			return rr.c
		}
		if rr.ref.IsUnresolvable() {
			return runtime.NormalCompletion(runtime.Boolean(true))
		}
		if rr.ref.IsEnvironmentReference() {
			// Strict code makes this an early SyntaxError; sloppy code asks
			// the environment, which refuses for non-deletable bindings.
			if rr.ref.Strict {
				return e.throwSyntaxError("Delete of an unqualified identifier in strict mode")
			}
			return runtime.NormalCompletion(runtime.Boolean(rr.ref.BaseEnv.DeleteBinding(rr.ref.ReferencedName.Str)))
		}
		obj, ok := rr.ref.BaseValue.(*runtime.Obj)
		if !ok {
			return runtime.NormalCompletion(runtime.Boolean(true))
		}
		return runtime.NormalCompletion(runtime.Boolean(obj.Delete(rr.ref.ReferencedName)))
	}
	c := e.evalExpression(ctx, n.Argument)
	if c.IsAbrupt() {
		return c
	}
	switch n.Operator {
	case "typeof":
		return runtime.NormalCompletion(runtime.NewStringFromGo(typeofOf(c.Value)))
	case "void":
		return runtime.NormalCompletion(runtime.Undefined{})
	case "!":
		return runtime.NormalCompletion(runtime.Boolean(!runtime.ToBoolean(c.Value)))
	case "-":
		if bi, ok := c.Value.(runtime.BigInt); ok {
			return runtime.NormalCompletion(runtime.NewBigInt(new(big.Int).Neg(bi.V)))
		}
		return runtime.NormalCompletion(runtime.Number(-e.toNumber(c.Value)))
	case "+":
		return runtime.NormalCompletion(runtime.Number(e.toNumber(c.Value)))
	case "~":
		return runtime.NormalCompletion(runtime.Number(float64(^toInt32(e.toNumber(c.Value)))))
	default:
		return e.throwSyntaxError("unsupported unary operator " + n.Operator)
	}
}

func typeofOf(v runtime.Value) string {
	switch vv := v.(type) {
	case runtime.Undefined:
		return "undefined"
	case runtime.Null:
		return "object"
	case runtime.Boolean:
		return "boolean"
	case runtime.Number:
		return "number"
	case runtime.BigInt:
		return "bigint"
	case runtime.String:
		return "string"
	case *runtime.Symbol:
		return "symbol"
	case *runtime.Obj:
		if vv.IsCallable() {
			return "function"
		}
		return "object"
	}
	return "undefined"
}

func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(uint32(int64(f)))
}

func (e *Evaluator) evalUpdate(ctx *runtime.ExecutionContext, n *ast.UpdateExpressionNode) runtime.Completion {
	rr := e.evalReference(ctx, n.Argument)
	if rr.c.IsAbrupt() {
		return rr.c
	}
	oldC := runtime.GetValue(ctx.Realm, rr.ref)
	if oldC.IsAbrupt() {
		return oldC
	}
	oldNum := e.toNumber(oldC.Value)
	delta := 1.0
	if n.Operator == "--" {
		delta = -1.0
	}
	newVal := runtime.Number(oldNum + delta)
	if pc := runtime.PutValue(ctx.Realm, rr.ref, newVal); pc.IsAbrupt() {
		return pc
	}
	if n.Prefix {
		return runtime.NormalCompletion(newVal)
	}
	return runtime.NormalCompletion(runtime.Number(oldNum))
}

func (e *Evaluator) evalLogical(ctx *runtime.ExecutionContext, n *ast.LogicalExpressionNode) runtime.Completion {
	lc := e.evalExpression(ctx, n.Left)
	if lc.IsAbrupt() {
		return lc
	}
	switch n.Operator {
	case "&&":
		if !runtime.ToBoolean(lc.Value) {
			return lc
		}
	case "||":
		if runtime.ToBoolean(lc.Value) {
			return lc
		}
	case "??":
		if !isNullish(lc.Value) {
			return lc
		}
	}
	return e.evalExpression(ctx, n.Right)
}

func (e *Evaluator) evalAssignment(ctx *runtime.ExecutionContext, n *ast.AssignmentExpressionNode) runtime.Completion {
	if n.Operator == "=" {
		if pattern, ok := isDestructuringTarget(n.Left); ok {
			vc := e.evalExpression(ctx, n.Right)
			if vc.IsAbrupt() {
				return vc
			}
			if c := e.assignPattern(ctx, pattern, vc.Value); c.IsAbrupt() {
				return c
			}
			return vc
		}
		rr := e.evalReference(ctx, n.Left)
		if rr.c.IsAbrupt() {
			return rr.c
		}
		vc := e.evalExpression(ctx, n.Right)
		if vc.IsAbrupt() {
			return vc
		}
		if pc := runtime.PutValue(ctx.Realm, rr.ref, vc.Value); pc.IsAbrupt() {
			return pc
		}
		return vc
	}
	rr := e.evalReference(ctx, n.Left)
	if rr.c.IsAbrupt() {
		return rr.c
	}
	switch n.Operator {
	case "&&=":
		oldC := runtime.GetValue(ctx.Realm, rr.ref)
		if oldC.IsAbrupt() || !runtime.ToBoolean(oldC.Value) {
			return oldC
		}
	case "||=":
		oldC := runtime.GetValue(ctx.Realm, rr.ref)
		if oldC.IsAbrupt() || runtime.ToBoolean(oldC.Value) {
			return oldC
		}
	case "??=":
		oldC := runtime.GetValue(ctx.Realm, rr.ref)
		if oldC.IsAbrupt() || !isNullish(oldC.Value) {
			return oldC
		}
	}
	oldC := runtime.GetValue(ctx.Realm, rr.ref)
	if oldC.IsAbrupt() {
		return oldC
	}
	rc := e.evalExpression(ctx, n.Right)
	if rc.IsAbrupt() {
		return rc
	}
	op := n.Operator[:len(n.Operator)-1]
	result, c := e.applyBinaryOp(op, oldC.Value, rc.Value)
	if c.IsAbrupt() {
		return c
	}
	if pc := runtime.PutValue(ctx.Realm, rr.ref, result); pc.IsAbrupt() {
		return pc
	}
	return runtime.NormalCompletion(result)
}

func isDestructuringTarget(n ast.Node) (ast.Node, bool) {
	switch n.(type) {
	case *ast.ArrayPatternNode, *ast.ObjectPatternNode:
		return n, true
	}
	return nil, false
}
