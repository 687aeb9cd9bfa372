package evaluator

import (
	"github.com/esvm-go/esvm/ast"
	"github.com/esvm-go/esvm/internal/runtime"
)

// refResult bundles a Reference with the completion produced while
// evaluating the pieces needed to build it (e.g. a member expression's
// object sub-expression might throw); c.IsAbrupt() means ref is invalid.
type refResult struct {
	ref *runtime.Reference
	c   runtime.Completion
}

// evalReference evaluates an expression down to a Reference rather than a
// Value, for assignment targets, `delete`, `typeof` on a possibly-
// unresolved identifier, and update expressions. This is ECMA-262's
// "most expression evaluation rules produce a Reference, then GetValue
// collapses it" shape.
func (e *Evaluator) evalReference(ctx *runtime.ExecutionContext, n ast.Node) refResult {
	switch expr := n.(type) {
	case *ast.IdentifierNode:
		return refResult{ref: runtime.ResolveBinding(ctx.LexicalEnvironment, expr.Name, expr.Strict)}
	case *ast.MemberExpressionNode:
		return e.evalMemberReference(ctx, expr)
	default:
		c := e.evalExpression(ctx, n)
		if c.IsAbrupt() {
			return refResult{c: c}
		}
		return refResult{ref: &runtime.Reference{BaseValue: c.Value}, c: runtime.NormalCompletion(nil)}
	}
}

func (e *Evaluator) evalMemberReference(ctx *runtime.ExecutionContext, expr *ast.MemberExpressionNode) refResult {
	if _, ok := expr.Object.(*ast.SuperExpressionNode); ok {
		return e.evalSuperMemberReference(ctx, expr)
	}
	oc := e.evalExpression(ctx, expr.Object)
	if oc.IsAbrupt() {
		return refResult{c: oc}
	}
	if expr.Optional {
		if isNullish(oc.Value) {
			return refResult{c: runtime.Completion{Type: runtime.Normal, Value: nil}, ref: &runtime.Reference{}}
		}
	}
	base := oc.Value
	if _, ok := base.(*runtime.Obj); !ok {
		base = e.toObjectWrapper(ctx, base)
	}
	if priv, ok := expr.Property.(*ast.PrivateIdentifierNode); ok {
		name := ctx.PrivateEnvironment.Resolve(priv.Name)
		if name == nil {
			return refResult{c: e.throwSyntaxError("Private field '#" + priv.Name + "' must be declared in an enclosing class")}
		}
		// Private-name access only occurs inside class bodies, which are
		// always strict code.
		return refResult{ref: &runtime.Reference{BaseValue: base, Strict: true, IsPrivate: true, PrivateName: name}}
	}
	key, c := e.propertyKeyOf(ctx, expr)
	if c.IsAbrupt() {
		return refResult{c: c}
	}
	return refResult{ref: &runtime.Reference{BaseValue: base, ReferencedName: key, Strict: expr.Strict}}
}

func (e *Evaluator) evalSuperMemberReference(ctx *runtime.ExecutionContext, expr *ast.MemberExpressionNode) refResult {
	fenv := enclosingFunctionEnvironment(ctx.LexicalEnvironment)
	if fenv == nil || fenv.HomeObject == nil {
		return refResult{c: e.throwSyntaxError("'super' keyword is only valid inside a class")}
	}
	key, c := e.propertyKeyOf(ctx, expr)
	if c.IsAbrupt() {
		return refResult{c: c}
	}
	thisC := fenv.GetThisBinding()
	if thisC.IsAbrupt() {
		return refResult{c: thisC}
	}
	proto := fenv.HomeObject.GetPrototypeOf()
	var base runtime.Value = runtime.Undefined{}
	if proto != nil {
		base = proto
	}
	// Super references only occur inside methods, which are strict code.
	return refResult{ref: &runtime.Reference{BaseValue: base, ReferencedName: key, Strict: true, IsSuper: true, ThisValue: thisC.Value}}
}

func enclosingFunctionEnvironment(env runtime.EnvironmentRecord) *runtime.FunctionEnvironment {
	for e := env; e != nil; e = e.Outer() {
		if fe, ok := e.(*runtime.FunctionEnvironment); ok {
			return fe
		}
	}
	return nil
}

func (e *Evaluator) propertyKeyOf(ctx *runtime.ExecutionContext, expr *ast.MemberExpressionNode) (runtime.PropertyKey, runtime.Completion) {
	if expr.Computed {
		c := e.evalExpression(ctx, expr.Property)
		if c.IsAbrupt() {
			return runtime.PropertyKey{}, c
		}
		return e.toPropertyKey(c.Value), runtime.NormalCompletion(nil)
	}
	name := expr.Property.(*ast.IdentifierNode).Name
	return runtime.StringKey(name), runtime.NormalCompletion(nil)
}

func (e *Evaluator) toPropertyKey(v runtime.Value) runtime.PropertyKey {
	if sym, ok := v.(*runtime.Symbol); ok {
		return runtime.SymbolKey(sym)
	}
	return runtime.StringKey(e.toGoString(v))
}

func isNullish(v runtime.Value) bool {
	switch v.(type) {
	case runtime.Undefined, runtime.Null:
		return true
	}
	return false
}
