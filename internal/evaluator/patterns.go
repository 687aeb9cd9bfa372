package evaluator

import (
	"github.com/esvm-go/esvm/ast"
	"github.com/esvm-go/esvm/internal/runtime"
)

// bindPattern destructures value into target, creating/initializing
// bindings in env (used for declarations and parameter binding). When
// initialize is false the binding is assumed already created (hoisted)
// and only SetMutableBinding is used (the `var` case).
func (e *Evaluator) bindPattern(ctx *runtime.ExecutionContext, env runtime.EnvironmentRecord, target ast.Node, value runtime.Value, initialize bool) runtime.Completion {
	switch t := target.(type) {
	case *ast.IdentifierNode:
		if initialize {
			env.InitializeBinding(t.Name, value)
		} else {
			return env.SetMutableBinding(t.Name, value, true)
		}
		return runtime.NormalCompletion(nil)
	case *ast.AssignmentPatternNode:
		v := value
		if isUndefinedVal(value) {
			c := e.evalExpression(ctx, t.Right)
			if c.IsAbrupt() {
				return c
			}
			v = c.Value
		}
		return e.bindPattern(ctx, env, t.Left, v, initialize)
	case *ast.ArrayPatternNode:
		items, c := e.iterableToSlice(ctx, value)
		if c.IsAbrupt() {
			return c
		}
		for i, el := range t.Elements {
			if el == nil {
				continue
			}
			if rest, ok := el.(*ast.RestElementNode); ok {
				var remaining []runtime.Value
				if i < len(items) {
					remaining = items[i:]
				}
				arr := e.newArray(ctx.Realm, remaining)
				if c := e.bindPattern(ctx, env, rest.Argument, arr, initialize); c.IsAbrupt() {
					return c
				}
				break
			}
			var v runtime.Value = runtime.Undefined{}
			if i < len(items) {
				v = items[i]
			}
			if c := e.bindPattern(ctx, env, el, v, initialize); c.IsAbrupt() {
				return c
			}
		}
		return runtime.NormalCompletion(nil)
	case *ast.ObjectPatternNode:
		obj, ok := value.(*runtime.Obj)
		if !ok {
			obj = e.toObjectWrapper(ctx, value)
		}
		used := map[runtime.PropertyKey]bool{}
		for _, p := range t.Properties {
			switch pp := p.(type) {
			case *ast.ObjectPatternPropertyNode:
				var key runtime.PropertyKey
				if pp.Computed {
					kc := e.evalExpression(ctx, pp.Key)
					if kc.IsAbrupt() {
						return kc
					}
					key = e.toPropertyKey(kc.Value)
				} else {
					key = runtime.StringKey(pp.Key.(*ast.IdentifierNode).Name)
				}
				used[key] = true
				v := obj.Get(key)
				if c := e.bindPattern(ctx, env, pp.Value, v, initialize); c.IsAbrupt() {
					return c
				}
			case *ast.RestElementNode:
				proto := ctx.Realm.Intrinsic("%Object.prototype%")
				rest := runtime.NewOrdinaryObject(proto)
				for _, k := range obj.OwnPropertyKeys() {
					if used[k] || k.IsSym {
						continue
					}
					desc := obj.GetOwnProperty(k)
					if desc == nil || desc.Enumerable == nil || !*desc.Enumerable {
						continue
					}
					rest.Set(k, obj.Get(k), rest)
				}
				if c := e.bindPattern(ctx, env, pp.Argument, rest, initialize); c.IsAbrupt() {
					return c
				}
			}
		}
		return runtime.NormalCompletion(nil)
	default:
		return e.throwSyntaxError("invalid binding target")
	}
}

func isUndefinedVal(v runtime.Value) bool {
	_, ok := v.(runtime.Undefined)
	return ok
}

// assignPattern destructures value into an already-existing set of
// assignment targets (identifiers or member expressions), used by
// destructuring assignment expressions (`[a, b] = arr`), as opposed to
// bindPattern's declaration-time binding creation.
func (e *Evaluator) assignPattern(ctx *runtime.ExecutionContext, target ast.Node, value runtime.Value) runtime.Completion {
	switch t := target.(type) {
	case *ast.ArrayPatternNode:
		items, c := e.iterableToSlice(ctx, value)
		if c.IsAbrupt() {
			return c
		}
		for i, el := range t.Elements {
			if el == nil {
				continue
			}
			if rest, ok := el.(*ast.RestElementNode); ok {
				var remaining []runtime.Value
				if i < len(items) {
					remaining = items[i:]
				}
				arr := e.newArray(ctx.Realm, remaining)
				if c := e.assignPattern(ctx, rest.Argument, arr); c.IsAbrupt() {
					return c
				}
				break
			}
			var v runtime.Value = runtime.Undefined{}
			if i < len(items) {
				v = items[i]
			}
			if c := e.assignPattern(ctx, el, v); c.IsAbrupt() {
				return c
			}
		}
		return runtime.NormalCompletion(nil)
	case *ast.ObjectPatternNode:
		obj, ok := value.(*runtime.Obj)
		if !ok {
			obj = e.toObjectWrapper(ctx, value)
		}
		for _, p := range t.Properties {
			pp, ok := p.(*ast.ObjectPatternPropertyNode)
			if !ok {
				continue
			}
			key := runtime.StringKey(pp.Key.(*ast.IdentifierNode).Name)
			if c := e.assignPattern(ctx, pp.Value, obj.Get(key)); c.IsAbrupt() {
				return c
			}
		}
		return runtime.NormalCompletion(nil)
	case *ast.AssignmentPatternNode:
		v := value
		if isUndefinedVal(value) {
			c := e.evalExpression(ctx, t.Right)
			if c.IsAbrupt() {
				return c
			}
			v = c.Value
		}
		return e.assignPattern(ctx, t.Left, v)
	default:
		rr := e.evalReference(ctx, target)
		if rr.c.IsAbrupt() {
			return rr.c
		}
		return runtime.PutValue(ctx.Realm, rr.ref, value)
	}
}
