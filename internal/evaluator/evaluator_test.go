package evaluator

import (
	"testing"

	"github.com/esvm-go/esvm/ast"
	"github.com/esvm-go/esvm/internal/builtins"
	"github.com/esvm-go/esvm/internal/realm"
	"github.com/esvm-go/esvm/internal/runtime"
)

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	r, err := realm.Build(builtins.MinimalBundle())
	if err != nil {
		t.Fatalf("realm.Build() error = %v", err)
	}
	return New(r, nil)
}

func evalProgram(t *testing.T, e *Evaluator, body ...ast.Node) runtime.Completion {
	t.Helper()
	return e.EvaluateProgram(&ast.ProgramNode{Body: body})
}

func expr(n ast.Node) ast.Node { return &ast.ExpressionStatementNode{Expression: n} }

func ident(name string) *ast.IdentifierNode { return &ast.IdentifierNode{Name: name} }

func num(v float64) *ast.NumericLiteralNode { return &ast.NumericLiteralNode{Value: v} }

func str(s string) *ast.StringLiteralNode { return &ast.StringLiteralNode{Value: s} }

func binary(op string, l, r ast.Node) *ast.BinaryExpressionNode {
	return &ast.BinaryExpressionNode{Operator: op, Left: l, Right: r}
}

func thrownName(t *testing.T, c runtime.Completion) string {
	t.Helper()
	if c.Type != runtime.Throw {
		t.Fatalf("completion type = %v, want Throw", c.Type)
	}
	obj, ok := c.Value.(*runtime.Obj)
	if !ok {
		t.Fatalf("thrown value = %#v, want *runtime.Obj", c.Value)
	}
	return runtime.ToGoString(obj.Get(runtime.StringKey("name")))
}

func TestBinaryOperators(t *testing.T) {
	tests := []struct {
		name string
		node ast.Node
		want runtime.Value
	}{
		{"number addition", binary("+", num(2), num(3)), runtime.Number(5)},
		{"string concatenation", binary("+", str("a"), num(1)), runtime.NewStringFromGo("a1")},
		{"subtraction coerces strings", binary("-", str("7"), num(2)), runtime.Number(5)},
		{"multiplication", binary("*", num(6), num(7)), runtime.Number(42)},
		{"exponentiation", binary("**", num(2), num(10)), runtime.Number(1024)},
		{"less-than", binary("<", num(1), num(2)), runtime.Boolean(true)},
		{"string relational", binary("<", str("a"), str("b")), runtime.Boolean(true)},
		{"strict equality", binary("===", num(1), str("1")), runtime.Boolean(false)},
		{"loose equality coerces", binary("==", num(1), str("1")), runtime.Boolean(true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEvaluator(t)
			c := evalProgram(t, e, expr(tt.node))
			if c.IsAbrupt() {
				t.Fatalf("unexpected abrupt completion: %#v", c)
			}
			if !runtime.SameValue(c.Value, tt.want) {
				t.Errorf("result = %#v, want %#v", c.Value, tt.want)
			}
		})
	}
}

func TestBigIntNumberMixingThrows(t *testing.T) {
	e := newTestEvaluator(t)
	c := evalProgram(t, e, expr(binary("+", &ast.BigIntLiteralNode{Raw: "1"}, num(1))))
	if got := thrownName(t, c); got != "TypeError" {
		t.Errorf("thrown error name = %q, want %q", got, "TypeError")
	}
}

func TestTypeofUnresolvableIdentifier(t *testing.T) {
	e := newTestEvaluator(t)
	c := evalProgram(t, e, expr(&ast.UnaryExpressionNode{Operator: "typeof", Argument: ident("nope")}))
	if c.IsAbrupt() {
		t.Fatalf("typeof must not throw on an unresolvable name: %#v", c)
	}
	if got := runtime.ToGoString(c.Value); got != "undefined" {
		t.Errorf("typeof result = %q, want %q", got, "undefined")
	}
}

func TestUnresolvableIdentifierThrowsReferenceError(t *testing.T) {
	e := newTestEvaluator(t)
	c := evalProgram(t, e, expr(ident("nope")))
	if got := thrownName(t, c); got != "ReferenceError" {
		t.Errorf("thrown error name = %q, want %q", got, "ReferenceError")
	}
}

func TestFinallyOverridesThrowCompletion(t *testing.T) {
	e := newTestEvaluator(t)
	c := evalProgram(t, e, &ast.TryStatementNode{
		Block: &ast.BlockStatementNode{Body: []ast.Node{
			&ast.ThrowStatementNode{Argument: str("original")},
		}},
		Finalizer: &ast.BlockStatementNode{Body: []ast.Node{
			&ast.ThrowStatementNode{Argument: str("override")},
		}},
	})
	if c.Type != runtime.Throw {
		t.Fatalf("completion type = %v, want Throw", c.Type)
	}
	if got := runtime.ToGoString(c.Value); got != "override" {
		t.Errorf("thrown value = %q, want the finalizer's %q", got, "override")
	}
}

func TestFinallyRunsOnNormalExit(t *testing.T) {
	e := newTestEvaluator(t)
	c := evalProgram(t, e,
		&ast.VariableDeclarationNode{Kind: "var", Declarations: []*ast.VariableDeclaratorNode{
			{ID: ident("hits"), Init: num(0)},
		}},
		&ast.TryStatementNode{
			Block: &ast.BlockStatementNode{Body: []ast.Node{expr(num(1))}},
			Finalizer: &ast.BlockStatementNode{Body: []ast.Node{
				expr(&ast.AssignmentExpressionNode{Operator: "=", Left: ident("hits"), Right: num(1)}),
			}},
		},
	)
	if c.IsAbrupt() {
		t.Fatalf("unexpected abrupt completion: %#v", c)
	}
	hits := e.Realm.GlobalObj.Get(runtime.StringKey("hits"))
	if n, ok := hits.(runtime.Number); !ok || n != 1 {
		t.Errorf("hits = %#v, want 1 (finalizer must run on normal exit)", hits)
	}
}

func TestLabeledBreakExitsLoop(t *testing.T) {
	e := newTestEvaluator(t)
	c := evalProgram(t, e, &ast.LabeledStatementNode{
		Label: "outer",
		Body: &ast.WhileStatementNode{
			Test: &ast.BooleanLiteralNode{Value: true},
			Body: &ast.BlockStatementNode{Body: []ast.Node{
				&ast.BreakStatementNode{Label: "outer"},
			}},
		},
	})
	if c.IsAbrupt() {
		t.Fatalf("labeled break must complete normally, got %#v", c)
	}
}

func TestStepBudgetAbortsLongLoop(t *testing.T) {
	e := newTestEvaluator(t)
	e.StepBudget = 50
	c := evalProgram(t, e, &ast.WhileStatementNode{
		Test: &ast.BooleanLiteralNode{Value: true},
		Body: &ast.BlockStatementNode{Body: []ast.Node{expr(num(1))}},
	})
	if got := thrownName(t, c); got != "RangeError" {
		t.Errorf("thrown error name = %q, want %q", got, "RangeError")
	}
}

func TestSloppyAssignmentCreatesGlobalProperty(t *testing.T) {
	e := newTestEvaluator(t)
	c := evalProgram(t, e, expr(&ast.AssignmentExpressionNode{Operator: "=", Left: ident("implicit"), Right: num(7)}))
	if c.IsAbrupt() {
		t.Fatalf("unexpected abrupt completion: %#v", c)
	}
	v := e.Realm.GlobalObj.Get(runtime.StringKey("implicit"))
	if n, ok := v.(runtime.Number); !ok || n != 7 {
		t.Errorf("globalThis.implicit = %#v, want 7 (sloppy assignment creates a global property)", v)
	}
}

func TestStrictAssignmentToUndeclaredThrows(t *testing.T) {
	e := newTestEvaluator(t)
	target := ident("implicit")
	target.Strict = true
	c := evalProgram(t, e, expr(&ast.AssignmentExpressionNode{Operator: "=", Left: target, Right: num(7)}))
	if got := thrownName(t, c); got != "ReferenceError" {
		t.Errorf("thrown error name = %q, want %q", got, "ReferenceError")
	}
}

// TestTemporalDeadZoneThrowsErrorObject pins that a TDZ read raised from
// inside the environment record surfaces as a real Error object, not a
// bare string — thrownName type-asserts *runtime.Obj and reads .name.
func TestTemporalDeadZoneThrowsErrorObject(t *testing.T) {
	e := newTestEvaluator(t)
	c := evalProgram(t, e,
		expr(ident("later")),
		&ast.VariableDeclarationNode{Kind: "let", Declarations: []*ast.VariableDeclaratorNode{
			{ID: ident("later"), Init: num(1)},
		}},
	)
	if got := thrownName(t, c); got != "ReferenceError" {
		t.Errorf("thrown error name = %q, want %q", got, "ReferenceError")
	}
}

func TestLexicalRedeclarationRejected(t *testing.T) {
	e := newTestEvaluator(t)
	c := evalProgram(t, e,
		&ast.VariableDeclarationNode{Kind: "let", Declarations: []*ast.VariableDeclaratorNode{
			{ID: ident("x"), Init: num(1)},
		}},
		&ast.VariableDeclarationNode{Kind: "var", Declarations: []*ast.VariableDeclaratorNode{
			{ID: ident("x"), Init: num(2)},
		}},
	)
	if got := thrownName(t, c); got != "SyntaxError" {
		t.Errorf("thrown error name = %q, want %q", got, "SyntaxError")
	}
}
