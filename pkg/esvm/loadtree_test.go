package esvm

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/esvm-go/esvm/ast"
)

func TestLoadTreeSimpleProgram(t *testing.T) {
	src := `{
		"kind": "Program",
		"body": [
			{
				"kind": "VariableDeclaration",
				"varKind": "let",
				"declarations": [
					{
						"kind": "VariableDeclarator",
						"id": {"kind": "Identifier", "name": "x"},
						"init": {"kind": "NumericLiteral", "value": 2}
					}
				]
			},
			{
				"kind": "ExpressionStatement",
				"expression": {
					"kind": "BinaryExpression",
					"operator": "+",
					"left": {"kind": "Identifier", "name": "x"},
					"right": {"kind": "NumericLiteral", "value": 3}
				}
			}
		]
	}`

	program, err := LoadTree([]byte(src))
	if err != nil {
		t.Fatalf("LoadTree() error = %v", err)
	}
	if len(program.Body) != 2 {
		t.Fatalf("len(program.Body) = %d, want 2", len(program.Body))
	}

	decl, ok := program.Body[0].(*ast.VariableDeclarationNode)
	if !ok {
		t.Fatalf("program.Body[0] = %T, want *ast.VariableDeclarationNode", program.Body[0])
	}
	if decl.Kind != "let" {
		t.Errorf("decl.Kind = %q, want \"let\"", decl.Kind)
	}
	if len(decl.Declarations) != 1 {
		t.Fatalf("len(decl.Declarations) = %d, want 1", len(decl.Declarations))
	}
	id, ok := decl.Declarations[0].ID.(*ast.IdentifierNode)
	if !ok || id.Name != "x" {
		t.Errorf("declarations[0].ID = %#v, want Identifier \"x\"", decl.Declarations[0].ID)
	}

	exprStmt, ok := program.Body[1].(*ast.ExpressionStatementNode)
	if !ok {
		t.Fatalf("program.Body[1] = %T, want *ast.ExpressionStatementNode", program.Body[1])
	}
	bin, ok := exprStmt.Expression.(*ast.BinaryExpressionNode)
	if !ok {
		t.Fatalf("expression = %T, want *ast.BinaryExpressionNode", exprStmt.Expression)
	}
	if bin.Operator != "+" {
		t.Errorf("bin.Operator = %q, want \"+\"", bin.Operator)
	}
}

func TestLoadTreeRejectsInvalidJSON(t *testing.T) {
	if _, err := LoadTree([]byte(`not json`)); err == nil {
		t.Error("expected an error for invalid JSON")
	}
}

func TestLoadTreeRejectsNonProgramRoot(t *testing.T) {
	if _, err := LoadTree([]byte(`{"kind":"Identifier","name":"x"}`)); err == nil {
		t.Error("expected an error when the root node isn't a Program")
	}
}

// TestLoadTreeIsDeterministic decodes the same document twice and diffs the
// resulting trees with go-cmp: LoadTree has no hidden state (no caching, no
// map iteration over the input), so re-decoding must produce an identical
// tree, field for field.
func TestLoadTreeIsDeterministic(t *testing.T) {
	src := []byte(`{
		"kind": "Program",
		"body": [
			{"kind":"ExpressionStatement","expression":{
				"kind":"ArrayExpression","elements":[
					{"kind":"NumericLiteral","value":1},
					{"kind":"StringLiteral","value":"two"},
					{"kind":"BooleanLiteral","value":true}
				]
			}}
		]
	}`)

	first, err := LoadTree(src)
	if err != nil {
		t.Fatalf("LoadTree() first decode error = %v", err)
	}
	second, err := LoadTree(src)
	if err != nil {
		t.Fatalf("LoadTree() second decode error = %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("decoding the same document twice produced different trees (-first +second):\n%s", diff)
	}
}
