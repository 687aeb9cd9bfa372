package esvm

import (
	"context"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/esvm-go/esvm/internal/runtime"
)

// forTarget builds the {"kind":"VariableDeclaration", ...} wrapper for-of's
// Left expects around a single binding identifier.
func forTarget(kind, name string) string {
	return `{"kind":"VariableDeclaration","varKind":"` + kind + `","declarations":[
		{"kind":"VariableDeclarator","id":{"kind":"Identifier","name":"` + name + `"}}
	]}`
}

func TestRunScriptForOfAndForAwaitOf(t *testing.T) {
	src := `{
		"kind": "Program",
		"body": [
			{"kind":"VariableDeclaration","varKind":"let","declarations":[
				{"kind":"VariableDeclarator","id":{"kind":"Identifier","name":"sum"},
				 "init":{"kind":"NumericLiteral","value":0}}
			]},
			{"kind":"ForOfStatement","await":false,
			 "left":` + forTarget("const", "v") + `,
			 "right":{"kind":"ArrayExpression","elements":[
				{"kind":"NumericLiteral","value":1},
				{"kind":"NumericLiteral","value":2},
				{"kind":"NumericLiteral","value":3}
			 ]},
			 "body":{"kind":"ExpressionStatement","expression":{
				"kind":"AssignmentExpression","operator":"=",
				"left":{"kind":"Identifier","name":"sum"},
				"right":{"kind":"BinaryExpression","operator":"+",
					"left":{"kind":"Identifier","name":"sum"},
					"right":{"kind":"Identifier","name":"v"}}
			 }}},
			{"kind":"ForOfStatement","await":true,
			 "left":` + forTarget("const", "w") + `,
			 "right":{"kind":"ArrayExpression","elements":[
				{"kind":"NumericLiteral","value":10},
				{"kind":"NumericLiteral","value":20},
				{"kind":"NumericLiteral","value":30}
			 ]},
			 "body":{"kind":"ExpressionStatement","expression":{
				"kind":"AssignmentExpression","operator":"=",
				"left":{"kind":"Identifier","name":"sum"},
				"right":{"kind":"BinaryExpression","operator":"+",
					"left":{"kind":"Identifier","name":"sum"},
					"right":{"kind":"Identifier","name":"w"}}
			 }}},
			{"kind":"ExpressionStatement","expression":{"kind":"Identifier","name":"sum"}}
		]
	}`

	program, err := LoadTree([]byte(src))
	if err != nil {
		t.Fatalf("LoadTree() error = %v", err)
	}

	vm, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result := vm.RunScript(context.Background(), program, src, "<test>")
	if result.Diagnostic != nil {
		t.Fatalf("unexpected diagnostic: %s", result.Diagnostic.Message)
	}

	n, ok := result.Value.(runtime.Number)
	if !ok {
		t.Fatalf("result.Value = %#v, want runtime.Number", result.Value)
	}
	if n != 66 {
		t.Errorf("sum = %v, want 66 (1+2+3 via for-of, 10+20+30 via for-await-of)", n)
	}
}

func TestRunScriptUncaughtThrow(t *testing.T) {
	src := `{
		"kind": "Program",
		"body": [
			{"kind":"ThrowStatement","argument":{"kind":"StringLiteral","value":"boom"}}
		]
	}`
	program, err := LoadTree([]byte(src))
	if err != nil {
		t.Fatalf("LoadTree() error = %v", err)
	}

	vm, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result := vm.RunScript(context.Background(), program, src, "<test>")
	if result.Diagnostic == nil {
		t.Fatal("expected a diagnostic for an uncaught throw")
	}
}

// TestInspectArraySnapshot snapshots Inspect's rendering of an array
// result, pinning the CLI's display format.
func TestInspectArraySnapshot(t *testing.T) {
	src := `{
		"kind": "Program",
		"body": [
			{"kind":"ExpressionStatement","expression":{
				"kind":"ArrayExpression","elements":[
					{"kind":"NumericLiteral","value":1},
					{"kind":"NumericLiteral","value":2},
					{"kind":"NumericLiteral","value":3}
				]
			}}
		]
	}`
	program, err := LoadTree([]byte(src))
	if err != nil {
		t.Fatalf("LoadTree() error = %v", err)
	}

	vm, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result := vm.RunScript(context.Background(), program, src, "<test>")
	if result.Diagnostic != nil {
		t.Fatalf("unexpected diagnostic: %s", result.Diagnostic.Message)
	}

	snaps.MatchSnapshot(t, Inspect(result.Value))
}
