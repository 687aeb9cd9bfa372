package ast

import "testing"

func TestBaseSatisfiesNode(t *testing.T) {
	b := Base{Kind_: Identifier, Pos_: Position{Line: 3, Column: 7}}
	var n Node = b
	if n.NodeKind() != Identifier {
		t.Errorf("NodeKind() = %v, want Identifier", n.NodeKind())
	}
	if n.Pos() != (Position{Line: 3, Column: 7}) {
		t.Errorf("Pos() = %v, want {3 7}", n.Pos())
	}
}

func TestFunctionDeclarationSatisfiesFunctionLike(t *testing.T) {
	id := &IdentifierNode{Base: Base{Kind_: Identifier}, Name: "f"}
	fn := &FunctionDeclarationNode{
		Base:      Base{Kind_: FunctionDeclaration},
		ID:        id,
		Params:    []Node{id},
		Body:      &BlockStatementNode{Base: Base{Kind_: BlockStatement}},
		Generator: true,
		Source:    "function f(f) {}",
		TopLevel_: true,
	}
	var fl FunctionLike = fn
	if fl.Name() != "f" {
		t.Errorf("Name() = %q, want \"f\"", fl.Name())
	}
	if !fl.IsGenerator() {
		t.Error("IsGenerator() should reflect Generator field")
	}
	if fl.IsAsync() || fl.IsArrow() {
		t.Error("a plain generator function declaration is neither async nor an arrow")
	}
	if !fl.TopLevel() {
		t.Error("TopLevel() should reflect TopLevel_ field")
	}
	if len(fl.FunctionParams()) != 1 {
		t.Errorf("FunctionParams() length = %d, want 1", len(fl.FunctionParams()))
	}
	if fl.SourceText() != "function f(f) {}" {
		t.Errorf("SourceText() = %q", fl.SourceText())
	}
}

func TestArrowFunctionExpressionIsArrow(t *testing.T) {
	fn := &ArrowFunctionExpressionNode{
		Base: Base{Kind_: ArrowFunctionExpr},
		Body: &BlockStatementNode{Base: Base{Kind_: BlockStatement}},
	}
	var fl FunctionLike = fn
	if !fl.IsArrow() {
		t.Error("IsArrow() should be true for an arrow function")
	}
	if fl.IsGenerator() {
		t.Error("an arrow function can never be a generator")
	}
	if fl.TopLevel() {
		t.Error("an arrow function is never top-level")
	}
}

func TestFunctionDeclarationAnonymousNameIsEmpty(t *testing.T) {
	fn := &FunctionDeclarationNode{Base: Base{Kind_: FunctionDeclaration}}
	if fn.Name() != "" {
		t.Errorf("Name() = %q, want empty string for an ID-less declaration", fn.Name())
	}
}
