// Package ast defines the standard shape of the syntax tree the evaluation
// runtime consumes. Producing a tree of this shape (i.e. parsing) is a host
// concern; this package only fixes the contract between a parser and the
// evaluator.
package ast

// Kind identifies the concrete shape of a Node, the way a parser would tag
// each production of the grammar. The evaluator dispatches on Kind rather
// than on Go's dynamic type so that plugins (internal/plugin) can register
// handlers for kinds they don't have compile-time types for.
type Kind string

const (
	// Program & statements
	Program             Kind = "Program"
	BlockStatement      Kind = "BlockStatement"
	ExpressionStatement Kind = "ExpressionStatement"
	EmptyStatement      Kind = "EmptyStatement"
	VariableDeclaration Kind = "VariableDeclaration"
	VariableDeclarator  Kind = "VariableDeclarator"
	FunctionDeclaration Kind = "FunctionDeclaration"
	ClassDeclaration    Kind = "ClassDeclaration"
	ReturnStatement     Kind = "ReturnStatement"
	IfStatement         Kind = "IfStatement"
	ForStatement        Kind = "ForStatement"
	ForInStatement      Kind = "ForInStatement"
	ForOfStatement      Kind = "ForOfStatement"
	WhileStatement      Kind = "WhileStatement"
	DoWhileStatement    Kind = "DoWhileStatement"
	BreakStatement      Kind = "BreakStatement"
	ContinueStatement   Kind = "ContinueStatement"
	ThrowStatement      Kind = "ThrowStatement"
	TryStatement        Kind = "TryStatement"
	CatchClause         Kind = "CatchClause"
	SwitchStatement     Kind = "SwitchStatement"
	SwitchCase          Kind = "SwitchCase"
	LabeledStatement    Kind = "LabeledStatement"

	// Expressions
	Identifier            Kind = "Identifier"
	PrivateIdentifier      Kind = "PrivateIdentifier"
	NumericLiteral         Kind = "NumericLiteral"
	BigIntLiteral          Kind = "BigIntLiteral"
	StringLiteral          Kind = "StringLiteral"
	BooleanLiteral         Kind = "BooleanLiteral"
	NullLiteral            Kind = "NullLiteral"
	RegExpLiteral          Kind = "RegExpLiteral"
	TemplateLiteral        Kind = "TemplateLiteral"
	TaggedTemplateExpr     Kind = "TaggedTemplateExpression"
	ArrayExpression        Kind = "ArrayExpression"
	ObjectExpression       Kind = "ObjectExpression"
	Property               Kind = "Property"
	FunctionExpression     Kind = "FunctionExpression"
	ArrowFunctionExpr      Kind = "ArrowFunctionExpression"
	ClassExpression        Kind = "ClassExpression"
	ClassBody              Kind = "ClassBody"
	MethodDefinition       Kind = "MethodDefinition"
	PropertyDefinition     Kind = "PropertyDefinition"
	UnaryExpression        Kind = "UnaryExpression"
	UpdateExpression       Kind = "UpdateExpression"
	BinaryExpression       Kind = "BinaryExpression"
	LogicalExpression      Kind = "LogicalExpression"
	AssignmentExpression   Kind = "AssignmentExpression"
	ConditionalExpression  Kind = "ConditionalExpression"
	CallExpression         Kind = "CallExpression"
	NewExpression          Kind = "NewExpression"
	MemberExpression       Kind = "MemberExpression"
	SequenceExpression     Kind = "SequenceExpression"
	SpreadElement          Kind = "SpreadElement"
	YieldExpression        Kind = "YieldExpression"
	AwaitExpression        Kind = "AwaitExpression"
	ThisExpression         Kind = "ThisExpression"
	SuperExpression        Kind = "Super"
	MetaProperty           Kind = "MetaProperty"

	// Patterns (destructuring)
	ArrayPattern       Kind = "ArrayPattern"
	ObjectPattern      Kind = "ObjectPattern"
	AssignmentPattern  Kind = "AssignmentPattern"
	RestElement        Kind = "RestElement"
)

// Position is a 1-based source location, reproduced on every node for
// diagnostics; the evaluator never reads source text itself (non-goal) but
// threads Position through to thrown errors and stack frames.
type Position struct {
	Line   int
	Column int
}

// Node is the shape every syntax-tree node must satisfy. A host's parser
// constructs these (or an evaluator-recognized equivalent obtained via the
// JSON loader in pkg/esvm); the evaluator never mutates a Node.
type Node interface {
	NodeKind() Kind
	Pos() Position
	// IsStrict reports whether this node lexically sits in strict-mode
	// code (the parser's propagated `strict` annotation).
	IsStrict() bool
}

// Base is embedded by concrete node types to supply Kind/Pos without
// boilerplate: a small shared header plus variant-specific fields rather
// than deep inheritance.
type Base struct {
	Kind_ Kind
	Pos_  Position

	// Strict records whether this node lexically sits in strict-mode code.
	// Propagated by the host parser to every node under a strict scope.
	Strict bool
}

func (b Base) NodeKind() Kind { return b.Kind_ }
func (b Base) Pos() Position  { return b.Pos_ }
func (b Base) IsStrict() bool { return b.Strict }

// FunctionLike is implemented by FunctionDeclaration/FunctionExpression/
// ArrowFunctionExpression/MethodDefinition bodies — anything that can be the
// ECMAScriptCode of a function object.
type FunctionLike interface {
	Node
	FunctionParams() []Node
	FunctionBody() Node
	IsGenerator() bool
	IsAsync() bool
	IsArrow() bool
	SourceText() string
	TopLevel() bool
	Name() string
}
