package esvm

import (
	"fmt"

	"github.com/esvm-go/esvm/ast"
	"github.com/tidwall/gjson"
)

// LoadTree parses a JSON AST document (each node a {"kind": "...",
// ...per-kind fields} object) into an *ast.ProgramNode, the host's
// ingestion path in lieu of a bundled parser. Built on
// github.com/tidwall/gjson: the node shape is open-ended (a plugin may
// introduce node kinds this package doesn't know about), so a schemaless
// path-query reader is a better fit than a struct-tag-driven
// encoding/json Unmarshal, which would need one Go type per kind declared
// up front in a fixed discriminated union.
func LoadTree(jsonSource []byte) (*ast.ProgramNode, error) {
	if !gjson.ValidBytes(jsonSource) {
		return nil, fmt.Errorf("esvm: invalid JSON AST document")
	}
	root := gjson.ParseBytes(jsonSource)
	n, err := decodeNode(root)
	if err != nil {
		return nil, err
	}
	prog, ok := n.(*ast.ProgramNode)
	if !ok {
		return nil, fmt.Errorf("esvm: root node must be %q, got %q", ast.Program, kindOf(root))
	}
	return prog, nil
}

func kindOf(r gjson.Result) string { return r.Get("kind").String() }

func posOf(r gjson.Result) ast.Position {
	return ast.Position{
		Line:   int(r.Get("line").Int()),
		Column: int(r.Get("column").Int()),
	}
}

func baseOf(r gjson.Result, kind ast.Kind) ast.Base {
	return ast.Base{Kind_: kind, Pos_: posOf(r), Strict: r.Get("strict").Bool()}
}

// decodeNode dispatches on the "kind" field to build the matching concrete
// ast node. A nil/absent node (JSON null, or a missing optional field) is
// reported by the caller checking r.Exists() before calling this, except
// where a helper (decodeOptional) does that check inline.
func decodeNode(r gjson.Result) (ast.Node, error) {
	kind := ast.Kind(kindOf(r))
	switch kind {
	case ast.Program:
		body, err := decodeNodeList(r.Get("body"))
		if err != nil {
			return nil, err
		}
		return &ast.ProgramNode{Base: baseOf(r, kind), Body: body}, nil

	case ast.BlockStatement:
		body, err := decodeNodeList(r.Get("body"))
		if err != nil {
			return nil, err
		}
		return &ast.BlockStatementNode{Base: baseOf(r, kind), Body: body}, nil

	case ast.ExpressionStatement:
		expr, err := decodeRequired(r, "expression")
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStatementNode{Base: baseOf(r, kind), Expression: expr}, nil

	case ast.EmptyStatement:
		return &ast.EmptyStatementNode{Base: baseOf(r, kind)}, nil

	case ast.VariableDeclarator:
		id, err := decodeRequired(r, "id")
		if err != nil {
			return nil, err
		}
		init, err := decodeOptional(r, "init")
		if err != nil {
			return nil, err
		}
		return &ast.VariableDeclaratorNode{Base: baseOf(r, kind), ID: id, Init: init}, nil

	case ast.VariableDeclaration:
		var decls []*ast.VariableDeclaratorNode
		var err error
		r.Get("declarations").ForEach(func(_, v gjson.Result) bool {
			var n ast.Node
			n, err = decodeNode(v)
			if err != nil {
				return false
			}
			d, ok := n.(*ast.VariableDeclaratorNode)
			if !ok {
				err = fmt.Errorf("esvm: VariableDeclaration.declarations entry must be %q", ast.VariableDeclarator)
				return false
			}
			decls = append(decls, d)
			return true
		})
		if err != nil {
			return nil, err
		}
		return &ast.VariableDeclarationNode{Base: baseOf(r, kind), Kind: r.Get("varKind").String(), Declarations: decls}, nil

	case ast.FunctionDeclaration:
		id, err := decodeIdentifier(r, "id")
		if err != nil {
			return nil, err
		}
		params, err := decodeNodeList(r.Get("params"))
		if err != nil {
			return nil, err
		}
		body, err := decodeRequired(r, "body")
		if err != nil {
			return nil, err
		}
		return &ast.FunctionDeclarationNode{
			Base: baseOf(r, kind), ID: id, Params: params, Body: body,
			Generator: r.Get("generator").Bool(), Async: r.Get("async").Bool(),
			Source: r.Get("sourceText").String(), TopLevel_: r.Get("topLevel").Bool(),
		}, nil

	case ast.ReturnStatement:
		arg, err := decodeOptional(r, "argument")
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStatementNode{Base: baseOf(r, kind), Argument: arg}, nil

	case ast.IfStatement:
		test, err := decodeRequired(r, "test")
		if err != nil {
			return nil, err
		}
		cons, err := decodeRequired(r, "consequent")
		if err != nil {
			return nil, err
		}
		alt, err := decodeOptional(r, "alternate")
		if err != nil {
			return nil, err
		}
		return &ast.IfStatementNode{Base: baseOf(r, kind), Test: test, Consequent: cons, Alternate: alt}, nil

	case ast.ForStatement:
		init, err := decodeOptional(r, "init")
		if err != nil {
			return nil, err
		}
		test, err := decodeOptional(r, "test")
		if err != nil {
			return nil, err
		}
		update, err := decodeOptional(r, "update")
		if err != nil {
			return nil, err
		}
		body, err := decodeRequired(r, "body")
		if err != nil {
			return nil, err
		}
		return &ast.ForStatementNode{Base: baseOf(r, kind), Init: init, Test: test, Update: update, Body: body}, nil

	case ast.ForInStatement, ast.ForOfStatement:
		left, err := decodeRequired(r, "left")
		if err != nil {
			return nil, err
		}
		right, err := decodeRequired(r, "right")
		if err != nil {
			return nil, err
		}
		body, err := decodeRequired(r, "body")
		if err != nil {
			return nil, err
		}
		if kind == ast.ForInStatement {
			return &ast.ForInStatementNode{Base: baseOf(r, kind), Left: left, Right: right, Body: body}, nil
		}
		return &ast.ForOfStatementNode{Base: baseOf(r, kind), Left: left, Right: right, Body: body, Await: r.Get("await").Bool()}, nil

	case ast.WhileStatement:
		test, err := decodeRequired(r, "test")
		if err != nil {
			return nil, err
		}
		body, err := decodeRequired(r, "body")
		if err != nil {
			return nil, err
		}
		return &ast.WhileStatementNode{Base: baseOf(r, kind), Test: test, Body: body}, nil

	case ast.DoWhileStatement:
		test, err := decodeRequired(r, "test")
		if err != nil {
			return nil, err
		}
		body, err := decodeRequired(r, "body")
		if err != nil {
			return nil, err
		}
		return &ast.DoWhileStatementNode{Base: baseOf(r, kind), Test: test, Body: body}, nil

	case ast.BreakStatement:
		return &ast.BreakStatementNode{Base: baseOf(r, kind), Label: r.Get("label").String()}, nil

	case ast.ContinueStatement:
		return &ast.ContinueStatementNode{Base: baseOf(r, kind), Label: r.Get("label").String()}, nil

	case ast.ThrowStatement:
		arg, err := decodeRequired(r, "argument")
		if err != nil {
			return nil, err
		}
		return &ast.ThrowStatementNode{Base: baseOf(r, kind), Argument: arg}, nil

	case ast.CatchClause:
		param, err := decodeOptional(r, "param")
		if err != nil {
			return nil, err
		}
		bodyN, err := decodeRequired(r, "body")
		if err != nil {
			return nil, err
		}
		body, ok := bodyN.(*ast.BlockStatementNode)
		if !ok {
			return nil, fmt.Errorf("esvm: CatchClause.body must be %q", ast.BlockStatement)
		}
		return &ast.CatchClauseNode{Base: baseOf(r, kind), Param: param, Body: body}, nil

	case ast.TryStatement:
		blockN, err := decodeRequired(r, "block")
		if err != nil {
			return nil, err
		}
		block, ok := blockN.(*ast.BlockStatementNode)
		if !ok {
			return nil, fmt.Errorf("esvm: TryStatement.block must be %q", ast.BlockStatement)
		}
		var handler *ast.CatchClauseNode
		if hr := r.Get("handler"); hr.Exists() && hr.Type != gjson.Null {
			hn, err := decodeNode(hr)
			if err != nil {
				return nil, err
			}
			handler, ok = hn.(*ast.CatchClauseNode)
			if !ok {
				return nil, fmt.Errorf("esvm: TryStatement.handler must be %q", ast.CatchClause)
			}
		}
		var finalizer *ast.BlockStatementNode
		if fr := r.Get("finalizer"); fr.Exists() && fr.Type != gjson.Null {
			fn, err := decodeNode(fr)
			if err != nil {
				return nil, err
			}
			finalizer, ok = fn.(*ast.BlockStatementNode)
			if !ok {
				return nil, fmt.Errorf("esvm: TryStatement.finalizer must be %q", ast.BlockStatement)
			}
		}
		return &ast.TryStatementNode{Base: baseOf(r, kind), Block: block, Handler: handler, Finalizer: finalizer}, nil

	case ast.SwitchCase:
		test, err := decodeOptional(r, "test")
		if err != nil {
			return nil, err
		}
		cons, err := decodeNodeList(r.Get("consequent"))
		if err != nil {
			return nil, err
		}
		return &ast.SwitchCaseNode{Base: baseOf(r, kind), Test: test, Consequent: cons}, nil

	case ast.SwitchStatement:
		disc, err := decodeRequired(r, "discriminant")
		if err != nil {
			return nil, err
		}
		var cases []*ast.SwitchCaseNode
		r.Get("cases").ForEach(func(_, v gjson.Result) bool {
			n, derr := decodeNode(v)
			if derr != nil {
				err = derr
				return false
			}
			c, ok := n.(*ast.SwitchCaseNode)
			if !ok {
				err = fmt.Errorf("esvm: SwitchStatement.cases entry must be %q", ast.SwitchCase)
				return false
			}
			cases = append(cases, c)
			return true
		})
		if err != nil {
			return nil, err
		}
		return &ast.SwitchStatementNode{Base: baseOf(r, kind), Discriminant: disc, Cases: cases}, nil

	case ast.LabeledStatement:
		body, err := decodeRequired(r, "body")
		if err != nil {
			return nil, err
		}
		return &ast.LabeledStatementNode{Base: baseOf(r, kind), Label: r.Get("label").String(), Body: body}, nil

	case ast.ClassBody:
		body, err := decodeNodeList(r.Get("body"))
		if err != nil {
			return nil, err
		}
		return &ast.ClassBodyNode{Base: baseOf(r, kind), Body: body}, nil

	case ast.MethodDefinition:
		key, err := decodeRequired(r, "key")
		if err != nil {
			return nil, err
		}
		valueN, err := decodeRequired(r, "value")
		if err != nil {
			return nil, err
		}
		value, ok := valueN.(*ast.FunctionExpressionNode)
		if !ok {
			return nil, fmt.Errorf("esvm: MethodDefinition.value must be %q", ast.FunctionExpression)
		}
		return &ast.MethodDefinitionNode{
			Base: baseOf(r, kind), Key: key, Computed: r.Get("computed").Bool(),
			Kind: r.Get("methodKind").String(), Static: r.Get("static").Bool(), Value: value,
		}, nil

	case ast.PropertyDefinition:
		key, err := decodeRequired(r, "key")
		if err != nil {
			return nil, err
		}
		value, err := decodeOptional(r, "value")
		if err != nil {
			return nil, err
		}
		return &ast.PropertyDefinitionNode{
			Base: baseOf(r, kind), Key: key, Computed: r.Get("computed").Bool(),
			Static: r.Get("static").Bool(), Value: value, IsPrivate: r.Get("isPrivate").Bool(),
		}, nil

	case ast.ClassDeclaration, ast.ClassExpression:
		id, err := decodeIdentifier(r, "id")
		if err != nil {
			return nil, err
		}
		super, err := decodeOptional(r, "superClass")
		if err != nil {
			return nil, err
		}
		bodyN, err := decodeRequired(r, "body")
		if err != nil {
			return nil, err
		}
		body, ok := bodyN.(*ast.ClassBodyNode)
		if !ok {
			return nil, fmt.Errorf("esvm: class body must be %q", ast.ClassBody)
		}
		if kind == ast.ClassDeclaration {
			return &ast.ClassDeclarationNode{Base: baseOf(r, kind), ID: id, SuperClass: super, Body: body}, nil
		}
		return &ast.ClassExpressionNode{Base: baseOf(r, kind), ID: id, SuperClass: super, Body: body}, nil

	case ast.Identifier:
		return &ast.IdentifierNode{Base: baseOf(r, kind), Name: r.Get("name").String()}, nil

	case ast.PrivateIdentifier:
		return &ast.PrivateIdentifierNode{Base: baseOf(r, kind), Name: r.Get("name").String()}, nil

	case ast.NumericLiteral:
		return &ast.NumericLiteralNode{Base: baseOf(r, kind), Value: r.Get("value").Float()}, nil

	case ast.BigIntLiteral:
		return &ast.BigIntLiteralNode{Base: baseOf(r, kind), Raw: r.Get("raw").String()}, nil

	case ast.StringLiteral:
		return &ast.StringLiteralNode{Base: baseOf(r, kind), Value: r.Get("value").String()}, nil

	case ast.BooleanLiteral:
		return &ast.BooleanLiteralNode{Base: baseOf(r, kind), Value: r.Get("value").Bool()}, nil

	case ast.NullLiteral:
		return &ast.NullLiteralNode{Base: baseOf(r, kind)}, nil

	case ast.RegExpLiteral:
		return &ast.RegExpLiteralNode{Base: baseOf(r, kind), Pattern: r.Get("pattern").String(), Flags: r.Get("flags").String()}, nil

	case ast.TemplateLiteral:
		tl, err := decodeTemplateLiteral(r, kind)
		if err != nil {
			return nil, err
		}
		return tl, nil

	case ast.TaggedTemplateExpr:
		tag, err := decodeRequired(r, "tag")
		if err != nil {
			return nil, err
		}
		qr := r.Get("quasi")
		quasiN, err := decodeTemplateLiteral(qr, ast.TemplateLiteral)
		if err != nil {
			return nil, err
		}
		return &ast.TaggedTemplateExpressionNode{Base: baseOf(r, kind), Tag: tag, Quasi: quasiN}, nil

	case ast.ArrayExpression:
		elems, err := decodeNodeListSparse(r.Get("elements"))
		if err != nil {
			return nil, err
		}
		return &ast.ArrayExpressionNode{Base: baseOf(r, kind), Elements: elems}, nil

	case ast.Property:
		key, err := decodeRequired(r, "key")
		if err != nil {
			return nil, err
		}
		value, err := decodeRequired(r, "value")
		if err != nil {
			return nil, err
		}
		return &ast.PropertyNode{
			Base: baseOf(r, kind), Key: key, Value: value, Computed: r.Get("computed").Bool(),
			Shorthand: r.Get("shorthand").Bool(), Kind: defaultString(r.Get("propKind").String(), "init"),
		}, nil

	case ast.ObjectExpression:
		props, err := decodeNodeList(r.Get("properties"))
		if err != nil {
			return nil, err
		}
		return &ast.ObjectExpressionNode{Base: baseOf(r, kind), Properties: props}, nil

	case ast.FunctionExpression:
		id, err := decodeIdentifier(r, "id")
		if err != nil {
			return nil, err
		}
		params, err := decodeNodeList(r.Get("params"))
		if err != nil {
			return nil, err
		}
		body, err := decodeRequired(r, "body")
		if err != nil {
			return nil, err
		}
		return &ast.FunctionExpressionNode{
			Base: baseOf(r, kind), ID: id, Params: params, Body: body,
			Generator: r.Get("generator").Bool(), Async: r.Get("async").Bool(),
			Source: r.Get("sourceText").String(), TopLevel_: r.Get("topLevel").Bool(),
		}, nil

	case ast.ArrowFunctionExpr:
		params, err := decodeNodeList(r.Get("params"))
		if err != nil {
			return nil, err
		}
		body, err := decodeRequired(r, "body")
		if err != nil {
			return nil, err
		}
		return &ast.ArrowFunctionExpressionNode{
			Base: baseOf(r, kind), Params: params, Body: body,
			ExpressionBody: r.Get("expressionBody").Bool(), Async: r.Get("async").Bool(),
			Source: r.Get("sourceText").String(),
		}, nil

	case ast.UnaryExpression:
		arg, err := decodeRequired(r, "argument")
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpressionNode{Base: baseOf(r, kind), Operator: r.Get("operator").String(), Argument: arg}, nil

	case ast.UpdateExpression:
		arg, err := decodeRequired(r, "argument")
		if err != nil {
			return nil, err
		}
		return &ast.UpdateExpressionNode{Base: baseOf(r, kind), Operator: r.Get("operator").String(), Argument: arg, Prefix: r.Get("prefix").Bool()}, nil

	case ast.BinaryExpression:
		left, err := decodeRequired(r, "left")
		if err != nil {
			return nil, err
		}
		right, err := decodeRequired(r, "right")
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpressionNode{Base: baseOf(r, kind), Operator: r.Get("operator").String(), Left: left, Right: right}, nil

	case ast.LogicalExpression:
		left, err := decodeRequired(r, "left")
		if err != nil {
			return nil, err
		}
		right, err := decodeRequired(r, "right")
		if err != nil {
			return nil, err
		}
		return &ast.LogicalExpressionNode{Base: baseOf(r, kind), Operator: r.Get("operator").String(), Left: left, Right: right}, nil

	case ast.AssignmentExpression:
		left, err := decodeRequired(r, "left")
		if err != nil {
			return nil, err
		}
		right, err := decodeRequired(r, "right")
		if err != nil {
			return nil, err
		}
		return &ast.AssignmentExpressionNode{Base: baseOf(r, kind), Operator: r.Get("operator").String(), Left: left, Right: right}, nil

	case ast.ConditionalExpression:
		test, err := decodeRequired(r, "test")
		if err != nil {
			return nil, err
		}
		cons, err := decodeRequired(r, "consequent")
		if err != nil {
			return nil, err
		}
		alt, err := decodeRequired(r, "alternate")
		if err != nil {
			return nil, err
		}
		return &ast.ConditionalExpressionNode{Base: baseOf(r, kind), Test: test, Consequent: cons, Alternate: alt}, nil

	case ast.CallExpression:
		callee, err := decodeRequired(r, "callee")
		if err != nil {
			return nil, err
		}
		args, err := decodeNodeList(r.Get("arguments"))
		if err != nil {
			return nil, err
		}
		return &ast.CallExpressionNode{Base: baseOf(r, kind), Callee: callee, Arguments: args, Optional: r.Get("optional").Bool()}, nil

	case ast.NewExpression:
		callee, err := decodeRequired(r, "callee")
		if err != nil {
			return nil, err
		}
		args, err := decodeNodeList(r.Get("arguments"))
		if err != nil {
			return nil, err
		}
		return &ast.NewExpressionNode{Base: baseOf(r, kind), Callee: callee, Arguments: args}, nil

	case ast.MemberExpression:
		obj, err := decodeRequired(r, "object")
		if err != nil {
			return nil, err
		}
		prop, err := decodeRequired(r, "property")
		if err != nil {
			return nil, err
		}
		return &ast.MemberExpressionNode{Base: baseOf(r, kind), Object: obj, Property: prop, Computed: r.Get("computed").Bool(), Optional: r.Get("optional").Bool()}, nil

	case ast.SequenceExpression:
		exprs, err := decodeNodeList(r.Get("expressions"))
		if err != nil {
			return nil, err
		}
		return &ast.SequenceExpressionNode{Base: baseOf(r, kind), Expressions: exprs}, nil

	case ast.SpreadElement:
		arg, err := decodeRequired(r, "argument")
		if err != nil {
			return nil, err
		}
		return &ast.SpreadElementNode{Base: baseOf(r, kind), Argument: arg}, nil

	case ast.YieldExpression:
		arg, err := decodeOptional(r, "argument")
		if err != nil {
			return nil, err
		}
		return &ast.YieldExpressionNode{Base: baseOf(r, kind), Argument: arg, Delegate: r.Get("delegate").Bool()}, nil

	case ast.AwaitExpression:
		arg, err := decodeRequired(r, "argument")
		if err != nil {
			return nil, err
		}
		return &ast.AwaitExpressionNode{Base: baseOf(r, kind), Argument: arg}, nil

	case ast.ThisExpression:
		return &ast.ThisExpressionNode{Base: baseOf(r, kind)}, nil

	case ast.SuperExpression:
		return &ast.SuperExpressionNode{Base: baseOf(r, kind)}, nil

	case ast.MetaProperty:
		return &ast.MetaPropertyNode{Base: baseOf(r, kind), Meta: r.Get("meta").String(), Property: r.Get("property").String()}, nil

	case ast.ArrayPattern:
		elems, err := decodeNodeListSparse(r.Get("elements"))
		if err != nil {
			return nil, err
		}
		return &ast.ArrayPatternNode{Base: baseOf(r, kind), Elements: elems}, nil

	case ast.ObjectPattern:
		props, err := decodeNodeList(r.Get("properties"))
		if err != nil {
			return nil, err
		}
		return &ast.ObjectPatternNode{Base: baseOf(r, kind), Properties: props}, nil

	case "ObjectPatternProperty":
		key, err := decodeRequired(r, "key")
		if err != nil {
			return nil, err
		}
		value, err := decodeRequired(r, "value")
		if err != nil {
			return nil, err
		}
		return &ast.ObjectPatternPropertyNode{Base: baseOf(r, kind), Key: key, Value: value, Computed: r.Get("computed").Bool(), Shorthand: r.Get("shorthand").Bool()}, nil

	case ast.AssignmentPattern:
		left, err := decodeRequired(r, "left")
		if err != nil {
			return nil, err
		}
		right, err := decodeRequired(r, "right")
		if err != nil {
			return nil, err
		}
		return &ast.AssignmentPatternNode{Base: baseOf(r, kind), Left: left, Right: right}, nil

	case ast.RestElement:
		arg, err := decodeRequired(r, "argument")
		if err != nil {
			return nil, err
		}
		return &ast.RestElementNode{Base: baseOf(r, kind), Argument: arg}, nil

	default:
		return nil, fmt.Errorf("esvm: unrecognized AST node kind %q", kind)
	}
}

func decodeTemplateLiteral(r gjson.Result, kind ast.Kind) (*ast.TemplateLiteralNode, error) {
	var quasis []ast.TemplateElement
	r.Get("quasis").ForEach(func(_, v gjson.Result) bool {
		quasis = append(quasis, ast.TemplateElement{
			Cooked: v.Get("cooked").String(),
			Raw:    v.Get("raw").String(),
			Tail:   v.Get("tail").Bool(),
		})
		return true
	})
	exprs, err := decodeNodeList(r.Get("expressions"))
	if err != nil {
		return nil, err
	}
	return &ast.TemplateLiteralNode{Base: baseOf(r, kind), Quasis: quasis, Expressions: exprs}, nil
}

func decodeIdentifier(r gjson.Result, field string) (*ast.IdentifierNode, error) {
	n, err := decodeOptional(r, field)
	if err != nil || n == nil {
		return nil, err
	}
	id, ok := n.(*ast.IdentifierNode)
	if !ok {
		return nil, fmt.Errorf("esvm: %q must be %q", field, ast.Identifier)
	}
	return id, nil
}

// decodeRequired decodes a field that must be present and non-null.
func decodeRequired(r gjson.Result, field string) (ast.Node, error) {
	v := r.Get(field)
	if !v.Exists() || v.Type == gjson.Null {
		return nil, fmt.Errorf("esvm: missing required field %q on %q node", field, kindOf(r))
	}
	return decodeNode(v)
}

// decodeOptional decodes a field that may be absent or JSON null, returning
// a nil ast.Node (not a typed-nil) in that case so callers can compare
// against nil directly.
func decodeOptional(r gjson.Result, field string) (ast.Node, error) {
	v := r.Get(field)
	if !v.Exists() || v.Type == gjson.Null {
		return nil, nil
	}
	return decodeNode(v)
}

func decodeNodeList(r gjson.Result) ([]ast.Node, error) {
	var out []ast.Node
	var err error
	r.ForEach(func(_, v gjson.Result) bool {
		n, derr := decodeNode(v)
		if derr != nil {
			err = derr
			return false
		}
		out = append(out, n)
		return true
	})
	return out, err
}

// decodeNodeListSparse is like decodeNodeList but preserves JSON nulls as
// nil entries (array/pattern elisions, e.g. `[1, , 3]`).
func decodeNodeListSparse(r gjson.Result) ([]ast.Node, error) {
	var out []ast.Node
	var err error
	r.ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.Null {
			out = append(out, nil)
			return true
		}
		n, derr := decodeNode(v)
		if derr != nil {
			err = derr
			return false
		}
		out = append(out, n)
		return true
	})
	return out, err
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
