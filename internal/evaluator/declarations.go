package evaluator

import (
	"github.com/esvm-go/esvm/ast"
	"github.com/esvm-go/esvm/internal/runtime"
)

// globalDeclarationInstantiation implements ECMA-262's pre-pass over a
// script's top-level statements: hoist `var`/function declarations onto
// the global object record, hoist `let`/`const`/class onto the global
// declarative record (uninitialized, i.e. in the TDZ). A dedicated
// hoisting pass runs before statement evaluation, split across the two
// global environment records.
func (e *Evaluator) globalDeclarationInstantiation(ctx *runtime.ExecutionContext, program *ast.ProgramNode) runtime.Completion {
	genv, ok := ctx.LexicalEnvironment.(*runtime.GlobalEnvironment)
	if !ok {
		return runtime.NormalCompletion(runtime.Undefined{})
	}
	lexNames, varNames, funcDecls := collectTopLevelDeclarations(program.Body)

	varOrFunc := make(map[string]bool, len(varNames)+len(funcDecls))
	for _, name := range varNames {
		varOrFunc[name] = true
	}
	for _, fd := range funcDecls {
		varOrFunc[fd.Name()] = true
	}
	for _, name := range lexNames {
		if genv.HasLexicalDeclaration(name.name) || genv.HasVarDeclaration(name.name) || varOrFunc[name.name] {
			return e.throwSyntaxError("Identifier '" + name.name + "' has already been declared")
		}
		if genv.HasRestrictedGlobalProperty(name.name) {
			return e.throwSyntaxError("Identifier '" + name.name + "' is restricted")
		}
	}
	for _, name := range varNames {
		if genv.HasLexicalDeclaration(name) {
			return e.throwSyntaxError("Identifier '" + name + "' has already been declared")
		}
	}
	for _, fd := range funcDecls {
		if !genv.CanDeclareGlobalVar(fd.Name()) {
			return e.throwTypeError("cannot declare global function '" + fd.Name() + "'")
		}
	}

	declaredFuncNames := make(map[string]bool)
	for i := len(funcDecls) - 1; i >= 0; i-- {
		fd := funcDecls[i]
		if declaredFuncNames[fd.Name()] {
			continue
		}
		declaredFuncNames[fd.Name()] = true
		fn := e.instantiateFunctionObject(ctx, fd)
		genv.CreateGlobalFunctionBinding(fd.Name(), fn, false)
	}
	for _, name := range varNames {
		if declaredFuncNames[name] {
			continue
		}
		genv.CreateGlobalVarBinding(name, false)
	}
	for _, decl := range lexNames {
		if decl.isConst {
			genv.DeclarativeRecord.CreateImmutableBinding(decl.name, true)
		} else {
			genv.DeclarativeRecord.CreateMutableBinding(decl.name, false)
		}
	}
	return runtime.NormalCompletion(runtime.Undefined{})
}

type lexDecl struct {
	name    string
	isConst bool
}

// collectTopLevelDeclarations walks a statement list (never descending into
// nested function bodies, descending into blocks/ifs/loops/try/switch for
// var per spec's VarDeclaredNames, and only the top level for lexical
// names and function declarations) collecting the three declaration buckets
// hoisting needs. Kept intentionally non-exhaustive (a handful of
// statement shapes) to match the scope this evaluator actually executes.
func collectTopLevelDeclarations(body []ast.Node) (lex []lexDecl, vars []string, funcs []ast.FunctionLike) {
	var walkVar func(n ast.Node)
	seenVar := map[string]bool{}
	addVar := func(name string) {
		if !seenVar[name] {
			seenVar[name] = true
			vars = append(vars, name)
		}
	}
	walkVar = func(n ast.Node) {
		switch s := n.(type) {
		case *ast.VariableDeclarationNode:
			if s.Kind == "var" {
				for _, d := range s.Declarations {
					bindingNames(d.ID, addVar)
				}
			}
		case *ast.BlockStatementNode:
			for _, st := range s.Body {
				walkVar(st)
			}
		case *ast.IfStatementNode:
			walkVar(s.Consequent)
			if s.Alternate != nil {
				walkVar(s.Alternate)
			}
		case *ast.ForStatementNode:
			if decl, ok := s.Init.(*ast.VariableDeclarationNode); ok {
				walkVar(decl)
			}
			walkVar(s.Body)
		case *ast.ForInStatementNode:
			if decl, ok := s.Left.(*ast.VariableDeclarationNode); ok {
				walkVar(decl)
			}
			walkVar(s.Body)
		case *ast.ForOfStatementNode:
			if decl, ok := s.Left.(*ast.VariableDeclarationNode); ok {
				walkVar(decl)
			}
			walkVar(s.Body)
		case *ast.WhileStatementNode:
			walkVar(s.Body)
		case *ast.DoWhileStatementNode:
			walkVar(s.Body)
		case *ast.TryStatementNode:
			walkVar(s.Block)
			if s.Handler != nil {
				walkVar(s.Handler.Body)
			}
			if s.Finalizer != nil {
				walkVar(s.Finalizer)
			}
		case *ast.LabeledStatementNode:
			walkVar(s.Body)
		case *ast.SwitchStatementNode:
			for _, c := range s.Cases {
				for _, st := range c.Consequent {
					walkVar(st)
				}
			}
		}
	}

	for _, n := range body {
		switch s := n.(type) {
		case *ast.VariableDeclarationNode:
			if s.Kind == "var" {
				walkVar(s)
			} else {
				for _, d := range s.Declarations {
					bindingNames(d.ID, func(name string) {
						lex = append(lex, lexDecl{name: name, isConst: s.Kind == "const"})
					})
				}
			}
		case *ast.FunctionDeclarationNode:
			funcs = append(funcs, s)
		case *ast.ClassDeclarationNode:
			if s.ID != nil {
				lex = append(lex, lexDecl{name: s.ID.Name})
			}
		default:
			walkVar(n)
		}
	}
	return lex, vars, funcs
}

// bindingNames extracts the flat set of identifier names a (possibly
// destructuring) binding target introduces.
func bindingNames(target ast.Node, yield func(name string)) {
	switch t := target.(type) {
	case *ast.IdentifierNode:
		yield(t.Name)
	case *ast.ArrayPatternNode:
		for _, el := range t.Elements {
			if el == nil {
				continue
			}
			bindingNames(el, yield)
		}
	case *ast.ObjectPatternNode:
		for _, p := range t.Properties {
			switch pp := p.(type) {
			case *ast.ObjectPatternPropertyNode:
				bindingNames(pp.Value, yield)
			case *ast.RestElementNode:
				bindingNames(pp.Argument, yield)
			}
		}
	case *ast.AssignmentPatternNode:
		bindingNames(t.Left, yield)
	case *ast.RestElementNode:
		bindingNames(t.Argument, yield)
	}
}

// functionDeclarationInstantiation runs ECMA-262's per-call setup: binds
// parameters (with default/destructuring support) and hoists the function
// body's own var/function/lexical declarations into the call's variable
// environment (ctx.VariableEnvironment). The arguments object is created
// separately, by installArgumentsObject.
func (e *Evaluator) functionDeclarationInstantiation(ctx *runtime.ExecutionContext, fn ast.FunctionLike, args []runtime.Value) runtime.Completion {
	env := ctx.VariableEnvironment
	params := fn.FunctionParams()
	for i, p := range params {
		var argVal runtime.Value = runtime.Undefined{}
		if rest, ok := p.(*ast.RestElementNode); ok {
			remaining := []runtime.Value{}
			if i < len(args) {
				remaining = args[i:]
			}
			arr := e.newArray(ctx.Realm, remaining)
			if c := e.bindPattern(ctx, env, rest.Argument, arr, true); c.IsAbrupt() {
				return c
			}
			break
		}
		if i < len(args) {
			argVal = args[i]
		}
		if c := e.bindPattern(ctx, env, p, argVal, true); c.IsAbrupt() {
			return c
		}
	}

	var bodyStatements []ast.Node
	switch b := fn.FunctionBody().(type) {
	case *ast.BlockStatementNode:
		bodyStatements = b.Body
	}
	lexNames, varNames, funcDecls := collectTopLevelDeclarations(bodyStatements)
	decl, isDeclEnv := env.(*runtime.DeclarativeEnvironment)
	_ = isDeclEnv
	for _, name := range varNames {
		if !env.HasBinding(name) {
			env.CreateMutableBinding(name, false)
			env.InitializeBinding(name, runtime.Undefined{})
		}
	}
	for i := len(funcDecls) - 1; i >= 0; i-- {
		fd := funcDecls[i]
		if !env.HasBinding(fd.Name()) {
			env.CreateMutableBinding(fd.Name(), false)
		}
		env.InitializeBinding(fd.Name(), e.instantiateFunctionObject(ctx, fd))
	}
	for _, ld := range lexNames {
		if ld.isConst {
			env.CreateImmutableBinding(ld.name, true)
		} else {
			env.CreateMutableBinding(ld.name, false)
		}
	}
	_ = decl
	return runtime.NormalCompletion(runtime.Undefined{})
}
