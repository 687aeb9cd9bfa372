package evaluator

import (
	"github.com/esvm-go/esvm/ast"
	"github.com/esvm-go/esvm/internal/runtime"
)

// evalStatementList threads the completion-value-carryover the spec's
// UpdateEmpty abstract operation describes: a block's overall completion
// value is the last statement that produced one, not necessarily the
// final statement (e.g. `if (x) 1;` as the last statement of a block
// yields 1 even though the if-statement itself "produces" that via its
// branch).
func (e *Evaluator) evalStatementList(ctx *runtime.ExecutionContext, body []ast.Node) runtime.Completion {
	result := runtime.NormalCompletion(runtime.Undefined{})
	for _, stmt := range body {
		c := e.evalStatement(ctx, stmt)
		if c.Value == nil {
			c.Value = result.Value
		}
		if c.IsAbrupt() {
			return c
		}
		result = c
	}
	return result
}

func (e *Evaluator) evalStatement(ctx *runtime.ExecutionContext, n ast.Node) runtime.Completion {
	if e.StepBudget > 0 {
		e.StepBudget--
		if e.StepBudget == 0 {
			return e.throwRangeError("evaluation step budget exceeded")
		}
	}
	switch s := n.(type) {
	case *ast.ExpressionStatementNode:
		c := e.evalExpression(ctx, s.Expression)
		return c
	case *ast.EmptyStatementNode:
		return runtime.NormalCompletion(nil)
	case *ast.BlockStatementNode:
		return e.evalBlock(ctx, s)
	case *ast.VariableDeclarationNode:
		return e.evalVariableDeclaration(ctx, s)
	case *ast.FunctionDeclarationNode:
		return runtime.NormalCompletion(nil) // already hoisted
	case *ast.ClassDeclarationNode:
		return e.evalClassDeclaration(ctx, s)
	case *ast.IfStatementNode:
		return e.evalIf(ctx, s)
	case *ast.ForStatementNode:
		return e.evalFor(ctx, s, "")
	case *ast.ForInStatementNode:
		return e.evalForIn(ctx, s, "")
	case *ast.ForOfStatementNode:
		return e.evalForOf(ctx, s, "")
	case *ast.WhileStatementNode:
		return e.evalWhile(ctx, s, "")
	case *ast.DoWhileStatementNode:
		return e.evalDoWhile(ctx, s, "")
	case *ast.ReturnStatementNode:
		var v runtime.Value = runtime.Undefined{}
		if s.Argument != nil {
			c := e.evalExpression(ctx, s.Argument)
			if c.IsAbrupt() {
				return c
			}
			v = c.Value
		}
		return runtime.ReturnCompletion(v)
	case *ast.BreakStatementNode:
		return runtime.BreakCompletion(s.Label)
	case *ast.ContinueStatementNode:
		return runtime.ContinueCompletion(s.Label)
	case *ast.ThrowStatementNode:
		c := e.evalExpression(ctx, s.Argument)
		if c.IsAbrupt() {
			return c
		}
		return runtime.ThrowCompletion(c.Value)
	case *ast.TryStatementNode:
		return e.evalTry(ctx, s)
	case *ast.SwitchStatementNode:
		return e.evalSwitch(ctx, s)
	case *ast.LabeledStatementNode:
		return e.evalLabeled(ctx, s)
	default:
		return runtime.NormalCompletion(nil)
	}
}

func (e *Evaluator) evalBlock(ctx *runtime.ExecutionContext, b *ast.BlockStatementNode) runtime.Completion {
	blockEnv := runtime.NewDeclarativeEnvironment(ctx.LexicalEnvironment)
	lexNames, _, funcDecls := collectTopLevelDeclarations(b.Body)
	for _, ld := range lexNames {
		if ld.isConst {
			blockEnv.CreateImmutableBinding(ld.name, true)
		} else {
			blockEnv.CreateMutableBinding(ld.name, false)
		}
	}
	inner := *ctx
	inner.LexicalEnvironment = blockEnv
	for _, fd := range funcDecls {
		blockEnv.InitializeBinding(fd.Name(), e.instantiateFunctionObject(&inner, fd))
	}
	return e.evalStatementList(&inner, b.Body)
}

func (e *Evaluator) evalVariableDeclaration(ctx *runtime.ExecutionContext, s *ast.VariableDeclarationNode) runtime.Completion {
	for _, d := range s.Declarations {
		var v runtime.Value = runtime.Undefined{}
		if d.Init != nil {
			c := e.evalExpression(ctx, d.Init)
			if c.IsAbrupt() {
				return c
			}
			v = c.Value
		} else if s.Kind == "var" {
			continue // leave var's hoisted undefined binding alone
		}
		env := ctx.VariableEnvironment
		if s.Kind != "var" {
			env = ctx.LexicalEnvironment
		}
		if c := e.bindDeclarator(ctx, env, d.ID, v, s.Kind == "var"); c.IsAbrupt() {
			return c
		}
	}
	return runtime.NormalCompletion(nil)
}

// bindDeclarator initializes (for let/const/function params) or assigns
// (for var, which was already created undefined during hoisting) name(s)
// bound by a possibly-destructuring declarator target.
func (e *Evaluator) bindDeclarator(ctx *runtime.ExecutionContext, env runtime.EnvironmentRecord, target ast.Node, value runtime.Value, isVar bool) runtime.Completion {
	return e.bindPattern(ctx, env, target, value, !isVar)
}

func (e *Evaluator) evalIf(ctx *runtime.ExecutionContext, s *ast.IfStatementNode) runtime.Completion {
	c := e.evalExpression(ctx, s.Test)
	if c.IsAbrupt() {
		return c
	}
	if runtime.ToBoolean(c.Value) {
		return e.evalStatement(ctx, s.Consequent)
	}
	if s.Alternate != nil {
		return e.evalStatement(ctx, s.Alternate)
	}
	return runtime.NormalCompletion(nil)
}

// loopResult folds a loop body's completion into the running result value
// and decides whether the loop should continue, break, or unwind,
// matching the spec's LoopContinues abstract operation for labeled/
// unlabeled break and continue.
func loopResult(c runtime.Completion, label string, result *runtime.Completion) (stop bool, abrupt runtime.Completion) {
	if c.Value != nil {
		result.Value = c.Value
	}
	switch c.Type {
	case runtime.Break:
		if c.Target == "" || c.Target == label {
			return true, runtime.Completion{}
		}
		return true, c
	case runtime.Continue:
		if c.Target == "" || c.Target == label {
			return false, runtime.Completion{}
		}
		return true, c
	case runtime.Throw, runtime.Return:
		return true, c
	}
	return false, runtime.Completion{}
}

func (e *Evaluator) evalWhile(ctx *runtime.ExecutionContext, s *ast.WhileStatementNode, label string) runtime.Completion {
	result := runtime.NormalCompletion(runtime.Undefined{})
	for {
		tc := e.evalExpression(ctx, s.Test)
		if tc.IsAbrupt() {
			return tc
		}
		if !runtime.ToBoolean(tc.Value) {
			break
		}
		bc := e.evalStatement(ctx, s.Body)
		stop, abrupt := loopResult(bc, label, &result)
		if abrupt.Type != runtime.Normal || abrupt.Value != nil {
			return abrupt
		}
		if stop {
			break
		}
	}
	return result
}

func (e *Evaluator) evalDoWhile(ctx *runtime.ExecutionContext, s *ast.DoWhileStatementNode, label string) runtime.Completion {
	result := runtime.NormalCompletion(runtime.Undefined{})
	for {
		bc := e.evalStatement(ctx, s.Body)
		stop, abrupt := loopResult(bc, label, &result)
		if abrupt.Type != runtime.Normal || abrupt.Value != nil {
			return abrupt
		}
		if stop {
			break
		}
		tc := e.evalExpression(ctx, s.Test)
		if tc.IsAbrupt() {
			return tc
		}
		if !runtime.ToBoolean(tc.Value) {
			break
		}
	}
	return result
}

func (e *Evaluator) evalFor(ctx *runtime.ExecutionContext, s *ast.ForStatementNode, label string) runtime.Completion {
	loopCtx := *ctx
	loopEnv := runtime.NewDeclarativeEnvironment(ctx.LexicalEnvironment)
	loopCtx.LexicalEnvironment = loopEnv
	if s.Init != nil {
		if decl, ok := s.Init.(*ast.VariableDeclarationNode); ok {
			if decl.Kind != "var" {
				for _, d := range decl.Declarations {
					bindingNames(d.ID, func(name string) {
						if decl.Kind == "const" {
							loopEnv.CreateImmutableBinding(name, true)
						} else {
							loopEnv.CreateMutableBinding(name, false)
						}
					})
				}
			}
			if c := e.evalVariableDeclaration(&loopCtx, decl); c.IsAbrupt() {
				return c
			}
		} else {
			if c := e.evalExpression(&loopCtx, s.Init); c.IsAbrupt() {
				return c
			}
		}
	}
	result := runtime.NormalCompletion(runtime.Undefined{})
	for {
		if s.Test != nil {
			tc := e.evalExpression(&loopCtx, s.Test)
			if tc.IsAbrupt() {
				return tc
			}
			if !runtime.ToBoolean(tc.Value) {
				break
			}
		}
		bc := e.evalStatement(&loopCtx, s.Body)
		stop, abrupt := loopResult(bc, label, &result)
		if abrupt.Type != runtime.Normal || abrupt.Value != nil {
			return abrupt
		}
		if stop {
			break
		}
		if s.Update != nil {
			if c := e.evalExpression(&loopCtx, s.Update); c.IsAbrupt() {
				return c
			}
		}
	}
	return result
}

func (e *Evaluator) evalForIn(ctx *runtime.ExecutionContext, s *ast.ForInStatementNode, label string) runtime.Completion {
	rc := e.evalExpression(ctx, s.Right)
	if rc.IsAbrupt() {
		return rc
	}
	obj, ok := rc.Value.(*runtime.Obj)
	result := runtime.NormalCompletion(runtime.Undefined{})
	if !ok {
		return result
	}
	seen := map[string]bool{}
	for cur := obj; cur != nil; cur = cur.GetPrototypeOf() {
		for _, key := range cur.OwnPropertyKeys() {
			if key.IsSym || seen[key.Str] {
				continue
			}
			seen[key.Str] = true
			desc := cur.GetOwnProperty(key)
			if desc == nil || desc.Enumerable == nil || !*desc.Enumerable {
				continue
			}
			iterCtx := *ctx
			iterEnv := runtime.NewDeclarativeEnvironment(ctx.LexicalEnvironment)
			iterCtx.LexicalEnvironment = iterEnv
			if c := e.assignForTarget(&iterCtx, s.Left, runtime.NewStringFromGo(key.Str)); c.IsAbrupt() {
				return c
			}
			bc := e.evalStatement(&iterCtx, s.Body)
			stop, abrupt := loopResult(bc, label, &result)
			if abrupt.Type != runtime.Normal || abrupt.Value != nil {
				return abrupt
			}
			if stop {
				return result
			}
		}
	}
	return result
}

func (e *Evaluator) evalForOf(ctx *runtime.ExecutionContext, s *ast.ForOfStatementNode, label string) runtime.Completion {
	rc := e.evalExpression(ctx, s.Right)
	if rc.IsAbrupt() {
		return rc
	}
	if s.Await {
		return e.evalForAwaitOf(ctx, s, rc.Value, label)
	}
	items, c := e.iterableToSlice(ctx, rc.Value)
	if c.IsAbrupt() {
		return c
	}
	result := runtime.NormalCompletion(runtime.Undefined{})
	for _, item := range items {
		iterCtx := *ctx
		iterEnv := runtime.NewDeclarativeEnvironment(ctx.LexicalEnvironment)
		iterCtx.LexicalEnvironment = iterEnv
		if c := e.assignForTarget(&iterCtx, s.Left, item); c.IsAbrupt() {
			return c
		}
		bc := e.evalStatement(&iterCtx, s.Body)
		stop, abrupt := loopResult(bc, label, &result)
		if abrupt.Type != runtime.Normal || abrupt.Value != nil {
			return abrupt
		}
		if stop {
			break
		}
	}
	return result
}

// evalForAwaitOf implements `for await (... of ...)` (ECMA-262's async
// iteration, the engine's lazy counterpart to evalForOf's eager
// iterableToSlice path): each next() call goes through the async iterator
// protocol and is awaited individually, so the body's side effects and any
// promise microtasks queued between iterations interleave exactly as the
// async iteration protocol requires — unlike the sync path, this one never
// materializes the whole sequence up front, so it works with an async
// generator that never terminates as long as the loop body eventually
// breaks.
func (e *Evaluator) evalForAwaitOf(ctx *runtime.ExecutionContext, s *ast.ForOfStatementNode, iterable runtime.Value, label string) runtime.Completion {
	iterObj, c := e.getIterator(ctx, iterable, true)
	if c.IsAbrupt() {
		return c
	}
	result := runtime.NormalCompletion(runtime.Undefined{})
	for {
		stepC, _ := e.callIteratorMethod(ctx, iterObj, "next", runtime.Undefined{}, true)
		if stepC.IsAbrupt() {
			return stepC
		}
		done, val := iterResultFields(stepC.Value)
		if done {
			break
		}
		iterCtx := *ctx
		iterEnv := runtime.NewDeclarativeEnvironment(ctx.LexicalEnvironment)
		iterCtx.LexicalEnvironment = iterEnv
		if c := e.assignForTarget(&iterCtx, s.Left, val); c.IsAbrupt() {
			e.closeIterator(ctx, iterObj, true)
			return c
		}
		bc := e.evalStatement(&iterCtx, s.Body)
		stop, abrupt := loopResult(bc, label, &result)
		if abrupt.Type != runtime.Normal || abrupt.Value != nil {
			e.closeIterator(ctx, iterObj, true)
			return abrupt
		}
		if stop {
			e.closeIterator(ctx, iterObj, true)
			break
		}
	}
	return result
}

// assignForTarget binds the per-iteration value of a for-in/for-of loop,
// declaring a fresh per-iteration binding for `let`/`const` targets (spec's
// per-iteration environment, needed for closures captured inside the loop
// body to see a distinct binding each time) and assigning through an
// existing binding otherwise.
func (e *Evaluator) assignForTarget(ctx *runtime.ExecutionContext, left ast.Node, value runtime.Value) runtime.Completion {
	if decl, ok := left.(*ast.VariableDeclarationNode); ok {
		target := decl.Declarations[0].ID
		env := ctx.LexicalEnvironment
		if decl.Kind == "var" {
			env = ctx.VariableEnvironment
		}
		bindingNames(target, func(name string) {
			if !env.HasBinding(name) {
				if decl.Kind == "const" {
					env.CreateImmutableBinding(name, true)
				} else {
					env.CreateMutableBinding(name, false)
				}
			}
		})
		return e.bindPattern(ctx, env, target, value, true)
	}
	ref := e.evalReference(ctx, left)
	if ref.c.IsAbrupt() {
		return ref.c
	}
	return runtime.PutValue(ctx.Realm, ref.ref, value)
}

func (e *Evaluator) evalTry(ctx *runtime.ExecutionContext, s *ast.TryStatementNode) runtime.Completion {
	c := e.evalBlock(ctx, s.Block)
	if c.Type == runtime.Throw && s.Handler != nil {
		catchCtx := *ctx
		catchEnv := runtime.NewDeclarativeEnvironment(ctx.LexicalEnvironment)
		catchCtx.LexicalEnvironment = catchEnv
		if s.Handler.Param != nil {
			bindingNames(s.Handler.Param, func(name string) { catchEnv.CreateMutableBinding(name, true) })
			if bc := e.bindPattern(&catchCtx, catchEnv, s.Handler.Param, c.Value, true); bc.IsAbrupt() {
				c = bc
			} else {
				c = e.evalBlock(&catchCtx, s.Handler.Body)
			}
		} else {
			c = e.evalBlock(&catchCtx, s.Handler.Body)
		}
	}
	if s.Finalizer != nil {
		fc := e.evalBlock(ctx, s.Finalizer)
		if fc.IsAbrupt() {
			return fc
		}
	}
	return c
}

func (e *Evaluator) evalSwitch(ctx *runtime.ExecutionContext, s *ast.SwitchStatementNode) runtime.Completion {
	dc := e.evalExpression(ctx, s.Discriminant)
	if dc.IsAbrupt() {
		return dc
	}
	switchEnv := runtime.NewDeclarativeEnvironment(ctx.LexicalEnvironment)
	switchCtx := *ctx
	switchCtx.LexicalEnvironment = switchEnv
	var allStmts []ast.Node
	for _, c := range s.Cases {
		allStmts = append(allStmts, c.Consequent...)
	}
	lexNames, _, funcDecls := collectTopLevelDeclarations(allStmts)
	for _, ld := range lexNames {
		if ld.isConst {
			switchEnv.CreateImmutableBinding(ld.name, true)
		} else {
			switchEnv.CreateMutableBinding(ld.name, false)
		}
	}
	for _, fd := range funcDecls {
		switchEnv.InitializeBinding(fd.Name(), e.instantiateFunctionObject(&switchCtx, fd))
	}

	matchedIndex := -1
	defaultIndex := -1
	for i, c := range s.Cases {
		if c.Test == nil {
			defaultIndex = i
			continue
		}
		tc := e.evalExpression(&switchCtx, c.Test)
		if tc.IsAbrupt() {
			return tc
		}
		if strictEquals(dc.Value, tc.Value) {
			matchedIndex = i
			break
		}
	}
	if matchedIndex == -1 {
		matchedIndex = defaultIndex
	}
	if matchedIndex == -1 {
		return runtime.NormalCompletion(nil)
	}
	result := runtime.NormalCompletion(runtime.Undefined{})
	for i := matchedIndex; i < len(s.Cases); i++ {
		c := e.evalStatementList(&switchCtx, s.Cases[i].Consequent)
		if c.Value != nil {
			result.Value = c.Value
		}
		if c.Type == runtime.Break && c.Target == "" {
			return result
		}
		if c.IsAbrupt() {
			return c
		}
	}
	return result
}

func (e *Evaluator) evalLabeled(ctx *runtime.ExecutionContext, s *ast.LabeledStatementNode) runtime.Completion {
	var c runtime.Completion
	switch body := s.Body.(type) {
	case *ast.ForStatementNode:
		c = e.evalFor(ctx, body, s.Label)
	case *ast.ForInStatementNode:
		c = e.evalForIn(ctx, body, s.Label)
	case *ast.ForOfStatementNode:
		c = e.evalForOf(ctx, body, s.Label)
	case *ast.WhileStatementNode:
		c = e.evalWhile(ctx, body, s.Label)
	case *ast.DoWhileStatementNode:
		c = e.evalDoWhile(ctx, body, s.Label)
	default:
		c = e.evalStatement(ctx, s.Body)
	}
	if c.Type == runtime.Break && c.Target == s.Label {
		return runtime.NormalCompletion(c.Value)
	}
	return c
}
