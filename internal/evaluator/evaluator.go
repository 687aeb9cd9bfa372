// Package evaluator implements the tree-walking evaluation engine: the
// visitor that turns an ast.Node plus a runtime.ExecutionContext into a
// runtime.Completion. Layout is one file per statement/expression family
// rather than one giant switch, with control flow carried by typed
// Completion records instead of Go errors.
package evaluator

import (
	"github.com/esvm-go/esvm/ast"
	"github.com/esvm-go/esvm/internal/errors"
	"github.com/esvm-go/esvm/internal/runtime"
	"github.com/esvm-go/esvm/internal/vmlog"
)

// Evaluator holds the per-run configuration and cross-cutting services
// (logging, step budget, call-stack) shared by every evaluation step.
type Evaluator struct {
	Realm     *runtime.Realm
	CallStack *runtime.CallStack
	Log       *vmlog.Logger

	// MaxCallDepth guards runaway recursion: a call made while the call
	// stack already holds MaxCallDepth frames throws a RangeError. New
	// sets it to DefaultMaxCallDepth; a zero value rejects every call.
	MaxCallDepth int

	// StepBudget, when > 0, is decremented on every statement evaluated
	// and turns into a RangeError completion at zero, the host's
	// cancellation/timeout hook.
	StepBudget int64

	// OnGeneratorLifecycle, when set, is called with +1 when a generator,
	// async function, or async generator coroutine starts and -1 when its
	// coroutine reaches a final (non-suspended) completion. A host uses
	// this to track how many coroutines are currently live/suspended
	// (e.g. pkg/esvm's esvm_generators_live gauge); nil is a no-op.
	OnGeneratorLifecycle func(delta int)

	source string // current program text, for errors.Diagnostic rendering
	file   string
}

func (e *Evaluator) notifyGeneratorLifecycle(delta int) {
	if e.OnGeneratorLifecycle != nil {
		e.OnGeneratorLifecycle(delta)
	}
}

const DefaultMaxCallDepth = 2000

func New(realm *runtime.Realm, log *vmlog.Logger) *Evaluator {
	if log == nil {
		log = vmlog.Nop()
	}
	return &Evaluator{
		Realm:        realm,
		CallStack:    runtime.NewCallStack(),
		Log:          log,
		MaxCallDepth: DefaultMaxCallDepth,
	}
}

// SetSource attaches program text/filename used only for diagnostic
// rendering when an uncaught throw reaches EvaluateProgram's caller.
func (e *Evaluator) SetSource(source, file string) {
	e.source = source
	e.file = file
}

// EvaluateProgram runs a top-level Program node against the realm's
// global execution context (ECMA-262: script evaluation).
func (e *Evaluator) EvaluateProgram(program *ast.ProgramNode) runtime.Completion {
	ctx := &runtime.ExecutionContext{
		Realm:               e.Realm,
		LexicalEnvironment:  e.Realm.GlobalEnv,
		VariableEnvironment: e.Realm.GlobalEnv,
	}
	e.CallStack.Push(ctx)
	defer e.CallStack.Pop()

	if c := e.globalDeclarationInstantiation(ctx, program); c.IsAbrupt() {
		return c
	}
	return e.evalStatementList(ctx, program.Body)
}

// Diagnostic renders an uncaught-throw completion into a formatted error
// string via internal/errors.Diagnostic; callers
// (pkg/esvm, cmd/esvm) use this instead of reimplementing caret rendering.
func (e *Evaluator) Diagnostic(c runtime.Completion, pos ast.Position, message string) *errors.Diagnostic {
	return errors.NewDiagnostic(pos, message, e.source, e.file)
}

func (e *Evaluator) throwTypeError(message string) runtime.Completion {
	return runtime.ThrowCompletion(e.Realm.NewError("TypeError", message))
}

func (e *Evaluator) throwReferenceError(message string) runtime.Completion {
	return runtime.ThrowCompletion(e.Realm.NewError("ReferenceError", message))
}

func (e *Evaluator) throwRangeError(message string) runtime.Completion {
	return runtime.ThrowCompletion(e.Realm.NewError("RangeError", message))
}

func (e *Evaluator) throwSyntaxError(message string) runtime.Completion {
	return runtime.ThrowCompletion(e.Realm.NewError("SyntaxError", message))
}
