// Package esvm is the host-facing public API: construct a VM once with
// functional options, then run as many scripts against it as the host
// needs. A VM owns one runtime.Realm — a host wanting several independent
// realms constructs several VMs.
package esvm

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/esvm-go/esvm/ast"
	"github.com/esvm-go/esvm/internal/builtins"
	"github.com/esvm-go/esvm/internal/errors"
	"github.com/esvm-go/esvm/internal/evaluator"
	"github.com/esvm-go/esvm/internal/promise"
	"github.com/esvm-go/esvm/internal/realm"
	"github.com/esvm-go/esvm/internal/runtime"
	"github.com/esvm-go/esvm/internal/vmlog"
)

var tracer = otel.Tracer("github.com/esvm-go/esvm")

// VM bundles one assembled realm with the evaluator configured to run
// scripts against it. A process may hold multiple realms, each with its
// own intrinsics — a host wanting that constructs multiple VMs.
type VM struct {
	Realm *runtime.Realm
	Eval  *evaluator.Evaluator
	log   *vmlog.Logger
}

// New assembles a realm from the configured plugin bundle (builtins.Bundle()
// by default; WithMinimalBundle/WithBundle override it) and returns a VM
// ready to run scripts. Construction failure (a missing plugin
// dependency, a cycle) is reported as a Go error naming the unresolved
// id, not a panic.
func New(opts ...Option) (*VM, error) {
	cfg := config{plugins: builtins.Bundle()}
	for _, opt := range opts {
		opt(&cfg)
	}

	log := cfg.log
	if log == nil {
		log = vmlog.Nop()
	}

	var ropts []realm.Option
	ropts = append(ropts, realm.WithLogger(log))
	if cfg.random != nil {
		ropts = append(ropts, realm.WithRandom(cfg.random))
	}
	if cfg.unhandled != nil {
		ropts = append(ropts, realm.WithUnhandledRejectionSink(cfg.unhandled))
	}
	if cfg.allowCompile != nil {
		ropts = append(ropts, realm.WithCompileStringsAllowed(*cfg.allowCompile))
	}

	r, err := realm.Build(cfg.plugins, ropts...)
	if err != nil {
		return nil, fmt.Errorf("esvm: realm construction failed: %w", err)
	}

	ev := evaluator.New(r, log)
	if cfg.maxCallDepth > 0 {
		ev.MaxCallDepth = cfg.maxCallDepth
	}
	if cfg.stepBudget > 0 {
		ev.StepBudget = cfg.stepBudget
	}
	ev.OnGeneratorLifecycle = func(delta int) { generatorsLive.Add(float64(delta)) }

	return &VM{Realm: r, Eval: ev, log: log}, nil
}

// Result is what RunScript hands back to the host: the script's completion
// value, or — for an uncaught throw — a rendered Diagnostic whose message
// comes from the thrown value's own name/message properties.
type Result struct {
	Value      runtime.Value
	Diagnostic *errors.Diagnostic
}

// RunScript implements ECMA-262's evaluateScript(tree, source) entry point:
// evaluates program under the VM's realm, then drains the microtask queue
// to empty (ECMA-262: promise reactions "run in a distinct microtask
// turn", never left pending once the synchronous script has finished).
// ctx governs only the otel span lifetime; the evaluator itself has no
// concept of Go-level cancellation (ECMA-262's cancellation story is the
// host-supplied step budget, not context.Context).
func (vm *VM) RunScript(ctx context.Context, program *ast.ProgramNode, source, file string) Result {
	runID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "evaluateScript", trace.WithAttributes(
		attribute.String("esvm.run_id", runID),
		attribute.String("esvm.file", file),
	))
	defer span.End()

	scriptsRun.Inc()

	vm.Eval.SetSource(source, file)
	c := vm.Eval.EvaluateProgram(program)
	vm.drainMicrotasks(ctx)

	if c.Type == runtime.Throw {
		uncaughtThrows.Inc()
		span.SetStatus(codes.Error, "uncaught throw")
		diag := vm.diagnosticFor(c, program, source, file)
		vm.log.Error("uncaught throw", zap.String("run_id", runID), zap.String("message", diag.Message))
		return Result{Value: c.Value, Diagnostic: diag}
	}
	return Result{Value: c.Value}
}

// drainMicrotasks runs the realm's promise reaction queue to empty
// (microtasks drain fully between host macro-steps), counting each job
// for the esvm_microtasks_drained_total metric and re-draining if running
// those jobs enqueued more work — PerformPromiseThen/AsyncFunctionStart
// reactions commonly schedule further reactions of their own.
func (vm *VM) drainMicrotasks(ctx context.Context) {
	_, span := tracer.Start(ctx, "drainMicrotasks")
	defer span.End()
	q := promise.QueueOf(vm.Realm)
	q.DrainCounted(func() { microtasksDrained.Inc() })
}

// diagnosticFor renders an uncaught throw-completion using the thrown
// value's name/message (ECMA-262) at the script's top-level position (this
// module does not track precise per-throw source positions through every
// abrupt completion, so the diagnostic points at the program's start — a
// host wanting a precise caret needs richer position propagation than
// ECMA-262's "each node carries a source location" strictly requires for
// evaluation itself).
func (vm *VM) diagnosticFor(c runtime.Completion, program *ast.ProgramNode, source, file string) *errors.Diagnostic {
	message := describeThrown(c.Value)
	pos := ast.Position{Line: 1, Column: 1}
	if program != nil {
		pos = program.Pos()
	}
	return errors.NewDiagnostic(pos, message, source, file)
}

func describeThrown(v runtime.Value) string {
	obj, ok := v.(*runtime.Obj)
	if !ok {
		return runtime.ToGoString(v)
	}
	name := obj.Get(runtime.StringKey("name"))
	msg := obj.Get(runtime.StringKey("message"))
	nameStr := runtime.ToGoString(name)
	if nameStr == "" || nameStr == "undefined" {
		return runtime.ToGoString(msg)
	}
	msgStr := runtime.ToGoString(msg)
	if msgStr == "" || msgStr == "undefined" {
		return nameStr
	}
	return nameStr + ": " + msgStr
}
