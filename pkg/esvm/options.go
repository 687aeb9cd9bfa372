package esvm

import (
	"github.com/esvm-go/esvm/internal/builtins"
	"github.com/esvm-go/esvm/internal/plugin"
	"github.com/esvm-go/esvm/internal/runtime"
	"github.com/esvm-go/esvm/internal/vmlog"
)

// Option configures a VM at construction time: the host hooks (random
// source, unhandled-rejection sink, compile-strings gate, step budget)
// plus this module's own ambient concerns (logging, plugin bundle).
type Option func(*config)

type config struct {
	plugins      []plugin.Plugin
	random       func() float64
	unhandled    func(reason runtime.Value)
	allowCompile *bool
	log          *vmlog.Logger
	maxCallDepth int
	stepBudget   int64
}

// WithBundle selects which built-in library plugins to assemble.
// Defaults to builtins.Bundle() (every built-in) when not given.
func WithBundle(plugins []plugin.Plugin) Option {
	return func(c *config) { c.plugins = plugins }
}

// WithMinimalBundle is shorthand for WithBundle(builtins.MinimalBundle()).
func WithMinimalBundle() Option {
	return func(c *config) { c.plugins = builtins.MinimalBundle() }
}

// WithRandom installs a deterministic PRNG for Math.random (ECMA-262).
func WithRandom(fn func() float64) Option {
	return func(c *config) { c.random = fn }
}

// WithUnhandledRejectionSink installs the host's unhandled-promise-rejection
// reporter (ECMA-262). It is called from a microtask queued when a promise
// is rejected with no reactions, unless a handler was attached before that
// microtask runs; a handler attached by a later microtask of the same
// drain does not withdraw the report.
func WithUnhandledRejectionSink(fn func(reason runtime.Value)) Option {
	return func(c *config) { c.unhandled = fn }
}

// WithCompileStringsAllowed toggles eval/Function-constructor string
// compilation (ECMA-262; default true). This module never implements a
// parser, so even with this enabled, Function()/eval() still throw — the
// option exists so a host can observe/forbid the *attempt* uniformly.
func WithCompileStringsAllowed(allowed bool) Option {
	return func(c *config) { c.allowCompile = &allowed }
}

// WithLogger installs a structured logger (internal/vmlog → zap) the VM and
// its realm write diagnostics to; defaults to a silent logger.
func WithLogger(log *vmlog.Logger) Option {
	return func(c *config) { c.log = log }
}

// WithMaxCallDepth overrides internal/evaluator's recursion guard
// (default internal/evaluator.DefaultMaxCallDepth).
func WithMaxCallDepth(depth int) Option {
	return func(c *config) { c.maxCallDepth = depth }
}

// WithStepBudget bounds total statements evaluated before a RangeError
// completion is produced — the host's timeout/cancellation lever.
func WithStepBudget(steps int64) Option {
	return func(c *config) { c.stepBudget = steps }
}
