// Package realm assembles a runtime.Realm from a set of plugins: it
// creates the empty realm and global object/environment, runs
// every plugin's CreateIntrinsics hook in topological order, then every
// plugin's SetDefaultGlobalBindings hook in the same order, and returns the
// finished realm ready for internal/evaluator to run a script against.
package realm

import (
	"github.com/esvm-go/esvm/internal/plugin"
	"github.com/esvm-go/esvm/internal/runtime"
	"github.com/esvm-go/esvm/internal/vmlog"
)

// Option configures a realm at construction time, covering the host
// hooks: the eval/Function compile gate, the Math.random source, and the
// unhandled-rejection sink.
type Option func(*runtime.Realm)

// WithRandom installs a replacement entropy source for Math.random, so a
// host can make runs reproducible.
func WithRandom(fn func() float64) Option {
	return func(r *runtime.Realm) { r.Random = fn }
}

// WithUnhandledRejectionSink installs the host's unhandled-promise-rejection
// reporter (ECMA-262).
func WithUnhandledRejectionSink(fn func(reason runtime.Value)) Option {
	return func(r *runtime.Realm) { r.UnhandledRejection = fn }
}

// WithLogger installs a structured logger (internal/vmlog) the realm and
// its plugins write diagnostics to; defaults to a silent logger.
func WithLogger(log *vmlog.Logger) Option {
	return func(r *runtime.Realm) {
		if log != nil {
			r.Log = log
		}
	}
}

// WithCompileStringsAllowed toggles whether eval/Function-constructor
// string compilation is permitted in this realm (default true).
func WithCompileStringsAllowed(allowed bool) Option {
	return func(r *runtime.Realm) { r.CompileStringsAllowed = allowed }
}

// Build assembles a realm: topologically orders plugins, creates the
// realm/global object/global environment, then runs each plugin's two
// hooks in that order. A plugin registry error (a missing dependency or
// cycle) aborts construction before any hook runs.
func Build(plugins []plugin.Plugin, opts ...Option) (*runtime.Realm, error) {
	ordered, err := plugin.Order(plugins)
	if err != nil {
		return nil, err
	}

	r := runtime.NewRealm()
	for _, opt := range opts {
		opt(r)
	}

	globalObj := runtime.NewOrdinaryObject(nil) // %Object.prototype% not assembled yet; patched below
	globalObj.Realm = r
	r.GlobalObj = globalObj
	r.GlobalEnv = runtime.NewGlobalEnvironment(globalObj, globalObj)

	globals := plugin.NewGlobals()
	for _, p := range ordered {
		if p.CreateIntrinsics == nil {
			continue
		}
		if err := p.CreateIntrinsics(r, globals); err != nil {
			return nil, err
		}
	}

	// Now that %Object.prototype% exists (the core plugin creates it first
	// in topological order, since every other plugin depends on "core"),
	// retroactively link the global object to it. The global object itself is created
	// before any plugin runs (so CreateIntrinsics hooks can stage globals
	// immediately), hence the two-step link instead of creating it inline
	// inside the core plugin.
	if objProto := r.Intrinsic("%Object.prototype%"); objProto != nil {
		globalObj.SetPrototypeOf(objProto)
	}

	for _, p := range ordered {
		if p.SetDefaultGlobalBindings == nil {
			continue
		}
		p.SetDefaultGlobalBindings(r, globals)
	}
	globals.Flush(globalObj)

	return r, nil
}
