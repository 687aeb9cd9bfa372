package runtime

import "github.com/esvm-go/esvm/internal/vmlog"

// Realm is the ECMA-262 Realm record: a table of intrinsic objects, the
// global object, the global environment, and per-realm bookkeeping (the
// template-literal cache).
// This type only carries the data; internal/realm assembles it by running
// plugins (internal/plugin) over it in topological order.
type Realm struct {
	Intrinsics map[string]*Obj
	GlobalObj  *Obj
	GlobalEnv  *GlobalEnvironment

	// TemplateCache memoizes the object produced for a tagged-template's
	// "strings" array, keyed by the template literal node's identity, so a
	// tagged template evaluated in a loop reuses one array per spec's
	// template-object-per-call-site requirement.
	TemplateCache map[any]*Obj

	// CompileStringsAllowed answers the host's "may this realm compile
	// strings via eval/Function?" question; default true.
	CompileStringsAllowed bool

	// Jobs is this realm's microtask queue (*internal/promise.Queue),
	// typed any the same way ExecutionContext.Generator is: internal/
	// promise imports internal/runtime for Value/Obj, so runtime cannot
	// import promise back without a cycle.
	Jobs any

	// UnhandledRejection is the host's rejection sink: called at
	// microtask-drain time for a promise that settled rejected with no
	// handler attached. nil means the host declined the hook.
	UnhandledRejection func(reason Value)

	// Random optionally replaces Math.random's entropy source, so a host
	// can make runs reproducible; nil
	// means the built-in Math.random falls back to the real PRNG.
	Random func() float64

	// Log is this realm's structured logger (internal/vmlog), threaded
	// through plugin loading and console output; defaults to a silent
	// logger so a host that never opts in sees no output.
	Log *vmlog.Logger
}

// NewRealm creates an empty realm; internal/realm.Build populates it.
func NewRealm() *Realm {
	return &Realm{
		Intrinsics:            make(map[string]*Obj),
		TemplateCache:         make(map[any]*Obj),
		CompileStringsAllowed: true,
		Log:                   vmlog.Nop(),
	}
}

// Intrinsic looks up a well-known intrinsic by name (e.g. "%Object.prototype%").
func (r *Realm) Intrinsic(name string) *Obj {
	if r == nil {
		return nil
	}
	return r.Intrinsics[name]
}

// errorProto picks the best-effort prototype for a given error kind so
// objects created by low-level internal methods (SetPrototypeOf cycle
// detection, a revoked Proxy trap, ...) still link into this realm's real
// %Error% hierarchy when one has been assembled; it falls back to nil
// (implying %Object.prototype%-less bare object) pre-realm-assembly, e.g.
// during bootstrap tests that exercise the object model in isolation.
func (r *Realm) errorProto(kind string) *Obj {
	if r == nil {
		return nil
	}
	if p := r.Intrinsic("%" + kind + ".prototype%"); p != nil {
		return p
	}
	return r.Intrinsic("%Error.prototype%")
}

// NewError constructs an Error-kind object (Name/Message own properties) in
// this realm, used both by built-ins and by the low-level internal methods
// in object.go that must be able to throw (e.g. a non-extensible
// [[DefineOwnProperty]] rejection surfaced by strict-mode callers).
func (r *Realm) NewError(kind, message string) *Obj {
	o := NewOrdinaryObject(r.errorProto(kind))
	o.Kind = KindError
	o.DefineOwnProperty(StringKey("name"), NewDataDescriptor(NewStringFromGo(kind), true, false, true))
	o.DefineOwnProperty(StringKey("message"), NewDataDescriptor(NewStringFromGo(message), true, false, true))
	return o
}
