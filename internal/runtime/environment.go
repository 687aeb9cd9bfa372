package runtime

// EnvironmentRecord is the ECMA-262 common interface over the four
// environment-record variants implemented here (declarative, object,
// function, global); private names live in the separate
// PrivateEnvironment chain. ECMAScript scoping needs the TDZ/mutability/with-object
// distinctions the spec assigns to different record kinds, so each
// variant is its own concrete type behind one interface, and the
// evaluator walks the Outer() chain to resolve a name.
type EnvironmentRecord interface {
	// HasBinding reports whether this record (not outer ones) binds name.
	HasBinding(name string) bool
	// CreateMutableBinding creates a new mutable binding, uninitialized
	// until InitializeBinding runs (TDZ for `let`/`const`/class).
	CreateMutableBinding(name string, deletable bool)
	// CreateImmutableBinding creates a new immutable binding (`const`).
	CreateImmutableBinding(name string, strict bool)
	// InitializeBinding gives an existing uninitialized binding its first
	// value, lifting it out of the temporal dead zone.
	InitializeBinding(name string, value Value)
	// SetMutableBinding assigns an existing binding; strict controls
	// whether assigning a missing/immutable binding throws or no-ops.
	SetMutableBinding(name string, value Value, strict bool) Completion
	// GetBindingValue reads a binding; strict controls whether reading an
	// unresolvable binding throws a ReferenceError completion.
	GetBindingValue(name string, strict bool) Completion
	// DeleteBinding removes a binding, returning false if it is
	// non-deletable (spec: environment records' `delete` semantics feed
	// the `delete` operator on an unqualified identifier, which is a
	// SyntaxError in strict mode caught earlier by the evaluator).
	DeleteBinding(name string) bool
	// HasThisBinding / HasSuperBinding classify function environments for
	// `this`/`super` resolution during lexical environment walking.
	HasThisBinding() bool
	HasSuperBinding() bool
	// WithBaseObject returns the object a `with` environment wraps, or nil
	// for every other kind.
	WithBaseObject() *Obj
	// Outer returns the enclosing environment, or nil for the global
	// environment (the top of every chain).
	Outer() EnvironmentRecord
}

// envRealm finds the realm owning an environment chain: a function
// environment's function object carries it directly, and every chain
// terminates at a global environment whose globalThis object does.
func envRealm(env EnvironmentRecord) *Realm {
	for e := env; e != nil; e = e.Outer() {
		switch rec := e.(type) {
		case *GlobalEnvironment:
			if rec.GlobalThis != nil {
				return rec.GlobalThis.Realm
			}
			return nil
		case *FunctionEnvironment:
			if rec.FunctionObject != nil && rec.FunctionObject.Realm != nil {
				return rec.FunctionObject.Realm
			}
		}
	}
	return nil
}

// envThrow raises kind (ReferenceError/TypeError) as a real Error object in
// the chain's realm, so a catch clause observes `name`/`message` the same
// way it does for evaluator-raised errors. A chain with no realm in reach
// (detached environments in bootstrap tests) falls back to a bare string.
func envThrow(env EnvironmentRecord, kind, message string) Completion {
	if r := envRealm(env); r != nil {
		return ThrowCompletion(r.NewError(kind, message))
	}
	return ThrowCompletion(NewStringFromGo(kind + ": " + message))
}

type binding struct {
	value       Value
	mutable     bool
	strict      bool // immutable binding created with strict semantics
	deletable   bool
	initialized bool
}

// DeclarativeEnvironment implements the common case: block scopes,
// function-parameter/`var` scopes, catch-clause bindings.
type DeclarativeEnvironment struct {
	bindings map[string]*binding
	outer    EnvironmentRecord
}

func NewDeclarativeEnvironment(outer EnvironmentRecord) *DeclarativeEnvironment {
	return &DeclarativeEnvironment{bindings: make(map[string]*binding), outer: outer}
}

func (e *DeclarativeEnvironment) HasBinding(name string) bool {
	_, ok := e.bindings[name]
	return ok
}

func (e *DeclarativeEnvironment) CreateMutableBinding(name string, deletable bool) {
	e.bindings[name] = &binding{mutable: true, deletable: deletable}
}

func (e *DeclarativeEnvironment) CreateImmutableBinding(name string, strict bool) {
	e.bindings[name] = &binding{mutable: false, strict: strict}
}

func (e *DeclarativeEnvironment) InitializeBinding(name string, value Value) {
	if b, ok := e.bindings[name]; ok {
		b.value = value
		b.initialized = true
	}
}

func (e *DeclarativeEnvironment) SetMutableBinding(name string, value Value, strict bool) Completion {
	b, ok := e.bindings[name]
	if !ok {
		if strict {
			return envThrow(e, "ReferenceError", name+" is not defined")
		}
		e.CreateMutableBinding(name, true)
		e.InitializeBinding(name, value)
		return NormalCompletion(Undefined{})
	}
	if !b.initialized {
		return envThrow(e, "ReferenceError", "Cannot access '"+name+"' before initialization")
	}
	if !b.mutable {
		if strict || b.strict {
			return envThrow(e, "TypeError", "Assignment to constant variable '"+name+"'")
		}
		return NormalCompletion(Undefined{})
	}
	b.value = value
	return NormalCompletion(Undefined{})
}

func (e *DeclarativeEnvironment) GetBindingValue(name string, strict bool) Completion {
	b, ok := e.bindings[name]
	if !ok {
		return envThrow(e, "ReferenceError", name+" is not defined")
	}
	if !b.initialized {
		return envThrow(e, "ReferenceError", "Cannot access '"+name+"' before initialization")
	}
	return NormalCompletion(b.value)
}

func (e *DeclarativeEnvironment) DeleteBinding(name string) bool {
	b, ok := e.bindings[name]
	if !ok {
		return true
	}
	if !b.deletable {
		return false
	}
	delete(e.bindings, name)
	return true
}

func (e *DeclarativeEnvironment) HasThisBinding() bool        { return false }
func (e *DeclarativeEnvironment) HasSuperBinding() bool        { return false }
func (e *DeclarativeEnvironment) WithBaseObject() *Obj         { return nil }
func (e *DeclarativeEnvironment) Outer() EnvironmentRecord     { return e.outer }

// ObjectEnvironment backs `with` statements and (embedded in
// GlobalEnvironment) the global object-record half of the global
// environment: bindings are properties of a wrapped object rather than an
// internal map.
type ObjectEnvironment struct {
	bindingObject *Obj
	isWithEnv     bool
	outer         EnvironmentRecord
}

func NewObjectEnvironment(obj *Obj, isWithEnv bool, outer EnvironmentRecord) *ObjectEnvironment {
	return &ObjectEnvironment{bindingObject: obj, isWithEnv: isWithEnv, outer: outer}
}

func (e *ObjectEnvironment) HasBinding(name string) bool {
	if !e.bindingObject.HasProperty(StringKey(name)) {
		return false
	}
	if !e.isWithEnv {
		return true
	}
	// spec: a `with` environment hides a name whose entry in the wrapped
	// object's @@unscopables object is truthy.
	unscopables := e.bindingObject.Get(SymbolKey(SymUnscopables))
	if uo, ok := unscopables.(*Obj); ok {
		if ToBoolean(uo.Get(StringKey(name))) {
			return false
		}
	}
	return true
}

func (e *ObjectEnvironment) CreateMutableBinding(name string, deletable bool) {
	e.bindingObject.DefineOwnProperty(StringKey(name), NewDataDescriptor(Undefined{}, true, true, deletable))
}

func (e *ObjectEnvironment) CreateImmutableBinding(name string, strict bool) {
	e.bindingObject.DefineOwnProperty(StringKey(name), NewDataDescriptor(Undefined{}, false, true, false))
}

func (e *ObjectEnvironment) InitializeBinding(name string, value Value) {
	e.bindingObject.Set(StringKey(name), value, e.bindingObject)
}

func (e *ObjectEnvironment) SetMutableBinding(name string, value Value, strict bool) Completion {
	if !e.bindingObject.HasProperty(StringKey(name)) && strict {
		return envThrow(e, "ReferenceError", name+" is not defined")
	}
	if !e.bindingObject.Set(StringKey(name), value, e.bindingObject) && strict {
		return envThrow(e, "TypeError", "cannot assign to read only property '"+name+"'")
	}
	return NormalCompletion(Undefined{})
}

func (e *ObjectEnvironment) GetBindingValue(name string, strict bool) Completion {
	if !e.bindingObject.HasProperty(StringKey(name)) {
		if strict {
			return envThrow(e, "ReferenceError", name+" is not defined")
		}
		return NormalCompletion(Undefined{})
	}
	return NormalCompletion(e.bindingObject.Get(StringKey(name)))
}

func (e *ObjectEnvironment) DeleteBinding(name string) bool {
	return e.bindingObject.Delete(StringKey(name))
}

func (e *ObjectEnvironment) HasThisBinding() bool    { return false }
func (e *ObjectEnvironment) HasSuperBinding() bool   { return false }
func (e *ObjectEnvironment) WithBaseObject() *Obj {
	if e.isWithEnv {
		return e.bindingObject
	}
	return nil
}
func (e *ObjectEnvironment) Outer() EnvironmentRecord { return e.outer }

// FunctionEnvironment extends DeclarativeEnvironment with the this-binding
// machinery (ECMA-262): arrow functions have ThisLexical and never
// initialize ThisVal themselves, ordinary functions bind `this` on first
// access (or eagerly for non-derived constructors/non-strict calls).
type FunctionEnvironment struct {
	DeclarativeEnvironment
	ThisVal         Value
	ThisInitialized bool
	ThisMode        ThisMode
	FunctionObject  *Obj
	NewTarget       *Obj
	HomeObject      *Obj
}

func NewFunctionEnvironment(fn *Obj, newTarget *Obj, outer EnvironmentRecord) *FunctionEnvironment {
	e := &FunctionEnvironment{
		DeclarativeEnvironment: DeclarativeEnvironment{bindings: make(map[string]*binding), outer: outer},
		FunctionObject:         fn,
		NewTarget:              newTarget,
	}
	if fn != nil && fn.Fn != nil {
		e.ThisMode = fn.Fn.ThisMode
		e.HomeObject = fn.Fn.HomeObject
	}
	return e
}

func (e *FunctionEnvironment) HasThisBinding() bool {
	return e.ThisMode != ThisLexical
}

func (e *FunctionEnvironment) HasSuperBinding() bool {
	return e.ThisMode != ThisLexical && e.HomeObject != nil
}

// BindThisValue sets this-binding exactly once (spec: re-binding `this`,
// e.g. by calling super() twice in a derived constructor, is a
// ReferenceError the evaluator surfaces by checking ThisInitialized first).
func (e *FunctionEnvironment) BindThisValue(v Value) Completion {
	if e.ThisInitialized {
		return envThrow(e, "ReferenceError", "super called twice")
	}
	e.ThisVal = v
	e.ThisInitialized = true
	return NormalCompletion(v)
}

func (e *FunctionEnvironment) GetThisBinding() Completion {
	if !e.ThisInitialized {
		return envThrow(e, "ReferenceError", "must call super constructor before accessing 'this'")
	}
	return NormalCompletion(e.ThisVal)
}

// GlobalEnvironment is the ECMA-262 global environment: a declarative
// record for lexical (`let`/`const`/class) bindings plus an object record
// wrapping the global object for `var`/function declarations and ordinary
// global-object properties, with VarNames tracked separately so
// HasBinding/CreateGlobalVarBinding can distinguish the two without
// scanning the object's own keys each time.
type GlobalEnvironment struct {
	ObjectRecord     *ObjectEnvironment
	DeclarativeRecord *DeclarativeEnvironment
	VarNames         map[string]bool
	GlobalThis       *Obj
}

func NewGlobalEnvironment(globalObj, globalThis *Obj) *GlobalEnvironment {
	g := &GlobalEnvironment{
		ObjectRecord:      NewObjectEnvironment(globalObj, false, nil),
		DeclarativeRecord: NewDeclarativeEnvironment(nil),
		VarNames:          make(map[string]bool),
		GlobalThis:        globalThis,
	}
	// The two sub-records point back at the composite so envRealm reaches
	// the realm from an error raised inside either half; lexical-chain
	// walking never starts at a sub-record, so the back-link is invisible
	// to name resolution.
	g.ObjectRecord.outer = g
	g.DeclarativeRecord.outer = g
	return g
}

func (e *GlobalEnvironment) HasBinding(name string) bool {
	return e.DeclarativeRecord.HasBinding(name) || e.ObjectRecord.HasBinding(name)
}

func (e *GlobalEnvironment) CreateMutableBinding(name string, deletable bool) {
	e.DeclarativeRecord.CreateMutableBinding(name, deletable)
}

func (e *GlobalEnvironment) CreateImmutableBinding(name string, strict bool) {
	e.DeclarativeRecord.CreateImmutableBinding(name, strict)
}

func (e *GlobalEnvironment) InitializeBinding(name string, value Value) {
	if e.DeclarativeRecord.HasBinding(name) {
		e.DeclarativeRecord.InitializeBinding(name, value)
		return
	}
	e.ObjectRecord.InitializeBinding(name, value)
}

func (e *GlobalEnvironment) SetMutableBinding(name string, value Value, strict bool) Completion {
	if e.DeclarativeRecord.HasBinding(name) {
		return e.DeclarativeRecord.SetMutableBinding(name, value, strict)
	}
	return e.ObjectRecord.SetMutableBinding(name, value, strict)
}

func (e *GlobalEnvironment) GetBindingValue(name string, strict bool) Completion {
	if e.DeclarativeRecord.HasBinding(name) {
		return e.DeclarativeRecord.GetBindingValue(name, strict)
	}
	return e.ObjectRecord.GetBindingValue(name, strict)
}

func (e *GlobalEnvironment) DeleteBinding(name string) bool {
	if e.DeclarativeRecord.HasBinding(name) {
		return false // lexical global bindings are never deletable
	}
	if !e.VarNames[name] {
		return e.ObjectRecord.DeleteBinding(name)
	}
	if e.ObjectRecord.DeleteBinding(name) {
		delete(e.VarNames, name)
		return true
	}
	return false
}

func (e *GlobalEnvironment) HasThisBinding() bool    { return true }
func (e *GlobalEnvironment) HasSuperBinding() bool   { return false }
func (e *GlobalEnvironment) WithBaseObject() *Obj    { return nil }
func (e *GlobalEnvironment) Outer() EnvironmentRecord { return nil }
func (e *GlobalEnvironment) GetThisBinding() Value   { return e.GlobalThis }

// HasVarDeclaration/CreateGlobalVarBinding/CreateGlobalFunctionBinding
// implement the ECMA-262 global-declaration-instantiation helpers the
// evaluator calls once per script/eval before statement evaluation.
func (e *GlobalEnvironment) HasVarDeclaration(name string) bool { return e.VarNames[name] }

func (e *GlobalEnvironment) HasLexicalDeclaration(name string) bool {
	return e.DeclarativeRecord.HasBinding(name)
}

func (e *GlobalEnvironment) HasRestrictedGlobalProperty(name string) bool {
	existing := e.ObjectRecord.bindingObject.GetOwnProperty(StringKey(name))
	return existing != nil && !boolVal(existing.Configurable)
}

func (e *GlobalEnvironment) CanDeclareGlobalVar(name string) bool {
	if e.ObjectRecord.bindingObject.HasProperty(StringKey(name)) {
		return true
	}
	return e.ObjectRecord.bindingObject.IsExtensible()
}

func (e *GlobalEnvironment) CreateGlobalVarBinding(name string, deletable bool) {
	if !e.ObjectRecord.bindingObject.HasProperty(StringKey(name)) {
		e.ObjectRecord.CreateMutableBinding(name, deletable)
		e.ObjectRecord.InitializeBinding(name, Undefined{})
	}
	e.VarNames[name] = true
}

func (e *GlobalEnvironment) CreateGlobalFunctionBinding(name string, value Value, deletable bool) {
	existing := e.ObjectRecord.bindingObject.GetOwnProperty(StringKey(name))
	var desc *PropertyDescriptor
	if existing == nil || boolVal(existing.Configurable) {
		desc = NewDataDescriptor(value, true, true, deletable)
	} else {
		desc = NewDataDescriptor(value, boolVal(existing.Writable), boolVal(existing.Enumerable), false)
	}
	e.ObjectRecord.bindingObject.DefineOwnProperty(StringKey(name), desc)
	e.VarNames[name] = true
}

// SymUnscopables is the well-known @@unscopables symbol (ECMA-262, `with`
// environment lookup exclusion list): one process-wide instance, created
// at package initialization, that every ObjectEnvironment consults.
var SymUnscopables = NewSymbol("Symbol.unscopables")
