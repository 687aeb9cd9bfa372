package runtime

// ExecutionContext is the ECMA-262 record pushed onto the execution
// context stack for every script/function/module/generator invocation.
// It consolidates the environments plus call-site bookkeeping into a
// single struct the evaluator threads through every visit call, with the
// slots ECMAScript needs: a separate lexical vs. variable environment (`let` vs `var`
// scoping), the private-name-environment chain, and Realm/Function/
// ScriptOrModule identity for `this`/`new.target`/`import.meta` resolution.
type ExecutionContext struct {
	Function           *Obj // nil for the top-level script context
	Realm              *Realm
	ScriptOrModule      any
	LexicalEnvironment EnvironmentRecord
	VariableEnvironment EnvironmentRecord
	PrivateEnvironment *PrivateEnvironment
	Generator          any // *suspend.Generator, typed any to avoid an import cycle

	// FunctionName is a diagnostic label for the function this context
	// runs. It holds no source position, and no StackTrace is built from it.
	FunctionName string
}

// CallStack is the push/pop execution-context stack; at most one frame is
// running at any instant, and the top frame is it.
type CallStack struct {
	frames []*ExecutionContext
}

func NewCallStack() *CallStack { return &CallStack{} }

func (s *CallStack) Push(ctx *ExecutionContext) { s.frames = append(s.frames, ctx) }

func (s *CallStack) Pop() *ExecutionContext {
	if len(s.frames) == 0 {
		return nil
	}
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return top
}

func (s *CallStack) Current() *ExecutionContext {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

func (s *CallStack) Depth() int { return len(s.frames) }

// Frames returns the stack, most-recent-last, for building a StackTrace.
func (s *CallStack) Frames() []*ExecutionContext { return s.frames }

// ResolveBinding walks the lexical environment chain starting at env,
// building a Reference for name (ECMA-262's ResolveBinding abstract
// operation).
func ResolveBinding(env EnvironmentRecord, name string, strict bool) *Reference {
	for e := env; e != nil; e = e.Outer() {
		if e.HasBinding(name) {
			return &Reference{BaseEnv: e, ReferencedName: StringKey(name), Strict: strict}
		}
	}
	return &Reference{ReferencedName: StringKey(name), Strict: strict}
}

// refThrow raises kind as a real Error object in realm, so a catch clause
// observes `name`/`message` like any other thrown error; a nil realm
// (detached references in bootstrap tests) falls back to a bare string.
func refThrow(realm *Realm, kind, message string) Completion {
	if realm != nil {
		return ThrowCompletion(realm.NewError(kind, message))
	}
	return ThrowCompletion(NewStringFromGo(kind + ": " + message))
}

// GetValue and PutValue collapse a Reference to/from a Value (ECMA-262).
// They live here (not as Reference methods) because resolving an
// environment-record reference calls back into EnvironmentRecord, and a
// property reference calls into Obj.Get/Set — both already in this
// package, so no import-cycle concern, but kept as free functions to match
// the spec's own abstract-operation naming. Both take the running realm so
// the errors they raise are that realm's Error objects.
func GetValue(realm *Realm, ref *Reference) Completion {
	if ref.IsUnresolvable() {
		return refThrow(realm, "ReferenceError", ref.ReferencedName.String()+" is not defined")
	}
	if ref.IsEnvironmentReference() {
		if ref.IsPrivate {
			return refThrow(realm, "TypeError", "private references are not environment references")
		}
		return ref.BaseEnv.GetBindingValue(ref.ReferencedName.Str, ref.Strict)
	}
	base := ref.BaseValue
	if ref.IsPrivate {
		obj, ok := base.(*Obj)
		if !ok {
			return refThrow(realm, "TypeError", "private field access on non-object")
		}
		v, found := PrivateElementFind(obj, ref.PrivateName)
		if !found {
			return refThrow(realm, "TypeError", "private field not present on this object")
		}
		return NormalCompletion(v)
	}
	obj, ok := ToObjectForReference(base)
	if !ok {
		return refThrow(realm, "TypeError", "cannot read properties of "+base.String())
	}
	return NormalCompletion(obj.GetWithReceiver(ref.ReferencedName, ref.GetThisValue()))
}

func PutValue(realm *Realm, ref *Reference, value Value) Completion {
	if ref.IsUnresolvable() {
		if ref.Strict {
			return refThrow(realm, "ReferenceError", ref.ReferencedName.String()+" is not defined")
		}
		// Sloppy-mode assignment to an undeclared name creates a global
		// property.
		if realm != nil && realm.GlobalObj != nil {
			realm.GlobalObj.Set(ref.ReferencedName, value, realm.GlobalObj)
		}
		return NormalCompletion(Undefined{})
	}
	if ref.IsEnvironmentReference() {
		return ref.BaseEnv.SetMutableBinding(ref.ReferencedName.Str, value, ref.Strict)
	}
	base := ref.BaseValue
	if ref.IsPrivate {
		obj, ok := base.(*Obj)
		if !ok {
			return refThrow(realm, "TypeError", "private field access on non-object")
		}
		PrivateElementSet(obj, ref.PrivateName, value)
		return NormalCompletion(Undefined{})
	}
	obj, ok := ToObjectForReference(base)
	if !ok {
		return refThrow(realm, "TypeError", "cannot set properties of "+base.String())
	}
	succeeded := obj.Set(ref.ReferencedName, value, ref.GetThisValue())
	if !succeeded && ref.Strict {
		return refThrow(realm, "TypeError", "cannot assign to read only property '"+ref.ReferencedName.String()+"'")
	}
	return NormalCompletion(Undefined{})
}

// ToObjectForReference is the narrow sliver of ToObject that property-
// reference Get/Set needs: an already-*Obj base is used as-is; primitives
// resolve through their realm-provided wrapper prototype, looked up via
// the reference's base environment being out of scope here, so callers
// needing full ToObject (ECMA-262) semantics for primitives go through
// internal/evaluator instead. This stays true for the common object-base
// case and returns false for primitives, deferring to the evaluator.
func ToObjectForReference(base Value) (*Obj, bool) {
	o, ok := base.(*Obj)
	return o, ok
}
