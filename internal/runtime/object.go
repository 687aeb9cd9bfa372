package runtime

// ObjectKind discriminates the exotic behaviors an Obj can have. Per the
// spec's own design note ("Polymorphic objects with an open set of internal
// slots... Model an object as a small ordinary header plus... a header plus
// a sparsely populated record of optional slots"), a single Obj type carries
// every slot any kind might need, and Kind selects which internal-method
// overrides apply. This avoids deep inheritance while keeping one concrete
// Go type whose essential methods implement all eleven internal methods.
type ObjectKind int

const (
	KindOrdinary ObjectKind = iota
	KindArray
	KindFunction
	KindBoundFunction
	KindArguments   // mapped arguments exotic object
	KindStringWrap  // String exotic object (`new String("x")`)
	KindProxy
	KindError
	KindModuleNS
)

// Obj is the one concrete object representation. Essential slots
// (Prototype, Extensible) are always present; everything else is an
// optional pointer slot, populated only for the kinds that need it.
type Obj struct {
	Kind       ObjectKind
	Prototype  *Obj
	Extensible bool
	Realm      *Realm
	props      *propertyMap

	// Function slots: Environment, PrivateEnvironment, FormalParameters,
	// ECMAScriptCode, ThisMode, Strict, HomeObject, ConstructorKind,
	// Realm, IsClassConstructor, Call, Construct.
	Fn *FunctionSlots

	Bound *BoundSlots
	Arr   *ArraySlots
	Args  *ArgumentsSlots
	Str   *StringWrapSlots
	Proxy *ProxySlots
	Priv  *PrivateSlots

	// Opaque further slots for built-ins (MapData, RegExpMatcher,
	// AsyncGeneratorQueue, ...) attached by the builtins packages without
	// runtime needing to know their shape.
	HostData any
}

// ArraySlots marks exotic array-length tracking (ECMA-262: array length
// writeback on DefineOwnProperty of an index >= current length).
type ArraySlots struct{}

// ArgumentsSlots backs the mapped-arguments exotic object: ParameterMap
// links argument-object indices back to the calling function's parameter
// bindings so writes to arguments[i] are visible as writes to the
// corresponding parameter (sloppy-mode only).
type ArgumentsSlots struct {
	ParameterMap map[uint32]func() (Value, func(Value))
}

// StringWrapSlots backs the String exotic object: indexed own properties
// mirror the wrapped UTF-16 string's code units.
type StringWrapSlots struct {
	Data String
}

// BoundSlots backs a bound function exotic object produced by Function.
// prototype.bind.
type BoundSlots struct {
	Target Value
	This   Value
	Args   []Value
}

// ProxySlots backs the Proxy exotic object. A nil Target/Handler means the
// proxy has been revoked; IsExtensible and every other trap then throws.
type ProxySlots struct {
	Target  *Obj
	Handler *Obj
}

// PrivateSlots stores an object's private-name elements (ECMA-262: class
// `#field`/`#method` storage, looked up by PrivateElementFind).
type PrivateSlots struct {
	Elements map[*PrivateName]Value
}

// FunctionSlots carries the ECMA-262 function-object slots.
type FunctionSlots struct {
	Environment        EnvironmentRecord
	PrivateEnvironment *PrivateEnvironment
	FormalParameters   any // ast.Node, typed any to avoid an import cycle with ast is unnecessary but kept generic for native functions
	ECMAScriptCode     any
	ThisMode           ThisMode
	Strict             bool
	HomeObject         *Obj
	ConstructorKind    ConstructorKind
	IsClassConstructor bool
	Name               string
	Length             int

	// Call/Construct are populated by the evaluator (for ECMAScript
	// functions) or by a built-in (for native functions). Keeping them as
	// Go closures here — rather than requiring every caller to know how to
	// walk ECMAScriptCode — is what lets internal/runtime stay free of an
	// internal/evaluator import.
	Call      func(this Value, args []Value) Completion
	Construct func(args []Value, newTarget *Obj) Completion

	IsGenerator bool
	IsAsync     bool
}

type ThisMode int

const (
	ThisLexical ThisMode = iota
	ThisStrict
	ThisGlobal
)

type ConstructorKind int

const (
	ConstructorBase ConstructorKind = iota
	ConstructorDerived
)

// NewOrdinaryObject creates an ordinary object with the given prototype
// (nil for %Object.prototype%-less objects, e.g. Object.create(null)).
func NewOrdinaryObject(proto *Obj) *Obj {
	return &Obj{Kind: KindOrdinary, Prototype: proto, Extensible: true, props: newPropertyMap()}
}

// IsCallable reports whether this object has a [[Call]] internal method.
func (o *Obj) IsCallable() bool { return o != nil && o.Fn != nil && o.Fn.Call != nil }

// IsConstructor reports whether this object has a [[Construct]] internal
// method.
func (o *Obj) IsConstructor() bool { return o != nil && o.Fn != nil && o.Fn.Construct != nil }

// ---- the eleven essential internal methods (ECMA-262) ----

func (o *Obj) GetPrototypeOf() *Obj {
	if o.Kind == KindProxy {
		return o.proxyGetPrototypeOf()
	}
	return o.Prototype
}

// SetPrototypeOf installs a new prototype, refusing (returning false) to
// create a cycle: ECMA-262, "walking via successive prototypes, it
// refuses to install a prototype that would make the chain reach the
// object itself."
func (o *Obj) SetPrototypeOf(proto *Obj) bool {
	if o.Kind == KindProxy {
		return o.proxySetPrototypeOf(proto)
	}
	if samePrototype(o.Prototype, proto) {
		return true
	}
	if !o.Extensible {
		return false
	}
	p := proto
	for p != nil {
		if p == o {
			return false
		}
		if p.Kind == KindProxy {
			// Stop walking through a proxy; conservatively accept (a
			// faithful engine would invoke the proxy's getPrototypeOf
			// trap here; builtins/proxy wires that case).
			break
		}
		p = p.Prototype
	}
	o.Prototype = proto
	return true
}

func samePrototype(a, b *Obj) bool { return a == b }

func (o *Obj) IsExtensible() bool {
	if o.Kind == KindProxy {
		return o.proxyIsExtensible()
	}
	return o.Extensible
}

func (o *Obj) PreventExtensions() bool {
	if o.Kind == KindProxy {
		return o.proxyPreventExtensions()
	}
	o.Extensible = false
	return true
}

func (o *Obj) GetOwnProperty(key PropertyKey) *PropertyDescriptor {
	switch o.Kind {
	case KindProxy:
		return o.proxyGetOwnProperty(key)
	case KindStringWrap:
		if d := o.stringExoticGetOwnProperty(key); d != nil {
			return d
		}
	case KindArguments:
		if d := o.argumentsGetOwnProperty(key); d != nil {
			return d
		}
	}
	d, ok := o.props.get(key)
	if !ok {
		return nil
	}
	return d.Clone()
}

// DefineOwnProperty dispatches to ValidateAndApplyPropertyDescriptor after
// any exotic pre-processing (array length writeback, string-index
// rejection). Returns false (never panics) on rejection; strict-mode
// callers in the evaluator turn a false result into a TypeError throw.
func (o *Obj) DefineOwnProperty(key PropertyKey, desc *PropertyDescriptor) bool {
	switch o.Kind {
	case KindProxy:
		return o.proxyDefineOwnProperty(key, desc)
	case KindArray:
		return o.arrayDefineOwnProperty(key, desc)
	case KindStringWrap:
		if o.stringExoticRejects(key, desc) {
			return false
		}
	case KindArguments:
		return o.argumentsDefineOwnProperty(key, desc)
	}
	return o.ordinaryDefineOwnProperty(key, desc)
}

func (o *Obj) ordinaryDefineOwnProperty(key PropertyKey, desc *PropertyDescriptor) bool {
	current, _ := o.props.get(key)
	applied, ok := ValidateAndApplyPropertyDescriptor(current, o.Extensible, desc)
	if !ok {
		return false
	}
	o.props.set(key, applied)
	return true
}

func (o *Obj) HasProperty(key PropertyKey) bool {
	if o.Kind == KindProxy {
		return o.proxyHasProperty(key)
	}
	if o.GetOwnProperty(key) != nil {
		return true
	}
	parent := o.GetPrototypeOf()
	if parent == nil {
		return false
	}
	return parent.HasProperty(key)
}

// Get implements [[Get]](key, receiver) with receiver defaulting to o; the
// evaluator calls GetWithReceiver directly when a Reference carries a
// distinct this-value (super property access, ECMA-262).
func (o *Obj) Get(key PropertyKey) Value {
	return o.GetWithReceiver(key, o)
}

func (o *Obj) GetWithReceiver(key PropertyKey, receiver Value) Value {
	if o.Kind == KindProxy {
		return o.proxyGet(key, receiver)
	}
	desc := o.GetOwnProperty(key)
	if desc == nil {
		parent := o.GetPrototypeOf()
		if parent == nil {
			return Undefined{}
		}
		return parent.GetWithReceiver(key, receiver)
	}
	if desc.IsDataDescriptor() {
		return desc.Value
	}
	if desc.Get == nil || desc.Get == Value(Undefined{}) {
		return Undefined{}
	}
	getter, ok := desc.Get.(*Obj)
	if !ok || !getter.IsCallable() {
		return Undefined{}
	}
	return getter.Fn.Call(receiver, nil).Value
}

// Set implements [[Set]](key, value, receiver); returns false rather than
// throwing (spec: internal methods never panic; the evaluator's
// strict-mode callers decide whether false becomes a TypeError).
func (o *Obj) Set(key PropertyKey, value Value, receiver Value) bool {
	if o.Kind == KindProxy {
		return o.proxySet(key, value, receiver)
	}
	ownDesc := o.GetOwnProperty(key)
	if ownDesc == nil {
		parent := o.GetPrototypeOf()
		if parent != nil {
			return parent.Set(key, value, receiver)
		}
		ownDesc = NewDataDescriptor(Undefined{}, true, true, true)
	}
	if ownDesc.IsDataDescriptor() {
		if !boolVal(ownDesc.Writable) {
			return false
		}
		recv, ok := receiver.(*Obj)
		if !ok {
			return false
		}
		existing := recv.GetOwnProperty(key)
		if existing != nil {
			if existing.IsAccessorDescriptor() {
				return false
			}
			if !boolVal(existing.Writable) {
				return false
			}
			return recv.DefineOwnProperty(key, &PropertyDescriptor{Value: value})
		}
		return recv.DefineOwnProperty(key, NewDataDescriptor(value, true, true, true))
	}
	if ownDesc.Set == nil || ownDesc.Set == Value(Undefined{}) {
		return false
	}
	setter, ok := ownDesc.Set.(*Obj)
	if !ok || !setter.IsCallable() {
		return false
	}
	setter.Fn.Call(receiver, []Value{value})
	return true
}

func (o *Obj) Delete(key PropertyKey) bool {
	if o.Kind == KindProxy {
		return o.proxyDelete(key)
	}
	if o.Kind == KindArguments {
		return o.argumentsDelete(key)
	}
	desc := o.GetOwnProperty(key)
	if desc == nil {
		return true
	}
	if !boolVal(desc.Configurable) {
		return false
	}
	o.props.delete(key)
	return true
}

func (o *Obj) OwnPropertyKeys() []PropertyKey {
	if o.Kind == KindProxy {
		return o.proxyOwnPropertyKeys()
	}
	return o.props.keys()
}

// ValidateAndApplyPropertyDescriptor is the single reconfiguration-rules
// routine ECMA-262 calls for (given current, incoming, extensible it
// either rejects or applies a fully populated descriptor). current == nil
// means "no existing own property".
func ValidateAndApplyPropertyDescriptor(current *PropertyDescriptor, extensible bool, desc *PropertyDescriptor) (*PropertyDescriptor, bool) {
	if current == nil {
		if !extensible {
			return nil, false
		}
		return CompletePropertyDescriptor(desc), true
	}
	if desc.Value == nil && desc.Get == nil && desc.Set == nil && desc.Writable == nil && desc.Enumerable == nil && desc.Configurable == nil {
		return current, true // no-op descriptor always succeeds
	}
	if !boolVal(current.Configurable) {
		if desc.Configurable != nil && *desc.Configurable {
			return nil, false
		}
		if desc.Enumerable != nil && *desc.Enumerable != boolVal(current.Enumerable) {
			return nil, false
		}
		if desc.IsGenericDescriptor() {
			// neither data nor accessor fields present: fallthrough to merge
		} else if current.IsDataDescriptor() != desc.IsDataDescriptor() && (desc.IsDataDescriptor() || desc.IsAccessorDescriptor()) {
			return nil, false
		} else if current.IsDataDescriptor() && desc.IsDataDescriptor() {
			if !boolVal(current.Writable) {
				if desc.Writable != nil && *desc.Writable {
					return nil, false
				}
				if desc.Value != nil && !SameValue(current.Value, desc.Value) {
					return nil, false
				}
			}
		} else if current.IsAccessorDescriptor() && desc.IsAccessorDescriptor() {
			if desc.Get != nil && !sameValueOrBothNil(current.Get, desc.Get) {
				return nil, false
			}
			if desc.Set != nil && !sameValueOrBothNil(current.Set, desc.Set) {
				return nil, false
			}
		}
	}
	merged := current.Clone()
	if desc.Value != nil {
		merged.Value = desc.Value
		merged.Get, merged.Set = nil, nil
	}
	if desc.Writable != nil {
		merged.Writable = desc.Writable
	}
	if desc.Get != nil {
		merged.Get = desc.Get
		merged.Value, merged.Writable = nil, nil
	}
	if desc.Set != nil {
		merged.Set = desc.Set
		merged.Value, merged.Writable = nil, nil
	}
	if desc.Enumerable != nil {
		merged.Enumerable = desc.Enumerable
	}
	if desc.Configurable != nil {
		merged.Configurable = desc.Configurable
	}
	return merged, true
}

func sameValueOrBothNil(a, b Value) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return SameValue(a, b)
}
