package runtime

// PrivateName is the ECMA-262 unique-identity token backing a class's
// `#field`/`#method`/`#accessor` element. Equality is Go pointer identity,
// mirroring how *Symbol identity works above: two classes' `#x` never
// collide even though their Description is the same source text.
type PrivateName struct {
	Description string
}

func NewPrivateName(description string) *PrivateName {
	return &PrivateName{Description: description}
}

// PrivateEnvironment chains private-name scopes the way DeclarativeEnvironment
// chains ordinary bindings, one level per class body (ECMA-262: nested
// classes each introduce their own private names, and a private name
// resolves outward through enclosing classes exactly like a lexical
// binding resolves outward through enclosing blocks).
type PrivateEnvironment struct {
	Names map[string]*PrivateName
	Outer *PrivateEnvironment
}

func NewPrivateEnvironment(outer *PrivateEnvironment) *PrivateEnvironment {
	return &PrivateEnvironment{Names: make(map[string]*PrivateName), Outer: outer}
}

// Resolve looks up description (e.g. "#x") through this chain, outermost
// search happening last (innermost class wins), returning nil if no class
// in scope declared it — the evaluator turns that into a SyntaxError at
// the point a private reference appears outside any class body.
func (e *PrivateEnvironment) Resolve(description string) *PrivateName {
	for p := e; p != nil; p = p.Outer {
		if n, ok := p.Names[description]; ok {
			return n
		}
	}
	return nil
}

// PrivateElementFind looks up a private element on a specific instance
// (ECMA-262's PrivateElementFind), used by both private-field reads and
// the `#x in obj` brand check.
func PrivateElementFind(o *Obj, name *PrivateName) (Value, bool) {
	if o == nil || o.Priv == nil {
		return nil, false
	}
	v, ok := o.Priv.Elements[name]
	return v, ok
}

// PrivateElementSet stores or overwrites a private element on an instance,
// initializing the object's private slot storage lazily.
func PrivateElementSet(o *Obj, name *PrivateName, value Value) {
	if o.Priv == nil {
		o.Priv = &PrivateSlots{Elements: make(map[*PrivateName]Value)}
	}
	o.Priv.Elements[name] = value
}
