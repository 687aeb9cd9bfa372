package runtime

// Reference is the intermediate lvalue record described in ECMA-262: the
// result of evaluating an identifier or member-access expression before
// GetValue/PutValue collapse it. It must never escape the evaluator's
// expression-evaluation step (spec design note: "Reference Records are
// ephemeral... enforce by scoping their lifetime to a single statement
// step") — this package only defines the record and the two operations
// that consume it; the evaluator is responsible for not letting one leak
// into a returned completion value.
type Reference struct {
	// Base is exactly one of: BaseValue set (property reference with a
	// value base, e.g. a primitive or object), BaseEnv set (environment
	// reference), or neither (unresolvable reference: an identifier that
	// resolved to no binding in any environment in the chain).
	BaseValue Value
	BaseEnv   EnvironmentRecord

	ReferencedName PropertyKey
	Strict         bool

	// ThisValue is set (non-nil) for super-property references, carrying
	// the original `this` so [[Set]]/[[Get]] on the home object's
	// prototype still resolves `this` from the call site, not the
	// prototype.
	ThisValue Value
	IsSuper   bool

	// IsPrivate marks a private-name reference (`#x in obj`, and private
	// field/method access): ReferencedName
	// is ignored and PrivateName is used instead.
	IsPrivate   bool
	PrivateName *PrivateName
}

// IsUnresolvable reports whether this reference names a binding unresolved
// anywhere in the lexical chain (spec: "Base: ... | unresolvable").
func (r *Reference) IsUnresolvable() bool {
	return r.BaseValue == nil && r.BaseEnv == nil
}

// IsPropertyReference reports whether the reference's base is a value
// (as opposed to an environment record).
func (r *Reference) IsPropertyReference() bool {
	return r.BaseValue != nil
}

// IsEnvironmentReference reports whether the reference's base is an
// environment record.
func (r *Reference) IsEnvironmentReference() bool {
	return r.BaseEnv != nil
}

// GetThisValue returns the this-value to use for [[Get]]/[[Set]] against
// this reference's base: the super-reference's captured ThisValue if set,
// else the base value itself.
func (r *Reference) GetThisValue() Value {
	if r.IsSuper {
		return r.ThisValue
	}
	return r.BaseValue
}
