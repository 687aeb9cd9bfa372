// Package runtime provides the core runtime value system for the ECMAScript
// evaluator: the primitive/object value union, property descriptors,
// completion and reference records, environment records, and the
// execution-context stack. This is "the hard part" the rest of the module
// (evaluator, promise layer, realm assembly, built-ins) is built on top of.
package runtime

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// Value is the tagged union described in ECMA-262: undefined, null, boolean,
// number, bigint, string, symbol, or an object reference. Every concrete
// type below implements Value; type-switching on the concrete type is the
// "tag" — one interface plus concrete per-kind types rather than an
// explicit enum field.
type Value interface {
	// Type returns the ECMAScript [[Class]]-ish type tag, one of "undefined",
	// "null", "boolean", "number", "bigint", "string", "symbol", "object".
	Type() string
	// String returns ToString-ish debug text; it is NOT the language-level
	// ToString operation (that lives in the evaluator, since it can invoke
	// user code via @@toPrimitive/toString methods).
	String() string
}

// Undefined is the sole undefined value.
type Undefined struct{}

func (Undefined) Type() string   { return "undefined" }
func (Undefined) String() string { return "undefined" }

// Null is the sole null value.
type Null struct{}

func (Null) Type() string   { return "null" }
func (Null) String() string { return "null" }

// Boolean is a boolean primitive.
type Boolean bool

func (Boolean) Type() string     { return "boolean" }
func (b Boolean) String() string { return strconv.FormatBool(bool(b)) }

// Number is an IEEE 754 double, distinguishing NaN and signed zero (+0
// and -0 compare equal under SameValueZero but not SameValue).
type Number float64

func (Number) Type() string { return "number" }
func (n Number) String() string {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		if math.Signbit(f) {
			return "0" // -0 prints as "0" per ECMAScript Number::toString
		}
		return "0"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// IsNegZero reports whether this Number is the distinguished -0.
func (n Number) IsNegZero() bool {
	f := float64(n)
	return f == 0 && math.Signbit(f)
}

// BigInt is an arbitrary-precision integer value.
type BigInt struct{ V *big.Int }

func NewBigInt(v *big.Int) BigInt { return BigInt{V: v} }

func (BigInt) Type() string     { return "bigint" }
func (b BigInt) String() string { return b.V.String() }

// String is a sequence of UTF-16 code units, per ECMA-262. Go strings are
// UTF-8; we store the decoded UTF-16 units directly so that indexing,
// .length, and surrogate-pair edge cases match the spec rather than Go's
// byte/rune semantics.
type String []uint16

func NewStringFromGo(s string) String {
	return String(utf16Encode(s))
}

func (String) Type() string { return "string" }
func (s String) String() string {
	return utf16Decode([]uint16(s))
}
func (s String) Len() int { return len(s) }

// Symbol is a unique-identity value with an optional description. Equality
// is Go pointer identity on *Symbol, matching "unique identity" in ECMA-262.
type Symbol struct {
	Description string
	wellKnown   string // non-empty for @@iterator etc., used for diagnostics only
}

func NewSymbol(description string) *Symbol { return &Symbol{Description: description} }

func (*Symbol) Type() string { return "symbol" }
func (s *Symbol) String() string {
	return fmt.Sprintf("Symbol(%s)", s.Description)
}

// PropertyKey is either a string or a *Symbol, used as a property map key
// and for own-property ordering (ECMA-262: integer indices, then strings in
// insertion order, then symbols in insertion order).
type PropertyKey struct {
	Str    string
	Sym    *Symbol
	IsSym  bool
}

func StringKey(s string) PropertyKey  { return PropertyKey{Str: s} }
func SymbolKey(s *Symbol) PropertyKey { return PropertyKey{Sym: s, IsSym: true} }

func (k PropertyKey) String() string {
	if k.IsSym {
		return k.Sym.String()
	}
	return k.Str
}

// CanonicalNumericIndex reports whether this (string) key is an array index
// per ECMA-262: a canonical non-negative integer string < 2^32-1.
func (k PropertyKey) CanonicalNumericIndex() (uint32, bool) {
	if k.IsSym {
		return 0, false
	}
	if k.Str == "" {
		return 0, false
	}
	if k.Str == "0" {
		return 0, true
	}
	if k.Str[0] == '0' {
		return 0, false
	}
	n, err := strconv.ParseUint(k.Str, 10, 32)
	if err != nil {
		return 0, false
	}
	if n == math.MaxUint32 {
		return 0, false // 2^32-1 is excluded from array indices
	}
	if strconv.FormatUint(n, 10) != k.Str {
		return 0, false
	}
	return uint32(n), true
}
