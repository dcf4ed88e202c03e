// Package model defines the declaration model handed from the front end to the
// generator: builtins, pointers, references, cv-qualified types, constant arrays,
// records and enums.
//
// Every composite type points at other types owned by a single aggregator. The
// pointers are never owning; the aggregator keeps all entities alive for the
// duration of one generation run.
package model

import (
	"strconv"
	"strings"
)

// Unknown is spelled in place of a type the front end could not resolve. It is also
// the name a record receives when it is rejected as a structural duplicate.
const Unknown = "<unknown>"

// Kind represents the category of a Type.
type Kind string

const (
	KindBuiltin       Kind = "builtin"
	KindPointer       Kind = "pointer"
	KindReference     Kind = "reference"
	KindCVQualified   Kind = "cv-qualified"
	KindConstantArray Kind = "constant-array"
	KindRecord        Kind = "record"
	KindEnum          Kind = "enum"
)

// CV is a const/volatile qualifier combination.
type CV int

const (
	CVNone CV = iota
	CVConst
	CVVolatile
	CVConstVolatile
)

// MakeCV combines the two qualifier flags.
func MakeCV(isConst, isVolatile bool) CV {
	switch {
	case isConst && isVolatile:
		return CVConstVolatile
	case isConst:
		return CVConst
	case isVolatile:
		return CVVolatile
	default:
		return CVNone
	}
}

// Prefix returns the qualifier spelled for use in front of a type, including the
// trailing space.
func (c CV) Prefix() string {
	switch c {
	case CVConst:
		return "const "
	case CVVolatile:
		return "volatile "
	case CVConstVolatile:
		return "const volatile "
	default:
		return ""
	}
}

// Add merges two qualifier sets.
func (c CV) Add(other CV) CV {
	return MakeCV(c.IsConst() || other.IsConst(), c.IsVolatile() || other.IsVolatile())
}

func (c CV) IsConst() bool    { return c == CVConst || c == CVConstVolatile }
func (c CV) IsVolatile() bool { return c == CVVolatile || c == CVConstVolatile }

// RefKind distinguishes lvalue and rvalue references. It doubles as the ref
// qualifier of member functions.
type RefKind int

const (
	RefNone RefKind = iota
	RefLValue
	RefRValue
)

// String returns "&", "&&" or "".
func (r RefKind) String() string {
	switch r {
	case RefLValue:
		return "&"
	case RefRValue:
		return "&&"
	default:
		return ""
	}
}

// NamespaceOption selects how the namespace part of a declaration is spelled.
type NamespaceOption int

const (
	// Unqualified strips inline markers but keeps every segment. This is the form
	// the namespace alias tree is addressed with.
	Unqualified NamespaceOption = iota
	// Qualified keeps the path exactly as the front end reported it, including
	// "inline " markers. Only valid inside a namespace block header.
	Qualified
	// None drops the namespace entirely.
	None
)

// Type is implemented by every entity the aggregator owns.
type Type interface {
	// Kind reports the variant.
	Kind() Kind
	// Spell renders the type. Declarations are prefixed with prefix, which lets
	// the renderer route every name through the namespace alias tree.
	Spell(prefix string, opt NamespaceOption) string
}

// Spell renders t, tolerating nil.
func Spell(t Type, prefix string) string {
	if t == nil {
		return Unknown
	}
	return t.Spell(prefix, Unqualified)
}

// Builtin is a type that is not further introspectable, e.g. "int" or
// "std::string" when the front end does not describe it.
type Builtin struct {
	Name string
}

func (b *Builtin) Kind() Kind { return KindBuiltin }

func (b *Builtin) Spell(string, NamespaceOption) string { return b.Name }

// Pointer points at Pointee. CV qualifies the pointee, so {int, const} spells
// "const int*".
type Pointer struct {
	Pointee Type
	CV      CV
}

func (p *Pointer) Kind() Kind { return KindPointer }

func (p *Pointer) Spell(prefix string, opt NamespaceOption) string {
	return p.CV.Prefix() + spellInner(p.Pointee, prefix, opt) + "*"
}

// Reference is an lvalue or rvalue reference to Pointee.
type Reference struct {
	Pointee Type
	CV      CV
	Ref     RefKind
}

func (r *Reference) Kind() Kind { return KindReference }

func (r *Reference) Spell(prefix string, opt NamespaceOption) string {
	return r.CV.Prefix() + spellInner(r.Pointee, prefix, opt) + r.Ref.String()
}

// IsLValue reports whether the reference binds lvalues only.
func (r *Reference) IsLValue() bool { return r.Ref == RefLValue }

// CVQualified adds qualifiers to a non-reference, non-pointer type.
type CVQualified struct {
	Inner Type
	CV    CV
}

func (c *CVQualified) Kind() Kind { return KindCVQualified }

func (c *CVQualified) Spell(prefix string, opt NamespaceOption) string {
	return c.CV.Prefix() + spellInner(c.Inner, prefix, opt)
}

// ConstantArray is an array with a size known at compile time.
type ConstantArray struct {
	Element Type
	Size    uint64
}

func (a *ConstantArray) Kind() Kind { return KindConstantArray }

func (a *ConstantArray) Spell(prefix string, opt NamespaceOption) string {
	return spellInner(a.Element, prefix, opt) + "[" + strconv.FormatUint(a.Size, 10) + "]"
}

func spellInner(t Type, prefix string, opt NamespaceOption) string {
	if t == nil {
		return Unknown
	}
	return t.Spell(prefix, opt)
}

// IsLValueReference reports whether t is a reference binding lvalues.
func IsLValueReference(t Type) bool {
	ref, ok := t.(*Reference)
	return ok && ref.IsLValue()
}

// StripInline removes "inline " markers from every segment of a namespace path.
func StripInline(ns string) string {
	if !strings.Contains(ns, "inline ") {
		return ns
	}
	segments := strings.Split(ns, "::")
	for i, s := range segments {
		segments[i] = strings.TrimPrefix(strings.TrimSpace(s), "inline ")
	}
	return strings.Join(segments, "::")
}
