package types

import (
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/cottand/sable/frontend/decls"
	"github.com/cottand/sable/internal/log"
)

var logger = log.DefaultLogger.With("section", "types")

// Type is a reference to one immutable, context-owned type node. Values are
// lightweight and copyable; once canonical they compare by identity.
type Type interface {
	fmt.Stringer
	Kind() Kind
	Context() *TypeContext
	Properties() RecursiveProperties
	// IsCanonical reports whether this node is its own canonical form.
	IsCanonical() bool
	HasTypeVariable() bool
	IsDependent() bool
	IsMaterializable() bool
	Children() iter.Seq[Type]

	base() *typeBase
}

var (
	_ Type = (*ErrorType)(nil)
	_ Type = (*BuiltinRawPointerType)(nil)
	_ Type = (*BuiltinNativeObjectType)(nil)
	_ Type = (*BuiltinForeignObjectType)(nil)
	_ Type = (*BuiltinIntegerType)(nil)
	_ Type = (*BuiltinFloatType)(nil)
	_ Type = (*BuiltinVectorType)(nil)
	_ Type = (*AliasType)(nil)
	_ Type = (*ParenType)(nil)
	_ Type = (*ArraySliceType)(nil)
	_ Type = (*OptionalType)(nil)
	_ Type = (*TupleType)(nil)
	_ Type = (*FunctionType)(nil)
	_ Type = (*GenericFunctionType)(nil)
	_ Type = (*NominalType)(nil)
	_ Type = (*ModuleType)(nil)
	_ Type = (*UnboundGenericType)(nil)
	_ Type = (*BoundGenericType)(nil)
	_ Type = (*MetatypeType)(nil)
	_ Type = (*ExistentialMetatypeType)(nil)
	_ Type = (*ProtocolCompositionType)(nil)
	_ Type = (*LValueType)(nil)
	_ Type = (*InOutType)(nil)
	_ Type = (*UnownedStorageType)(nil)
	_ Type = (*WeakStorageType)(nil)
	_ Type = (*GenericParamType)(nil)
	_ Type = (*AssociatedTypeType)(nil)
	_ Type = (*ArchetypeType)(nil)
	_ Type = (*DependentMemberType)(nil)
	_ Type = (*SubstitutedType)(nil)
	_ Type = (*TypeVariableType)(nil)
	_ Type = (*SILFunctionType)(nil)
)

// typeBase carries the per-node state shared by every kind: the
// discriminant, the derived property bitset, the owning context, and the
// canonical-form slot. The slot is explicit two-state: it points to the node
// itself when the node is canonical, stays nil while unresolved, and is
// filled at most once with the computed canonical form.
type typeBase struct {
	kind      Kind
	props     RecursiveProperties
	ctx       *TypeContext
	arena     Arena
	id        uint64 // interning identity within ctx; keys fingerprints
	canonical Type   // self if canonical, nil until lazily resolved
}

func (b *typeBase) Kind() Kind                      { return b.kind }
func (b *typeBase) Context() *TypeContext           { return b.ctx }
func (b *typeBase) Properties() RecursiveProperties { return b.props }
func (b *typeBase) HasTypeVariable() bool           { return b.props.HasTypeVariable() }
func (b *typeBase) IsDependent() bool               { return b.props.IsDependent() }
func (b *typeBase) IsMaterializable() bool          { return b.props.IsMaterializable() }
func (b *typeBase) base() *typeBase                 { return b }

func (b *typeBase) IsCanonical() bool {
	return b.canonical != nil && b.canonical.base() == b
}

var emptyChildren iter.Seq[Type] = func(func(Type) bool) {}

func childrenOf(ts ...Type) iter.Seq[Type] {
	return func(yield func(Type) bool) {
		for _, t := range ts {
			if t == nil {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// ErrorType is the error sentinel: it stands in for a type that could not be
// determined and propagates inertly, so callers keep building without
// re-diagnosing failures already reported elsewhere. One per context, its
// own canonical form, equal only to itself.
type ErrorType struct{ typeBase }

func (t *ErrorType) Children() iter.Seq[Type] { return emptyChildren }
func (t *ErrorType) String() string           { return "<<error type>>" }

// BuiltinRawPointerType is an untyped pointer-sized value.
type BuiltinRawPointerType struct{ typeBase }

func (t *BuiltinRawPointerType) Children() iter.Seq[Type] { return emptyChildren }
func (t *BuiltinRawPointerType) String() string           { return "Builtin.RawPointer" }

// BuiltinNativeObjectType is a reference to a natively refcounted object.
type BuiltinNativeObjectType struct{ typeBase }

func (t *BuiltinNativeObjectType) Children() iter.Seq[Type] { return emptyChildren }
func (t *BuiltinNativeObjectType) String() string           { return "Builtin.NativeObject" }

// BuiltinForeignObjectType is a reference to an object managed by a foreign
// runtime.
type BuiltinForeignObjectType struct{ typeBase }

func (t *BuiltinForeignObjectType) Children() iter.Seq[Type] { return emptyChildren }
func (t *BuiltinForeignObjectType) String() string           { return "Builtin.ForeignObject" }

// IntegerWidth is either a fixed bit width or the abstract pointer-sized
// "word" width, which only lowering pins down.
type IntegerWidth struct {
	abstract bool
	bits     uint32
}

func FixedWidth(bits uint32) IntegerWidth { return IntegerWidth{bits: bits} }
func WordWidth() IntegerWidth             { return IntegerWidth{abstract: true} }

func (w IntegerWidth) IsFixed() bool { return !w.abstract }

// FixedBits returns the bit width. Calling it on the abstract word width is
// a contract violation.
func (w IntegerWidth) FixedBits() uint32 {
	if w.abstract {
		fatalf("requested a fixed bit width from an abstract-width integer")
	}
	return w.bits
}

func (w IntegerWidth) String() string {
	if w.abstract {
		return "Word"
	}
	return strconv.FormatUint(uint64(w.bits), 10)
}

type BuiltinIntegerType struct {
	typeBase
	width IntegerWidth
}

func (t *BuiltinIntegerType) Width() IntegerWidth      { return t.width }
func (t *BuiltinIntegerType) Children() iter.Seq[Type] { return emptyChildren }
func (t *BuiltinIntegerType) String() string           { return "Builtin.Int" + t.width.String() }

// FloatKind enumerates the supported IEEE and extended floating formats.
type FloatKind uint8

const (
	FloatIEEE16 FloatKind = iota
	FloatIEEE32
	FloatIEEE64
	FloatX87DoubleExtended
	FloatIEEE128
)

func (k FloatKind) BitWidth() uint32 {
	switch k {
	case FloatIEEE16:
		return 16
	case FloatIEEE32:
		return 32
	case FloatIEEE64:
		return 64
	case FloatX87DoubleExtended:
		return 80
	case FloatIEEE128:
		return 128
	}
	fatalf("unknown float kind %d", k)
	return 0
}

type BuiltinFloatType struct {
	typeBase
	fpKind FloatKind
}

func (t *BuiltinFloatType) FloatKind() FloatKind     { return t.fpKind }
func (t *BuiltinFloatType) Children() iter.Seq[Type] { return emptyChildren }
func (t *BuiltinFloatType) String() string {
	return "Builtin.Float" + strconv.FormatUint(uint64(t.fpKind.BitWidth()), 10)
}

// BuiltinVectorType is a fixed-width SIMD vector of a builtin element type.
type BuiltinVectorType struct {
	typeBase
	element     Type
	numElements uint32
}

func (t *BuiltinVectorType) Element() Type            { return t.element }
func (t *BuiltinVectorType) NumElements() uint32      { return t.numElements }
func (t *BuiltinVectorType) Children() iter.Seq[Type] { return childrenOf(t.element) }
func (t *BuiltinVectorType) String() string {
	return fmt.Sprintf("Builtin.Vec%dx%s", t.numElements, t.element)
}

// AliasType re-spells its underlying type through a named alias declaration.
type AliasType struct {
	typeBase
	decl       *decls.Alias
	underlying Type
}

func (t *AliasType) Decl() *decls.Alias       { return t.decl }
func (t *AliasType) Underlying() Type         { return t.underlying }
func (t *AliasType) Children() iter.Seq[Type] { return childrenOf(t.underlying) }
func (t *AliasType) String() string           { return t.decl.Name }

// ParenType records user-written parentheses (and the collapsed form of a
// one-element unlabeled tuple).
type ParenType struct {
	typeBase
	underlying Type
}

func (t *ParenType) Underlying() Type         { return t.underlying }
func (t *ParenType) Children() iter.Seq[Type] { return childrenOf(t.underlying) }
func (t *ParenType) String() string           { return "(" + t.underlying.String() + ")" }

// ArraySliceType is the T[] spelling of the well-known slice generic.
type ArraySliceType struct {
	typeBase
	baseType Type
}

func (t *ArraySliceType) Base() Type               { return t.baseType }
func (t *ArraySliceType) Children() iter.Seq[Type] { return childrenOf(t.baseType) }
func (t *ArraySliceType) String() string           { return t.baseType.String() + "[]" }

// OptionalType is the T? spelling of the well-known optional generic.
type OptionalType struct {
	typeBase
	baseType Type
}

func (t *OptionalType) Base() Type               { return t.baseType }
func (t *OptionalType) Children() iter.Seq[Type] { return childrenOf(t.baseType) }
func (t *OptionalType) String() string           { return t.baseType.String() + "?" }

// TupleElement is one slot of a tuple: optionally labeled, optionally
// variadic, optionally carrying a default argument marker. Labels are
// structural: two tuples with different labels are different types.
type TupleElement struct {
	Name       string
	Type       Type
	Variadic   bool
	HasDefault bool
}

func (e TupleElement) String() string {
	var sb strings.Builder
	if e.Name != "" {
		sb.WriteString(e.Name)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Type.String())
	if e.Variadic {
		sb.WriteString("...")
	}
	if e.HasDefault {
		sb.WriteString(" = default")
	}
	return sb.String()
}

type TupleType struct {
	typeBase
	elements []TupleElement
}

func (t *TupleType) Elements() []TupleElement { return t.elements }
func (t *TupleType) NumElements() int         { return len(t.elements) }

func (t *TupleType) HasAnyDefaultValues() bool {
	for _, e := range t.elements {
		if e.HasDefault {
			return true
		}
	}
	return false
}

// VariadicTail returns the element type of a trailing variadic slot.
func (t *TupleType) VariadicTail() (Type, bool) {
	if n := len(t.elements); n > 0 && t.elements[n-1].Variadic {
		return t.elements[n-1].Type, true
	}
	return nil, false
}

func (t *TupleType) Children() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		for _, e := range t.elements {
			if !yield(e.Type) {
				return
			}
		}
	}
}

func (t *TupleType) String() string {
	parts := make([]string, len(t.elements))
	for i, e := range t.elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// FunctionType is a monomorphic function: one input type (usually a tuple or
// paren), one result type, and the ExtInfo convention bits.
type FunctionType struct {
	typeBase
	input  Type
	result Type
	ext    ExtInfo
}

func (t *FunctionType) Input() Type              { return t.input }
func (t *FunctionType) Result() Type             { return t.result }
func (t *FunctionType) ExtInfo() ExtInfo         { return t.ext }
func (t *FunctionType) Children() iter.Seq[Type] { return childrenOf(t.input, t.result) }
func (t *FunctionType) String() string {
	return t.input.String() + " -> " + t.result.String()
}

// RequirementKind discriminates generic requirements.
type RequirementKind uint8

const (
	ConformanceRequirement RequirementKind = iota
	SuperclassRequirement
	SameTypeRequirement
)

// Requirement constrains a generic parameter or a dependent member of one.
type Requirement struct {
	Kind       RequirementKind
	Subject    Type
	Constraint Type
}

func (r Requirement) String() string {
	switch r.Kind {
	case SameTypeRequirement:
		return r.Subject.String() + " == " + r.Constraint.String()
	default:
		return r.Subject.String() + ": " + r.Constraint.String()
	}
}

// GenericFunctionType is a function quantified over an explicit generic
// parameter and requirement list. Substituting a complete argument list
// through it yields a plain FunctionType.
type GenericFunctionType struct {
	typeBase
	params       []*GenericParamType
	requirements []Requirement
	input        Type
	result       Type
	ext          ExtInfo
}

func (t *GenericFunctionType) Params() []*GenericParamType { return t.params }
func (t *GenericFunctionType) Requirements() []Requirement { return t.requirements }
func (t *GenericFunctionType) Input() Type                 { return t.input }
func (t *GenericFunctionType) Result() Type                { return t.result }
func (t *GenericFunctionType) ExtInfo() ExtInfo            { return t.ext }

func (t *GenericFunctionType) Children() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		for _, p := range t.params {
			if !yield(p) {
				return
			}
		}
		if !yield(t.input) {
			return
		}
		yield(t.result)
	}
}

func (t *GenericFunctionType) String() string {
	params := make([]string, len(t.params))
	for i, p := range t.params {
		params[i] = p.String()
	}
	return "<" + strings.Join(params, ", ") + "> " + t.input.String() + " -> " + t.result.String()
}

// NominalType references a non-generic struct, enum, class or protocol
// declaration, together with the type of its enclosing generic context when
// the declaration is nested.
type NominalType struct {
	typeBase
	decl   *decls.Nominal
	parent Type // may be nil
}

func (t *NominalType) Decl() *decls.Nominal     { return t.decl }
func (t *NominalType) Parent() Type             { return t.parent }
func (t *NominalType) Children() iter.Seq[Type] { return childrenOf(t.parent) }
func (t *NominalType) String() string           { return t.decl.String() }

// ModuleType is the type of a module reference.
type ModuleType struct {
	typeBase
	module *decls.Module
}

func (t *ModuleType) Module() *decls.Module    { return t.module }
func (t *ModuleType) Children() iter.Seq[Type] { return emptyChildren }
func (t *ModuleType) String() string           { return "module<" + t.module.Name + ">" }

// UnboundGenericType references a generic declaration with its arguments
// still missing, as in a bare mention of Dictionary.
type UnboundGenericType struct {
	typeBase
	decl   *decls.Nominal
	parent Type
}

func (t *UnboundGenericType) Decl() *decls.Nominal     { return t.decl }
func (t *UnboundGenericType) Parent() Type             { return t.parent }
func (t *UnboundGenericType) Children() iter.Seq[Type] { return childrenOf(t.parent) }
func (t *UnboundGenericType) String() string           { return t.decl.String() + "<...>" }

// BoundGenericType applies a generic declaration to an ordered argument
// list. The declaration handle stays kind-tagged; narrowing goes through
// Decl().Kind(), never through reinterpretation.
type BoundGenericType struct {
	typeBase
	decl   *decls.Nominal
	parent Type
	args   []Type
}

func (t *BoundGenericType) Decl() *decls.Nominal { return t.decl }
func (t *BoundGenericType) Parent() Type         { return t.parent }
func (t *BoundGenericType) Args() []Type         { return t.args }

func (t *BoundGenericType) Children() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		if t.parent != nil && !yield(t.parent) {
			return
		}
		for _, a := range t.args {
			if !yield(a) {
				return
			}
		}
	}
}

func (t *BoundGenericType) String() string {
	args := make([]string, len(t.args))
	for i, a := range t.args {
		args[i] = a.String()
	}
	return t.decl.String() + "<" + strings.Join(args, ", ") + ">"
}

// MetatypeRepresentation is absent on formal metatypes and pinned down at
// the lowering boundary.
type MetatypeRepresentation uint8

const (
	MetatypeReprUnspecified MetatypeRepresentation = iota
	MetatypeReprThin
	MetatypeReprThick
	MetatypeReprObjC
)

func (r MetatypeRepresentation) String() string {
	switch r {
	case MetatypeReprUnspecified:
		return ""
	case MetatypeReprThin:
		return "@thin"
	case MetatypeReprThick:
		return "@thick"
	case MetatypeReprObjC:
		return "@objc"
	}
	return fmt.Sprintf("MetatypeRepresentation(%d)", r)
}

// MetatypeType is the type of a type value.
type MetatypeType struct {
	typeBase
	instance Type
	repr     MetatypeRepresentation
}

func (t *MetatypeType) Instance() Type                         { return t.instance }
func (t *MetatypeType) Representation() MetatypeRepresentation { return t.repr }
func (t *MetatypeType) HasRepresentation() bool                { return t.repr != MetatypeReprUnspecified }
func (t *MetatypeType) Children() iter.Seq[Type]               { return childrenOf(t.instance) }
func (t *MetatypeType) String() string                         { return t.instance.String() + ".Type" }

// ExistentialMetatypeType is the type of "any type satisfying constraints":
// the metatype of an existential.
type ExistentialMetatypeType struct {
	typeBase
	instance Type
	repr     MetatypeRepresentation
}

func (t *ExistentialMetatypeType) Instance() Type                         { return t.instance }
func (t *ExistentialMetatypeType) Representation() MetatypeRepresentation { return t.repr }
func (t *ExistentialMetatypeType) HasRepresentation() bool {
	return t.repr != MetatypeReprUnspecified
}
func (t *ExistentialMetatypeType) Children() iter.Seq[Type] { return childrenOf(t.instance) }
func (t *ExistentialMetatypeType) String() string           { return t.instance.String() + ".Protocol" }

// ProtocolCompositionType is a conjunction of protocol requirements. The
// canonical form is minimized and sorted; a singleton collapses to the
// protocol type itself.
type ProtocolCompositionType struct {
	typeBase
	protocols []Type
}

func (t *ProtocolCompositionType) Protocols() []Type { return t.protocols }

func (t *ProtocolCompositionType) Children() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		for _, p := range t.protocols {
			if !yield(p) {
				return
			}
		}
	}
}

func (t *ProtocolCompositionType) String() string {
	parts := make([]string, len(t.protocols))
	for i, p := range t.protocols {
		parts[i] = p.String()
	}
	return "protocol<" + strings.Join(parts, ", ") + ">"
}

// LValueType wraps the type of a mutable location. Intrinsically
// non-materializable.
type LValueType struct {
	typeBase
	object Type
}

func (t *LValueType) Object() Type             { return t.object }
func (t *LValueType) Children() iter.Seq[Type] { return childrenOf(t.object) }
func (t *LValueType) String() string           { return "@lvalue " + t.object.String() }

// InOutType wraps an explicitly in-out function parameter. Legal only in a
// function's input position; non-materializable anywhere else.
type InOutType struct {
	typeBase
	object Type
}

func (t *InOutType) Object() Type             { return t.object }
func (t *InOutType) Children() iter.Seq[Type] { return childrenOf(t.object) }
func (t *InOutType) String() string           { return "inout " + t.object.String() }

// UnownedStorageType is the storage type of an unowned (non-retaining,
// checked) variable.
type UnownedStorageType struct {
	typeBase
	referent Type
}

func (t *UnownedStorageType) Referent() Type           { return t.referent }
func (t *UnownedStorageType) Children() iter.Seq[Type] { return childrenOf(t.referent) }
func (t *UnownedStorageType) String() string           { return "@sil_unowned " + t.referent.String() }

// WeakStorageType is the storage type of a weak variable.
type WeakStorageType struct {
	typeBase
	referent Type
}

func (t *WeakStorageType) Referent() Type           { return t.referent }
func (t *WeakStorageType) Children() iter.Seq[Type] { return childrenOf(t.referent) }
func (t *WeakStorageType) String() string           { return "@sil_weak " + t.referent.String() }
