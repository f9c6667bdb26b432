package types

import (
	"iter"
	"strconv"

	"github.com/cottand/sable/frontend/decls"
)

// GenericParamType references one formal generic parameter declaration.
// Intrinsically dependent: it stands for a type that only substitution can
// pin down.
type GenericParamType struct {
	typeBase
	decl *decls.GenericParam
}

func (t *GenericParamType) Decl() *decls.GenericParam { return t.decl }
func (t *GenericParamType) Depth() int                { return t.decl.Depth }
func (t *GenericParamType) Index() int                { return t.decl.Index }
func (t *GenericParamType) Children() iter.Seq[Type]  { return emptyChildren }
func (t *GenericParamType) String() string            { return t.decl.Name }

// AssociatedTypeType references an associated-type declaration directly,
// outside any base. Like a generic parameter it is intrinsically dependent.
type AssociatedTypeType struct {
	typeBase
	decl *decls.AssociatedType
}

func (t *AssociatedTypeType) Decl() *decls.AssociatedType { return t.decl }
func (t *AssociatedTypeType) Children() iter.Seq[Type]    { return emptyChildren }
func (t *AssociatedTypeType) String() string              { return t.decl.String() }

// DependentMemberType is an unresolved "member of a generic parameter":
// Base.Name where Base is (or contains) a generic parameter. Substitution
// resolves it by substituting the base first and then looking the member up
// on whatever the base became.
type DependentMemberType struct {
	typeBase
	baseType Type
	name     string
	assoc    *decls.AssociatedType // nil until name binding resolves it
}

func (t *DependentMemberType) Base() Type                  { return t.baseType }
func (t *DependentMemberType) Name() string                { return t.name }
func (t *DependentMemberType) Assoc() *decls.AssociatedType { return t.assoc }
func (t *DependentMemberType) Children() iter.Seq[Type]    { return childrenOf(t.baseType) }
func (t *DependentMemberType) String() string              { return t.baseType.String() + "." + t.name }

// SubstitutedType records that Original was replaced by Replacement, keeping
// the original spelling around. Never canonical; reduces to the replacement.
type SubstitutedType struct {
	typeBase
	original    Type
	replacement Type
}

func (t *SubstitutedType) Original() Type           { return t.original }
func (t *SubstitutedType) Replacement() Type        { return t.replacement }
func (t *SubstitutedType) Children() iter.Seq[Type] { return childrenOf(t.replacement) }
func (t *SubstitutedType) String() string           { return t.replacement.String() }

// TypeVariableType is an inference variable owned by a constraint system.
// Nodes containing one live in the constraint arena so the whole batch can
// be dropped when the constraint system is torn down.
type TypeVariableType struct {
	typeBase
	varID uint64
}

func (t *TypeVariableType) ID() uint64               { return t.varID }
func (t *TypeVariableType) Children() iter.Seq[Type] { return emptyChildren }
func (t *TypeVariableType) String() string           { return "$T" + strconv.FormatUint(t.varID, 10) }
