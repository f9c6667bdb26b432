package types

import (
	"iter"
	"sort"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/sable/frontend/decls"
	"github.com/cottand/sable/util"
	hset "github.com/hashicorp/go-set/v3"
)

// ArchetypeType is a concrete-but-opaque type: some specific type, unknown
// which, constrained by a requirement set. Primary archetypes stand for
// formal generic parameters inside a checking scope; nested archetypes for
// associated types reached through a parent; opened archetypes for an
// existential value at one specific use site. Archetypes are never
// interned: each allocation is a distinct placeholder, and identity is the
// equality that matters.
type ArchetypeType struct {
	typeBase
	parent     *ArchetypeType
	opened     Type // existential this was opened from, nil otherwise
	assoc      *decls.AssociatedType
	selfProto  *decls.Nominal
	name       string
	index      int // ordering index of a primary archetype, else -1
	openedID   uint64
	conformsTo []*decls.Nominal
	superclass Type

	// nested maps associated type names to the archetype or concrete type
	// reached through them. Populated lazily, then replaced atomically; the
	// sorted map gives deterministic iteration by name.
	nested *immutable.SortedMap[string, Type]
}

func (t *ArchetypeType) Parent() *ArchetypeType          { return t.parent }
func (t *ArchetypeType) AssocType() *decls.AssociatedType { return t.assoc }
func (t *ArchetypeType) Name() string                    { return t.name }
func (t *ArchetypeType) ConformsTo() []*decls.Nominal    { return t.conformsTo }
func (t *ArchetypeType) Superclass() Type                { return t.superclass }
func (t *ArchetypeType) IsPrimary() bool                 { return t.parent == nil && t.opened == nil }
func (t *ArchetypeType) IsOpened() bool                  { return t.opened != nil }
func (t *ArchetypeType) OpenedExistential() Type         { return t.opened }
func (t *ArchetypeType) Children() iter.Seq[Type]        { return emptyChildren }
func (t *ArchetypeType) String() string                  { return t.FullName() }

// SelfProtocol returns the protocol this archetype is the Self parameter
// of, or nil.
func (t *ArchetypeType) SelfProtocol() *decls.Nominal { return t.selfProto }

// IsSelfDerived reports whether this archetype is a protocol Self parameter
// or nested under one.
func (t *ArchetypeType) IsSelfDerived() bool {
	for a := t; a != nil; a = a.parent {
		if a.selfProto != nil {
			return true
		}
	}
	return false
}

// Index returns the ordering index of a primary archetype.
func (t *ArchetypeType) Index() int {
	if !t.IsPrimary() {
		fatalf("archetype %s is not primary and has no index", t)
	}
	return t.index
}

// OpenedID returns the fresh identifier of an opened archetype. Identifier
// freshness, not structure, governs an opened archetype's identity.
func (t *ArchetypeType) OpenedID() uint64 {
	if t.opened == nil {
		fatalf("archetype %s was not opened from an existential", t)
	}
	return t.openedID
}

// FullName is the dotted path through the parent chain.
func (t *ArchetypeType) FullName() string {
	if t.parent != nil {
		return t.parent.FullName() + "." + t.name
	}
	return t.name
}

// NestedType looks up the type reached through an associated type name.
// Precondition: the nested-type table has been populated.
func (t *ArchetypeType) NestedType(name string) (Type, bool) {
	if t.nested == nil {
		fatalf("nested types of archetype %s requested before being set", t)
	}
	return t.nested.Get(name)
}

func (t *ArchetypeType) HasNestedTypes() bool { return t.nested != nil }

// NestedTypes iterates the table in name order.
func (t *ArchetypeType) NestedTypes() iter.Seq2[string, Type] {
	return func(yield func(string, Type) bool) {
		if t.nested == nil {
			return
		}
		itr := t.nested.Iterator()
		for !itr.Done() {
			k, v, _ := itr.Next()
			if !yield(k, v) {
				return
			}
		}
	}
}

// SetNestedTypes populates the table: a one-shot structural replace, never
// incremental mutation, so readers observe either nothing or the whole
// table. Idempotent for an identical table; anything else is a contract
// violation.
func (t *ArchetypeType) SetNestedTypes(entries []util.Pair[string, Type]) {
	m := immutable.NewSortedMap[string, Type](nil)
	for _, e := range entries {
		t.ctx.checkOwned(e.Snd)
		m = m.Set(e.Fst, e.Snd)
	}
	if t.nested != nil {
		if !sortedMapEqual(t.nested, m) {
			fatalf("nested types of archetype %s set twice with different contents", t)
		}
		return
	}
	t.nested = m
}

func sortedMapEqual(a, b *immutable.SortedMap[string, Type]) bool {
	if a.Len() != b.Len() {
		return false
	}
	ai, bi := a.Iterator(), b.Iterator()
	for !ai.Done() {
		ak, av, _ := ai.Next()
		bk, bv, _ := bi.Next()
		if ak != bk || av != bv {
			return false
		}
	}
	return true
}

// NewPrimaryArchetype allocates the archetype standing for one formal
// generic parameter, with its ordering index and minimized requirement set.
func (ctx *TypeContext) NewPrimaryArchetype(name string, index int, conformsTo []*decls.Nominal, superclass Type) *ArchetypeType {
	ctx.checkOwned(superclass)
	a := &ArchetypeType{
		name:       name,
		index:      index,
		conformsTo: minimizeProtocolDecls(conformsTo),
		superclass: superclass,
	}
	ctx.initArchetype(a)
	return a
}

// NewSelfArchetype allocates the archetype for the Self parameter of a
// protocol.
func (ctx *TypeContext) NewSelfArchetype(proto *decls.Nominal) *ArchetypeType {
	if !proto.IsProtocol() {
		fatalf("Self archetype requires a protocol, got %s", proto)
	}
	a := &ArchetypeType{
		name:       "Self",
		index:      0,
		selfProto:  proto,
		conformsTo: minimizeProtocolDecls([]*decls.Nominal{proto}),
	}
	ctx.initArchetype(a)
	return a
}

// NewNestedArchetype allocates the archetype for an associated type reached
// through parent.
func (ctx *TypeContext) NewNestedArchetype(parent *ArchetypeType, assoc *decls.AssociatedType, conformsTo []*decls.Nominal, superclass Type) *ArchetypeType {
	ctx.checkOwned(parent, superclass)
	a := &ArchetypeType{
		parent:     parent,
		assoc:      assoc,
		name:       assoc.Name,
		index:      -1,
		conformsTo: minimizeProtocolDecls(conformsTo),
		superclass: superclass,
	}
	ctx.initArchetype(a)
	return a
}

// OpenExistential allocates a fresh archetype standing for the value of an
// existential at one use site, carrying the existential's requirement set
// and a monotonically increasing identifier. Two opens of structurally
// equal existentials are deliberately not unified: each stands for "some
// value, not yet known which" at its own site.
func (ctx *TypeContext) OpenExistential(existential Type) *ArchetypeType {
	ctx.checkOwned(existential)
	can := Canonicalize(existential).Type
	var conformsTo []*decls.Nominal
	switch n := can.(type) {
	case *NominalType:
		if n.kind != KindProtocol {
			fatalf("cannot open non-existential type %s", existential)
		}
		conformsTo = []*decls.Nominal{n.decl}
	case *ProtocolCompositionType:
		for _, p := range n.protocols {
			conformsTo = append(conformsTo, p.(*NominalType).decl)
		}
	default:
		fatalf("cannot open non-existential type %s", existential)
	}
	ctx.nextOpenedID++
	a := &ArchetypeType{
		opened:     can,
		name:       "<<opened>>",
		index:      -1,
		openedID:   ctx.nextOpenedID,
		conformsTo: conformsTo,
	}
	ctx.initArchetype(a)
	ctx.logger.Debug("opened existential", "existential", can.String(), "id", a.openedID)
	return a
}

func (ctx *TypeContext) initArchetype(a *ArchetypeType) {
	props := propHasArchetype
	if a.superclass != nil {
		props = props.union(a.superclass.Properties())
	}
	ctx.initBase(&a.typeBase, a, KindArchetype, props, ArenaPermanent, true)
}

// minimizeProtocolDecls deduplicates, drops every protocol implied by
// inheritance from another, and sorts by (module, name).
func minimizeProtocolDecls(protocols []*decls.Nominal) []*decls.Nominal {
	for _, p := range protocols {
		if !p.IsProtocol() {
			fatalf("conformance requirement on non-protocol %s", p)
		}
	}
	distinct := hset.From(protocols)
	out := make([]*decls.Nominal, 0, distinct.Size())
	for p := range distinct.Items() {
		implied := false
		for q := range distinct.Items() {
			if q != p && q.Inherits(p) {
				implied = true
				break
			}
		}
		if !implied {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Module().Name != out[j].Module().Name {
			return out[i].Module().Name < out[j].Module().Name
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}
