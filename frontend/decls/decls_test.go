package decls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtocolInheritanceIsTransitive(t *testing.T) {
	std := NewModule("std")
	p := NewProtocol(std, "P")
	q := NewProtocol(std, "Q", p)
	r := NewProtocol(std, "R", q)

	assert.True(t, q.Inherits(p))
	assert.True(t, r.Inherits(q))
	// closed at construction, one probe answers the transitive question
	assert.True(t, r.Inherits(p))
	assert.False(t, p.Inherits(q))
	assert.False(t, p.Inherits(p))
}

func TestProtocolInheritanceRequiresProtocols(t *testing.T) {
	std := NewModule("std")
	s := NewStruct(std, "S")
	assert.Panics(t, func() { NewProtocol(std, "P", s) })
}

func TestSuperclassIsClassOnly(t *testing.T) {
	std := NewModule("std")
	base := NewClass(std, "Base")
	derived := NewClass(std, "Derived")
	derived.SetSuperclass(base)
	assert.Same(t, base, derived.Superclass())
	assert.Nil(t, base.Superclass())

	s := NewStruct(std, "S")
	assert.Panics(t, func() { s.Superclass() })
	assert.Panics(t, func() { s.SetSuperclass(base) })
	assert.Panics(t, func() { derived.SetSuperclass(s) })
}

func TestMemberCompletion(t *testing.T) {
	std := NewModule("std")
	seq := NewProtocol(std, "Sequence")

	assert.False(t, seq.MembersComplete())
	assert.Panics(t, func() { seq.AssociatedType("Element") })
	assert.Panics(t, func() { seq.AssociatedTypes() })

	elem := NewAssociatedType(seq, "Element")
	seq.SetMembers([]*AssociatedType{elem})
	require.True(t, seq.MembersComplete())

	got, ok := seq.AssociatedType("Element")
	require.True(t, ok)
	assert.Same(t, elem, got)
	_, ok = seq.AssociatedType("Index")
	assert.False(t, ok)
}

func TestAssociatedTypeBelongsToProtocol(t *testing.T) {
	std := NewModule("std")
	s := NewStruct(std, "S")
	assert.Panics(t, func() { NewAssociatedType(s, "Element") })
}

func TestNominalIdentity(t *testing.T) {
	std := NewModule("std")
	a := NewStruct(std, "Pair", NewGenericParam("A", 0, 0), NewGenericParam("B", 0, 1))
	b := NewStruct(std, "Pair", NewGenericParam("A", 0, 0), NewGenericParam("B", 0, 1))

	// handles have identity, not structural equality
	assert.NotSame(t, a, b)
	assert.True(t, a.IsGeneric())
	assert.Len(t, a.GenericParams(), 2)
	assert.Equal(t, "std.Pair", a.String())
}
