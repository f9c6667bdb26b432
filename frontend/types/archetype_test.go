package types

import (
	"testing"

	"github.com/cottand/sable/frontend/decls"
	"github.com/cottand/sable/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenExistentialIsFreshEveryTime(t *testing.T) {
	ctx := NewTypeContext()
	p := decls.NewProtocol(ctx.StdModule(), "P")
	pTy := ctx.Nominal(p, nil)

	a := ctx.OpenExistential(pTy)
	b := ctx.OpenExistential(pTy)
	assert.NotSame(t, a, b)
	assert.NotEqual(t, a.OpenedID(), b.OpenedID())
	assert.True(t, a.IsOpened())
	assert.False(t, a.IsPrimary())
	assert.Same(t, pTy, a.OpenedExistential())
	assert.Equal(t, []*decls.Nominal{p}, a.ConformsTo())
}

func TestOpenExistentialComposition(t *testing.T) {
	ctx := NewTypeContext()
	std := ctx.StdModule()
	p := decls.NewProtocol(std, "P")
	q := decls.NewProtocol(std, "Q")
	comp := ctx.ProtocolComposition([]Type{ctx.Nominal(p, nil), ctx.Nominal(q, nil)})

	a := ctx.OpenExistential(comp)
	assert.ElementsMatch(t, []*decls.Nominal{p, q}, a.ConformsTo())
}

func TestArchetypeConformancesAreMinimized(t *testing.T) {
	ctx := NewTypeContext()
	std := ctx.StdModule()
	p := decls.NewProtocol(std, "P")
	q := decls.NewProtocol(std, "Q", p)

	arch := ctx.NewPrimaryArchetype("T", 0, []*decls.Nominal{p, q}, nil)
	// P is implied by Q and drops out
	assert.Equal(t, []*decls.Nominal{q}, arch.ConformsTo())
}

func TestPrimaryArchetypeQueries(t *testing.T) {
	ctx := NewTypeContext()
	arch := ctx.NewPrimaryArchetype("T", 2, nil, nil)

	assert.True(t, arch.IsPrimary())
	assert.Equal(t, 2, arch.Index())
	assert.Equal(t, "T", arch.FullName())
	assert.True(t, arch.IsMaterializable())
	assert.False(t, arch.HasTypeVariable())
	assert.False(t, arch.IsDependent())

	opened := ctx.OpenExistential(ctx.Nominal(decls.NewProtocol(ctx.StdModule(), "P"), nil))
	assert.Panics(t, func() { opened.Index() })
	assert.Panics(t, func() { arch.OpenedID() })
}

func TestSelfArchetype(t *testing.T) {
	ctx := NewTypeContext()
	p := decls.NewProtocol(ctx.StdModule(), "Printable")
	self := ctx.NewSelfArchetype(p)

	assert.True(t, self.IsSelfDerived())
	assert.Equal(t, "Self", self.Name())
	assert.Same(t, p, self.SelfProtocol())
	assert.Equal(t, []*decls.Nominal{p}, self.ConformsTo())
}

func TestNestedArchetypeNaming(t *testing.T) {
	ctx := NewTypeContext()
	std := ctx.StdModule()
	seq := decls.NewProtocol(std, "Sequence")
	elem := decls.NewAssociatedType(seq, "Element")

	parent := ctx.NewPrimaryArchetype("T", 0, []*decls.Nominal{seq}, nil)
	nested := ctx.NewNestedArchetype(parent, elem, nil, nil)

	assert.Same(t, parent, nested.Parent())
	assert.Equal(t, "T.Element", nested.FullName())
	assert.Same(t, elem, nested.AssocType())
	assert.False(t, nested.IsPrimary())
	assert.False(t, nested.IsSelfDerived())
}

func TestNestedTypeTableIsOneShot(t *testing.T) {
	ctx := NewTypeContext()
	i64 := ctx.BuiltinInteger(FixedWidth(64))
	f64 := ctx.BuiltinFloat(FloatIEEE64)
	arch := ctx.NewPrimaryArchetype("T", 0, nil, nil)

	assert.False(t, arch.HasNestedTypes())
	assert.Panics(t, func() { arch.NestedType("Element") })

	entries := []util.Pair[string, Type]{
		{Fst: "Element", Snd: i64},
		{Fst: "Index", Snd: f64},
	}
	arch.SetNestedTypes(entries)
	require.True(t, arch.HasNestedTypes())

	got, ok := arch.NestedType("Element")
	require.True(t, ok)
	assert.Same(t, i64, got)
	_, ok = arch.NestedType("Missing")
	assert.False(t, ok)

	// iteration is sorted by name
	var names []string
	for name := range arch.NestedTypes() {
		names = append(names, name)
	}
	assert.Equal(t, []string{"Element", "Index"}, names)

	// repopulating with the same table is tolerated, a different one is not
	assert.NotPanics(t, func() { arch.SetNestedTypes(entries) })
	assert.Panics(t, func() {
		arch.SetNestedTypes([]util.Pair[string, Type]{{Fst: "Element", Snd: f64}})
	})
}

func TestArchetypePropagatesThroughStructure(t *testing.T) {
	ctx := NewTypeContext()
	arch := ctx.NewPrimaryArchetype("T", 0, nil, nil)
	tup := ctx.Tuple([]TupleElement{{Name: "a", Type: arch}, {Name: "b", Type: ctx.BuiltinInteger(FixedWidth(64))}})

	// archetypes are concrete for canonicalization purposes
	assert.True(t, tup.IsCanonical())
	assert.False(t, tup.IsDependent())
}
