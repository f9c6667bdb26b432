package types

import (
	"testing"

	"github.com/cottand/sable/frontend/decls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeIdempotent(t *testing.T) {
	ctx := NewTypeContext()
	i64 := ctx.BuiltinInteger(FixedWidth(64))
	std := ctx.StdModule()
	p := decls.NewProtocol(std, "P")
	q := decls.NewProtocol(std, "Q", p)

	samples := []Type{
		ctx.ErrorType(),
		i64,
		ctx.Paren(i64),
		ctx.OptionalOf(ctx.OptionalOf(i64)),
		ctx.ArraySliceOf(i64),
		ctx.Tuple([]TupleElement{{Name: "x", Type: ctx.Paren(i64)}, {Name: "y", Type: i64}}),
		ctx.Function(ctx.Paren(i64), i64, ExtInfo(0)),
		ctx.Metatype(ctx.OptionalOf(i64)),
		ctx.ProtocolComposition([]Type{ctx.Nominal(q, nil), ctx.Nominal(p, nil)}),
		ctx.LValue(ctx.Paren(i64)),
		ctx.WeakStorage(i64),
	}
	for _, sample := range samples {
		t.Run(sample.String(), func(t *testing.T) {
			can := Canonicalize(sample)
			assert.True(t, can.IsCanonical())
			assert.Same(t, can.Type, Canonicalize(can.Type).Type)
			// the slot is cached: canonicalizing the sugar again is stable
			assert.Same(t, can.Type, Canonicalize(sample).Type)
		})
	}
}

func TestDesugarIsOneLevel(t *testing.T) {
	ctx := NewTypeContext()
	i64 := ctx.BuiltinInteger(FixedWidth(64))
	optOpt := ctx.OptionalOf(ctx.OptionalOf(i64))

	once := Desugar(optOpt)
	bound, ok := once.(*BoundGenericType)
	require.True(t, ok)
	assert.Same(t, ctx.OptionalDecl(), bound.Decl())
	// the argument keeps its sugar after one step
	require.Len(t, bound.Args(), 1)
	assert.Equal(t, KindOptional, bound.Args()[0].Kind())

	// full canonicalization rewrites both levels
	can := Canonicalize(optOpt).Type
	canBound, ok := can.(*BoundGenericType)
	require.True(t, ok)
	assert.Equal(t, KindBoundGeneric, canBound.Args()[0].Kind())
}

func TestSugarSharesCanonicalNode(t *testing.T) {
	ctx := NewTypeContext()
	i64 := ctx.BuiltinInteger(FixedWidth(64))

	assert.Same(t, i64, Canonicalize(ctx.Paren(i64)).Type)

	slice := ctx.ArraySliceOf(i64)
	explicit := ctx.BoundGeneric(ctx.SliceDecl(), nil, []Type{i64})
	assert.Same(t, explicit, Canonicalize(slice).Type)

	// sugar nodes are never their own canonical form
	assert.False(t, slice.IsCanonical())
	assert.True(t, explicit.IsCanonical())
}

func TestCompositionCanonicalization(t *testing.T) {
	ctx := NewTypeContext()
	std := ctx.StdModule()
	p := decls.NewProtocol(std, "P")
	q := decls.NewProtocol(std, "Q", p)
	r := decls.NewProtocol(std, "R")
	pTy, qTy, rTy := ctx.Nominal(p, nil), ctx.Nominal(q, nil), ctx.Nominal(r, nil)

	t.Run("inherited members are dropped", func(t *testing.T) {
		can := Canonicalize(ctx.ProtocolComposition([]Type{pTy, qTy})).Type
		// Q implies P, and a one-member composition collapses to the member
		assert.Same(t, qTy, can)
	})

	t.Run("duplicates are dropped", func(t *testing.T) {
		can := Canonicalize(ctx.ProtocolComposition([]Type{pTy, pTy})).Type
		assert.Same(t, pTy, can)
	})

	t.Run("members sort by name", func(t *testing.T) {
		a := Canonicalize(ctx.ProtocolComposition([]Type{rTy, qTy})).Type
		b := Canonicalize(ctx.ProtocolComposition([]Type{qTy, rTy})).Type
		assert.Same(t, a, b)
		comp, ok := a.(*ProtocolCompositionType)
		require.True(t, ok)
		require.Len(t, comp.Protocols(), 2)
		assert.Same(t, qTy, comp.Protocols()[0])
		assert.Same(t, rTy, comp.Protocols()[1])
	})

	t.Run("nested compositions flatten", func(t *testing.T) {
		inner := ctx.ProtocolComposition([]Type{rTy})
		can := Canonicalize(ctx.ProtocolComposition([]Type{inner, qTy})).Type
		comp, ok := can.(*ProtocolCompositionType)
		require.True(t, ok)
		assert.Len(t, comp.Protocols(), 2)
	})

	t.Run("empty composition is its own canonical form", func(t *testing.T) {
		empty := ctx.ProtocolComposition(nil)
		assert.True(t, empty.IsCanonical())
	})
}

func TestIsEqualVersusIsSpelledLike(t *testing.T) {
	ctx := NewTypeContext()
	i64 := ctx.BuiltinInteger(FixedWidth(64))

	sugar := ctx.OptionalOf(i64)
	explicit := ctx.BoundGeneric(ctx.OptionalDecl(), nil, []Type{i64})

	assert.True(t, IsEqual(sugar, explicit))
	assert.False(t, IsSpelledLike(sugar, explicit))
	assert.True(t, IsSpelledLike(sugar, ctx.OptionalOf(i64)))

	paren := ctx.Paren(i64)
	assert.True(t, IsEqual(paren, i64))
	assert.False(t, IsSpelledLike(paren, i64))

	t.Run("spelling recurses through structure", func(t *testing.T) {
		a := ctx.Tuple([]TupleElement{{Name: "x", Type: sugar}, {Name: "y", Type: i64}})
		b := ctx.Tuple([]TupleElement{{Name: "x", Type: explicit}, {Name: "y", Type: i64}})
		assert.True(t, IsEqual(a, b))
		assert.False(t, IsSpelledLike(a, b))
	})
}

func TestWalkVisitsPreorder(t *testing.T) {
	ctx := NewTypeContext()
	i64 := ctx.BuiltinInteger(FixedWidth(64))
	fn := ctx.Function(ctx.Paren(i64), ctx.OptionalOf(i64), ExtInfo(0))

	var kinds []Kind
	Walk(fn, func(t Type) bool {
		kinds = append(kinds, t.Kind())
		return true
	})
	assert.Equal(t, []Kind{KindFunction, KindParen, KindBuiltinInteger, KindOptional, KindBuiltinInteger}, kinds)

	// pruning stops descent
	var count int
	Walk(fn, func(t Type) bool {
		count++
		return t.Kind() == KindFunction
	})
	assert.Equal(t, 3, count)
}
