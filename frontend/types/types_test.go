package types

import (
	"testing"

	"github.com/cottand/sable/frontend/decls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinInterning(t *testing.T) {
	ctx := NewTypeContext()

	i64 := ctx.BuiltinInteger(FixedWidth(64))
	assert.Same(t, i64, ctx.BuiltinInteger(FixedWidth(64)))
	assert.NotSame(t, i64, ctx.BuiltinInteger(FixedWidth(32)))
	assert.NotSame(t, i64, ctx.BuiltinInteger(WordWidth()))

	f64 := ctx.BuiltinFloat(FloatIEEE64)
	assert.Same(t, f64, ctx.BuiltinFloat(FloatIEEE64))
	assert.NotSame(t, f64, ctx.BuiltinFloat(FloatIEEE32))

	assert.Same(t, ctx.BuiltinRawPointer(), ctx.BuiltinRawPointer())
	assert.Same(t, ctx.ErrorType(), ctx.ErrorType())
}

func TestStructuralInterning(t *testing.T) {
	ctx := NewTypeContext()
	i64 := ctx.BuiltinInteger(FixedWidth(64))
	f64 := ctx.BuiltinFloat(FloatIEEE64)

	testCases := []struct {
		name  string
		build func() Type
	}{
		{"tuple", func() Type {
			return ctx.Tuple([]TupleElement{{Name: "x", Type: i64}, {Name: "y", Type: f64}})
		}},
		{"function", func() Type {
			return ctx.Function(i64, f64, NewExtInfo(CCFreestanding, RepThick, false, false))
		}},
		{"paren", func() Type { return ctx.Paren(i64) }},
		{"optional", func() Type { return ctx.OptionalOf(i64) }},
		{"slice", func() Type { return ctx.ArraySliceOf(i64) }},
		{"metatype", func() Type { return ctx.Metatype(i64) }},
		{"lvalue", func() Type { return ctx.LValue(i64) }},
		{"inout", func() Type { return ctx.InOut(i64) }},
		{"vector", func() Type { return ctx.BuiltinVector(i64, 4) }},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Same(t, testCase.build(), testCase.build())
		})
	}
}

func TestTupleSingleElementCollapse(t *testing.T) {
	ctx := NewTypeContext()
	i64 := ctx.BuiltinInteger(FixedWidth(64))

	testCases := []struct {
		name     string
		element  TupleElement
		expected Kind
	}{
		{"unlabeled", TupleElement{Type: i64}, KindParen},
		{"labeled", TupleElement{Name: "x", Type: i64}, KindTuple},
		{"variadic", TupleElement{Type: i64, Variadic: true}, KindTuple},
		{"defaulted", TupleElement{Type: i64, HasDefault: true}, KindTuple},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			got := ctx.Tuple([]TupleElement{testCase.element})
			assert.Equal(t, testCase.expected, got.Kind())
		})
	}

	t.Run("collapsed paren shares the element type", func(t *testing.T) {
		got := ctx.Tuple([]TupleElement{{Type: i64}})
		require.IsType(t, &ParenType{}, got)
		assert.Same(t, i64, got.(*ParenType).Underlying())
	})
}

func TestPropertyPropagation(t *testing.T) {
	ctx := NewTypeContext()
	i64 := ctx.BuiltinInteger(FixedWidth(64))
	v := ctx.NewTypeVariable()

	plain := ctx.Tuple([]TupleElement{{Name: "a", Type: i64}, {Name: "b", Type: i64}})
	assert.Zero(t, plain.Properties().Bits())
	assert.True(t, plain.IsMaterializable())
	assert.False(t, plain.HasTypeVariable())

	withVar := ctx.Tuple([]TupleElement{{Name: "a", Type: i64}, {Name: "b", Type: v}})
	assert.True(t, withVar.HasTypeVariable())
	assert.False(t, withVar.IsDependent())
	assert.True(t, withVar.IsMaterializable())

	inout := ctx.InOut(i64)
	assert.False(t, inout.IsMaterializable())
	nested := ctx.Tuple([]TupleElement{{Name: "a", Type: inout}, {Name: "b", Type: i64}})
	assert.False(t, nested.IsMaterializable())
}

func TestFunctionInputMaterializability(t *testing.T) {
	ctx := NewTypeContext()
	i64 := ctx.BuiltinInteger(FixedWidth(64))

	// inout parameters do not make the function type itself
	// non-materializable
	fn := ctx.Function(ctx.InOut(i64), i64, ExtInfo(0))
	assert.True(t, fn.IsMaterializable())

	// a non-materializable result does
	fn = ctx.Function(i64, ctx.LValue(i64), ExtInfo(0))
	assert.False(t, fn.IsMaterializable())
}

func TestConstraintArenaDrop(t *testing.T) {
	ctx := NewTypeContext()
	i64 := ctx.BuiltinInteger(FixedWidth(64))
	v := ctx.NewTypeVariable()

	constrained := ctx.Tuple([]TupleElement{{Name: "a", Type: v}, {Name: "b", Type: i64}})
	assert.Same(t, constrained,
		ctx.Tuple([]TupleElement{{Name: "a", Type: v}, {Name: "b", Type: i64}}))
	permanent := ctx.Tuple([]TupleElement{{Name: "a", Type: i64}, {Name: "b", Type: i64}})

	ctx.DropConstraintArena()

	// the variable-bearing node is gone from the table; the same request
	// now builds a fresh node
	rebuilt := ctx.Tuple([]TupleElement{{Name: "a", Type: v}, {Name: "b", Type: i64}})
	assert.NotSame(t, constrained, rebuilt)
	// permanent nodes survive
	assert.Same(t, permanent,
		ctx.Tuple([]TupleElement{{Name: "a", Type: i64}, {Name: "b", Type: i64}}))
}

func TestTypeVariablesAreFresh(t *testing.T) {
	ctx := NewTypeContext()
	a, b := ctx.NewTypeVariable(), ctx.NewTypeVariable()
	assert.NotSame(t, a, b)
	assert.NotEqual(t, a.String(), b.String())
	assert.True(t, a.HasTypeVariable())
}

func TestCrossContextMixingPanics(t *testing.T) {
	ctx, other := NewTypeContext(), NewTypeContext()
	i64 := other.BuiltinInteger(FixedWidth(64))
	assert.Panics(t, func() {
		ctx.Tuple([]TupleElement{{Name: "a", Type: i64}, {Name: "b", Type: i64}})
	})
	assert.Panics(t, func() { ctx.OptionalOf(i64) })
}

func TestWordWidthHasNoFixedBits(t *testing.T) {
	assert.Panics(t, func() { WordWidth().FixedBits() })
	assert.Equal(t, uint32(64), FixedWidth(64).FixedBits())
}

func TestNominalFactoryContracts(t *testing.T) {
	ctx := NewTypeContext()
	std := ctx.StdModule()
	i64 := ctx.BuiltinInteger(FixedWidth(64))

	plain := decls.NewStruct(std, "Plain")
	generic := decls.NewStruct(std, "Box", decls.NewGenericParam("T", 0, 0))

	assert.Panics(t, func() { ctx.Nominal(generic, nil) })
	assert.Panics(t, func() { ctx.UnboundGeneric(plain, nil) })
	assert.Panics(t, func() { ctx.BoundGeneric(generic, nil, nil) })

	bound := ctx.BoundGeneric(generic, nil, []Type{i64})
	assert.Same(t, bound, ctx.BoundGeneric(generic, nil, []Type{i64}))
}

func TestExistentialMetatypeRequiresExistential(t *testing.T) {
	ctx := NewTypeContext()
	std := ctx.StdModule()
	p := decls.NewProtocol(std, "P")
	plain := ctx.Nominal(decls.NewStruct(std, "Plain"), nil)

	assert.NotPanics(t, func() { ctx.ExistentialMetatype(ctx.Nominal(p, nil), MetatypeReprUnspecified) })
	assert.Panics(t, func() { ctx.ExistentialMetatype(plain, MetatypeReprUnspecified) })
	assert.Panics(t, func() { ctx.ProtocolComposition([]Type{plain}) })
}

func TestBuiltinVectorElementMustBeBuiltin(t *testing.T) {
	ctx := NewTypeContext()
	plain := ctx.Nominal(decls.NewStruct(ctx.StdModule(), "Plain"), nil)
	assert.Panics(t, func() { ctx.BuiltinVector(plain, 4) })
}
