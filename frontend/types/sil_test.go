package types

import (
	"testing"

	"github.com/cottand/sable/frontend/decls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterConventionQueries(t *testing.T) {
	testCases := []struct {
		convention ParameterConvention
		indirect   bool
		consumed   bool
	}{
		{ParamIndirectIn, true, true},
		{ParamIndirectInout, true, false},
		{ParamIndirectOut, true, false},
		{ParamDirectOwned, false, true},
		{ParamDirectUnowned, false, false},
		{ParamDirectGuaranteed, false, false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.convention.String(), func(t *testing.T) {
			assert.Equal(t, testCase.indirect, testCase.convention.IsIndirect())
			assert.Equal(t, testCase.consumed, testCase.convention.IsConsumed())
		})
	}
}

func TestSILFunctionInterning(t *testing.T) {
	ctx := NewTypeContext()
	i64 := Canonicalize(ctx.BuiltinInteger(FixedWidth(64)))
	f64 := Canonicalize(ctx.BuiltinFloat(FloatIEEE64))
	ext := NewExtInfo(CCFreestanding, RepThick, false, false)

	build := func(conv ParameterConvention) *SILFunctionType {
		return ctx.SILFunction(nil, nil, ext, ParamDirectUnowned,
			[]SILParameterInfo{{Type: i64, Convention: conv}},
			SILResultInfo{Type: f64, Convention: ResultOwned}, false)
	}
	assert.Same(t, build(ParamDirectOwned), build(ParamDirectOwned))
	// conventions are part of identity
	assert.NotSame(t, build(ParamDirectOwned), build(ParamDirectGuaranteed))
}

func TestSILFunctionIndirectResultLayout(t *testing.T) {
	ctx := NewTypeContext()
	i64 := Canonicalize(ctx.BuiltinInteger(FixedWidth(64)))
	ext := NewExtInfo(CCFreestanding, RepThick, false, false)
	void := SILResultInfo{Type: Canonicalize(ctx.Tuple(nil)), Convention: ResultUnowned}

	t.Run("placeholder occupies slot 0", func(t *testing.T) {
		sil := ctx.SILFunction(nil, nil, ext, ParamDirectUnowned,
			[]SILParameterInfo{
				{Type: i64, Convention: ParamIndirectOut},
				{Type: i64, Convention: ParamDirectOwned},
			}, void, true)
		require.True(t, sil.HasIndirectResult())
		assert.Equal(t, ParamIndirectOut, sil.IndirectResult().Convention)
	})

	t.Run("missing placeholder is rejected", func(t *testing.T) {
		assert.Panics(t, func() {
			ctx.SILFunction(nil, nil, ext, ParamDirectUnowned,
				[]SILParameterInfo{{Type: i64, Convention: ParamDirectOwned}}, void, true)
		})
	})

	t.Run("indirect after direct is rejected", func(t *testing.T) {
		assert.Panics(t, func() {
			ctx.SILFunction(nil, nil, ext, ParamDirectUnowned,
				[]SILParameterInfo{
					{Type: i64, Convention: ParamIndirectOut},
					{Type: i64, Convention: ParamDirectOwned},
					{Type: i64, Convention: ParamIndirectIn},
				}, void, true)
		})
	})

	t.Run("no indirect result means no placeholder", func(t *testing.T) {
		sil := ctx.SILFunction(nil, nil, ext, ParamDirectUnowned,
			[]SILParameterInfo{{Type: i64, Convention: ParamDirectOwned}}, void, false)
		assert.False(t, sil.HasIndirectResult())
		assert.Panics(t, func() { sil.IndirectResult() })
	})
}

func TestAutoreleasedResultRequiresClass(t *testing.T) {
	ctx := NewTypeContext()
	std := ctx.StdModule()
	ext := NewExtInfo(CCObjCMethod, RepThick, false, false)
	i64 := Canonicalize(ctx.BuiltinInteger(FixedWidth(64)))
	cls := Canonicalize(ctx.Nominal(decls.NewClass(std, "Object"), nil))

	assert.NotPanics(t, func() {
		ctx.SILFunction(nil, nil, ext, ParamDirectUnowned, nil,
			SILResultInfo{Type: cls, Convention: ResultAutoreleased}, false)
	})
	assert.Panics(t, func() {
		ctx.SILFunction(nil, nil, ext, ParamDirectUnowned, nil,
			SILResultInfo{Type: i64, Convention: ResultAutoreleased}, false)
	})

	t.Run("bound generic classes count", func(t *testing.T) {
		boxed := decls.NewClass(std, "Box", decls.NewGenericParam("T", 0, 0))
		bound := Canonicalize(ctx.BoundGeneric(boxed, nil, []Type{i64.Type}))
		assert.NotPanics(t, func() {
			ctx.SILFunction(nil, nil, ext, ParamDirectUnowned, nil,
				SILResultInfo{Type: bound, Convention: ResultAutoreleased}, false)
		})
	})
}

func TestSILFunctionRequiresCanonicalComponents(t *testing.T) {
	ctx := NewTypeContext()
	i64 := ctx.BuiltinInteger(FixedWidth(64))
	sugary := CanType{Type: ctx.OptionalOf(i64)}
	void := SILResultInfo{Type: Canonicalize(ctx.Tuple(nil)), Convention: ResultUnowned}

	assert.Panics(t, func() {
		ctx.SILFunction(nil, nil, ExtInfo(0), ParamDirectUnowned,
			[]SILParameterInfo{{Type: sugary, Convention: ParamDirectOwned}}, void, false)
	})

	t.Run("requirement types count as components", func(t *testing.T) {
		std := ctx.StdModule()
		p := decls.NewProtocol(std, "P")
		tParam := ctx.GenericParam(decls.NewGenericParam("T", 0, 0))
		req := Requirement{Kind: ConformanceRequirement, Subject: tParam, Constraint: ctx.Paren(ctx.Nominal(p, nil))}
		assert.Panics(t, func() {
			ctx.SILFunction([]*GenericParamType{tParam}, []Requirement{req}, ExtInfo(0),
				ParamDirectUnowned, nil, void, false)
		})
	})

	t.Run("requirement types reach traversal", func(t *testing.T) {
		std := ctx.StdModule()
		q := decls.NewProtocol(std, "Q")
		qTy := ctx.Nominal(q, nil)
		uParam := ctx.GenericParam(decls.NewGenericParam("U", 0, 0))
		req := Requirement{Kind: ConformanceRequirement, Subject: uParam, Constraint: qTy}
		sil := ctx.SILFunction([]*GenericParamType{uParam}, []Requirement{req}, ExtInfo(0),
			ParamDirectUnowned, nil, void, false)
		seen := false
		Walk(sil, func(t Type) bool {
			seen = seen || t == qTy
			return true
		})
		assert.True(t, seen)
	})
}
