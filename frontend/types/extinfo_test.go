package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtInfoBitLayout(t *testing.T) {
	testCases := []struct {
		name     string
		ext      ExtInfo
		expected uint16
	}{
		{"zero value", NewExtInfo(CCFreestanding, RepThick, false, false), 0x0},
		{"c convention", NewExtInfo(CCC, RepThick, false, false), 0x1},
		{"witness method", NewExtInfo(CCWitnessMethod, RepThick, false, false), 0x4},
		{"block", NewExtInfo(CCFreestanding, RepBlock, false, false), 0x10},
		{"thin", NewExtInfo(CCFreestanding, RepThin, false, false), 0x20},
		{"auto closure", NewExtInfo(CCFreestanding, RepThick, false, true), 0x40},
		{"no return", NewExtInfo(CCFreestanding, RepThick, true, false), 0x80},
		{"everything", NewExtInfo(CCWitnessMethod, RepThin, true, true), 0x4 | 0x20 | 0x40 | 0x80},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, testCase.ext.Bits())
		})
	}
}

func TestExtInfoRejectsUnknownConvention(t *testing.T) {
	assert.Panics(t, func() { NewExtInfo(AbstractCC(9), RepThick, false, false) })
}

func TestExtInfoAccessors(t *testing.T) {
	ext := NewExtInfo(CCObjCMethod, RepBlock, true, false)
	assert.Equal(t, CCObjCMethod, ext.CC())
	assert.Equal(t, RepBlock, ext.Representation())
	assert.True(t, ext.IsNoReturn())
	assert.False(t, ext.IsAutoClosure())
	assert.True(t, ext.IsBlock())
	assert.False(t, ext.IsThin())
}

func TestExtInfoWithersTouchOneField(t *testing.T) {
	base := NewExtInfo(CCMethod, RepThick, false, true)

	assert.Equal(t, CCC, base.WithCC(CCC).CC())
	assert.Equal(t, RepThick, base.WithCC(CCC).Representation())
	assert.True(t, base.WithCC(CCC).IsAutoClosure())

	thin := base.WithRepresentation(RepThin)
	assert.Equal(t, CCMethod, thin.CC())
	assert.True(t, thin.IsThin())

	assert.True(t, base.WithIsNoReturn(true).IsNoReturn())
	assert.Equal(t, base, base.WithIsNoReturn(true).WithIsNoReturn(false))
	assert.False(t, base.WithIsAutoClosure(false).IsAutoClosure())
}

func TestExtInfoDistinguishesFunctionTypes(t *testing.T) {
	ctx := NewTypeContext()
	i64 := ctx.BuiltinInteger(FixedWidth(64))

	thick := ctx.Function(i64, i64, NewExtInfo(CCFreestanding, RepThick, false, false))
	thin := ctx.Function(i64, i64, NewExtInfo(CCFreestanding, RepThin, false, false))
	assert.NotSame(t, thick, thin)
	assert.False(t, IsEqual(thick, thin))
}
