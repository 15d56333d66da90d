package loopir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constIdx(n int64) Expr {
	return &ConstExpr{Val: ConstVal{IsInt: true, Int: n}, Typ: T.Index}
}

func TestCtype(t *testing.T) {
	assert.Equal(t, "float", Ctype(T.F32))
	assert.Equal(t, "double", Ctype(T.F64))
	assert.Equal(t, "int8_t", Ctype(T.INT8))
	assert.Equal(t, "int32_t", Ctype(T.INT32))
	assert.Equal(t, "bool", Ctype(T.Bool))
	assert.Equal(t, "int_fast32_t", Ctype(T.Index))
}

func TestCtypeOnNumPanics(t *testing.T) {
	assert.Panics(t, func() { Ctype(T.Num) })
}

func TestTensorTypeRejectsNestedTensor(t *testing.T) {
	inner, err := NewTensorType([]Expr{constIdx(4)}, false, T.F32)
	require.NoError(t, err)
	_, err = NewTensorType([]Expr{constIdx(4)}, false, inner)
	assert.Error(t, err, "a tensor of tensors must be rejected at construction")
}

func TestShapeAndBasetype(t *testing.T) {
	tt, err := NewTensorType([]Expr{constIdx(4), constIdx(8)}, false, T.F32)
	require.NoError(t, err)
	assert.Len(t, Shape(tt), 2)
	assert.Equal(t, T.F32, Basetype(tt))
	assert.Nil(t, Shape(T.F32))
	assert.Equal(t, T.F32, Basetype(T.F32))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsRealScalar(T.F32))
	assert.False(t, IsRealScalar(T.Index))
	assert.True(t, IsNumeric(T.Num))
	assert.True(t, IsIndexable(T.Size))
	assert.False(t, IsIndexable(T.F32))
	assert.True(t, IsBool(T.Bool))
	assert.False(t, IsBool(T.Int))

	tt, err := NewTensorType(nil, false, T.F32)
	require.NoError(t, err)
	assert.True(t, IsTensorOrWindow(tt))
	assert.False(t, IsTensorOrWindow(T.F32))

	assert.True(t, IsStridable(T.Int))
	assert.True(t, IsStridable(T.Stride))
	assert.False(t, IsStridable(T.Index))

	wt := NewWindowType(tt, tt, MustNewSymbol("buf"), nil)
	assert.True(t, IsWin(wt))
	assert.False(t, IsWin(tt))
}
