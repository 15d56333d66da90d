package loopir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBinOpExprValidatesOperator(t *testing.T) {
	lhs := &ConstExpr{Val: ConstVal{IsReal: true, Real: 1}, Typ: T.F32}
	rhs := &ConstExpr{Val: ConstVal{IsReal: true, Real: 2}, Typ: T.F32}

	e, err := NewBinOpExpr(OpAdd, lhs, rhs, T.F32, NullSrcInfo)
	require.NoError(t, err)
	assert.Equal(t, OpAdd, e.Op)
	assert.Equal(t, T.F32, e.ExprType())

	_, err = NewBinOpExpr(Operator("^"), lhs, rhs, T.F32, NullSrcInfo)
	assert.Error(t, err, "an operator outside the fixed set must be rejected at construction")
}

func TestNewEffectStartsEmpty(t *testing.T) {
	e := NewEffect(NullSrcInfo)
	assert.Nil(t, e.Reads)
	assert.Nil(t, e.Writes)
	assert.Nil(t, e.Reduces)
	assert.Nil(t, e.ConfigReads)
	assert.Nil(t, e.ConfigWrites)

	patched := e.Update(effectFields{Writes: []*EffSet{{Buffer: MustNewSymbol("b")}}})
	assert.Len(t, patched.Writes, 1)
	assert.Nil(t, e.Writes, "Update must not mutate the receiver")
}
