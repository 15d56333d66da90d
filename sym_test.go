package loopir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSymbolUniqueness(t *testing.T) {
	a := MustNewSymbol("x")
	b := MustNewSymbol("x")
	assert.Equal(t, "x", a.Name())
	assert.Equal(t, "x", b.Name())
	assert.False(t, a.Equal(b), "two distinct NewSymbol calls must never compare equal even with the same name")
}

func TestSymbolCopyPreservesNameNotIdentity(t *testing.T) {
	a := MustNewSymbol("acc")
	b := a.Copy()
	assert.Equal(t, a.Name(), b.Name())
	assert.False(t, a.Equal(b))
}

func TestNewSymbolRejectsInvalidIdentifier(t *testing.T) {
	_, err := NewSymbol("3bad")
	require.Error(t, err)
	ce, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, KindConstruction, ce.Kind)
}

func TestSrcInfoString(t *testing.T) {
	require.Equal(t, "<unknown>", NullSrcInfo.String())
	s := SrcInfo{Filename: "k.exo", Line: 3, Col: 5}
	assert.Equal(t, "k.exo:3:5", s.String())
}
