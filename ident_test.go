package loopir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdent(t *testing.T) {
	cases := []struct {
		name  string
		valid bool
	}{
		{"x", true},
		{"_tmp", true},
		{"_1", true},
		{"acc32", true},
		{"1bad", false},
		{"", false},
		{"has space", false},
	}
	for _, c := range cases {
		_, err := Ident(c.name)
		if c.valid {
			assert.NoErrorf(t, err, "expected %q to be a valid identifier", c.name)
		} else {
			assert.Errorf(t, err, "expected %q to be rejected", c.name)
		}
	}
}

func TestValidateOperator(t *testing.T) {
	for _, op := range []Operator{OpAdd, OpSub, OpMul, OpDiv, OpMod, OpLt, OpGt, OpLe, OpGe, OpEq, OpAnd, OpOr} {
		assert.NoError(t, ValidateOperator(op))
	}
	assert.Error(t, ValidateOperator(Operator("^")))
}
