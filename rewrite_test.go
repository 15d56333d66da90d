package loopir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// identityRewrite overrides nothing, so every MapX call should bottom
// out in BaseRewrite's default descent and report "no change" for a
// tree with nothing to rewrite.
type identityRewrite struct {
	BaseRewrite
}

func newIdentityRewrite() *identityRewrite {
	r := &identityRewrite{}
	r.Self = r
	return r
}

func TestBaseRewriteIdentityOnUnchangedTree(t *testing.T) {
	p := &Proc{
		Name: "f",
		Args: []*FnArg{{Name: MustNewSymbol("x"), Typ: T.F32}},
		Body: []Stmt{&PassStmt{}},
	}
	r := newIdentityRewrite()
	out := r.MapProc(p)
	assert.Same(t, p, out, "a rewrite that changes nothing must hand back the exact same Proc pointer")
}

// negToMulRewrite turns every USub into a multiplication by -1, exercising that
// an override on the concrete type fires during BaseRewrite's default
// recursive descent (the "virtual self" dispatch).
type negToMulRewrite struct {
	BaseRewrite
}

func newNegToMulRewrite() *negToMulRewrite {
	r := &negToMulRewrite{}
	r.Self = r
	return r
}

func (r *negToMulRewrite) MapExpr(e Expr) Expr {
	if n, ok := e.(*USubExpr); ok {
		return &BinOpExpr{Op: OpMul, Lhs: n.Arg, Rhs: &ConstExpr{Val: ConstVal{IsInt: true, Int: -1}, Typ: n.Typ}, Typ: n.Typ, At: n.At}
	}
	return r.BaseRewrite.MapExpr(e)
}

func TestMapProcFiltersConstTruePreconditions(t *testing.T) {
	n := MustNewSymbol("n")
	p := &Proc{
		Name: "f",
		Args: []*FnArg{{Name: n, Typ: T.Size}},
		Preds: []Expr{
			&ConstExpr{Val: ConstVal{IsBool: true, Bool: true}, Typ: T.Bool},
			&BinOpExpr{Op: OpLt, Lhs: &ConstExpr{Val: ConstVal{IsInt: true, Int: 0}, Typ: T.Int}, Rhs: readSym(n, T.Size), Typ: T.Bool},
		},
		Body: []Stmt{&PassStmt{}},
	}
	r := newIdentityRewrite()
	out := r.MapProc(p)
	assert.Len(t, out.Preds, 1, "a literal true precondition must be dropped")
	assert.NotSame(t, p, out)
}

func TestVirtualSelfDispatchesOverrideDuringDescent(t *testing.T) {
	x := MustNewSymbol("x")
	body := []Stmt{
		&AssignStmt{Name: MustNewSymbol("y"), Typ: T.F32, Rhs: &USubExpr{Arg: readSym(x, T.F32), Typ: T.F32}},
	}
	r := newNegToMulRewrite()
	out := r.MapStmts(body)
	rhs := out[0].(*AssignStmt).Rhs
	bo, ok := rhs.(*BinOpExpr)
	if assert.True(t, ok, "the USub nested inside the Assign's Rhs must have been rewritten by the override") {
		assert.Equal(t, OpMul, bo.Op)
	}
}
