package loopir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlphaRenameGivesFreshBindingsAndRewritesReferences(t *testing.T) {
	buf := MustNewSymbol("acc")
	src := MustNewSymbol("src")

	body := []Stmt{
		&AllocStmt{Name: buf, Typ: T.F32, Mem: defaultDRAM},
		&AssignStmt{Name: buf, Typ: T.F32, Rhs: readSym(src, T.F32)},
		&FreeStmt{Name: buf, Typ: T.F32, Mem: defaultDRAM},
	}

	renamed := NewAlphaRename().Stmts(body)
	require.Len(t, renamed, 3)

	allocName := renamed[0].(*AllocStmt).Name
	assignName := renamed[1].(*AssignStmt).Name
	freeName := renamed[2].(*FreeStmt).Name

	assert.False(t, allocName.Equal(buf), "alloc site must get a fresh symbol")
	assert.True(t, allocName.Equal(assignName), "the assignment's renamed reference must match the renamed alloc")
	assert.True(t, allocName.Equal(freeName), "the free's renamed reference must match the renamed alloc")
	assert.Equal(t, "acc", allocName.Name(), "the printable name is preserved across renaming")

	rhsName := renamed[1].(*AssignStmt).Rhs.(*ReadExpr).Name
	assert.True(t, rhsName.Equal(src), "a reference to an outer, non-renamed symbol is left pointing at the same identity")
}

func TestAlphaRenameRewritesWindowTypeSrcBuf(t *testing.T) {
	buf := MustNewSymbol("buf")
	win := MustNewSymbol("w")
	elem, _ := NewTensorType(nil, false, T.F32)
	wt := NewWindowType(elem, elem, buf, nil)

	body := []Stmt{
		&AllocStmt{Name: buf, Typ: T.F32, Mem: defaultDRAM},
		&AssignStmt{Name: MustNewSymbol("y"), Typ: T.F32, Rhs: readSym(win, wt)},
	}
	renamed := NewAlphaRename().Stmts(body)
	allocName := renamed[0].(*AllocStmt).Name

	rhsType := renamed[1].(*AssignStmt).Rhs.(*ReadExpr).Typ.(*WindowType)
	assert.True(t, rhsType.SrcBuf.Equal(allocName), "a WindowType's src_buf must track the renamed Alloc it points at")
}

func TestAlphaRenameSeqIteratorIsFreshPerLoop(t *testing.T) {
	i := MustNewSymbol("i")
	body := []Stmt{
		&SeqStmt{Iter: i, Hi: constFloat(0), Body: []Stmt{
			&AssignStmt{Name: MustNewSymbol("y"), Typ: T.F32, Idx: []Expr{readSym(i, T.Index)}, Rhs: constFloat(1)},
		}},
	}
	renamed := NewAlphaRename().Stmts(body)
	loop := renamed[0].(*SeqStmt)
	assert.False(t, loop.Iter.Equal(i))
	refIdx := loop.Body[0].(*AssignStmt).Idx[0].(*ReadExpr).Name
	assert.True(t, refIdx.Equal(loop.Iter), "the reference inside the loop body must track the renamed iterator")
}
