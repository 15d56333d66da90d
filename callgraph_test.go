package loopir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkProc(name string, body []Stmt) *Proc {
	return &Proc{Name: name, Body: body}
}

func TestFindAllSubprocsOrdersCalleesBeforeCallers(t *testing.T) {
	leaf := mkProc("leaf", nil)
	mid := mkProc("mid", []Stmt{&CallStmt{Proc: leaf}})
	top := mkProc("top", []Stmt{&CallStmt{Proc: mid}})

	order, err := FindAllSubprocs([]*Proc{top})
	require.NoError(t, err)
	require.Len(t, order, 3)
	assert.Equal(t, "leaf", order[0].Name)
	assert.Equal(t, "mid", order[1].Name)
	assert.Equal(t, "top", order[2].Name)
}

func TestFindAllSubprocsDetectsCycle(t *testing.T) {
	a := mkProc("a", nil)
	b := mkProc("b", []Stmt{&CallStmt{Proc: a}})
	a.Body = []Stmt{&CallStmt{Proc: b}}

	_, err := FindAllSubprocs([]*Proc{a})
	require.Error(t, err)
	ce, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, KindCallGraph, ce.Kind)
}

func TestFindAllSubprocsTreatsInstrProcsAsLeaves(t *testing.T) {
	// hidden would form a cycle with top if its CallStmt were ever
	// walked; since intrin carries an Instr template, its body is
	// opaque and hidden must never be reached.
	hidden := mkProc("hidden", nil)
	instr := "noop();"
	intrin := &Proc{Name: "intrin", Instr: &instr, Body: []Stmt{&CallStmt{Proc: hidden}}}
	top := mkProc("top", []Stmt{&CallStmt{Proc: intrin}})
	hidden.Body = []Stmt{&CallStmt{Proc: top}}

	order, err := FindAllSubprocs([]*Proc{top})
	require.NoError(t, err)
	names := make([]string, len(order))
	for i, p := range order {
		names[i] = p.Name
	}
	assert.Contains(t, names, "intrin")
	assert.Contains(t, names, "top")
	assert.NotContains(t, names, "hidden")
}

func TestFindAllMemsDeduplicates(t *testing.T) {
	buf1 := MustNewSymbol("b1")
	buf2 := MustNewSymbol("b2")
	p := mkProc("p", []Stmt{
		&AllocStmt{Name: buf1, Typ: T.F32, Mem: defaultDRAM},
		&AllocStmt{Name: buf2, Typ: T.F32, Mem: defaultDRAM},
	})
	mems := FindAllMems([]*Proc{p})
	require.Len(t, mems, 1, "both allocs use the same memory class, so it must be deduplicated")
	assert.Equal(t, "DRAM", mems[0].Name())
}

func TestFindAllSubprocsRejectsDuplicateProcNames(t *testing.T) {
	leaf1 := mkProc("dup", nil)
	leaf2 := mkProc("dup", nil)
	top := mkProc("top", []Stmt{&CallStmt{Proc: leaf1}, &CallStmt{Proc: leaf2}})

	_, err := FindAllSubprocs([]*Proc{top})
	require.Error(t, err)
	ce, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, KindUniqueness, ce.Kind)
}

func TestFindAllConfigsRejectsDuplicateConfigNames(t *testing.T) {
	a := &testConfig{name: "tune", allowWrite: true, fields: map[string]Type{"x": T.F32}}
	b := &testConfig{name: "tune", allowWrite: true, fields: map[string]Type{"y": T.F32}}
	x := MustNewSymbol("x")
	p := mkProc("p", []Stmt{
		&WriteConfigStmt{Config: a, Field: "x", Rhs: constFloat(1)},
		&AssignStmt{Name: x, Typ: T.F32, Rhs: &ReadConfigExpr{Config: b, Field: "y", Typ: T.F32}},
	})

	_, err := FindAllConfigs([]*Proc{p})
	require.Error(t, err)
	ce, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, KindUniqueness, ce.Kind)
}

func TestDiscoverResourcesRunsConcurrentlyAndAgrees(t *testing.T) {
	buf := MustNewSymbol("b")
	p := mkProc("p", []Stmt{&AllocStmt{Name: buf, Typ: T.F32, Mem: defaultDRAM}})

	res, err := DiscoverResources([]*Proc{p})
	require.NoError(t, err)
	require.Len(t, res.Mems, 1)
	assert.Equal(t, "DRAM", res.Mems[0].Name())
	assert.Empty(t, res.Builtins)
	assert.Empty(t, res.Configs)
}
