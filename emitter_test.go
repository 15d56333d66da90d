package loopir

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileToStringsEmitsSignatureAndBody(t *testing.T) {
	n := MustNewSymbol("n")
	x := MustNewSymbol("x")

	p := &Proc{
		Name: "scale",
		Args: []*FnArg{
			{Name: n, Typ: T.Size},
			{Name: x, Typ: T.F32, Mem: defaultDRAM},
		},
		Body: []Stmt{
			&AssignStmt{Name: x, Typ: T.F32, Rhs: constFloat(2)},
		},
	}

	c, h, err := CompileToStrings([]*Proc{p}, "kernels", nil)
	require.NoError(t, err)
	assert.Contains(t, c, "void scale(struct kernels_Context *ctxt")
	assert.Contains(t, c, "*x = 2")
	assert.Contains(t, h, "#ifndef KERNELS_H")
	assert.Contains(t, h, "void scale(struct kernels_Context *ctxt")
	assert.True(t, strings.Contains(h, "extern \"C\""))
}

func TestCompileToStringsPropagatesCallCycleError(t *testing.T) {
	a := mkProc("a", nil)
	b := mkProc("b", []Stmt{&CallStmt{Proc: a}})
	a.Body = []Stmt{&CallStmt{Proc: b}}

	_, _, err := CompileToStrings([]*Proc{a}, "k", nil)
	require.Error(t, err)
}

func TestConfigBoolRoundtrip(t *testing.T) {
	cfg := NewCompilerConfig()
	assert.True(t, cfg.GetBool("emit.sorted_output"))
	cfg.SetBool("emit.sorted_output", false)
	assert.False(t, cfg.GetBool("emit.sorted_output"))
}

func TestConfigTypeMismatchPanics(t *testing.T) {
	cfg := NewCompilerConfig()
	assert.Panics(t, func() { cfg.GetInt("emit.sorted_output") })
}

// testConfig is a minimal Config used only to exercise the emitter's
// ReadConfig/WriteConfig lowering.
type testConfig struct {
	name      string
	allowWrite bool
	fields    map[string]Type
}

func (c *testConfig) Name() string       { return c.name }
func (c *testConfig) AllowWrite() bool   { return c.allowWrite }
func (c *testConfig) Lookup(field string) (Type, error) {
	if t, ok := c.fields[field]; ok {
		return t, nil
	}
	return nil, &CompileError{Kind: KindConstruction, Message: "no such config field: " + field}
}
func (c *testConfig) CStructDef() string { return "float alpha;" }

var _ Config = (*testConfig)(nil)

func TestWriteConfigAndReadConfigUseCtxtPrefix(t *testing.T) {
	cfg := &testConfig{name: "tune", allowWrite: true, fields: map[string]Type{"alpha": T.F32}}
	x := MustNewSymbol("x")

	p := &Proc{
		Name: "set_alpha",
		Args: []*FnArg{{Name: x, Typ: T.F32, Mem: defaultDRAM}},
		Body: []Stmt{
			&WriteConfigStmt{Config: cfg, Field: "alpha", Rhs: constFloat(3)},
			&AssignStmt{Name: x, Typ: T.F32, Rhs: &ReadConfigExpr{Config: cfg, Field: "alpha", Typ: T.F32}},
		},
	}

	c, h, err := CompileToStrings([]*Proc{p}, "tunelib", nil)
	require.NoError(t, err)
	assert.Contains(t, c, "ctxt->tune.alpha = 3.0f;")
	assert.Contains(t, c, "*x = ctxt->tune.alpha;")
	assert.Contains(t, h, "float alpha;")
}

func TestWriteConfigRejectsReadOnly(t *testing.T) {
	cfg := &testConfig{name: "ro", allowWrite: false, fields: map[string]Type{"k": T.F32}}
	p := &Proc{
		Name: "bad",
		Body: []Stmt{&WriteConfigStmt{Config: cfg, Field: "k", Rhs: constFloat(1)}},
	}
	_, _, err := CompileToStrings([]*Proc{p}, "badlib", nil)
	require.Error(t, err)
}

func TestAssignClampsInt32IntoInt8(t *testing.T) {
	x := MustNewSymbol("x")
	p := &Proc{
		Name: "narrow",
		Args: []*FnArg{{Name: x, Typ: &TensorType{Hi: []Expr{constInt(4)}, Elem: T.INT8}, Mem: defaultDRAM}},
		Body: []Stmt{
			&AssignStmt{
				Name: x,
				Typ:  T.INT8,
				Cast: T.INT32,
				Idx:  []Expr{constInt(0)},
				Rhs:  &ConstExpr{Val: ConstVal{IsInt: true, Int: 200}, Typ: T.INT32},
			},
		},
	}
	c, _, err := CompileToStrings([]*Proc{p}, "clamp", nil)
	require.NoError(t, err)
	assert.Contains(t, c, "exo_clamp_32to8(200)")
	assert.Contains(t, c, "static inline int8_t exo_clamp_32to8")
}

func TestWindowExprEmitsStructLiteralAndHeaderDef(t *testing.T) {
	n := MustNewSymbol("n")
	buf := MustNewSymbol("buf")
	win := MustNewSymbol("w")

	bufType, err := NewTensorType([]Expr{&ReadExpr{Name: n, Typ: T.Size}, &ReadExpr{Name: n, Typ: T.Size}}, false, T.F32)
	require.NoError(t, err)
	// The window keeps only its Interval dimension; a prior window
	// analysis is what would normally compute this 1-dim AsTensor.
	asTensor, err := NewTensorType([]Expr{constInt(2)}, true, T.F32)
	require.NoError(t, err)

	windowed := &WindowExpr{
		Name: buf,
		Idx: []WAccess{
			&Interval{Lo: constInt(1), Hi: constInt(3)},
			&Point{Pt: constInt(0)},
		},
		Typ: &WindowType{SrcType: bufType, AsTensor: asTensor, SrcBuf: buf},
	}

	p := &Proc{
		Name: "take_window",
		Args: []*FnArg{
			{Name: n, Typ: T.Size},
			{Name: buf, Typ: bufType, Mem: defaultDRAM},
		},
		Body: []Stmt{
			&WindowStmt{Name: win, Rhs: windowed},
		},
	}

	c, h, err := CompileToStrings([]*Proc{p}, "windowlib", nil)
	require.NoError(t, err)
	assert.Contains(t, c, ".strides = { ")
	assert.Contains(t, c, "buf + ")
	assert.Contains(t, h, "typedef struct exo_win_1")
	assert.Contains(t, h, "float * const data;")
	assert.Contains(t, h, "const int_fast32_t strides[1];")
}

func TestCallExpandsInstrTemplate(t *testing.T) {
	a := MustNewSymbol("a")
	instr := "vec_add({a});"
	intrin := &Proc{
		Name:  "vec_add",
		Args:  []*FnArg{{Name: a, Typ: T.F32, Mem: defaultDRAM}},
		Instr: &instr,
	}

	caller := &Proc{
		Name: "uses_intrinsic",
		Args: []*FnArg{{Name: a, Typ: T.F32, Mem: defaultDRAM}},
		Body: []Stmt{
			&CallStmt{Proc: intrin, Args: []Expr{&ReadExpr{Name: a, Typ: T.F32}}},
		},
	}

	c, _, err := CompileToStrings([]*Proc{caller}, "intrinlib", nil)
	require.NoError(t, err)
	assert.Contains(t, c, "vec_add(&a);")
	assert.NotContains(t, c, "void vec_add(", "an instruction procedure must never get a C function of its own")
}

func TestNonSeedProcsAreStatic(t *testing.T) {
	helper := mkProc("helper", nil)
	root := mkProc("root", []Stmt{&CallStmt{Proc: helper}})

	c, h, err := CompileToStrings([]*Proc{root}, "statlib", nil)
	require.NoError(t, err)
	assert.Contains(t, c, "static void helper(")
	assert.NotContains(t, h, "helper")
	assert.Contains(t, h, "void root(")
}

func TestIndexDivisionUsesFloorDivHelper(t *testing.T) {
	i := MustNewSymbol("i")
	out := MustNewSymbol("out")
	sum := &BinOpExpr{Op: OpAdd, Lhs: readSym(i, T.Index), Rhs: constInt(3), Typ: T.Index}
	div := &BinOpExpr{Op: OpDiv, Lhs: sum, Rhs: constInt(4), Typ: T.Index}

	p := &Proc{
		Name: "idiv",
		Args: []*FnArg{{Name: i, Typ: T.Index}, {Name: out, Typ: T.Index}},
		Body: []Stmt{&AssignStmt{Name: out, Typ: T.Index, Rhs: div}},
	}
	c, _, err := CompileToStrings([]*Proc{p}, "idivlib", nil)
	require.NoError(t, err)
	assert.Contains(t, c, "exo_floor_div(i + 3, 4)")
}

func TestSizeDivisionUsesPlainCOperator(t *testing.T) {
	i := MustNewSymbol("i")
	out := MustNewSymbol("out")
	sum := &BinOpExpr{Op: OpAdd, Lhs: readSym(i, T.Size), Rhs: constInt(3), Typ: T.Size}
	div := &BinOpExpr{Op: OpDiv, Lhs: sum, Rhs: constInt(4), Typ: T.Size}

	p := &Proc{
		Name: "sdiv",
		Args: []*FnArg{{Name: i, Typ: T.Size}, {Name: out, Typ: T.Size}},
		Body: []Stmt{&AssignStmt{Name: out, Typ: T.Size, Rhs: div}},
	}
	c, _, err := CompileToStrings([]*Proc{p}, "sdivlib", nil)
	require.NoError(t, err)
	assert.Contains(t, c, "(((i + 3)) / (4))")
	assert.NotContains(t, c, "exo_floor_div")
}

func constInt(v int64) Expr {
	return &ConstExpr{Val: ConstVal{IsInt: true, Int: v}, Typ: T.Index}
}

// writeOnlyMem is a Memory whose CanRead reports false, used to exercise
// the read-side MemGenError check in emitExpr.
type writeOnlyMem struct{ DRAM }

func (*writeOnlyMem) Name() string  { return "WriteOnly" }
func (*writeOnlyMem) CanRead() bool { return false }

func TestReadFromUnreadableMemoryIsAnError(t *testing.T) {
	x := MustNewSymbol("x")
	p := &Proc{
		Name: "peek",
		Args: []*FnArg{{Name: x, Typ: T.F32, Mem: &writeOnlyMem{}}},
		Body: []Stmt{
			&AssignStmt{Name: x, Typ: T.F32, Rhs: readSym(x, T.F32)},
		},
	}
	_, _, err := CompileToStrings([]*Proc{p}, "roMemLib", nil)
	require.Error(t, err)
}

// taggedWindowMem records the baseptr/indices its Window hook is
// invoked with, so the test can confirm emitWindowExpr actually routes
// through the owning memory's hook instead of hardcoding pointer
// arithmetic.
type taggedWindowMem struct{ DRAM }

func (*taggedWindowMem) Name() string { return "Tagged" }

func (*taggedWindowMem) Window(ctype, baseptr, indices string, shape []string, src SrcInfo) (string, error) {
	return fmt.Sprintf("TAGGED(%s, %s)", baseptr, indices), nil
}

func TestWindowExprUsesOwningMemorysWindowHook(t *testing.T) {
	n := MustNewSymbol("n")
	buf := MustNewSymbol("buf")
	win := MustNewSymbol("w")

	bufType, err := NewTensorType([]Expr{&ReadExpr{Name: n, Typ: T.Size}}, false, T.F32)
	require.NoError(t, err)
	asTensor, err := NewTensorType([]Expr{constInt(2)}, true, T.F32)
	require.NoError(t, err)

	windowed := &WindowExpr{
		Name: buf,
		Idx:  []WAccess{&Interval{Lo: constInt(0), Hi: constInt(2)}},
		Typ:  &WindowType{SrcType: bufType, AsTensor: asTensor, SrcBuf: buf},
	}

	p := &Proc{
		Name: "tag_window",
		Args: []*FnArg{
			{Name: n, Typ: T.Size},
			{Name: buf, Typ: bufType, Mem: &taggedWindowMem{}},
		},
		Body: []Stmt{&WindowStmt{Name: win, Rhs: windowed}},
	}

	c, _, err := CompileToStrings([]*Proc{p}, "tagwinlib", nil)
	require.NoError(t, err)
	assert.Contains(t, c, "TAGGED(buf, ")
}
