package loopir

// This file defines the typed Loop IR schema: the sum types for
// types, procedures, statements, expressions, window accesses and
// effects, plus the constructors that validate their arguments
// eagerly and the update(...) builders that are the sole mutation
// primitive used by passes (every rewrite produces a new value
// sharing unchanged subtrees; nothing here is mutated in place once
// built).
//
// Ported from the original's `LoopIR = ADT(...)` schema
// (original_source/src/exo/LoopIR.py), expressed in Go as interfaces
// with a closed set of struct implementations instead of a class
// hierarchy generated from an ADT DSL.

// --------------------------------------------------------------------
// Types
// --------------------------------------------------------------------

// Type is the closed sum of scalar, index-like, tensor and window
// types.
type Type interface {
	isType()
}

// Terminal (nullary) types are memoized: there is exactly one
// canonical instance of each, created once at package init and handed
// out by reference ever after. Because they're built before any
// goroutine can observe them and never mutated, no locking is needed
// to keep them safe under concurrent reads.
type (
	NumType    struct{}
	F32Type    struct{}
	F64Type    struct{}
	INT8Type   struct{}
	INT32Type  struct{}
	BoolType   struct{}
	IntType    struct{}
	IndexType  struct{}
	SizeType   struct{}
	StrideType struct{}
	ErrType    struct{}
)

func (*NumType) isType()    {}
func (*F32Type) isType()    {}
func (*F64Type) isType()    {}
func (*INT8Type) isType()   {}
func (*INT32Type) isType()  {}
func (*BoolType) isType()   {}
func (*IntType) isType()    {}
func (*IndexType) isType()  {}
func (*SizeType) isType()   {}
func (*StrideType) isType() {}
func (*ErrType) isType()    {}

// The canonical terminal instances. Every caller wanting e.g. an F32
// type uses T.F32 rather than constructing a new &F32Type{}, so that
// pointer-identity comparisons (used e.g. by is_win checks on struct
// fields) stay valid.
var T = struct {
	Num    *NumType
	F32    *F32Type
	F64    *F64Type
	INT8   *INT8Type
	INT32  *INT32Type
	Bool   *BoolType
	Int    *IntType
	Index  *IndexType
	Size   *SizeType
	Stride *StrideType
	Err    *ErrType
}{
	Num:    &NumType{},
	F32:    &F32Type{},
	F64:    &F64Type{},
	INT8:   &INT8Type{},
	INT32:  &INT32Type{},
	Bool:   &BoolType{},
	Int:    &IntType{},
	Index:  &IndexType{},
	Size:   &SizeType{},
	Stride: &StrideType{},
	Err:    &ErrType{},
}

// TensorType is a rectangular array; Hi gives the extents, Elem must
// itself be scalar (tensors never nest, and never hold a window).
type TensorType struct {
	Hi       []Expr
	IsWindow bool
	Elem     Type
}

func (*TensorType) isType() {}

// NewTensorType validates that Elem is a scalar type before
// constructing the tensor; a nested tensor or window element is a
// construction error.
func NewTensorType(hi []Expr, isWindow bool, elem Type) (*TensorType, error) {
	if IsTensorOrWindow(elem) {
		return nil, &CompileError{Kind: KindConstruction, Message: "tensor element type must not itself be a tensor or window"}
	}
	return &TensorType{Hi: hi, IsWindow: isWindow, Elem: elem}, nil
}

// WithHi returns a copy of t with Hi replaced.
func (t *TensorType) WithHi(hi []Expr) *TensorType {
	if hi == nil {
		return t
	}
	cp := *t
	cp.Hi = hi
	return &cp
}

// WithElem returns a copy of t with Elem replaced.
func (t *TensorType) WithElem(elem Type) *TensorType {
	if elem == nil {
		return t
	}
	cp := *t
	cp.Elem = elem
	return &cp
}

// WindowType is a view: SrcType is the original tensor type, AsTensor
// is the effective tensor type after the window is taken, SrcBuf
// names the backing buffer.
type WindowType struct {
	SrcType  Type
	AsTensor Type
	SrcBuf   Symbol
	Idx      []WAccess
}

func (*WindowType) isType() {}

func NewWindowType(srcType, asTensor Type, srcBuf Symbol, idx []WAccess) *WindowType {
	return &WindowType{SrcType: srcType, AsTensor: asTensor, SrcBuf: srcBuf, Idx: idx}
}

type windowTypeFields struct {
	SrcType  Type
	AsTensor Type
	SrcBuf   *Symbol
	Idx      []WAccess
}

// Update returns a copy of w with any non-zero field in patch applied.
// This mirrors the ADT's generic update(field=...) builder; since Go
// has no named-argument update, callers build the patch struct
// inline, e.g. w.Update(windowTypeFields{SrcBuf: &sym}).
func (w *WindowType) Update(patch windowTypeFields) *WindowType {
	cp := *w
	if patch.SrcType != nil {
		cp.SrcType = patch.SrcType
	}
	if patch.AsTensor != nil {
		cp.AsTensor = patch.AsTensor
	}
	if patch.SrcBuf != nil {
		cp.SrcBuf = *patch.SrcBuf
	}
	if patch.Idx != nil {
		cp.Idx = patch.Idx
	}
	return &cp
}

// --------------------------------------------------------------------
// Window accesses
// --------------------------------------------------------------------

// WAccess is either an Interval (contributes a dimension to the
// window) or a Point (drops the dimension).
type WAccess interface {
	isWAccess()
	Src() SrcInfo
}

type Interval struct {
	Lo, Hi Expr
	At     SrcInfo
}

func (*Interval) isWAccess()      {}
func (i *Interval) Src() SrcInfo { return i.At }

type Point struct {
	Pt Expr
	At SrcInfo
}

func (*Point) isWAccess()     {}
func (p *Point) Src() SrcInfo { return p.At }

var _ WAccess = (*Interval)(nil)
var _ WAccess = (*Point)(nil)

// --------------------------------------------------------------------
// Expressions
// --------------------------------------------------------------------

// Expr is the closed sum of value-producing IR nodes. Every variant
// carries its own Type so a pass never has to re-infer one.
type Expr interface {
	isExpr()
	ExprType() Type
	Src() SrcInfo
}

// ReadExpr reads a (possibly indexed) buffer or scalar variable.
type ReadExpr struct {
	Name  Symbol
	Idx   []Expr
	Typ   Type
	At    SrcInfo
}

func (*ReadExpr) isExpr()         {}
func (e *ReadExpr) ExprType() Type { return e.Typ }
func (e *ReadExpr) Src() SrcInfo   { return e.At }

// ConstVal is the closed set of literal value shapes a ConstExpr may
// carry.
type ConstVal struct {
	IsBool bool
	Bool   bool
	IsInt  bool
	Int    int64
	IsReal bool
	Real   float64
}

type ConstExpr struct {
	Val ConstVal
	Typ Type
	At  SrcInfo
}

func (*ConstExpr) isExpr()         {}
func (e *ConstExpr) ExprType() Type { return e.Typ }
func (e *ConstExpr) Src() SrcInfo   { return e.At }

type USubExpr struct {
	Arg Expr
	Typ Type
	At  SrcInfo
}

func (*USubExpr) isExpr()         {}
func (e *USubExpr) ExprType() Type { return e.Typ }
func (e *USubExpr) Src() SrcInfo   { return e.At }

type BinOpExpr struct {
	Op       Operator
	Lhs, Rhs Expr
	Typ      Type
	At       SrcInfo
}

// NewBinOpExpr validates op before construction, matching the way
// every other node funnels validation through its constructor rather
// than trusting the caller.
func NewBinOpExpr(op Operator, lhs, rhs Expr, typ Type, src SrcInfo) (*BinOpExpr, error) {
	if err := ValidateOperator(op); err != nil {
		return nil, err
	}
	return &BinOpExpr{Op: op, Lhs: lhs, Rhs: rhs, Typ: typ, At: src}, nil
}

func (*BinOpExpr) isExpr()         {}
func (e *BinOpExpr) ExprType() Type { return e.Typ }
func (e *BinOpExpr) Src() SrcInfo   { return e.At }

// BuiltInExpr calls an extern collaborator-provided builtin (e.g.
// sin, relu) with a fixed argument list.
type BuiltInExpr struct {
	Fn  Builtin
	Args []Expr
	Typ  Type
	At   SrcInfo
}

func (*BuiltInExpr) isExpr()         {}
func (e *BuiltInExpr) ExprType() Type { return e.Typ }
func (e *BuiltInExpr) Src() SrcInfo   { return e.At }

// WindowExpr takes a window (view) of Name according to Idx.
type WindowExpr struct {
	Name Symbol
	Idx  []WAccess
	Typ  Type
	At   SrcInfo
}

func (*WindowExpr) isExpr()         {}
func (e *WindowExpr) ExprType() Type { return e.Typ }
func (e *WindowExpr) Src() SrcInfo   { return e.At }

// StrideExpr reads the byte/element stride of dimension Dim of Name.
type StrideExpr struct {
	Name Symbol
	Dim  int
	Typ  Type
	At   SrcInfo
}

func (*StrideExpr) isExpr()         {}
func (e *StrideExpr) ExprType() Type { return e.Typ }
func (e *StrideExpr) Src() SrcInfo   { return e.At }

// ReadConfigExpr reads a single field out of an extern Config.
type ReadConfigExpr struct {
	Config Config
	Field  string
	Typ    Type
	At     SrcInfo
}

func (*ReadConfigExpr) isExpr()         {}
func (e *ReadConfigExpr) ExprType() Type { return e.Typ }
func (e *ReadConfigExpr) Src() SrcInfo   { return e.At }

// --------------------------------------------------------------------
// Statements
// --------------------------------------------------------------------

// Stmt is the closed sum of effectful IR nodes making up a procedure
// body.
type Stmt interface {
	isStmt()
	Src() SrcInfo
}

type AssignStmt struct {
	Name Symbol
	Typ  Type
	Cast Type // optional; set by an upstream precision pass when the stored basetype differs from Rhs's
	Idx  []Expr
	Rhs  Expr
	At   SrcInfo
}

func (*AssignStmt) isStmt()     {}
func (s *AssignStmt) Src() SrcInfo { return s.At }

type ReduceStmt struct {
	Name Symbol
	Typ  Type
	Cast Type
	Idx  []Expr
	Rhs  Expr
	At   SrcInfo
}

func (*ReduceStmt) isStmt()     {}
func (s *ReduceStmt) Src() SrcInfo { return s.At }

type WriteConfigStmt struct {
	Config Config
	Field  string
	Rhs    Expr
	At     SrcInfo
}

func (*WriteConfigStmt) isStmt()     {}
func (s *WriteConfigStmt) Src() SrcInfo { return s.At }

type PassStmt struct {
	At SrcInfo
}

func (*PassStmt) isStmt()     {}
func (s *PassStmt) Src() SrcInfo { return s.At }

// IfStmt's Body and Orelse are each pushed/popped against the same
// scope instance by binder passes; see FreeVars for why this is a
// single scope spanning both branches rather than two.
type IfStmt struct {
	Cond   Expr
	Body   []Stmt
	Orelse []Stmt
	At     SrcInfo
}

func (*IfStmt) isStmt()     {}
func (s *IfStmt) Src() SrcInfo { return s.At }

// SeqStmt is a bounded for-loop: `for Iter in seq(0, Hi): Body`.
type SeqStmt struct {
	Iter Symbol
	Hi   Expr
	Body []Stmt
	At   SrcInfo
}

func (*SeqStmt) isStmt()     {}
func (s *SeqStmt) Src() SrcInfo { return s.At }

type AllocStmt struct {
	Name Symbol
	Typ  Type
	Mem  Memory
	At   SrcInfo
}

func (*AllocStmt) isStmt()     {}
func (s *AllocStmt) Src() SrcInfo { return s.At }

type FreeStmt struct {
	Name Symbol
	Typ  Type
	Mem  Memory
	At   SrcInfo
}

func (*FreeStmt) isStmt()     {}
func (s *FreeStmt) Src() SrcInfo { return s.At }

type CallStmt struct {
	Proc *Proc
	Args []Expr
	At   SrcInfo
}

func (*CallStmt) isStmt()     {}
func (s *CallStmt) Src() SrcInfo { return s.At }

// WindowStmt binds Name to a window taken over Rhs, so later reads of
// Name resolve through the window rather than the original buffer.
type WindowStmt struct {
	Name Symbol
	Rhs  *WindowExpr
	At   SrcInfo
}

func (*WindowStmt) isStmt()     {}
func (s *WindowStmt) Src() SrcInfo { return s.At }

// --------------------------------------------------------------------
// Procedures
// --------------------------------------------------------------------

// FnArg is one formal parameter of a Proc.
type FnArg struct {
	Name Symbol
	Typ  Type
	Mem  Memory
	At   SrcInfo
}

// Proc is a complete, typed procedure: a name, its formal arguments,
// any preconditions established by the front-end, and a body.
// Instr, when non-nil, is a hand-written instruction string the
// emitter substitutes verbatim instead of compiling Body (used for
// hardware intrinsics the collaborator layer can't express as loop
// nests).
type Proc struct {
	Name   string
	Args   []*FnArg
	Preds  []Expr
	Body   []Stmt
	Instr  *string
	At     SrcInfo
}

type procFields struct {
	Name  *string
	Args  []*FnArg
	Preds []Expr
	Body  []Stmt
	Instr *string
}

// Update returns a copy of p with any non-zero field in patch
// applied; the ADT's generic update(...) builder, Go-shaped.
func (p *Proc) Update(patch procFields) *Proc {
	cp := *p
	if patch.Name != nil {
		cp.Name = *patch.Name
	}
	if patch.Args != nil {
		cp.Args = patch.Args
	}
	if patch.Preds != nil {
		cp.Preds = patch.Preds
	}
	if patch.Body != nil {
		cp.Body = patch.Body
	}
	if patch.Instr != nil {
		cp.Instr = patch.Instr
	}
	return &cp
}

// --------------------------------------------------------------------
// Effects
// --------------------------------------------------------------------

// EffExpr is the closed sum of expressions appearing inside an
// Effect's read/write/reduce sets and predicates. It mirrors Expr but
// lives in its own, simpler grammar: effect expressions never
// allocate, call procedures, or touch windows directly, so they don't
// need Expr's full generality.
type EffExpr interface {
	isEffExpr()
	Src() SrcInfo
}

type VarEffExpr struct {
	Name Symbol
	Typ  Type
	At   SrcInfo
}

func (*VarEffExpr) isEffExpr()    {}
func (e *VarEffExpr) Src() SrcInfo { return e.At }

type NotEffExpr struct {
	Arg EffExpr
	At  SrcInfo
}

func (*NotEffExpr) isEffExpr()    {}
func (e *NotEffExpr) Src() SrcInfo { return e.At }

type ConstEffExpr struct {
	Val ConstVal
	Typ Type
	At  SrcInfo
}

func (*ConstEffExpr) isEffExpr()    {}
func (e *ConstEffExpr) Src() SrcInfo { return e.At }

type BinOpEffExpr struct {
	Op       Operator
	Lhs, Rhs EffExpr
	Typ      Type
	At       SrcInfo
}

func (*BinOpEffExpr) isEffExpr()    {}
func (e *BinOpEffExpr) Src() SrcInfo { return e.At }

// StrideEffExpr names the stride of dimension Dim of buffer Name,
// mirroring StrideExpr but within the effect grammar.
type StrideEffExpr struct {
	Name Symbol
	Dim  int
	At   SrcInfo
}

func (*StrideEffExpr) isEffExpr()    {}
func (e *StrideEffExpr) Src() SrcInfo { return e.At }

// SelectEffExpr is `Cond ? Tcase : Fcase`, used to express the
// conditional footprint of an If's combined read/write set.
type SelectEffExpr struct {
	Cond         EffExpr
	Tcase, Fcase EffExpr
	Typ          Type
	At           SrcInfo
}

func (*SelectEffExpr) isEffExpr()    {}
func (e *SelectEffExpr) Src() SrcInfo { return e.At }

// ConfigFieldEffExpr reads a config field within an effect expression.
type ConfigFieldEffExpr struct {
	Config Config
	Field  string
	Typ    Type
	At     SrcInfo
}

func (*ConfigFieldEffExpr) isEffExpr()    {}
func (e *ConfigFieldEffExpr) Src() SrcInfo { return e.At }

// EffSet names one buffer's footprint: the symbolic index expression
// per dimension (Loc), a guarding predicate (Pred, nil means
// unconditional), and the set of bound names (e.g. loop iteration
// variables) the expressions in Loc/Pred may reference.
type EffSet struct {
	Buffer Symbol
	Loc    []EffExpr
	Pred   EffExpr
	Names  []Symbol
	At     SrcInfo
}

// ConfigEff records a read or write of one config field, analogous to
// EffSet but for the config namespace instead of buffers.
type ConfigEff struct {
	Config Config
	Field  string
	Value  EffExpr
	Pred   EffExpr
	At     SrcInfo
}

// Effect is the summary attached to a Stmt: what it reads, writes, and
// reduces into (by buffer footprint), and what config fields it reads
// or writes.
type Effect struct {
	Reads        []*EffSet
	Writes       []*EffSet
	Reduces      []*EffSet
	ConfigReads  []*ConfigEff
	ConfigWrites []*ConfigEff
	At           SrcInfo
}

func NewEffect(src SrcInfo) *Effect {
	return &Effect{At: src}
}

type effectFields struct {
	Reads        []*EffSet
	Writes       []*EffSet
	Reduces      []*EffSet
	ConfigReads  []*ConfigEff
	ConfigWrites []*ConfigEff
}

func (e *Effect) Update(patch effectFields) *Effect {
	cp := *e
	if patch.Reads != nil {
		cp.Reads = patch.Reads
	}
	if patch.Writes != nil {
		cp.Writes = patch.Writes
	}
	if patch.Reduces != nil {
		cp.Reduces = patch.Reduces
	}
	if patch.ConfigReads != nil {
		cp.ConfigReads = patch.ConfigReads
	}
	if patch.ConfigWrites != nil {
		cp.ConfigWrites = patch.ConfigWrites
	}
	return &cp
}
