package loopir

// This file models the extern collaborators the compiler depends on
// but does not implement itself: memory classes, configuration
// objects, builtins, and the three scheduling-facing analysis passes.
// Grounded on the original's Memory/Config/Builtin abstract base
// classes (original_source/src/exo/memory.py, original_source/src/exo/configs.py,
// original_source/src/exo/builtins.py) and on the dependency-injection
// shape of the teacher's own collaborator interfaces in config.go.

// Memory describes a hardware memory space a buffer can be allocated
// into: DRAM, a scratchpad, a register file, and so on. The compiler
// calls into a Memory to emit the C fragments that allocate, free,
// read, reduce-into, or window a buffer living in that space; it never
// assumes anything about the space's layout beyond what Memory tells
// it.
type Memory interface {
	Name() string
	Global() string
	CanRead() bool
	Alloc(ctype, name string, shape []string, srcInfo SrcInfo) (string, error)
	Free(ctype, name string, shape []string, srcInfo SrcInfo) (string, error)
	Window(ctype, baseptr, indices string, shape []string, srcInfo SrcInfo) (string, error)
	// Write and Reduce each return the full C statement lowering a
	// store/accumulate into lhs: the default (DRAM) just prints
	// "lhs = rhs;" / "lhs += rhs;", but a memory class modeling e.g. a
	// register file or an accelerator queue can lower these to a
	// vendor intrinsic instead.
	Write(lhs, rhs string) string
	Reduce(lhs, rhs string) string
}

// Config is an extern, named bag of typed fields a procedure can read
// and write at a global scope when AllowWrite reports true, compiled
// down to a plain C struct; reading or writing a config whose
// AllowWrite is false is a KindConfig error.
type Config interface {
	Name() string
	AllowWrite() bool
	Lookup(field string) (Type, error)
	CStructDef() string
}

// Builtin models an external function the emitter knows how to lower
// directly to a C expression or statement, bypassing normal call
// lowering (sin, relu, select, and similar primitives).
type Builtin interface {
	Name() string
	Global() string
	Typecheck(args []Expr) (Type, error)
	Compile(w CodeWriter, args []string) string
}

// CodeWriter is the minimal surface a Builtin needs from the emitter
// to contribute auxiliary top-level declarations (e.g. a helper
// function it relies on) without depending on the emitter's concrete
// type.
type CodeWriter interface {
	EmitGlobal(decl string)
}

// PrecisionAnalysis, WindowAnalysis and MemoryAnalysis are the three
// scheduling-facing passes that run over a Proc before it reaches this
// package: they resolve precision/shape/placement decisions a
// higher-level scheduling language would otherwise leave ambiguous.
// This package only needs their signatures to type the handoff point;
// the passes themselves are out of scope.
type (
	PrecisionAnalysis func(*Proc) (*Proc, error)
	WindowAnalysis    func(*Proc) (*Proc, error)
	MemoryAnalysis    func(*Proc) (*Proc, error)
)

// LiftToEffExpr converts a value-level Expr into the simpler EffExpr
// grammar used inside footprint sets, rejecting nodes with no effect
// counterpart (allocating/calling/windowing expressions have no
// footprint-level meaning by themselves).
func LiftToEffExpr(e Expr) (EffExpr, error) {
	switch n := e.(type) {
	case *ReadExpr:
		if len(n.Idx) != 0 {
			return nil, &CompileError{Kind: KindConstruction, Message: "cannot lift an indexed read directly to an effect variable; lower index expressions individually", Src: n.At}
		}
		return &VarEffExpr{Name: n.Name, Typ: n.Typ, At: n.At}, nil
	case *ConstExpr:
		return &ConstEffExpr{Val: n.Val, Typ: n.Typ, At: n.At}, nil
	case *USubExpr:
		// Per spec, USub x lifts to 0 - x rather than a dedicated
		// negation node, so the effect grammar doesn't need its own
		// unary operator.
		arg, err := LiftToEffExpr(n.Arg)
		if err != nil {
			return nil, err
		}
		zero := ConstVal{IsInt: true, Int: 0}
		if IsRealScalar(n.Typ) {
			zero = ConstVal{IsReal: true, Real: 0}
		}
		return &BinOpEffExpr{
			Op:  OpSub,
			Lhs: &ConstEffExpr{Val: zero, Typ: n.Typ, At: n.At},
			Rhs: arg,
			Typ: n.Typ,
			At:  n.At,
		}, nil
	case *BinOpExpr:
		lhs, err := LiftToEffExpr(n.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := LiftToEffExpr(n.Rhs)
		if err != nil {
			return nil, err
		}
		return &BinOpEffExpr{Op: n.Op, Lhs: lhs, Rhs: rhs, Typ: n.Typ, At: n.At}, nil
	case *StrideExpr:
		return &StrideEffExpr{Name: n.Name, Dim: n.Dim, At: n.At}, nil
	case *ReadConfigExpr:
		return &ConfigFieldEffExpr{Config: n.Config, Field: n.Field, Typ: n.Typ, At: n.At}, nil
	default:
		return nil, &CompileError{Kind: KindConstruction, Message: "expression has no effect-level representation", Src: e.Src()}
	}
}
