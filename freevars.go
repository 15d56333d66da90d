package loopir

// FreeVars computes the set of symbols referenced but not bound within
// a statement list or expression: a name bound by a Seq-loop iterator,
// an Alloc, a WindowStmt, or (via Proc) a formal argument is never
// added to the accumulated set while the walk is inside its scope.
//
// Ported from the original's FreeVars class (original_source/src/exo/LoopIR.py
// lines 971-1060). Notably, the original pushes a single new scope
// around an If's Body *and* Orelse together rather than one scope per
// branch, so a name bound while walking Body is still treated as bound
// while Orelse is walked. This implementation preserves that: see the
// single push/pop pair bracketing both n.Body and n.Orelse in DoStmt
// below.
type FreeVars struct {
	BaseFold
	free  map[int64]Symbol
	bound []map[int64]bool
}

// NewFreeVars constructs a fresh collector. Call Stmts/Expr/Proc to
// run it, then Result to read off the symbols found.
func NewFreeVars() *FreeVars {
	f := &FreeVars{free: map[int64]Symbol{}, bound: []map[int64]bool{{}}}
	f.Self = f
	return f
}

func (f *FreeVars) push() { f.bound = append(f.bound, map[int64]bool{}) }
func (f *FreeVars) pop()  { f.bound = f.bound[:len(f.bound)-1] }

func (f *FreeVars) bind(s Symbol) {
	f.bound[len(f.bound)-1][symID(s)] = true
}

func (f *FreeVars) isBound(s Symbol) bool {
	for _, scope := range f.bound {
		if scope[symID(s)] {
			return true
		}
	}
	return false
}

func (f *FreeVars) use(s Symbol) {
	if !f.isBound(s) {
		f.free[symID(s)] = s
	}
}

// symID exposes Symbol's private id field for use as a map key,
// matching the identity-by-id semantics Symbol.Equal already uses.
func symID(s Symbol) int64 { return s.id }

// Result returns the accumulated free symbols.
func (f *FreeVars) Result() []Symbol {
	out := make([]Symbol, 0, len(f.free))
	for _, s := range f.free {
		out = append(out, s)
	}
	return out
}

// Stmts runs the collector over a statement list.
func (f *FreeVars) Stmts(stmts []Stmt) *FreeVars {
	f.DoStmts(stmts)
	return f
}

// Expr runs the collector over a single expression.
func (f *FreeVars) Expr(e Expr) *FreeVars {
	f.DoExpr(e)
	return f
}

// Proc runs the collector over an entire procedure, binding its
// formal arguments first.
func (f *FreeVars) Proc(p *Proc) *FreeVars {
	f.push()
	for _, a := range p.Args {
		f.bind(a.Name)
	}
	f.DoProc(p)
	f.pop()
	return f
}

func (f *FreeVars) DoStmt(s Stmt) {
	switch n := s.(type) {
	case *AssignStmt:
		f.use(n.Name)
		f.DoExprs(n.Idx)
		f.DoExpr(n.Rhs)
		f.DoType(n.Typ)
	case *ReduceStmt:
		f.use(n.Name)
		f.DoExprs(n.Idx)
		f.DoExpr(n.Rhs)
		f.DoType(n.Typ)
	case *AllocStmt:
		f.BaseFold.DoStmt(s)
		f.bind(n.Name)
	case *SeqStmt:
		f.DoExpr(n.Hi)
		f.push()
		f.bind(n.Iter)
		f.DoStmts(n.Body)
		f.pop()
	case *IfStmt:
		f.DoExpr(n.Cond)
		f.push()
		f.DoStmts(n.Body)
		f.DoStmts(n.Orelse)
		f.pop()
	case *WindowStmt:
		f.BaseFold.DoStmt(s)
		f.bind(n.Name)
	default:
		f.BaseFold.DoStmt(s)
	}
}

func (f *FreeVars) DoExpr(e Expr) {
	switch n := e.(type) {
	case *ReadExpr:
		f.use(n.Name)
		f.DoExprs(n.Idx)
		f.DoType(n.Typ)
	case *WindowExpr:
		f.use(n.Name)
		for _, w := range n.Idx {
			f.DoWAccess(w)
		}
		f.DoType(n.Typ)
	case *StrideExpr:
		f.use(n.Name)
		f.DoType(n.Typ)
	default:
		f.BaseFold.DoExpr(e)
	}
}

// DoType treats a WindowType's src_buf as a use, matching the
// original's FreeVars handling of WindowType alongside ReadExpr,
// WindowExpr, and StrideExpr (LoopIR.py's FreeVars visits the type of
// every node it touches, and a WindowType carries its own buffer
// reference).
func (f *FreeVars) DoType(t Type) {
	if n, ok := t.(*WindowType); ok {
		f.use(n.SrcBuf)
	}
	f.BaseFold.DoType(t)
}
