package loopir

// Do is the visit-only counterpart to Rewrite: a structural fold that
// never rebuilds the tree, used by analyses that only need to
// accumulate state while walking it (FreeVars is built on it; the
// call-graph and memory/builtin/config discovery in callgraph.go use
// their own direct walks).
// Ported from the original's LoopIR_Do (original_source/src/exo/LoopIR.py
// lines 864-969), using the same "virtual self" embedding pattern as
// BaseRewrite so a concrete fold's overrides fire during default
// descent.
type Folder interface {
	DoProc(*Proc)
	DoFnArg(*FnArg)
	DoStmts([]Stmt)
	DoStmt(Stmt)
	DoExprs([]Expr)
	DoExpr(Expr)
	DoWAccess(WAccess)
	DoType(Type)
}

type BaseFold struct {
	Self Folder
}

func (b *BaseFold) DoProc(p *Proc) {
	for _, a := range p.Args {
		b.Self.DoFnArg(a)
	}
	b.Self.DoExprs(p.Preds)
	b.Self.DoStmts(p.Body)
}

func (b *BaseFold) DoFnArg(a *FnArg) {
	b.Self.DoType(a.Typ)
}

func (b *BaseFold) DoStmts(stmts []Stmt) {
	for _, s := range stmts {
		b.Self.DoStmt(s)
	}
}

func (b *BaseFold) DoStmt(s Stmt) {
	switch n := s.(type) {
	case *AssignStmt:
		b.Self.DoExprs(n.Idx)
		b.Self.DoExpr(n.Rhs)
		b.Self.DoType(n.Typ)
	case *ReduceStmt:
		b.Self.DoExprs(n.Idx)
		b.Self.DoExpr(n.Rhs)
		b.Self.DoType(n.Typ)
	case *WriteConfigStmt:
		b.Self.DoExpr(n.Rhs)
	case *PassStmt:
	case *IfStmt:
		b.Self.DoExpr(n.Cond)
		b.Self.DoStmts(n.Body)
		b.Self.DoStmts(n.Orelse)
	case *SeqStmt:
		b.Self.DoExpr(n.Hi)
		b.Self.DoStmts(n.Body)
	case *AllocStmt:
		b.Self.DoType(n.Typ)
	case *FreeStmt:
		b.Self.DoType(n.Typ)
	case *CallStmt:
		b.Self.DoExprs(n.Args)
	case *WindowStmt:
		b.Self.DoExpr(n.Rhs)
	default:
		badNodeKind("BaseFold.DoStmt", s)
	}
}

func (b *BaseFold) DoExprs(exprs []Expr) {
	for _, e := range exprs {
		b.Self.DoExpr(e)
	}
}

func (b *BaseFold) DoExpr(e Expr) {
	switch n := e.(type) {
	case *ReadExpr:
		b.Self.DoExprs(n.Idx)
		b.Self.DoType(n.Typ)
	case *ConstExpr:
		b.Self.DoType(n.Typ)
	case *USubExpr:
		b.Self.DoExpr(n.Arg)
		b.Self.DoType(n.Typ)
	case *BinOpExpr:
		b.Self.DoExpr(n.Lhs)
		b.Self.DoExpr(n.Rhs)
		b.Self.DoType(n.Typ)
	case *BuiltInExpr:
		b.Self.DoExprs(n.Args)
		b.Self.DoType(n.Typ)
	case *WindowExpr:
		for _, w := range n.Idx {
			b.Self.DoWAccess(w)
		}
		b.Self.DoType(n.Typ)
	case *StrideExpr:
		b.Self.DoType(n.Typ)
	case *ReadConfigExpr:
		b.Self.DoType(n.Typ)
	default:
		badNodeKind("BaseFold.DoExpr", e)
	}
}

func (b *BaseFold) DoWAccess(w WAccess) {
	switch n := w.(type) {
	case *Interval:
		b.Self.DoExpr(n.Lo)
		b.Self.DoExpr(n.Hi)
	case *Point:
		b.Self.DoExpr(n.Pt)
	default:
		badNodeKind("BaseFold.DoWAccess", w)
	}
}

func (b *BaseFold) DoType(t Type) {
	switch n := t.(type) {
	case *TensorType:
		b.Self.DoExprs(n.Hi)
		b.Self.DoType(n.Elem)
	case *WindowType:
		b.Self.DoType(n.SrcType)
		b.Self.DoType(n.AsTensor)
		for _, w := range n.Idx {
			b.Self.DoWAccess(w)
		}
	default:
	}
}
