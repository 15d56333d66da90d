package loopir

// AlphaRename gives every binding site in a statement list a fresh
// Symbol and rewrites all references through a scoped substitution
// map, so the result is textually distinct from the input wherever it
// binds anything, while remaining semantically identical.
//
// Ported from the original's Alpha_Rename class (original_source/src/exo/LoopIR.py
// lines 1062-1160). Like FreeVars, an If's Body and Orelse share one
// pushed scope rather than two, matching the original's scope
// management: a rename introduced while walking Body is still in
// effect while Orelse is walked.
type AlphaRename struct {
	BaseRewrite
	scopes []map[int64]Symbol
}

func NewAlphaRename() *AlphaRename {
	a := &AlphaRename{scopes: []map[int64]Symbol{{}}}
	a.Self = a
	return a
}

func (a *AlphaRename) push() { a.scopes = append(a.scopes, map[int64]Symbol{}) }
func (a *AlphaRename) pop()  { a.scopes = a.scopes[:len(a.scopes)-1] }

func (a *AlphaRename) bindFresh(s Symbol) Symbol {
	fresh := s.Copy()
	a.scopes[len(a.scopes)-1][symID(s)] = fresh
	return fresh
}

func (a *AlphaRename) lookup(s Symbol) Symbol {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if r, ok := a.scopes[i][symID(s)]; ok {
			return r
		}
	}
	return s
}

// Stmts renames every binding site in stmts and returns the result;
// if nothing was bound, it returns stmts unchanged.
func (a *AlphaRename) Stmts(stmts []Stmt) []Stmt {
	out := a.MapStmts(stmts)
	if out == nil {
		return stmts
	}
	return out
}

// Proc renames every binding site within a procedure body, including
// its formal arguments, returning a new *Proc.
func (a *AlphaRename) Proc(p *Proc) *Proc {
	a.push()
	args := make([]*FnArg, len(p.Args))
	for i, arg := range p.Args {
		cp := *arg
		cp.Name = a.bindFresh(arg.Name)
		args[i] = &cp
	}
	np := a.MapProc(p)
	np = np.Update(procFields{Args: args})
	a.pop()
	return np
}

func (a *AlphaRename) MapStmt(s Stmt) []Stmt {
	switch n := s.(type) {
	case *AllocStmt:
		cp := *n
		cp.Typ = a.mapTypeOrSame(n.Typ)
		cp.Name = a.bindFresh(n.Name)
		return []Stmt{&cp}

	case *FreeStmt:
		cp := *n
		cp.Typ = a.mapTypeOrSame(n.Typ)
		cp.Name = a.lookup(n.Name)
		return []Stmt{&cp}

	case *SeqStmt:
		hi := a.MapExpr(n.Hi)
		if hi == nil {
			hi = n.Hi
		}
		a.push()
		iter := a.bindFresh(n.Iter)
		body := a.Stmts(n.Body)
		a.pop()
		cp := *n
		cp.Hi = hi
		cp.Iter = iter
		cp.Body = body
		return []Stmt{&cp}

	case *IfStmt:
		cond := a.MapExpr(n.Cond)
		if cond == nil {
			cond = n.Cond
		}
		a.push()
		body := a.Stmts(n.Body)
		orelse := a.Stmts(n.Orelse)
		a.pop()
		cp := *n
		cp.Cond = cond
		cp.Body = body
		cp.Orelse = orelse
		return []Stmt{&cp}

	case *AssignStmt:
		cp := *n
		if out := a.BaseRewrite.MapStmt(s); out != nil {
			cp = *out[0].(*AssignStmt)
		}
		cp.Name = a.lookup(n.Name)
		return []Stmt{&cp}

	case *ReduceStmt:
		cp := *n
		if out := a.BaseRewrite.MapStmt(s); out != nil {
			cp = *out[0].(*ReduceStmt)
		}
		cp.Name = a.lookup(n.Name)
		return []Stmt{&cp}

	case *WindowStmt:
		rhs := a.MapExpr(n.Rhs)
		if rhs == nil {
			rhs = n.Rhs
		}
		cp := *n
		cp.Rhs = rhs.(*WindowExpr)
		cp.Name = a.bindFresh(n.Name)
		return []Stmt{&cp}

	default:
		return a.BaseRewrite.MapStmt(s)
	}
}

func (a *AlphaRename) mapTypeOrSame(t Type) Type {
	if nt := a.MapType(t); nt != nil {
		return nt
	}
	return t
}

func (a *AlphaRename) MapExpr(e Expr) Expr {
	switch n := e.(type) {
	case *ReadExpr:
		cp := *n
		cp.Name = a.lookup(n.Name)
		if idx := a.MapExprs(n.Idx); idx != nil {
			cp.Idx = idx
		}
		if typ := a.MapType(n.Typ); typ != nil {
			cp.Typ = typ
		}
		return &cp
	case *WindowExpr:
		cp := *n
		cp.Name = a.lookup(n.Name)
		idxChanged := false
		idx := make([]WAccess, len(n.Idx))
		for i, w := range n.Idx {
			nw := a.MapWAccess(w)
			if nw == nil {
				idx[i] = w
				continue
			}
			idxChanged = true
			idx[i] = nw
		}
		if idxChanged {
			cp.Idx = idx
		}
		if typ := a.MapType(n.Typ); typ != nil {
			cp.Typ = typ
		}
		return &cp
	case *StrideExpr:
		cp := *n
		cp.Name = a.lookup(n.Name)
		return &cp
	default:
		return a.BaseRewrite.MapExpr(e)
	}
}

// MapType renames a WindowType's src_buf through the same scoped map
// as every other reference site, then falls back to the default
// descent (via the embedded BaseRewrite, whose virtual self still
// resolves back to this type's overrides) for SrcType/AsTensor/Idx.
func (a *AlphaRename) MapType(t Type) Type {
	n, ok := t.(*WindowType)
	if !ok {
		return a.BaseRewrite.MapType(t)
	}
	cp := *n
	cp.SrcBuf = a.lookup(n.SrcBuf)
	if base := a.BaseRewrite.MapType(t); base != nil {
		bw := base.(*WindowType)
		cp.SrcType = bw.SrcType
		cp.AsTensor = bw.AsTensor
		cp.Idx = bw.Idx
	}
	return &cp
}
