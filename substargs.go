package loopir

// SubstArgs replaces a fixed set of symbols with caller-supplied
// expressions, the primitive call-inlining rewrite builds on: lower a
// CallStmt's actual arguments into the callee's formal-argument
// symbols before splicing the callee body into the caller.
//
// Ported from the original's SubstArgs class (original_source/src/exo/LoopIR.py
// lines 1162-1261). Unlike AlphaRename, this substitution is
// unconditional and not scoped: the original only ever calls it with a
// map restricted to a callee's own formal arguments, which by
// construction cannot be shadowed within the callee's own body (a
// callee cannot re-bind its own parameter name), so no push/pop scope
// stack is needed here.
type SubstArgs struct {
	BaseRewrite
	env map[int64]Expr
}

// NewSubstArgs builds a substitution from binds (formal symbol) to
// vals (actual expression), pairwise by index.
func NewSubstArgs(binds []Symbol, vals []Expr) *SubstArgs {
	if len(binds) != len(vals) {
		panic("SubstArgs: binds and vals must be the same length")
	}
	s := &SubstArgs{env: make(map[int64]Expr, len(binds))}
	for i, b := range binds {
		s.env[symID(b)] = vals[i]
	}
	s.Self = s
	return s
}

// Stmts applies the substitution to stmts and returns the result.
func (s *SubstArgs) Stmts(stmts []Stmt) []Stmt {
	out := s.MapStmts(stmts)
	if out == nil {
		return stmts
	}
	return out
}

// Expr applies the substitution to a single expression.
func (s *SubstArgs) Expr(e Expr) Expr {
	if ne := s.MapExpr(e); ne != nil {
		return ne
	}
	return e
}

// renameTarget reports the symbol a bound name should be renamed to,
// valid only when the binding for sym is itself a zero-index Read
// (per §4.F.3: an indexed Read, a WindowExpr, a StrideExpr, an
// Assign/Reduce name, and a WindowType's src_buf are all *renamed*
// through a bound Read, never replaced by an arbitrary expression).
func (s *SubstArgs) renameTarget(sym Symbol) (Symbol, bool) {
	val, ok := s.env[symID(sym)]
	if !ok {
		return Symbol{}, false
	}
	r, ok := val.(*ReadExpr)
	if !ok || len(r.Idx) != 0 {
		return Symbol{}, false
	}
	return r.Name, true
}

func (s *SubstArgs) MapExpr(e Expr) Expr {
	switch n := e.(type) {
	case *ReadExpr:
		if val, ok := s.env[symID(n.Name)]; ok {
			if len(n.Idx) == 0 {
				return val
			}
			if tgt, ok := s.renameTarget(n.Name); ok {
				idx := s.MapExprs(n.Idx)
				typ := s.MapType(n.Typ)
				cp := *n
				cp.Name = tgt
				if idx != nil {
					cp.Idx = idx
				}
				if typ != nil {
					cp.Typ = typ
				}
				return &cp
			}
		}
		return s.BaseRewrite.MapExpr(e)

	case *WindowExpr:
		renamed := false
		name := n.Name
		if tgt, ok := s.renameTarget(n.Name); ok {
			name = tgt
			renamed = true
		}
		idxChanged := false
		idx := make([]WAccess, len(n.Idx))
		for i, w := range n.Idx {
			nw := s.MapWAccess(w)
			if nw == nil {
				idx[i] = w
				continue
			}
			idxChanged = true
			idx[i] = nw
		}
		typ := s.MapType(n.Typ)
		if !renamed && !idxChanged && typ == nil {
			return nil
		}
		cp := *n
		cp.Name = name
		if idxChanged {
			cp.Idx = idx
		}
		if typ != nil {
			cp.Typ = typ
		}
		return &cp

	case *StrideExpr:
		if tgt, ok := s.renameTarget(n.Name); ok {
			cp := *n
			cp.Name = tgt
			if typ := s.MapType(n.Typ); typ != nil {
				cp.Typ = typ
			}
			return &cp
		}
		return s.BaseRewrite.MapExpr(e)

	default:
		return s.BaseRewrite.MapExpr(e)
	}
}

// MapStmt renames an Assign/Reduce's own Name when it is bound, in
// addition to the default descent into Idx/Rhs/Typ.
func (s *SubstArgs) MapStmt(st Stmt) []Stmt {
	switch n := st.(type) {
	case *AssignStmt:
		tgt, ok := s.renameTarget(n.Name)
		if !ok {
			return s.BaseRewrite.MapStmt(st)
		}
		idx := s.MapExprs(n.Idx)
		rhs := s.MapExpr(n.Rhs)
		typ := s.MapType(n.Typ)
		cp := *n
		cp.Name = tgt
		if idx != nil {
			cp.Idx = idx
		}
		if rhs != nil {
			cp.Rhs = rhs
		}
		if typ != nil {
			cp.Typ = typ
		}
		return []Stmt{&cp}

	case *ReduceStmt:
		tgt, ok := s.renameTarget(n.Name)
		if !ok {
			return s.BaseRewrite.MapStmt(st)
		}
		idx := s.MapExprs(n.Idx)
		rhs := s.MapExpr(n.Rhs)
		typ := s.MapType(n.Typ)
		cp := *n
		cp.Name = tgt
		if idx != nil {
			cp.Idx = idx
		}
		if rhs != nil {
			cp.Rhs = rhs
		}
		if typ != nil {
			cp.Typ = typ
		}
		return []Stmt{&cp}

	default:
		return s.BaseRewrite.MapStmt(st)
	}
}

// MapType renames a WindowType's src_buf through the same bound-Read
// rule as every other reference site, falling back to the default
// descent for SrcType/AsTensor/Idx.
func (s *SubstArgs) MapType(t Type) Type {
	n, ok := t.(*WindowType)
	if !ok {
		return s.BaseRewrite.MapType(t)
	}
	srcBuf := n.SrcBuf
	renamed := false
	if tgt, ok := s.renameTarget(n.SrcBuf); ok {
		srcBuf = tgt
		renamed = true
	}
	base := s.BaseRewrite.MapType(t)
	if !renamed && base == nil {
		return nil
	}
	cp := *n
	cp.SrcBuf = srcBuf
	if base != nil {
		bw := base.(*WindowType)
		cp.SrcType = bw.SrcType
		cp.AsTensor = bw.AsTensor
		cp.Idx = bw.Idx
	}
	return &cp
}
