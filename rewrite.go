package loopir

// Rewrite is the uniform structural-map traversal every transformation
// pass builds on, ported from the original's LoopIR_Rewrite
// (original_source/src/exo/LoopIR.py lines 552-862). Its defining
// property: a MapX method that returns nil (for single-node slots) or
// leaves a slice unchanged signals "no change here," letting the
// default descent reuse the existing subtree instead of rebuilding it.
//
// Go has no "call the subclass override from within the base class"
// for free the way Python's super() does, so concrete passes embed
// BaseRewrite and set Self to themselves; BaseRewrite's default
// descent methods call through b.Self.MapX(...) rather than
// b.MapX(...), so an override on the concrete pass still fires during
// recursive descent. This is the "virtual self" pattern: it is the
// idiomatic Go substitute for the override-with-super()-fallback shape
// used throughout the original's pass hierarchy.
type Rewriter interface {
	MapProc(*Proc) *Proc
	MapFnArg(*FnArg) *FnArg
	MapStmts(stmts []Stmt) []Stmt
	MapStmt(s Stmt) []Stmt
	MapExprs(exprs []Expr) []Expr
	MapExpr(e Expr) Expr
	MapWAccess(w WAccess) WAccess
	MapType(t Type) Type
}

// BaseRewrite implements Rewriter with the default structural descent;
// every method is safe to call directly, and every method participates
// in recursive descent via Self so subclass overrides are honored.
type BaseRewrite struct {
	Self Rewriter
}

// isConstTrue reports whether e is the literal boolean constant true,
// the precondition MapProc drops from the rewritten procedure's Preds
// (and which the emitter would otherwise render as a no-op
// EXO_ASSUME(true)).
func isConstTrue(e Expr) bool {
	c, ok := e.(*ConstExpr)
	return ok && c.Val.IsBool && c.Val.Bool
}

func (b *BaseRewrite) MapProc(p *Proc) *Proc {
	var patch procFields
	changed := false

	args := make([]*FnArg, len(p.Args))
	argsChanged := false
	for i, a := range p.Args {
		na := b.Self.MapFnArg(a)
		if na == nil {
			na = a
		} else {
			argsChanged = true
		}
		args[i] = na
	}
	if argsChanged {
		patch.Args = args
		changed = true
	}

	preds := b.Self.MapExprs(p.Preds)
	base := preds
	if base == nil {
		base = p.Preds
	}
	filtered := make([]Expr, 0, len(base))
	for _, pr := range base {
		if isConstTrue(pr) {
			continue
		}
		filtered = append(filtered, pr)
	}
	if preds != nil || !sameExprSlice(filtered, p.Preds) {
		patch.Preds = filtered
		changed = true
	}

	body := b.Self.MapStmts(p.Body)
	if body != nil {
		patch.Body = body
		changed = true
	}

	if !changed {
		return p
	}
	return p.Update(patch)
}

func sameExprSlice(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (b *BaseRewrite) MapFnArg(a *FnArg) *FnArg {
	nt := b.Self.MapType(a.Typ)
	if nt == nil {
		return nil
	}
	cp := *a
	cp.Typ = nt
	return &cp
}

// MapStmts maps each statement via MapStmt (which may split one
// statement into several, or drop it by returning an empty slice) and
// returns nil if nothing changed, so callers can distinguish "no
// change" from "changed to an empty body."
func (b *BaseRewrite) MapStmts(stmts []Stmt) []Stmt {
	changed := false
	out := make([]Stmt, 0, len(stmts))
	for _, s := range stmts {
		mapped := b.Self.MapStmt(s)
		if mapped == nil {
			out = append(out, s)
			continue
		}
		changed = true
		out = append(out, mapped...)
	}
	if !changed {
		return nil
	}
	return out
}

// MapStmt performs the default structural descent for every Stmt
// variant, returning nil when nothing underneath changed. It returns a
// slice (rather than a single Stmt) so overriding passes can split a
// node into zero or more replacements.
func (b *BaseRewrite) MapStmt(s Stmt) []Stmt {
	switch n := s.(type) {
	case *AssignStmt:
		idx := b.Self.MapExprs(n.Idx)
		rhs := b.Self.MapExpr(n.Rhs)
		typ := b.Self.MapType(n.Typ)
		if idx == nil && rhs == nil && typ == nil {
			return nil
		}
		cp := *n
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
		idx := b.Self.MapExprs(n.Idx)
		rhs := b.Self.MapExpr(n.Rhs)
		typ := b.Self.MapType(n.Typ)
		if idx == nil && rhs == nil && typ == nil {
			return nil
		}
		cp := *n
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

	case *WriteConfigStmt:
		rhs := b.Self.MapExpr(n.Rhs)
		if rhs == nil {
			return nil
		}
		cp := *n
		cp.Rhs = rhs
		return []Stmt{&cp}

	case *PassStmt:
		return nil

	case *IfStmt:
		cond := b.Self.MapExpr(n.Cond)
		// Body and Orelse descend against the same scope in binder
		// passes (see FreeVars), but the rewrite itself treats them as
		// two independent statement lists.
		body := b.Self.MapStmts(n.Body)
		orelse := b.Self.MapStmts(n.Orelse)
		if cond == nil && body == nil && orelse == nil {
			return nil
		}
		cp := *n
		if cond != nil {
			cp.Cond = cond
		}
		if body != nil {
			cp.Body = body
		}
		if orelse != nil {
			cp.Orelse = orelse
		}
		return []Stmt{&cp}

	case *SeqStmt:
		hi := b.Self.MapExpr(n.Hi)
		body := b.Self.MapStmts(n.Body)
		if hi == nil && body == nil {
			return nil
		}
		cp := *n
		if hi != nil {
			cp.Hi = hi
		}
		if body != nil {
			cp.Body = body
		}
		return []Stmt{&cp}

	case *AllocStmt:
		typ := b.Self.MapType(n.Typ)
		if typ == nil {
			return nil
		}
		cp := *n
		cp.Typ = typ
		return []Stmt{&cp}

	case *FreeStmt:
		typ := b.Self.MapType(n.Typ)
		if typ == nil {
			return nil
		}
		cp := *n
		cp.Typ = typ
		return []Stmt{&cp}

	case *CallStmt:
		args := b.Self.MapExprs(n.Args)
		if args == nil {
			return nil
		}
		cp := *n
		cp.Args = args
		return []Stmt{&cp}

	case *WindowStmt:
		rhs := b.Self.MapExpr(n.Rhs)
		if rhs == nil {
			return nil
		}
		cp := *n
		cp.Rhs = rhs.(*WindowExpr)
		return []Stmt{&cp}

	default:
		badNodeKind("BaseRewrite.MapStmt", s)
		return nil
	}
}

func (b *BaseRewrite) MapExprs(exprs []Expr) []Expr {
	changed := false
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		ne := b.Self.MapExpr(e)
		if ne == nil {
			out[i] = e
			continue
		}
		changed = true
		out[i] = ne
	}
	if !changed {
		return nil
	}
	return out
}

func (b *BaseRewrite) MapExpr(e Expr) Expr {
	switch n := e.(type) {
	case *ReadExpr:
		idx := b.Self.MapExprs(n.Idx)
		typ := b.Self.MapType(n.Typ)
		if idx == nil && typ == nil {
			return nil
		}
		cp := *n
		if idx != nil {
			cp.Idx = idx
		}
		if typ != nil {
			cp.Typ = typ
		}
		return &cp

	case *ConstExpr:
		typ := b.Self.MapType(n.Typ)
		if typ == nil {
			return nil
		}
		cp := *n
		cp.Typ = typ
		return &cp

	case *USubExpr:
		arg := b.Self.MapExpr(n.Arg)
		typ := b.Self.MapType(n.Typ)
		if arg == nil && typ == nil {
			return nil
		}
		cp := *n
		if arg != nil {
			cp.Arg = arg
		}
		if typ != nil {
			cp.Typ = typ
		}
		return &cp

	case *BinOpExpr:
		lhs := b.Self.MapExpr(n.Lhs)
		rhs := b.Self.MapExpr(n.Rhs)
		typ := b.Self.MapType(n.Typ)
		if lhs == nil && rhs == nil && typ == nil {
			return nil
		}
		cp := *n
		if lhs != nil {
			cp.Lhs = lhs
		}
		if rhs != nil {
			cp.Rhs = rhs
		}
		if typ != nil {
			cp.Typ = typ
		}
		return &cp

	case *BuiltInExpr:
		args := b.Self.MapExprs(n.Args)
		typ := b.Self.MapType(n.Typ)
		if args == nil && typ == nil {
			return nil
		}
		cp := *n
		if args != nil {
			cp.Args = args
		}
		if typ != nil {
			cp.Typ = typ
		}
		return &cp

	case *WindowExpr:
		idxChanged := false
		idx := make([]WAccess, len(n.Idx))
		for i, w := range n.Idx {
			nw := b.Self.MapWAccess(w)
			if nw == nil {
				idx[i] = w
				continue
			}
			idxChanged = true
			idx[i] = nw
		}
		typ := b.Self.MapType(n.Typ)
		if !idxChanged && typ == nil {
			return nil
		}
		cp := *n
		if idxChanged {
			cp.Idx = idx
		}
		if typ != nil {
			cp.Typ = typ
		}
		return &cp

	case *StrideExpr:
		typ := b.Self.MapType(n.Typ)
		if typ == nil {
			return nil
		}
		cp := *n
		cp.Typ = typ
		return &cp

	case *ReadConfigExpr:
		typ := b.Self.MapType(n.Typ)
		if typ == nil {
			return nil
		}
		cp := *n
		cp.Typ = typ
		return &cp

	default:
		badNodeKind("BaseRewrite.MapExpr", e)
		return nil
	}
}

func (b *BaseRewrite) MapWAccess(w WAccess) WAccess {
	switch n := w.(type) {
	case *Interval:
		lo := b.Self.MapExpr(n.Lo)
		hi := b.Self.MapExpr(n.Hi)
		if lo == nil && hi == nil {
			return nil
		}
		cp := *n
		if lo != nil {
			cp.Lo = lo
		}
		if hi != nil {
			cp.Hi = hi
		}
		return &cp
	case *Point:
		pt := b.Self.MapExpr(n.Pt)
		if pt == nil {
			return nil
		}
		cp := *n
		cp.Pt = pt
		return &cp
	default:
		badNodeKind("BaseRewrite.MapWAccess", w)
		return nil
	}
}

// MapType's default descends into tensor/window element types; every
// terminal type is returned unchanged (nil), since they carry nothing
// to rewrite.
func (b *BaseRewrite) MapType(t Type) Type {
	switch n := t.(type) {
	case *TensorType:
		hiChanged := false
		hi := make([]Expr, len(n.Hi))
		for i, e := range n.Hi {
			ne := b.Self.MapExpr(e)
			if ne == nil {
				hi[i] = e
				continue
			}
			hiChanged = true
			hi[i] = ne
		}
		elem := b.Self.MapType(n.Elem)
		if !hiChanged && elem == nil {
			return nil
		}
		cp := *n
		if hiChanged {
			cp.Hi = hi
		}
		if elem != nil {
			cp.Elem = elem
		}
		return &cp
	case *WindowType:
		srcType := b.Self.MapType(n.SrcType)
		asTensor := b.Self.MapType(n.AsTensor)
		idxChanged := false
		idx := make([]WAccess, len(n.Idx))
		for i, w := range n.Idx {
			nw := b.Self.MapWAccess(w)
			if nw == nil {
				idx[i] = w
				continue
			}
			idxChanged = true
			idx[i] = nw
		}
		if srcType == nil && asTensor == nil && !idxChanged {
			return nil
		}
		cp := *n
		if srcType != nil {
			cp.SrcType = srcType
		}
		if asTensor != nil {
			cp.AsTensor = asTensor
		}
		if idxChanged {
			cp.Idx = idx
		}
		return &cp
	default:
		return nil
	}
}
