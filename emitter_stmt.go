package loopir

import (
	"fmt"
	"strings"
)

// emitStmts emits each statement in order; a CallStmt or WindowStmt
// may in principle be lowered by an earlier scheduling pass before
// reaching this package (see PrecisionAnalysis/WindowAnalysis in
// collab.go), but the emitter still knows how to render them directly
// so a procedure can be compiled standalone without that pass having
// run.
func (em *emitter) emitStmts(stmts []Stmt) error {
	for _, s := range stmts {
		if err := em.emitStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (em *emitter) emitStmt(s Stmt) error {
	switch n := s.(type) {
	case *AssignStmt:
		lhs := em.emitBufAccess(n.Name, n.Idx)
		rhs := em.emitCastedRhs(n.Typ, n.Cast, n.Rhs)
		mem := em.memOfSym(n.Name)
		em.out.Line(mem.Write(lhs, rhs))
		return nil

	case *ReduceStmt:
		lhs := em.emitBufAccess(n.Name, n.Idx)
		rhs := em.emitCastedRhs(n.Typ, n.Cast, n.Rhs)
		mem := em.memOfSym(n.Name)
		em.out.Line(mem.Reduce(lhs, rhs))
		return nil

	case *WriteConfigStmt:
		if !n.Config.AllowWrite() {
			return ConfigError(n.At, "config %q is not writable", n.Config.Name())
		}
		var rhs string
		if fieldTyp, err := n.Config.Lookup(n.Field); err == nil {
			rhs = em.emitCastedRhs(fieldTyp, nil, n.Rhs)
		} else {
			rhs = em.emitExpr(n.Rhs, 0)
		}
		em.out.Line(fmt.Sprintf("ctxt->%s.%s = %s;", n.Config.Name(), n.Field, rhs))
		return nil

	case *PassStmt:
		return nil

	case *IfStmt:
		cond := em.emitExpr(n.Cond, 0)
		em.out.Line(fmt.Sprintf("if (%s) {", cond))
		em.out.in()
		if err := em.emitStmts(n.Body); err != nil {
			return err
		}
		em.out.out()
		if len(n.Orelse) == 0 {
			em.out.Line("}")
			return nil
		}
		em.out.Line("} else {")
		em.out.in()
		if err := em.emitStmts(n.Orelse); err != nil {
			return err
		}
		em.out.out()
		em.out.Line("}")
		return nil

	case *SeqStmt:
		iter := em.cName(n.Iter)
		hi := em.emitExpr(n.Hi, 0)
		em.out.Line(fmt.Sprintf("for (int_fast32_t %s = 0; %s < %s; %s++) {", iter, iter, hi, iter))
		em.out.in()
		if err := em.emitStmts(n.Body); err != nil {
			return err
		}
		em.out.out()
		em.out.Line("}")
		return nil

	case *AllocStmt:
		mem := n.Mem
		if mem == nil {
			mem = defaultDRAM
		}
		em.setMem(n.Name, mem)
		if len(Shape(n.Typ)) == 0 {
			em.setKind(n.Name, bufScalar)
		} else {
			em.setKind(n.Name, bufPlain)
			em.setStrides(n.Name, defaultStrides(n.Typ))
		}
		decl, err := mem.Alloc(Ctype(Basetype(n.Typ)), em.cName(n.Name), shapeStrings(em, n.Typ), n.At)
		if err != nil {
			return err
		}
		em.out.Line(decl)
		return nil

	case *FreeStmt:
		mem := n.Mem
		if mem == nil {
			mem = defaultDRAM
		}
		decl, err := mem.Free(Ctype(Basetype(n.Typ)), em.cName(n.Name), shapeStrings(em, n.Typ), n.At)
		if err != nil {
			return err
		}
		em.out.Line(decl)
		return nil

	case *CallStmt:
		return em.emitCall(n)

	case *WindowStmt:
		rhs := em.emitWindowExpr(n.Rhs)
		key, _ := em.windowKeyOf(n.Rhs.Typ, false)
		em.setKind(n.Name, bufWindow)
		em.setStrides(n.Name, nil)
		em.out.Line(fmt.Sprintf("const %s %s = %s;", key.name(), em.cName(n.Name), rhs))
		return nil

	default:
		badNodeKind("emitter.emitStmt", s)
		return nil
	}
}

// emitCall lowers a Call statement: a normal callee becomes a direct C
// function call against its own (unprefixed) symbol -- the library
// name only qualifies the context struct and header guard, never the
// published function names -- a callee carrying an Instr template is
// expanded in place instead, per §4.H.
func (em *emitter) emitCall(n *CallStmt) error {
	if n.Proc.Instr != nil {
		em.out.Line(em.expandInstr(n))
		return nil
	}
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = em.emitCallArg(a)
	}
	callee := sanitizeLibName(n.Proc.Name)
	em.out.Line(fmt.Sprintf("%s(ctxt%s%s);", callee, argSep(args), joinArgs(args)))
	return nil
}

// emitCallArg renders one actual argument of a non-instruction call: a
// bare reference to a scalar-ref formal passes its address, a window
// or plain-buffer reference passes the variable itself (already a
// struct value or a pointer), and anything else is a plain expression.
func (em *emitter) emitCallArg(a Expr) string {
	if r, ok := a.(*ReadExpr); ok && len(r.Idx) == 0 {
		switch em.kindOf(r.Name) {
		case bufScalar:
			if em.byPointer[symID(r.Name)] {
				return "&" + em.cName(r.Name)
			}
			return em.cName(r.Name)
		case bufWindow, bufPlain:
			return em.cName(r.Name)
		}
	}
	return em.emitExpr(a, 0)
}

// expandInstr substitutes `{arg}` (the rendered argument), `{arg_data}`
// (a window argument's backing pointer), and `{arg_int}` (its leading
// stride) into the callee's instruction template, keyed by the
// callee's own formal argument names.
func (em *emitter) expandInstr(n *CallStmt) string {
	out := *n.Proc.Instr
	for i, formal := range n.Proc.Args {
		if i >= len(n.Args) {
			break
		}
		name := formal.Name.Name()
		actual := n.Args[i]
		rendered := em.emitCallArg(actual)
		out = strings.ReplaceAll(out, "{"+name+"}", rendered)
		if r, ok := actual.(*ReadExpr); ok && len(r.Idx) == 0 && em.kindOf(r.Name) == bufWindow {
			cname := em.cName(r.Name)
			out = strings.ReplaceAll(out, "{"+name+"_data}", cname+".data")
			out = strings.ReplaceAll(out, "{"+name+"_int}", cname+".strides[0]")
		}
	}
	return out
}

func argSep(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return ", "
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += ", "
		}
		out += a
	}
	return out
}

func shapeStrings(em *emitter, t Type) []string {
	shape := Shape(t)
	out := make([]string, len(shape))
	for i, e := range shape {
		out[i] = em.emitExpr(e, 0)
	}
	return out
}

// emitWindowExpr lowers a WindowExpr to a struct-literal expression:
// the data pointer is offset by each dimension's low index times that
// dimension's stride, and the stride tuple keeps only the dimensions
// that survive as Intervals (a Point access drops its dimension
// entirely from the resulting window), per §4.H "Address arithmetic,
// strides, and windows".
func (em *emitter) emitWindowExpr(w *WindowExpr) string {
	key, _ := em.windowKeyOf(w.Typ, false)
	name := em.registerWindowStruct(key)

	base := em.cName(w.Name)
	baseStrides := em.stridesOf(w.Name)
	baseIsWindow := em.kindOf(w.Name) == bufWindow

	strideOf := func(i int) string {
		if baseIsWindow {
			return fmt.Sprintf("%s.strides[%d]", base, i)
		}
		if baseStrides != nil && i < len(baseStrides) {
			return baseStrides[i]
		}
		return "1"
	}

	offsetTerms := make([]string, 0, len(w.Idx))
	strideTerms := make([]string, 0, len(w.Idx))
	for i, a := range w.Idx {
		stride := strideOf(i)
		switch acc := a.(type) {
		case *Interval:
			lo := em.emitExpr(acc.Lo, 60)
			if stride == "1" {
				offsetTerms = append(offsetTerms, lo)
			} else {
				offsetTerms = append(offsetTerms, fmt.Sprintf("(%s) * (%s)", lo, stride))
			}
			strideTerms = append(strideTerms, stride)
		case *Point:
			pt := em.emitExpr(acc.Pt, 60)
			if stride == "1" {
				offsetTerms = append(offsetTerms, pt)
			} else {
				offsetTerms = append(offsetTerms, fmt.Sprintf("(%s) * (%s)", pt, stride))
			}
		}
	}
	offset := "0"
	if len(offsetTerms) > 0 {
		offset = joinPlus(offsetTerms)
	}

	baseptr := base
	if baseIsWindow {
		baseptr = base + ".data"
	}
	mem := em.memOfSym(w.Name)
	ctype := Ctype(Basetype(w.Typ))
	dataExpr, err := mem.Window(ctype, baseptr, offset, shapeStrings(em, w.Typ), w.At)
	if err != nil {
		em.fail(err)
	}
	return fmt.Sprintf("(%s){ .data = %s, .strides = { %s } }", name, dataExpr, joinArgs(strideTerms))
}
