package loopir

import (
	"fmt"
	"strconv"
	"strings"
)

// opPrec gives each operator its C precedence tier, used to decide
// when a sub-expression needs parenthesizing. Ported from the
// original's op_prec table (original_source/src/exo/LoopIR_compiler.py):
// or=10, and=20, ==30, relational=40, +/- =50, */% =60; unary negation
// sits above every binary tier at 70.
var opPrec = map[Operator]int{
	OpOr:  10,
	OpAnd: 20,
	OpEq:  30,
	OpLt:  40, OpGt: 40, OpLe: 40, OpGe: 40,
	OpAdd: 50, OpSub: 50,
	OpMul: 60, OpDiv: 60, OpMod: 60,
}

const precUnary = 70
const precAtom = 100

func cOperator(op Operator) string {
	switch op {
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	default:
		return string(op)
	}
}

// emitExpr renders e as a C expression, wrapping it in parentheses
// only when its own precedence is lower than outerPrec demands -- the
// same outer_prec-threading design the teacher's expression emitter
// uses to avoid redundant parens.
func (em *emitter) emitExpr(e Expr, outerPrec int) string {
	switch n := e.(type) {
	case *ReadExpr:
		if mem := em.memOfSym(n.Name); mem != nil && !mem.CanRead() {
			em.fail(MemGenError(n.At, "cannot read %q: memory class %q does not support reads", n.Name.Name(), mem.Name()))
		}
		return em.emitBufAccess(n.Name, n.Idx)

	case *ConstExpr:
		return em.emitConst(n.Val, n.Typ)

	case *USubExpr:
		inner := em.emitExpr(n.Arg, precUnary)
		s := "-" + inner
		if precUnary < outerPrec {
			return "(" + s + ")"
		}
		return s

	case *BinOpExpr:
		prec := opPrec[n.Op]
		// Integer division on an index-like (non-numeric) result
		// needs floor semantics: a Size-typed operand is non-negative
		// by construction and gets a plain, if double-parenthesized,
		// C `/`; everything else routes through the exo_floor_div
		// helper. Modulo is not given the same treatment (mirroring
		// the original's comp_e, which only special-cases `/`): it
		// always lowers to a plain C `%` at its ordinary precedence.
		intDiv := n.Op == OpDiv && !IsRealScalar(Basetype(n.Typ))
		if intDiv {
			localPrec := 0
			lhs := em.emitExpr(n.Lhs, localPrec)
			rhs := em.emitExpr(n.Rhs, localPrec+1)
			if IsSize(n.Lhs.ExprType()) {
				return fmt.Sprintf("((%s) / (%s))", "("+lhs+")", rhs)
			}
			em.needHelper("exo_floor_div")
			return fmt.Sprintf("exo_floor_div(%s, %s)", lhs, rhs)
		}
		lhs := em.emitExpr(n.Lhs, prec)
		rhs := em.emitExpr(n.Rhs, prec+1)
		s := fmt.Sprintf("%s %s %s", lhs, cOperator(n.Op), rhs)
		if prec < outerPrec {
			return "(" + s + ")"
		}
		return s

	case *BuiltInExpr:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = em.emitExpr(a, 0)
		}
		return n.Fn.Compile(em.out, args)

	case *WindowExpr:
		return em.emitWindowExpr(n)

	case *StrideExpr:
		return em.emitStride(n.Name, n.Dim)

	case *ReadConfigExpr:
		if !n.Config.AllowWrite() {
			em.fail(ConfigError(n.At, "config %q is not readable", n.Config.Name()))
		}
		return fmt.Sprintf("ctxt->%s.%s", n.Config.Name(), n.Field)

	default:
		badNodeKind("emitter.emitExpr", e)
		return ""
	}
}

func (em *emitter) emitConst(v ConstVal, t Type) string {
	switch {
	case v.IsBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case v.IsInt:
		return strconv.FormatInt(v.Int, 10)
	case v.IsReal:
		s := strconv.FormatFloat(v.Real, 'g', -1, 64)
		if _, ok := Basetype(t).(*F32Type); ok {
			// A bare "3" plus "f" is not a valid C floating constant --
			// the literal needs a fractional part or exponent before
			// the suffix. FormatFloat never appends one for a whole
			// number, so force a decimal point in that case.
			if !strings.ContainsAny(s, ".eE") {
				s += ".0"
			}
			return s + "f"
		}
		return s
	default:
		panic("emitConst: empty ConstVal")
	}
}

// emitBufAccess renders a (possibly multi-dimensional) buffer access.
// A scalar reference dereferences its pointer (or prints bare for a
// by-value scalar); a plain array indexes directly (`name[offset]`); a
// window indexes through its data pointer (`name.data[offset]`), with
// per-dimension strides read from the struct's own `strides[i]` field
// rather than a statically-known table. Per §4.H, "an access
// `b[i0, i1, …]` expands to `(i0)*(s0) + (i1)*(s1) + …`": each index
// and stride is parenthesized when a stride other than 1 multiplies
// it, and a term whose stride is 1 is printed as the bare index.
func (em *emitter) emitBufAccess(name Symbol, idx []Expr) string {
	cname := em.cName(name)
	kind := em.kindOf(name)

	if len(idx) == 0 {
		if kind == bufScalar && em.byPointer[symID(name)] {
			return "*" + cname
		}
		return cname
	}

	offset := em.offsetOf(name, kind, idx)
	if kind == bufWindow {
		return fmt.Sprintf("%s.data[%s]", cname, offset)
	}
	return fmt.Sprintf("%s[%s]", cname, offset)
}

func (em *emitter) offsetOf(name Symbol, kind bufKind, idx []Expr) string {
	terms := make([]string, 0, len(idx))
	for i, ix := range idx {
		s := em.emitExpr(ix, 50)
		var stride string
		if kind == bufWindow {
			stride = fmt.Sprintf("%s.strides[%d]", em.cName(name), i)
		} else if strides := em.stridesOf(name); strides != nil && i < len(strides) {
			stride = strides[i]
		}
		if stride != "" && stride != "1" {
			s = fmt.Sprintf("(%s)*(%s)", s, stride)
		}
		terms = append(terms, s)
	}
	return joinPlus(terms)
}

// joinPlus joins terms with " + ", the additive combination of a
// multi-dimensional access's per-dimension offset terms.
func joinPlus(terms []string) string {
	out := ""
	for i, t := range terms {
		if i > 0 {
			out += " + "
		}
		out += t
	}
	return out
}

// emitCastedRhs renders rhs and, if its basetype (or the analysis-
// resolved cast annotation, when present) disagrees with the lvalue's
// basetype, wraps it in the appropriate conversion: INT32 narrowing
// into an INT8 buffer goes through the saturating exo_clamp_32to8
// helper, every other scalar mismatch gets a plain C cast.
func (em *emitter) emitCastedRhs(lhsTyp, cast Type, rhs Expr) string {
	target := Basetype(lhsTyp)
	source := Basetype(rhs.ExprType())
	if cast != nil {
		source = Basetype(cast)
	}
	rs := em.emitExpr(rhs, 0)
	if Ctype(target) == Ctype(source) {
		return rs
	}
	if _, tIsI8 := target.(*INT8Type); tIsI8 {
		if _, sIsI32 := source.(*INT32Type); sIsI32 {
			em.needHelper("exo_clamp_32to8")
			return fmt.Sprintf("exo_clamp_32to8(%s)", rs)
		}
	}
	return fmt.Sprintf("(%s)%s", Ctype(target), rs)
}

// emitStride renders the stride of dimension dim of name: for a window
// it reads the struct's own strides[] field (its layout isn't known
// until runtime), for a plain tensor it prints the statically computed
// stride string from em.stridesOf (e.g. a literal or a product of
// extents), matching emitBufAccess's own per-dimension dispatch in
// offsetOf.
func (em *emitter) emitStride(name Symbol, dim int) string {
	if em.kindOf(name) == bufWindow {
		return fmt.Sprintf("%s.strides[%d]", em.cName(name), dim)
	}
	if strides := em.stridesOf(name); strides != nil && dim < len(strides) {
		return strides[dim]
	}
	return fmt.Sprintf("%s.strides[%d]", em.cName(name), dim)
}
