package loopir

import "fmt"

// This file holds the pure predicate and projection functions over
// Type, grounded on original_source/src/exo/LoopIR.py's T namespace
// helpers (is_real_scalar, is_numeric, is_indexable, is_win, basetype,
// shape, ctype) at lines 316-503.

// IsRealScalar reports whether t is one of the floating/integer
// scalar storage types (F32, F64, INT8, INT32) that can back a
// buffer element.
func IsRealScalar(t Type) bool {
	switch t.(type) {
	case *F32Type, *F64Type, *INT8Type, *INT32Type:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether t can appear as the type of a value
// expression: real scalars plus the generic Num placeholder used
// before precision analysis resolves it.
func IsNumeric(t Type) bool {
	if IsRealScalar(t) {
		return true
	}
	_, isNum := t.(*NumType)
	return isNum
}

// IsIndexable reports whether t can be used as a loop bound or array
// index: Int, Index or Size.
func IsIndexable(t Type) bool {
	switch t.(type) {
	case *IntType, *IndexType, *SizeType:
		return true
	default:
		return false
	}
}

// IsSize reports whether t is the Size type. Integer division whose
// left operand is Size-typed uses C's truncating `/` directly (a Size
// is non-negative by construction), unlike other integer division,
// which goes through the exo_floor_div helper. Modulo always lowers
// to a plain C `%`.
func IsSize(t Type) bool {
	_, ok := t.(*SizeType)
	return ok
}

// IsStridable reports whether t can hold a stride value: Int or
// Stride.
func IsStridable(t Type) bool {
	switch t.(type) {
	case *IntType, *StrideType:
		return true
	default:
		return false
	}
}

// IsBool reports whether t is the boolean type.
func IsBool(t Type) bool {
	_, ok := t.(*BoolType)
	return ok
}

// IsWin reports whether t is a window type.
func IsWin(t Type) bool {
	_, ok := t.(*WindowType)
	return ok
}

// IsTensorOrWindow reports whether t is a tensor or a window,
// i.e. not a bare scalar.
func IsTensorOrWindow(t Type) bool {
	switch t.(type) {
	case *TensorType, *WindowType:
		return true
	default:
		return false
	}
}

// Basetype strips any tensor/window wrapping off t and returns the
// underlying scalar type.
func Basetype(t Type) Type {
	switch n := t.(type) {
	case *TensorType:
		return Basetype(n.Elem)
	case *WindowType:
		return Basetype(n.AsTensor)
	default:
		return t
	}
}

// Shape returns the extents of t if it is a tensor or window, and nil
// for a bare scalar.
func Shape(t Type) []Expr {
	switch n := t.(type) {
	case *TensorType:
		return n.Hi
	case *WindowType:
		return Shape(n.AsTensor)
	default:
		return nil
	}
}

// Ctype renders t's basetype as the C type name the emitter writes
// into declarations and casts. Calling it on Num (the unresolved
// placeholder) is a programmer error: precision analysis must have
// already run.
func Ctype(t Type) string {
	switch t.(type) {
	case *F32Type:
		return "float"
	case *F64Type:
		return "double"
	case *INT8Type:
		return "int8_t"
	case *INT32Type:
		return "int32_t"
	case *BoolType:
		return "bool"
	case *IntType, *IndexType, *SizeType, *StrideType:
		return "int_fast32_t"
	case *NumType:
		panic("Ctype: called on an unresolved Num type; precision analysis must run first")
	default:
		panic(fmt.Sprintf("Ctype: unhandled type %T", t))
	}
}
