package loopir

import (
	"fmt"
	"strings"
)

// DRAM is the default Memory: a heap-allocated, row-major buffer with
// no placement constraints. Every procedure argument and Alloc that
// isn't explicitly assigned another memory class resolves to this
// one. Grounded on the original's DRAM class
// (original_source/src/exo/memory.py), which is likewise the fallback
// memory every other class is compared against.
type DRAM struct{}

var defaultDRAM = &DRAM{}

func (*DRAM) Name() string   { return "DRAM" }
func (*DRAM) Global() string { return "" }
func (*DRAM) CanRead() bool  { return true }

func (*DRAM) Alloc(ctype, name string, shape []string, src SrcInfo) (string, error) {
	if len(shape) == 0 {
		return fmt.Sprintf("%s %s;", ctype, name), nil
	}
	return fmt.Sprintf("%s *%s = (%s*) malloc(%s * sizeof(%s));", ctype, name, ctype, strings.Join(shape, " * "), ctype), nil
}

func (*DRAM) Free(ctype, name string, shape []string, src SrcInfo) (string, error) {
	if len(shape) == 0 {
		return "", nil
	}
	return fmt.Sprintf("free(%s);", name), nil
}

func (*DRAM) Window(ctype, baseptr, indices string, shape []string, src SrcInfo) (string, error) {
	return fmt.Sprintf("%s + %s", baseptr, indices), nil
}

func (*DRAM) Write(lhs, rhs string) string  { return fmt.Sprintf("%s = %s;", lhs, rhs) }
func (*DRAM) Reduce(lhs, rhs string) string { return fmt.Sprintf("%s += %s;", lhs, rhs) }

var _ Memory = (*DRAM)(nil)
