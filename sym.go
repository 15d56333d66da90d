package loopir

import (
	"fmt"
	"sync/atomic"
)

// symCounter is the process-wide monotonic source of Symbol ids. Per
// the concurrency model, this is the package's only mutable singleton
// (the terminal type instances in T are never mutated) and must stay
// safe under concurrent use.
var symCounter int64

// Symbol is an opaque identifier with a printable name and a globally
// unique id. Equality and hashing are by id, not name: two symbols
// sharing a printable Name are still distinct unless they share an id.
type Symbol struct {
	name string
	id   int64
}

func newSymbolRaw(name string) Symbol {
	return Symbol{name: name, id: atomic.AddInt64(&symCounter, 1)}
}

// NewSymbol allocates a fresh Symbol with the given printable name,
// validating it as a legal identifier first (per the construction-time
// validation every node constructor in this package performs).
func NewSymbol(name string) (Symbol, error) {
	if _, err := Ident(name); err != nil {
		return Symbol{}, err
	}
	return newSymbolRaw(name), nil
}

// MustNewSymbol is NewSymbol for callers with a statically-known-valid
// name (tests, hand-built demo procedures); it panics on an invalid
// name instead of returning an error, the same convention as
// regexp.MustCompile.
func MustNewSymbol(name string) Symbol {
	s, err := NewSymbol(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the printable name of the symbol. It is not part of
// its identity.
func (s Symbol) Name() string { return s.name }

// Copy produces a fresh symbol sharing the same printable name. This
// is the primitive alpha-renaming builds on: it gives a binding site a
// new identity without losing its human-readable label. The name was
// already validated when s was first constructed, so Copy skips
// re-validating it.
func (s Symbol) Copy() Symbol { return newSymbolRaw(s.name) }

// Equal compares two symbols by id.
func (s Symbol) Equal(o Symbol) bool { return s.id == o.id }

func (s Symbol) String() string { return fmt.Sprintf("%s.%d", s.name, s.id) }

// SrcInfo is an opaque value carried on every IR node for diagnostics.
// It is intentionally minimal: the front-end that produces typed
// procedures owns richer source mapping; the core IR only needs
// enough to prefix a diagnostic message.
type SrcInfo struct {
	Filename string
	Line     int
	Col      int
}

func (s SrcInfo) String() string {
	if s.Filename == "" && s.Line == 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Col)
}

// NullSrcInfo is the zero-value SrcInfo, used by synthesized nodes (e.g.
// those produced by binder passes) that have no direct source
// correspondence.
var NullSrcInfo = SrcInfo{}
