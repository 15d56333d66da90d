package loopir

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// windowStructKey identifies a generated C window-struct type: its
// element C type, dimensionality, and whether it is a const (read-only)
// view. Multiple call sites across possibly-concurrent procedure
// emissions can request the same key; only one of them should generate
// the struct definition.
type windowStructKey struct {
	basetype string
	nDims    int
	isConst  bool
}

func (k windowStructKey) name() string {
	constTag := ""
	if k.isConst {
		constTag = "c"
	}
	return fmt.Sprintf("exo_win_%d%s_%s", k.nDims, constTag, k.basetype)
}

// windowStructCache memoizes window-struct definitions across however
// many procedures an emitter emits. Insert-if-absent is the only
// mutation this cache ever does, so it is built on
// golang.org/x/sync/singleflight: concurrent first-requests for the
// same key collapse into a single definition build, and every
// subsequent request is a map read under a plain mutex.
type windowStructCache struct {
	mu    sync.Mutex
	defs  map[windowStructKey]string
	group singleflight.Group
}

func newWindowStructCache() *windowStructCache {
	return &windowStructCache{defs: map[windowStructKey]string{}}
}

// Get returns the struct name for key, generating and caching its
// definition on first use. isNew is true only for the single caller
// (across however many goroutines race to request key first) that
// must emit def into the header's type section; every other caller,
// whether racing concurrently or arriving later, gets isNew == false.
func (c *windowStructCache) Get(key windowStructKey) (name string, def string, isNew bool) {
	type result struct {
		def   string
		claim *atomic.Bool
	}
	v, _, _ := c.group.Do(key.name(), func() (any, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if d, ok := c.defs[key]; ok {
			return result{def: d}, nil
		}
		d := windowStructDef(key)
		c.defs[key] = d
		return result{def: d, claim: new(atomic.Bool)}, nil
	})
	r := v.(result)
	// Goroutines that join the generating call all receive the same
	// result; only the one that wins the claim reports isNew.
	return key.name(), r.def, r.claim != nil && r.claim.CompareAndSwap(false, true)
}

func windowStructDef(key windowStructKey) string {
	constTag := ""
	if key.isConst {
		constTag = "const "
	}
	b := newCodeBuilder("  ")
	b.Line(fmt.Sprintf("typedef struct %s {", key.name()))
	b.in()
	b.Line(fmt.Sprintf("%s%s * const data;", constTag, key.basetype))
	b.Line(fmt.Sprintf("const int_fast32_t strides[%d];", key.nDims))
	b.out()
	b.Line(fmt.Sprintf("} %s;", key.name()))
	return b.String()
}
