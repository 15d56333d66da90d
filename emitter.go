package loopir

import (
	"fmt"
	"sort"
	"strings"
)

// staticHelpers holds the C source of every helper function the
// emitter may need to splice in, keyed by name; only the ones actually
// requested by a compilation are written out, mirroring the original's
// _static_helpers registry plus its needed-helpers tracking
// (original_source/src/exo/LoopIR_compiler.py).
var staticHelpers = map[string]string{
	"exo_floor_div": strings.TrimLeft(`
static inline int_fast32_t exo_floor_div(int_fast32_t a, int_fast32_t b) {
  int_fast32_t q = a / b;
  int_fast32_t r = a % b;
  return (r != 0 && ((r < 0) != (b < 0))) ? q - 1 : q;
}
`, "\n"),
	"exo_clamp_32to8": strings.TrimLeft(`
static inline int8_t exo_clamp_32to8(int32_t x) {
  if (x < -128) return -128;
  if (x > 127) return 127;
  return (int8_t)x;
}
`, "\n"),
}

// bufKind classifies how a symbol's storage is accessed in emitted C:
// a scalar (by value or, for real scalars, dereferenced through a
// pointer), a plain C array (`name[offset]`), or a window-struct value
// (`name.data[offset]`, strides read from `name.strides`).
type bufKind int

const (
	bufScalar bufKind = iota
	bufPlain
	bufWindow
)

// emitter holds the state threaded through compiling one set of
// procedures to C: the output builder, the helpers requested so far,
// the window-struct cache, naming state to avoid collisions between
// procedures that share a base name, and each buffer's computed
// strides (needed to lower multi-dimensional indexing).
type emitter struct {
	cfg        *CompilerConfig
	out        *codeBuilder
	libName    string
	helpers    map[string]bool
	windows    *windowStructCache
	windowDefs map[string]string
	names      map[int64]string
	used       map[string]int
	strides    map[int64][]string
	byPointer  map[int64]bool
	kinds      map[int64]bufKind
	memOf      map[int64]Memory
	written    map[int64]bool
	seeds      map[string]bool
	err        error
}

// fail records err as the compilation's outcome if no earlier call
// already recorded one; expression-rendering helpers that can hit a
// user-facing error (e.g. a memory class rejecting a read) have no
// error return of their own, so they stash the first failure here for
// emitProc to surface once the enclosing statement finishes rendering.
func (em *emitter) fail(err error) {
	if em.err == nil {
		em.err = err
	}
}

func newEmitter(cfg *CompilerConfig) *emitter {
	return &emitter{
		cfg:        cfg,
		out:        newCodeBuilder("  "),
		helpers:    map[string]bool{},
		windows:    newWindowStructCache(),
		windowDefs: map[string]string{},
		names:      map[int64]string{},
		byPointer:  map[int64]bool{},
		used:       map[string]int{},
		strides:    map[int64][]string{},
		kinds:      map[int64]bufKind{},
		memOf:      map[int64]Memory{},
		written:    map[int64]bool{},
		seeds:      map[string]bool{},
	}
}

func (em *emitter) setKind(s Symbol, k bufKind) { em.kinds[symID(s)] = k }
func (em *emitter) kindOf(s Symbol) bufKind     { return em.kinds[symID(s)] }

// recordWindowDef stashes a newly generated window struct definition so
// assembleOutput can place it in the header, sorted alongside every
// other distinct window struct, instead of wherever in the procedure
// stream it was first requested.
func (em *emitter) recordWindowDef(name, def string) {
	em.windowDefs[name] = def
}

func (em *emitter) memOfSym(s Symbol) Memory {
	if m, ok := em.memOf[symID(s)]; ok {
		return m
	}
	return defaultDRAM
}

func (em *emitter) setMem(s Symbol, m Memory) {
	if m == nil {
		m = defaultDRAM
	}
	em.memOf[symID(s)] = m
}

// markWritten records that buffer s is the target of at least one
// Assign/Reduce somewhere in the procedures compiled so far; used to
// decide whether a non-window tensor argument can be declared const.
func (em *emitter) markWritten(s Symbol) { em.written[symID(s)] = true }
func (em *emitter) isWritten(s Symbol) bool { return em.written[symID(s)] }

// scanWrites walks stmts (recursing into If/Seq bodies) noting every
// buffer name that is the target of an Assign or Reduce, without
// emitting anything: emitSignature needs this before it renders any
// argument so constness reflects the whole body, not just a prefix.
func scanWrites(em *emitter, stmts []Stmt) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *AssignStmt:
			em.markWritten(n.Name)
		case *ReduceStmt:
			em.markWritten(n.Name)
		case *IfStmt:
			scanWrites(em, n.Body)
			scanWrites(em, n.Orelse)
		case *SeqStmt:
			scanWrites(em, n.Body)
		}
	}
}

func (em *emitter) needHelper(name string) { em.helpers[name] = true }

// cName assigns a collision-free C identifier to a Symbol the first
// time it's seen and reuses it thereafter: the printable name is used
// verbatim unless another symbol already claimed it, in which case a
// numeric suffix is appended, the same disambiguation the teacher's
// own identifier-naming pass uses for generated parser symbols.
func (em *emitter) cName(s Symbol) string {
	if n, ok := em.names[symID(s)]; ok {
		return n
	}
	base := sanitizeLibName(s.Name())
	n := base
	if em.used[base] > 0 {
		n = fmt.Sprintf("%s_%d", base, em.used[base])
	}
	em.used[base]++
	em.names[symID(s)] = n
	return n
}

func (em *emitter) stridesOf(name Symbol) []string {
	return em.strides[symID(name)]
}

func (em *emitter) setStrides(name Symbol, strides []string) {
	em.strides[symID(name)] = strides
}

// CompileToStrings compiles every procedure reachable from roots
// (transitively, callees first) into a C source file and a matching
// header, in the manner of the original's compile_to_strings /
// run_compile orchestration.
func CompileToStrings(roots []*Proc, libName string, cfg *CompilerConfig) (cSrc, hSrc string, err error) {
	if cfg == nil {
		cfg = NewCompilerConfig()
	}
	order, err := FindAllSubprocs(roots)
	if err != nil {
		return "", "", err
	}

	em := newEmitter(cfg)
	sanitizedLib := sanitizeLibName(libName)
	em.libName = sanitizedLib
	for _, p := range roots {
		em.seeds[p.Name] = true
	}

	for _, p := range order {
		// An instruction procedure is opaque: every call to it is
		// expanded by template substitution at the call site, so it
		// never gets a C function of its own (§"Call").
		if p.Instr != nil {
			continue
		}
		if err := em.emitProc(p, sanitizedLib); err != nil {
			return "", "", err
		}
		em.out.Blank()
	}

	res, err := DiscoverResources(order)
	if err != nil {
		return "", "", err
	}

	cSrc, hSrc = assembleOutput(em, order, sanitizedLib, res.Mems, res.Builtins, res.Configs)
	return cSrc, hSrc, nil
}

// sanitizeLibName forces s into a legal C identifier, following the
// same first-character/continuation rules as the teacher's own
// sanitizeCIdent: a bad leading character gets an underscore prefix
// instead of being dropped, so the name stays recognizable.
func sanitizeLibName(s string) string {
	if s == "" {
		return "exo"
	}
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		switch {
		case i == 0 && (isLetter || r == '_'):
			b.WriteRune(r)
		case i == 0 && isDigit:
			b.WriteByte('_')
			b.WriteRune(r)
		case i == 0:
			b.WriteByte('_')
		case isLetter || isDigit || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// emitProc writes one procedure's C function definition, including its
// EXO_ASSUME'd preconditions and the context-struct argument every
// emitted function takes per spec.
func (em *emitter) emitProc(p *Proc, libName string) error {
	scanWrites(em, p.Body)

	em.out.Line(fmt.Sprintf("/* %s(%s) */", p.Name, argDoc(p.Args)))
	sig, err := em.emitSignature(p, libName)
	if err != nil {
		return err
	}
	if !em.seeds[p.Name] {
		sig = "static " + sig
	}
	em.out.Line(sig + " {")
	em.out.in()

	for i, pred := range p.Preds {
		if isConstTrue(pred) {
			continue
		}
		if !em.cfg.GetBool("codegen.assume_macro") {
			continue
		}
		cond := em.emitExpr(pred, 0)
		em.out.Line(fmt.Sprintf("EXO_ASSUME(%s); /* precondition %d */", cond, i))
	}

	if err := em.emitStmts(p.Body); err != nil {
		return err
	}
	if em.err != nil {
		return em.err
	}

	em.out.out()
	em.out.Line("}")
	return nil
}

// argDoc renders the one-line argument summary placed in the doc
// comment preceding each emitted procedure: name, type, and memory tag
// per formal, mirroring the original compiler's per-proc header.
func argDoc(args []*FnArg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		memTag := "DRAM"
		if a.Mem != nil {
			memTag = a.Mem.Name()
		}
		parts[i] = fmt.Sprintf("%s: %s @%s", a.Name.Name(), Ctype(Basetype(a.Typ)), memTag)
	}
	return strings.Join(parts, ", ")
}

// defaultStrides computes the row-major element strides of a tensor's
// shape, used when an argument wasn't given an explicit window/stride
// layout by a prior analysis pass.
func defaultStrides(t Type) []string {
	shape := Shape(t)
	if len(shape) == 0 {
		return nil
	}
	strides := make([]string, len(shape))
	strides[len(shape)-1] = "1"
	// Symbolic extents mean strides can't always be folded to
	// constants here; emitProc's caller is expected to have already
	// run a layout/window analysis producing concrete stride
	// expressions when one is needed. Absent that, emit a
	// placeholder runtime product left for the analysis to replace.
	for i := len(shape) - 2; i >= 0; i-- {
		strides[i] = fmt.Sprintf("/* stride(%d) */", i)
	}
	return strides
}

func (em *emitter) emitSignature(p *Proc, libName string) (string, error) {
	parts := make([]string, 0, len(p.Args)+1)
	parts = append(parts, fmt.Sprintf("struct %s_Context *ctxt", libName))
	for _, a := range p.Args {
		rendered, err := em.emitArgDecl(a)
		if err != nil {
			return "", err
		}
		parts = append(parts, rendered)
	}
	return fmt.Sprintf("void %s(%s)", sanitizeLibName(p.Name), strings.Join(parts, ", ")), nil
}

// emitArgDecl renders one formal parameter per its type category, per
// §4.H: index-likes/bool/stride pass by value with their C type;
// scalar reals pass as a pointer (dereferenced at every use, so a
// callee can write through it); a non-window tensor decays to a
// pointer to its basetype, const-qualified unless the body writes or
// reduces into it anywhere; a window passes as a window-struct value.
func (em *emitter) emitArgDecl(a *FnArg) (string, error) {
	cname := em.cName(a.Name)
	em.setMem(a.Name, a.Mem)

	switch t := a.Typ.(type) {
	case *WindowType:
		key, err := em.windowKeyOf(t, !em.isWritten(a.Name))
		if err != nil {
			return "", err
		}
		name := em.registerWindowStruct(key)
		em.setKind(a.Name, bufWindow)
		em.setStrides(a.Name, nil)
		return fmt.Sprintf("%s %s", name, cname), nil

	case *TensorType:
		em.setKind(a.Name, bufPlain)
		em.setStrides(a.Name, defaultStrides(t))
		base := Basetype(t)
		if !IsRealScalar(base) {
			return "", &CompileError{Kind: KindConstruction, Message: "tensor argument must have a resolved scalar basetype", Src: a.At}
		}
		constTag := ""
		if !em.isWritten(a.Name) {
			constTag = "const "
		}
		return fmt.Sprintf("%s%s *%s", constTag, Ctype(base), cname), nil

	default:
		em.setKind(a.Name, bufScalar)
		if IsRealScalar(t) {
			em.byPointer[symID(a.Name)] = true
			return fmt.Sprintf("%s *%s", Ctype(t), cname), nil
		}
		return fmt.Sprintf("%s %s", Ctype(t), cname), nil
	}
}

// registerWindowStruct returns the C struct name for key, emitting its
// definition into the header's window-struct section (rather than
// inline in the procedure stream) the first time key is seen.
func (em *emitter) registerWindowStruct(key windowStructKey) string {
	name, def, isNew := em.windows.Get(key)
	if isNew {
		em.recordWindowDef(name, def)
	}
	return name
}

func (em *emitter) windowKeyOf(t Type, isConst bool) (windowStructKey, error) {
	base := Basetype(t)
	if !IsRealScalar(base) {
		return windowStructKey{}, &CompileError{Kind: KindConstruction, Message: "window/tensor argument must have a resolved scalar basetype"}
	}
	shape := Shape(t)
	return windowStructKey{basetype: Ctype(base), nDims: len(shape), isConst: isConst}, nil
}

// assembleOutput produces the final .c and .h text: sorted,
// deterministic include lists and declarations so two runs over the
// same input byte-for-byte agree, per emit.sorted_output.
func assembleOutput(em *emitter, procs []*Proc, libName string, mems []Memory, builtins []Builtin, configs []Config) (string, string) {
	c := newCodeBuilder("  ")
	c.Line(fmt.Sprintf("/* %s: generated C source, do not edit by hand */", libName))
	c.Line(fmt.Sprintf("#include \"%s.h\"", libName))
	c.Blank()

	helperNames := make([]string, 0, len(em.helpers))
	for h := range em.helpers {
		helperNames = append(helperNames, h)
	}
	if em.cfg.GetBool("emit.sorted_output") {
		sort.Strings(helperNames)
	}
	for _, h := range helperNames {
		c.Raw(staticHelpers[h])
		c.Blank()
	}

	// Each memory class's and builtin's global_()/globl() code: C that
	// needs to exist once per compilation unit regardless of how many
	// procedures use that collaborator (e.g. a register-file memory's
	// backing array, a builtin's lookup table).
	for _, m := range mems {
		if g := m.Global(); g != "" {
			c.Raw(g)
			c.Blank()
		}
	}
	for _, bi := range builtins {
		if g := bi.Global(); g != "" {
			c.Raw(g)
			c.Blank()
		}
	}

	// Private forward declarations for every non-seed procedure, ahead
	// of the bodies themselves. Procedure bodies are already emitted
	// callees-first (FindAllSubprocs' reverse post-order), so nothing
	// here is strictly load-bearing for a DAG call graph, but the
	// declarations are still part of the emitted surface per spec.
	for _, p := range procs {
		if em.seeds[p.Name] || p.Instr != nil {
			continue
		}
		sig, err := em.emitSignature(p, libName)
		if err != nil {
			continue
		}
		c.Line("static " + sig + ";")
	}
	c.Blank()

	c.Raw(em.out.String())

	h := newCodeBuilder("  ")
	guard := strings.ToUpper(libName) + "_H"
	h.Line("#ifndef " + guard)
	h.Line("#define " + guard)
	h.Blank()
	h.Line("#include <stdbool.h>")
	h.Line("#include <stdint.h>")
	h.Blank()
	if em.cfg.GetBool("codegen.assume_macro") {
		h.Line("#ifndef EXO_ASSUME")
		h.Line("#if defined(__has_builtin)")
		h.Line("#if __has_builtin(__builtin_assume)")
		h.Line("#define EXO_ASSUME(c) __builtin_assume(c)")
		h.Line("#elif __has_builtin(__builtin_unreachable)")
		h.Line("#define EXO_ASSUME(c) ((c) ? (void)0 : __builtin_unreachable())")
		h.Line("#endif")
		h.Line("#endif")
		h.Line("#ifndef EXO_ASSUME")
		h.Line("#define EXO_ASSUME(c) ((void)0)")
		h.Line("#endif")
		h.Line("#endif")
		h.Blank()
	}
	h.Line("#ifdef __cplusplus")
	h.Line(`extern "C" {`)
	h.Line("#endif")
	h.Blank()

	h.Line(fmt.Sprintf("struct %s_Context {", libName))
	h.in()
	if len(configs) == 0 {
		h.Line("char _unused;")
	}
	for _, cfgObj := range configs {
		if cfgObj.AllowWrite() {
			h.Line(cfgObj.CStructDef())
		} else {
			h.Line(fmt.Sprintf("/* config %q is read-only; its fields are not materialized here */", cfgObj.Name()))
		}
	}
	h.out()
	h.Line("};")
	h.Blank()

	for _, m := range mems {
		h.Line(fmt.Sprintf("/* uses memory: %s */", m.Name()))
	}
	for _, bi := range builtins {
		h.Line(fmt.Sprintf("/* uses builtin: %s */", bi.Name()))
	}
	h.Blank()

	windowNames := make([]string, 0, len(em.windowDefs))
	for n := range em.windowDefs {
		windowNames = append(windowNames, n)
	}
	if em.cfg.GetBool("emit.sorted_output") {
		sort.Strings(windowNames)
	}
	for _, n := range windowNames {
		h.Raw(em.windowDefs[n])
		h.Blank()
	}

	// Only the seed procedures are published; everything else in the
	// transitive closure is `static` and defined solely in the source.
	for _, p := range procs {
		if !em.seeds[p.Name] || p.Instr != nil {
			continue
		}
		sig, _ := em.emitSignature(p, libName)
		h.Line(sig + ";")
	}

	h.Blank()
	h.Line("#ifdef __cplusplus")
	h.Line("}")
	h.Line("#endif")
	h.Blank()
	h.Line("#endif /* " + guard + " */")

	return c.String(), h.String()
}
