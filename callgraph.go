package loopir

import (
	"sort"

	"golang.org/x/sync/errgroup"
)

// This file computes the transitive call-graph closure of a procedure
// and discovers the memory classes, builtins and configs a procedure
// (and everything it calls) actually uses. Ported from the original's
// LoopIR_SubProcs/find_all_subprocs and
// LoopIR_FindMems/FindBuiltIns/FindConfigs family
// (original_source/src/exo/LoopIR_compiler.py lines 51-194).

// SubProcs returns the set of procedures p calls directly, deduplicated
// by pointer identity and ordered by first appearance.
func SubProcs(p *Proc) []*Proc {
	var out []*Proc
	seen := map[*Proc]bool{}
	var walk func(stmts []Stmt)
	walk = func(stmts []Stmt) {
		for _, s := range stmts {
			switch n := s.(type) {
			case *CallStmt:
				if !seen[n.Proc] {
					seen[n.Proc] = true
					out = append(out, n.Proc)
				}
			case *IfStmt:
				walk(n.Body)
				walk(n.Orelse)
			case *SeqStmt:
				walk(n.Body)
			}
		}
	}
	walk(p.Body)
	return out
}

// FindAllSubprocs computes the transitive closure of the call graph
// rooted at roots, returning callees before callers (reverse
// post-order) so that e.g. an emitter can compile dependencies before
// the procedures that call them. A cycle anywhere in the closure is
// reported as a KindCallGraph error naming one of the procedures on
// the cycle.
func FindAllSubprocs(roots []*Proc) ([]*Proc, error) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[*Proc]int{}
	var order []*Proc

	var visit func(p *Proc) error
	visit = func(p *Proc) error {
		switch color[p] {
		case black:
			return nil
		case gray:
			return callCycleError(p.Name)
		}
		color[p] = gray
		if p.Instr == nil {
			for _, sub := range SubProcs(p) {
				if err := visit(sub); err != nil {
					return err
				}
			}
		}
		color[p] = black
		order = append(order, p)
		return nil
	}

	for _, r := range roots {
		if err := visit(r); err != nil {
			return nil, err
		}
	}

	// Two distinct procedures sharing a name would collide once
	// mangled to a C symbol, and the emitter's forward-declaration
	// pass can't tell them apart by name alone.
	seenNames := map[string]bool{}
	for _, p := range order {
		if seenNames[p.Name] {
			return nil, duplicateNameError("procedure", p.Name)
		}
		seenNames[p.Name] = true
	}
	return order, nil
}

// FindAllMems returns every distinct Memory referenced by a procedure
// argument or by an Alloc or Free statement anywhere in procs, sorted
// by name for deterministic emission order.
func FindAllMems(procs []*Proc) []Memory {
	seen := map[string]Memory{}
	for _, p := range procs {
		var walk func(stmts []Stmt)
		walk = func(stmts []Stmt) {
			for _, s := range stmts {
				switch n := s.(type) {
				case *AllocStmt:
					if n.Mem != nil {
						seen[n.Mem.Name()] = n.Mem
					}
				case *FreeStmt:
					if n.Mem != nil {
						seen[n.Mem.Name()] = n.Mem
					}
				case *IfStmt:
					walk(n.Body)
					walk(n.Orelse)
				case *SeqStmt:
					walk(n.Body)
				}
			}
		}
		for _, a := range p.Args {
			if a.Mem != nil {
				seen[a.Mem.Name()] = a.Mem
			}
		}
		walk(p.Body)
	}
	return sortedMemory(seen)
}

func sortedMemory(seen map[string]Memory) []Memory {
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]Memory, len(names))
	for i, n := range names {
		out[i] = seen[n]
	}
	return out
}

// FindAllBuiltins returns every distinct Builtin called anywhere in
// procs, sorted by name.
func FindAllBuiltins(procs []*Proc) []Builtin {
	seen := map[string]Builtin{}
	var walkExpr func(e Expr)
	walkExpr = func(e Expr) {
		switch n := e.(type) {
		case *BuiltInExpr:
			seen[n.Fn.Name()] = n.Fn
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *USubExpr:
			walkExpr(n.Arg)
		case *BinOpExpr:
			walkExpr(n.Lhs)
			walkExpr(n.Rhs)
		case *ReadExpr:
			for _, a := range n.Idx {
				walkExpr(a)
			}
		}
	}
	var walkStmts func(stmts []Stmt)
	walkStmts = func(stmts []Stmt) {
		for _, s := range stmts {
			switch n := s.(type) {
			case *AssignStmt:
				walkExpr(n.Rhs)
			case *ReduceStmt:
				walkExpr(n.Rhs)
			case *IfStmt:
				walkExpr(n.Cond)
				walkStmts(n.Body)
				walkStmts(n.Orelse)
			case *SeqStmt:
				walkExpr(n.Hi)
				walkStmts(n.Body)
			case *CallStmt:
				for _, a := range n.Args {
					walkExpr(a)
				}
			}
		}
	}
	for _, p := range procs {
		walkStmts(p.Body)
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]Builtin, len(names))
	for i, n := range names {
		out[i] = seen[n]
	}
	return out
}

// FindAllConfigs returns every distinct Config referenced by a
// ReadConfig expression or WriteConfig statement anywhere in procs,
// sorted by name. Two distinct Config values sharing a name is a
// uniqueness error: the context struct has only one slot per name.
func FindAllConfigs(procs []*Proc) ([]Config, error) {
	seen := map[string]Config{}
	var dupErr error
	record := func(c Config) {
		if existing, ok := seen[c.Name()]; ok {
			if existing != c && dupErr == nil {
				dupErr = duplicateNameError("config", c.Name())
			}
			return
		}
		seen[c.Name()] = c
	}
	var walkExpr func(e Expr)
	walkExpr = func(e Expr) {
		switch n := e.(type) {
		case *ReadConfigExpr:
			record(n.Config)
		case *USubExpr:
			walkExpr(n.Arg)
		case *BinOpExpr:
			walkExpr(n.Lhs)
			walkExpr(n.Rhs)
		case *BuiltInExpr:
			for _, a := range n.Args {
				walkExpr(a)
			}
		}
	}
	var walkStmts func(stmts []Stmt)
	walkStmts = func(stmts []Stmt) {
		for _, s := range stmts {
			switch n := s.(type) {
			case *WriteConfigStmt:
				record(n.Config)
				walkExpr(n.Rhs)
			case *AssignStmt:
				walkExpr(n.Rhs)
			case *ReduceStmt:
				walkExpr(n.Rhs)
			case *IfStmt:
				walkExpr(n.Cond)
				walkStmts(n.Body)
				walkStmts(n.Orelse)
			case *SeqStmt:
				walkExpr(n.Hi)
				walkStmts(n.Body)
			case *CallStmt:
				for _, a := range n.Args {
					walkExpr(a)
				}
			}
		}
	}
	for _, p := range procs {
		walkStmts(p.Body)
	}
	if dupErr != nil {
		return nil, dupErr
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]Config, len(names))
	for i, n := range names {
		out[i] = seen[n]
	}
	return out, nil
}

// Resources bundles the three collaborator sets a compilation unit
// touches, discovered by DiscoverResources.
type Resources struct {
	Mems     []Memory
	Builtins []Builtin
	Configs  []Config
}

// DiscoverResources runs the mem/builtin/config discovery passes
// concurrently over the same closed-over procs slice via
// golang.org/x/sync/errgroup: each pass only reads procs and writes
// into its own independent output, so there is no shared mutable state
// to race on, and letting them run as a bounded fan-out rather than
// three sequential full-tree walks shortens wall-clock time on large
// call graphs.
func DiscoverResources(procs []*Proc) (Resources, error) {
	var res Resources
	var g errgroup.Group
	g.Go(func() error {
		res.Mems = FindAllMems(procs)
		return nil
	})
	g.Go(func() error {
		res.Builtins = FindAllBuiltins(procs)
		return nil
	})
	g.Go(func() error {
		cfgs, err := FindAllConfigs(procs)
		if err != nil {
			return err
		}
		res.Configs = cfgs
		return nil
	})
	if err := g.Wait(); err != nil {
		return Resources{}, err
	}
	return res, nil
}
