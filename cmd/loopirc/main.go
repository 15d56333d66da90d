// Command loopirc is a thin driver that hands a set of procedures
// built by an upstream front-end to the loopir compiler and writes the
// resulting .c/.h pair to disk. The front-end that builds LoopIR
// procedures from source text is out of scope for this package; this
// binary exists to exercise CompileToStrings end to end, the way the
// teacher's own cmd/ entry points exist mainly to wire a library's
// public API together rather than hold real logic.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/loopir/loopir"
)

func main() {
	libName := flag.String("lib", "kernels", "base name for the generated .c/.h pair")
	outDir := flag.String("out", ".", "output directory")
	flag.Parse()

	procs, err := loopir.LoadDemoProcs()
	if err != nil {
		fmt.Fprintln(os.Stderr, "loopirc:", err)
		os.Exit(1)
	}

	cSrc, hSrc, err := loopir.CompileToStrings(procs, *libName, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "loopirc:", err)
		os.Exit(1)
	}

	if err := os.WriteFile(filepath.Join(*outDir, *libName+".c"), []byte(cSrc), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "loopirc:", err)
		os.Exit(1)
	}
	if err := os.WriteFile(filepath.Join(*outDir, *libName+".h"), []byte(hSrc), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "loopirc:", err)
		os.Exit(1)
	}
}
