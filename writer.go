package loopir

import "strings"

// codeBuilder is an indentation-tracking string accumulator, adapted
// from the teacher's own outputWriter (gen.go in the original tree):
// same indent/unindent/write-line shape, renamed into this package's
// domain and extended with a String accessor the emitter
// needs to produce both a .c and a .h file from one builder type.
type codeBuilder struct {
	buf    strings.Builder
	level  int
	indent string
}

func newCodeBuilder(indent string) *codeBuilder {
	return &codeBuilder{indent: indent}
}

func (c *codeBuilder) in()  { c.level++ }
func (c *codeBuilder) out() { c.level-- }

func (c *codeBuilder) pad() {
	for i := 0; i < c.level; i++ {
		c.buf.WriteString(c.indent)
	}
}

// Line writes s at the current indent level followed by a newline.
func (c *codeBuilder) Line(s string) {
	c.pad()
	c.buf.WriteString(s)
	c.buf.WriteByte('\n')
}

// Raw writes s verbatim with no indent and no trailing newline,
// useful for building up a single logical line across several calls.
func (c *codeBuilder) Raw(s string) {
	c.buf.WriteString(s)
}

// Indented writes s at the current indent level with no trailing
// newline, for starting a line that Raw calls will continue.
func (c *codeBuilder) Indented(s string) {
	c.pad()
	c.buf.WriteString(s)
}

// Blank writes an empty line.
func (c *codeBuilder) Blank() {
	c.buf.WriteByte('\n')
}

func (c *codeBuilder) String() string {
	return c.buf.String()
}

// EmitGlobal implements CodeWriter for builtins that need to append a
// top-level declaration; it is always called between procedures, so it
// writes at indent level 0 regardless of the builder's current level.
func (c *codeBuilder) EmitGlobal(decl string) {
	saved := c.level
	c.level = 0
	c.Line(decl)
	c.level = saved
}
