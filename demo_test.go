package loopir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDemoProcsCompiles(t *testing.T) {
	procs, err := LoadDemoProcs()
	require.NoError(t, err)
	require.Len(t, procs, 1)

	c, h, err := CompileToStrings(procs, "demo", nil)
	require.NoError(t, err)
	assert.Contains(t, c, "void scale_by_two(struct demo_Context")
	assert.Contains(t, c, "for (int_fast32_t i")
	assert.Contains(t, h, "void scale_by_two(struct demo_Context")
}
