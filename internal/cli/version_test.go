package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveVersionInfo_LdflagsWin(t *testing.T) {
	origV, origC, origD := version, commit, date
	t.Cleanup(func() { version, commit, date = origV, origC, origD })

	version, commit, date = "1.2.3", "abc1234", "2026-01-02"
	v, c, d := resolveVersionInfo()
	assert.Equal(t, "1.2.3", v)
	assert.Equal(t, "abc1234", c)
	assert.Equal(t, "2026-01-02", d)
}

func TestResolveVersionInfo_DevBuild(t *testing.T) {
	origV, origC, origD := version, commit, date
	t.Cleanup(func() { version, commit, date = origV, origC, origD })

	version, commit, date = "dev", "unknown", "unknown"
	v, c, _ := resolveVersionInfo()

	// test binaries carry build info but usually no module version
	assert.NotEmpty(t, v)
	assert.LessOrEqual(t, len(c), len("unknown"))
	assert.False(t, strings.Contains(v, " "))
}
