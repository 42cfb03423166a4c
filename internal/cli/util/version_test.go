package util

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/ariel-frischer/changekeeper/internal/build"
	"github.com/ariel-frischer/changekeeper/internal/cli/shared"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	root := &cobra.Command{Use: "changekeeper"}
	root.AddGroup(&cobra.Group{ID: shared.GroupInternal, Title: "Internal:"})
	Register(root)

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return buf.String()
}

// Tests that modify the global build variables cannot run in parallel.
func TestVersionCommand(t *testing.T) {
	origVersion, origCommit := build.Version, build.Commit
	build.Version = "v1.2.3"
	build.Commit = "0123456789abcdef"
	defer func() { build.Version, build.Commit = origVersion, origCommit }()

	t.Run("plain", func(t *testing.T) {
		out := execute(t, "version", "--plain")
		assert.Contains(t, out, "changekeeper v1.2.3\n")
		assert.Contains(t, out, "commit: 0123456789abcdef\n")
		assert.Contains(t, out, "go: "+runtime.Version())
	})

	t.Run("pretty", func(t *testing.T) {
		origNoColor := color.NoColor
		color.NoColor = true
		defer func() { color.NoColor = origNoColor }()

		out := execute(t, "v")
		assert.Contains(t, out, "v1.2.3")
		assert.Contains(t, out, "01234567")
		assert.NotContains(t, out, "0123456789abcdef")

		var widths []int
		for _, line := range strings.Split(out, "\n") {
			if strings.Contains(line, "│") || strings.Contains(line, "╭") || strings.Contains(line, "╰") {
				widths = append(widths, len([]rune(line)))
			}
		}
		require.NotEmpty(t, widths)
		for _, w := range widths {
			assert.Equal(t, widths[0], w, "box lines should align")
		}
	})
}

func TestSauceCommand(t *testing.T) {
	assert.Equal(t, build.SourceURL+"\n", execute(t, "sauce"))
}

func TestRegister_Groups(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: "changekeeper"}
	Register(root)
	for _, cmd := range root.Commands() {
		assert.Equal(t, shared.GroupInternal, cmd.GroupID, cmd.Name())
	}
}

func TestTruncateCommit(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		commit string
		want   string
	}{
		"long hash":  {commit: "0123456789abcdef", want: "01234567"},
		"short hash": {commit: "abc", want: "abc"},
		"unknown":    {commit: "unknown", want: "unknown"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, truncateCommit(tt.commit))
		})
	}
}
