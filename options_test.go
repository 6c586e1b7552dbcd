package gsc_test

import (
	"os"
	"path/filepath"
	"testing"

	gsc "github.com/riicchhaarrd/libgsc"
	"github.com/stretchr/testify/require"
)

func TestLoadOptionsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "options.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
main_arena_size = 1048576
quota = 500
verbose = true
`), 0o644))

	opts, err := gsc.LoadOptionsFile(path)
	require.NoError(t, err)
	require.Equal(t, 1048576, opts.MainArenaSize)
	require.Equal(t, 500, opts.Quota)
	require.True(t, opts.Verbose)
	// omitted fields stay zero until New's fillDefaults runs.
	require.Equal(t, 0, opts.ScratchArenaSize)
}

func TestLoadOptionsFileMissing(t *testing.T) {
	_, err := gsc.LoadOptionsFile(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.Error(t, err)
}

func TestNewFillsDefaultsForZeroValueOptions(t *testing.T) {
	ctx := gsc.New(gsc.Options{Verbose: true})
	stats := ctx.ArenaStats()
	require.Contains(t, stats, "main:")
	require.Contains(t, stats, "scratch:")
	require.Contains(t, stats, "strings: 7 interned")
}
