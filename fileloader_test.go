package gsc_test

import (
	"os"
	"path/filepath"
	"testing"

	gsc "github.com/riicchhaarrd/libgsc"
	"github.com/stretchr/testify/require"
)

func TestDefaultFileLoaderAppendsGscExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "maps.gsc"), []byte(`main() {}`), 0o644))

	b, err := gsc.DefaultFileLoader(filepath.Join(dir, "maps"))
	require.NoError(t, err)
	require.Equal(t, "main() {}", string(b))
}

func TestDefaultFileLoaderRespectsExistingExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "maps.txt"), []byte(`main() {}`), 0o644))

	b, err := gsc.DefaultFileLoader(filepath.Join(dir, "maps.txt"))
	require.NoError(t, err)
	require.Equal(t, "main() {}", string(b))
}

func TestDefaultFileLoaderMissingFile(t *testing.T) {
	_, err := gsc.DefaultFileLoader(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
