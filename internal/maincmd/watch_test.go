package maincmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mna/mainer"
	"github.com/riicchhaarrd/libgsc/internal/maincmd"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestWatchTeardownLeavesNoGoroutines exercises the watch command's
// lifecycle: its watch and tick goroutines (errgroup-coordinated, per
// SPEC_FULL.md §6) must both exit once ctx is canceled, leaving nothing
// behind for goleak to catch (SPEC_FULL.md §8 "scheduler tests that spawn
// background goroutines... are wrapped in goleak's leak check").
func TestWatchTeardownLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "main.gsc")
	require.NoError(t, os.WriteFile(path, []byte(`main() { level.ran = 1; }`), 0o600))

	var c maincmd.Cmd
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx, stdio, []string{path}) }()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return within 2s of ctx cancellation")
	}
}
