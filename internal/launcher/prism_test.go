package launcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakePrism writes a shell script that records its arguments and exits with code.
// Tests executing it do not run in parallel: a concurrent fork may still hold
// the script open for writing and make exec fail with ETXTBSY.
func fakePrism(t *testing.T, code int) (*Prism, string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell script launcher fake requires a POSIX shell")
	}

	dir := t.TempDir()
	record := filepath.Join(dir, "args.txt")
	script := filepath.Join(dir, "prismlauncher")
	body := fmt.Sprintf("#!/bin/sh\necho \"$@\" >> %q\nexit %d\n", record, code)
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))

	p := NewPrism(script, filepath.Join(dir, "data"))
	p.Stdout = io.Discard
	p.Stderr = io.Discard

	return p, record
}

// TestPaths checks the instance layout helpers and argument patterns.
func TestPaths(t *testing.T) {
	t.Parallel()

	instance := InstanceDir("/data", "PlepperVR")
	require.Equal(t, filepath.Join("/data", "instances", "PlepperVR"), instance)
	require.Equal(t, filepath.Join(instance, "minecraft"), GameDir(instance))

	p := NewPrism("/bin/prism", "/data")
	require.Equal(t, []string{"-d", "/data", "-I", "/tmp/latest.mrpack"}, p.ImportArgs("/tmp/latest.mrpack"))
	require.Equal(t, []string{"-d", "/data", "-l", "PlepperVR"}, p.LaunchArgs("PlepperVR"))
}

// TestExists covers present, missing and directory launcher paths.
func TestExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	executable := filepath.Join(dir, "prismlauncher")
	require.NoError(t, os.WriteFile(executable, []byte("x"), 0o755))

	require.NoError(t, NewPrism(executable, dir).Exists())
	require.ErrorIs(t, NewPrism(filepath.Join(dir, "absent"), dir).Exists(), ErrNotFound)
	require.Error(t, NewPrism(dir, dir).Exists())
}

// TestImportExitCodes ensures exit codes are reported and the arguments are passed through.
func TestImportExitCodes(t *testing.T) {
	ok, record := fakePrism(t, 0)

	code, err := ok.Import(context.Background(), "/tmp/latest.mrpack")
	require.NoError(t, err)
	require.Zero(t, code)

	args, err := os.ReadFile(record)
	require.NoError(t, err)
	require.Equal(t, "-d "+ok.DataDir+" -I /tmp/latest.mrpack\n", string(args))

	failing, _ := fakePrism(t, 1)

	code, err = failing.Import(context.Background(), "/tmp/latest.mrpack")
	require.NoError(t, err)
	require.Equal(t, 1, code)
}

// TestImportStartFailure reports a launcher that cannot be executed.
func TestImportStartFailure(t *testing.T) {
	t.Parallel()

	p := NewPrism(filepath.Join(t.TempDir(), "absent"), t.TempDir())

	code, err := p.Import(context.Background(), "x.mrpack")
	require.Error(t, err)
	require.Equal(t, -1, code)
}

// TestLaunchDetached starts the instance without waiting for the child.
func TestLaunchDetached(t *testing.T) {
	p, record := fakePrism(t, 0)

	require.NoError(t, p.Launch("PlepperVR"))

	require.Eventually(t, func() bool {
		args, err := os.ReadFile(record)
		return err == nil && strings.Contains(string(args), "-l PlepperVR")
	}, 5*time.Second, 20*time.Millisecond)

	require.Error(t, NewPrism(filepath.Join(t.TempDir(), "absent"), "").Launch("PlepperVR"))
}

// TestRunning finds the current test binary in the process list.
func TestRunning(t *testing.T) {
	t.Parallel()

	if runtime.GOOS != "linux" {
		t.Skip("process names are compared against /proc on linux only")
	}

	self, err := os.Executable()
	require.NoError(t, err)

	running, err := NewPrism(self, "").Running()
	require.NoError(t, err)
	require.True(t, running)

	running, err = NewPrism("/opt/definitely-not-running-prism", "").Running()
	require.NoError(t, err)
	require.False(t, running)
}
