package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLayout checks the paths derived from the scratch root.
func TestLayout(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	ws := New(base)

	require.Equal(t, filepath.Join(base, DirName), ws.Root())
	require.Equal(t, filepath.Join(ws.Root(), "latest.mrpack"), ws.ArchivePath(".mrpack"))
	require.Equal(t, filepath.Join(ws.Root(), "config_backup"), ws.BackupDir())
	require.Equal(t, filepath.Join(ws.Root(), "update_log.txt"), ws.LogPath())

	require.Equal(t, filepath.Join(os.TempDir(), DirName), New("").Root())
}

// TestPrepareRemovesLeftovers ensures a previous run's files do not survive Prepare.
func TestPrepareRemovesLeftovers(t *testing.T) {
	t.Parallel()

	ws := New(t.TempDir())
	require.False(t, ws.Exists())

	require.NoError(t, os.MkdirAll(ws.BackupDir(), 0o755))
	require.NoError(t, os.WriteFile(ws.ArchivePath(".mrpack"), []byte("old"), 0o600))

	require.NoError(t, ws.Prepare())
	require.True(t, ws.Exists())

	entries, err := os.ReadDir(ws.Root())
	require.NoError(t, err)
	require.Empty(t, entries)

	require.NoError(t, ws.Remove())
	require.False(t, ws.Exists())
	require.NoError(t, ws.Remove())
}
