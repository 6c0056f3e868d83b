// Package workspace manages the scratch directory of a single updater run.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DirName is the scratch directory created under the temp location.
	DirName = "PlepperVR_Update"

	archiveBaseName = "latest"
	backupDirName   = "config_backup"
	logFileName     = "update_log.txt"

	dirMode os.FileMode = 0o755
)

// Workspace is the scratch directory holding the downloaded archive, the
// backup subtree and the run log. Only one run uses it at a time.
type Workspace struct {
	root string
}

// New returns a Workspace under base, or under os.TempDir when base is empty.
func New(base string) *Workspace {
	if base == "" {
		base = os.TempDir()
	}

	return &Workspace{root: filepath.Join(base, DirName)}
}

// Root returns the scratch directory path.
func (w *Workspace) Root() string {
	return w.root
}

// ArchivePath returns where the downloaded archive is stored.
func (w *Workspace) ArchivePath(extension string) string {
	return filepath.Join(w.root, archiveBaseName+extension)
}

// BackupDir returns the directory receiving preserved instance items.
func (w *Workspace) BackupDir() string {
	return filepath.Join(w.root, backupDirName)
}

// LogPath returns the log file mirrored from the console.
func (w *Workspace) LogPath() string {
	return filepath.Join(w.root, logFileName)
}

// Prepare removes anything left by a previous run and recreates the directory.
func (w *Workspace) Prepare() error {
	if err := os.RemoveAll(w.root); err != nil {
		return fmt.Errorf("remove stale workspace: %w", err)
	}

	if err := os.MkdirAll(w.root, dirMode); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}

	return nil
}

// Exists reports whether the scratch directory is on disk.
func (w *Workspace) Exists() bool {
	info, err := os.Stat(w.root)

	return err == nil && info.IsDir()
}

// Remove deletes the scratch directory and everything inside it.
func (w *Workspace) Remove() error {
	return os.RemoveAll(w.root)
}
