package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/plepperguy/pleppervr-updater/internal/logger"
)

var (
	errUnsafeItem  = errors.New("item must be a relative path inside the instance")
	errItemMissing = errors.New("item not present")
)

// Manager copies backup items between the game directory and a backup directory.
type Manager struct {
	fs afero.Fs
}

// NewManager returns a Manager working on fsys, or on the OS filesystem when fsys is nil.
func NewManager(fsys afero.Fs) *Manager {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	return &Manager{fs: fsys}
}

// Preserve copies every item found under gameDir into backupDir and returns
// the items that were copied. Items missing from gameDir are skipped.
func (m *Manager) Preserve(ctx context.Context, gameDir, backupDir string, items []string) []string {
	if err := m.fs.MkdirAll(backupDir, defaultDirMode); err != nil {
		logger.WarnKV(ctx, "Unable to create backup directory", "path", backupDir, "error", err)
		return nil
	}

	return m.copyItems(ctx, gameDir, backupDir, items, "Backed up", "Failed to back up")
}

// Restore copies every item present in backupDir back into gameDir and
// returns the items that were restored. Items that were never backed up are skipped.
func (m *Manager) Restore(ctx context.Context, backupDir, gameDir string, items []string) []string {
	return m.copyItems(ctx, backupDir, gameDir, items, "Restored", "Failed to restore")
}

// Exists reports whether dir exists as a directory.
func (m *Manager) Exists(dir string) bool {
	ok, err := afero.DirExists(m.fs, dir)

	return err == nil && ok
}

func (m *Manager) copyItems(ctx context.Context, fromDir, toDir string, items []string, done, failed string) []string {
	copied := make([]string, 0, len(items))

	for _, item := range items {
		if err := m.copyItem(fromDir, toDir, item); err != nil {
			if errors.Is(err, errItemMissing) {
				logger.DebugKV(ctx, "Item not present, skipping", "item", item)
				continue
			}

			logger.WarnKV(ctx, failed, "item", item, "error", err)

			continue
		}

		logger.InfoKV(ctx, done, "item", item)

		copied = append(copied, item)
	}

	return copied
}

func (m *Manager) copyItem(fromDir, toDir, item string) error {
	rel, err := cleanItem(item)
	if err != nil {
		return err
	}

	source := filepath.Join(fromDir, rel)
	if _, err = m.fs.Stat(source); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errItemMissing
		}

		return err
	}

	return CopyTree(m.fs, source, filepath.Join(toDir, rel))
}

// cleanItem rejects item names that would leave their root directory.
func cleanItem(item string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(item))

	if rel == "." || filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" ||
		strings.HasPrefix(rel, string(filepath.Separator)) ||
		rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q: %w", item, errUnsafeItem)
	}

	return rel, nil
}
