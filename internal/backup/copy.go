package backup

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const defaultDirMode os.FileMode = 0o755

var errNotCopyable = errors.New("source is neither a file nor a directory")

// CopyTree copies source to destination. A file is copied to the destination
// path, a directory is copied recursively. Missing parent directories are
// created and existing files are overwritten. Entries that are neither
// regular files nor directories are skipped.
func CopyTree(fsys afero.Fs, source, destination string) error {
	info, err := fsys.Stat(source)
	if err != nil {
		return err
	}

	switch {
	case info.Mode().IsRegular():
		return copyFile(fsys, source, destination, info.Mode().Perm())
	case !info.IsDir():
		return fmt.Errorf("%s: %w", source, errNotCopyable)
	}

	return afero.Walk(fsys, source, func(path string, entry fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}

		target := filepath.Join(destination, rel)

		switch {
		case entry.IsDir():
			return fsys.MkdirAll(target, dirMode(entry.Mode()))
		case entry.Mode().IsRegular():
			return copyFile(fsys, path, target, entry.Mode().Perm())
		default:
			return nil
		}
	})
}

// copyFile writes the contents of source to destination, replacing it.
func copyFile(fsys afero.Fs, source, destination string, perm os.FileMode) (err error) {
	if err = fsys.MkdirAll(filepath.Dir(destination), defaultDirMode); err != nil {
		return err
	}

	in, err := fsys.Open(source)
	if err != nil {
		return err
	}

	defer func() {
		_ = in.Close()
	}()

	out, err := fsys.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", source, err)
	}

	return nil
}

func dirMode(mode os.FileMode) os.FileMode {
	if perm := mode.Perm(); perm != 0 {
		return perm | 0o700
	}

	return defaultDirMode
}
