package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

const (
	// instancesDirName is the folder under the data directory holding instances.
	instancesDirName = "instances"
	// gameDirName is the folder inside an instance holding saves and settings.
	gameDirName = "minecraft"
)

var (
	// ErrNotFound is returned when the launcher executable is missing.
	ErrNotFound = errors.New("launcher executable not found")
	// errNotExecutable is returned when the launcher path is a directory.
	errNotExecutable = errors.New("launcher path is a directory")
)

// Prism invokes a Prism Launcher installation.
type Prism struct {
	// Path is the launcher executable.
	Path string
	// DataDir is the launcher data directory passed with -d.
	DataDir string
	// Stdout and Stderr receive the output of the import process.
	Stdout io.Writer
	Stderr io.Writer
}

// NewPrism returns a Prism whose import output goes to the current console.
func NewPrism(path, dataDir string) *Prism {
	return &Prism{
		Path:    path,
		DataDir: dataDir,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// InstanceDir returns the on-disk directory of the named instance.
func InstanceDir(dataDir, instanceName string) string {
	return filepath.Join(dataDir, instancesDirName, instanceName)
}

// GameDir returns the directory inside an instance that holds user state.
func GameDir(instanceDir string) string {
	return filepath.Join(instanceDir, gameDirName)
}

// Exists checks that the launcher executable is present.
func (p *Prism) Exists() error {
	info, err := os.Stat(p.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, p.Path)
		}

		return err
	}

	if info.IsDir() {
		return fmt.Errorf("%s: %w", p.Path, errNotExecutable)
	}

	return nil
}

// ImportArgs returns the arguments importing archive into the data directory.
func (p *Prism) ImportArgs(archive string) []string {
	return []string{"-d", p.DataDir, "-I", archive}
}

// LaunchArgs returns the arguments starting the named instance.
func (p *Prism) LaunchArgs(instanceName string) []string {
	return []string{"-d", p.DataDir, "-l", instanceName}
}

// Import runs the launcher to import archive and waits for it to exit.
// A process that starts and exits returns its exit code with a nil error;
// err is set only when the process could not be run.
func (p *Prism) Import(ctx context.Context, archive string) (int, error) {
	cmd := exec.CommandContext(ctx, p.Path, p.ImportArgs(archive)...)
	cmd.Stdout = p.Stdout
	cmd.Stderr = p.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}

	return -1, fmt.Errorf("run import: %w", err)
}

// Launch starts the named instance and returns without waiting.
// The child is detached from this process and outlives it.
func (p *Prism) Launch(instanceName string) error {
	//nolint:noctx // The game must keep running after the updater exits.
	cmd := exec.Command(p.Path, p.LaunchArgs(instanceName)...)
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start launcher: %w", err)
	}

	return cmd.Process.Release()
}
