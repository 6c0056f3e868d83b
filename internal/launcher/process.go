package launcher

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-ps"
)

// Running reports whether a process with the launcher's executable name is alive.
func (p *Prism) Running() (bool, error) {
	processList, err := ps.Processes()
	if err != nil {
		return false, err
	}

	name := filepath.Base(p.Path)

	for _, process := range processList {
		if sameExecutable(process.Executable(), name) {
			return true, nil
		}
	}

	return false, nil
}

// sameExecutable compares executable names the way the platform does.
func sameExecutable(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}

	return a == b
}
