//go:build !windows

package launcher

import (
	"os/exec"
	"syscall"
)

// detach puts the child into its own session so it survives the updater.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
