//go:build windows

package launcher

import (
	"os/exec"
	"syscall"
)

// detachedProcess is the DETACHED_PROCESS creation flag.
const detachedProcess = 0x00000008

// detach starts the child without a console and in its own process group.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | detachedProcess,
	}
}
