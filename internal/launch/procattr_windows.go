//go:build windows

package launch

import (
	"os/exec"
	"syscall"
)

// detachProcess sets the Windows process creation flags so the game
// runs detached from the launching console, matching a native
// launcher's behavior on release builds.
func detachProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | 0x00000008, // + DETACHED_PROCESS
	}
}
