//go:build !windows

package launch

import "os/exec"

// detachProcess is a no-op outside Windows: POSIX process groups don't
// need the same console-detachment dance.
func detachProcess(cmd *exec.Cmd) {}
