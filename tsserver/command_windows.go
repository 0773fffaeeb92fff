//go:build windows

package tsserver

import (
	"errors"
	"os"
	"os/exec"
)

// buildCommand runs binary through the command interpreter so that npm's
// .cmd shims resolve.
func buildCommand(binary string, args []string) *exec.Cmd {
	return exec.Command("cmd", append([]string{"/c", binary}, args...)...)
}

// terminate ends the process. Windows has no SIGTERM equivalent for
// console children, so it is the same as kill.
func terminate(proc *os.Process) error {
	return kill(proc)
}

// kill forcefully ends the process.
func kill(proc *os.Process) error {
	if proc == nil {
		return nil
	}
	err := proc.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
