//go:build !windows

package tsserver

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// buildCommand runs binary directly in a new process group, so that
// termination reaches any helper processes the server forks.
func buildCommand(binary string, args []string) *exec.Cmd {
	cmd := exec.Command(binary, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return cmd
}

// terminate asks the process group to exit.
func terminate(proc *os.Process) error {
	return signalGroup(proc, syscall.SIGTERM)
}

// kill forcefully ends the process group.
func kill(proc *os.Process) error {
	return signalGroup(proc, syscall.SIGKILL)
}

// signalGroup sends sig to the process group led by proc, returning nil
// if the group is already gone.
func signalGroup(proc *os.Process, sig syscall.Signal) error {
	if proc == nil {
		return nil
	}
	err := syscall.Kill(-proc.Pid, sig)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}
