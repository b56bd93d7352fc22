//go:build !windows

package cmd

import (
	"os"
	"os/exec"
	"syscall"
)

// detach puts the child in its own session so it outlives the terminal.
func detach(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}

// terminate asks the server to shut down; it drains in-flight requests.
func terminate(proc *os.Process) error {
	return proc.Signal(syscall.SIGTERM)
}
