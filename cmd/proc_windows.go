//go:build windows

package cmd

import (
	"os"
	"os/exec"
)

func detach(c *exec.Cmd) {}

// terminate kills the server outright; Windows has no SIGTERM delivery.
func terminate(proc *os.Process) error {
	return proc.Kill()
}
