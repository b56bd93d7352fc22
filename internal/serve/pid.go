package serve

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/msalah0e/lattice/internal/config"
)

// PidFile returns the path to the server PID file.
func PidFile() string {
	return filepath.Join(config.ConfigDir(), "serve.pid")
}

// IsRunning checks whether a server from this config dir is alive.
func IsRunning() (bool, int) {
	data, err := os.ReadFile(PidFile())
	if err != nil {
		return false, 0
	}
	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil || pid <= 0 {
		return false, 0
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false, 0
	}
	// On Unix, FindProcess always succeeds. Signal 0 checks liveness.
	if err := proc.Signal(syscall.Signal(0)); err == nil {
		return true, pid
	}
	_ = os.Remove(PidFile())
	return false, 0
}

// WritePid records the current process as the running server.
func WritePid() error {
	if err := os.MkdirAll(filepath.Dir(PidFile()), 0o755); err != nil {
		return err
	}
	return os.WriteFile(PidFile(), []byte(fmt.Sprintf("%d", os.Getpid())), 0o644)
}

// RemovePid deletes the PID file.
func RemovePid() {
	_ = os.Remove(PidFile())
}
