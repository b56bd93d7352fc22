//go:build e2e

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var latticeBin string

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "lattice-e2e-*")
	if err != nil {
		panic("failed to create temp dir: " + err.Error())
	}
	defer os.RemoveAll(tmp)

	latticeBin = filepath.Join(tmp, "lattice")
	build := exec.Command("go", "build", "-ldflags", "-X github.com/msalah0e/lattice/cmd.version=0.3.0-test", "-o", latticeBin, ".")
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		panic("failed to build lattice: " + err.Error())
	}

	os.Exit(m.Run())
}

// runLattice executes the binary with an isolated HOME directory.
func runLattice(t *testing.T, home string, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()
	cmd := exec.Command(latticeBin, args...)
	if home == "" {
		home = t.TempDir()
	}
	cmd.Env = append(os.Environ(),
		"HOME="+home,
		"XDG_CONFIG_HOME="+filepath.Join(home, ".config"),
		"NO_COLOR=1",
	)

	var outBuf, errBuf strings.Builder
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("failed to run lattice %v: %v", args, err)
		}
	}
	return outBuf.String(), errBuf.String(), exitCode
}

func TestE2E_Version(t *testing.T) {
	out, _, code := runLattice(t, "", "--version")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "0.3.0") {
		t.Errorf("expected version output to contain '0.3.0', got %q", out)
	}
}

func TestE2E_Help(t *testing.T) {
	out, _, code := runLattice(t, "", "--help")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	for _, sub := range []string{"run", "bench", "serve", "geometry", "config"} {
		if !strings.Contains(out, sub) {
			t.Errorf("help should list %q", sub)
		}
	}
}

func TestE2E_ConfigInitAndShow(t *testing.T) {
	home := t.TempDir()
	out, _, code := runLattice(t, home, "config", "init")
	if code != 0 {
		t.Fatalf("config init exit %d: %s", code, out)
	}
	if _, err := os.Stat(filepath.Join(home, ".config", "lattice", "config.toml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	out, _, code = runLattice(t, home, "config", "show")
	if code != 0 {
		t.Fatalf("config show exit %d", code)
	}
	if !strings.Contains(out, "[projector]") || !strings.Contains(out, "max_stable_edges") {
		t.Errorf("unexpected config output: %q", out)
	}
}

func TestE2E_BadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	_ = os.WriteFile(path, []byte("seed = ["), 0o644)
	_, errOut, code := runLattice(t, "", "--config", path, "geometry", "show")
	if code == 0 {
		t.Fatal("expected non-zero exit for a malformed config")
	}
	if !strings.Contains(errOut, "bad.toml") {
		t.Errorf("error should name the file, got %q", errOut)
	}
}

func TestE2E_GeometryShow(t *testing.T) {
	out, _, code := runLattice(t, "", "geometry", "show")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "64 (16 core)") || !strings.Contains(out, "112 structural") {
		t.Errorf("unexpected geometry summary: %q", out)
	}
}

func TestE2E_GeometryFetchUnreachable(t *testing.T) {
	out, _, code := runLattice(t, "", "geometry", "fetch", "http://127.0.0.1:1")
	if code != 0 {
		t.Fatalf("failed fetches should not fail the command, got exit %d", code)
	}
	if !strings.Contains(out, "/nodes") || !strings.Contains(out, "Nodes:   0") {
		t.Errorf("unexpected fetch report: %q", out)
	}
}

func TestE2E_GeometryExportMissing(t *testing.T) {
	_, errOut, code := runLattice(t, "", "geometry", "export", "nope")
	if code == 0 {
		t.Fatal("expected non-zero exit")
	}
	if !strings.Contains(errOut, "nope") {
		t.Errorf("error should name the geometry, got %q", errOut)
	}
}

func TestE2E_RunHeadless(t *testing.T) {
	out, _, code := runLattice(t, "", "run", "--headless", "--duration", "400ms", "--seed", "42")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "seed      42") || !strings.Contains(out, "frames in") {
		t.Errorf("unexpected headless output: %q", out)
	}
}

func TestE2E_Bench(t *testing.T) {
	out, _, code := runLattice(t, "", "bench", "--seeds", "3,5", "--frames", "240", "--plot")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "Avg force") || !strings.Contains(out, "mean force, seed 3") {
		t.Errorf("unexpected bench output: %q", out)
	}
}

func TestE2E_BenchBadSeeds(t *testing.T) {
	_, _, code := runLattice(t, "", "bench", "--seeds", "a,b")
	if code == 0 {
		t.Fatal("expected non-zero exit")
	}
}

func TestE2E_ServeStatus(t *testing.T) {
	out, _, code := runLattice(t, "", "serve", "status")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "not running") {
		t.Errorf("unexpected status: %q", out)
	}
}

func TestE2E_CompletionZsh(t *testing.T) {
	out, _, code := runLattice(t, "", "completion", "zsh")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "lattice") {
		t.Error("completion script should mention lattice")
	}
}
