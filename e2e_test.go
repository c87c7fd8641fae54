//go:build e2e

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var tripgraphBin string

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "tripgraph-e2e-*")
	if err != nil {
		panic("failed to create temp dir: " + err.Error())
	}
	defer os.RemoveAll(tmp)

	tripgraphBin = filepath.Join(tmp, "tripgraph")
	build := exec.Command("go", "build", "-ldflags", "-X github.com/msalah0e/tripgraph/cmd.version=1.5.0-test", "-o", tripgraphBin, ".")
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		panic("failed to build tripgraph: " + err.Error())
	}

	os.Exit(m.Run())
}

// runTripgraph executes the binary with an isolated HOME directory and an
// unreachable backend.
func runTripgraph(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()
	cmd := exec.Command(tripgraphBin, args...)
	home := t.TempDir()
	cmd.Dir = home
	cmd.Env = append(os.Environ(),
		"HOME="+home,
		"XDG_CONFIG_HOME="+filepath.Join(home, ".config"),
		"TRIPGRAPH_API_URL=http://127.0.0.1:1",
		"TRIPGRAPH_TIMEOUT_SECONDS=2",
		"NO_COLOR=1",
	)

	var outBuf, errBuf strings.Builder
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	exitCode = 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("failed to run tripgraph %v: %v", args, err)
		}
	}
	return outBuf.String(), errBuf.String(), exitCode
}

// --- Core CLI ---

func TestE2E_Version(t *testing.T) {
	out, _, code := runTripgraph(t, "--version")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "1.5.0") {
		t.Errorf("expected version output to contain '1.5.0', got %q", out)
	}
}

func TestE2E_Help(t *testing.T) {
	out, _, code := runTripgraph(t, "--help")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	for _, want := range []string{"Available Commands", "chat", "graph", "serve"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected help to contain %q, got %q", want, out)
		}
	}
}

// --- Graph export ---

func TestE2E_GraphEmptyState(t *testing.T) {
	out, _, code := runTripgraph(t, "graph", "--format", "svg")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "No nodes to display") {
		t.Errorf("expected the empty state, got %q", out)
	}
}

func TestE2E_GraphBackendDown(t *testing.T) {
	_, errOut, code := runTripgraph(t, "graph", "hoi_an", "--format", "dot")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errOut, "Could not reach the travel service") {
		t.Errorf("expected a network failure message, got %q", errOut)
	}
}

// --- Backend commands ---

func TestE2E_HealthBackendDown(t *testing.T) {
	out, _, code := runTripgraph(t, "health")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(out, "backend") {
		t.Errorf("expected the backend probe in output, got %q", out)
	}
}

func TestE2E_AskEmpty(t *testing.T) {
	_, errOut, code := runTripgraph(t, "ask", "   ")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errOut, "question is empty") {
		t.Errorf("expected empty question error, got %q", errOut)
	}
}

// --- Config ---

func TestE2E_ConfigInit(t *testing.T) {
	out, _, code := runTripgraph(t, "config", "init")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "config.toml") {
		t.Errorf("expected the written path, got %q", out)
	}
}

// --- Completion ---

func TestE2E_CompletionZsh(t *testing.T) {
	out, _, code := runTripgraph(t, "completion", "zsh")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if len(out) == 0 {
		t.Error("expected zsh completion output, got empty")
	}
}
