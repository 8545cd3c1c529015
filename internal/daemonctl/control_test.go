package daemonctl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLaunchRejectsEmptyExecutable(t *testing.T) {
	if err := Launch("  ", LaunchOptions{}); err == nil {
		t.Fatal("expected error for empty executable path")
	}
}

func TestWaitForClientTimesOut(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "missing.sock")
	start := time.Now()
	if _, err := WaitForClient(socket, 300*time.Millisecond); err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
		t.Fatalf("returned too early: %v", elapsed)
	}
}

func TestWaitForShutdownMissingSocket(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "missing.sock")
	if err := WaitForShutdown(socket, time.Second); err != nil {
		t.Fatalf("WaitForShutdown: %v", err)
	}
}

func TestStopReportsNotRunning(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "missing.sock")
	_, err := Stop(socket, t.TempDir(), time.Second)
	if err != ErrDaemonNotRunning {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
}

func TestReadPIDFile(t *testing.T) {
	dir := t.TempDir()
	if got := ReadPIDFile(dir); got != 0 {
		t.Fatalf("expected 0 for missing file, got %d", got)
	}
	path := filepath.Join(dir, "reelgated.pid")
	if err := os.WriteFile(path, []byte("1234\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := ReadPIDFile(dir); got != 1234 {
		t.Fatalf("expected 1234, got %d", got)
	}
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 8)), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := ReadPIDFile(dir); got != 0 {
		t.Fatalf("expected 0 for malformed file, got %d", got)
	}
}
