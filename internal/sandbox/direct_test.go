package sandbox

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func TestDirectRunner_Run(t *testing.T) {
	runner := NewDirectRunner()

	result, err := runner.Run(context.Background(), Command{
		Name: "echo",
		Args: []string{"hello"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", result.ExitCode)
	}
	if !strings.Contains(result.Stdout, "hello") {
		t.Errorf("Expected stdout to contain 'hello', got: %s", result.Stdout)
	}
}

func TestDirectRunner_Timeout(t *testing.T) {
	runner := NewDirectRunner()

	start := time.Now()
	result, err := runner.Run(context.Background(), Command{
		Name:    "sleep",
		Args:    []string{"10"},
		Timeout: 200 * time.Millisecond,
	})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !result.Killed {
		t.Error("Expected command to be killed")
	}
	if !strings.Contains(result.KillReason, "timeout") {
		t.Errorf("Expected kill reason to mention timeout, got: %s", result.KillReason)
	}
	if elapsed > 2*time.Second {
		t.Errorf("Timeout didn't work, elapsed: %v", elapsed)
	}
}

func TestDirectRunner_NonZeroExit(t *testing.T) {
	runner := NewDirectRunner()

	result, err := runner.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "exit 3"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("Expected exit code 3, got %d", result.ExitCode)
	}
	if result.Killed {
		t.Error("Expected command not to be marked killed")
	}
}

func TestDirectRunner_StderrCaptured(t *testing.T) {
	runner := NewDirectRunner()

	result, err := runner.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo oops >&2"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(result.Stderr, "oops") {
		t.Errorf("Expected stderr to contain 'oops', got: %s", result.Stderr)
	}
}

func TestDirectRunner_OutputCap(t *testing.T) {
	runner := NewDirectRunner()

	result, err := runner.Run(context.Background(), Command{
		Name:      "sh",
		Args:      []string{"-c", "printf '0123456789ABCDEF'"},
		MaxOutput: 8,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Stdout != "01234567" {
		t.Errorf("Expected capped stdout, got: %q", result.Stdout)
	}
}

func TestDirectRunner_FreshTempDirRemoved(t *testing.T) {
	runner := NewDirectRunner()

	result, err := runner.Run(context.Background(), Command{
		Name: "pwd",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	dir := strings.TrimSpace(result.Stdout)
	if dir == "" {
		t.Fatal("Expected pwd output")
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("Expected temp dir %s to be removed", dir)
	}
}

func TestDirectRunner_MissingBinary(t *testing.T) {
	runner := NewDirectRunner()

	_, err := runner.Run(context.Background(), Command{
		Name: "definitely-not-a-binary-xyz",
	})
	if err == nil {
		t.Fatal("Expected error for missing binary")
	}
}

func TestDirectRunner_EmptyName(t *testing.T) {
	runner := NewDirectRunner()

	_, err := runner.Run(context.Background(), Command{})
	if err == nil {
		t.Fatal("Expected error for empty command name")
	}
}
