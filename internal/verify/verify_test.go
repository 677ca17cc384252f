package verify

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"scenesmith/internal/sandbox"
)

const validProgram = `from manim import *


class Demo(Scene):
    def construct(self):
        ball = Circle(radius=1, color=RED, fill_opacity=0)
        self.play(Create(ball), run_time=1)
`

const brokenProgram = `class Demo(Scene:
    def construct(self)
        self.play(
`

// stubRunner returns a canned result without running anything.
type stubRunner struct {
	result *sandbox.ExecutionResult
	err    error
}

func (s *stubRunner) Run(ctx context.Context, cmd sandbox.Command) (*sandbox.ExecutionResult, error) {
	return s.result, s.err
}

func TestChecker_GrammarPass(t *testing.T) {
	checker := NewChecker(sandbox.NewDirectRunner(), "", time.Second)

	if err := checker.Check(context.Background(), validProgram); err != nil {
		t.Fatalf("Expected valid program to pass, got: %v", err)
	}
}

func TestChecker_GrammarReject(t *testing.T) {
	checker := NewChecker(sandbox.NewDirectRunner(), "", time.Second)

	err := checker.Check(context.Background(), brokenProgram)
	if err == nil {
		t.Fatal("Expected broken program to fail the grammar stage")
	}

	var checkErr *CheckError
	if !errors.As(err, &checkErr) {
		t.Fatalf("Expected *CheckError, got %T", err)
	}
	if checkErr.Stage != StageGrammar {
		t.Errorf("Expected grammar stage, got %s", checkErr.Stage)
	}
}

func TestChecker_SyntaxStageRejects(t *testing.T) {
	// sh exists so the stage is enabled; the stub supplies the outcome.
	stub := &stubRunner{result: &sandbox.ExecutionResult{
		ExitCode: 1,
		Stderr:   "SyntaxError: invalid syntax\n",
	}}
	checker := NewChecker(stub, "sh", time.Second)

	err := checker.Check(context.Background(), validProgram)
	var checkErr *CheckError
	if !errors.As(err, &checkErr) {
		t.Fatalf("Expected *CheckError, got %v", err)
	}
	if checkErr.Stage != StageSyntax {
		t.Errorf("Expected syntax-check stage, got %s", checkErr.Stage)
	}
	if checkErr.Detail != "SyntaxError: invalid syntax" {
		t.Errorf("Expected trimmed stderr detail, got %q", checkErr.Detail)
	}
}

func TestChecker_SyntaxStageTimeout(t *testing.T) {
	stub := &stubRunner{result: &sandbox.ExecutionResult{
		ExitCode:   -1,
		Killed:     true,
		KillReason: "timeout after 1s",
	}}
	checker := NewChecker(stub, "sh", time.Second)

	err := checker.Check(context.Background(), validProgram)
	var checkErr *CheckError
	if !errors.As(err, &checkErr) {
		t.Fatalf("Expected *CheckError, got %v", err)
	}
	if checkErr.Stage != StageSyntax {
		t.Errorf("Expected syntax-check stage, got %s", checkErr.Stage)
	}
}

func TestChecker_SyntaxStageSkippedWhenRunnerFails(t *testing.T) {
	stub := &stubRunner{err: errors.New("cannot start")}
	checker := NewChecker(stub, "sh", time.Second)

	if err := checker.Check(context.Background(), validProgram); err != nil {
		t.Fatalf("Expected skip when the runner cannot start, got: %v", err)
	}
}

func TestChecker_MissingPythonDisablesSyntaxStage(t *testing.T) {
	checker := NewChecker(sandbox.NewDirectRunner(), "definitely-not-python-xyz", time.Second)

	if err := checker.Check(context.Background(), validProgram); err != nil {
		t.Fatalf("Expected grammar-only pass, got: %v", err)
	}
	if err := checker.Check(context.Background(), brokenProgram); err == nil {
		t.Fatal("Grammar stage must still reject broken programs")
	}
}

func TestChecker_RealInterpreter(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not installed")
	}

	checker := NewChecker(sandbox.NewDirectRunner(), "python3", 10*time.Second)

	if err := checker.Check(context.Background(), validProgram); err != nil {
		t.Fatalf("Expected valid program to byte-compile, got: %v", err)
	}

	// Parses under the grammar but rejected by the interpreter.
	err := checker.Check(context.Background(), "return 1\n")
	var checkErr *CheckError
	if !errors.As(err, &checkErr) {
		t.Fatalf("Expected *CheckError, got %v", err)
	}
	if checkErr.Stage != StageSyntax {
		t.Errorf("Expected syntax-check stage to reject, got %s", checkErr.Stage)
	}
}
