// Package verify decides whether a compiled program is plausibly valid
// Python before anything heavier touches it. The check has two stages:
// an in-process grammar parse, then a time-boxed byte-compile in the
// sandbox. Stage two is best effort; stage one always runs.
package verify

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"scenesmith/internal/config"
	"scenesmith/internal/logging"
	"scenesmith/internal/sandbox"
)

const (
	StageGrammar = "grammar"
	StageSyntax  = "syntax-check"
)

// CheckError reports which stage rejected the program and why.
type CheckError struct {
	Stage  string
	Detail string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s check failed: %s", e.Stage, e.Detail)
}

// Checker runs the two-stage validity check. It is safe for concurrent
// use; the underlying grammar parser is not, so parses serialize.
type Checker struct {
	mu        sync.Mutex
	parser    *sitter.Parser
	runner    sandbox.Runner
	pythonBin string
	timeout   time.Duration
}

// NewChecker builds a checker. pythonBin may be empty or unresolvable,
// which disables the byte-compile stage and leaves the grammar stage
// authoritative.
func NewChecker(runner sandbox.Runner, pythonBin string, timeout time.Duration) *Checker {
	log := logging.Get(logging.CategoryVerify)

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	if pythonBin != "" {
		if _, err := exec.LookPath(pythonBin); err != nil {
			log.Warn("python binary %q not found, syntax-check stage disabled", pythonBin)
			pythonBin = ""
		}
	} else {
		log.Warn("no python binary configured, syntax-check stage disabled")
	}

	return &Checker{
		parser:    parser,
		runner:    runner,
		pythonBin: pythonBin,
		timeout:   timeout,
	}
}

// NewCheckerFromConfig builds a checker from the sandbox configuration.
func NewCheckerFromConfig(cfg *config.Config, runner sandbox.Runner) *Checker {
	return NewChecker(runner, cfg.Sandbox.Python, cfg.GetSandboxTimeout())
}

// Check validates the program. A nil return means both stages passed or
// were skipped; the only error type returned is *CheckError.
func (c *Checker) Check(ctx context.Context, program string) error {
	if err := c.checkGrammar(ctx, program); err != nil {
		return err
	}
	return c.checkSyntax(ctx, program)
}

func (c *Checker) checkGrammar(ctx context.Context, program string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tree, err := c.parser.ParseCtx(ctx, nil, []byte(program))
	if err != nil {
		return &CheckError{Stage: StageGrammar, Detail: fmt.Sprintf("parser failed: %v", err)}
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}

	detail := "program does not parse"
	if bad := firstProblem(root); bad != nil {
		detail = fmt.Sprintf("parse error at line %d", bad.StartPoint().Row+1)
	}
	return &CheckError{Stage: StageGrammar, Detail: detail}
}

// firstProblem walks the tree for the first error or missing node.
func firstProblem(node *sitter.Node) *sitter.Node {
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if found := firstProblem(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

func (c *Checker) checkSyntax(ctx context.Context, program string) error {
	log := logging.Get(logging.CategoryVerify)

	if c.pythonBin == "" {
		log.Debug("syntax-check stage skipped, grammar stage is authoritative")
		return nil
	}

	dir, err := os.MkdirTemp("", "scenesmith-check-*")
	if err != nil {
		log.Warn("could not create check dir, skipping syntax-check: %v", err)
		return nil
	}
	defer os.RemoveAll(dir)

	if err := os.WriteFile(filepath.Join(dir, "scene.py"), []byte(program), 0644); err != nil {
		log.Warn("could not write program, skipping syntax-check: %v", err)
		return nil
	}

	result, err := c.runner.Run(ctx, sandbox.Command{
		Name:    c.pythonBin,
		Args:    []string{"-m", "py_compile", "scene.py"},
		Dir:     dir,
		Timeout: c.timeout,
	})
	if err != nil {
		log.Warn("could not start %s, skipping syntax-check: %v", c.pythonBin, err)
		return nil
	}

	if result.Killed {
		return &CheckError{Stage: StageSyntax, Detail: result.KillReason}
	}
	if result.ExitCode != 0 {
		detail := strings.TrimSpace(result.Stderr)
		if detail == "" {
			detail = fmt.Sprintf("exit code %d", result.ExitCode)
		}
		return &CheckError{Stage: StageSyntax, Detail: detail}
	}
	return nil
}
