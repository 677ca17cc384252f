package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scenesmith/cmd/scenesmith/ui"
	"scenesmith/internal/orchestrator"
)

var (
	outPath  string
	specPath string
)

var generateCmd = &cobra.Command{
	Use:   "generate [prompt...]",
	Short: "Generate a Manim scene program from a prompt",
	Long: `Generate routes the prompt to a language model backend, compiles the
returned specification into a Manim scene program, and repairs the program
until it passes the sandboxed syntax check. The program is written to
--out, or to stdout when no path is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the scene program to this file instead of stdout")
	generateCmd.Flags().StringVar(&specPath, "spec-out", "", "Also write the scene specification JSON to this file")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	prompt := joinArgs(args)
	logger.Info("Generating scene", zap.String("prompt", prompt))

	orch, err := orchestrator.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}
	defer orch.Close()

	out, err := orch.Run(ctx, orchestrator.Input{Prompt: prompt, UserID: userID})
	if err != nil {
		var exhausted *orchestrator.ExhaustedError
		if errors.As(err, &exhausted) {
			styles := ui.DefaultStyles()
			fmt.Fprintln(os.Stderr, styles.Error.Render("✗ both backends failed, no scene produced"))
			fmt.Fprintln(os.Stderr, styles.Muted.Render("record "+exhausted.RecordID))
		}
		return err
	}

	if specPath != "" {
		data, jerr := out.Spec.JSON()
		if jerr != nil {
			return fmt.Errorf("failed to encode specification: %w", jerr)
		}
		if werr := os.WriteFile(specPath, data, 0644); werr != nil {
			return fmt.Errorf("failed to write specification: %w", werr)
		}
	}

	if outPath != "" {
		if werr := os.WriteFile(outPath, []byte(out.Program), 0644); werr != nil {
			return fmt.Errorf("failed to write program: %w", werr)
		}
	} else {
		fmt.Println(out.Program)
	}

	styles := ui.DefaultStyles()
	fmt.Fprintln(os.Stderr, ui.SummaryLine(styles, out.Backend, out.FallbackUsed, out.Quality, out.RecordID))
	return nil
}
