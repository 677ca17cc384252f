package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"scenesmith/internal/logging"
	"scenesmith/internal/orchestrator"
)

var (
	concurrency int
	watchDir    string
)

var batchCmd = &cobra.Command{
	Use:   "batch [prompts-file]",
	Short: "Generate scene programs for a file of prompts, or watch a directory",
	Long: `Batch reads one prompt per non-blank line and generates a scene program
for each, writing <stem>_NNN.py files next to the prompts file. Failed
prompts are reported at the end without aborting the rest.

With --watch DIR the command instead watches the directory for created or
modified *.txt prompt files and writes a matching .py program beside each
one as it settles. Press Ctrl+C to stop watching.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 4, "Maximum prompts generated in parallel")
	batchCmd.Flags().StringVar(&watchDir, "watch", "", "Watch this directory for *.txt prompt files instead of reading a prompts file")
}

func runBatch(cmd *cobra.Command, args []string) error {
	orch, err := orchestrator.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}
	defer orch.Close()

	if watchDir != "" {
		return runWatch(orch)
	}
	if len(args) != 1 {
		return fmt.Errorf("a prompts file is required unless --watch is given")
	}
	return runBatchFile(orch, args[0])
}

func runBatchFile(orch *orchestrator.Orchestrator, promptsPath string) error {
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

	data, err := os.ReadFile(promptsPath)
	if err != nil {
		return fmt.Errorf("failed to read prompts file: %w", err)
	}

	var prompts []string
	for _, line := range strings.Split(string(data), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			prompts = append(prompts, trimmed)
		}
	}
	if len(prompts) == 0 {
		return fmt.Errorf("no prompts found in %s", promptsPath)
	}

	dir := filepath.Dir(promptsPath)
	stem := strings.TrimSuffix(filepath.Base(promptsPath), filepath.Ext(promptsPath))
	log := logging.Get(logging.CategoryBatch)
	log.Info("batch: generating %d prompts with concurrency %d", len(prompts), concurrency)

	var mu sync.Mutex
	var failures []string
	addFailure := func(detail string) {
		mu.Lock()
		failures = append(failures, detail)
		mu.Unlock()
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)

	for i, prompt := range prompts {
		outFile := filepath.Join(dir, fmt.Sprintf("%s_%03d.py", stem, i+1))
		eg.Go(func() error {
			out, runErr := orch.Run(egCtx, orchestrator.Input{Prompt: prompt, UserID: userID})
			if runErr != nil {
				addFailure(fmt.Sprintf("%s: %v", filepath.Base(outFile), runErr))
				return nil
			}
			if werr := os.WriteFile(outFile, []byte(out.Program), 0644); werr != nil {
				addFailure(fmt.Sprintf("%s: %v", filepath.Base(outFile), werr))
				return nil
			}
			log.Info("batch: wrote %s (backend %s, quality %.2f)", outFile, out.Backend, out.Quality)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	if len(failures) > 0 {
		for _, detail := range failures {
			fmt.Fprintln(os.Stderr, detail)
		}
		return fmt.Errorf("%d of %d prompts failed", len(failures), len(prompts))
	}
	fmt.Printf("Generated %d scene programs in %s\n", len(prompts), dir)
	return nil
}

func runWatch(orch *orchestrator.Orchestrator) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pw, err := newPromptWatcher(watchDir, orch)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := pw.Start(ctx); err != nil {
		return err
	}

	fmt.Printf("Watching %s for *.txt prompt files. Press Ctrl+C to stop\n", watchDir)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	cancel()
	pw.Stop()
	return nil
}

// promptWatcher watches a directory for *.txt prompt files and generates a
// matching .py scene program beside each one once writes have settled.
type promptWatcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	orch        *orchestrator.Orchestrator
	dir         string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

func newPromptWatcher(dir string, orch *orchestrator.Orchestrator) (*promptWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &promptWatcher{
		watcher:     watcher,
		orch:        orch,
		dir:         dir,
		debounceMap: make(map[string]time.Time),
		debounceDur: 500 * time.Millisecond, // Debounce rapid saves
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching the prompt directory. Non-blocking; the event loop
// runs in a goroutine until Stop or context cancellation.
func (pw *promptWatcher) Start(ctx context.Context) error {
	pw.mu.Lock()
	if pw.running {
		pw.mu.Unlock()
		return nil // Already running
	}
	pw.running = true
	pw.mu.Unlock()

	if err := os.MkdirAll(pw.dir, 0755); err != nil {
		return fmt.Errorf("failed to create watch directory: %w", err)
	}
	if err := pw.watcher.Add(pw.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", pw.dir, err)
	}
	logging.Get(logging.CategoryBatch).Info("watching directory: %s", pw.dir)

	go pw.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to drain.
func (pw *promptWatcher) Stop() {
	pw.mu.Lock()
	if !pw.running {
		pw.mu.Unlock()
		return
	}
	pw.running = false
	pw.mu.Unlock()

	close(pw.stopCh)
	<-pw.doneCh

	if err := pw.watcher.Close(); err != nil {
		logging.Get(logging.CategoryBatch).Error("error closing watcher: %v", err)
	}
	logging.Get(logging.CategoryBatch).Info("watcher stopped")
}

func (pw *promptWatcher) run(ctx context.Context) {
	defer close(pw.doneCh)

	log := logging.Get(logging.CategoryBatch)
	debounceTicker := time.NewTicker(100 * time.Millisecond)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("watcher: context cancelled")
			return

		case <-pw.stopCh:
			log.Info("watcher: stop signal received")
			return

		case event, ok := <-pw.watcher.Events:
			if !ok {
				log.Info("watcher: event channel closed")
				return
			}
			pw.handleEvent(event)

		case err, ok := <-pw.watcher.Errors:
			if !ok {
				log.Info("watcher: error channel closed")
				return
			}
			log.Error("watcher error: %v", err)

		case <-debounceTicker.C:
			pw.processDebouncedEvents(ctx)
		}
	}
}

func (pw *promptWatcher) handleEvent(event fsnotify.Event) {
	// Only prompt files; the generated .py files land in the same
	// directory and must not retrigger generation.
	if !strings.HasSuffix(event.Name, ".txt") {
		return
	}
	if event.Op&fsnotify.Create == 0 && event.Op&fsnotify.Write == 0 {
		return // Ignore remove, rename, chmod
	}

	logging.Get(logging.CategoryBatch).Debug("watcher: %s event for %s", event.Op, event.Name)

	pw.mu.Lock()
	pw.debounceMap[event.Name] = time.Now()
	pw.mu.Unlock()
}

func (pw *promptWatcher) processDebouncedEvents(ctx context.Context) {
	pw.mu.Lock()
	now := time.Now()
	toProcess := make([]string, 0)
	for path, eventTime := range pw.debounceMap {
		if now.Sub(eventTime) >= pw.debounceDur {
			toProcess = append(toProcess, path)
			delete(pw.debounceMap, path)
		}
	}
	pw.mu.Unlock()

	for _, path := range toProcess {
		pw.generateFromFile(ctx, path)
	}
}

func (pw *promptWatcher) generateFromFile(ctx context.Context, path string) {
	log := logging.Get(logging.CategoryBatch)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("watcher: file removed before processing: %s", path)
			return
		}
		log.Error("watcher: failed to read %s: %v", path, err)
		return
	}
	prompt := strings.TrimSpace(string(content))
	if prompt == "" {
		log.Debug("watcher: skipping empty prompt file: %s", path)
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := pw.orch.Run(runCtx, orchestrator.Input{Prompt: prompt, UserID: userID})
	if err != nil {
		log.Error("watcher: generation failed for %s: %v", filepath.Base(path), err)
		return
	}

	outFile := strings.TrimSuffix(path, ".txt") + ".py"
	if err := os.WriteFile(outFile, []byte(out.Program), 0644); err != nil {
		log.Error("watcher: failed to write %s: %v", outFile, err)
		return
	}
	log.Info("watcher: wrote %s (backend %s, quality %.2f)", outFile, out.Backend, out.Quality)
	fmt.Printf("Generated %s\n", outFile)
}
