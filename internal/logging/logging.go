// Package logging provides categorized logging for scenesmith.
// Every subsystem logs through a named child of one shared zap logger;
// the CLI installs the real logger at startup and tests run silent.
package logging

import (
	"sync"

	"go.uber.org/zap"
)

// Category identifies a scenesmith subsystem.
type Category string

const (
	CategoryBackend      Category = "backend"      // Generation backends, provider clients
	CategoryExtract      Category = "extract"      // JSON extraction from raw model output
	CategoryCompile      Category = "compile"      // Specification -> program emission
	CategoryRepair       Category = "repair"       // Simplification ladder
	CategoryVerify       Category = "verify"       // Grammar + syntax-check stages
	CategorySandbox      Category = "sandbox"      // Isolated subprocess execution
	CategoryOrchestrator Category = "orchestrator" // Selection, fallback, scoring
	CategoryTelemetry    Category = "telemetry"    // GenerationRecord store
	CategoryBatch        Category = "batch"        // Batch/watch CLI mode
	CategorySession      Category = "session"      // Interactive session CLI mode
)

// Logger is a category-scoped printf-style logger.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu      sync.RWMutex
	root    = zap.NewNop()
	loggers = make(map[Category]*Logger)
)

// Initialize installs the process-wide base logger. Call once at startup,
// before any subsystem starts logging; later calls replace the base and
// invalidate cached category loggers.
func Initialize(base *zap.Logger) {
	if base == nil {
		base = zap.NewNop()
	}
	mu.Lock()
	defer mu.Unlock()
	root = base
	loggers = make(map[Category]*Logger)
}

// Sync flushes the underlying logger. Safe to call on shutdown paths.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return root.Sync()
}

// Get returns the logger for a category, creating it on first use.
func Get(c Category) *Logger {
	mu.RLock()
	l, ok := loggers[c]
	mu.RUnlock()
	if ok {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[c]; ok {
		return l
	}
	l = &Logger{
		category: c,
		sugar:    root.Named(string(c)).Sugar(),
	}
	loggers[c] = l
	return l
}

// Category returns the category this logger is scoped to.
func (l *Logger) Category() Category { return l.category }

func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Orchestrator logs an info line on the orchestrator category.
func Orchestrator(format string, args ...interface{}) {
	Get(CategoryOrchestrator).Info(format, args...)
}

// Backend logs an info line on the backend category.
func Backend(format string, args ...interface{}) {
	Get(CategoryBackend).Info(format, args...)
}

// Repair logs an info line on the repair category.
func Repair(format string, args ...interface{}) {
	Get(CategoryRepair).Info(format, args...)
}
