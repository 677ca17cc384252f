// Package telemetry persists one GenerationRecord per orchestration in a
// create-then-amend pattern: the record is created with placeholders the
// moment work starts, then amended as stages complete. Storage failures
// are the caller's to log; nothing here is on the critical path of scene
// generation.
package telemetry

import (
	"context"
	"time"
)

// GenerationRecord is the full trace of one prompt-to-program run.
type GenerationRecord struct {
	ID                string
	CreatedAt         time.Time
	Prompt            string
	UserID            string
	Backend           string
	FallbackUsed      bool
	Specification     string // serialized JSON
	Program           string
	GenerationOK      bool
	CheckPassed       bool
	GenDurationMs     int64
	CompileDurationMs int64
	TotalDurationMs   int64
	QualityScore      float64
	TrainingSuitable  bool
	Substitutions     string // "; "-joined notes
	ErrorDetail       string
}

// Summary aggregates the record table for the stats command.
type Summary struct {
	TotalRecords   int64
	BackendCounts  map[string]int64
	FallbackCount  int64
	FallbackRate   float64
	AverageQuality float64
	SuitableCount  int64
}

// Store is the persistence contract. UpdateRecord applies a partial
// amendment; only whitelisted columns are accepted.
type Store interface {
	CreateRecord(ctx context.Context, rec *GenerationRecord) (string, error)
	UpdateRecord(ctx context.Context, id string, fields map[string]interface{}) error
	GetRecord(ctx context.Context, id string) (*GenerationRecord, error)
	Summary(ctx context.Context) (*Summary, error)
	Close() error
}

// Columns that UpdateRecord may amend. Identity and creation fields are
// immutable once written.
var updatableColumns = map[string]bool{
	"backend":             true,
	"fallback_used":       true,
	"specification":       true,
	"program":             true,
	"generation_ok":       true,
	"check_passed":        true,
	"gen_duration_ms":     true,
	"compile_duration_ms": true,
	"total_duration_ms":   true,
	"quality_score":       true,
	"training_suitable":   true,
	"substitutions":       true,
	"error_detail":        true,
}
