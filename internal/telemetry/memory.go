package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"scenesmith/internal/config"
)

// MemoryStore keeps records in process memory. It backs tests and runs
// where no database path is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*GenerationRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*GenerationRecord)}
}

// NewStoreFromConfig picks SQLite when a database path is configured and
// memory otherwise.
func NewStoreFromConfig(cfg *config.Config) (Store, error) {
	if cfg.Telemetry.DatabasePath == "" {
		return NewMemoryStore(), nil
	}
	return NewSQLiteStore(cfg.Telemetry.DatabasePath)
}

// CreateRecord stores a copy of the record, assigning id and timestamp
// when unset.
func (s *MemoryStore) CreateRecord(ctx context.Context, rec *GenerationRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	stored := *rec
	s.records[rec.ID] = &stored
	return rec.ID, nil
}

// UpdateRecord applies whitelisted fields to the stored record.
func (s *MemoryStore) UpdateRecord(ctx context.Context, id string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("record %s not found", id)
	}

	for k, v := range fields {
		if !updatableColumns[k] {
			return fmt.Errorf("column %q is not updatable", k)
		}
		switch k {
		case "backend":
			rec.Backend = asString(v)
		case "fallback_used":
			rec.FallbackUsed = asBool(v)
		case "specification":
			rec.Specification = asString(v)
		case "program":
			rec.Program = asString(v)
		case "generation_ok":
			rec.GenerationOK = asBool(v)
		case "check_passed":
			rec.CheckPassed = asBool(v)
		case "gen_duration_ms":
			rec.GenDurationMs = asInt64(v)
		case "compile_duration_ms":
			rec.CompileDurationMs = asInt64(v)
		case "total_duration_ms":
			rec.TotalDurationMs = asInt64(v)
		case "quality_score":
			rec.QualityScore = asFloat64(v)
		case "training_suitable":
			rec.TrainingSuitable = asBool(v)
		case "substitutions":
			rec.Substitutions = asString(v)
		case "error_detail":
			rec.ErrorDetail = asString(v)
		}
	}
	return nil
}

// GetRecord returns a copy of the stored record.
func (s *MemoryStore) GetRecord(ctx context.Context, id string) (*GenerationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("record %s not found", id)
	}
	out := *rec
	return &out, nil
}

// Summary aggregates all records.
func (s *MemoryStore) Summary(ctx context.Context) (*Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := &Summary{BackendCounts: make(map[string]int64)}
	var qualityTotal float64
	var qualityCount int64

	for _, rec := range s.records {
		sum.TotalRecords++
		if rec.Backend != "" {
			sum.BackendCounts[rec.Backend]++
		}
		if rec.FallbackUsed {
			sum.FallbackCount++
		}
		if rec.TrainingSuitable {
			sum.SuitableCount++
		}
		if rec.Program != "" {
			qualityTotal += rec.QualityScore
			qualityCount++
		}
	}

	if qualityCount > 0 {
		sum.AverageQuality = qualityTotal / float64(qualityCount)
	}
	if sum.TotalRecords > 0 {
		sum.FallbackRate = float64(sum.FallbackCount) / float64(sum.TotalRecords)
	}
	return sum, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func asBool(v interface{}) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return asInt64(v) != 0
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

func asFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}
