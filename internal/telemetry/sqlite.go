package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"scenesmith/internal/logging"
)

// SQLiteStore persists records in a single SQLite database. WAL mode
// keeps concurrent batch workers from tripping over each other.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (or creates) the database at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db, dbPath: path}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	log := logging.Get(logging.CategoryTelemetry)

	if _, err := s.db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		log.Debug("failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := s.db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		log.Debug("failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := s.db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		log.Debug("failed to set sqlite synchronous=NORMAL: %v", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS generation_records (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		prompt TEXT NOT NULL,
		user_id TEXT DEFAULT '',
		backend TEXT DEFAULT '',
		fallback_used INTEGER DEFAULT 0,
		specification TEXT DEFAULT '',
		program TEXT DEFAULT '',
		generation_ok INTEGER DEFAULT 0,
		check_passed INTEGER DEFAULT 0,
		gen_duration_ms INTEGER DEFAULT 0,
		compile_duration_ms INTEGER DEFAULT 0,
		total_duration_ms INTEGER DEFAULT 0,
		quality_score REAL DEFAULT 0,
		training_suitable INTEGER DEFAULT 0,
		substitutions TEXT DEFAULT '',
		error_detail TEXT DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_records_created ON generation_records(created_at);
	CREATE INDEX IF NOT EXISTS idx_records_backend ON generation_records(backend);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// CreateRecord inserts the record, assigning id and timestamp when unset.
func (s *SQLiteStore) CreateRecord(ctx context.Context, rec *GenerationRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generation_records (
			id, created_at, prompt, user_id, backend, fallback_used,
			specification, program, generation_ok, check_passed,
			gen_duration_ms, compile_duration_ms, total_duration_ms,
			quality_score, training_suitable, substitutions, error_detail
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt, rec.Prompt, rec.UserID, rec.Backend, rec.FallbackUsed,
		rec.Specification, rec.Program, rec.GenerationOK, rec.CheckPassed,
		rec.GenDurationMs, rec.CompileDurationMs, rec.TotalDurationMs,
		rec.QualityScore, rec.TrainingSuitable, rec.Substitutions, rec.ErrorDetail,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert record: %w", err)
	}
	return rec.ID, nil
}

// UpdateRecord amends whitelisted columns. Keys are applied in sorted
// order so the generated SQL is stable.
func (s *SQLiteStore) UpdateRecord(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if !updatableColumns[k] {
			return fmt.Errorf("column %q is not updatable", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	assignments := make([]string, len(keys))
	args := make([]interface{}, 0, len(keys)+1)
	for i, k := range keys {
		assignments[i] = k + " = ?"
		args = append(args, fields[k])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE generation_records SET %s WHERE id = ?", strings.Join(assignments, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("record %s not found", id)
	}
	return nil
}

// GetRecord loads one record by id.
func (s *SQLiteStore) GetRecord(ctx context.Context, id string) (*GenerationRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, prompt, user_id, backend, fallback_used,
			specification, program, generation_ok, check_passed,
			gen_duration_ms, compile_duration_ms, total_duration_ms,
			quality_score, training_suitable, substitutions, error_detail
		 FROM generation_records WHERE id = ?`, id)

	var rec GenerationRecord
	err := row.Scan(
		&rec.ID, &rec.CreatedAt, &rec.Prompt, &rec.UserID, &rec.Backend, &rec.FallbackUsed,
		&rec.Specification, &rec.Program, &rec.GenerationOK, &rec.CheckPassed,
		&rec.GenDurationMs, &rec.CompileDurationMs, &rec.TotalDurationMs,
		&rec.QualityScore, &rec.TrainingSuitable, &rec.Substitutions, &rec.ErrorDetail,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("record %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	return &rec, nil
}

// Summary aggregates the whole table.
func (s *SQLiteStore) Summary(ctx context.Context) (*Summary, error) {
	sum := &Summary{BackendCounts: make(map[string]int64)}

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM generation_records").Scan(&sum.TotalRecords); err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT backend, COUNT(*) FROM generation_records WHERE backend != '' GROUP BY backend")
	if err != nil {
		return nil, fmt.Errorf("failed to count backends: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var backend string
		var count int64
		if err := rows.Scan(&backend, &count); err != nil {
			continue
		}
		sum.BackendCounts[backend] = count
	}

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM generation_records WHERE fallback_used = 1").Scan(&sum.FallbackCount); err != nil {
		return nil, fmt.Errorf("failed to count fallbacks: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM generation_records WHERE training_suitable = 1").Scan(&sum.SuitableCount); err != nil {
		return nil, fmt.Errorf("failed to count suitable records: %w", err)
	}

	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx,
		"SELECT AVG(quality_score) FROM generation_records WHERE program != ''").Scan(&avg); err != nil {
		return nil, fmt.Errorf("failed to average quality: %w", err)
	}
	if avg.Valid {
		sum.AverageQuality = avg.Float64
	}

	if sum.TotalRecords > 0 {
		sum.FallbackRate = float64(sum.FallbackCount) / float64(sum.TotalRecords)
	}
	return sum, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
