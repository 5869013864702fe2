package runstore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"shotscout/internal/director"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped on schema changes; an old database must be
// deleted rather than migrated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different
// release.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Run is one persisted pipeline run.
type Run struct {
	ID             string                    `json:"id"`
	EpisodeTopic   string                    `json:"episode_topic"`
	PlanSource     string                    `json:"plan_source"`
	StartedAt      time.Time                 `json:"started_at"`
	FinishedAt     *time.Time                `json:"finished_at,omitempty"`
	SceneCount     int                       `json:"scene_count"`
	QueryCount     int                       `json:"query_count"`
	CandidateCount int                       `json:"candidate_count"`
	CuratedCount   int                       `json:"curated_count"`
	FallbackCount  int                       `json:"fallback_count"`
	WarningCount   int                       `json:"warning_count"`
	ReportJSON     string                    `json:"report_json,omitempty"`
	Queries        []director.StrategicQuery `json:"queries,omitempty"`
}

// Store manages run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the run database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("runstore: empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Begin inserts a new run row and returns it.
func (s *Store) Begin(ctx context.Context, episodeTopic, planSource string, sceneCount int) (*Run, error) {
	run := &Run{
		ID:           uuid.New().String(),
		EpisodeTopic: episodeTopic,
		PlanSource:   planSource,
		StartedAt:    time.Now().UTC(),
		SceneCount:   sceneCount,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, episode_topic, plan_source, started_at, scene_count)
         VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.EpisodeTopic, run.PlanSource, run.StartedAt.Format(time.RFC3339Nano), run.SceneCount,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Finish records the outcome of a run: counts, the serialized report, and
// the strategic queries that were executed.
func (s *Store) Finish(ctx context.Context, run *Run, report any, queries []director.StrategicQuery) error {
	if run == nil {
		return errors.New("run is nil")
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	queriesJSON, err := json.Marshal(queries)
	if err != nil {
		return fmt.Errorf("marshal queries: %w", err)
	}
	now := time.Now().UTC()
	run.FinishedAt = &now
	run.QueryCount = len(queries)
	run.ReportJSON = string(reportJSON)
	run.Queries = queries

	_, err = s.db.ExecContext(ctx,
		`UPDATE runs
         SET finished_at = ?, query_count = ?, candidate_count = ?, curated_count = ?,
             fallback_count = ?, warning_count = ?, report_json = ?, queries_json = ?
         WHERE id = ?`,
		now.Format(time.RFC3339Nano),
		run.QueryCount,
		run.CandidateCount,
		run.CuratedCount,
		run.FallbackCount,
		run.WarningCount,
		run.ReportJSON,
		string(queriesJSON),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

const runColumns = `id, episode_topic, plan_source, started_at, finished_at,
    scene_count, query_count, candidate_count, curated_count,
    fallback_count, warning_count, report_json, queries_json`

// Get fetches one run by id, or nil when absent.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var startedAt string
	var finishedAt sql.NullString
	var queriesJSON string
	err := row.Scan(
		&run.ID, &run.EpisodeTopic, &run.PlanSource, &startedAt, &finishedAt,
		&run.SceneCount, &run.QueryCount, &run.CandidateCount, &run.CuratedCount,
		&run.FallbackCount, &run.WarningCount, &run.ReportJSON, &queriesJSON,
	)
	if err != nil {
		return nil, err
	}
	if parsed, parseErr := time.Parse(time.RFC3339Nano, startedAt); parseErr == nil {
		run.StartedAt = parsed
	}
	if finishedAt.Valid {
		if parsed, parseErr := time.Parse(time.RFC3339Nano, finishedAt.String); parseErr == nil {
			run.FinishedAt = &parsed
		}
	}
	if queriesJSON != "" && queriesJSON != "[]" {
		if err := json.Unmarshal([]byte(queriesJSON), &run.Queries); err != nil {
			return nil, fmt.Errorf("decode queries: %w", err)
		}
	}
	return &run, nil
}
