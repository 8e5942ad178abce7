// Package archive persists terminal jobs evicted from the in-memory
// registry to a local SQLite database so recent history survives registry
// eviction and process restarts.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by Get for unknown job ids.
var ErrNotFound = errors.New("archived job not found")

const schema = `
	CREATE TABLE IF NOT EXISTS archived_jobs (
		job_id TEXT PRIMARY KEY,
		automation_id TEXT NOT NULL,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT,
		line_count INTEGER NOT NULL DEFAULT 0,
		log TEXT NOT NULL DEFAULT '',
		archived_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_archived_jobs_archived_at ON archived_jobs(archived_at);
`

// Record is one archived job with its final log. LineCount is derived from
// Log on Save; List populates it without loading log bodies.
type Record struct {
	JobID        string
	AutomationID string
	Name         string
	Status       string
	StartedAt    time.Time
	EndedAt      *time.Time
	Log          []string
	LineCount    int
	ArchivedAt   time.Time
}

// Archive is a SQLite-backed store of evicted terminal jobs.
type Archive struct {
	db *sql.DB
}

// Open opens (creating if needed) the archive database at path.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// NewWithDB wraps an existing database handle. The schema must already
// exist; tests use this with a mock connection.
func NewWithDB(db *sql.DB) *Archive {
	return &Archive{db: db}
}

// Save inserts one evicted job. Job sequence numbers restart with the
// process, so an id from an earlier run may come around again; the newest
// record wins.
func (a *Archive) Save(ctx context.Context, rec Record) error {
	archivedAt := rec.ArchivedAt
	if archivedAt.IsZero() {
		archivedAt = time.Now().UTC()
	}

	var endedAt sql.NullString
	if rec.EndedAt != nil {
		endedAt = sql.NullString{String: rec.EndedAt.UTC().Format(time.RFC3339), Valid: true}
	}

	_, err := a.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO archived_jobs
			(job_id, automation_id, name, status, started_at, ended_at, line_count, log, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.JobID,
		rec.AutomationID,
		rec.Name,
		rec.Status,
		rec.StartedAt.UTC().Format(time.RFC3339),
		endedAt,
		len(rec.Log),
		strings.Join(rec.Log, "\n"),
		archivedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to archive job %s: %w", rec.JobID, err)
	}
	return nil
}

// Get returns one archived job including its stored log.
func (a *Archive) Get(ctx context.Context, jobID string) (Record, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT job_id, automation_id, name, status, started_at, ended_at, line_count, log, archived_at
		FROM archived_jobs
		WHERE job_id = ?`,
		jobID,
	)

	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to get archived job %s: %w", jobID, err)
	}
	return rec, nil
}

// List returns the most recently archived jobs, newest first. The returned
// records carry line counts but not log bodies.
func (a *Archive) List(ctx context.Context, limit int) ([]Record, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT job_id, automation_id, name, status, started_at, ended_at, line_count, archived_at
		FROM archived_jobs
		ORDER BY archived_at DESC, rowid DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived jobs: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec        Record
			startedAt  string
			endedAt    sql.NullString
			lineCount  int
			archivedAt string
		)
		if err := rows.Scan(&rec.JobID, &rec.AutomationID, &rec.Name, &rec.Status,
			&startedAt, &endedAt, &lineCount, &archivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan archived job: %w", err)
		}
		if err := rec.parseTimes(startedAt, endedAt, archivedAt); err != nil {
			return nil, err
		}
		rec.Log = nil
		rec.LineCount = lineCount
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating archived jobs: %w", err)
	}
	return out, nil
}

// Purge deletes archived jobs older than the retention window and reports
// how many rows went away.
func (a *Archive) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)

	result, err := a.db.ExecContext(ctx, `
		DELETE FROM archived_jobs
		WHERE archived_at < ?`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge archived jobs: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get purged row count: %w", err)
	}
	return rows, nil
}

// Ping reports whether the database is reachable.
func (a *Archive) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

func scanRecord(scan func(dest ...any) error) (Record, error) {
	var (
		rec        Record
		startedAt  string
		endedAt    sql.NullString
		logText    string
		archivedAt string
	)
	if err := scan(&rec.JobID, &rec.AutomationID, &rec.Name, &rec.Status,
		&startedAt, &endedAt, &rec.LineCount, &logText, &archivedAt); err != nil {
		return Record{}, err
	}
	if err := rec.parseTimes(startedAt, endedAt, archivedAt); err != nil {
		return Record{}, err
	}
	if logText == "" && rec.LineCount == 0 {
		rec.Log = []string{}
	} else {
		rec.Log = strings.Split(logText, "\n")
	}
	return rec, nil
}

func (r *Record) parseTimes(startedAt string, endedAt sql.NullString, archivedAt string) error {
	t, err := time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return fmt.Errorf("invalid started_at for job %s: %w", r.JobID, err)
	}
	r.StartedAt = t

	if endedAt.Valid {
		e, err := time.Parse(time.RFC3339, endedAt.String)
		if err != nil {
			return fmt.Errorf("invalid ended_at for job %s: %w", r.JobID, err)
		}
		r.EndedAt = &e
	}

	at, err := time.Parse(time.RFC3339, archivedAt)
	if err != nil {
		return fmt.Errorf("invalid archived_at for job %s: %w", r.JobID, err)
	}
	r.ArchivedAt = at
	return nil
}
