// Package storage records job lifecycle and produced artifacts in a local
// SQLite database, implementing captureagent.Recorder.
package storage

import (
	"context"
	"database/sql"

	pkgerrors "github.com/pkg/errors"
	_ "modernc.org/sqlite"

	captureagent "github.com/camerakit/captureagent"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	job_id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	state TEXT NOT NULL,
	start_at INTEGER NOT NULL,
	end_at INTEGER,
	elapsed_seconds INTEGER,
	error_message TEXT
);
CREATE TABLE IF NOT EXISTS artifacts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id TEXT NOT NULL,
	path TEXT NOT NULL,
	kind TEXT NOT NULL,
	created_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
);
CREATE INDEX IF NOT EXISTS idx_artifacts_job ON artifacts(job_id);
`

// SQLiteRecorder persists job and artifact rows via database/sql.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "storage: open sqlite db failed")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, pkgerrors.Wrap(err, "storage: init schema failed")
	}
	return &SQLiteRecorder{db: db}, nil
}

var _ captureagent.Recorder = (*SQLiteRecorder)(nil)

// CreateJob inserts the initial row for a job.
func (r *SQLiteRecorder) CreateJob(ctx context.Context, rec *captureagent.JobRecord) error {
	if rec == nil {
		return pkgerrors.New("storage: job record is nil")
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO jobs (job_id, kind, state, start_at) VALUES (?, ?, ?, ?)`,
		rec.JobID, rec.Kind, rec.State, rec.StartAt.Unix())
	return pkgerrors.Wrap(err, "storage: create job failed")
}

// UpdateJob records a job's terminal state.
func (r *SQLiteRecorder) UpdateJob(ctx context.Context, jobID string, upd *captureagent.JobUpdate) error {
	if upd == nil {
		return pkgerrors.New("storage: job update is nil")
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET state = ?, end_at = ?, elapsed_seconds = ?, error_message = ? WHERE job_id = ?`,
		upd.State, upd.EndAt.Unix(), upd.ElapsedSeconds, upd.ErrorMessage, jobID)
	return pkgerrors.Wrap(err, "storage: update job failed")
}

// RecordArtifact appends one produced artifact for a job.
func (r *SQLiteRecorder) RecordArtifact(ctx context.Context, jobID, path, kind string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO artifacts (job_id, path, kind) VALUES (?, ?, ?)`,
		jobID, path, kind)
	return pkgerrors.Wrap(err, "storage: record artifact failed")
}

// Close releases the database handle.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
