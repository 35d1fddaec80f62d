package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	captureagent "github.com/camerakit/captureagent"
)

func TestSQLiteRecorderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.sqlite")
	rec, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	defer rec.Close()

	ctx := context.Background()
	start := time.Now()
	if err := rec.CreateJob(ctx, &captureagent.JobRecord{
		JobID:   "job-1",
		Kind:    "capture",
		State:   "running",
		StartAt: start,
	}); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if err := rec.RecordArtifact(ctx, "job-1", "/tmp/1.yuv", "image"); err != nil {
		t.Fatalf("RecordArtifact: %v", err)
	}
	if err := rec.RecordArtifact(ctx, "job-1", "/tmp/1.json", "metadata"); err != nil {
		t.Fatalf("RecordArtifact: %v", err)
	}
	if err := rec.UpdateJob(ctx, "job-1", &captureagent.JobUpdate{
		State:          "failed",
		EndAt:          start.Add(3 * time.Second),
		ElapsedSeconds: 3,
		ErrorMessage:   "timeout",
	}); err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open verification db: %v", err)
	}
	defer db.Close()

	var state, message string
	var elapsed int64
	if err := db.QueryRow(`SELECT state, error_message, elapsed_seconds FROM jobs WHERE job_id = ?`, "job-1").
		Scan(&state, &message, &elapsed); err != nil {
		t.Fatalf("query job: %v", err)
	}
	if state != "failed" || message != "timeout" || elapsed != 3 {
		t.Fatalf("unexpected job row: state=%s message=%s elapsed=%d", state, message, elapsed)
	}

	var artifacts int
	if err := db.QueryRow(`SELECT COUNT(*) FROM artifacts WHERE job_id = ?`, "job-1").Scan(&artifacts); err != nil {
		t.Fatalf("query artifacts: %v", err)
	}
	if artifacts != 2 {
		t.Fatalf("expected 2 artifact rows, got %d", artifacts)
	}
}

func TestSQLiteRecorderCreateJobUpsert(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.sqlite")
	rec, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	defer rec.Close()

	ctx := context.Background()
	rec1 := &captureagent.JobRecord{JobID: "job-2", Kind: "props", State: "running", StartAt: time.Now()}
	if err := rec.CreateJob(ctx, rec1); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if err := rec.CreateJob(ctx, rec1); err != nil {
		t.Fatalf("CreateJob twice should not conflict: %v", err)
	}
}
