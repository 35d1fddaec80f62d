package captureagent

import (
	"context"
	"time"
)

// JobRecord describes a job at creation time.
type JobRecord struct {
	JobID   string
	Kind    string
	State   string
	StartAt time.Time
}

// JobUpdate describes a job's terminal state.
type JobUpdate struct {
	State          string
	EndAt          time.Time
	ElapsedSeconds int64
	ErrorMessage   string
}

// Recorder mirrors job lifecycle and produced artifacts to external storage.
type Recorder interface {
	CreateJob(ctx context.Context, rec *JobRecord) error
	UpdateJob(ctx context.Context, jobID string, upd *JobUpdate) error
	RecordArtifact(ctx context.Context, jobID, path, kind string) error
}

type noopRecorder struct{}

func (noopRecorder) CreateJob(ctx context.Context, rec *JobRecord) error { return nil }
func (noopRecorder) UpdateJob(ctx context.Context, jobID string, upd *JobUpdate) error {
	return nil
}
func (noopRecorder) RecordArtifact(ctx context.Context, jobID, path, kind string) error {
	return nil
}
