package captureagent

import "github.com/rs/zerolog/log"

// Reporter receives the ordered lifecycle markers of a job run: received,
// output geometry, per-capture progress, artifacts, then exactly one
// terminal marker.
type Reporter interface {
	JobReceived(jobID string, kind JobKind)
	OutputSize(jobID string, width, height int)
	CaptureProgress(jobID string, index, total int)
	ArtifactSaved(jobID, path string)
	JobDone(jobID string)
	JobFailed(jobID string, err error)
}

// LogReporter emits lifecycle markers as structured log events.
type LogReporter struct{}

func (LogReporter) JobReceived(jobID string, kind JobKind) {
	log.Info().Str("job_id", jobID).Str("kind", string(kind)).Msg("job received")
}

func (LogReporter) OutputSize(jobID string, width, height int) {
	log.Info().Str("job_id", jobID).Int("width", width).Int("height", height).Msg("output size")
}

func (LogReporter) CaptureProgress(jobID string, index, total int) {
	log.Info().Str("job_id", jobID).Int("index", index).Int("total", total).Msg("capture")
}

func (LogReporter) ArtifactSaved(jobID, path string) {
	log.Info().Str("job_id", jobID).Str("path", path).Msg("artifact saved")
}

func (LogReporter) JobDone(jobID string) {
	log.Info().Str("job_id", jobID).Msg("job done")
}

func (LogReporter) JobFailed(jobID string, err error) {
	log.Error().Err(err).Str("job_id", jobID).Msg("job failed")
}
