package captureagent

import (
	"context"
	"time"

	"github.com/camerakit/captureagent/pkg/camera"
)

// runCapture executes a bulk capture job: configure the output stream once,
// submit every request in order, then wait for the dispatcher to count all
// expected completion events down to zero. Completions may arrive out of
// submission order; artifacts are named by capture timestamp so ordering is
// preserved by content, not by index.
func (a *Agent) runCapture(ctx context.Context, job *Job) error {
	cj := job.Capture
	if cj == nil {
		return configErrf("capture job carries no description")
	}

	format, err := camera.ParseFormat(cj.Format)
	if err != nil {
		return &ConfigurationError{Err: err}
	}

	if err := a.session.Idle(ctx); err != nil {
		return &DeviceError{Err: err}
	}

	out := a.session.DefaultOutput()
	out.Format = format
	if cj.Width > 0 {
		out.Width = cj.Width
	}
	if cj.Height > 0 {
		out.Height = cj.Height
	}
	a.reporter.OutputSize(job.ID, out.Width, out.Height)

	if err := a.session.ConfigureOutput(out); err != nil {
		return &DeviceError{Err: err}
	}

	total := len(cj.Requests)
	pending := newPendingCounter(total * out.Format.CallbacksPerCapture())
	a.dispatcher.beginBulk(pending)
	defer a.dispatcher.endBulk()

	for i, spec := range cj.Requests {
		a.reporter.CaptureProgress(job.ID, i+1, total)
		req := &camera.Request{
			Settings: spec.Settings,
			Triggers: spec.Triggers,
			Output:   out,
		}
		if err := a.session.Submit(req); err != nil {
			return deviceErr(err, "submit capture request")
		}
	}

	// Deadline runs from the submission of the last request.
	timer := time.NewTimer(a.captureTimeout)
	defer timer.Stop()
	select {
	case <-pending.Done():
	case <-timer.C:
		return timeoutErrf("capture incomplete: %d of %d completions outstanding after %s",
			pending.Remaining(), total*out.Format.CallbacksPerCapture(), a.captureTimeout)
	case <-ctx.Done():
		return timeoutErrf("capture interrupted: %v", ctx.Err())
	}
	return a.dispatcher.bulkFailure()
}

// runProps forwards the session's immutable device properties to the
// artifact sink.
func (a *Agent) runProps(ctx context.Context, job *Job) error {
	path, err := a.sink.SaveProperties(a.session.Properties())
	if err != nil {
		return &ResultError{Err: err}
	}
	a.reporter.ArtifactSaved(job.ID, path)
	if err := a.recorder.RecordArtifact(ctx, job.ID, path, "properties"); err != nil {
		return &ResultError{Err: err}
	}
	return nil
}
