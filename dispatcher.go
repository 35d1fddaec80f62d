package captureagent

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/camerakit/captureagent/pkg/camera"
)

// dispatcher is the completion worker. It drains the device's completion
// and frame channels, routes probe results into ConvergenceState, and
// persists bulk-capture artifacts. Nothing here may block on the command
// worker: the convergence loop's wait depends on this goroutine making
// progress.
type dispatcher struct {
	session  *camera.Session
	sink     ArtifactSink
	reporter Reporter
	recorder Recorder
	state    *ConvergenceState

	mu      sync.Mutex
	jobID   string
	pending *pendingCounter
	failure error

	done chan struct{}
}

func newDispatcher(session *camera.Session, sink ArtifactSink, reporter Reporter, recorder Recorder, state *ConvergenceState) *dispatcher {
	return &dispatcher{
		session:  session,
		sink:     sink,
		reporter: reporter,
		recorder: recorder,
		state:    state,
		done:     make(chan struct{}),
	}
}

// run consumes events until both device channels close. Frames are drained
// ahead of completions: the device emits a request's image before its
// metadata, and the metadata event is what counts the job down, so the image
// must be persisted first to keep artifact markers ahead of the terminal
// one.
func (d *dispatcher) run() {
	defer close(d.done)
	completions := d.session.Completions()
	frames := d.session.Frames()
	for completions != nil || frames != nil {
		if frames != nil {
			select {
			case f, ok := <-frames:
				if !ok {
					frames = nil
					continue
				}
				d.handleFrame(f)
				continue
			default:
			}
		}
		select {
		case c, ok := <-completions:
			if !ok {
				completions = nil
				continue
			}
			d.handleCompletion(c)
		case f, ok := <-frames:
			if !ok {
				frames = nil
				continue
			}
			d.handleFrame(f)
		}
	}
}

// wait blocks until the dispatcher goroutine has exited.
func (d *dispatcher) wait() { <-d.done }

// setJob records which job subsequent artifacts belong to.
func (d *dispatcher) setJob(jobID string) {
	d.mu.Lock()
	d.jobID = jobID
	d.mu.Unlock()
}

// beginBulk arms the bulk-capture path with its pending-completion counter.
func (d *dispatcher) beginBulk(pending *pendingCounter) {
	d.mu.Lock()
	d.pending = pending
	d.failure = nil
	d.mu.Unlock()
}

// endBulk detaches the counter once the job has reached a terminal status.
// Late completions after this point are logged and dropped.
func (d *dispatcher) endBulk() {
	d.mu.Lock()
	d.pending = nil
	d.mu.Unlock()
}

// bulkFailure returns the first failure recorded during the current bulk
// job, if any.
func (d *dispatcher) bulkFailure() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.failure
}

func (d *dispatcher) currentJob() (string, *pendingCounter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.jobID, d.pending
}

func (d *dispatcher) recordBulkFailure(err error) {
	d.mu.Lock()
	if d.failure == nil {
		d.failure = err
	}
	d.mu.Unlock()
}

func (d *dispatcher) handleCompletion(c camera.Completion) {
	if d.state.ProbeInFlight() {
		d.handleProbeCompletion(c)
		return
	}

	jobID, pending := d.currentJob()
	if pending == nil {
		log.Warn().Msg("completion event with no job in flight, dropped")
		return
	}
	// Failure is still a completion: the counter must reach zero even when
	// no artifact will be produced.
	defer pending.countDown()

	if c.Failed() {
		log.Error().Err(c.Err).Msg("capture request failed")
		d.recordBulkFailure(deviceErr(c.Err, "capture request failed"))
		return
	}
	if c.Request == nil || c.Result == nil {
		d.recordBulkFailure(resultErrf("malformed completion event: missing request or result"))
		return
	}
	logResult(c.Result)
	path, err := d.sink.SaveMetadata(d.session.Properties(), c.Request, c.Result)
	if err != nil {
		d.recordBulkFailure(&ResultError{Err: err})
		return
	}
	d.reporter.ArtifactSaved(jobID, path)
	if err := d.recorder.RecordArtifact(context.Background(), jobID, path, "metadata"); err != nil {
		log.Error().Err(err).Str("path", path).Msg("record metadata artifact failed")
	}
}

func (d *dispatcher) handleProbeCompletion(c camera.Completion) {
	if c.Failed() {
		d.state.Fail(deviceErr(c.Err, "probe request failed"))
		return
	}
	if c.Request == nil || c.Result == nil {
		d.state.Fail(resultErrf("malformed probe completion: missing request or result"))
		return
	}
	logResult(c.Result)
	d.state.Ingest(c.Result)
}

func (d *dispatcher) handleFrame(f camera.Frame) {
	jobID, pending := d.currentJob()
	if pending == nil {
		// Probe frames are observed, never saved; recycle the buffer.
		return
	}
	path, err := d.sink.SaveImage(f)
	if err != nil {
		d.recordBulkFailure(&ResultError{Err: err})
		return
	}
	d.reporter.ArtifactSaved(jobID, path)
	if err := d.recorder.RecordArtifact(context.Background(), jobID, path, "image"); err != nil {
		log.Error().Err(err).Str("path", path).Msg("record image artifact failed")
	}
}

func logResult(res *camera.Result) {
	log.Debug().
		Str("ae", res.AEState).
		Str("af", res.AFState).
		Str("awb", res.AWBState).
		Int("sensitivity", res.Sensitivity).
		Int64("exposure_ns", res.ExposureTimeNs).
		Int64("frame_duration_ns", res.FrameDurationNs).
		Msg("capture result")
}
