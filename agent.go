package captureagent

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/camerakit/captureagent/pkg/camera"
)

// DefaultJobTimeout bounds both the convergence loop and the bulk-capture
// completion wait.
const DefaultJobTimeout = 10 * time.Second

// Config controls Agent behavior. Zero fields take defaults; Provider and
// Sink are required.
type Config struct {
	Provider camera.Provider
	Sink     ArtifactSink
	Reporter Reporter
	Recorder Recorder

	ConvergeTimeout time.Duration
	CaptureTimeout  time.Duration
	QueueSize       int
}

// Agent owns one open device session and executes jobs against it, one at a
// time, in submission order. All device-mutating calls happen on the
// goroutine running Run (or the caller of RunJob); completion events are
// consumed by the agent's dispatcher goroutine.
type Agent struct {
	session    *camera.Session
	sink       ArtifactSink
	reporter   Reporter
	recorder   Recorder
	state      *ConvergenceState
	dispatcher *dispatcher

	convergeTimeout time.Duration
	captureTimeout  time.Duration

	jobs chan *Job
}

// NewAgent opens the first available device and starts the completion
// worker.
func NewAgent(ctx context.Context, cfg Config) (*Agent, error) {
	session, err := camera.OpenSession(ctx, cfg.Provider)
	if err != nil {
		return nil, err
	}
	agent, err := newAgentWithSession(session, cfg)
	if err != nil {
		_ = session.Close()
		return nil, err
	}
	return agent, nil
}

// NewAgentWithSession builds an agent around an already-open session.
func NewAgentWithSession(session *camera.Session, cfg Config) (*Agent, error) {
	return newAgentWithSession(session, cfg)
}

func newAgentWithSession(session *camera.Session, cfg Config) (*Agent, error) {
	if session == nil {
		return nil, errors.New("session cannot be nil")
	}
	if cfg.Sink == nil {
		return nil, errors.New("artifact sink cannot be nil")
	}
	if cfg.Reporter == nil {
		cfg.Reporter = LogReporter{}
	}
	if cfg.Recorder == nil {
		cfg.Recorder = noopRecorder{}
	}
	if cfg.ConvergeTimeout <= 0 {
		cfg.ConvergeTimeout = DefaultJobTimeout
	}
	if cfg.CaptureTimeout <= 0 {
		cfg.CaptureTimeout = DefaultJobTimeout
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 4
	}

	state := newConvergenceState()
	agent := &Agent{
		session:         session,
		sink:            cfg.Sink,
		reporter:        cfg.Reporter,
		recorder:        cfg.Recorder,
		state:           state,
		dispatcher:      newDispatcher(session, cfg.Sink, cfg.Reporter, cfg.Recorder, state),
		convergeTimeout: cfg.ConvergeTimeout,
		captureTimeout:  cfg.CaptureTimeout,
		jobs:            make(chan *Job, cfg.QueueSize),
	}
	go agent.dispatcher.run()
	return agent, nil
}

// Session exposes the underlying device session.
func (a *Agent) Session() *camera.Session { return a.session }

// Submit enqueues a job for the command worker.
func (a *Agent) Submit(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	select {
	case a.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run consumes the job queue until the context is cancelled, executing each
// job to completion before starting the next.
func (a *Agent) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case job := <-a.jobs:
			// Terminal status is reported through the Reporter; a failed job
			// never stops the worker.
			_ = a.RunJob(ctx, job)
		}
	}
}

// RunJob executes one job end to end and reports exactly one terminal
// marker. Callers must serialize RunJob invocations; the Run loop does.
func (a *Agent) RunJob(ctx context.Context, job *Job) error {
	if job == nil {
		return configErrf("job cannot be nil")
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	a.reporter.JobReceived(job.ID, job.Kind)
	start := time.Now()
	if err := a.recorder.CreateJob(ctx, &JobRecord{
		JobID:   job.ID,
		Kind:    string(job.Kind),
		State:   "running",
		StartAt: start,
	}); err != nil {
		// Recording is best effort; the job still runs.
		log.Error().Err(err).Str("job_id", job.ID).Msg("recorder create job failed")
	}
	a.dispatcher.setJob(job.ID)

	var err error
	switch job.Kind {
	case JobConverge:
		err = a.runConverge(ctx, job)
	case JobCapture:
		err = a.runCapture(ctx, job)
	case JobProps:
		err = a.runProps(ctx, job)
	default:
		err = configErrf("unknown job kind: %s", job.Kind)
	}

	end := time.Now()
	state := "success"
	message := ""
	if err != nil {
		state = "failed"
		message = err.Error()
	}
	if recErr := a.recorder.UpdateJob(context.Background(), job.ID, &JobUpdate{
		State:          state,
		EndAt:          end,
		ElapsedSeconds: int64(end.Sub(start).Seconds()),
		ErrorMessage:   message,
	}); recErr != nil {
		log.Error().Err(recErr).Str("job_id", job.ID).Msg("recorder update job failed")
	}

	if err != nil {
		a.reporter.JobFailed(job.ID, err)
	} else {
		a.reporter.JobDone(job.ID)
	}
	return err
}

// Close releases the device and waits for the completion worker to drain.
func (a *Agent) Close() error {
	err := a.session.Close()
	a.dispatcher.wait()
	return err
}
