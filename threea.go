package captureagent

import (
	"sync"

	"github.com/camerakit/captureagent/pkg/camera"
)

// ConvergenceState holds the latest 3A convergence flags shared between the
// command worker (reader) and the completion worker (writer). The handoff is
// one probe at a time: the orchestrator marks a probe in flight, the
// dispatcher ingests its result and signals, the orchestrator wakes and
// reads. The signal channel carries one slot so the first wait of a job
// proceeds immediately after Reset.
type ConvergenceState struct {
	mu            sync.Mutex
	ae, af, awb   bool
	probeInFlight bool
	err           error

	signal chan struct{}
}

func newConvergenceState() *ConvergenceState {
	return &ConvergenceState{signal: make(chan struct{}, 1)}
}

// Reset clears all flags at the start of a converge job and arms the signal
// so the loop's first wait returns at once.
func (s *ConvergenceState) Reset() {
	s.mu.Lock()
	s.ae, s.af, s.awb = false, false, false
	s.probeInFlight = false
	s.err = nil
	s.mu.Unlock()
	// Drain any stale wakeup, then arm one.
	select {
	case <-s.signal:
	default:
	}
	s.signal <- struct{}{}
}

// MarkProbe flags one probe as outstanding. At most one probe may be in
// flight; a second mark without an intervening ingest is a logic error.
func (s *ConvergenceState) MarkProbe() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.probeInFlight {
		return resultErrf("probe already in flight")
	}
	s.probeInFlight = true
	return nil
}

// clearProbe drops any outstanding probe. Called when a converge job ends
// so that a probe the device never answered cannot swallow the next job's
// completion events.
func (s *ConvergenceState) clearProbe() {
	s.mu.Lock()
	s.probeInFlight = false
	s.mu.Unlock()
}

// ProbeInFlight reports whether a convergence probe is outstanding.
func (s *ConvergenceState) ProbeInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.probeInFlight
}

// Ingest records the 3A states of a probe result, clears the in-flight
// flag, and wakes the orchestrator.
func (s *ConvergenceState) Ingest(res *camera.Result) {
	s.mu.Lock()
	s.ae = res.AEState == camera.AEStateConverged
	s.af = res.AFState == camera.AFStateFocusedLocked
	s.awb = res.AWBState == camera.AWBStateConverged
	s.probeInFlight = false
	s.mu.Unlock()
	s.wake()
}

// Fail records a probe failure, clears the in-flight flag, and wakes the
// orchestrator, which surfaces err as the job's terminal status.
func (s *ConvergenceState) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.probeInFlight = false
	s.mu.Unlock()
	s.wake()
}

// Converged returns the latest per-control convergence flags.
func (s *ConvergenceState) Converged() (ae, af, awb bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ae, s.af, s.awb
}

// Err returns the recorded probe failure, if any.
func (s *ConvergenceState) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Signal is the orchestrator's wakeup channel.
func (s *ConvergenceState) Signal() <-chan struct{} { return s.signal }

func (s *ConvergenceState) wake() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}
