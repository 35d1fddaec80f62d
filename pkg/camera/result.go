package camera

// Control-loop states reported in capture results.
const (
	AEStateSearching     = "searching"
	AEStateConverged     = "converged"
	AFStateInactive      = "inactive"
	AFStateScanning      = "scanning"
	AFStateFocusedLocked = "focused-locked"
	AWBStateSearching    = "searching"
	AWBStateConverged    = "converged"
)

// Result is the per-request metadata delivered when a capture completes.
type Result struct {
	Timestamp       int64  `json:"timestamp"`
	AEState         string `json:"aeState"`
	AFState         string `json:"afState"`
	AWBState        string `json:"awbState"`
	Sensitivity     int    `json:"sensitivity"`
	ExposureTimeNs  int64  `json:"exposureTimeNs"`
	FrameDurationNs int64  `json:"frameDurationNs"`
}

// Completion is the terminal event for one submitted request: either a
// result with metadata or a failure. Exactly one Completion is delivered per
// metadata callback the request's format requires.
type Completion struct {
	Request *Request
	Result  *Result
	Err     error
}

// Failed reports whether the request failed at the device.
func (c Completion) Failed() bool { return c.Err != nil }

// Frame is a captured pixel payload, delivered independently of the
// matching metadata completion.
type Frame struct {
	Format    PixelFormat
	Width     int
	Height    int
	Timestamp int64
	Data      []byte
}
