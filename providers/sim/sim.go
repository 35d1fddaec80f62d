// Package sim provides an in-process camera backend with deterministic 3A
// behavior, used by the CLI when no hardware backend is wired in and by
// tests exercising the full engine.
package sim

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/camerakit/captureagent/pkg/camera"
)

const (
	// frameDurationNs advances the synthetic sensor clock per capture.
	frameDurationNs = 33_337_000
	// maxReaderBuffers bounds in-flight frames waiting to be consumed.
	maxReaderBuffers = 8
)

// Config shapes the simulated camera.
type Config struct {
	DeviceID   string
	StillSizes []camera.Size

	// ProbesUntilAE is how many probe results starting from the AE
	// precapture trigger report searching before AE converges; 1 means the
	// trigger-carrying probe already reports converged. ProbesUntilAF works
	// the same, counted from the AF trigger. ProbesUntilAWB is counted from
	// the first submitted request since AWB has no trigger.
	ProbesUntilAE  int
	ProbesUntilAF  int
	ProbesUntilAWB int

	// FailRequests marks zero-based submission indexes whose completion is
	// delivered as a failure with no frame.
	FailRequests map[int]bool

	// QueueDepth bounds requests accepted but not yet processed.
	QueueDepth int
}

func (c *Config) applyDefaults() {
	if c.DeviceID == "" {
		c.DeviceID = "sim-0"
	}
	if len(c.StillSizes) == 0 {
		c.StillSizes = []camera.Size{{Width: 640, Height: 480}}
	}
	if c.ProbesUntilAE <= 0 {
		c.ProbesUntilAE = 1
	}
	if c.ProbesUntilAF <= 0 {
		c.ProbesUntilAF = 1
	}
	if c.ProbesUntilAWB <= 0 {
		c.ProbesUntilAWB = 1
	}
	if c.QueueDepth <= 0 {
		c.QueueDepth = 16
	}
}

// Provider enumerates a single simulated device.
type Provider struct {
	cfg Config
}

// New creates a Provider with the given simulation config.
func New(cfg Config) *Provider {
	cfg.applyDefaults()
	return &Provider{cfg: cfg}
}

func (p *Provider) ListDevices(ctx context.Context) ([]string, error) {
	return []string{p.cfg.DeviceID}, nil
}

func (p *Provider) Open(ctx context.Context, deviceID string) (camera.Driver, error) {
	if deviceID != p.cfg.DeviceID {
		return nil, errors.Errorf("sim: unknown device %s", deviceID)
	}
	return newDriver(p.cfg), nil
}

// Driver is the simulated camera device.
type Driver struct {
	cfg   Config
	props *camera.DeviceProperties

	queue       chan *camera.Request
	completions chan camera.Completion
	frames      chan camera.Frame

	mu        sync.Mutex
	closed    bool
	busy      int
	submitted int
	out       camera.OutputConfig

	aeTriggered bool
	afTriggered bool
	aeProbes    int
	afProbes    int
	awbProbes   int
	timestamp   int64
}

func newDriver(cfg Config) *Driver {
	d := &Driver{
		cfg: cfg,
		props: &camera.DeviceProperties{
			DeviceID:   cfg.DeviceID,
			Vendor:     "camerakit",
			Model:      "simcam",
			StillSizes: cfg.StillSizes,
		},
		queue:       make(chan *camera.Request, cfg.QueueDepth),
		completions: make(chan camera.Completion, maxReaderBuffers),
		frames:      make(chan camera.Frame, maxReaderBuffers),
		out: camera.OutputConfig{
			Width:  cfg.StillSizes[0].Width,
			Height: cfg.StillSizes[0].Height,
			Format: camera.FormatYUV420,
		},
	}
	go d.loop()
	return d
}

func (d *Driver) Properties() *camera.DeviceProperties { return d.props }

func (d *Driver) ConfigureOutput(cfg camera.OutputConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.Errorf("sim: invalid output geometry %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Format != camera.FormatYUV420 && cfg.Format != camera.FormatJPEG {
		return errors.Errorf("sim: unsupported format %s", cfg.Format)
	}
	d.mu.Lock()
	d.out = cfg
	d.mu.Unlock()
	return nil
}

func (d *Driver) StopRepeating() error { return nil }

// WaitIdle blocks until every accepted request has been processed.
func (d *Driver) WaitIdle(ctx context.Context) error {
	for {
		d.mu.Lock()
		idle := d.busy == 0
		d.mu.Unlock()
		if idle {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

// Submit accepts a request for asynchronous processing.
func (d *Driver) Submit(req *camera.Request) error {
	if req == nil {
		return errors.New("sim: request is nil")
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return errors.New("sim: device closed")
	}
	d.busy++
	d.mu.Unlock()
	select {
	case d.queue <- req:
		return nil
	default:
		d.mu.Lock()
		d.busy--
		d.mu.Unlock()
		return errors.New("sim: request queue full")
	}
}

func (d *Driver) Completions() <-chan camera.Completion { return d.completions }
func (d *Driver) Frames() <-chan camera.Frame           { return d.frames }

// Close stops accepting requests; the event channels close once queued
// requests have drained.
func (d *Driver) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()
	close(d.queue)
	return nil
}

func (d *Driver) loop() {
	for req := range d.queue {
		d.process(req)
		d.mu.Lock()
		d.busy--
		d.mu.Unlock()
	}
	close(d.completions)
	close(d.frames)
}

func (d *Driver) process(req *camera.Request) {
	d.mu.Lock()
	index := d.submitted
	d.submitted++
	if req.HasTrigger(camera.TriggerAEPrecaptureStart) {
		d.aeTriggered = true
	}
	if req.HasTrigger(camera.TriggerAFStart) {
		d.afTriggered = true
	}
	if d.aeTriggered {
		d.aeProbes++
	}
	if d.afTriggered {
		d.afProbes++
	}
	d.awbProbes++

	res := &camera.Result{
		AEState:         camera.AEStateSearching,
		AFState:         camera.AFStateInactive,
		AWBState:        camera.AWBStateSearching,
		Sensitivity:     100,
		ExposureTimeNs:  10_000_000,
		FrameDurationNs: frameDurationNs,
	}
	if d.aeTriggered && d.aeProbes >= d.cfg.ProbesUntilAE {
		res.AEState = camera.AEStateConverged
	}
	if d.afTriggered {
		res.AFState = camera.AFStateScanning
		if d.afProbes >= d.cfg.ProbesUntilAF {
			res.AFState = camera.AFStateFocusedLocked
		}
	}
	if d.awbProbes >= d.cfg.ProbesUntilAWB {
		res.AWBState = camera.AWBStateConverged
	}

	d.timestamp += frameDurationNs
	res.Timestamp = d.timestamp
	out := req.Output
	fail := d.cfg.FailRequests[index]
	d.mu.Unlock()

	if fail {
		d.completions <- camera.Completion{Request: req, Err: errors.Errorf("simulated failure for request %d", index)}
		return
	}
	d.frames <- synthesizeFrame(out, res.Timestamp)
	d.completions <- camera.Completion{Request: req, Result: res}
}

// synthesizeFrame fabricates a deterministic payload for the configured
// output: mid-gray planes for YUV, a minimal marker sequence for JPEG.
func synthesizeFrame(out camera.OutputConfig, timestamp int64) camera.Frame {
	var data []byte
	if out.Format == camera.FormatJPEG {
		data = []byte{0xFF, 0xD8, 0xFF, 0xDB, 0x00, 0x04, 0x00, 0x10, 0xFF, 0xD9}
	} else {
		data = make([]byte, out.Format.FrameSize(out.Width, out.Height))
		for i := range data {
			data[i] = 0x80
		}
	}
	return camera.Frame{
		Format:    out.Format,
		Width:     out.Width,
		Height:    out.Height,
		Timestamp: timestamp,
		Data:      data,
	}
}
