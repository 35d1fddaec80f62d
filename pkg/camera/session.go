package camera

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Session is the exclusive handle to one open device. All mutating calls
// must come from a single owner; only the Completions/Frames channels are
// read from another goroutine.
type Session struct {
	driver Driver
	props  *DeviceProperties

	// current holds the live output configuration; nil until the first
	// ConfigureOutput. Reconfiguring with an identical value is a no-op so
	// the underlying reader resource is not churned.
	current      *OutputConfig
	reconfigures int
}

// OpenSession opens the first enumerated device from the provider and reads
// its immutable properties.
func OpenSession(ctx context.Context, provider Provider) (*Session, error) {
	if provider == nil {
		return nil, errors.New("camera: provider is nil")
	}
	ids, err := provider.ListDevices(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list camera devices failed")
	}
	if len(ids) == 0 {
		return nil, errors.New("camera: no devices")
	}
	driver, err := provider.Open(ctx, ids[0])
	if err != nil {
		return nil, errors.Wrapf(err, "open camera device %s failed", ids[0])
	}
	props := driver.Properties()
	if props == nil {
		_ = driver.Close()
		return nil, errors.Errorf("camera: device %s reported no properties", ids[0])
	}
	log.Info().Str("device_id", props.DeviceID).Msg("camera device opened")
	return &Session{driver: driver, props: props}, nil
}

// NewSession wraps an already-open driver. Used by tests and embedders that
// manage device selection themselves.
func NewSession(driver Driver) (*Session, error) {
	if driver == nil {
		return nil, errors.New("camera: driver is nil")
	}
	props := driver.Properties()
	if props == nil {
		return nil, errors.New("camera: driver reported no properties")
	}
	return &Session{driver: driver, props: props}, nil
}

// Properties returns the immutable device properties.
func (s *Session) Properties() *DeviceProperties { return s.props }

// DefaultOutput computes the default output stream configuration: the first
// reported still-capture size in planar YUV.
func (s *Session) DefaultOutput() OutputConfig {
	size := s.props.DefaultStillSize()
	return OutputConfig{Width: size.Width, Height: size.Height, Format: FormatYUV420}
}

// ConfigureOutput makes cfg the single active output stream. When cfg equals
// the current configuration the call is a no-op; otherwise the previous
// reader resource is torn down and recreated.
func (s *Session) ConfigureOutput(cfg OutputConfig) error {
	if s.current != nil && *s.current == cfg {
		return nil
	}
	if err := s.driver.ConfigureOutput(cfg); err != nil {
		return errors.Wrap(err, "configure output failed")
	}
	s.current = &cfg
	s.reconfigures++
	log.Debug().
		Int("width", cfg.Width).
		Int("height", cfg.Height).
		Str("format", string(cfg.Format)).
		Msg("camera output configured")
	return nil
}

// Reconfigures reports how many times the output resource was actually
// rebuilt.
func (s *Session) Reconfigures() int { return s.reconfigures }

// Idle stops any repeating stream and blocks until the device reports no
// work in flight. Required before reconfiguration or a new job type.
func (s *Session) Idle(ctx context.Context) error {
	if err := s.driver.StopRepeating(); err != nil {
		return errors.Wrap(err, "stop repeating failed")
	}
	if err := s.driver.WaitIdle(ctx); err != nil {
		return errors.Wrap(err, "wait for camera idle failed")
	}
	return nil
}

// Submit queues a capture request on the device.
func (s *Session) Submit(req *Request) error {
	return s.driver.Submit(req)
}

// Completions exposes the driver's per-request completion events.
func (s *Session) Completions() <-chan Completion { return s.driver.Completions() }

// Frames exposes the driver's captured pixel payloads.
func (s *Session) Frames() <-chan Frame { return s.driver.Frames() }

// Close releases the device. The Completions and Frames channels are closed
// once in-flight events have drained.
func (s *Session) Close() error {
	return s.driver.Close()
}
