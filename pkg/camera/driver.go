package camera

import "context"

// Size is an output geometry supported by a device.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DeviceProperties is the immutable capability record read once when a
// device is opened and shared read-only for the session's lifetime.
type DeviceProperties struct {
	DeviceID string `json:"deviceId"`
	Vendor   string `json:"vendor,omitempty"`
	Model    string `json:"model,omitempty"`
	// StillSizes lists supported still-capture geometries; the first entry
	// is the device's preferred full-resolution size.
	StillSizes []Size `json:"stillSizes"`
}

// DefaultStillSize returns the first listed still-capture size.
func (p *DeviceProperties) DefaultStillSize() Size {
	if p == nil || len(p.StillSizes) == 0 {
		return Size{}
	}
	return p.StillSizes[0]
}

// Provider enumerates and opens camera devices.
type Provider interface {
	ListDevices(ctx context.Context) ([]string, error)
	Open(ctx context.Context, deviceID string) (Driver, error)
}

// Driver is the device-facing contract a camera backend implements. Submit
// is asynchronous: outcomes arrive later on the Completions channel, pixel
// payloads on the Frames channel. Close releases the device and closes both
// channels after any in-flight events have been delivered.
type Driver interface {
	Properties() *DeviceProperties
	ConfigureOutput(cfg OutputConfig) error
	StopRepeating() error
	WaitIdle(ctx context.Context) error
	Submit(req *Request) error
	Completions() <-chan Completion
	Frames() <-chan Frame
	Close() error
}
