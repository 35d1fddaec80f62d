package camera

import (
	"context"
	"testing"
)

type fakeDriver struct {
	props       *DeviceProperties
	configures  int
	stops       int
	waits       int
	completions chan Completion
	frames      chan Frame
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		props: &DeviceProperties{
			DeviceID:   "fake-0",
			StillSizes: []Size{{Width: 1920, Height: 1080}, {Width: 640, Height: 480}},
		},
		completions: make(chan Completion, 1),
		frames:      make(chan Frame, 1),
	}
}

func (d *fakeDriver) Properties() *DeviceProperties { return d.props }
func (d *fakeDriver) ConfigureOutput(cfg OutputConfig) error {
	d.configures++
	return nil
}
func (d *fakeDriver) StopRepeating() error { d.stops++; return nil }
func (d *fakeDriver) WaitIdle(ctx context.Context) error {
	d.waits++
	return nil
}
func (d *fakeDriver) Submit(req *Request) error      { return nil }
func (d *fakeDriver) Completions() <-chan Completion { return d.completions }
func (d *fakeDriver) Frames() <-chan Frame           { return d.frames }
func (d *fakeDriver) Close() error {
	close(d.completions)
	close(d.frames)
	return nil
}

func TestConfigureOutputSkipsIdenticalConfig(t *testing.T) {
	driver := newFakeDriver()
	session, err := NewSession(driver)
	if err != nil {
		t.Fatalf("NewSession error: %v", err)
	}
	cfg := OutputConfig{Width: 640, Height: 480, Format: FormatYUV420}
	if err := session.ConfigureOutput(cfg); err != nil {
		t.Fatalf("first configure: %v", err)
	}
	if err := session.ConfigureOutput(cfg); err != nil {
		t.Fatalf("second configure: %v", err)
	}
	if driver.configures != 1 {
		t.Fatalf("identical config must not rebuild the reader, got %d configures", driver.configures)
	}
	if session.Reconfigures() != 1 {
		t.Fatalf("expected 1 reconfigure, got %d", session.Reconfigures())
	}

	cfg.Format = FormatJPEG
	if err := session.ConfigureOutput(cfg); err != nil {
		t.Fatalf("format change configure: %v", err)
	}
	if driver.configures != 2 {
		t.Fatalf("format change must rebuild the reader, got %d configures", driver.configures)
	}
}

func TestSessionIdleStopsThenWaits(t *testing.T) {
	driver := newFakeDriver()
	session, err := NewSession(driver)
	if err != nil {
		t.Fatalf("NewSession error: %v", err)
	}
	if err := session.Idle(context.Background()); err != nil {
		t.Fatalf("Idle error: %v", err)
	}
	if driver.stops != 1 || driver.waits != 1 {
		t.Fatalf("expected stop+wait, got stops=%d waits=%d", driver.stops, driver.waits)
	}
}

func TestDefaultOutputUsesFirstStillSize(t *testing.T) {
	session, err := NewSession(newFakeDriver())
	if err != nil {
		t.Fatalf("NewSession error: %v", err)
	}
	out := session.DefaultOutput()
	if out.Width != 1920 || out.Height != 1080 {
		t.Fatalf("default output should use the first still size, got %dx%d", out.Width, out.Height)
	}
	if out.Format != FormatYUV420 {
		t.Fatalf("default format should be planar YUV, got %s", out.Format)
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		tag  string
		want PixelFormat
		ok   bool
	}{
		{"", FormatYUV420, true},
		{"yuv", FormatYUV420, true},
		{"jpg", FormatJPEG, true},
		{"jpeg", FormatJPEG, true},
		{"png", "", false},
	}
	for _, tc := range cases {
		got, err := ParseFormat(tc.tag)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseFormat(%q) = %v, %v; want %v", tc.tag, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseFormat(%q) should fail", tc.tag)
		}
	}
}

func TestRegionString(t *testing.T) {
	r := FullFrame(640, 480)
	if got := r.String(); got != "0,0,639,479,1" {
		t.Fatalf("Region.String() = %q", got)
	}
}
