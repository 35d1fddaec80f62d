package sim

import (
	"context"
	"testing"
	"time"

	"github.com/camerakit/captureagent/pkg/camera"
)

func openDriver(t *testing.T, cfg Config) camera.Driver {
	t.Helper()
	provider := New(cfg)
	ids, err := provider.ListDevices(context.Background())
	if err != nil || len(ids) != 1 {
		t.Fatalf("ListDevices: %v, %v", ids, err)
	}
	driver, err := provider.Open(context.Background(), ids[0])
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return driver
}

func awaitCompletion(t *testing.T, driver camera.Driver) camera.Completion {
	t.Helper()
	select {
	case c := <-driver.Completions():
		return c
	case <-time.After(time.Second):
		t.Fatalf("no completion delivered")
		return camera.Completion{}
	}
}

func awaitFrame(t *testing.T, driver camera.Driver) camera.Frame {
	t.Helper()
	select {
	case f := <-driver.Frames():
		return f
	case <-time.After(time.Second):
		t.Fatalf("no frame delivered")
		return camera.Frame{}
	}
}

func probe(out camera.OutputConfig, triggers ...camera.Trigger) *camera.Request {
	return &camera.Request{Triggers: triggers, Output: out}
}

func TestDriverConvergesAfterTriggers(t *testing.T) {
	driver := openDriver(t, Config{})
	defer driver.Close()
	out := camera.OutputConfig{Width: 640, Height: 480, Format: camera.FormatYUV420}

	if err := driver.Submit(probe(out, camera.TriggerAEPrecaptureStart)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	awaitFrame(t, driver)
	c := awaitCompletion(t, driver)
	if c.Result.AEState != camera.AEStateConverged {
		t.Fatalf("AE should converge on the trigger probe, got %s", c.Result.AEState)
	}
	if c.Result.AFState != camera.AFStateInactive {
		t.Fatalf("AF should be inactive before its trigger, got %s", c.Result.AFState)
	}
	if c.Result.AWBState != camera.AWBStateConverged {
		t.Fatalf("AWB should converge passively, got %s", c.Result.AWBState)
	}

	if err := driver.Submit(probe(out, camera.TriggerAFStart)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	awaitFrame(t, driver)
	c = awaitCompletion(t, driver)
	if c.Result.AFState != camera.AFStateFocusedLocked {
		t.Fatalf("AF should lock after its trigger, got %s", c.Result.AFState)
	}
}

func TestDriverDelayedAEConvergence(t *testing.T) {
	driver := openDriver(t, Config{ProbesUntilAE: 2})
	defer driver.Close()
	out := camera.OutputConfig{Width: 640, Height: 480, Format: camera.FormatYUV420}

	_ = driver.Submit(probe(out, camera.TriggerAEPrecaptureStart))
	awaitFrame(t, driver)
	if c := awaitCompletion(t, driver); c.Result.AEState != camera.AEStateSearching {
		t.Fatalf("AE should still be searching, got %s", c.Result.AEState)
	}
	_ = driver.Submit(probe(out))
	awaitFrame(t, driver)
	if c := awaitCompletion(t, driver); c.Result.AEState != camera.AEStateConverged {
		t.Fatalf("AE should converge on the second probe, got %s", c.Result.AEState)
	}
}

func TestDriverFailureInjection(t *testing.T) {
	driver := openDriver(t, Config{FailRequests: map[int]bool{0: true}})
	defer driver.Close()
	out := camera.OutputConfig{Width: 320, Height: 240, Format: camera.FormatYUV420}

	_ = driver.Submit(probe(out))
	c := awaitCompletion(t, driver)
	if !c.Failed() {
		t.Fatalf("first request should fail")
	}
	// A failed request produces no frame; the next one does.
	_ = driver.Submit(probe(out))
	f := awaitFrame(t, driver)
	if len(f.Data) != out.Format.FrameSize(out.Width, out.Height) {
		t.Fatalf("unexpected frame size %d", len(f.Data))
	}
	if c := awaitCompletion(t, driver); c.Failed() {
		t.Fatalf("second request should succeed: %v", c.Err)
	}
}

func TestDriverTimestampsIncrease(t *testing.T) {
	driver := openDriver(t, Config{})
	defer driver.Close()
	out := camera.OutputConfig{Width: 320, Height: 240, Format: camera.FormatJPEG}

	var last int64
	for i := 0; i < 3; i++ {
		_ = driver.Submit(probe(out))
		f := awaitFrame(t, driver)
		c := awaitCompletion(t, driver)
		if f.Timestamp != c.Result.Timestamp {
			t.Fatalf("frame and result timestamps must match: %d vs %d", f.Timestamp, c.Result.Timestamp)
		}
		if f.Timestamp <= last {
			t.Fatalf("timestamps must increase, got %d after %d", f.Timestamp, last)
		}
		last = f.Timestamp
	}
}

func TestDriverWaitIdleAndClose(t *testing.T) {
	driver := openDriver(t, Config{})
	out := camera.OutputConfig{Width: 320, Height: 240, Format: camera.FormatYUV420}
	_ = driver.Submit(probe(out))
	awaitFrame(t, driver)
	awaitCompletion(t, driver)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := driver.WaitIdle(ctx); err != nil {
		t.Fatalf("WaitIdle: %v", err)
	}

	if err := driver.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := driver.Submit(probe(out)); err == nil {
		t.Fatalf("Submit after Close should fail")
	}
	select {
	case _, ok := <-driver.Completions():
		if ok {
			t.Fatalf("unexpected completion after close")
		}
	case <-time.After(time.Second):
		t.Fatalf("completions channel should close")
	}
}

func TestDriverRejectsUnsupportedOutput(t *testing.T) {
	driver := openDriver(t, Config{})
	defer driver.Close()
	if err := driver.ConfigureOutput(camera.OutputConfig{Width: 0, Height: 480, Format: camera.FormatYUV420}); err == nil {
		t.Fatalf("zero width should be rejected")
	}
	if err := driver.ConfigureOutput(camera.OutputConfig{Width: 640, Height: 480, Format: "png"}); err == nil {
		t.Fatalf("unknown format should be rejected")
	}
}
