package camera

import "fmt"

// Control parameter keys understood by drivers. The vocabulary mirrors the
// per-request control namespace of a camera HAL.
const (
	KeyFlashMode              = "flash.mode"
	KeyControlMode            = "control.mode"
	KeyCaptureIntent          = "control.captureIntent"
	KeyAEMode                 = "control.aeMode"
	KeyAEExposureCompensation = "control.aeExposureCompensation"
	KeyAELock                 = "control.aeLock"
	KeyAERegions              = "control.aeRegions"
	KeyAFMode                 = "control.afMode"
	KeyAFRegions              = "control.afRegions"
	KeyAWBMode                = "control.awbMode"
	KeyAWBLock                = "control.awbLock"
	KeyAWBRegions             = "control.awbRegions"
)

// Common control values.
const (
	FlashOff        = "off"
	ControlModeAuto = "auto"
	IntentPreview   = "preview"
	AEModeOn        = "on"
	AFModeAuto      = "auto"
	AWBModeAuto     = "auto"
)

// Trigger is a one-shot action attached to a single request.
type Trigger string

const (
	// TriggerAEPrecaptureStart starts the auto-exposure precapture sequence.
	TriggerAEPrecaptureStart Trigger = "ae-precapture-start"
	// TriggerAFStart starts an autofocus scan.
	TriggerAFStart Trigger = "af-start"
)

// Setting is one ordered control-parameter assignment on a request.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Region is a weighted metering rectangle in pixel coordinates:
// [x0, y0, x1, y1, weight].
type Region [5]int

// FullFrame returns the whole-frame region with weight 1.
func FullFrame(width, height int) Region {
	return Region{0, 0, width - 1, height - 1, 1}
}

func (r Region) String() string {
	return fmt.Sprintf("%d,%d,%d,%d,%d", r[0], r[1], r[2], r[3], r[4])
}

// OutputConfig describes the single active output stream.
type OutputConfig struct {
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Format PixelFormat `json:"format"`
}

// Request is one capture request: ordered control settings, optional one-shot
// triggers, and the output stream it targets.
type Request struct {
	Settings []Setting    `json:"settings,omitempty"`
	Triggers []Trigger    `json:"triggers,omitempty"`
	Output   OutputConfig `json:"output"`
}

// HasTrigger reports whether the request carries the given one-shot trigger.
func (r *Request) HasTrigger(t Trigger) bool {
	for _, have := range r.Triggers {
		if have == t {
			return true
		}
	}
	return false
}

// Set appends an ordered control setting.
func (r *Request) Set(key, value string) {
	r.Settings = append(r.Settings, Setting{Key: key, Value: value})
}
