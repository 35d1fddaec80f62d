package captureagent

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/camerakit/captureagent/pkg/camera"
)

// JobKind selects which orchestration path a job runs.
type JobKind string

const (
	JobCapture  JobKind = "capture"
	JobConverge JobKind = "converge"
	JobProps    JobKind = "props"
)

// Job is one externally requested unit of work. Immutable once parsed; owned
// by the command worker for the duration of one run.
type Job struct {
	ID       string
	Kind     JobKind
	Converge *ConvergeJob
	Capture  *CaptureJob
}

// NormRect is a normalized [x, y, w, h] rectangle in [0,1] frame
// coordinates.
type NormRect struct {
	X, Y, W, H float64
}

// RegionSet carries the optional per-control metering rectangles of a
// converge job. A nil entry defaults to the full frame.
type RegionSet struct {
	AE  *NormRect
	AF  *NormRect
	AWB *NormRect
}

// ConvergeJob asks the engine to drive 3A until all three controls report
// convergence.
type ConvergeJob struct {
	Regions RegionSet
}

// RequestSpec is one parsed capture request of a bulk job.
type RequestSpec struct {
	Settings []camera.Setting
	Triggers []camera.Trigger
}

// CaptureJob runs an ordered sequence of capture requests over one output
// stream. Zero-valued override fields keep the device defaults.
type CaptureJob struct {
	Requests []RequestSpec
	Width    int
	Height   int
	Format   string
}

type jobFileSchema struct {
	Requests []requestSchema      `json:"requests"`
	Width    int                  `json:"width"`
	Height   int                  `json:"height"`
	Format   string               `json:"format"`
	Regions  map[string][]float64 `json:"regions"`
}

type requestSchema struct {
	Settings []camera.Setting `json:"settings"`
	Triggers []string         `json:"triggers"`
}

// ParseJobFile reads a structured job description for the given kind. The
// reference must point at a .json file; anything else is a configuration
// error.
func ParseJobFile(kind JobKind, path string) (*Job, error) {
	if !strings.HasSuffix(path, ".json") {
		return nil, configErrf("invalid job reference: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Err: errors.Wrap(err, "read job file")}
	}
	return ParseJob(kind, data)
}

// ParseJob decodes a job description from raw JSON.
func ParseJob(kind JobKind, data []byte) (*Job, error) {
	var schema jobFileSchema
	if len(data) > 0 {
		if err := json.Unmarshal(data, &schema); err != nil {
			return nil, &ConfigurationError{Err: errors.Wrap(err, "decode job description")}
		}
	}
	switch kind {
	case JobConverge:
		regions, err := parseRegions(schema.Regions)
		if err != nil {
			return nil, err
		}
		return &Job{Kind: JobConverge, Converge: &ConvergeJob{Regions: regions}}, nil
	case JobCapture:
		capture := &CaptureJob{
			Width:  schema.Width,
			Height: schema.Height,
			Format: schema.Format,
		}
		for _, req := range schema.Requests {
			spec := RequestSpec{Settings: req.Settings}
			for _, t := range req.Triggers {
				spec.Triggers = append(spec.Triggers, camera.Trigger(t))
			}
			capture.Requests = append(capture.Requests, spec)
		}
		return &Job{Kind: JobCapture, Capture: capture}, nil
	case JobProps:
		return &Job{Kind: JobProps}, nil
	default:
		return nil, configErrf("unknown job kind: %s", kind)
	}
}

func parseRegions(raw map[string][]float64) (RegionSet, error) {
	var set RegionSet
	for name, rect := range raw {
		if len(rect) != 4 {
			return RegionSet{}, configErrf("region %s: want [x,y,w,h], got %d values", name, len(rect))
		}
		nr := &NormRect{X: rect[0], Y: rect[1], W: rect[2], H: rect[3]}
		switch name {
		case "ae":
			set.AE = nr
		case "af":
			set.AF = nr
		case "awb":
			set.AWB = nr
		default:
			return RegionSet{}, configErrf("unknown region key: %s", name)
		}
	}
	return set, nil
}
