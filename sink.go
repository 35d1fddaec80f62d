package captureagent

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/camerakit/captureagent/pkg/camera"
)

// ArtifactSink persists captured images and metadata records. Each call
// returns the externally visible path of the artifact it wrote. Image files
// and metadata records produced by the same request share a timestamp stem,
// which is how consumers pair them.
type ArtifactSink interface {
	SaveImage(frame camera.Frame) (string, error)
	SaveMetadata(props *camera.DeviceProperties, req *camera.Request, res *camera.Result) (string, error)
	SaveProperties(props *camera.DeviceProperties) (string, error)
}

// MetadataRecord is the persisted per-request metadata document.
type MetadataRecord struct {
	Properties *camera.DeviceProperties `json:"properties"`
	Request    *camera.Request          `json:"request,omitempty"`
	Result     *camera.Result           `json:"result,omitempty"`
}

// FileSink writes artifacts into a single output directory, named by
// capture timestamp.
type FileSink struct {
	Dir string
}

// NewFileSink creates the output directory if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create artifact dir")
	}
	return &FileSink{Dir: dir}, nil
}

func (s *FileSink) SaveImage(frame camera.Frame) (string, error) {
	name := fmt.Sprintf("%d.%s", frame.Timestamp, frame.Format.FileExt())
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, frame.Data, 0o644); err != nil {
		return "", errors.Wrap(err, "write image file")
	}
	return path, nil
}

func (s *FileSink) SaveMetadata(props *camera.DeviceProperties, req *camera.Request, res *camera.Result) (string, error) {
	name := fmt.Sprintf("%d.json", res.Timestamp)
	return s.writeJSON(name, &MetadataRecord{Properties: props, Request: req, Result: res})
}

func (s *FileSink) SaveProperties(props *camera.DeviceProperties) (string, error) {
	// Properties have no capture timestamp; the props prefix keeps the dump
	// out of the image/metadata namespace, and the wall clock keeps repeated
	// dumps from overwriting each other.
	name := fmt.Sprintf("props-%d.json", time.Now().UnixNano())
	return s.writeJSON(name, &MetadataRecord{Properties: props})
}

func (s *FileSink) writeJSON(name string, record *MetadataRecord) (string, error) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode metadata record")
	}
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, "write metadata file")
	}
	return path, nil
}
