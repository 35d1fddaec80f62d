package captureagent

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/camerakit/captureagent/pkg/camera"
)

func TestFileSinkNamesArtifactsByTimestamp(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}

	frame := camera.Frame{
		Format:    camera.FormatJPEG,
		Width:     320,
		Height:    240,
		Timestamp: 42,
		Data:      []byte{0xFF, 0xD8, 0xFF, 0xD9},
	}
	imgPath, err := sink.SaveImage(frame)
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	if filepath.Base(imgPath) != "42.jpg" {
		t.Fatalf("unexpected image name: %s", imgPath)
	}
	data, err := os.ReadFile(imgPath)
	if err != nil || len(data) != 4 {
		t.Fatalf("image payload not written: %v", err)
	}

	props := &camera.DeviceProperties{DeviceID: "cam-1", StillSizes: []camera.Size{{Width: 320, Height: 240}}}
	req := &camera.Request{Output: camera.OutputConfig{Width: 320, Height: 240, Format: camera.FormatJPEG}}
	res := &camera.Result{Timestamp: 42, AEState: camera.AEStateConverged}
	mdPath, err := sink.SaveMetadata(props, req, res)
	if err != nil {
		t.Fatalf("SaveMetadata: %v", err)
	}
	if filepath.Base(mdPath) != "42.json" {
		t.Fatalf("metadata must share the image's timestamp stem: %s", mdPath)
	}

	raw, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	var record MetadataRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	if record.Properties == nil || record.Properties.DeviceID != "cam-1" {
		t.Fatalf("metadata record missing properties: %+v", record)
	}
	if record.Result == nil || record.Result.AEState != camera.AEStateConverged {
		t.Fatalf("metadata record missing result: %+v", record)
	}
}

func TestFileSinkPropertiesKeepEveryDump(t *testing.T) {
	sink, err := NewFileSink(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	first, err := sink.SaveProperties(&camera.DeviceProperties{DeviceID: "cam-1"})
	if err != nil {
		t.Fatalf("SaveProperties: %v", err)
	}
	name := filepath.Base(first)
	if !strings.HasPrefix(name, "props-") || filepath.Ext(name) != ".json" {
		t.Fatalf("unexpected properties name: %s", first)
	}
	second, err := sink.SaveProperties(&camera.DeviceProperties{DeviceID: "cam-1"})
	if err != nil {
		t.Fatalf("SaveProperties again: %v", err)
	}
	if second == first {
		t.Fatalf("repeated dumps must not share a path: %s", second)
	}
	if _, err := os.Stat(first); err != nil {
		t.Fatalf("first dump should survive the second: %v", err)
	}
}
