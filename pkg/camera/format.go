package camera

import "github.com/pkg/errors"

// PixelFormat identifies the encoding of frames written to the output stream.
type PixelFormat string

const (
	// FormatYUV420 is planar YUV 4:2:0, the default capture format.
	FormatYUV420 PixelFormat = "yuv420"
	// FormatJPEG is the compressed still format.
	FormatJPEG PixelFormat = "jpeg"
)

// ParseFormat maps a job-supplied format tag to a PixelFormat. The empty
// string selects the default planar YUV format.
func ParseFormat(tag string) (PixelFormat, error) {
	switch tag {
	case "", "yuv", "yuv420":
		return FormatYUV420, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	default:
		return "", errors.Errorf("unsupported format: %s", tag)
	}
}

// CallbacksPerCapture reports how many metadata completion events the device
// delivers for a single request in this format. Both built-in formats use
// one, but multi-plane formats may require more.
func (f PixelFormat) CallbacksPerCapture() int {
	switch f {
	case FormatJPEG:
		return 1
	default:
		return 1
	}
}

// FileExt returns the artifact file extension for the format.
func (f PixelFormat) FileExt() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return "yuv"
}

// FrameSize returns the expected payload size in bytes for an uncompressed
// frame of the given geometry, or 0 when the format is compressed.
func (f PixelFormat) FrameSize(width, height int) int {
	if f == FormatYUV420 {
		return width * height * 3 / 2
	}
	return 0
}
