package captureagent

import "github.com/camerakit/captureagent/pkg/camera"

// resolveRegion converts a normalized [x,y,w,h] rectangle into a weighted
// pixel-coordinate region [x0,y0,x1,y1,1] for the given frame size. A nil
// rectangle resolves to the full frame.
func resolveRegion(r *NormRect, width, height int) camera.Region {
	if r == nil {
		return camera.FullFrame(width, height)
	}
	x := int(r.X * float64(width))
	y := int(r.Y * float64(height))
	w := int(r.W * float64(width))
	h := int(r.H * float64(height))
	return camera.Region{x, y, x + w - 1, y + h - 1, 1}
}

// resolveRegions resolves the AE/AF/AWB metering regions of a converge job
// against the configured output geometry.
func resolveRegions(set RegionSet, width, height int) (ae, af, awb camera.Region) {
	ae = resolveRegion(set.AE, width, height)
	af = resolveRegion(set.AF, width, height)
	awb = resolveRegion(set.AWB, width, height)
	return ae, af, awb
}
