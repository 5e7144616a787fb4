package scene

import (
	"fmt"

	"galaxy-server/internal/galaxy"

	"github.com/gogpu/gg"
)

// Snapshot renders ps from camera into a w by h image on a black background.
// The caller owns the returned context and should Close it.
func Snapshot(ps *galaxy.PointSet, camera Camera, w, h int) (*gg.Context, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("snapshot size must be positive, got %dx%d", w, h)
	}

	acc := NewAccumulation(w, h)
	acc.Add(camera.Project(ps, w, h, nil))

	dc := gg.NewContext(w, h)
	dc.ClearWithColor(gg.RGB(0, 0, 0))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b := acc.At(x, y)
			if r == 0 && g == 0 && b == 0 {
				continue
			}
			dc.SetPixel(x, y, gg.RGB(r, g, b))
		}
	}
	return dc, nil
}
