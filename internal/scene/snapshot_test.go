package scene

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

func TestAccumulationIsAdditive(t *testing.T) {
	acc := NewAccumulation(4, 4)
	acc.Add([]ScreenPoint{
		{X: 1.5, Y: 1.5, Size: 0.3, R: 0.4, G: 0, B: 0},
		{X: 1.5, Y: 1.5, Size: 0.3, R: 0.4, G: 0, B: 0},
		{X: 1.5, Y: 1.5, Size: 0.3, R: 0.4, G: 2, B: -1},
	})

	r, g, b := acc.At(1, 1)
	if r < 1 || g != 1 || b != 0 {
		t.Errorf("accumulated (%v, %v, %v)", r, g, b)
	}
	if r, _, _ := acc.At(0, 0); r != 0 {
		t.Error("point bled into a neighbour")
	}

	acc.Reset()
	if r, _, _ := acc.At(1, 1); r != 0 {
		t.Error("Reset left colour behind")
	}
}

func TestAccumulationLargePoints(t *testing.T) {
	acc := NewAccumulation(10, 10)
	acc.Add([]ScreenPoint{{X: 5, Y: 5, Size: 4, R: 1, G: 1, B: 1}})

	lit := 0
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if r, _, _ := acc.At(x, y); r > 0 {
				lit++
			}
		}
	}
	if lit != 16 {
		t.Errorf("lit %d pixels, want 16", lit)
	}
}

func TestSnapshot(t *testing.T) {
	ps := pointSet(t, 0.01, []float32{0, 0, 0}, []float32{1, 0.5, 0})

	dc, err := Snapshot(ps, DefaultCamera(), 80, 60)
	if err != nil {
		t.Fatal(err)
	}
	defer dc.Close()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 80, 60) {
		t.Fatalf("bounds = %v", img.Bounds())
	}

	// the origin lands on the centre, possibly either side of a pixel edge
	lit := 0
	for y := 0; y < 60; y++ {
		for x := 0; x < 80; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r|g|b == 0 {
				continue
			}
			lit++
			if x < 39 || x > 40 || y < 29 || y > 30 {
				t.Errorf("lit pixel at (%d, %d)", x, y)
			}
			if r>>8 != 255 || g>>8 < 120 || g>>8 > 135 || b != 0 {
				t.Errorf("pixel colour = (%d, %d, %d)", r>>8, g>>8, b>>8)
			}
		}
	}
	if lit != 1 {
		t.Errorf("lit %d pixels, want 1", lit)
	}
}

func TestSnapshotRejectsEmptySize(t *testing.T) {
	ps := pointSet(t, 0.01, []float32{0, 0, 0}, []float32{1, 1, 1})
	if _, err := Snapshot(ps, DefaultCamera(), 0, 10); err == nil {
		t.Error("expected an error for a zero width")
	}
}

func TestQuadsMatchSplats(t *testing.T) {
	points := []ScreenPoint{
		{X: 10.2, Y: 5.7, Size: 0.2, R: 2, G: 0.5, B: -1},
		{X: 20, Y: 20, Size: 3.6, R: 1, G: 1, B: 1},
	}

	quads := Quads(points, nil)
	if len(quads) != 2 {
		t.Fatalf("quads = %d, want 2", len(quads))
	}

	small := quads[0]
	if small.X1-small.X0 != 1 || small.Y1-small.Y0 != 1 {
		t.Errorf("small point covers %vx%v, want 1x1", small.X1-small.X0, small.Y1-small.Y0)
	}
	if small.X0 != 10 || small.Y0 != 5 {
		t.Errorf("small point at (%v, %v), want (10, 5)", small.X0, small.Y0)
	}
	if small.R != 1 || small.G != 0.5 || small.B != 0 {
		t.Errorf("colour not clamped: %v %v %v", small.R, small.G, small.B)
	}

	large := quads[1]
	if large.X1-large.X0 != 4 {
		t.Errorf("large point side = %v, want 4", large.X1-large.X0)
	}

	acc := NewAccumulation(40, 40)
	acc.Add(points[1:])
	lit := 0
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if r, _, _ := acc.At(x, y); r > 0 {
				lit++
				if float32(x) < large.X0 || float32(x) >= large.X1 || float32(y) < large.Y0 || float32(y) >= large.Y1 {
					t.Errorf("splat pixel (%d, %d) outside quad", x, y)
				}
			}
		}
	}
	if lit != 16 {
		t.Errorf("lit pixels = %d, want 16", lit)
	}
}
