package scene

import "math"

// Accumulation sums point colours per pixel, the software equivalent of
// additive blending without depth writes.
type Accumulation struct {
	Width, Height int
	pixels        []float32
}

func NewAccumulation(w, h int) *Accumulation {
	return &Accumulation{Width: w, Height: h, pixels: make([]float32, w*h*3)}
}

func (a *Accumulation) Reset() {
	clear(a.pixels)
}

// Add splats each point as a square of its projected size, at least one pixel.
// Channels are clamped to [0, 1] per point, as a colour target would.
func (a *Accumulation) Add(points []ScreenPoint) {
	for _, p := range points {
		r, g, b := clamp01(p.R), clamp01(p.G), clamp01(p.B)

		x0, y0, x1, y1 := p.square()

		for y := max(0, y0); y < min(a.Height, y1); y++ {
			row := y * a.Width
			for x := max(0, x0); x < min(a.Width, x1); x++ {
				i := (row + x) * 3
				a.pixels[i] += r
				a.pixels[i+1] += g
				a.pixels[i+2] += b
			}
		}
	}
}

// square is the pixel span a point covers: its projected size rounded to
// whole pixels, at least one, centred on the point
func (p ScreenPoint) square() (x0, y0, x1, y1 int) {
	side := max(1, int(math.Round(float64(p.Size))))
	x0 = int(math.Floor(float64(p.X) - float64(side)/2 + 0.5))
	y0 = int(math.Floor(float64(p.Y) - float64(side)/2 + 0.5))
	return x0, y0, x0 + side, y0 + side
}

// Quad is the square a point covers in screen space with its display
// colour, ready to be drawn as two triangles
type Quad struct {
	X0, Y0, X1, Y1 float32
	R, G, B        float32
}

// MaxQuadsPerBatch keeps the four vertices of every quad addressable by
// uint16 indices
const MaxQuadsPerBatch = 65536 / 4

// Quads converts points to the same squares Add splats, appending to dst
func Quads(points []ScreenPoint, dst []Quad) []Quad {
	dst = dst[:0]
	for _, p := range points {
		x0, y0, x1, y1 := p.square()
		dst = append(dst, Quad{
			X0: float32(x0), Y0: float32(y0), X1: float32(x1), Y1: float32(y1),
			R: clamp01(p.R), G: clamp01(p.G), B: clamp01(p.B),
		})
	}
	return dst
}

// At returns the summed colour at (x, y), clamped for display
func (a *Accumulation) At(x, y int) (r, g, b float64) {
	i := (y*a.Width + x) * 3
	return float64(clamp01(a.pixels[i])), float64(clamp01(a.pixels[i+1])), float64(clamp01(a.pixels[i+2]))
}

func clamp01(v float32) float32 {
	return max(0, min(1, v))
}
