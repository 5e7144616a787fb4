package scene

import (
	"math"

	"galaxy-server/internal/galaxy"
	"galaxy-server/internal/shared/config"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// fraction of the pending motion applied per 60 Hz frame
	dampingFactor = 0.05
	maxElevation  = math.Pi/2 - 0.01
	minDistance   = 0.5
)

// Camera orbits the origin. Orbit and Zoom queue motion that Update eases in.
type Camera struct {
	Azimuth   float64
	Elevation float64
	Distance  float64
	FOV       float64 // vertical, degrees
	Near      float64
	Far       float64

	pendingAzimuth   float64
	pendingElevation float64
	pendingZoom      float64 // log of the distance factor
}

// NewCamera places the camera at (x, y, z) looking at the origin
func NewCamera(x, y, z, fov, near, far float64) Camera {
	distance := math.Sqrt(x*x + y*y + z*z)
	c := Camera{
		Distance: distance,
		FOV:      fov,
		Near:     near,
		Far:      far,
	}
	if distance > 0 {
		c.Azimuth = math.Atan2(z, x)
		c.Elevation = math.Asin(y / distance)
	}
	return c
}

func DefaultCamera() Camera {
	return NewCamera(3, 3, 3, 75, 0.1, 100)
}

func CameraFromConfig(cfg config.RenderConfig) Camera {
	return NewCamera(cfg.CameraX, cfg.CameraY, cfg.CameraZ, cfg.FOV, cfg.Near, cfg.Far)
}

func (c *Camera) Position() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(c.Distance * math.Cos(c.Azimuth) * math.Cos(c.Elevation)),
		float32(c.Distance * math.Sin(c.Elevation)),
		float32(c.Distance * math.Sin(c.Azimuth) * math.Cos(c.Elevation)),
	}
}

// ViewProjection is projection * view for the given aspect ratio
func (c *Camera) ViewProjection(aspect float32) mgl32.Mat4 {
	proj := mgl32.Perspective(mgl32.DegToRad(float32(c.FOV)), aspect, float32(c.Near), float32(c.Far))
	view := mgl32.LookAtV(c.Position(), mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	return proj.Mul4(view)
}

// Orbit queues a rotation in radians
func (c *Camera) Orbit(dAzimuth, dElevation float64) {
	c.pendingAzimuth += dAzimuth
	c.pendingElevation += dElevation
}

// Zoom queues a distance change; factor > 1 moves away
func (c *Camera) Zoom(factor float64) {
	if factor > 0 {
		c.pendingZoom += math.Log(factor)
	}
}

// Update applies part of the queued motion for a frame of dt seconds
func (c *Camera) Update(dt float64) {
	f := 1 - math.Pow(1-dampingFactor, dt*60)

	stepAz := c.pendingAzimuth * f
	stepEl := c.pendingElevation * f
	stepZoom := c.pendingZoom * f
	c.pendingAzimuth -= stepAz
	c.pendingElevation -= stepEl
	c.pendingZoom -= stepZoom

	c.Azimuth = math.Mod(c.Azimuth+stepAz, 2*math.Pi)
	c.Elevation = max(-maxElevation, min(maxElevation, c.Elevation+stepEl))
	c.SetDistance(c.Distance * math.Exp(stepZoom))
}

// SetDistance moves the camera along its view ray, clamped to [0.5, Far]
func (c *Camera) SetDistance(d float64) {
	c.Distance = max(minDistance, min(c.Far, d))
}

// Settled reports whether no queued motion is left worth a redraw
func (c *Camera) Settled() bool {
	const eps = 1e-5
	return math.Abs(c.pendingAzimuth) < eps && math.Abs(c.pendingElevation) < eps && math.Abs(c.pendingZoom) < eps
}

// ScreenPoint is a projected point in pixel coordinates, origin top left
type ScreenPoint struct {
	X, Y    float32
	Depth   float32
	Size    float32 // pixels
	R, G, B float32
}

// Project maps every point of ps onto a w by h viewport, dropping points
// outside the view volume. Point sizes shrink with depth. dst is reused.
func (c *Camera) Project(ps *galaxy.PointSet, w, h int, dst []ScreenPoint) []ScreenPoint {
	dst = dst[:0]
	n := ps.Len()
	if n == 0 || w <= 0 || h <= 0 {
		return dst
	}

	vp := c.ViewProjection(float32(w) / float32(h))
	scale := float32(h) / 2
	size := float32(ps.Size)

	for i := 0; i < n; i++ {
		x, y, z := ps.Position(i)
		clip := vp.Mul4x1(mgl32.Vec4{x, y, z, 1})

		depth := clip.W()
		if depth <= float32(c.Near) {
			continue
		}
		ndcX, ndcY, ndcZ := clip.X()/depth, clip.Y()/depth, clip.Z()/depth
		if ndcZ < -1 || ndcZ > 1 || ndcX < -1.1 || ndcX > 1.1 || ndcY < -1.1 || ndcY > 1.1 {
			continue
		}

		r, g, b := ps.Color(i)
		dst = append(dst, ScreenPoint{
			X:     (ndcX + 1) / 2 * float32(w),
			Y:     (1 - ndcY) / 2 * float32(h),
			Depth: depth,
			Size:  size * scale / depth,
			R:     r,
			G:     g,
			B:     b,
		})
	}
	return dst
}
