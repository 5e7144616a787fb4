package galaxy

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"
)

// PointSet is the output of one generation: interleaved x,y,z positions and
// r,g,b colours, three float32 per point each.
type PointSet struct {
	Positions  []float32
	Colors     []float32
	Count      int
	Size       float64
	Seed       uint64
	Parameters Parameters

	released atomic.Bool
}

func newPointSet(params Parameters, seed uint64) *PointSet {
	return &PointSet{
		Positions:  make([]float32, params.Count*3),
		Colors:     make([]float32, params.Count*3),
		Count:      params.Count,
		Size:       params.Size,
		Seed:       seed,
		Parameters: params,
	}
}

// Len is the number of points, zero once released
func (ps *PointSet) Len() int {
	if ps == nil || ps.released.Load() {
		return 0
	}
	return ps.Count
}

func (ps *PointSet) Position(i int) (x, y, z float32) {
	i3 := i * 3
	return ps.Positions[i3], ps.Positions[i3+1], ps.Positions[i3+2]
}

func (ps *PointSet) Color(i int) (r, g, b float32) {
	i3 := i * 3
	return ps.Colors[i3], ps.Colors[i3+1], ps.Colors[i3+2]
}

// Release drops the buffers. It is safe to call more than once.
func (ps *PointSet) Release() {
	if ps == nil || !ps.released.CompareAndSwap(false, true) {
		return
	}
	ps.Positions = nil
	ps.Colors = nil
}

func (ps *PointSet) Released() bool {
	return ps != nil && ps.released.Load()
}

// Bounds is an axis-aligned box around every point
type Bounds struct {
	Min [3]float32 `json:"min"`
	Max [3]float32 `json:"max"`
}

func (ps *PointSet) Bounds() Bounds {
	n := ps.Len()
	if n == 0 {
		return Bounds{}
	}

	b := Bounds{
		Min: [3]float32{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: [3]float32{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
	for i := 0; i < n*3; i += 3 {
		for axis := 0; axis < 3; axis++ {
			v := ps.Positions[i+axis]
			b.Min[axis] = min(b.Min[axis], v)
			b.Max[axis] = max(b.Max[axis], v)
		}
	}
	return b
}

// EncodeBuffers packs positions followed by colours as little-endian float32.
func (ps *PointSet) EncodeBuffers() []byte {
	out := make([]byte, 0, ps.Len()*6*4)
	out = AppendFloats(out, ps.Positions[:ps.Len()*3])
	return AppendFloats(out, ps.Colors[:ps.Len()*3])
}

// DecodeBuffers is the inverse of EncodeBuffers for a set of count points.
func DecodeBuffers(data []byte, params Parameters, seed uint64) (*PointSet, error) {
	want := params.Count * 6 * 4
	if len(data) != want {
		return nil, fmt.Errorf("buffer holds %d bytes, want %d for %d points", len(data), want, params.Count)
	}

	ps := newPointSet(params, seed)
	half := len(data) / 2
	readFloats(ps.Positions, data[:half])
	readFloats(ps.Colors, data[half:])
	return ps, nil
}

// AppendFloats appends each value as a little-endian float32
func AppendFloats(dst []byte, values []float32) []byte {
	for _, v := range values {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

func readFloats(dst []float32, src []byte) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
}
