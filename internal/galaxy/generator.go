package galaxy

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Uniform yields draws in [0, 1). *rand.Rand satisfies it.
type Uniform interface {
	Float64() float64
}

// NewSource returns a deterministic uniform source for seed
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func RandomSeed() uint64 {
	return rand.Uint64()
}

// Particle is the full derivation of one point, kept for inspection and tests.
type Particle struct {
	Theta       float64
	BranchAngle float64
	Radius      float64
	RandomR     float64
	Phi         float64
	X, Y, Z     float64
	Color       RGB
}

// BranchAngle spreads particle indices evenly over the arms
func BranchAngle(i, branches int) float64 {
	return float64(i%branches) / float64(branches) * math.Pi * 2
}

// Generate builds a full point set. It consumes exactly four draws per particle,
// in the order theta, n1, sign, n2. Either every point is produced or an error
// is returned and nothing is.
func Generate(params Parameters, uniform Uniform) (*PointSet, error) {
	return generate(params, uniform, 0)
}

// GenerateSeeded generates with a PCG source seeded by seed
func GenerateSeeded(params Parameters, seed uint64) (*PointSet, error) {
	return generate(params, NewSource(seed), seed)
}

func generate(params Parameters, uniform Uniform, seed uint64) (*PointSet, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	ps := newPointSet(params, seed)
	for i := 0; i < params.Count; i++ {
		p, err := sampleParticle(i, params, uniform)
		if err != nil {
			return nil, fmt.Errorf("particle %d: %w", i, err)
		}

		i3 := i * 3
		ps.Positions[i3] = float32(p.X)
		ps.Positions[i3+1] = float32(p.Y)
		ps.Positions[i3+2] = float32(p.Z)

		ps.Colors[i3] = float32(p.Color.R)
		ps.Colors[i3+1] = float32(p.Color.G)
		ps.Colors[i3+2] = float32(p.Color.B)
	}
	return ps, nil
}

func sampleParticle(i int, params Parameters, uniform Uniform) (Particle, error) {
	var p Particle

	p.Theta = uniform.Float64() * params.Turns * 2 * math.Pi
	p.BranchAngle = BranchAngle(i, params.Branches)
	// the wrapped angle doubles as the distance from the centre
	p.Radius = math.Mod(p.Theta+p.BranchAngle, params.Turns*2*math.Pi)

	n1, err := Quantile(uniform.Float64())
	if err != nil {
		return p, err
	}
	sign := -1.0
	if uniform.Float64() < 0.5 {
		sign = 1
	}
	p.RandomR = n1 * sign * math.Pi * (p.Radius / params.Turns) * params.Tightness

	n2, err := Quantile(uniform.Float64())
	if err != nil {
		return p, err
	}
	p.Phi = n2 * 2 * math.Pi

	x1 := p.Radius * math.Cos(p.Theta)
	y1 := p.Radius * math.Sin(p.Theta)
	x2 := (p.Radius + p.RandomR) * math.Cos(p.Theta-p.RandomR)
	y2 := (p.Radius + p.RandomR) * math.Sin(p.Theta-p.RandomR)

	p.X = (x2-x1)*math.Cos(p.Phi) + x1
	p.Y = p.RandomR * math.Sin(p.Phi) * params.Flatness
	p.Z = (y2-y1)*math.Cos(p.Phi) + y1

	p.Color = Lerp(params.InsideColor, params.OutsideColor, p.Radius/params.Radius)
	return p, nil
}
