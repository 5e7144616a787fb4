package galaxy

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"galaxy-server/internal/shared/config"
	apperrors "galaxy-server/internal/shared/errors"
)

// ErrInvalidParameter is wrapped by every rejected parameter set.
var ErrInvalidParameter = errors.New("invalid galaxy parameter")

// Parameters shapes one generation. Spin, Randomness and RandomnessPower are
// carried for callers but do not influence the generated points.
type Parameters struct {
	Flatness        float64 `json:"flatness"`
	Tightness       float64 `json:"tightness"`
	Turns           float64 `json:"turns"`
	Count           int     `json:"count"`
	Size            float64 `json:"size"`
	Radius          float64 `json:"radius"`
	Branches        int     `json:"branches"`
	Spin            float64 `json:"spin"`
	Randomness      float64 `json:"randomness"`
	RandomnessPower float64 `json:"randomnessPower"`
	InsideColor     RGB     `json:"insideColor"`
	OutsideColor    RGB     `json:"outsideColor"`
}

func DefaultParameters() Parameters {
	return Parameters{
		Flatness:        1,
		Tightness:       0.075,
		Turns:           3,
		Count:           100000,
		Size:            0.01,
		Radius:          5,
		Branches:        1,
		Spin:            1,
		Randomness:      0.2,
		RandomnessPower: 3,
		InsideColor:     MustParseHex("#ff6030"),
		OutsideColor:    MustParseHex("#1b3984"),
	}
}

// ParametersFromConfig converts the startup configuration into a validated parameter set
func ParametersFromConfig(cfg config.GalaxyConfig) (Parameters, error) {
	inside, err := ParseHex(cfg.InsideColor)
	if err != nil {
		return Parameters{}, apperrors.WrapValidation("GALAXY_INSIDE_COLOR", err)
	}
	outside, err := ParseHex(cfg.OutsideColor)
	if err != nil {
		return Parameters{}, apperrors.WrapValidation("GALAXY_OUTSIDE_COLOR", err)
	}

	params := Parameters{
		Flatness:        cfg.Flatness,
		Tightness:       cfg.Tightness,
		Turns:           cfg.Turns,
		Count:           cfg.Count,
		Size:            cfg.Size,
		Radius:          cfg.Radius,
		Branches:        cfg.Branches,
		Spin:            cfg.Spin,
		Randomness:      cfg.Randomness,
		RandomnessPower: cfg.RandomnessPower,
		InsideColor:     inside,
		OutsideColor:    outside,
	}
	return params, params.Validate()
}

// Validate rejects parameter sets the generator cannot run with. It does not
// enforce the panel ranges.
func (p Parameters) Validate() error {
	if p.Branches < 1 {
		return apperrors.InvalidParameter(ErrInvalidParameter, "branches must be at least 1, got %d", p.Branches)
	}
	if !(p.Turns > 0) {
		return apperrors.InvalidParameter(ErrInvalidParameter, "turns must be positive, got %v", p.Turns)
	}
	if p.Radius == 0 {
		return apperrors.InvalidParameter(ErrInvalidParameter, "radius must be non-zero")
	}
	if p.Count < 0 {
		return apperrors.InvalidParameter(ErrInvalidParameter, "count must not be negative, got %d", p.Count)
	}

	for _, f := range p.floats() {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return apperrors.InvalidParameter(ErrInvalidParameter, "%s must be finite, got %v", f.name, f.value)
		}
	}
	return nil
}

type namedFloat struct {
	name  string
	value float64
}

func (p Parameters) floats() []namedFloat {
	return []namedFloat{
		{"flatness", p.Flatness},
		{"tightness", p.Tightness},
		{"turns", p.Turns},
		{"size", p.Size},
		{"radius", p.Radius},
		{"spin", p.Spin},
		{"randomness", p.Randomness},
		{"randomnessPower", p.RandomnessPower},
	}
}

// Hash identifies the parameter set bit for bit
func (p Parameters) Hash() string {
	fields := []float64{
		p.Flatness, p.Tightness, p.Turns, float64(p.Count), p.Size, p.Radius,
		float64(p.Branches), p.Spin, p.Randomness, p.RandomnessPower,
		p.InsideColor.R, p.InsideColor.G, p.InsideColor.B,
		p.OutsideColor.R, p.OutsideColor.G, p.OutsideColor.B,
	}

	h := sha256.New()
	var buf [8]byte
	for _, f := range fields {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// Summary describes an installed point set without its buffers
type Summary struct {
	Parameters  Parameters `json:"parameters"`
	Seed        uint64     `json:"seed,string"`
	Count       int        `json:"count"`
	Generation  uint64     `json:"generation"`
	Bounds      Bounds     `json:"bounds"`
	Cached      bool       `json:"cached"`
	Elapsed     float64    `json:"elapsed_ms"`
	GeneratedAt time.Time  `json:"generated_at"`
}

func (s Summary) String() string {
	return fmt.Sprintf("galaxy #%d: %d points, seed %d", s.Generation, s.Count, s.Seed)
}
