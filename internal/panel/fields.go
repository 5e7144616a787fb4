package panel

import (
	"math"
	"strconv"

	"galaxy-server/internal/galaxy"
)

type Kind string

const (
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindColor   Kind = "color"
)

// Range is the recognised span and step of a numeric field
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// Field describes one panel control with its default and current value
type Field struct {
	Name    string `json:"name"`
	Kind    Kind   `json:"kind"`
	Range   *Range `json:"range,omitempty"`
	Default any    `json:"default"`
	Value   any    `json:"value"`
}

type numeric struct {
	name string
	kind Kind
	rng  Range
	get  func(*galaxy.Parameters) float64
	set  func(*galaxy.Parameters, float64)
}

type colour struct {
	name string
	get  func(*galaxy.Parameters) galaxy.RGB
	set  func(*galaxy.Parameters, galaxy.RGB)
}

var numerics = []numeric{
	{"flatness", KindNumber, Range{0, 2, 0.1},
		func(p *galaxy.Parameters) float64 { return p.Flatness },
		func(p *galaxy.Parameters, v float64) { p.Flatness = v }},
	{"tightness", KindNumber, Range{0, 2, 0.05},
		func(p *galaxy.Parameters) float64 { return p.Tightness },
		func(p *galaxy.Parameters, v float64) { p.Tightness = v }},
	{"turns", KindNumber, Range{0.5, 5, 0.1},
		func(p *galaxy.Parameters) float64 { return p.Turns },
		func(p *galaxy.Parameters, v float64) { p.Turns = v }},
	{"count", KindInteger, Range{100, 1000000, 100},
		func(p *galaxy.Parameters) float64 { return float64(p.Count) },
		func(p *galaxy.Parameters, v float64) { p.Count = int(v) }},
	{"size", KindNumber, Range{0.001, 0.1, 0.001},
		func(p *galaxy.Parameters) float64 { return p.Size },
		func(p *galaxy.Parameters, v float64) { p.Size = v }},
	{"radius", KindNumber, Range{0.01, 20, 0.01},
		func(p *galaxy.Parameters) float64 { return p.Radius },
		func(p *galaxy.Parameters, v float64) { p.Radius = v }},
	{"branches", KindInteger, Range{1, 20, 1},
		func(p *galaxy.Parameters) float64 { return float64(p.Branches) },
		func(p *galaxy.Parameters, v float64) { p.Branches = int(v) }},
	{"spin", KindNumber, Range{-5, 5, 0.001},
		func(p *galaxy.Parameters) float64 { return p.Spin },
		func(p *galaxy.Parameters, v float64) { p.Spin = v }},
	{"randomness", KindNumber, Range{0, 2, 0.001},
		func(p *galaxy.Parameters) float64 { return p.Randomness },
		func(p *galaxy.Parameters, v float64) { p.Randomness = v }},
	{"randomnessPower", KindNumber, Range{1, 10, 0.001},
		func(p *galaxy.Parameters) float64 { return p.RandomnessPower },
		func(p *galaxy.Parameters, v float64) { p.RandomnessPower = v }},
}

var colours = []colour{
	{"insideColor",
		func(p *galaxy.Parameters) galaxy.RGB { return p.InsideColor },
		func(p *galaxy.Parameters, c galaxy.RGB) { p.InsideColor = c }},
	{"outsideColor",
		func(p *galaxy.Parameters) galaxy.RGB { return p.OutsideColor },
		func(p *galaxy.Parameters, c galaxy.RGB) { p.OutsideColor = c }},
}

// NumericNames lists the numeric fields in panel order
func NumericNames() []string {
	names := make([]string, len(numerics))
	for i, n := range numerics {
		names[i] = n.name
	}
	return names
}

func lookupNumeric(name string) (numeric, bool) {
	for _, n := range numerics {
		if n.name == name {
			return n, true
		}
	}
	return numeric{}, false
}

func lookupColour(name string) (colour, bool) {
	for _, c := range colours {
		if c.name == name {
			return c, true
		}
	}
	return colour{}, false
}

// snap rounds v to the step grid and clamps it to the range. The grid is
// anchored at zero and the result trimmed to 15 significant digits so steps
// like 0.1 do not accumulate binary noise.
func (r Range) snap(v float64) float64 {
	if r.Step > 0 {
		v = math.Round(v/r.Step) * r.Step
		v, _ = strconv.ParseFloat(strconv.FormatFloat(v, 'g', 15, 64), 64)
	}
	return max(r.Min, min(r.Max, v))
}

func (r Range) contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func fields(current galaxy.Parameters) []Field {
	defaults := galaxy.DefaultParameters()
	out := make([]Field, 0, len(numerics)+len(colours))

	for _, n := range numerics {
		rng := n.rng
		out = append(out, Field{
			Name:    n.name,
			Kind:    n.kind,
			Range:   &rng,
			Default: n.get(&defaults),
			Value:   n.get(&current),
		})
	}
	for _, c := range colours {
		out = append(out, Field{
			Name:    c.name,
			Kind:    KindColor,
			Default: c.get(&defaults).Hex(),
			Value:   c.get(&current).Hex(),
		})
	}
	return out
}
