package galaxy

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"galaxy-server/internal/shared/config"
)

func TestDefaultParametersAreValid(t *testing.T) {
	if err := DefaultParameters().Validate(); err != nil {
		t.Fatalf("defaults rejected: %v", err)
	}
}

func TestValidateAcceptsOutsidePanelRanges(t *testing.T) {
	p := DefaultParameters()
	p.Radius = -2
	p.Tightness = 40
	p.Flatness = -1
	p.Branches = 100

	if err := p.Validate(); err != nil {
		t.Errorf("generator-valid parameters rejected: %v", err)
	}
}

func TestValidateNamesTheField(t *testing.T) {
	p := DefaultParameters()
	p.Size = math.Inf(-1)

	err := p.Validate()
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("error = %v", err)
	}
	if !strings.Contains(err.Error(), "size") {
		t.Errorf("error %q does not name the field", err)
	}
}

func TestHash(t *testing.T) {
	a := DefaultParameters()
	b := DefaultParameters()
	if a.Hash() != b.Hash() {
		t.Error("equal parameters hash differently")
	}
	if len(a.Hash()) != 32 {
		t.Errorf("hash length = %d", len(a.Hash()))
	}

	b.Spin = 2
	if a.Hash() == b.Hash() {
		t.Error("hash ignores spin")
	}

	c := DefaultParameters()
	c.OutsideColor.G += 1e-12
	if a.Hash() == c.Hash() {
		t.Error("hash ignores colour bits")
	}
}

func TestParametersFromConfig(t *testing.T) {
	cfg := config.GalaxyConfig{
		Flatness:        0.5,
		Tightness:       0.1,
		Turns:           2,
		Count:           1000,
		Size:            0.02,
		Radius:          4,
		Branches:        3,
		Spin:            1,
		Randomness:      0.2,
		RandomnessPower: 3,
		InsideColor:     "#ffffff",
		OutsideColor:    "#000",
	}

	p, err := ParametersFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if p.Branches != 3 || p.Turns != 2 || p.Count != 1000 {
		t.Errorf("unexpected parameters: %+v", p)
	}
	if p.InsideColor != (RGB{1, 1, 1}) || p.OutsideColor != (RGB{}) {
		t.Errorf("colours = %v / %v", p.InsideColor, p.OutsideColor)
	}

	cfg.InsideColor = "red"
	if _, err := ParametersFromConfig(cfg); err == nil {
		t.Error("expected an error for a non-hex colour")
	}

	cfg.InsideColor = "#ffffff"
	cfg.Branches = 0
	if _, err := ParametersFromConfig(cfg); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("error = %v, want ErrInvalidParameter", err)
	}
}

func TestParametersJSON(t *testing.T) {
	data, err := json.Marshal(DefaultParameters())
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"randomnessPower":3`, `"insideColor":"#ff6030"`, `"outsideColor":"#1b3984"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("%s missing from %s", key, data)
		}
	}

	var p Parameters
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatal(err)
	}
	if p.Hash() != DefaultParameters().Hash() {
		t.Error("round trip changed the parameters")
	}
}

func TestSummaryJSONSeedIsString(t *testing.T) {
	s := Summary{Seed: math.MaxUint64, Count: 3}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"seed":"18446744073709551615"`) {
		t.Errorf("seed not encoded as a string: %s", data)
	}
}
