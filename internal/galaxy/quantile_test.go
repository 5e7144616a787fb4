package galaxy

import (
	"errors"
	"math"
	"testing"

	apperrors "galaxy-server/internal/shared/errors"

	"gonum.org/v1/gonum/stat/distuv"
)

func mustQuantile(t *testing.T, p float64) float64 {
	t.Helper()
	z, err := Quantile(p)
	if err != nil {
		t.Fatalf("Quantile(%v): %v", p, err)
	}
	return z
}

func TestQuantileCentre(t *testing.T) {
	if z := mustQuantile(t, 0.5); math.Abs(z) > 1e-6 {
		t.Errorf("Quantile(0.5) = %v, want 0", z)
	}
}

func TestQuantileMatchesReference(t *testing.T) {
	points := []float64{1e-9, 1e-6, 1e-3, 0.01, 0.02, 0.02425, 0.03, 0.1, 0.25, 0.5, 0.75, 0.9, 0.97575, 0.98, 0.999, 1 - 1e-6}
	for k := 1; k < 1000; k++ {
		points = append(points, float64(k)/1000)
	}

	for _, p := range points {
		got := mustQuantile(t, p)
		want := distuv.UnitNormal.Quantile(p)
		if diff := math.Abs(got - want); diff > 1e-8*math.Max(1, math.Abs(want)) {
			t.Errorf("Quantile(%v) = %.12f, reference %.12f (diff %g)", p, got, want, diff)
		}
	}
}

func TestQuantileSymmetric(t *testing.T) {
	for k := 1; k < 1000; k++ {
		p := float64(k) / 1000
		lo := mustQuantile(t, p)
		hi := mustQuantile(t, 1-p)
		if math.Abs(lo+hi) > 1e-9 {
			t.Errorf("Quantile(%v) = %v but Quantile(1-p) = %v", p, lo, hi)
		}
	}
}

func TestQuantileMonotonic(t *testing.T) {
	prev := math.Inf(-1)
	for k := 1; k < 10000; k++ {
		p := float64(k) / 10000
		z := mustQuantile(t, p)
		if !(z > prev) {
			t.Fatalf("Quantile not increasing at p=%v: %v <= %v", p, z, prev)
		}
		prev = z
	}
}

func TestQuantileDomain(t *testing.T) {
	for _, p := range []float64{0, 1, -0.1, 1.5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		z, err := Quantile(p)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Quantile(%v) error = %v, want ErrInvalidArgument", p, err)
		}
		if apperrors.GetType(err) != apperrors.ErrorTypeInvalidArgument {
			t.Errorf("Quantile(%v) error type = %q", p, apperrors.GetType(err))
		}
		if z != 0 {
			t.Errorf("Quantile(%v) = %v alongside an error", p, z)
		}
	}
}

func BenchmarkQuantile(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Quantile(float64(i%9999+1) / 10000)
	}
}
