package galaxy

import (
	"slices"
	"sync"
	"testing"
)

func TestPointSetRelease(t *testing.T) {
	params := DefaultParameters()
	params.Count = 10
	ps, err := GenerateSeeded(params, 1)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ps.Release()
		}()
	}
	wg.Wait()

	if !ps.Released() || ps.Len() != 0 || ps.Positions != nil {
		t.Error("released set still exposes points")
	}
	if b := ps.Bounds(); b != (Bounds{}) {
		t.Errorf("released bounds = %+v", b)
	}

	var nilSet *PointSet
	nilSet.Release()
	if nilSet.Len() != 0 {
		t.Error("nil set has points")
	}
}

func TestPointSetBounds(t *testing.T) {
	ps := newPointSet(Parameters{Count: 3}, 0)
	copy(ps.Positions, []float32{
		1, -2, 3,
		-4, 5, 0,
		2, 0, -6,
	})

	want := Bounds{Min: [3]float32{-4, -2, -6}, Max: [3]float32{2, 5, 3}}
	if got := ps.Bounds(); got != want {
		t.Errorf("Bounds() = %+v, want %+v", got, want)
	}
}

func TestBuffersRoundTrip(t *testing.T) {
	params := DefaultParameters()
	params.Count = 64
	ps, err := GenerateSeeded(params, 5)
	if err != nil {
		t.Fatal(err)
	}

	data := ps.EncodeBuffers()
	if len(data) != params.Count*24 {
		t.Fatalf("encoded %d bytes", len(data))
	}

	back, err := DecodeBuffers(data, params, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(back.Positions, ps.Positions) || !slices.Equal(back.Colors, ps.Colors) {
		t.Error("decoded buffers differ")
	}
	if back.Seed != 5 || back.Count != 64 {
		t.Errorf("metadata lost: seed=%d count=%d", back.Seed, back.Count)
	}

	if _, err := DecodeBuffers(data[:len(data)-4], params, 5); err == nil {
		t.Error("expected a length error")
	}
}
