package scene

import (
	"io"
	"log/slog"
	"testing"

	"galaxy-server/internal/galaxy"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// pointSet builds a set from explicit x,y,z and r,g,b triples
func pointSet(t *testing.T, size float64, positions, colors []float32) *galaxy.PointSet {
	t.Helper()

	params := galaxy.DefaultParameters()
	params.Count = len(positions) / 3
	params.Size = size

	data := galaxy.AppendFloats(nil, positions)
	data = galaxy.AppendFloats(data, colors)
	ps, err := galaxy.DecodeBuffers(data, params, 0)
	if err != nil {
		t.Fatal(err)
	}
	return ps
}
