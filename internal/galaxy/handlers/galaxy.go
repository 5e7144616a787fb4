package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"galaxy-server/internal/galaxy"
	"galaxy-server/internal/panel"
	"galaxy-server/internal/scene"
	"galaxy-server/internal/shared/config"
	"galaxy-server/internal/shared/errors"
	"galaxy-server/internal/shared/response"
)

type GalaxyHandler struct {
	service *galaxy.Service
	panel   *panel.Panel
	stage   *scene.Stage
	render  config.RenderConfig
}

func NewGalaxyHandler(service *galaxy.Service, panel *panel.Panel, stage *scene.Stage, render config.RenderConfig) *GalaxyHandler {
	return &GalaxyHandler{
		service: service,
		panel:   panel,
		stage:   stage,
		render:  render,
	}
}

// parametersRequest accepts a partial parameter set; omitted fields keep
// their committed values.
type parametersRequest struct {
	galaxy.Parameters
	Seed json.RawMessage `json:"seed,omitempty"`
}

func (h *GalaxyHandler) GetGalaxy(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_galaxy")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	summary, ok := h.service.Current()
	if !ok {
		response.Error(w, r, logger, errors.NotFoundf("no galaxy installed yet"))
		return
	}

	response.Success(w, http.StatusOK, summary)
}

func (h *GalaxyHandler) GetFields(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_fields")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	response.Success(w, http.StatusOK, h.panel.Fields())
}

func (h *GalaxyHandler) UpdateParameters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "update_parameters")

	if r.Method != http.MethodPut {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	req := parametersRequest{Parameters: h.panel.Committed()}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid JSON in request body", err))
		return
	}

	seed, err := parseSeed(req.Seed)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	summary, err := h.panel.Apply(ctx, req.Parameters, seed)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	logger.Info("Galaxy parameters updated", "generation", summary.Generation, "seed", summary.Seed)
	response.Success(w, http.StatusOK, summary)
}

// Regenerate rebuilds the committed parameters with a new seed, or with the
// seed given in the query.
func (h *GalaxyHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "regenerate")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var seed *uint64
	if s := r.URL.Query().Get("seed"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid seed", err))
			return
		}
		seed = &v
	}

	summary, err := h.panel.ReseedWithSeed(ctx, seed)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, summary)
}

func (h *GalaxyHandler) GetBuffers(w http.ResponseWriter, r *http.Request) {
	h.writeBuffers(w, r, "get_buffers", func(ps *galaxy.PointSet) []byte {
		return ps.EncodeBuffers()
	})
}

func (h *GalaxyHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	h.writeBuffers(w, r, "get_positions", func(ps *galaxy.PointSet) []byte {
		return galaxy.AppendFloats(nil, ps.Positions[:ps.Len()*3])
	})
}

func (h *GalaxyHandler) GetColors(w http.ResponseWriter, r *http.Request) {
	h.writeBuffers(w, r, "get_colors", func(ps *galaxy.PointSet) []byte {
		return galaxy.AppendFloats(nil, ps.Colors[:ps.Len()*3])
	})
}

func (h *GalaxyHandler) writeBuffers(w http.ResponseWriter, r *http.Request, name string, encode func(*galaxy.PointSet) []byte) {
	logger := slog.With("handler", name)

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var (
		body       []byte
		count      int
		seed       uint64
		generation uint64
	)
	h.stage.Frame(func(ps *galaxy.PointSet, gen uint64) {
		if ps == nil {
			return
		}
		body = encode(ps)
		count = ps.Len()
		seed = ps.Seed
		generation = gen
	})

	if generation == 0 {
		response.Error(w, r, logger, errors.NotFoundf("no galaxy installed yet"))
		return
	}

	w.Header().Set("X-Galaxy-Count", strconv.Itoa(count))
	w.Header().Set("X-Galaxy-Seed", strconv.FormatUint(seed, 10))
	w.Header().Set("X-Galaxy-Generation", strconv.FormatUint(generation, 10))
	response.Binary(w, "application/octet-stream", body)
}

func (h *GalaxyHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_snapshot")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	query := r.URL.Query()
	width, err := queryInt(query.Get("width"), h.render.SnapshotWidth)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	height, err := queryInt(query.Get("height"), h.render.SnapshotHeight)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	if width < 1 || height < 1 || width > h.render.MaxSnapshotSide || height > h.render.MaxSnapshotSide {
		response.Error(w, r, logger, errors.Validationf("snapshot size must be between 1 and %d per side", h.render.MaxSnapshotSide))
		return
	}

	camera := scene.CameraFromConfig(h.render)
	for name, dst := range map[string]*float64{
		"azimuth":   &camera.Azimuth,
		"elevation": &camera.Elevation,
		"distance":  &camera.Distance,
	} {
		if s := query.Get(name); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				response.Error(w, r, logger, errors.WrapValidation("invalid "+name, err))
				return
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				response.Error(w, r, logger, errors.Validationf("%s must be finite", name))
				return
			}
			*dst = v
		}
	}
	// same bounds as an orbiting camera
	camera.SetDistance(camera.Distance)

	var (
		buf       bytes.Buffer
		rendered  bool
		renderErr error
	)
	h.stage.Frame(func(ps *galaxy.PointSet, _ uint64) {
		if ps == nil {
			return
		}
		rendered = true

		dc, err := scene.Snapshot(ps, camera, width, height)
		if err != nil {
			renderErr = err
			return
		}
		defer dc.Close()
		renderErr = dc.EncodePNG(&buf)
	})

	if !rendered {
		response.Error(w, r, logger, errors.NotFoundf("no galaxy installed yet"))
		return
	}
	if renderErr != nil {
		response.Error(w, r, logger, errors.WrapInternal("failed to render snapshot", renderErr))
		return
	}

	response.Binary(w, "image/png", buf.Bytes())
}

type quantileResponse struct {
	P float64 `json:"p"`
	Z float64 `json:"z"`
}

func (h *GalaxyHandler) GetQuantile(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_quantile")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	raw := r.URL.Query().Get("p")
	if raw == "" {
		response.Error(w, r, logger, errors.Validation("query parameter p is required"))
		return
	}
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid probability", err))
		return
	}

	z, err := galaxy.Quantile(p)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, quantileResponse{P: p, Z: z})
}

// parseSeed accepts a seed as a JSON number or a decimal string
func parseSeed(raw json.RawMessage) (*uint64, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, errors.WrapValidation("seed must be an unsigned 64-bit integer", err)
	}
	return &v, nil
}

func queryInt(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.WrapValidation("invalid integer "+strconv.Quote(s), err)
	}
	return v, nil
}
