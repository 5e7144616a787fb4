package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"galaxy-server/internal/middleware"
	"galaxy-server/internal/preset"
	"galaxy-server/internal/shared/errors"
	"galaxy-server/internal/shared/response"
)

type PresetHandler struct {
	service *preset.Service
}

func NewPresetHandler(service *preset.Service) *PresetHandler {
	return &PresetHandler{service: service}
}

func (h *PresetHandler) ListPresets(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_presets")

	presets, err := h.service.List(r.Context())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	if presets == nil {
		presets = []preset.Preset{}
	}

	response.Success(w, http.StatusOK, presets)
}

func (h *PresetHandler) GetPreset(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_preset")

	id, err := presetID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, p)
}

func (h *PresetHandler) CreatePreset(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "create_preset")

	var req preset.CreateRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<12)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid JSON in request body", err))
		return
	}

	createdBy := ""
	if claims := middleware.GetUserFromContext(r); claims != nil {
		createdBy = claims.Login
	}

	p, err := h.service.SaveCurrent(r.Context(), req.Name, createdBy)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, p)
}

func (h *PresetHandler) ApplyPreset(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "apply_preset")

	id, err := presetID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	summary, err := h.service.Apply(r.Context(), id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, summary)
}

func (h *PresetHandler) DeletePreset(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "delete_preset")

	id, err := presetID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func presetID(r *http.Request) (int, error) {
	idStr := r.PathValue("id")
	if idStr == "" {
		return 0, errors.Validation("preset ID is required")
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, errors.WrapValidation("invalid preset ID format", err)
	}
	return id, nil
}
