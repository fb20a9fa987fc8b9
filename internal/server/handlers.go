package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Alias1177/BacktestView/internal/request"
	"github.com/Alias1177/BacktestView/internal/run"
	"github.com/Alias1177/BacktestView/models"
)

const maxFormBytes = 1 << 20

// Handlers holds the gateway endpoints
type Handlers struct {
	runner  *run.Runner
	builder *request.Builder
}

// NewHandlers creates the endpoint set
func NewHandlers(runner *run.Runner, builder *request.Builder) *Handlers {
	return &Handlers{runner: runner, builder: builder}
}

// PresetSummary is one entry of the preset picker
type PresetSummary struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListPresets handles GET /api/presets
func (h *Handlers) ListPresets(w http.ResponseWriter, r *http.Request) {
	presets := h.builder.Catalog().List()
	out := make([]PresetSummary, 0, len(presets))
	for _, p := range presets {
		out = append(out, PresetSummary{Key: p.Key, Name: p.Name})
	}
	h.writeJSON(w, http.StatusOK, out)
}

// ApplyPreset handles POST /api/presets/{key}/apply. The body is the current
// form; an empty body starts from a blank form.
func (h *Handlers) ApplyPreset(w http.ResponseWriter, r *http.Request) {
	form, err := decodeForm(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}

	form, err = h.builder.ApplyPreset(form, mux.Vars(r)["key"])
	if err != nil {
		if errors.Is(err, request.ErrUnknownPreset) {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, form)
}

// CreateRun handles POST /api/runs
func (h *Handlers) CreateRun(w http.ResponseWriter, r *http.Request) {
	form, err := decodeForm(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}

	render, err := h.runner.Run(r.Context(), form)
	if err != nil {
		h.writeError(w, runStatus(err), run.Message(err))
		return
	}

	h.writeJSON(w, http.StatusOK, render)
}

// RunStatus handles GET /api/runs/status
func (h *Handlers) RunStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]bool{"running": h.runner.Running()})
}

// NotFound handles 404 responses
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, http.StatusNotFound, "the requested endpoint does not exist")
}

func runStatus(err error) int {
	var validationErr *request.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, run.ErrRunInProgress):
		return http.StatusConflict
	}
	return http.StatusBadGateway
}

func decodeForm(r *http.Request) (request.Form, error) {
	var form request.Form
	err := json.NewDecoder(io.LimitReader(r.Body, maxFormBytes)).Decode(&form)
	if errors.Is(err, io.EOF) {
		return form, nil
	}
	return form, err
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"json encoding failed"}`, http.StatusInternalServerError)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, models.ErrorResponse{Error: message})
}
