package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/alexivanou/citymark-api/internal/form"
	"github.com/alexivanou/citymark-api/internal/format"
	"github.com/alexivanou/citymark-api/internal/model"
)

// FormHandler exposes the add-city workflow over HTTP
type FormHandler struct {
	controller *form.Controller
}

// NewFormHandler creates a new form handler
func NewFormHandler(controller *form.Controller) *FormHandler {
	return &FormHandler{controller: controller}
}

// StartPosition handles POST /api/v1/form/position: a map click arriving as
// a coordinate pair. Lookup failures are part of the workflow state, so the
// response carries the resulting form either way.
func (h *FormHandler) StartPosition(w http.ResponseWriter, r *http.Request) {
	var req model.PositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		http.Error(w, "invalid coordinates range", http.StatusBadRequest)
		return
	}

	if err := h.controller.Begin(r.Context(), req.Lat, req.Lng); err != nil {
		log.Printf("Reverse geocoding failed: %v", err)
	}

	writeForm(w, h.controller.Snapshot())
}

// GetForm handles GET /api/v1/form
func (h *FormHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	writeForm(w, h.controller.Snapshot())
}

// SetField handles PATCH /api/v1/form
func (h *FormHandler) SetField(w http.ResponseWriter, r *http.Request) {
	var req model.SetFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.controller.SetField(req.Field, req.Value); err != nil {
		if errors.Is(err, form.ErrNotEditable) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeForm(w, h.controller.Snapshot())
}

// Submit handles POST /api/v1/form/submit
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	created, err := h.controller.Submit(r.Context())
	if err != nil {
		if errors.Is(err, form.ErrNotSubmittable) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		log.Printf("Error submitting city: %v", err)
		http.Error(w, "failed to save city", http.StatusInternalServerError)
		return
	}
	if created == nil {
		// the workflow was superseded while the save was in flight
		writeForm(w, h.controller.Snapshot())
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(cityResponse(*created)); err != nil {
		log.Printf("Error encoding response: %v", err)
		return
	}
}

// Reset handles DELETE /api/v1/form: the user navigated away
func (h *FormHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.controller.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func writeForm(w http.ResponseWriter, snap form.Snapshot) {
	response := model.FormResponse{
		Phase:       snap.Phase.String(),
		CityName:    snap.Draft.CityName,
		Country:     snap.Draft.Country,
		Emoji:       format.Emoji(snap.Draft.CountryCode),
		Notes:       snap.Draft.Notes,
		LookupError: snap.LookupError,
		SubmitError: snap.SubmitError,
	}
	if !snap.Draft.Date.IsZero() {
		date := snap.Draft.Date
		response.Date = &date
	}
	if snap.Phase != form.PhaseIdle {
		position := snap.Position
		response.Position = &position
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
}
