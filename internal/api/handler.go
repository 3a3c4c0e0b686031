package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alexivanou/citymark-api/internal/format"
	"github.com/alexivanou/citymark-api/internal/model"
	"github.com/alexivanou/citymark-api/internal/repository"
	"github.com/alexivanou/citymark-api/internal/store"
	"github.com/gorilla/mux"
)

// Handler handles HTTP requests for the visited-city collection
type Handler struct {
	store store.Interface
}

// NewHandler creates a new handler instance
func NewHandler(store store.Interface) *Handler {
	return &Handler{store: store}
}

// ListCities handles GET /api/v1/cities
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	if err := h.store.LoadAll(r.Context()); err != nil {
		log.Printf("Error loading cities: %v", err)
		http.Error(w, "failed to load cities", http.StatusInternalServerError)
		return
	}

	snap := h.store.Snapshot()
	response := model.CitiesResponse{Cities: make([]model.CityResponse, 0, len(snap.Cities))}
	for _, city := range snap.Cities {
		response.Cities = append(response.Cities, cityResponse(city))
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
}

// GetCity handles GET /api/v1/cities/{id}
func (h *Handler) GetCity(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid city id", http.StatusBadRequest)
		return
	}

	if err := h.store.GetCity(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrCityNotFound) {
			http.Error(w, "city not found", http.StatusNotFound)
			return
		}
		log.Printf("Error getting city: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	snap := h.store.Snapshot()
	if snap.CurrentCity == nil {
		http.Error(w, "city not found", http.StatusNotFound)
		return
	}

	city := *snap.CurrentCity
	response := model.CityDetailResponse{
		CityResponse:  cityResponse(city),
		FormattedDate: format.VisitDate(city.VisitedAt),
		WikipediaURL:  "https://en.wikipedia.org/wiki/" + url.PathEscape(city.Name),
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
}

// CreateCity handles POST /api/v1/cities
func (h *Handler) CreateCity(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.CityName == "" {
		http.Error(w, "cityName is required", http.StatusBadRequest)
		return
	}
	if req.Position.Lat < -90 || req.Position.Lat > 90 || req.Position.Lng < -180 || req.Position.Lng > 180 {
		http.Error(w, "invalid coordinates range", http.StatusBadRequest)
		return
	}

	candidate := model.City{
		Name:        req.CityName,
		Country:     req.Country,
		CountryCode: req.CountryCode,
		Lat:         req.Position.Lat,
		Lng:         req.Position.Lng,
		VisitedAt:   req.Date,
		Notes:       req.Notes,
	}

	created, err := h.store.Create(r.Context(), candidate)
	if err != nil {
		log.Printf("Error creating city: %v", err)
		http.Error(w, "failed to save city", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(cityResponse(*created)); err != nil {
		log.Printf("Error encoding response: %v", err)
		return
	}
}

// DeleteCity handles DELETE /api/v1/cities/{id}
func (h *Handler) DeleteCity(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid city id", http.StatusBadRequest)
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrCityNotFound) {
			http.Error(w, "city not found", http.StatusNotFound)
			return
		}
		log.Printf("Error deleting city: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCountries handles GET /api/v1/countries
func (h *Handler) ListCountries(w http.ResponseWriter, r *http.Request) {
	if err := h.store.LoadAll(r.Context()); err != nil {
		log.Printf("Error loading cities: %v", err)
		http.Error(w, "failed to load cities", http.StatusInternalServerError)
		return
	}

	snap := h.store.Snapshot()
	seen := make(map[string]bool)
	response := model.CountriesResponse{Countries: []model.CountryResponse{}}
	for _, city := range snap.Cities {
		if seen[city.Country] {
			continue
		}
		seen[city.Country] = true
		response.Countries = append(response.Countries, model.CountryResponse{
			Country: city.Country,
			Emoji:   format.Emoji(city.CountryCode),
		})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// cityResponse maps a stored city to its API shape, deriving the flag emoji
// from the country code
func cityResponse(c model.City) model.CityResponse {
	return model.CityResponse{
		ID:       c.ID,
		CityName: c.Name,
		Country:  c.Country,
		Emoji:    format.Emoji(c.CountryCode),
		Date:     c.VisitedAt,
		Notes:    c.Notes,
		Position: c.Position(),
	}
}
