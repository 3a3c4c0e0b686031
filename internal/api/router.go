package api

import (
	"github.com/alexivanou/citymark-api/internal/form"
	"github.com/alexivanou/citymark-api/internal/stats"
	"github.com/alexivanou/citymark-api/internal/store"
	"github.com/gorilla/mux"
)

// NewRouter creates a new HTTP router
func NewRouter(store store.Interface, controller *form.Controller, statsCollector *stats.Collector) *mux.Router {
	handler := NewHandler(store)
	formHandler := NewFormHandler(controller)
	statsHandler := NewStatsHandler(statsCollector)

	router := mux.NewRouter()

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/cities", handler.ListCities).Methods("GET")
	v1.HandleFunc("/cities", handler.CreateCity).Methods("POST")
	v1.HandleFunc("/cities/{id}", handler.GetCity).Methods("GET")
	v1.HandleFunc("/cities/{id}", handler.DeleteCity).Methods("DELETE")
	v1.HandleFunc("/countries", handler.ListCountries).Methods("GET")

	v1.HandleFunc("/form/position", formHandler.StartPosition).Methods("POST")
	v1.HandleFunc("/form", formHandler.GetForm).Methods("GET")
	v1.HandleFunc("/form", formHandler.SetField).Methods("PATCH")
	v1.HandleFunc("/form", formHandler.Reset).Methods("DELETE")
	v1.HandleFunc("/form/submit", formHandler.Submit).Methods("POST")

	v1.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")

	return router
}
