package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexivanou/citymark-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(endpoint string) config.GeocoderConfig {
	return config.GeocoderConfig{
		Endpoint:          endpoint,
		Timeout:           5 * time.Second,
		CacheTTL:          time.Minute,
		RequestsPerSecond: 100,
	}
}

func TestClient_ReverseGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "38.7", r.URL.Query().Get("latitude"))
		assert.Equal(t, "-9.1", r.URL.Query().Get("longitude"))
		assert.Equal(t, "en", r.URL.Query().Get("localityLanguage"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"city":"Lisbon","locality":"Lisboa","principalSubdivision":"Lisboa","countryName":"Portugal","countryCode":"PT"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	place, err := client.ReverseGeocode(context.Background(), 38.7, -9.1)
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", place.City)
	assert.Equal(t, "Portugal", place.CountryName)
	assert.Equal(t, "PT", place.CountryCode)
}

func TestClient_ReverseGeocode_CachesByPosition(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Write([]byte(`{"city":"Lisbon","countryName":"Portugal","countryCode":"PT"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	first, err := client.ReverseGeocode(context.Background(), 38.7, -9.1)
	require.NoError(t, err)
	second, err := client.ReverseGeocode(context.Background(), 38.7, -9.1)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&requests), "second lookup for the same spot must hit the cache")
	assert.Equal(t, first, second)
}

func TestClient_ReverseGeocode_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	_, err := client.ReverseGeocode(context.Background(), 38.7, -9.1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestClient_ReverseGeocode_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	_, err := client.ReverseGeocode(context.Background(), 38.7, -9.1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}

func TestClient_ReverseGeocode_EmptyFieldsAreNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Open ocean: the endpoint still answers 200 with empty fields
		w.Write([]byte(`{"city":"","locality":"","countryName":"","countryCode":""}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	place, err := client.ReverseGeocode(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, place.City)
	assert.Empty(t, place.Locality)
}
