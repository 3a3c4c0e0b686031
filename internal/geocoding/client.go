package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alexivanou/citymark-api/internal/config"
	cache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Place is what the reverse-geocoding endpoint resolves a coordinate pair to.
// Any field may be empty when the provider has no data for it.
type Place struct {
	City                 string `json:"city"`
	Locality             string `json:"locality"`
	PrincipalSubdivision string `json:"principalSubdivision"`
	CountryName          string `json:"countryName"`
	CountryCode          string `json:"countryCode"`
}

// Geocoder resolves a map position to a place
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (*Place, error)
}

// Client calls a bigdatacloud-style reverse-geocode endpoint. Responses are
// cached by rounded coordinates and outbound calls are rate limited, since
// the public endpoint is metered.
type Client struct {
	endpoint   string
	httpClient *http.Client
	cache      *cache.Cache
	limiter    *rate.Limiter
}

// NewClient creates a reverse-geocoding client from configuration
func NewClient(cfg config.GeocoderConfig) *Client {
	return &Client{
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

// ReverseGeocode looks up the place at the given position
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (*Place, error) {
	key := cacheKey(lat, lng)
	if cached, found := c.cache.Get(key); found {
		place := cached.(Place)
		return &place, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid geocoder endpoint: %w", err)
	}
	query := reqURL.Query()
	query.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(lng, 'f', -1, 64))
	query.Set("localityLanguage", "en")
	reqURL.RawQuery = query.Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create reverse-geocode request: %w", err)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("failed to call reverse-geocode endpoint: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reverse-geocode endpoint returned status %d", response.StatusCode)
	}

	var place Place
	if err := json.NewDecoder(response.Body).Decode(&place); err != nil {
		return nil, fmt.Errorf("failed to decode reverse-geocode response: %w", err)
	}

	c.cache.SetDefault(key, place)
	return &place, nil
}

// cacheKey rounds coordinates so that clicks on the same spot share an entry
func cacheKey(lat, lng float64) string {
	return fmt.Sprintf("%.4f:%.4f", lat, lng)
}
