package seeder

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexivanou/citymark-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExport(t *testing.T, content string) config.SeederConfig {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cities.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return config.SeederConfig{ExportPath: path}
}

func TestParser_ParseCities(t *testing.T) {
	cfg := writeExport(t, `{
		"cities": [
			{
				"cityName": "Lisbon",
				"country": "Portugal",
				"emoji": "🇵🇹",
				"date": "2027-10-31T15:59:59.138Z",
				"notes": "My favorite city so far!",
				"position": {"lat": 38.727881642324164, "lng": -9.140900099907554},
				"id": 73930385
			},
			{
				"cityName": "Berlin",
				"country": "Germany",
				"countryCode": "DE",
				"emoji": "🇩🇪",
				"date": "2027-02-12",
				"notes": "Amazing 😃",
				"position": {"lat": 52.53586782505711, "lng": 13.376933665713324}
			}
		]
	}`)

	cities, err := NewParser(cfg).ParseCities()
	require.NoError(t, err)
	require.Len(t, cities, 2)

	lisbon := cities[0]
	assert.Equal(t, "Lisbon", lisbon.Name)
	assert.Equal(t, "Portugal", lisbon.Country)
	assert.Equal(t, "PT", lisbon.CountryCode, "country code recovered from the flag emoji")
	assert.Equal(t, 38.727881642324164, lisbon.Lat)
	require.NotNil(t, lisbon.VisitedAt)
	assert.Equal(t, 2027, lisbon.VisitedAt.Year())
	assert.Equal(t, time.October, lisbon.VisitedAt.Month())

	berlin := cities[1]
	assert.Equal(t, "DE", berlin.CountryCode, "explicit country code wins over the emoji")
	require.NotNil(t, berlin.VisitedAt)
	assert.Equal(t, time.Date(2027, time.February, 12, 0, 0, 0, 0, time.UTC), *berlin.VisitedAt)
}

func TestParser_ParseCities_SkipsBadRecords(t *testing.T) {
	cfg := writeExport(t, `{
		"cities": [
			{"cityName": "", "position": {"lat": 1, "lng": 1}},
			{"cityName": "Nowhere", "position": {"lat": 123.4, "lng": 0}},
			{"cityName": "Lisbon", "country": "Portugal", "countryCode": "PT", "position": {"lat": 38.7, "lng": -9.1}}
		]
	}`)

	cities, err := NewParser(cfg).ParseCities()
	require.NoError(t, err)
	require.Len(t, cities, 1)
	assert.Equal(t, "Lisbon", cities[0].Name)
	assert.Nil(t, cities[0].VisitedAt, "missing date stays unset")
}

func TestParser_ParseCities_MissingFile(t *testing.T) {
	parser := NewParser(config.SeederConfig{ExportPath: filepath.Join(t.TempDir(), "missing.json")})
	_, err := parser.ParseCities()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open export")
}

func TestParser_ParseCities_InvalidJSON(t *testing.T) {
	cfg := writeExport(t, `{"cities": [`)
	_, err := NewParser(cfg).ParseCities()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode export")
}
