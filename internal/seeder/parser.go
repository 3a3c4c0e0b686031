package seeder

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alexivanou/citymark-api/internal/config"
	"github.com/alexivanou/citymark-api/internal/format"
	"github.com/alexivanou/citymark-api/internal/model"
)

// Parser reads a visited-cities JSON export, the format the original
// map client keeps its data in:
//
//	{"cities": [{"cityName": "...", "country": "...", "emoji": "...",
//	             "date": "...", "notes": "...", "position": {"lat": .., "lng": ..}}]}
type Parser struct {
	path string
}

// NewParser creates a new parser instance with config
func NewParser(cfg config.SeederConfig) *Parser {
	return &Parser{path: cfg.ExportPath}
}

type export struct {
	Cities []cityRecord `json:"cities"`
}

type cityRecord struct {
	CityName    string         `json:"cityName"`
	Country     string         `json:"country"`
	CountryCode string         `json:"countryCode"`
	Emoji       string         `json:"emoji"`
	Date        string         `json:"date"`
	Notes       string         `json:"notes"`
	Position    model.Position `json:"position"`
}

// ParseCities parses the export and returns the importable cities. Records
// without a city name or with out-of-range coordinates are skipped. Older
// exports carry only the flag emoji; the country code is recovered from it.
func (p *Parser) ParseCities() ([]model.City, error) {
	file, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export %s: %w", p.path, err)
	}
	defer file.Close()

	var data export
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode export %s: %w", p.path, err)
	}

	var cities []model.City
	for _, record := range data.Cities {
		if record.CityName == "" {
			continue
		}
		if record.Position.Lat < -90 || record.Position.Lat > 90 ||
			record.Position.Lng < -180 || record.Position.Lng > 180 {
			continue
		}

		code := record.CountryCode
		if code == "" {
			code = format.CountryCode(record.Emoji)
		}

		city := model.City{
			Name:        record.CityName,
			Country:     record.Country,
			CountryCode: code,
			Lat:         record.Position.Lat,
			Lng:         record.Position.Lng,
			Notes:       record.Notes,
		}
		if record.Date != "" {
			if date, err := parseDate(record.Date); err == nil {
				city.VisitedAt = &date
			}
		}

		cities = append(cities, city)
	}

	return cities, nil
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
