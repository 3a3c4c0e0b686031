package model

import "time"

// CreateCityRequest represents the request body for adding a visited city
type CreateCityRequest struct {
	CityName    string     `json:"cityName"`
	Country     string     `json:"country"`
	CountryCode string     `json:"countryCode"`
	Date        *time.Time `json:"date"`
	Notes       string     `json:"notes"`
	Position    Position   `json:"position"`
}

// CityResponse represents a visited city in list responses and map markers
type CityResponse struct {
	ID       int64      `json:"id"`
	CityName string     `json:"cityName"`
	Country  string     `json:"country"`
	Emoji    string     `json:"emoji"`
	Date     *time.Time `json:"date,omitempty"`
	Notes    string     `json:"notes,omitempty"`
	Position Position   `json:"position"`
}

// CityDetailResponse represents the single-city view, with the visit date
// pre-formatted for display and a link to read more
type CityDetailResponse struct {
	CityResponse
	FormattedDate string `json:"formattedDate"`
	WikipediaURL  string `json:"wikipediaUrl"`
}

// CitiesResponse represents the full visited-city collection
type CitiesResponse struct {
	Cities []CityResponse `json:"cities"`
}

// CountryResponse represents one entry of the visited-country roll-up
type CountryResponse struct {
	Country string `json:"country"`
	Emoji   string `json:"emoji"`
}

// CountriesResponse represents the visited-country roll-up
type CountriesResponse struct {
	Countries []CountryResponse `json:"countries"`
}

// PositionRequest carries a raw map click into the add-city workflow
type PositionRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SetFieldRequest edits a single field of the in-progress draft
type SetFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// FormResponse represents the state of the add-city workflow
type FormResponse struct {
	Phase       string     `json:"phase"`
	CityName    string     `json:"cityName"`
	Country     string     `json:"country"`
	Emoji       string     `json:"emoji"`
	Date        *time.Time `json:"date,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Position    *Position  `json:"position,omitempty"`
	LookupError string     `json:"lookupError,omitempty"`
	SubmitError string     `json:"submitError,omitempty"`
}
