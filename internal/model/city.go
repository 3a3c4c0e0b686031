package model

import "time"

// City represents a visited city in the database.
// The flag emoji is never stored: it is derived from CountryCode on the way out.
type City struct {
	ID          int64      `db:"id"`
	Name        string     `db:"name"`
	Country     string     `db:"country"`
	CountryCode string     `db:"country_code"`
	Lat         float64    `db:"lat"`
	Lng         float64    `db:"lng"`
	VisitedAt   *time.Time `db:"visited_at"`
	Notes       string     `db:"notes"`
}

// Position returns the map position the city was recorded at.
func (c City) Position() Position {
	return Position{Lat: c.Lat, Lng: c.Lng}
}

// Position represents a point on the map
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
