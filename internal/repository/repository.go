package repository

import (
	"context"
	"errors"

	"github.com/alexivanou/citymark-api/internal/config"
	"github.com/alexivanou/citymark-api/internal/model"
	"github.com/jmoiron/sqlx"
)

// ErrCityNotFound is returned when the requested city id has no row.
// Distinct from transport failures so callers can report it instead of
// swallowing it.
var ErrCityNotFound = errors.New("city not found")

// CityRepository defines persistence operations for visited cities
type CityRepository interface {
	ListCities(ctx context.Context) ([]model.City, error)
	GetCityByID(ctx context.Context, id int64) (*model.City, error)
	InsertCity(ctx context.Context, city model.City) (*model.City, error)
	DeleteCity(ctx context.Context, id int64) error
	BulkInsertCities(ctx context.Context, cities []model.City) error
}

// Container holds all repositories
type Container struct {
	City CityRepository
}

// NewRepositories creates repository implementations based on DB type
func NewRepositories(db *sqlx.DB, dbType config.DBType) *Container {
	if dbType == config.DBTypePostgreSQL {
		return &Container{
			City: &pgCityRepository{db: db},
		}
	}

	// Default to SQLite
	return &Container{
		City: &sqliteCityRepository{db: db},
	}
}

// IsDatabaseEmpty reports whether the cities table has no rows (used by main
// to decide whether to import an export on startup)
func IsDatabaseEmpty(ctx context.Context, db *sqlx.DB) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM cities"
	err := db.GetContext(ctx, &count, query)
	if err != nil {
		// Simplify error handling for non-existent tables
		return true, nil
	}
	return count == 0, nil
}
