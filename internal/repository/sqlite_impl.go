package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alexivanou/citymark-api/internal/model"
	"github.com/jmoiron/sqlx"
)

type sqliteCityRepository struct {
	db *sqlx.DB
}

func (r *sqliteCityRepository) ListCities(ctx context.Context) ([]model.City, error) {
	var cities []model.City
	if err := r.db.SelectContext(ctx, &cities, "SELECT * FROM cities ORDER BY id"); err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *sqliteCityRepository) GetCityByID(ctx context.Context, id int64) (*model.City, error) {
	var city model.City
	if err := r.db.GetContext(ctx, &city, "SELECT * FROM cities WHERE id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCityNotFound
		}
		return nil, err
	}
	return &city, nil
}

func (r *sqliteCityRepository) InsertCity(ctx context.Context, city model.City) (*model.City, error) {
	res, err := r.db.NamedExecContext(ctx, `
		INSERT INTO cities (name, country, country_code, lat, lng, visited_at, notes)
		VALUES (:name, :country, :country_code, :lat, :lng, :visited_at, :notes)`,
		city)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	city.ID = id
	return &city, nil
}

func (r *sqliteCityRepository) DeleteCity(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cities WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCityNotFound
	}
	return nil
}

func (r *sqliteCityRepository) BulkInsertCities(ctx context.Context, cities []model.City) error {
	// SQLite variable limit workaround (batch size of 100 * 7 params = 700 variables, well within standard limits)
	chunkSize := 100
	for i := 0; i < len(cities); i += chunkSize {
		end := i + chunkSize
		if end > len(cities) {
			end = len(cities)
		}
		batch := cities[i:end]

		_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO cities (name, country, country_code, lat, lng, visited_at, notes)
		VALUES (:name, :country, :country_code, :lat, :lng, :visited_at, :notes)`,
			batch)
		if err != nil {
			return err
		}
	}
	return nil
}
