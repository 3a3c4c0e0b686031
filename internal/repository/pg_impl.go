package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alexivanou/citymark-api/internal/model"
	"github.com/jmoiron/sqlx"
)

// --- PostgreSQL Implementation ---

type pgCityRepository struct {
	db *sqlx.DB
}

func (r *pgCityRepository) ListCities(ctx context.Context) ([]model.City, error) {
	var cities []model.City
	if err := r.db.SelectContext(ctx, &cities, "SELECT * FROM cities ORDER BY id"); err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *pgCityRepository) GetCityByID(ctx context.Context, id int64) (*model.City, error) {
	var city model.City
	if err := r.db.GetContext(ctx, &city, "SELECT * FROM cities WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCityNotFound
		}
		return nil, err
	}
	return &city, nil
}

func (r *pgCityRepository) InsertCity(ctx context.Context, city model.City) (*model.City, error) {
	rows, err := r.db.NamedQueryContext(ctx, `
		INSERT INTO cities (name, country, country_code, lat, lng, visited_at, notes)
		VALUES (:name, :country, :country_code, :lat, :lng, :visited_at, :notes)
		RETURNING id`,
		city)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, errors.New("insert returned no id")
	}
	if err := rows.Scan(&city.ID); err != nil {
		return nil, err
	}
	return &city, nil
}

func (r *pgCityRepository) DeleteCity(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cities WHERE id = $1", id)
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

func (r *pgCityRepository) BulkInsertCities(ctx context.Context, cities []model.City) error {
	// Chunking to avoid parameter limit issues even in PG (max 65535 parameters)
	chunkSize := 2000
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
