package store

import (
	"context"
	"sync"

	"github.com/alexivanou/citymark-api/internal/model"
	"github.com/alexivanou/citymark-api/internal/repository"
)

// Status describes whether the store is between operations, waiting on the
// repository, or carrying the error of the last failed operation.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
)

// Interface defines the store operations used by HTTP handlers
type Interface interface {
	LoadAll(ctx context.Context) error
	GetCity(ctx context.Context, id int64) error
	Create(ctx context.Context, candidate model.City) (*model.City, error)
	Delete(ctx context.Context, id int64) error
	Snapshot() Snapshot
}

// Snapshot is a consistent read of the store state. Cities is a copy, safe
// to hold across further mutations.
type Snapshot struct {
	Cities      []model.City
	CurrentCity *model.City
	Status      Status
	LastError   string
}

// CityStore owns the visited-city collection and the currently viewed city.
// It is the only writer: every mutation goes through the repository first and
// is applied to the in-memory collection only after persistence confirms, so
// readers never observe a partial mutation.
type CityStore struct {
	repo repository.CityRepository

	mu          sync.Mutex
	cities      []model.City
	currentCity *model.City
	status      Status
	lastError   string

	// generation counters for the stale-response guards: a result is applied
	// only if no newer call of the same kind was initiated while it was in
	// flight
	loadGen uint64
	getID   int64
	getGen  uint64
}

// New creates a CityStore backed by the given repository
func New(repo repository.CityRepository) *CityStore {
	return &CityStore{
		repo:   repo,
		status: StatusIdle,
	}
}

// LoadAll fetches the full collection. Overlapping calls are tolerated; the
// result of the most recently initiated call wins.
func (s *CityStore) LoadAll(ctx context.Context) error {
	s.mu.Lock()
	s.loadGen++
	gen := s.loadGen
	s.status = StatusLoading
	s.lastError = ""
	s.mu.Unlock()

	cities, err := s.repo.ListCities(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.loadGen {
		// superseded by a newer LoadAll
		return nil
	}
	if err != nil {
		s.status = StatusError
		s.lastError = err.Error()
		return err
	}
	s.cities = cities
	s.status = StatusIdle
	return nil
}

// GetCity fetches a single city and makes it the currently viewed one. When
// the requested id is already current this is a no-op: repeated navigation to
// the same city must not hit the repository again.
func (s *CityStore) GetCity(ctx context.Context, id int64) error {
	s.mu.Lock()
	if s.currentCity != nil && s.currentCity.ID == id {
		s.mu.Unlock()
		return nil
	}
	s.getGen++
	gen := s.getGen
	s.getID = id
	s.status = StatusLoading
	s.lastError = ""
	s.mu.Unlock()

	city, err := s.repo.GetCityByID(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.getGen || id != s.getID {
		// a newer GetCity superseded this one; drop the result
		return nil
	}
	if err != nil {
		s.status = StatusError
		s.lastError = err.Error()
		return err
	}
	s.currentCity = city
	s.status = StatusIdle
	return nil
}

// Create persists the candidate and, only on success, appends the persisted
// city (with its assigned id) to the collection. On failure the collection
// is left exactly as it was.
func (s *CityStore) Create(ctx context.Context, candidate model.City) (*model.City, error) {
	s.mu.Lock()
	s.status = StatusLoading
	s.lastError = ""
	s.mu.Unlock()

	created, err := s.repo.InsertCity(ctx, candidate)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.status = StatusError
		s.lastError = err.Error()
		return nil, err
	}
	s.cities = append(s.cities, *created)
	s.status = StatusIdle
	return created, nil
}

// Delete removes the city from persistence and then from the collection.
// Deleting an absent id surfaces repository.ErrCityNotFound rather than
// succeeding silently. When the deleted city was the currently viewed one,
// the current city is cleared.
func (s *CityStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	s.status = StatusLoading
	s.lastError = ""
	s.mu.Unlock()

	err := s.repo.DeleteCity(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.status = StatusError
		s.lastError = err.Error()
		return err
	}

	kept := s.cities[:0:0]
	for _, city := range s.cities {
		if city.ID != id {
			kept = append(kept, city)
		}
	}
	s.cities = kept
	if s.currentCity != nil && s.currentCity.ID == id {
		s.currentCity = nil
	}
	s.status = StatusIdle
	return nil
}

// Snapshot returns a consistent copy of the store state
func (s *CityStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	cities := make([]model.City, len(s.cities))
	copy(cities, s.cities)

	var current *model.City
	if s.currentCity != nil {
		c := *s.currentCity
		current = &c
	}

	return Snapshot{
		Cities:      cities,
		CurrentCity: current,
		Status:      s.status,
		LastError:   s.lastError,
	}
}
