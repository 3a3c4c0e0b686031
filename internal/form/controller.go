package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alexivanou/citymark-api/internal/geocoding"
	"github.com/alexivanou/citymark-api/internal/model"
	"github.com/google/uuid"
)

// Phase is the state of the add-city workflow. The set is closed: a draft is
// either being resolved, editable, failed to resolve, or already submitted.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFetching
	PhaseReady
	PhaseLookupError
	PhaseSubmitted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFetching:
		return "fetching"
	case PhaseReady:
		return "ready"
	case PhaseLookupError:
		return "lookup-error"
	case PhaseSubmitted:
		return "submitted"
	}
	return "unknown"
}

// NoCityMessage is shown when the lookup resolves to open water or wilderness
const NoCityMessage = "There doesn't seem to be a city where you clicked. Try again!"

var (
	// ErrNotEditable is returned for edits outside the ready phase
	ErrNotEditable = errors.New("no editable draft: resolve a position first")
	// ErrNotSubmittable is returned for submits outside the ready phase
	ErrNotSubmittable = errors.New("nothing to submit: resolve a position first")
)

// Draft is the in-progress city record being edited before submission
type Draft struct {
	CityName    string
	Country     string
	CountryCode string
	Date        time.Time
	Notes       string
}

// CityCreator is the one store operation the controller needs
type CityCreator interface {
	Create(ctx context.Context, candidate model.City) (*model.City, error)
}

// Snapshot is a consistent read of the workflow state
type Snapshot struct {
	Phase       Phase
	Position    model.Position
	Draft       Draft
	LookupError string
	SubmitError string
}

// Controller turns a raw map click into a persisted city: it resolves the
// coordinates through the geocoder, lets the caller edit the resulting
// draft, and delegates creation to the store.
//
// The controller serializes its own transitions; the blocking geocoder and
// store calls run outside the critical section, and a result is applied only
// if its request id still matches the active one (stale responses from
// superseded clicks are dropped, not cancelled).
type Controller struct {
	geocoder geocoding.Geocoder
	store    CityCreator
	now      func() time.Time

	mu        sync.Mutex // held only for state reads/writes, never across network calls
	phase     Phase
	position  model.Position
	requestID uuid.UUID
	draft     Draft
	lookupErr string
	submitErr string
}

// NewController creates a controller bound to a geocoder and a store
func NewController(geocoder geocoding.Geocoder, store CityCreator) *Controller {
	return &Controller{
		geocoder: geocoder,
		store:    store,
		now:      time.Now,
		phase:    PhaseIdle,
	}
}

// Begin starts the workflow for a map click. A click on the position already
// being resolved is deduplicated: no second lookup is issued. Any other
// click supersedes the previous workflow.
func (c *Controller) Begin(ctx context.Context, lat, lng float64) error {
	c.mu.Lock()
	if c.phase == PhaseFetching && c.position.Lat == lat && c.position.Lng == lng {
		c.mu.Unlock()
		return nil
	}
	c.phase = PhaseFetching
	c.position = model.Position{Lat: lat, Lng: lng}
	c.requestID = uuid.New()
	reqID := c.requestID
	c.draft = Draft{}
	c.lookupErr = ""
	c.submitErr = ""
	c.mu.Unlock()

	place, err := c.geocoder.ReverseGeocode(ctx, lat, lng)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.requestID != reqID {
		// a newer click superseded this lookup; drop the result
		return nil
	}
	if err != nil {
		c.phase = PhaseLookupError
		c.lookupErr = err.Error()
		return err
	}

	cityName := place.City
	if cityName == "" {
		cityName = place.Locality
	}
	if cityName == "" {
		c.phase = PhaseLookupError
		c.lookupErr = NoCityMessage
		return nil
	}

	c.phase = PhaseReady
	c.draft = Draft{
		CityName:    cityName,
		Country:     place.CountryName,
		CountryCode: place.CountryCode,
		Date:        c.now(),
	}
	return nil
}

// SetField replaces a single draft field while the draft is editable.
// Dates accept RFC 3339 or plain YYYY-MM-DD.
func (c *Controller) SetField(field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseReady {
		return ErrNotEditable
	}

	switch field {
	case "cityName":
		c.draft.CityName = value
	case "country":
		c.draft.Country = value
	case "notes":
		c.draft.Notes = value
	case "date":
		parsed, err := parseDate(value)
		if err != nil {
			return err
		}
		c.draft.Date = parsed
	default:
		return fmt.Errorf("unknown draft field %q", field)
	}
	return nil
}

// Submit builds the candidate city from the draft and the originating
// position and hands it to the store. On success the workflow is finished;
// on failure the draft stays editable with the error attached.
func (c *Controller) Submit(ctx context.Context) (*model.City, error) {
	c.mu.Lock()
	if c.phase != PhaseReady {
		c.mu.Unlock()
		return nil, ErrNotSubmittable
	}
	reqID := c.requestID
	date := c.draft.Date
	candidate := model.City{
		Name:        c.draft.CityName,
		Country:     c.draft.Country,
		CountryCode: c.draft.CountryCode,
		Lat:         c.position.Lat,
		Lng:         c.position.Lng,
		VisitedAt:   &date,
		Notes:       c.draft.Notes,
	}
	c.mu.Unlock()

	created, err := c.store.Create(ctx, candidate)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.requestID != reqID {
		return nil, nil
	}
	if err != nil {
		c.submitErr = err.Error()
		return nil, err
	}
	c.phase = PhaseSubmitted
	c.submitErr = ""
	return created, nil
}

// Reset discards the draft, e.g. when the user navigates away
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = PhaseIdle
	c.position = model.Position{}
	c.requestID = uuid.Nil
	c.draft = Draft{}
	c.lookupErr = ""
	c.submitErr = ""
}

// Snapshot returns a consistent copy of the workflow state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Phase:       c.phase,
		Position:    c.position,
		Draft:       c.draft,
		LookupError: c.lookupErr,
		SubmitError: c.submitErr,
	}
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use RFC 3339 or YYYY-MM-DD", value)
	}
	return t, nil
}
