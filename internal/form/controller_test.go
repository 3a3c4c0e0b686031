package form

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexivanou/citymark-api/internal/geocoding"
	"github.com/alexivanou/citymark-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGeocoder implements geocoding.Geocoder
type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (*geocoding.Place, error) {
	args := m.Called(ctx, lat, lng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geocoding.Place), args.Error(1)
}

// MockCreator implements CityCreator
type MockCreator struct {
	mock.Mock
}

func (m *MockCreator) Create(ctx context.Context, candidate model.City) (*model.City, error) {
	args := m.Called(ctx, candidate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.City), args.Error(1)
}

// funcGeocoder is used where the lookup needs to block or count calls
type funcGeocoder struct {
	fn func(ctx context.Context, lat, lng float64) (*geocoding.Place, error)
}

func (g *funcGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (*geocoding.Place, error) {
	return g.fn(ctx, lat, lng)
}

func lisbonPlace() *geocoding.Place {
	return &geocoding.Place{
		City:        "Lisbon",
		Locality:    "Lisbon",
		CountryName: "Portugal",
		CountryCode: "PT",
	}
}

func TestController_SuccessfulAdd(t *testing.T) {
	geocoder := new(MockGeocoder)
	geocoder.On("ReverseGeocode", mock.Anything, 38.7, -9.1).Return(lisbonPlace(), nil)

	creator := new(MockCreator)
	creator.On("Create", mock.Anything, mock.MatchedBy(func(c model.City) bool {
		return c.Name == "Lisbon" && c.Country == "Portugal" && c.CountryCode == "PT" &&
			c.Lat == 38.7 && c.Lng == -9.1 && c.Notes == "Favorite!"
	})).Return(&model.City{ID: 7, Name: "Lisbon", Country: "Portugal", CountryCode: "PT", Lat: 38.7, Lng: -9.1, Notes: "Favorite!"}, nil)

	c := NewController(geocoder, creator)
	fixed := time.Date(2024, time.July, 14, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	require.NoError(t, c.Begin(context.Background(), 38.7, -9.1))

	snap := c.Snapshot()
	assert.Equal(t, PhaseReady, snap.Phase)
	assert.Equal(t, "Lisbon", snap.Draft.CityName)
	assert.Equal(t, "Portugal", snap.Draft.Country)
	assert.Equal(t, "PT", snap.Draft.CountryCode)
	assert.Equal(t, fixed, snap.Draft.Date)

	require.NoError(t, c.SetField("notes", "Favorite!"))

	created, err := c.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, int64(7), created.ID)

	assert.Equal(t, PhaseSubmitted, c.Snapshot().Phase)
	creator.AssertExpectations(t)
}

func TestController_UnresolvedLookup(t *testing.T) {
	geocoder := new(MockGeocoder)
	// Open ocean: the endpoint answers, but with no city or locality
	geocoder.On("ReverseGeocode", mock.Anything, 0.0, 0.0).Return(&geocoding.Place{CountryCode: ""}, nil)

	creator := new(MockCreator)
	c := NewController(geocoder, creator)

	require.NoError(t, c.Begin(context.Background(), 0, 0))

	snap := c.Snapshot()
	assert.Equal(t, PhaseLookupError, snap.Phase)
	assert.Equal(t, NoCityMessage, snap.LookupError)
	creator.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestController_LookupTransportFailure(t *testing.T) {
	geocoder := new(MockGeocoder)
	geocoder.On("ReverseGeocode", mock.Anything, 38.7, -9.1).Return(nil, errors.New("connection reset"))

	c := NewController(geocoder, new(MockCreator))

	err := c.Begin(context.Background(), 38.7, -9.1)
	require.Error(t, err)

	snap := c.Snapshot()
	assert.Equal(t, PhaseLookupError, snap.Phase)
	assert.Equal(t, "connection reset", snap.LookupError)
}

func TestController_LocalityFallback(t *testing.T) {
	geocoder := new(MockGeocoder)
	geocoder.On("ReverseGeocode", mock.Anything, mock.Anything, mock.Anything).Return(&geocoding.Place{
		Locality:    "Oeiras",
		CountryName: "Portugal",
		CountryCode: "PT",
	}, nil)

	c := NewController(geocoder, new(MockCreator))
	require.NoError(t, c.Begin(context.Background(), 38.69, -9.31))

	snap := c.Snapshot()
	assert.Equal(t, PhaseReady, snap.Phase)
	assert.Equal(t, "Oeiras", snap.Draft.CityName)
}

func TestController_SetField(t *testing.T) {
	geocoder := new(MockGeocoder)
	geocoder.On("ReverseGeocode", mock.Anything, mock.Anything, mock.Anything).Return(lisbonPlace(), nil)

	c := NewController(geocoder, new(MockCreator))
	require.NoError(t, c.Begin(context.Background(), 38.7, -9.1))

	require.NoError(t, c.SetField("cityName", "Lisboa"))
	require.NoError(t, c.SetField("country", "Portuguese Republic"))
	require.NoError(t, c.SetField("date", "2024-01-02"))

	snap := c.Snapshot()
	assert.Equal(t, "Lisboa", snap.Draft.CityName)
	assert.Equal(t, "Portuguese Republic", snap.Draft.Country)
	assert.Equal(t, time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), snap.Draft.Date)
	assert.Equal(t, PhaseReady, snap.Phase, "edits keep the draft editable")

	assert.Error(t, c.SetField("date", "not-a-date"))
	assert.Error(t, c.SetField("emoji", "🇵🇹"), "emoji is derived, never set directly")
}

func TestController_SetField_OutsideReady(t *testing.T) {
	c := NewController(new(MockGeocoder), new(MockCreator))
	err := c.SetField("cityName", "Lisbon")
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestController_Submit_OutsideReady(t *testing.T) {
	c := NewController(new(MockGeocoder), new(MockCreator))
	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotSubmittable)
}

func TestController_SubmitFailureKeepsDraftEditable(t *testing.T) {
	geocoder := new(MockGeocoder)
	geocoder.On("ReverseGeocode", mock.Anything, mock.Anything, mock.Anything).Return(lisbonPlace(), nil)

	creator := new(MockCreator)
	creator.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("disk full")).Once()
	creator.On("Create", mock.Anything, mock.Anything).Return(&model.City{ID: 1, Name: "Lisbon"}, nil).Once()

	c := NewController(geocoder, creator)
	require.NoError(t, c.Begin(context.Background(), 38.7, -9.1))

	_, err := c.Submit(context.Background())
	require.Error(t, err)

	snap := c.Snapshot()
	assert.Equal(t, PhaseReady, snap.Phase)
	assert.Equal(t, "disk full", snap.SubmitError)

	// Still editable and resubmittable
	require.NoError(t, c.SetField("notes", "second try"))
	created, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, PhaseSubmitted, c.Snapshot().Phase)
}

func TestController_DedupesLookupForSamePosition(t *testing.T) {
	var calls int32
	entered := make(chan struct{})
	release := make(chan struct{})

	geocoder := &funcGeocoder{fn: func(ctx context.Context, lat, lng float64) (*geocoding.Place, error) {
		atomic.AddInt32(&calls, 1)
		close(entered)
		<-release
		return lisbonPlace(), nil
	}}

	c := NewController(geocoder, new(MockCreator))

	done := make(chan error)
	go func() { done <- c.Begin(context.Background(), 38.7, -9.1) }()
	<-entered

	// Clicking the same spot again while the lookup is in flight
	require.NoError(t, c.Begin(context.Background(), 38.7, -9.1))

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "duplicate click must not issue a second lookup")
	assert.Equal(t, PhaseReady, c.Snapshot().Phase)
}

func TestController_StaleLookupDiscarded(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	geocoder := &funcGeocoder{fn: func(ctx context.Context, lat, lng float64) (*geocoding.Place, error) {
		if lat == 38.7 {
			close(entered)
			<-release
			return lisbonPlace(), nil
		}
		return &geocoding.Place{City: "Berlin", CountryName: "Germany", CountryCode: "DE"}, nil
	}}

	c := NewController(geocoder, new(MockCreator))

	done := make(chan error)
	go func() { done <- c.Begin(context.Background(), 38.7, -9.1) }()
	<-entered

	// A click elsewhere supersedes the first workflow
	require.NoError(t, c.Begin(context.Background(), 52.52, 13.4))
	close(release)
	require.NoError(t, <-done)

	snap := c.Snapshot()
	assert.Equal(t, PhaseReady, snap.Phase)
	assert.Equal(t, "Berlin", snap.Draft.CityName, "the stale Lisbon result must be dropped")
}

func TestController_Reset(t *testing.T) {
	geocoder := new(MockGeocoder)
	geocoder.On("ReverseGeocode", mock.Anything, mock.Anything, mock.Anything).Return(lisbonPlace(), nil)

	c := NewController(geocoder, new(MockCreator))
	require.NoError(t, c.Begin(context.Background(), 38.7, -9.1))

	c.Reset()

	snap := c.Snapshot()
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.Equal(t, Draft{}, snap.Draft)
	assert.Empty(t, snap.LookupError)
}
