package trip

import (
	"context"
	"errors"
	"testing"
	"time"

	domainDevice "fleet-tracker/internal/domain/device"
	domainTrip "fleet-tracker/internal/domain/trip"
	"fleet-tracker/internal/polyline"
	"fleet-tracker/internal/telematics"
	pkgerrors "fleet-tracker/pkg/errors"
)

type fakeTripRepo struct {
	trips        map[int64]*domainTrip.Trip
	routeUpdates map[int64][]polyline.Point
}

func newFakeTripRepo(trips ...*domainTrip.Trip) *fakeTripRepo {
	r := &fakeTripRepo{
		trips:        map[int64]*domainTrip.Trip{},
		routeUpdates: map[int64][]polyline.Point{},
	}
	for _, t := range trips {
		r.trips[t.ID] = t
	}
	return r
}

func (r *fakeTripRepo) Upsert(context.Context, *domainTrip.Trip) (bool, error) { return false, nil }
func (r *fakeTripRepo) Create(context.Context, *domainTrip.Trip) error         { return nil }

func (r *fakeTripRepo) GetByID(_ context.Context, tripID int64) (*domainTrip.Trip, error) {
	if t, ok := r.trips[tripID]; ok {
		return t, nil
	}
	return nil, domainTrip.ErrTripNotFound
}

func (r *fakeTripRepo) List(_ context.Context, _ *domainTrip.Filter) ([]*domainTrip.Trip, int64, error) {
	trips := make([]*domainTrip.Trip, 0, len(r.trips))
	for _, t := range r.trips {
		trips = append(trips, t)
	}
	return trips, int64(len(trips)), nil
}

func (r *fakeTripRepo) Stats(context.Context, *domainTrip.Filter) (*domainTrip.Stats, error) {
	return &domainTrip.Stats{TotalTrips: int64(len(r.trips))}, nil
}

func (r *fakeTripRepo) UpdateRoute(_ context.Context, tripID int64, route []polyline.Point) error {
	r.routeUpdates[tripID] = route
	return nil
}

type fakeDeviceRepo struct {
	devices map[int64]*domainDevice.Device
}

func (r *fakeDeviceRepo) Upsert(context.Context, *domainDevice.Device) (bool, error) {
	return false, nil
}
func (r *fakeDeviceRepo) GetByID(_ context.Context, id int64) (*domainDevice.Device, error) {
	if d, ok := r.devices[id]; ok {
		return d, nil
	}
	return nil, domainDevice.ErrDeviceNotFound
}
func (r *fakeDeviceRepo) GetByExternalID(context.Context, int64) (*domainDevice.Device, error) {
	return nil, domainDevice.ErrDeviceNotFound
}
func (r *fakeDeviceRepo) List(context.Context) ([]*domainDevice.Device, error) { return nil, nil }
func (r *fakeDeviceRepo) SetCurrentDriver(context.Context, int64, *int64) error {
	return nil
}
func (r *fakeDeviceRepo) Delete(context.Context, int64) error { return nil }

type fakeUpstream struct {
	points []telematics.RoutePoint
	calls  int
}

func (f *fakeUpstream) IntervalMessages(context.Context, int64, int64, int64) ([]telematics.RoutePoint, error) {
	f.calls++
	return f.points, nil
}

func TestRouteReturnsStoredRoute(t *testing.T) {
	stored := []polyline.Point{{Latitude: 1, Longitude: 2}, {Latitude: 3, Longitude: 4}}
	intervalID := int64(11)
	repo := newFakeTripRepo(&domainTrip.Trip{
		ID:                 1,
		ExternalIntervalID: &intervalID,
		DeviceID:           1,
		StartTime:          time.Now(),
		Route:              stored,
	})
	upstream := &fakeUpstream{}
	svc := NewService(repo, &fakeDeviceRepo{}, upstream, 55)

	resp, err := svc.Route(context.Background(), 1)
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if len(resp.Route) != 2 {
		t.Fatalf("Route len = %d, want 2", len(resp.Route))
	}
	if upstream.calls != 0 {
		t.Errorf("upstream called %d times for a stored route, want 0", upstream.calls)
	}
}

func TestRouteBackfillsFromIntervalMessages(t *testing.T) {
	intervalID := int64(11)
	repo := newFakeTripRepo(&domainTrip.Trip{
		ID:                 1,
		ExternalIntervalID: &intervalID,
		DeviceID:           1,
		StartTime:          time.Now(),
	})
	deviceRepo := &fakeDeviceRepo{devices: map[int64]*domainDevice.Device{
		1: {ID: 1, ExternalID: 100},
	}}
	upstream := &fakeUpstream{points: []telematics.RoutePoint{
		{Latitude: 10.1, Longitude: 20.2},
		{Latitude: 10.2, Longitude: 20.3},
	}}
	svc := NewService(repo, deviceRepo, upstream, 55)

	resp, err := svc.Route(context.Background(), 1)
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if len(resp.Route) != 2 {
		t.Fatalf("Route len = %d, want 2", len(resp.Route))
	}
	if upstream.calls != 1 {
		t.Errorf("upstream calls = %d, want 1", upstream.calls)
	}
	if stored := repo.routeUpdates[1]; len(stored) != 2 {
		t.Errorf("backfilled route not persisted: %v", stored)
	}
}

func TestRouteBackfillRequiresCalculator(t *testing.T) {
	intervalID := int64(11)
	repo := newFakeTripRepo(&domainTrip.Trip{
		ID:                 1,
		ExternalIntervalID: &intervalID,
		DeviceID:           1,
		StartTime:          time.Now(),
	})
	svc := NewService(repo, &fakeDeviceRepo{}, &fakeUpstream{}, 0)

	_, err := svc.Route(context.Background(), 1)
	if !errors.Is(err, pkgerrors.ErrCalculatorNotConfigured) {
		t.Fatalf("Route() error = %v, want ErrCalculatorNotConfigured", err)
	}
}

func TestRouteBackfillRequiresExternalID(t *testing.T) {
	repo := newFakeTripRepo(&domainTrip.Trip{
		ID:        1,
		DeviceID:  1,
		StartTime: time.Now(),
	})
	svc := NewService(repo, &fakeDeviceRepo{}, &fakeUpstream{}, 55)

	_, err := svc.Route(context.Background(), 1)
	if !errors.Is(err, domainTrip.ErrNoExternalID) {
		t.Fatalf("Route() error = %v, want ErrNoExternalID", err)
	}
}
