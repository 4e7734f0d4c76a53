package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domainDevice "fleet-tracker/internal/domain/device"
	domainGeofence "fleet-tracker/internal/domain/geofence"
	domainTrip "fleet-tracker/internal/domain/trip"
	"fleet-tracker/internal/polyline"
	"fleet-tracker/internal/telematics"
	pkgerrors "fleet-tracker/pkg/errors"
)

type fakeUpstream struct {
	devices   []telematics.Document
	locations map[int64]telematics.Location
	locErr    map[int64]error
	intervals map[int64][]telematics.Interval
	geofences []telematics.Document
}

func (f *fakeUpstream) ListDevices(context.Context, bool) ([]telematics.Document, error) {
	return f.devices, nil
}

func (f *fakeUpstream) DeviceLocation(_ context.Context, deviceID int64, _ bool) (telematics.Location, error) {
	if err, ok := f.locErr[deviceID]; ok {
		return telematics.Location{}, err
	}
	return f.locations[deviceID], nil
}

func (f *fakeUpstream) DeviceIntervals(_ context.Context, _, deviceID int64, _, _ *int64, _ int) ([]telematics.Interval, error) {
	return f.intervals[deviceID], nil
}

func (f *fakeUpstream) ListGeofences(context.Context, bool) ([]telematics.Document, error) {
	return f.geofences, nil
}

type memDeviceRepo struct {
	mu      sync.Mutex
	devices map[int64]*domainDevice.Device
	nextID  int64
}

func newMemDeviceRepo() *memDeviceRepo {
	return &memDeviceRepo{devices: map[int64]*domainDevice.Device{}}
}

func (r *memDeviceRepo) Upsert(_ context.Context, d *domainDevice.Device) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.devices[d.ExternalID]; ok {
		d.ID = existing.ID
		d.CurrentDriverID = existing.CurrentDriverID
		r.devices[d.ExternalID] = d
		return false, nil
	}
	r.nextID++
	d.ID = r.nextID
	r.devices[d.ExternalID] = d
	return true, nil
}

func (r *memDeviceRepo) GetByID(_ context.Context, id int64) (*domainDevice.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.devices {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, domainDevice.ErrDeviceNotFound
}

func (r *memDeviceRepo) GetByExternalID(_ context.Context, externalID int64) (*domainDevice.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.devices[externalID]; ok {
		return d, nil
	}
	return nil, domainDevice.ErrDeviceNotFound
}

func (r *memDeviceRepo) List(context.Context) ([]*domainDevice.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	devices := make([]*domainDevice.Device, 0, len(r.devices))
	for _, d := range r.devices {
		devices = append(devices, d)
	}
	return devices, nil
}

func (r *memDeviceRepo) SetCurrentDriver(context.Context, int64, *int64) error { return nil }
func (r *memDeviceRepo) Delete(context.Context, int64) error                   { return nil }

type memTripRepo struct {
	mu    sync.Mutex
	trips map[int64]*domainTrip.Trip
}

func newMemTripRepo() *memTripRepo {
	return &memTripRepo{trips: map[int64]*domainTrip.Trip{}}
}

func (r *memTripRepo) Upsert(_ context.Context, t *domainTrip.Trip) (bool, error) {
	if t.ExternalIntervalID == nil {
		return false, domainTrip.ErrNoExternalID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.trips[*t.ExternalIntervalID]
	r.trips[*t.ExternalIntervalID] = t
	return !exists, nil
}

func (r *memTripRepo) Create(context.Context, *domainTrip.Trip) error { return nil }
func (r *memTripRepo) GetByID(context.Context, int64) (*domainTrip.Trip, error) {
	return nil, domainTrip.ErrTripNotFound
}
func (r *memTripRepo) List(context.Context, *domainTrip.Filter) ([]*domainTrip.Trip, int64, error) {
	return nil, 0, nil
}
func (r *memTripRepo) Stats(context.Context, *domainTrip.Filter) (*domainTrip.Stats, error) {
	return &domainTrip.Stats{}, nil
}
func (r *memTripRepo) UpdateRoute(context.Context, int64, []polyline.Point) error { return nil }

type memGeofenceRepo struct {
	geofences map[int64]*domainGeofence.Geofence
}

func newMemGeofenceRepo() *memGeofenceRepo {
	return &memGeofenceRepo{geofences: map[int64]*domainGeofence.Geofence{}}
}

func (r *memGeofenceRepo) Create(context.Context, *domainGeofence.Geofence) error { return nil }
func (r *memGeofenceRepo) Upsert(_ context.Context, g *domainGeofence.Geofence) (bool, error) {
	_, exists := r.geofences[*g.ExternalID]
	r.geofences[*g.ExternalID] = g
	return !exists, nil
}
func (r *memGeofenceRepo) GetByID(context.Context, int64) (*domainGeofence.Geofence, error) {
	return nil, domainGeofence.ErrGeofenceNotFound
}
func (r *memGeofenceRepo) List(context.Context, bool) ([]*domainGeofence.Geofence, error) {
	return nil, nil
}
func (r *memGeofenceRepo) Update(context.Context, *domainGeofence.Geofence) error { return nil }
func (r *memGeofenceRepo) Delete(context.Context, int64) error                    { return nil }

func TestSyncDevicesCreatesAndUpdates(t *testing.T) {
	now := time.Now().Unix()
	upstream := &fakeUpstream{
		devices: []telematics.Document{
			{"id": float64(100), "name": "truck-1"},
			{"id": float64(200), "name": "truck-2"},
		},
		locations: map[int64]telematics.Location{
			100: {Latitude: f(51.5), Longitude: f(-0.12), Timestamp: &now},
		},
	}
	deviceRepo := newMemDeviceRepo()
	svc := NewService(upstream, deviceRepo, newMemTripRepo(), newMemGeofenceRepo(), 0)

	summary, err := svc.SyncDevices(context.Background())
	if err != nil {
		t.Fatalf("SyncDevices() error = %v", err)
	}
	if summary.Created != 2 || summary.Updated != 0 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want 2 created", summary)
	}

	d, err := deviceRepo.GetByExternalID(context.Background(), 100)
	if err != nil {
		t.Fatalf("GetByExternalID() error = %v", err)
	}
	if d.Status != domainDevice.StatusOnline {
		t.Errorf("device with fresh message Status = %q, want online", d.Status)
	}
	if d.Telemetry == nil {
		t.Fatal("synced device Telemetry is nil, want the fetched location snapshot")
	}
	if got := d.Telemetry["position.latitude"]; got != 51.5 {
		t.Errorf("Telemetry position.latitude = %v, want 51.5", got)
	}

	quiet, _ := deviceRepo.GetByExternalID(context.Background(), 200)
	if quiet.Status != domainDevice.StatusOffline {
		t.Errorf("device without messages Status = %q, want offline", quiet.Status)
	}

	// Second pass is idempotent: same records, all updates.
	summary, err = svc.SyncDevices(context.Background())
	if err != nil {
		t.Fatalf("SyncDevices() second run error = %v", err)
	}
	if summary.Created != 0 || summary.Updated != 2 {
		t.Errorf("second summary = %+v, want 2 updated", summary)
	}
}

func TestSyncDevicesIsolatesFailures(t *testing.T) {
	upstream := &fakeUpstream{
		devices: []telematics.Document{
			{"id": float64(100), "name": "truck-1"},
			{"id": float64(200), "name": "truck-2"},
		},
		locations: map[int64]telematics.Location{},
		locErr:    map[int64]error{200: errors.New("telemetry unavailable")},
	}
	svc := NewService(upstream, newMemDeviceRepo(), newMemTripRepo(), newMemGeofenceRepo(), 0)

	summary, err := svc.SyncDevices(context.Background())
	if err != nil {
		t.Fatalf("SyncDevices() error = %v", err)
	}
	if summary.Synced != 1 || summary.Failed != 1 {
		t.Errorf("summary = %+v, want 1 synced, 1 failed", summary)
	}
}

func TestSyncTripsRequiresCalculator(t *testing.T) {
	svc := NewService(&fakeUpstream{}, newMemDeviceRepo(), newMemTripRepo(), newMemGeofenceRepo(), 0)

	_, err := svc.SyncTrips(context.Background(), nil, nil, nil)
	if !errors.Is(err, pkgerrors.ErrCalculatorNotConfigured) {
		t.Fatalf("SyncTrips() error = %v, want ErrCalculatorNotConfigured", err)
	}
}

func TestSyncTripsUpsertsIntervals(t *testing.T) {
	deviceRepo := newMemDeviceRepo()
	driverID := int64(7)
	deviceRepo.Upsert(context.Background(), &domainDevice.Device{ExternalID: 100, Name: "truck-1"})
	d, _ := deviceRepo.GetByExternalID(context.Background(), 100)
	d.CurrentDriverID = &driverID

	id1, id2 := int64(11), int64(12)
	begin := int64(1000)
	upstream := &fakeUpstream{
		intervals: map[int64][]telematics.Interval{
			100: {
				{ID: &id1, Begin: &begin, DistanceKm: 4.2, DurationSecs: 300},
				{ID: &id2}, // no begin time
			},
		},
	}
	tripRepo := newMemTripRepo()
	svc := NewService(upstream, deviceRepo, tripRepo, newMemGeofenceRepo(), 55)

	summary, err := svc.SyncTrips(context.Background(), nil, nil, nil)
	if err != nil {
		t.Fatalf("SyncTrips() error = %v", err)
	}
	if summary.Synced != 1 || summary.Failed != 1 {
		t.Fatalf("summary = %+v, want 1 synced, 1 failed", summary)
	}

	trip := tripRepo.trips[id1]
	if trip == nil {
		t.Fatal("trip 11 not stored")
	}
	if trip.DeviceID != d.ID {
		t.Errorf("DeviceID = %d, want local id %d", trip.DeviceID, d.ID)
	}
	if trip.DriverID == nil || *trip.DriverID != driverID {
		t.Errorf("DriverID = %v, want snapshot %d", trip.DriverID, driverID)
	}
	if trip.DistanceKm != 4.2 {
		t.Errorf("DistanceKm = %v, want 4.2", trip.DistanceKm)
	}
}

func TestSyncTripsSingleDevice(t *testing.T) {
	deviceRepo := newMemDeviceRepo()
	deviceRepo.Upsert(context.Background(), &domainDevice.Device{ExternalID: 100, Name: "truck-1"})
	deviceRepo.Upsert(context.Background(), &domainDevice.Device{ExternalID: 200, Name: "truck-2"})
	target, _ := deviceRepo.GetByExternalID(context.Background(), 100)

	id1, id2 := int64(11), int64(12)
	begin := int64(1000)
	upstream := &fakeUpstream{
		intervals: map[int64][]telematics.Interval{
			100: {{ID: &id1, Begin: &begin}},
			200: {{ID: &id2, Begin: &begin}},
		},
	}
	tripRepo := newMemTripRepo()
	svc := NewService(upstream, deviceRepo, tripRepo, newMemGeofenceRepo(), 55)

	summary, err := svc.SyncTrips(context.Background(), &target.ID, nil, nil)
	if err != nil {
		t.Fatalf("SyncTrips() error = %v", err)
	}
	if summary.Synced != 1 {
		t.Fatalf("summary = %+v, want only the named device synced", summary)
	}
	if _, ok := tripRepo.trips[id2]; ok {
		t.Error("trip for the other device was synced")
	}
}

func TestSyncTripsUnknownDevice(t *testing.T) {
	svc := NewService(&fakeUpstream{}, newMemDeviceRepo(), newMemTripRepo(), newMemGeofenceRepo(), 55)

	unknown := int64(404)
	_, err := svc.SyncTrips(context.Background(), &unknown, nil, nil)
	if !errors.Is(err, domainDevice.ErrDeviceNotFound) {
		t.Fatalf("SyncTrips() error = %v, want ErrDeviceNotFound", err)
	}
}

func TestSyncGeofences(t *testing.T) {
	upstream := &fakeUpstream{
		geofences: []telematics.Document{
			{
				"id":   float64(5),
				"name": "depot",
				"geometry": map[string]any{
					"type":   "circle",
					"center": map[string]any{"lat": 10.0, "lon": 20.0},
					"radius": 250.0,
				},
			},
			{
				"id":    float64(6),
				"name":  "yard",
				"color": "#FF0000",
				"geometry": map[string]any{
					"center": map[string]any{"lat": 1.0, "lon": 2.0},
					"radius": 100.0,
				},
			},
			{"name": "no id"},
		},
	}
	geofenceRepo := newMemGeofenceRepo()
	svc := NewService(upstream, newMemDeviceRepo(), newMemTripRepo(), geofenceRepo, 0)

	summary, err := svc.SyncGeofences(context.Background())
	if err != nil {
		t.Fatalf("SyncGeofences() error = %v", err)
	}
	if summary.Created != 2 || summary.Failed != 1 {
		t.Fatalf("summary = %+v, want 2 created, 1 failed", summary)
	}

	g := geofenceRepo.geofences[5]
	if g == nil {
		t.Fatal("geofence 5 not stored")
	}
	if g.Shape.Kind != "circle" || g.Shape.Circle == nil {
		t.Fatalf("Shape = %+v, want circle", g.Shape)
	}
	if g.Shape.Circle.RadiusMeters != 250 {
		t.Errorf("RadiusMeters = %v, want 250", g.Shape.Circle.RadiusMeters)
	}
	if g.Color != domainGeofence.DefaultColor {
		t.Errorf("Color = %q, want the default when upstream omits it", g.Color)
	}

	yard := geofenceRepo.geofences[6]
	if yard == nil {
		t.Fatal("geofence 6 not stored")
	}
	if yard.Color != "#FF0000" {
		t.Errorf("Color = %q, want the upstream value", yard.Color)
	}
	if yard.Shape.Kind != "circle" {
		t.Errorf("Shape.Kind = %q, want circle defaulted for missing geometry type", yard.Shape.Kind)
	}
}

func f(v float64) *float64 {
	return &v
}
