package webhook

import (
	"context"
	"testing"
	"time"

	domainDevice "fleet-tracker/internal/domain/device"
	domainGeofence "fleet-tracker/internal/domain/geofence"
	domainTrip "fleet-tracker/internal/domain/trip"
	"fleet-tracker/internal/geo"
	"fleet-tracker/internal/polyline"
)

type fakeDeviceRepo struct {
	byExternalID map[int64]*domainDevice.Device
	upserts      []*domainDevice.Device
}

func (f *fakeDeviceRepo) Upsert(_ context.Context, d *domainDevice.Device) (bool, error) {
	f.upserts = append(f.upserts, d)
	_, exists := f.byExternalID[d.ExternalID]
	f.byExternalID[d.ExternalID] = d
	return !exists, nil
}

func (f *fakeDeviceRepo) GetByID(_ context.Context, id int64) (*domainDevice.Device, error) {
	for _, d := range f.byExternalID {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, domainDevice.ErrDeviceNotFound
}

func (f *fakeDeviceRepo) GetByExternalID(_ context.Context, externalID int64) (*domainDevice.Device, error) {
	if d, ok := f.byExternalID[externalID]; ok {
		return d, nil
	}
	return nil, domainDevice.ErrDeviceNotFound
}

func (f *fakeDeviceRepo) List(_ context.Context) ([]*domainDevice.Device, error) {
	devices := make([]*domainDevice.Device, 0, len(f.byExternalID))
	for _, d := range f.byExternalID {
		devices = append(devices, d)
	}
	return devices, nil
}

func (f *fakeDeviceRepo) SetCurrentDriver(context.Context, int64, *int64) error { return nil }
func (f *fakeDeviceRepo) Delete(context.Context, int64) error                   { return nil }

type fakeTripRepo struct {
	upserts []*domainTrip.Trip
}

func (f *fakeTripRepo) Upsert(_ context.Context, t *domainTrip.Trip) (bool, error) {
	f.upserts = append(f.upserts, t)
	return true, nil
}

func (f *fakeTripRepo) Create(context.Context, *domainTrip.Trip) error { return nil }
func (f *fakeTripRepo) GetByID(context.Context, int64) (*domainTrip.Trip, error) {
	return nil, domainTrip.ErrTripNotFound
}
func (f *fakeTripRepo) List(context.Context, *domainTrip.Filter) ([]*domainTrip.Trip, int64, error) {
	return nil, 0, nil
}
func (f *fakeTripRepo) Stats(context.Context, *domainTrip.Filter) (*domainTrip.Stats, error) {
	return &domainTrip.Stats{}, nil
}
func (f *fakeTripRepo) UpdateRoute(context.Context, int64, []polyline.Point) error { return nil }

type fakeGeofenceRepo struct {
	geofences []*domainGeofence.Geofence
}

func (f *fakeGeofenceRepo) Create(context.Context, *domainGeofence.Geofence) error { return nil }
func (f *fakeGeofenceRepo) Upsert(context.Context, *domainGeofence.Geofence) (bool, error) {
	return false, nil
}
func (f *fakeGeofenceRepo) GetByID(context.Context, int64) (*domainGeofence.Geofence, error) {
	return nil, domainGeofence.ErrGeofenceNotFound
}
func (f *fakeGeofenceRepo) List(context.Context, bool) ([]*domainGeofence.Geofence, error) {
	return f.geofences, nil
}
func (f *fakeGeofenceRepo) Update(context.Context, *domainGeofence.Geofence) error { return nil }
func (f *fakeGeofenceRepo) Delete(context.Context, int64) error                    { return nil }

func newTestService(devices ...*domainDevice.Device) (*Service, *fakeDeviceRepo, *fakeTripRepo) {
	deviceRepo := &fakeDeviceRepo{byExternalID: map[int64]*domainDevice.Device{}}
	for _, d := range devices {
		deviceRepo.byExternalID[d.ExternalID] = d
	}
	tripRepo := &fakeTripRepo{}
	return NewService(deviceRepo, tripRepo, &fakeGeofenceRepo{}), deviceRepo, tripRepo
}

func TestProcessIntervalsIsolatesFailures(t *testing.T) {
	svc, _, tripRepo := newTestService(
		&domainDevice.Device{ID: 1, ExternalID: 100},
		&domainDevice.Device{ID: 2, ExternalID: 300},
	)

	payload := map[string]any{
		"intervals": []any{
			map[string]any{"id": float64(1), "device_id": float64(100), "begin": float64(1000), "end": float64(1600), "distance": 5.0},
			map[string]any{"id": float64(2), "device_id": float64(200), "begin": float64(2000)},
			map[string]any{"id": float64(3), "device_id": float64(300), "begin": float64(3000), "end": float64(3300)},
		},
	}

	summary := svc.Process(context.Background(), payload)

	if summary.Processed != 2 {
		t.Errorf("Processed = %d, want 2", summary.Processed)
	}
	if summary.Failed != 1 {
		t.Errorf("Failed = %d, want 1", summary.Failed)
	}
	if len(summary.Errors) != 1 {
		t.Errorf("Errors = %v, want one entry", summary.Errors)
	}
	if len(tripRepo.upserts) != 2 {
		t.Fatalf("trip upserts = %d, want 2", len(tripRepo.upserts))
	}
	if tripRepo.upserts[0].DeviceID != 1 || tripRepo.upserts[1].DeviceID != 2 {
		t.Errorf("trips mapped to local device ids %d/%d, want 1/2",
			tripRepo.upserts[0].DeviceID, tripRepo.upserts[1].DeviceID)
	}
}

func TestProcessIntervalsMalformedRoute(t *testing.T) {
	svc, _, tripRepo := newTestService(
		&domainDevice.Device{ID: 1, ExternalID: 100},
	)

	// "_p~iF" is a truncated polyline: a latitude value with no longitude.
	payload := map[string]any{
		"intervals": []any{
			map[string]any{"id": float64(1), "device_id": float64(100), "begin": float64(1000), "route": "_p~iF~ps|U"},
			map[string]any{"id": float64(2), "device_id": float64(100), "begin": float64(2000), "route": "_p~iF"},
			map[string]any{"id": float64(3), "device_id": float64(100), "begin": float64(3000)},
		},
	}

	summary := svc.Process(context.Background(), payload)

	if summary.Processed != 3 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want all 3 processed", summary)
	}
	if len(tripRepo.upserts) != 3 {
		t.Fatalf("trip upserts = %d, want 3", len(tripRepo.upserts))
	}
	if len(tripRepo.upserts[0].Route) != 1 {
		t.Errorf("trip 1 route = %v, want one point", tripRepo.upserts[0].Route)
	}
	if len(tripRepo.upserts[1].Route) != 0 {
		t.Errorf("trip 2 route = %v, want empty for truncated polyline", tripRepo.upserts[1].Route)
	}
}

func TestProcessIntervalSnapshotsDriver(t *testing.T) {
	driverID := int64(9)
	svc, _, tripRepo := newTestService(
		&domainDevice.Device{ID: 1, ExternalID: 100, CurrentDriverID: &driverID},
	)

	payload := map[string]any{
		"intervals": []any{
			map[string]any{"id": float64(1), "device_id": float64(100), "begin": float64(1000)},
		},
	}

	summary := svc.Process(context.Background(), payload)
	if summary.Processed != 1 {
		t.Fatalf("Processed = %d, want 1", summary.Processed)
	}
	if tripRepo.upserts[0].DriverID == nil || *tripRepo.upserts[0].DriverID != driverID {
		t.Errorf("DriverID = %v, want %d", tripRepo.upserts[0].DriverID, driverID)
	}
}

func TestProcessMessagesUpdatesDevice(t *testing.T) {
	svc, deviceRepo, _ := newTestService(
		&domainDevice.Device{ID: 1, ExternalID: 100, Name: "truck-1"},
	)

	now := time.Now().Unix()
	payload := map[string]any{
		"messages": []any{
			map[string]any{
				"device_id":          float64(100),
				"position.latitude":  51.5,
				"position.longitude": -0.12,
				"position.speed":     33.0,
				"timestamp":          float64(now),
			},
		},
	}

	summary := svc.Process(context.Background(), payload)
	if summary.Processed != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want 1 processed", summary)
	}

	d := deviceRepo.byExternalID[100]
	if d.LastLatitude == nil || *d.LastLatitude != 51.5 {
		t.Errorf("LastLatitude = %v, want 51.5", d.LastLatitude)
	}
	if d.Status != domainDevice.StatusOnline {
		t.Errorf("Status = %q, want online for a fresh message", d.Status)
	}
}

func TestProcessMessagesUnknownDeviceFails(t *testing.T) {
	svc, _, _ := newTestService()

	payload := map[string]any{
		"messages": []any{
			map[string]any{"device_id": float64(999), "position.latitude": 1.0},
		},
	}

	summary := svc.Process(context.Background(), payload)
	if summary.Processed != 0 || summary.Failed != 1 {
		t.Errorf("summary = %+v, want 1 failed", summary)
	}
}

func TestProcessEventsAreLogOnly(t *testing.T) {
	svc, _, tripRepo := newTestService()

	payload := map[string]any{
		"events": []any{
			map[string]any{"device_id": float64(1), "geofence_id": float64(2), "type": "enter"},
			map[string]any{"device_id": float64(1), "geofence_id": float64(2), "type": "exit"},
		},
	}

	summary := svc.Process(context.Background(), payload)
	if summary.Processed != 2 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want 2 processed", summary)
	}
	if len(tripRepo.upserts) != 0 {
		t.Errorf("events persisted trips: %d", len(tripRepo.upserts))
	}
}

func TestProcessEventsDottedIDs(t *testing.T) {
	svc, _, _ := newTestService()

	// Geofence events carry ids under "device.id" / "geofence.id".
	payload := map[string]any{
		"events": []any{
			map[string]any{"device.id": float64(1), "geofence.id": float64(2), "type": "enter"},
		},
	}

	summary := svc.Process(context.Background(), payload)
	if summary.Processed != 1 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want 1 processed", summary)
	}
}

func TestProcessUnknownPayload(t *testing.T) {
	svc, _, _ := newTestService()

	summary := svc.Process(context.Background(), map[string]any{"bogus": []any{}})
	if summary.Failed != 1 {
		t.Errorf("Failed = %d, want 1 for unknown payload", summary.Failed)
	}
}

func TestProcessMessageGeofenceHit(t *testing.T) {
	deviceRepo := &fakeDeviceRepo{byExternalID: map[int64]*domainDevice.Device{
		100: {ID: 1, ExternalID: 100},
	}}
	geofenceRepo := &fakeGeofenceRepo{geofences: []*domainGeofence.Geofence{
		{
			ID:   5,
			Name: "depot",
			Shape: geo.Shape{
				Kind: geo.ShapeCircle,
				Circle: &geo.Circle{
					Center:       geo.Point{Lat: 10, Lon: 10},
					RadiusMeters: 500,
				},
			},
			IsActive: true,
		},
	}}
	svc := NewService(deviceRepo, &fakeTripRepo{}, geofenceRepo)

	payload := map[string]any{
		"messages": []any{
			map[string]any{
				"device_id":          float64(100),
				"position.latitude":  10.0,
				"position.longitude": 10.0,
			},
		},
	}

	summary := svc.Process(context.Background(), payload)
	if summary.Processed != 1 {
		t.Errorf("summary = %+v, want 1 processed", summary)
	}
}
