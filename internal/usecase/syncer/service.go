package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	domainDevice "fleet-tracker/internal/domain/device"
	domainGeofence "fleet-tracker/internal/domain/geofence"
	domainTrip "fleet-tracker/internal/domain/trip"
	"fleet-tracker/internal/geo"
	"fleet-tracker/internal/logger"
	"fleet-tracker/internal/polyline"
	"fleet-tracker/internal/telematics"
	"fleet-tracker/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 8

// Upstream is the slice of the platform client the syncer needs.
type Upstream interface {
	ListDevices(ctx context.Context, useCache bool) ([]telematics.Document, error)
	DeviceLocation(ctx context.Context, deviceID int64, useCache bool) (telematics.Location, error)
	DeviceIntervals(ctx context.Context, calcID, deviceID int64, from, to *int64, limit int) ([]telematics.Interval, error)
	ListGeofences(ctx context.Context, useCache bool) ([]telematics.Document, error)
}

// Service pulls devices, trips and geofences down from the platform into
// local storage.
type Service struct {
	upstream     Upstream
	deviceRepo   domainDevice.Repository
	tripRepo     domainTrip.Repository
	geofenceRepo domainGeofence.Repository
	calcID       int64
	workers      int
}

// NewService creates a sync service. calcID is the trip calculator id; zero
// means trip sync is not configured.
func NewService(
	upstream Upstream,
	deviceRepo domainDevice.Repository,
	tripRepo domainTrip.Repository,
	geofenceRepo domainGeofence.Repository,
	calcID int64,
) *Service {
	return &Service{
		upstream:     upstream,
		deviceRepo:   deviceRepo,
		tripRepo:     tripRepo,
		geofenceRepo: geofenceRepo,
		calcID:       calcID,
		workers:      defaultWorkers,
	}
}

// SyncDevices mirrors the upstream device list into local storage. Each
// device's last location is fetched concurrently; a failure on one device is
// recorded and the rest continue.
func (s *Service) SyncDevices(ctx context.Context) (*Summary, error) {
	docs, err := s.upstream.ListDevices(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list upstream devices: %w", err)
	}

	now := time.Now()
	summary := &Summary{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, doc := range docs {
		doc := doc
		g.Go(func() error {
			externalID, ok := doc.Int64("id")
			if !ok {
				mu.Lock()
				summary.addError("device record without id")
				mu.Unlock()
				return nil
			}

			d, err := s.buildDevice(gctx, externalID, doc, now)
			if err != nil {
				mu.Lock()
				summary.addError(fmt.Sprintf("device %d: %v", externalID, err))
				mu.Unlock()
				return nil
			}

			created, err := s.deviceRepo.Upsert(gctx, d)
			if err != nil {
				mu.Lock()
				summary.addError(fmt.Sprintf("device %d: %v", externalID, err))
				mu.Unlock()
				return nil
			}

			mu.Lock()
			summary.addUpsert(created)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("device sync finished",
		zap.Int("synced", summary.Synced),
		zap.Int("created", summary.Created),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (s *Service) buildDevice(ctx context.Context, externalID int64, doc telematics.Document, now time.Time) (*domainDevice.Device, error) {
	name, _ := doc.String("name")
	if name == "" {
		name = fmt.Sprintf("Device %d", externalID)
	}

	d := &domainDevice.Device{
		ExternalID: externalID,
		Name:       name,
	}
	if ident, ok := doc.Sub("configuration").String("ident"); ok && ident != "" {
		d.Ident = &ident
	}
	if typeID, ok := doc.Int64("device_type_id"); ok {
		d.DeviceTypeID = &typeID
	}

	loc, err := s.upstream.DeviceLocation(ctx, externalID, false)
	if err != nil {
		return nil, fmt.Errorf("fetch location: %w", err)
	}

	d.LastLatitude = loc.Latitude
	d.LastLongitude = loc.Longitude
	d.LastSpeed = loc.Speed
	if loc.Timestamp != nil {
		t := time.Unix(*loc.Timestamp, 0)
		d.LastMessageAt = &t
	}
	d.Status = domainDevice.StatusAt(d.LastMessageAt, now)
	d.Telemetry = telemetrySnapshot(loc)

	return d, nil
}

// telemetrySnapshot stores the fetched location as the device's raw telemetry
// so sync passes refresh rather than erase what webhook messages wrote.
func telemetrySnapshot(loc telematics.Location) map[string]any {
	snapshot := map[string]any{}
	if loc.Latitude != nil {
		snapshot["position.latitude"] = *loc.Latitude
	}
	if loc.Longitude != nil {
		snapshot["position.longitude"] = *loc.Longitude
	}
	if loc.Speed != nil {
		snapshot["position.speed"] = *loc.Speed
	}
	if loc.Timestamp != nil {
		snapshot["timestamp"] = *loc.Timestamp
	}
	if len(snapshot) == 0 {
		return nil
	}
	return snapshot
}

// SyncTrips pulls trip intervals inside the optional [from, to]
// Unix-timestamp window and upserts them keyed by interval id. A non-nil
// deviceID restricts the pass to that device and surfaces its lookup error
// directly. The driver attached to each trip is a snapshot of the device's
// current driver at sync time.
func (s *Service) SyncTrips(ctx context.Context, deviceID, from, to *int64) (*Summary, error) {
	if s.calcID == 0 {
		return nil, errors.ErrCalculatorNotConfigured
	}

	var devices []*domainDevice.Device
	if deviceID != nil {
		d, err := s.deviceRepo.GetByID(ctx, *deviceID)
		if err != nil {
			return nil, err
		}
		devices = []*domainDevice.Device{d}
	} else {
		var err error
		devices, err = s.deviceRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list devices: %w", err)
		}
	}

	summary := &Summary{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, d := range devices {
		d := d
		g.Go(func() error {
			intervals, err := s.upstream.DeviceIntervals(gctx, s.calcID, d.ExternalID, from, to, 1000)
			if err != nil {
				mu.Lock()
				summary.addError(fmt.Sprintf("device %d intervals: %v", d.ExternalID, err))
				mu.Unlock()
				return nil
			}

			for _, iv := range intervals {
				created, err := s.upsertTrip(gctx, d, iv)
				mu.Lock()
				if err != nil {
					summary.addError(fmt.Sprintf("device %d: %v", d.ExternalID, err))
				} else {
					summary.addUpsert(created)
				}
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("trip sync finished",
		zap.Int("synced", summary.Synced),
		zap.Int("created", summary.Created),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (s *Service) upsertTrip(ctx context.Context, d *domainDevice.Device, iv telematics.Interval) (bool, error) {
	if iv.ID == nil {
		return false, fmt.Errorf("interval without id")
	}
	if iv.Begin == nil {
		return false, fmt.Errorf("interval %d without begin time", *iv.ID)
	}

	t := &domainTrip.Trip{
		ExternalIntervalID: iv.ID,
		DeviceID:           d.ID,
		DriverID:           d.CurrentDriverID,
		StartTime:          time.Unix(*iv.Begin, 0),
		DurationSecs:       iv.DurationSecs,
		DistanceKm:         iv.DistanceKm,
		StartLatitude:      iv.StartLatitude,
		StartLongitude:     iv.StartLongitude,
		EndLatitude:        iv.EndLatitude,
		EndLongitude:       iv.EndLongitude,
		Metadata:           iv.Metadata,
	}
	if iv.End != nil {
		end := time.Unix(*iv.End, 0)
		t.EndTime = &end
	}
	if iv.MaxSpeed > 0 {
		v := iv.MaxSpeed
		t.MaxSpeed = &v
	}
	if iv.AvgSpeed > 0 {
		v := iv.AvgSpeed
		t.AvgSpeed = &v
	}
	if iv.RoutePolyline != nil {
		t.Route = polyline.Decode(*iv.RoutePolyline)
	}

	return s.tripRepo.Upsert(ctx, t)
}

// SyncGeofences mirrors upstream geofences into local storage keyed by their
// upstream id.
func (s *Service) SyncGeofences(ctx context.Context) (*Summary, error) {
	docs, err := s.upstream.ListGeofences(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list upstream geofences: %w", err)
	}

	summary := &Summary{}
	for _, doc := range docs {
		externalID, ok := doc.Int64("id")
		if !ok {
			summary.addError("geofence record without id")
			continue
		}

		name, _ := doc.String("name")
		if name == "" {
			name = fmt.Sprintf("Geofence %d", externalID)
		}

		color, _ := doc.String("color")
		if color == "" {
			color = domainGeofence.DefaultColor
		}

		g := &domainGeofence.Geofence{
			ExternalID: &externalID,
			Name:       name,
			Shape:      geo.ShapeFromUpstream(doc.Sub("geometry")),
			Color:      color,
			IsActive:   true,
		}

		created, err := s.geofenceRepo.Upsert(ctx, g)
		if err != nil {
			summary.addError(fmt.Sprintf("geofence %d: %v", externalID, err))
			continue
		}
		summary.addUpsert(created)
	}

	logger.Info("geofence sync finished",
		zap.Int("synced", summary.Synced),
		zap.Int("created", summary.Created),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}
