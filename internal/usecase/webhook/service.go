package webhook

import (
	"context"
	"fmt"
	"time"

	domainDevice "fleet-tracker/internal/domain/device"
	domainGeofence "fleet-tracker/internal/domain/geofence"
	domainTrip "fleet-tracker/internal/domain/trip"
	"fleet-tracker/internal/geo"
	"fleet-tracker/internal/logger"
	"fleet-tracker/internal/polyline"
	"fleet-tracker/internal/telematics"

	"go.uber.org/zap"
)

// Summary reports the outcome of one webhook delivery. A record that cannot
// be applied is counted as failed with its error collected; it never aborts
// the remaining records.
type Summary struct {
	Processed int      `json:"processed"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

func (s *Summary) ok() {
	s.Processed++
}

func (s *Summary) fail(err string) {
	s.Failed++
	s.Errors = append(s.Errors, err)
}

// Service applies pushed platform data (messages, trip intervals, geofence
// events) to local storage.
type Service struct {
	deviceRepo   domainDevice.Repository
	tripRepo     domainTrip.Repository
	geofenceRepo domainGeofence.Repository
}

// NewService creates a webhook processing service.
func NewService(
	deviceRepo domainDevice.Repository,
	tripRepo domainTrip.Repository,
	geofenceRepo domainGeofence.Repository,
) *Service {
	return &Service{
		deviceRepo:   deviceRepo,
		tripRepo:     tripRepo,
		geofenceRepo: geofenceRepo,
	}
}

// Process dispatches a webhook payload by its data key. Exactly one of
// "messages", "intervals" or "events" is expected; anything else is reported
// in the summary rather than failing the delivery.
func (s *Service) Process(ctx context.Context, payload map[string]any) *Summary {
	summary := &Summary{}

	switch {
	case payload["messages"] != nil:
		s.processMessages(ctx, asRecords(payload["messages"]), summary)
	case payload["intervals"] != nil:
		s.processIntervals(ctx, asRecords(payload["intervals"]), summary)
	case payload["events"] != nil:
		s.processEvents(asRecords(payload["events"]), summary)
	default:
		summary.fail("unrecognized webhook payload")
	}

	return summary
}

// processMessages applies position messages to the matching devices and logs
// any geofences the new position falls inside.
func (s *Service) processMessages(ctx context.Context, records []telematics.Document, summary *Summary) {
	geofences := s.activeGeofences(ctx)
	now := time.Now()

	for _, record := range records {
		externalID, ok := record.Int64Of("device_id", "device.id")
		if !ok {
			summary.fail("message without device id")
			continue
		}

		d, err := s.deviceRepo.GetByExternalID(ctx, externalID)
		if err != nil {
			summary.fail(fmt.Sprintf("message for device %d: %v", externalID, err))
			continue
		}

		if lat := record.FloatPtr("position.latitude"); lat != nil {
			d.LastLatitude = lat
		}
		if lon := record.FloatPtr("position.longitude"); lon != nil {
			d.LastLongitude = lon
		}
		if speed := record.FloatPtr("position.speed"); speed != nil {
			d.LastSpeed = speed
		}
		if ts, ok := record.Int64("timestamp"); ok {
			t := time.Unix(ts, 0)
			d.LastMessageAt = &t
		}
		d.Status = d.StatusAt(now)
		d.Telemetry = record

		if _, err := s.deviceRepo.Upsert(ctx, d); err != nil {
			summary.fail(fmt.Sprintf("message for device %d: %v", externalID, err))
			continue
		}

		if d.HasLocation() {
			p := geo.Point{Lat: *d.LastLatitude, Lon: *d.LastLongitude}
			for _, g := range domainGeofence.Containing(p, geofences) {
				logger.Info("device inside geofence",
					zap.Int64("device_id", d.ID),
					zap.Int64("geofence_id", g.ID),
					zap.String("geofence", g.Name),
				)
			}
		}

		summary.ok()
	}
}

// processIntervals upserts pushed trip intervals. An interval whose device is
// unknown locally counts as failed.
func (s *Service) processIntervals(ctx context.Context, records []telematics.Document, summary *Summary) {
	for _, record := range records {
		iv := telematics.NormalizeInterval(record)

		externalID, ok := record.Int64Of("device_id", "device.id")
		if !ok {
			summary.fail("interval without device id")
			continue
		}

		d, err := s.deviceRepo.GetByExternalID(ctx, externalID)
		if err != nil {
			summary.fail(fmt.Sprintf("interval for device %d: %v", externalID, err))
			continue
		}

		if iv.ID == nil {
			summary.fail(fmt.Sprintf("interval for device %d without id", externalID))
			continue
		}
		if iv.Begin == nil {
			summary.fail(fmt.Sprintf("interval %d without begin time", *iv.ID))
			continue
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

		if _, err := s.tripRepo.Upsert(ctx, t); err != nil {
			summary.fail(fmt.Sprintf("interval %d: %v", *iv.ID, err))
			continue
		}

		summary.ok()
	}
}

// processEvents logs geofence enter/exit events. Events are observational
// only; nothing is persisted for them.
func (s *Service) processEvents(records []telematics.Document, summary *Summary) {
	for _, record := range records {
		deviceID, _ := record.Int64Of("device_id", "device.id")
		geofenceID, _ := record.Int64Of("geofence_id", "geofence.id")
		eventType, _ := record.String("type")

		logger.Info("geofence event",
			zap.Int64("device_id", deviceID),
			zap.Int64("geofence_id", geofenceID),
			zap.String("type", eventType),
		)
		summary.ok()
	}
}

func (s *Service) activeGeofences(ctx context.Context) []*domainGeofence.Geofence {
	geofences, err := s.geofenceRepo.List(ctx, true)
	if err != nil {
		logger.Warn("failed to load geofences for hit check", zap.Error(err))
		return nil
	}
	return geofences
}

// asRecords coerces a decoded JSON array into documents, dropping anything
// that is not an object.
func asRecords(v any) []telematics.Document {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	records := make([]telematics.Document, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			records = append(records, telematics.Document(obj))
		}
	}
	return records
}
