package trip

import (
	"context"
	"fmt"

	domainDevice "fleet-tracker/internal/domain/device"
	domainTrip "fleet-tracker/internal/domain/trip"
	"fleet-tracker/internal/logger"
	"fleet-tracker/internal/polyline"
	"fleet-tracker/internal/telematics"
	"fleet-tracker/pkg/errors"

	"go.uber.org/zap"
)

// Upstream is the slice of the platform client used for route backfill.
type Upstream interface {
	IntervalMessages(ctx context.Context, calcID, deviceID, intervalID int64) ([]telematics.RoutePoint, error)
}

// Service exposes cached trips and backfills routes on demand.
type Service struct {
	tripRepo   domainTrip.Repository
	deviceRepo domainDevice.Repository
	upstream   Upstream
	calcID     int64
}

// NewService creates a trip service. calcID is the trip calculator id; zero
// disables route backfill.
func NewService(tripRepo domainTrip.Repository, deviceRepo domainDevice.Repository, upstream Upstream, calcID int64) *Service {
	return &Service{
		tripRepo:   tripRepo,
		deviceRepo: deviceRepo,
		upstream:   upstream,
		calcID:     calcID,
	}
}

// List returns a page of trips matching the filter.
func (s *Service) List(ctx context.Context, filter *domainTrip.Filter) (*ListResponse, error) {
	trips, total, err := s.tripRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]*TripResponse, len(trips))
	for i, t := range trips {
		responses[i] = toTripResponse(t)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	return &ListResponse{
		Trips:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Get returns one trip.
func (s *Service) Get(ctx context.Context, tripID int64) (*TripResponse, error) {
	t, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return toTripResponse(t), nil
}

// Stats aggregates trips matching the filter.
func (s *Service) Stats(ctx context.Context, filter *domainTrip.Filter) (*StatsResponse, error) {
	stats, err := s.tripRepo.Stats(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &StatsResponse{
		TotalTrips:    stats.TotalTrips,
		TotalDistance: stats.TotalDistance,
		TotalDuration: stats.TotalDuration,
		AvgSpeed:      stats.AvgSpeed,
		MaxSpeed:      stats.MaxSpeed,
	}, nil
}

// Route returns a trip's point sequence. Trips synced without a route get one
// backfilled from the interval's positioned messages and stored for later
// reads.
func (s *Service) Route(ctx context.Context, tripID int64) (*RouteResponse, error) {
	t, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if len(t.Route) > 0 {
		return &RouteResponse{TripID: t.ID, Route: t.Route}, nil
	}

	route, err := s.backfillRoute(ctx, t)
	if err != nil {
		return nil, err
	}
	return &RouteResponse{TripID: t.ID, Route: route}, nil
}

func (s *Service) backfillRoute(ctx context.Context, t *domainTrip.Trip) ([]polyline.Point, error) {
	if s.calcID == 0 {
		return nil, errors.ErrCalculatorNotConfigured
	}
	if t.ExternalIntervalID == nil {
		return nil, domainTrip.ErrNoExternalID
	}

	d, err := s.deviceRepo.GetByID(ctx, t.DeviceID)
	if err != nil {
		return nil, err
	}

	messages, err := s.upstream.IntervalMessages(ctx, s.calcID, d.ExternalID, *t.ExternalIntervalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch interval messages: %w", err)
	}

	route := make([]polyline.Point, len(messages))
	for i, m := range messages {
		route[i] = polyline.Point{Latitude: m.Latitude, Longitude: m.Longitude}
	}

	if len(route) > 0 {
		if err := s.tripRepo.UpdateRoute(ctx, t.ID, route); err != nil {
			logger.Warn("failed to store backfilled route",
				zap.Int64("trip_id", t.ID),
				zap.Error(err),
			)
		}
	}
	return route, nil
}
