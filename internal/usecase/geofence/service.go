package geofence

import (
	"context"
	"fmt"

	domainGeofence "fleet-tracker/internal/domain/geofence"
	"fleet-tracker/internal/geo"
	"fleet-tracker/internal/logger"
	"fleet-tracker/internal/telematics"
	pkgerrors "fleet-tracker/pkg/errors"
	"fleet-tracker/pkg/utils"

	"go.uber.org/zap"
)

// Upstream is the slice of the platform client used to mirror geofences.
type Upstream interface {
	CreateGeofence(ctx context.Context, name string, geometry map[string]any) (telematics.Document, error)
	UpdateGeofence(ctx context.Context, geofenceID int64, updates map[string]any) (telematics.Document, error)
	DeleteGeofence(ctx context.Context, geofenceID int64) error
}

// Service manages geofences, keeping the upstream platform and local storage
// in step.
type Service struct {
	geofenceRepo domainGeofence.Repository
	upstream     Upstream
}

// NewService creates a geofence service.
func NewService(geofenceRepo domainGeofence.Repository, upstream Upstream) *Service {
	return &Service{
		geofenceRepo: geofenceRepo,
		upstream:     upstream,
	}
}

// Create mirrors the geofence upstream first, then stores it locally with
// the upstream id attached. An upstream failure aborts the create.
func (s *Service) Create(ctx context.Context, req *CreateGeofenceRequest) (*GeofenceResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, pkgerrors.NewAppError("VALIDATION_ERROR", "invalid geofence data", err)
	}

	shape, err := shapeFromRequest(req)
	if err != nil {
		return nil, err
	}

	g := &domainGeofence.Geofence{
		Name:        req.Name,
		Shape:       shape,
		Description: req.Description,
		IsActive:    true,
	}
	if req.Color != nil && *req.Color != "" {
		g.Color = *req.Color
	} else {
		g.Color = domainGeofence.DefaultColor
	}

	doc, err := s.upstream.CreateGeofence(ctx, g.Name, geo.ShapeToUpstream(shape))
	if err != nil {
		return nil, fmt.Errorf("failed to mirror geofence upstream: %w", err)
	}
	if doc != nil {
		if externalID, ok := doc.Int64("id"); ok {
			g.ExternalID = &externalID
		}
	}

	if err := s.geofenceRepo.Create(ctx, g); err != nil {
		return nil, err
	}
	return toGeofenceResponse(g), nil
}

// Get returns one geofence.
func (s *Service) Get(ctx context.Context, geofenceID int64) (*GeofenceResponse, error) {
	g, err := s.geofenceRepo.GetByID(ctx, geofenceID)
	if err != nil {
		return nil, err
	}
	return toGeofenceResponse(g), nil
}

// List returns geofences, optionally active ones only.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]*GeofenceResponse, error) {
	geofences, err := s.geofenceRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}

	responses := make([]*GeofenceResponse, len(geofences))
	for i, g := range geofences {
		responses[i] = toGeofenceResponse(g)
	}
	return responses, nil
}

// Update applies a partial update locally and propagates the name change
// upstream when the geofence has an upstream twin. A failed propagation is
// logged, not returned: local state is authoritative for display fields.
func (s *Service) Update(ctx context.Context, geofenceID int64, req *UpdateGeofenceRequest) (*GeofenceResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, pkgerrors.NewAppError("VALIDATION_ERROR", "invalid geofence data", err)
	}

	g, err := s.geofenceRepo.GetByID(ctx, geofenceID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		g.Name = *req.Name
	}
	if req.Color != nil && *req.Color != "" {
		g.Color = *req.Color
	}
	if req.Description != nil {
		g.Description = req.Description
	}
	if req.IsActive != nil {
		g.IsActive = *req.IsActive
	}

	if err := s.geofenceRepo.Update(ctx, g); err != nil {
		return nil, err
	}

	if req.Name != nil && g.ExternalID != nil {
		_, err := s.upstream.UpdateGeofence(ctx, *g.ExternalID, map[string]any{"name": g.Name})
		if err != nil {
			logger.Warn("failed to propagate geofence update upstream",
				zap.Int64("geofence_id", g.ID),
				zap.Error(err),
			)
		}
	}

	return toGeofenceResponse(g), nil
}

// Delete removes the geofence locally and upstream. The upstream delete is
// attempted first so a failing platform leaves both copies in place.
func (s *Service) Delete(ctx context.Context, geofenceID int64) error {
	g, err := s.geofenceRepo.GetByID(ctx, geofenceID)
	if err != nil {
		return err
	}

	if g.ExternalID != nil {
		if err := s.upstream.DeleteGeofence(ctx, *g.ExternalID); err != nil {
			return fmt.Errorf("failed to delete geofence upstream: %w", err)
		}
	}

	return s.geofenceRepo.Delete(ctx, geofenceID)
}

// HitTest returns the active geofences covering a point.
func (s *Service) HitTest(ctx context.Context, lat, lon float64) (*HitTestResponse, error) {
	geofences, err := s.geofenceRepo.List(ctx, true)
	if err != nil {
		return nil, err
	}

	matches := domainGeofence.Containing(geo.Point{Lat: lat, Lon: lon}, geofences)
	responses := make([]*GeofenceResponse, len(matches))
	for i, g := range matches {
		responses[i] = toGeofenceResponse(g)
	}

	return &HitTestResponse{
		Latitude:  lat,
		Longitude: lon,
		Matches:   responses,
	}, nil
}

func shapeFromRequest(req *CreateGeofenceRequest) (geo.Shape, error) {
	switch geo.ShapeKind(req.Kind) {
	case geo.ShapeCircle:
		if req.Center == nil || req.RadiusM == nil {
			return geo.Shape{}, pkgerrors.NewAppError("VALIDATION_ERROR", "circle requires center and radius", nil)
		}
		return geo.Shape{
			Kind: geo.ShapeCircle,
			Circle: &geo.Circle{
				Center:       *req.Center,
				RadiusMeters: *req.RadiusM,
			},
		}, nil
	case geo.ShapePolygon:
		if len(req.Ring) < 3 {
			return geo.Shape{}, pkgerrors.NewAppError("VALIDATION_ERROR", "polygon requires at least three points", nil)
		}
		return geo.Shape{
			Kind:    geo.ShapePolygon,
			Polygon: &geo.Polygon{Rings: [][]geo.Point{geo.CloseRing(req.Ring)}},
		}, nil
	default:
		return geo.Shape{}, pkgerrors.NewAppError("VALIDATION_ERROR", "unknown geofence kind", nil)
	}
}
