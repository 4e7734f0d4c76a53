package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainTrip "fleet-tracker/internal/domain/trip"
	"fleet-tracker/internal/infrastructure/database/postgres/models"
	"fleet-tracker/internal/polyline"

	"gorm.io/gorm"
)

// TripRepository implements the trip domain repository.
type TripRepository struct {
	db *DB
}

// NewTripRepository creates a new trip repository.
func NewTripRepository(db *DB) domainTrip.Repository {
	return &TripRepository{db: db}
}

func (r *TripRepository) Upsert(ctx context.Context, t *domainTrip.Trip) (bool, error) {
	if t.ExternalIntervalID == nil {
		return false, domainTrip.ErrNoExternalID
	}

	created := false

	err := r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.TripModel
		err := tx.Where("external_interval_id = ?", *t.ExternalIntervalID).First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			now := time.Now()
			t.CreatedAt = now
			t.UpdatedAt = now
			dbModel := toTripModel(t)
			if err := tx.Create(dbModel).Error; err != nil {
				return fmt.Errorf("failed to create trip: %w", err)
			}
			t.ID = dbModel.ID
			created = true
			return nil

		case err != nil:
			return fmt.Errorf("failed to look up trip: %w", err)

		default:
			t.ID = existing.ID
			t.CreatedAt = existing.CreatedAt
			t.UpdatedAt = time.Now()
			dbModel := toTripModel(t)
			if err := tx.Save(dbModel).Error; err != nil {
				return fmt.Errorf("failed to update trip: %w", err)
			}
			return nil
		}
	})

	return created, err
}

func (r *TripRepository) Create(ctx context.Context, t *domainTrip.Trip) error {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	dbModel := toTripModel(t)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}

	t.ID = dbModel.ID
	return nil
}

func (r *TripRepository) GetByID(ctx context.Context, tripID int64) (*domainTrip.Trip, error) {
	var dbModel models.TripModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", tripID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainTrip.ErrTripNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	return toTripEntity(&dbModel), nil
}

func (r *TripRepository) List(ctx context.Context, filter *domainTrip.Filter) ([]*domainTrip.Trip, int64, error) {
	query := applyTripFilter(r.db.DB.WithContext(ctx).Model(&models.TripModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var dbModels []models.TripModel
	err := query.
		Order("start_time DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&dbModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list trips: %w", err)
	}

	trips := make([]*domainTrip.Trip, len(dbModels))
	for i := range dbModels {
		trips[i] = toTripEntity(&dbModels[i])
	}
	return trips, total, nil
}

func (r *TripRepository) Stats(ctx context.Context, filter *domainTrip.Filter) (*domainTrip.Stats, error) {
	query := applyTripFilter(r.db.DB.WithContext(ctx).Model(&models.TripModel{}), filter)

	var row struct {
		TotalTrips    int64
		TotalDistance float64
		TotalDuration int64
		AvgSpeed      float64
		MaxSpeed      float64
	}
	err := query.
		Select("COUNT(*) AS total_trips, " +
			"COALESCE(SUM(distance_km), 0) AS total_distance, " +
			"COALESCE(SUM(duration_secs), 0) AS total_duration, " +
			"COALESCE(AVG(avg_speed), 0) AS avg_speed, " +
			"COALESCE(MAX(max_speed), 0) AS max_speed").
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate trips: %w", err)
	}

	return &domainTrip.Stats{
		TotalTrips:    row.TotalTrips,
		TotalDistance: row.TotalDistance,
		TotalDuration: row.TotalDuration,
		AvgSpeed:      row.AvgSpeed,
		MaxSpeed:      row.MaxSpeed,
	}, nil
}

func (r *TripRepository) UpdateRoute(ctx context.Context, tripID int64, route []polyline.Point) error {
	encoded := polyline.Encode(route)

	result := r.db.DB.WithContext(ctx).
		Model(&models.TripModel{}).
		Where("id = ?", tripID).
		Updates(map[string]interface{}{
			"route_polyline": &encoded,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update trip route: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainTrip.ErrTripNotFound
	}
	return nil
}

func applyTripFilter(query *gorm.DB, filter *domainTrip.Filter) *gorm.DB {
	if filter == nil {
		return query
	}
	if filter.DeviceID != nil {
		query = query.Where("device_id = ?", *filter.DeviceID)
	}
	if filter.DriverID != nil {
		query = query.Where("driver_id = ?", *filter.DriverID)
	}
	if filter.From != nil {
		query = query.Where("start_time >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("start_time <= ?", *filter.To)
	}
	return query
}

func toTripModel(t *domainTrip.Trip) *models.TripModel {
	var routePolyline *string
	if len(t.Route) > 0 {
		encoded := polyline.Encode(t.Route)
		routePolyline = &encoded
	}

	return &models.TripModel{
		ID:                 t.ID,
		ExternalIntervalID: t.ExternalIntervalID,
		DeviceID:           t.DeviceID,
		DriverID:           t.DriverID,
		StartTime:          t.StartTime,
		EndTime:            t.EndTime,
		DurationSecs:       t.DurationSecs,
		DistanceKm:         t.DistanceKm,
		AvgSpeed:           t.AvgSpeed,
		MaxSpeed:           t.MaxSpeed,
		StartLatitude:      t.StartLatitude,
		StartLongitude:     t.StartLongitude,
		EndLatitude:        t.EndLatitude,
		EndLongitude:       t.EndLongitude,
		RoutePolyline:      routePolyline,
		Metadata:           marshalJSON(t.Metadata),
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

func toTripEntity(m *models.TripModel) *domainTrip.Trip {
	var route []polyline.Point
	if m.RoutePolyline != nil && *m.RoutePolyline != "" {
		route = polyline.Decode(*m.RoutePolyline)
	}

	return &domainTrip.Trip{
		ID:                 m.ID,
		ExternalIntervalID: m.ExternalIntervalID,
		DeviceID:           m.DeviceID,
		DriverID:           m.DriverID,
		StartTime:          m.StartTime,
		EndTime:            m.EndTime,
		DurationSecs:       m.DurationSecs,
		DistanceKm:         m.DistanceKm,
		AvgSpeed:           m.AvgSpeed,
		MaxSpeed:           m.MaxSpeed,
		StartLatitude:      m.StartLatitude,
		StartLongitude:     m.StartLongitude,
		EndLatitude:        m.EndLatitude,
		EndLongitude:       m.EndLongitude,
		Route:              route,
		Metadata:           unmarshalJSON(m.Metadata),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
