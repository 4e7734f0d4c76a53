package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domainGeofence "fleet-tracker/internal/domain/geofence"
	"fleet-tracker/internal/geo"
	"fleet-tracker/internal/infrastructure/database/postgres/models"

	"gorm.io/gorm"
)

// GeofenceRepository implements the geofence domain repository.
type GeofenceRepository struct {
	db *DB
}

// NewGeofenceRepository creates a new geofence repository.
func NewGeofenceRepository(db *DB) domainGeofence.Repository {
	return &GeofenceRepository{db: db}
}

func (r *GeofenceRepository) Create(ctx context.Context, g *domainGeofence.Geofence) error {
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now
	if g.Color == "" {
		g.Color = domainGeofence.DefaultColor
	}

	dbModel, err := toGeofenceModel(g)
	if err != nil {
		return err
	}
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create geofence: %w", err)
	}

	g.ID = dbModel.ID
	return nil
}

func (r *GeofenceRepository) Upsert(ctx context.Context, g *domainGeofence.Geofence) (bool, error) {
	if g.ExternalID == nil {
		return false, fmt.Errorf("geofence upsert requires an external id")
	}

	created := false

	err := r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.GeofenceModel
		err := tx.Where("external_id = ?", *g.ExternalID).First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			now := time.Now()
			g.CreatedAt = now
			g.UpdatedAt = now
			if g.Color == "" {
				g.Color = domainGeofence.DefaultColor
			}
			dbModel, err := toGeofenceModel(g)
			if err != nil {
				return err
			}
			if err := tx.Create(dbModel).Error; err != nil {
				return fmt.Errorf("failed to create geofence: %w", err)
			}
			g.ID = dbModel.ID
			created = true
			return nil

		case err != nil:
			return fmt.Errorf("failed to look up geofence: %w", err)

		default:
			g.ID = existing.ID
			g.CreatedAt = existing.CreatedAt
			g.UpdatedAt = time.Now()
			if g.Color == "" {
				g.Color = existing.Color
			}
			dbModel, err := toGeofenceModel(g)
			if err != nil {
				return err
			}
			if err := tx.Save(dbModel).Error; err != nil {
				return fmt.Errorf("failed to update geofence: %w", err)
			}
			return nil
		}
	})

	return created, err
}

func (r *GeofenceRepository) GetByID(ctx context.Context, geofenceID int64) (*domainGeofence.Geofence, error) {
	var dbModel models.GeofenceModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", geofenceID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainGeofence.ErrGeofenceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get geofence: %w", err)
	}

	return toGeofenceEntity(&dbModel)
}

func (r *GeofenceRepository) List(ctx context.Context, activeOnly bool) ([]*domainGeofence.Geofence, error) {
	query := r.db.DB.WithContext(ctx).Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var dbModels []models.GeofenceModel
	if err := query.Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list geofences: %w", err)
	}

	geofences := make([]*domainGeofence.Geofence, 0, len(dbModels))
	for i := range dbModels {
		g, err := toGeofenceEntity(&dbModels[i])
		if err != nil {
			return nil, err
		}
		geofences = append(geofences, g)
	}
	return geofences, nil
}

func (r *GeofenceRepository) Update(ctx context.Context, g *domainGeofence.Geofence) error {
	g.UpdatedAt = time.Now()

	shape, err := json.Marshal(g.Shape)
	if err != nil {
		return fmt.Errorf("failed to encode geofence shape: %w", err)
	}

	result := r.db.DB.WithContext(ctx).
		Model(&models.GeofenceModel{}).
		Where("id = ?", g.ID).
		Updates(map[string]interface{}{
			"name":        g.Name,
			"shape_kind":  string(g.Shape.Kind),
			"shape":       shape,
			"color":       g.Color,
			"description": g.Description,
			"is_active":   g.IsActive,
			"updated_at":  g.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update geofence: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainGeofence.ErrGeofenceNotFound
	}
	return nil
}

func (r *GeofenceRepository) Delete(ctx context.Context, geofenceID int64) error {
	result := r.db.DB.WithContext(ctx).
		Where("id = ?", geofenceID).
		Delete(&models.GeofenceModel{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete geofence: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainGeofence.ErrGeofenceNotFound
	}
	return nil
}

func toGeofenceModel(g *domainGeofence.Geofence) (*models.GeofenceModel, error) {
	shape, err := json.Marshal(g.Shape)
	if err != nil {
		return nil, fmt.Errorf("failed to encode geofence shape: %w", err)
	}

	return &models.GeofenceModel{
		ID:          g.ID,
		ExternalID:  g.ExternalID,
		Name:        g.Name,
		ShapeKind:   string(g.Shape.Kind),
		Shape:       shape,
		Color:       g.Color,
		Description: g.Description,
		IsActive:    g.IsActive,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}, nil
}

func toGeofenceEntity(m *models.GeofenceModel) (*domainGeofence.Geofence, error) {
	var shape geo.Shape
	if err := json.Unmarshal(m.Shape, &shape); err != nil {
		return nil, fmt.Errorf("failed to decode geofence shape: %w", err)
	}

	return &domainGeofence.Geofence{
		ID:          m.ID,
		ExternalID:  m.ExternalID,
		Name:        m.Name,
		Shape:       shape,
		Color:       m.Color,
		Description: m.Description,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}
