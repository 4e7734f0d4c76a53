package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domainDevice "fleet-tracker/internal/domain/device"
	"fleet-tracker/internal/infrastructure/database/postgres/models"

	"gorm.io/gorm"
)

// DeviceRepository implements the device domain repository.
type DeviceRepository struct {
	db *DB
}

// NewDeviceRepository creates a new device repository.
func NewDeviceRepository(db *DB) domainDevice.Repository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) Upsert(ctx context.Context, d *domainDevice.Device) (bool, error) {
	created := false

	err := r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.DeviceModel
		err := tx.Where("external_id = ?", d.ExternalID).First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			now := time.Now()
			d.CreatedAt = now
			d.UpdatedAt = now
			dbModel := toDeviceModel(d)
			if err := tx.Create(dbModel).Error; err != nil {
				return fmt.Errorf("failed to create device: %w", err)
			}
			d.ID = dbModel.ID
			created = true
			return nil

		case err != nil:
			return fmt.Errorf("failed to look up device: %w", err)

		default:
			d.ID = existing.ID
			d.UpdatedAt = time.Now()
			// Operator-managed fields (current driver) are deliberately
			// absent: sync must not clobber them.
			updates := map[string]interface{}{
				"name":            d.Name,
				"ident":           d.Ident,
				"device_type_id":  d.DeviceTypeID,
				"status":          string(d.Status),
				"last_latitude":   d.LastLatitude,
				"last_longitude":  d.LastLongitude,
				"last_speed":      d.LastSpeed,
				"last_message_at": d.LastMessageAt,
				"telemetry":       marshalJSON(d.Telemetry),
				"updated_at":      d.UpdatedAt,
			}
			if err := tx.Model(&models.DeviceModel{}).
				Where("id = ?", existing.ID).
				Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update device: %w", err)
			}
			d.CurrentDriverID = existing.CurrentDriverID
			return nil
		}
	})

	return created, err
}

func (r *DeviceRepository) GetByID(ctx context.Context, deviceID int64) (*domainDevice.Device, error) {
	var dbModel models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", deviceID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDevice.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return toDeviceEntity(&dbModel), nil
}

func (r *DeviceRepository) GetByExternalID(ctx context.Context, externalID int64) (*domainDevice.Device, error) {
	var dbModel models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDevice.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return toDeviceEntity(&dbModel), nil
}

func (r *DeviceRepository) List(ctx context.Context) ([]*domainDevice.Device, error) {
	var dbModels []models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Order("name ASC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	devices := make([]*domainDevice.Device, len(dbModels))
	for i := range dbModels {
		devices[i] = toDeviceEntity(&dbModels[i])
	}
	return devices, nil
}

func (r *DeviceRepository) SetCurrentDriver(ctx context.Context, deviceID int64, driverID *int64) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", deviceID).
		Updates(map[string]interface{}{
			"current_driver_id": driverID,
			"updated_at":        time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to set current driver: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDevice.ErrDeviceNotFound
	}
	return nil
}

func (r *DeviceRepository) Delete(ctx context.Context, deviceID int64) error {
	result := r.db.DB.WithContext(ctx).
		Where("id = ?", deviceID).
		Delete(&models.DeviceModel{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDevice.ErrDeviceNotFound
	}
	return nil
}

// Helper functions to convert between domain entities and database models

func toDeviceModel(d *domainDevice.Device) *models.DeviceModel {
	return &models.DeviceModel{
		ID:              d.ID,
		ExternalID:      d.ExternalID,
		Name:            d.Name,
		Ident:           d.Ident,
		DeviceTypeID:    d.DeviceTypeID,
		CurrentDriverID: d.CurrentDriverID,
		Status:          string(d.Status),
		LastLatitude:    d.LastLatitude,
		LastLongitude:   d.LastLongitude,
		LastSpeed:       d.LastSpeed,
		LastMessageAt:   d.LastMessageAt,
		Telemetry:       marshalJSON(d.Telemetry),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func toDeviceEntity(m *models.DeviceModel) *domainDevice.Device {
	return &domainDevice.Device{
		ID:              m.ID,
		ExternalID:      m.ExternalID,
		Name:            m.Name,
		Ident:           m.Ident,
		DeviceTypeID:    m.DeviceTypeID,
		CurrentDriverID: m.CurrentDriverID,
		Status:          domainDevice.Status(m.Status),
		LastLatitude:    m.LastLatitude,
		LastLongitude:   m.LastLongitude,
		LastSpeed:       m.LastSpeed,
		LastMessageAt:   m.LastMessageAt,
		Telemetry:       unmarshalJSON(m.Telemetry),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func marshalJSON(v map[string]any) []byte {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

func unmarshalJSON(data []byte) map[string]any {
	if len(data) == 0 {
		return nil
	}
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	return v
}
