package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainDevice "fleet-tracker/internal/domain/device"
	domainDriver "fleet-tracker/internal/domain/driver"
	"fleet-tracker/internal/infrastructure/database/postgres/models"

	"gorm.io/gorm"
)

// DriverRepository implements the driver domain repository.
type DriverRepository struct {
	db *DB
}

// NewDriverRepository creates a new driver repository.
func NewDriverRepository(db *DB) domainDriver.Repository {
	return &DriverRepository{db: db}
}

func (r *DriverRepository) Create(ctx context.Context, d *domainDriver.Driver) error {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now

	dbModel := toDriverModel(d)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if isUniqueViolation(err) {
			return domainDriver.ErrRFIDCardInUse
		}
		return fmt.Errorf("failed to create driver: %w", err)
	}

	d.ID = dbModel.ID
	return nil
}

func (r *DriverRepository) GetByID(ctx context.Context, driverID int64) (*domainDriver.Driver, error) {
	var dbModel models.DriverModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", driverID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDriver.ErrDriverNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}

	return toDriverEntity(&dbModel), nil
}

func (r *DriverRepository) GetByRFIDCard(ctx context.Context, card string) (*domainDriver.Driver, error) {
	var dbModel models.DriverModel
	err := r.db.DB.WithContext(ctx).
		Where("rfid_card = ?", card).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDriver.ErrDriverNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get driver by card: %w", err)
	}

	return toDriverEntity(&dbModel), nil
}

func (r *DriverRepository) List(ctx context.Context, activeOnly bool) ([]*domainDriver.Driver, error) {
	query := r.db.DB.WithContext(ctx).Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var dbModels []models.DriverModel
	if err := query.Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}

	drivers := make([]*domainDriver.Driver, len(dbModels))
	for i := range dbModels {
		drivers[i] = toDriverEntity(&dbModels[i])
	}
	return drivers, nil
}

func (r *DriverRepository) Update(ctx context.Context, d *domainDriver.Driver) error {
	d.UpdatedAt = time.Now()

	result := r.db.DB.WithContext(ctx).
		Model(&models.DriverModel{}).
		Where("id = ?", d.ID).
		Updates(map[string]interface{}{
			"name":           d.Name,
			"phone":          d.Phone,
			"email":          d.Email,
			"license_number": d.LicenseNumber,
			"rfid_card":      d.RFIDCard,
			"notes":          d.Notes,
			"is_active":      d.IsActive,
			"updated_at":     d.UpdatedAt,
		})

	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainDriver.ErrRFIDCardInUse
		}
		return fmt.Errorf("failed to update driver: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDriver.ErrDriverNotFound
	}
	return nil
}

func (r *DriverRepository) Delete(ctx context.Context, driverID int64) error {
	result := r.db.DB.WithContext(ctx).
		Where("id = ?", driverID).
		Delete(&models.DriverModel{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete driver: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDriver.ErrDriverNotFound
	}
	return nil
}

// AssignmentRepository implements driver-device assignment storage.
type AssignmentRepository struct {
	db *DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *DB) domainDriver.AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Assign(ctx context.Context, deviceID, driverID int64, at time.Time) error {
	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Close any open assignment before opening the new one so at most
		// one assignment per device is ever open.
		err := tx.Model(&models.DriverAssignmentModel{}).
			Where("device_id = ? AND end_time IS NULL", deviceID).
			Updates(map[string]interface{}{
				"end_time":   at,
				"updated_at": at,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to close open assignment: %w", err)
		}

		assignment := &models.DriverAssignmentModel{
			DeviceID:  deviceID,
			DriverID:  driverID,
			StartTime: at,
			CreatedAt: at,
			UpdatedAt: at,
		}
		if err := tx.Create(assignment).Error; err != nil {
			return fmt.Errorf("failed to open assignment: %w", err)
		}

		result := tx.Model(&models.DeviceModel{}).
			Where("id = ?", deviceID).
			Updates(map[string]interface{}{
				"current_driver_id": driverID,
				"updated_at":        at,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update device driver: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domainDevice.ErrDeviceNotFound
		}
		return nil
	})
}

func (r *AssignmentRepository) Unassign(ctx context.Context, deviceID int64, at time.Time) error {
	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.DriverAssignmentModel{}).
			Where("device_id = ? AND end_time IS NULL", deviceID).
			Updates(map[string]interface{}{
				"end_time":   at,
				"updated_at": at,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to close assignment: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domainDriver.ErrNoOpenAssignment
		}

		err := tx.Model(&models.DeviceModel{}).
			Where("id = ?", deviceID).
			Updates(map[string]interface{}{
				"current_driver_id": nil,
				"updated_at":        at,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to clear device driver: %w", err)
		}
		return nil
	})
}

func (r *AssignmentRepository) CurrentForDevice(ctx context.Context, deviceID int64) (*domainDriver.Assignment, error) {
	var dbModel models.DriverAssignmentModel
	err := r.db.DB.WithContext(ctx).
		Where("device_id = ? AND end_time IS NULL", deviceID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDriver.ErrNoOpenAssignment
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current assignment: %w", err)
	}

	return toAssignmentEntity(&dbModel), nil
}

func (r *AssignmentRepository) ListByDevice(ctx context.Context, deviceID int64) ([]*domainDriver.Assignment, error) {
	return r.listAssignments(ctx, "device_id = ?", deviceID)
}

func (r *AssignmentRepository) ListByDriver(ctx context.Context, driverID int64) ([]*domainDriver.Assignment, error) {
	return r.listAssignments(ctx, "driver_id = ?", driverID)
}

func (r *AssignmentRepository) listAssignments(ctx context.Context, cond string, arg int64) ([]*domainDriver.Assignment, error) {
	var dbModels []models.DriverAssignmentModel
	err := r.db.DB.WithContext(ctx).
		Where(cond, arg).
		Order("start_time DESC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	assignments := make([]*domainDriver.Assignment, len(dbModels))
	for i := range dbModels {
		assignments[i] = toAssignmentEntity(&dbModels[i])
	}
	return assignments, nil
}

func toDriverModel(d *domainDriver.Driver) *models.DriverModel {
	return &models.DriverModel{
		ID:            d.ID,
		Name:          d.Name,
		Phone:         d.Phone,
		Email:         d.Email,
		LicenseNumber: d.LicenseNumber,
		RFIDCard:      d.RFIDCard,
		Notes:         d.Notes,
		IsActive:      d.IsActive,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func toDriverEntity(m *models.DriverModel) *domainDriver.Driver {
	return &domainDriver.Driver{
		ID:            m.ID,
		Name:          m.Name,
		Phone:         m.Phone,
		Email:         m.Email,
		LicenseNumber: m.LicenseNumber,
		RFIDCard:      m.RFIDCard,
		Notes:         m.Notes,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toAssignmentEntity(m *models.DriverAssignmentModel) *domainDriver.Assignment {
	return &domainDriver.Assignment{
		ID:        m.ID,
		DeviceID:  m.DeviceID,
		DriverID:  m.DriverID,
		StartTime: m.StartTime,
		EndTime:   m.EndTime,
		Notes:     m.Notes,
	}
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "23505")
}
