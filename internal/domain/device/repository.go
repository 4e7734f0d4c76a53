package device

import "context"

// Repository defines the interface for device storage.
type Repository interface {
	// Upsert writes the device keyed by its external id and reports whether
	// a new row was created. Fields managed by operators (current driver)
	// are left untouched on update.
	Upsert(ctx context.Context, d *Device) (created bool, err error)

	GetByID(ctx context.Context, deviceID int64) (*Device, error)
	GetByExternalID(ctx context.Context, externalID int64) (*Device, error)
	List(ctx context.Context) ([]*Device, error)
	SetCurrentDriver(ctx context.Context, deviceID int64, driverID *int64) error

	// Delete soft-deletes the device.
	Delete(ctx context.Context, deviceID int64) error
}
