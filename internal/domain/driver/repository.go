package driver

import (
	"context"
	"time"
)

// Repository defines the interface for driver storage.
type Repository interface {
	Create(ctx context.Context, d *Driver) error
	GetByID(ctx context.Context, driverID int64) (*Driver, error)
	GetByRFIDCard(ctx context.Context, card string) (*Driver, error)
	List(ctx context.Context, activeOnly bool) ([]*Driver, error)
	Update(ctx context.Context, d *Driver) error

	// Delete soft-deletes the driver.
	Delete(ctx context.Context, driverID int64) error
}

// AssignmentRepository manages driver-device assignments. Assign and
// Unassign also maintain the device's current-driver pointer; both run the
// close-then-open sequence inside one transaction.
type AssignmentRepository interface {
	Assign(ctx context.Context, deviceID, driverID int64, at time.Time) error
	Unassign(ctx context.Context, deviceID int64, at time.Time) error
	CurrentForDevice(ctx context.Context, deviceID int64) (*Assignment, error)
	ListByDevice(ctx context.Context, deviceID int64) ([]*Assignment, error)
	ListByDriver(ctx context.Context, driverID int64) ([]*Assignment, error)
}
