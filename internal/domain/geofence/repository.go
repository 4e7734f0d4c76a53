package geofence

import "context"

// Repository defines the interface for geofence storage.
type Repository interface {
	Create(ctx context.Context, g *Geofence) error

	// Upsert writes the geofence keyed by its external id and reports
	// whether a new row was created.
	Upsert(ctx context.Context, g *Geofence) (created bool, err error)

	GetByID(ctx context.Context, geofenceID int64) (*Geofence, error)
	List(ctx context.Context, activeOnly bool) ([]*Geofence, error)
	Update(ctx context.Context, g *Geofence) error

	// Delete soft-deletes the geofence.
	Delete(ctx context.Context, geofenceID int64) error
}
