package trip

import (
	"context"

	"fleet-tracker/internal/polyline"
)

// Repository defines the interface for trip storage.
type Repository interface {
	// Upsert writes the trip keyed by its external interval id and reports
	// whether a new row was created. Upserts are full-record replaces:
	// last write wins across all synced fields.
	Upsert(ctx context.Context, t *Trip) (created bool, err error)

	// Create inserts a locally seeded trip without an external id.
	Create(ctx context.Context, t *Trip) error

	GetByID(ctx context.Context, tripID int64) (*Trip, error)
	List(ctx context.Context, filter *Filter) ([]*Trip, int64, error)
	Stats(ctx context.Context, filter *Filter) (*Stats, error)
	UpdateRoute(ctx context.Context, tripID int64, route []polyline.Point) error
}
