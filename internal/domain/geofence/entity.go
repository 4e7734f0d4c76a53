package geofence

import (
	"time"

	"fleet-tracker/internal/geo"
)

const DefaultColor = "#3B82F6"

// Geofence is a named circle or polygon region. Geofences are either created
// locally and mirrored upstream, or synced down from the platform; in both
// cases the upstream id is the reconciliation key.
type Geofence struct {
	ID          int64
	ExternalID  *int64 // unique when present
	Name        string
	Shape       geo.Shape
	Color       string
	Description *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Contains reports whether the geofence covers the given point.
func (g *Geofence) Contains(p geo.Point) bool {
	return g.Shape.Contains(p)
}

// Containing filters candidates down to those covering the point.
func Containing(p geo.Point, candidates []*Geofence) []*Geofence {
	matches := []*Geofence{}
	for _, g := range candidates {
		if g.Contains(p) {
			matches = append(matches, g)
		}
	}
	return matches
}
