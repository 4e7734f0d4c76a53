package geofence

import "errors"

var (
	ErrGeofenceNotFound = errors.New("geofence not found")
)
