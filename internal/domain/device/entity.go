package device

import "time"

// FreshnessWindow is how recent a device's last message must be for the
// device to count as online.
const FreshnessWindow = 5 * time.Minute

// Device represents a GPS tracking device mirrored from the telematics
// platform. Devices are only ever created by sync or webhook processing,
// never by operator input.
type Device struct {
	ID              int64
	ExternalID      int64 // upstream device id, the upsert key
	Name            string
	Ident           *string
	DeviceTypeID    *int64
	CurrentDriverID *int64
	Status          Status
	LastLatitude    *float64
	LastLongitude   *float64
	LastSpeed       *float64
	LastMessageAt   *time.Time
	Telemetry       map[string]any
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Status is the derived online/offline state of a device.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// StatusAt derives online/offline from the last message time at the given
// instant. A message exactly FreshnessWindow old still counts as online.
// The current time is a parameter so that status can be re-derived at read
// time and pinned in tests.
func StatusAt(lastMessageAt *time.Time, now time.Time) Status {
	if lastMessageAt == nil {
		return StatusOffline
	}
	if lastMessageAt.Before(now.Add(-FreshnessWindow)) {
		return StatusOffline
	}
	return StatusOnline
}

// StatusAt re-derives the device's status at the given instant.
func (d *Device) StatusAt(now time.Time) Status {
	return StatusAt(d.LastMessageAt, now)
}

// HasLocation reports whether the device has ever reported a position.
func (d *Device) HasLocation() bool {
	return d.LastLatitude != nil && d.LastLongitude != nil
}
