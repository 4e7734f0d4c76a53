package trip

import "errors"

var (
	ErrTripNotFound = errors.New("trip not found")
	ErrNoExternalID = errors.New("trip has no external interval id")
)
