package driver

import "errors"

var (
	ErrDriverNotFound  = errors.New("driver not found")
	ErrRFIDCardInUse   = errors.New("RFID card is already registered to another driver")
	ErrNoOpenAssignment = errors.New("device has no open assignment")
)
