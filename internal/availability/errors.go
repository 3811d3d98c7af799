package availability

import "errors"

var (
	ErrMissingField    = errors.New("missing required field")
	ErrInvalidStay     = errors.New("check-out date must be after check-in date")
	ErrRoomNotFound    = errors.New("no matching room for the given type and rate")
	ErrUnitNotFound    = errors.New("room unit not found")
	ErrUnitConflict    = errors.New("room unit already booked for this period")
	ErrUnitUnavailable = errors.New("room unit is out of service")
)
