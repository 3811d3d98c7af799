package handler

import (
	"errors"
	"net/http"
	"time"

	"hotel-service/internal/availability"

	"github.com/labstack/echo/v4"
)

// availabilityError maps engine errors to HTTP responses: bad input shape,
// missing entity, and booking conflicts are distinguishable to callers.
func availabilityError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, availability.ErrMissingField), errors.Is(err, availability.ErrInvalidStay):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, availability.ErrRoomNotFound), errors.Is(err, availability.ErrUnitNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, availability.ErrUnitConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "retryable": true})
	case errors.Is(err, availability.ErrUnitUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}

const dateLayout = "2006-01-02"

// parseDate accepts a plain calendar date or a full RFC3339 timestamp.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
