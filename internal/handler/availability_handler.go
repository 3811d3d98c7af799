package handler

import (
	"net/http"

	"hotel-service/internal/availability"
	"hotel-service/internal/middleware"
	"hotel-service/pkg/logger"
	"hotel-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AvailabilityHandler exposes the live availability query. Results always come
// from the overlap computation over reservations, never from the cached unit
// status.
type AvailabilityHandler struct {
	svc *availability.Service
}

func NewAvailabilityHandler(svc *availability.Service) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

func (h *AvailabilityHandler) query(c echo.Context) (availability.Query, error) {
	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return availability.Query{}, echo.NewHTTPError(http.StatusBadRequest, "missing hotel context")
	}

	roomType := c.QueryParam("roomType")
	rateType := c.QueryParam("rateType")
	checkInStr := c.QueryParam("checkIn")
	if checkInStr == "" {
		checkInStr = c.QueryParam("checkInDate")
	}
	checkOutStr := c.QueryParam("checkOut")
	if checkOutStr == "" {
		checkOutStr = c.QueryParam("checkOutDate")
	}

	if roomType == "" || rateType == "" || checkInStr == "" || checkOutStr == "" {
		return availability.Query{}, echo.NewHTTPError(http.StatusBadRequest,
			"missing roomType, rateType, checkIn or checkOut in query params")
	}

	checkIn, ok := parseDate(checkInStr)
	if !ok {
		return availability.Query{}, echo.NewHTTPError(http.StatusBadRequest, "invalid checkIn date")
	}
	checkOut, ok := parseDate(checkOutStr)
	if !ok {
		return availability.Query{}, echo.NewHTTPError(http.StatusBadRequest, "invalid checkOut date")
	}

	return availability.Query{
		HotelID:  hotelID,
		RoomType: roomType,
		RateType: rateType,
		CheckIn:  checkIn,
		CheckOut: checkOut,
	}, nil
}

// NumOfRooms handles the count use case for building a reservation
func (h *AvailabilityHandler) NumOfRooms(c echo.Context) error {
	log := logger.FromContext(c)

	q, err := h.query(c)
	if err != nil {
		return err
	}

	count, err := h.svc.FreeUnitCount(c.Request().Context(), q)
	if err != nil {
		log.Error("Availability count failed", zap.Error(err))
		return availabilityError(c, err)
	}

	prometheus.RecordAvailabilityQuery("count")
	log.Info("Availability count computed",
		zap.String("room_type", q.RoomType),
		zap.String("rate_type", q.RateType),
		zap.Int("num_of_rooms", count))
	return c.JSON(http.StatusOK, echo.Map{"numOfRooms": count})
}

// RoomNumbers handles the room-number list use case
func (h *AvailabilityHandler) RoomNumbers(c echo.Context) error {
	log := logger.FromContext(c)

	q, err := h.query(c)
	if err != nil {
		return err
	}

	numbers, err := h.svc.FreeRoomNumbers(c.Request().Context(), q)
	if err != nil {
		log.Error("Availability room-number query failed", zap.Error(err))
		return availabilityError(c, err)
	}

	prometheus.RecordAvailabilityQuery("room_numbers")
	return c.JSON(http.StatusOK, echo.Map{"roomNumbers": numbers})
}
