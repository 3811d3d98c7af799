package handler

import (
	"net/http"

	"hotel-service/internal/availability"
	"hotel-service/internal/middleware"
	"hotel-service/internal/model"
	"hotel-service/pkg/logger"
	"hotel-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReservationRequest defines the structure for reservation creation requests
type ReservationRequest struct {
	RoomType     string  `json:"roomType"`
	RateType     string  `json:"rateType"`
	RoomNumber   string  `json:"roomNumber"`
	GuestName    string  `json:"guestName"`
	Guests       int     `json:"numberOfGuests"`
	Rooms        int     `json:"numRooms"`
	CheckInDate  string  `json:"checkInDate"`
	CheckOutDate string  `json:"checkOutDate"`
	PerDayRate   float64 `json:"perDayRate"`
}

type ReservationHandler struct {
	db  *gorm.DB
	svc *availability.Service
}

func NewReservationHandler(db *gorm.DB, svc *availability.Service) *ReservationHandler {
	return &ReservationHandler{db: db, svc: svc}
}

// Create books a stay against a specific room unit. The availability re-check
// and the insert run in one transaction, so a concurrent booking for the same
// unit gets a retryable conflict instead of a silent double-booking.
func (h *ReservationHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	var req ReservationRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	checkIn, okIn := parseDate(req.CheckInDate)
	checkOut, okOut := parseDate(req.CheckOutDate)
	if !okIn || !okOut {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check-in or check-out date"})
	}

	reservation, err := h.svc.Book(c.Request().Context(), availability.BookingInput{
		HotelID:    hotelID,
		RoomType:   req.RoomType,
		RateType:   req.RateType,
		RoomNumber: req.RoomNumber,
		GuestName:  req.GuestName,
		Guests:     req.Guests,
		Rooms:      req.Rooms,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		PerDayRate: req.PerDayRate,
	})
	if err != nil {
		prometheus.RecordBookingOperation("rejected")
		log.Warn("Booking rejected", zap.Error(err))
		return availabilityError(c, err)
	}

	prometheus.RecordBookingOperation("created")
	log.Info("Reservation created",
		zap.Uint("reservation_id", reservation.ID),
		zap.String("room_number", req.RoomNumber),
		zap.Int("nights", reservation.Nights))
	return c.JSON(http.StatusCreated, reservation)
}

// List returns the hotel's reservations, newest first
func (h *ReservationHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	var reservations []model.Reservation
	result := h.db.Where("hotel_id = ?", hotelID).Order("check_in desc").Find(&reservations)
	if result.Error != nil {
		log.Error("Failed to list reservations", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve reservations"})
	}

	return c.JSON(http.StatusOK, reservations)
}

// Get returns a single reservation by ID
func (h *ReservationHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)

	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	var reservation model.Reservation
	result := h.db.Where("hotel_id = ?", hotelID).First(&reservation, c.Param("id"))
	if result.Error != nil {
		log.Warn("Reservation not found", zap.String("reservation_id", c.Param("id")))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}

	return c.JSON(http.StatusOK, reservation)
}

// Delete cancels a reservation and releases its unit's cached status; the
// reconciliation job would converge on the same value a cycle later.
func (h *ReservationHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)

	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	var reservation model.Reservation
	result := h.db.Where("hotel_id = ?", hotelID).First(&reservation, c.Param("id"))
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}

	if err := h.db.Delete(&reservation).Error; err != nil {
		log.Error("Failed to delete reservation", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete reservation"})
	}

	if reservation.RoomUnitID != nil {
		err := h.db.Model(&model.RoomUnit{}).
			Where("id = ? AND status = ?", *reservation.RoomUnitID, model.RoomUnitBooked).
			Update("status", model.RoomUnitAvailable).Error
		if err != nil {
			log.Warn("Failed to release room unit status", zap.Error(err))
		}
	}

	log.Info("Reservation deleted", zap.Uint("reservation_id", reservation.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation deleted successfully"})
}
