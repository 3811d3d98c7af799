package handler

import (
	"net/http"
	"time"

	"hotel-service/internal/middleware"
	"hotel-service/internal/model"
	"hotel-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RoomRequest defines the structure for room type creation/update requests
type RoomRequest struct {
	Name      string  `json:"name"`
	RateType  string  `json:"rateType"`
	MaxGuests int     `json:"maxGuests"`
	BasePrice float64 `json:"basePrice"`
}

// RoomUnitRequest defines the structure for room unit creation requests
type RoomUnitRequest struct {
	RoomID     uint   `json:"roomId"`
	RoomNumber string `json:"roomNumber"`
	Floor      int    `json:"floor"`
}

type RoomHandler struct {
	db *gorm.DB
}

func NewRoomHandler(db *gorm.DB) *RoomHandler {
	return &RoomHandler{db: db}
}

// ListRooms returns all room type / rate plan combinations for the hotel
func (h *RoomHandler) ListRooms(c echo.Context) error {
	log := logger.FromContext(c)

	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	var rooms []model.Room
	result := h.db.Where("hotel_id = ?", hotelID).Find(&rooms)
	if result.Error != nil {
		log.Error("Failed to list rooms", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve rooms"})
	}

	return c.JSON(http.StatusOK, rooms)
}

// CreateRoom creates a room type / rate plan combination
func (h *RoomHandler) CreateRoom(c echo.Context) error {
	log := logger.FromContext(c)

	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	var req RoomRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" || req.RateType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and rateType are required"})
	}

	// (hotel, name, rateType) resolves to at most one row
	var count int64
	h.db.Model(&model.Room{}).
		Where("hotel_id = ? AND name = ? AND rate_type = ?", hotelID, req.Name, req.RateType).
		Count(&count)
	if count > 0 {
		log.Warn("Room with this type and rate already exists",
			zap.String("name", req.Name), zap.String("rate_type", req.RateType))
		return c.JSON(http.StatusConflict, echo.Map{"error": "room with this type and rate already exists"})
	}

	room := model.Room{
		HotelID:   hotelID,
		Name:      req.Name,
		RateType:  req.RateType,
		MaxGuests: req.MaxGuests,
		BasePrice: req.BasePrice,
	}
	if err := h.db.Create(&room).Error; err != nil {
		log.Error("Failed to create room", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create room"})
	}

	log.Info("Room created",
		zap.Uint("room_id", room.ID),
		zap.String("name", room.Name),
		zap.String("rate_type", room.RateType))
	return c.JSON(http.StatusCreated, room)
}

// UpdateRoom changes the mutable fields of a room type
func (h *RoomHandler) UpdateRoom(c echo.Context) error {
	log := logger.FromContext(c)

	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	var room model.Room
	if err := h.db.Where("hotel_id = ?", hotelID).First(&room, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	}

	var req RoomRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.MaxGuests > 0 {
		room.MaxGuests = req.MaxGuests
	}
	if req.BasePrice > 0 {
		room.BasePrice = req.BasePrice
	}

	if err := h.db.Save(&room).Error; err != nil {
		log.Error("Failed to update room", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update room"})
	}

	return c.JSON(http.StatusOK, room)
}

// DeleteRoom removes a room type and its units; reservations keep their history
func (h *RoomHandler) DeleteRoom(c echo.Context) error {
	log := logger.FromContext(c)

	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	var room model.Room
	if err := h.db.Where("hotel_id = ?", hotelID).First(&room, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", room.ID).Delete(&model.RoomUnit{}).Error; err != nil {
			return err
		}
		return tx.Delete(&room).Error
	})
	if err != nil {
		log.Error("Failed to delete room", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete room"})
	}

	log.Info("Room deleted", zap.Uint("room_id", room.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "room deleted"})
}

// roomCount is one row of the counts listing
type roomCount struct {
	RoomID      uint     `json:"roomId"`
	RoomType    string   `json:"roomType"`
	RateType    string   `json:"rateType"`
	TotalRooms  int      `json:"totalRooms"`
	RoomNumbers []string `json:"roomNumbers"`
}

// Counts returns, per room type, the unit total and room numbers. This is the
// listing surface backed by onboarded units, not a live availability check.
func (h *RoomHandler) Counts(c echo.Context) error {
	log := logger.FromContext(c)

	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	var rooms []model.Room
	if err := h.db.Where("hotel_id = ?", hotelID).Find(&rooms).Error; err != nil {
		log.Error("Failed to fetch rooms for counts", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve room counts"})
	}
	if len(rooms) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no rooms found for this hotel"})
	}

	var units []model.RoomUnit
	if err := h.db.Where("hotel_id = ?", hotelID).Find(&units).Error; err != nil {
		log.Error("Failed to fetch room units for counts", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve room counts"})
	}

	byRoom := make(map[uint][]string, len(rooms))
	for _, u := range units {
		byRoom[u.RoomID] = append(byRoom[u.RoomID], u.RoomNumber)
	}

	counts := make([]roomCount, 0, len(rooms))
	for _, r := range rooms {
		numbers := byRoom[r.ID]
		counts = append(counts, roomCount{
			RoomID:      r.ID,
			RoomType:    r.Name,
			RateType:    r.RateType,
			TotalRooms:  len(numbers),
			RoomNumbers: numbers,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"roomCounts": counts})
}

// ListUnits returns the hotel's room units; an optional status filter serves
// the fast list views fed by the reconciliation job's cached hint.
func (h *RoomHandler) ListUnits(c echo.Context) error {
	log := logger.FromContext(c)

	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	query := h.db.Where("hotel_id = ?", hotelID)
	if status := c.QueryParam("status"); status != "" {
		switch model.RoomUnitStatus(status) {
		case model.RoomUnitAvailable, model.RoomUnitBooked, model.RoomUnitMaintenance:
			query = query.Where("status = ?", status)
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room status filter"})
		}
	}

	var units []model.RoomUnit
	if err := query.Order("room_number").Find(&units).Error; err != nil {
		log.Error("Failed to list room units", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve room units"})
	}

	return c.JSON(http.StatusOK, units)
}

// CreateUnit onboards a physical room unit under a room type
func (h *RoomHandler) CreateUnit(c echo.Context) error {
	log := logger.FromContext(c)

	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	var req RoomUnitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.RoomID == 0 || req.RoomNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "roomId and roomNumber are required"})
	}

	var room model.Room
	if err := h.db.Where("hotel_id = ?", hotelID).First(&room, req.RoomID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	}

	unit := model.RoomUnit{
		RoomID:     room.ID,
		HotelID:    hotelID,
		RoomNumber: req.RoomNumber,
		Floor:      req.Floor,
		Status:     model.RoomUnitAvailable,
	}
	if err := h.db.Create(&unit).Error; err != nil {
		log.Error("Failed to create room unit", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create room unit"})
	}

	log.Info("Room unit created",
		zap.Uint("room_unit_id", unit.ID),
		zap.String("room_number", unit.RoomNumber))
	return c.JSON(http.StatusCreated, unit)
}

// DeleteUnit takes a room unit off the inventory. Units with upcoming
// reservations cannot be removed.
func (h *RoomHandler) DeleteUnit(c echo.Context) error {
	log := logger.FromContext(c)

	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	var unit model.RoomUnit
	if err := h.db.Where("hotel_id = ?", hotelID).First(&unit, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room unit not found"})
	}

	var upcoming int64
	h.db.Model(&model.Reservation{}).
		Where("room_unit_id = ? AND check_out > ?", unit.ID, time.Now()).
		Count(&upcoming)
	if upcoming > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "room unit has current or upcoming reservations"})
	}

	if err := h.db.Delete(&unit).Error; err != nil {
		log.Error("Failed to delete room unit", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete room unit"})
	}

	log.Info("Room unit deleted", zap.Uint("room_unit_id", unit.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "room unit deleted"})
}

// UpdateUnitStatus sets a unit's cached status by hand (housekeeping and
// front-desk corrections). The reconciliation job may overwrite
// AVAILABLE/BOOKED on its next run; MAINTENANCE it leaves alone.
func (h *RoomHandler) UpdateUnitStatus(c echo.Context) error {
	log := logger.FromContext(c)

	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	var req struct {
		Status model.RoomUnitStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	switch req.Status {
	case model.RoomUnitAvailable, model.RoomUnitBooked, model.RoomUnitMaintenance:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "invalid room status provided",
			"validStatuses": []model.RoomUnitStatus{
				model.RoomUnitAvailable, model.RoomUnitBooked, model.RoomUnitMaintenance,
			},
		})
	}

	var unit model.RoomUnit
	if err := h.db.Where("hotel_id = ?", hotelID).First(&unit, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room unit not found"})
	}

	if err := h.db.Model(&unit).Update("status", req.Status).Error; err != nil {
		log.Error("Failed to update room unit status", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update room status"})
	}

	log.Info("Room unit status updated",
		zap.Uint("room_unit_id", unit.ID),
		zap.String("status", string(req.Status)))
	return c.JSON(http.StatusOK, unit)
}
