package handler

import (
	"net/http"

	"hotel-service/internal/clock"
	"hotel-service/internal/middleware"
	"hotel-service/internal/model"
	"hotel-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MaintenanceRequest defines the structure for taking a room unit out of service
type MaintenanceRequest struct {
	StartAt   string `json:"startAt"`
	ReleaseAt string `json:"releaseAt"`
	Notes     string `json:"notes"`
}

type MaintenanceHandler struct {
	db    *gorm.DB
	clock clock.Clock
}

func NewMaintenanceHandler(db *gorm.DB, clk clock.Clock) *MaintenanceHandler {
	return &MaintenanceHandler{db: db, clock: clk}
}

// Create places a maintenance block on a room unit. The block is rejected when
// an assigned reservation overlaps it; release happens via the reconciliation
// job once ReleaseAt passes, so the block survives restarts.
func (h *MaintenanceHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	var req MaintenanceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.ReleaseAt == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "releaseAt is required"})
	}

	now := h.clock.Now()
	startAt := now
	if req.StartAt != "" {
		t, ok := parseDate(req.StartAt)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid startAt date"})
		}
		startAt = t
	}
	releaseAt, ok := parseDate(req.ReleaseAt)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid releaseAt date"})
	}
	if !releaseAt.After(startAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "releaseAt must be after startAt"})
	}

	var unit model.RoomUnit
	if err := h.db.Where("hotel_id = ?", hotelID).First(&unit, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room unit not found"})
	}

	// a unit with a guest in it cannot go out of service
	var conflicting int64
	h.db.Model(&model.Reservation{}).
		Where("room_unit_id = ?", unit.ID).
		Where("check_in < ? AND check_out > ?", releaseAt, startAt).
		Count(&conflicting)
	if conflicting > 0 {
		log.Warn("Maintenance block conflicts with reservations",
			zap.Uint("room_unit_id", unit.ID),
			zap.Int64("conflicting", conflicting))
		return c.JSON(http.StatusConflict, echo.Map{"error": "room unit has reservations during the maintenance window"})
	}

	block := model.MaintenanceBlock{
		HotelID:    hotelID,
		RoomUnitID: unit.ID,
		StartAt:    startAt,
		ReleaseAt:  releaseAt,
		Notes:      req.Notes,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&block).Error; err != nil {
			return err
		}
		if !startAt.After(now) {
			return tx.Model(&model.RoomUnit{}).
				Where("id = ?", unit.ID).
				Update("status", model.RoomUnitMaintenance).Error
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to create maintenance block", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create maintenance block"})
	}

	log.Info("Maintenance block created",
		zap.Uint("room_unit_id", unit.ID),
		zap.Time("release_at", releaseAt))
	return c.JSON(http.StatusCreated, block)
}

// List returns the hotel's active and upcoming maintenance blocks
func (h *MaintenanceHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	var blocks []model.MaintenanceBlock
	if err := h.db.Where("hotel_id = ?", hotelID).Order("release_at").Find(&blocks).Error; err != nil {
		log.Error("Failed to list maintenance blocks", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve maintenance blocks"})
	}

	return c.JSON(http.StatusOK, blocks)
}

// Delete releases a maintenance block early and restores the unit hint
func (h *MaintenanceHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)

	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	var block model.MaintenanceBlock
	if err := h.db.Where("hotel_id = ?", hotelID).First(&block, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "maintenance block not found"})
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&block).Error; err != nil {
			return err
		}
		var remaining int64
		if err := tx.Model(&model.MaintenanceBlock{}).
			Where("room_unit_id = ? AND release_at > ?", block.RoomUnitID, h.clock.Now()).
			Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			return tx.Model(&model.RoomUnit{}).
				Where("id = ? AND status = ?", block.RoomUnitID, model.RoomUnitMaintenance).
				Update("status", model.RoomUnitAvailable).Error
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to delete maintenance block", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete maintenance block"})
	}

	log.Info("Maintenance block released",
		zap.Uint("block_id", block.ID),
		zap.Uint("room_unit_id", block.RoomUnitID))
	return c.JSON(http.StatusOK, echo.Map{"message": "maintenance block released"})
}
