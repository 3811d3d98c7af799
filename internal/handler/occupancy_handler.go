package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"hotel-service/internal/clock"
	"hotel-service/internal/middleware"
	"hotel-service/internal/model"
	"hotel-service/internal/reconcile"
	"hotel-service/pkg/cache"
	"hotel-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OccupancyHandler serves the per-hotel occupancy summary. It prefers the
// snapshot the reconciliation job publishes to the cache and falls back to
// counting units directly when the cache is cold or disabled.
type OccupancyHandler struct {
	db    *gorm.DB
	kv    cache.KV
	clock clock.Clock
}

func NewOccupancyHandler(db *gorm.DB, kv cache.KV, clk clock.Clock) *OccupancyHandler {
	return &OccupancyHandler{db: db, kv: kv, clock: clk}
}

func (h *OccupancyHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)

	hotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	if h.kv != nil {
		raw, err := h.kv.Get(c.Request().Context(), reconcile.SnapshotKey(hotelID))
		if err == nil {
			var snap reconcile.OccupancySnapshot
			if jsonErr := json.Unmarshal([]byte(raw), &snap); jsonErr == nil {
				return c.JSON(http.StatusOK, snap)
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			log.Warn("Occupancy snapshot cache read failed", zap.Error(err))
		}
	}

	snap := reconcile.OccupancySnapshot{HotelID: hotelID, AsOf: h.clock.Now()}
	if err := h.db.Model(&model.RoomUnit{}).
		Where("hotel_id = ?", hotelID).
		Count(&snap.TotalUnits).Error; err != nil {
		log.Error("Failed to count room units", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute occupancy"})
	}
	if err := h.db.Model(&model.RoomUnit{}).
		Where("hotel_id = ? AND status = ?", hotelID, model.RoomUnitBooked).
		Count(&snap.BookedUnits).Error; err != nil {
		log.Error("Failed to count booked units", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute occupancy"})
	}

	return c.JSON(http.StatusOK, snap)
}
