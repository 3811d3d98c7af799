package handler

import (
	"net/http"
	"strconv"

	"hotel-service/internal/kpi"
	"hotel-service/internal/middleware"
	"hotel-service/pkg/logger"
	"hotel-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type KPIHandler struct {
	agg *kpi.Aggregator
}

func NewKPIHandler(agg *kpi.Aggregator) *KPIHandler {
	return &KPIHandler{agg: agg}
}

// Report returns revenue KPIs for a hotel over an inclusive date range.
// The hotel in the path must match the hotel in the caller's token.
func (h *KPIHandler) Report(c echo.Context) error {
	log := logger.FromContext(c)

	tokenHotelID, ok := middleware.GetHotelIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hotel context"})
	}

	pathHotelID, err := strconv.ParseUint(c.Param("hotelId"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hotel id"})
	}
	if uint(pathHotelID) != tokenHotelID {
		log.Warn("KPI request for foreign hotel rejected",
			zap.Uint("token_hotel_id", tokenHotelID),
			zap.Uint64("path_hotel_id", pathHotelID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access to this hotel is not allowed"})
	}

	startDate, ok := parseDate(c.QueryParam("startDate"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "startDate and endDate are required"})
	}
	endDate, ok := parseDate(c.QueryParam("endDate"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "startDate and endDate are required"})
	}

	report, err := h.agg.Compute(c.Request().Context(), tokenHotelID, startDate, endDate)
	if err != nil {
		switch err {
		case kpi.ErrMissingRange, kpi.ErrInvalidRange:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		log.Error("Failed to compute KPI report", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute KPI report"})
	}

	prometheus.KpiRequestsCounter.Inc()
	log.Info("KPI report computed",
		zap.Uint("hotel_id", tokenHotelID),
		zap.Time("start_date", startDate),
		zap.Time("end_date", endDate))
	return c.JSON(http.StatusOK, report.Display())
}
