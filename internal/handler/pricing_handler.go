package handler

import (
	"errors"
	"net/http"

	"hotel-service/internal/pricing"
	"hotel-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PricingRequest defines the structure for rate suggestion requests
type PricingRequest struct {
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
	RoomType     string `json:"roomType"`
	RateType     string `json:"rateType"`
	NumRooms     int    `json:"numRooms"`
}

type PricingHandler struct {
	client *pricing.Client
}

func NewPricingHandler(client *pricing.Client) *PricingHandler {
	return &PricingHandler{client: client}
}

// Predict proxies a rate suggestion request to the dynamic-pricing service
func (h *PricingHandler) Predict(c echo.Context) error {
	log := logger.FromContext(c)

	var req PricingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.CheckInDate == "" || req.CheckOutDate == "" || req.RoomType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "checkInDate, checkOutDate and roomType are required"})
	}
	if req.NumRooms <= 0 {
		req.NumRooms = 1
	}

	out, err := h.client.Predict(c.Request().Context(), pricing.PredictRequest{
		CheckinDate:  req.CheckInDate,
		CheckoutDate: req.CheckOutDate,
		RoomType:     req.RoomType,
		RateType:     req.RateType,
		NumRooms:     req.NumRooms,
	})
	if err != nil {
		if errors.Is(err, pricing.ErrUnavailable) {
			log.Warn("Rate suggestion unavailable", zap.Error(err))
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "pricing service unavailable"})
		}
		log.Error("Rate suggestion failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get rate suggestion"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"predictedPrice": out.PredictedPrice,
		"currency":       out.Currency,
	})
}
