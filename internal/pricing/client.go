package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var ErrUnavailable = errors.New("pricing service unavailable")

// PredictRequest mirrors the dynamic-pricing service's request body.
type PredictRequest struct {
	CheckinDate  string `json:"checkin_date"`
	CheckoutDate string `json:"checkout_date"`
	RoomType     string `json:"room_type"`
	RateType     string `json:"rate_type,omitempty"`
	NumRooms     int    `json:"num_rooms"`
}

// PredictResponse is the suggested rate returned by the pricing service.
type PredictResponse struct {
	Success        bool    `json:"success"`
	PredictedPrice float64 `json:"predicted_price"`
	Currency       string  `json:"currency,omitempty"`
	Error          string  `json:"error,omitempty"`
}

// Client calls the external dynamic-pricing service.
type Client struct {
	http *resty.Client
	log  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: client, log: log}
}

// Predict requests a rate suggestion for a stay. Failures surface as
// ErrUnavailable; the caller decides whether to fall back to the base price.
func (c *Client) Predict(ctx context.Context, req PredictRequest) (*PredictResponse, error) {
	c.log.Info("Requesting rate prediction",
		zap.String("room_type", req.RoomType),
		zap.String("checkin_date", req.CheckinDate),
		zap.String("checkout_date", req.CheckoutDate),
		zap.Int("num_rooms", req.NumRooms))

	var out PredictResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/pricing/predict")
	if err != nil {
		c.log.Error("Pricing service call failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		c.log.Error("Pricing service returned error status",
			zap.Int("status_code", resp.StatusCode()))
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}
	if !out.Success {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, out.Error)
	}
	return &out, nil
}
