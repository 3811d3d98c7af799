package pricing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/pricing/predict", r.URL.Path)

		var req PredictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Deluxe", req.RoomType)
		assert.Equal(t, "2026-03-01", req.CheckinDate)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(PredictResponse{
			Success:        true,
			PredictedPrice: 1450.50,
			Currency:       "INR",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zap.NewNop())
	out, err := client.Predict(context.Background(), PredictRequest{
		CheckinDate:  "2026-03-01",
		CheckoutDate: "2026-03-04",
		RoomType:     "Deluxe",
		NumRooms:     1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1450.50, out.PredictedPrice)
	assert.Equal(t, "INR", out.Currency)
}

func TestPredictServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 2*time.Second, zap.NewNop())
	_, err := client.Predict(context.Background(), PredictRequest{
		CheckinDate:  "2026-03-01",
		CheckoutDate: "2026-03-04",
		RoomType:     "Deluxe",
		NumRooms:     1,
	})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestPredictModelFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(PredictResponse{Success: false, Error: "model not loaded"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 2*time.Second, zap.NewNop())
	_, err := client.Predict(context.Background(), PredictRequest{
		CheckinDate:  "2026-03-01",
		CheckoutDate: "2026-03-04",
		RoomType:     "Deluxe",
		NumRooms:     1,
	})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "model not loaded")
}
