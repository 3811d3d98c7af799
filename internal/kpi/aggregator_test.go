package kpi

import (
	"context"
	"testing"
	"time"

	"hotel-service/internal/model"
	"hotel-service/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func seedUnits(t *testing.T, db *gorm.DB, hotelID uint, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, db.Create(&model.RoomUnit{
			RoomID: 1, HotelID: hotelID, RoomNumber: []string{"101", "102", "103"}[i],
		}).Error)
	}
}

func seedReservation(t *testing.T, db *gorm.DB, hotelID uint, checkIn, checkOut time.Time, nights, rooms int, rate float64) {
	t.Helper()
	require.NoError(t, db.Create(&model.Reservation{
		HotelID:    hotelID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Nights:     nights,
		Rooms:      rooms,
		PerDayRate: rate,
	}).Error)
}

func TestComputeRevenueMetrics(t *testing.T) {
	db := newTestDB(t)
	agg := NewAggregator(db, zap.NewNop())

	seedUnits(t, db, 1, 3)
	seedReservation(t, db, 1, day(1), day(3), 2, 1, 1000)

	report, err := agg.Compute(context.Background(), 1, day(1), day(2))
	require.NoError(t, err)

	assert.Equal(t, 2, report.DaysInRange)
	assert.EqualValues(t, 3, report.TotalRoomUnits)
	assert.EqualValues(t, 6, report.TotalAvailableRoomNights)
	assert.EqualValues(t, 2, report.TotalOccupiedRoomNights)

	out := report.Display()
	assert.Equal(t, "2000.00", out.TotalRevenue)
	assert.Equal(t, "1000.00", out.ADR)
	assert.Equal(t, "33.33%", out.OccupancyRate)
	assert.Equal(t, "333.33", out.RevPAR)
}

func TestComputeMultiRoomReservation(t *testing.T) {
	db := newTestDB(t)
	agg := NewAggregator(db, zap.NewNop())

	seedUnits(t, db, 1, 3)
	// 3 nights x 2 rooms at 500/night
	seedReservation(t, db, 1, day(1), day(4), 3, 2, 500)

	report, err := agg.Compute(context.Background(), 1, day(1), day(4))
	require.NoError(t, err)

	assert.EqualValues(t, 6, report.TotalOccupiedRoomNights)
	assert.Equal(t, "3000.00", report.Display().TotalRevenue)
	assert.Equal(t, "500.00", report.Display().ADR)
}

func TestComputeDistributionCost(t *testing.T) {
	db := newTestDB(t)
	agg := NewAggregator(db, zap.NewNop())

	seedUnits(t, db, 1, 3)
	seedReservation(t, db, 1, day(1), day(3), 2, 1, 1000)

	commission := model.ExpenseCategory{HotelID: 1, Name: "OTA Commission Fees"}
	utilities := model.ExpenseCategory{HotelID: 1, Name: "Utilities"}
	require.NoError(t, db.Create(&commission).Error)
	require.NoError(t, db.Create(&utilities).Error)

	require.NoError(t, db.Create(&model.Expense{HotelID: 1, CategoryID: commission.ID, Amount: 300, Date: day(1)}).Error)
	require.NoError(t, db.Create(&model.Expense{HotelID: 1, CategoryID: utilities.ID, Amount: 900, Date: day(1)}).Error)
	// outside the range, must not count
	require.NoError(t, db.Create(&model.Expense{HotelID: 1, CategoryID: commission.ID, Amount: 50, Date: day(20)}).Error)

	report, err := agg.Compute(context.Background(), 1, day(1), day(2))
	require.NoError(t, err)

	out := report.Display()
	assert.Equal(t, "300.00", out.TotalDistributionCost, "category match is on the name, case-insensitively")
	// (2000 - 300) / 6
	assert.Equal(t, "283.33", out.RevADR)
}

func TestComputeBoundaryTouchingStaysCount(t *testing.T) {
	db := newTestDB(t)
	agg := NewAggregator(db, zap.NewNop())

	seedUnits(t, db, 1, 3)
	// checkout lands exactly on the range start day
	seedReservation(t, db, 1, day(1), day(5), 4, 1, 800)

	report, err := agg.Compute(context.Background(), 1, day(5), day(6))
	require.NoError(t, err)
	assert.EqualValues(t, 4, report.TotalOccupiedRoomNights, "reporting counts boundary-touching stays")
}

func TestComputeZeroDenominators(t *testing.T) {
	db := newTestDB(t)
	agg := NewAggregator(db, zap.NewNop())

	// no units, no reservations
	report, err := agg.Compute(context.Background(), 1, day(1), day(5))
	require.NoError(t, err)

	out := report.Display()
	assert.Equal(t, "0.00", out.ADR)
	assert.Equal(t, "0.00%", out.OccupancyRate)
	assert.Equal(t, "0.00", out.RevPAR)
	assert.Equal(t, "0.00", out.RevADR)
}

func TestComputeRangeValidation(t *testing.T) {
	db := newTestDB(t)
	agg := NewAggregator(db, zap.NewNop())

	_, err := agg.Compute(context.Background(), 1, time.Time{}, day(5))
	assert.ErrorIs(t, err, ErrMissingRange)

	_, err = agg.Compute(context.Background(), 1, day(5), day(1))
	assert.ErrorIs(t, err, ErrInvalidRange)

	// same-day range is one day
	seedUnits(t, db, 1, 3)
	report, err := agg.Compute(context.Background(), 1, day(5), day(5))
	require.NoError(t, err)
	assert.Equal(t, 1, report.DaysInRange)
	assert.EqualValues(t, 3, report.TotalAvailableRoomNights)
}
