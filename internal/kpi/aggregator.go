package kpi

import (
	"context"
	"errors"
	"time"

	"hotel-service/internal/model"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrMissingRange = errors.New("startDate and endDate are required")
	ErrInvalidRange = errors.New("endDate must not be before startDate")
)

// Aggregator computes the standard hospitality revenue metrics for a hotel and
// an inclusive calendar-day range. Read-only.
type Aggregator struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAggregator(db *gorm.DB, log *zap.Logger) *Aggregator {
	return &Aggregator{db: db, log: log}
}

// Report carries the raw, unrounded figures. Display() renders the 2-decimal
// form serialized to API consumers.
type Report struct {
	HotelID                  uint
	DaysInRange              int
	TotalRoomUnits           int64
	TotalAvailableRoomNights int64
	TotalOccupiedRoomNights  int64
	TotalRevenue             decimal.Decimal
	TotalDistributionCost    decimal.Decimal
	ADR                      decimal.Decimal
	OccupancyRate            decimal.Decimal
	RevPAR                   decimal.Decimal
	RevADR                   decimal.Decimal
}

// DisplayReport is the rounded view: money to 2 decimals, occupancy as a
// percentage string, raw totals carried alongside for further computation.
type DisplayReport struct {
	ADR                      string `json:"ADR"`
	RevPAR                   string `json:"RevPAR"`
	RevADR                   string `json:"RevADR"`
	OccupancyRate            string `json:"occupancyRate"`
	TotalRevenue             string `json:"totalRevenue"`
	TotalDistributionCost    string `json:"totalDistributionCost"`
	TotalAvailableRoomNights int64  `json:"totalAvailableRoomNights"`
	TotalOccupiedRoomNights  int64  `json:"totalOccupiedRoomNights"`
	DaysInRange              int    `json:"daysInRange"`
}

func (r *Report) Display() DisplayReport {
	return DisplayReport{
		ADR:                      r.ADR.StringFixed(2),
		RevPAR:                   r.RevPAR.StringFixed(2),
		RevADR:                   r.RevADR.StringFixed(2),
		OccupancyRate:            r.OccupancyRate.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%",
		TotalRevenue:             r.TotalRevenue.StringFixed(2),
		TotalDistributionCost:    r.TotalDistributionCost.StringFixed(2),
		TotalAvailableRoomNights: r.TotalAvailableRoomNights,
		TotalOccupiedRoomNights:  r.TotalOccupiedRoomNights,
		DaysInRange:              r.DaysInRange,
	}
}

// Compute aggregates reservations and commission expenses for the hotel.
// Reservation matching is deliberately looser than the booking overlap test:
// stays touching the range boundary count, since this is a reporting
// aggregate, not a blocking check.
func (a *Aggregator) Compute(ctx context.Context, hotelID uint, startDate, endDate time.Time) (*Report, error) {
	if hotelID == 0 || startDate.IsZero() || endDate.IsZero() {
		return nil, ErrMissingRange
	}

	startDay := midnight(startDate)
	endDay := midnight(endDate)
	if endDay.Before(startDay) {
		return nil, ErrInvalidRange
	}
	rangeStart := startDay
	rangeEnd := endDay.Add(24*time.Hour - time.Second)
	daysInRange := int(endDay.Sub(startDay).Hours()/24) + 1

	var totalUnits int64
	err := a.db.WithContext(ctx).Model(&model.RoomUnit{}).
		Where("hotel_id = ?", hotelID).Count(&totalUnits).Error
	if err != nil {
		return nil, err
	}

	var reservations []model.Reservation
	err = a.db.WithContext(ctx).
		Where("hotel_id = ? AND check_in <= ? AND check_out >= ?", hotelID, rangeEnd, rangeStart).
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}

	totalRevenue := decimal.Zero
	var occupiedNights int64
	for _, r := range reservations {
		roomNights := int64(r.Nights) * int64(r.Rooms)
		occupiedNights += roomNights
		totalRevenue = totalRevenue.Add(
			decimal.NewFromFloat(r.PerDayRate).Mul(decimal.NewFromInt(roomNights)))
	}

	distributionCost, err := a.distributionCost(ctx, hotelID, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}

	availableNights := totalUnits * int64(daysInRange)

	report := &Report{
		HotelID:                  hotelID,
		DaysInRange:              daysInRange,
		TotalRoomUnits:           totalUnits,
		TotalAvailableRoomNights: availableNights,
		TotalOccupiedRoomNights:  occupiedNights,
		TotalRevenue:             totalRevenue,
		TotalDistributionCost:    distributionCost,
		ADR:                      decimal.Zero,
		OccupancyRate:            decimal.Zero,
		RevPAR:                   decimal.Zero,
		RevADR:                   decimal.Zero,
	}

	if occupiedNights > 0 {
		report.ADR = totalRevenue.Div(decimal.NewFromInt(occupiedNights))
	}
	if availableNights > 0 {
		report.OccupancyRate = decimal.NewFromInt(occupiedNights).Div(decimal.NewFromInt(availableNights))
		report.RevADR = totalRevenue.Sub(distributionCost).Div(decimal.NewFromInt(availableNights))
	}
	report.RevPAR = report.ADR.Mul(report.OccupancyRate)

	a.log.Info("KPI report computed",
		zap.Uint("hotel_id", hotelID),
		zap.Int("days_in_range", daysInRange),
		zap.Int64("occupied_room_nights", occupiedNights),
		zap.Int64("available_room_nights", availableNights))
	return report, nil
}

// distributionCost sums expenses in range whose category name contains
// "commission", case-insensitively (OTA commissions and the like).
func (a *Aggregator) distributionCost(ctx context.Context, hotelID uint, from, to time.Time) (decimal.Decimal, error) {
	var expenses []model.Expense
	err := a.db.WithContext(ctx).Model(&model.Expense{}).
		Joins("JOIN expense_categories ON expense_categories.id = expenses.category_id").
		Where("expenses.hotel_id = ? AND expenses.date >= ? AND expenses.date <= ?", hotelID, from, to).
		Where("LOWER(expense_categories.name) LIKE ?", "%commission%").
		Where("expense_categories.deleted_at IS NULL").
		Find(&expenses).Error
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(decimal.NewFromFloat(e.Amount))
	}
	return total, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
