package availability

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hotel-service/internal/clock"
	"hotel-service/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service answers availability questions from reservations directly. It never
// consults the cached RoomUnit status, which is a display hint maintained by the
// reconciliation job.
type Service struct {
	db    *gorm.DB
	clock clock.Clock
	log   *zap.Logger
}

func NewService(db *gorm.DB, clk clock.Clock, log *zap.Logger) *Service {
	return &Service{db: db, clock: clk, log: log}
}

// Query identifies a hotel, a room type / rate plan, and a target stay window.
type Query struct {
	HotelID  uint
	RoomType string
	RateType string
	CheckIn  time.Time
	CheckOut time.Time
}

func (q Query) validate() error {
	if q.HotelID == 0 || q.RoomType == "" || q.RateType == "" || q.CheckIn.IsZero() || q.CheckOut.IsZero() {
		return ErrMissingField
	}
	if !q.CheckOut.After(q.CheckIn) {
		return ErrInvalidStay
	}
	return nil
}

// ResolveRoom looks up the single Room matching (hotelID, roomType, rateType).
func (s *Service) ResolveRoom(ctx context.Context, hotelID uint, roomType, rateType string) (*model.Room, error) {
	var room model.Room
	err := s.db.WithContext(ctx).
		Where("hotel_id = ? AND name = ? AND rate_type = ?", hotelID, roomType, rateType).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

// FreeUnits returns the room units of the resolved room with no reservation
// overlapping [CheckIn, CheckOut). Reservations without an assigned unit never
// block anything. Pure read; the result is a snapshot and concurrent bookings
// can invalidate it.
func (s *Service) FreeUnits(ctx context.Context, q Query) ([]model.RoomUnit, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	room, err := s.ResolveRoom(ctx, q.HotelID, q.RoomType, q.RateType)
	if err != nil {
		return nil, err
	}

	var units []model.RoomUnit
	if err := s.db.WithContext(ctx).Where("room_id = ?", room.ID).Find(&units).Error; err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return []model.RoomUnit{}, nil
	}

	unitIDs := make([]uint, 0, len(units))
	for _, u := range units {
		unitIDs = append(unitIDs, u.ID)
	}

	var occupied []uint
	err = s.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("hotel_id = ? AND room_unit_id IN ?", q.HotelID, unitIDs).
		Where("check_in < ? AND check_out > ?", q.CheckOut, q.CheckIn).
		Distinct().Pluck("room_unit_id", &occupied).Error
	if err != nil {
		return nil, err
	}

	occupiedSet := make(map[uint]struct{}, len(occupied))
	for _, id := range occupied {
		occupiedSet[id] = struct{}{}
	}

	free := make([]model.RoomUnit, 0, len(units))
	for _, u := range units {
		if _, ok := occupiedSet[u.ID]; !ok {
			free = append(free, u)
		}
	}
	return free, nil
}

// FreeUnitCount answers the numOfRooms use case.
func (s *Service) FreeUnitCount(ctx context.Context, q Query) (int, error) {
	free, err := s.FreeUnits(ctx, q)
	if err != nil {
		return 0, err
	}
	return len(free), nil
}

// FreeRoomNumbers answers the roomNumbers use case.
func (s *Service) FreeRoomNumbers(ctx context.Context, q Query) ([]string, error) {
	free, err := s.FreeUnits(ctx, q)
	if err != nil {
		return nil, err
	}
	numbers := make([]string, 0, len(free))
	for _, u := range free {
		numbers = append(numbers, u.RoomNumber)
	}
	return numbers, nil
}

// BookingInput carries everything needed to book one room unit for a stay.
type BookingInput struct {
	HotelID    uint
	RoomType   string
	RateType   string
	RoomNumber string
	GuestName  string
	Guests     int
	Rooms      int
	CheckIn    time.Time
	CheckOut   time.Time
	PerDayRate float64
}

// Book creates a reservation against a specific room unit. The overlap re-check
// and the insert run in a single serializable transaction, so two concurrent
// bookings for the last free unit cannot both succeed: the loser gets
// ErrUnitConflict and can retry with another unit.
func (s *Service) Book(ctx context.Context, in BookingInput) (*model.Reservation, error) {
	q := Query{HotelID: in.HotelID, RoomType: in.RoomType, RateType: in.RateType, CheckIn: in.CheckIn, CheckOut: in.CheckOut}
	if err := q.validate(); err != nil {
		return nil, err
	}
	if in.RoomNumber == "" {
		return nil, ErrMissingField
	}
	if in.Rooms <= 0 {
		in.Rooms = 1
	}

	room, err := s.ResolveRoom(ctx, in.HotelID, in.RoomType, in.RateType)
	if err != nil {
		return nil, err
	}

	var unit model.RoomUnit
	err = s.db.WithContext(ctx).
		Where("room_id = ? AND room_number = ?", room.ID, in.RoomNumber).
		First(&unit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}

	nights := StayNights(in.CheckIn, in.CheckOut)
	reservation := &model.Reservation{
		HotelID:     in.HotelID,
		RoomUnitID:  &unit.ID,
		RoomType:    in.RoomType,
		RateType:    in.RateType,
		GuestName:   in.GuestName,
		Guests:      in.Guests,
		CheckIn:     in.CheckIn,
		CheckOut:    in.CheckOut,
		Nights:      nights,
		Rooms:       in.Rooms,
		PerDayRate:  in.PerDayRate,
		TotalAmount: in.PerDayRate * float64(nights) * float64(in.Rooms),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var overlapping int64
		if err := tx.Model(&model.Reservation{}).
			Where("room_unit_id = ?", unit.ID).
			Where("check_in < ? AND check_out > ?", in.CheckOut, in.CheckIn).
			Count(&overlapping).Error; err != nil {
			return err
		}
		if overlapping > 0 {
			return ErrUnitConflict
		}

		var blocked int64
		if err := tx.Model(&model.MaintenanceBlock{}).
			Where("room_unit_id = ?", unit.ID).
			Where("start_at < ? AND release_at > ?", in.CheckOut, in.CheckIn).
			Count(&blocked).Error; err != nil {
			return err
		}
		if blocked > 0 {
			return ErrUnitUnavailable
		}

		if err := tx.Create(reservation).Error; err != nil {
			return err
		}

		// Refresh the cached hint early when the stay is already underway; the
		// reconciliation job would converge on the same value within a cycle.
		now := s.clock.Now()
		if !in.CheckIn.After(now) && in.CheckOut.After(now) {
			return tx.Model(&model.RoomUnit{}).
				Where("id = ? AND status <> ?", unit.ID, model.RoomUnitMaintenance).
				Update("status", model.RoomUnitBooked).Error
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}

	s.log.Info("Reservation booked",
		zap.Uint("hotel_id", in.HotelID),
		zap.Uint("room_unit_id", unit.ID),
		zap.String("room_number", unit.RoomNumber),
		zap.Int("nights", nights))
	return reservation, nil
}
