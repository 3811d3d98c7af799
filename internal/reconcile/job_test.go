package reconcile

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"hotel-service/internal/clock"
	"hotel-service/internal/model"
	"hotel-service/pkg/cache"
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

func at(d, hour int) time.Time {
	return time.Date(2026, 3, d, hour, 0, 0, 0, time.UTC)
}

func seedUnit(t *testing.T, db *gorm.DB, hotelID uint, number string, status model.RoomUnitStatus) model.RoomUnit {
	t.Helper()
	u := model.RoomUnit{RoomID: 1, HotelID: hotelID, RoomNumber: number, Status: status}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedStay(t *testing.T, db *gorm.DB, hotelID uint, unitID *uint, checkIn, checkOut time.Time) {
	t.Helper()
	r := model.Reservation{
		HotelID:    hotelID,
		RoomUnitID: unitID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Nights:     1,
		Rooms:      1,
	}
	require.NoError(t, db.Create(&r).Error)
}

func unitStatus(t *testing.T, db *gorm.DB, id uint) model.RoomUnitStatus {
	t.Helper()
	var u model.RoomUnit
	require.NoError(t, db.First(&u, id).Error)
	return u.Status
}

// memKV is an in-process stand-in for the redis cache.
type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (m *memKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func TestRunOnceMarksAndReleasesUnits(t *testing.T) {
	db := newTestDB(t)
	now := at(10, 12)
	job := NewJob(db, clock.NewFixed(now), zap.NewNop(), nil)

	occupied := seedUnit(t, db, 1, "101", model.RoomUnitAvailable)
	vacated := seedUnit(t, db, 1, "102", model.RoomUnitBooked)
	idle := seedUnit(t, db, 1, "103", model.RoomUnitAvailable)

	seedStay(t, db, 1, &occupied.ID, day(9), day(12)) // underway
	seedStay(t, db, 1, &vacated.ID, day(5), day(8))   // ended
	seedStay(t, db, 1, nil, day(9), day(12))          // unassigned, ignored

	require.NoError(t, job.RunOnce(context.Background()))

	assert.Equal(t, model.RoomUnitBooked, unitStatus(t, db, occupied.ID))
	assert.Equal(t, model.RoomUnitAvailable, unitStatus(t, db, vacated.ID))
	assert.Equal(t, model.RoomUnitAvailable, unitStatus(t, db, idle.ID))
}

func TestRunOnceBoundarySemantics(t *testing.T) {
	db := newTestDB(t)
	now := day(10)
	job := NewJob(db, clock.NewFixed(now), zap.NewNop(), nil)

	checkingIn := seedUnit(t, db, 1, "101", model.RoomUnitAvailable)
	checkingOut := seedUnit(t, db, 1, "102", model.RoomUnitBooked)

	seedStay(t, db, 1, &checkingIn.ID, day(10), day(12)) // check_in == now counts
	seedStay(t, db, 1, &checkingOut.ID, day(8), day(10)) // check_out == now does not

	require.NoError(t, job.RunOnce(context.Background()))

	assert.Equal(t, model.RoomUnitBooked, unitStatus(t, db, checkingIn.ID))
	assert.Equal(t, model.RoomUnitAvailable, unitStatus(t, db, checkingOut.ID))
}

func TestRunOnceIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	now := at(10, 12)
	job := NewJob(db, clock.NewFixed(now), zap.NewNop(), nil)

	occupied := seedUnit(t, db, 1, "101", model.RoomUnitAvailable)
	vacated := seedUnit(t, db, 1, "102", model.RoomUnitBooked)
	seedStay(t, db, 1, &occupied.ID, day(9), day(12))

	require.NoError(t, job.RunOnce(context.Background()))

	var first []model.RoomUnit
	require.NoError(t, db.Order("id").Find(&first).Error)

	require.NoError(t, job.RunOnce(context.Background()))
	require.NoError(t, job.RunOnce(context.Background()))

	var after []model.RoomUnit
	require.NoError(t, db.Order("id").Find(&after).Error)

	require.Len(t, after, len(first))
	for i := range first {
		assert.Equal(t, first[i].Status, after[i].Status)
	}
	assert.Equal(t, model.RoomUnitAvailable, unitStatus(t, db, vacated.ID))
}

func TestRunOnceNeverTouchesMaintenance(t *testing.T) {
	db := newTestDB(t)
	now := at(10, 12)
	job := NewJob(db, clock.NewFixed(now), zap.NewNop(), nil)

	underRepair := seedUnit(t, db, 1, "101", model.RoomUnitMaintenance)

	// a reservation underway on a MAINTENANCE unit must not flip it
	seedStay(t, db, 1, &underRepair.ID, day(9), day(12))

	require.NoError(t, job.RunOnce(context.Background()))
	assert.Equal(t, model.RoomUnitMaintenance, unitStatus(t, db, underRepair.ID))

	// and with no reservation it must not be released either
	require.NoError(t, db.Where("1 = 1").Delete(&model.Reservation{}).Error)
	require.NoError(t, job.RunOnce(context.Background()))
	assert.Equal(t, model.RoomUnitMaintenance, unitStatus(t, db, underRepair.ID))
}

func TestRunOnceReleasesExpiredMaintenanceBlocks(t *testing.T) {
	db := newTestDB(t)
	now := at(10, 12)
	job := NewJob(db, clock.NewFixed(now), zap.NewNop(), nil)

	expired := seedUnit(t, db, 1, "101", model.RoomUnitMaintenance)
	active := seedUnit(t, db, 1, "102", model.RoomUnitMaintenance)
	manual := seedUnit(t, db, 1, "103", model.RoomUnitMaintenance)

	require.NoError(t, db.Create(&model.MaintenanceBlock{
		HotelID: 1, RoomUnitID: expired.ID, StartAt: day(5), ReleaseAt: day(8),
	}).Error)
	require.NoError(t, db.Create(&model.MaintenanceBlock{
		HotelID: 1, RoomUnitID: active.ID, StartAt: day(5), ReleaseAt: day(15),
	}).Error)
	// "manual" has no block at all

	require.NoError(t, job.RunOnce(context.Background()))

	assert.Equal(t, model.RoomUnitAvailable, unitStatus(t, db, expired.ID))
	assert.Equal(t, model.RoomUnitMaintenance, unitStatus(t, db, active.ID))
	assert.Equal(t, model.RoomUnitMaintenance, unitStatus(t, db, manual.ID))

	// the spent block is gone, the active one stays
	var blocks int64
	require.NoError(t, db.Model(&model.MaintenanceBlock{}).Count(&blocks).Error)
	assert.EqualValues(t, 1, blocks)
}

func TestRunOncePublishesOccupancySnapshots(t *testing.T) {
	db := newTestDB(t)
	now := at(10, 12)
	kv := newMemKV()
	job := NewJob(db, clock.NewFixed(now), zap.NewNop(), kv)

	occupied := seedUnit(t, db, 7, "101", model.RoomUnitAvailable)
	seedUnit(t, db, 7, "102", model.RoomUnitAvailable)
	seedStay(t, db, 7, &occupied.ID, day(9), day(12))

	require.NoError(t, job.RunOnce(context.Background()))

	raw, err := kv.Get(context.Background(), SnapshotKey(7))
	require.NoError(t, err)

	var snap OccupancySnapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))
	assert.EqualValues(t, 7, snap.HotelID)
	assert.EqualValues(t, 2, snap.TotalUnits)
	assert.EqualValues(t, 1, snap.BookedUnits)
	assert.True(t, snap.AsOf.Equal(now))
}
