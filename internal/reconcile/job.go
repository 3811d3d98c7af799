package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hotel-service/internal/clock"
	"hotel-service/internal/model"
	"hotel-service/pkg/cache"
	metrics "hotel-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultRunTimeout = 30 * time.Second
	snapshotTTL       = 5 * time.Minute
)

// Job recomputes the cached status of every room unit from the reservations
// that are underway right now. The cached flag only feeds list/filter views;
// the live availability path never reads it. Each run is a short, idempotent
// bulk operation, so an overlapping or repeated run changes nothing.
type Job struct {
	db      *gorm.DB
	clock   clock.Clock
	log     *zap.Logger
	kv      cache.KV
	timeout time.Duration
}

// NewJob builds a reconciliation job. kv may be nil; snapshot publishing is
// then skipped.
func NewJob(db *gorm.DB, clk clock.Clock, log *zap.Logger, kv cache.KV) *Job {
	return &Job{db: db, clock: clk, log: log, kv: kv, timeout: defaultRunTimeout}
}

// Start runs the job on a fixed interval until ctx is cancelled. A failed run
// is logged and skipped; the next tick retries.
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.log.Info("Room status reconciliation started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			j.log.Info("Room status reconciliation stopped")
			return
		case <-ticker.C:
			start := time.Now()
			if err := j.RunOnce(ctx); err != nil {
				j.log.Error("Reconciliation cycle failed, skipping until next tick", zap.Error(err))
				metrics.RecordReconcileRun("error", start)
			} else {
				metrics.RecordReconcileRun("ok", start)
			}
		}
	}
}

// RunOnce executes one reconciliation cycle for the whole system:
// expired maintenance blocks are released, units with a reservation underway
// are marked BOOKED, and units previously marked BOOKED with no reservation
// underway are returned to AVAILABLE. Units in MAINTENANCE are never touched
// by the booked/available steps.
func (j *Job) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	now := j.clock.Now()

	if err := j.releaseExpiredMaintenance(ctx, now); err != nil {
		return fmt.Errorf("release maintenance: %w", err)
	}

	var bookedIDs []uint
	err := j.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("room_unit_id IS NOT NULL AND check_in <= ? AND check_out > ?", now, now).
		Distinct().Pluck("room_unit_id", &bookedIDs).Error
	if err != nil {
		return fmt.Errorf("fetch current reservations: %w", err)
	}

	if len(bookedIDs) > 0 {
		err = j.db.WithContext(ctx).Model(&model.RoomUnit{}).
			Where("id IN ? AND status = ?", bookedIDs, model.RoomUnitAvailable).
			Update("status", model.RoomUnitBooked).Error
		if err != nil {
			return fmt.Errorf("mark booked units: %w", err)
		}
	}

	release := j.db.WithContext(ctx).Model(&model.RoomUnit{}).
		Where("status = ?", model.RoomUnitBooked)
	if len(bookedIDs) > 0 {
		release = release.Where("id NOT IN ?", bookedIDs)
	}
	if err := release.Update("status", model.RoomUnitAvailable).Error; err != nil {
		return fmt.Errorf("release vacated units: %w", err)
	}

	j.publishSnapshots(ctx, now)
	return nil
}

// releaseExpiredMaintenance returns units to AVAILABLE once every maintenance
// block on them has passed its release time. Units put in MAINTENANCE by hand,
// without any block, are left alone.
func (j *Job) releaseExpiredMaintenance(ctx context.Context, now time.Time) error {
	var blockedIDs []uint
	err := j.db.WithContext(ctx).Model(&model.MaintenanceBlock{}).
		Distinct().Pluck("room_unit_id", &blockedIDs).Error
	if err != nil {
		return err
	}
	if len(blockedIDs) == 0 {
		return nil
	}

	var activeIDs []uint
	err = j.db.WithContext(ctx).Model(&model.MaintenanceBlock{}).
		Where("release_at > ?", now).
		Distinct().Pluck("room_unit_id", &activeIDs).Error
	if err != nil {
		return err
	}

	activeSet := make(map[uint]struct{}, len(activeIDs))
	for _, id := range activeIDs {
		activeSet[id] = struct{}{}
	}

	expired := make([]uint, 0, len(blockedIDs))
	for _, id := range blockedIDs {
		if _, ok := activeSet[id]; !ok {
			expired = append(expired, id)
		}
	}
	if len(expired) == 0 {
		return nil
	}

	err = j.db.WithContext(ctx).Model(&model.RoomUnit{}).
		Where("id IN ? AND status = ?", expired, model.RoomUnitMaintenance).
		Update("status", model.RoomUnitAvailable).Error
	if err != nil {
		return err
	}
	return j.db.WithContext(ctx).
		Where("room_unit_id IN ? AND release_at <= ?", expired, now).
		Delete(&model.MaintenanceBlock{}).Error
}

// OccupancySnapshot is the cached per-hotel summary written after each run.
type OccupancySnapshot struct {
	HotelID     uint      `json:"hotel_id"`
	TotalUnits  int64     `json:"total_units"`
	BookedUnits int64     `json:"booked_units"`
	AsOf        time.Time `json:"as_of"`
}

func SnapshotKey(hotelID uint) string {
	return fmt.Sprintf("hotel:%d:occupancy", hotelID)
}

// publishSnapshots is best-effort: a cache failure never fails the run.
func (j *Job) publishSnapshots(ctx context.Context, now time.Time) {
	if j.kv == nil {
		return
	}

	type row struct {
		HotelID uint
		Status  model.RoomUnitStatus
		N       int64
	}
	var rows []row
	err := j.db.WithContext(ctx).Model(&model.RoomUnit{}).
		Select("hotel_id, status, count(*) as n").
		Group("hotel_id, status").Scan(&rows).Error
	if err != nil {
		j.log.Warn("Occupancy snapshot query failed", zap.Error(err))
		return
	}

	snaps := map[uint]*OccupancySnapshot{}
	for _, r := range rows {
		s, ok := snaps[r.HotelID]
		if !ok {
			s = &OccupancySnapshot{HotelID: r.HotelID, AsOf: now}
			snaps[r.HotelID] = s
		}
		s.TotalUnits += r.N
		if r.Status == model.RoomUnitBooked {
			s.BookedUnits += r.N
		}
	}

	for id, s := range snaps {
		payload, err := json.Marshal(s)
		if err != nil {
			continue
		}
		if err := j.kv.Set(ctx, SnapshotKey(id), string(payload), snapshotTTL); err != nil {
			j.log.Warn("Occupancy snapshot publish failed", zap.Uint("hotel_id", id), zap.Error(err))
		}
	}
}
