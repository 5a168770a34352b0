package repository

import (
	"context"
	"errors"
	"time"

	"rental-service/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type UsageRepository struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewUsageRepository(db *gorm.DB, log *logrus.Logger) *UsageRepository {
	return &UsageRepository{
		db:  db,
		log: log,
	}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *UsageRepository) WithTx(tx *gorm.DB) *UsageRepository {
	return &UsageRepository{db: tx, log: r.log}
}

// Create appends a new reading to the ledger
func (r *UsageRepository) Create(ctx context.Context, usage *model.ElectricityUsage) error {
	return r.db.WithContext(ctx).Create(usage).Error
}

// LatestForRoom returns the chronologically latest reading for a room, or
// nil when the ledger is empty for that room. Ties on reading_date break on
// insertion order.
func (r *UsageRepository) LatestForRoom(ctx context.Context, roomID uint) (*model.ElectricityUsage, error) {
	var usage model.ElectricityUsage
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("reading_date DESC, id DESC").
		First(&usage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &usage, nil
}

// LatestForRoomLocked is LatestForRoom holding a row lock on the returned
// record, serializing concurrent writers appending to the same room's ledger.
func (r *UsageRepository) LatestForRoomLocked(ctx context.Context, roomID uint) (*model.ElectricityUsage, error) {
	var usage model.ElectricityUsage
	err := forUpdate(r.db.WithContext(ctx)).
		Where("room_id = ?", roomID).
		Order("reading_date DESC, id DESC").
		First(&usage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &usage, nil
}

// LatestUnbilledInWindow returns the most recent unbilled reading for a room
// whose reading_date falls within [from, to], or nil when there is none.
func (r *UsageRepository) LatestUnbilledInWindow(ctx context.Context, roomID uint, from, to time.Time) (*model.ElectricityUsage, error) {
	var usage model.ElectricityUsage
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND is_billed = ?", roomID, false).
		Where("reading_date >= ? AND reading_date <= ?", from, to).
		Order("reading_date DESC, id DESC").
		First(&usage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &usage, nil
}

// MarkBilled flags a ledger record as consumed by an invoice
func (r *UsageRepository) MarkBilled(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&model.ElectricityUsage{}).
		Where("id = ? AND is_billed = ?", id, false).
		Update("is_billed", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByRoom retrieves the full ledger for a room, newest first
func (r *UsageRepository) ListByRoom(ctx context.Context, roomID uint) ([]model.ElectricityUsage, error) {
	var usages []model.ElectricityUsage
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("reading_date DESC, id DESC").
		Find(&usages).Error
	return usages, err
}

// ListUnbilledByRoom retrieves unbilled ledger entries for a room
func (r *UsageRepository) ListUnbilledByRoom(ctx context.Context, roomID uint) ([]model.ElectricityUsage, error) {
	var usages []model.ElectricityUsage
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND is_billed = ?", roomID, false).
		Order("reading_date DESC, id DESC").
		Find(&usages).Error
	return usages, err
}
