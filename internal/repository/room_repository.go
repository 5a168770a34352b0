package repository

import (
	"context"
	"errors"

	"rental-service/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type RoomRepository struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewRoomRepository(db *gorm.DB, log *logrus.Logger) *RoomRepository {
	return &RoomRepository{
		db:  db,
		log: log,
	}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *RoomRepository) WithTx(tx *gorm.DB) *RoomRepository {
	return &RoomRepository{db: tx, log: r.log}
}

// GetByID retrieves a room by id
func (r *RoomRepository) GetByID(ctx context.Context, id uint) (*model.Room, error) {
	var room model.Room
	err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetForUpdate retrieves a room by id holding a row lock until the
// surrounding transaction ends. This is the per-room exclusion token the
// availability check-then-insert sequence serializes on.
func (r *RoomRepository) GetForUpdate(ctx context.Context, id uint) (*model.Room, error) {
	var room model.Room
	err := forUpdate(r.db.WithContext(ctx)).
		First(&room, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// UpdateStatus transitions a room between available/occupied
func (r *RoomRepository) UpdateStatus(ctx context.Context, id uint, status model.RoomStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.Room{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// List retrieves all rooms
func (r *RoomRepository) List(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rooms).Error
	return rooms, err
}
