package repository

import (
	"context"
	"errors"
	"time"

	"rental-service/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BlockingStatuses are the rental states that reserve a room's calendar.
// Pending rentals do not block; availability is enforced at approval
// granularity.
var BlockingStatuses = []model.RentalStatus{model.RentalApproved, model.RentalActive}

type RentalRepository struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewRentalRepository(db *gorm.DB, log *logrus.Logger) *RentalRepository {
	return &RentalRepository{
		db:  db,
		log: log,
	}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *RentalRepository) WithTx(tx *gorm.DB) *RentalRepository {
	return &RentalRepository{db: tx, log: r.log}
}

// Create inserts a new rental
func (r *RentalRepository) Create(ctx context.Context, rental *model.Rental) error {
	return r.db.WithContext(ctx).Create(rental).Error
}

// GetByID retrieves a rental by id
func (r *RentalRepository) GetByID(ctx context.Context, id uint) (*model.Rental, error) {
	var rental model.Rental
	err := r.db.WithContext(ctx).First(&rental, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRentalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rental, nil
}

// GetForUpdate retrieves a rental by id holding a row lock until the
// surrounding transaction ends.
func (r *RentalRepository) GetForUpdate(ctx context.Context, id uint) (*model.Rental, error) {
	var rental model.Rental
	err := forUpdate(r.db.WithContext(ctx)).
		First(&rental, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRentalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rental, nil
}

// FindOverlapping returns approved/active rentals for the room whose
// inclusive date range intersects [start, end]. Two ranges [s1,e1] and
// [s2,e2] overlap iff s1 <= e2 AND s2 <= e1; this one predicate covers
// containment in either direction and both partial overlaps. Candidate rows
// are locked so a concurrent creator blocks until this transaction decides.
func (r *RentalRepository) FindOverlapping(ctx context.Context, roomID uint, start, end time.Time) ([]model.Rental, error) {
	var rentals []model.Rental
	err := forUpdate(r.db.WithContext(ctx)).
		Where("room_id = ? AND status IN ?", roomID, BlockingStatuses).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Find(&rentals).Error
	return rentals, err
}

// UpdateStatus transitions a rental's lifecycle state
func (r *RentalRepository) UpdateStatus(ctx context.Context, id uint, status model.RentalStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.Rental{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRentalNotFound
	}
	return nil
}

// ListByStatuses retrieves rentals in any of the given states, used by the
// monthly billing batch to select eligible rentals.
func (r *RentalRepository) ListByStatuses(ctx context.Context, statuses []model.RentalStatus) ([]model.Rental, error) {
	var rentals []model.Rental
	err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("id ASC").
		Find(&rentals).Error
	return rentals, err
}

// ListByRoom retrieves rentals for a room, optionally filtered by status
func (r *RentalRepository) ListByRoom(ctx context.Context, roomID uint, status model.RentalStatus) ([]model.Rental, error) {
	q := r.db.WithContext(ctx).Where("room_id = ?", roomID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rentals []model.Rental
	err := q.Order("start_date ASC").Find(&rentals).Error
	return rentals, err
}
