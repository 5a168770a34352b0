package ledger

import (
	"context"
	"fmt"
	"time"

	"rental-service/internal/keylock"
	"rental-service/internal/model"
	"rental-service/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NonMonotonicReadingError reports a meter reading that does not exceed the
// room's latest recorded value.
type NonMonotonicReadingError struct {
	RoomID uint
	Value  decimal.Decimal
	Floor  decimal.Decimal
}

func (e *NonMonotonicReadingError) Error() string {
	return fmt.Sprintf("reading %s for room %d must be greater than %s", e.Value, e.RoomID, e.Floor)
}

// Service is the append-only utility ledger. Readings per room are strictly
// monotonic; writers on the same room serialize on a keyed mutex plus a row
// lock on the latest ledger entry.
type Service struct {
	db     *gorm.DB
	rooms  *repository.RoomRepository
	usages *repository.UsageRepository
	locks  *keylock.Mutex
	log    *logrus.Logger
}

func NewService(db *gorm.DB, rooms *repository.RoomRepository, usages *repository.UsageRepository, log *logrus.Logger) *Service {
	return &Service{
		db:     db,
		rooms:  rooms,
		usages: usages,
		locks:  keylock.New(),
		log:    log,
	}
}

// RecordReading appends a meter reading for the room. previous_units is
// derived from the latest prior record (0 when the ledger is empty) and
// units_used is the delta. New records start unbilled. There is no update or
// delete path.
func (s *Service) RecordReading(ctx context.Context, roomID uint, readingDate time.Time, currentUnits decimal.Decimal) (*model.ElectricityUsage, error) {
	unlock := s.locks.Lock(roomID)
	defer unlock()

	var usage *model.ElectricityUsage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rooms := s.rooms.WithTx(tx)
		usages := s.usages.WithTx(tx)

		if _, err := rooms.GetByID(ctx, roomID); err != nil {
			return err
		}

		latest, err := usages.LatestForRoomLocked(ctx, roomID)
		if err != nil {
			return err
		}

		floor := decimal.Zero
		if latest != nil {
			floor = latest.CurrentUnits
		}
		if currentUnits.LessThanOrEqual(floor) {
			return &NonMonotonicReadingError{RoomID: roomID, Value: currentUnits, Floor: floor}
		}

		usage = &model.ElectricityUsage{
			RoomID:        roomID,
			ReadingDate:   time.Date(readingDate.Year(), readingDate.Month(), readingDate.Day(), 0, 0, 0, 0, time.UTC),
			PreviousUnits: floor,
			CurrentUnits:  currentUnits,
			UnitsUsed:     currentUnits.Sub(floor),
			IsBilled:      false,
		}
		return usages.Create(ctx, usage)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"room_id":    roomID,
		"units_used": usage.UnitsUsed,
	}).Info("meter reading recorded")

	return usage, nil
}

// ListByRoom retrieves the ledger for a room, newest first
func (s *Service) ListByRoom(ctx context.Context, roomID uint, unbilledOnly bool) ([]model.ElectricityUsage, error) {
	if unbilledOnly {
		return s.usages.ListUnbilledByRoom(ctx, roomID)
	}
	return s.usages.ListByRoom(ctx, roomID)
}
