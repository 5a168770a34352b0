package booking

import (
	"context"
	"time"

	"rental-service/internal/keylock"
	"rental-service/internal/model"
	"rental-service/internal/repository"
	"rental-service/internal/sequence"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// EventPublisher emits domain events. Publishing is best effort; the service
// logs failures and carries on.
type EventPublisher interface {
	Publish(ctx context.Context, key string, payload interface{}) error
}

// DocumentRemover deletes an uploaded tenant document as a compensating
// action when the surrounding rental creation fails.
type DocumentRemover interface {
	Remove(path string)
}

// CreateRentalRequest carries everything needed to open a pending rental.
// DocumentPath points at an already-stored tenant document, if any.
type CreateRentalRequest struct {
	RoomID         uint
	TenantID       uint
	StartDate      time.Time
	EndDate        time.Time
	DepositAmount  decimal.Decimal
	AdvancePayment decimal.Decimal
	DocumentPath   string
}

// Service is the availability guard plus the rental lifecycle state machine.
// The check-then-insert sequence for a room is serialized twice over: a
// keyed mutex per room id in-process, and a FOR UPDATE lock on the room row
// inside the transaction for safety across replicas.
type Service struct {
	db      *gorm.DB
	rooms   *repository.RoomRepository
	rentals *repository.RentalRepository
	seq     *sequence.Allocator
	docs    DocumentRemover
	events  EventPublisher
	locks   *keylock.Mutex
	log     *logrus.Logger
}

func NewService(
	db *gorm.DB,
	rooms *repository.RoomRepository,
	rentals *repository.RentalRepository,
	seq *sequence.Allocator,
	docs DocumentRemover,
	events EventPublisher,
	log *logrus.Logger,
) *Service {
	return &Service{
		db:      db,
		rooms:   rooms,
		rentals: rentals,
		seq:     seq,
		docs:    docs,
		events:  events,
		locks:   keylock.New(),
		log:     log,
	}
}

// CheckAvailability reports whether a new rental may be created for the room
// over the given range. Pure read; the authoritative check re-runs under
// lock inside CheckAndCreateRental.
func (s *Service) CheckAvailability(ctx context.Context, roomID uint, start, end time.Time) error {
	iv, err := NewInterval(start, end)
	if err != nil {
		return err
	}
	return s.checkAvailability(ctx, s.rooms, s.rentals, roomID, iv)
}

func (s *Service) checkAvailability(ctx context.Context, rooms *repository.RoomRepository, rentals *repository.RentalRepository, roomID uint, iv Interval) error {
	room, err := rooms.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	if room.Status != model.RoomAvailable {
		return ErrRoomUnavailable
	}

	overlapping, err := rentals.FindOverlapping(ctx, roomID, iv.Start, iv.End)
	if err != nil {
		return err
	}
	if len(overlapping) > 0 {
		return ErrDateConflict
	}
	return nil
}

// CheckAndCreateRental runs the availability guard and the insert as one
// atomic unit and returns the new pending rental. The room status stays
// available: pending rentals reserve nothing, only approved/active ones
// block the calendar. On failure any uploaded document is removed.
func (s *Service) CheckAndCreateRental(ctx context.Context, req CreateRentalRequest) (*model.Rental, error) {
	iv, err := NewInterval(req.StartDate, req.EndDate)
	if err != nil {
		s.cleanupDocument(req.DocumentPath)
		return nil, err
	}

	unlock := s.locks.Lock(req.RoomID)
	defer unlock()

	var rental *model.Rental
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rooms := s.rooms.WithTx(tx)
		rentals := s.rentals.WithTx(tx)

		room, err := rooms.GetForUpdate(ctx, req.RoomID)
		if err != nil {
			return err
		}
		if room.Status != model.RoomAvailable {
			return ErrRoomUnavailable
		}

		overlapping, err := rentals.FindOverlapping(ctx, req.RoomID, iv.Start, iv.End)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return ErrDateConflict
		}

		rental = &model.Rental{
			RoomID:         req.RoomID,
			TenantID:       req.TenantID,
			ContractNumber: s.seq.ContractNumber(),
			StartDate:      iv.Start,
			EndDate:        iv.End,
			Status:         model.RentalPending,
			MonthlyRent:    room.PricePerMonth,
			DepositAmount:  req.DepositAmount,
			AdvancePayment: req.AdvancePayment,
			TotalPrice:     room.PricePerMonth.Mul(decimal.NewFromInt(iv.Months())),
			DocumentPath:   req.DocumentPath,
		}
		return rentals.Create(ctx, rental)
	})
	if err != nil {
		s.cleanupDocument(req.DocumentPath)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"rental_id": rental.ID,
		"room_id":   rental.RoomID,
		"contract":  rental.ContractNumber,
	}).Info("rental created")

	s.publish(ctx, "rental.created", rental)
	return rental, nil
}

// Approve transitions a pending rental to approved and the room to occupied
// as one atomic unit. The room may have been taken by another rental
// approved in the interim, so its status is re-validated under lock.
func (s *Service) Approve(ctx context.Context, rentalID uint) (*model.Rental, error) {
	rental, err := s.rentals.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(rental.RoomID)
	defer unlock()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rooms := s.rooms.WithTx(tx)
		rentals := s.rentals.WithTx(tx)

		rental, err = rentals.GetForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if rental.Status != model.RentalPending {
			return ErrInvalidState
		}

		room, err := rooms.GetForUpdate(ctx, rental.RoomID)
		if err != nil {
			return err
		}
		if room.Status != model.RoomAvailable {
			return ErrRoomNoLongerAvailable
		}

		if err := rentals.UpdateStatus(ctx, rentalID, model.RentalApproved); err != nil {
			return err
		}
		return rooms.UpdateStatus(ctx, rental.RoomID, model.RoomOccupied)
	})
	if err != nil {
		return nil, err
	}

	rental.Status = model.RentalApproved
	s.log.WithFields(logrus.Fields{
		"rental_id": rental.ID,
		"room_id":   rental.RoomID,
	}).Info("rental approved, room occupied")

	s.publish(ctx, "rental.approved", rental)
	return rental, nil
}

// Reject cancels a pending rental on the admin's behalf. The room status is
// untouched; it was never changed for a pending rental.
func (s *Service) Reject(ctx context.Context, rentalID uint) (*model.Rental, error) {
	rental, err := s.cancelPending(ctx, rentalID, 0)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "rental.rejected", rental)
	return rental, nil
}

// Cancel cancels a pending rental on the tenant's behalf. Only the owning
// tenant may cancel, and only while the rental is still pending; once
// approved, a guest cannot back out this way.
func (s *Service) Cancel(ctx context.Context, rentalID, requesterID uint) (*model.Rental, error) {
	rental, err := s.cancelPending(ctx, rentalID, requesterID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "rental.cancelled", rental)
	return rental, nil
}

func (s *Service) cancelPending(ctx context.Context, rentalID, requesterID uint) (*model.Rental, error) {
	var rental *model.Rental
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rentals := s.rentals.WithTx(tx)

		var err error
		rental, err = rentals.GetForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if requesterID != 0 && rental.TenantID != requesterID {
			return ErrNotOwner
		}
		if rental.Status != model.RentalPending {
			return ErrInvalidState
		}
		return rentals.UpdateStatus(ctx, rentalID, model.RentalCancelled)
	})
	if err != nil {
		return nil, err
	}

	rental.Status = model.RentalCancelled
	s.log.WithField("rental_id", rental.ID).Info("rental cancelled")
	return rental, nil
}

// MarkActive records the externally triggered move-in of an approved rental.
func (s *Service) MarkActive(ctx context.Context, rentalID uint) (*model.Rental, error) {
	return s.transition(ctx, rentalID, model.RentalApproved, model.RentalActive)
}

// Complete records the externally triggered end of an active rental and
// frees the room.
func (s *Service) Complete(ctx context.Context, rentalID uint) (*model.Rental, error) {
	var rental *model.Rental
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rentals := s.rentals.WithTx(tx)
		rooms := s.rooms.WithTx(tx)

		var err error
		rental, err = rentals.GetForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if rental.Status != model.RentalActive {
			return ErrInvalidState
		}
		if err := rentals.UpdateStatus(ctx, rentalID, model.RentalCompleted); err != nil {
			return err
		}
		return rooms.UpdateStatus(ctx, rental.RoomID, model.RoomAvailable)
	})
	if err != nil {
		return nil, err
	}

	rental.Status = model.RentalCompleted
	s.publish(ctx, "rental.completed", rental)
	return rental, nil
}

// Get retrieves a rental by id
func (s *Service) Get(ctx context.Context, rentalID uint) (*model.Rental, error) {
	return s.rentals.GetByID(ctx, rentalID)
}

// ListByRoom retrieves rentals for a room, optionally filtered by status
func (s *Service) ListByRoom(ctx context.Context, roomID uint, status model.RentalStatus) ([]model.Rental, error) {
	return s.rentals.ListByRoom(ctx, roomID, status)
}

func (s *Service) transition(ctx context.Context, rentalID uint, from, to model.RentalStatus) (*model.Rental, error) {
	var rental *model.Rental
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rentals := s.rentals.WithTx(tx)

		var err error
		rental, err = rentals.GetForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if rental.Status != from {
			return ErrInvalidState
		}
		return rentals.UpdateStatus(ctx, rentalID, to)
	})
	if err != nil {
		return nil, err
	}
	rental.Status = to
	return rental, nil
}

func (s *Service) cleanupDocument(path string) {
	if path != "" && s.docs != nil {
		s.docs.Remove(path)
	}
}

func (s *Service) publish(ctx context.Context, key string, rental *model.Rental) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, key, rental); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("failed to publish event")
	}
}
