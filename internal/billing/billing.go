package billing

import (
	"context"
	"sync"
	"time"

	"rental-service/internal/model"
	"rental-service/internal/repository"
	"rental-service/internal/sequence"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// EventPublisher emits domain events. Publishing is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, key string, payload interface{}) error
}

// RentalError records a single rental's failure during a batch run.
type RentalError struct {
	RentalID uint   `json:"rental_id"`
	Reason   string `json:"reason"`
}

// Service converts rentals, rent prices and unbilled meter deltas into
// invoices, one at a time or as a monthly batch.
type Service struct {
	db       *gorm.DB
	rentals  *repository.RentalRepository
	rooms    *repository.RoomRepository
	usages   *repository.UsageRepository
	invoices *repository.InvoiceRepository
	rates    *repository.RateRepository
	seq      *sequence.Allocator
	events   EventPublisher
	dueDays  int
	log      *logrus.Logger

	// batchMu keeps at most one monthly run in flight, so two concurrent
	// batches can never both mark the same usage record billed.
	batchMu sync.Mutex
}

func NewService(
	db *gorm.DB,
	rentals *repository.RentalRepository,
	rooms *repository.RoomRepository,
	usages *repository.UsageRepository,
	invoices *repository.InvoiceRepository,
	rates *repository.RateRepository,
	seq *sequence.Allocator,
	events EventPublisher,
	dueDays int,
	log *logrus.Logger,
) *Service {
	return &Service{
		db:       db,
		rentals:  rentals,
		rooms:    rooms,
		usages:   usages,
		invoices: invoices,
		rates:    rates,
		seq:      seq,
		events:   events,
		dueDays:  dueDays,
		log:      log,
	}
}

// CreateInvoice is the manual path: it persists the three charge components
// as given, sums them, stamps issue and due dates and allocates a number.
// When usageID references a ledger record, that record is marked billed in
// the same transaction.
func (s *Service) CreateInvoice(ctx context.Context, rentalID uint, roomRent, electricityCharge, waterCharge decimal.Decimal, usageID *uint) (*model.Invoice, error) {
	var invoice *model.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rentals := s.rentals.WithTx(tx)
		invoices := s.invoices.WithTx(tx)
		usages := s.usages.WithTx(tx)

		if _, err := rentals.GetByID(ctx, rentalID); err != nil {
			return err
		}

		invoice = s.buildInvoice(rentalID, roomRent, electricityCharge, waterCharge)
		if err := invoices.Create(ctx, invoice); err != nil {
			return err
		}

		if usageID != nil {
			return usages.MarkBilled(ctx, *usageID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"rental_id": rentalID,
		"invoice":   invoice.InvoiceNumber,
		"total":     invoice.TotalAmount,
	}).Info("invoice created")

	s.publish(ctx, "invoice.created", invoice)
	return invoice, nil
}

// GenerateMonthlyInvoices bills every approved/active rental for the given
// period. The utility rate is read once at the start of the run and used for
// every invoice in it. Each rental is processed independently: a failure is
// recorded against its id and the run continues, while an engine-level
// failure (rate table or rental listing unavailable) rolls the whole run
// back with zero invoices persisted.
func (s *Service) GenerateMonthlyInvoices(ctx context.Context, year int, month time.Month) (int, []RentalError, error) {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()

	from, to := monthWindow(year, month)

	var (
		generated  int
		rentalErrs []RentalError
		created    []*model.Invoice
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rate, err := s.rates.WithTx(tx).Get(ctx)
		if err != nil {
			return err
		}

		eligible, err := s.rentals.WithTx(tx).ListByStatuses(ctx, repository.BlockingStatuses)
		if err != nil {
			return err
		}

		for _, rental := range eligible {
			rental := rental
			// Savepoint per rental: one bad rental rolls back its own
			// writes only, never the batch.
			err := tx.Transaction(func(inner *gorm.DB) error {
				invoice, err := s.invoiceRental(ctx, inner, &rental, rate, from, to)
				if err != nil {
					return err
				}
				created = append(created, invoice)
				return nil
			})
			if err != nil {
				s.log.WithFields(logrus.Fields{
					"rental_id": rental.ID,
				}).WithError(err).Warn("skipping rental in monthly batch")
				rentalErrs = append(rentalErrs, RentalError{RentalID: rental.ID, Reason: err.Error()})
				continue
			}
			generated++
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}

	s.log.WithFields(logrus.Fields{
		"year":      year,
		"month":     int(month),
		"generated": generated,
		"failed":    len(rentalErrs),
	}).Info("monthly invoice run completed")

	for _, invoice := range created {
		s.publish(ctx, "invoice.created", invoice)
	}

	return generated, rentalErrs, nil
}

func (s *Service) invoiceRental(ctx context.Context, tx *gorm.DB, rental *model.Rental, rate model.UtilityRate, from, to time.Time) (*model.Invoice, error) {
	rooms := s.rooms.WithTx(tx)
	usages := s.usages.WithTx(tx)
	invoices := s.invoices.WithTx(tx)

	room, err := rooms.GetByID(ctx, rental.RoomID)
	if err != nil {
		return nil, err
	}

	electricityCharge := decimal.Zero
	usage, err := usages.LatestUnbilledInWindow(ctx, rental.RoomID, from, to)
	if err != nil {
		return nil, err
	}
	if usage != nil {
		electricityCharge = usage.UnitsUsed.Mul(rate.ElectricityRatePerUnit)
		if err := usages.MarkBilled(ctx, usage.ID); err != nil {
			return nil, err
		}
	}

	invoice := s.buildInvoice(rental.ID, room.PricePerMonth, electricityCharge, rate.WaterFlatRate)
	if err := invoices.Create(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *Service) buildInvoice(rentalID uint, roomRent, electricityCharge, waterCharge decimal.Decimal) *model.Invoice {
	now := time.Now().UTC()
	issue := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return &model.Invoice{
		RentalID:          rentalID,
		InvoiceNumber:     s.seq.InvoiceNumber(),
		IssueDate:         issue,
		DueDate:           issue.AddDate(0, 0, s.dueDays),
		RoomRent:          roomRent,
		ElectricityCharge: electricityCharge,
		WaterCharge:       waterCharge,
		TotalAmount:       roomRent.Add(electricityCharge).Add(waterCharge),
		Status:            model.InvoiceUnpaid,
	}
}

// GetByNumber retrieves an invoice by its unique number
func (s *Service) GetByNumber(ctx context.Context, number string) (*model.Invoice, error) {
	return s.invoices.GetByNumber(ctx, number)
}

// ListByRental retrieves invoices issued against a rental
func (s *Service) ListByRental(ctx context.Context, rentalID uint) ([]model.Invoice, error) {
	return s.invoices.ListByRental(ctx, rentalID)
}

// Rates returns the current utility rate snapshot
func (s *Service) Rates(ctx context.Context) (model.UtilityRate, error) {
	return s.rates.Get(ctx)
}

// UpdateRates sets new utility rates, affecting only invoices created later
func (s *Service) UpdateRates(ctx context.Context, electricityPerUnit, waterFlat decimal.Decimal) (model.UtilityRate, error) {
	return s.rates.Update(ctx, electricityPerUnit, waterFlat)
}

func (s *Service) publish(ctx context.Context, key string, invoice *model.Invoice) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, key, invoice); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("failed to publish event")
	}
}

func monthWindow(year int, month time.Month) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	return from, to
}
