package repository

import (
	"context"
	"errors"

	"rental-service/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type InvoiceRepository struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewInvoiceRepository(db *gorm.DB, log *logrus.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		db:  db,
		log: log,
	}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *InvoiceRepository) WithTx(tx *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: tx, log: r.log}
}

// Create persists a new invoice
func (r *InvoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

// GetByID retrieves an invoice by id
func (r *InvoiceRepository) GetByID(ctx context.Context, id uint) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetByNumber retrieves an invoice by its unique invoice number
func (r *InvoiceRepository) GetByNumber(ctx context.Context, number string) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).First(&invoice, "invoice_number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ListByRental retrieves all invoices issued against a rental, newest first
func (r *InvoiceRepository) ListByRental(ctx context.Context, rentalID uint) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.db.WithContext(ctx).
		Where("rental_id = ?", rentalID).
		Order("issue_date DESC, id DESC").
		Find(&invoices).Error
	return invoices, err
}
