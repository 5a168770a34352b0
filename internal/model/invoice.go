package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceUnpaid InvoiceStatus = "unpaid"
	InvoicePaid   InvoiceStatus = "paid"
)

// Invoice is created exactly once per billing event and never edited
// afterwards apart from the payment-status transition, which is handled
// outside this engine.
type Invoice struct {
	ID                uint            `gorm:"primarykey" json:"id"`
	CreatedAt         time.Time       `json:"created_at"`
	RentalID          uint            `gorm:"not null;index" json:"rental_id"`
	InvoiceNumber     string          `gorm:"size:64;not null;uniqueIndex" json:"invoice_number"`
	IssueDate         time.Time       `gorm:"type:date;not null" json:"issue_date"`
	DueDate           time.Time       `gorm:"type:date;not null" json:"due_date"`
	RoomRent          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"room_rent"`
	ElectricityCharge decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"electricity_charge"`
	WaterCharge       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"water_charge"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_amount"`
	Status            InvoiceStatus   `gorm:"size:20;not null;default:unpaid" json:"status"`
}

// TableName specifies the table name
func (Invoice) TableName() string {
	return "invoices"
}
