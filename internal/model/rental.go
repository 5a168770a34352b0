package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type RentalStatus string

const (
	RentalPending   RentalStatus = "pending"
	RentalApproved  RentalStatus = "approved"
	RentalActive    RentalStatus = "active"
	RentalCancelled RentalStatus = "cancelled"
	RentalCompleted RentalStatus = "completed"
)

// Terminal reports whether no further transition is allowed from s.
func (s RentalStatus) Terminal() bool {
	return s == RentalCancelled || s == RentalCompleted
}

// Rental is the contract binding a tenant to a room over an inclusive date
// range. MonthlyRent is snapshotted from the room price at creation time and
// never follows later catalog price changes.
type Rental struct {
	ID             uint            `gorm:"primarykey" json:"id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	RoomID         uint            `gorm:"not null;index:idx_rental_room_status,priority:1" json:"room_id"`
	TenantID       uint            `gorm:"not null;index" json:"tenant_id"`
	ContractNumber string          `gorm:"size:64;not null;uniqueIndex" json:"contract_number"`
	StartDate      time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate        time.Time       `gorm:"type:date;not null" json:"end_date"`
	Status         RentalStatus    `gorm:"size:20;not null;default:pending;index:idx_rental_room_status,priority:2" json:"status"`
	MonthlyRent    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"monthly_rent"`
	DepositAmount  decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"deposit_amount"`
	AdvancePayment decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"advance_payment"`
	TotalPrice     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_price"`
	DocumentPath   string          `gorm:"size:255" json:"document_path,omitempty"`
}

// TableName specifies the table name
func (Rental) TableName() string {
	return "rentals"
}
