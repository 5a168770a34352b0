package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ElectricityUsage is one entry of the append-only meter ledger for a room.
// CurrentUnits must strictly exceed the latest prior reading for the same
// room; once IsBilled is set the record is immutable history.
type ElectricityUsage struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	RoomID        uint            `gorm:"not null;index:idx_usage_room_date,priority:1" json:"room_id"`
	ReadingDate   time.Time       `gorm:"type:date;not null;index:idx_usage_room_date,priority:2" json:"reading_date"`
	PreviousUnits decimal.Decimal `gorm:"type:decimal(15,3);not null" json:"previous_units"`
	CurrentUnits  decimal.Decimal `gorm:"type:decimal(15,3);not null" json:"current_units"`
	UnitsUsed     decimal.Decimal `gorm:"type:decimal(15,3);not null" json:"units_used"`
	IsBilled      bool            `gorm:"not null;default:false;index" json:"is_billed"`
}

// TableName specifies the table name
func (ElectricityUsage) TableName() string {
	return "electricity_usages"
}
