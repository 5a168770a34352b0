package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// UtilityRate is the singleton rate table. The billing engine reads it once
// at the start of each run; a change affects only invoices created afterward.
type UtilityRate struct {
	ID                     uint            `gorm:"primarykey" json:"id"`
	UpdatedAt              time.Time       `json:"updated_at"`
	ElectricityRatePerUnit decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"electricity_rate_per_unit"`
	WaterFlatRate          decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"water_flat_rate"`
}

// TableName specifies the table name
func (UtilityRate) TableName() string {
	return "utility_rates"
}
