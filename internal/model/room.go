package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
)

// Room is the slice of the room catalog this engine touches: the engine only
// flips Status between available and occupied and reads PricePerMonth. Name,
// photos and amenities live with the catalog service.
type Room struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Number        string          `gorm:"size:50;not null" json:"number"`
	Status        RoomStatus      `gorm:"size:20;not null;default:available;index:idx_room_status" json:"status"`
	PricePerMonth decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"price_per_month"`
}

// TableName specifies the table name
func (Room) TableName() string {
	return "rooms"
}
