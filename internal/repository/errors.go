package repository

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRentalNotFound  = errors.New("rental not found")
	ErrInvoiceNotFound = errors.New("invoice not found")
)
