package entity

import "time"

// Lot representa un lote de fabricación de un ítem (único por ítem + código).
type Lot struct {
	ID             string
	ItemID         string
	LotCode        string
	ManufacturedAt *time.Time
	ExpirationDate *time.Time
}
