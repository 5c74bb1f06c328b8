package entity

import "time"

// Warehouse representa una bodega física donde se almacena inventario.
type Warehouse struct {
	ID        string
	Code      string
	Name      string
	Address   string
	TimeZone  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
