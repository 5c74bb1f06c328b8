package entity

import "time"

// Estados de un ítem.
const (
	ItemActive   = "active"
	ItemArchived = "archived"
)

// Item representa un producto identificado por SKU. Los flags de trazabilidad
// obligan a que todo movimiento del ítem lleve lote y/o número de serie.
type Item struct {
	ID                    string
	SKU                   string
	Name                  string
	UnitOfMeasure         string
	BarcodeValue          string
	IsLotTracked          bool
	IsSerialNumberTracked bool
	Status                string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
