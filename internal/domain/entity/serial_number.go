package entity

// Estados de un número de serie.
const (
	SerialInStock  = "in_stock"
	SerialShipped  = "shipped"
	SerialScrapped = "scrapped"
)

// SerialNumber identifica una unidad física individual de un ítem.
// En una posición con serial la cantidad es siempre 0 o 1.
type SerialNumber struct {
	ID         string
	ItemID     string
	SerialCode string
	LotID      string // vacío si el serial no pertenece a un lote
	Status     string
}
