package entity

// Funciones de zona de una ubicación (receiving, storage, picking, shipping, returns, scrap).
const (
	ZoneReceiving = "receiving"
	ZoneStorage   = "storage"
	ZonePicking   = "picking"
	ZoneShipping  = "shipping"
	ZoneReturns   = "returns"
	ZoneScrap     = "scrap"
)

// Tipos de ubicación física.
const (
	BinTypePallet   = "pallet"
	BinTypeShelf    = "shelf"
	BinTypeFlowRack = "flow_rack"
	BinTypeStaging  = "staging"
)

// BinLocation es una ubicación concreta (bin) dentro de una bodega.
// ZoneFunction determina qué operaciones la aceptan: las devoluciones solo
// entran a bins "returns" y los descartes a bins "scrap".
type BinLocation struct {
	ID           string
	WarehouseID  string
	Code         string
	BinType      string
	ZoneFunction string
	IsPickFace   bool
}
