package entity

import (
	"sort"
	"strings"
)

// StockPosition identifica una posición de stock: bodega, ubicación (bin),
// ítem y, opcionalmente, lote y número de serie. Lote/serial ausentes se
// representan con cadena vacía (un valor distinguido, nunca NULL) para que
// dos posiciones sean iguales si y solo si coinciden los cinco campos.
type StockPosition struct {
	WarehouseID    string
	BinLocationID  string
	ItemID         string
	LotID          string
	SerialNumberID string
}

// Key devuelve la clave canónica de la posición. Se usa como llave de mapas
// y como criterio de orden de bloqueo de filas (orden determinista entre
// transacciones concurrentes para evitar ciclos de deadlock).
func (p StockPosition) Key() string {
	return strings.Join([]string{
		p.WarehouseID, p.BinLocationID, p.ItemID, p.LotID, p.SerialNumberID,
	}, "|")
}

// IsComplete indica si los campos obligatorios (bodega, bin, ítem) están presentes.
func (p StockPosition) IsComplete() bool {
	return p.WarehouseID != "" && p.BinLocationID != "" && p.ItemID != ""
}

// SortPositions ordena in-place por clave canónica.
func SortPositions(positions []StockPosition) {
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Key() < positions[j].Key()
	})
}
