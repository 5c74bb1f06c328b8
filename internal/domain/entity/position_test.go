package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Bodega-ledger/internal/domain/entity"
)

// La clave canónica concatena los cinco campos; lote/serial ausentes entran
// como cadena vacía, así que dos posiciones son iguales si y solo si
// coinciden las cinco partes.
func TestStockPosition_KeyCanonica(t *testing.T) {
	p := entity.StockPosition{
		WarehouseID:   "wh-1",
		BinLocationID: "bin-1",
		ItemID:        "item-1",
	}
	assert.Equal(t, "wh-1|bin-1|item-1||", p.Key())

	conLote := p
	conLote.LotID = "lot-9"
	assert.NotEqual(t, p.Key(), conLote.Key(),
		"la posición con lote debe ser distinta de la posición sin lote")
}

func TestStockPosition_IsComplete(t *testing.T) {
	completa := entity.StockPosition{WarehouseID: "wh", BinLocationID: "bin", ItemID: "item"}
	assert.True(t, completa.IsComplete())

	sinBin := entity.StockPosition{WarehouseID: "wh", ItemID: "item"}
	assert.False(t, sinBin.IsComplete(), "sin bin la posición está incompleta")

	vacia := entity.StockPosition{}
	assert.False(t, vacia.IsComplete())
}

// El orden por clave canónica es el orden de bloqueo de filas: debe ser
// determinista sin importar el orden de entrada.
func TestSortPositions_OrdenDeterminista(t *testing.T) {
	a := entity.StockPosition{WarehouseID: "wh", BinLocationID: "bin-a", ItemID: "item"}
	b := entity.StockPosition{WarehouseID: "wh", BinLocationID: "bin-b", ItemID: "item"}
	c := entity.StockPosition{WarehouseID: "wh", BinLocationID: "bin-b", ItemID: "item", LotID: "lot"}

	posiciones := []entity.StockPosition{c, a, b}
	entity.SortPositions(posiciones)

	assert.Equal(t, []entity.StockPosition{a, b, c}, posiciones)
}
