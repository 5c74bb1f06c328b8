package stock_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/Bodega-ledger/internal/domain/stock"
)

func qty(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Un traslado interno es un único movimiento con origen y destino: el neto
// debe ser -q en el origen y +q en el destino.
func TestNetByPosition_TrasladoInterno(t *testing.T) {
	mov := &entity.StockMovement{
		WarehouseID:      "wh",
		SourceBinID:      "bin-a",
		DestinationBinID: "bin-b",
		ItemID:           "item",
		Quantity:         qty("4"),
	}

	changes := stock.NetByPosition([]*entity.StockMovement{mov})
	require.Len(t, changes, 2)

	// Orden canónico: bin-a antes que bin-b.
	assert.Equal(t, "bin-a", changes[0].Position.BinLocationID)
	assert.True(t, changes[0].Delta.Equal(qty("-4")), "el origen pierde la cantidad")
	assert.Equal(t, "bin-b", changes[1].Position.BinLocationID)
	assert.True(t, changes[1].Delta.Equal(qty("4")), "el destino gana la cantidad")
}

// Movimientos del mismo lote que tocan la misma posición se netean antes de
// validar cotas: una salida y una entrada iguales sobre el mismo bin dejan
// delta cero.
func TestNetByPosition_NeteaMismaPosicion(t *testing.T) {
	salida := &entity.StockMovement{
		WarehouseID: "wh", SourceBinID: "bin-a", ItemID: "item", Quantity: qty("3"),
	}
	entrada := &entity.StockMovement{
		WarehouseID: "wh", DestinationBinID: "bin-a", ItemID: "item", Quantity: qty("3"),
	}

	changes := stock.NetByPosition([]*entity.StockMovement{salida, entrada})
	require.Len(t, changes, 1)
	assert.True(t, changes[0].Delta.IsZero(), "los efectos opuestos deben netearse a cero")
}

// Una recepción (sin bin de origen) solo produce el delta del destino.
func TestNetByPosition_RecepcionSoloDestino(t *testing.T) {
	mov := &entity.StockMovement{
		WarehouseID: "wh", DestinationBinID: "bin-rx", ItemID: "item", Quantity: qty("10.5"),
	}

	changes := stock.NetByPosition([]*entity.StockMovement{mov})
	require.Len(t, changes, 1)
	assert.True(t, changes[0].Delta.Equal(qty("10.5")))
}

// Posiciones con lote distinto son posiciones distintas: no se mezclan.
func TestNetByPosition_LotesSeparados(t *testing.T) {
	lote1 := &entity.StockMovement{
		WarehouseID: "wh", DestinationBinID: "bin", ItemID: "item", LotID: "lot-1", Quantity: qty("2"),
	}
	lote2 := &entity.StockMovement{
		WarehouseID: "wh", DestinationBinID: "bin", ItemID: "item", LotID: "lot-2", Quantity: qty("7"),
	}

	changes := stock.NetByPosition([]*entity.StockMovement{lote1, lote2})
	require.Len(t, changes, 2)
	assert.True(t, changes[0].Delta.Equal(qty("2")))
	assert.True(t, changes[1].Delta.Equal(qty("7")))
}

func TestNetByPosition_Vacio(t *testing.T) {
	assert.Empty(t, stock.NetByPosition(nil))
}
