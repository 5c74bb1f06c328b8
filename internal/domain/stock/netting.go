package stock

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Bodega-ledger/internal/domain/entity"
)

// NetChange es el efecto neto de un lote de movimientos sobre una posición.
type NetChange struct {
	Position entity.StockPosition
	Delta    decimal.Decimal
}

// NetByPosition suma los efectos de un lote de movimientos por posición
// (servicio de dominio, puro). Las cotas de saldo se validan contra el neto,
// no movimiento a movimiento: un transfer interno que neteado queda válido
// no debe rechazarse por el orden de sus dos patas. El resultado viene
// ordenado por clave canónica, que es también el orden de bloqueo de filas.
func NetByPosition(movements []*entity.StockMovement) []NetChange {
	deltas := make(map[string]*NetChange)
	for _, m := range movements {
		if pos, ok := m.SourcePosition(); ok {
			accumulate(deltas, pos, m.Quantity.Neg())
		}
		if pos, ok := m.DestinationPosition(); ok {
			accumulate(deltas, pos, m.Quantity)
		}
	}
	changes := make([]NetChange, 0, len(deltas))
	for _, ch := range deltas {
		changes = append(changes, *ch)
	}
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Position.Key() < changes[j].Position.Key()
	})
	return changes
}

func accumulate(deltas map[string]*NetChange, pos entity.StockPosition, qty decimal.Decimal) {
	key := pos.Key()
	if ch, ok := deltas[key]; ok {
		ch.Delta = ch.Delta.Add(qty)
		return
	}
	deltas[key] = &NetChange{Position: pos, Delta: qty}
}
