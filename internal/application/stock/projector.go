package stock

import (
	"time"

	"github.com/jhoicas/Bodega-ledger/internal/domain"
	"github.com/jhoicas/Bodega-ledger/internal/domain/entity"
	domstock "github.com/jhoicas/Bodega-ledger/internal/domain/stock"
)

// Projector mantiene stock_balance como proyección materializada del libro.
// Se invoca síncronamente, en la misma transacción que el append del ledger:
// nunca de forma asíncrona ni eventual, para sostener la no-negatividad
// bajo concurrencia. El ledger rechaza las correlaciones duplicadas antes
// de llegar aquí, así que el proyector nunca cuenta dos veces.
type Projector struct{}

// Apply aplica un lote de movimientos a los saldos. Netea por posición antes
// de validar cotas y bloquea las filas en orden canónico de clave.
func (Projector) Apply(r Repos, movements []*entity.StockMovement) error {
	changes := domstock.NetByPosition(movements)
	at := latestOccurredAt(movements)

	for _, ch := range changes {
		bal, err := r.Balances.GetForUpdate(ch.Position)
		if err != nil {
			return err
		}
		newOnHand := bal.QuantityOnHand.Add(ch.Delta)
		if newOnHand.IsNegative() {
			return &domain.StockShortfallError{
				Err:         domain.ErrInsufficientStock,
				PositionKey: ch.Position.Key(),
				Requested:   ch.Delta.Neg(),
				Available:   bal.QuantityOnHand,
			}
		}
		// La resta tampoco puede dejar on_hand por debajo de lo reservado.
		if newOnHand.LessThan(bal.QuantityReserved) {
			return &domain.StockShortfallError{
				Err:         domain.ErrInsufficientStock,
				PositionKey: ch.Position.Key(),
				Requested:   ch.Delta.Neg(),
				Available:   bal.Available(),
			}
		}
		bal.QuantityOnHand = newOnHand
		bal.LastMovementAt = at
		if err := r.Balances.Upsert(bal); err != nil {
			return err
		}
	}
	return nil
}

func latestOccurredAt(movements []*entity.StockMovement) time.Time {
	var at time.Time
	for _, m := range movements {
		if m.OccurredAt.After(at) {
			at = m.OccurredAt
		}
	}
	return at
}
