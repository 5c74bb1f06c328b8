package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance es la proyección materializada del saldo en una posición,
// derivada de los movimientos. Se crea perezosamente con el primer movimiento
// que toca la posición; nunca se borra (puede decaer a cero). Invariantes tras
// cada transacción confirmada: on_hand >= 0 y 0 <= reserved <= on_hand.
type StockBalance struct {
	Position         StockPosition
	QuantityOnHand   decimal.Decimal
	QuantityReserved decimal.Decimal
	LastMovementAt   time.Time
}

// Available devuelve la cantidad libre (on_hand - reserved).
func (b *StockBalance) Available() decimal.Decimal {
	return b.QuantityOnHand.Sub(b.QuantityReserved)
}
