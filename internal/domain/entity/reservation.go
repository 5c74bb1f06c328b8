package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una reserva.
const (
	ReservationActive   = "active"
	ReservationReleased = "released"
	ReservationConsumed = "consumed"
)

// Reservation es un apartado temporal de cantidad disponible en una posición,
// a nombre de una orden. No posee inventario: solo restringe lo que otras
// reservas pueden reclamar. Transiciones: active -> released (devuelve la
// cantidad al pool libre, sin movimiento) o active -> consumed (emite el
// movimiento de salida por la cantidad reservada).
type Reservation struct {
	ID               string
	OrderReference   string
	Position         StockPosition
	ReservedQuantity decimal.Decimal
	Status           string
	CreatedAt        time.Time
}
