package repository

import "github.com/jhoicas/Bodega-ledger/internal/domain/entity"

// ReservationRepository define el puerto de persistencia para reservas.
type ReservationRepository interface {
	Create(reservation *entity.Reservation) error
	GetByID(id string) (*entity.Reservation, error)
	// GetForUpdate bloquea la fila de la reserva (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.Reservation, error)
	UpdateStatus(id, status string) error
	// ListActiveByPosition devuelve las reservas activas contra una posición.
	ListActiveByPosition(position entity.StockPosition) ([]*entity.Reservation, error)
}
