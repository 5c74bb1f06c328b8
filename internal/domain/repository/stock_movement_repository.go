package repository

import (
	"time"

	"github.com/jhoicas/Bodega-ledger/internal/domain/entity"
)

// MovementFilter filtra el historial de movimientos. Cursor es el token
// keyset devuelto por la página anterior ("" = primera página).
type MovementFilter struct {
	WarehouseID   string
	ItemID        string
	BinLocationID string // coincide en origen o destino
	From          *time.Time
	To            *time.Time
	Limit         int
	Cursor        string
}

// StockMovementRepository define el puerto de persistencia del libro de
// movimientos. Solo inserta y consulta: no existe Update ni Delete.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	// FindByCorrelation devuelve los movimientos ya confirmados para la pareja
	// (correlation_id, operation_class): guarda de idempotencia del ledger.
	FindByCorrelation(correlationID, operationClass string) ([]*entity.StockMovement, error)
	// List devuelve una página ordenada por occurred_at y el cursor de la
	// siguiente ("" si no hay más).
	List(filter MovementFilter) ([]*entity.StockMovement, string, error)
}
