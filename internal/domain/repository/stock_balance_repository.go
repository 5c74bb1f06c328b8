package repository

import "github.com/jhoicas/Bodega-ledger/internal/domain/entity"

// BalanceFilter filtra el listado de saldos de una bodega.
type BalanceFilter struct {
	ItemID        string
	BinLocationID string
	LotID         string
	Limit         int
	Offset        int
}

// StockBalanceRepository define el puerto para la proyección de saldos.
// Mutado únicamente por el proyector/motor de reservas dentro de transacciones.
type StockBalanceRepository interface {
	// Get devuelve el saldo de la posición; si no existe fila devuelve un
	// saldo en cero (la fila se crea perezosamente con el primer Upsert).
	Get(position entity.StockPosition) (*entity.StockBalance, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) antes de devolverla.
	GetForUpdate(position entity.StockPosition) (*entity.StockBalance, error)
	Upsert(balance *entity.StockBalance) error
	// ListByWarehouse devuelve los saldos con existencia de una bodega.
	ListByWarehouse(warehouseID string, filter BalanceFilter) ([]*entity.StockBalance, error)
}
