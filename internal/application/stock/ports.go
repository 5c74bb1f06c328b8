package stock

import (
	"context"

	"github.com/jhoicas/Bodega-ledger/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción de BD.
type Repos struct {
	Movements    repository.StockMovementRepository
	Balances     repository.StockBalanceRepository
	Reservations repository.ReservationRepository
	Items        repository.ItemRepository
	Warehouses   repository.WarehouseRepository
	Bins         repository.BinLocationRepository
	Lots         repository.LotRepository
	Serials      repository.SerialNumberRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD, pasando repositorios
// atados a esa tx. La frontera de la transacción es la unidad de atomicidad:
// append del ledger, proyección de saldos y cambios de reserva confirman o
// se revierten juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
