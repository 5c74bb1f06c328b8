package repository

import "github.com/jhoicas/Bodega-ledger/internal/domain/entity"

// LotRepository define el puerto de persistencia para lotes.
// Create se usa dentro de la transacción de recepción (ensure-on-receipt).
type LotRepository interface {
	GetByItemAndCode(itemID, lotCode string) (*entity.Lot, error)
	Create(lot *entity.Lot) error
}
