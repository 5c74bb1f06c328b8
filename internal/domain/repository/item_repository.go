package repository

import "github.com/jhoicas/Bodega-ledger/internal/domain/entity"

// ItemRepository define el puerto de consulta de ítems (DIP).
type ItemRepository interface {
	GetByID(id string) (*entity.Item, error)
	GetBySKU(sku string) (*entity.Item, error)
}
