package repository

import "github.com/jhoicas/Bodega-ledger/internal/domain/entity"

// WarehouseRepository define el puerto de consulta de bodegas (DIP).
// El CRUD de catálogo vive fuera del núcleo; aquí solo se lee.
type WarehouseRepository interface {
	GetByID(id string) (*entity.Warehouse, error)
}
