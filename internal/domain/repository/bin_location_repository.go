package repository

import "github.com/jhoicas/Bodega-ledger/internal/domain/entity"

// BinLocationRepository define el puerto de consulta de ubicaciones (DIP).
type BinLocationRepository interface {
	GetByID(id string) (*entity.BinLocation, error)
}
