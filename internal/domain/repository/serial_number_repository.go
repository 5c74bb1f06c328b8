package repository

import "github.com/jhoicas/Bodega-ledger/internal/domain/entity"

// SerialNumberRepository define el puerto de persistencia para seriales.
type SerialNumberRepository interface {
	GetByID(id string) (*entity.SerialNumber, error)
	GetByCode(serialCode string) (*entity.SerialNumber, error)
	Create(serial *entity.SerialNumber) error
	UpdateStatus(id, status string) error
}
