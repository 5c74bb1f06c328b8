package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/Bodega-ledger/internal/domain/repository"
)

var _ repository.BinLocationRepository = (*BinLocationRepo)(nil)

// BinLocationRepo consulta de ubicaciones sobre PostgreSQL (usable con pool o tx).
type BinLocationRepo struct {
	q Querier
}

// NewBinLocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBinLocationRepository(q Querier) *BinLocationRepo {
	return &BinLocationRepo{q: q}
}

// GetByID obtiene una ubicación por ID (nil si no existe).
func (r *BinLocationRepo) GetByID(id string) (*entity.BinLocation, error) {
	query := `
		SELECT id, warehouse_id, code, bin_type, zone_function, is_pick_face
		FROM bin_location WHERE id = $1`
	var b entity.BinLocation
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&b.ID, &b.WarehouseID, &b.Code, &b.BinType, &b.ZoneFunction, &b.IsPickFace,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bin location: %w", err)
	}
	return &b, nil
}
