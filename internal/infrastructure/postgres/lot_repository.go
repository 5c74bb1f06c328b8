package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/Bodega-ledger/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo persistencia de lotes sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// GetByItemAndCode obtiene un lote por ítem + código (nil si no existe).
func (r *LotRepo) GetByItemAndCode(itemID, lotCode string) (*entity.Lot, error) {
	query := `
		SELECT id, item_id, lot_code, manufactured_at, expiration_date
		FROM lot WHERE item_id = $1 AND lot_code = $2`
	var l entity.Lot
	err := r.q.QueryRow(context.Background(), query, itemID, lotCode).Scan(
		&l.ID, &l.ItemID, &l.LotCode, &l.ManufacturedAt, &l.ExpirationDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return &l, nil
}

// Create persiste un lote nuevo.
func (r *LotRepo) Create(l *entity.Lot) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	query := `
		INSERT INTO lot (id, item_id, lot_code, manufactured_at, expiration_date)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		l.ID, l.ItemID, l.LotCode, l.ManufacturedAt, l.ExpirationDate,
	)
	if err != nil {
		return fmt.Errorf("create lot: %w", err)
	}
	return nil
}
