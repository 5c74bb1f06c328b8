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

var _ repository.SerialNumberRepository = (*SerialNumberRepo)(nil)

// SerialNumberRepo persistencia de seriales sobre PostgreSQL (usable con pool o tx).
type SerialNumberRepo struct {
	q Querier
}

// NewSerialNumberRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSerialNumberRepository(q Querier) *SerialNumberRepo {
	return &SerialNumberRepo{q: q}
}

// GetByID obtiene un serial por ID (nil si no existe).
func (r *SerialNumberRepo) GetByID(id string) (*entity.SerialNumber, error) {
	query := `
		SELECT id, item_id, serial_code, lot_id, status
		FROM serial_number WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get serial")
}

// GetByCode obtiene un serial por código (nil si no existe).
func (r *SerialNumberRepo) GetByCode(serialCode string) (*entity.SerialNumber, error) {
	query := `
		SELECT id, item_id, serial_code, lot_id, status
		FROM serial_number WHERE serial_code = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, serialCode), "get serial by code")
}

// Create persiste un serial nuevo.
func (r *SerialNumberRepo) Create(s *entity.SerialNumber) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	query := `
		INSERT INTO serial_number (id, item_id, serial_code, lot_id, status)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query, s.ID, s.ItemID, s.SerialCode, s.LotID, s.Status)
	if err != nil {
		return fmt.Errorf("create serial: %w", err)
	}
	return nil
}

// UpdateStatus cambia el estado del serial (in_stock, shipped, scrapped).
func (r *SerialNumberRepo) UpdateStatus(id, status string) error {
	query := `UPDATE serial_number SET status = $2 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, status)
	if err != nil {
		return fmt.Errorf("update serial status: %w", err)
	}
	return nil
}

func (r *SerialNumberRepo) scanOne(row pgxScanner, op string) (*entity.SerialNumber, error) {
	var s entity.SerialNumber
	err := row.Scan(&s.ID, &s.ItemID, &s.SerialCode, &s.LotID, &s.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &s, nil
}
