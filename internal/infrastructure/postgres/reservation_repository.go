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

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

const reservationColumns = `id, order_reference, warehouse_id, bin_location_id,
		item_id, lot_id, serial_number_id, reserved_quantity, status, created_at`

// ReservationRepo implementación de reservas sobre PostgreSQL (usable con pool o tx).
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

// Create persiste una reserva.
func (r *ReservationRepo) Create(res *entity.Reservation) error {
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_reservation (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	p := res.Position
	_, err := r.q.Exec(context.Background(), query,
		res.ID, res.OrderReference, p.WarehouseID, p.BinLocationID, p.ItemID,
		p.LotID, p.SerialNumberID, res.ReservedQuantity, res.Status, res.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

// GetByID obtiene una reserva por ID (nil si no existe).
func (r *ReservationRepo) GetByID(id string) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM inventory_reservation WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get reservation")
}

// GetForUpdate obtiene una reserva y bloquea su fila (SELECT FOR UPDATE).
func (r *ReservationRepo) GetForUpdate(id string) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM inventory_reservation WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get reservation for update")
}

// UpdateStatus cambia el estado de la reserva.
func (r *ReservationRepo) UpdateStatus(id, status string) error {
	query := `UPDATE inventory_reservation SET status = $2 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, status)
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	return nil
}

// ListActiveByPosition lista las reservas activas contra una posición.
func (r *ReservationRepo) ListActiveByPosition(p entity.StockPosition) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM inventory_reservation
		WHERE warehouse_id = $1 AND bin_location_id = $2 AND item_id = $3
		  AND lot_id = $4 AND serial_number_id = $5 AND status = $6
		ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query,
		p.WarehouseID, p.BinLocationID, p.ItemID, p.LotID, p.SerialNumberID,
		entity.ReservationActive,
	)
	if err != nil {
		return nil, fmt.Errorf("list active reservations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

func (r *ReservationRepo) scanOne(row pgxScanner, op string) (*entity.Reservation, error) {
	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func scanReservation(row pgxScanner) (*entity.Reservation, error) {
	var res entity.Reservation
	err := row.Scan(
		&res.ID, &res.OrderReference,
		&res.Position.WarehouseID, &res.Position.BinLocationID, &res.Position.ItemID,
		&res.Position.LotID, &res.Position.SerialNumberID,
		&res.ReservedQuantity, &res.Status, &res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
