package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/Bodega-ledger/internal/domain/repository"
)

var _ repository.StockBalanceRepository = (*StockBalanceRepo)(nil)

// StockBalanceRepo implementación de la proyección de saldos sobre PostgreSQL
// (usable con pool o tx). lot_id/serial_number_id ausentes se guardan como
// cadena vacía (NOT NULL): la llave única de cinco campos compara exacto,
// sin ambigüedad NULL = NULL.
type StockBalanceRepo struct {
	q Querier
}

// NewStockBalanceRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewStockBalanceRepository(q Querier) *StockBalanceRepo {
	return &StockBalanceRepo{q: q}
}

const balanceColumns = `warehouse_id, bin_location_id, item_id, lot_id,
		serial_number_id, quantity_on_hand, quantity_reserved, last_movement_at`

const balanceWhere = `
		WHERE warehouse_id = $1 AND bin_location_id = $2 AND item_id = $3
		  AND lot_id = $4 AND serial_number_id = $5`

// Get obtiene el saldo de una posición. Si no hay fila devuelve saldo cero:
// la fila se crea perezosamente con el primer movimiento.
func (r *StockBalanceRepo) Get(p entity.StockPosition) (*entity.StockBalance, error) {
	query := `SELECT ` + balanceColumns + ` FROM stock_balance` + balanceWhere
	b, err := r.scanOne(r.q.QueryRow(context.Background(), query,
		p.WarehouseID, p.BinLocationID, p.ItemID, p.LotID, p.SerialNumberID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zeroBalance(p), nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

// GetForUpdate obtiene el saldo y bloquea la fila (SELECT FOR UPDATE). El
// bloqueo serializa los escritores sobre la misma posición; posiciones
// disjuntas no se bloquean entre sí.
//
// La fila se asegura antes del SELECT: FOR UPDATE sobre una fila inexistente
// no bloquea nada, y dos primeros movimientos concurrentes sobre la misma
// posición vacía leerían ambos cero y el segundo pisaría el saldo del
// primero. El INSERT ... ON CONFLICT DO NOTHING serializa a los dos sobre la
// llave primaria y el SELECT posterior ya encuentra (y bloquea) la fila.
func (r *StockBalanceRepo) GetForUpdate(p entity.StockPosition) (*entity.StockBalance, error) {
	ensure := `
		INSERT INTO stock_balance (warehouse_id, bin_location_id, item_id, lot_id,
			serial_number_id, quantity_on_hand, quantity_reserved)
		VALUES ($1, $2, $3, $4, $5, 0, 0)
		ON CONFLICT (warehouse_id, bin_location_id, item_id, lot_id, serial_number_id)
		DO NOTHING`
	if _, err := r.q.Exec(context.Background(), ensure,
		p.WarehouseID, p.BinLocationID, p.ItemID, p.LotID, p.SerialNumberID); err != nil {
		return nil, fmt.Errorf("ensure balance row: %w", err)
	}
	query := `SELECT ` + balanceColumns + ` FROM stock_balance` + balanceWhere + `
		FOR UPDATE`
	b, err := r.scanOne(r.q.QueryRow(context.Background(), query,
		p.WarehouseID, p.BinLocationID, p.ItemID, p.LotID, p.SerialNumberID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zeroBalance(p), nil
		}
		return nil, fmt.Errorf("get balance for update: %w", err)
	}
	return b, nil
}

// Upsert inserta o actualiza el saldo de la posición.
func (r *StockBalanceRepo) Upsert(b *entity.StockBalance) error {
	query := `
		INSERT INTO stock_balance (warehouse_id, bin_location_id, item_id, lot_id,
			serial_number_id, quantity_on_hand, quantity_reserved, last_movement_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (warehouse_id, bin_location_id, item_id, lot_id, serial_number_id)
		DO UPDATE SET quantity_on_hand = EXCLUDED.quantity_on_hand,
			quantity_reserved = EXCLUDED.quantity_reserved,
			last_movement_at = EXCLUDED.last_movement_at`
	p := b.Position
	_, err := r.q.Exec(context.Background(), query,
		p.WarehouseID, p.BinLocationID, p.ItemID, p.LotID, p.SerialNumberID,
		b.QuantityOnHand, b.QuantityReserved, b.LastMovementAt,
	)
	if err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}
	return nil
}

// ListByWarehouse lista los saldos con existencia de una bodega.
func (r *StockBalanceRepo) ListByWarehouse(warehouseID string, f repository.BalanceFilter) ([]*entity.StockBalance, error) {
	query := `SELECT ` + balanceColumns + `
		FROM stock_balance WHERE warehouse_id = $1 AND quantity_on_hand > 0`
	args := []any{warehouseID}
	pos := 2
	if f.ItemID != "" {
		query += fmt.Sprintf(" AND item_id = $%d", pos)
		args = append(args, f.ItemID)
		pos++
	}
	if f.BinLocationID != "" {
		query += fmt.Sprintf(" AND bin_location_id = $%d", pos)
		args = append(args, f.BinLocationID)
		pos++
	}
	if f.LotID != "" {
		query += fmt.Sprintf(" AND lot_id = $%d", pos)
		args = append(args, f.LotID)
		pos++
	}
	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	query += fmt.Sprintf(" ORDER BY bin_location_id, item_id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, f.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockBalance
	for rows.Next() {
		b, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func (r *StockBalanceRepo) scanOne(row pgxScanner) (*entity.StockBalance, error) {
	var b entity.StockBalance
	err := row.Scan(
		&b.Position.WarehouseID, &b.Position.BinLocationID, &b.Position.ItemID,
		&b.Position.LotID, &b.Position.SerialNumberID,
		&b.QuantityOnHand, &b.QuantityReserved, &b.LastMovementAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func zeroBalance(p entity.StockPosition) *entity.StockBalance {
	return &entity.StockBalance{
		Position:         p,
		QuantityOnHand:   decimal.Zero,
		QuantityReserved: decimal.Zero,
	}
}
