package postgres

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Bodega-ledger/internal/domain"
	"github.com/jhoicas/Bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/Bodega-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, occurred_at, warehouse_id, source_bin_location_id,
		destination_bin_location_id, item_id, lot_id, serial_number_id, quantity,
		unit_of_measure, reason, operation_class, document_type, document_id,
		actor_id, trigger_source, transaction_group_id, correlation_id, notes`

// StockMovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). La tabla es append-only: no hay UPDATE ni DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta un movimiento. La violación del índice único
// (correlation_id, operation_class) se mapea a ErrDuplicateCorrelation:
// otro worker confirmó la misma operación entre la verificación y el insert.
func (r *StockMovementRepo) Create(m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movement (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.OccurredAt, m.WarehouseID, m.SourceBinID, m.DestinationBinID,
		m.ItemID, m.LotID, m.SerialNumberID, m.Quantity, m.UnitOfMeasure,
		m.Reason, m.OperationClass, m.DocumentType, m.DocumentID, m.ActorID,
		m.TriggerSource, m.TransactionGroupID, m.CorrelationID, m.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrDuplicateCorrelation, err)
		}
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID (nil si no existe).
func (r *StockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movement WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// FindByCorrelation devuelve los movimientos confirmados para la pareja
// (correlation_id, operation_class), en orden de inserción.
func (r *StockMovementRepo) FindByCorrelation(correlationID, operationClass string) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movement
		WHERE correlation_id = $1 AND operation_class = $2
		ORDER BY occurred_at, id`
	rows, err := r.q.Query(context.Background(), query, correlationID, operationClass)
	if err != nil {
		return nil, fmt.Errorf("find by correlation: %w", err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

// List devuelve una página de movimientos ordenada por (occurred_at, id) y el
// cursor keyset de la siguiente página ("" si no hay más). El cursor keyset
// es reiniciable: una página no se ve afectada por inserciones anteriores.
func (r *StockMovementRepo) List(f repository.MovementFilter) ([]*entity.StockMovement, string, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movement WHERE warehouse_id = $1`
	args := []any{f.WarehouseID}
	pos := 2
	if f.ItemID != "" {
		query += fmt.Sprintf(" AND item_id = $%d", pos)
		args = append(args, f.ItemID)
		pos++
	}
	if f.BinLocationID != "" {
		query += fmt.Sprintf(" AND (source_bin_location_id = $%d OR destination_bin_location_id = $%d)", pos, pos)
		args = append(args, f.BinLocationID)
		pos++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND occurred_at >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND occurred_at <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	if f.Cursor != "" {
		cursorAt, cursorID, err := decodeCursor(f.Cursor)
		if err != nil {
			return nil, "", domain.ErrInvalidInput
		}
		query += fmt.Sprintf(" AND (occurred_at, id) > ($%d, $%d)", pos, pos+1)
		args = append(args, cursorAt, cursorID)
		pos += 2
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY occurred_at, id LIMIT $%d", pos)
	args = append(args, limit+1) // una fila extra para saber si hay más

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	list, err := collectMovements(rows)
	if err != nil {
		return nil, "", err
	}
	next := ""
	if len(list) > limit {
		list = list[:limit]
		last := list[len(list)-1]
		next = encodeCursor(last.OccurredAt, last.ID)
	}
	return list, next, nil
}

func encodeCursor(at time.Time, id string) string {
	raw := at.UTC().Format(time.RFC3339Nano) + "|" + id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (time.Time, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, "", err
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, "", fmt.Errorf("cursor malformado")
	}
	at, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return time.Time{}, "", err
	}
	return at, parts[1], nil
}

func scanMovement(row pgxScanner) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(
		&m.ID, &m.OccurredAt, &m.WarehouseID, &m.SourceBinID, &m.DestinationBinID,
		&m.ItemID, &m.LotID, &m.SerialNumberID, &m.Quantity, &m.UnitOfMeasure,
		&m.Reason, &m.OperationClass, &m.DocumentType, &m.DocumentID, &m.ActorID,
		&m.TriggerSource, &m.TransactionGroupID, &m.CorrelationID, &m.Notes,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func collectMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

type pgxScanner interface {
	Scan(dest ...any) error
}
