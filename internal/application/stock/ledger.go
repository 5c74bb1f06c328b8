package stock

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Bodega-ledger/internal/domain"
	"github.com/jhoicas/Bodega-ledger/internal/domain/entity"
)

// Clases de operación, parte de la llave de idempotencia (correlation_id +
// operation_class). Un reintento con la misma pareja devuelve los IDs ya
// producidos en lugar de duplicar el efecto.
const (
	OpClassGoodsReceipt       = "goods_receipt"
	OpClassInternalTransfer   = "internal_transfer"
	OpClassManualAdjustment   = "manual_adjustment"
	OpClassReturnReceipt      = "return_receipt"
	OpClassReturnScrap        = "return_scrap"
	OpClassConsumeReservation = "consume_reservation"
)

// Ledger anexa movimientos al libro append-only. No conoce saldos: la
// proyección la hace Projector dentro de la misma transacción.
type Ledger struct{}

// AppendResult resultado de un Append.
type AppendResult struct {
	MovementIDs []string
	// Duplicate indica que la correlación ya estaba confirmada para esta
	// clase de operación; MovementIDs son los IDs previos y no se insertó nada.
	Duplicate bool
}

// Append valida e inserta un lote de movimientos de un mismo
// transaction_group de forma atómica (la tx la delimita el caller).
// Si la correlación ya fue confirmada devuelve los IDs previos (Duplicate).
func (Ledger) Append(r Repos, operationClass string, movements []*entity.StockMovement) (*AppendResult, error) {
	if len(movements) == 0 || operationClass == "" {
		return nil, domain.ErrInvalidInput
	}
	groupID := movements[0].TransactionGroupID
	correlationID := movements[0].CorrelationID
	if groupID == "" || correlationID == "" {
		return nil, domain.ErrInvalidInput
	}
	for _, m := range movements {
		if m.TransactionGroupID != groupID || m.CorrelationID != correlationID {
			return nil, domain.ErrInvalidInput
		}
		if err := validateMovement(m); err != nil {
			return nil, err
		}
	}

	// Guarda de idempotencia: la correlación ya confirmada no se re-aplica.
	prior, err := r.Movements.FindByCorrelation(correlationID, operationClass)
	if err != nil {
		return nil, err
	}
	if len(prior) > 0 {
		ids := make([]string, 0, len(prior))
		for _, m := range prior {
			ids = append(ids, m.ID)
		}
		return &AppendResult{MovementIDs: ids, Duplicate: true}, nil
	}

	ids := make([]string, 0, len(movements))
	for _, m := range movements {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		m.OperationClass = operationClass
		if err := r.Movements.Create(m); err != nil {
			return nil, err
		}
		ids = append(ids, m.ID)
	}
	return &AppendResult{MovementIDs: ids}, nil
}

// validateMovement verifica la invariante estructural de un movimiento:
// cantidad estrictamente positiva, razón reconocida, al menos un bin
// (ambos ausentes es inválido) y cantidad 1 exacta si lleva serial.
func validateMovement(m *entity.StockMovement) error {
	if m.WarehouseID == "" || m.ItemID == "" {
		return domain.ErrInvalidInput
	}
	if !m.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if !entity.ValidReason(m.Reason) {
		return domain.ErrInvalidInput
	}
	if m.SourceBinID == "" && m.DestinationBinID == "" {
		return domain.ErrInvalidInput
	}
	if m.SerialNumberID != "" && !m.Quantity.Equal(decimal.NewFromInt(1)) {
		return domain.ErrInvalidInput
	}
	return nil
}
