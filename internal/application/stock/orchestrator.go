package stock

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Bodega-ledger/internal/domain"
	"github.com/jhoicas/Bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/Bodega-ledger/internal/domain/repository"
	"github.com/jhoicas/Bodega-ledger/pkg/logger"
)

// maxConflictRetries reintentos ante ErrConcurrencyConflict antes de
// devolver el error al caller. El reintento reusa el mismo correlation_id,
// así que la guarda de idempotencia impide la doble aplicación.
const maxConflictRetries = 3

// Orchestrator es el punto de entrada público del núcleo: valida la operación
// solicitada (recepción, traslado, ajuste, devolución), deriva el movimiento
// y ejecuta append + proyección (+ interacción con reservas) como una unidad
// atómica. Estados por operación: Requested -> Validated -> Committed | Rejected.
type Orchestrator struct {
	tx         TxRunner
	warehouses repository.WarehouseRepository
	items      repository.ItemRepository
	bins       repository.BinLocationRepository
	balances   repository.StockBalanceRepository
	movements  repository.StockMovementRepository
	ledger     Ledger
	projector  Projector
	log        *logger.Logger
}

// NewOrchestrator construye el orquestador. Los repositorios sueltos van
// atados al pool (lecturas y validación fuera de la transacción).
func NewOrchestrator(
	tx TxRunner,
	warehouses repository.WarehouseRepository,
	items repository.ItemRepository,
	bins repository.BinLocationRepository,
	balances repository.StockBalanceRepository,
	movements repository.StockMovementRepository,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		tx:         tx,
		warehouses: warehouses,
		items:      items,
		bins:       bins,
		balances:   balances,
		movements:  movements,
		log:        log,
	}
}

// GoodsReceiptInput entrada para una recepción externa (también devoluciones,
// vía SubmitReturn). LotCode/SerialCode se crean si no existen, dentro de la
// misma transacción del movimiento.
type GoodsReceiptInput struct {
	WarehouseID      string
	DestinationBinID string
	ItemID           string
	Quantity         decimal.Decimal
	LotCode          string
	SerialCode       string
	DocumentType     string
	DocumentID       string
	ActorID          string
	CorrelationID    string
	Notes            string
}

// TransferInput entrada para un traslado interno entre bins de una bodega.
type TransferInput struct {
	WarehouseID      string
	SourceBinID      string
	DestinationBinID string
	ItemID           string
	Quantity         decimal.Decimal
	LotID            string
	SerialNumberID   string
	ActorID          string
	CorrelationID    string
	Notes            string
}

// AdjustmentInput entrada para un ajuste manual. SignedQuantity positivo
// aumenta, negativo disminuye; ReasonNotes es obligatorio.
type AdjustmentInput struct {
	WarehouseID    string
	BinLocationID  string
	ItemID         string
	SignedQuantity decimal.Decimal
	LotID          string
	SerialNumberID string
	ReasonNotes    string
	ActorID        string
	CorrelationID  string
}

// ReturnInput entrada para recibir una devolución. Scrap=true la manda a un
// bin de descarte (return_scrap); si no, a un bin de devoluciones (return_receipt).
type ReturnInput struct {
	WarehouseID      string
	DestinationBinID string
	ItemID           string
	Quantity         decimal.Decimal
	LotCode          string
	SerialCode       string
	Scrap            bool
	DocumentID       string
	ActorID          string
	CorrelationID    string
	Notes            string
}

// SubmitGoodsReceipt registra la entrada de mercancía desde el exterior al
// bin destino. No valida disponibilidad (siempre permitida).
func (o *Orchestrator) SubmitGoodsReceipt(ctx context.Context, in GoodsReceiptInput) (string, error) {
	if in.WarehouseID == "" || in.DestinationBinID == "" || in.ItemID == "" ||
		in.CorrelationID == "" || !in.Quantity.GreaterThan(decimal.Zero) {
		return "", domain.ErrInvalidInput
	}
	item, err := o.validateCatalog(in.WarehouseID, in.ItemID)
	if err != nil {
		return "", err
	}
	if item.IsLotTracked && in.LotCode == "" {
		return "", domain.ErrLotRequired
	}
	if item.IsSerialNumberTracked && in.SerialCode == "" {
		return "", domain.ErrSerialRequired
	}
	if _, err := o.validateBin(in.WarehouseID, in.DestinationBinID, ""); err != nil {
		return "", err
	}

	return o.commitReceipt(ctx, OpClassGoodsReceipt, entity.ReasonGoodsReceipt, item, in)
}

// SubmitReturn registra una devolución (destino externo -> bin de returns o
// scrap). Misma validación de lote/serial que la recepción.
func (o *Orchestrator) SubmitReturn(ctx context.Context, in ReturnInput) (string, error) {
	if in.WarehouseID == "" || in.DestinationBinID == "" || in.ItemID == "" ||
		in.CorrelationID == "" || !in.Quantity.GreaterThan(decimal.Zero) {
		return "", domain.ErrInvalidInput
	}
	item, err := o.validateCatalog(in.WarehouseID, in.ItemID)
	if err != nil {
		return "", err
	}
	if item.IsLotTracked && in.LotCode == "" {
		return "", domain.ErrLotRequired
	}
	if item.IsSerialNumberTracked && in.SerialCode == "" {
		return "", domain.ErrSerialRequired
	}
	zone := entity.ZoneReturns
	reason := entity.ReasonReturnReceipt
	class := OpClassReturnReceipt
	if in.Scrap {
		zone = entity.ZoneScrap
		reason = entity.ReasonReturnScrap
		class = OpClassReturnScrap
	}
	if _, err := o.validateBin(in.WarehouseID, in.DestinationBinID, zone); err != nil {
		return "", err
	}

	receipt := GoodsReceiptInput{
		WarehouseID:      in.WarehouseID,
		DestinationBinID: in.DestinationBinID,
		ItemID:           in.ItemID,
		Quantity:         in.Quantity,
		LotCode:          in.LotCode,
		SerialCode:       in.SerialCode,
		DocumentType:     "return_order",
		DocumentID:       in.DocumentID,
		ActorID:          in.ActorID,
		CorrelationID:    in.CorrelationID,
		Notes:            in.Notes,
	}
	return o.commitReceipt(ctx, class, reason, item, receipt)
}

// commitReceipt resuelve lote/serial (ensure-on-receipt) y confirma el
// movimiento de entrada dentro de una transacción con reintento acotado.
func (o *Orchestrator) commitReceipt(ctx context.Context, class, reason string, item *entity.Item, in GoodsReceiptInput) (string, error) {
	var result AppendResult
	err := o.runWithRetry(ctx, func(r Repos) error {
		lotID, serialID, err := o.ensureLotAndSerial(r, item, in.LotCode, in.SerialCode)
		if err != nil {
			return err
		}
		scrapped := reason == entity.ReasonReturnScrap
		mov := &entity.StockMovement{
			OccurredAt:         time.Now(),
			WarehouseID:        in.WarehouseID,
			DestinationBinID:   in.DestinationBinID,
			ItemID:             in.ItemID,
			LotID:              lotID,
			SerialNumberID:     serialID,
			Quantity:           in.Quantity,
			UnitOfMeasure:      item.UnitOfMeasure,
			Reason:             reason,
			DocumentType:       in.DocumentType,
			DocumentID:         in.DocumentID,
			ActorID:            in.ActorID,
			TriggerSource:      "user:" + in.ActorID,
			TransactionGroupID: uuid.New().String(),
			CorrelationID:      in.CorrelationID,
			Notes:              in.Notes,
		}
		appended, err := o.ledger.Append(r, class, []*entity.StockMovement{mov})
		if err != nil {
			return err
		}
		result = *appended
		if appended.Duplicate {
			return nil
		}
		if err := o.projector.Apply(r, []*entity.StockMovement{mov}); err != nil {
			return err
		}
		if serialID != "" {
			status := entity.SerialInStock
			if scrapped {
				status = entity.SerialScrapped
			}
			if err := r.Serials.UpdateStatus(serialID, status); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return o.recoverDuplicate(err, in.CorrelationID, class)
	}
	o.logCommit(class, result)
	return result.MovementIDs[0], nil
}

// SubmitInternalTransfer registra un traslado entre dos bins de la misma
// bodega como un único movimiento con origen y destino. La suficiencia del
// origen la valida el proyector contra el neto del lote.
func (o *Orchestrator) SubmitInternalTransfer(ctx context.Context, in TransferInput) (string, error) {
	if in.WarehouseID == "" || in.SourceBinID == "" || in.DestinationBinID == "" ||
		in.ItemID == "" || in.CorrelationID == "" || !in.Quantity.GreaterThan(decimal.Zero) {
		return "", domain.ErrInvalidInput
	}
	if in.SourceBinID == in.DestinationBinID {
		return "", domain.ErrInvalidInput
	}
	item, err := o.validateCatalog(in.WarehouseID, in.ItemID)
	if err != nil {
		return "", err
	}
	if item.IsLotTracked && in.LotID == "" {
		return "", domain.ErrLotRequired
	}
	if item.IsSerialNumberTracked && in.SerialNumberID == "" {
		return "", domain.ErrSerialRequired
	}
	if _, err := o.validateBin(in.WarehouseID, in.SourceBinID, ""); err != nil {
		return "", err
	}
	if _, err := o.validateBin(in.WarehouseID, in.DestinationBinID, ""); err != nil {
		return "", err
	}

	var result AppendResult
	err = o.runWithRetry(ctx, func(r Repos) error {
		mov := &entity.StockMovement{
			OccurredAt:         time.Now(),
			WarehouseID:        in.WarehouseID,
			SourceBinID:        in.SourceBinID,
			DestinationBinID:   in.DestinationBinID,
			ItemID:             in.ItemID,
			LotID:              in.LotID,
			SerialNumberID:     in.SerialNumberID,
			Quantity:           in.Quantity,
			UnitOfMeasure:      item.UnitOfMeasure,
			Reason:             entity.ReasonInternalTransfer,
			ActorID:            in.ActorID,
			TriggerSource:      "user:" + in.ActorID,
			TransactionGroupID: uuid.New().String(),
			CorrelationID:      in.CorrelationID,
			Notes:              in.Notes,
		}
		appended, err := o.ledger.Append(r, OpClassInternalTransfer, []*entity.StockMovement{mov})
		if err != nil {
			return err
		}
		result = *appended
		if appended.Duplicate {
			return nil
		}
		return o.projector.Apply(r, []*entity.StockMovement{mov})
	})
	if err != nil {
		return o.recoverDuplicate(err, in.CorrelationID, OpClassInternalTransfer)
	}
	o.logCommit(OpClassInternalTransfer, result)
	return result.MovementIDs[0], nil
}

// SubmitManualAdjustment registra un ajuste manual. Cantidad con signo:
// positiva entra desde el exterior, negativa sale hacia el exterior (la
// disminución la valida el proyector). Las notas de razón son obligatorias.
func (o *Orchestrator) SubmitManualAdjustment(ctx context.Context, in AdjustmentInput) (string, error) {
	if in.WarehouseID == "" || in.BinLocationID == "" || in.ItemID == "" ||
		in.CorrelationID == "" || in.SignedQuantity.IsZero() {
		return "", domain.ErrInvalidInput
	}
	if in.ReasonNotes == "" {
		return "", domain.ErrNotesRequired
	}
	item, err := o.validateCatalog(in.WarehouseID, in.ItemID)
	if err != nil {
		return "", err
	}
	if item.IsLotTracked && in.LotID == "" {
		return "", domain.ErrLotRequired
	}
	if item.IsSerialNumberTracked && in.SerialNumberID == "" {
		return "", domain.ErrSerialRequired
	}
	if _, err := o.validateBin(in.WarehouseID, in.BinLocationID, ""); err != nil {
		return "", err
	}

	var result AppendResult
	err = o.runWithRetry(ctx, func(r Repos) error {
		mov := &entity.StockMovement{
			OccurredAt:         time.Now(),
			WarehouseID:        in.WarehouseID,
			ItemID:             in.ItemID,
			LotID:              in.LotID,
			SerialNumberID:     in.SerialNumberID,
			Quantity:           in.SignedQuantity.Abs(),
			UnitOfMeasure:      item.UnitOfMeasure,
			Reason:             entity.ReasonManualAdjustment,
			ActorID:            in.ActorID,
			TriggerSource:      "user:" + in.ActorID,
			TransactionGroupID: uuid.New().String(),
			CorrelationID:      in.CorrelationID,
			Notes:              in.ReasonNotes,
		}
		if in.SignedQuantity.IsNegative() {
			mov.SourceBinID = in.BinLocationID
		} else {
			mov.DestinationBinID = in.BinLocationID
		}
		appended, err := o.ledger.Append(r, OpClassManualAdjustment, []*entity.StockMovement{mov})
		if err != nil {
			return err
		}
		result = *appended
		if appended.Duplicate {
			return nil
		}
		return o.projector.Apply(r, []*entity.StockMovement{mov})
	})
	if err != nil {
		return o.recoverDuplicate(err, in.CorrelationID, OpClassManualAdjustment)
	}
	o.logCommit(OpClassManualAdjustment, result)
	return result.MovementIDs[0], nil
}

// SubmitSalesIssue salida de venta directa: siempre rechazada. La emisión de
// ventas se produce exclusivamente consumiendo una reserva activa
// (ReservationEngine.Consume), para que nada se despache sin pasar por la
// verificación de disponibilidad.
func (o *Orchestrator) SubmitSalesIssue(ctx context.Context) (string, error) {
	return "", domain.ErrReservationRequired
}

// GetBalance devuelve el saldo actual de una posición (cero si no hay fila).
func (o *Orchestrator) GetBalance(ctx context.Context, position entity.StockPosition) (*entity.StockBalance, error) {
	if !position.IsComplete() {
		return nil, domain.ErrInvalidInput
	}
	return o.balances.Get(position)
}

// ListBalances devuelve los saldos con existencia de una bodega.
func (o *Orchestrator) ListBalances(ctx context.Context, warehouseID string, filter repository.BalanceFilter) ([]*entity.StockBalance, error) {
	if warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	return o.balances.ListByWarehouse(warehouseID, filter)
}

// GetItemBySKU resuelve un ítem por su SKU.
func (o *Orchestrator) GetItemBySKU(ctx context.Context, sku string) (*entity.Item, error) {
	if sku == "" {
		return nil, domain.ErrInvalidInput
	}
	item, err := o.items.GetBySKU(sku)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// ListMovements devuelve una página del historial de movimientos y el cursor
// de la siguiente.
func (o *Orchestrator) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, string, error) {
	if filter.WarehouseID == "" {
		return nil, "", domain.ErrInvalidInput
	}
	return o.movements.List(filter)
}

// validateCatalog verifica bodega activa e ítem activo.
func (o *Orchestrator) validateCatalog(warehouseID, itemID string) (*entity.Item, error) {
	wh, err := o.warehouses.GetByID(warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || !wh.IsActive {
		return nil, domain.ErrNotFound
	}
	item, err := o.items.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.Status != entity.ItemActive {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// validateBin verifica que el bin exista, pertenezca a la bodega y, si se
// exige, tenga la función de zona indicada.
func (o *Orchestrator) validateBin(warehouseID, binID, requiredZone string) (*entity.BinLocation, error) {
	bin, err := o.bins.GetByID(binID)
	if err != nil {
		return nil, err
	}
	if bin == nil || bin.WarehouseID != warehouseID {
		return nil, domain.ErrNotFound
	}
	if requiredZone != "" && bin.ZoneFunction != requiredZone {
		return nil, domain.ErrInvalidInput
	}
	return bin, nil
}

// ensureLotAndSerial resuelve los códigos de lote/serial a IDs, creando las
// filas si no existen (dentro de la transacción del movimiento).
func (o *Orchestrator) ensureLotAndSerial(r Repos, item *entity.Item, lotCode, serialCode string) (lotID, serialID string, err error) {
	if lotCode != "" {
		lot, err := r.Lots.GetByItemAndCode(item.ID, lotCode)
		if err != nil {
			return "", "", err
		}
		if lot == nil {
			lot = &entity.Lot{ID: uuid.New().String(), ItemID: item.ID, LotCode: lotCode}
			if err := r.Lots.Create(lot); err != nil {
				return "", "", err
			}
		}
		lotID = lot.ID
	}
	if serialCode != "" {
		serial, err := r.Serials.GetByCode(serialCode)
		if err != nil {
			return "", "", err
		}
		if serial == nil {
			serial = &entity.SerialNumber{
				ID:         uuid.New().String(),
				ItemID:     item.ID,
				SerialCode: serialCode,
				LotID:      lotID,
				Status:     entity.SerialInStock,
			}
			if err := r.Serials.Create(serial); err != nil {
				return "", "", err
			}
		}
		serialID = serial.ID
	}
	return lotID, serialID, nil
}

// recoverDuplicate resuelve la carrera entre dos procesos con la misma
// correlación: el perdedor pasa la verificación previa (todavía no ve al
// ganador), choca con el índice único al insertar y recibe
// ErrDuplicateCorrelation. El reintento idempotente promete los IDs del
// movimiento ya confirmado, así que se repite la búsqueda por correlación,
// ahora con el ganador visible, y se devuelve su ID en lugar del error.
func (o *Orchestrator) recoverDuplicate(err error, correlationID, class string) (string, error) {
	if !errors.Is(err, domain.ErrDuplicateCorrelation) {
		return "", err
	}
	prior, findErr := o.movements.FindByCorrelation(correlationID, class)
	if findErr != nil || len(prior) == 0 {
		return "", err
	}
	o.log.Info().Str("operation", class).Str("correlation_id", correlationID).
		Msg("correlación ya confirmada por otro proceso")
	return prior[0].ID, nil
}

// runWithRetry ejecuta la transacción y reintenta solo ante
// ErrConcurrencyConflict (lock-wait/deadlock), un número acotado de veces.
func (o *Orchestrator) runWithRetry(ctx context.Context, fn func(r Repos) error) error {
	attempt := 0
	op := func() error {
		err := o.tx.Run(ctx, fn)
		if err != nil && !errors.Is(err, domain.ErrConcurrencyConflict) {
			return backoff.Permanent(err)
		}
		if err != nil {
			attempt++
			o.log.Warn().Int("attempt", attempt).Err(err).Msg("conflicto de concurrencia, reintentando")
		}
		return err
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxConflictRetries), ctx)
	return backoff.Retry(op, bo)
}

func (o *Orchestrator) logCommit(class string, result AppendResult) {
	evt := o.log.Info().Str("operation", class).Strs("movement_ids", result.MovementIDs)
	if result.Duplicate {
		evt.Bool("duplicate", true)
	}
	evt.Msg("operación confirmada")
}
