package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Bodega-ledger/internal/domain"
	"github.com/jhoicas/Bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/Bodega-ledger/pkg/logger"
)

// ReservationEngine aparta, libera y consume cantidad contra saldos a nombre
// de órdenes pendientes. Las reservas no tocan el ledger hasta el consumo.
// Contención por posición: primero-en-confirmar gana; los intentos se
// serializan con el bloqueo de la fila de saldo (SELECT FOR UPDATE).
type ReservationEngine struct {
	tx        TxRunner
	ledger    Ledger
	projector Projector
	log       *logger.Logger
}

// NewReservationEngine construye el motor de reservas.
func NewReservationEngine(tx TxRunner, log *logger.Logger) *ReservationEngine {
	return &ReservationEngine{tx: tx, log: log}
}

// Reserve aparta quantity en la posición para orderReference. Solo procede si
// on_hand - reserved >= quantity, evaluado bajo el lock de la fila de saldo:
// dos reservas concurrentes sobre la misma posición nunca sobre-reservan.
func (e *ReservationEngine) Reserve(ctx context.Context, position entity.StockPosition, quantity decimal.Decimal, orderReference string) (string, error) {
	if !position.IsComplete() || orderReference == "" || !quantity.GreaterThan(decimal.Zero) {
		return "", domain.ErrInvalidInput
	}

	var reservationID string
	err := e.tx.Run(ctx, func(r Repos) error {
		bal, err := r.Balances.GetForUpdate(position)
		if err != nil {
			return err
		}
		if bal.Available().LessThan(quantity) {
			return &domain.StockShortfallError{
				Err:         domain.ErrInsufficientAvailable,
				PositionKey: position.Key(),
				Requested:   quantity,
				Available:   bal.Available(),
			}
		}
		res := &entity.Reservation{
			ID:               uuid.New().String(),
			OrderReference:   orderReference,
			Position:         position,
			ReservedQuantity: quantity,
			Status:           entity.ReservationActive,
			CreatedAt:        time.Now(),
		}
		if err := r.Reservations.Create(res); err != nil {
			return err
		}
		bal.QuantityReserved = bal.QuantityReserved.Add(quantity)
		if err := r.Balances.Upsert(bal); err != nil {
			return err
		}
		reservationID = res.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	e.log.Info().
		Str("reservation_id", reservationID).
		Str("order_reference", orderReference).
		Str("position", position.Key()).
		Str("quantity", quantity.String()).
		Msg("reserva creada")
	return reservationID, nil
}

// Release transiciona una reserva active -> released y devuelve la cantidad
// al pool libre. No produce ningún movimiento.
func (e *ReservationEngine) Release(ctx context.Context, reservationID string) error {
	if reservationID == "" {
		return domain.ErrInvalidInput
	}
	err := e.tx.Run(ctx, func(r Repos) error {
		res, err := r.Reservations.GetForUpdate(reservationID)
		if err != nil {
			return err
		}
		if res == nil {
			return domain.ErrNotFound
		}
		if res.Status != entity.ReservationActive {
			return domain.ErrInvalidState
		}
		bal, err := r.Balances.GetForUpdate(res.Position)
		if err != nil {
			return err
		}
		bal.QuantityReserved = bal.QuantityReserved.Sub(res.ReservedQuantity)
		if err := r.Balances.Upsert(bal); err != nil {
			return err
		}
		return r.Reservations.UpdateStatus(reservationID, entity.ReservationReleased)
	})
	if err != nil {
		return err
	}
	e.log.Info().Str("reservation_id", reservationID).Msg("reserva liberada")
	return nil
}

// Consume transiciona una reserva active -> consumed y emite, por la vía
// estándar ledger+proyector, exactamente un movimiento de salida sales_issue
// por la cantidad reservada (origen = posición de la reserva, destino = mundo
// exterior). Si quantity viene y difiere de lo reservado, se rechaza: el
// consumo parcial se modela liberando y re-reservando el resto.
func (e *ReservationEngine) Consume(ctx context.Context, reservationID, actorID, correlationID string, quantity *decimal.Decimal) (string, error) {
	if reservationID == "" || correlationID == "" {
		return "", domain.ErrInvalidInput
	}
	var movementID string
	err := e.tx.Run(ctx, func(r Repos) error {
		// Reintento idempotente: si la correlación ya confirmó un consumo,
		// devolver el movimiento previo sin tocar estado.
		prior, err := r.Movements.FindByCorrelation(correlationID, OpClassConsumeReservation)
		if err != nil {
			return err
		}
		if len(prior) > 0 {
			movementID = prior[0].ID
			return nil
		}

		res, err := r.Reservations.GetForUpdate(reservationID)
		if err != nil {
			return err
		}
		if res == nil {
			return domain.ErrNotFound
		}
		if res.Status != entity.ReservationActive {
			return domain.ErrInvalidState
		}
		if quantity != nil && !quantity.Equal(res.ReservedQuantity) {
			return domain.ErrPartialConsumption
		}

		// Quitar el apartado antes de proyectar la salida, para que la cota
		// reserved <= on_hand se evalúe contra el apartado ya removido.
		bal, err := r.Balances.GetForUpdate(res.Position)
		if err != nil {
			return err
		}
		bal.QuantityReserved = bal.QuantityReserved.Sub(res.ReservedQuantity)
		if err := r.Balances.Upsert(bal); err != nil {
			return err
		}

		item, err := r.Items.GetByID(res.Position.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		mov := &entity.StockMovement{
			OccurredAt:         time.Now(),
			WarehouseID:        res.Position.WarehouseID,
			SourceBinID:        res.Position.BinLocationID,
			ItemID:             res.Position.ItemID,
			UnitOfMeasure:      item.UnitOfMeasure,
			LotID:              res.Position.LotID,
			SerialNumberID:     res.Position.SerialNumberID,
			Quantity:           res.ReservedQuantity,
			Reason:             entity.ReasonSalesIssue,
			DocumentType:       "reservation",
			DocumentID:         res.ID,
			ActorID:            actorID,
			TriggerSource:      "order:" + res.OrderReference,
			TransactionGroupID: uuid.New().String(),
			CorrelationID:      correlationID,
		}
		appended, err := e.ledger.Append(r, OpClassConsumeReservation, []*entity.StockMovement{mov})
		if err != nil {
			return err
		}
		if err := e.projector.Apply(r, []*entity.StockMovement{mov}); err != nil {
			return err
		}
		if res.Position.SerialNumberID != "" {
			if err := r.Serials.UpdateStatus(res.Position.SerialNumberID, entity.SerialShipped); err != nil {
				return err
			}
		}
		if err := r.Reservations.UpdateStatus(reservationID, entity.ReservationConsumed); err != nil {
			return err
		}
		movementID = appended.MovementIDs[0]
		return nil
	})
	if err != nil {
		return "", err
	}
	e.log.Info().
		Str("reservation_id", reservationID).
		Str("movement_id", movementID).
		Msg("reserva consumida")
	return movementID, nil
}
