package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Bodega-ledger/internal/application/dto"
	"github.com/jhoicas/Bodega-ledger/internal/application/stock"
	"github.com/jhoicas/Bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/Bodega-ledger/internal/domain/repository"
)

// ReservationHandler maneja las peticiones HTTP del motor de reservas (protegido).
type ReservationHandler struct {
	engine       *stock.ReservationEngine
	reservations repository.ReservationRepository
}

// NewReservationHandler construye el handler. El repositorio va atado al pool
// (solo lecturas).
func NewReservationHandler(engine *stock.ReservationEngine, reservations repository.ReservationRepository) *ReservationHandler {
	return &ReservationHandler{engine: engine, reservations: reservations}
}

// Reserve aparta cantidad disponible de una posición para una orden.
// POST /api/reservations
func (h *ReservationHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	position := entity.StockPosition{
		WarehouseID:    in.WarehouseID,
		BinLocationID:  in.BinLocationID,
		ItemID:         in.ItemID,
		LotID:          in.LotID,
		SerialNumberID: in.SerialNumberID,
	}
	reservationID, err := h.engine.Reserve(c.Context(), position, in.Quantity, in.OrderReference)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ReservationCreatedResponse{ReservationID: reservationID})
}

// ListActive lista las reservas activas contra una posición.
// GET /api/reservations
func (h *ReservationHandler) ListActive(c *fiber.Ctx) error {
	position := entity.StockPosition{
		WarehouseID:    c.Query("warehouse_id"),
		BinLocationID:  c.Query("bin_location_id"),
		ItemID:         c.Query("item_id"),
		LotID:          c.Query("lot_id"),
		SerialNumberID: c.Query("serial_number_id"),
	}
	if !position.IsComplete() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "posición incompleta: warehouse_id, bin_location_id e item_id son obligatorios"})
	}
	reservations, err := h.reservations.ListActiveByPosition(position)
	if err != nil {
		return writeDomainError(c, err)
	}
	out := make([]dto.ReservationResponse, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, dto.NewReservationResponse(r))
	}
	return c.JSON(fiber.Map{"total": len(out), "reservations": out})
}

// GetByID devuelve una reserva.
// GET /api/reservations/:id
func (h *ReservationHandler) GetByID(c *fiber.Ctx) error {
	reservation, err := h.reservations.GetByID(c.Params("id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	if reservation == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "reserva no encontrada"})
	}
	return c.JSON(dto.NewReservationResponse(reservation))
}

// Release libera una reserva activa y devuelve la cantidad al disponible.
// POST /api/reservations/:id/release
func (h *ReservationHandler) Release(c *fiber.Ctx) error {
	if err := h.engine.Release(c.Context(), c.Params("id")); err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "reserva liberada"})
}

// Consume consume una reserva activa emitiendo la salida de venta.
// POST /api/reservations/:id/consume
func (h *ReservationHandler) Consume(c *fiber.Ctx) error {
	var in dto.ConsumeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movementID, err := h.engine.Consume(c.Context(), c.Params("id"), GetUserID(c), in.CorrelationID, in.Quantity)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementCommittedResponse{MovementID: movementID})
}
