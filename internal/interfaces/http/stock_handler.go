package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Bodega-ledger/internal/application/dto"
	"github.com/jhoicas/Bodega-ledger/internal/application/stock"
	"github.com/jhoicas/Bodega-ledger/internal/domain"
	"github.com/jhoicas/Bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/Bodega-ledger/internal/domain/repository"
)

// StockHandler maneja las peticiones HTTP del libro de movimientos y los
// saldos proyectados (protegido).
type StockHandler struct {
	orchestrator *stock.Orchestrator
}

// NewStockHandler construye el handler.
func NewStockHandler(orchestrator *stock.Orchestrator) *StockHandler {
	return &StockHandler{orchestrator: orchestrator}
}

// writeDomainError traduce los errores centinela del dominio a estados HTTP.
// Los fallos de stock llevan el detalle de la posición en el mensaje.
func writeDomainError(c *fiber.Ctx, err error) error {
	var shortfall *domain.StockShortfallError
	if errors.As(err, &shortfall) {
		code := "INSUFFICIENT_STOCK"
		if errors.Is(err, domain.ErrInsufficientAvailable) {
			code = "INSUFFICIENT_AVAILABLE"
		}
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: code, Message: shortfall.Error()})
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotesRequired):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "NOTES_REQUIRED", Message: "las notas de razón son obligatorias para ajustes manuales"})
	case errors.Is(err, domain.ErrLotRequired):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "LOT_REQUIRED", Message: "el ítem exige lote"})
	case errors.Is(err, domain.ErrSerialRequired):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "SERIAL_REQUIRED", Message: "el ítem exige número de serie"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrInsufficientAvailable):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_AVAILABLE", Message: "disponibilidad insuficiente"})
	case errors.Is(err, domain.ErrReservationRequired):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "RESERVATION_REQUIRED", Message: "la salida de venta exige consumir una reserva activa"})
	case errors.Is(err, domain.ErrPartialConsumption):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "PARTIAL_CONSUMPTION", Message: "el consumo parcial no está soportado: libere y reserve de nuevo"})
	case errors.Is(err, domain.ErrInvalidState):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: "la reserva no está activa"})
	case errors.Is(err, domain.ErrDuplicateCorrelation):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_CORRELATION", Message: "correlation_id ya usado para otra operación"})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY_CONFLICT", Message: "conflicto de concurrencia, reintente"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// SubmitGoodsReceipt registra una recepción de mercancía.
// POST /api/stock/receipts
func (h *StockHandler) SubmitGoodsReceipt(c *fiber.Ctx) error {
	var in dto.GoodsReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movementID, err := h.orchestrator.SubmitGoodsReceipt(c.Context(), stock.GoodsReceiptInput{
		WarehouseID:      in.WarehouseID,
		DestinationBinID: in.DestinationBinID,
		ItemID:           in.ItemID,
		Quantity:         in.Quantity,
		LotCode:          in.LotCode,
		SerialCode:       in.SerialCode,
		DocumentType:     in.DocumentType,
		DocumentID:       in.DocumentID,
		ActorID:          GetUserID(c),
		CorrelationID:    in.CorrelationID,
		Notes:            in.Notes,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementCommittedResponse{MovementID: movementID})
}

// SubmitTransfer registra un traslado interno entre bins.
// POST /api/stock/transfers
func (h *StockHandler) SubmitTransfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movementID, err := h.orchestrator.SubmitInternalTransfer(c.Context(), stock.TransferInput{
		WarehouseID:      in.WarehouseID,
		SourceBinID:      in.SourceBinID,
		DestinationBinID: in.DestinationBinID,
		ItemID:           in.ItemID,
		Quantity:         in.Quantity,
		LotID:            in.LotID,
		SerialNumberID:   in.SerialNumberID,
		ActorID:          GetUserID(c),
		CorrelationID:    in.CorrelationID,
		Notes:            in.Notes,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementCommittedResponse{MovementID: movementID})
}

// SubmitAdjustment registra un ajuste manual con cantidad firmada.
// POST /api/stock/adjustments
func (h *StockHandler) SubmitAdjustment(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movementID, err := h.orchestrator.SubmitManualAdjustment(c.Context(), stock.AdjustmentInput{
		WarehouseID:    in.WarehouseID,
		BinLocationID:  in.BinLocationID,
		ItemID:         in.ItemID,
		SignedQuantity: in.Quantity,
		LotID:          in.LotID,
		SerialNumberID: in.SerialNumberID,
		ReasonNotes:    in.ReasonNotes,
		ActorID:        GetUserID(c),
		CorrelationID:  in.CorrelationID,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementCommittedResponse{MovementID: movementID})
}

// SubmitReturn registra la recepción de una devolución (returns o scrap).
// POST /api/stock/returns
func (h *StockHandler) SubmitReturn(c *fiber.Ctx) error {
	var in dto.ReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movementID, err := h.orchestrator.SubmitReturn(c.Context(), stock.ReturnInput{
		WarehouseID:      in.WarehouseID,
		DestinationBinID: in.DestinationBinID,
		ItemID:           in.ItemID,
		Quantity:         in.Quantity,
		LotCode:          in.LotCode,
		SerialCode:       in.SerialCode,
		Scrap:            in.Scrap,
		DocumentID:       in.DocumentID,
		ActorID:          GetUserID(c),
		CorrelationID:    in.CorrelationID,
		Notes:            in.Notes,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementCommittedResponse{MovementID: movementID})
}

// GetBalance devuelve el saldo de una posición exacta.
// GET /api/stock/balances/position
func (h *StockHandler) GetBalance(c *fiber.Ctx) error {
	position := entity.StockPosition{
		WarehouseID:    c.Query("warehouse_id"),
		BinLocationID:  c.Query("bin_location_id"),
		ItemID:         c.Query("item_id"),
		LotID:          c.Query("lot_id"),
		SerialNumberID: c.Query("serial_number_id"),
	}
	balance, err := h.orchestrator.GetBalance(c.Context(), position)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(dto.NewBalanceResponse(balance))
}

// ListBalances devuelve los saldos con existencia de una bodega. Acepta
// item_sku como alternativa a item_id; item_id gana si llegan ambos.
// GET /api/stock/balances
func (h *StockHandler) ListBalances(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	itemID := c.Query("item_id")
	if sku := c.Query("item_sku"); sku != "" && itemID == "" {
		item, err := h.orchestrator.GetItemBySKU(c.Context(), sku)
		if err != nil {
			return writeDomainError(c, err)
		}
		itemID = item.ID
	}
	balances, err := h.orchestrator.ListBalances(c.Context(), c.Query("warehouse_id"), repository.BalanceFilter{
		ItemID:        itemID,
		BinLocationID: c.Query("bin_location_id"),
		LotID:         c.Query("lot_id"),
		Limit:         page.Limit,
		Offset:        page.Offset,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	out := make([]dto.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, dto.NewBalanceResponse(b))
	}
	return c.JSON(fiber.Map{"total": len(out), "balances": out})
}

// ListMovements devuelve una página del historial de movimientos con cursor.
// GET /api/stock/movements
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	filter := repository.MovementFilter{
		WarehouseID:   c.Query("warehouse_id"),
		ItemID:        c.Query("item_id"),
		BinLocationID: c.Query("bin_location_id"),
		Limit:         c.QueryInt("limit", 20),
		Cursor:        c.Query("cursor"),
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetro from inválido (RFC3339)"})
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetro to inválido (RFC3339)"})
		}
		filter.To = &t
	}
	movements, nextCursor, err := h.orchestrator.ListMovements(c.Context(), filter)
	if err != nil {
		return writeDomainError(c, err)
	}
	out := dto.MovementListResponse{Movements: make([]dto.MovementResponse, 0, len(movements)), NextCursor: nextCursor}
	for _, m := range movements {
		out.Movements = append(out.Movements, dto.NewMovementResponse(m))
	}
	return c.JSON(out)
}
