package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-ledger/internal/domain/entity"
)

// GoodsReceiptRequest body para POST /api/stock/receipts.
type GoodsReceiptRequest struct {
	WarehouseID      string          `json:"warehouse_id"`
	DestinationBinID string          `json:"destination_bin_id"`
	ItemID           string          `json:"item_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	LotCode          string          `json:"lot_code,omitempty"`
	SerialCode       string          `json:"serial_code,omitempty"`
	DocumentType     string          `json:"document_type,omitempty"`
	DocumentID       string          `json:"document_id,omitempty"`
	CorrelationID    string          `json:"correlation_id"`
	Notes            string          `json:"notes,omitempty"`
}

// TransferRequest body para POST /api/stock/transfers.
type TransferRequest struct {
	WarehouseID      string          `json:"warehouse_id"`
	SourceBinID      string          `json:"source_bin_id"`
	DestinationBinID string          `json:"destination_bin_id"`
	ItemID           string          `json:"item_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	LotID            string          `json:"lot_id,omitempty"`
	SerialNumberID   string          `json:"serial_number_id,omitempty"`
	CorrelationID    string          `json:"correlation_id"`
	Notes            string          `json:"notes,omitempty"`
}

// AdjustmentRequest body para POST /api/stock/adjustments. Quantity con signo:
// positiva aumenta, negativa disminuye.
type AdjustmentRequest struct {
	WarehouseID    string          `json:"warehouse_id"`
	BinLocationID  string          `json:"bin_location_id"`
	ItemID         string          `json:"item_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	LotID          string          `json:"lot_id,omitempty"`
	SerialNumberID string          `json:"serial_number_id,omitempty"`
	ReasonNotes    string          `json:"reason_notes"`
	CorrelationID  string          `json:"correlation_id"`
}

// ReturnRequest body para POST /api/stock/returns.
type ReturnRequest struct {
	WarehouseID      string          `json:"warehouse_id"`
	DestinationBinID string          `json:"destination_bin_id"`
	ItemID           string          `json:"item_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	LotCode          string          `json:"lot_code,omitempty"`
	SerialCode       string          `json:"serial_code,omitempty"`
	Scrap            bool            `json:"scrap,omitempty"`
	DocumentID       string          `json:"document_id,omitempty"`
	CorrelationID    string          `json:"correlation_id"`
	Notes            string          `json:"notes,omitempty"`
}

// MovementCommittedResponse respuesta de las operaciones de escritura.
type MovementCommittedResponse struct {
	MovementID string `json:"movement_id"`
}

// BalanceResponse un saldo proyectado por posición.
type BalanceResponse struct {
	WarehouseID       string          `json:"warehouse_id"`
	BinLocationID     string          `json:"bin_location_id"`
	ItemID            string          `json:"item_id"`
	LotID             string          `json:"lot_id,omitempty"`
	SerialNumberID    string          `json:"serial_number_id,omitempty"`
	QuantityOnHand    decimal.Decimal `json:"quantity_on_hand"`
	QuantityReserved  decimal.Decimal `json:"quantity_reserved"`
	QuantityAvailable decimal.Decimal `json:"quantity_available"`
	LastMovementAt    *time.Time      `json:"last_movement_at,omitempty"`
}

// NewBalanceResponse mapea la entidad al DTO de respuesta.
func NewBalanceResponse(b *entity.StockBalance) BalanceResponse {
	resp := BalanceResponse{
		WarehouseID:       b.Position.WarehouseID,
		BinLocationID:     b.Position.BinLocationID,
		ItemID:            b.Position.ItemID,
		LotID:             b.Position.LotID,
		SerialNumberID:    b.Position.SerialNumberID,
		QuantityOnHand:    b.QuantityOnHand,
		QuantityReserved:  b.QuantityReserved,
		QuantityAvailable: b.Available(),
	}
	if !b.LastMovementAt.IsZero() {
		t := b.LastMovementAt
		resp.LastMovementAt = &t
	}
	return resp
}

// MovementResponse una entrada del libro de movimientos.
type MovementResponse struct {
	ID                 string          `json:"id"`
	OccurredAt         time.Time       `json:"occurred_at"`
	WarehouseID        string          `json:"warehouse_id"`
	SourceBinID        string          `json:"source_bin_id,omitempty"`
	DestinationBinID   string          `json:"destination_bin_id,omitempty"`
	ItemID             string          `json:"item_id"`
	LotID              string          `json:"lot_id,omitempty"`
	SerialNumberID     string          `json:"serial_number_id,omitempty"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitOfMeasure      string          `json:"unit_of_measure"`
	Reason             string          `json:"reason"`
	DocumentType       string          `json:"document_type,omitempty"`
	DocumentID         string          `json:"document_id,omitempty"`
	ActorID            string          `json:"actor_id"`
	TriggerSource      string          `json:"trigger_source"`
	TransactionGroupID string          `json:"transaction_group_id"`
	CorrelationID      string          `json:"correlation_id"`
	Notes              string          `json:"notes,omitempty"`
}

// NewMovementResponse mapea la entidad al DTO de respuesta.
func NewMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:                 m.ID,
		OccurredAt:         m.OccurredAt,
		WarehouseID:        m.WarehouseID,
		SourceBinID:        m.SourceBinID,
		DestinationBinID:   m.DestinationBinID,
		ItemID:             m.ItemID,
		LotID:              m.LotID,
		SerialNumberID:     m.SerialNumberID,
		Quantity:           m.Quantity,
		UnitOfMeasure:      m.UnitOfMeasure,
		Reason:             m.Reason,
		DocumentType:       m.DocumentType,
		DocumentID:         m.DocumentID,
		ActorID:            m.ActorID,
		TriggerSource:      m.TriggerSource,
		TransactionGroupID: m.TransactionGroupID,
		CorrelationID:      m.CorrelationID,
		Notes:              m.Notes,
	}
}

// MovementListResponse página del historial; NextCursor vacío = última página.
type MovementListResponse struct {
	Movements  []MovementResponse `json:"movements"`
	NextCursor string             `json:"next_cursor,omitempty"`
}
