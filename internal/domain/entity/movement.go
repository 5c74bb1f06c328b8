package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Razones de movimiento reconocidas (conjunto cerrado, validado en el ledger).
const (
	ReasonGoodsReceipt        = "goods_receipt"
	ReasonSalesIssue          = "sales_issue"
	ReasonInternalTransfer    = "internal_transfer"
	ReasonManualAdjustment    = "manual_adjustment"
	ReasonReturnReceipt       = "return_receipt"
	ReasonReturnScrap         = "return_scrap"
	ReasonInventoryAdjustment = "inventory_adjustment"
)

// ValidReason indica si la razón pertenece al conjunto reconocido.
func ValidReason(r string) bool {
	switch r {
	case ReasonGoodsReceipt, ReasonSalesIssue, ReasonInternalTransfer,
		ReasonManualAdjustment, ReasonReturnReceipt, ReasonReturnScrap,
		ReasonInventoryAdjustment:
		return true
	}
	return false
}

// StockMovement es un registro inmutable del libro de movimientos: la fuente
// de verdad del inventario. Quantity es siempre > 0; la dirección la dan los
// bins de origen/destino (vacío = mundo exterior). Nunca se actualiza ni se
// borra; las correcciones son movimientos compensatorios nuevos.
type StockMovement struct {
	ID                 string
	OccurredAt         time.Time
	WarehouseID        string
	SourceBinID        string // vacío = origen externo (recepción)
	DestinationBinID   string // vacío = destino externo (despacho)
	ItemID             string
	LotID              string
	SerialNumberID     string
	Quantity           decimal.Decimal
	UnitOfMeasure      string
	Reason             string
	OperationClass     string // clase de operación que lo produjo (guarda de idempotencia)
	DocumentType       string
	DocumentID         string
	ActorID            string
	TriggerSource      string // "user:<id>", "order:<ref>", etc.
	TransactionGroupID string
	CorrelationID      string
	Notes              string
}

// SourcePosition devuelve la posición de origen si el movimiento sale de un bin.
func (m *StockMovement) SourcePosition() (StockPosition, bool) {
	if m.SourceBinID == "" {
		return StockPosition{}, false
	}
	return StockPosition{
		WarehouseID:    m.WarehouseID,
		BinLocationID:  m.SourceBinID,
		ItemID:         m.ItemID,
		LotID:          m.LotID,
		SerialNumberID: m.SerialNumberID,
	}, true
}

// DestinationPosition devuelve la posición de destino si el movimiento entra a un bin.
func (m *StockMovement) DestinationPosition() (StockPosition, bool) {
	if m.DestinationBinID == "" {
		return StockPosition{}, false
	}
	return StockPosition{
		WarehouseID:    m.WarehouseID,
		BinLocationID:  m.DestinationBinID,
		ItemID:         m.ItemID,
		LotID:          m.LotID,
		SerialNumberID: m.SerialNumberID,
	}, true
}
