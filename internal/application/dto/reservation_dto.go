package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-ledger/internal/domain/entity"
)

// ReserveRequest body para POST /api/reservations.
type ReserveRequest struct {
	WarehouseID    string          `json:"warehouse_id"`
	BinLocationID  string          `json:"bin_location_id"`
	ItemID         string          `json:"item_id"`
	LotID          string          `json:"lot_id,omitempty"`
	SerialNumberID string          `json:"serial_number_id,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	OrderReference string          `json:"order_reference"`
}

// ConsumeRequest body para POST /api/reservations/:id/consume.
// Quantity es opcional; si viene debe coincidir con lo reservado.
type ConsumeRequest struct {
	CorrelationID string           `json:"correlation_id"`
	Quantity      *decimal.Decimal `json:"quantity,omitempty"`
}

// ReservationCreatedResponse respuesta al crear una reserva.
type ReservationCreatedResponse struct {
	ReservationID string `json:"reservation_id"`
}

// ReservationResponse una reserva.
type ReservationResponse struct {
	ID               string          `json:"id"`
	OrderReference   string          `json:"order_reference"`
	WarehouseID      string          `json:"warehouse_id"`
	BinLocationID    string          `json:"bin_location_id"`
	ItemID           string          `json:"item_id"`
	LotID            string          `json:"lot_id,omitempty"`
	SerialNumberID   string          `json:"serial_number_id,omitempty"`
	ReservedQuantity decimal.Decimal `json:"reserved_quantity"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}

// NewReservationResponse mapea la entidad al DTO de respuesta.
func NewReservationResponse(r *entity.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:               r.ID,
		OrderReference:   r.OrderReference,
		WarehouseID:      r.Position.WarehouseID,
		BinLocationID:    r.Position.BinLocationID,
		ItemID:           r.Position.ItemID,
		LotID:            r.Position.LotID,
		SerialNumberID:   r.Position.SerialNumberID,
		ReservedQuantity: r.ReservedQuantity,
		Status:           r.Status,
		CreatedAt:        r.CreatedAt,
	}
}
