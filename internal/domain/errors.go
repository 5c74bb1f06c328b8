package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrInsufficientAvailable = errors.New("cantidad disponible insuficiente")
	ErrDuplicateCorrelation  = errors.New("correlación ya confirmada para esta operación")
	ErrConcurrencyConflict   = errors.New("conflicto de concurrencia, reintentable")
	ErrInvalidState          = errors.New("estado inválido para la transición")
	ErrLotRequired           = errors.New("el ítem requiere lote")
	ErrSerialRequired        = errors.New("el ítem requiere número de serie")
	ErrReservationRequired   = errors.New("la salida de venta requiere reserva previa")
	ErrPartialConsumption    = errors.New("consumo parcial no soportado: liberar y re-reservar")
	ErrNotesRequired         = errors.New("el ajuste manual requiere notas")
	ErrUnauthorized          = errors.New("no autorizado")
	ErrForbidden             = errors.New("acceso denegado")
)

// StockShortfallError detalla la posición y cantidades de un rechazo por
// insuficiencia, para que el caller decida si reintenta, divide o aborta.
// Envuelve ErrInsufficientStock o ErrInsufficientAvailable (errors.Is).
type StockShortfallError struct {
	Err         error
	PositionKey string
	Requested   decimal.Decimal
	Available   decimal.Decimal
}

func (e *StockShortfallError) Error() string {
	return fmt.Sprintf("%s: posición %s, solicitado %s, disponible %s",
		e.Err.Error(), e.PositionKey, e.Requested.String(), e.Available.String())
}

func (e *StockShortfallError) Unwrap() error { return e.Err }
