package stock_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-ledger/internal/application/stock"
	"github.com/jhoicas/Bodega-ledger/internal/domain"
	"github.com/jhoicas/Bodega-ledger/internal/domain/entity"
)

// stockReceiptSerial recepción de una unidad serializada, para los tests de
// consumo con serial.
func stockReceiptSerial(serialCode, correlationID string) stock.GoodsReceiptInput {
	return stock.GoodsReceiptInput{
		WarehouseID:      whID,
		DestinationBinID: binRecv,
		ItemID:           itemSerial,
		Quantity:         dec("1"),
		SerialCode:       serialCode,
		ActorID:          actorID,
		CorrelationID:    correlationID,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Reservar
// ──────────────────────────────────────────────────────────────────────────────

func TestReserve_ApartaDisponibleSinMoverStock(t *testing.T) {
	env := newTestEnv(t)
	env.mustReceive(t, itemPlain, binStore, "10", "corr-rx-1")

	resID, err := env.engine.Reserve(context.Background(), pos(binStore, itemPlain), dec("6"), "SO-100")
	require.NoError(t, err)
	require.NotEmpty(t, resID)

	bal := env.balance(pos(binStore, itemPlain))
	assert.True(t, bal.QuantityOnHand.Equal(dec("10")), "reservar no mueve inventario")
	assert.True(t, bal.QuantityReserved.Equal(dec("6")))
	assert.True(t, bal.Available().Equal(dec("4")))

	res := env.store.reservations[resID]
	require.NotNil(t, res)
	assert.Equal(t, entity.ReservationActive, res.Status)
	assert.Equal(t, "SO-100", res.OrderReference)

	// Reservar no produce movimientos en el libro.
	assert.Len(t, env.store.movements, 1)
}

// Dos reservas contra la misma posición compiten por el disponible, no por el
// on_hand: la segunda solo ve lo que la primera dejó libre.
func TestReserve_SobreReservaRechazada(t *testing.T) {
	env := newTestEnv(t)
	env.mustReceive(t, itemPlain, binStore, "10", "corr-rx-1")

	_, err := env.engine.Reserve(context.Background(), pos(binStore, itemPlain), dec("6"), "SO-100")
	require.NoError(t, err)

	_, err = env.engine.Reserve(context.Background(), pos(binStore, itemPlain), dec("5"), "SO-101")
	require.ErrorIs(t, err, domain.ErrInsufficientAvailable)

	var shortfall *domain.StockShortfallError
	require.ErrorAs(t, err, &shortfall)
	assert.True(t, shortfall.Requested.Equal(dec("5")))
	assert.True(t, shortfall.Available.Equal(dec("4")), "el disponible ya descuenta la primera reserva")

	// La reserva rechazada no deja rastro.
	assert.Len(t, env.store.reservations, 1)
	assert.True(t, env.balance(pos(binStore, itemPlain)).QuantityReserved.Equal(dec("6")))
}

// Dos reservas concurrentes de 50 sobre un disponible de 70: el runner
// transaccional las serializa y exactamente una gana; la perdedora ve el
// disponible ya descontado y recibe el faltante.
func TestReserve_ConcurrentesSoloUnaGana(t *testing.T) {
	env := newTestEnv(t)
	env.mustReceive(t, itemPlain, binStore, "70", "corr-rx-1")

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, ref := range []string{"SO-100", "SO-101"} {
		wg.Add(1)
		go func(orderRef string) {
			defer wg.Done()
			_, err := env.engine.Reserve(context.Background(), pos(binStore, itemPlain), dec("50"), orderRef)
			errs <- err
		}(ref)
	}
	wg.Wait()
	close(errs)

	var ok, rechazadas int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, domain.ErrInsufficientAvailable)
		rechazadas++
	}
	assert.Equal(t, 1, ok, "exactamente una reserva debe ganar")
	assert.Equal(t, 1, rechazadas)

	bal := env.balance(pos(binStore, itemPlain))
	assert.True(t, bal.QuantityOnHand.Equal(dec("70")), "reservar no mueve inventario")
	assert.True(t, bal.QuantityReserved.Equal(dec("50")))

	activas := 0
	for _, res := range env.store.reservations {
		if res.Status == entity.ReservationActive {
			activas++
		}
	}
	assert.Equal(t, 1, activas)
}

func TestReserve_EntradaInvalida(t *testing.T) {
	env := newTestEnv(t)
	env.mustReceive(t, itemPlain, binStore, "10", "corr-rx-1")

	_, err := env.engine.Reserve(context.Background(), entity.StockPosition{WarehouseID: whID}, dec("1"), "SO-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "posición incompleta")

	_, err = env.engine.Reserve(context.Background(), pos(binStore, itemPlain), decimal.Zero, "SO-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	_, err = env.engine.Reserve(context.Background(), pos(binStore, itemPlain), dec("1"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin referencia de orden")
}

// ──────────────────────────────────────────────────────────────────────────────
// Liberar
// ──────────────────────────────────────────────────────────────────────────────

func TestRelease_DevuelveAlDisponible(t *testing.T) {
	env := newTestEnv(t)
	env.mustReceive(t, itemPlain, binStore, "10", "corr-rx-1")
	resID, err := env.engine.Reserve(context.Background(), pos(binStore, itemPlain), dec("6"), "SO-100")
	require.NoError(t, err)

	require.NoError(t, env.engine.Release(context.Background(), resID))

	bal := env.balance(pos(binStore, itemPlain))
	assert.True(t, bal.QuantityOnHand.Equal(dec("10")), "liberar no produce movimiento")
	assert.True(t, bal.QuantityReserved.IsZero())
	assert.Equal(t, entity.ReservationReleased, env.store.reservations[resID].Status)
	assert.Len(t, env.store.movements, 1, "release no toca el libro")

	// Liberar dos veces: la reserva ya no está activa.
	err = env.engine.Release(context.Background(), resID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRelease_ReservaInexistente(t *testing.T) {
	env := newTestEnv(t)
	err := env.engine.Release(context.Background(), "res-nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consumir
// ──────────────────────────────────────────────────────────────────────────────

func TestConsume_EmiteSalidaPorLaCantidadReservada(t *testing.T) {
	env := newTestEnv(t)
	env.mustReceive(t, itemPlain, binStore, "10", "corr-rx-1")
	resID, err := env.engine.Reserve(context.Background(), pos(binStore, itemPlain), dec("6"), "SO-100")
	require.NoError(t, err)

	movID, err := env.engine.Consume(context.Background(), resID, actorID, "corr-con-1", nil)
	require.NoError(t, err)

	bal := env.balance(pos(binStore, itemPlain))
	assert.True(t, bal.QuantityOnHand.Equal(dec("4")))
	assert.True(t, bal.QuantityReserved.IsZero())
	assert.Equal(t, entity.ReservationConsumed, env.store.reservations[resID].Status)

	require.Len(t, env.store.movements, 2)
	mov := env.store.movements[1]
	assert.Equal(t, movID, mov.ID)
	assert.Equal(t, entity.ReasonSalesIssue, mov.Reason)
	assert.Equal(t, binStore, mov.SourceBinID)
	assert.Empty(t, mov.DestinationBinID, "la salida de venta va al mundo exterior")
	assert.True(t, mov.Quantity.Equal(dec("6")))
	assert.Equal(t, "unit", mov.UnitOfMeasure)
	assert.Equal(t, "reservation", mov.DocumentType)
	assert.Equal(t, resID, mov.DocumentID)
	assert.Equal(t, "order:SO-100", mov.TriggerSource)
}

// Consumir con cantidad explícita igual a lo reservado también procede.
func TestConsume_CantidadExplicitaIgual(t *testing.T) {
	env := newTestEnv(t)
	env.mustReceive(t, itemPlain, binStore, "10", "corr-rx-1")
	resID, err := env.engine.Reserve(context.Background(), pos(binStore, itemPlain), dec("6"), "SO-100")
	require.NoError(t, err)

	q := dec("6")
	_, err = env.engine.Consume(context.Background(), resID, actorID, "corr-con-1", &q)
	assert.NoError(t, err)
}

// El consumo parcial no existe: se libera y se re-reserva el resto.
func TestConsume_ParcialRechazado(t *testing.T) {
	env := newTestEnv(t)
	env.mustReceive(t, itemPlain, binStore, "10", "corr-rx-1")
	resID, err := env.engine.Reserve(context.Background(), pos(binStore, itemPlain), dec("6"), "SO-100")
	require.NoError(t, err)

	q := dec("3")
	_, err = env.engine.Consume(context.Background(), resID, actorID, "corr-con-1", &q)
	require.ErrorIs(t, err, domain.ErrPartialConsumption)

	// Nada cambió: la reserva sigue activa y el saldo intacto.
	assert.Equal(t, entity.ReservationActive, env.store.reservations[resID].Status)
	bal := env.balance(pos(binStore, itemPlain))
	assert.True(t, bal.QuantityOnHand.Equal(dec("10")))
	assert.True(t, bal.QuantityReserved.Equal(dec("6")))
}

// El reintento de consumo con la misma correlación devuelve el movimiento ya
// emitido, aun cuando la reserva ya quedó consumed.
func TestConsume_ReintentoIdempotente(t *testing.T) {
	env := newTestEnv(t)
	env.mustReceive(t, itemPlain, binStore, "10", "corr-rx-1")
	resID, err := env.engine.Reserve(context.Background(), pos(binStore, itemPlain), dec("6"), "SO-100")
	require.NoError(t, err)

	primero, err := env.engine.Consume(context.Background(), resID, actorID, "corr-con-1", nil)
	require.NoError(t, err)
	segundo, err := env.engine.Consume(context.Background(), resID, actorID, "corr-con-1", nil)
	require.NoError(t, err)

	assert.Equal(t, primero, segundo)
	assert.Len(t, env.store.movements, 2, "solo una salida en el libro")
	assert.True(t, env.balance(pos(binStore, itemPlain)).QuantityOnHand.Equal(dec("4")),
		"el saldo no se descuenta dos veces")
}

// Con otra correlación el segundo consumo sí se rechaza: la reserva ya no
// está activa.
func TestConsume_ReservaYaConsumida(t *testing.T) {
	env := newTestEnv(t)
	env.mustReceive(t, itemPlain, binStore, "10", "corr-rx-1")
	resID, err := env.engine.Reserve(context.Background(), pos(binStore, itemPlain), dec("6"), "SO-100")
	require.NoError(t, err)

	_, err = env.engine.Consume(context.Background(), resID, actorID, "corr-con-1", nil)
	require.NoError(t, err)

	_, err = env.engine.Consume(context.Background(), resID, actorID, "corr-con-2", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

// Consumir una reserva no puede robar el apartado de otra orden sobre la
// misma posición.
func TestConsume_RespetaOtrasReservas(t *testing.T) {
	env := newTestEnv(t)
	env.mustReceive(t, itemPlain, binStore, "5", "corr-rx-1")
	resA, err := env.engine.Reserve(context.Background(), pos(binStore, itemPlain), dec("3"), "SO-A")
	require.NoError(t, err)
	_, err = env.engine.Reserve(context.Background(), pos(binStore, itemPlain), dec("2"), "SO-B")
	require.NoError(t, err)

	_, err = env.engine.Consume(context.Background(), resA, actorID, "corr-con-a", nil)
	require.NoError(t, err)

	bal := env.balance(pos(binStore, itemPlain))
	assert.True(t, bal.QuantityOnHand.Equal(dec("2")))
	assert.True(t, bal.QuantityReserved.Equal(dec("2")), "el apartado de SO-B sigue en pie")
	assert.True(t, bal.Available().IsZero())
}

func TestConsume_SerialTransicionaAShipped(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.orch.SubmitGoodsReceipt(context.Background(), stockReceiptSerial("SN-77", "corr-rx-ser"))
	require.NoError(t, err)

	serial, err := env.store.repos().Serials.GetByCode("SN-77")
	require.NoError(t, err)
	require.NotNil(t, serial)

	posicion := entity.StockPosition{
		WarehouseID:    whID,
		BinLocationID:  binRecv,
		ItemID:         itemSerial,
		SerialNumberID: serial.ID,
	}
	resID, err := env.engine.Reserve(context.Background(), posicion, dec("1"), "SO-SER")
	require.NoError(t, err)

	_, err = env.engine.Consume(context.Background(), resID, actorID, "corr-con-ser", nil)
	require.NoError(t, err)

	actual, err := env.store.repos().Serials.GetByID(serial.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SerialShipped, actual.Status)
}

func TestConsume_ExigeCorrelacion(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.engine.Consume(context.Background(), "res-1", actorID, "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
