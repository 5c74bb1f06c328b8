package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Bodega-ledger/internal/application/stock"
	"github.com/jhoicas/Bodega-ledger/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Orchestrator *stock.Orchestrator
	Reservations *stock.ReservationEngine
	ReservationR repository.ReservationRepository
	JWTSecret    string
}

// Router registra las rutas de la API. Todas las rutas van protegidas con
// Bearer Token; las escrituras exigen además el permiso correspondiente.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	stockHandler := NewStockHandler(deps.Orchestrator)
	stockGroup := api.Group("/stock")

	stockGroup.Get("/balances", RequirePermission(PermStockRead), stockHandler.ListBalances)
	stockGroup.Get("/balances/position", RequirePermission(PermStockRead), stockHandler.GetBalance)
	stockGroup.Get("/movements", RequirePermission(PermStockRead), stockHandler.ListMovements)

	writes := stockGroup.Group("/", RequirePermission(PermStockWrite))
	writes.Post("/receipts", stockHandler.SubmitGoodsReceipt)
	writes.Post("/transfers", stockHandler.SubmitTransfer)
	writes.Post("/adjustments", stockHandler.SubmitAdjustment)
	writes.Post("/returns", stockHandler.SubmitReturn)

	reservationHandler := NewReservationHandler(deps.Reservations, deps.ReservationR)
	reservations := api.Group("/reservations")
	reservations.Get("/", RequirePermission(PermStockRead), reservationHandler.ListActive)
	reservations.Get("/:id", RequirePermission(PermStockRead), reservationHandler.GetByID)

	resWrites := reservations.Group("/", RequirePermission(PermReservationsWrite))
	resWrites.Post("/", reservationHandler.Reserve)
	resWrites.Post("/:id/release", reservationHandler.Release)
	resWrites.Post("/:id/consume", reservationHandler.Consume)
}
