package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Fulfillment-api/internal/application/allocation"
	"github.com/jhoicas/Fulfillment-api/internal/application/picking"
	"github.com/jhoicas/Fulfillment-api/internal/application/wave"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AllocationUC *allocation.UseCase
	WaveUC       *wave.UseCase
	PickingUC    *picking.UseCase
	Actor        ActorConfig
}

// Router registra las rutas de la API. Todas requieren actor.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", ActorMiddleware(deps.Actor))

	orders := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.AllocationUC)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Post("/:id/allocate", orderHandler.Allocate)
	orders.Post("/:id/release", orderHandler.ReleaseAllocations)
	orders.Post("/:id/cancel", orderHandler.Cancel)
	api.Post("/allocations/:id/release", orderHandler.ReleaseAllocation)

	waves := api.Group("/waves")
	waveHandler := NewWaveHandler(deps.WaveUC)
	waves.Get("/eligible", waveHandler.Eligible)
	waves.Post("/", waveHandler.Create)
	waves.Get("/:id", waveHandler.GetByID)
	waves.Get("/:id/tasks", waveHandler.Tasks)
	waves.Post("/:id/release", waveHandler.Release)
	waves.Post("/:id/cancel", waveHandler.Cancel)

	tasks := api.Group("/tasks")
	taskHandler := NewTaskHandler(deps.PickingUC)
	tasks.Post("/claim", taskHandler.Claim)
	tasks.Get("/:id", taskHandler.GetByID)
	tasks.Post("/:id/assign", taskHandler.Assign)
	tasks.Post("/:id/start", taskHandler.Start)
	tasks.Post("/:id/complete", taskHandler.Complete)
}
