package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Licoreria-api/internal/application/costing"
	"github.com/jhoicas/Licoreria-api/internal/application/ledger"
	"github.com/jhoicas/Licoreria-api/internal/application/production"
	"github.com/jhoicas/Licoreria-api/internal/observability"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger     *ledger.Ledger
	Production *production.Service
	Costing    *costing.Service
	Metrics    *observability.Metrics
	AppName    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	v := newValidator()

	app.Use(deps.Metrics.Middleware())
	app.Get("/metrics", deps.Metrics.Handler())
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	api := app.Group("/api")

	// Materiales y libro de stock
	materials := api.Group("/materials")
	materialHandler := NewMaterialHandler(deps.Ledger, v)
	materials.Get("/", materialHandler.List)
	materials.Get("/:id", materialHandler.GetByID)
	materials.Post("/:id/adjust", materialHandler.Adjust)
	materials.Post("/:id/receive", materialHandler.Receive)
	materials.Get("/:id/movements", materialHandler.Movements)

	// Etapas previas al lote
	prod := api.Group("/production")
	productionHandler := NewProductionHandler(deps.Production, v)
	prod.Post("/macerate", productionHandler.Macerate)
	prod.Post("/filter", productionHandler.Filter)

	// Lotes
	lots := api.Group("/lots")
	lotHandler := NewLotHandler(deps.Production, v)
	lots.Post("/", lotHandler.CreateOrExtend)
	lots.Get("/", lotHandler.List)
	lots.Get("/:id", lotHandler.GetByID)
	lots.Delete("/:id", lotHandler.Delete)
	lots.Post("/:id/approve", lotHandler.Approve)
	lots.Post("/:id/bottle", lotHandler.Bottle)
	lots.Get("/:id/movements", lotHandler.Movements)

	// Costos
	costs := api.Group("/costs")
	costHandler := NewCostHandler(deps.Costing, v)
	costs.Get("/unit", costHandler.UnitCost)
}
