package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/Licoreria-api/docs"
	"github.com/jhoicas/Licoreria-api/internal/application/costing"
	"github.com/jhoicas/Licoreria-api/internal/application/ledger"
	"github.com/jhoicas/Licoreria-api/internal/application/production"
	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
	"github.com/jhoicas/Licoreria-api/internal/domain/repository"
	"github.com/jhoicas/Licoreria-api/internal/infrastructure/memory"
	"github.com/jhoicas/Licoreria-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Licoreria-api/internal/infrastructure/redislock"
	httpRouter "github.com/jhoicas/Licoreria-api/internal/interfaces/http"
	"github.com/jhoicas/Licoreria-api/internal/observability"
	"github.com/jhoicas/Licoreria-api/pkg/config"
	"github.com/jhoicas/Licoreria-api/pkg/logger"
)

// stores puertos de persistencia según STORE_DRIVER.
type stores struct {
	tx        ledger.TxRunner
	materials repository.MaterialRepository
	lots      repository.LotRepository
	movements repository.MovementRepository
	expenses  repository.FixedExpenseRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st := openStores(ctx, cfg, log)
	defer st.close()

	locker, closeLocker := openLocker(ctx, cfg, log)
	defer closeLocker()

	metrics := observability.NewMetrics()
	stockLedger := ledger.New(st.tx, st.materials, st.movements, log, metrics)
	productionSvc := production.NewService(st.tx, st.lots, st.movements, stockLedger, locker, log, metrics,
		production.Config{ReadyIn: cfg.Production.ReadyIn()})
	costSvc := costing.NewService(st.materials, st.expenses, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Licorería API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:     stockLedger,
		Production: productionSvc,
		Costing:    costSvc,
		Metrics:    metrics,
		AppName:    cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) stores {
	if cfg.Store.Driver == config.StoreDriverMemory {
		store := memory.NewStore()
		store.Seed(entity.CatalogMaterials()...)
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return stores{
			tx:        store,
			materials: store.Materials(),
			lots:      store.Lots(),
			movements: store.Movements(),
			expenses:  store.FixedExpenses(),
			close:     func() {},
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	if err := postgres.SeedCatalog(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("catálogo de materiales")
	}
	return stores{
		tx:        postgres.NewTxRunner(pool),
		materials: postgres.NewMaterialRepository(pool),
		lots:      postgres.NewLotRepository(pool),
		movements: postgres.NewMovementRepository(pool),
		expenses:  postgres.NewFixedExpenseRepository(pool),
		close:     pool.Close,
	}
}

// openLocker bloqueo por lote: Redis si REDIS_ADDR está definido, si no en proceso.
func openLocker(ctx context.Context, cfg *config.Config, log *logger.Logger) (production.LotLocker, func()) {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("bloqueo de lotes en proceso (sin REDIS_ADDR)")
		return memory.NewKeyedMutex(), func() {}
	}
	client, err := redislock.Connect(ctx, cfg.Redis.Addr)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	return redislock.New(client, cfg.Redis.LockTTL, cfg.Redis.LockWait), func() { _ = client.Close() }
}
