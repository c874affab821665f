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

	"github.com/jhoicas/Entregas-api/internal/application/delivery"
	"github.com/jhoicas/Entregas-api/internal/domain/entity"
	"github.com/jhoicas/Entregas-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/Entregas-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Entregas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Entregas-api/internal/infrastructure/tally"
	httpRouter "github.com/jhoicas/Entregas-api/internal/interfaces/http"
	"github.com/jhoicas/Entregas-api/pkg/config"
	"github.com/jhoicas/Entregas-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	settingsRepo := postgres.NewDeliverySettingsRepository(pool)
	submissionRepo := postgres.NewDeliverySubmissionRepository(pool)

	// Caché de existencias: Redis si está configurado, memoria del proceso si no.
	var balanceCache delivery.BalanceCache
	if cfg.Redis.Addr != "" {
		rc := cache.NewRedisBalanceCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Delivery.SessionTTL())
		if err := rc.Ping(ctx); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer rc.Close()
		balanceCache = rc
	} else {
		balanceCache = cache.NewMemoryBalanceCache(cfg.Delivery.SessionTTL())
	}

	settingsUC := delivery.NewSettingsUseCase(settingsRepo, entity.DeliverySettings{
		AllowNegativeStock:       cfg.Delivery.AllowNegativeStock,
		AllowDeliveryExceedOrder: cfg.Delivery.AllowDeliveryExceedOrder,
		BatchXMLFormat:           cfg.Delivery.BatchXMLFormat,
		AgeingBuckets:            cfg.Delivery.AgeingBuckets,
	})
	deliveryUC := delivery.NewUseCase(
		tally.NewHTTPClient(cfg.Ledger.BaseURL, cfg.Ledger.APIKey, cfg.Ledger.Timeout()),
		balanceCache,
		tally.NewVoucherService(),
		infrapdf.NewMarotoPDFGenerator(),
		settingsUC,
		submissionRepo,
		delivery.NewSessionStore(cfg.Delivery.SessionTTL()),
		log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.Ledger.Timeout() + time.Second*10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Entregas API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		DeliveryUC: deliveryUC,
		SettingsUC: settingsUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	// Sesiones abandonadas: se descartan por inactividad.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				deliveryUC.SweepExpired(sweepCtx)
			}
		}
	}()

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
