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

	_ "github.com/jhoicas/cadmeko-api/docs"
	"github.com/jhoicas/cadmeko-api/internal/application/auth"
	"github.com/jhoicas/cadmeko-api/internal/application/inventory"
	"github.com/jhoicas/cadmeko-api/internal/application/orders"
	"github.com/jhoicas/cadmeko-api/internal/application/reports"
	"github.com/jhoicas/cadmeko-api/internal/application/usecase"
	infrapdf "github.com/jhoicas/cadmeko-api/internal/infrastructure/pdf"
	"github.com/jhoicas/cadmeko-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/cadmeko-api/internal/interfaces/http"
	"github.com/jhoicas/cadmeko-api/pkg/clock"
	"github.com/jhoicas/cadmeko-api/pkg/config"
	"github.com/jhoicas/cadmeko-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("esquema al día")
	}

	clk := clock.Real()
	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, clk, log)
	ledger := inventory.NewLedgerUseCase(txRunner, stockRepo, movementRepo, productRepo, clk, log)
	orderUC := orders.NewOrderUseCase(txRunner, ledger, orderRepo, clientRepo, clk, log)
	productUC := usecase.NewProductUseCase(productRepo, clk)
	clientUC := usecase.NewClientUseCase(clientRepo, clk)

	// PDF: versión imprimible del estado del stock
	pdfRenderer := infrapdf.NewStockReportRenderer("CADMEKO", cfg.Report.Currency, cfg.Report.Locale)
	reportUC := reports.NewReportUseCase(stockRepo, reportRepo, pdfRenderer, clk, cfg.Report.LowStockThreshold, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.DocsPath); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.DocsPath,
			Path:     "docs",
			Title:    "CADMEKO API",
		}))
	} else {
		log.Warn().Str("path", cfg.HTTP.DocsPath).Msg("swagger.json no encontrado, /docs deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		ProductUC: productUC,
		ClientUC:  clientUC,
		Ledger:    ledger,
		OrderUC:   orderUC,
		ReportUC:  reportUC,
		Clock:     clk,
		JWTSecret: cfg.JWT.Secret,
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
