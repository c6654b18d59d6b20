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
	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	infraafip "github.com/jhoicas/Facturacion-api/internal/infrastructure/afip"
	infrapdf "github.com/jhoicas/Facturacion-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Facturacion-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Facturacion-api/internal/interfaces/http"
	"github.com/jhoicas/Facturacion-api/internal/migrate"
	"github.com/jhoicas/Facturacion-api/pkg/config"
	"github.com/jhoicas/Facturacion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("afip_env", cfg.AFIP.DefaultEnv).
		Msg("iniciando aplicación")

	ctx := context.Background()

	if err := migrate.Up(ctx, cfg.DB.ConnectionString()); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	credRepo := postgres.NewCredencialRepository(pool)
	tokenRepo := postgres.NewTokenRepository(pool)
	pedidoRepo := postgres.NewPedidoRepository(pool)
	compRepo := postgres.NewComprobanteRepository(pool)
	voucherLock := postgres.NewVoucherLock(pool)

	wsaaClient := infraafip.NewWSAAClient(cfg.AFIP.SOAPTimeout)
	wsfeClient := infraafip.NewWSFEClient(cfg.AFIP.SOAPTimeout)

	authUC := billing.NewAuthUseCase(
		credRepo, tokenRepo, wsaaClient,
		billing.CMSSignerFunc(infraafip.SignTRA), log,
	)
	facturarUC := billing.NewFacturarUseCase(
		authUC, pedidoRepo, compRepo, wsfeClient, voucherLock, log,
	)

	// PDF: representación gráfica del comprobante AFIP (ticket con CAE y QR)
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	pdfUC := billing.NewComprobantePDFUseCase(compRepo, pedidoRepo, credRepo, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 70, // el ciclo WSAA+WSFE puede superar el minuto
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Facturación API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Facturar:   facturarUC,
		PDF:        pdfUC,
		DefaultEnv: cfg.AFIP.DefaultEnv,
		JWTSecret:  cfg.JWT.Secret,
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
