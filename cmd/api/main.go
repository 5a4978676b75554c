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
	"github.com/jhoicas/InvenScan-api/internal/application/auth"
	"github.com/jhoicas/InvenScan-api/internal/application/media"
	appscan "github.com/jhoicas/InvenScan-api/internal/application/scan"
	"github.com/jhoicas/InvenScan-api/internal/application/usecase"
	"github.com/jhoicas/InvenScan-api/internal/infrastructure/events"
	"github.com/jhoicas/InvenScan-api/internal/infrastructure/postgres"
	"github.com/jhoicas/InvenScan-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/InvenScan-api/internal/interfaces/http"
	"github.com/jhoicas/InvenScan-api/pkg/config"
	"github.com/jhoicas/InvenScan-api/pkg/logger"
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
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	scanRepo := postgres.NewScanRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	blobStore, err := storage.NewLocal(cfg.Storage.Root)
	if err != nil {
		log.Fatal().Err(err).Msg("object storage local")
	}

	// Eventos: AMQP_URL vacío desactiva la publicación.
	var publisher *events.Publisher
	if cfg.AMQP.URL != "" {
		publisher, err = events.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a RabbitMQ")
		}
		defer publisher.Close()
	}
	var scanEvents appscan.EventPublisher
	var productEvents usecase.EventPublisher
	if publisher != nil {
		scanEvents = publisher
		productEvents = publisher
	}

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	productUC := usecase.NewProductUseCase(productRepo, productEvents)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo)
	mediaUC := media.NewUseCase(blobStore, productRepo, cfg.Storage.PublicPath, cfg.Storage.MaxSizeMB)
	scanUC := appscan.NewUseCase(txRunner, productRepo, scanRepo, scanEvents, log)

	sessions := httpRouter.NewSessionRegistry(cfg.Scan.Cooldown(), cfg.Scan.Rearm(), cfg.Scan.SessionTTL())
	defer sessions.Stop()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    (cfg.Storage.MaxSizeMB + 1) << 20,
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
		Title:    "InvenScan API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", httpRouter.MetricsHandler())

	// Imágenes de producto servidas como estáticos.
	app.Static(cfg.Storage.PublicPath, cfg.Storage.Root)

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		ProductUC:  productUC,
		CategoryUC: categoryUC,
		MediaUC:    mediaUC,
		ScanUC:     scanUC,
		Sessions:   sessions,
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
