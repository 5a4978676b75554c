package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/InvenScan-api/internal/application/auth"
	"github.com/jhoicas/InvenScan-api/internal/application/media"
	"github.com/jhoicas/InvenScan-api/internal/application/scan"
	"github.com/jhoicas/InvenScan-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	ProductUC  *usecase.ProductUseCase
	CategoryUC *usecase.CategoryUseCase
	MediaUC    *media.UseCase
	ScanUC     *scan.UseCase
	Sessions   *SessionRegistry
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/low-stock", productHandler.ListLowStock)
	products.Get("/barcode/:barcode", productHandler.GetByBarcode)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Imágenes de producto (protegido)
	mediaHandler := NewMediaHandler(deps.MediaUC)
	products.Post("/:id/image", mediaHandler.Upload)
	products.Delete("/:id/image", mediaHandler.Delete)

	// Categories (protegido)
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Post("/", categoryHandler.Create)
	categories.Get("/", categoryHandler.List)
	categories.Put("/:id", categoryHandler.Update)
	categories.Delete("/:id", categoryHandler.Delete)

	// Scan sessions e historial (protegido)
	scanGroup := protected.Group("/scan")
	scanHandler := NewScanHandler(deps.Sessions, deps.ScanUC)
	scanGroup.Post("/sessions", scanHandler.CreateSession)
	scanGroup.Post("/sessions/:id/decode", scanHandler.Decode)
	scanGroup.Delete("/sessions/:id", scanHandler.CloseSession)
	scanGroup.Get("/history", scanHandler.History)
}
