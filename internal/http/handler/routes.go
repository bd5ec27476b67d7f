package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"propdocs/internal/service"
)

// Services are the use cases the HTTP layer exposes.
type Services struct {
	Documents service.DocumentService
	Access    service.AccessRecorder
	Catalog   service.CatalogService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/properties", ListProperties(svc.Catalog))
	app.Get("/properties/:propertyID/documents", ListPropertyDocuments(svc.Catalog, svc.Documents))
	app.Post("/properties/:propertyID/documents", UploadDocument(svc.Catalog, svc.Documents))

	// Fixed segments before /documents/:id.
	app.Get("/documents/recent", ListRecentDocuments(svc.Documents))
	app.Get("/documents/expiring", ListExpiringDocuments(svc.Documents))

	app.Get("/documents/:id", GetDocument(svc.Documents))
	app.Patch("/documents/:id", UpdateDocument(svc.Documents))
	app.Delete("/documents/:id", DeleteDocument(svc.Documents))
	app.Get("/documents/:id/download", DownloadDocument(svc.Documents, svc.Access))
	app.Get("/documents/:id/url", DocumentURL(svc.Documents))
	app.Post("/documents/:id/versions", UploadVersion(svc.Documents))

	app.Get("/tags", ListTags(svc.Catalog))
	app.Post("/tags", CreateTag(svc.Catalog))
}
