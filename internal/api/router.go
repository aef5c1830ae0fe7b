// Package api hosts the HTTP surface of the service.
package api

import (
	"net/http"

	"github.com/emailgenx/emailgenx/internal/api/handlers"
	"github.com/emailgenx/emailgenx/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

// Deps are the collaborators the router needs.
type Deps struct {
	DB            *gorm.DB
	Mailboxes     handlers.Mailboxes
	Accounts      handlers.AccountReader
	Activity      handlers.ActivityMonitor
	AdminPassword string
}

// NewRouter builds the chi router.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// ============================================
	// Public Routes
	// ============================================
	r.Get("/healthz", handlers.HealthHandler(d.Accounts))
	r.Get("/api/version", handlers.VersionHandler())

	// ============================================
	// Admin Routes (protected if an admin password is set)
	// ============================================
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.OptionalBasicAuth(d.AdminPassword))
		r.Get("/apikey", handlers.GetAPIKeyHandler(d.DB))
		r.Post("/apikey/regenerate", handlers.RegenerateAPIKeyHandler(d.DB))
		if d.Activity != nil {
			r.Get("/activity", handlers.ActivityHandler(d.Activity))
			r.Delete("/activity", handlers.ClearActivityHandler(d.Activity))
		}
	})

	// ============================================
	// Account Routes (API key required)
	// ============================================
	r.Route("/api/accounts/{chatID}", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(d.DB))
		r.Post("/", handlers.ProvisionHandler(d.Mailboxes))
		r.Get("/", handlers.GetAccountHandler(d.Accounts))
		r.Delete("/", handlers.DeleteAccountHandler(d.Mailboxes))
		r.Get("/inbox", handlers.InboxHandler(d.Mailboxes))
	})

	return r
}
