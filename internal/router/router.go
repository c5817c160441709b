package router

import (
	"net/http"
	"time"

	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/handler"
	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/middleware"
	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/model"
	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/repository"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// New creates the HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	checkoutHandler *handler.CheckoutHandler,
	sessions repository.SessionRepository,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID, chimw.RealIP)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(chimw.Timeout(15 * time.Second))

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(sessions, logger))

		r.Get("/api/products", productHandler.GetAll)
		r.Get("/api/products/{id}", productHandler.GetByID)
		r.Get("/api/orders/{id}", checkoutHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logger, model.RoleKasir, model.RoleAdmin))
			r.Post("/api/pos/orders", checkoutHandler.Create)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logger, model.RoleAdmin))
			r.Patch("/api/orders/{id}/status", checkoutHandler.UpdateStatus)
		})
	})

	return r
}
