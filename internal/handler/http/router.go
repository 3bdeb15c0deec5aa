package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mireska/cartsvc/pkg/health"
	"github.com/mireska/cartsvc/pkg/middleware"

	"github.com/mireska/cartsvc/internal/checkout"
	"github.com/mireska/cartsvc/internal/service"
)

// NewRouter creates the chi router with all cart service routes.
func NewRouter(
	carts *service.CartService,
	co *checkout.Service,
	healthReg *health.Registry,
	logger *slog.Logger,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Metrics("cart"))
	r.Use(middleware.Tracing("cart"))
	r.Use(middleware.ScopedLogger(logger))
	r.Use(CORS)

	r.Get("/health/live", healthReg.Liveness())
	r.Get("/health/ready", healthReg.Readiness())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	middleware.MountPprof(r, pprofCIDRs, logger)

	h := NewCartHandler(carts, co, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(UserIDFromHeader)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)

			r.Post("/items", h.AddItem)
			r.Get("/items/{productID}/quantity", h.ItemQuantity)
			r.Get("/items/{productID}/{variantID}/quantity", h.ItemQuantity)
			r.Put("/items/{productID}", h.UpdateItemQuantity)
			r.Put("/items/{productID}/{variantID}", h.UpdateItemQuantity)
			r.Delete("/items/{productID}", h.RemoveItem)
			r.Delete("/items/{productID}/{variantID}", h.RemoveItem)
		})

		r.Post("/checkout", h.Checkout)
	})

	return r
}
