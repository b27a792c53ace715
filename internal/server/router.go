package server

import (
	"net/http"
	"time"

	availabilityH "github.com/fekuna/omnipos-availability-service/internal/availability/handler"
	"github.com/fekuna/omnipos-availability-service/internal/auth"
	orderH "github.com/fekuna/omnipos-availability-service/internal/order/handler"
	planH "github.com/fekuna/omnipos-availability-service/internal/plan/handler"
	shopH "github.com/fekuna/omnipos-availability-service/internal/shop/handler"
	"github.com/fekuna/omnipos-availability-service/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Availability *availabilityH.AvailabilityHandler
	Shop         *shopH.ShopHandler
	Plan         *planH.PlanHandler
	Webhook      *orderH.WebhookHandler
}

// NewRouter mounts the admin API behind RequireShop, the public storefront
// widget route and the Shopify webhook receiver.
func NewRouter(h *Handlers, shops auth.ShopLookup, requestTimeout time.Duration, log logger.ZapLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/webhooks/orders", h.Webhook.Orders)

	// Storefront widget, called cross-origin from the shop theme.
	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"https://*", "http://*"},
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			MaxAge:         300,
		}))
		r.Get("/product_availability/{productId}", h.Availability.ProductAvailability)
		// Preflight is answered by the cors middleware.
		r.Options("/product_availability/{productId}", func(http.ResponseWriter, *http.Request) {})
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireShop(shops, log))

		r.Get("/settings", h.Shop.Settings)
		r.Get("/plan/usage", h.Plan.Usage)

		r.Route("/resources", func(r chi.Router) {
			r.Get("/", h.Shop.ListResources)
			r.Post("/", h.Shop.RegisterResource)
			r.Get("/{id}/calendar_page", h.Availability.CalendarPage)
			r.Get("/{id}/available_dates", h.Availability.AvailableDates)
			r.Post("/{id}/availability_periods", h.Availability.CreatePeriod)
		})

		r.Post("/availability_periods/{id}", h.Availability.UpdatePeriod)
		r.Delete("/availability_periods/{id}", h.Availability.DeletePeriod)
	})

	return r
}
