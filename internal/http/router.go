package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	WebhookHandler  *WebhookHandler
	OrdersHandler   *OrdersHandler
	RequestTimeout  time.Duration
}

func NewRouter(cfg *RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Compress(5))
	r.Use(SessionContextMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// The webhook route stays outside the request timeout middleware:
		// signature verification needs the raw body, and a timeout-induced
		// 5xx would just trigger a redelivery anyway.
		r.Post("/webhooks/payment", cfg.WebhookHandler.HandleEvent)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(cfg.RequestTimeout))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cfg.CartHandler.GetCart)
				r.Post("/items", cfg.CartHandler.AddItem)
				r.Delete("/items/{product_id}", cfg.CartHandler.RemoveItem)
				r.Delete("/", cfg.CartHandler.ClearCart)
			})

			r.Post("/checkout", cfg.CheckoutHandler.CreateSession)

			if cfg.OrdersHandler != nil {
				r.Get("/orders", cfg.OrdersHandler.ListOrders)
			}
		})
	})

	return r
}
