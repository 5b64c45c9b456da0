package handlers

import (
	"net/http"
	"strings"

	"gutschein/internal/config"
	"gutschein/internal/db"
	"gutschein/internal/middleware"
	"gutschein/internal/voucher"
	"gutschein/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	txRunner  db.TxRunner
	cfg       config.Config
	service   VoucherService
	locations LocationStore
	hub       *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, service VoucherService, locations LocationStore, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner:  txRunner,
		cfg:       cfg,
		service:   service,
		locations: locations,
		hub:       hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Prometheus)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(h.cfg.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})

	router.Route("/coupons", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/", h.ListVouchers)
		r.Post("/", h.CreateVoucher)
		r.Post("/bulk", h.CreateVoucherBatch)
		r.Post("/old-coupon", h.CreateLegacyVoucher)
		r.Get("/check-id", h.CheckID)
		r.Get("/{id}", h.GetVoucher)
		r.Get("/{id}/history", h.VoucherHistory)
		r.Put("/{id}/redeem", h.RedeemVoucher)
	})

	router.Get("/locations", h.ListLocations)
	router.With(
		middleware.Auth(h.cfg.JWTSecret),
		middleware.RequireLocation(string(voucher.Buero)),
	).Put("/locations/{name}/password", h.SetLocationPassword)

	router.Get("/ws/coupons", h.WSCoupons)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"clients": h.hub.Connected(),
		})
	})
	return router
}
