package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/rewear-backend/internal/api/handlers"
	"github.com/baharkarakas/rewear-backend/internal/api/httpx"
	"github.com/baharkarakas/rewear-backend/internal/apperr"
	"github.com/baharkarakas/rewear-backend/internal/auth"
	"github.com/baharkarakas/rewear-backend/internal/config"
	"github.com/baharkarakas/rewear-backend/internal/idempotency"
	"github.com/baharkarakas/rewear-backend/internal/metrics"
	"github.com/baharkarakas/rewear-backend/internal/middleware"
	repo "github.com/baharkarakas/rewear-backend/internal/repository"
	"github.com/baharkarakas/rewear-backend/internal/services"
)

type RouterDeps struct {
	Cfg         config.Config
	Log         *slog.Logger
	Store       repo.Store
	Tokens      *auth.TokenManager
	Idempotency idempotency.Store

	Users     *services.UserService
	Points    *services.PointsService
	Catalog   *services.CatalogService
	Swaps     *services.SwapService
	Messages  *services.MessageService
	Admin     *services.AdminService
	Dashboard *services.DashboardService
}

func NewRouter(d RouterDeps) http.Handler {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Logging(log),
		middleware.Recover(log),
		middleware.HTTPMetrics,
		middleware.RateLimit(d.Cfg.RateRPS),
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.Cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.HeaderIdempotencyKey, middleware.HeaderRequestID},
		ExposedHeaders: []string{middleware.HeaderRequestID, middleware.HeaderReplayed},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteAppError(w, nil, apperr.New(apperr.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	health := &handlers.HealthHandler{Store: d.Store, Log: log}
	r.Get("/health", health.Health)
	r.Handle("/metrics", metrics.Handler())

	authH := handlers.NewAuthHandler(d.Tokens, d.Users, log)
	me := &handlers.MeHandler{Users: d.Users, Points: d.Points, Dashboard: d.Dashboard, Log: log}
	items := &handlers.ItemHandler{Catalog: d.Catalog, Swaps: d.Swaps, Log: log}
	swaps := &handlers.SwapHandler{Swaps: d.Swaps, Log: log}
	msgs := &handlers.MessageHandler{Messages: d.Messages, Log: log}
	admin := &handlers.AdminHandler{Admin: d.Admin, Log: log}

	authn := middleware.NewAuthMiddleware(d.Tokens, d.Cfg.Env, log)
	idem := middleware.Idempotency(d.Idempotency, d.Cfg.IdempotencyTTL, log)

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- auth ----------
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		// ---------- catalog browsing ----------
		r.Get("/items", items.List)
		r.Get("/items/{id}", items.Get)

		r.Group(func(r chi.Router) {
			r.Use(authn.Auth)

			// ---------- me ----------
			r.Get("/me", me.Profile)
			r.Get("/me/dashboard", me.Summary)
			r.Get("/me/balance", me.Balance)
			r.Get("/me/transactions", me.Transactions)

			// ---------- items ----------
			r.Get("/items/{id}/swaps", items.ListSwaps)
			r.With(idem).Post("/items", items.Create)
			r.With(idem).Put("/items/{id}", items.Update)
			r.With(idem).Post("/items/{id}/status", items.SetStatus)

			// ---------- swaps ----------
			r.Get("/swaps", swaps.List)
			r.Get("/swaps/{id}", swaps.Get)
			r.With(idem).Post("/swaps", swaps.Create)
			r.With(idem).Post("/swaps/{id}/accept", swaps.Accept)
			r.With(idem).Post("/swaps/{id}/decline", swaps.Decline)
			r.With(idem).Post("/swaps/{id}/cancel", swaps.Cancel)

			// ---------- messages ----------
			r.Get("/messages", msgs.List)
			r.Post("/messages", msgs.Send)

			// ---------- admin ----------
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/users", admin.ListUsers)
				r.Post("/users/{id}/block", admin.BlockUser)
				r.Post("/users/{id}/unblock", admin.UnblockUser)
				r.Get("/items", admin.ListItems)
				r.With(idem).Post("/items/{id}/reject", admin.RejectItem)
				r.With(idem).Post("/points/grant", admin.GrantPoints)
			})
		})
	})

	return r
}
