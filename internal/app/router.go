package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/inkwell-press/inkwell/internal/affiliate"
	"github.com/inkwell-press/inkwell/internal/articles"
	"github.com/inkwell-press/inkwell/internal/auth"
	"github.com/inkwell-press/inkwell/internal/observability"
	"github.com/inkwell-press/inkwell/internal/subscriptions"
	"github.com/inkwell-press/inkwell/internal/users"
	"github.com/inkwell-press/inkwell/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	AuthHandler         *auth.Handler
	AuthMiddleware      auth.Middleware
	UsersHandler        *users.Handler
	ArticlesHandler     *articles.Handler
	AffiliateHandler    *affiliate.Handler
	SubscriptionHandler *subscriptions.Handler
	JobHandler          *jobs.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router with Inkwell defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Public surface: registration, login, published articles, provider webhooks.
	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.UsersHandler != nil {
		params.UsersHandler.MountPublicRoutes(r)
	}
	if params.ArticlesHandler != nil {
		r.Route("/articles", params.ArticlesHandler.MountPublicRoutes)
	}
	if params.SubscriptionHandler != nil {
		r.Route("/webhooks", params.SubscriptionHandler.MountWebhookRoutes)
	}

	// Authenticated surface.
	r.Group(func(r chi.Router) {
		r.Use(params.AuthMiddleware.Authenticate)

		if params.UsersHandler != nil {
			params.UsersHandler.MountRoutes(r)
		}
		if params.AffiliateHandler != nil {
			r.Route("/affiliate", params.AffiliateHandler.MountRoutes)
		}
		if params.SubscriptionHandler != nil {
			r.Route("/subscriptions", params.SubscriptionHandler.MountRoutes)
		}
		if params.ArticlesHandler != nil {
			r.Group(func(r chi.Router) {
				r.Use(params.AuthMiddleware.RequireRole(users.RoleAuthor, users.RoleAdmin))
				r.Route("/articles/manage", params.ArticlesHandler.MountAuthorRoutes)
			})
		}

		r.Group(func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireRole(users.RoleAdmin))
			if params.UsersHandler != nil {
				r.Route("/admin/users", params.UsersHandler.MountAdminRoutes)
			}
			if params.AffiliateHandler != nil {
				r.Route("/admin/affiliate", params.AffiliateHandler.MountAdminRoutes)
			}
		})
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
