package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bloomhaus/petalboard-backend/api/controllers"
	"github.com/bloomhaus/petalboard-backend/api/middleware"
	"github.com/bloomhaus/petalboard-backend/internal/auth"
	"github.com/bloomhaus/petalboard-backend/internal/customers"
	"github.com/bloomhaus/petalboard-backend/internal/dashboard"
	"github.com/bloomhaus/petalboard-backend/internal/orders"
	"github.com/bloomhaus/petalboard-backend/pkg/auth/session"
	"github.com/bloomhaus/petalboard-backend/pkg/config"
	"github.com/bloomhaus/petalboard-backend/pkg/enums"
	"github.com/bloomhaus/petalboard-backend/pkg/logger"
	"github.com/bloomhaus/petalboard-backend/pkg/metrics"
)

// RouterParams carries everything the route table needs.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	Auth        *auth.Service
	Orders      *orders.Service
	Customers   *customers.Service
	Dashboard   *dashboard.Service
	Sessions    session.AccessSessionChecker
	RateLimiter middleware.RateLimiter
	HTTPMetrics *metrics.HTTPMetrics
	DBPinger    controllers.Pinger
	CachePinger controllers.Pinger
}

// New assembles the full route table.
func New(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.Metrics(params.HTTPMetrics))
	r.Use(middleware.Logging(logg))

	r.Get("/health/live", controllers.Liveness())
	r.Get("/health/ready", controllers.Readiness(params.DBPinger, params.CachePinger, logg))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			loginLimit := middleware.AuthRateLimit(params.RateLimiter, middleware.AuthRateLimitOptions{
				Name:       "login",
				Window:     cfg.AuthRateLimit.LoginWindow,
				IPLimit:    cfg.AuthRateLimit.LoginIPLimit,
				EmailLimit: cfg.AuthRateLimit.LoginEmailLimit,
			}, logg)
			r.With(loginLimit).Post("/login", controllers.Login(params.Auth, cfg.JWT, cfg.App, logg))

			if !cfg.App.IsProd() {
				registerLimit := middleware.AuthRateLimit(params.RateLimiter, middleware.AuthRateLimitOptions{
					Name:       "register",
					Window:     cfg.AuthRateLimit.RegisterWindow,
					IPLimit:    cfg.AuthRateLimit.RegisterIPLimit,
					EmailLimit: cfg.AuthRateLimit.RegisterEmailLimit,
				}, logg)
				r.With(registerLimit).Post("/register", controllers.Register(params.Auth, logg))
			}

			r.Post("/logout", controllers.Logout(params.Auth, logg))
			r.Post("/refresh", controllers.Refresh(params.Auth, cfg.JWT, cfg.App, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, params.Sessions, logg))
			r.Use(middleware.RequireRole(logg, enums.RoleAdmin))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListOrders(params.Orders, logg))
				r.Post("/", controllers.CreateOrder(params.Orders, logg))
				r.Get("/pending-count", controllers.PendingOrderCount(params.Orders, logg))
				r.Get("/export", controllers.ExportOrders(params.Orders, logg))
				r.Patch("/{id}/status", controllers.UpdateOrderStatus(params.Orders, logg))
				r.Delete("/{id}", controllers.DeleteOrder(params.Orders, logg))
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", controllers.ListCustomers(params.Customers, logg))
				r.Get("/export", controllers.ExportCustomers(params.Customers, logg))
				r.Get("/emails", controllers.CustomerEmails(params.Customers, logg))
			})

			r.Get("/dashboard", controllers.DashboardStats(params.Dashboard, logg))
		})
	})

	// Browser pages. Everything except the login shell sits behind the
	// cookie gate, which answers 302 instead of JSON errors.
	r.Get("/admin/login", controllers.LoginPage())
	r.Group(func(r chi.Router) {
		r.Use(middleware.PageAuth(cfg.JWT, params.Sessions, logg))
		r.Get("/admin/dashboard", controllers.DashboardPage())
		r.Get("/admin/orders", controllers.OrdersPage())
		r.Get("/admin/emails", controllers.EmailsPage())
	})

	return r
}
