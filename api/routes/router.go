package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/servex-app/servex-backend/api/controllers"
	authcontrollers "github.com/servex-app/servex-backend/api/controllers/auth"
	ordercontrollers "github.com/servex-app/servex-backend/api/controllers/orders"
	paymentcontrollers "github.com/servex-app/servex-backend/api/controllers/payments"
	"github.com/servex-app/servex-backend/api/middleware"
	internalauth "github.com/servex-app/servex-backend/internal/auth"
	"github.com/servex-app/servex-backend/internal/catalog"
	"github.com/servex-app/servex-backend/internal/notify"
	"github.com/servex-app/servex-backend/internal/orders"
	"github.com/servex-app/servex-backend/internal/payments"
	"github.com/servex-app/servex-backend/pkg/auth/session"
	"github.com/servex-app/servex-backend/pkg/config"
	"github.com/servex-app/servex-backend/pkg/db"
	"github.com/servex-app/servex-backend/pkg/enums"
	"github.com/servex-app/servex-backend/pkg/logger"
	"github.com/servex-app/servex-backend/pkg/redis"
)

// Services bundles the wired domain services the router mounts.
type Services struct {
	Auth     *internalauth.Service
	Catalog  *catalog.Service
	Orders   *orders.Service
	Payments *payments.Service
	Bus      *notify.Bus
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions *session.Manager,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.FrontendURL),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy("login", time.Minute, 20, 5)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Diner-facing surface. No staff credentials; ordering needs a
		// table session minted by the QR resolve endpoint.
		r.Get("/menu", controllers.ListMenu(svcs.Catalog, logg))
		r.Get("/tables/{tableId}/session", controllers.ResolveTable(svcs.Catalog, logg))
		r.Get("/orders/{orderId}", ordercontrollers.Get(svcs.Orders, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.TableSession(cfg.JWT, logg))
			r.Post("/orders", ordercontrollers.Create(svcs.Orders, logg))
			r.Post("/orders/{orderId}/payment", paymentcontrollers.CreateIntent(svcs.Payments, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/key", paymentcontrollers.Key(svcs.Payments, logg))
			r.Post("/verify", paymentcontrollers.Verify(svcs.Payments, logg))
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
				Post("/login", authcontrollers.Login(svcs.Auth, logg))
			r.Post("/logout", authcontrollers.Logout(svcs.Auth, cfg.JWT, logg))
			r.Post("/refresh", controllers.AuthRefresh(sessions, cfg.JWT, logg))
		})

		// Staff surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))

			r.Route("/kitchen", func(r chi.Router) {
				r.Use(middleware.RequireAnyRole(logg, enums.StaffRoleKitchen.String(), enums.StaffRoleAdmin.String()))
				r.Get("/orders", ordercontrollers.KitchenList(svcs.Orders, logg))
				r.Patch("/orders/{orderId}/status", ordercontrollers.UpdateStatus(svcs.Orders, logg))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.StaffRoleAdmin.String(), logg))
				r.Post("/staff", authcontrollers.Register(svcs.Auth, logg))
				r.Get("/orders", controllers.AdminListOrders(svcs.Orders, logg))
				r.Get("/analytics", controllers.AdminAnalytics(svcs.Orders, logg))
				r.Get("/menu", controllers.ListMenu(svcs.Catalog, logg))
				r.Post("/menu", controllers.CreateMenuItem(svcs.Catalog, logg))
				r.Patch("/menu/{itemId}", controllers.UpdateMenuItem(svcs.Catalog, logg))
				r.Get("/tables", controllers.ListTables(svcs.Catalog, logg))
				r.Post("/tables", controllers.CreateTable(svcs.Catalog, logg))
				r.Patch("/tables/{tableId}/active", controllers.SetTableActive(svcs.Catalog, logg))
				r.Post("/tables/{tableId}/regenerate-qr", controllers.RegenerateTableQR(svcs.Catalog, logg))
			})
		})
	})

	r.Route("/ws", func(r chi.Router) {
		r.Get("/kitchen", controllers.KitchenSocket(svcs.Bus, cfg.JWT, sessions, logg))
		r.Get("/orders/{orderId}", controllers.OrderSocket(svcs.Bus, logg))
	})

	return r
}
