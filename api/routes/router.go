package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mzielinski/usermgmt-backend/api/controllers"
	"github.com/mzielinski/usermgmt-backend/api/middleware"
	"github.com/mzielinski/usermgmt-backend/internal/emails"
	"github.com/mzielinski/usermgmt-backend/internal/users"
	"github.com/mzielinski/usermgmt-backend/pkg/config"
	"github.com/mzielinski/usermgmt-backend/pkg/logger"
	"github.com/mzielinski/usermgmt-backend/pkg/metrics"
	pkgredis "github.com/mzielinski/usermgmt-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DBPinger     controllers.Pinger
	RedisPinger  controllers.Pinger
	IdemStore    pkgredis.IdempotencyStore
	HTTPMetrics  *metrics.HTTPMetrics
	Registry     *prometheus.Registry
	UserService  users.Service
	EmailService emails.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DBPinger,
			"redis":    deps.RedisPinger,
		}))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(middleware.Idempotency(deps.IdemStore, logg))

		r.Get("/", controllers.UsersList(deps.UserService, logg))
		r.Post("/", controllers.UsersCreate(deps.UserService, logg))

		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/", controllers.UsersGet(deps.UserService, logg))
			r.Put("/", controllers.UsersUpdate(deps.UserService, logg))
			r.Delete("/", controllers.UsersDelete(deps.UserService, logg))
			r.Post("/welcome", controllers.UsersWelcome(deps.UserService, logg))

			r.Route("/emails", func(r chi.Router) {
				r.Get("/", controllers.UserEmailsList(deps.EmailService, logg))
				r.Post("/", controllers.UserEmailsAdd(deps.EmailService, logg))
				r.Get("/{emailID}", controllers.UserEmailsGet(deps.EmailService, logg))
				r.Put("/{emailID}", controllers.UserEmailsUpdate(deps.EmailService, logg))
				r.Delete("/{emailID}", controllers.UserEmailsDelete(deps.EmailService, logg))
			})
		})
	})

	return r
}
