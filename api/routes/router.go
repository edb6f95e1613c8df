package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Fidel-C/smartpaystack/api/controllers"
	"github.com/Fidel-C/smartpaystack/api/middleware"
	"github.com/Fidel-C/smartpaystack/pkg/config"
	"github.com/Fidel-C/smartpaystack/pkg/logger"
	"github.com/Fidel-C/smartpaystack/pkg/redis"
)

// Services groups the domain services the router exposes.
type Services struct {
	Plans         controllers.PlanService
	Subscriptions controllers.SubscriptionService
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	services Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	billingPolicy := middleware.NewRateLimitPolicy(
		"billing",
		cfg.Billing.RateLimitWindow,
		cfg.Billing.RateLimitMax,
	)
	// a typed nil client would slip past the middleware's own guard
	limiter := func(next http.Handler) http.Handler { return next }
	if redisClient != nil {
		limiter = middleware.RateLimit(billingPolicy, redisClient, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{
			"database": dbP,
			"redis":    pingerOrNil(redisClient),
		}))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/plans", func(r chi.Router) {
			r.Get("/", controllers.PlansList(services.Plans, logg))
			r.Get("/{planCode}", controllers.PlanGet(services.Plans, logg))
			r.With(limiter).Post("/", controllers.PlanCreate(services.Plans, logg))
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/", controllers.SubscriptionsList(services.Subscriptions, logg))
			r.Get("/{subscriptionCode}", controllers.SubscriptionGet(services.Subscriptions, logg))

			r.Group(func(r chi.Router) {
				r.Use(limiter)
				r.Post("/", controllers.SubscriptionCreate(services.Subscriptions, logg))
				r.Post("/{subscriptionCode}/enable", controllers.SubscriptionEnable(services.Subscriptions, logg))
				r.Post("/{subscriptionCode}/disable", controllers.SubscriptionDisable(services.Subscriptions, logg))
			})
		})
	})

	return r
}

// pingerOrNil avoids handing a typed nil to the health check.
func pingerOrNil(client *redis.Client) controllers.Pinger {
	if client == nil {
		return nil
	}
	return client
}
