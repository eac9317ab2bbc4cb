package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kaoruharada/marketcore-backend/api/controllers"
	webhookcontrollers "github.com/kaoruharada/marketcore-backend/api/controllers/webhooks"
	"github.com/kaoruharada/marketcore-backend/api/middleware"
	cartsvc "github.com/kaoruharada/marketcore-backend/internal/cart"
	ordersvc "github.com/kaoruharada/marketcore-backend/internal/orders"
	productsvc "github.com/kaoruharada/marketcore-backend/internal/products"
	refundsvc "github.com/kaoruharada/marketcore-backend/internal/refunds"
	"github.com/kaoruharada/marketcore-backend/pkg/config"
	"github.com/kaoruharada/marketcore-backend/pkg/db"
	"github.com/kaoruharada/marketcore-backend/pkg/logger"
	"github.com/kaoruharada/marketcore-backend/pkg/redis"
	pkgstripe "github.com/kaoruharada/marketcore-backend/pkg/stripe"
)

type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            *db.Client
	Redis         *redis.Client
	StripeClient  *pkgstripe.Client
	CartService   cartsvc.Service
	ProductSvc    productsvc.Service
	OrderService  ordersvc.Service
	Refunds       refundsvc.Coordinator
	StripeWebhook webhookcontrollers.StripeWebhookService
	Registry      *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessDeps(deps)))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		var signer interface{ SigningSecret() string }
		if deps.StripeClient != nil {
			signer = deps.StripeClient
		}
		r.Post("/stripe", webhookcontrollers.StripeWebhook(deps.StripeWebhook, signer, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/carts", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.CartService, logg))
			r.Post("/items", controllers.CartAddSKU(deps.CartService, logg))
			r.Delete("/items/{skuID}", controllers.CartDeleteSKU(deps.CartService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/{orderID}", controllers.OrderGet(deps.OrderService, logg))
		})

		r.Route("/providers", func(r chi.Router) {
			r.Use(middleware.RequireOperator(logg))

			r.Patch("/skus/{skuID}/availability", controllers.SKUSetAvailability(deps.ProductSvc, logg))
			r.Get("/orders", controllers.ProviderOrdersList(deps.OrderService, logg))
			r.Get("/orders/{orderID}", controllers.ProviderOrderGet(deps.OrderService, logg))
			r.Post("/orders/{orderID}/fulfillment", controllers.ProviderOrderFulfillment(deps.OrderService, logg))
			r.Post("/orders/{orderID}/refund", controllers.ProviderOrderRefund(deps.Refunds, logg))
		})
	})

	return r
}

func readinessDeps(deps Deps) map[string]controllers.Pinger {
	out := map[string]controllers.Pinger{}
	if deps.DB != nil {
		out["database"] = deps.DB
	}
	if deps.Redis != nil {
		out["redis"] = deps.Redis
	}
	return out
}
