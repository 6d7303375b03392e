package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lucasmv/zapflow-backend/api/controllers"
	webhookcontrollers "github.com/lucasmv/zapflow-backend/api/controllers/webhooks"
	"github.com/lucasmv/zapflow-backend/api/middleware"
	"github.com/lucasmv/zapflow-backend/internal/board"
	"github.com/lucasmv/zapflow-backend/internal/catalog"
	checkoutsvc "github.com/lucasmv/zapflow-backend/internal/checkout"
	"github.com/lucasmv/zapflow-backend/internal/dashboard"
	"github.com/lucasmv/zapflow-backend/internal/deliveryfee"
	"github.com/lucasmv/zapflow-backend/internal/orders"
	"github.com/lucasmv/zapflow-backend/internal/payments"
	"github.com/lucasmv/zapflow-backend/pkg/config"
	"github.com/lucasmv/zapflow-backend/pkg/db"
	"github.com/lucasmv/zapflow-backend/pkg/logger"
	"github.com/lucasmv/zapflow-backend/pkg/metrics"
	"github.com/lucasmv/zapflow-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	catalogService catalog.Service,
	catalogRepo *catalog.Repository,
	checkoutService checkoutsvc.Service,
	feeEngine *deliveryfee.Engine,
	paymentsService payments.Service,
	ordersRepo orders.Repository,
	boardService board.Service,
	boardSubscriber board.Subscriber,
	dashboardService dashboard.Service,
	webhookReconciler webhookcontrollers.PaymentReconciler,
	metricsHandler http.Handler,
	m *metrics.StorefrontMetrics,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	readiness := map[string]controllers.Pinger{
		"database": dbP,
		"redis":    redisClient,
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/public/catalog/{slug}", func(r chi.Router) {
		r.Use(middleware.Idempotency(redisClient, logg))
		r.Get("/", controllers.Storefront(catalogService, logg))
		r.Post("/fee-quote", controllers.FeeQuote(catalogService, feeEngine, logg))
		r.Post("/checkout", controllers.Checkout(checkoutService, logg))
	})

	r.Route("/payments", func(r chi.Router) {
		// The webhook stays outside the idempotency wrapper; the
		// reconciler is idempotent on its own.
		r.Post("/webhook", webhookcontrollers.MercadoPagoWebhook(webhookReconciler, logg))
		r.With(middleware.Idempotency(redisClient, logg)).Post("/pix", controllers.CreatePixIntent(paymentsService, catalogRepo, ordersRepo, logg))
	})

	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/", controllers.DashboardSummary(dashboardService, logg))
		r.Get("/orders", controllers.DashboardOrders(dashboardService, logg))
	})

	r.Route("/api/v1/board/{slug}", func(r chi.Router) {
		r.Get("/orders", controllers.BoardSnapshot(boardService, catalogService, logg))
		r.With(middleware.Idempotency(redisClient, logg)).Post("/orders/{orderID}/advance", controllers.BoardAdvance(boardService, catalogService, logg))
		r.Get("/stream", controllers.BoardStream(boardService, catalogService, boardSubscriber, cfg.Board.HeartbeatInterval, m, logg))
	})

	return r
}
