package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/warrantywizard-backend/api/controllers"
	"github.com/angelmondragon/warrantywizard-backend/api/middleware"
	"github.com/angelmondragon/warrantywizard-backend/api/responses"
	"github.com/angelmondragon/warrantywizard-backend/internal/alerts"
	"github.com/angelmondragon/warrantywizard-backend/internal/chat"
	"github.com/angelmondragon/warrantywizard-backend/internal/insights"
	"github.com/angelmondragon/warrantywizard-backend/internal/invoices"
	"github.com/angelmondragon/warrantywizard-backend/internal/warranties"
	"github.com/angelmondragon/warrantywizard-backend/pkg/config"
	"github.com/angelmondragon/warrantywizard-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/warrantywizard-backend/pkg/errors"
	"github.com/angelmondragon/warrantywizard-backend/pkg/logger"
	"github.com/angelmondragon/warrantywizard-backend/pkg/metrics"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

const (
	chatRateLimitPolicy   = "chat"
	uploadRateLimitPolicy = "upload"
)

// Deps carries everything the router wires into handlers. DB, RateStore,
// HTTPMetrics and Gatherer may be nil.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	RateStore   middleware.RateLimiterStore
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
	Warranties  warranties.Service
	Alerts      *alerts.Service
	Insights    *insights.Service
	Chat        *chat.Service
	Invoices    *invoices.Service
	UploadsDir  string
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Logging(logg, d.HTTPMetrics),
		middleware.Debug(!cfg.App.IsProd()),
		middleware.Recoverer(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found").
			WithDetails(map[string]any{"path": req.URL.Path}))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteSuccessStatus(w, http.StatusMethodNotAllowed, types.ErrorEnvelope{
			Error: types.APIError{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"},
		})
	})

	r.Get("/health", controllers.Health(cfg, d.DB, logg))
	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/health/ready", controllers.HealthReady(cfg, d.DB, logg))

	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	if dir := strings.TrimSpace(d.UploadsDir); dir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(dir))))
	}

	maxUpload := cfg.Uploads.MaxBytes()
	chatLimit := middleware.RateLimit(
		middleware.NewRateLimitPolicy(chatRateLimitPolicy, cfg.RateLimit.Window, cfg.RateLimit.IPLimit, cfg.RateLimit.SessionLimit),
		d.RateStore,
		logg,
	)
	uploadLimit := middleware.RateLimit(
		middleware.NewRateLimitPolicy(uploadRateLimitPolicy, cfg.RateLimit.Window, cfg.RateLimit.IPLimit, 0),
		d.RateStore,
		logg,
	)

	r.Route("/api", func(r chi.Router) {
		r.Route("/warranties", func(r chi.Router) {
			r.Get("/", controllers.WarrantiesList(d.Warranties, logg))
			r.Post("/", controllers.WarrantyCreate(d.Warranties, logg))
			r.Get("/expiring", controllers.WarrantiesExpiring(d.Warranties, logg))
			r.Get("/expired", controllers.WarrantiesExpired(d.Warranties, logg))
			r.Get("/analytics", controllers.Analytics(d.Warranties, logg))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", controllers.WarrantyGet(d.Warranties, logg))
				r.Put("/", controllers.WarrantyUpdate(d.Warranties, logg))
				r.Patch("/", controllers.WarrantyUpdate(d.Warranties, logg))
				r.Delete("/", controllers.WarrantyDelete(d.Warranties, logg))
				r.Post("/claim", controllers.WarrantyClaim(d.Warranties, logg))
				r.Get("/alerts", controllers.WarrantyAlerts(d.Alerts, logg))
				r.Get("/insights", controllers.WarrantyInsightList(d.Insights, logg))
				r.With(chatLimit).Post("/insights", controllers.WarrantyInsightGenerate(d.Insights, logg))
			})
		})

		r.Get("/analytics", controllers.Analytics(d.Warranties, logg))

		r.With(chatLimit).Post("/ai-chat", controllers.Chat(d.Chat, logg))
		r.Route("/ai", func(r chi.Router) {
			r.With(chatLimit).Post("/chat", controllers.Chat(d.Chat, logg))
			r.Get("/chat/history/{sessionID}", controllers.ChatHistory(d.Chat, logg))
			r.Delete("/chat/history/{sessionID}", controllers.ChatHistoryClear(d.Chat, logg))
			r.Post("/extract-invoice", controllers.ExtractInvoice(d.Invoices, logg))
		})

		r.Route("/upload", func(r chi.Router) {
			r.Use(uploadLimit)
			r.Post("/invoice", controllers.UploadInvoicePreview(d.Invoices, maxUpload, logg))
			r.Post("/invoice/create", controllers.UploadInvoiceCreate(d.Invoices, maxUpload, logg))
			r.Post("/csv", controllers.UploadCSV(d.Invoices, maxUpload, logg))
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", controllers.AlertsList(d.Alerts, logg))
			r.Post("/generate", controllers.AlertsGenerate(d.Alerts, logg))
			r.Post("/{id}/sent", controllers.AlertMarkSent(d.Alerts, logg))
			r.Delete("/{id}", controllers.AlertDelete(d.Alerts, logg))
		})
	})

	return r
}
