package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/alloy-bridge/actions"
	"github.com/marcelsud/alloy-bridge/metrics"
	"github.com/marcelsud/alloy-bridge/webhook"
)

// Handlers sets up the bridge API routes
func Handlers(ctx context.Context, webhookService webhook.UseCase, executor Executor, catalog *actions.Catalog, recorder *metrics.Recorder, metricsHandler http.Handler) *chi.Mux {
	logger := httplog.NewLogger("alloy-bridge", httplog.Options{
		JSON: true,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		// List catalog actions
		r.Get("/actions", getActions(catalog).ServeHTTP)

		// Execute a catalog action against the remote API
		r.Post("/actions/{resource}/{operation}", postAction(executor).ServeHTTP)

		// Receive webhook deliveries from the platform
		r.Post("/webhooks/alloy", postWebhook(webhookService, recorder).ServeHTTP)
	})

	return r
}
