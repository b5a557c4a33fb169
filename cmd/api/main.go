package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/marcelsud/alloy-bridge/actions"
	"github.com/marcelsud/alloy-bridge/alloy"
	"github.com/marcelsud/alloy-bridge/config"
	"github.com/marcelsud/alloy-bridge/internal/http/chi"
	"github.com/marcelsud/alloy-bridge/metrics"
	"github.com/marcelsud/alloy-bridge/webhook"
	"github.com/marcelsud/alloy-bridge/webhook/redis"
)

const TIMEOUT = 30 * time.Second

/* api - the inbound edge of the bridge
 * Wires config, the redis stream hand-off, the webhook ingestion
 * pipeline, the action catalog and the metrics exporter behind a
 * single chi router, then serves until signalled.
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		return
	}
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	forwarder, err := redis.NewForwarder(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer forwarder.Close(ctx)

	secret := cfg.WebhookSecret
	if !cfg.WebhookVerify {
		secret = ""
	}
	webhookService := webhook.NewService(forwarder, forwarder, webhook.Options{
		Secret:     secret,
		EventTypes: cfg.EventTypes(),
	})

	catalog, err := actions.Default()
	if err != nil {
		fmt.Println(err)
		return
	}

	recorder := metrics.NewRecorder()
	exporter, err := metrics.NewOTelExporter(recorder)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer exporter.Shutdown(ctx)

	baseURL, err := cfg.BaseURL()
	if err != nil {
		fmt.Println(err)
		return
	}
	client := alloy.NewClient(
		alloy.Credentials{APIKey: cfg.AlloyAPIKey, APISecret: cfg.AlloyAPISecret},
		alloy.WithBaseURL(baseURL),
		alloy.WithTimeout(cfg.RequestTimeout()),
		alloy.WithObserver(recorder),
	)
	runner := alloy.NewRunner(client, catalog,
		alloy.WithRetryPolicy(cfg.RetryPolicy()),
		alloy.WithWorkflowToken(cfg.WorkflowToken),
	)

	r := chi.Handlers(ctx, webhookService, runner, catalog, recorder, exporter.ServeHTTP())
	http.Handle("/", r)
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      http.DefaultServeMux,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)
	fmt.Printf("Listening on port %s\n", cfg.Port)
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		fmt.Println(err)
		return
	}
	err = <-errShutdown
	if err != nil {
		fmt.Println(err)
		return
	}
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		fmt.Printf("\nShutting down server...\n")
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	default:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	}
}
