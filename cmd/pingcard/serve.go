package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pingcard/pingcard/internal/card"
	"github.com/pingcard/pingcard/internal/config"
	httpapp "github.com/pingcard/pingcard/internal/http"
	"github.com/pingcard/pingcard/internal/http/handlers"
	"github.com/pingcard/pingcard/internal/metrics"
	"github.com/pingcard/pingcard/internal/publish"
	"github.com/pingcard/pingcard/internal/publish/webhook"
	"github.com/pingcard/pingcard/internal/telemetry"
	"github.com/pingcard/pingcard/internal/telemetry/mqttsource"
	"github.com/pingcard/pingcard/internal/updater"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:         "serve",
	Short:       "Run the telemetry endpoints and keep the status card published.",
	Args:        cobra.NoArgs,
	Annotations: structuredLogAnnotation(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.Default()

	messenger, err := webhook.New(cfg.WebhookURL)
	if err != nil {
		return err
	}
	handles, closeHandles, err := openHandleStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeHandles()

	publisher, err := publish.NewMessagePublisher(messenger, handles, cfg.Subscription, logger)
	if err != nil {
		return err
	}

	hub := telemetry.NewHub()
	renderer := card.NewRenderer(cfg.Location)
	controller, err := updater.NewController(hub, publisher, updater.Options{
		Interval:       cfg.UpdateInterval,
		PublishTimeout: cfg.PublishTimeout,
		Renderer:       renderer,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	srv, err := httpapp.NewEchoServer(&handlers.Handlers{
		Sink:      hub,
		Snapshots: controller.Store(),
		Renderer:  renderer,
		Ready:     controller.Active,
	}, logger)
	if err != nil {
		return err
	}

	var source *mqttsource.Source
	if mqttEnabled(cfg.MQTTBroker) {
		source, err = mqttsource.New(cfg.MQTTBroker, cfg.MQTTTopic, hub, logger)
		if err != nil {
			return err
		}
	}

	if err := controller.Start(ctx); err != nil {
		return err
	}
	defer func() {
		controller.Stop()
		controller.Wait()
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, cfg.HTTPAddr)
	})

	if _, metricsErrCh := metrics.StartServer(gctx, cfg.MetricsAddr, logger); metricsErrCh != nil {
		g.Go(func() error {
			select {
			case err := <-metricsErrCh:
				return fmt.Errorf("metrics server: %w", err)
			case <-gctx.Done():
				return nil
			}
		})
	}

	if source != nil {
		g.Go(func() error {
			return source.Run(gctx)
		})
	}

	logger.Info("pingcard serving",
		"command", cfg.Command,
		"subscription", cfg.Subscription,
		"interval", cfg.UpdateInterval,
		"handle_store", cfg.HandleStore,
	)
	return g.Wait()
}

func mqttEnabled(broker string) bool {
	switch strings.ToLower(strings.TrimSpace(broker)) {
	case "", "off", "disabled", "false":
		return false
	}
	return true
}
