package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joeshaw/envdecode"
	"github.com/spf13/cobra"

	"cookassistant"
	"cookassistant/server"
	"cookassistant/slack"
	"cookassistant/workflow"
)

func newServeCmd() *cobra.Command {
	var (
		addr     string
		withOtel bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat API over HTTP, SSE and WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var serverConfig cookassistant.ServerConfig
			if err := envdecode.Decode(&serverConfig); err != nil {
				return fmt.Errorf("decode server config: %w", err)
			}
			if addr != "" {
				serverConfig.Addr = addr
			}

			app, _, err := loadApp(ctx, backend, cookassistant.NewStdoutRunLogger())
			if err != nil {
				return err
			}

			var runner workflow.Runner = app.Pipeline()
			if withOtel {
				tracerProvider, meterProvider, otelShutdown, err := cookassistant.InitOtel(ctx)
				if err != nil {
					return fmt.Errorf("init otel: %w", err)
				}
				defer func() {
					if err := otelShutdown(cmd.Context()); err != nil {
						slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
					}
				}()
				runner = workflow.NewInstrumentedPipeline(
					app.Pipeline(),
					tracerProvider.Tracer(cookassistant.TracerNameServer),
					meterProvider.Meter(cookassistant.TracerNameServer),
				)
			}

			opts := []server.Option{
				server.WithCatalog(app.Catalog),
				server.WithCalorieLookup(app.Nutrition),
				server.WithTimeout(serverConfig.RequestTimeout),
			}
			if serverConfig.SlackWebhookURL != "" {
				client := slack.NewClient(serverConfig.SlackWebhookURL, http.DefaultClient)
				opts = append(opts, server.WithNotifier(slack.NewNotifier(client, serverConfig.SlackChannel)))
				slog.Info("SETUP: slack notifications enabled", "channel", serverConfig.SlackChannel)
			}

			return server.New(runner, opts...).ListenAndServe(ctx, serverConfig.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default $ADDR)")
	cmd.Flags().BoolVar(&withOtel, "otel", false, "Export traces and metrics over OTLP")
	return cmd
}
