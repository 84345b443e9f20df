package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cookassistant"
	"cookassistant/slack"
	"cookassistant/workflow"
)

func newAskCmd() *cobra.Command {
	var (
		stream   bool
		withOtel bool
		notify   bool
		runLog   string
	)

	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Ask the assistant one question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			query := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			logger := cookassistant.RunLogger(cookassistant.NewNoOpRunLogger())
			if runLog != "" {
				l, cleanup, err := newRunLogger(runLog)
				if err != nil {
					return err
				}
				defer func() {
					if err := cleanup(); err != nil {
						slog.Error("SETUP: Failed to flush run log", "error", err)
					}
				}()
				logger = l
			}

			app, cfg, err := loadApp(ctx, backend, logger)
			if err != nil {
				return err
			}

			var runner workflow.Runner = app.Pipeline(workflow.WithRunLogger(logger))
			if withOtel {
				tracerProvider, meterProvider, otelShutdown, err := cookassistant.InitOtel(ctx)
				if err != nil {
					return fmt.Errorf("init otel: %w", err)
				}
				defer func() {
					if err := otelShutdown(ctx); err != nil {
						slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
					}
				}()

				tracer := tracerProvider.Tracer(cookassistant.TracerNameWorkflow)
				var span trace.Span
				ctx, span = tracer.Start(ctx, "cookassist.ask", trace.WithAttributes(
					attribute.String("agent.backend", cfg.Backend),
					attribute.String("model.id", cfg.Model.ModelID),
				))
				defer span.End()

				runner = workflow.NewInstrumentedPipeline(
					app.Pipeline(workflow.WithRunLogger(logger)),
					tracer,
					meterProvider.Meter(cookassistant.TracerNameWorkflow),
				)
			}

			var res workflow.Result
			if stream {
				res = runner.RunStream(ctx, query, func(ev workflow.Event) {
					switch ev.Type {
					case workflow.EventStepStart:
						fmt.Fprintf(cmd.ErrOrStderr(), "▶ %s\n", ev.Step)
					case workflow.EventStepResult:
						fmt.Fprintf(cmd.ErrOrStderr(), "✔ %s\n", ev.Step)
					}
				})
			} else {
				res = runner.Run(ctx, query)
			}

			fmt.Fprintln(out, res.Response)
			if debug {
				cookassistant.Dump(res.Metadata)
			}

			if notify {
				var serverConfig cookassistant.ServerConfig
				if err := envdecode.Decode(&serverConfig); err != nil {
					return fmt.Errorf("decode server config: %w", err)
				}
				if serverConfig.SlackWebhookURL == "" {
					return fmt.Errorf("--notify needs SLACK_WEBHOOK_URL")
				}
				n := slack.NewNotifier(slack.NewClient(serverConfig.SlackWebhookURL, http.DefaultClient), serverConfig.SlackChannel)
				if err := n.Notify(ctx, query, res); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&stream, "stream", false, "Print step progress to stderr")
	cmd.Flags().BoolVar(&withOtel, "otel", false, "Export traces and metrics over OTLP")
	cmd.Flags().BoolVar(&notify, "notify", false, "Post the answer to Slack")
	cmd.Flags().StringVar(&runLog, "run-log", "", "Write a step log to ./logs, named after this label")
	return cmd
}
