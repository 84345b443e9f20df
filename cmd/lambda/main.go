package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cookassistant"
	"cookassistant/setup"
	"cookassistant/workflow"
)

type Params struct {
	Query string `json:"query"`
}

func main() {
	ctx := context.Background()

	cfg, err := setup.LoadConfig(setup.BackendBedrock)
	if err != nil {
		log.Fatalf("SETUP: Failed to load config: %s", err)
	}
	cfg.RunLogger = cookassistant.NewStdoutRunLogger()

	app, err := setup.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("SETUP: Failed to build: %s", err)
	}

	tracerProvider, meterProvider, otelShutdown, err := cookassistant.InitOtel(ctx)
	if err != nil {
		log.Fatalf("SETUP: Failed to initialize OpenTelemetry: %s", err)
	}
	defer func() {
		if err := otelShutdown(ctx); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	tracer := tracerProvider.Tracer(cookassistant.TracerNameLambda)
	pipeline := workflow.NewInstrumentedPipeline(
		app.Pipeline(workflow.WithRunLogger(cfg.RunLogger)),
		tracer,
		meterProvider.Meter(cookassistant.TracerNameLambda),
	)

	fn := func(ctx context.Context, params Params) (workflow.Result, error) {
		query := strings.TrimSpace(params.Query)
		if query == "" {
			return workflow.Result{}, errors.New("query is required")
		}

		ctx, span := tracer.Start(ctx, cookassistant.TracerNameLambda, trace.WithAttributes(
			attribute.String("model.id", cfg.Model.ModelID),
			attribute.Int("model.max_tokens", int(cfg.Model.MaxTokens)),
		))
		defer func() {
			span.End()
			if err := tracerProvider.ForceFlush(ctx); err != nil {
				slog.Error("RESULT: Failed to flush traces", "error", err)
			}
			if err := meterProvider.ForceFlush(ctx); err != nil {
				slog.Error("RESULT: Failed to flush metrics", "error", err)
			}
		}()

		res := pipeline.Run(ctx, query)
		slog.Info("RESULT: Query answered",
			"architecture", res.Metadata.Architecture,
			"dishes", res.Metadata.Dishes,
		)
		return res, nil
	}

	lambda.Start(fn)
}
