package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedPipeline is a Pipeline that records a span per run and per step plus run metrics.
type InstrumentedPipeline struct {
	pipeline *Pipeline
	tracer   trace.Tracer

	runs         metric.Int64Counter
	fallbacks    metric.Int64Counter
	agentCalls   metric.Int64Counter
	runDuration  metric.Float64Histogram
	stepDuration metric.Float64Histogram
	dishesGauge  metric.Int64Gauge
}

// NewInstrumentedPipeline wraps p with the given tracer and meter.
func NewInstrumentedPipeline(p *Pipeline, tracer trace.Tracer, meter metric.Meter) *InstrumentedPipeline {
	runs, _ := meter.Int64Counter("pipeline_runs_total",
		metric.WithDescription("Total number of pipeline runs, by architecture"))
	fallbacks, _ := meter.Int64Counter("pipeline_step_fallbacks_total",
		metric.WithDescription("Total number of steps that finished on a fallback value"))
	agentCalls, _ := meter.Int64Counter("agent_calls_total",
		metric.WithDescription("Total number of agent calls made by the pipeline"))
	runDuration, _ := meter.Float64Histogram("pipeline_duration_seconds",
		metric.WithDescription("Duration of a full pipeline run in seconds"))
	stepDuration, _ := meter.Float64Histogram("pipeline_step_duration_seconds",
		metric.WithDescription("Duration of individual pipeline steps in seconds"))
	dishesGauge, _ := meter.Int64Gauge("identified_dishes_count",
		metric.WithDescription("Number of dishes identified in the latest query"))

	return &InstrumentedPipeline{
		pipeline:     p,
		tracer:       tracer,
		runs:         runs,
		fallbacks:    fallbacks,
		agentCalls:   agentCalls,
		runDuration:  runDuration,
		stepDuration: stepDuration,
		dishesGauge:  dishesGauge,
	}
}

func (ip *InstrumentedPipeline) Run(ctx context.Context, query string) Result {
	return ip.RunStream(ctx, query, nil)
}

func (ip *InstrumentedPipeline) RunStream(ctx context.Context, query string, emit func(Event)) Result {
	if emit == nil {
		emit = func(Event) {}
	}

	ctx, span := ip.tracer.Start(ctx, "InstrumentedPipeline.Run")
	defer span.End()

	slog.Info("WORKFLOW: starting instrumented run", "query", query)
	start := time.Now()

	emit(Event{Type: EventStepStart, Step: stepAnalyze, Status: StatusRunning})
	var s State
	ip.step(ctx, stepAnalyze, AgentCooking, func(ctx context.Context) outcome {
		var o outcome
		s, o = ip.pipeline.analyze(ctx, query)
		return o
	})
	ip.dishesGauge.Record(ctx, int64(len(s.IdentifiedDishes)))
	span.AddEvent("Query analyzed", trace.WithAttributes(
		attribute.String("query_type", string(s.QueryType)),
		attribute.Int("dishes_count", len(s.IdentifiedDishes)),
		attribute.Bool("has_any_recipe", s.HasAnyRecipe),
	))
	emit(Event{Type: EventStepResult, Step: stepAnalyze, Status: StatusSuccess, Output: s})

	emit(Event{Type: EventStepStart, Step: stepNutrition, Status: StatusRunning})
	ip.step(ctx, stepNutrition, AgentNutrition, func(ctx context.Context) outcome {
		var o outcome
		s, o = ip.pipeline.fetchNutrition(ctx, s)
		return o
	})
	span.AddEvent("Nutrition fetched", trace.WithAttributes(
		attribute.Bool("has_nutrition_info", s.HasNutritionInfo),
	))
	emit(Event{Type: EventStepResult, Step: stepNutrition, Status: StatusSuccess, Output: s})

	emit(Event{Type: EventStepStart, Step: stepIntegrate, Status: StatusRunning})
	var res Result
	ip.step(ctx, stepIntegrate, AgentIntegration, func(ctx context.Context) outcome {
		var o outcome
		res, o = ip.pipeline.integrate(ctx, s)
		return o
	})
	emit(Event{Type: EventStepResult, Step: stepIntegrate, Status: StatusSuccess, Output: res})

	architecture := res.Metadata.Architecture
	ip.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("architecture", architecture)))
	ip.runDuration.Record(ctx, time.Since(start).Seconds())
	span.AddEvent("Pipeline finished", trace.WithAttributes(
		attribute.String("architecture", architecture),
		attribute.Int("response_length", len(res.Response)),
	))
	if architecture != ArchitectureIntegrated {
		span.SetStatus(codes.Error, "Integration fell back to a fixed reply")
	}

	emit(Event{Type: EventFinish, Output: res})

	slog.Info("WORKFLOW: instrumented run complete", "architecture", architecture, "duration_ms", time.Since(start).Milliseconds())
	return res
}

// step runs one pipeline step in its own span and records its outcome.
func (ip *InstrumentedPipeline) step(ctx context.Context, name, agent string, fn func(context.Context) outcome) {
	ctx, span := ip.tracer.Start(ctx, fmt.Sprintf("InstrumentedPipeline.Step.%s", name))
	defer span.End()

	start := time.Now()
	o := fn(ctx)
	elapsed := time.Since(start)

	stepAttr := attribute.String("step", name)
	ip.stepDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(stepAttr))

	if o == outcomeOK || o == outcomeError {
		ip.agentCalls.Add(ctx, 1, metric.WithAttributes(
			attribute.String("agent", agent),
			attribute.Bool("failed", o == outcomeError),
		))
	}
	if o == outcomeUnavailable || o == outcomeError {
		ip.fallbacks.Add(ctx, 1, metric.WithAttributes(stepAttr, attribute.String("outcome", string(o))))
	}

	span.AddEvent("Step finished", trace.WithAttributes(
		attribute.String("outcome", string(o)),
		attribute.Float64("duration_seconds", elapsed.Seconds()),
	))
	if o == outcomeUnavailable || o == outcomeError {
		span.SetStatus(codes.Error, fmt.Sprintf("%s: agent %s", name, o))
	}
}
