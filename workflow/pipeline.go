package workflow

import (
	"context"
	"log/slog"

	"cookassistant"
)

// Step names as reported in progress events.
const (
	stepAnalyze   = "analyze-and-prepare-content"
	stepNutrition = "fetch-nutrition"
	stepIntegrate = "integrate-with-agent"
)

// Steps lists the pipeline steps in execution order.
var Steps = []string{stepAnalyze, stepNutrition, stepIntegrate}

type EventType string

const (
	EventStepStart  EventType = "step-start"
	EventStepResult EventType = "step-result"
	EventFinish     EventType = "workflow-finish"
)

const (
	StatusRunning = "running"
	StatusSuccess = "success"
)

// Event is a progress notification emitted at step boundaries by RunStream.
type Event struct {
	Type   EventType `json:"type"`
	Step   string    `json:"step,omitempty"`
	Status string    `json:"status,omitempty"`
	Output any       `json:"output,omitempty"`
}

// Runner is what transports need from a pipeline.
type Runner interface {
	Run(ctx context.Context, query string) Result
	RunStream(ctx context.Context, query string, emit func(Event)) Result
}

// Pipeline sequences the analyzer, the nutrition fetcher and the integrator.
type Pipeline struct {
	agents cookassistant.AgentProvider
	logger cookassistant.RunLogger
}

type Option func(*Pipeline)

// WithRunLogger records every step to l.
func WithRunLogger(l cookassistant.RunLogger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

func New(agents cookassistant.AgentProvider, opts ...Option) *Pipeline {
	p := &Pipeline{
		agents: agents,
		logger: cookassistant.NewNoOpRunLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes all three steps and returns the integrated result. It never fails.
func (p *Pipeline) Run(ctx context.Context, query string) Result {
	return p.RunStream(ctx, query, nil)
}

// RunStream is Run with a step-start and step-result event around every step, followed by a
// workflow-finish event carrying the result. A nil emit disables events.
func (p *Pipeline) RunStream(ctx context.Context, query string, emit func(Event)) Result {
	if emit == nil {
		emit = func(Event) {}
	}
	slog.Info("WORKFLOW: starting run", "query", query)

	emit(Event{Type: EventStepStart, Step: stepAnalyze, Status: StatusRunning})
	s, _ := p.analyze(ctx, query)
	emit(Event{Type: EventStepResult, Step: stepAnalyze, Status: StatusSuccess, Output: s})

	emit(Event{Type: EventStepStart, Step: stepNutrition, Status: StatusRunning})
	s, _ = p.fetchNutrition(ctx, s)
	emit(Event{Type: EventStepResult, Step: stepNutrition, Status: StatusSuccess, Output: s})

	emit(Event{Type: EventStepStart, Step: stepIntegrate, Status: StatusRunning})
	res, _ := p.integrate(ctx, s)
	emit(Event{Type: EventStepResult, Step: stepIntegrate, Status: StatusSuccess, Output: res})

	emit(Event{Type: EventFinish, Output: res})

	slog.Info("WORKFLOW: run complete", "architecture", res.Metadata.Architecture, "dishes", res.Metadata.Dishes)
	return res
}

func (p *Pipeline) logStep(step cookassistant.StepLog) {
	if err := p.logger.LogStep(step); err != nil {
		slog.Warn("WORKFLOW: failed to record step", "step", step.Step, "error", err)
	}
}
