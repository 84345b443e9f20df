package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"cookassistant"
	"cookassistant/agent/mock"
)

type telemetry struct {
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
}

func newInstrumented(t *testing.T, agents cookassistant.AgentProvider) (*InstrumentedPipeline, telemetry) {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	ip := NewInstrumentedPipeline(New(agents), tp.Tracer(cookassistant.TracerNameWorkflow), mp.Meter(cookassistant.TracerNameWorkflow))
	return ip, telemetry{spans: spans, reader: reader}
}

func (tm telemetry) counter(t *testing.T, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, tm.reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func (tm telemetry) spanNames() []string {
	var out []string
	for _, s := range tm.spans.Ended() {
		out = append(out, s.Name())
	}
	return out
}

func TestInstrumentedPipeline_Success(t *testing.T) {
	ip, tm := newInstrumented(t, newAgents(mock.NewStatic(singleReply), mock.NewStatic("约 480 千卡"), mock.NewStatic("ok")))

	res := ip.Run(context.Background(), "红烧肉怎么做")

	assert.Equal(t, "ok", res.Response)
	assert.Equal(t, ArchitectureIntegrated, res.Metadata.Architecture)

	assert.Equal(t, []string{
		"InstrumentedPipeline.Step." + stepAnalyze,
		"InstrumentedPipeline.Step." + stepNutrition,
		"InstrumentedPipeline.Step." + stepIntegrate,
		"InstrumentedPipeline.Run",
	}, tm.spanNames())

	ended := tm.spans.Ended()
	run := ended[len(ended)-1]
	assert.NotEqual(t, codes.Error, run.Status().Code)
	for _, s := range ended[:3] {
		assert.Equal(t, run.SpanContext().SpanID(), s.Parent().SpanID())
	}

	var eventNames []string
	for _, e := range run.Events() {
		eventNames = append(eventNames, e.Name)
	}
	assert.Equal(t, []string{"Query analyzed", "Nutrition fetched", "Pipeline finished"}, eventNames)

	assert.Equal(t, int64(1), tm.counter(t, "pipeline_runs_total"))
	assert.Equal(t, int64(3), tm.counter(t, "agent_calls_total"))
	assert.Equal(t, int64(0), tm.counter(t, "pipeline_step_fallbacks_total"))
}

func TestInstrumentedPipeline_Fallbacks(t *testing.T) {
	ip, tm := newInstrumented(t, newAgents(mock.NewFailing(errors.New("timeout")), mock.NewStatic("x"), nil))

	res := ip.Run(context.Background(), "红烧肉")

	assert.Equal(t, ReplyUnavailable, res.Response)
	assert.Equal(t, ArchitectureUnavailable, res.Metadata.Architecture)

	ended := tm.spans.Ended()
	require.Len(t, ended, 4)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.NotEqual(t, codes.Error, ended[1].Status().Code)
	assert.Equal(t, codes.Error, ended[2].Status().Code)
	assert.Equal(t, codes.Error, ended[3].Status().Code)

	assert.Equal(t, int64(1), tm.counter(t, "pipeline_runs_total"))
	assert.Equal(t, int64(1), tm.counter(t, "agent_calls_total"))
	assert.Equal(t, int64(2), tm.counter(t, "pipeline_step_fallbacks_total"))
}

func TestInstrumentedPipeline_StreamsLikePipeline(t *testing.T) {
	agents := newAgents(mock.NewStatic(combinationReply), mock.NewStatic("约 350 千卡"), mock.NewStatic("ok"))
	ip, _ := newInstrumented(t, agents)

	var plain, instrumented []Event
	want := New(agents).RunStream(context.Background(), "两人晚餐", func(e Event) { plain = append(plain, e) })
	got := ip.RunStream(context.Background(), "两人晚餐", func(e Event) { instrumented = append(instrumented, e) })

	assert.Equal(t, want, got)
	assert.Equal(t, plain, instrumented)
}

var _ Runner = (*Pipeline)(nil)
var _ Runner = (*InstrumentedPipeline)(nil)
