// Package tooluse turns any text agent into one that can call tools. Tool calls travel as JSON
// in the model's text, so it works with backends that have no native tool calling.
package tooluse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cookassistant"
	"cookassistant/tools"
)

const defaultMaxIterations = 6

var ErrMaxIterations = errors.New("tool agent reached max iterations without a final answer")

type Agent struct {
	name          string
	inner         cookassistant.Agent
	toolProvider  cookassistant.ToolProvider
	maxIterations int
	logger        cookassistant.RunLogger
}

type Option func(*Agent)

func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

func WithRunLogger(l cookassistant.RunLogger) Option {
	return func(a *Agent) { a.logger = l }
}

// WithName labels log entries with the agent's registry name.
func WithName(name string) Option {
	return func(a *Agent) { a.name = name }
}

func New(inner cookassistant.Agent, tp cookassistant.ToolProvider, opts ...Option) *Agent {
	a := &Agent{
		name:          "tool_agent",
		inner:         inner,
		toolProvider:  tp,
		maxIterations: defaultMaxIterations,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Generate runs the tool loop: ask the model, execute any tool calls it makes, feed the results
// back, and stop at the first reply without tool calls. That reply is returned verbatim.
func (a *Agent) Generate(ctx context.Context, messages []cookassistant.Message) (string, error) {
	catalog, err := renderToolCatalog(a.toolProvider)
	if err != nil {
		return "", fmt.Errorf("failed to render tool catalog: %w", err)
	}
	msgs := withToolCatalog(messages, catalog)

	slog.Info("TOOL_AGENT: Starting run", "agent", a.name, "tools", len(a.toolProvider.GetTools()))

	for iter := 1; iter <= a.maxIterations; iter++ {
		step := cookassistant.StepLog{
			Step:      "tool_loop",
			Iteration: iter,
			Timestamp: time.Now(),
			Agent:     a.name,
			Input:     preview(msgs[len(msgs)-1].Content),
		}

		reply, err := a.inner.Generate(ctx, msgs)
		if err != nil {
			step.Error = err.Error()
			a.logStep(step)
			return "", fmt.Errorf("failed to invoke LLM: %w", err)
		}
		step.Output = reply

		_, calls := ParseModelOutput(reply)
		calls = dedupeToolCalls(calls)

		slog.Info("TOOL_AGENT: LLM response received",
			"agent", a.name,
			"iteration", iter,
			"content_length", len(reply),
			"tool_calls", len(calls),
		)

		if len(calls) == 0 {
			a.logStep(step)
			return reply, nil
		}

		msgs = append(msgs, cookassistant.Message{Role: cookassistant.RoleAssistant, Content: reply})
		for _, call := range calls {
			msg, callLog := a.runTool(ctx, call)
			step.ToolCalls = append(step.ToolCalls, callLog)
			msgs = append(msgs, msg)
		}
		a.logStep(step)
	}

	slog.Warn("TOOL_AGENT: max iterations reached", "agent", a.name, "max_iterations", a.maxIterations)
	return "", ErrMaxIterations
}

// runTool executes one call. Failures are reported back to the model, not to the caller.
func (a *Agent) runTool(ctx context.Context, call tools.Call) (cookassistant.Message, cookassistant.ToolCallLog) {
	slog.Info("TOOL_AGENT: Handling tool call", "agent", a.name, "name", call.Name)
	slog.Debug("TOOL_AGENT: tool input", "name", call.Name, "input", cookassistant.Sdump(call.Input))
	callLog := cookassistant.ToolCallLog{Name: call.Name, Input: call.Input}

	result, err := a.execute(ctx, call)
	if err != nil {
		slog.Warn("TOOL_AGENT: tool failed", "name", call.Name, "error", err)
		callLog.Error = err.Error()
		payload, _ := json.Marshal(map[string]string{"tool_error": call.Name, "error": err.Error()})
		return cookassistant.Message{Role: cookassistant.RoleUser, Content: string(payload)}, callLog
	}

	callLog.Output = result
	payload, err := json.Marshal(result)
	if err != nil {
		callLog.Error = err.Error()
		payload, _ = json.Marshal(map[string]string{"tool_error": call.Name, "error": err.Error()})
		return cookassistant.Message{Role: cookassistant.RoleUser, Content: string(payload)}, callLog
	}
	return cookassistant.Message{
		Role:    cookassistant.RoleUser,
		Content: fmt.Sprintf(`{"tool_result":%q,"data":%s}`, call.Name, payload),
	}, callLog
}

func (a *Agent) execute(ctx context.Context, call tools.Call) (map[string]any, error) {
	tool, err := a.toolProvider.GetTool(call.Name)
	if err != nil {
		return nil, err
	}
	return tool.Run(ctx, call.Input)
}

func (a *Agent) logStep(step cookassistant.StepLog) {
	if a.logger == nil {
		return
	}
	if err := a.logger.LogStep(step); err != nil {
		slog.Error("TOOL_AGENT: failed to log step", "error", err, "iteration", step.Iteration)
	}
}

// dedupeToolCalls drops repeated calls with identical name and input.
func dedupeToolCalls(calls []tools.Call) []tools.Call {
	seen := map[string]bool{}
	out := make([]tools.Call, 0, len(calls))
	for _, c := range calls {
		b, _ := json.Marshal(c.Input)
		key := c.Name + ":" + string(b)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

// withToolCatalog appends the catalog to the leading system message, or adds one.
func withToolCatalog(messages []cookassistant.Message, catalog string) []cookassistant.Message {
	out := make([]cookassistant.Message, 0, len(messages)+1)
	if len(messages) > 0 && messages[0].Role == cookassistant.RoleSystem {
		out = append(out, cookassistant.Message{
			Role:    cookassistant.RoleSystem,
			Content: messages[0].Content + "\n\n" + catalog,
		})
		return append(out, messages[1:]...)
	}
	out = append(out, cookassistant.Message{Role: cookassistant.RoleSystem, Content: catalog})
	return append(out, messages...)
}

func renderToolCatalog(tp cookassistant.ToolProvider) (string, error) {
	var b strings.Builder
	b.WriteString("TOOLS\n")
	for _, t := range tp.GetTools() {
		schema, err := json.Marshal(t.InputSchema())
		if err != nil {
			return "", fmt.Errorf("tool %s: %w", t.Name(), err)
		}
		fmt.Fprintf(&b, "- %s: %s\n  input schema: %s\n", t.Name(), t.Description(), schema)
	}
	b.WriteString(toolProtocol)
	return b.String(), nil
}

const toolProtocol = `
TOOL PROTOCOL
- To call tools, reply with ONLY this JSON object and nothing else:
  {"tool_calls":[{"name":"<tool name>","input":{...}}]}
- Results come back as user messages shaped {"tool_result":"<tool name>","data":{...}} or {"tool_error":"<tool name>","error":"..."}.
- Do not call the same tool with the same input twice.
- When you have what you need, reply with your final answer in the required format, without any tool_calls object.`

func preview(s string) string {
	r := []rune(s)
	if len(r) > 100 {
		return string(r[:97]) + "..."
	}
	return s
}
