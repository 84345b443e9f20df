package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"cookassistant"
)

// outcome is how a step finished. Everything but outcomeOK means a fallback value was used.
type outcome string

const (
	outcomeOK          outcome = "ok"
	outcomeSkipped     outcome = "skipped"
	outcomeUnavailable outcome = "unavailable"
	outcomeError       outcome = "error"
)

// AnalyzerPrompt is the request sent to the cooking agent for a user query.
func AnalyzerPrompt(query string) string {
	return fmt.Sprintf("用户查询: \"%s\"", query)
}

// Analyze asks the cooking agent about the query and records which dishes it identified, the raw
// cooking text, and any candidates or approximate method. It never fails: an unavailable or
// failing agent yields a single query with no dishes and a sentinel in CookingInfoRaw.
func (p *Pipeline) Analyze(ctx context.Context, query string) State {
	s, _ := p.analyze(ctx, query)
	return s
}

func (p *Pipeline) analyze(ctx context.Context, query string) (State, outcome) {
	s := State{
		OriginalQuery:    query,
		QueryType:        QuerySingle,
		IdentifiedDishes: []string{},
	}

	agent, ok := p.agents.GetAgent(AgentCooking)
	if !ok {
		slog.Warn("ANALYZER: agent not registered", "agent", AgentCooking)
		s.CookingInfoRaw = CookingAgentUnavailable
		p.logStep(stepLog(stepAnalyze, AgentCooking, query, s.CookingInfoRaw, "agent not registered"))
		return s, outcomeUnavailable
	}

	prompt := AnalyzerPrompt(query)
	text, err := agent.Generate(ctx, []cookassistant.Message{{Role: cookassistant.RoleUser, Content: prompt}})
	if err != nil {
		slog.Error("ANALYZER: agent call failed", "agent", AgentCooking, "error", err)
		s.CookingInfoRaw = CookingAgentError
		p.logStep(stepLog(stepAnalyze, AgentCooking, prompt, s.CookingInfoRaw, err.Error()))
		return s, outcomeError
	}

	a := ParseAnalyzerOutput(text)
	if !a.JSONFound {
		slog.Warn("ANALYZER: no analysis line in agent reply", "query", query)
	}
	if a.Detailed != "" && !slices.Contains(a.Dishes, a.Detailed) {
		slog.Warn("ANALYZER: detailed dish is not among identified dishes", "detailed", a.Detailed, "dishes", a.Dishes)
	}

	s.QueryType = a.QueryType
	s.IdentifiedDishes = a.Dishes
	s.DetailedDish = a.Detailed
	s.HasAnyRecipe = len(a.Dishes) > 0
	s.CookingInfoRaw = text
	s.ApproxMethod = a.ApproxMethod
	s.Candidates = a.Candidates

	slog.Info("ANALYZER: analysis complete",
		"query_type", s.QueryType,
		"dishes", s.IdentifiedDishes,
		"detailed", s.DetailedDish,
		"candidates", len(s.Candidates),
	)
	p.logStep(stepLog(stepAnalyze, AgentCooking, prompt, a, ""))
	return s, outcomeOK
}

func stepLog(step, agent, input string, output any, errMsg string) cookassistant.StepLog {
	return cookassistant.StepLog{
		Step:      step,
		Timestamp: time.Now(),
		Agent:     agent,
		Input:     input,
		Output:    output,
		Error:     errMsg,
	}
}
