package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"cookassistant"
)

// NutritionPrompt is the request sent to the nutrition agent for one dish.
func NutritionPrompt(dish string) string {
	return fmt.Sprintf("请给出 \"%s\" 的营养信息（至少包含每份的卡路里、蛋白质、脂肪、碳水化合物）。如果份量未指定，请以常见标准份量假设，并在结果中说明假设。", dish)
}

// nutritionTarget picks the dish to look up. Combination queries only look up the detailed dish;
// single queries look up the first identified dish.
func nutritionTarget(s State) string {
	if s.QueryType == QueryCombination {
		return s.DetailedDish
	}
	if len(s.IdentifiedDishes) > 0 {
		return s.IdentifiedDishes[0]
	}
	return ""
}

// FetchNutrition asks the nutrition agent about at most one dish. Without any matched recipe, or
// without a dish to look up, no agent is called. Failures leave HasNutritionInfo false.
func (p *Pipeline) FetchNutrition(ctx context.Context, s State) State {
	out, _ := p.fetchNutrition(ctx, s)
	return out
}

func (p *Pipeline) fetchNutrition(ctx context.Context, s State) (State, outcome) {
	s.HasNutritionInfo = false
	s.NutritionInfo = ""

	if !s.HasAnyRecipe {
		slog.Info("NUTRITION: no recipe matched, skipping")
		return s, outcomeSkipped
	}

	dish := nutritionTarget(s)
	if dish == "" {
		slog.Info("NUTRITION: no dish to look up, skipping", "query_type", s.QueryType)
		return s, outcomeSkipped
	}

	agent, ok := p.agents.GetAgent(AgentNutrition)
	if !ok {
		slog.Warn("NUTRITION: agent not registered", "agent", AgentNutrition)
		p.logStep(stepLog(stepNutrition, AgentNutrition, dish, nil, "agent not registered"))
		return s, outcomeUnavailable
	}

	prompt := NutritionPrompt(dish)
	text, err := agent.Generate(ctx, []cookassistant.Message{{Role: cookassistant.RoleUser, Content: prompt}})
	if err != nil {
		slog.Error("NUTRITION: agent call failed", "agent", AgentNutrition, "dish", dish, "error", err)
		p.logStep(stepLog(stepNutrition, AgentNutrition, prompt, nil, err.Error()))
		return s, outcomeError
	}

	s.HasNutritionInfo = true
	s.NutritionInfo = text

	slog.Info("NUTRITION: nutrition info received", "dish", dish, "length", len(text))
	p.logStep(stepLog(stepNutrition, AgentNutrition, prompt, text, ""))
	return s, outcomeOK
}
