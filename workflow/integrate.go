package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cookassistant"
)

// Fixed replies used when the integration agent cannot produce one.
const (
	ReplyUnavailable = "系统暂时不可用，请稍后重试。"
	ReplyError       = "生成回复时发生错误，请重试。"
	ReplyEmpty       = "生成回复失败，请重试。"
)

const integrationTemplate = `请整合以下信息，生成用户友好的回复：

**用户查询**: "%s"
**查询类型**: %s
**菜谱匹配状态**: %s
**识别到的菜品**: %s
**详细展示菜品**: %s
**其他相关菜品**: %s

%s

%s

%s

**营养信息状态**: %s
%s

请生成完整的回复，务必：
1. 明确告知用户菜谱匹配结果
2. 如有营养信息，标注"以上营养数据由AI营养分析系统提供，仅供参考"
3. 如有其他相关菜品，在回复末尾自然地推荐给用户（如"您还可以尝试：菜名1、菜名2"）
4. 提供实用的建议和指导`

// otherDishes returns the identified dishes except the detailed one, in order.
func otherDishes(s State) []string {
	out := []string{}
	for _, d := range s.IdentifiedDishes {
		if d != s.DetailedDish {
			out = append(out, d)
		}
	}
	return out
}

func orNone(v string) string {
	if v == "" {
		return "无"
	}
	return v
}

// IntegrationPrompt renders everything the previous steps gathered into the integration request.
// Sections without content render as empty lines.
func IntegrationPrompt(s State) string {
	queryType := "单菜查询"
	if s.QueryType == QueryCombination {
		queryType = "组合推荐"
	}
	matchStatus := "未找到菜谱"
	if s.HasAnyRecipe {
		matchStatus = "已找到菜谱"
	}
	nutritionStatus := "未获取"
	if s.HasNutritionInfo {
		nutritionStatus = "已获取"
	}

	var cooking, approx, candidates, nutrition string
	if s.HasAnyRecipe && s.CookingInfoRaw != "" {
		cooking = "**烹饪信息**:\n" + s.CookingInfoRaw
	}
	if !s.HasAnyRecipe && s.ApproxMethod != "" {
		approx = "**大致做法**:\n" + s.ApproxMethod
	}
	if len(s.Candidates) > 0 {
		candidates = "**候选建议**: " + strings.Join(s.Candidates, "、")
	}
	if s.HasNutritionInfo && s.NutritionInfo != "" {
		nutrition = "**营养分析结果**:\n" + s.NutritionInfo
	}

	return fmt.Sprintf(integrationTemplate,
		s.OriginalQuery,
		queryType,
		matchStatus,
		orNone(strings.Join(s.IdentifiedDishes, "、")),
		orNone(s.DetailedDish),
		orNone(strings.Join(otherDishes(s), "、")),
		cooking,
		approx,
		candidates,
		nutritionStatus,
		nutrition,
	)
}

// Integrate asks the integration agent for the final reply. It always returns a Result: an
// unavailable or failing agent gets a fixed reply tagged with the matching architecture.
func (p *Pipeline) Integrate(ctx context.Context, s State) Result {
	r, _ := p.integrate(ctx, s)
	return r
}

func (p *Pipeline) integrate(ctx context.Context, s State) (Result, outcome) {
	agent, ok := p.agents.GetAgent(AgentIntegration)
	if !ok {
		slog.Warn("INTEGRATOR: agent not registered", "agent", AgentIntegration)
		p.logStep(stepLog(stepIntegrate, AgentIntegration, "", ReplyUnavailable, "agent not registered"))
		return Result{Response: ReplyUnavailable, Metadata: s.metadata(ArchitectureUnavailable)}, outcomeUnavailable
	}

	prompt := IntegrationPrompt(s)
	text, err := agent.Generate(ctx, []cookassistant.Message{{Role: cookassistant.RoleUser, Content: prompt}})
	if err != nil {
		slog.Error("INTEGRATOR: agent call failed", "agent", AgentIntegration, "error", err)
		p.logStep(stepLog(stepIntegrate, AgentIntegration, prompt, ReplyError, err.Error()))
		return Result{Response: ReplyError, Metadata: s.metadata(ArchitectureError)}, outcomeError
	}

	if text == "" {
		slog.Warn("INTEGRATOR: agent returned an empty reply")
		text = ReplyEmpty
	}

	slog.Info("INTEGRATOR: reply generated", "length", len(text))
	p.logStep(stepLog(stepIntegrate, AgentIntegration, prompt, text, ""))
	return Result{Response: text, Metadata: s.metadata(ArchitectureIntegrated)}, outcomeOK
}
