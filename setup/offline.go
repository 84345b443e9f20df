package setup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cookassistant"
	"cookassistant/agent/mock"
	"cookassistant/nutrition"
	"cookassistant/tools"
	"cookassistant/workflow"
)

// Offline agents answer from the local catalog and the nutrition service without any model.
// They speak the same reply protocol as the model-backed agents, so the pipeline runs unchanged.

// maxOfflineDishes caps how many catalog dishes a single query can match.
const maxOfflineDishes = 3

const offlineApproxMethod = `- 准备并清洗主要食材，切成大小均匀的块或片
- 根据食材选择炒、煮、蒸或炖的做法
- 热锅凉油，先下葱姜蒜等香料炒香
- 放入主料翻炒或加水烹煮至熟
- 按口味加入盐、生抽等调味后出锅`

func lastUserMessage(messages []cookassistant.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == cookassistant.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// promptSubject returns the text that build placed inside its prompt, or s itself when s
// is not a prompt built by build. Quotes inside the subject are kept.
func promptSubject(s string, build func(string) string) string {
	const mark = "\x00"
	prefix, suffix, _ := strings.Cut(build(mark), mark)
	if len(s) >= len(prefix)+len(suffix) && strings.HasPrefix(s, prefix) && strings.HasSuffix(s, suffix) {
		return strings.TrimSpace(s[len(prefix) : len(s)-len(suffix)])
	}
	return strings.TrimSpace(s)
}

type analysisLine struct {
	Type     string   `json:"type"`
	Dishes   []string `json:"dishes"`
	Detailed *string  `json:"detailed"`
}

// OfflineCookingAgent matches catalog dish names mentioned in the query.
func OfflineCookingAgent(catalog *tools.Catalog) *mock.Agent {
	return mock.New(func(ctx context.Context, messages []cookassistant.Message) (string, error) {
		query := promptSubject(lastUserMessage(messages), workflow.AnalyzerPrompt)

		all, err := catalog.All(ctx, 0)
		if err != nil {
			return "", err
		}
		var names []string
		for _, r := range all.Recipes {
			if r.Name != "" && strings.Contains(query, r.Name) {
				names = append(names, r.Name)
				if len(names) == maxOfflineDishes {
					break
				}
			}
		}

		if len(names) == 0 {
			found, err := catalog.Find(ctx, query)
			if err != nil {
				return "", err
			}
			if found.Recipe == nil {
				var candidates []string
				for _, m := range found.PossibleMatches {
					candidates = append(candidates, m.Name)
				}
				return renderNoRecipe(candidates), nil
			}
			names = []string{found.Recipe.Name}
		}

		detail, err := catalog.Find(ctx, names[0])
		if err != nil {
			return "", err
		}
		return renderRecipes(names, detail.Recipe)
	})
}

func renderRecipes(names []string, detailed *tools.Recipe) (string, error) {
	line := analysisLine{Type: "single", Dishes: names, Detailed: &names[0]}
	if len(names) > 1 {
		line.Type = "combination"
	}
	head, err := json.Marshal(line)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Write(head)
	b.WriteString("\n")
	if len(names) > 1 {
		b.WriteString("## 推荐搭配\n")
		for _, n := range names {
			fmt.Fprintf(&b, "- %s\n", n)
		}
		b.WriteString("\n## 主菜制作（详细）\n")
	} else {
		b.WriteString("## 菜谱\n")
	}

	if detailed != nil {
		fmt.Fprintf(&b, "- 名称: %s\n", detailed.Name)
		if detailed.CookingTime != "" {
			fmt.Fprintf(&b, "- 时间: %s\n", detailed.CookingTime)
		}
		if detailed.Difficulty != "" {
			fmt.Fprintf(&b, "- 难度: %s\n", detailed.Difficulty)
		}
		if len(detailed.Ingredients) > 0 {
			b.WriteString("### 用料\n")
			for _, in := range detailed.Ingredients {
				if in.TextQuantity != "" {
					fmt.Fprintf(&b, "- %s — %s\n", in.Name, in.TextQuantity)
				} else {
					fmt.Fprintf(&b, "- %s\n", in.Name)
				}
			}
		}
		if len(detailed.Steps) > 0 {
			b.WriteString("### 步骤\n")
			for i, step := range detailed.Steps {
				fmt.Fprintf(&b, "%d. %s\n", i+1, step)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func renderNoRecipe(candidates []string) string {
	var b strings.Builder
	b.WriteString(`{"type":"single","dishes":[],"detailed":null}` + "\n")
	b.WriteString("## NO_RECIPE_FOUND\n说明: 未在现有菜谱库中找到匹配菜谱\n")
	b.WriteString("## APPROX_METHOD\n" + offlineApproxMethod)
	if len(candidates) > 0 {
		b.WriteString("\n## CANDIDATES\n" + strings.Join(candidates, " | "))
	}
	return b.String()
}

// OfflineNutritionAgent answers with a calorie lookup for the dish named in the prompt.
func OfflineNutritionAgent(svc *nutrition.Service) *mock.Agent {
	return mock.New(func(ctx context.Context, messages []cookassistant.Message) (string, error) {
		dish := promptSubject(lastUserMessage(messages), workflow.NutritionPrompt)
		info := svc.Lookup(ctx, dish, true)
		return renderCalories(info), nil
	})
}

func renderCalories(info nutrition.CalorieInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s 每份约 %.0f 千卡", info.DishName, info.CaloriesPerServing)
	if f := info.Nutrition; f != nil {
		fmt.Fprintf(&b, "，蛋白质 %.1f 克，脂肪 %.1f 克，碳水化合物 %.1f 克", f.Protein, f.Fat, f.Carbohydrate)
	}
	fmt.Fprintf(&b, "（来源: %s，可信度: %s）。", info.Source, info.Confidence)
	if info.Source == nutrition.SourceEstimate {
		b.WriteString("以上为按常见标准份量的估算值。")
	}
	return b.String()
}

// OfflineIntegrationAgent returns the gathered sections of the integration request as the reply.
func OfflineIntegrationAgent() *mock.Agent {
	return mock.New(func(ctx context.Context, messages []cookassistant.Message) (string, error) {
		prompt := lastUserMessage(messages)
		if i := strings.Index(prompt, "请生成完整的回复"); i >= 0 {
			prompt = prompt[:i]
		}
		if i := strings.Index(prompt, "\n"); i >= 0 {
			prompt = prompt[i+1:]
		}

		var lines []string
		blank := false
		for _, line := range strings.Split(strings.TrimSpace(prompt), "\n") {
			if strings.TrimSpace(line) == "" {
				if !blank {
					lines = append(lines, "")
				}
				blank = true
				continue
			}
			blank = false
			lines = append(lines, line)
		}
		return strings.Join(lines, "\n"), nil
	})
}
