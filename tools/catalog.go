package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"cookassistant/tools/storage"
)

const maxPossibleMatches = 5

// Catalog is a lazily loaded view over a recipe document. The first successful load is kept;
// a failed load is retried on the next call. Concurrent callers wait on the same load.
type Catalog struct {
	state storage.RecipeState

	// intn picks the random index used by meal suggestions.
	intn func(n int) int

	mu         sync.Mutex
	loaded     bool
	recipes    []Recipe
	categories []string
}

func NewCatalog(state storage.RecipeState) *Catalog {
	return &Catalog{state: state, intn: rand.IntN}
}

type ListResult struct {
	Recipes []SimpleRecipe `json:"recipes"`
	Total   int            `json:"total"`
	Message string         `json:"message"`
}

type CategoryResult struct {
	Recipes             []SimpleRecipe `json:"recipes"`
	Category            string         `json:"category"`
	Total               int            `json:"total"`
	AvailableCategories []string       `json:"availableCategories"`
	Message             string         `json:"message"`
}

type FindResult struct {
	Recipe          *Recipe         `json:"recipe"`
	PossibleMatches []RecipeSummary `json:"possibleMatches,omitempty"`
	Message         string          `json:"message"`
}

func (c *Catalog) load(ctx context.Context) ([]Recipe, []string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.recipes, c.categories, nil
	}

	b, err := c.state.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read recipes: %w", err)
	}
	recipes, err := decodeRecipes(b)
	if err != nil {
		return nil, nil, fmt.Errorf("parse recipes: %w", err)
	}

	c.recipes = recipes
	c.categories = categoriesOf(recipes)
	c.loaded = true
	slog.Info("CATALOG: loaded", "recipes", len(recipes), "categories", len(c.categories))
	return c.recipes, c.categories, nil
}

// decodeRecipes accepts a JSON array, a JSON object with a "recipes" array, or the YAML equivalents.
func decodeRecipes(b []byte) ([]Recipe, error) {
	b = bytes.TrimSpace(b)
	var doc struct {
		Recipes []Recipe `json:"recipes" yaml:"recipes"`
	}

	switch {
	case len(b) == 0:
		return []Recipe{}, nil
	case b[0] == '[':
		var recipes []Recipe
		if err := json.Unmarshal(b, &recipes); err != nil {
			return nil, err
		}
		return recipes, nil
	case b[0] == '{':
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, err
		}
	default:
		var recipes []Recipe
		if err := yaml.Unmarshal(b, &recipes); err == nil {
			return recipes, nil
		}
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return nil, err
		}
	}

	if doc.Recipes == nil {
		return []Recipe{}, nil
	}
	return doc.Recipes, nil
}

// categoriesOf returns the distinct non-empty categories in first-seen order.
func categoriesOf(recipes []Recipe) []string {
	seen := map[string]bool{}
	out := make([]string, 0)
	for _, r := range recipes {
		if r.Category == "" || seen[r.Category] {
			continue
		}
		seen[r.Category] = true
		out = append(out, r.Category)
	}
	return out
}

// Categories lists the catalog's categories.
func (c *Catalog) Categories(ctx context.Context) ([]string, error) {
	_, categories, err := c.load(ctx)
	return categories, err
}

// All returns up to limit simplified recipes; limit <= 0 means all of them.
func (c *Catalog) All(ctx context.Context, limit int) (ListResult, error) {
	recipes, _, err := c.load(ctx)
	if err != nil {
		return ListResult{}, err
	}

	page := recipes
	if limit > 0 && limit < len(page) {
		page = page[:limit]
	}
	out := simplify(page)

	return ListResult{
		Recipes: out,
		Total:   len(recipes),
		Message: fmt.Sprintf("成功获取%d个菜谱（共%d个）", len(out), len(recipes)),
	}, nil
}

// ByCategory returns the recipes in category. An unknown category is not an error:
// the result is empty and lists the categories that do exist.
func (c *Catalog) ByCategory(ctx context.Context, category string, limit int) (CategoryResult, error) {
	recipes, categories, err := c.load(ctx)
	if err != nil {
		return CategoryResult{}, err
	}

	res := CategoryResult{
		Recipes:             []SimpleRecipe{},
		Category:            category,
		AvailableCategories: categories,
	}

	known := false
	for _, cat := range categories {
		if cat == category {
			known = true
			break
		}
	}
	if !known {
		res.Message = fmt.Sprintf("分类\"%s\"不存在。可用分类: %s", category, strings.Join(categories, ", "))
		return res, nil
	}

	var matched []Recipe
	for _, r := range recipes {
		if r.Category == category {
			matched = append(matched, r)
		}
	}
	res.Total = len(matched)
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	res.Recipes = simplify(matched)
	res.Message = fmt.Sprintf("成功获取\"%s\"分类下的%d个菜谱", category, len(res.Recipes))
	return res, nil
}

// Find looks a recipe up by exact id, then exact name, then case-insensitive name substring.
// Without a hit it offers up to five recipes whose name or description mention the query.
func (c *Catalog) Find(ctx context.Context, query string) (FindResult, error) {
	recipes, _, err := c.load(ctx)
	if err != nil {
		return FindResult{}, err
	}

	q := strings.ToLower(query)
	matchers := []func(Recipe) bool{
		func(r Recipe) bool { return r.ID == query },
		func(r Recipe) bool { return r.Name == query },
		func(r Recipe) bool { return strings.Contains(strings.ToLower(r.Name), q) },
	}
	for _, match := range matchers {
		for i := range recipes {
			if match(recipes[i]) {
				found := recipes[i]
				return FindResult{Recipe: &found, Message: "成功找到菜谱: " + found.Name}, nil
			}
		}
	}

	var possible []RecipeSummary
	for _, r := range recipes {
		if strings.Contains(strings.ToLower(r.Description), q) {
			possible = append(possible, r.Summary())
			if len(possible) == maxPossibleMatches {
				break
			}
		}
	}

	if len(possible) == 0 {
		return FindResult{
			Message: fmt.Sprintf("未找到匹配\"%s\"的菜谱，请检查菜谱名称是否正确，或尝试使用关键词搜索", query),
		}, nil
	}
	return FindResult{
		PossibleMatches: possible,
		Message:         fmt.Sprintf("未找到精确匹配\"%s\"的菜谱，以下是%d个可能的匹配项", query, len(possible)),
	}, nil
}

func simplify(recipes []Recipe) []SimpleRecipe {
	out := make([]SimpleRecipe, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.Simple())
	}
	return out
}
