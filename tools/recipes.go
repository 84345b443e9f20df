package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

var simpleRecipeSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"id":          {Type: "string"},
		"name":        {Type: "string"},
		"description": {Type: "string"},
		"ingredients": {
			Type: "array",
			Items: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"name":          {Type: "string"},
					"text_quantity": {Type: "string"},
				},
			},
		},
	},
}

type GetAllRecipes struct{ catalog *Catalog }

func NewGetAllRecipes(catalog *Catalog) *GetAllRecipes { return &GetAllRecipes{catalog: catalog} }

func (t *GetAllRecipes) Name() string  { return "get_all_recipes" }
func (t *GetAllRecipes) Title() string { return "List Recipes" }
func (t *GetAllRecipes) Description() string {
	return "获取所有菜谱的名称、描述和食材，可选 limit 限制返回数量。"
}

func (t *GetAllRecipes) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"limit": {Type: "integer", Description: "限制返回的菜谱数量，默认返回所有"},
		},
	}
}

func (t *GetAllRecipes) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"recipes": {Type: "array", Items: simpleRecipeSchema},
			"total":   {Type: "integer"},
			"message": {Type: "string"},
		},
		Required: []string{"recipes", "total", "message"},
	}
}

func (t *GetAllRecipes) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	res, err := t.catalog.All(ctx, intArg(input, "limit"))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"recipes": res.Recipes,
		"total":   res.Total,
		"message": res.Message,
	}, nil
}

type GetRecipesByCategory struct{ catalog *Catalog }

func NewGetRecipesByCategory(catalog *Catalog) *GetRecipesByCategory {
	return &GetRecipesByCategory{catalog: catalog}
}

func (t *GetRecipesByCategory) Name() string  { return "get_recipes_by_category" }
func (t *GetRecipesByCategory) Title() string { return "Recipes By Category" }
func (t *GetRecipesByCategory) Description() string {
	return "根据分类查询菜谱，如水产、早餐、荤菜、主食等。分类不存在时返回可用分类。"
}

func (t *GetRecipesByCategory) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"category": {Type: "string", Description: "菜谱分类名称"},
			"limit":    {Type: "integer", Description: "限制返回的菜谱数量"},
		},
		Required: []string{"category"},
	}
}

func (t *GetRecipesByCategory) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"recipes":             {Type: "array", Items: simpleRecipeSchema},
			"category":            {Type: "string"},
			"total":               {Type: "integer"},
			"availableCategories": {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
			"message":             {Type: "string"},
		},
		Required: []string{"recipes", "category", "total", "message"},
	}
}

func (t *GetRecipesByCategory) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	category := stringArg(input, "category")
	if category == "" {
		return nil, fmt.Errorf("category is required")
	}

	res, err := t.catalog.ByCategory(ctx, category, intArg(input, "limit"))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"recipes":             res.Recipes,
		"category":            res.Category,
		"total":               res.Total,
		"availableCategories": res.AvailableCategories,
		"message":             res.Message,
	}, nil
}

type GetRecipeByID struct{ catalog *Catalog }

func NewGetRecipeByID(catalog *Catalog) *GetRecipeByID { return &GetRecipeByID{catalog: catalog} }

func (t *GetRecipeByID) Name() string  { return "get_recipe_by_id" }
func (t *GetRecipeByID) Title() string { return "Get Recipe" }
func (t *GetRecipeByID) Description() string {
	return "根据菜谱名称或ID查询完整菜谱，包括食材和步骤；支持模糊匹配名称。"
}

func (t *GetRecipeByID) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query": {Type: "string", Description: "菜谱名称或ID"},
		},
		Required: []string{"query"},
	}
}

func (t *GetRecipeByID) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			// full recipe document, kept open
			"recipe":          {Type: "object"},
			"possibleMatches": {Type: "array", Items: &jsonschema.Schema{Type: "object"}},
			"message":         {Type: "string"},
		},
		Required: []string{"message"},
	}
}

func (t *GetRecipeByID) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	query := stringArg(input, "query")
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	res, err := t.catalog.Find(ctx, query)
	if err != nil {
		return nil, err
	}

	out := map[string]any{"recipe": res.Recipe, "message": res.Message}
	if len(res.PossibleMatches) > 0 {
		out["possibleMatches"] = res.PossibleMatches
	}
	return out, nil
}

type WhatToEat struct{ catalog *Catalog }

func NewWhatToEat(catalog *Catalog) *WhatToEat { return &WhatToEat{catalog: catalog} }

func (t *WhatToEat) Name() string  { return "what_to_eat" }
func (t *WhatToEat) Title() string { return "What To Eat" }
func (t *WhatToEat) Description() string {
	return "不知道吃什么？根据用餐人数推荐荤素搭配的菜品组合，超过8人时加一道水产。"
}

func (t *WhatToEat) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"peopleCount": {Type: "integer", Description: "用餐人数，1-10之间的整数"},
		},
		Required: []string{"peopleCount"},
	}
}

func (t *WhatToEat) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"peopleCount":        {Type: "integer"},
			"meatDishCount":      {Type: "integer"},
			"vegetableDishCount": {Type: "integer"},
			"dishes":             {Type: "array", Items: simpleRecipeSchema},
			"message":            {Type: "string"},
		},
		Required: []string{"dishes", "message"},
	}
}

func (t *WhatToEat) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	res, err := t.catalog.WhatToEat(ctx, intArg(input, "peopleCount"))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"peopleCount":        res.PeopleCount,
		"meatDishCount":      res.MeatDishCount,
		"vegetableDishCount": res.VegetableDishCount,
		"dishes":             res.Dishes,
		"message":            res.Message,
	}, nil
}

type RecommendMeals struct{ catalog *Catalog }

func NewRecommendMeals(catalog *Catalog) *RecommendMeals { return &RecommendMeals{catalog: catalog} }

func (t *RecommendMeals) Name() string  { return "recommend_meals" }
func (t *RecommendMeals) Title() string { return "Recommend Meals" }
func (t *RecommendMeals) Description() string {
	return "根据过敏原、忌口和用餐人数生成一周膳食计划（每天早午晚餐），并汇总购物清单。"
}

func (t *RecommendMeals) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"allergies":   {Type: "array", Items: &jsonschema.Schema{Type: "string"}, Description: `过敏原列表，如["大蒜","虾"]`},
			"avoidItems":  {Type: "array", Items: &jsonschema.Schema{Type: "string"}, Description: `忌口食材列表，如["葱","姜"]`},
			"peopleCount": {Type: "integer", Description: "用餐人数，1-10之间的整数"},
		},
		Required: []string{"peopleCount"},
	}
}

func (t *RecommendMeals) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"weekdays":    {Type: "array", Items: &jsonschema.Schema{Type: "object"}},
			"weekend":     {Type: "array", Items: &jsonschema.Schema{Type: "object"}},
			"groceryList": {Type: "object"},
			"message":     {Type: "string"},
		},
		Required: []string{"weekdays", "weekend", "groceryList", "message"},
	}
}

func (t *RecommendMeals) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	plan, err := t.catalog.RecommendMeals(ctx, MealPlanRequest{
		Allergies:   stringsArg(input, "allergies"),
		AvoidItems:  stringsArg(input, "avoidItems"),
		PeopleCount: intArg(input, "peopleCount"),
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"weekdays":    plan.Weekdays,
		"weekend":     plan.Weekend,
		"groceryList": plan.GroceryList,
		"message":     plan.Message,
	}, nil
}
