package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"cookassistant/nutrition"
)

// CalorieLookup answers calorie questions. *nutrition.Service implements it.
type CalorieLookup interface {
	Lookup(ctx context.Context, dish string, includeNutrition bool) nutrition.CalorieInfo
	LookupBatch(ctx context.Context, dishes []string, includeNutrition bool) (nutrition.BatchResult, error)
}

var nutritionFactsSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"calories":            {Type: "number"},
		"carbohydrate":        {Type: "number"},
		"protein":             {Type: "number"},
		"fat":                 {Type: "number"},
		"fiber":               {Type: "number"},
		"sugar":               {Type: "number"},
		"sodium":              {Type: "number"},
		"cholesterol":         {Type: "number"},
		"saturated_fat":       {Type: "number"},
		"polyunsaturated_fat": {Type: "number"},
		"monounsaturated_fat": {Type: "number"},
	},
}

var calorieInfoSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"dish_name":            {Type: "string"},
		"matched_food":         {Type: "string"},
		"calories_per_serving": {Type: "number"},
		"nutrition_info":       nutritionFactsSchema,
		"source":               {Type: "string", Enum: []any{"fatsecret", "estimate"}},
		"confidence":           {Type: "string", Enum: []any{"high", "medium", "low"}},
		"message":              {Type: "string"},
	},
	Required: []string{"dish_name", "source", "confidence", "message"},
}

type GetCalorieInfo struct{ lookup CalorieLookup }

func NewGetCalorieInfo(lookup CalorieLookup) *GetCalorieInfo { return &GetCalorieInfo{lookup: lookup} }

func (t *GetCalorieInfo) Name() string  { return "get_calorie_info" }
func (t *GetCalorieInfo) Title() string { return "Calorie Info" }
func (t *GetCalorieInfo) Description() string {
	return "查询菜品的卡路里和营养信息，支持中英文菜名，如'宫保鸡丁'、'Kung Pao Chicken'。"
}

func (t *GetCalorieInfo) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"dishName":         {Type: "string", Description: "菜品名称"},
			"includeNutrition": {Type: "boolean", Description: "是否包含详细营养信息，默认 true"},
		},
		Required: []string{"dishName"},
	}
}

func (t *GetCalorieInfo) OutputSchema() *jsonschema.Schema { return calorieInfoSchema }

func (t *GetCalorieInfo) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	dish := stringArg(input, "dishName")
	if dish == "" {
		return nil, fmt.Errorf("dishName is required")
	}
	return asMap(t.lookup.Lookup(ctx, dish, boolArg(input, "includeNutrition", true)))
}

type GetMultipleCalories struct{ lookup CalorieLookup }

func NewGetMultipleCalories(lookup CalorieLookup) *GetMultipleCalories {
	return &GetMultipleCalories{lookup: lookup}
}

func (t *GetMultipleCalories) Name() string  { return "get_multiple_calories" }
func (t *GetMultipleCalories) Title() string { return "Batch Calorie Info" }
func (t *GetMultipleCalories) Description() string {
	return fmt.Sprintf("批量查询多个菜品的卡路里信息，适用于整个菜单或膳食计划，最多%d个。", nutrition.MaxBatchDishes)
}

func (t *GetMultipleCalories) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"dishNames": {
				Type:        "array",
				Items:       &jsonschema.Schema{Type: "string"},
				Description: fmt.Sprintf("菜品名称列表，1到%d个", nutrition.MaxBatchDishes),
			},
			"includeNutrition": {Type: "boolean", Description: "是否包含详细营养信息，默认 false"},
		},
		Required: []string{"dishNames"},
	}
}

func (t *GetMultipleCalories) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"results": {Type: "array", Items: calorieInfoSchema},
			"summary": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"total_dishes":       {Type: "integer"},
					"total_calories":     {Type: "integer"},
					"api_queries":        {Type: "integer"},
					"estimated_queries":  {Type: "integer"},
					"average_confidence": {Type: "string"},
				},
			},
			"message": {Type: "string"},
		},
		Required: []string{"results", "summary", "message"},
	}
}

func (t *GetMultipleCalories) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	res, err := t.lookup.LookupBatch(ctx, stringsArg(input, "dishNames"), boolArg(input, "includeNutrition", false))
	if err != nil {
		return nil, err
	}
	return asMap(res)
}
