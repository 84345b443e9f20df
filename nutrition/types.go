package nutrition

import (
	"encoding/json"
	"strconv"
	"strings"
)

type Source string

const (
	SourceFatSecret Source = "fatsecret"
	SourceEstimate  Source = "estimate"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

func (c Confidence) score() float64 {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	default:
		return 1
	}
}

// Facts holds per-serving nutrition values. Energy is kcal, masses are grams, sodium and cholesterol are mg.
type Facts struct {
	Calories           float64 `json:"calories"`
	Carbohydrate       float64 `json:"carbohydrate"`
	Protein            float64 `json:"protein"`
	Fat                float64 `json:"fat"`
	Fiber              float64 `json:"fiber"`
	Sugar              float64 `json:"sugar"`
	Sodium             float64 `json:"sodium"`
	Cholesterol        float64 `json:"cholesterol"`
	SaturatedFat       float64 `json:"saturated_fat"`
	PolyunsaturatedFat float64 `json:"polyunsaturated_fat"`
	MonounsaturatedFat float64 `json:"monounsaturated_fat"`
}

// CalorieInfo is the answer for a single dish, whether it came from FatSecret or the estimator.
type CalorieInfo struct {
	DishName           string     `json:"dish_name"`
	MatchedFood        string     `json:"matched_food,omitempty"`
	CaloriesPerServing float64    `json:"calories_per_serving"`
	Nutrition          *Facts     `json:"nutrition_info,omitempty"`
	Source             Source     `json:"source"`
	Confidence         Confidence `json:"confidence"`
	Message            string     `json:"message"`
}

type BatchSummary struct {
	TotalDishes       int        `json:"total_dishes"`
	TotalCalories     int        `json:"total_calories"`
	APIQueries        int        `json:"api_queries"`
	EstimatedQueries  int        `json:"estimated_queries"`
	AverageConfidence Confidence `json:"average_confidence"`
}

type BatchResult struct {
	Results []CalorieInfo `json:"results"`
	Summary BatchSummary  `json:"summary"`
	Message string        `json:"message"`
}

// Suggestion is one autocomplete hit.
type Suggestion struct {
	FoodName string `json:"food_name"`
	FoodID   string `json:"food_id,omitempty"`
}

// Match is the best FatSecret hit for a dish name.
type Match struct {
	MatchedFood string
	Facts       Facts
	Confidence  Confidence
	Estimated   bool
}

// number decodes FatSecret's numeric fields, which arrive as strings. Anything unparsable is 0.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = number(f)
	return nil
}

type wireServing struct {
	Calories           number `json:"calories"`
	Carbohydrate       number `json:"carbohydrate"`
	Protein            number `json:"protein"`
	Fat                number `json:"fat"`
	Fiber              number `json:"fiber"`
	Sugar              number `json:"sugar"`
	Sodium             number `json:"sodium"`
	Cholesterol        number `json:"cholesterol"`
	SaturatedFat       number `json:"saturated_fat"`
	PolyunsaturatedFat number `json:"polyunsaturated_fat"`
	MonounsaturatedFat number `json:"monounsaturated_fat"`
}

func (w wireServing) facts() Facts {
	return Facts{
		Calories:           float64(w.Calories),
		Carbohydrate:       float64(w.Carbohydrate),
		Protein:            float64(w.Protein),
		Fat:                float64(w.Fat),
		Fiber:              float64(w.Fiber),
		Sugar:              float64(w.Sugar),
		Sodium:             float64(w.Sodium),
		Cholesterol:        float64(w.Cholesterol),
		SaturatedFat:       float64(w.SaturatedFat),
		PolyunsaturatedFat: float64(w.PolyunsaturatedFat),
		MonounsaturatedFat: float64(w.MonounsaturatedFat),
	}
}

// oneOrMany decodes a JSON value that FatSecret sends as a single object when there is one element and an array otherwise.
func oneOrMany(raw json.RawMessage) []json.RawMessage {
	raw = json.RawMessage(strings.TrimSpace(string(raw)))
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if raw[0] == '[' {
		var many []json.RawMessage
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil
		}
		return many
	}
	return []json.RawMessage{raw}
}
