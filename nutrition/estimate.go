package nutrition

import (
	"math"
	"strings"
)

const defaultEstimateKcal = 180

// calorieKeywords is checked in order; the first keyword contained in the dish name wins.
var calorieKeywords = []struct {
	keywords []string
	kcal     float64
}{
	{[]string{"沙拉", "salad", "蔬菜"}, 80},
	{[]string{"汤", "soup"}, 60},
	{[]string{"鸡", "chicken"}, 200},
	{[]string{"鱼", "fish"}, 180},
	{[]string{"牛肉", "beef"}, 250},
	{[]string{"猪肉", "pork"}, 220},
	{[]string{"虾", "shrimp"}, 160},
	{[]string{"米饭", "rice"}, 150},
	{[]string{"面条", "noodles"}, 200},
	{[]string{"炒", "fried"}, 280},
	{[]string{"红烧", "braised"}, 300},
	{[]string{"糖醋", "sweet"}, 350},
	{[]string{"蛋糕", "cake"}, 400},
}

// EstimateCalories guesses kcal per serving from keywords in the dish name.
func EstimateCalories(dish string) float64 {
	name := strings.ToLower(dish)
	for _, k := range calorieKeywords {
		for _, kw := range k.keywords {
			if strings.Contains(name, kw) {
				return k.kcal
			}
		}
	}
	return defaultEstimateKcal
}

// Estimate builds rough facts for a dish: 50% of energy from carbohydrate, 25% protein, 25% fat.
func Estimate(dish string) Facts {
	kcal := EstimateCalories(dish)
	return Facts{
		Calories:           kcal,
		Carbohydrate:       math.Round(kcal * 0.5 / 4),
		Protein:            math.Round(kcal * 0.25 / 4),
		Fat:                math.Round(kcal * 0.25 / 9),
		Fiber:              3,
		Sugar:              8,
		Sodium:             400,
		Cholesterol:        15,
		SaturatedFat:       3,
		PolyunsaturatedFat: 2,
		MonounsaturatedFat: 3,
	}
}

// MatchConfidence rates how well a FatSecret food name matches the requested dish.
func MatchConfidence(dish, matched string) Confidence {
	d := strings.ToLower(strings.TrimSpace(dish))
	m := strings.ToLower(strings.TrimSpace(matched))

	if d == m {
		return ConfidenceHigh
	}
	if strings.Contains(m, d) || strings.Contains(d, m) {
		return ConfidenceMedium
	}

	dishWords := strings.Fields(d)
	matchedWords := strings.Fields(m)
	if len(dishWords) == 0 {
		return ConfidenceLow
	}

	common := 0
	for _, w := range dishWords {
		for _, mw := range matchedWords {
			if strings.Contains(mw, w) {
				common++
				break
			}
		}
	}
	if float64(common)/float64(len(dishWords)) > 0.5 {
		return ConfidenceMedium
	}
	return ConfidenceLow
}

// AverageConfidence maps high/medium/low to 3/2/1 and buckets the mean.
func AverageConfidence(cs []Confidence) Confidence {
	if len(cs) == 0 {
		return ConfidenceLow
	}
	total := 0.0
	for _, c := range cs {
		total += c.score()
	}
	avg := total / float64(len(cs))
	switch {
	case avg > 2.5:
		return ConfidenceHigh
	case avg > 1.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
