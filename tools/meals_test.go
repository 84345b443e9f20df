package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookassistant/tools/storage"
)

const mealsCatalogJSON = `[
  {"id":"huiguorou","name":"回锅肉","category":"荤菜","ingredients":[{"name":"猪肉","quantity":300,"unit":"g"},{"name":"蒜苗"},{"name":"豆瓣酱"}]},
  {"id":"kungpao","name":"宫保鸡丁","category":"荤菜","ingredients":[{"name":"鸡肉","quantity":300,"unit":"g"},{"name":"花生"}]},
  {"id":"beef","name":"土豆炖牛肉","category":"荤菜","ingredients":[{"name":"牛肉","quantity":500,"unit":"g"},{"name":"土豆"}]},
  {"id":"bass","name":"清蒸鲈鱼","category":"水产","ingredients":[{"name":"鲈鱼"},{"name":"葱"}]},
  {"id":"shrimp","name":"白灼虾","category":"水产","ingredients":[{"name":"虾","quantity":300,"unit":"g"}]},
  {"id":"tomato-egg","name":"番茄炒蛋","category":"素菜","ingredients":[{"name":"番茄"},{"name":"鸡蛋"}]},
  {"id":"cabbage","name":"手撕包菜","category":"素菜","ingredients":[{"name":"包菜"},{"name":"大蒜"}]},
  {"id":"seaweed-soup","name":"紫菜蛋花汤","category":"汤羹","ingredients":[{"name":"紫菜"},{"name":"鸡蛋"}]},
  {"id":"congee","name":"皮蛋瘦肉粥","category":"早餐","ingredients":[{"name":"大米","quantity":100,"unit":"g"},{"name":"猪肉","quantity":50,"unit":"g"}]},
  {"id":"fried-rice","name":"蛋炒饭","category":"主食","ingredients":[{"name":"米饭"},{"name":"鸡蛋"}]}
]`

func newMealsCatalog(t *testing.T, firstPick bool) *Catalog {
	t.Helper()
	c := NewCatalog(storage.NewTestRecipeState([]byte(mealsCatalogJSON)))
	if firstPick {
		c.intn = func(int) int { return 0 }
	}
	return c
}

func recipeNames(recipes []SimpleRecipe) []string {
	out := []string{}
	for _, r := range recipes {
		out = append(out, r.Name)
	}
	return out
}

func TestCatalog_WhatToEat(t *testing.T) {
	tests := []struct {
		name       string
		people     int
		wantDishes []string
		wantMeat   int
		wantVeg    int
	}{
		{
			name:       "two people",
			people:     2,
			wantDishes: []string{"宫保鸡丁", "土豆炖牛肉", "番茄炒蛋"},
			wantMeat:   2,
			wantVeg:    1,
		},
		{
			name:       "one person",
			people:     1,
			wantDishes: []string{"宫保鸡丁", "番茄炒蛋"},
			wantMeat:   1,
			wantVeg:    1,
		},
		{
			name:       "seafood first above eight people",
			people:     9,
			wantDishes: []string{"清蒸鲈鱼", "宫保鸡丁", "土豆炖牛肉", "回锅肉", "白灼虾", "番茄炒蛋", "手撕包菜", "紫菜蛋花汤"},
			wantMeat:   5,
			wantVeg:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newMealsCatalog(t, true).WhatToEat(context.Background(), tt.people)
			require.NoError(t, err)

			assert.Equal(t, tt.wantDishes, recipeNames(res.Dishes))
			assert.Equal(t, tt.people, res.PeopleCount)
			assert.Equal(t, tt.wantMeat, res.MeatDishCount)
			assert.Equal(t, tt.wantVeg, res.VegetableDishCount)
		})
	}

	t.Run("never suggests breakfast or staples", func(t *testing.T) {
		for range 20 {
			res, err := newMealsCatalog(t, false).WhatToEat(context.Background(), 10)
			require.NoError(t, err)
			assert.NotContains(t, recipeNames(res.Dishes), "皮蛋瘦肉粥")
			assert.NotContains(t, recipeNames(res.Dishes), "蛋炒饭")
			assert.Len(t, res.Dishes, 8)
		}
	})

	t.Run("people count out of range", func(t *testing.T) {
		for _, n := range []int{0, -1, 11} {
			_, err := newMealsCatalog(t, true).WhatToEat(context.Background(), n)
			assert.ErrorIs(t, err, ErrPeopleCount)
		}
	})
}

func TestCatalog_RecommendMeals(t *testing.T) {
	t.Run("respects allergies and avoided items", func(t *testing.T) {
		for range 20 {
			plan, err := newMealsCatalog(t, false).RecommendMeals(context.Background(), MealPlanRequest{
				Allergies:   []string{" 虾 "},
				AvoidItems:  []string{"猪肉", ""},
				PeopleCount: 3,
			})
			require.NoError(t, err)

			require.Len(t, plan.Weekdays, 5)
			require.Len(t, plan.Weekend, 2)
			assert.Equal(t, "周一", plan.Weekdays[0].Day)
			assert.Equal(t, "周日", plan.Weekend[1].Day)

			seen := map[string]int{}
			for _, d := range append(plan.Weekdays, plan.Weekend...) {
				for _, meal := range [][]SimpleRecipe{d.Breakfast, d.Lunch, d.Dinner} {
					for _, r := range meal {
						seen[r.Name]++
					}
				}
			}
			assert.Len(t, seen, 7)
			for name, n := range seen {
				assert.Equal(t, 1, n, name)
			}
			assert.NotContains(t, seen, "白灼虾")
			assert.NotContains(t, seen, "回锅肉")
			assert.NotContains(t, seen, "皮蛋瘦肉粥")
			assert.Contains(t, plan.Message, "共选出 7 道菜，备选池 7 条")
			assert.Contains(t, plan.Message, "已排除过敏原：虾；忌口：猪肉。")
		}
	})

	t.Run("breakfast prefers breakfast dishes", func(t *testing.T) {
		plan, err := newMealsCatalog(t, true).RecommendMeals(context.Background(), MealPlanRequest{PeopleCount: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"皮蛋瘦肉粥"}, recipeNames(plan.Weekdays[0].Breakfast))
		assert.Contains(t, plan.Message, "已排除过敏原：无；忌口：无。")
	})

	t.Run("everything excluded", func(t *testing.T) {
		plan, err := newMealsCatalog(t, true).RecommendMeals(context.Background(), MealPlanRequest{
			AvoidItems:  []string{"肉", "鱼", "虾", "蛋", "菜", "米"},
			PeopleCount: 2,
		})
		require.NoError(t, err)
		assert.Empty(t, plan.Weekdays)
		assert.NotNil(t, plan.GroceryList.Ingredients)
		assert.Contains(t, plan.Message, "没有可用菜谱")
	})

	t.Run("people count out of range", func(t *testing.T) {
		_, err := newMealsCatalog(t, true).RecommendMeals(context.Background(), MealPlanRequest{PeopleCount: 12})
		assert.ErrorIs(t, err, ErrPeopleCount)
	})
}

func TestGroceryList(t *testing.T) {
	grams := func(v float64) *float64 { return &v }
	recipes := []Recipe{
		{Name: "回锅肉", Ingredients: []Ingredient{{Name: "猪肉", Quantity: grams(300), Unit: "g"}, {Name: "蒜苗"}, {Name: "豆瓣酱"}}},
		{Name: "皮蛋瘦肉粥", Ingredients: []Ingredient{{Name: "大米", Quantity: grams(100), Unit: "g"}, {Name: "猪肉", Quantity: grams(50), Unit: "g"}}},
		{Name: "白灼虾", Ingredients: []Ingredient{{Name: "虾", Quantity: grams(300), Unit: "g"}}},
		{Name: "油爆虾", Ingredients: []Ingredient{{Name: "虾", Quantity: grams(1), Unit: "斤"}}},
	}

	list := groceryList(recipes)

	require.Len(t, list.Ingredients, 5)
	pork := list.Ingredients[0]
	assert.Equal(t, "猪肉", pork.Name)
	assert.Equal(t, 2, pork.RecipeCount)
	assert.Equal(t, []string{"回锅肉", "皮蛋瘦肉粥"}, pork.Recipes)
	require.NotNil(t, pork.TotalQuantity)
	assert.Equal(t, 350.0, *pork.TotalQuantity)

	shrimp := list.Ingredients[1]
	assert.Equal(t, "虾", shrimp.Name)
	assert.Nil(t, shrimp.TotalQuantity)

	assert.Equal(t, []string{"猪肉", "虾", "蒜苗"}, list.ShoppingPlan.Fresh)
	assert.Equal(t, []string{"豆瓣酱"}, list.ShoppingPlan.Spices)
	assert.Equal(t, []string{"大米"}, list.ShoppingPlan.Pantry)
	assert.Empty(t, list.ShoppingPlan.Others)
}
