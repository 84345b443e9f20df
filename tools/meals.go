package tools

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

const (
	MinPeople = 1
	MaxPeople = 10

	categoryMeat      = "荤菜"
	categoryAquatic   = "水产"
	categoryBreakfast = "早餐"
	categoryStaple    = "主食"
	categoryOther     = "其他"
)

// defaultCategoryOrder is used when the catalog has no categories of its own.
var defaultCategoryOrder = []string{"早餐", "主食", "荤菜", "素菜", "水产", "汤羹", "甜品", "小吃", "饮品", "其他"}

// meatTypes are ingredient keywords used to spread meat dishes over different meats.
var meatTypes = []string{"猪肉", "鸡肉", "牛肉", "羊肉", "鸭肉", "鱼肉"}

// ErrPeopleCount is returned when a head count is outside MinPeople..MaxPeople.
var ErrPeopleCount = fmt.Errorf("people count must be between %d and %d", MinPeople, MaxPeople)

type MealSuggestion struct {
	PeopleCount        int            `json:"peopleCount"`
	MeatDishCount      int            `json:"meatDishCount"`
	VegetableDishCount int            `json:"vegetableDishCount"`
	Dishes             []SimpleRecipe `json:"dishes"`
	Message            string         `json:"message"`
}

// WhatToEat suggests a balanced set of dishes for peopleCount diners: about half meat (or
// seafood) and half vegetable dishes, with one seafood dish first for more than eight people.
func (c *Catalog) WhatToEat(ctx context.Context, peopleCount int) (MealSuggestion, error) {
	if peopleCount < MinPeople || peopleCount > MaxPeople {
		return MealSuggestion{}, ErrPeopleCount
	}
	recipes, _, err := c.load(ctx)
	if err != nil {
		return MealSuggestion{}, err
	}

	vegetableCount := (peopleCount + 1) / 2
	meatCount := (peopleCount + 2) / 2

	var meat, vegetables, aquatic []Recipe
	for _, r := range recipes {
		switch r.Category {
		case categoryMeat, categoryAquatic:
			meat = append(meat, r)
			if r.Category == categoryAquatic {
				aquatic = append(aquatic, r)
			}
		case categoryBreakfast, categoryStaple:
		default:
			vegetables = append(vegetables, r)
		}
	}

	var picked []Recipe
	if peopleCount > 8 && len(aquatic) > 0 {
		fish := aquatic[c.intn(len(aquatic))]
		picked = append(picked, fish)
		meat = slices.DeleteFunc(meat, func(r Recipe) bool { return r.ID == fish.ID })
		meatCount--
	}

	var meatPicked []Recipe
	for _, i := range c.perm(len(meatTypes)) {
		if len(meatPicked) >= meatCount {
			break
		}
		var options []Recipe
		for _, r := range meat {
			if r.hasIngredient(meatTypes[i]) {
				options = append(options, r)
			}
		}
		if len(options) == 0 {
			continue
		}
		choice := options[c.intn(len(options))]
		meatPicked = append(meatPicked, choice)
		meat = slices.DeleteFunc(meat, func(r Recipe) bool { return r.ID == choice.ID })
	}
	for len(meatPicked) < meatCount && len(meat) > 0 {
		meatPicked = append(meatPicked, c.pop(&meat))
	}

	var vegetablesPicked []Recipe
	for len(vegetablesPicked) < vegetableCount && len(vegetables) > 0 {
		vegetablesPicked = append(vegetablesPicked, c.pop(&vegetables))
	}

	meatDishes := len(picked) + len(meatPicked)
	picked = append(append(picked, meatPicked...), vegetablesPicked...)
	return MealSuggestion{
		PeopleCount:        peopleCount,
		MeatDishCount:      meatDishes,
		VegetableDishCount: len(vegetablesPicked),
		Dishes:             simplify(picked),
		Message:            fmt.Sprintf("为%d人推荐的菜品，包含%d个荤菜和%d个素菜。", peopleCount, meatDishes, len(vegetablesPicked)),
	}, nil
}

type MealPlanRequest struct {
	Allergies   []string
	AvoidItems  []string
	PeopleCount int
}

type DayPlan struct {
	Day       string         `json:"day"`
	Breakfast []SimpleRecipe `json:"breakfast"`
	Lunch     []SimpleRecipe `json:"lunch"`
	Dinner    []SimpleRecipe `json:"dinner"`
}

func (d DayPlan) dishes() int { return len(d.Breakfast) + len(d.Lunch) + len(d.Dinner) }

type GroceryItem struct {
	Name          string   `json:"name"`
	TotalQuantity *float64 `json:"totalQuantity"`
	Unit          string   `json:"unit,omitempty"`
	RecipeCount   int      `json:"recipeCount"`
	Recipes       []string `json:"recipes"`
}

// ShoppingPlan groups grocery names by where they are bought or stored.
type ShoppingPlan struct {
	Fresh  []string `json:"fresh"`
	Pantry []string `json:"pantry"`
	Spices []string `json:"spices"`
	Others []string `json:"others"`
}

type GroceryList struct {
	Ingredients  []GroceryItem `json:"ingredients"`
	ShoppingPlan ShoppingPlan  `json:"shoppingPlan"`
}

type MealPlan struct {
	Weekdays    []DayPlan   `json:"weekdays"`
	Weekend     []DayPlan   `json:"weekend"`
	GroceryList GroceryList `json:"groceryList"`
	Message     string      `json:"message"`
}

func emptyMealPlan(message string) MealPlan {
	return MealPlan{
		Weekdays: []DayPlan{},
		Weekend:  []DayPlan{},
		GroceryList: GroceryList{
			Ingredients:  []GroceryItem{},
			ShoppingPlan: ShoppingPlan{Fresh: []string{}, Pantry: []string{}, Spices: []string{}, Others: []string{}},
		},
		Message: message,
	}
}

var (
	breakfastFallback = []string{"主食", "素菜", "饮品", "小吃"}
	weekdayLunch      = []string{"主食", "荤菜", "素菜", "水产", "甜品"}
	weekdayDinner     = []string{"主食", "荤菜", "素菜", "水产", "汤羹", "甜品"}
	weekendPrimary    = []string{"荤菜", "水产"}
	weekendFallback   = []string{"主食", "素菜", "汤羹", "甜品"}
)

// RecommendMeals plans a week of breakfasts, lunches and dinners for req.PeopleCount people,
// leaving out every recipe with an ingredient that matches an allergy or avoided item.
// No recipe is used twice. When the pool runs dry meals get fewer dishes; it never fails for that.
func (c *Catalog) RecommendMeals(ctx context.Context, req MealPlanRequest) (MealPlan, error) {
	n := req.PeopleCount
	if n < MinPeople || n > MaxPeople {
		return MealPlan{}, ErrPeopleCount
	}
	recipes, categories, err := c.load(ctx)
	if err != nil {
		return MealPlan{}, err
	}

	allergies := normalizeTerms(req.Allergies)
	avoid := normalizeTerms(req.AvoidItems)
	excluded := append(slices.Clone(allergies), avoid...)

	pool := map[string][]Recipe{}
	order := slices.Clone(categories)
	if len(order) == 0 {
		order = slices.Clone(defaultCategoryOrder)
	}
	available := 0
	for _, r := range recipes {
		if r.matchesAny(excluded) {
			continue
		}
		cat := strings.TrimSpace(r.Category)
		if cat == "" {
			cat = categoryOther
		}
		if !slices.Contains(order, cat) {
			order = append(order, cat)
		}
		pool[cat] = append(pool[cat], r)
		available++
	}
	if available == 0 {
		return emptyMealPlan("没有可用菜谱：所有菜谱都因过敏原或忌口被排除。请放宽条件或补充菜谱数据。"), nil
	}

	plan := emptyMealPlan("")
	var selected []Recipe
	take := func(into *[]SimpleRecipe, primary, fallback []string) bool {
		r, ok := c.pickFromCategories(pool, primary, fallback)
		if ok {
			selected = append(selected, r)
			*into = append(*into, r.Simple())
		}
		return ok
	}

	mealCount := max(2, (n+2)/3)
	for _, day := range []string{"周一", "周二", "周三", "周四", "周五"} {
		d := DayPlan{Day: day, Breakfast: []SimpleRecipe{}, Lunch: []SimpleRecipe{}, Dinner: []SimpleRecipe{}}
		for range max(1, (n+4)/5) {
			if !take(&d.Breakfast, []string{categoryBreakfast}, breakfastFallback) {
				break
			}
		}
		for range mealCount {
			if !take(&d.Lunch, weekdayLunch, order) {
				break
			}
		}
		for range mealCount {
			if !take(&d.Dinner, weekdayDinner, order) {
				break
			}
		}
		plan.Weekdays = append(plan.Weekdays, d)
	}

	weekendMeals := mealCount + 1
	if n > 4 {
		weekendMeals++
	}
	for _, day := range []string{"周六", "周日"} {
		d := DayPlan{Day: day, Breakfast: []SimpleRecipe{}, Lunch: []SimpleRecipe{}, Dinner: []SimpleRecipe{}}
		for range max(2, (n+2)/3) {
			if !take(&d.Breakfast, []string{categoryBreakfast}, breakfastFallback) {
				break
			}
		}
		for _, meal := range []*[]SimpleRecipe{&d.Lunch, &d.Dinner} {
			for i := range weekendMeals {
				if !take(meal, []string{weekendPrimary[i%len(weekendPrimary)]}, weekendFallback) {
					break
				}
			}
		}
		plan.Weekend = append(plan.Weekend, d)
	}

	plan.GroceryList = groceryList(selected)

	total := 0
	for _, d := range append(slices.Clone(plan.Weekdays), plan.Weekend...) {
		total += d.dishes()
	}
	plan.Message = fmt.Sprintf("成功为 %d 人生成一周膳食计划（共选出 %d 道菜，备选池 %d 条）。已排除过敏原：%s；忌口：%s。",
		n, total, available, orNone(allergies), orNone(avoid))
	return plan, nil
}

// pickFromCategories pops a random recipe from a random non-empty category among primary and fallback.
func (c *Catalog) pickFromCategories(pool map[string][]Recipe, primary, fallback []string) (Recipe, bool) {
	var candidates []string
	for _, cat := range append(slices.Clone(primary), fallback...) {
		if len(pool[cat]) > 0 && !slices.Contains(candidates, cat) {
			candidates = append(candidates, cat)
		}
	}
	if len(candidates) == 0 {
		return Recipe{}, false
	}
	cat := candidates[c.intn(len(candidates))]
	list := pool[cat]
	r := c.pop(&list)
	pool[cat] = list
	return r, true
}

// pop removes and returns a random element of a non-empty list.
func (c *Catalog) pop(list *[]Recipe) Recipe {
	i := c.intn(len(*list))
	r := (*list)[i]
	*list = slices.Delete(slices.Clone(*list), i, i+1)
	return r
}

// perm returns a random permutation of 0..n-1.
func (c *Catalog) perm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := c.intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	return p
}

func (r Recipe) hasIngredient(keyword string) bool {
	keyword = strings.ToLower(keyword)
	for _, in := range r.Ingredients {
		if strings.Contains(strings.ToLower(in.Name), keyword) {
			return true
		}
	}
	return false
}

func (r Recipe) matchesAny(terms []string) bool {
	for _, t := range terms {
		if r.hasIngredient(t) {
			return true
		}
	}
	return false
}

func normalizeTerms(terms []string) []string {
	out := []string{}
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func orNone(terms []string) string {
	if len(terms) == 0 {
		return "无"
	}
	return strings.Join(terms, "、")
}

// groceryList totals ingredients over recipes. Quantities add up while the unit stays the same;
// a unit mismatch or a missing quantity leaves the total unknown.
func groceryList(recipes []Recipe) GroceryList {
	var items []GroceryItem
	index := map[string]int{}
	for _, r := range recipes {
		for _, in := range r.Ingredients {
			name := strings.TrimSpace(in.Name)
			if name == "" {
				continue
			}
			i, seen := index[name]
			if !seen {
				item := GroceryItem{Name: name, Unit: in.Unit, Recipes: []string{}}
				if in.Quantity != nil {
					q := *in.Quantity
					item.TotalQuantity = &q
				}
				index[name] = len(items)
				items = append(items, item)
				i = len(items) - 1
			} else {
				item := &items[i]
				if item.TotalQuantity != nil && in.Quantity != nil && item.Unit == in.Unit {
					q := *item.TotalQuantity + *in.Quantity
					item.TotalQuantity = &q
				} else {
					item.TotalQuantity = nil
				}
			}
			item := &items[i]
			if !slices.Contains(item.Recipes, r.Name) {
				item.Recipes = append(item.Recipes, r.Name)
				item.RecipeCount++
			}
		}
	}
	if items == nil {
		items = []GroceryItem{}
	}
	slices.SortStableFunc(items, func(a, b GroceryItem) int { return b.RecipeCount - a.RecipeCount })

	list := GroceryList{Ingredients: items, ShoppingPlan: ShoppingPlan{Fresh: []string{}, Pantry: []string{}, Spices: []string{}, Others: []string{}}}
	for _, item := range items {
		switch shelf(item.Name) {
		case shelfSpices:
			list.ShoppingPlan.Spices = append(list.ShoppingPlan.Spices, item.Name)
		case shelfFresh:
			list.ShoppingPlan.Fresh = append(list.ShoppingPlan.Fresh, item.Name)
		case shelfPantry:
			list.ShoppingPlan.Pantry = append(list.ShoppingPlan.Pantry, item.Name)
		default:
			list.ShoppingPlan.Others = append(list.ShoppingPlan.Others, item.Name)
		}
	}
	return list
}

type shelfKind int

const (
	shelfOthers shelfKind = iota
	shelfSpices
	shelfFresh
	shelfPantry
)

// Keyword lists are checked in this order: spices, then fresh, then pantry.
var shelves = []struct {
	kind     shelfKind
	keywords []string
}{
	{shelfSpices, []string{"盐", "糖", "酱油", "生抽", "老抽", "醋", "料酒", "胡椒", "花椒", "八角", "桂皮", "香叶", "味精", "鸡精", "蚝油", "淀粉", "孜然", "五香", "豆瓣酱", "辣椒面"}},
	{shelfFresh, []string{"肉", "鸡", "鸭", "鱼", "虾", "蛋", "菜", "葱", "姜", "蒜", "番茄", "西红柿", "土豆", "豆腐", "瓜", "椒", "菇", "萝卜", "奶", "笋", "藕"}},
	{shelfPantry, []string{"米", "面", "油", "豆", "粉", "干", "罐头", "花生"}},
}

func shelf(name string) shelfKind {
	for _, s := range shelves {
		for _, k := range s.keywords {
			if strings.Contains(name, k) {
				return s.kind
			}
		}
	}
	return shelfOthers
}
