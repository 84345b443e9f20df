package tools

type Ingredient struct {
	Name         string   `json:"name" yaml:"name"`
	Quantity     *float64 `json:"quantity,omitempty" yaml:"quantity"`
	TextQuantity string   `json:"text_quantity,omitempty" yaml:"text_quantity"`
	Unit         string   `json:"unit,omitempty" yaml:"unit"`
}

type Recipe struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description" yaml:"description"`
	Category    string       `json:"category,omitempty" yaml:"category"`
	Ingredients []Ingredient `json:"ingredients" yaml:"ingredients"`
	Steps       []string     `json:"steps,omitempty" yaml:"steps"`
	CookingTime string       `json:"cookingTime,omitempty" yaml:"cookingTime"`
	Difficulty  string       `json:"difficulty,omitempty" yaml:"difficulty"`
	Tags        []string     `json:"tags,omitempty" yaml:"tags"`
}

type SimpleIngredient struct {
	Name         string `json:"name"`
	TextQuantity string `json:"text_quantity,omitempty"`
}

// SimpleRecipe is the list view of a recipe: no steps, ingredients without amounts.
type SimpleRecipe struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Ingredients []SimpleIngredient `json:"ingredients"`
}

type RecipeSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

func (r Recipe) Simple() SimpleRecipe {
	ingredients := make([]SimpleIngredient, 0, len(r.Ingredients))
	for _, in := range r.Ingredients {
		ingredients = append(ingredients, SimpleIngredient{Name: in.Name, TextQuantity: in.TextQuantity})
	}
	return SimpleRecipe{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Ingredients: ingredients,
	}
}

func (r Recipe) Summary() RecipeSummary {
	return RecipeSummary{ID: r.ID, Name: r.Name, Description: r.Description, Category: r.Category}
}
