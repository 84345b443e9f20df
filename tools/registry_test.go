package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	catalog := newTestCatalog(t)
	lookup := &fakeLookup{}
	registry := NewRegistry(
		NewGetRecipeByID(catalog),
		NewGetAllRecipes(catalog),
		NewGetCalorieInfo(lookup),
	)

	var names []string
	for _, tool := range registry.GetTools() {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{"get_all_recipes", "get_calorie_info", "get_recipe_by_id"}, names)

	tool, err := registry.GetTool("get_calorie_info")
	require.NoError(t, err)
	assert.Equal(t, "get_calorie_info", tool.Name())

	_, err = registry.GetTool("plan_meals")
	assert.ErrorIs(t, err, ErrToolNotFound)
	assert.Contains(t, err.Error(), `"plan_meals"`)
}
