package tooluse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cookassistant/tools"
)

func TestParseModelOutput(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantContent string
		wantCalls   []tools.Call
	}{
		{
			name:  "pure tool calls",
			input: `{"tool_calls":[{"name":"get_recipe_by_id","input":{"query":"红烧肉"}}]}`,
			wantCalls: []tools.Call{
				{Name: "get_recipe_by_id", Input: map[string]any{"query": "红烧肉"}},
			},
		},
		{
			name:        "mixed content",
			input:       "先查一下菜谱\n{\"tool_calls\":[{\"name\":\"get_all_recipes\"}]}\n稍等",
			wantContent: "先查一下菜谱\n\n稍等",
			wantCalls:   []tools.Call{{Name: "get_all_recipes", Input: map[string]any{}}},
		},
		{
			name:        "analysis json line is content",
			input:       "{\"type\":\"single\",\"dishes\":[\"红烧肉\"],\"detailed\":\"红烧肉\"}\n## 做法",
			wantContent: "{\"type\":\"single\",\"dishes\":[\"红烧肉\"],\"detailed\":\"红烧肉\"}\n## 做法",
		},
		{
			name:        "braces inside strings",
			input:       `{"tool_calls":[{"name":"get_recipe_by_id","input":{"query":"a}b{\"c"}}]} done`,
			wantContent: "done",
			wantCalls: []tools.Call{
				{Name: "get_recipe_by_id", Input: map[string]any{"query": `a}b{"c`}},
			},
		},
		{
			name:        "unbalanced object kept as content",
			input:       `text {"tool_calls":[{"name":"x"}]`,
			wantContent: `text {"tool_calls":[{"name":"x"}]`,
		},
		{
			name:        "empty tool call list",
			input:       `{"tool_calls":[]}`,
			wantContent: `{"tool_calls":[]}`,
		},
		{
			name:        "calls without names dropped",
			input:       `{"tool_calls":[{"input":{}}]}`,
			wantContent: "",
		},
		{
			name:  "blank",
			input: "   \n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, calls := ParseModelOutput(tt.input)
			assert.Equal(t, tt.wantContent, content)
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}
