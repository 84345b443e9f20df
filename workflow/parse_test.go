package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAnalyzerOutput_JSONLine(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantFound    bool
		wantType     QueryType
		wantDishes   []string
		wantDetailed string
	}{
		{
			name:         "first line",
			text:         "{\"type\":\"single\",\"dishes\":[\"红烧肉\"],\"detailed\":\"红烧肉\"}\n## 菜谱\n- 名称: 红烧肉",
			wantFound:    true,
			wantType:     QuerySingle,
			wantDishes:   []string{"红烧肉"},
			wantDetailed: "红烧肉",
		},
		{
			name:         "after blank and comment lines",
			text:         "\n# 元数据\n// json\n  {\"type\":\"combination\",\"dishes\":[\"宫保鸡丁\",\"番茄炒蛋\"],\"detailed\":\"宫保鸡丁\"}  \n## 推荐搭配",
			wantFound:    true,
			wantType:     QueryCombination,
			wantDishes:   []string{"宫保鸡丁", "番茄炒蛋"},
			wantDetailed: "宫保鸡丁",
		},
		{
			name:       "byte order mark and CRLF",
			text:       "\ufeff{\"type\":\"single\",\"dishes\":[\"皮蛋瘦肉粥\"]}\r\n## 菜谱\r\n",
			wantFound:  true,
			wantType:   QuerySingle,
			wantDishes: []string{"皮蛋瘦肉粥"},
		},
		{
			name:       "beyond the fifth line",
			text:       "a\nb\nc\nd\ne\n{\"type\":\"single\",\"dishes\":[\"红烧肉\"]}",
			wantType:   QuerySingle,
			wantDishes: []string{},
		},
		{
			name:       "malformed candidate then valid one",
			text:       "{\"type\": broken\n{\"type\":\"combination\",\"dishes\":[\"番茄炒蛋\"]}",
			wantFound:  true,
			wantType:   QueryCombination,
			wantDishes: []string{"番茄炒蛋"},
		},
		{
			name:       "object without type key is ignored",
			text:       "{\"dishes\":[\"红烧肉\"]}\n## 菜谱",
			wantType:   QuerySingle,
			wantDishes: []string{},
		},
		{
			name:       "unknown type falls back to single",
			text:       "{\"type\":\"menu\",\"dishes\":[\"红烧肉\"]}",
			wantFound:  true,
			wantType:   QuerySingle,
			wantDishes: []string{"红烧肉"},
		},
		{
			name:       "dishes not an array",
			text:       "{\"type\":\"single\",\"dishes\":\"红烧肉\"}",
			wantFound:  true,
			wantType:   QuerySingle,
			wantDishes: []string{},
		},
		{
			name:       "non-string and empty dishes dropped",
			text:       "{\"type\":\"combination\",\"dishes\":[\"a\",\"\",1,null,\"b\"],\"detailed\":7}",
			wantFound:  true,
			wantType:   QueryCombination,
			wantDishes: []string{"a", "b"},
		},
		{
			name:       "null detailed",
			text:       "{\"type\":\"single\",\"dishes\":[],\"detailed\":null}",
			wantFound:  true,
			wantType:   QuerySingle,
			wantDishes: []string{},
		},
		{
			name:       "free text only",
			text:       "抱歉，我暂时无法回答这个问题。",
			wantType:   QuerySingle,
			wantDishes: []string{},
		},
		{
			name:       "empty",
			text:       "",
			wantType:   QuerySingle,
			wantDishes: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := ParseAnalyzerOutput(tt.text)
			assert.Equal(t, tt.wantFound, a.JSONFound)
			assert.Equal(t, tt.wantType, a.QueryType)
			assert.Equal(t, tt.wantDishes, a.Dishes)
			assert.Equal(t, tt.wantDetailed, a.Detailed)
		})
	}
}

func TestParseAnalyzerOutput_Candidates(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "pipe separated",
			text: "{\"type\":\"single\",\"dishes\":[\"红烧肉\"]}\n## CANDIDATES\n 宫保鸡丁 | 鱼香肉丝 ||  麻婆豆腐 \n",
			want: []string{"宫保鸡丁", "鱼香肉丝", "麻婆豆腐"},
		},
		{
			name: "case insensitive header",
			text: "## candidates\n番茄炒蛋|蛋炒饭",
			want: []string{"番茄炒蛋", "蛋炒饭"},
		},
		{
			name: "stops at hash",
			text: "## CANDIDATES\n红烧肉 | 东坡肉 # 注释",
			want: []string{"红烧肉", "东坡肉"},
		},
		{
			name: "empty section",
			text: "## CANDIDATES\n\n## APPROX_METHOD\n- 煮",
			want: []string{},
		},
		{
			name: "absent",
			text: "{\"type\":\"single\",\"dishes\":[\"红烧肉\"]}",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAnalyzerOutput(tt.text).Candidates)
		})
	}
}

func TestParseAnalyzerOutput_ApproxMethod(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "ends at next header",
			text: "{\"type\":\"single\",\"dishes\":[],\"detailed\":null}\n## NO_RECIPE_FOUND\n说明: 未找到\n## APPROX_METHOD\n- 鸡蛋打散\n- 热锅下油\n1. 翻炒出锅\n## CANDIDATES\n番茄炒蛋 | 蛋炒饭\n",
			want: "鸡蛋打散\n热锅下油\n翻炒出锅",
		},
		{
			name: "ends at trailing whitespace",
			text: "{\"type\":\"single\",\"dishes\":[]}\n## approx_method\n* 米饭打散\n* 大火翻炒\n\n   ",
			want: "米饭打散\n大火翻炒",
		},
		{
			name: "numbered list",
			text: "## APPROX_METHOD\n1. 焯水\n2. 炒糖色\n10. 收汁",
			want: "焯水\n炒糖色\n收汁",
		},
		{
			name: "ignored when dishes were identified",
			text: "{\"type\":\"single\",\"dishes\":[\"红烧肉\"]}\n## APPROX_METHOD\n- 焯水",
			want: "",
		},
		{
			name: "absent",
			text: "{\"type\":\"single\",\"dishes\":[]}\n## NO_RECIPE_FOUND",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAnalyzerOutput(tt.text).ApproxMethod)
		})
	}
}
