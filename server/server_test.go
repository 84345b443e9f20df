package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookassistant"
	"cookassistant/agent"
	"cookassistant/agent/mock"
	"cookassistant/nutrition"
	"cookassistant/server"
	"cookassistant/tools"
	"cookassistant/tools/storage"
	"cookassistant/workflow"
)

const recipesJSON = `[
  {"id":"hongshaorou","name":"红烧肉","description":"经典家常荤菜","category":"荤菜"},
  {"id":"tomato-egg","name":"番茄炒蛋","description":"酸甜下饭","category":"素菜"},
  {"id":"kungpao","name":"宫保鸡丁","description":"川菜代表","category":"荤菜"}
]`

const cookingReply = "{\"type\":\"single\",\"dishes\":[\"红烧肉\"],\"detailed\":\"红烧肉\"}\n## 菜谱\n- 名称: 红烧肉"

func newPipeline() *workflow.Pipeline {
	r := agent.NewRegistry()
	r.Register(workflow.AgentCooking, mock.NewStatic(cookingReply))
	r.Register(workflow.AgentNutrition, mock.NewStatic("约 480 千卡"))
	r.Register(workflow.AgentIntegration, mock.NewStatic("红烧肉这样做"))
	return workflow.New(r)
}

type fakeCalories struct {
	include bool
	err     error
}

func (f *fakeCalories) Lookup(ctx context.Context, dish string, includeNutrition bool) nutrition.CalorieInfo {
	f.include = includeNutrition
	return nutrition.CalorieInfo{DishName: dish, CaloriesPerServing: 300, Source: nutrition.SourceEstimate, Confidence: nutrition.ConfidenceLow}
}

func (f *fakeCalories) LookupBatch(ctx context.Context, dishes []string, includeNutrition bool) (nutrition.BatchResult, error) {
	if f.err != nil {
		return nutrition.BatchResult{}, f.err
	}
	f.include = includeNutrition
	res := nutrition.BatchResult{Summary: nutrition.BatchSummary{TotalDishes: len(dishes)}}
	for _, d := range dishes {
		res.Results = append(res.Results, nutrition.CalorieInfo{DishName: d})
	}
	return res, nil
}

type fakeNotifier struct {
	got chan string
}

func (f *fakeNotifier) Notify(ctx context.Context, query string, res workflow.Result) error {
	f.got <- query + "|" + res.Response
	return nil
}

func newServer(opts ...server.Option) *server.Server {
	gin.SetMode(gin.TestMode)
	base := []server.Option{
		server.WithCatalog(tools.NewCatalog(storage.NewTestRecipeState([]byte(recipesJSON)))),
		server.WithCalorieLookup(&fakeCalories{}),
	}
	return server.New(newPipeline(), append(base, opts...)...)
}

func do(t *testing.T, s *server.Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	w := do(t, newServer(), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"status": "ok", "service": "cook-assistant"}, decode(t, w))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	w := do(t, newServer(), http.MethodOptions, "/api/chat", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestChat(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{name: "query", body: `{"query":"红烧肉怎么做"}`, wantStatus: http.StatusOK},
		{
			name:       "messages use the last user message",
			body:       `{"messages":[{"role":"user","content":"你好"},{"role":"assistant","content":"您好"},{"role":"user","content":"红烧肉怎么做"}]}`,
			wantStatus: http.StatusOK,
		},
		{name: "empty query", body: `{"query":"   "}`, wantStatus: http.StatusBadRequest, wantError: "query is required"},
		{name: "no user message", body: `{"messages":[{"role":"assistant","content":"您好"}]}`, wantStatus: http.StatusBadRequest, wantError: "query is required"},
		{name: "invalid json", body: `{"query":`, wantStatus: http.StatusBadRequest, wantError: "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, newServer(), http.MethodPost, "/api/chat", tt.body)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantError != "" {
				assert.Contains(t, decode(t, w)["error"], tt.wantError)
				return
			}

			var res workflow.Result
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
			assert.Equal(t, "红烧肉这样做", res.Response)
			assert.Equal(t, []string{"红烧肉"}, res.Metadata.Dishes)
			assert.Equal(t, "红烧肉", res.Metadata.DetailedDish)
			assert.True(t, res.Metadata.HasNutritionInfo)
			assert.Equal(t, workflow.ArchitectureIntegrated, res.Metadata.Architecture)
		})
	}
}

func TestChat_Notifies(t *testing.T) {
	n := &fakeNotifier{got: make(chan string, 1)}
	s := newServer(server.WithNotifier(n))

	w := do(t, s, http.MethodPost, "/api/chat", `{"query":"红烧肉怎么做"}`)
	require.Equal(t, http.StatusOK, w.Code)

	select {
	case got := <-n.got:
		assert.Equal(t, "红烧肉怎么做|红烧肉这样做", got)
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was not called")
	}
}

func TestWorkflowStream(t *testing.T) {
	w := do(t, newServer(), http.MethodPost, "/api/workflow/stream", `{"query":"红烧肉怎么做"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")

	body := w.Body.String()
	assert.Equal(t, 3, strings.Count(body, "event:step-start"))
	assert.Equal(t, 3, strings.Count(body, "event:step-result"))
	assert.Equal(t, 1, strings.Count(body, "event:workflow-finish"))
	for _, step := range workflow.Steps {
		assert.Contains(t, body, fmt.Sprintf(`"step":%q`, step))
	}
	assert.Less(t, strings.Index(body, "event:step-start"), strings.Index(body, "event:workflow-finish"))
	assert.Contains(t, body, "红烧肉这样做")
}

func TestWorkflowStream_EmptyQuery(t *testing.T) {
	w := do(t, newServer(), http.MethodPost, "/api/workflow/stream", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkflowWebSocket(t *testing.T) {
	ts := httptest.NewServer(newServer().Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/workflow/ws?query=" + url.QueryEscape("红烧肉怎么做")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var events []map[string]any
	for {
		var e map[string]any
		err := conn.ReadJSON(&e)
		if err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
			break
		}
		events = append(events, e)
	}

	require.Len(t, events, 7)
	assert.Equal(t, "step-start", events[0]["type"])
	assert.Equal(t, "analyze-and-prepare-content", events[0]["step"])
	assert.Equal(t, "running", events[0]["status"])
	last := events[6]
	assert.Equal(t, "workflow-finish", last["type"])
	output, ok := last["output"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "红烧肉这样做", output["response"])
}

func TestWorkflowWebSocket_MissingQuery(t *testing.T) {
	w := do(t, newServer(), http.MethodGet, "/api/workflow/ws", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecipes(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name:       "all",
			target:     "/api/recipes",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.EqualValues(t, 3, body["total"])
				assert.Len(t, body["recipes"], 3)
			},
		},
		{
			name:       "limited",
			target:     "/api/recipes?limit=1",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.EqualValues(t, 3, body["total"])
				assert.Len(t, body["recipes"], 1)
			},
		},
		{name: "bad limit", target: "/api/recipes?limit=abc", wantStatus: http.StatusBadRequest},
		{name: "negative limit", target: "/api/recipes?limit=-1", wantStatus: http.StatusBadRequest},
		{
			name:       "category",
			target:     "/api/recipes/categories/" + url.PathEscape("荤菜"),
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.EqualValues(t, 2, body["total"])
				assert.Equal(t, "荤菜", body["category"])
			},
		},
		{
			name:       "unknown category",
			target:     "/api/recipes/categories/" + url.PathEscape("甜点"),
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, []any{"荤菜", "素菜"}, body["availableCategories"])
			},
		},
		{
			name:       "search hit",
			target:     "/api/recipes/search?q=" + url.QueryEscape("红烧"),
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				recipe, ok := body["recipe"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "hongshaorou", recipe["id"])
			},
		},
		{name: "search miss", target: "/api/recipes/search?q=" + url.QueryEscape("火星炒饭"), wantStatus: http.StatusNotFound},
		{name: "search without query", target: "/api/recipes/search", wantStatus: http.StatusBadRequest},
	}

	s := newServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodGet, tt.target, "")
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.check != nil {
				tt.check(t, decode(t, w))
			}
		})
	}
}

func TestNotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := server.New(newPipeline())

	for _, target := range []string{"/api/recipes", "/api/recipes/search?q=a", "/api/nutrition?dish=a"} {
		w := do(t, s, http.MethodGet, target, "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, target)
	}
}

func TestNutrition(t *testing.T) {
	calories := &fakeCalories{}
	s := newServer(server.WithCalorieLookup(calories))

	w := do(t, s, http.MethodGet, "/api/nutrition?dish="+url.QueryEscape("红烧肉"), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "红烧肉", decode(t, w)["dish_name"])
	assert.True(t, calories.include)

	w = do(t, s, http.MethodGet, "/api/nutrition?includeNutrition=false&dish="+url.QueryEscape("红烧肉"), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, calories.include)

	w = do(t, s, http.MethodGet, "/api/nutrition", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNutritionBatch(t *testing.T) {
	calories := &fakeCalories{}
	s := newServer(server.WithCalorieLookup(calories))

	w := do(t, s, http.MethodPost, "/api/nutrition/batch", `{"dishes":["红烧肉","番茄炒蛋"],"includeNutrition":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["results"], 2)
	assert.True(t, calories.include)

	calories.err = fmt.Errorf("lookup: %w", nutrition.ErrBatchSize)
	w = do(t, s, http.MethodPost, "/api/nutrition/batch", `{"dishes":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	calories.err = errors.New("boom")
	w = do(t, s, http.MethodPost, "/api/nutrition/batch", `{"dishes":["a"]}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = do(t, s, http.MethodPost, "/api/nutrition/batch", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetrics(t *testing.T) {
	s := newServer()

	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/chat", `{"query":"红烧肉怎么做"}`).Code)

	w := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `cookassist_pipeline_results_total{architecture="agent-integrated"} 1`)
	assert.Contains(t, body, `cookassist_http_request_duration_seconds_count{method="POST",route="/api/chat",status="200"} 1`)
}

func TestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := agent.NewRegistry()
	slow := mock.New(func(ctx context.Context, _ []cookassistant.Message) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	r.Register(workflow.AgentCooking, slow)
	r.Register(workflow.AgentIntegration, slow)
	s := server.New(workflow.New(r), server.WithTimeout(20*time.Millisecond))

	w := do(t, s, http.MethodPost, "/api/chat", `{"query":"红烧肉"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var res workflow.Result
	require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&res))
	assert.Equal(t, workflow.ReplyError, res.Response)
	assert.Equal(t, workflow.ArchitectureError, res.Metadata.Architecture)
}
