package nutrition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ErrNoMatch is returned by Search when autocomplete has no suggestion for the dish.
var ErrNoMatch = errors.New("no matching food")

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the FatSecret Platform REST API. The http client is expected to add authorization.
type Client struct {
	baseURL    string
	region     string
	httpClient doer
}

func NewClient(baseURL, region string, httpClient doer) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		region:     region,
		httpClient: httpClient,
	}
}

// Autocomplete returns up to maxResults food name suggestions for expression.
func (c *Client) Autocomplete(ctx context.Context, expression string, maxResults int) ([]Suggestion, error) {
	params := url.Values{
		"expression":  {expression},
		"max_results": {strconv.Itoa(maxResults)},
		"format":      {"json"},
	}
	if c.region != "" {
		params.Set("region", c.region)
	}

	var body struct {
		Suggestions struct {
			Suggestion json.RawMessage `json:"suggestion"`
		} `json:"suggestions"`
	}
	if err := c.get(ctx, "/food/autocomplete/v2", params, &body); err != nil {
		return nil, fmt.Errorf("autocomplete: %w", err)
	}

	var out []Suggestion
	for _, raw := range oneOrMany(body.Suggestions.Suggestion) {
		var name string
		if err := json.Unmarshal(raw, &name); err == nil {
			out = append(out, Suggestion{FoodName: name})
			continue
		}
		var s struct {
			FoodName string          `json:"food_name"`
			FoodID   json.RawMessage `json:"food_id"`
		}
		if err := json.Unmarshal(raw, &s); err != nil || s.FoodName == "" {
			continue
		}
		out = append(out, Suggestion{FoodName: s.FoodName, FoodID: strings.Trim(string(s.FoodID), `"`)})
	}
	return out, nil
}

// Food returns the facts of the first serving listed for foodID.
func (c *Client) Food(ctx context.Context, foodID string) (Facts, error) {
	var body struct {
		Food struct {
			Servings struct {
				Serving json.RawMessage `json:"serving"`
			} `json:"servings"`
		} `json:"food"`
	}
	params := url.Values{"food_id": {foodID}, "format": {"json"}}
	if err := c.get(ctx, "/food/v2", params, &body); err != nil {
		return Facts{}, fmt.Errorf("food %s: %w", foodID, err)
	}

	servings := oneOrMany(body.Food.Servings.Serving)
	if len(servings) == 0 {
		return Facts{}, fmt.Errorf("food %s: no servings", foodID)
	}
	var w wireServing
	if err := json.Unmarshal(servings[0], &w); err != nil {
		return Facts{}, fmt.Errorf("food %s: decode serving: %w", foodID, err)
	}
	return w.facts(), nil
}

// Search takes the best autocomplete suggestion for dish and resolves its nutrition.
// When the suggestion carries no food id, or its facts cannot be fetched, the facts are estimated from the matched name.
func (c *Client) Search(ctx context.Context, dish string) (*Match, error) {
	suggestions, err := c.Autocomplete(ctx, dish, 1)
	if err != nil {
		return nil, err
	}
	if len(suggestions) == 0 {
		return nil, ErrNoMatch
	}

	best := suggestions[0]
	m := &Match{
		MatchedFood: best.FoodName,
		Confidence:  MatchConfidence(dish, best.FoodName),
	}

	if best.FoodID != "" {
		facts, err := c.Food(ctx, best.FoodID)
		if err == nil {
			m.Facts = facts
			return m, nil
		}
		slog.Warn("FATSECRET: food lookup failed, estimating", "food_id", best.FoodID, "error", err)
	}

	m.Facts = Estimate(best.FoodName)
	m.Estimated = true
	return m, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("FATSECRET: %s: %s", resp.Status, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("FATSECRET: decode: %w", err)
	}
	return nil
}
