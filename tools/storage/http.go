package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPRecipeState fetches the catalog document from a URL on every Load.
// Wrap it in a catalog to avoid refetching.
type HTTPRecipeState struct {
	url        string
	httpClient doer
}

func NewHTTPRecipeState(url string, httpClient doer) *HTTPRecipeState {
	return &HTTPRecipeState{url: url, httpClient: httpClient}
}

func (h *HTTPRecipeState) Load(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch recipes: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read recipes body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch recipes: %s", resp.Status)
	}
	return body, nil
}
