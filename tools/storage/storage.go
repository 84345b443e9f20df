package storage

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrNotFound is returned by the in-memory state when it was built without data.
var ErrNotFound = errors.New("not found")

// RecipeState loads the raw recipe catalog document.
type RecipeState interface {
	Load(ctx context.Context) ([]byte, error)
}

// TestRecipeState is a simple in-memory implementation for testing
type TestRecipeState struct {
	data  []byte
	err   error
	loads atomic.Int32
}

func NewTestRecipeState(data []byte) *TestRecipeState {
	return &TestRecipeState{data: data}
}

func NewTestRecipeStateWithError() *TestRecipeState {
	return &TestRecipeState{err: ErrNotFound}
}

func (t *TestRecipeState) Load(ctx context.Context) ([]byte, error) {
	t.loads.Add(1)
	if t.err != nil {
		return nil, t.err
	}
	return t.data, nil
}

// Loads reports how many times Load was called.
func (t *TestRecipeState) Loads() int {
	return int(t.loads.Load())
}
