// Package agent holds the named set of agents the cooking workflow talks to.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"cookassistant"
)

var ErrAgentNotFound = errors.New("agent not found")

// Registry maps agent names to agents. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]cookassistant.Agent
}

func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]cookassistant.Agent)}
}

// Register adds or replaces the agent under name. A nil agent removes it.
func (r *Registry) Register(name string, a cookassistant.Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a == nil {
		delete(r.agents, name)
		return
	}
	r.agents[name] = a
}

// GetAgent implements cookassistant.AgentProvider.
func (r *Registry) GetAgent(name string) (cookassistant.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[name]
	return a, ok
}

// Names returns the registered agent names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Require reports every name in names that has no agent.
func (r *Registry) Require(names ...string) error {
	var errs []error
	for _, name := range names {
		if _, ok := r.GetAgent(name); !ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrAgentNotFound, name))
		}
	}
	return errors.Join(errs...)
}

type instructed struct {
	inner        cookassistant.Agent
	instructions string
}

// WithInstructions returns an agent that sends instructions as a leading system message on every call.
func WithInstructions(a cookassistant.Agent, instructions string) cookassistant.Agent {
	return &instructed{inner: a, instructions: instructions}
}

func (a *instructed) Generate(ctx context.Context, messages []cookassistant.Message) (string, error) {
	msgs := make([]cookassistant.Message, 0, len(messages)+1)
	msgs = append(msgs, cookassistant.Message{Role: cookassistant.RoleSystem, Content: a.instructions})
	msgs = append(msgs, messages...)
	return a.inner.Generate(ctx, msgs)
}
