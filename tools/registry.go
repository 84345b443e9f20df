package tools

import (
	"errors"
	"fmt"
	"sort"
)

var ErrToolNotFound = errors.New("tool not found")

// Registry maps tool names to implementations
type Registry map[string]Tool

// NewRegistry creates a registry holding the given tools, keyed by Name.
func NewRegistry(tools ...Tool) *Registry {
	registry := Registry(make(map[string]Tool, len(tools)))
	for _, t := range tools {
		registry[t.Name()] = t
	}
	return &registry
}

// GetTools returns all tools in the registry sorted by name
func (r *Registry) GetTools() []Tool {
	tools := make([]Tool, 0, len(*r))
	for _, tool := range *r {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// GetTool retrieves a tool by name from the registry
func (r Registry) GetTool(name string) (Tool, error) {
	tool, exists := r[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}
	return tool, nil
}
