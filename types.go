package cookassistant

import (
	"context"
	"net/http"

	"cookassistant/tools"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a role-tagged chat message exchanged with an agent.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Agent is a language-model backed capability that turns messages into free text.
type Agent interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

// AgentProvider resolves agents by name. A false second return means the agent is not registered.
type AgentProvider interface {
	GetAgent(name string) (Agent, bool)
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type SlackClient interface {
	PostMessage(ctx context.Context, channel string, message string) error
}

type ToolProvider interface {
	GetTools() []tools.Tool
	GetTool(name string) (tools.Tool, error)
}
