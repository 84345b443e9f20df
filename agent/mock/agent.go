// Package mock provides a deterministic agent for tests and offline runs.
package mock

import (
	"context"
	"log/slog"
	"sync"

	"cookassistant"
)

// ReplyFunc produces the agent's answer for one call.
type ReplyFunc func(ctx context.Context, messages []cookassistant.Message) (string, error)

// Agent replies through a ReplyFunc or from a fixed script and records every call.
type Agent struct {
	mu     sync.Mutex
	reply  ReplyFunc
	script []string
	calls  [][]cookassistant.Message
}

func New(reply ReplyFunc) *Agent {
	return &Agent{reply: reply}
}

// NewStatic always answers text.
func NewStatic(text string) *Agent {
	return New(func(context.Context, []cookassistant.Message) (string, error) { return text, nil })
}

// NewFailing always fails with err.
func NewFailing(err error) *Agent {
	return New(func(context.Context, []cookassistant.Message) (string, error) { return "", err })
}

// NewScripted answers with replies in order; the last reply repeats once the script runs out.
func NewScripted(replies ...string) *Agent {
	return &Agent{script: replies}
}

func (a *Agent) Generate(ctx context.Context, messages []cookassistant.Message) (string, error) {
	a.mu.Lock()
	n := len(a.calls)
	a.calls = append(a.calls, append([]cookassistant.Message(nil), messages...))
	a.mu.Unlock()

	slog.Debug("LLM_CLIENT: mock invoked", "messages_len", len(messages), "call", n+1)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if a.reply != nil {
		return a.reply(ctx, messages)
	}
	if len(a.script) == 0 {
		return "", nil
	}
	return a.script[min(n, len(a.script)-1)], nil
}

// Calls returns a copy of the messages of every call so far.
func (a *Agent) Calls() [][]cookassistant.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([][]cookassistant.Message, len(a.calls))
	copy(out, a.calls)
	return out
}

func (a *Agent) CallCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

// LastUserMessage returns the content of the last user message of the most recent call.
func (a *Agent) LastUserMessage() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.calls) == 0 {
		return ""
	}
	msgs := a.calls[len(a.calls)-1]
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == cookassistant.RoleUser {
			return msgs[i].Content
		}
	}
	return ""
}
