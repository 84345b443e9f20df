package cookassistant

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// RunLogger records what happened during a pipeline run: one entry per step and one per tool-agent iteration.
type RunLogger interface {
	LogStep(step StepLog) error
}

// NewRunLogFilePath returns a file path based on a cleaned up model name so logs from different models are easy to tell apart.
func NewRunLogFilePath(model string) string {
	return fmt.Sprintf(
		"./logs/%d.%s.json",
		time.Now().Unix(),
		strings.NewReplacer(":", "_", "/", "_").Replace(strings.ToLower(model)),
	)
}

// StepLog is a single recorded step.
type StepLog struct {
	Step      string        `json:"step"`
	Iteration int           `json:"iteration,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Agent     string        `json:"agent,omitempty"`
	Input     string        `json:"input,omitempty"`
	Output    any           `json:"output,omitempty"`
	ToolCalls []ToolCallLog `json:"tool_calls,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// ToolCallLog represents a tool execution within a step
type ToolCallLog struct {
	Name   string         `json:"name"`
	Input  map[string]any `json:"input"`
	Output map[string]any `json:"output,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// FileRunLogger accumulates steps and writes them all on Flush.
type FileRunLogger struct {
	mu     sync.Mutex
	steps  []StepLog
	writer io.Writer
}

func NewFileRunLogger(writer io.Writer) *FileRunLogger {
	return &FileRunLogger{
		steps:  make([]StepLog, 0),
		writer: writer,
	}
}

func (l *FileRunLogger) LogStep(step StepLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, step)
	return nil
}

// Flush writes the accumulated steps as one indented JSON document and clears the buffer.
func (l *FileRunLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"run": map[string]any{
			"timestamp": time.Now(),
			"steps":     l.steps,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write run log: %w", err)
	}

	l.steps = l.steps[:0]
	return nil
}

// NoOpRunLogger discards everything.
type NoOpRunLogger struct{}

func NewNoOpRunLogger() *NoOpRunLogger {
	return &NoOpRunLogger{}
}

func (NoOpRunLogger) LogStep(StepLog) error {
	return nil
}

// StdoutRunLogger writes each step as a JSON line (for Lambda/CloudWatch).
type StdoutRunLogger struct {
	out io.Writer
}

func NewStdoutRunLogger() *StdoutRunLogger {
	return &StdoutRunLogger{out: os.Stdout}
}

func (l *StdoutRunLogger) LogStep(step StepLog) error {
	data, err := json.Marshal(step)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(l.out, string(data))
	return err
}
