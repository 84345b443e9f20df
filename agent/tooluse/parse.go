package tooluse

import (
	"encoding/json"
	"strings"

	"cookassistant/tools"
)

// ParseModelOutput separates tool calls embedded in model text from the rest of the content.
// Every balanced top-level JSON object is checked for a non-empty "tool_calls" array; objects that
// are not tool calls, and any unbalanced tail, stay in the content.
func ParseModelOutput(text string) (string, []tools.Call) {
	s := strings.TrimSpace(text)
	if s == "" {
		return "", nil
	}

	var content strings.Builder
	var calls []tools.Call

	i := 0
	for i < len(s) {
		start := strings.IndexByte(s[i:], '{')
		if start == -1 {
			content.WriteString(s[i:])
			break
		}
		start += i
		content.WriteString(s[i:start])

		end, ok := matchBrace(s, start)
		if !ok {
			content.WriteString(s[start:])
			break
		}

		obj := s[start : end+1]
		var envelope struct {
			ToolCalls []tools.Call `json:"tool_calls"`
		}
		if err := json.Unmarshal([]byte(obj), &envelope); err == nil && len(envelope.ToolCalls) > 0 {
			for _, tc := range envelope.ToolCalls {
				if tc.Name == "" {
					continue
				}
				if tc.Input == nil {
					tc.Input = map[string]any{}
				}
				calls = append(calls, tools.Call{Name: tc.Name, Input: tc.Input})
			}
		} else {
			content.WriteString(obj)
		}
		i = end + 1
	}

	return strings.TrimSpace(content.String()), calls
}

// matchBrace returns the index of the brace closing the object opened at start.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for end := start; end < len(s); end++ {
		c := s[end]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return end, true
			}
		}
	}
	return 0, false
}
