package workflow

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode"
)

// The analysis JSON line must appear within this many leading lines.
const maxJSONScanLines = 5

var (
	candidatesSection = regexp.MustCompile(`(?i)##\s*CANDIDATES[\r\n]+([^\n#]+)`)
	approxHeader      = regexp.MustCompile(`(?i)##\s*APPROX_METHOD[\r\n]+`)
	nextHeader        = regexp.MustCompile(`(?i)\n##\s*[A-Z_ ]+`)
	listMarker        = regexp.MustCompile(`(?m)^\s*(?:[-*]|\d+\.)\s*`)
)

// Analysis is what the cooking agent's free text says about the query.
type Analysis struct {
	QueryType    QueryType
	Dishes       []string
	Detailed     string
	Candidates   []string
	ApproxMethod string
	// JSONFound reports whether a analysis line was found; when false the defaults above apply.
	JSONFound bool
}

// ParseAnalyzerOutput extracts the analysis from the cooking agent's reply. The reply is expected
// to open with a line like {"type":"single","dishes":["红烧肉"],"detailed":null}, optionally
// followed by "## CANDIDATES" (one line of names separated by |) and, when nothing matched,
// "## APPROX_METHOD" (free text up to the next ## header). Anything missing or malformed falls
// back to a single query with no dishes.
func ParseAnalyzerOutput(text string) Analysis {
	a := Analysis{
		QueryType:  QuerySingle,
		Dishes:     []string{},
		Candidates: []string{},
	}

	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines) && i < maxJSONScanLines; i++ {
		line := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[i]), "\ufeff"))
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		if !strings.HasPrefix(line, "{") || !strings.Contains(line, `"type"`) {
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal([]byte(line), &obj); err != nil || obj == nil {
			continue
		}

		if dishes, ok := obj["dishes"].([]any); ok {
			for _, d := range dishes {
				if s, _ := d.(string); s != "" {
					a.Dishes = append(a.Dishes, s)
				}
			}
		}
		if t, _ := obj["type"].(string); t == string(QuerySingle) || t == string(QueryCombination) {
			a.QueryType = QueryType(t)
		}
		if d, _ := obj["detailed"].(string); d != "" {
			a.Detailed = d
		}
		a.JSONFound = true
		break
	}

	a.Candidates = parseCandidates(text)
	if len(a.Dishes) == 0 {
		a.ApproxMethod = parseApproxMethod(text)
	}
	return a
}

func parseCandidates(text string) []string {
	out := []string{}
	m := candidatesSection.FindStringSubmatch(text)
	if m == nil {
		return out
	}
	for _, name := range strings.Split(m[1], "|") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// parseApproxMethod returns the APPROX_METHOD section body with list markers stripped.
// The body ends at the next "##" header line or at trailing whitespace.
func parseApproxMethod(text string) string {
	loc := approxHeader.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	rest := text[loc[1]:]

	end := len(strings.TrimRightFunc(rest, unicode.IsSpace))
	if m := nextHeader.FindStringIndex(rest); m != nil && m[0] < end {
		end = m[0]
	}

	return strings.TrimSpace(listMarker.ReplaceAllString(rest[:end], ""))
}
