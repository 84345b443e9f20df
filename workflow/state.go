// Package workflow runs a cooking query through three agent-backed steps: analyze the query and
// prepare cooking content, fetch nutrition for the one dish that gets detailed, and integrate
// both into the final reply. Every step recovers its own failures, so a run always produces a Result.
package workflow

type QueryType string

const (
	QuerySingle      QueryType = "single"
	QueryCombination QueryType = "combination"
)

// Agent names looked up through the injected AgentProvider.
const (
	AgentCooking     = "cooking_process"
	AgentNutrition   = "nutrition_query"
	AgentIntegration = "response_integration"
)

// Raw cooking text recorded when the analyzer could not reach its agent.
const (
	CookingAgentUnavailable = "AGENT_UNAVAILABLE"
	CookingAgentError       = "AGENT_ERROR"
)

const (
	ArchitectureIntegrated  = "agent-integrated"
	ArchitectureUnavailable = "agent-unavailable"
	ArchitectureError       = "agent-error"
)

// State is threaded through the steps by value. Each step returns a copy with its own fields set
// and never touches fields owned by an earlier step.
type State struct {
	OriginalQuery    string    `json:"originalQuery"`
	QueryType        QueryType `json:"queryType"`
	IdentifiedDishes []string  `json:"identifiedDishes"`
	// DetailedDish is empty when no dish was elected for detail.
	DetailedDish   string   `json:"detailedDish,omitempty"`
	HasAnyRecipe   bool     `json:"hasAnyRecipe"`
	CookingInfoRaw string   `json:"cookingInfoRaw,omitempty"`
	ApproxMethod   string   `json:"approxMethod,omitempty"`
	Candidates     []string `json:"candidates,omitempty"`

	HasNutritionInfo bool   `json:"hasNutritionInfo"`
	NutritionInfo    string `json:"nutritionInfo,omitempty"`
}

type Metadata struct {
	Dishes           []string  `json:"dishes"`
	QueryType        QueryType `json:"queryType"`
	DetailedDish     string    `json:"detailedDish"`
	HasAnyRecipe     bool      `json:"hasAnyRecipe"`
	HasNutritionInfo bool      `json:"hasNutritionInfo"`
	Architecture     string    `json:"architecture"`
}

type Result struct {
	Response string   `json:"response"`
	Metadata Metadata `json:"metadata"`
}

func (s State) metadata(architecture string) Metadata {
	dishes := s.IdentifiedDishes
	if dishes == nil {
		dishes = []string{}
	}
	queryType := s.QueryType
	if queryType == "" {
		queryType = QuerySingle
	}
	return Metadata{
		Dishes:           dishes,
		QueryType:        queryType,
		DetailedDish:     s.DetailedDish,
		HasAnyRecipe:     s.HasAnyRecipe,
		HasNutritionInfo: s.HasNutritionInfo,
		Architecture:     architecture,
	}
}
