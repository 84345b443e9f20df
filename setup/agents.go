package setup

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"cookassistant"
	"cookassistant/agent"
	"cookassistant/agent/bedrock"
	"cookassistant/agent/ollama"
	"cookassistant/agent/openai"
	"cookassistant/agent/tooluse"
	"cookassistant/nutrition"
	"cookassistant/tools"
	"cookassistant/workflow"
)

// NewAgents registers the cooking, nutrition and integration agents. Model backends share one
// text agent; the cooking and nutrition agents get their tools through a tool loop.
func NewAgents(ctx context.Context, cfg Config, catalog *tools.Catalog, svc *nutrition.Service, awsConfig awsConfigFunc) (*agent.Registry, error) {
	registry := agent.NewRegistry()

	if cfg.Backend == BackendMock {
		registry.Register(workflow.AgentCooking, OfflineCookingAgent(catalog))
		registry.Register(workflow.AgentNutrition, OfflineNutritionAgent(svc))
		registry.Register(workflow.AgentIntegration, OfflineIntegrationAgent())
	} else {
		inner, err := NewTextAgent(ctx, cfg, awsConfig)
		if err != nil {
			return nil, err
		}

		cookingTools := tools.NewRegistry(
			tools.NewGetAllRecipes(catalog),
			tools.NewGetRecipesByCategory(catalog),
			tools.NewGetRecipeByID(catalog),
			tools.NewWhatToEat(catalog),
			tools.NewRecommendMeals(catalog),
		)
		nutritionTools := tools.NewRegistry(
			tools.NewGetCalorieInfo(svc),
			tools.NewGetMultipleCalories(svc),
		)
		loopOpts := func(name string) []tooluse.Option {
			return []tooluse.Option{
				tooluse.WithName(name),
				tooluse.WithMaxIterations(cfg.Agent.MaxIterations),
				tooluse.WithRunLogger(cfg.RunLogger),
			}
		}

		registry.Register(workflow.AgentCooking, agent.WithInstructions(
			tooluse.New(inner, cookingTools, loopOpts(workflow.AgentCooking)...),
			workflow.CookingInstructions,
		))
		registry.Register(workflow.AgentNutrition, agent.WithInstructions(
			tooluse.New(inner, nutritionTools, loopOpts(workflow.AgentNutrition)...),
			workflow.NutritionInstructions,
		))
		registry.Register(workflow.AgentIntegration, agent.WithInstructions(inner, workflow.IntegrationInstructions))
	}

	if err := registry.Require(workflow.AgentCooking, workflow.AgentNutrition, workflow.AgentIntegration); err != nil {
		return nil, err
	}
	return registry, nil
}

// NewTextAgent builds the model client for cfg.Backend.
func NewTextAgent(ctx context.Context, cfg Config, awsConfig awsConfigFunc) (cookassistant.Agent, error) {
	switch cfg.Backend {
	case BackendOllama:
		client, err := ollama.NewClient(ollama.ClientOpts{
			BaseEndpoint: cfg.Agent.BaseOllamaEndpoint,
			ModelID:      cfg.Model.ModelID,
			HTTPClient:   cfg.HTTPClient,
		})
		if err != nil {
			return nil, fmt.Errorf("ollama client: %w", err)
		}
		return client, nil
	case BackendBedrock:
		awsCfg, err := awsConfig()
		if err != nil {
			return nil, err
		}
		return bedrock.NewClient(bedrockruntime.NewFromConfig(awsCfg), bedrock.Options{
			ModelID:     cfg.Model.ModelID,
			MaxTokens:   cfg.Model.MaxTokens,
			Temperature: cfg.Model.Temperature,
			TopP:        cfg.Model.TopP,
		}), nil
	case BackendOpenAI:
		client, err := openai.New(openai.Options{
			BaseURL:     cfg.Agent.OpenAIBaseURL,
			APIKey:      cfg.Agent.OpenAIAPIKey,
			ModelID:     cfg.Model.ModelID,
			MaxTokens:   int(cfg.Model.MaxTokens),
			Temperature: float64(cfg.Model.Temperature),
		})
		if err != nil {
			return nil, fmt.Errorf("openai client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown agent backend %q (want %s, %s, %s or %s)", cfg.Backend, BackendMock, BackendOllama, BackendBedrock, BackendOpenAI)
	}
}
