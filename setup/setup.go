// Package setup builds the agents, recipe catalog and nutrition service from configuration.
package setup

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/joeshaw/envdecode"

	"cookassistant"
	"cookassistant/agent"
	"cookassistant/nutrition"
	"cookassistant/tools"
	"cookassistant/workflow"
)

const (
	BackendMock    = "mock"
	BackendOllama  = "ollama"
	BackendBedrock = "bedrock"
	BackendOpenAI  = "openai"
)

// Config is everything Build needs. Model is only read for backends that talk to a model.
type Config struct {
	Backend   string
	Model     cookassistant.ModelConfig
	Agent     cookassistant.AgentConfig
	FatSecret cookassistant.FatSecretConfig
	RunLogger cookassistant.RunLogger
	// HTTPClient is used for Ollama, catalog URLs and FatSecret. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// LoadConfig reads configuration from the environment. A non-empty backend overrides AGENT_BACKEND.
func LoadConfig(backend string) (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg.Agent); err != nil {
		return Config{}, fmt.Errorf("decode agent config: %w", err)
	}
	if err := envdecode.Decode(&cfg.FatSecret); err != nil {
		return Config{}, fmt.Errorf("decode fatsecret config: %w", err)
	}

	cfg.Backend = cfg.Agent.Backend
	if backend != "" {
		cfg.Backend = backend
	}
	if cfg.Backend != BackendMock {
		if err := envdecode.Decode(&cfg.Model); err != nil {
			return Config{}, fmt.Errorf("decode model config: %w", err)
		}
	}
	return cfg, nil
}

// App holds the long-lived components shared by the CLI, the server and the Lambda handler.
type App struct {
	Agents    *agent.Registry
	Catalog   *tools.Catalog
	Nutrition *nutrition.Service
}

// Pipeline returns a pipeline over the app's agents.
func (a *App) Pipeline(opts ...workflow.Option) *workflow.Pipeline {
	return workflow.New(a.Agents, opts...)
}

// Build wires the catalog, the nutrition service and the three pipeline agents.
func Build(ctx context.Context, cfg Config) (*App, error) {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.RunLogger == nil {
		cfg.RunLogger = cookassistant.NewNoOpRunLogger()
	}
	awsConfig := awsLoader(ctx)

	catalog, err := NewCatalog(cfg.Agent, cfg.HTTPClient, awsConfig)
	if err != nil {
		return nil, err
	}
	svc := NewNutritionService(ctx, cfg.FatSecret, cfg.HTTPClient)

	agents, err := NewAgents(ctx, cfg, catalog, svc, awsConfig)
	if err != nil {
		return nil, err
	}

	slog.Info("SETUP: components ready", "backend", cfg.Backend, "agents", agents.Names())
	return &App{Agents: agents, Catalog: catalog, Nutrition: svc}, nil
}

type awsConfigFunc func() (aws.Config, error)

// awsLoader loads the default AWS configuration at most once, on first use.
func awsLoader(ctx context.Context) awsConfigFunc {
	return sync.OnceValues(func() (aws.Config, error) {
		cfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
		if err != nil {
			return aws.Config{}, fmt.Errorf("load aws config: %w", err)
		}
		slog.Info("SETUP: aws config loaded", "region", cfg.Region)
		return cfg, nil
	})
}
