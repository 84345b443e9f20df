package cookassistant

import "time"

type ModelConfig struct {
	ModelID     string  `env:"MODEL_ID,required"`
	MaxTokens   int32   `env:"MAX_TOKENS,default=1024"`
	Temperature float32 `env:"TEMPERATURE,default=0.2"`
	TopP        float32 `env:"TOP_P,default=0.9"`
}

// AgentConfig selects the agent backend and where the recipe catalog comes from.
// Catalog sources are tried in order: S3, URL, local path.
type AgentConfig struct {
	Backend            string `env:"AGENT_BACKEND,default=ollama"`
	RecipesPath        string `env:"RECIPES_PATH,default=artifacts/recipes.json"`
	RecipesURL         string `env:"RECIPES_URL"`
	RecipesS3Bucket    string `env:"RECIPES_S3_BUCKET"`
	RecipesS3Key       string `env:"RECIPES_S3_KEY"`
	BaseOllamaEndpoint string `env:"BASE_OLLAMA_ENDPOINT,default=http://localhost:11434"`
	OpenAIBaseURL      string `env:"OPENAI_BASE_URL"`
	OpenAIAPIKey       string `env:"OPENAI_API_KEY"`
	MaxIterations      int    `env:"MAX_ITERATIONS,default=6"`
}

type ServerConfig struct {
	Addr            string        `env:"ADDR,default=:8080"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT,default=30s"`
	SlackWebhookURL string        `env:"SLACK_WEBHOOK_URL"`
	SlackChannel    string        `env:"SLACK_CHANNEL,default=#cooking"`
}

type FatSecretConfig struct {
	ClientID     string `env:"FATSECRET_CLIENT_ID"`
	ClientSecret string `env:"FATSECRET_CLIENT_SECRET"`
	Scope        string `env:"FATSECRET_SCOPE,default=premier"`
	TokenURL     string `env:"FATSECRET_TOKEN_URL,default=https://oauth.fatsecret.com/connect/token"`
	BaseURL      string `env:"FATSECRET_BASE_URL,default=https://platform.fatsecret.com/rest"`
	Region       string `env:"FATSECRET_REGION,default=CN"`
}

// Enabled reports whether credentials are present. Without them nutrition lookups fall back to estimates.
func (c FatSecretConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}
