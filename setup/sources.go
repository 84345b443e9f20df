package setup

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/oauth2"

	"cookassistant"
	"cookassistant/nutrition"
	"cookassistant/tools"
	"cookassistant/tools/storage"
)

// NewCatalog picks the recipe source: S3 when bucket and key are set, then URL, then local path.
func NewCatalog(cfg cookassistant.AgentConfig, httpClient *http.Client, awsConfig awsConfigFunc) (*tools.Catalog, error) {
	switch {
	case cfg.RecipesS3Bucket != "" && cfg.RecipesS3Key != "":
		awsCfg, err := awsConfig()
		if err != nil {
			return nil, err
		}
		slog.Info("SETUP: recipes from s3", "bucket", cfg.RecipesS3Bucket, "key", cfg.RecipesS3Key)
		return tools.NewCatalog(storage.NewS3RecipeState(s3.NewFromConfig(awsCfg), cfg.RecipesS3Bucket, cfg.RecipesS3Key)), nil
	case cfg.RecipesURL != "":
		slog.Info("SETUP: recipes from url", "url", cfg.RecipesURL)
		return tools.NewCatalog(storage.NewHTTPRecipeState(cfg.RecipesURL, httpClient)), nil
	default:
		slog.Info("SETUP: recipes from file", "path", cfg.RecipesPath)
		return tools.NewCatalog(storage.NewFileRecipeState(cfg.RecipesPath)), nil
	}
}

// NewNutritionService returns a FatSecret-backed service when credentials are configured and an
// estimate-only service otherwise.
func NewNutritionService(ctx context.Context, cfg cookassistant.FatSecretConfig, httpClient *http.Client) *nutrition.Service {
	if !cfg.Enabled() {
		slog.Info("SETUP: fatsecret credentials not set, nutrition uses estimates")
		return nutrition.NewService(nil)
	}

	tokenCtx := context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, httpClient)
	ts := nutrition.NewTokenSource(tokenCtx, nutrition.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scope:        cfg.Scope,
		TokenURL:     cfg.TokenURL,
		BaseURL:      cfg.BaseURL,
		Region:       cfg.Region,
	})
	client := nutrition.NewClient(cfg.BaseURL, cfg.Region, nutrition.NewHTTPClient(tokenCtx, ts))

	slog.Info("SETUP: fatsecret enabled", "base_url", cfg.BaseURL, "region", cfg.Region)
	return nutrition.NewService(client)
}
