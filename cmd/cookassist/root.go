package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cookassistant"
	"cookassistant/setup"
)

var (
	backend string
	debug   bool
)

// newRootCmd wires the cobra tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cookassist",
		Short:         "Conversational cooking assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().StringVar(&backend, "backend", "", "Agent backend: mock, ollama, bedrock or openai (default $AGENT_BACKEND)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Debug logging and dumps")

	root.AddCommand(
		newAskCmd(),
		newServeCmd(),
		newRecipesCmd(),
		newNutritionCmd(),
	)
	return root
}

// loadApp reads configuration for backendName and builds the app.
func loadApp(ctx context.Context, backendName string, logger cookassistant.RunLogger) (*setup.App, setup.Config, error) {
	cfg, err := setup.LoadConfig(backendName)
	if err != nil {
		return nil, setup.Config{}, err
	}
	cfg.RunLogger = logger
	app, err := setup.Build(ctx, cfg)
	if err != nil {
		return nil, setup.Config{}, err
	}
	return app, cfg, nil
}

// newRunLogger opens a run log under ./logs named after the model.
func newRunLogger(model string) (cookassistant.RunLogger, func() error, error) {
	path := cookassistant.NewRunLogFilePath(model)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log dir: %w", err)
	}
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := cookassistant.NewFileRunLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	slog.Info("SETUP: run log", "path", path)
	return logger, cleanup, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
