// Package app wires the scenario loader, the forecasting engine and the
// report renderers into one runnable application with an isolated logger.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/portfoliosim/internal/ctxlog"
	"github.com/vk/portfoliosim/internal/forecast"
	"github.com/vk/portfoliosim/internal/model"
	"github.com/vk/portfoliosim/internal/scenario"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	portfolio *model.Portfolio
	settings  scenario.Settings
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and the scenario
// already loaded. Logs go to errW so a JSON report on outW stays parseable.
func NewApp(outW, errW io.Writer, config *Config) (*App, error) {
	logger := newLogger(config.LogLevel, config.LogFormat, errW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	portfolio, settings, err := scenario.Load(ctx, config.ScenarioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}
	logger.Debug("Scenario loaded.",
		"projects", len(portfolio.Projects), "dependencies", len(portfolio.Dependencies))

	return &App{
		outW:      outW,
		logger:    logger,
		config:    config,
		portfolio: portfolio,
		settings:  settings,
	}, nil
}

// Portfolio returns the loaded portfolio. This is primarily for testing.
func (a *App) Portfolio() *model.Portfolio {
	return a.portfolio
}

// Run executes the forecast and writes the report in the configured format.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	opts := a.options()
	a.logger.Info("Starting portfolio forecast.",
		"simulations", opts.Simulations, "confidence", opts.Confidence, "workers", opts.Workers)

	report, err := forecast.Simulate(ctx, a.portfolio, opts)
	if err != nil {
		return fmt.Errorf("forecast failed: %w", err)
	}
	for _, warning := range report.Warnings {
		a.logger.Warn(warning)
	}

	switch a.config.OutputFormat {
	case "json":
		err = renderJSON(a.outW, report)
	default:
		err = renderText(a.outW, report)
	}
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	a.logger.Debug("App.Run finished successfully.")
	return nil
}

// options merges the scenario's simulation block with the CLI flags. A flag
// explicitly set on the command line wins over the scenario value.
func (a *App) options() forecast.Options {
	opts := forecast.Options{
		Simulations:            a.settings.Simulations,
		Confidence:             a.settings.Confidence,
		Seed:                   a.settings.Seed,
		Workers:                a.settings.Workers,
		LegacyProbabilityModel: a.settings.LegacyProbabilityModel,
	}

	if a.config.Simulations != 0 {
		opts.Simulations = a.config.Simulations
	}
	if a.config.Confidence != "" {
		opts.Confidence = a.config.Confidence
	}
	if a.config.Seed != 0 {
		opts.Seed = a.config.Seed
	}
	if a.config.Workers != 0 {
		opts.Workers = a.config.Workers
	}
	if a.config.LegacyProbabilityModel {
		opts.LegacyProbabilityModel = true
	}

	return opts
}
