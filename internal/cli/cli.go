// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates CLI flags into the application's internal configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/portfoliosim/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("portfoliosim", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
PortfolioSim - Monte Carlo delivery forecasting for dependent project portfolios.

Usage:
  portfoliosim [options] [SCENARIO_PATH]

Arguments:
  SCENARIO_PATH
    Path to a single .hcl scenario file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	scenarioFlag := flagSet.String("scenario", "", "Path to the scenario file or directory.")
	sFlag := flagSet.String("s", "", "Path to the scenario file or directory (shorthand).")
	simulationsFlag := flagSet.Int("simulations", 0, "Number of Monte Carlo trials. 0 uses the scenario or the default.")
	confidenceFlag := flagSet.String("confidence", "", "Headline confidence level. Options: 'P50', 'P85' or 'P95'.")
	workersFlag := flagSet.Int("workers", 0, "Number of concurrent simulation workers. 0 uses the default.")
	seedFlag := flagSet.Uint64("seed", 0, "Seed for deterministic runs. 0 seeds from the clock.")
	legacyFlag := flagSet.Bool("legacy-probability", false, "Use the uniform 50/50 on-time model for every dependency.")
	formatFlag := flagSet.String("format", "text", "Report output format. Options: 'text' or 'json'.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *scenarioFlag != "" {
		path = *scenarioFlag
	} else if *sFlag != "" {
		path = *sFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Scenario path determined.", "path", path)

	if path == "" {
		slog.Debug("No scenario path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	confidence := strings.ToUpper(*confidenceFlag)
	switch confidence {
	case "", "P50", "P85", "P95":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid confidence: must be 'P50', 'P85' or 'P95'"}
	}

	format := strings.ToLower(*formatFlag)
	if format != "text" && format != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid format: must be 'text' or 'json'"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ScenarioPath:           path,
		Simulations:            *simulationsFlag,
		Confidence:             confidence,
		Workers:                *workersFlag,
		Seed:                   *seedFlag,
		LegacyProbabilityModel: *legacyFlag,
		OutputFormat:           format,
		LogFormat:              logFormat,
		LogLevel:               logLevel,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
