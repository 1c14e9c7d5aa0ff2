package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("scenario flag and overrides", func(t *testing.T) {
		var out bytes.Buffer
		config, shouldExit, err := Parse([]string{
			"-scenario", "portfolio.hcl",
			"-simulations", "5000",
			"-confidence", "p95",
			"-workers", "2",
			"-seed", "42",
			"-format", "json",
		}, &out)
		require.NoError(t, err)
		require.False(t, shouldExit)
		require.NotNil(t, config)

		assert.Equal(t, "portfolio.hcl", config.ScenarioPath)
		assert.Equal(t, 5000, config.Simulations)
		assert.Equal(t, "P95", config.Confidence)
		assert.Equal(t, 2, config.Workers)
		assert.Equal(t, uint64(42), config.Seed)
		assert.Equal(t, "json", config.OutputFormat)
	})

	t.Run("positional path", func(t *testing.T) {
		var out bytes.Buffer
		config, shouldExit, err := Parse([]string{"scenarios/"}, &out)
		require.NoError(t, err)
		require.False(t, shouldExit)
		assert.Equal(t, "scenarios/", config.ScenarioPath)
	})

	t.Run("shorthand flag", func(t *testing.T) {
		var out bytes.Buffer
		config, _, err := Parse([]string{"-s", "portfolio.hcl"}, &out)
		require.NoError(t, err)
		assert.Equal(t, "portfolio.hcl", config.ScenarioPath)
	})

	t.Run("defaults", func(t *testing.T) {
		var out bytes.Buffer
		config, _, err := Parse([]string{"portfolio.hcl"}, &out)
		require.NoError(t, err)
		assert.Zero(t, config.Simulations)
		assert.Empty(t, config.Confidence)
		assert.Equal(t, "text", config.OutputFormat)
		assert.Equal(t, "json", config.LogFormat)
		assert.Equal(t, "info", config.LogLevel)
	})

	t.Run("no path prints usage and exits cleanly", func(t *testing.T) {
		var out bytes.Buffer
		config, shouldExit, err := Parse(nil, &out)
		require.NoError(t, err)
		assert.True(t, shouldExit)
		assert.Nil(t, config)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("invalid confidence", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-confidence", "P99", "portfolio.hcl"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("invalid format", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-format", "yaml", "portfolio.hcl"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("invalid log level", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-log-level", "trace", "portfolio.hcl"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})
}
