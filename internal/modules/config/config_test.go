package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scalper_bot/internal/models"
	"scalper_bot/internal/strategy"
)

const validYAML = `
symbols: [EURUSD, GBPUSD]
broker:
  base_url: http://bridge
  api_key: k
  api_secret: s
strategy:
  interval: 15s
  stoch_window: narrow
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "values.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"EURUSD", "GBPUSD"}, cfg.Symbols)
	assert.Equal(t, 15*time.Second, cfg.Strategy.Interval)
	assert.Equal(t, time.Second, cfg.Strategy.PollInterval)
	assert.Equal(t, 1000, cfg.Strategy.RegionWindow)
	assert.Equal(t, 0.8, cfg.Strategy.MarginRatio)

	rc := cfg.RunnerConfig()
	assert.Equal(t, 15*time.Second, rc.Interval)
	assert.Equal(t, 10.0, rc.RegionK)
	assert.Equal(t, strategy.StochWindowNarrow, cfg.StrategyConfig().StochWindow)
	assert.Equal(t, "http://bridge", cfg.ExchangeConfig().BaseURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(symbolsENV, "xauusd, usdjpy")
	t.Setenv(brokerSecretENV, "from-env")
	t.Setenv(chatTelegramENV, "42")
	t.Setenv("STRATEGY_INTERVAL", "1m")

	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"XAUUSD", "USDJPY"}, cfg.Symbols)
	assert.Equal(t, "from-env", cfg.Broker.APISecret)
	assert.Equal(t, int64(42), cfg.Telegram.ChatID)
	assert.Equal(t, time.Minute, cfg.Strategy.Interval)
}

func TestLoad_ConfigurationErrors(t *testing.T) {
	cases := map[string]string{
		"no symbols": `
broker: {base_url: http://bridge, api_key: k, api_secret: s}`,
		"no credentials": `
symbols: [EURUSD]
broker: {base_url: http://bridge}`,
		"bad ratio": validYAML + `  margin_ratio: 1.5
`,
		"bad window": validYAML + `  region_window: 1
`,
		"zero tf threshold": validYAML + `  tf_threshold: 0
`,
		"negative natr threshold": validYAML + `  natr_threshold: -0.1
`,
		"unknown stoch window": `
symbols: [EURUSD]
broker: {base_url: http://bridge, api_key: k, api_secret: s}
strategy: {stoch_window: wide}`,
		"broken yaml": "symbols: [EURUSD",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrConfiguration)
			assert.True(t, models.IsFatal(err))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	var cfgErr *models.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "file", cfgErr.Field)
}
