package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 14, cfg.Engine.RSIPeriod)
	assert.Equal(t, 12, cfg.Engine.MACDFast)
	assert.Equal(t, 26, cfg.Engine.MACDSlow)
	assert.Equal(t, 20, cfg.Engine.BollingerPeriod)
	assert.Equal(t, 0.002, cfg.Synthesis.CryptoEpsilon)
	assert.Equal(t, 0.0002, cfg.Synthesis.ForexEpsilon)
	assert.Equal(t, 10, cfg.Cache.AnalysisTTLMinutes)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.DataSource.StreamSymbols)
}

func TestLoadFillsDefaults(t *testing.T) {
	path := writeConfig(t, `
api:
  port: 9090
engine:
  rsi_period: 21
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, 21, cfg.Engine.RSIPeriod)
	// untouched fields fall back to defaults
	assert.Equal(t, 26, cfg.Engine.MACDSlow)
	assert.Equal(t, 500, cfg.Storage.MaxQuotesInMemory)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "api: [not a map")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsBadPort(t *testing.T) {
	path := writeConfig(t, `
api:
  port: 70000
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "port")
}

func TestValidateRejectsInvertedMACD(t *testing.T) {
	path := writeConfig(t, `
engine:
  macd_fast: 26
  macd_slow: 12
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "macd_fast")
}

func TestValidateRejectsInvertedRegressionWindow(t *testing.T) {
	path := writeConfig(t, `
engine:
  regression_window: 60
  regression_depth: 50
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "regression_window")
}

func TestValidateRejectsEpsilonOutOfRange(t *testing.T) {
	path := writeConfig(t, `
synthesis:
  crypto_epsilon: 0.5
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "crypto_epsilon")
}
