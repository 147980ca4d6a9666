package config

import (
	"fmt"
	"os"

	"market-advisor/pkg/types"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from file
func Load(filename string) (types.Config, error) {
	var config types.Config

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse config: %w", err)
	}

	setDefaults(&config)

	if err := validate(config); err != nil {
		return config, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// Default returns the configuration with every field at its default,
// used when no config file is present.
func Default() types.Config {
	var config types.Config
	setDefaults(&config)
	return config
}

// setDefaults sets default values for missing config fields
func setDefaults(config *types.Config) {
	// Engine defaults: classic periods
	if config.Engine.RSIPeriod == 0 {
		config.Engine.RSIPeriod = 14
	}
	if config.Engine.MACDFast == 0 {
		config.Engine.MACDFast = 12
	}
	if config.Engine.MACDSlow == 0 {
		config.Engine.MACDSlow = 26
	}
	if config.Engine.MACDSignal == 0 {
		config.Engine.MACDSignal = 9
	}
	if config.Engine.BollingerPeriod == 0 {
		config.Engine.BollingerPeriod = 20
	}
	if config.Engine.BollingerStdDev == 0 {
		config.Engine.BollingerStdDev = 2.0
	}
	if config.Engine.StochasticK == 0 {
		config.Engine.StochasticK = 14
	}
	if config.Engine.StochasticD == 0 {
		config.Engine.StochasticD = 3
	}
	if config.Engine.ATRPeriod == 0 {
		config.Engine.ATRPeriod = 14
	}
	if config.Engine.RegressionWindow == 0 {
		config.Engine.RegressionWindow = 20
	}
	if config.Engine.RegressionDepth == 0 {
		config.Engine.RegressionDepth = 50
	}

	// Synthesis bands per asset class
	if config.Synthesis.CryptoEpsilon == 0 {
		config.Synthesis.CryptoEpsilon = 0.002
	}
	if config.Synthesis.StockEpsilon == 0 {
		config.Synthesis.StockEpsilon = 0.001
	}
	if config.Synthesis.ForexEpsilon == 0 {
		config.Synthesis.ForexEpsilon = 0.0002
	}
	if config.Synthesis.CommodityEpsilon == 0 {
		config.Synthesis.CommodityEpsilon = 0.002
	}

	// Cache defaults
	if config.Cache.AnalysisTTLMinutes == 0 {
		config.Cache.AnalysisTTLMinutes = 10
	}
	if config.Cache.PredictionTTLSeconds == 0 {
		config.Cache.PredictionTTLSeconds = 180
	}
	if config.Cache.PurgeIntervalSeconds == 0 {
		config.Cache.PurgeIntervalSeconds = 300
	}

	// DataSource defaults
	if config.DataSource.CryptoAPIURL == "" {
		config.DataSource.CryptoAPIURL = "https://api.coingecko.com/api/v3"
	}
	if config.DataSource.QuoteAPIURL == "" {
		config.DataSource.QuoteAPIURL = "https://www.alphavantage.co/query"
	}
	if config.DataSource.QuoteAPIKey == "" {
		config.DataSource.QuoteAPIKey = "demo"
	}
	if len(config.DataSource.StreamSymbols) == 0 {
		config.DataSource.StreamSymbols = []string{"bitcoin", "ethereum", "solana"}
	}
	if config.DataSource.ReconnectDelay == 0 {
		config.DataSource.ReconnectDelay = 5
	}
	if config.DataSource.PingInterval == 0 {
		config.DataSource.PingInterval = 25
	}
	if config.DataSource.TimeoutSeconds == 0 {
		config.DataSource.TimeoutSeconds = 10
	}

	// Storage defaults
	if config.Storage.MaxQuotesInMemory == 0 {
		config.Storage.MaxQuotesInMemory = 500
	}

	// API defaults
	if config.API.Host == "" {
		config.API.Host = "0.0.0.0"
	}
	if config.API.Port == 0 {
		config.API.Port = 8080
	}
	if !config.API.EnableCORS {
		config.API.EnableCORS = true
	}
	if !config.API.WebSocketEnabled {
		config.API.WebSocketEnabled = true
	}

	// Logging defaults
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
}

// validate validates configuration
func validate(config types.Config) error {
	if config.API.Port < 1 || config.API.Port > 65535 {
		return fmt.Errorf("invalid API port %d", config.API.Port)
	}

	if config.Engine.MACDFast >= config.Engine.MACDSlow {
		return fmt.Errorf("macd_fast (%d) must be below macd_slow (%d)",
			config.Engine.MACDFast, config.Engine.MACDSlow)
	}

	if config.Engine.RegressionWindow >= config.Engine.RegressionDepth {
		return fmt.Errorf("regression_window (%d) must be below regression_depth (%d)",
			config.Engine.RegressionWindow, config.Engine.RegressionDepth)
	}

	for name, eps := range map[string]float64{
		"crypto_epsilon":    config.Synthesis.CryptoEpsilon,
		"stock_epsilon":     config.Synthesis.StockEpsilon,
		"forex_epsilon":     config.Synthesis.ForexEpsilon,
		"commodity_epsilon": config.Synthesis.CommodityEpsilon,
	} {
		if eps < 0 || eps > 0.1 {
			return fmt.Errorf("%s must be within [0, 0.1], got %f", name, eps)
		}
	}

	return nil
}
