package types

// Config is the application configuration loaded from YAML
type Config struct {
	Engine     EngineConfig     `yaml:"engine"`
	Synthesis  SynthesisConfig  `yaml:"synthesis"`
	Cache      CacheConfig      `yaml:"cache"`
	DataSource DataSourceConfig `yaml:"datasource"`
	Storage    StorageConfig    `yaml:"storage"`
	API        APIConfig        `yaml:"api"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// EngineConfig holds the indicator and model tunables
type EngineConfig struct {
	RSIPeriod        int     `yaml:"rsi_period"`
	MACDFast         int     `yaml:"macd_fast"`
	MACDSlow         int     `yaml:"macd_slow"`
	MACDSignal       int     `yaml:"macd_signal"`
	BollingerPeriod  int     `yaml:"bollinger_period"`
	BollingerStdDev  float64 `yaml:"bollinger_std_dev"`
	StochasticK      int     `yaml:"stochastic_k"`
	StochasticD      int     `yaml:"stochastic_d"`
	ATRPeriod        int     `yaml:"atr_period"`
	RegressionWindow int     `yaml:"regression_window"`
	RegressionDepth  int     `yaml:"regression_depth"`
}

// SynthesisConfig documents the high/low bands used when only closes are
// available. These are deliberate approximations, not hidden literals.
type SynthesisConfig struct {
	CryptoEpsilon    float64 `yaml:"crypto_epsilon"`
	StockEpsilon     float64 `yaml:"stock_epsilon"`
	ForexEpsilon     float64 `yaml:"forex_epsilon"`
	CommodityEpsilon float64 `yaml:"commodity_epsilon"`
}

// Epsilon returns the synthesis band for an asset class
func (s SynthesisConfig) Epsilon(assetType AssetType) float64 {
	switch assetType {
	case AssetStock:
		return s.StockEpsilon
	case AssetForex:
		return s.ForexEpsilon
	case AssetCommodity:
		return s.CommodityEpsilon
	default:
		return s.CryptoEpsilon
	}
}

// CacheConfig controls result caching
type CacheConfig struct {
	AnalysisTTLMinutes   int `yaml:"analysis_ttl_minutes"`
	PredictionTTLSeconds int `yaml:"prediction_ttl_seconds"`
	PurgeIntervalSeconds int `yaml:"purge_interval_seconds"`
}

// DataSourceConfig points at the upstream market APIs and the live stream
type DataSourceConfig struct {
	CryptoAPIURL   string   `yaml:"crypto_api_url"`
	QuoteAPIURL    string   `yaml:"quote_api_url"`
	QuoteAPIKey    string   `yaml:"quote_api_key"`
	StreamURL      string   `yaml:"stream_url"`
	StreamSymbols  []string `yaml:"stream_symbols"`
	ReconnectDelay int      `yaml:"reconnect_delay"`
	PingInterval   int      `yaml:"ping_interval"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

// StorageConfig controls the in-memory quote history
type StorageConfig struct {
	MaxQuotesInMemory int `yaml:"max_quotes_in_memory"`
}

// APIConfig controls the HTTP server
type APIConfig struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	EnableCORS       bool   `yaml:"enable_cors"`
	WebSocketEnabled bool   `yaml:"websocket_enabled"`
}

// LoggingConfig controls zerolog output
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}
