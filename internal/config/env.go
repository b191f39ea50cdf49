// Package config defines environment configuration structs and loaders.
package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type AppConfig struct {
	ChainEnvConfig
	WalletEnvConfig
	KamiEnvConfig
	ServerEnvConfig
	ClientEnvConfig
	RedisEnvConfig
	RefdataEnvConfig
	PricingEnvConfig
	BlacklistEnvConfig
	ValidatorEnvConfig
	MinerEnvConfig
}

func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ChainEnvConfig holds chain-specific environment values.
type ChainEnvConfig struct {
	Netuid int `env:"NETUID" envDefault:"98"`
}

// WalletEnvConfig holds wallet key configuration.
type WalletEnvConfig struct {
	WalletHotkey  string `env:"WALLET_HOTKEY"`
	WalletColdkey string `env:"WALLET_COLDKEY"`
	BittensorDir  string `env:"BITTENSOR_DIR" envDefault:"~/.bittensor"`
}

// KamiEnvConfig contains the Kami sidecar target and keys.
type KamiEnvConfig struct {
	WalletEnvConfig
	SubtensorNetwork string `env:"SUBTENSOR_NETWORK" envDefault:"test"`
	KamiHost         string `env:"KAMI_HOST" envDefault:"127.0.0.1"`
	KamiPort         string `env:"KAMI_PORT" envDefault:"3000"`
}

// ServerEnvConfig configures the miner axon server.
type ServerEnvConfig struct {
	Address       string `env:"AXON_IP" envDefault:"127.0.0.1"`
	Port          int    `env:"AXON_PORT" envDefault:"8080"`
	BodySizeLimit int    `env:"SERVER_BODY_LIMIT" envDefault:"1048576"`
}

// ClientEnvConfig configures outbound batch dispatch.
type ClientEnvConfig struct {
	ClientTimeout time.Duration `env:"CLIENT_TIMEOUT" envDefault:"30s"`
}

// RedisEnvConfig configures the optional Redis connection.
type RedisEnvConfig struct {
	RedisHost     string `env:"REDIS_HOST" envDefault:"127.0.0.1"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// RefdataEnvConfig points at the CSV reference data used for query synthesis.
type RefdataEnvConfig struct {
	MarketsFile  string `env:"MARKETS_FILE" envDefault:"markets.csv"`
	AirportsFile string `env:"AIRPORTS_FILE" envDefault:"total_airports.csv"`
}

// PricingEnvConfig configures the external flight-pricing backend. An empty
// API key puts the miner in fallback-only mode.
type PricingEnvConfig struct {
	PricingAPIKey  string        `env:"PRICING_API_KEY"`
	PricingAPIHost string        `env:"PRICING_API_HOST" envDefault:"skyscanner89.p.rapidapi.com"`
	PricingTimeout time.Duration `env:"PRICING_TIMEOUT" envDefault:"10s"`
}

// BlacklistEnvConfig configures the miner admission policy.
type BlacklistEnvConfig struct {
	AllowNonRegistered   bool `env:"BLACKLIST_ALLOW_NON_REGISTERED" envDefault:"false"`
	ForceValidatorPermit bool `env:"BLACKLIST_FORCE_VALIDATOR_PERMIT" envDefault:"true"`
}

// ValidatorEnvConfig configures the validator runtime.
type ValidatorEnvConfig struct {
	ChainEnvConfig
	ClientEnvConfig
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	BatchSize   int    `env:"BATCH_SIZE" envDefault:"10"`
	ResultLimit int    `env:"RESULT_LIMIT" envDefault:"3"`
	ScoresFile  string `env:"SCORES_FILE" envDefault:"scores.json"`
	IngressPort int    `env:"INGRESS_PORT" envDefault:"8090"`
	// PropagateIntentFields copies cabin, passenger, and currency fields from
	// the incoming intent into every synthesized sub-query instead of the
	// protocol defaults.
	PropagateIntentFields bool `env:"PROPAGATE_INTENT_FIELDS" envDefault:"false"`
	DateWindowDays        int  `env:"DATE_WINDOW_DAYS" envDefault:"60"`
}

// MinerEnvConfig configures the miner runtime.
type MinerEnvConfig struct {
	ChainEnvConfig
	ServerEnvConfig
	BlacklistEnvConfig
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
}

type IntervalConfig struct {
	MetagraphInterval     time.Duration
	SearchRoundInterval   time.Duration
	BlockInterval         time.Duration
	WeightSettingInterval time.Duration
}

var (
	DevIntervalConfig = &IntervalConfig{
		MetagraphInterval:     5 * time.Second,
		SearchRoundInterval:   10 * time.Second,
		BlockInterval:         2 * time.Second,
		WeightSettingInterval: 1 * time.Minute,
	}
	TestIntervalConfig = &IntervalConfig{
		MetagraphInterval:     30 * time.Second,
		SearchRoundInterval:   5 * time.Minute,
		BlockInterval:         12 * time.Second,
		WeightSettingInterval: 30 * time.Minute,
	}
	ProdIntervalConfig = &IntervalConfig{
		MetagraphInterval:     30 * time.Second,
		SearchRoundInterval:   15 * time.Minute,
		BlockInterval:         12 * time.Second,
		WeightSettingInterval: 60 * time.Minute,
	}
)

func NewIntervalConfig(environment string) *IntervalConfig {
	switch strings.ToLower(environment) {
	case "dev":
		return DevIntervalConfig
	case "test":
		return TestIntervalConfig
	case "prod":
		return ProdIntervalConfig
	}

	return DevIntervalConfig
}
