package transport

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the static topology for a server process: which symbols it
// serves, how many decimal places each trades at, and engine/transport
// tuning. It is loaded from a YAML file (grounded on
// chycee-cryptoGo/internal/infra/config.go) and then has secrets/per-deploy
// values layered on top from the environment, following the teacher's own
// getEnv/parseIntEnv pattern in server/server.go.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	CORSOrigin string `yaml:"cors_origin"`

	Symbols []SymbolConfig `yaml:"symbols"`

	Workers           int `yaml:"workers"`
	SubscriberBuffer  int `yaml:"subscriber_buffer"`
	DepthForSnapshots int `yaml:"depth_for_snapshots"`

	// AuthToken is never read from the file; it only comes from the
	// AUTH_TOKEN environment variable, matching the teacher's design.
	AuthToken string `yaml:"-"`
}

// SymbolConfig names a tradable symbol and the number of decimal places
// its price and quantity are quoted in (§9's fixed-point note).
type SymbolConfig struct {
	Symbol        string `yaml:"symbol"`
	PriceScale    int32  `yaml:"price_scale"`
	QuantityScale int32  `yaml:"quantity_scale"`
}

func defaultConfig() Config {
	return Config{
		ListenAddr:        ":8080",
		CORSOrigin:        "*",
		Workers:           4,
		SubscriberBuffer:  32,
		DepthForSnapshots: 10,
		Symbols: []SymbolConfig{
			{Symbol: "BTC-USDT", PriceScale: 2, QuantityScale: 8},
		},
	}
}

// LoadConfig reads path if non-empty, falling back to built-in defaults,
// then overlays environment variables for deploy-specific values.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.ListenAddr = getEnv("LISTEN_ADDR", cfg.ListenAddr)
	cfg.CORSOrigin = getEnv("CORS_ORIGIN", cfg.CORSOrigin)
	cfg.Workers = parseIntEnv("WORKERS", cfg.Workers)
	cfg.SubscriberBuffer = parseIntEnv("SUBSCRIBER_BUFFER", cfg.SubscriberBuffer)
	cfg.AuthToken = os.Getenv("AUTH_TOKEN")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
