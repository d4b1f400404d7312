package ratelimit

import (
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// envConfig mirrors the RATE_LIMIT_* environment variables.
type envConfig struct {
	Enabled         bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	DefaultLimit    int           `env:"RATE_LIMIT_DEFAULT_LIMIT" envDefault:"600"`
	DefaultWindow   time.Duration `env:"RATE_LIMIT_DEFAULT_WINDOW" envDefault:"1m"`
	GenerateLimit   int           `env:"RATE_LIMIT_GENERATE_LIMIT" envDefault:"30"`
	GenerateWindow  time.Duration `env:"RATE_LIMIT_GENERATE_WINDOW" envDefault:"1h"`
	CleanupInterval time.Duration `env:"RATE_LIMIT_CLEANUP_INTERVAL" envDefault:"5m"`
	Whitelist       []string      `env:"RATE_LIMIT_WHITELIST" envSeparator:","`
	Blacklist       []string      `env:"RATE_LIMIT_BLACKLIST" envSeparator:","`
}

// LoadConfig loads rate limiting configuration from environment variables.
// Unparseable values are logged and the built-in defaults are used instead.
func LoadConfig() *Config {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		log.Printf("[rate-limit] invalid environment, using defaults: %v", err)
		return defaultConfig()
	}

	if !ec.Enabled {
		return &Config{
			Enabled: false,
		}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    ec.DefaultLimit,
		DefaultWindow:   ec.DefaultWindow,
		CleanupInterval: ec.CleanupInterval,
		Whitelist:       parseIPList(ec.Whitelist),
		Blacklist:       parseIPList(ec.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(ec.GenerateLimit, ec.GenerateWindow),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific configurations.
// Endpoints that call an upstream service share the generate limit.
func DefaultEndpointConfigs(generateLimit int, generateWindow time.Duration) []EndpointConfig {
	burst := generateLimit / 10
	if burst < 1 {
		burst = 1
	}

	return []EndpointConfig{
		// Upstream calls (strictest limits)
		{Path: "/documents", Method: "POST", Limit: generateLimit, Window: generateWindow, Burst: burst},
		{Path: "/drafts", Method: "POST", Limit: generateLimit, Window: generateWindow, Burst: burst},

		// Local decoding work
		{Path: "/history/verify", Method: "POST", Limit: 60, Window: time.Minute, Burst: 5},
		{Path: "/history/", Method: "GET", Limit: 120, Window: time.Minute, Burst: 20},

		// Everything else uses the default limit; /health is unlimited
	}
}

// parseIPList turns a list of IP addresses into a lookup set.
func parseIPList(list []string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range list {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
