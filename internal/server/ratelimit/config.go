package ratelimit

import (
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern; "*" matches one path segment
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// NewConfig builds the limiter configuration from a per-client request rate (requests per
// second) and burst. A non-positive rate disables limiting.
func NewConfig(rate float64, burst int) *Config {
	if rate <= 0 {
		return &Config{Enabled: false}
	}
	if burst <= 0 {
		burst = 1
	}

	// Express the rate as requests per minute so Limit stays an integer for headers.
	perMinute := max(int(rate*60), 1)

	return &Config{
		Enabled:         true,
		DefaultLimit:    perMinute,
		DefaultWindow:   time.Minute,
		DefaultBurst:    burst,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: model calls (strictest limits)
		{Path: "/sessions/*/profile", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},
		{Path: "/sessions/*/refine", Method: "POST", Limit: 60, Window: time.Hour, Burst: 5},
		{Path: "/sessions/*/cover-letter", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},

		// Tier 2: headless browser exports
		{Path: "/sessions/*/export/pdf", Method: "GET", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/sessions/*/export/jpg", Method: "GET", Limit: 30, Window: time.Hour, Burst: 5},

		// Tier 3: edits and reads - handled by default limit
		// Tier 4: health check and event streams (unlimited) - handled by special case in matcher
	}
}

// WithWhitelist marks client IDs that are never limited.
func (c *Config) WithWhitelist(list string) *Config {
	c.Whitelist = parseIPList(list)
	return c
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	if list == "" {
		return result
	}

	ips := strings.Split(list, ",")
	for _, ip := range ips {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}

	return result
}
