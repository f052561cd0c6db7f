package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	APIKey          string        // YouTube Data API v3 key; environment-only
	UseProxy        bool          // default, overridable via settings store
	ProxyList       []string      // default outbound proxy pool
	MinRequestDelay time.Duration // browser pacing window lower bound
	MaxRequestDelay time.Duration // browser pacing window upper bound
	Headless        bool
	NavTimeout      time.Duration // page navigation bound; expiry fails the call
	ScrollCeiling   time.Duration // wall-clock bound on the scroll loop
	DataDir         string
	HTTPClient      *http.Client
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (api, browser).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.ScrollCeiling <= 0 {
		c.ScrollCeiling = 2 * time.Minute
	}
	cfg = c
	Cfg = &cfg
}
