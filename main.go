// go_tube — YouTube video metadata collection MCP server.
//
// Two acquisition paths: the official Data API v3 and a logged-in browser
// scraping the public results page. Both emit the same canonical records,
// filtered by popularity and classification rules. Runs as HTTP MCP server
// or stdio transport.
package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/scoutserver"
	"github.com/anatolykoptev/go_tube/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	initEngine()

	slog.Info("starting go_tube",
		slog.String("port", mcpPort),
		slog.Bool("api_key", engine.Cfg.APIKey != ""),
	)

	st, err := store.Open(engine.Cfg.DataDir, env.Str("SESSION_SECRET", "go_tube-dev-secret"), engine.Settings{
		UseProxy:        engine.Cfg.UseProxy,
		ProxyList:       engine.Cfg.ProxyList,
		MinRequestDelay: int(engine.Cfg.MinRequestDelay / time.Millisecond),
		MaxRequestDelay: int(engine.Cfg.MaxRequestDelay / time.Millisecond),
		Headless:        engine.Cfg.Headless,
	})
	if err != nil {
		slog.Error("store init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer st.Close()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_tube",
		Version: version,
	}, nil)

	tools := scoutserver.RegisterTools(server, st)
	defer tools.Close()
	slog.Info("tools registered", slog.Int("count", 7))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_tube",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	dataDir := env.Str("DATA_DIR", "")
	if dataDir == "" {
		dataDir = filepath.Join(os.Getenv("HOME"), ".go_tube")
	}

	c := engine.Config{
		APIKey:          env.Str("YOUTUBE_API_KEY", ""),
		UseProxy:        env.Str("USE_PROXY", "false") == "true",
		ProxyList:       env.List("PROXY_LIST", ""),
		MinRequestDelay: env.Duration("MIN_REQUEST_DELAY", 1*time.Second),
		MaxRequestDelay: env.Duration("MAX_REQUEST_DELAY", 3*time.Second),
		Headless:        env.Str("HEADLESS", "true") != "false",
		NavTimeout:      env.Duration("NAV_TIMEOUT", 30*time.Second),
		ScrollCeiling:   env.Duration("SCROLL_CEILING", 2*time.Minute),
		DataDir:         dataDir,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, env.Int("CACHE_MAX_ENTRIES", 1000))
}
