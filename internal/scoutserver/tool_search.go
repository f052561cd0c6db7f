package scoutserver

import (
	"context"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/engine/api"
	"github.com/anatolykoptev/go_tube/internal/engine/browser"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerSearchAPI(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_videos_api",
		Description: "Search YouTube videos via the official Data API v3. Returns canonical records (title, channel, views, likes, comments, duration, subscriber count) filtered by view floor, video type, and engagement. Costs API quota; requires YOUTUBE_API_KEY.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.SearchParams) (*mcp.CallToolResult, engine.SearchResult, error) {
		cacheKey := engine.SearchCacheKey("search_api", input)
		if cached, ok := engine.CacheGet(ctx, cacheKey); ok {
			return nil, cached, nil
		}

		settings, err := s.store.Settings()
		if err != nil {
			return nil, engine.SearchResult{}, err
		}
		if engine.Cfg.APIKey == "" {
			return nil, engine.SearchResult{}, engine.ErrMissingAPIKey
		}

		eng := api.New(engine.Cfg.APIKey, rotatorFor(settings))
		result, err := eng.Search(ctx, input)
		if err != nil {
			return nil, engine.SearchResult{}, err
		}

		s.record(input.Keyword, engine.SourceAPI, result.Videos)
		engine.CacheSet(ctx, cacheKey, *result)
		return nil, *result, nil
	})
}

func (s *Server) registerSearchBrowser(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_videos_browser",
		Description: "Search YouTube videos by driving a real browser against the results page. No API quota; uses the stored login session when one exists. Supports shorts detection, date filters, view floor, and engagement filtering. Slower than the API path.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.SearchParams) (*mcp.CallToolResult, engine.SearchResult, error) {
		cacheKey := engine.SearchCacheKey("search_browser", input)
		if cached, ok := engine.CacheGet(ctx, cacheKey); ok {
			return nil, cached, nil
		}

		eng, err := s.browserEngine()
		if err != nil {
			return nil, engine.SearchResult{}, err
		}
		result, err := eng.Search(ctx, input)
		if err != nil {
			return nil, engine.SearchResult{}, err
		}

		s.record(input.Keyword, engine.SourceBrowser, result.Videos)
		engine.CacheSet(ctx, cacheKey, *result)
		return nil, *result, nil
	})
}

// browserEngine returns the shared browser engine, launching it on first use
// with the effective settings.
func (s *Server) browserEngine() (*browser.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser != nil {
		return s.browser, nil
	}
	settings, err := s.store.Settings()
	if err != nil {
		return nil, err
	}
	s.browser = browser.New(
		s.store,
		rotatorFor(settings),
		settings.Headless,
		time.Duration(settings.MinRequestDelay)*time.Millisecond,
		time.Duration(settings.MaxRequestDelay)*time.Millisecond,
	)
	return s.browser, nil
}

// record saves a completed search to history. Best effort.
func (s *Server) record(keyword string, source engine.Source, videos []engine.Video) {
	if _, err := s.store.SaveHistory(keyword, source, videos); err != nil {
		slog.Warn("history save failed", slog.Any("error", err))
	}
}
