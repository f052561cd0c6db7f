// Package scoutserver exposes the video collection engines as MCP tools:
// API and browser search, export, settings, history, and proxy health.
package scoutserver

import (
	"sync"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/engine/browser"
	"github.com/anatolykoptev/go_tube/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wires the tool handlers to their shared dependencies: the local
// store and a lazily launched browser engine reused across calls.
type Server struct {
	store *store.Store

	mu      sync.Mutex
	browser *browser.Engine
}

// RegisterTools registers every tool on the given MCP server.
func RegisterTools(server *mcp.Server, st *store.Store) *Server {
	s := &Server{store: st}
	s.registerSearchAPI(server)
	s.registerSearchBrowser(server)
	s.registerExport(server)
	s.registerSettings(server)
	s.registerHistory(server)
	s.registerProxyCheck(server)
	return s
}

// Close tears down the shared browser engine if one was launched.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser != nil {
		s.browser.Close()
		s.browser = nil
	}
}

// rotatorFor builds a proxy rotator from the effective settings, or nil when
// proxying is off or the pool is empty.
func rotatorFor(settings engine.Settings) *engine.Rotator {
	if !settings.UseProxy || len(settings.ProxyList) == 0 {
		return nil
	}
	return engine.NewRotator(settings.ProxyList)
}
