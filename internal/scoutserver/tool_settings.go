package scoutserver

import (
	"context"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SettingsOutput is the effective runtime configuration. The API key is
// environment-only and deliberately absent.
type SettingsOutput struct {
	Settings engine.Settings `json:"settings"`
}

type settingsGetInput struct{}

func (s *Server) registerSettings(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "settings_get",
		Description: "Read the effective runtime settings: proxy usage, proxy pool, browser pacing window, headless mode.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input settingsGetInput) (*mcp.CallToolResult, SettingsOutput, error) {
		settings, err := s.store.Settings()
		if err != nil {
			return nil, SettingsOutput{}, err
		}
		return nil, SettingsOutput{Settings: settings}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "settings_update",
		Description: "Update runtime settings. Only the fields present in the input are changed; returns the merged result. The shared browser engine is restarted so new settings take effect.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input store.SettingsPatch) (*mcp.CallToolResult, SettingsOutput, error) {
		settings, err := s.store.UpdateSettings(input)
		if err != nil {
			return nil, SettingsOutput{}, err
		}

		// Drop the running browser; the next search relaunches with the
		// new settings.
		s.mu.Lock()
		if s.browser != nil {
			s.browser.Close()
			s.browser = nil
		}
		s.mu.Unlock()

		return nil, SettingsOutput{Settings: settings}, nil
	})
}
