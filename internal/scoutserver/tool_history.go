package scoutserver

import (
	"context"

	"github.com/anatolykoptev/go_tube/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// HistoryListInput bounds the listing.
type HistoryListInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max entries to return (default 20, max 100)"`
}

// HistoryListOutput is the recent-searches listing.
type HistoryListOutput struct {
	Entries []store.HistoryEntry `json:"entries"`
	Total   int                  `json:"total"`
}

func (s *Server) registerHistory(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "history_list",
		Description: "List recent searches (query, source engine, result count), newest first. Entry IDs feed export_videos.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input HistoryListInput) (*mcp.CallToolResult, HistoryListOutput, error) {
		entries, err := s.store.ListHistory(input.Limit)
		if err != nil {
			return nil, HistoryListOutput{}, err
		}
		return nil, HistoryListOutput{Entries: entries, Total: len(entries)}, nil
	})
}
