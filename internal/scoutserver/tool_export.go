package scoutserver

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/export"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ExportInput selects a recorded search and an output format.
type ExportInput struct {
	HistoryID int64  `json:"history_id" jsonschema:"History entry ID from history_list"`
	Format    string `json:"format,omitempty" jsonschema:"Output format: csv or json (default csv)"`
}

// ExportOutput reports where the file was written.
type ExportOutput struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

func (s *Server) registerExport(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_videos",
		Description: "Export the records of a past search (by history ID) to a CSV or JSON file in the data directory. Returns the file path.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input ExportInput) (*mcp.CallToolResult, ExportOutput, error) {
		if input.HistoryID <= 0 {
			return nil, ExportOutput{}, errors.New("history_id is required")
		}
		format := input.Format
		if format == "" {
			format = export.FormatCSV
		}

		videos, err := s.store.HistoryVideos(input.HistoryID)
		if err != nil {
			return nil, ExportOutput{}, err
		}

		dir := filepath.Join(engine.Cfg.DataDir, "exports")
		path, err := export.File(dir, format, videos)
		if err != nil {
			return nil, ExportOutput{}, err
		}
		return nil, ExportOutput{Path: path, Count: len(videos)}, nil
	})
}
