// Package export writes collected video records to CSV or JSON files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// Supported output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

var csvHeader = []string{
	"ID", "Title", "Channel", "Channel ID", "Subscribers",
	"Views", "Likes", "Comments", "Duration", "Published",
	"Type", "Language", "URL",
}

// WriteCSV writes the records as CSV with a header row.
func WriteCSV(w io.Writer, videos []engine.Video) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for _, v := range videos {
		subscribers := ""
		if v.SubscriberCount != nil {
			subscribers = strconv.FormatInt(*v.SubscriberCount, 10)
		}
		kind := "video"
		if v.IsShorts {
			kind = "shorts"
		}
		row := []string{
			v.ID, v.Title, v.ChannelTitle, v.ChannelID, subscribers,
			strconv.FormatInt(v.ViewCount, 10),
			strconv.FormatInt(v.LikeCount, 10),
			strconv.FormatInt(v.CommentCount, 10),
			v.Duration, v.PublishedAt,
			kind, v.Language, v.URL,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the records as an indented JSON array.
func WriteJSON(w io.Writer, videos []engine.Video) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(videos); err != nil {
		return fmt.Errorf("export: encode json: %w", err)
	}
	return nil
}

// File writes the records into dir as youtube-videos-<unix>.<format> and
// returns the file path.
func File(dir, format string, videos []engine.Video) (string, error) {
	format = strings.ToLower(format)
	if format != FormatCSV && format != FormatJSON {
		return "", fmt.Errorf("export: unsupported format %q (valid: csv, json)", format)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("export: mkdir %s: %w", dir, err)
	}

	name := fmt.Sprintf("youtube-videos-%d.%s", time.Now().Unix(), format)
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()

	switch format {
	case FormatCSV:
		err = WriteCSV(f, videos)
	case FormatJSON:
		err = WriteJSON(f, videos)
	}
	if err != nil {
		os.Remove(path)
		return "", err
	}
	engine.IncrExport()
	return path, nil
}
