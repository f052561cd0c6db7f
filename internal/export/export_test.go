package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

func sampleVideos() []engine.Video {
	subs := int64(54000)
	return []engine.Video{
		{
			ID: "vid1", Title: "First, with comma", ChannelTitle: "Chan One", ChannelID: "ch1",
			SubscriberCount: &subs, ViewCount: 250000, LikeCount: 9000, CommentCount: 800,
			Duration: "12:05", PublishedAt: "2026-08-20T10:00:00Z", Language: "en",
			URL: "https://www.youtube.com/watch?v=vid1", Source: engine.SourceAPI,
		},
		{
			ID: "vid2", Title: "Scraped Short", ChannelTitle: "Chan Two",
			ViewCount: 500000, Duration: "0:45", PublishedAt: "3 days ago", IsShorts: true,
			URL: "https://www.youtube.com/watch?v=vid2", Source: engine.SourceBrowser,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleVideos()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(records))
	}
	if records[0][0] != "ID" || records[0][5] != "Views" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][1] != "First, with comma" {
		t.Errorf("comma in title not preserved: %q", records[1][1])
	}
	if records[1][4] != "54000" {
		t.Errorf("subscribers = %q", records[1][4])
	}
	// Unknown subscriber count renders empty, not zero.
	if records[2][4] != "" {
		t.Errorf("nil subscribers rendered as %q", records[2][4])
	}
	if records[2][10] != "shorts" {
		t.Errorf("type column = %q, want shorts", records[2][10])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleVideos()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var back []engine.Video
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(back) != 2 || back[0].ID != "vid1" {
		t.Errorf("roundtrip mangled records: %+v", back)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("output not indented")
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()

	path, err := File(dir, "csv", sampleVideos())
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("file written outside dir: %s", path)
	}
	name := filepath.Base(path)
	if !strings.HasPrefix(name, "youtube-videos-") || !strings.HasSuffix(name, ".csv") {
		t.Errorf("unexpected file name %q", name)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file missing: %v", err)
	}

	if _, err := File(dir, "xml", nil); err == nil {
		t.Error("unsupported format accepted")
	}

	jsonPath, err := File(dir, "JSON", sampleVideos())
	if err != nil {
		t.Fatalf("File json: %v", err)
	}
	if !strings.HasSuffix(jsonPath, ".json") {
		t.Errorf("format not case-insensitive: %s", jsonPath)
	}
}
