package browser

import (
	"net/url"
	"testing"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

func TestSearchURL(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	t.Run("keyword only", func(t *testing.T) {
		u, err := url.Parse(searchURL(engine.SearchParams{Keyword: "go tutorial"}, now))
		if err != nil {
			t.Fatal(err)
		}
		q := u.Query()
		if q.Get("search_query") != "go tutorial" {
			t.Errorf("search_query = %q", q.Get("search_query"))
		}
		if q.Has("sp") {
			t.Error("sp filter set without published_after or shorts type")
		}
	})

	t.Run("shorts filter wins over date filter", func(t *testing.T) {
		u, _ := url.Parse(searchURL(engine.SearchParams{
			Keyword:        "cats",
			VideoType:      engine.TypeShorts,
			PublishedAfter: now.Add(-2 * time.Hour).Format(time.RFC3339),
		}, now))
		if got := u.Query().Get("sp"); got != filterShorts {
			t.Errorf("sp = %q, want shorts token", got)
		}
	})

	t.Run("language", func(t *testing.T) {
		u, _ := url.Parse(searchURL(engine.SearchParams{Keyword: "x", Language: "en"}, now))
		if u.Query().Get("lr") != "en" {
			t.Error("lr not set")
		}
	})
}

func TestPublishedFilter(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		age  time.Duration
		want string
	}{
		{2 * time.Hour, filterToday},
		{24 * time.Hour, filterToday},
		{3 * 24 * time.Hour, filterThisWeek},
		{20 * 24 * time.Hour, filterThisMonth},
		{200 * 24 * time.Hour, filterThisYear},
		{400 * 24 * time.Hour, ""},
	}
	for _, tt := range tests {
		in := now.Add(-tt.age).Format(time.RFC3339)
		if got := publishedFilter(in, now); got != tt.want {
			t.Errorf("publishedFilter(now-%v) = %q, want %q", tt.age, got, tt.want)
		}
	}

	if publishedFilter("", now) != "" {
		t.Error("empty bound produced a filter")
	}
	if publishedFilter("not-a-date", now) != "" {
		t.Error("unparseable bound produced a filter")
	}
}
