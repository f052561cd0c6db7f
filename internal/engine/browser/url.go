package browser

import (
	"net/url"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

const (
	homeURL    = "https://www.youtube.com"
	resultsURL = "https://www.youtube.com/results"
)

// Opaque search-filter tokens. Published-after windows map to a fixed set of
// codes by nearest-bucket match; shorts get their own view filter.
const (
	filterToday     = "EgQIARAB"
	filterThisWeek  = "EgQIAxAB"
	filterThisMonth = "EgQIAhAB"
	filterThisYear  = "EgQIBRAB"
	filterShorts    = "EgIYAQ=="
)

// searchURL builds the results-page URL for the given params. now anchors the
// published-after bucket match.
func searchURL(p engine.SearchParams, now time.Time) string {
	q := url.Values{}
	q.Set("search_query", p.Keyword)

	if p.VideoType == engine.TypeShorts {
		q.Set("sp", filterShorts)
	} else if code := publishedFilter(p.PublishedAfter, now); code != "" {
		q.Set("sp", code)
	}
	if p.Language != "" {
		q.Set("lr", p.Language)
	}
	return resultsURL + "?" + q.Encode()
}

// publishedFilter picks the filter code whose window most closely covers the
// requested lower bound; bounds older than a year get no filter.
func publishedFilter(publishedAfter string, now time.Time) string {
	if publishedAfter == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, publishedAfter)
	if err != nil {
		return ""
	}
	days := int(now.Sub(t).Hours() / 24)
	switch {
	case days <= 1:
		return filterToday
	case days <= 7:
		return filterThisWeek
	case days <= 30:
		return filterThisMonth
	case days <= 365:
		return filterThisYear
	default:
		return ""
	}
}
