package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Normalization: both acquisition paths funnel through this file so callers
// receive structurally identical records regardless of source.

// shortsMaxSeconds is the classification boundary: duration <= 60s means
// short-form. The browser path classifies by renderer type instead, which is
// treated as equivalent for filtering purposes.
const shortsMaxSeconds = 60

var (
	isoDurationRE  = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)
	displayCountRE = regexp.MustCompile(`([\d.]+)\s*([KMBkmb]?)`)
)

// ParseISODuration converts a compact ISO-8601 duration ("PT1H2M3S") to total
// seconds. Missing components default to zero; unparseable input yields 0.
func ParseISODuration(s string) int {
	m := isoDurationRE.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	return h*3600 + min*60 + sec
}

// FormatDuration renders total seconds as H:MM:SS when hours > 0, else M:SS.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// ParseDisplayCount parses view-count display text such as "1.2K views" or
// "3.4M": mantissa times unit multiplier (K/M/B), floored to an integer.
// Unparseable text yields 0.
func ParseDisplayCount(text string) int64 {
	m := displayCountRE.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch strings.ToUpper(m[2]) {
	case "K":
		num *= 1e3
	case "M":
		num *= 1e6
	case "B":
		num *= 1e9
	}
	return int64(num)
}

// APIVideoFields is the source-neutral shape of one Data API video item,
// decoded by the api package and normalized here.
type APIVideoFields struct {
	ID           string
	Title        string
	Description  string
	ChannelID    string
	ChannelTitle string
	PublishedAt  string
	ThumbnailURL string
	ViewCount    int64
	LikeCount    int64
	CommentCount int64
	ISODuration  string
	Tags         []string
	Language     string
}

// VideoFromAPI builds a canonical record from a Data API payload.
// subscribers is nil when channel statistics were unavailable.
func VideoFromAPI(f APIVideoFields, subscribers *int64) Video {
	seconds := ParseISODuration(f.ISODuration)
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}
	return Video{
		ID:              f.ID,
		Title:           f.Title,
		Description:     f.Description,
		ChannelID:       f.ChannelID,
		ChannelTitle:    f.ChannelTitle,
		SubscriberCount: subscribers,
		PublishedAt:     f.PublishedAt,
		ThumbnailURL:    f.ThumbnailURL,
		ViewCount:       f.ViewCount,
		LikeCount:       f.LikeCount,
		CommentCount:    f.CommentCount,
		Duration:        FormatDuration(seconds),
		Tags:            tags,
		IsShorts:        seconds <= shortsMaxSeconds,
		Language:        f.Language,
		URL:             WatchURL(f.ID),
		Source:          SourceAPI,
	}
}

// VideoFromScraped builds a canonical record from extracted DOM fields.
// Like/comment counts and tags are never available on this path; PublishedAt
// keeps the relative display string ("3 days ago") as scraped.
func VideoFromScraped(raw RawVideo) Video {
	return Video{
		ID:           raw.ID,
		Title:        raw.Title,
		Description:  "",
		ChannelID:    raw.ChannelID,
		ChannelTitle: raw.ChannelTitle,
		PublishedAt:  raw.PublishedText,
		ThumbnailURL: raw.ThumbnailURL,
		ViewCount:    ParseDisplayCount(raw.ViewCountText),
		Duration:     strings.TrimSpace(raw.DurationText),
		Tags:         []string{},
		IsShorts:     raw.IsShorts,
		URL:          WatchURL(raw.ID),
		Source:       SourceBrowser,
	}
}

// WatchURL returns the canonical watch URL for a video ID.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// ApplyFilters evaluates the active SearchParams filters over records from
// either path. View-count floor, video-type match, and popularity ratio are
// conjunctive; every returned record satisfies all of them.
func ApplyFilters(videos []Video, p SearchParams) []Video {
	out := make([]Video, 0, len(videos))
	for _, v := range videos {
		floor := p.MinViewCount
		if v.IsShorts && p.MinViewCountShorts > 0 {
			floor = p.MinViewCountShorts
		}
		if floor > 0 && v.ViewCount < floor {
			continue
		}
		switch p.VideoType {
		case TypeShorts:
			if !v.IsShorts {
				continue
			}
		case TypeVideo:
			if v.IsShorts {
				continue
			}
		}
		if p.FilterPopular {
			views := v.ViewCount
			if views < 1 {
				views = 1
			}
			if float64(v.LikeCount+v.CommentCount)/float64(views) <= 0.01 {
				continue
			}
		}
		out = append(out, v)
	}
	return out
}
