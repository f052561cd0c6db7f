package browser

import (
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/anatolykoptev/go_tube/internal/engine"
)

// All DOM-shape assumptions about the rendered results page live in this
// file. The selectors are an implicit, unversioned contract with the target
// site; adapting to markup changes should touch nothing else.

const (
	itemSelector      = "ytd-video-renderer, ytd-reel-item-renderer"
	reelItemTag       = "ytd-reel-item-renderer"
	titleLinkSelector = "a#video-title, a.reel-item-endpoint"
	channelSelector   = "ytd-channel-name a, #channel-name a"
	viewCountSelector = "#metadata-line span:first-child, .reel-item-metadata span"
	publishedSelector = "#metadata-line span:last-child"
	durationSelector  = "span.ytd-thumbnail-overlay-time-status-renderer, span#text.reel-item-duration"
)

var (
	watchIDRE  = regexp.MustCompile(`[?&]v=([^&]+)`)
	shortsIDRE = regexp.MustCompile(`/shorts/([a-zA-Z0-9_-]{11})`)

	errNoVideoID = errors.New("no video id in link target")
)

// extract scans the rendered results markup for standard and short-form item
// renderers and returns their raw fields, up to maxResults. It is a pure
// function of the HTML so tests can feed recorded fixture pages.
//
// Extraction failures on an individual item are logged and the item skipped;
// partial success is the expected common case for scraping.
func extract(html string, maxResults int) ([]engine.RawVideo, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var results []engine.RawVideo
	doc.Find(itemSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if maxResults > 0 && len(results) >= maxResults {
			return false
		}
		raw, err := extractItem(s)
		if err != nil {
			engine.IncrExtractError()
			slog.Debug("browser: skipping malformed result item", slog.Int("index", i), slog.Any("error", err))
			return true
		}
		engine.IncrExtracted()
		results = append(results, raw)
		return true
	})
	return results, nil
}

// extractItem pulls the raw fields from one result element.
func extractItem(s *goquery.Selection) (engine.RawVideo, error) {
	link := s.Find(titleLinkSelector).First()
	href, _ := link.Attr("href")
	id := videoIDFromHref(href)
	if id == "" {
		return engine.RawVideo{}, errNoVideoID
	}

	title, ok := link.Attr("title")
	if !ok || strings.TrimSpace(title) == "" {
		title = strings.TrimSpace(link.Text())
	}

	channel := s.Find(channelSelector).First()
	channelHref, _ := channel.Attr("href")

	thumbnail, _ := s.Find("img").First().Attr("src")

	return engine.RawVideo{
		ID:            id,
		Title:         title,
		ChannelID:     channelIDFromHref(channelHref),
		ChannelTitle:  strings.TrimSpace(channel.Text()),
		ThumbnailURL:  thumbnail,
		ViewCountText: strings.TrimSpace(s.Find(viewCountSelector).First().Text()),
		PublishedText: strings.TrimSpace(s.Find(publishedSelector).First().Text()),
		DurationText:  strings.TrimSpace(s.Find(durationSelector).First().Text()),
		IsShorts:      goquery.NodeName(s) == reelItemTag,
	}, nil
}

// videoIDFromHref derives the video ID from a watch or shorts link target.
func videoIDFromHref(href string) string {
	if m := watchIDRE.FindStringSubmatch(href); len(m) >= 2 {
		return m[1]
	}
	if m := shortsIDRE.FindStringSubmatch(href); len(m) >= 2 {
		return m[1]
	}
	return ""
}

// channelIDFromHref recovers a channel ID from a channel-name link by
// stripping the known path prefixes (/@handle, /channel/ID, /c/name,
// /user/name).
func channelIDFromHref(href string) string {
	path := href
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimPrefix(path, "https://www.youtube.com")
	path = strings.TrimPrefix(path, "/")
	for _, prefix := range []string{"@", "channel/", "c/", "user/"} {
		if rest := strings.TrimPrefix(path, prefix); rest != path {
			return rest
		}
	}
	return path
}
