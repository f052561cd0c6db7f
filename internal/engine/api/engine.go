package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// Stage names the step of the acquisition pipeline an engine is in; it is
// carried in errors and logs so failures identify where they happened.
type Stage string

const (
	StageIdle         Stage = "idle"
	StageSearching    Stage = "searching"
	StageDetails      Stage = "fetching_details"
	StageChannelStats Stage = "fetching_channel_stats"
	StageNormalizing  Stage = "normalizing"
	StageDone         Stage = "done"
)

// maxAPIResults is the single-page cap of the search call; the API path does
// not paginate beyond one page.
const maxAPIResults = 50

// Engine acquires video metadata through the Data API: one search call, one
// batched details call, one batched channel-statistics call, then
// normalization and filtering. Stages run strictly in order; search and
// details failures are fatal for the call, channel stats degrade.
type Engine struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter engine.Limiter
	rotator *engine.Rotator
	quota   atomic.Int64
}

// New builds an API engine. rotator may be nil for direct egress.
func New(apiKey string, rotator *engine.Rotator) *Engine {
	return &Engine{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		client:  engine.Cfg.HTTPClient,
		limiter: engine.NewAPILimiter(engine.APIMinInterval),
		rotator: rotator,
	}
}

// QuotaEstimate returns the approximate Data API quota units consumed by
// this engine instance.
func (e *Engine) QuotaEstimate() int64 {
	return e.quota.Load()
}

// Search runs the full acquisition pipeline for one request. Every record in
// the result satisfies the params' filters. No partial results: a search or
// details failure fails the whole call.
func (e *Engine) Search(ctx context.Context, params engine.SearchParams) (*engine.SearchResult, error) {
	if strings.TrimSpace(params.Keyword) == "" {
		return nil, engine.ErrEmptyKeyword
	}
	if e.apiKey == "" {
		return nil, engine.ErrMissingAPIKey
	}
	engine.IncrAPISearch()

	ids, nextPage, err := e.search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StageSearching, err)
	}
	if len(ids) == 0 {
		return &engine.SearchResult{Videos: []engine.Video{}}, nil
	}

	items, err := e.videoDetails(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StageDetails, err)
	}

	subscribers := e.channelSubscribers(ctx, uniqueChannelIDs(items))

	videos := make([]engine.Video, 0, len(items))
	for _, item := range items {
		videos = append(videos, engine.VideoFromAPI(toFields(item), subscribers[item.Snippet.ChannelID]))
	}
	videos = engine.ApplyFilters(videos, params)

	slog.Info("api search done",
		slog.String("keyword", params.Keyword),
		slog.Int("fetched", len(items)),
		slog.Int("kept", len(videos)),
	)
	return &engine.SearchResult{
		Videos:        videos,
		TotalResults:  len(videos),
		NextPageToken: nextPage,
	}, nil
}

// search issues the single-page keyword search and returns the ranked ID list.
func (e *Engine) search(ctx context.Context, p engine.SearchParams) ([]string, string, error) {
	limit := p.MaxResults
	if limit <= 0 || limit > maxAPIResults {
		limit = maxAPIResults
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", p.Keyword)
	params.Set("type", "video")
	params.Set("order", "relevance")
	params.Set("maxResults", strconv.Itoa(limit))
	if p.PublishedAfter != "" {
		params.Set("publishedAfter", p.PublishedAfter)
	}
	if p.Language != "" {
		params.Set("relevanceLanguage", p.Language)
	}

	var resp searchResponse
	if err := e.get(ctx, "/search", params, quotaSearch, &resp); err != nil {
		return nil, "", err
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	return ids, resp.NextPageToken, nil
}

// videoDetails batch-fetches metadata, statistics, and duration for all IDs
// in one request.
func (e *Engine) videoDetails(ctx context.Context, ids []string) ([]videoItem, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics,contentDetails")
	params.Set("id", strings.Join(ids, ","))

	var resp videosResponse
	if err := e.get(ctx, "/videos", params, quotaList, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// channelSubscribers batch-fetches subscriber counts for the unique channel
// set in one request. Channel stats are enrichment, not correctness-critical:
// on failure the engine logs and degrades to unknown counts instead of
// failing the call.
func (e *Engine) channelSubscribers(ctx context.Context, channelIDs []string) map[string]*int64 {
	if len(channelIDs) == 0 {
		return nil
	}

	params := url.Values{}
	params.Set("part", "statistics")
	params.Set("id", strings.Join(channelIDs, ","))

	var resp channelsResponse
	if err := e.get(ctx, "/channels", params, quotaList, &resp); err != nil {
		slog.Warn("api: channel stats unavailable, degrading to unknown subscriber counts", slog.Any("error", err))
		return nil
	}

	out := make(map[string]*int64, len(resp.Items))
	for _, ch := range resp.Items {
		n, err := strconv.ParseInt(ch.Statistics.SubscriberCount, 10, 64)
		if err != nil {
			continue
		}
		count := n
		out[ch.ID] = &count
	}
	return out
}

// uniqueChannelIDs collects the deduplicated channel-ID set across items,
// preserving first-seen order.
func uniqueChannelIDs(items []videoItem) []string {
	seen := make(map[string]bool, len(items))
	var ids []string
	for _, item := range items {
		id := item.Snippet.ChannelID
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// toFields maps one decoded API item onto the normalizer's neutral shape.
func toFields(item videoItem) engine.APIVideoFields {
	sn := item.Snippet
	thumb := sn.Thumbnails.High.URL
	if thumb == "" {
		thumb = sn.Thumbnails.Default.URL
	}
	lang := sn.DefaultLanguage
	if lang == "" {
		lang = sn.DefaultAudioLanguage
	}
	return engine.APIVideoFields{
		ID:           item.ID,
		Title:        sn.Title,
		Description:  sn.Description,
		ChannelID:    sn.ChannelID,
		ChannelTitle: sn.ChannelTitle,
		PublishedAt:  sn.PublishedAt,
		ThumbnailURL: thumb,
		ViewCount:    parseCount(item.Statistics.ViewCount),
		LikeCount:    parseCount(item.Statistics.LikeCount),
		CommentCount: parseCount(item.Statistics.CommentCount),
		ISODuration:  item.ContentDetails.Duration,
		Tags:         sn.Tags,
		Language:     lang,
	}
}

func parseCount(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
