package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// YouTube Data API v3 client — request/response types and the low-level GET
// primitive. The staged pipeline lives in engine.go.

const (
	// DefaultBaseURL is the Data API endpoint; overridable for tests.
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

	userAgent = "GoTube/1.0"

	// Approximate quota pricing per call shape.
	quotaSearch = 100
	quotaList   = 1
)

// --- search.list ---

type searchResponse struct {
	Items         []searchItem `json:"items"`
	NextPageToken string       `json:"nextPageToken"`
}

type searchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
}

// --- videos.list ---

type videosResponse struct {
	Items []videoItem `json:"items"`
}

type videoItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title                string   `json:"title"`
		Description          string   `json:"description"`
		ChannelID            string   `json:"channelId"`
		ChannelTitle         string   `json:"channelTitle"`
		PublishedAt          string   `json:"publishedAt"`
		Tags                 []string `json:"tags"`
		DefaultLanguage      string   `json:"defaultLanguage"`
		DefaultAudioLanguage string   `json:"defaultAudioLanguage"`
		Thumbnails           struct {
			High    thumbnail `json:"high"`
			Default thumbnail `json:"default"`
		} `json:"thumbnails"`
	} `json:"snippet"`
	Statistics struct {
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
}

type thumbnail struct {
	URL string `json:"url"`
}

// --- channels.list ---

type channelsResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// get performs one rate-limited Data API call and decodes the JSON response
// into out. The transport is routed through the proxy rotator when one is
// configured; transport failures feed the rotator's failure counter.
func (e *Engine) get(ctx context.Context, path string, params url.Values, quota int64, out any) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("key", e.apiKey)
	apiURL := e.baseURL + path + "?" + params.Encode()

	client := e.client
	proxyURL := ""
	if e.rotator != nil {
		if ep, ok := e.rotator.Next(); ok {
			tr, err := ep.Transport()
			if err != nil {
				slog.Warn("api: bad proxy endpoint, going direct", slog.String("proxy", ep.URL), slog.Any("error", err))
			} else {
				proxyURL = ep.URL
				client = &http.Client{Transport: tr, Timeout: e.client.Timeout}
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		if proxyURL != "" {
			e.rotator.MarkFailed(proxyURL)
		}
		return fmt.Errorf("youtube data API: %w", err)
	}
	defer resp.Body.Close()
	if proxyURL != "" {
		e.rotator.MarkSucceeded(proxyURL)
	}

	engine.AddQuotaUnits(quota)
	e.quota.Add(quota)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("youtube data API %d: %s", resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode youtube data API: %w", err)
	}
	return nil
}
