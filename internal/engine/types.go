package engine

// --- Search types ---

// Source identifies which acquisition path produced a record.
type Source string

const (
	SourceAPI     Source = "api"
	SourceBrowser Source = "browser"
)

// Video type filter values accepted in SearchParams.VideoType.
const (
	TypeAll    = "all"
	TypeVideo  = "video"
	TypeShorts = "shorts"
)

// SearchParams is the caller-supplied query for both acquisition engines.
// Immutable per request. Also serves as the MCP tool input.
type SearchParams struct {
	Keyword            string `json:"keyword" jsonschema:"Search keyword (required)"`
	MaxResults         int    `json:"max_results,omitempty" jsonschema:"Result target. API path is capped at 50; browser path scrolls until satisfied"`
	PublishedAfter     string `json:"published_after,omitempty" jsonschema:"RFC3339 lower bound on publish time"`
	Language           string `json:"language,omitempty" jsonschema:"Relevance language code, e.g. en"`
	MinViewCount       int64  `json:"min_view_count,omitempty" jsonschema:"Minimum view count (0 = no floor)"`
	MinViewCountShorts int64  `json:"min_view_count_shorts,omitempty" jsonschema:"Minimum view count applied to shorts instead of min_view_count"`
	VideoType          string `json:"video_type,omitempty" jsonschema:"Filter by classification: all, video, shorts"`
	FilterPopular      bool   `json:"filter_popular,omitempty" jsonschema:"Keep only videos with engagement ratio (likes+comments)/views above 1%"`
}

// Video is the canonical record emitted by both engines.
//
// SubscriberCount is nil when the acquisition path cannot know it (browser
// records); a non-nil zero means the channel verifiably has no subscribers.
type Video struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	ChannelID       string   `json:"channelId"`
	ChannelTitle    string   `json:"channelTitle"`
	SubscriberCount *int64   `json:"channelSubscriberCount,omitempty"`
	PublishedAt     string   `json:"publishedAt"`
	ThumbnailURL    string   `json:"thumbnailUrl"`
	ViewCount       int64    `json:"viewCount"`
	LikeCount       int64    `json:"likeCount"`
	CommentCount    int64    `json:"commentCount"`
	Duration        string   `json:"duration"`
	Tags            []string `json:"tags"`
	IsShorts        bool     `json:"isShorts"`
	Language        string   `json:"language,omitempty"`
	URL             string   `json:"url"`
	Source          Source   `json:"source"`
}

// SearchResult is the output of both engines: a filtered record list.
type SearchResult struct {
	Videos        []Video `json:"videos"`
	TotalResults  int     `json:"totalResults"`
	NextPageToken string  `json:"nextPageToken,omitempty"`
}

// RawVideo holds the fields extracted from one rendered search-result element,
// before normalization. All values are display text as scraped.
type RawVideo struct {
	ID            string
	Title         string
	ChannelID     string
	ChannelTitle  string
	ThumbnailURL  string
	ViewCountText string
	PublishedText string
	DurationText  string
	IsShorts      bool
}

// --- External collaborator types (consumed, not owned) ---

// Settings is the runtime configuration read from the settings store.
// The API key is environment-only and never persisted.
type Settings struct {
	UseProxy        bool     `json:"use_proxy"`
	ProxyList       []string `json:"proxy_list"`
	MinRequestDelay int      `json:"min_request_delay"` // milliseconds
	MaxRequestDelay int      `json:"max_request_delay"` // milliseconds
	Headless        bool     `json:"headless"`
}

// Cookie is one browser cookie persisted with a session.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"` // unix seconds, 0 = session cookie
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
}

// Session holds stored YouTube credentials plus the cookie jar written back
// after each successful scrape.
type Session struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	ExpiresAt    int64    `json:"expiresAt"` // unix milliseconds
	Email        string   `json:"email,omitempty"`
	Cookies      []Cookie `json:"cookies,omitempty"`
}

// SessionStore is the session collaborator consumed by the browser engine.
// Session returns (nil, nil) when no valid session exists.
type SessionStore interface {
	Session() (*Session, error)
	SaveSession(*Session) error
}
