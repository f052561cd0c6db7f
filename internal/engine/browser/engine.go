package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

// Stage names the step of the scraping pipeline an engine is in; it is
// carried in errors and logs so failures identify where they happened.
type Stage string

const (
	StageLaunching      Stage = "launching"
	StageAuthenticating Stage = "authenticating"
	StageNavigating     Stage = "navigating"
	StageScrolling      Stage = "scrolling"
	StageExtracting     Stage = "extracting"
	StageFiltering      Stage = "filtering"
	StageClosing        Stage = "closing"
)

// resultsPerScroll is the rough number of new items one viewport scroll
// loads; the scroll budget is derived from it.
const resultsPerScroll = 20

// Engine acquires video metadata by driving a real browser against the
// public results page. It holds one long-lived browser process; each search
// runs in its own tab that is always closed when the call returns, success
// or failure.
//
// When a stored login session exists its cookies are installed before
// navigation and the refreshed jar is written back after every successful
// scrape, keeping the session warm across calls. Without one the engine
// runs unauthenticated, best effort.
type Engine struct {
	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	limiter  engine.Limiter
	rotator  *engine.Rotator
	sessions engine.SessionStore
	headless bool
	ua       string
}

// New builds a browser engine. The user agent is picked once per engine so
// every tab in the browser's lifetime presents the same fingerprint.
// rotator may be nil for direct egress.
func New(sessions engine.SessionStore, rotator *engine.Rotator, headless bool, minDelay, maxDelay time.Duration) *Engine {
	return &Engine{
		limiter:  engine.NewHumanLimiter(minDelay, maxDelay),
		rotator:  rotator,
		sessions: sessions,
		headless: headless,
		ua:       stealth.RandomUserAgent(),
	}
}

// Close tears down the browser process. The engine is unusable afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.browserCancel != nil {
		e.browserCancel()
		e.browserCancel = nil
	}
	if e.allocCancel != nil {
		e.allocCancel()
		e.allocCancel = nil
	}
	e.browserCtx = nil
}

// launch starts the browser process on first use.
func (e *Engine) launch() (context.Context, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.browserCtx != nil {
		return e.browserCtx, nil
	}

	proxyURL := ""
	if e.rotator != nil {
		if ep, ok := e.rotator.Next(); ok {
			proxyURL = ep.URL
		}
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(),
		allocatorOptions(e.headless, e.ua, proxyURL)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		if proxyURL != "" {
			e.rotator.MarkFailed(proxyURL)
		}
		return nil, fmt.Errorf("%s: %w", StageLaunching, err)
	}
	if proxyURL != "" {
		e.rotator.MarkSucceeded(proxyURL)
	}

	e.allocCancel = allocCancel
	e.browserCtx = browserCtx
	e.browserCancel = browserCancel
	slog.Info("browser launched", slog.Bool("headless", e.headless), slog.Bool("proxied", proxyURL != ""))
	return browserCtx, nil
}

// Search runs the full scraping pipeline for one request. Every record in
// the result satisfies the params' filters.
func (e *Engine) Search(ctx context.Context, params engine.SearchParams) (*engine.SearchResult, error) {
	if strings.TrimSpace(params.Keyword) == "" {
		return nil, engine.ErrEmptyKeyword
	}
	session, err := e.sessions.Session()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", StageAuthenticating, engine.ErrLoginRequired, err)
	}
	engine.IncrBrowserSearch()

	browserCtx, err := e.launch()
	if err != nil {
		return nil, err
	}

	// Fresh tab per search, torn down unconditionally.
	tabCtx, closeTab := chromedp.NewContext(browserCtx)
	defer func() {
		slog.Debug("browser search stage", slog.String("stage", string(StageClosing)))
		closeTab()
	}()

	if err := e.prepare(tabCtx, session); err != nil {
		return nil, fmt.Errorf("%s: %w", StageAuthenticating, err)
	}
	if needsWarmup(session) {
		// No cookie jar to install: warm the context with a bare home-page
		// visit. Best effort, login is not asserted.
		warmCtx, cancelWarm := context.WithTimeout(tabCtx, engine.Cfg.NavTimeout)
		if err := chromedp.Run(warmCtx, chromedp.Navigate(homeURL), chromedp.WaitReady("body")); err != nil {
			slog.Debug("home warmup failed", slog.Any("error", err))
		}
		cancelWarm()
	}

	target := searchURL(params, time.Now())
	navCtx, cancelNav := context.WithTimeout(tabCtx, engine.Cfg.NavTimeout)
	defer cancelNav()
	if err := chromedp.Run(navCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body"),
	); err != nil {
		return nil, fmt.Errorf("%s: %w", StageNavigating, err)
	}

	if err := e.limiter.Wait(tabCtx); err != nil {
		return nil, fmt.Errorf("%s: %w", StageNavigating, err)
	}

	if err := e.scroll(tabCtx, tabScroller{ctx: tabCtx}, params.MaxResults); err != nil {
		return nil, fmt.Errorf("%s: %w", StageScrolling, err)
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return nil, fmt.Errorf("%s: %w", StageExtracting, err)
	}
	raws, err := extract(html, params.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StageExtracting, err)
	}

	videos := make([]engine.Video, 0, len(raws))
	for _, raw := range raws {
		videos = append(videos, engine.VideoFromScraped(raw))
	}
	videos = engine.ApplyFilters(videos, params)

	if session != nil {
		e.saveCookies(tabCtx, session)
	}

	slog.Info("browser search done",
		slog.String("keyword", params.Keyword),
		slog.Int("scraped", len(raws)),
		slog.Int("kept", len(videos)),
	)
	return &engine.SearchResult{Videos: videos, TotalResults: len(videos)}, nil
}

// needsWarmup reports whether the tab should visit the home page before the
// search: there is nothing to authenticate with when no session exists or
// the stored one carries no cookie jar.
func needsWarmup(session *engine.Session) bool {
	return session == nil || len(session.Cookies) == 0
}

// prepare arms the tab before first navigation: stealth init script, then
// the stored cookie jar when a session exists.
func (e *Engine) prepare(ctx context.Context, session *engine.Session) error {
	return chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript()).Do(ctx)
			return err
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if session == nil {
				return nil
			}
			for _, c := range session.Cookies {
				sc := network.SetCookie(c.Name, c.Value).
					WithDomain(c.Domain).
					WithPath(c.Path).
					WithHTTPOnly(c.HTTPOnly).
					WithSecure(c.Secure)
				if c.Expires > 0 {
					exp := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
					sc = sc.WithExpires(&exp)
				}
				if err := sc.Do(ctx); err != nil {
					return fmt.Errorf("set cookie %s: %w", c.Name, err)
				}
			}
			return nil
		}),
	)
}

// scroller drives the two page interactions of the scroll loop.
type scroller interface {
	ScrollToBottom() error
	Height() (int64, error)
}

// tabScroller is the chromedp-backed scroller for a live tab.
type tabScroller struct {
	ctx context.Context
}

func (s tabScroller) ScrollToBottom() error {
	return chromedp.Run(s.ctx,
		chromedp.Evaluate(`window.scrollTo(0, document.documentElement.scrollHeight)`, nil),
	)
}

func (s tabScroller) Height() (int64, error) {
	var height int64
	err := chromedp.Run(s.ctx,
		chromedp.Evaluate(`document.documentElement.scrollHeight`, &height),
	)
	return height, err
}

// scroll advances the results page until the item target is plausibly
// loaded. Exits early when the page height stops growing (no more results)
// and is bounded both by a scroll budget derived from the target and by a
// wall-clock ceiling.
func (e *Engine) scroll(ctx context.Context, page scroller, target int) error {
	if target <= 0 {
		target = resultsPerScroll
	}
	budget := (target + resultsPerScroll - 1) / resultsPerScroll

	deadline := time.Now().Add(engine.Cfg.ScrollCeiling)
	lastHeight := int64(-1)
	for i := 0; i < budget; i++ {
		if time.Now().After(deadline) {
			slog.Warn("scroll ceiling reached", slog.Int("scrolls", i))
			return nil
		}
		if err := page.ScrollToBottom(); err != nil {
			return err
		}
		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}
		height, err := page.Height()
		if err != nil {
			return err
		}
		if height == lastHeight {
			slog.Debug("page height stabilized", slog.Int("scrolls", i+1))
			return nil
		}
		lastHeight = height
	}
	return nil
}

// saveCookies writes the tab's refreshed cookie jar back to the session
// store. Best effort: a persistence failure does not fail the scrape.
func (e *Engine) saveCookies(ctx context.Context, session *engine.Session) {
	var cookies []*network.Cookie
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = storage.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		slog.Warn("cookie readback failed", slog.Any("error", err))
		return
	}

	session.Cookies = session.Cookies[:0]
	for _, c := range cookies {
		session.Cookies = append(session.Cookies, engine.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		})
	}
	if err := e.sessions.SaveSession(session); err != nil {
		slog.Warn("session save failed", slog.Any("error", err))
	}
}
