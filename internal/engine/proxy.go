package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"golang.org/x/net/proxy"
)

// maxProxyFailures is the eviction threshold: an endpoint whose consecutive
// failure count exceeds it is removed from the pool for the life of the
// rotator instance.
const maxProxyFailures = 5

// Endpoint is one outbound proxy in the pool.
type Endpoint struct {
	URL        string
	FailCount  int
	LastUsedAt time.Time
}

// Rotator serves proxy endpoints round-robin and evicts unhealthy ones.
// Safe for concurrent use; a single mutex keeps the cursor and failure
// counts consistent across interleaved acquisitions.
type Rotator struct {
	mu        sync.Mutex
	endpoints []*Endpoint
	cursor    int
}

// NewRotator builds a pool from raw proxy URLs. Blank entries are skipped.
func NewRotator(urls []string) *Rotator {
	r := &Rotator{}
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		r.endpoints = append(r.endpoints, &Endpoint{URL: u})
	}
	return r
}

// Next returns the next endpoint in round-robin order, or false when the
// pool is empty. Updates the endpoint's last-used timestamp.
func (r *Rotator) Next() (Endpoint, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.endpoints) == 0 {
		return Endpoint{}, false
	}
	r.cursor %= len(r.endpoints)
	ep := r.endpoints[r.cursor]
	r.cursor = (r.cursor + 1) % len(r.endpoints)
	ep.LastUsedAt = time.Now()
	return *ep, true
}

// MarkFailed increments the endpoint's failure count and evicts it once the
// count exceeds maxProxyFailures. Eviction is silent from the caller's point
// of view and permanent for this rotator.
func (r *Rotator) MarkFailed(proxyURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, ep := range r.endpoints {
		if ep.URL != proxyURL {
			continue
		}
		ep.FailCount++
		if ep.FailCount > maxProxyFailures {
			r.endpoints = append(r.endpoints[:i], r.endpoints[i+1:]...)
			if r.cursor > i {
				r.cursor--
			}
			if len(r.endpoints) > 0 {
				r.cursor %= len(r.endpoints)
			} else {
				r.cursor = 0
			}
			IncrProxyEviction()
		}
		return
	}
}

// MarkSucceeded resets the endpoint's failure count (recovery credit).
func (r *Rotator) MarkSucceeded(proxyURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ep := range r.endpoints {
		if ep.URL == proxyURL {
			ep.FailCount = 0
			return
		}
	}
}

// Available returns the current pool size.
func (r *Rotator) Available() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.endpoints)
}

// Transport builds an *http.Transport routed through the endpoint.
// Supports http/https proxies and socks5/socks5h.
func (e Endpoint) Transport() (*http.Transport, error) {
	u, err := url.Parse(e.URL)
	if err != nil {
		return nil, fmt.Errorf("proxy url %q: %w", e.URL, err)
	}
	switch u.Scheme {
	case "socks5", "socks5h":
		var auth *proxy.Auth
		if u.User != nil {
			pw, _ := u.User.Password()
			auth = &proxy.Auth{User: u.User.Username(), Password: pw}
		}
		d, err := proxy.SOCKS5("tcp", u.Host, auth, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("socks5 dialer %q: %w", e.URL, err)
		}
		cd, ok := d.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("socks5 dialer %q: no context support", e.URL)
		}
		return &http.Transport{DialContext: cd.DialContext}, nil
	default:
		return &http.Transport{Proxy: http.ProxyURL(u)}, nil
	}
}

// ProbeProxy checks that an endpoint can reach the outside world. Used by the
// proxy_check tool; probe failures are reported, never raised as call errors.
func ProbeProxy(ctx context.Context, proxyURL string) error {
	tr, err := Endpoint{URL: proxyURL}.Transport()
	if err != nil {
		return err
	}
	client := &http.Client{Transport: tr, Timeout: 10 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.google.com/generate_204", nil)
	if err != nil {
		return err
	}
	for k, v := range stealth.ChromeHeaders() {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("probe %s: %w", proxyURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("probe %s: HTTP %d", proxyURL, resp.StatusCode)
	}
	return nil
}
