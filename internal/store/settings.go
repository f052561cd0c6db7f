package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// Settings keys as stored. Values are stringified scalars except proxy_list,
// which is a JSON array.
const (
	keyUseProxy        = "use_proxy"
	keyProxyList       = "proxy_list"
	keyMinRequestDelay = "min_request_delay"
	keyMaxRequestDelay = "max_request_delay"
	keyHeadless        = "headless"
)

// Settings returns the effective settings: stored rows merged over the
// defaults given at Open.
func (s *Store) Settings() (engine.Settings, error) {
	out := s.defaults

	rows, err := s.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return out, fmt.Errorf("store: read settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			continue
		}
		switch key {
		case keyUseProxy:
			out.UseProxy = value == "true"
		case keyHeadless:
			out.Headless = value == "true"
		case keyMinRequestDelay:
			if n, err := strconv.Atoi(value); err == nil {
				out.MinRequestDelay = n
			}
		case keyMaxRequestDelay:
			if n, err := strconv.Atoi(value); err == nil {
				out.MaxRequestDelay = n
			}
		case keyProxyList:
			var list []string
			if err := json.Unmarshal([]byte(value), &list); err == nil {
				out.ProxyList = list
			}
		}
	}
	return out, rows.Err()
}

// SaveSettings writes every field of the given settings, replacing any
// previously stored values.
func (s *Store) SaveSettings(settings engine.Settings) error {
	proxyList, err := json.Marshal(settings.ProxyList)
	if err != nil {
		return fmt.Errorf("store: encode proxy list: %w", err)
	}
	pairs := map[string]string{
		keyUseProxy:        strconv.FormatBool(settings.UseProxy),
		keyHeadless:        strconv.FormatBool(settings.Headless),
		keyMinRequestDelay: strconv.Itoa(settings.MinRequestDelay),
		keyMaxRequestDelay: strconv.Itoa(settings.MaxRequestDelay),
		keyProxyList:       string(proxyList),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: save settings: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for key, value := range pairs {
		if _, err := tx.Exec(
			`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
			key, value, now,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("store: save setting %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// SettingsPatch carries partial updates; nil fields are left untouched.
type SettingsPatch struct {
	UseProxy        *bool    `json:"use_proxy,omitempty" jsonschema:"Route engine traffic through the proxy pool"`
	ProxyList       []string `json:"proxy_list,omitempty" jsonschema:"Outbound proxy URLs (http, socks5, socks5h)"`
	MinRequestDelay *int     `json:"min_request_delay,omitempty" jsonschema:"Browser pacing window lower bound, milliseconds"`
	MaxRequestDelay *int     `json:"max_request_delay,omitempty" jsonschema:"Browser pacing window upper bound, milliseconds"`
	Headless        *bool    `json:"headless,omitempty" jsonschema:"Run the scraping browser without a visible window"`
}

// UpdateSettings applies a partial patch over the current effective settings
// and persists the merged result, returning it.
func (s *Store) UpdateSettings(patch SettingsPatch) (engine.Settings, error) {
	current, err := s.Settings()
	if err != nil {
		return current, err
	}
	if patch.UseProxy != nil {
		current.UseProxy = *patch.UseProxy
	}
	if patch.ProxyList != nil {
		current.ProxyList = normalizeProxyList(patch.ProxyList)
	}
	if patch.MinRequestDelay != nil {
		current.MinRequestDelay = *patch.MinRequestDelay
	}
	if patch.MaxRequestDelay != nil {
		current.MaxRequestDelay = *patch.MaxRequestDelay
	}
	if patch.Headless != nil {
		current.Headless = *patch.Headless
	}
	if current.MinRequestDelay > current.MaxRequestDelay {
		return current, fmt.Errorf("store: min_request_delay %d exceeds max_request_delay %d",
			current.MinRequestDelay, current.MaxRequestDelay)
	}
	if err := s.SaveSettings(current); err != nil {
		return current, err
	}
	return current, nil
}

func normalizeProxyList(list []string) []string {
	out := make([]string, 0, len(list))
	for _, raw := range list {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
