package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	APISearchRequests     atomic.Int64
	BrowserSearchRequests atomic.Int64
	QuotaUnits            atomic.Int64
	ExtractedItems        atomic.Int64
	ExtractErrors         atomic.Int64
	ProxyEvictions        atomic.Int64
	ExportRequests        atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"api_search_requests":     metrics.APISearchRequests.Load(),
		"browser_search_requests": metrics.BrowserSearchRequests.Load(),
		"quota_units_estimate":    metrics.QuotaUnits.Load(),
		"extracted_items":         metrics.ExtractedItems.Load(),
		"extract_errors":          metrics.ExtractErrors.Load(),
		"proxy_evictions":         metrics.ProxyEvictions.Load(),
		"export_requests":         metrics.ExportRequests.Load(),
		"cache_hits":              hits,
		"cache_misses":            misses,
	}
}

// FormatMetrics returns metrics as a simple text format for the HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"api_search_requests", "browser_search_requests",
		"quota_units_estimate",
		"extracted_items", "extract_errors",
		"proxy_evictions", "export_requests",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sub-packages.
func IncrAPISearch() { metrics.APISearchRequests.Add(1) }

func IncrBrowserSearch() { metrics.BrowserSearchRequests.Add(1) }

func IncrExtracted() { metrics.ExtractedItems.Add(1) }

func IncrExtractError() { metrics.ExtractErrors.Add(1) }

func IncrProxyEviction() { metrics.ProxyEvictions.Add(1) }

func IncrExport() { metrics.ExportRequests.Add(1) }

func AddQuotaUnits(n int64) { metrics.QuotaUnits.Add(n) }
