package scoutserver

import (
	"context"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ProxyCheckInput optionally overrides the configured pool.
type ProxyCheckInput struct {
	Proxies []string `json:"proxies,omitempty" jsonschema:"Proxy URLs to probe; defaults to the configured pool"`
}

// ProxyProbeResult is one endpoint's health.
type ProxyProbeResult struct {
	Proxy string `json:"proxy"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// ProxyCheckOutput is the pool health report.
type ProxyCheckOutput struct {
	Results []ProxyProbeResult `json:"results"`
	Healthy int                `json:"healthy"`
}

func (s *Server) registerProxyCheck(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "proxy_check",
		Description: "Probe proxy endpoints for outbound connectivity. Defaults to the configured pool. Probe failures are reported per endpoint, never raised as errors.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input ProxyCheckInput) (*mcp.CallToolResult, ProxyCheckOutput, error) {
		proxies := input.Proxies
		if len(proxies) == 0 {
			settings, err := s.store.Settings()
			if err != nil {
				return nil, ProxyCheckOutput{}, err
			}
			proxies = settings.ProxyList
		}

		out := ProxyCheckOutput{Results: make([]ProxyProbeResult, 0, len(proxies))}
		for _, p := range proxies {
			res := ProxyProbeResult{Proxy: p, OK: true}
			if err := engine.ProbeProxy(ctx, p); err != nil {
				res.OK = false
				res.Error = err.Error()
			} else {
				out.Healthy++
			}
			out.Results = append(out.Results, res)
		}
		return nil, out, nil
	})
}
