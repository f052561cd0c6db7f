package browser

import (
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"
)

// Anti-detection posture. The target site actively fingerprints automation,
// so the browser is launched with automation signals suppressed and a set of
// navigator properties spoofed at context-creation time.

// propertyOverride is one (property, spoofed value) pair applied before any
// page script runs.
type propertyOverride struct {
	Property string
	Value    string // JavaScript expression
}

// stealthOverrides is the declarative spoof list. navigator.* entries become
// getter overrides; window.* entries become plain assignments.
var stealthOverrides = []propertyOverride{
	{"navigator.webdriver", "undefined"},
	{"navigator.plugins", "[1, 2, 3, 4, 5]"},
	{"navigator.languages", `["en-US", "en"]`},
	{"window.chrome", "{ runtime: {} }"},
}

// permissionsPatch routes permission queries through the real Notification
// state, hiding the headless tell of auto-denied notification prompts.
const permissionsPatch = `
(() => {
  const originalQuery = window.navigator.permissions.query;
  window.navigator.permissions.query = (parameters) =>
    parameters.name === 'notifications'
      ? Promise.resolve({ state: Notification.permission })
      : originalQuery(parameters);
})();`

// stealthScript renders the override list into one init script.
func stealthScript() string {
	var sb strings.Builder
	for _, o := range stealthOverrides {
		dot := strings.LastIndex(o.Property, ".")
		owner, name := o.Property[:dot], o.Property[dot+1:]
		if owner == "window" {
			fmt.Fprintf(&sb, "window.%s = %s;\n", name, o.Value)
			continue
		}
		fmt.Fprintf(&sb, "Object.defineProperty(%s, '%s', { get: () => (%s) });\n", owner, name, o.Value)
	}
	sb.WriteString(permissionsPatch)
	return sb.String()
}

// allocatorOptions returns the Chrome launch flags: realistic viewport,
// automation-control signal disabled, optional proxy routing.
func allocatorOptions(headless bool, userAgent, proxyURL string) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-accelerated-2d-canvas", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("lang", "en-US"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(userAgent),
	)
	if proxyURL != "" {
		opts = append(opts, chromedp.ProxyServer(proxyURL))
	}
	return opts
}
