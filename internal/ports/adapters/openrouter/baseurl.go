package openrouter

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const defaultBaseURL = "https://openrouter.ai"

// ErrBaseURL wraps every base URL rejection.
var ErrBaseURL = errors.New("invalid OPENROUTER_BASE_URL")

var defaultAllowedHosts = map[string]struct{}{
	"openrouter.ai":     {},
	"api.openrouter.ai": {},
}

func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return strings.TrimRight(baseURL, "/")
}

// ValidateBaseURL accepts only absolute https URLs whose host is allow-listed.
// An empty allow-list means the public OpenRouter hosts.
func ValidateBaseURL(baseURL string, allowedHosts []string) error {
	baseURL = normalizeBaseURL(baseURL)
	reject := func(reason string) error {
		return fmt.Errorf("%w %q: %s", ErrBaseURL, baseURL, reason)
	}

	u, err := url.Parse(baseURL)
	switch {
	case err != nil:
		return fmt.Errorf("%w: %v", ErrBaseURL, err)
	case !u.IsAbs() || u.Host == "":
		return reject("absolute URL with host is required")
	case u.User != nil:
		return reject("userinfo is not allowed")
	case u.RawQuery != "" || u.Fragment != "":
		return reject("query and fragment are not allowed")
	case !strings.EqualFold(u.Scheme, "https"):
		return reject("https is required")
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return reject("host is required")
	}
	if _, ok := normalizeAllowedHosts(allowedHosts)[host]; !ok {
		return reject(fmt.Sprintf("host %q is not in OPENROUTER_ALLOWED_HOSTS", host))
	}
	return nil
}

func normalizeAllowedHosts(allowedHosts []string) map[string]struct{} {
	out := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		v := strings.ToLower(strings.TrimSpace(h))
		v = strings.TrimPrefix(v, "http://")
		v = strings.TrimPrefix(v, "https://")
		v = strings.Trim(v, "/")
		if i := strings.Index(v, ":"); i >= 0 {
			v = v[:i]
		}
		if v != "" {
			out[v] = struct{}{}
		}
	}
	if len(out) == 0 {
		return defaultAllowedHosts
	}
	return out
}
