package connection

import "strings"

// ImageURL resolves a possibly-relative image reference into a displayable
// absolute URL. Absolute URLs and inline data URIs pass through untouched;
// relative paths are joined onto the active base URL; empty input stays
// empty so callers can substitute their placeholder asset.
func (a *API) ImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	if strings.HasPrefix(raw, "data:") {
		return raw
	}
	base := strings.TrimRight(a.resolver.BaseURL(), "/")
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return base + raw
}

// ProfilePictureURL resolves an avatar reference the same way ImageURL
// does. The deterministic placeholder for an empty value is the caller's
// concern; an empty result signals "use the placeholder".
func (a *API) ProfilePictureURL(raw string) string {
	return a.ImageURL(raw)
}
