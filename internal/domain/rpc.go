package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateRPCURL checks that raw is an http, https, ws or wss endpoint with a host
func ValidateRPCURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidRPCURL, raw, err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("%w: %q: scheme must be http, https, ws or wss", ErrInvalidRPCURL, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %q: missing host", ErrInvalidRPCURL, raw)
	}
	return nil
}

// IsWebSocketURL reports whether raw uses a websocket scheme
func IsWebSocketURL(raw string) bool {
	return strings.HasPrefix(raw, "ws://") || strings.HasPrefix(raw, "wss://")
}
