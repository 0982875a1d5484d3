// Package security provides shared security validation functions.
package security

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidateOrigin checks the Origin header of a WebSocket upgrade against the
// host it was sent to. Same-host origins are accepted, as are origins listed
// in allowed ("*" accepts any) and loopback-to-loopback connections. An empty
// origin comes from a non-browser client and is accepted.
func ValidateOrigin(origin, requestHost string, allowed []string) error {
	if origin == "" {
		return nil
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("invalid origin: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("origin scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("origin must have a host")
	}

	if strings.EqualFold(parsed.Host, requestHost) {
		return nil
	}
	for _, o := range allowed {
		if o == "*" || o == origin {
			return nil
		}
	}

	// localhost:8080 and 127.0.0.1:8080 are the same dev server
	if IsLoopbackHost(parsed.Hostname()) && IsLoopbackHost(hostname(requestHost)) {
		return nil
	}

	return fmt.Errorf("cross-origin request from %s is not allowed", origin)
}

// IsLoopbackHost reports whether host names the local machine.
func IsLoopbackHost(host string) bool {
	hostLower := strings.ToLower(host)
	if hostLower == "localhost" || hostLower == "localhost.localdomain" {
		return true
	}
	ip := net.ParseIP(strings.Trim(host, "[]"))
	return ip != nil && ip.IsLoopback()
}

// hostname strips the port from a host[:port] value.
func hostname(hostport string) string {
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return host
	}
	return hostport
}
