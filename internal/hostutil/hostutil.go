// Package hostutil turns --host values into remote base URLs.
package hostutil

import (
	"net"
	"strings"
)

// Normalize converts a host string to a base URL without a trailing slash.
//   - "" returns ""
//   - ":3000" means localhost on that port
//   - loopback hosts default to http://, everything else to https://
//   - full URLs are kept
func Normalize(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	switch {
	case strings.HasPrefix(host, "http://"), strings.HasPrefix(host, "https://"):
	case IsLocalhost(host):
		host = "http://" + host
	default:
		host = "https://" + host
	}
	return strings.TrimRight(host, "/")
}

// IsLocalhost reports whether host (optionally with port and path) names the
// local machine: localhost, *.localhost, 127.0.0.0/8 or ::1.
func IsLocalhost(host string) bool {
	if i := strings.Index(host, "/"); i >= 0 {
		host = host[:i]
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")

	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
