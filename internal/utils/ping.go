package utils

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"
)

// platformPingTimeout bounds a single platform reachability check
const platformPingTimeout = 1500 * time.Millisecond

// PingService checks that a TCP connection to the URL's host can be opened
// within timeout or before ctx ends.
func PingService(ctx context.Context, serviceURL string, timeout time.Duration) error {
	parsedURL, err := url.Parse(serviceURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		return fmt.Errorf("invalid URL %q: no host", serviceURL)
	}

	port := parsedURL.Port()
	if port == "" {
		switch parsedURL.Scheme {
		case "https":
			port = "443"
		case "http":
			port = "80"
		default:
			return fmt.Errorf("invalid URL %q: unsupported scheme %q", serviceURL, parsedURL.Scheme)
		}
	}

	address := net.JoinHostPort(host, port)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	defer conn.Close()

	return nil
}

// PingPlatform checks if a tenant's platform host is reachable
func PingPlatform(ctx context.Context, baseURL string) error {
	return PingService(ctx, baseURL, platformPingTimeout)
}
