// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package transcoder

import (
	"net/url"
	"strings"
)

// BuildURL builds the RTSP URL for a camera. Credentials are embedded only
// when both username and password are non-empty.
func BuildURL(username, password, address, path string) string {
	u := url.URL{
		Scheme: "rtsp",
		Host:   strings.TrimSpace(address),
	}
	if username != "" && password != "" {
		u.User = url.UserPassword(username, password)
	}
	p, query := splitPath(path)
	u.Path = "/" + p
	u.RawQuery = query
	return u.String()
}

// TrimPath returns the stream path without its query and without leading or
// trailing slashes. An empty result means there is no path to request.
func TrimPath(path string) string {
	p, _ := splitPath(path)
	return p
}

func splitPath(path string) (string, string) {
	p, query, _ := strings.Cut(strings.TrimSpace(path), "?")
	return strings.Trim(p, "/"), query
}

// RedactURL removes credentials from a URL for logging.
func RedactURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url-redacted"
	}
	if parsed.User != nil {
		parsed.User = url.UserPassword("xxxxx", "xxxxx")
	}
	return parsed.String()
}
