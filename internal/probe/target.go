package probe

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DefaultPort is the only destination port the probe ever connects to.
// Ports written in the locator are ignored.
const DefaultPort = 80

// schemePrefix matches an RFC 3986 scheme followed by its colon.
var schemePrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:`)

// Target is a validated probe destination.
type Target struct {
	Host string
	Path string
	Port int
}

// ParseTarget validates a locator string and extracts the host and request path.
//
// Locators without a scheme are accepted ("example.com/status"). Any scheme
// other than http is rejected before any network activity. Credentials and
// ports embedded in the authority are dropped; Port is always DefaultPort.
func ParseTarget(locator string) (Target, error) {
	raw := strings.TrimSpace(locator)
	if raw == "" {
		return Target{}, &Error{Kind: KindMalformedLocator, Op: "parse", Target: locator}
	}

	if !hasScheme(raw) && !strings.HasPrefix(raw, "//") {
		raw = "//" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, &Error{Kind: KindMalformedLocator, Op: "parse", Target: locator, Err: err}
	}

	if u.Scheme != "" && !strings.EqualFold(u.Scheme, "http") {
		return Target{}, &Error{Kind: KindUnsupportedScheme, Op: "parse", Target: locator, Err: fmt.Errorf("scheme %q", u.Scheme)}
	}

	host := u.Hostname()
	if host == "" {
		return Target{}, &Error{Kind: KindMalformedLocator, Op: "parse", Target: locator}
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	return Target{Host: host, Path: path, Port: DefaultPort}, nil
}

// hasScheme reports whether raw starts with a scheme. "host:port" forms,
// where only digits follow the colon up to the path, are not schemes.
func hasScheme(raw string) bool {
	prefix := schemePrefix.FindString(raw)
	if prefix == "" {
		return false
	}
	rest := raw[len(prefix):]
	if strings.HasPrefix(rest, "//") {
		return true
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	return strings.Trim(rest, "0123456789") != ""
}

// Request returns the exact bytes written to the socket for this target.
func (t Target) Request() []byte {
	return []byte("GET " + t.Path + " HTTP/1.1\r\nHost: " + t.authority() + "\r\nConnection: close\r\n\r\n")
}

// String renders the target as an http URL.
func (t Target) String() string {
	return "http://" + t.authority() + t.Path
}

// authority brackets IPv6 literals.
func (t Target) authority() string {
	if strings.Contains(t.Host, ":") {
		return "[" + t.Host + "]"
	}
	return t.Host
}
