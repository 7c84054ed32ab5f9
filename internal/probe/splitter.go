package probe

import (
	"bytes"
	"mime"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
)

// NoBody is the body text reported when the response has no header/body delimiter.
const NoBody = "(No body content found)"

var headerDelimiter = []byte("\r\n\r\n")

// ParsedResponse is the decoded header and body text of a raw response.
type ParsedResponse struct {
	// Header is everything before the first blank line
	Header string

	// Body is everything after the first blank line, or NoBody
	Body string

	// HasBody is false when no delimiter was found
	HasBody bool
}

// Split separates a raw response into header and body text at the first CRLFCRLF.
// It never fails: invalid UTF-8 is replaced with U+FFFD.
func Split(raw []byte) ParsedResponse {
	idx := bytes.Index(raw, headerDelimiter)
	if idx < 0 {
		return ParsedResponse{Header: decodeUTF8(raw), Body: NoBody}
	}

	header := decodeUTF8(raw[:idx])
	return ParsedResponse{
		Header:  header,
		Body:    decodeBody(raw[idx+len(headerDelimiter):], header),
		HasBody: true,
	}
}

// StatusLine returns the first line of the header block.
func (p ParsedResponse) StatusLine() string {
	line, _, _ := strings.Cut(p.Header, "\r\n")
	return line
}

// StatusCode parses the status code from the status line, or returns 0.
func (p ParsedResponse) StatusCode() int {
	fields := strings.Fields(p.StatusLine())
	if len(fields) < 2 || !strings.HasPrefix(fields[0], "HTTP/") {
		return 0
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0
	}
	return code
}

// HeaderValue returns the first value of the named header, matched case-insensitively.
func (p ParsedResponse) HeaderValue(name string) string {
	lines := strings.Split(p.Header, "\r\n")
	for _, line := range lines[1:] {
		key, value, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(key), name) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func decodeUTF8(b []byte) string {
	s, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(s)
}

// decodeBody transcodes the body from the charset declared in Content-Type,
// falling back to permissive UTF-8.
func decodeBody(body []byte, header string) string {
	contentType := ParsedResponse{Header: header}.HeaderValue("Content-Type")
	if contentType == "" {
		return decodeUTF8(body)
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil || params["charset"] == "" {
		return decodeUTF8(body)
	}

	enc, name := charset.Lookup(params["charset"])
	if enc == nil || name == "utf-8" {
		return decodeUTF8(body)
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return decodeUTF8(body)
	}
	return string(decoded)
}
