package probe

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/tidwall/gjson"

	"github.com/wesleyorama2/rawprobe/internal/probe"
)

// ErrNoBody is returned by the body accessors when the response had no body
// separator.
var ErrNoBody = errors.New("response has no body")

// Timing contains the phase durations of one probe.
// Each phase starts where the previous one ended, so the phases add up to
// TotalTime exactly.
type Timing struct {
	DNSLookupTime       time.Duration `json:"dnsLookupTime"`
	TCPConnectTime      time.Duration `json:"tcpConnectTime"`
	TimeToFirstByte     time.Duration `json:"timeToFirstByte"`
	ContentTransferTime time.Duration `json:"contentTransferTime"`
	TotalTime           time.Duration `json:"totalTime"`
}

// Response represents a probed HTTP response.
type Response struct {
	URL        string `json:"url"`
	Address    string `json:"address"`
	StatusCode int    `json:"statusCode"`
	Status     string `json:"status"`
	Timing     Timing `json:"timing"`

	// Bytes is the raw size on the wire, header block included.
	Bytes int `json:"bytes"`

	parsed probe.ParsedResponse
}

func newResponse(result *probe.Result) *Response {
	m := result.Metrics
	return &Response{
		URL:        result.Target.String(),
		Address:    result.Address,
		StatusCode: result.Response.StatusCode(),
		Status:     result.Response.StatusLine(),
		Bytes:      result.Bytes,
		Timing: Timing{
			DNSLookupTime:       m.DNS,
			TCPConnectTime:      m.Connect,
			TimeToFirstByte:     m.TTFB,
			ContentTransferTime: m.Transfer,
			TotalTime:           m.Total,
		},
		parsed: result.Response,
	}
}

// RawHeaders returns the header block as received, status line included.
func (r *Response) RawHeaders() string {
	return r.parsed.Header
}

// HasBody reports whether a header/body separator was found.
func (r *Response) HasBody() bool {
	return r.parsed.HasBody
}

// GetBodyAsString returns the decoded body text.
func (r *Response) GetBodyAsString() (string, error) {
	if !r.parsed.HasBody {
		return "", ErrNoBody
	}
	return r.parsed.Body, nil
}

// GetBodyAsJSON unmarshals the response body into the provided interface.
// Chunked bodies are not de-framed, so this only works for servers that send
// the payload in one piece.
func (r *Response) GetBodyAsJSON(v interface{}) error {
	body, err := r.GetBodyAsString()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(body), v)
}

// GetJSONPath looks up a gjson path in a JSON body.
//
// Example:
//
//	name := resp.GetJSONPath("user.name").String()
func (r *Response) GetJSONPath(path string) gjson.Result {
	body, _ := r.GetBodyAsString()
	return gjson.Get(body, path)
}

// GetHeader returns the value of the specified header.
// Returns an empty string if the header is not present.
func (r *Response) GetHeader(key string) string {
	return r.parsed.HeaderValue(key)
}

// IsSuccess returns true if the response status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsRedirect returns true if the response status code is in the 3xx range.
func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

// IsClientError returns true if the response status code is in the 4xx range.
func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

// IsServerError returns true if the response status code is in the 5xx range.
func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500 && r.StatusCode < 600
}

// IsError returns true if the response status code indicates an error (4xx or 5xx).
func (r *Response) IsError() bool {
	return r.IsClientError() || r.IsServerError()
}

// GetDNSLookupTimeMillis returns the DNS lookup time in milliseconds.
func (r *Response) GetDNSLookupTimeMillis() float64 {
	return probe.Millis(r.Timing.DNSLookupTime)
}

// GetTCPConnectTimeMillis returns the TCP connection time in milliseconds.
func (r *Response) GetTCPConnectTimeMillis() float64 {
	return probe.Millis(r.Timing.TCPConnectTime)
}

// GetTimeToFirstByteMillis returns the time to first byte in milliseconds.
func (r *Response) GetTimeToFirstByteMillis() float64 {
	return probe.Millis(r.Timing.TimeToFirstByte)
}

// GetContentTransferTimeMillis returns the content transfer time in milliseconds.
func (r *Response) GetContentTransferTimeMillis() float64 {
	return probe.Millis(r.Timing.ContentTransferTime)
}

// GetTotalTimeMillis returns the total time in milliseconds.
func (r *Response) GetTotalTimeMillis() float64 {
	return probe.Millis(r.Timing.TotalTime)
}
