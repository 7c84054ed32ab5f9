package probe

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/wesleyorama2/rawprobe/internal/probe"
)

// Error is returned for every failed probe.
type Error = probe.Error

// Kind identifies the stage and cause of a failure.
type Kind = probe.Kind

// Failure kinds.
const (
	KindMalformedLocator   = probe.KindMalformedLocator
	KindUnsupportedScheme  = probe.KindUnsupportedScheme
	KindResolutionFailed   = probe.KindResolutionFailed
	KindConnectionFailed   = probe.KindConnectionFailed
	KindTransmissionFailed = probe.KindTransmissionFailed
	KindReceiveFailed      = probe.KindReceiveFailed
	KindTimeout            = probe.KindTimeout
)

// DefaultTimeout bounds resolution, connect and each read unless overridden.
const DefaultTimeout = probe.DefaultTimeout

// Resolver turns a host name into the address to connect to.
type Resolver = probe.Resolver

// Dialer opens the TCP connection.
type Dialer = probe.Dialer

// Client runs probes with a fixed configuration.
type Client struct {
	prober *probe.Prober
}

// ClientOption is a function that configures a Client.
type ClientOption func(*[]probe.Option)

// NewClient creates a new client with the given options.
//
// Example:
//
//	client := probe.NewClient(probe.WithTimeout(2 * time.Second))
func NewClient(options ...ClientOption) *Client {
	var opts []probe.Option
	for _, option := range options {
		option(&opts)
	}
	return &Client{prober: probe.NewProber(opts...)}
}

// WithTimeout sets the resolve, connect and per-read timeout.
// The default timeout is 5 seconds.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(opts *[]probe.Option) {
		*opts = append(*opts, probe.WithTimeout(timeout))
	}
}

// WithDNSServer resolves through the given server instead of the system
// resolver. A missing port defaults to 53.
func WithDNSServer(server string) ClientOption {
	return WithResolver(probe.NewDNSResolver(server))
}

// WithResolver sets a custom resolver.
func WithResolver(r Resolver) ClientOption {
	return func(opts *[]probe.Option) {
		*opts = append(*opts, probe.WithResolver(r))
	}
}

// WithDialer sets a custom dialer. Use this to route the connection somewhere
// other than the resolved address, e.g. in tests.
func WithDialer(d Dialer) ClientOption {
	return func(opts *[]probe.Option) {
		*opts = append(*opts, probe.WithDialer(d))
	}
}

// WithLogger receives debug events for each stage.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(opts *[]probe.Option) {
		*opts = append(*opts, probe.WithLogger(logger))
	}
}

// Get probes url and returns the timed response.
func (c *Client) Get(url string) (*Response, error) {
	result, err := c.prober.Probe(url)
	if err != nil {
		return nil, err
	}
	return newResponse(result), nil
}

// Get probes url with a one-off client.
func Get(url string, options ...ClientOption) (*Response, error) {
	return NewClient(options...).Get(url)
}
