// Package probe performs a single timed HTTP GET over a raw TCP socket and
// breaks the request latency down into resolve, connect, first-byte and
// transfer phases.
//
// The probe speaks plain HTTP/1.1 to port 80 only. It sends one request with
// "Connection: close" and reads until the peer closes the socket, so no
// response framing is parsed.
//
// Basic usage:
//
//	prober := probe.NewProber(probe.WithTimeout(3 * time.Second))
//	result, err := prober.Probe("http://example.com/")
//	if err != nil {
//	    var pe *probe.Error
//	    if errors.As(err, &pe) && pe.Kind == probe.KindResolutionFailed {
//	        // ...
//	    }
//	}
//	fmt.Println(probe.Millis(result.Metrics.TTFB))
package probe

import (
	"time"

	"github.com/rs/zerolog"
)

// Result is the outcome of one successful probe.
type Result struct {
	// Target is the validated destination
	Target Target

	// Address is the host:port the connection was made to
	Address string

	// Metrics holds the phase durations
	Metrics Metrics

	// Response is the decoded header and body text
	Response ParsedResponse

	// Bytes is the raw response size
	Bytes int
}

// Prober runs probes with a fixed configuration.
type Prober struct {
	pipeline *Pipeline
	logger   zerolog.Logger
}

// Option configures a Prober
type Option func(*Prober)

// NewProber creates a prober with the given options
func NewProber(options ...Option) *Prober {
	p := &Prober{
		pipeline: NewPipeline(DefaultTimeout),
		logger:   zerolog.Nop(),
	}

	for _, option := range options {
		option(p)
	}
	p.pipeline.Logger = p.logger

	return p
}

// WithTimeout bounds the resolve, connect and every read
func WithTimeout(timeout time.Duration) Option {
	return func(p *Prober) {
		p.pipeline.Timeout = timeout
	}
}

// WithResolver replaces the system resolver
func WithResolver(r Resolver) Option {
	return func(p *Prober) {
		p.pipeline.Resolver = r
	}
}

// WithDialer replaces the TCP dialer
func WithDialer(d Dialer) Option {
	return func(p *Prober) {
		p.pipeline.Dialer = d
	}
}

// WithLogger sets the logger used for stage events
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Prober) {
		p.logger = logger
	}
}

// Probe validates locator, runs the pipeline, and returns the timing breakdown
// together with the decoded response. On failure the error is a *Error and
// the result is nil.
func (p *Prober) Probe(locator string) (*Result, error) {
	target, err := ParseTarget(locator)
	if err != nil {
		p.logger.Debug().Err(err).Str("locator", locator).Msg("rejected locator")
		return nil, err
	}

	ts, raw, addr, err := p.pipeline.run(target)
	if err != nil {
		p.logger.Debug().Err(err).Str("target", target.String()).Msg("probe failed")
		return nil, err
	}

	return &Result{
		Target:   target,
		Address:  addr,
		Metrics:  ComputeMetrics(ts),
		Response: Split(raw),
		Bytes:    len(raw),
	}, nil
}
