package probe

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds the connect and every read when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// readChunk is the size of each socket read.
const readChunk = 4096

// Pipeline runs the timed resolve, connect, send and receive stages for one target.
// A Pipeline holds no per-run state and may be reused for sequential runs.
type Pipeline struct {
	Resolver Resolver
	Dialer   Dialer
	Timeout  time.Duration
	Logger   zerolog.Logger

	// now is replaced in tests
	now func() time.Time
}

// NewPipeline returns a pipeline using the system resolver and a TCP dialer.
func NewPipeline(timeout time.Duration) *Pipeline {
	return &Pipeline{
		Resolver: SystemResolver{},
		Dialer:   NetDialer{},
		Timeout:  timeout,
		Logger:   zerolog.Nop(),
	}
}

// Run executes every stage in order and returns the stage timestamps and the
// raw response bytes. Any stage failure ends the run with a *Error and no data.
func (p *Pipeline) Run(target Target) (Timestamps, []byte, error) {
	ts, raw, _, err := p.run(target)
	return ts, raw, err
}

// run also reports the address that was connected to.
func (p *Pipeline) run(target Target) (Timestamps, []byte, string, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	clk := &clock{now: p.now}
	log := p.Logger.With().Str("host", target.Host).Logger()

	var ts Timestamps
	ts.Start = clk.stamp()

	ip, err := p.resolve(target.Host, timeout)
	if err != nil {
		return Timestamps{}, nil, "", err
	}
	ts.Resolved = clk.stamp()
	log.Debug().Str("address", ip.String()).Dur("elapsed", ts.Resolved.Sub(ts.Start)).Msg("resolved")

	addr := net.JoinHostPort(ip.String(), strconv.Itoa(target.Port))
	conn, err := p.dialer().Dial(context.Background(), addr, timeout)
	if err != nil {
		return Timestamps{}, nil, "", &Error{Kind: KindConnectionFailed, Op: "connect", Target: addr, Err: err}
	}
	handle := &connHandle{conn: conn}
	defer handle.release()
	ts.Connected = clk.stamp()
	log.Debug().Str("address", addr).Dur("elapsed", ts.Connected.Sub(ts.Resolved)).Msg("connected")

	if err := send(conn, target, timeout); err != nil {
		return Timestamps{}, nil, "", err
	}
	log.Debug().Str("path", target.Path).Msg("request sent")

	raw, done, err := readChunkWithin(conn, nil, timeout)
	if err != nil {
		return Timestamps{}, nil, "", receiveError(target.Host, err)
	}
	ts.FirstByte = clk.stamp()
	log.Debug().Int("bytes", len(raw)).Dur("elapsed", ts.FirstByte.Sub(ts.Connected)).Msg("first byte")

	for !done {
		raw, done, err = readChunkWithin(conn, raw, timeout)
		if err != nil {
			return Timestamps{}, nil, "", receiveError(target.Host, err)
		}
	}
	ts.Complete = clk.stamp()
	log.Debug().Int("bytes", len(raw)).Dur("elapsed", ts.Complete.Sub(ts.FirstByte)).Msg("peer closed")

	return ts, raw, addr, nil
}

func (p *Pipeline) resolve(host string, timeout time.Duration) (net.IP, error) {
	resolver := p.Resolver
	if resolver == nil {
		resolver = SystemResolver{}
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ip, err := resolver.Resolve(ctx, host)
	if err != nil {
		return nil, &Error{Kind: KindResolutionFailed, Op: "resolve", Target: host, Err: err}
	}
	return ip, nil
}

func (p *Pipeline) dialer() Dialer {
	if p.Dialer == nil {
		return NetDialer{}
	}
	return p.Dialer
}

// send writes the request in a single write.
func send(conn net.Conn, target Target, timeout time.Duration) error {
	req := target.Request()
	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return &Error{Kind: KindTransmissionFailed, Op: "send", Target: target.Host, Err: err}
	}
	n, err := conn.Write(req)
	if err == nil && n < len(req) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return &Error{Kind: KindTransmissionFailed, Op: "send", Target: target.Host, Err: err}
	}
	return nil
}

// readChunkWithin reads at most readChunk bytes under a fresh deadline and
// appends them to raw. done is true once the peer has closed the connection.
func readChunkWithin(conn net.Conn, raw []byte, timeout time.Duration) ([]byte, bool, error) {
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, false, err
	}
	buf := make([]byte, readChunk)
	n, err := conn.Read(buf)
	raw = append(raw, buf[:n]...)
	switch {
	case errors.Is(err, io.EOF):
		return raw, true, nil
	case err != nil:
		return nil, false, err
	case n == 0:
		// zero-length read without EOF is treated as peer close
		return raw, true, nil
	}
	return raw, false, nil
}

// connHandle owns the pipeline's connection. release closes it once; later
// calls do nothing.
type connHandle struct {
	conn net.Conn
}

func (h *connHandle) release() {
	if h.conn == nil {
		return
	}
	_ = h.conn.Close()
	h.conn = nil
}

// clock hands out non-decreasing timestamps.
type clock struct {
	now  func() time.Time
	last time.Time
}

func (c *clock) stamp() time.Time {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	t := now()
	if t.Before(c.last) {
		t = c.last
	}
	c.last = t
	return t
}
