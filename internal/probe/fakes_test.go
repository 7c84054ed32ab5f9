package probe

import (
	"bytes"
	"context"
	"io"
	"net"
	"time"
)

// timeoutError is a net.Error that reports a timeout.
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

type fakeResolver struct {
	ip    net.IP
	err   error
	calls int
}

func (r *fakeResolver) Resolve(ctx context.Context, host string) (net.IP, error) {
	r.calls++
	return r.ip, r.err
}

type fakeDialer struct {
	conn  net.Conn
	err   error
	calls int
	addr  string
}

func (d *fakeDialer) Dial(ctx context.Context, addr string, timeout time.Duration) (net.Conn, error) {
	d.calls++
	d.addr = addr
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

// fakeConn replays chunks on Read and records writes and closes.
type fakeConn struct {
	chunks   [][]byte
	readErr  error // returned once chunks are exhausted, io.EOF when nil
	writeErr error

	written bytes.Buffer
	writes  int
	reads   int
	closes  int
}

func (c *fakeConn) Read(b []byte) (int, error) {
	c.reads++
	if len(c.chunks) == 0 {
		if c.readErr != nil {
			return 0, c.readErr
		}
		return 0, io.EOF
	}
	n := copy(b, c.chunks[0])
	if n < len(c.chunks[0]) {
		c.chunks[0] = c.chunks[0][n:]
	} else {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

func (c *fakeConn) Write(b []byte) (int, error) {
	c.writes++
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	return c.written.Write(b)
}

func (c *fakeConn) Close() error {
	c.closes++
	return nil
}

func (c *fakeConn) LocalAddr() net.Addr                { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)} }
func (c *fakeConn) RemoteAddr() net.Addr               { return &net.TCPAddr{IP: net.IPv4(192, 0, 2, 1), Port: 80} }
func (c *fakeConn) SetDeadline(t time.Time) error      { return nil }
func (c *fakeConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(t time.Time) error { return nil }

func newFakePipeline(resolver Resolver, dialer Dialer) *Pipeline {
	p := NewPipeline(time.Second)
	p.Resolver = resolver
	p.Dialer = dialer
	return p
}
