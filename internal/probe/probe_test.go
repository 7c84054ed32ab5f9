package probe

import (
	"bytes"
	"errors"
	"net"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe_UnsupportedSchemeNeverTouchesNetwork(t *testing.T) {
	for _, locator := range []string{
		"https://example.com/",
		"ftp://example.com/pub",
		"file:/etc/passwd",
		"mailto:someone@example.com",
		"https:/example.com/x",
		"https:example.com",
	} {
		t.Run(locator, func(t *testing.T) {
			resolver := &fakeResolver{ip: net.ParseIP("192.0.2.10")}
			dialer := &fakeDialer{conn: &fakeConn{}}
			prober := NewProber(WithResolver(resolver), WithDialer(dialer))

			result, err := prober.Probe(locator)

			assert.Nil(t, result)
			require.Error(t, err)
			assert.True(t, IsKind(err, KindUnsupportedScheme))
			assert.Equal(t, 0, resolver.calls)
			assert.Equal(t, 0, dialer.calls)
		})
	}
}

func TestProbe_Success(t *testing.T) {
	conn := &fakeConn{chunks: [][]byte{[]byte(okResponse)}}
	var logs bytes.Buffer
	prober := NewProber(
		WithResolver(&fakeResolver{ip: net.ParseIP("192.0.2.10")}),
		WithDialer(&fakeDialer{conn: conn}),
		WithLogger(zerolog.New(&logs).Level(zerolog.DebugLevel)),
	)

	result, err := prober.Probe("example.com")
	require.NoError(t, err)

	assert.Equal(t, Target{Host: "example.com", Path: "/", Port: 80}, result.Target)
	assert.Equal(t, "192.0.2.10:80", result.Address)
	assert.Equal(t, len(okResponse), result.Bytes)
	assert.Equal(t, "Hello", result.Response.Body)
	assert.Equal(t, result.Metrics.Total, result.Metrics.DNS+result.Metrics.Connect+result.Metrics.TTFB+result.Metrics.Transfer)

	assert.Contains(t, logs.String(), `"message":"resolved"`)
	assert.Contains(t, logs.String(), `"message":"peer closed"`)
}

func TestProbe_FailureReturnsNoResult(t *testing.T) {
	conn := &fakeConn{
		chunks:  [][]byte{[]byte("HTTP/1.1 200 OK\r\n")},
		readErr: errors.New("connection reset by peer"),
	}
	prober := NewProber(
		WithResolver(&fakeResolver{ip: net.ParseIP("192.0.2.10")}),
		WithDialer(&fakeDialer{conn: conn}),
	)

	result, err := prober.Probe("http://example.com/")

	assert.Nil(t, result)
	var pe *Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, KindReceiveFailed, pe.Kind)
	assert.Equal(t, "receive", pe.Op)
	assert.False(t, pe.Timeout())
	assert.Contains(t, pe.Error(), "connection reset by peer")
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "unsupported scheme", KindUnsupportedScheme.String())
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "kind(99)", Kind(99).String())
}
