package probe

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeDialer answers every connection with response over net.Pipe.
type pipeDialer struct {
	response string
}

func (d pipeDialer) Dial(ctx context.Context, addr string, timeout time.Duration) (net.Conn, error) {
	client, server := net.Pipe()
	go func() {
		defer server.Close()
		if _, err := http.ReadRequest(bufio.NewReader(server)); err != nil {
			return
		}
		server.Write([]byte(d.response))
	}()
	return client, nil
}

type staticResolver net.IP

func (r staticResolver) Resolve(ctx context.Context, host string) (net.IP, error) {
	return net.IP(r), nil
}

func TestClient_Get(t *testing.T) {
	client := NewClient(
		WithTimeout(time.Second),
		WithResolver(staticResolver(net.ParseIP("192.0.2.7"))),
		WithDialer(pipeDialer{response: "HTTP/1.1 201 Created\r\nContent-Type: application/json\r\nX-Id: 9\r\n\r\n{\"user\":{\"name\":\"ada\"}}"}),
	)

	resp, err := client.Get("example.com/users")
	require.NoError(t, err)

	assert.Equal(t, "http://example.com/users", resp.URL)
	assert.Equal(t, "192.0.2.7:80", resp.Address)
	assert.Equal(t, 201, resp.StatusCode)
	assert.Equal(t, "HTTP/1.1 201 Created", resp.Status)
	assert.True(t, resp.IsSuccess())
	assert.False(t, resp.IsError())
	assert.Equal(t, "9", resp.GetHeader("x-id"))
	assert.Equal(t, "ada", resp.GetJSONPath("user.name").String())

	var body struct {
		User struct {
			Name string `json:"name"`
		} `json:"user"`
	}
	require.NoError(t, resp.GetBodyAsJSON(&body))
	assert.Equal(t, "ada", body.User.Name)

	timing := resp.Timing
	assert.Equal(t, timing.TotalTime, timing.DNSLookupTime+timing.TCPConnectTime+timing.TimeToFirstByte+timing.ContentTransferTime)
	assert.InDelta(t, resp.GetTotalTimeMillis(),
		resp.GetDNSLookupTimeMillis()+resp.GetTCPConnectTimeMillis()+resp.GetTimeToFirstByteMillis()+resp.GetContentTransferTimeMillis(), 1e-6)
}

func TestClient_GetWithoutBody(t *testing.T) {
	resp, err := Get("http://192.0.2.1/", WithDialer(pipeDialer{response: "HTTP/1.1 500 Oops\r\n"}))
	require.NoError(t, err)

	assert.False(t, resp.HasBody())
	assert.True(t, resp.IsServerError())
	assert.Equal(t, "HTTP/1.1 500 Oops\r\n", resp.RawHeaders())

	_, err = resp.GetBodyAsString()
	assert.ErrorIs(t, err, ErrNoBody)
	assert.False(t, resp.GetJSONPath("anything").Exists())
}

func TestClient_Errors(t *testing.T) {
	_, err := Get("https://example.com")
	require.Error(t, err)

	var pe *Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, KindUnsupportedScheme, pe.Kind)

	_, err = Get("")
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, KindMalformedLocator, pe.Kind)
}

func TestResponse_StatusClasses(t *testing.T) {
	tests := []struct {
		code                                     int
		success, redirect, client, server, isErr bool
	}{
		{200, true, false, false, false, false},
		{301, false, true, false, false, false},
		{404, false, false, true, false, true},
		{503, false, false, false, true, true},
		{0, false, false, false, false, false},
	}

	for _, tt := range tests {
		r := &Response{StatusCode: tt.code}
		assert.Equal(t, tt.success, r.IsSuccess(), "IsSuccess(%d)", tt.code)
		assert.Equal(t, tt.redirect, r.IsRedirect(), "IsRedirect(%d)", tt.code)
		assert.Equal(t, tt.client, r.IsClientError(), "IsClientError(%d)", tt.code)
		assert.Equal(t, tt.server, r.IsServerError(), "IsServerError(%d)", tt.code)
		assert.Equal(t, tt.isErr, r.IsError(), "IsError(%d)", tt.code)
	}
}
