package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

// Resolver turns a host name into a single address to connect to.
type Resolver interface {
	Resolve(ctx context.Context, host string) (net.IP, error)
}

// Dialer opens a stream connection to addr within timeout.
type Dialer interface {
	Dial(ctx context.Context, addr string, timeout time.Duration) (net.Conn, error)
}

// SystemResolver resolves names through the operating system's resolver.
type SystemResolver struct {
	Resolver *net.Resolver
}

// Resolve returns the first IPv4 address for host, or the first IPv6 address
// when the host has no IPv4 address.
func (r SystemResolver) Resolve(ctx context.Context, host string) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip, nil
	}

	res := r.Resolver
	if res == nil {
		res = net.DefaultResolver
	}
	addrs, err := res.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}

	ips := make([]net.IP, 0, len(addrs))
	for _, a := range addrs {
		ips = append(ips, a.IP)
	}
	return pickAddress(host, ips)
}

// DNSResolver queries one DNS server directly, bypassing the system resolver.
// A records are asked for first and AAAA only when no A record exists.
type DNSResolver struct {
	// Server is the DNS server as host or host:port (port 53 by default)
	Server string

	// Net is the transport, "udp" (default) or "tcp"
	Net string
}

// NewDNSResolver returns a resolver that queries server directly.
func NewDNSResolver(server string) *DNSResolver {
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}
	return &DNSResolver{Server: server, Net: "udp"}
}

// Resolve implements Resolver.
func (r *DNSResolver) Resolve(ctx context.Context, host string) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip, nil
	}

	client := &dns.Client{Net: r.Net}
	if deadline, ok := ctx.Deadline(); ok {
		client.Timeout = time.Until(deadline)
	}

	var lastErr error
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		ips, err := r.query(ctx, client, host, qtype)
		if err != nil {
			var dnsErr *net.DNSError
			if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
				return nil, err
			}
			lastErr = err
			continue
		}
		if len(ips) > 0 {
			return ips[0], nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, &net.DNSError{Err: "no A or AAAA records found", Name: host, Server: r.Server, IsNotFound: true}
}

func (r *DNSResolver) query(ctx context.Context, client *dns.Client, host string, qtype uint16) ([]net.IP, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), qtype)
	msg.RecursionDesired = true

	resp, _, err := client.ExchangeContext(ctx, msg, r.Server)
	if err != nil {
		return nil, fmt.Errorf("query %s %s via %s: %w", dns.TypeToString[qtype], host, r.Server, err)
	}

	switch resp.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, &net.DNSError{Err: "no such host", Name: host, Server: r.Server, IsNotFound: true}
	default:
		return nil, fmt.Errorf("server %s returned %s for %s %s", r.Server, dns.RcodeToString[resp.Rcode], dns.TypeToString[qtype], host)
	}

	var ips []net.IP
	for _, rr := range resp.Answer {
		switch rec := rr.(type) {
		case *dns.A:
			if qtype == dns.TypeA {
				ips = append(ips, rec.A)
			}
		case *dns.AAAA:
			if qtype == dns.TypeAAAA {
				ips = append(ips, rec.AAAA)
			}
		}
	}
	return ips, nil
}

func pickAddress(host string, ips []net.IP) (net.IP, error) {
	for _, ip := range ips {
		if ip.To4() != nil {
			return ip, nil
		}
	}
	for _, ip := range ips {
		if ip.To16() != nil {
			return ip, nil
		}
	}
	return nil, &net.DNSError{Err: "no addresses found", Name: host, IsNotFound: true}
}

// NetDialer dials TCP connections with net.Dialer.
type NetDialer struct{}

// Dial implements Dialer.
func (NetDialer) Dial(ctx context.Context, addr string, timeout time.Duration) (net.Conn, error) {
	d := &net.Dialer{Timeout: timeout}
	return d.DialContext(ctx, "tcp", addr)
}
