package probe

import (
	"errors"
	"fmt"
	"net"
)

// Kind classifies why a probe failed.
type Kind int

const (
	// KindMalformedLocator means the locator has no usable host component
	KindMalformedLocator Kind = iota + 1
	// KindUnsupportedScheme means the locator names a scheme other than http
	KindUnsupportedScheme
	// KindResolutionFailed means the host name could not be resolved
	KindResolutionFailed
	// KindConnectionFailed means the TCP connection could not be opened in time
	KindConnectionFailed
	// KindTransmissionFailed means the request could not be written
	KindTransmissionFailed
	// KindReceiveFailed means reading the response failed
	KindReceiveFailed
	// KindTimeout means a read did not complete before its deadline
	KindTimeout
)

// String returns the name of the kind as shown to users.
func (k Kind) String() string {
	switch k {
	case KindMalformedLocator:
		return "malformed locator"
	case KindUnsupportedScheme:
		return "unsupported scheme"
	case KindResolutionFailed:
		return "resolution failed"
	case KindConnectionFailed:
		return "connection failed"
	case KindTransmissionFailed:
		return "transmission failed"
	case KindReceiveFailed:
		return "receive failed"
	case KindTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the only error type returned by the probe. Every Error is terminal:
// the probe stops at the stage that produced it and no partial result exists.
type Error struct {
	// Kind is the failure class
	Kind Kind

	// Op names the stage that failed (parse, resolve, connect, send, receive)
	Op string

	// Target is the host or locator the stage was working on
	Target string

	// Err is the underlying cause, if any
	Err error
}

// Error returns the error message
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s %s", e.Kind, e.Op, e.Target)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was caused by a deadline expiring.
func (e *Error) Timeout() bool {
	if e.Kind == KindTimeout {
		return true
	}
	return isTimeout(e.Err)
}

// IsKind reports whether err is a probe Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == kind
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// receiveError maps a failed read to KindTimeout or KindReceiveFailed.
func receiveError(host string, err error) *Error {
	kind := KindReceiveFailed
	if isTimeout(err) {
		kind = KindTimeout
	}
	return &Error{Kind: kind, Op: "receive", Target: host, Err: err}
}
