package probe

import "time"

// Timestamps are the monotonic instants captured at each pipeline stage boundary.
// They are only meaningful relative to each other, never as wall-clock time.
type Timestamps struct {
	Start     time.Time
	Resolved  time.Time
	Connected time.Time
	FirstByte time.Time
	Complete  time.Time
}

// Metrics is the per-phase latency breakdown of one probe.
type Metrics struct {
	// DNS is the time spent resolving the host name
	DNS time.Duration

	// Connect is the time spent establishing the TCP connection
	Connect time.Duration

	// TTFB is the time from connection established to the first inbound chunk
	TTFB time.Duration

	// Transfer is the time from the first inbound chunk to peer close
	Transfer time.Duration

	// Total is the time from start to peer close
	Total time.Duration
}

// ComputeMetrics derives phase durations from consecutive timestamps.
// Durations are integer nanoseconds, so Total always equals the sum of the phases.
func ComputeMetrics(ts Timestamps) Metrics {
	return Metrics{
		DNS:      ts.Resolved.Sub(ts.Start),
		Connect:  ts.Connected.Sub(ts.Resolved),
		TTFB:     ts.FirstByte.Sub(ts.Connected),
		Transfer: ts.Complete.Sub(ts.FirstByte),
		Total:    ts.Complete.Sub(ts.Start),
	}
}

// Millis converts a duration to fractional milliseconds.
func Millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
