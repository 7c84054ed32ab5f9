// Package probe is the public API for timing a single plain-HTTP GET.
//
// A Client resolves the host, opens a TCP connection to port 80, sends one
// "Connection: close" request and reads until the server hangs up. The
// returned Response carries the phase breakdown alongside the decoded header
// block and body.
//
// Basic Usage:
//
//	client := probe.NewClient(
//	    probe.WithTimeout(3*time.Second),
//	    probe.WithDNSServer("1.1.1.1"),
//	)
//
//	resp, err := client.Get("http://example.com/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Status: %d\n", resp.StatusCode)
//	fmt.Printf("TTFB: %.3fms\n", resp.GetTimeToFirstByteMillis())
//
// Errors:
//
// Every failure is a *Error whose Kind names the stage that failed.
//
//	var pe *probe.Error
//	if errors.As(err, &pe) && pe.Kind == probe.KindResolutionFailed {
//	    // unknown host
//	}
//
// Thread Safety:
//
// Client holds no per-request state; each Get opens and closes its own
// connection, so one Client may be shared between goroutines.
package probe
