package output

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wesleyorama2/rawprobe/internal/probe"
)

// DefaultPreviewLimit is the number of body characters shown in the text report
const DefaultPreviewLimit = 200

const (
	metricColumnWidth   = 30
	durationColumnWidth = 15
)

// Formatter renders probe results as a human-readable text report
type Formatter struct {
	Verbose      bool
	NoColor      bool
	PreviewLimit int
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	return &Formatter{
		Verbose:      verbose,
		NoColor:      noColor,
		PreviewLimit: DefaultPreviewLimit,
	}
}

func (f *Formatter) scheme() *ColorScheme {
	if f.NoColor {
		return NoColorScheme()
	}
	return DefaultColorScheme()
}

// FormatStart formats the banner printed before a probe starts
func (f *Formatter) FormatStart(locator string) string {
	return f.scheme().Heading.Sprintf("--- Starting Analysis for: %s ---", locator) + "\n"
}

// FormatResult formats the timing table, header block and body preview
func (f *Formatter) FormatResult(result *probe.Result) string {
	var buf strings.Builder
	scheme := f.scheme()
	m := result.Metrics

	buf.WriteString("\n" + scheme.Heading.Sprint("--- TIMING METRICS (ms) ---") + "\n")
	buf.WriteString(fmt.Sprintf("| %-*s | %-*s |\n", metricColumnWidth, "Metric", durationColumnWidth, "Duration (ms)"))
	buf.WriteString(fmt.Sprintf("| %s | %s |\n", strings.Repeat("-", metricColumnWidth), strings.Repeat("-", durationColumnWidth)))
	writeMetricRow(&buf, scheme.Metric.Sprint, "DNS Lookup Duration", m.DNS)
	writeMetricRow(&buf, scheme.Metric.Sprint, "TCP Connection Duration", m.Connect)
	writeMetricRow(&buf, scheme.Metric.Sprint, "Time to First Byte (TTFB)", m.TTFB)
	writeMetricRow(&buf, scheme.Metric.Sprint, "Content Transfer Duration", m.Transfer)
	writeMetricRow(&buf, scheme.Total.Sprint, "Total Request Time", m.Total)

	if f.Verbose {
		buf.WriteString("\n" + scheme.Heading.Sprint("--- CONNECTION ---") + "\n")
		buf.WriteString(fmt.Sprintf("URL:      %s\n", result.Target))
		buf.WriteString(fmt.Sprintf("Address:  %s\n", result.Address))
		buf.WriteString(fmt.Sprintf("Received: %d bytes\n", result.Bytes))
	}

	buf.WriteString("\n" + scheme.Heading.Sprint("--- RESPONSE HEADERS ---") + "\n")
	buf.WriteString(f.formatHeaders(scheme, result.Response))
	buf.WriteString("\n")

	buf.WriteString("\n" + scheme.Heading.Sprint("--- RESPONSE BODY PREVIEW ---") + "\n")
	buf.WriteString(PreviewBody(result.Response.Body, f.PreviewLimit))
	buf.WriteString("\n")

	return buf.String()
}

// FormatError formats a probe failure
func (f *Formatter) FormatError(err error) string {
	scheme := f.scheme()
	msg := err.Error()
	var pe *probe.Error
	if errors.As(err, &pe) && pe.Timeout() && pe.Kind != probe.KindTimeout {
		msg += " (timed out)"
	}
	return fmt.Sprintf("%s %s\n", ErrorIcon(f.NoColor), scheme.Error.Sprint("Error: "+msg))
}

func (f *Formatter) formatHeaders(scheme *ColorScheme, resp probe.ParsedResponse) string {
	lines := strings.Split(resp.Header, "\r\n")
	if resp.StatusCode() != 0 {
		lines[0] = scheme.StatusColor(resp.StatusCode()).Sprint(lines[0])
		for i := 1; i < len(lines); i++ {
			if key, value, ok := strings.Cut(lines[i], ":"); ok {
				lines[i] = scheme.HeaderKey.Sprint(key) + ":" + value
			}
		}
	}
	return strings.Join(lines, "\n")
}

func writeMetricRow(buf *strings.Builder, paint func(a ...interface{}) string, name string, d time.Duration) {
	value := center(fmt.Sprintf("%.3f", probe.Millis(d)), durationColumnWidth)
	buf.WriteString(fmt.Sprintf("| %-*s | %s |\n", metricColumnWidth, name, paint(value)))
}

// center pads s with spaces on both sides to width, extra space going right.
func center(s string, width int) string {
	gap := width - len(s)
	if gap <= 0 {
		return s
	}
	left := gap / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
}

// PreviewBody truncates body to limit characters and appends "..." when it
// was cut. A limit of zero or less disables truncation.
func PreviewBody(body string, limit int) string {
	if limit <= 0 {
		return body
	}
	runes := []rune(body)
	if len(runes) <= limit {
		return body
	}
	return string(runes[:limit]) + "..."
}
