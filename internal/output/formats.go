package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/rawprobe/internal/probe"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable table
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat validates a format name
func ParseFormat(name string) (OutputFormat, error) {
	switch format := OutputFormat(strings.ToLower(strings.TrimSpace(name))); format {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", name)
	}
}

// FormatProvider is an interface for different output formatters
type FormatProvider interface {
	FormatStart(locator string) string
	FormatResult(result *probe.Result) string
	FormatError(err error) string
}

// TimingData holds the phase durations in milliseconds
type TimingData struct {
	DNSLookup       float64 `json:"dnsLookupMs" yaml:"dnsLookupMs"`
	TCPConnection   float64 `json:"tcpConnectionMs" yaml:"tcpConnectionMs"`
	TimeToFirstByte float64 `json:"timeToFirstByteMs" yaml:"timeToFirstByteMs"`
	ContentTransfer float64 `json:"contentTransferMs" yaml:"contentTransferMs"`
	Total           float64 `json:"totalMs" yaml:"totalMs"`
}

// ReportData is the structured form of a probe result
type ReportData struct {
	URL        string      `json:"url" yaml:"url"`
	Host       string      `json:"host" yaml:"host"`
	Path       string      `json:"path" yaml:"path"`
	Port       int         `json:"port" yaml:"port"`
	Address    string      `json:"address" yaml:"address"`
	Bytes      int         `json:"bytes" yaml:"bytes"`
	StatusCode int         `json:"statusCode,omitempty" yaml:"statusCode,omitempty"`
	Status     string      `json:"status,omitempty" yaml:"status,omitempty"`
	Timing     TimingData  `json:"timing" yaml:"timing"`
	Headers    string      `json:"headers" yaml:"headers"`
	Body       interface{} `json:"body,omitempty" yaml:"body,omitempty"`
}

// ErrorData is the structured form of a probe failure
type ErrorData struct {
	Error   string `json:"error" yaml:"error"`
	Kind    string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Stage   string `json:"stage,omitempty" yaml:"stage,omitempty"`
	Timeout bool   `json:"timeout" yaml:"timeout"`
}

// NewTimingData converts probe metrics to milliseconds
func NewTimingData(m probe.Metrics) TimingData {
	return TimingData{
		DNSLookup:       probe.Millis(m.DNS),
		TCPConnection:   probe.Millis(m.Connect),
		TimeToFirstByte: probe.Millis(m.TTFB),
		ContentTransfer: probe.Millis(m.Transfer),
		Total:           probe.Millis(m.Total),
	}
}

func newReportData(result *probe.Result) ReportData {
	data := ReportData{
		URL:        result.Target.String(),
		Host:       result.Target.Host,
		Path:       result.Target.Path,
		Port:       result.Target.Port,
		Address:    result.Address,
		Bytes:      result.Bytes,
		StatusCode: result.Response.StatusCode(),
		Timing:     NewTimingData(result.Metrics),
		Headers:    result.Response.Header,
	}
	if data.StatusCode != 0 {
		data.Status = result.Response.StatusLine()
	}
	return data
}

func newErrorData(err error) ErrorData {
	data := ErrorData{Error: err.Error()}
	var pe *probe.Error
	if errors.As(err, &pe) {
		data.Kind = pe.Kind.String()
		data.Stage = pe.Op
		data.Timeout = pe.Timeout()
	}
	return data
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Verbose bool
	Pretty  bool
}

// FormatStart prints nothing so the output stays a single JSON document
func (f *JSONFormatter) FormatStart(locator string) string {
	return ""
}

// FormatResult formats a result as JSON
func (f *JSONFormatter) FormatResult(result *probe.Result) string {
	data := newReportData(result)
	if result.Response.HasBody {
		body := result.Response.Body
		if gjson.Valid(body) {
			data.Body = json.RawMessage(body)
		} else {
			data.Body = body
		}
	}
	return f.marshal(data)
}

// FormatError formats a failure as JSON
func (f *JSONFormatter) FormatError(err error) string {
	return f.marshal(newErrorData(err))
}

func (f *JSONFormatter) marshal(v interface{}) string {
	var output []byte
	var err error
	if f.Pretty {
		output, err = json.MarshalIndent(v, "", "  ")
	} else {
		output, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Sprintf(`{"error":"Failed to marshal report: %s"}`, err)
	}
	return string(output) + "\n"
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	Verbose bool
}

// FormatStart prints nothing so the output stays a single YAML document
func (f *YAMLFormatter) FormatStart(locator string) string {
	return ""
}

// FormatResult formats a result as YAML
func (f *YAMLFormatter) FormatResult(result *probe.Result) string {
	data := newReportData(result)
	if result.Response.HasBody {
		body := result.Response.Body
		if gjson.Valid(body) {
			data.Body = gjson.Parse(body).Value()
		} else {
			data.Body = body
		}
	}
	return f.marshal(data)
}

// FormatError formats a failure as YAML
func (f *YAMLFormatter) FormatError(err error) string {
	return f.marshal(newErrorData(err))
}

func (f *YAMLFormatter) marshal(v interface{}) string {
	output, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: Failed to marshal report: %s\n", err)
	}
	return string(output)
}

// GetFormatter returns the appropriate formatter for the given format.
// previewLimit is used as given; zero or less shows the whole body.
func GetFormatter(format OutputFormat, verbose bool, noColor bool, previewLimit int) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Verbose: verbose, Pretty: true}
	case FormatYAML:
		return &YAMLFormatter{Verbose: verbose}
	default:
		f := NewFormatter(verbose, noColor)
		f.PreviewLimit = previewLimit
		return f
	}
}
