package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/wesleyorama2/rawprobe/internal/logging"
)

// Formats lists the accepted output format names
var Formats = []string{"text", "json", "yaml"}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) []ValidationError {
	var errors []ValidationError

	if d, err := time.ParseDuration(config.Timeout); err != nil {
		errors = append(errors, ValidationError{
			Path:    "timeout",
			Message: fmt.Sprintf("invalid duration: %s", config.Timeout),
		})
	} else if d <= 0 {
		errors = append(errors, ValidationError{
			Path:    "timeout",
			Message: "timeout must be positive",
		})
	}

	if !containsFold(Formats, config.Output) {
		errors = append(errors, ValidationError{
			Path:    "output",
			Message: fmt.Sprintf("invalid output format: %s (want %s)", config.Output, strings.Join(Formats, ", ")),
		})
	}

	if config.Preview < 0 {
		errors = append(errors, ValidationError{
			Path:    "preview",
			Message: "preview length cannot be negative",
		})
	}

	if _, err := logging.ParseLevel(config.LogLevel); err != nil {
		errors = append(errors, ValidationError{
			Path:    "logLevel",
			Message: err.Error(),
		})
	}

	if config.DNSServer != "" {
		if err := ValidateDNSServer(config.DNSServer); err != nil {
			errors = append(errors, ValidationError{
				Path:    "dnsServer",
				Message: err.Error(),
			})
		}
	}

	return errors
}

// ValidateDNSServer checks a host or host:port DNS server address
func ValidateDNSServer(server string) error {
	host := server
	if h, port, err := net.SplitHostPort(server); err == nil {
		if port == "" {
			return fmt.Errorf("missing port in %s", server)
		}
		host = h
	}
	if strings.TrimSpace(host) == "" {
		return fmt.Errorf("missing host in %s", server)
	}
	return nil
}

func containsFold(values []string, s string) bool {
	for _, v := range values {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
