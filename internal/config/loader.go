package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds CLI defaults read from an optional YAML file.
// Flags given on the command line take precedence over every field.
type Config struct {
	Timeout   string `yaml:"timeout,omitempty"`
	Output    string `yaml:"output,omitempty"`
	NoColor   bool   `yaml:"noColor,omitempty"`
	Verbose   bool   `yaml:"verbose,omitempty"`
	DNSServer string `yaml:"dnsServer,omitempty"`
	Preview   int    `yaml:"preview,omitempty"`
	LogLevel  string `yaml:"logLevel,omitempty"`
}

// Default returns the built-in defaults
func Default() *Config {
	return &Config{
		Timeout:  "5s",
		Output:   "text",
		Preview:  200,
		LogLevel: "warn",
	}
}

// LoadConfig loads and validates a configuration file. Fields missing from
// the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	return config, nil
}

// Parse decodes YAML on top of the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	config := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if errs := ValidateConfig(config); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}

	return config, nil
}

// TimeoutDuration returns the parsed timeout. ValidateConfig guarantees it parses.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0
	}
	return d
}
