package config

import (
	"testing"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(c *Config)
		wantPaths []string
	}{
		{
			name:   "defaults are valid",
			modify: func(c *Config) {},
		},
		{
			name:      "zero timeout",
			modify:    func(c *Config) { c.Timeout = "0s" },
			wantPaths: []string{"timeout"},
		},
		{
			name:      "unparseable timeout",
			modify:    func(c *Config) { c.Timeout = "five" },
			wantPaths: []string{"timeout"},
		},
		{
			name:   "upper case output",
			modify: func(c *Config) { c.Output = "YAML" },
		},
		{
			name:      "negative preview",
			modify:    func(c *Config) { c.Preview = -1 },
			wantPaths: []string{"preview"},
		},
		{
			name:      "bad log level",
			modify:    func(c *Config) { c.LogLevel = "trace" },
			wantPaths: []string{"logLevel"},
		},
		{
			name:      "dns server without host",
			modify:    func(c *Config) { c.DNSServer = ":53" },
			wantPaths: []string{"dnsServer"},
		},
		{
			name: "several problems",
			modify: func(c *Config) {
				c.Output = "xml"
				c.Preview = -5
			},
			wantPaths: []string{"output", "preview"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.modify(config)

			errs := ValidateConfig(config)
			if len(errs) != len(tt.wantPaths) {
				t.Fatalf("ValidateConfig() returned %d errors (%v), want %d", len(errs), errs, len(tt.wantPaths))
			}
			for i, path := range tt.wantPaths {
				if errs[i].Path != path {
					t.Errorf("error %d path = %q, want %q", i, errs[i].Path, path)
				}
			}
		})
	}
}

func TestValidateDNSServer(t *testing.T) {
	valid := []string{"1.1.1.1", "1.1.1.1:53", "dns.example.com", "[2001:db8::53]:53", "2001:db8::53"}
	for _, server := range valid {
		if err := ValidateDNSServer(server); err != nil {
			t.Errorf("ValidateDNSServer(%q) error = %v", server, err)
		}
	}

	invalid := []string{":53", "1.1.1.1:", " "}
	for _, server := range invalid {
		if err := ValidateDNSServer(server); err == nil {
			t.Errorf("ValidateDNSServer(%q) should fail", server)
		}
	}
}
