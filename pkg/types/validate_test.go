package types

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidateConfig_Defaults(t *testing.T) {
	if err := ValidateConfig(DefaultConfig()); err != nil {
		t.Errorf("ValidateConfig(DefaultConfig()) = %v, expected nil", err)
	}
}

func TestValidateConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"workers", func(c *Config) { c.Analysis.Workers = 0 }, "analysis.workers"},
		{"radius", func(c *Config) { c.Analysis.URLContextRadius = 0 }, "analysis.url_context_radius"},
		{"member size", func(c *Config) { c.Analysis.MaxMemberSize = -1 }, "analysis.max_member_size"},
		{"timeout", func(c *Config) { c.Fetch.Timeout = 10 * time.Millisecond }, "fetch.timeout"},
		{"concurrency", func(c *Config) { c.Fetch.Concurrency = 0 }, "fetch.concurrency"},
		{"dns server", func(c *Config) { c.Fetch.DNSServer = "bad host:53" }, "fetch.dns_server"},
		{"format", func(c *Config) { c.Output.Format = "pdf" }, "output.format"},
		{"format list", func(c *Config) { c.Output.Format = "json,pdf" }, "output.format"},
		{"log level", func(c *Config) { c.Logger.Level = "LOUD" }, "logger.level"},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		errs := NewConfigValidator().Validate(cfg)
		found := false
		for _, e := range errs {
			if e.Field == tt.field {
				found = true
			}
		}
		if !found {
			t.Errorf("%s: expected a %s error, got %v", tt.name, tt.field, errs)
		}
	}
}

func TestValidateConfig_DNSServerForms(t *testing.T) {
	for _, server := range []string{"9.9.9.9", "9.9.9.9:53", "[2620:fe::fe]:53", "dns.example.net"} {
		cfg := DefaultConfig()
		cfg.Fetch.DNSServer = server
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("DNSServer %q rejected: %v", server, err)
		}
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}
	msg := errs.Error()
	if !strings.Contains(msg, "a: bad") || !strings.Contains(msg, "b: worse") {
		t.Errorf("Error() = %q", msg)
	}
	if (ValidationErrors{}).Error() != "" {
		t.Error("empty ValidationErrors should render empty")
	}
}

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.apk")
	if err := os.WriteFile(file, []byte("PK"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := ValidateInputFile(file); err != nil {
		t.Errorf("ValidateInputFile(file) = %v", err)
	}
	for _, path := range []string{dir, filepath.Join(dir, "missing.apk")} {
		if err := ValidateInputFile(path); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("ValidateInputFile(%q) = %v, expected ErrInvalidInput", path, err)
		}
	}
}

func TestValidateURL(t *testing.T) {
	valid := []string{"https://example.com", "http://10.0.0.1:8080/app"}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Errorf("ValidateURL(%q) = %v, expected nil", u, err)
		}
	}

	invalid := []string{"", "example.com/path", "https://", "://bad"}
	for _, u := range invalid {
		if err := ValidateURL(u); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("ValidateURL(%q) = %v, expected ErrInvalidInput", u, err)
		}
	}
}

func TestEndpointCategory(t *testing.T) {
	tests := map[string]string{
		"/api/auth/login":    CategoryAuthentication,
		"/admin/users":       CategoryAdmin,
		"/api/upload":        CategoryUpload,
		"/api/users/42":      CategoryUser,
		"/api/cart/checkout": CategoryPayment,
		"/api/search?q=x":    CategorySearch,
		"/graphql":           CategoryGraphQL,
		"/ws/notifications":  CategoryRealtime,
		"/swagger.json":      CategoryDocumentation,
		"/api/v1/health":     CategoryGeneral,
	}
	for url, expected := range tests {
		if got := EndpointCategory(url); got != expected {
			t.Errorf("EndpointCategory(%q) = %q, expected %q", url, got, expected)
		}
	}
}
