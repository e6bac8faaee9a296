// Package types provides core data structures for Effodio
package types

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// HasErrors returns true if there are any validation errors
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// ConfigValidator validates configuration settings
type ConfigValidator struct {
	errors ValidationErrors
}

// NewConfigValidator creates a new config validator
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// Validate performs comprehensive validation of the config
func (v *ConfigValidator) Validate(config *Config) ValidationErrors {
	v.errors = nil

	v.validateAnalysisSettings(config.Analysis)
	v.validateFetchSettings(config.Fetch)
	v.validateOutputSettings(config.Output)
	v.validateLoggerSettings(config.Logger)

	return v.errors
}

func (v *ConfigValidator) addError(field, message string, value interface{}) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

func (v *ConfigValidator) validateAnalysisSettings(a AnalysisSettings) {
	if a.Workers < 1 {
		v.addError("analysis.workers", "must be at least 1", a.Workers)
	}
	if a.Workers > 256 {
		v.addError("analysis.workers", "should not exceed 256", a.Workers)
	}

	if a.MaxMemberSize <= 0 {
		v.addError("analysis.max_member_size", "must be positive", a.MaxMemberSize)
	}
	if a.MaxArchiveSize <= 0 {
		v.addError("analysis.max_archive_size", "must be positive", a.MaxArchiveSize)
	}

	if a.URLContextRadius <= 0 {
		v.addError("analysis.url_context_radius", "must be positive", a.URLContextRadius)
	}
	if a.UIContextRadius <= 0 {
		v.addError("analysis.ui_context_radius", "must be positive", a.UIContextRadius)
	}

	if a.ManifestName == "" {
		v.addError("analysis.manifest_name", "should not be empty", a.ManifestName)
	}

	if a.MaxFindings < 1 {
		v.addError("analysis.max_findings", "must be at least 1", a.MaxFindings)
	}
}

func (v *ConfigValidator) validateFetchSettings(f FetchSettings) {
	if f.Timeout < 1*time.Second {
		v.addError("fetch.timeout", "should be at least 1 second", f.Timeout)
	}
	if f.Timeout > 5*time.Minute {
		v.addError("fetch.timeout", "timeout exceeds 5 minutes which may cause issues", f.Timeout)
	}

	if f.MaxHTMLBytes <= 0 {
		v.addError("fetch.max_html_bytes", "must be positive", f.MaxHTMLBytes)
	}
	if f.MaxScriptBytes <= 0 {
		v.addError("fetch.max_script_bytes", "must be positive", f.MaxScriptBytes)
	}

	if f.MaxScripts < 0 {
		v.addError("fetch.max_scripts", "cannot be negative", f.MaxScripts)
	}
	if f.MaxReportedScript < 0 {
		v.addError("fetch.max_reported_scripts", "cannot be negative", f.MaxReportedScript)
	}

	if f.Concurrency < 1 {
		v.addError("fetch.concurrency", "must be at least 1", f.Concurrency)
	}

	if f.RateLimit < 0 {
		v.addError("fetch.rate_limit", "cannot be negative", f.RateLimit)
	}
	if f.RateLimit > 1000 {
		v.addError("fetch.rate_limit", "extremely high rate limits may cause issues", f.RateLimit)
	}

	if f.UserAgent == "" {
		v.addError("fetch.user_agent", "should not be empty", f.UserAgent)
	}

	if f.DNSServer != "" {
		host := f.DNSServer
		if h, _, err := net.SplitHostPort(f.DNSServer); err == nil {
			host = h
		}
		if host == "" || strings.ContainsAny(host, " /") {
			v.addError("fetch.dns_server", "must be host or host:port", f.DNSServer)
		}
	}
}

func (v *ConfigValidator) validateOutputSettings(o OutputSettings) {
	validFormats := map[string]bool{
		"json": true, "yaml": true, "yml": true, "markdown": true, "md": true,
		"sarif": true, "text": true, "txt": true, "openapi": true, "oas": true,
	}

	if o.Format == "" {
		return
	}
	// several formats may be requested at once
	for _, f := range strings.Split(o.Format, ",") {
		if !validFormats[strings.ToLower(strings.TrimSpace(f))] {
			v.addError("output.format", "unknown format", f)
		}
	}
}

func (v *ConfigValidator) validateLoggerSettings(l LoggerSettings) {
	validLevels := map[string]bool{
		"": true, "TRACE": true, "DEBUG": true, "INFO": true, "WARN": true, "ERROR": true,
	}
	if !validLevels[strings.ToUpper(l.Level)] {
		v.addError("logger.level", "unknown log level", l.Level)
	}
}

// ValidateConfig is a convenience function to validate a config
func ValidateConfig(config *Config) error {
	validator := NewConfigValidator()
	errors := validator.Validate(config)
	if errors.HasErrors() {
		return errors
	}
	return nil
}

// ValidateInputFile validates an input file exists and is readable
func ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: input file does not exist: %s", ErrInvalidInput, path)
	}
	if err != nil {
		return fmt.Errorf("%w: cannot access input file: %v", ErrInvalidInput, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: input path is a directory, not a file: %s", ErrInvalidInput, path)
	}
	return nil
}

// ValidateURL validates a URL string
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: URL cannot be empty", ErrInvalidInput)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: invalid URL: %v", ErrInvalidInput, err)
	}

	if parsed.Scheme == "" {
		return fmt.Errorf("%w: URL must have a scheme (http or https)", ErrInvalidInput)
	}

	if parsed.Host == "" {
		return fmt.Errorf("%w: URL must have a host", ErrInvalidInput)
	}

	return nil
}
