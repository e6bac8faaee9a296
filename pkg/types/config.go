package types

import (
	"time"
)

// Config represents the application configuration
type Config struct {
	// Archive analysis settings
	Analysis AnalysisSettings `yaml:"analysis" mapstructure:"analysis"`

	// Outbound fetch settings for the web-app variant
	Fetch FetchSettings `yaml:"fetch" mapstructure:"fetch"`

	// Output settings
	Output OutputSettings `yaml:"output" mapstructure:"output"`

	// Logger settings
	Logger LoggerSettings `yaml:"logger" mapstructure:"logger"`
}

// AnalysisSettings holds pattern-matching configuration
type AnalysisSettings struct {
	Workers          int    `yaml:"workers" mapstructure:"workers"`                       // parallel archive members
	MaxMemberSize    int64  `yaml:"max_member_size" mapstructure:"max_member_size"`       // bytes; larger members are skipped
	MaxArchiveSize   int64  `yaml:"max_archive_size" mapstructure:"max_archive_size"`     // total uncompressed bytes extracted
	URLContextRadius int    `yaml:"url_context_radius" mapstructure:"url_context_radius"` // chars around a URL match
	UIContextRadius  int    `yaml:"ui_context_radius" mapstructure:"ui_context_radius"`   // chars around a UI match
	ManifestName     string `yaml:"manifest_name" mapstructure:"manifest_name"`           // designated manifest member
	MaxFindings      int    `yaml:"max_findings" mapstructure:"max_findings"`
}

// FetchSettings holds SSRF-safe fetcher configuration
type FetchSettings struct {
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxHTMLBytes      int64         `yaml:"max_html_bytes" mapstructure:"max_html_bytes"`
	MaxScriptBytes    int64         `yaml:"max_script_bytes" mapstructure:"max_script_bytes"`
	MaxScripts        int           `yaml:"max_scripts" mapstructure:"max_scripts"`                   // scripts fetched per scan
	MaxReportedScript int           `yaml:"max_reported_scripts" mapstructure:"max_reported_scripts"` // script URLs kept in the result
	Concurrency       int           `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimit         float64       `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	DNSServer         string        `yaml:"dns_server" mapstructure:"dns_server"` // host:port, empty = system resolver
	ProbeDocs         bool          `yaml:"probe_docs" mapstructure:"probe_docs"`
}

// OutputSettings holds output configuration
type OutputSettings struct {
	Format  string `yaml:"format" mapstructure:"format"` // json, yaml, markdown, sarif, text
	File    string `yaml:"file" mapstructure:"file"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
	Color   bool   `yaml:"color" mapstructure:"color"`
}

// LoggerSettings holds structured logging configuration
type LoggerSettings struct {
	Level           string `yaml:"level" mapstructure:"level"`
	JSONFormat      bool   `yaml:"json_format" mapstructure:"json_format"`
	IncludeLocation bool   `yaml:"include_location" mapstructure:"include_location"`
	DisableTime     bool   `yaml:"disable_time" mapstructure:"disable_time"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisSettings{
			Workers:          8,
			MaxMemberSize:    50 << 20,
			MaxArchiveSize:   1 << 30,
			URLContextRadius: 1500,
			UIContextRadius:  500,
			ManifestName:     "AndroidManifest.xml",
			MaxFindings:      50,
		},
		Fetch: FetchSettings{
			Timeout:           15 * time.Second,
			MaxHTMLBytes:      10 << 20,
			MaxScriptBytes:    5 << 20,
			MaxScripts:        50,
			MaxReportedScript: 20,
			Concurrency:       5,
			RateLimit:         10.0,
			UserAgent:         "Effodio/1.0 (API Surface Scanner)",
			ProbeDocs:         true,
		},
		Output: OutputSettings{
			Format:  "json",
			Verbose: false,
			Color:   true,
		},
		Logger: LoggerSettings{
			Level:       "INFO",
			DisableTime: true,
		},
	}
}
