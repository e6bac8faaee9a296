// Package reporter provides output formatting for analysis results
package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/su1ph3r/effodio/pkg/types"
)

// Reporter interface for generating reports
type Reporter interface {
	// Generate generates a report from an analysis result
	Generate(result *types.AnalysisResult) ([]byte, error)

	// Write writes the report to a writer
	Write(result *types.AnalysisResult, w io.Writer) error

	// Format returns the report format name
	Format() string

	// Extension returns the file extension for this format
	Extension() string
}

// Formats lists the names accepted by NewReporter
var Formats = []string{"json", "yaml", "markdown", "sarif", "text", "openapi"}

// NewReporter creates a reporter based on format
func NewReporter(format string, options ReportOptions) (Reporter, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONReporter(options), nil
	case "yaml", "yml":
		return NewYAMLReporter(options), nil
	case "markdown", "md":
		return NewMarkdownReporter(options), nil
	case "sarif":
		return NewSARIFReporter(options), nil
	case "text", "txt":
		return NewTextReporter(options), nil
	case "openapi", "oas":
		return NewOpenAPIReporter(options), nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// ReportOptions contains options for report generation
type ReportOptions struct {
	Title   string // Custom report title
	Version string // Tool version printed in headers
	NoColor bool   // Plain text output
	Verbose bool   // Include evidence and low-value sections
	Compact bool   // Single-line JSON
}

// DefaultOptions returns default report options
func DefaultOptions() ReportOptions {
	return ReportOptions{
		Title:   "Effodio API Surface Report",
		Version: "dev",
	}
}

// WriteToFile writes a report to a file
func WriteToFile(reporter Reporter, result *types.AnalysisResult, filename string) error {
	dir := filepath.Dir(filename)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return reporter.Write(result, file)
}

// MultiReporter generates reports in multiple formats
type MultiReporter struct {
	reporters []Reporter
}

// NewMultiReporter creates a multi-format reporter
func NewMultiReporter(formats []string, options ReportOptions) (*MultiReporter, error) {
	mr := &MultiReporter{
		reporters: make([]Reporter, 0, len(formats)),
	}

	for _, format := range formats {
		r, err := NewReporter(strings.TrimSpace(format), options)
		if err != nil {
			return nil, err
		}
		mr.reporters = append(mr.reporters, r)
	}

	return mr, nil
}

// WriteAll writes one file per configured format, named basePath plus the
// format's extension, and returns the written paths
func (mr *MultiReporter) WriteAll(result *types.AnalysisResult, basePath string) ([]string, error) {
	basePath = strings.TrimSuffix(basePath, filepath.Ext(basePath))
	written := make([]string, 0, len(mr.reporters))
	for _, r := range mr.reporters {
		filename := basePath + "." + r.Extension()
		if err := WriteToFile(r, result, filename); err != nil {
			return written, fmt.Errorf("failed to write %s report: %w", r.Format(), err)
		}
		written = append(written, filename)
	}
	return written, nil
}

// SeverityIcon returns an icon for severity
func SeverityIcon(severity string) string {
	switch severity {
	case types.SeverityCritical:
		return "[!!!]"
	case types.SeverityHigh:
		return "[!!]"
	case types.SeverityMedium:
		return "[!]"
	case types.SeverityLow:
		return "[.]"
	default:
		return "[-]"
	}
}

// TruncateString truncates a string to max length
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// escapeCell keeps a value from breaking a Markdown table row
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

// methodLabel renders a verb, marking unresolved ones
func methodLabel(m types.Method) string {
	if m == "" {
		return string(types.MethodUnknown)
	}
	return string(m)
}
