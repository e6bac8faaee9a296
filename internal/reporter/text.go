package reporter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/su1ph3r/effodio/pkg/types"
)

// TextReporter generates Nmap-style text reports
type TextReporter struct {
	options ReportOptions
}

// NewTextReporter creates a new text reporter
func NewTextReporter(options ReportOptions) *TextReporter {
	return &TextReporter{options: options}
}

// Format returns the format name
func (r *TextReporter) Format() string {
	return "text"
}

// Extension returns the file extension
func (r *TextReporter) Extension() string {
	return "txt"
}

// Generate generates a text report
func (r *TextReporter) Generate(result *types.AnalysisResult) ([]byte, error) {
	var buf strings.Builder
	if err := r.Write(result, &buf); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

// Write writes the text report to a writer
func (r *TextReporter) Write(result *types.AnalysisResult, w io.Writer) error {
	summary := result.Summary
	if summary == nil {
		summary = types.NewAnalysisSummary(result.Endpoints, result.SecurityFindings, types.Counters{})
	}

	r.writeHeader(w, result)
	r.writeScanInfo(w, result, summary)
	r.writeEndpoints(w, result)
	r.writeSummary(w, summary)
	r.writeFindings(w, result)
	if r.options.Verbose {
		r.writeExtras(w, result)
	}
	r.writeFooter(w, result, summary)
	return nil
}

// paint applies a color unless output is plain
func (r *TextReporter) paint(c *color.Color, s string) string {
	if r.options.NoColor {
		return s
	}
	c.EnableColor()
	return c.Sprint(s)
}

func severityColor(severity string) *color.Color {
	switch severity {
	case types.SeverityCritical:
		return color.New(color.FgRed, color.Bold)
	case types.SeverityHigh:
		return color.New(color.FgRed)
	case types.SeverityMedium:
		return color.New(color.FgYellow)
	case types.SeverityLow:
		return color.New(color.FgBlue)
	default:
		return color.New(color.Reset)
	}
}

func confidenceColor(confidence string) *color.Color {
	switch confidence {
	case types.ConfidenceHigh:
		return color.New(color.FgGreen)
	case types.ConfidenceMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgHiBlack)
	}
}

func (r *TextReporter) writeHeader(w io.Writer, result *types.AnalysisResult) {
	v := r.options.Version
	if v == "" {
		v = "unknown"
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Starting Effodio %s ( %s )\n", v, informationURI)
	fmt.Fprintf(w, "Analysis report for %s (%s)\n", result.Target, result.Mode)
	if !result.StartTime.IsZero() {
		fmt.Fprintf(w, "Analysis started at %s\n", result.StartTime.Format("2006-01-02 15:04 MST"))
	}
	fmt.Fprintf(w, "\n")
}

func (r *TextReporter) writeScanInfo(w io.Writer, result *types.AnalysisResult, summary *types.AnalysisSummary) {
	fmt.Fprintf(w, "Scanned %d files (%d skipped) in %s\n",
		summary.FilesScanned,
		summary.FilesSkipped,
		formatDuration(result.Duration))
	if result.Mode == types.ModeWebApp {
		fmt.Fprintf(w, "Scripts: %d found, %d fetched, %d failed\n",
			summary.ScriptsFound,
			summary.ScriptsFetched,
			summary.ScriptsFailed)
	}
	fmt.Fprintf(w, "\n")
}

func (r *TextReporter) writeEndpoints(w io.Writer, result *types.AnalysisResult) {
	if len(result.Endpoints) == 0 {
		fmt.Fprintf(w, "No endpoints found.\n\n")
		return
	}

	fmt.Fprintf(w, "ENDPOINTS\n")
	fmt.Fprintf(w, "%-8s %-10s %-7s %s\n", "METHOD", "CONFIDENCE", "OP", "URL")
	for _, ep := range result.Endpoints {
		op := string(ep.PersistenceOp)
		if op == "" {
			op = "-"
		}
		conf := fmt.Sprintf("%-10s", ep.Confidence)
		fmt.Fprintf(w, "%-8s %s %-7s %s\n", methodLabel(ep.Method), r.paint(confidenceColor(ep.Confidence), conf), op, ep.URL)
		if r.options.Verbose {
			fmt.Fprintf(w, "         from %s\n", ep.SourceLocation)
		}
	}
	fmt.Fprintf(w, "\n")
}

func (r *TextReporter) writeSummary(w io.Writer, summary *types.AnalysisSummary) {
	fmt.Fprintf(w, "FINDING SUMMARY\n")
	fmt.Fprintf(w, "%-12s %s\n", "SEVERITY", "COUNT")

	for _, sev := range []string{types.SeverityCritical, types.SeverityHigh, types.SeverityMedium, types.SeverityLow} {
		name := fmt.Sprintf("%-12s", strings.ToUpper(sev))
		fmt.Fprintf(w, "%s %d\n", r.paint(severityColor(sev), name), summary.BySeverity[sev])
	}
	fmt.Fprintf(w, "%-12s %d\n", "TOTAL", summary.TotalFindings)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Hardcoded keys: %d  Weak algorithms: %d  Plain HTTP: %d\n",
		summary.HardcodedKeys, summary.WeakAlgorithms, summary.SSLIssues)
	fmt.Fprintf(w, "\n")
}

func (r *TextReporter) writeFindings(w io.Writer, result *types.AnalysisResult) {
	if len(result.SecurityFindings) == 0 {
		fmt.Fprintf(w, "No security findings.\n")
		return
	}

	fmt.Fprintf(w, "FINDINGS DETAIL\n")
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 70))

	// already in severity order
	for _, f := range result.SecurityFindings {
		tag := fmt.Sprintf("%s [%s]", SeverityIcon(f.Severity), strings.ToUpper(f.Severity))
		fmt.Fprintf(w, "%s %s\n", r.paint(severityColor(f.Severity), tag), f.Kind)
		fmt.Fprintf(w, "    Location:    %s\n", f.SourceLocation)
		if f.Description != "" {
			fmt.Fprintf(w, "    Description: %s\n", TruncateString(f.Description, 200))
		}
		if f.Evidence != "" {
			fmt.Fprintf(w, "    Evidence:    %s\n", f.Evidence)
		}
		fmt.Fprintf(w, "\n")
	}
}

func (r *TextReporter) writeExtras(w io.Writer, result *types.AnalysisResult) {
	if len(result.Permissions) > 0 {
		fmt.Fprintf(w, "PERMISSIONS\n")
		for _, p := range result.Permissions {
			fmt.Fprintf(w, "    %s\n", p)
		}
		fmt.Fprintf(w, "\n")
	}
	if len(result.Libraries) > 0 {
		fmt.Fprintf(w, "LIBRARIES\n    %s\n\n", strings.Join(result.Libraries, ", "))
	}
	if len(result.UIComponents) > 0 {
		fmt.Fprintf(w, "UI COMPONENTS\n")
		for _, c := range result.UIComponents {
			fmt.Fprintf(w, "    %-10s %-20s %s (%s)\n", c.Kind, c.ID, strings.Join(c.Listeners, ","), c.SourceLocation)
		}
		fmt.Fprintf(w, "\n")
	}
	if len(result.DataOperations) > 0 {
		fmt.Fprintf(w, "DATA OPERATIONS\n")
		for _, op := range result.DataOperations {
			fmt.Fprintf(w, "    %-4s %-7s %-16s %s\n", op.Kind, op.Operation, op.Target, op.Source)
		}
		fmt.Fprintf(w, "\n")
	}
	if len(result.ScriptURLs) > 0 {
		fmt.Fprintf(w, "SCRIPTS\n")
		for _, u := range result.ScriptURLs {
			fmt.Fprintf(w, "    %s\n", u)
		}
		fmt.Fprintf(w, "\n")
	}
}

func (r *TextReporter) writeFooter(w io.Writer, result *types.AnalysisResult, summary *types.AnalysisSummary) {
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 70))
	if !result.EndTime.IsZero() {
		fmt.Fprintf(w, "Analysis completed at %s\n", result.EndTime.Format("2006-01-02 15:04 MST"))
	}
	fmt.Fprintf(w, "Effodio done: %d endpoints, %d findings\n",
		summary.TotalEndpoints,
		summary.TotalFindings)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		secs := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%02ds", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%02dm", hours, mins)
}
