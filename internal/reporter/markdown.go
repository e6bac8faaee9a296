package reporter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/su1ph3r/effodio/pkg/types"
)

// MarkdownReporter generates Markdown reports
type MarkdownReporter struct {
	options ReportOptions
}

// NewMarkdownReporter creates a new Markdown reporter
func NewMarkdownReporter(options ReportOptions) *MarkdownReporter {
	return &MarkdownReporter{options: options}
}

// Format returns the format name
func (r *MarkdownReporter) Format() string {
	return "markdown"
}

// Extension returns the file extension
func (r *MarkdownReporter) Extension() string {
	return "md"
}

// Generate generates a Markdown report
func (r *MarkdownReporter) Generate(result *types.AnalysisResult) ([]byte, error) {
	var buf strings.Builder
	if err := r.Write(result, &buf); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

// Write writes the Markdown report to a writer
func (r *MarkdownReporter) Write(result *types.AnalysisResult, w io.Writer) error {
	title := r.options.Title
	if title == "" {
		title = DefaultOptions().Title
	}
	summary := result.Summary
	if summary == nil {
		summary = types.NewAnalysisSummary(result.Endpoints, result.SecurityFindings, types.Counters{})
	}

	fmt.Fprintf(w, "# %s\n\n", title)

	fmt.Fprintf(w, "## Summary\n\n")
	fmt.Fprintf(w, "| Metric | Value |\n")
	fmt.Fprintf(w, "|--------|-------|\n")
	fmt.Fprintf(w, "| Target | `%s` |\n", escapeCell(result.Target))
	fmt.Fprintf(w, "| Mode | %s |\n", result.Mode)
	fmt.Fprintf(w, "| Scan ID | `%s` |\n", result.ScanID)
	fmt.Fprintf(w, "| Duration | %s |\n", result.Duration)
	fmt.Fprintf(w, "| Files Scanned | %d |\n", summary.FilesScanned)
	fmt.Fprintf(w, "| Files Skipped | %d |\n", summary.FilesSkipped)
	if result.Mode == types.ModeWebApp {
		fmt.Fprintf(w, "| Scripts Fetched | %d / %d |\n", summary.ScriptsFetched, summary.ScriptsFound)
	}
	fmt.Fprintf(w, "| Endpoints | %d |\n", summary.TotalEndpoints)
	fmt.Fprintf(w, "| Hardcoded Keys | %d |\n", summary.HardcodedKeys)
	fmt.Fprintf(w, "| Weak Algorithms | %d |\n", summary.WeakAlgorithms)
	fmt.Fprintf(w, "| Plain HTTP URLs | %d |\n", summary.SSLIssues)
	fmt.Fprintf(w, "\n")

	if len(summary.Categories) > 0 {
		fmt.Fprintf(w, "### Endpoints by Category\n\n")
		fmt.Fprintf(w, "| Category | Count |\n")
		fmt.Fprintf(w, "|----------|-------|\n")
		for _, k := range sortedKeys(summary.Categories) {
			fmt.Fprintf(w, "| %s | %d |\n", k, summary.Categories[k])
		}
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "## Endpoints\n\n")
	if len(result.Endpoints) == 0 {
		fmt.Fprintf(w, "_No endpoints detected._\n\n")
	} else {
		fmt.Fprintf(w, "| Method | URL | Operation | Confidence | Payload | Source |\n")
		fmt.Fprintf(w, "|--------|-----|-----------|------------|---------|--------|\n")
		for _, ep := range result.Endpoints {
			payload := "no"
			if ep.HasPayload {
				payload = "yes"
				if len(ep.PayloadIndicators) > 0 {
					payload += " (" + strings.Join(ep.PayloadIndicators, ", ") + ")"
				}
			}
			op := string(ep.PersistenceOp)
			if op == "" {
				op = "-"
			}
			fmt.Fprintf(w, "| %s | `%s` | %s | %s | %s | %s |\n",
				methodLabel(ep.Method), escapeCell(ep.URL), op, ep.Confidence, escapeCell(payload), escapeCell(ep.SourceLocation))
		}
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "## Security Findings\n\n")
	if len(result.SecurityFindings) == 0 {
		fmt.Fprintf(w, "_No findings detected._\n\n")
	} else {
		for i, f := range result.SecurityFindings {
			fmt.Fprintf(w, "### %d. %s (%s)\n\n", i+1, f.Kind, f.Severity)
			fmt.Fprintf(w, "- **Location:** `%s`\n", f.SourceLocation)
			fmt.Fprintf(w, "- **Description:** %s\n", f.Description)
			if f.Evidence != "" {
				fmt.Fprintf(w, "\n```\n%s\n```\n", TruncateString(f.Evidence, 500))
			}
			fmt.Fprintf(w, "\n")
		}
	}

	if len(result.UIComponents) > 0 {
		fmt.Fprintf(w, "## UI Components\n\n")
		fmt.Fprintf(w, "| Kind | ID | Text | Listeners | Location |\n")
		fmt.Fprintf(w, "|------|----|------|-----------|----------|\n")
		for _, c := range result.UIComponents {
			fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
				c.Kind, escapeCell(c.ID), escapeCell(c.Text), strings.Join(c.Listeners, ", "), escapeCell(c.SourceLocation))
		}
		fmt.Fprintf(w, "\n")
	}

	if len(result.DataOperations) > 0 {
		fmt.Fprintf(w, "## Data Operations\n\n")
		fmt.Fprintf(w, "| Kind | Target | Operation | Source |\n")
		fmt.Fprintf(w, "|------|--------|-----------|--------|\n")
		for _, op := range result.DataOperations {
			fmt.Fprintf(w, "| %s | %s | %s | %s |\n", op.Kind, escapeCell(op.Target), op.Operation, escapeCell(op.Source))
		}
		fmt.Fprintf(w, "\n")
	}

	if len(result.Permissions) > 0 {
		fmt.Fprintf(w, "## Permissions\n\n")
		for _, p := range result.Permissions {
			fmt.Fprintf(w, "- `%s`\n", p)
		}
		fmt.Fprintf(w, "\n")
	}

	if len(result.Libraries) > 0 {
		fmt.Fprintf(w, "## Libraries\n\n%s\n\n", strings.Join(result.Libraries, ", "))
	}

	if len(result.ScriptURLs) > 0 {
		fmt.Fprintf(w, "## Scripts\n\n")
		for _, u := range result.ScriptURLs {
			fmt.Fprintf(w, "- %s\n", u)
		}
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "---\n\n")
	fmt.Fprintf(w, "_Report generated by Effodio - API Surface Scanner_\n")

	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
