package reporter

import (
	"bytes"
	"io"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/su1ph3r/effodio/pkg/types"
)

const informationURI = "https://github.com/su1ph3r/effodio"

// SARIFReporter generates SARIF reports for CI/CD integration. Only security
// findings become results; endpoints are carried as run properties.
type SARIFReporter struct {
	options ReportOptions
}

// NewSARIFReporter creates a new SARIF reporter
func NewSARIFReporter(options ReportOptions) *SARIFReporter {
	return &SARIFReporter{options: options}
}

// Format returns the format name
func (r *SARIFReporter) Format() string {
	return "sarif"
}

// Extension returns the file extension
func (r *SARIFReporter) Extension() string {
	return "sarif"
}

// Generate generates a SARIF report
func (r *SARIFReporter) Generate(result *types.AnalysisResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Write(result, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes the SARIF report to a writer
func (r *SARIFReporter) Write(result *types.AnalysisResult, w io.Writer) error {
	report, err := r.buildSARIF(result)
	if err != nil {
		return err
	}
	return report.PrettyWrite(w)
}

func (r *SARIFReporter) buildSARIF(result *types.AnalysisResult) (*sarif.Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, err
	}

	run := sarif.NewRunWithInformationURI("Effodio", informationURI)
	if r.options.Version != "" {
		version := r.options.Version
		run.Tool.Driver.SemanticVersion = &version
	}

	for _, f := range result.SecurityFindings {
		rule := run.AddRule(ruleID(f.Kind)).
			WithDescription(f.Kind).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{
				Level: severityToSARIFLevel(f.Severity),
			})

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.SourceLocation)),
		)

		res := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(f.Description)).
			WithLevel(severityToSARIFLevel(f.Severity)).
			WithLocations([]*sarif.Location{location})
		res.PropertyBag = *sarif.NewPropertyBag()
		res.Add("severity", f.Severity)
		if f.Evidence != "" {
			res.Add("evidence", f.Evidence)
		}
		run.AddResult(res)
	}

	run.PropertyBag = *sarif.NewPropertyBag()
	run.Add("target", result.Target)
	run.Add("mode", result.Mode)
	run.Add("endpoints", endpointLabels(result.Endpoints))
	if result.Summary != nil {
		run.Add("hardcodedKeys", result.Summary.HardcodedKeys)
		run.Add("weakAlgorithms", result.Summary.WeakAlgorithms)
		run.Add("sslIssues", result.Summary.SSLIssues)
	}

	report.AddRun(run)
	return report, nil
}

// ruleID turns a finding kind into a stable rule identifier
func ruleID(kind string) string {
	return "effodio/" + strings.ReplaceAll(strings.ToLower(strings.TrimSpace(kind)), " ", "-")
}

func endpointLabels(endpoints []types.Endpoint) []string {
	labels := make([]string, len(endpoints))
	for i, ep := range endpoints {
		labels[i] = methodLabel(ep.Method) + " " + ep.URL
	}
	return labels
}

// severityToSARIFLevel converts severity to SARIF level
func severityToSARIFLevel(severity string) string {
	switch severity {
	case types.SeverityCritical, types.SeverityHigh:
		return "error"
	case types.SeverityMedium:
		return "warning"
	case types.SeverityLow:
		return "note"
	default:
		return "none"
	}
}
