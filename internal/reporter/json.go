package reporter

import (
	"encoding/json"
	"io"

	"github.com/su1ph3r/effodio/pkg/types"
)

// JSONReporter generates JSON reports
type JSONReporter struct {
	options ReportOptions
}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter(options ReportOptions) *JSONReporter {
	return &JSONReporter{options: options}
}

// Format returns the format name
func (r *JSONReporter) Format() string {
	return "json"
}

// Extension returns the file extension
func (r *JSONReporter) Extension() string {
	return "json"
}

// Generate generates a JSON report
func (r *JSONReporter) Generate(result *types.AnalysisResult) ([]byte, error) {
	output := prepareOutput(result)
	if r.options.Compact {
		return json.Marshal(output)
	}
	return json.MarshalIndent(output, "", "  ")
}

// Write writes the JSON report to a writer
func (r *JSONReporter) Write(result *types.AnalysisResult, w io.Writer) error {
	data, err := r.Generate(result)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Output is the serialized shape shared by the JSON and YAML reporters. It
// replaces the nanosecond duration with a readable string and guarantees
// empty lists render as [] rather than null.
type Output struct {
	ScanID           string                  `json:"scan_id" yaml:"scan_id"`
	Mode             string                  `json:"mode" yaml:"mode"`
	Target           string                  `json:"target" yaml:"target"`
	StartTime        string                  `json:"start_time" yaml:"start_time"`
	EndTime          string                  `json:"end_time" yaml:"end_time"`
	Duration         string                  `json:"duration" yaml:"duration"`
	Endpoints        []types.Endpoint        `json:"endpoints" yaml:"endpoints"`
	UIComponents     []types.UIComponent     `json:"ui_components" yaml:"ui_components"`
	SecurityFindings []types.SecurityFinding `json:"security_findings" yaml:"security_findings"`
	Permissions      []string                `json:"permissions" yaml:"permissions"`
	Libraries        []string                `json:"libraries" yaml:"libraries"`
	DataOperations   []types.DataOperation   `json:"data_operations,omitempty" yaml:"data_operations,omitempty"`
	ScriptURLs       []string                `json:"script_urls,omitempty" yaml:"script_urls,omitempty"`
	Summary          *types.AnalysisSummary  `json:"summary" yaml:"summary"`
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func prepareOutput(result *types.AnalysisResult) *Output {
	out := &Output{
		ScanID:           result.ScanID,
		Mode:             result.Mode,
		Target:           result.Target,
		StartTime:        result.StartTime.Format(timeLayout),
		EndTime:          result.EndTime.Format(timeLayout),
		Duration:         result.Duration.String(),
		Endpoints:        result.Endpoints,
		UIComponents:     result.UIComponents,
		SecurityFindings: result.SecurityFindings,
		Permissions:      result.Permissions,
		Libraries:        result.Libraries,
		DataOperations:   result.DataOperations,
		ScriptURLs:       result.ScriptURLs,
		Summary:          result.Summary,
	}

	if out.Endpoints == nil {
		out.Endpoints = []types.Endpoint{}
	}
	if out.UIComponents == nil {
		out.UIComponents = []types.UIComponent{}
	}
	if out.SecurityFindings == nil {
		out.SecurityFindings = []types.SecurityFinding{}
	}
	if out.Permissions == nil {
		out.Permissions = []string{}
	}
	if out.Libraries == nil {
		out.Libraries = []string{}
	}
	if out.Summary == nil {
		out.Summary = types.NewAnalysisSummary(result.Endpoints, result.SecurityFindings, types.Counters{})
	}
	return out
}
