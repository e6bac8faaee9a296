package types

import (
	"time"
)

// SecurityFinding is a security anti-pattern detected in a source buffer
type SecurityFinding struct {
	Kind           string `json:"kind" yaml:"kind"`
	Severity       string `json:"severity" yaml:"severity"` // critical, high, medium, low
	Description    string `json:"description" yaml:"description"`
	SourceLocation string `json:"source_location" yaml:"source_location"`
	Evidence       string `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}

// Severity constants
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// SeverityRank orders severities critical first
func SeverityRank(severity string) int {
	switch severity {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 4
	}
}

// Confidence constants
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// ConfidenceRank orders confidence tiers high first
func ConfidenceRank(confidence string) int {
	switch confidence {
	case ConfidenceHigh:
		return 0
	case ConfidenceMedium:
		return 1
	case ConfidenceLow:
		return 2
	default:
		return 3
	}
}

// Analysis modes
const (
	ModeArchive = "archive"
	ModeWebApp  = "webapp"
)

// AnalysisResult contains the complete output of one analysis pass
type AnalysisResult struct {
	ScanID           string            `json:"scan_id" yaml:"scan_id"`
	Mode             string            `json:"mode" yaml:"mode"`
	Target           string            `json:"target" yaml:"target"`
	StartTime        time.Time         `json:"start_time" yaml:"start_time"`
	EndTime          time.Time         `json:"end_time" yaml:"end_time"`
	Duration         time.Duration     `json:"duration" yaml:"duration"`
	Endpoints        []Endpoint        `json:"endpoints" yaml:"endpoints"`
	UIComponents     []UIComponent     `json:"ui_components" yaml:"ui_components"`
	SecurityFindings []SecurityFinding `json:"security_findings" yaml:"security_findings"`
	Permissions      []string          `json:"permissions" yaml:"permissions"`
	Libraries        []string          `json:"libraries" yaml:"libraries"`
	DataOperations   []DataOperation   `json:"data_operations,omitempty" yaml:"data_operations,omitempty"`
	ScriptURLs       []string          `json:"script_urls,omitempty" yaml:"script_urls,omitempty"`
	Summary          *AnalysisSummary  `json:"summary" yaml:"summary"`
}

// AnalysisSummary provides derived counters about the pass
type AnalysisSummary struct {
	TotalEndpoints int            `json:"total_endpoints" yaml:"total_endpoints"`
	ByMethod       map[string]int `json:"by_method" yaml:"by_method"`
	ByConfidence   map[string]int `json:"by_confidence" yaml:"by_confidence"`
	PersistenceOps map[string]int `json:"persistence_ops" yaml:"persistence_ops"`
	Categories     map[string]int `json:"categories" yaml:"categories"`
	TotalFindings  int            `json:"total_findings" yaml:"total_findings"`
	BySeverity     map[string]int `json:"by_severity" yaml:"by_severity"`
	HardcodedKeys  int            `json:"hardcoded_keys" yaml:"hardcoded_keys"`
	WeakAlgorithms int            `json:"weak_algorithms" yaml:"weak_algorithms"`
	SSLIssues      int            `json:"ssl_issues" yaml:"ssl_issues"`
	FilesScanned   int            `json:"files_scanned" yaml:"files_scanned"`
	FilesSkipped   int            `json:"files_skipped" yaml:"files_skipped"`
	ScriptsFetched int            `json:"scripts_fetched,omitempty" yaml:"scripts_fetched,omitempty"`
	ScriptsFailed  int            `json:"scripts_failed,omitempty" yaml:"scripts_failed,omitempty"`
	ScriptsFound   int            `json:"scripts_found,omitempty" yaml:"scripts_found,omitempty"`
}

// Counters are the security tallies accumulated alongside findings
type Counters struct {
	HardcodedKeys  int
	WeakAlgorithms int
	SSLIssues      int
}

// NewAnalysisSummary creates a summary from the final endpoint and finding lists
func NewAnalysisSummary(endpoints []Endpoint, findings []SecurityFinding, counters Counters) *AnalysisSummary {
	summary := &AnalysisSummary{
		TotalEndpoints: len(endpoints),
		ByMethod:       make(map[string]int),
		ByConfidence:   make(map[string]int),
		PersistenceOps: make(map[string]int),
		Categories:     make(map[string]int),
		TotalFindings:  len(findings),
		BySeverity:     make(map[string]int),
		HardcodedKeys:  counters.HardcodedKeys,
		WeakAlgorithms: counters.WeakAlgorithms,
		SSLIssues:      counters.SSLIssues,
	}

	for _, ep := range endpoints {
		summary.ByMethod[string(ep.Method)]++
		summary.ByConfidence[ep.Confidence]++
		if ep.PersistenceOp != "" {
			summary.PersistenceOps[string(ep.PersistenceOp)]++
		}
		summary.Categories[EndpointCategory(ep.URL)]++
	}

	for _, f := range findings {
		summary.BySeverity[f.Severity]++
	}

	return summary
}
