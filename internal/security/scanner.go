// Package security scans source buffers for secret, crypto, injection and
// WebView anti-patterns, and for sensitive manifest permissions.
package security

import (
	"fmt"
	"sort"
	"strings"

	"github.com/su1ph3r/effodio/internal/patterns"
	"github.com/su1ph3r/effodio/pkg/types"
)

const (
	// DefaultMaxFindings caps the finding list of one analysis
	DefaultMaxFindings = 50

	evidenceRadius = 100
	evidenceLength = 100
)

// KindSensitivePermission is the finding kind for sensitive manifest permissions
const KindSensitivePermission = "Sensitive Permission"

// Report is the outcome of scanning one buffer
type Report struct {
	Findings []types.SecurityFinding
	Counters types.Counters
}

// Scanner evaluates the security rule families
type Scanner struct {
	families []patterns.SecurityFamily
}

// NewScanner creates a scanner over the built-in rule families
func NewScanner() *Scanner {
	return &Scanner{families: patterns.SecurityFamilies}
}

// Scan checks text against every family. Every rule match is a finding, even
// when another rule of the family matched the same text.
func (s *Scanner) Scan(text, location string) Report {
	var report Report
	type located struct {
		start   int
		finding types.SecurityFinding
	}
	var found []located

	for _, fam := range s.families {
		for _, rule := range fam.Rules {
			for _, m := range rule.FindAll(text) {
				found = append(found, located{start: m.Start, finding: types.SecurityFinding{
					Kind:           fam.Kind,
					Severity:       fam.Severity,
					Description:    fmt.Sprintf("%s (%s)", fam.Description, rule.Name),
					SourceLocation: location,
					Evidence:       Evidence(text, m.Start, m.End),
				}})
				switch fam.Counter {
				case patterns.CounterHardcodedKeys:
					report.Counters.HardcodedKeys++
				case patterns.CounterWeakAlgorithms:
					report.Counters.WeakAlgorithms++
				case patterns.CounterSSLIssues:
					report.Counters.SSLIssues++
				}
			}
		}
	}

	for _, m := range patterns.PlainHTTPRule.FindAll(text) {
		if !patterns.IsPlainHTTPExempt(m.Value) {
			report.Counters.SSLIssues++
		}
	}

	// Findings within one buffer are reported in source order
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].start < found[j].start
	})
	for _, l := range found {
		report.Findings = append(report.Findings, l.finding)
	}

	return report
}

// Evidence returns the match plus its surroundings, whitespace collapsed and
// truncated
func Evidence(text string, start, end int) string {
	from := start - evidenceRadius
	if from < 0 {
		from = 0
	}
	to := end + evidenceRadius
	if to > len(text) {
		to = len(text)
	}

	collapsed := strings.Join(strings.Fields(text[from:to]), " ")
	collapsed = strings.ToValidUTF8(collapsed, "")

	runes := []rune(collapsed)
	if len(runes) > evidenceLength {
		return string(runes[:evidenceLength])
	}
	return collapsed
}

// ParsePermissions extracts declared permission names from a manifest, in
// declaration order and without duplicates
func ParsePermissions(manifest string) []string {
	seen := make(map[string]bool)
	var perms []string
	for _, m := range patterns.PermissionRule.FindAll(manifest) {
		if !seen[m.Value] {
			seen[m.Value] = true
			perms = append(perms, m.Value)
		}
	}
	return perms
}

// PermissionFindings emits one medium finding per sensitive permission
func PermissionFindings(perms []string, location string) []types.SecurityFinding {
	var findings []types.SecurityFinding
	for _, p := range perms {
		if !patterns.IsSensitivePermission(p) {
			continue
		}
		findings = append(findings, types.SecurityFinding{
			Kind:           KindSensitivePermission,
			Severity:       types.SeverityMedium,
			Description:    fmt.Sprintf("Application requests sensitive permission %s", patterns.ShortPermission(p)),
			SourceLocation: location,
			Evidence:       p,
		})
	}
	return findings
}

// Finalize orders findings critical first, keeping source order within a
// severity, and keeps at most limit of them. A limit <= 0 keeps everything.
func Finalize(findings []types.SecurityFinding, limit int) []types.SecurityFinding {
	sorted := make([]types.SecurityFinding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return types.SeverityRank(sorted[i].Severity) < types.SeverityRank(sorted[j].Severity)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
