package analyzer

import (
	"sort"

	"github.com/su1ph3r/effodio/internal/classifier"
	"github.com/su1ph3r/effodio/internal/patterns"
	"github.com/su1ph3r/effodio/internal/security"
	"github.com/su1ph3r/effodio/pkg/types"
)

// Extractor runs the per-buffer pass: URL rules, classification, UI rules,
// security rules and library detection
type Extractor struct {
	Classifier *classifier.Classifier
	Scanner    *security.Scanner
	URLRadius  int
	UIRadius   int

	// Resolve, when set, rewrites a cleaned candidate before filtering (the
	// web variant resolves relative URLs against the page). Returning false
	// drops the candidate.
	Resolve func(candidate string) (string, bool)
}

// NewExtractor creates an extractor with the archive classifier
func NewExtractor(urlRadius, uiRadius int) *Extractor {
	if urlRadius <= 0 {
		urlRadius = patterns.DefaultURLRadius
	}
	if uiRadius <= 0 {
		uiRadius = patterns.DefaultUIRadius
	}
	return &Extractor{
		Classifier: classifier.New(),
		Scanner:    security.NewScanner(),
		URLRadius:  urlRadius,
		UIRadius:   uiRadius,
	}
}

// Buffer is one text source handed to the extractor
type Buffer struct {
	Index    int    // walk order of the source
	Location string // reported as sourceLocation
	Source   string // web source tag, empty for archives
	Text     string
}

// Process runs every rule family over buf and feeds agg
func (x *Extractor) Process(agg *Aggregator, buf Buffer) {
	x.ProcessWith(agg, buf, nil)
}

// ProcessWith is Process with a filter for URL matches the caller has already
// accounted for (call sites extracted with their options, for example)
func (x *Extractor) ProcessWith(agg *Aggregator, buf Buffer, skip func(patterns.Match) bool) {
	x.ProcessEndpoints(agg, buf, skip)
	x.processUI(agg, buf)

	report := x.Scanner.Scan(buf.Text, buf.Location)
	agg.AddFindings(buf.Index, report.Findings)
	agg.AddCounters(report.Counters)

	agg.AddLibraries(patterns.MatchingNames(patterns.LibraryRules, buf.Text))
}

// ProcessEndpoints runs the URL-shape rules over buf. Matches for which skip
// returns true are ignored.
func (x *Extractor) ProcessEndpoints(agg *Aggregator, buf Buffer, skip func(patterns.Match) bool) {
	for _, rule := range patterns.URLRules {
		for _, m := range rule.FindAll(buf.Text) {
			if skip != nil && skip(m) {
				continue
			}
			ep, ok := x.Candidate(m.Value, buf.Text, m.Start, buf.Location)
			if !ok {
				continue
			}
			ep.Source = buf.Source
			agg.AddEndpoint(ep, Order{Source: buf.Index, Offset: m.Start})
		}
	}
}

// Candidate cleans, filters and classifies one raw URL match
func (x *Extractor) Candidate(raw, text string, offset int, location string) (types.Endpoint, bool) {
	return x.CandidateAs(types.MethodUnknown, raw, text, offset, location)
}

// CandidateAs is Candidate for a match whose verb is already known
func (x *Extractor) CandidateAs(method types.Method, raw, text string, offset int, location string) (types.Endpoint, bool) {
	cleaned, ok := patterns.CleanURL(raw)
	if !ok {
		return types.Endpoint{}, false
	}
	if x.Resolve != nil {
		if cleaned, ok = x.Resolve(cleaned); !ok {
			return types.Endpoint{}, false
		}
	}
	if !patterns.IsLikelyBackendPath(cleaned) {
		return types.Endpoint{}, false
	}
	context := patterns.ExtractContext(text, offset, x.URLRadius)
	return x.Classifier.ClassifyAs(method, cleaned, context, location), true
}

func (x *Extractor) processUI(agg *Aggregator, buf Buffer) {
	claimed := make(map[int]bool)
	for _, set := range patterns.UIElementRules {
		for _, rule := range set.Rules {
			for _, m := range rule.FindAll(buf.Text) {
				if claimed[m.Start] {
					continue
				}
				claimed[m.Start] = true

				context := patterns.ExtractContext(buf.Text, m.Start, x.UIRadius)
				listeners := patterns.MatchingNames(patterns.ListenerRules, context)
				if len(listeners) == 0 {
					continue
				}
				sort.Strings(listeners)

				agg.AddUIComponent(types.UIComponent{
					Kind:           set.Effect,
					ID:             firstValue(m.Value, patterns.AndroidIDRule, patterns.HTMLIDRule),
					Text:           firstValue(m.Value, patterns.AndroidTextRule, patterns.HTMLTextRule),
					Listeners:      listeners,
					SourceLocation: buf.Location,
				}, Order{Source: buf.Index, Offset: m.Start})
			}
		}
	}
}

// firstValue returns the captured value of the first rule matching attrs
func firstValue(attrs string, rules ...*patterns.Rule) string {
	for _, r := range rules {
		if m := r.FindAll(attrs); len(m) > 0 {
			return m[0].Value
		}
	}
	return ""
}
