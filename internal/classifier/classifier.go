// Package classifier maps a candidate URL and its surrounding source to an
// endpoint record: verb, persistence operation, payload shape, confidence and
// UI binding.
package classifier

import (
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/su1ph3r/effodio/internal/patterns"
	"github.com/su1ph3r/effodio/pkg/types"
)

// UI element labels reported on endpoints
const (
	UIElementButton = "Button"
	UIElementInput  = "Input Field"
)

// idSegment matches a numeric or UUID path segment
var idSegment = regexp.MustCompile(`(?i)/(?:\d+|[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}|\{[^}/]+\}|:[a-z_]+)(?:/|\?|#|$)`)

// Classifier classifies candidate endpoints
type Classifier struct {
	// IDSegmentUpdate makes a POST/PUT/PATCH on a path with an id segment an
	// UPDATE before any other persistence rule is consulted. Web scans enable it.
	IDSegmentUpdate bool
}

// New creates a classifier with the archive defaults
func New() *Classifier {
	return &Classifier{}
}

// NewWeb creates a classifier for web-app scans
func NewWeb() *Classifier {
	return &Classifier{IDSegmentUpdate: true}
}

// Classify builds the endpoint record for url found at location
func (c *Classifier) Classify(url, context, location string) types.Endpoint {
	return c.ClassifyAs(types.MethodUnknown, url, context, location)
}

// ClassifyAs is Classify with a verb already known from the call site.
// MethodUnknown falls back to inference from the context.
func (c *Classifier) ClassifyAs(method types.Method, url, context, location string) types.Endpoint {
	if method == types.MethodUnknown || method == "" {
		method = DetermineMethod(context, url)
	}
	op := c.PersistenceOp(method, url, context)
	hasPayload, indicators := ScorePayload(context)
	ui := ExtractUIInfo(context)

	return types.Endpoint{
		URL:               url,
		Method:            method,
		SourceLocation:    location,
		PersistenceOp:     op,
		HasPayload:        hasPayload,
		PayloadIndicators: indicators,
		Confidence:        ScoreConfidence(method, op, len(indicators)),
		UIElement:         ui.Element,
		UIText:            ui.Text,
		UIEventType:       ui.EventType,
	}
}

// DetermineMethod infers the HTTP verb. Explicit cues in the context win,
// then verb-shaped URL paths, then request-body syntax (POST).
func DetermineMethod(context, url string) types.Method {
	if m, ok := patterns.FirstEffect(patterns.MethodRules, context); ok {
		return m
	}
	if m, ok := patterns.FirstEffect(patterns.MethodPathRules, url); ok {
		return m
	}
	if patterns.FirstMatching(patterns.BodyMarkerRules, context) != nil {
		return types.MethodPOST
	}
	return types.MethodUnknown
}

// PersistenceOp infers the persistence operation. An empty result means none
// was found.
func (c *Classifier) PersistenceOp(method types.Method, url, context string) types.PersistenceOp {
	if c.IDSegmentUpdate && HasIDSegment(url) {
		switch method {
		case types.MethodPOST, types.MethodPUT, types.MethodPATCH:
			return types.OpUpdate
		}
	}

	if op, ok := patterns.FirstEffect(patterns.PersistenceRules, strings.ToLower(url)+"\n"+context); ok {
		return op
	}
	return patterns.MethodDefaultOps[method]
}

// HasIDSegment reports whether the URL path carries a resource identifier
func HasIDSegment(url string) bool {
	return idSegment.MatchString(url)
}

// ScorePayload returns whether the context shows a request body and the
// sorted names of the matching payload indicators
func ScorePayload(context string) (bool, []string) {
	indicators := patterns.MatchingNames(patterns.PayloadRules, context)
	sort.Strings(indicators)
	return len(indicators) > 0, indicators
}

// AddPayloadIndicator records a body shape learned outside the context window,
// such as a call-site body or a documented request body, and re-scores the
// endpoint.
func AddPayloadIndicator(ep *types.Endpoint, name string) {
	if !slices.Contains(ep.PayloadIndicators, name) {
		ep.PayloadIndicators = append(ep.PayloadIndicators, name)
		sort.Strings(ep.PayloadIndicators)
	}
	ep.HasPayload = true
	ep.Confidence = ScoreConfidence(ep.Method, ep.PersistenceOp, len(ep.PayloadIndicators))
}

// ScoreConfidence applies the confidence tiers:
// high when the verb and the operation are both known, or three or more
// payload indicators corroborate; low when nothing at all was inferred.
func ScoreConfidence(method types.Method, op types.PersistenceOp, indicators int) string {
	switch {
	case (method != types.MethodUnknown && op != "") || indicators >= 3:
		return types.ConfidenceHigh
	case method == types.MethodUnknown && op == "" && indicators == 0:
		return types.ConfidenceLow
	default:
		return types.ConfidenceMedium
	}
}

// UIInfo is the UI binding inferred for an endpoint
type UIInfo struct {
	Element   string
	Text      string
	EventType string
}

// ExtractUIInfo looks for button or input cues around an endpoint
func ExtractUIInfo(context string) UIInfo {
	var info UIInfo

	switch {
	case patterns.UIButtonCue.Matches(context):
		info.Element = UIElementButton
		for _, r := range patterns.UITextRules {
			if m := r.FindAll(context); len(m) > 0 {
				info.Text = strings.TrimSpace(m[0].Value)
				break
			}
		}
	case patterns.UIInputCue.Matches(context):
		info.Element = UIElementInput
	}

	if ev, ok := patterns.FirstEffect(patterns.UIEventRules, context); ok {
		info.EventType = ev
	}
	return info
}
