// Package types provides core data structures for Effodio
package types

import "strings"

// Method is the HTTP verb inferred for an endpoint
type Method string

// Method constants
const (
	MethodGET     Method = "GET"
	MethodPOST    Method = "POST"
	MethodPUT     Method = "PUT"
	MethodPATCH   Method = "PATCH"
	MethodDELETE  Method = "DELETE"
	MethodUnknown Method = "UNKNOWN"
)

// ParseMethod normalizes a verb token, returning MethodUnknown for anything
// outside the supported set
func ParseMethod(s string) Method {
	switch Method(strings.ToUpper(strings.TrimSpace(s))) {
	case MethodGET:
		return MethodGET
	case MethodPOST:
		return MethodPOST
	case MethodPUT:
		return MethodPUT
	case MethodPATCH:
		return MethodPATCH
	case MethodDELETE:
		return MethodDELETE
	default:
		return MethodUnknown
	}
}

// PersistenceOp is the CRUD-family intent of an endpoint, distinct from its verb.
// The zero value means no operation was inferred.
type PersistenceOp string

// PersistenceOp constants
const (
	OpInsert PersistenceOp = "INSERT"
	OpUpdate PersistenceOp = "UPDATE"
	OpDelete PersistenceOp = "DELETE"
	OpUpsert PersistenceOp = "UPSERT"
	OpBulk   PersistenceOp = "BULK"
	OpRead   PersistenceOp = "READ"
)

// Endpoint source tags used by the web variant
const (
	SourceHTML         = "html"
	SourceInlineScript = "inline-script"
	SourceForm         = "form"
	SourceAPIDocs      = "api-documentation"
)

// Endpoint is a candidate backend API endpoint discovered in a source buffer
type Endpoint struct {
	URL               string        `json:"url" yaml:"url"`
	Method            Method        `json:"method" yaml:"method"`
	SourceLocation    string        `json:"source_location" yaml:"source_location"`
	PersistenceOp     PersistenceOp `json:"persistence_op,omitempty" yaml:"persistence_op,omitempty"`
	HasPayload        bool          `json:"has_payload" yaml:"has_payload"`
	PayloadIndicators []string      `json:"payload_indicators,omitempty" yaml:"payload_indicators,omitempty"`
	Confidence        string        `json:"confidence" yaml:"confidence"`
	UIElement         string        `json:"ui_element,omitempty" yaml:"ui_element,omitempty"`
	UIText            string        `json:"ui_text,omitempty" yaml:"ui_text,omitempty"`
	UIEventType       string        `json:"ui_event_type,omitempty" yaml:"ui_event_type,omitempty"`

	// Web variant only
	Source   string            `json:"source,omitempty" yaml:"source,omitempty"`
	Headers  map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	BodyType string            `json:"body_type,omitempty" yaml:"body_type,omitempty"`
}

// Key returns the deduplication identity of the endpoint
func (e *Endpoint) Key() string {
	return EndpointKey(e.URL, e.Method)
}

// EndpointKey builds the (lowercase url, method) identity key
func EndpointKey(url string, method Method) string {
	return strings.ToLower(url) + " " + string(method)
}

// UI component kinds
const (
	UIKindButton    = "button"
	UIKindTextField = "textField"
	UIKindImage     = "image"
)

// UIComponent is an interactive element with at least one detected listener
type UIComponent struct {
	Kind           string   `json:"kind" yaml:"kind"`
	ID             string   `json:"id,omitempty" yaml:"id,omitempty"`
	Text           string   `json:"text,omitempty" yaml:"text,omitempty"`
	Listeners      []string `json:"listeners" yaml:"listeners"`
	SourceLocation string   `json:"source_location" yaml:"source_location"`
}

// Key returns the deduplication identity of the component
func (c *UIComponent) Key() string {
	id := c.ID
	if id == "" {
		id = "unknown"
	}
	return c.Kind + "|" + id + "|" + c.SourceLocation
}

// DataOperation kinds
const (
	DataOpORM = "orm"
	DataOpSQL = "sql"
)

// DataOperation is an ORM-style verb call or SQL literal found in client code
type DataOperation struct {
	Kind      string        `json:"kind" yaml:"kind"`
	Target    string        `json:"target,omitempty" yaml:"target,omitempty"`
	Operation PersistenceOp `json:"operation,omitempty" yaml:"operation,omitempty"`
	Source    string        `json:"source" yaml:"source"`
	Snippet   string        `json:"snippet" yaml:"snippet"`
}
