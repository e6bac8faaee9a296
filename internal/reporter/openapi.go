package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/su1ph3r/effodio/internal/parser"
	"github.com/su1ph3r/effodio/internal/patterns"
	"github.com/su1ph3r/effodio/pkg/types"
)

var (
	numericSegment = regexp.MustCompile(`^\d+$`)
	uuidSegment    = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	paramSegment   = regexp.MustCompile(`^(?::([A-Za-z_]\w*)|\{([^}/]+)\})$`)
)

// skipped header parameters; OpenAPI describes these elsewhere
var reservedHeaders = map[string]bool{
	"accept":        true,
	"authorization": true,
	"content-type":  true,
}

// OpenAPIReporter exports the discovered endpoints as an OpenAPI 3 document.
// Endpoints whose verb could not be determined are left out.
type OpenAPIReporter struct {
	options ReportOptions
}

// NewOpenAPIReporter creates a new OpenAPI reporter
func NewOpenAPIReporter(options ReportOptions) *OpenAPIReporter {
	return &OpenAPIReporter{options: options}
}

// Format returns the format name
func (r *OpenAPIReporter) Format() string {
	return "openapi"
}

// Extension returns the file extension
func (r *OpenAPIReporter) Extension() string {
	return "openapi.json"
}

// Generate generates the OpenAPI document
func (r *OpenAPIReporter) Generate(result *types.AnalysisResult) ([]byte, error) {
	doc := r.Document(result)
	return json.MarshalIndent(doc, "", "  ")
}

// Write writes the OpenAPI document to a writer
func (r *OpenAPIReporter) Write(result *types.AnalysisResult, w io.Writer) error {
	data, err := r.Generate(result)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Document builds the OpenAPI model. Endpoints sharing a templated path and
// verb collapse into one operation, the first in result order winning.
func (r *OpenAPIReporter) Document(result *types.AnalysisResult) *openapi3.T {
	version := r.options.Version
	if version == "" {
		version = "0.0.0"
	}
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "Discovered API: " + result.Target,
			Version:     version,
			Description: fmt.Sprintf("Endpoints recovered by static %s analysis. Verbs and operations are heuristic.", result.Mode),
		},
		Paths: openapi3.NewPaths(),
	}

	servers := make(map[string]bool)
	tags := make(map[string]bool)

	for _, ep := range result.Endpoints {
		if ep.Method == types.MethodUnknown || ep.Method == "" {
			continue
		}
		server, path := splitEndpointURL(ep.URL)
		if server != "" && !servers[server] {
			servers[server] = true
			doc.Servers = append(doc.Servers, &openapi3.Server{URL: server})
		}

		template, params := templatePath(path)
		item := doc.Paths.Value(template)
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths.Set(template, item)
		}
		if item.GetOperation(string(ep.Method)) != nil {
			continue
		}

		category := types.EndpointCategory(ep.URL)
		tags[category] = true
		item.SetOperation(string(ep.Method), endpointOperation(ep, template, params, category))
	}

	sort.Slice(doc.Servers, func(i, j int) bool { return doc.Servers[i].URL < doc.Servers[j].URL })
	for _, name := range sortedBoolKeys(tags) {
		doc.Tags = append(doc.Tags, &openapi3.Tag{Name: name})
	}
	return doc
}

func endpointOperation(ep types.Endpoint, template string, params []string, category string) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.Tags = []string{category}
	op.OperationID = operationID(ep.Method, template)
	op.Summary = strings.TrimSpace(fmt.Sprintf("%s %s", ep.PersistenceOp, category))
	op.Extensions = map[string]any{
		"x-effodio-confidence": ep.Confidence,
		"x-effodio-source":     ep.SourceLocation,
	}

	for _, name := range params {
		p := openapi3.NewPathParameter(name).WithSchema(openapi3.NewStringSchema())
		op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: p})
	}
	for _, name := range sortedStringKeys(ep.Headers) {
		if reservedHeaders[strings.ToLower(name)] {
			continue
		}
		p := openapi3.NewHeaderParameter(name).WithSchema(openapi3.NewStringSchema())
		op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: p})
	}

	if ep.HasPayload && ep.Method != types.MethodGET && ep.Method != types.MethodDELETE {
		content := openapi3.NewContentWithSchema(openapi3.NewObjectSchema(), []string{mediaType(ep.BodyType)})
		op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithContent(content)}
	}

	op.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("Successful response"))
	return op
}

// splitEndpointURL separates an absolute URL into its origin and path. Relative
// candidates have no origin.
func splitEndpointURL(raw string) (string, string) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", parser.NormalizePath(raw)
	}
	server := ""
	if u.Scheme != "" && u.Host != "" {
		server = u.Scheme + "://" + u.Host
	}
	return server, parser.NormalizePath(u.Path)
}

// templatePath replaces identifier segments with named path parameters
func templatePath(path string) (string, []string) {
	segments := strings.Split(path, "/")
	var params []string
	seen := make(map[string]int)

	for i, seg := range segments {
		name := ""
		switch {
		case numericSegment.MatchString(seg), uuidSegment.MatchString(seg):
			name = "id"
		case paramSegment.MatchString(seg):
			m := paramSegment.FindStringSubmatch(seg)
			name = m[1] + m[2]
		default:
			continue
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s%d", name, n)
		}
		segments[i] = "{" + name + "}"
		params = append(params, name)
	}
	return strings.Join(segments, "/"), params
}

// operationID builds a camelCase identifier such as postApiUsersById
func operationID(method types.Method, template string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(string(method)))
	for _, seg := range strings.Split(template, "/") {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "{") {
			seg = "by-" + strings.Trim(seg, "{}")
		}
		for _, part := range strings.FieldsFunc(seg, func(r rune) bool {
			return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
		}) {
			b.WriteString(strings.ToUpper(part[:1]) + part[1:])
		}
	}
	return b.String()
}

func mediaType(bodyType string) string {
	switch bodyType {
	case patterns.BodyForm:
		return "application/x-www-form-urlencoded"
	case patterns.BodyMultipart:
		return "multipart/form-data"
	case patterns.BodyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

func sortedBoolKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedStringKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
