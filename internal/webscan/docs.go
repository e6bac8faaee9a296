package webscan

import (
	"context"
	"mime"
	"net/url"
	"strings"

	"github.com/su1ph3r/effodio/internal/classifier"
	"github.com/su1ph3r/effodio/internal/parser"
	"github.com/su1ph3r/effodio/pkg/types"
)

// DocPaths are the conventional API documentation locations probed on the
// page's origin
var DocPaths = []string{
	"/swagger.json",
	"/swagger.yaml",
	"/openapi.json",
	"/openapi.yaml",
	"/api-docs",
	"/api-docs.json",
	"/v2/api-docs",
	"/v3/api-docs",
	"/swagger/v1/swagger.json",
	"/api/swagger.json",
	"/api/openapi.json",
	"/api/v1/swagger.json",
	"/swagger-ui.html",
	"/docs",
	"/redoc",
}

// indicator for a documented request body
const docBodyIndicator = "body"

// docHit is the outcome of one probe
type docHit struct {
	url        string
	operations []parser.Operation
}

// probeDoc fetches one documentation location. A hit is a 2xx response that
// either parses as an API description or is not an HTML page (a catch-all
// single page app answers every path with its index).
func (s *Scanner) probeDoc(ctx context.Context, docURL string) (*docHit, bool) {
	resp, err := s.fetcher.Fetch(ctx, docURL, s.config.Fetch.MaxHTMLBytes)
	if err != nil {
		s.logger.Debug("doc probe failed", "url", docURL, "error", err)
		return nil, false
	}
	if !resp.OK() || len(resp.Body) == 0 {
		return nil, false
	}

	ops, err := parser.ParseDocument(resp.Body)
	if err != nil {
		if isHTML(resp.ContentType) {
			return nil, false
		}
		s.logger.Debug("documentation not parseable", "url", docURL, "error", err)
	}
	return &docHit{url: docURL, operations: ops}, true
}

// docEndpoints turns a hit into a READ endpoint for the document itself plus
// one endpoint per declared path and verb
func docEndpoints(c *classifier.Classifier, origin string, hit *docHit) []types.Endpoint {
	doc := c.ClassifyAs(types.MethodGET, hit.url, "", hit.url)
	doc.PersistenceOp = types.OpRead
	doc.Confidence = classifier.ScoreConfidence(doc.Method, doc.PersistenceOp, len(doc.PayloadIndicators))
	doc.Source = types.SourceAPIDocs

	endpoints := []types.Endpoint{doc}
	for _, op := range hit.operations {
		u := origin + op.Path
		context := strings.TrimSpace(op.OperationID + " " + op.Summary)
		ep := c.ClassifyAs(op.Method, u, context, hit.url)
		ep.Source = types.SourceAPIDocs
		if op.HasBody {
			classifier.AddPayloadIndicator(&ep, docBodyIndicator)
		}
		endpoints = append(endpoints, ep)
	}
	return endpoints
}

func docURLs(base *url.URL) []string {
	origin := base.Scheme + "://" + base.Host
	urls := make([]string, len(DocPaths))
	for i, p := range DocPaths {
		urls[i] = origin + p
	}
	return urls
}

func isHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), "html")
	}
	return mt == "text/html" || mt == "application/xhtml+xml"
}
