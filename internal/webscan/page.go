package webscan

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/su1ph3r/effodio/internal/patterns"
	"github.com/su1ph3r/effodio/pkg/types"
)

// page is the parsed top-level document
type page struct {
	markup  string   // HTML with inline script bodies removed
	inline  []string // inline script bodies in document order
	scripts []string // absolute external script URLs, deduplicated
	forms   []form
}

// form is a <form> with its resolved action
type form struct {
	action  string
	method  types.Method
	enctype string
	html    string
}

// parsePage splits the document into markup, inline scripts, external script
// URLs and forms
func parsePage(body []byte, base *url.URL) (*page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	p := &page{}
	seen := make(map[string]bool)

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			abs, ok := resolveFetchURL(base, src)
			if ok && !seen[abs] {
				seen[abs] = true
				p.scripts = append(p.scripts, abs)
			}
			return
		}
		if typ, _ := s.Attr("type"); isDataScript(typ) {
			s.Empty()
			return
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			p.inline = append(p.inline, text)
		}
		s.Empty()
	})

	doc.Find("form").Each(func(_ int, s *goquery.Selection) {
		action, _ := s.Attr("action")
		action = strings.TrimSpace(action)
		if action == "" {
			action = base.String()
		}
		method, _ := s.Attr("method")
		enctype, _ := s.Attr("enctype")
		html, _ := goquery.OuterHtml(s)

		m := types.ParseMethod(method)
		if m == types.MethodUnknown {
			m = types.MethodGET
		}
		p.forms = append(p.forms, form{
			action:  action,
			method:  m,
			enctype: enctype,
			html:    html,
		})
	})

	markup, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("rendering html: %w", err)
	}
	p.markup = markup
	return p, nil
}

// isDataScript reports script types that carry data or templates, not code
func isDataScript(typ string) bool {
	typ = strings.ToLower(strings.TrimSpace(typ))
	switch typ {
	case "", "text/javascript", "application/javascript", "module", "text/babel", "application/ecmascript":
		return false
	default:
		return true
	}
}

// resolveFetchURL resolves a script or document reference for fetching
func resolveFetchURL(base *url.URL, ref string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(u)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	abs.Fragment = ""
	return abs.String(), true
}

// endpointResolver returns the Extractor hook that turns relative candidates
// into absolute URLs on the page's origin. The original text of the path is
// kept so placeholders survive.
func endpointResolver(base *url.URL) func(string) (string, bool) {
	origin := base.Scheme + "://" + base.Host
	return func(candidate string) (string, bool) {
		lower := strings.ToLower(candidate)
		switch {
		case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
			return candidate, true
		case strings.HasPrefix(candidate, "//"):
			return base.Scheme + ":" + candidate, true
		case strings.HasPrefix(candidate, "/"):
			return origin + candidate, true
		case strings.Contains(lower, "://"), strings.HasPrefix(lower, "ws:"), strings.HasPrefix(lower, "wss:"):
			return candidate, true
		}

		if strings.Contains(candidate, ":") && !strings.Contains(candidate, "/") {
			return "", false
		}
		u, err := url.Parse(candidate)
		if err != nil {
			return "", false
		}
		return base.ResolveReference(u).String(), true
	}
}

// formBodyType maps a form enctype to a body type
func formBodyType(enctype string) string {
	if strings.Contains(strings.ToLower(enctype), "multipart") {
		return patterns.BodyMultipart
	}
	return patterns.BodyForm
}
