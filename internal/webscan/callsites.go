package webscan

import (
	"sort"
	"strings"

	"github.com/su1ph3r/effodio/internal/patterns"
	"github.com/su1ph3r/effodio/pkg/types"
)

// maxCallSpan bounds how far an argument list is followed
const maxCallSpan = 8192

// Call-site kinds
const (
	CallFetch   = "fetch"
	CallAxios   = "axios"
	CallJQuery  = "jquery"
	CallXHR     = "xhr"
	CallBaseURL = "base-url"
)

// CallSite is one request expression found in a script
type CallSite struct {
	Kind     string
	URL      string
	Start    int // offset of the call expression
	End      int // offset just past its argument list
	Method   types.Method
	Headers  map[string]string
	BodyType string
}

// Covers reports whether offset lies inside the call expression
func (c CallSite) Covers(offset int) bool {
	return offset >= c.Start && offset < c.End
}

// FindCallSites extracts request call sites with a literal URL, ordered by
// offset
func FindCallSites(text string) []CallSite {
	var sites []CallSite

	for _, m := range patterns.FetchCallRule.FindAll(text) {
		args, end := balanced(text, m.End-1)
		argv := splitArgs(args)
		if cs, ok := siteFromArgs(CallFetch, types.MethodUnknown, argv, m.Start, end); ok {
			if len(argv) > 1 {
				applyOptions(&cs, argv[1])
			}
			sites = append(sites, cs)
		}
	}

	for _, m := range patterns.AxiosVerbRule.FindAll(text) {
		args, end := balanced(text, m.End-1)
		argv := splitArgs(args)
		verb := strings.ToLower(m.Value)
		cs, ok := siteFromArgs(CallAxios, types.ParseMethod(verb), argv, m.Start, end)
		if !ok {
			continue
		}
		config := 1
		if verb == "post" || verb == "put" || verb == "patch" {
			config = 2
			if len(argv) > 1 {
				cs.BodyType = bodyType(argv[1])
			}
		}
		if len(argv) > config {
			applyOptions(&cs, argv[config])
		}
		sites = append(sites, cs)
	}

	for _, m := range patterns.AxiosConfigRule.FindAll(text) {
		obj, end := balanced(text, m.End-1)
		if cs, ok := siteFromObject(CallAxios, types.MethodUnknown, "{"+obj+"}", m.Start, end); ok {
			sites = append(sites, cs)
		}
	}

	for _, m := range patterns.JQueryCallRule.FindAll(text) {
		args, end := balanced(text, m.End-1)
		argv := splitArgs(args)
		if len(argv) == 0 {
			continue
		}
		method := types.MethodGET
		if m.Value == "post" {
			method = types.MethodPOST
		}

		if strings.HasPrefix(argv[0], "{") {
			if cs, ok := siteFromObject(CallJQuery, method, argv[0], m.Start, end); ok {
				sites = append(sites, cs)
			}
			continue
		}
		cs, ok := siteFromArgs(CallJQuery, types.MethodUnknown, argv, m.Start, end)
		if !ok {
			continue
		}
		if len(argv) > 1 {
			switch m.Value {
			case "ajax":
				applyOptions(&cs, argv[1])
			case "post":
				cs.BodyType = bodyType(argv[1])
			}
		}
		if cs.Method == types.MethodUnknown {
			cs.Method = method
		}
		sites = append(sites, cs)
	}

	for _, m := range patterns.XHROpenRule.FindAll(text) {
		lit, end, ok := literalAt(text, m.End-1)
		if !ok {
			continue
		}
		sites = append(sites, CallSite{
			Kind:   CallXHR,
			URL:    lit,
			Start:  m.Start,
			End:    end,
			Method: types.ParseMethod(m.Value),
		})
	}

	for _, m := range patterns.BaseURLRule.FindAll(text) {
		sites = append(sites, CallSite{
			Kind:   CallBaseURL,
			URL:    m.Value,
			Start:  m.Start,
			End:    m.End,
			Method: types.MethodUnknown,
		})
	}

	sort.SliceStable(sites, func(i, j int) bool { return sites[i].Start < sites[j].Start })
	return sites
}

// siteFromArgs builds a call site whose first argument is the URL literal
func siteFromArgs(kind string, method types.Method, argv []string, start, end int) (CallSite, bool) {
	if len(argv) == 0 {
		return CallSite{}, false
	}
	u, ok := stringLiteral(argv[0])
	if !ok {
		return CallSite{}, false
	}
	return CallSite{Kind: kind, URL: u, Start: start, End: end, Method: method}, true
}

// siteFromObject builds a call site from a config object carrying url
func siteFromObject(kind string, method types.Method, obj string, start, end int) (CallSite, bool) {
	m := patterns.OptionURLRule.FindAll(obj)
	if len(m) == 0 {
		return CallSite{}, false
	}
	u, _, ok := literalAt(obj, m[0].End-1)
	if !ok {
		return CallSite{}, false
	}
	cs := CallSite{Kind: kind, URL: u, Start: start, End: end, Method: types.MethodUnknown}
	applyOptions(&cs, obj)
	if cs.Method == types.MethodUnknown {
		cs.Method = method
	}
	return cs, true
}

// applyOptions reads method, headers and body shape from an options object
func applyOptions(cs *CallSite, obj string) {
	obj = strings.TrimSpace(obj)
	if !strings.HasPrefix(obj, "{") {
		return
	}

	if cs.Method == types.MethodUnknown {
		if m := patterns.OptionMethodRule.FindAll(obj); len(m) > 0 {
			cs.Method = types.ParseMethod(m[0].Value)
		}
	}

	if m := patterns.OptionHeadersRule.FindAll(obj); len(m) > 0 {
		inner, _ := balanced(obj, m[0].End-1)
		for _, pair := range patterns.HeaderPairRule.FindAll(inner) {
			if cs.Headers == nil {
				cs.Headers = make(map[string]string)
			}
			cs.Headers[pair.Groups[1]] = pair.Groups[2]
		}
	}

	if cs.BodyType == "" {
		if m := patterns.OptionBodyRule.FindAll(obj); len(m) > 0 {
			cs.BodyType = bodyType(m[0].Value)
		}
	}
	if cs.BodyType == "" {
		if m := patterns.OptionContentTypeRule.FindAll(obj); len(m) > 0 {
			cs.BodyType = patterns.BodyTypeFromContentType(m[0].Value)
		}
	}
	if cs.BodyType == "" {
		for k, v := range cs.Headers {
			if strings.EqualFold(k, "Content-Type") {
				cs.BodyType = patterns.BodyTypeFromContentType(v)
			}
		}
	}
}

func bodyType(expr string) string {
	t, _ := patterns.FirstEffect(patterns.BodyTypeRules, expr)
	return t
}

// balanced returns the text between the bracket at open and its partner,
// and the offset just past the partner. Quotes and nested brackets are
// honoured; an unterminated list is cut at maxCallSpan.
func balanced(text string, open int) (string, int) {
	if open < 0 || open >= len(text) {
		return "", open
	}
	limit := open + maxCallSpan
	if limit > len(text) {
		limit = len(text)
	}

	depth := 0
	var quote byte
	for i := open; i < limit; i++ {
		c := text[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return text[open+1 : i], i + 1
			}
		}
	}
	return text[open+1 : limit], limit
}

// splitArgs splits an argument list at top-level commas
func splitArgs(args string) []string {
	var out []string
	depth := 0
	var quote byte
	last := 0
	for i := 0; i < len(args); i++ {
		c := args[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(args[last:i]))
				last = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(args[last:]); tail != "" {
		out = append(out, tail)
	}
	return out
}

// stringLiteral returns the leading string literal of a JS expression.
// Template substitutions become :param so the path shape survives.
func stringLiteral(expr string) (string, bool) {
	expr = strings.TrimSpace(expr)
	lit, _, ok := literalAt(expr, 0)
	return lit, ok
}

// literalAt reads the string literal whose opening quote is at pos
func literalAt(text string, pos int) (string, int, bool) {
	if pos < 0 || pos >= len(text) {
		return "", pos, false
	}
	quote := text[pos]
	if quote != '"' && quote != '\'' && quote != '`' {
		return "", pos, false
	}

	var b strings.Builder
	for i := pos + 1; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\\' && i+1 < len(text):
			b.WriteByte(c)
			b.WriteByte(text[i+1])
			i++
		case c == quote:
			return b.String(), i + 1, true
		case quote == '`' && c == '$' && i+1 < len(text) && text[i+1] == '{':
			_, end := balanced(text, i+1)
			b.WriteString(":param")
			i = end - 1
		case c == '\n' && quote != '`':
			return "", i, false
		default:
			b.WriteByte(c)
		}
	}
	return "", len(text), false
}
