package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/su1ph3r/effodio/pkg/types"
)

// documentMethods are the verbs an Operation can carry
var documentMethods = map[string]types.Method{
	"GET":    types.MethodGET,
	"POST":   types.MethodPOST,
	"PUT":    types.MethodPUT,
	"PATCH":  types.MethodPATCH,
	"DELETE": types.MethodDELETE,
}

func parseOpenAPI3(content []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	return doc, nil
}

// parseSwagger2 converts a Swagger 2 document to OpenAPI 3. The base path is
// returned separately because the conversion only keeps it when a host is
// declared.
func parseSwagger2(content []byte) (*openapi3.T, string, error) {
	data, err := toJSON(content)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	var doc2 openapi2.T
	if err := json.Unmarshal(data, &doc2); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	doc3, err := openapi2conv.ToV3(&doc2)
	if err != nil {
		return nil, "", fmt.Errorf("%w: converting swagger 2: %v", ErrParseFailed, err)
	}
	return doc3, doc2.BasePath, nil
}

// operations flattens doc.Paths in a stable order
func operations(doc *openapi3.T, basePath string) []Operation {
	if doc == nil || doc.Paths == nil {
		return nil
	}

	pathMap := doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for p := range pathMap {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var ops []Operation
	for _, path := range paths {
		item := pathMap[path]
		if item == nil {
			continue
		}
		byMethod := item.Operations()
		methods := make([]string, 0, len(byMethod))
		for m := range byMethod {
			methods = append(methods, m)
		}
		sort.Strings(methods)

		for _, m := range methods {
			method, ok := documentMethods[NormalizeMethod(m)]
			if !ok {
				continue
			}
			op := byMethod[m]
			ops = append(ops, Operation{
				Method:      method,
				Path:        JoinPath(basePath, path),
				OperationID: op.OperationID,
				Summary:     op.Summary,
				HasBody:     op.RequestBody != nil,
			})
		}
	}
	return ops
}

// serverBasePath takes the path of the first declared server
func serverBasePath(doc *openapi3.T) string {
	if len(doc.Servers) == 0 || doc.Servers[0] == nil {
		return ""
	}
	raw := doc.Servers[0].URL
	if strings.HasPrefix(raw, "/") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Path
}

// toJSON turns a YAML document into JSON; JSON passes through
func toJSON(content []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(content)
	if bytes.HasPrefix(trimmed, []byte("{")) {
		return trimmed, nil
	}
	var v interface{}
	if err := yaml.Unmarshal(trimmed, &v); err != nil {
		return nil, err
	}
	return json.Marshal(stringKeys(v))
}

// stringKeys rewrites YAML maps with non-string keys (unquoted response
// codes) so they marshal as JSON objects
func stringKeys(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			t[k] = stringKeys(val)
		}
		return t
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case []interface{}:
		for i, val := range t {
			t[i] = stringKeys(val)
		}
		return t
	default:
		return v
	}
}
