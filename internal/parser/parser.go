// Package parser reads API description documents served by a target
// (OpenAPI 3 and Swagger 2, JSON or YAML) into a flat list of operations.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/su1ph3r/effodio/pkg/types"
)

// Operation is one declared path and verb
type Operation struct {
	Method      types.Method
	Path        string // base path joined with the declared path
	OperationID string
	Summary     string
	HasBody     bool
}

// DocType identifies a description format
type DocType string

const (
	DocUnknown  DocType = ""
	DocOpenAPI3 DocType = "openapi3"
	DocSwagger2 DocType = "swagger2"
)

// Errors
var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrParseFailed       = errors.New("failed to parse document")
)

// DetectDocType reads the version marker at the top of content
func DetectDocType(content []byte) DocType {
	content = bytes.TrimSpace(content)
	if len(content) == 0 {
		return DocUnknown
	}

	var marker struct {
		OpenAPI string `yaml:"openapi"`
		Swagger string `yaml:"swagger"`
	}
	if err := yaml.Unmarshal(content, &marker); err != nil {
		return DocUnknown
	}

	switch {
	case strings.HasPrefix(marker.OpenAPI, "3."):
		return DocOpenAPI3
	case strings.HasPrefix(marker.Swagger, "2."):
		return DocSwagger2
	default:
		return DocUnknown
	}
}

// ParseDocument returns every operation content declares, ordered by path
// then verb
func ParseDocument(content []byte) ([]Operation, error) {
	switch DetectDocType(content) {
	case DocOpenAPI3:
		doc, err := parseOpenAPI3(content)
		if err != nil {
			return nil, err
		}
		return operations(doc, serverBasePath(doc)), nil
	case DocSwagger2:
		doc, basePath, err := parseSwagger2(content)
		if err != nil {
			return nil, err
		}
		return operations(doc, basePath), nil
	default:
		return nil, fmt.Errorf("%w: no openapi or swagger version marker", ErrUnsupportedFormat)
	}
}

// NormalizeMethod normalizes HTTP method to uppercase
func NormalizeMethod(method string) string {
	return strings.ToUpper(strings.TrimSpace(method))
}

// NormalizePath normalizes a URL path
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// JoinPath joins a base path and a declared path
func JoinPath(base, path string) string {
	base = strings.TrimSuffix(strings.TrimSpace(base), "/")
	if base == "" {
		return NormalizePath(path)
	}
	return NormalizePath(NormalizePath(base) + NormalizePath(path))
}
