package parser

import (
	"errors"
	"testing"

	"github.com/su1ph3r/effodio/pkg/types"
)

const petstoreV3 = `openapi: 3.0.0
info:
  title: Petstore
  version: 1.0.0
servers:
  - url: https://api.example.com/v1
paths:
  /pets:
    get:
      operationId: listPets
      responses:
        '200':
          description: ok
    post:
      operationId: createPet
      requestBody:
        content:
          application/json:
            schema:
              type: object
      responses:
        '201':
          description: created
  /pets/{petId}:
    delete:
      responses:
        '204':
          description: gone
    head:
      responses:
        '200':
          description: ok
`

const petstoreV2 = `swagger: "2.0"
info:
  title: Legacy
  version: "1"
basePath: /api
paths:
  /users/{id}:
    put:
      operationId: updateUser
      responses:
        200:
          description: ok
    get:
      responses:
        200:
          description: ok
`

func TestDetectDocType(t *testing.T) {
	tests := []struct {
		content  string
		expected DocType
	}{
		{petstoreV3, DocOpenAPI3},
		{petstoreV2, DocSwagger2},
		{`{"openapi":"3.1.0","info":{"title":"x","version":"1"},"paths":{}}`, DocOpenAPI3},
		{`{"swagger":"2.0"}`, DocSwagger2},
		{`<html>Swagger UI</html>`, DocUnknown},
		{``, DocUnknown},
		{`{"name":"not a spec"}`, DocUnknown},
	}
	for _, tt := range tests {
		if got := DetectDocType([]byte(tt.content)); got != tt.expected {
			t.Errorf("DetectDocType(%.30q) = %q, expected %q", tt.content, got, tt.expected)
		}
	}
}

func TestParseDocument_OpenAPI3(t *testing.T) {
	ops, err := ParseDocument([]byte(petstoreV3))
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}

	expected := []struct {
		method types.Method
		path   string
	}{
		{types.MethodGET, "/v1/pets"},
		{types.MethodPOST, "/v1/pets"},
		{types.MethodDELETE, "/v1/pets/{petId}"},
	}
	if len(ops) != len(expected) {
		t.Fatalf("got %d operations, expected %d: %+v", len(ops), len(expected), ops)
	}
	for i, e := range expected {
		if ops[i].Method != e.method || ops[i].Path != e.path {
			t.Errorf("ops[%d] = %s %s, expected %s %s", i, ops[i].Method, ops[i].Path, e.method, e.path)
		}
	}
	if !ops[1].HasBody {
		t.Error("POST /pets should report a request body")
	}
	if ops[0].OperationID != "listPets" {
		t.Errorf("OperationID = %q, expected listPets", ops[0].OperationID)
	}
}

func TestParseDocument_Swagger2(t *testing.T) {
	ops, err := ParseDocument([]byte(petstoreV2))
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("got %d operations, expected 2: %+v", len(ops), ops)
	}
	if ops[0].Method != types.MethodGET || ops[0].Path != "/api/users/{id}" {
		t.Errorf("ops[0] = %s %s, expected GET /api/users/{id}", ops[0].Method, ops[0].Path)
	}
	if ops[1].Method != types.MethodPUT || ops[1].OperationID != "updateUser" {
		t.Errorf("ops[1] = %+v, expected PUT updateUser", ops[1])
	}
}

func TestParseDocument_Unsupported(t *testing.T) {
	_, err := ParseDocument([]byte(`<html></html>`))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ParseDocument error = %v, expected ErrUnsupportedFormat", err)
	}
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		base, path, expected string
	}{
		{"", "/pets", "/pets"},
		{"/v1", "/pets", "/v1/pets"},
		{"/v1/", "pets/", "/v1/pets"},
		{"/", "/pets", "/pets"},
		{"", "", "/"},
	}
	for _, tt := range tests {
		if got := JoinPath(tt.base, tt.path); got != tt.expected {
			t.Errorf("JoinPath(%q, %q) = %q, expected %q", tt.base, tt.path, got, tt.expected)
		}
	}
}
