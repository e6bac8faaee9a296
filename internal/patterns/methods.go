package patterns

import "github.com/su1ph3r/effodio/pkg/types"

// MethodRules are the explicit verb cues, in priority order. The first set
// with any match decides the method.
var MethodRules = []RuleSet[types.Method]{
	{Effect: types.MethodGET, Rules: []*Rule{
		NewRule("method-literal-get", `(?i)\b(?:method|type|httpMethod)\s*[:=]\s*["']get["']`, 0),
		NewRule("annotation-get", `@(?:GET|GetMapping)\b`, 0),
		NewRule("request-method-get", `RequestMethod\.GET\b|HttpMethod\.Get\b|\[HttpGet\]`, 0),
		NewRule("client-get", `\b(?:axios|\$|http|client|request)\.get\s*\(`, 0),
		NewRule("token-get", `["']GET["']`, 0),
	}},
	{Effect: types.MethodPOST, Rules: []*Rule{
		NewRule("method-literal-post", `(?i)\b(?:method|type|httpMethod)\s*[:=]\s*["']post["']`, 0),
		NewRule("annotation-post", `@(?:POST|PostMapping|FormUrlEncoded|Multipart)\b`, 0),
		NewRule("request-method-post", `RequestMethod\.POST\b|HttpMethod\.Post\b|\[HttpPost\]`, 0),
		NewRule("client-post", `\b(?:axios|\$|http|client|request)\.post\s*\(`, 0),
		NewRule("token-post", `["']POST["']`, 0),
		NewRule("content-type-form", `(?i)application/x-www-form-urlencoded|multipart/form-data`, 0),
	}},
	{Effect: types.MethodPUT, Rules: []*Rule{
		NewRule("method-literal-put", `(?i)\b(?:method|type|httpMethod)\s*[:=]\s*["']put["']`, 0),
		NewRule("annotation-put", `@(?:PUT|PutMapping)\b`, 0),
		NewRule("request-method-put", `RequestMethod\.PUT\b|HttpMethod\.Put\b|\[HttpPut\]`, 0),
		NewRule("client-put", `\b(?:axios|\$|http|client|request)\.put\s*\(`, 0),
		NewRule("token-put", `["']PUT["']`, 0),
	}},
	{Effect: types.MethodPATCH, Rules: []*Rule{
		NewRule("method-literal-patch", `(?i)\b(?:method|type|httpMethod)\s*[:=]\s*["']patch["']`, 0),
		NewRule("annotation-patch", `@(?:PATCH|PatchMapping)\b`, 0),
		NewRule("request-method-patch", `RequestMethod\.PATCH\b|HttpMethod\.Patch\b|\[HttpPatch\]`, 0),
		NewRule("client-patch", `\b(?:axios|http|client|request)\.patch\s*\(`, 0),
		NewRule("token-patch", `["']PATCH["']`, 0),
		NewRule("content-type-merge-patch", `(?i)application/(?:merge-patch|json-patch)\+json`, 0),
	}},
	{Effect: types.MethodDELETE, Rules: []*Rule{
		NewRule("method-literal-delete", `(?i)\b(?:method|type|httpMethod)\s*[:=]\s*["']delete["']`, 0),
		NewRule("annotation-delete", `@(?:DELETE|DeleteMapping)\b`, 0),
		NewRule("request-method-delete", `RequestMethod\.DELETE\b|HttpMethod\.Delete\b|\[HttpDelete\]`, 0),
		NewRule("client-delete", `\b(?:axios|http|client|request)\.delete\s*\(`, 0),
		NewRule("token-delete", `["']DELETE["']`, 0),
	}},
}

// MethodPathRules infer a verb from the URL itself when no explicit cue was
// found. Order is DELETE, PUT, POST, GET.
var MethodPathRules = []RuleSet[types.Method]{
	{Effect: types.MethodDELETE, Rules: []*Rule{
		NewRule("path-delete", `(?i:/(?:delete|remove|destroy|del))(?:[/_?-]|[A-Z]|$)`, 0),
		NewRule("param-delete", `(?i)[?&](?:action|op|cmd|method|operation)=(?:delete|remove|destroy)\b`, 0),
	}},
	{Effect: types.MethodPUT, Rules: []*Rule{
		NewRule("path-update", `(?i:/(?:update|edit|modify|put|change))(?:[/_?-]|[A-Z]|$)`, 0),
		NewRule("param-update", `(?i)[?&](?:action|op|cmd|method|operation)=(?:update|edit|modify)\b`, 0),
	}},
	{Effect: types.MethodPOST, Rules: []*Rule{
		NewRule("path-create", `(?i:/(?:create|add|insert|new|save|submit|register|signup|upload|login|send))(?:[/_?-]|[A-Z]|$)`, 0),
		NewRule("param-create", `(?i)[?&](?:action|op|cmd|method|operation)=(?:create|add|insert|save)\b`, 0),
	}},
	{Effect: types.MethodGET, Rules: []*Rule{
		NewRule("path-read", `(?i:/(?:get|list|fetch|search|find|query|read|view|show|details?))(?:[/_?-]|[A-Z]|$)`, 0),
		NewRule("param-read", `(?i)[?&](?:action|op|cmd|method|operation)=(?:get|list|read|view|search)\b`, 0),
	}},
}

// BodyMarkerRules detect request-body syntax near a call site. Any match
// implies POST when nothing else decided the verb.
var BodyMarkerRules = []*Rule{
	NewRule("json-body", `JSON\.stringify\s*\(`, 0),
	NewRule("body-key", `(?i)\b(?:body|data)\s*:\s*(?:\{|JSON\.|new\s+FormData|[A-Za-z_$][\w$]*)`, 0),
	NewRule("form-data", `\bnew\s+FormData\s*\(|\bFormBody\.Builder\b|\bRequestBody\.create\b|@Body\b`, 0),
}
