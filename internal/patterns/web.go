package patterns

import (
	"strings"

	"github.com/su1ph3r/effodio/pkg/types"
)

// Call-site shapes found in page scripts. The match ends just past the
// opening parenthesis (or brace) so the caller can capture the balanced
// argument list from there.
var (
	FetchCallRule   = NewRule("fetch", `\bfetch\s*\(`, 0)
	AxiosVerbRule   = NewRule("axios-verb", `\baxios\.(get|post|put|patch|delete|head|options)\s*\(`, 1)
	AxiosConfigRule = NewRule("axios-config", `\baxios(?:\.request)?\s*\(\s*\{`, 0)
	JQueryCallRule  = NewRule("jquery", `(?:\$|\bjQuery)\.(ajax|get|post|getJSON)\s*\(`, 1)

	// XHROpenRule captures the verb (1) and URL (2) of XMLHttpRequest.open
	XHROpenRule = NewRule("xhr-open", `(?i)\.open\s*\(\s*["'`+"`"+`](get|post|put|patch|delete|head|options)["'`+"`"+`]\s*,\s*(["'`+"`"+`])`, 1)

	// BaseURLRule captures base-URL constants and axios.create baseURL keys
	BaseURLRule = NewRule("base-url", `(?i)\b(?:api_?base(?:_?url)?|base_?url|api_?url|api_?root|api_?host|api_?endpoint)\s*[:=]\s*["'`+"`"+`]([^"'`+"`"+`\s]+)["'`+"`"+`]`, 1)
)

// Option keys read from fetch/axios/jQuery option objects
var (
	OptionMethodRule      = NewRule("option-method", `(?i)\b(?:method|type)\s*:\s*["'`+"`"+`]([a-z]+)["'`+"`"+`]`, 1)
	OptionURLRule         = NewRule("option-url", `\burl\s*:\s*(["'`+"`"+`])`, 1)
	OptionHeadersRule     = NewRule("option-headers", `\bheaders\s*:\s*\{`, 0)
	OptionBodyRule        = NewRule("option-body", `\b(?:body|data)\s*:\s*([^,}\n]+)`, 1)
	OptionContentTypeRule = NewRule("option-content-type", `(?i)\bcontentType\s*:\s*["'`+"`"+`]([^"'`+"`"+`]+)["'`+"`"+`]`, 1)
	HeaderPairRule        = NewRule("header-pair", `["']?([A-Za-z][\w-]*)["']?\s*:\s*["'`+"`"+`]([^"'`+"`"+`]*)["'`+"`"+`]`, 1)
)

// Body type labels reported on web endpoints
const (
	BodyJSON      = "json"
	BodyForm      = "form"
	BodyMultipart = "multipart"
	BodyText      = "text"
)

// BodyTypeRules classify a request body expression, first match wins
var BodyTypeRules = []RuleSet[string]{
	{Effect: BodyJSON, Rules: []*Rule{NewRule("json-stringify", `\bJSON\.stringify\s*\(`, 0), NewRule("object-literal", `^\s*[{\[]`, 0)}},
	{Effect: BodyMultipart, Rules: []*Rule{NewRule("form-data", `\bFormData\b`, 0)}},
	{Effect: BodyForm, Rules: []*Rule{NewRule("url-search-params", `\bURLSearchParams\b`, 0), NewRule("jquery-param", `\$\.param\s*\(`, 0)}},
}

// BodyTypeFromContentType maps a Content-Type header value to a body type
func BodyTypeFromContentType(ct string) string {
	ct = strings.ToLower(ct)
	switch {
	case strings.Contains(ct, "json"):
		return BodyJSON
	case strings.Contains(ct, "multipart"):
		return BodyMultipart
	case strings.Contains(ct, "x-www-form-urlencoded"):
		return BodyForm
	case ct != "":
		return BodyText
	default:
		return ""
	}
}

// ORMRules detect ORM-style verb calls in client code. Group 1 is the model
// or collection, group 2 the verb.
var ORMRules = []*Rule{
	NewRule("prisma", `\bprisma\.(\w+)\.(findMany|findUnique|findFirst|create|createMany|update|updateMany|upsert|delete|deleteMany|count)\s*\(`, 1),
	NewRule("mongo-collection", `\bdb\.collection\(\s*["'](\w+)["']\s*\)\.(find|findOne|insertOne|insertMany|updateOne|updateMany|replaceOne|deleteOne|deleteMany|aggregate|bulkWrite)\s*\(`, 1),
	NewRule("mongo-shell", `\bdb\.(\w+)\.(find|findOne|insert|insertOne|insertMany|update|updateOne|updateMany|remove|deleteOne|deleteMany|aggregate)\s*\(`, 1),
	NewRule("knex", `\bknex\s*\(\s*["'](\w+)["']\s*\)\.(select|insert|update|del|delete|first)\s*\(`, 1),
	NewRule("model", `\b([A-Z][A-Za-z0-9_]*)\.(findAll|findOne|findByPk|findById|findOrCreate|create|bulkCreate|update|upsert|destroy|deleteOne|deleteMany|insertMany|updateOne|updateMany|countDocuments)\s*\(`, 1),
}

// builtinReceivers are capitalised globals whose methods share ORM verb names
var builtinReceivers = map[string]bool{
	"Object": true, "Array": true, "Promise": true, "Reflect": true, "JSON": true,
	"Math": true, "Date": true, "Map": true, "Set": true, "Symbol": true,
	"Proxy": true, "Intl": true, "Number": true, "String": true, "Document": true,
}

// IsBuiltinReceiver reports whether name is a language global, not a model
func IsBuiltinReceiver(name string) bool {
	return builtinReceivers[name]
}

// ORMVerbOp maps an ORM verb to the persistence operation it implies
func ORMVerbOp(verb string) types.PersistenceOp {
	v := strings.ToLower(verb)
	switch {
	case v == "bulkcreate" || v == "createmany" || v == "insertmany" || v == "bulkwrite":
		return types.OpBulk
	case v == "upsert" || v == "findorcreate" || v == "replaceone":
		return types.OpUpsert
	case strings.HasPrefix(v, "find") || v == "select" || v == "first" || v == "aggregate" || strings.HasPrefix(v, "count"):
		return types.OpRead
	case strings.HasPrefix(v, "create") || strings.HasPrefix(v, "insert"):
		return types.OpInsert
	case strings.HasPrefix(v, "update"):
		return types.OpUpdate
	case strings.HasPrefix(v, "delete") || v == "destroy" || v == "remove" || v == "del":
		return types.OpDelete
	default:
		return ""
	}
}

// SQLLiteralRule captures a SQL statement passed as a string literal to a
// query-execution call
var SQLLiteralRule = NewRule("sql-literal", `(?i)\b(?:query|execute|exec|executeSql|raw|run|prepare)\s*\(\s*["'`+"`"+`]\s*((?:select|insert|update|delete|replace|merge)\s[^"'`+"`"+`]*)["'`+"`"+`]`, 1)

// sqlTarget captures the table a statement operates on
var sqlTarget = NewRule("sql-target", `(?i)\b(?:from|into|update|table)\s+["'\x60\[]?([A-Za-z_][\w.]*)`, 1)

// SQLStatementOp maps a statement's leading keyword to a persistence op
func SQLStatementOp(stmt string) types.PersistenceOp {
	fields := strings.Fields(stmt)
	if len(fields) == 0 {
		return ""
	}
	switch strings.ToUpper(fields[0]) {
	case "SELECT":
		return types.OpRead
	case "INSERT":
		return types.OpInsert
	case "UPDATE":
		return types.OpUpdate
	case "DELETE":
		return types.OpDelete
	case "REPLACE", "MERGE":
		return types.OpUpsert
	default:
		return ""
	}
}

// SQLStatementTarget returns the first table named in stmt
func SQLStatementTarget(stmt string) string {
	if m := sqlTarget.FindAll(stmt); len(m) > 0 {
		return m[0].Value
	}
	return ""
}
