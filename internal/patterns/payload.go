package patterns

// PayloadRules flag request-body shapes near a call site. The rule name is the
// indicator reported on the endpoint.
var PayloadRules = []*Rule{
	NewRule("id", `(?i)["'\s{,(](?:id|_id|uuid|guid|[a-z]+_id|[a-z]+Id)["']?\s*[:=]`, 0),
	NewRule("user_data", `(?i)["'\s{,(](?:user_?name|email|first_?name|last_?name|full_?name|phone|address|birth_?date|dob|profile)["']?\s*[:=]`, 0),
	NewRule("timestamp", `(?i)["'\s{,(](?:timestamp|created_?at|updated_?at|date|time|expires?_?at)["']?\s*[:=]|\bnew\s+Date\s*\(|\bDate\.now\s*\(|System\.currentTimeMillis\s*\(`, 0),
	NewRule("file", `(?i)\b(?:multipartfile|MultipartBody|File\s*\(|FileReader|Blob\s*\(|type\s*=\s*["']file["'])|["'\s{,(](?:file|files|attachment|upload|image|avatar)["']?\s*[:=]`, 0),
	NewRule("status", `(?i)["'\s{,(](?:status|state|enabled|active|is_?active|approved)["']?\s*[:=]`, 0),
	NewRule("sql", `(?i)\b(?:select\s+[\w*,\s]+\s+from|insert\s+into|update\s+\w+\s+set|delete\s+from|where\s+\w+\s*=)`, 0),
	NewRule("json", `(?i)JSON\.stringify\s*\(|application/json|\bJSONObject\b|\bnew\s+Gson\b|toJson\s*\(|@Body\b`, 0),
	NewRule("multipart", `(?i)multipart/form-data|\bMultipartBody\b|@Multipart\b|@Part\b|\bFormData\s*\(`, 0),
	NewRule("form", `(?i)application/x-www-form-urlencoded|@FormUrlEncoded\b|@Field\b|\bFormBody\b|URLSearchParams\s*\(|<form\b`, 0),
	NewRule("auth", `(?i)\bAuthorization\b|\bBearer\s|\b(?:access_?token|auth_?token|api_?key|x-api-key|jwt)\b|@Header\s*\(\s*["']Authorization`, 0),
	NewRule("password", `(?i)["'\s{,(](?:password|passwd|pwd|pass|new_?password|old_?password)["']?\s*[:=]|type\s*=\s*["']password["']`, 0),
}
