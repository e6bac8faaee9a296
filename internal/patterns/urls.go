package patterns

// Quote class shared by the URL rules: double, single and back quotes
const q = "[\"'`]"
const nq = "[^\"'`]"

// URLRules are the URL-shape rules run over every buffer. Group 1 holds the
// candidate URL.
var URLRules = []*Rule{
	NewRule("schemed-url", `(https?://[^\s"'`+"`"+`<>\\]+)`, 1),
	NewRule("quoted-path", q+`(/[A-Za-z0-9_\-./?=&%:{}$@+~]+)`+q, 1),
	NewRule("assignment", `(?i)\b(?:endpoint|url|path|route|uri|api_?url|base_?url)\s*[:=]\s*`+q+`(`+nq+`+)`+q, 1),
	NewRule("request-annotation", `@(?:GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS|HTTP|Path|RequestMapping|GetMapping|PostMapping|PutMapping|PatchMapping|DeleteMapping)\s*\(\s*(?:(?:value|path)\s*=\s*)?\{?\s*"([^"]+)"`, 1),
	NewRule("fetch-call", `\bfetch\s*\(\s*`+q+`(`+nq+`+)`+q, 1),
	NewRule("axios-call", `\baxios(?:\.(?:get|post|put|patch|delete|head|options|request))?\s*\(\s*`+q+`(`+nq+`+)`+q, 1),
	NewRule("jquery-call", `\$\.(?:ajax|get|post|getJSON|put|delete)\s*\(\s*`+q+`(`+nq+`+)`+q, 1),
	NewRule("new-url", `\bnew\s+URL\s*\(\s*`+q+`(`+nq+`+)`+q, 1),
}
