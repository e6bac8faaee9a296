package patterns

import "github.com/su1ph3r/effodio/pkg/types"

// Counter names a security tally incremented alongside a finding
type Counter int

// Counters
const (
	CounterNone Counter = iota
	CounterHardcodedKeys
	CounterWeakAlgorithms
	CounterSSLIssues
)

// SecurityFamily is one group of anti-pattern rules sharing a kind, severity
// and counter
type SecurityFamily struct {
	Kind        string
	Severity    string
	Description string
	Counter     Counter
	Rules       []*Rule
}

// SecurityFamilies are evaluated over every text buffer independently of
// endpoint discovery
var SecurityFamilies = []SecurityFamily{
	{
		Kind:        "Hardcoded Secret",
		Severity:    types.SeverityHigh,
		Description: "Hardcoded credential or API key found in application code",
		Counter:     CounterHardcodedKeys,
		Rules: []*Rule{
			NewRule("api-key-assignment", `(?i)\b(?:api_?key|apikey|app_?key|client_?key)["']?\s*[:=]\s*["'][A-Za-z0-9_\-]{16,}["']`, 0),
			NewRule("secret-assignment", `(?i)\b(?:secret|client_?secret|secret_?key|private_?key)["']?\s*[:=]\s*["'][^"'\s]{8,}["']`, 0),
			NewRule("password-assignment", `(?i)\b(?:password|passwd|pwd)["']?\s*[:=]\s*["'][^"'\s]{4,}["']`, 0),
			NewRule("access-token-assignment", `(?i)\b(?:access_?token|auth_?token|bearer_?token)["']?\s*[:=]\s*["'][A-Za-z0-9_\-.]{16,}["']`, 0),
			NewRule("aws-access-key", `\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`, 0),
			NewRule("google-api-key", `\bAIza[0-9A-Za-z_\-]{35}\b`, 0),
			NewRule("stripe-key", `\b[sr]k_live_[0-9a-zA-Z]{24,}\b`, 0),
			NewLookaroundRule("opaque-token", `(?<=["'])(?=[A-Za-z0-9+/_\-]*\d)(?=[A-Za-z0-9+/_\-]*[a-z])(?=[A-Za-z0-9+/_\-]*[A-Z])[A-Za-z0-9+/_\-]{40,}={0,2}(?=["'])`, 0),
		},
	},
	{
		Kind:        "Weak Cryptography",
		Severity:    types.SeverityHigh,
		Description: "Weak or broken cryptographic algorithm or disabled TLS validation",
		Counter:     CounterWeakAlgorithms,
		Rules: []*Rule{
			NewRule("md5", `(?i)MessageDigest\.getInstance\s*\(\s*"MD5"|\bcreateHash\s*\(\s*["']md5["']|\bCryptoJS\.MD5\b|\bDigestUtils\.md5`, 0),
			NewRule("sha1", `(?i)MessageDigest\.getInstance\s*\(\s*"SHA-?1"|\bcreateHash\s*\(\s*["']sha1["']|\bCryptoJS\.SHA1\b|\bDigestUtils\.sha1?Hex`, 0),
			NewRule("legacy-cipher", `(?i)Cipher\.getInstance\s*\(\s*"(?:DES|DESede|RC4|RC2|Blowfish|ARCFOUR)[/"]|Cipher\.getInstance\s*\(\s*"[^"]*/ECB/|\bCryptoJS\.(?:DES|TripleDES|RC4)\b|createCipheriv?\s*\(\s*["'](?:des|rc4|bf)[^"']*["']`, 0),
			NewRule("trust-all", `\bTrustAll\w*|checkServerTrusted\s*\([^)]*\)\s*(?:throws\s+[\w.,\s]+)?\{\s*\}|ALLOW_ALL_HOSTNAME_VERIFIER|setHostnameVerifier\s*\(\s*\([^)]*\)\s*->\s*true|rejectUnauthorized\s*:\s*false|onReceivedSslError[^{]*\{[^}]*\.proceed\s*\(`, 0),
		},
	},
	{
		Kind:        "SQL Injection",
		Severity:    types.SeverityCritical,
		Description: "Dynamic SQL built by string concatenation passed to a query call",
		Rules: []*Rule{
			NewRule("concat-query", `(?i)\b(?:rawQuery|execSQL|execute|executeQuery|executeUpdate|query|prepare)\s*\(\s*"[^"]*\b(?:select|insert|update|delete|drop)\b[^"]*"\s*\+`, 0),
			NewRule("template-query", "(?i)\\b(?:rawQuery|execSQL|execute|query|prepare)\\s*\\(\\s*`[^`]*\\b(?:select|insert|update|delete|drop)\\b[^`]*\\$\\{", 0),
		},
	},
	{
		Kind:        "Command Execution",
		Severity:    types.SeverityCritical,
		Description: "Native command execution from application code",
		Rules: []*Rule{
			NewRule("runtime-exec", `Runtime\.getRuntime\(\)\.exec\s*\(`, 0),
			NewRule("process-builder", `\bnew\s+ProcessBuilder\s*\(`, 0),
			NewRule("child-process", `\bchild_process\b|\bexecSync\s*\(|\bspawnSync\s*\(`, 0),
		},
	},
	{
		Kind:        "Insecure WebView",
		Severity:    types.SeverityHigh,
		Description: "WebView configured with a JavaScript bridge or file URL access",
		Rules: []*Rule{
			NewRule("js-enabled", `setJavaScriptEnabled\s*\(\s*true\s*\)`, 0),
			NewRule("js-interface", `addJavascriptInterface\s*\(`, 0),
			NewRule("file-url-access", `setAllowFileAccessFromFileURLs\s*\(\s*true\s*\)`, 0),
			NewRule("universal-file-access", `setAllowUniversalAccessFromFileURLs\s*\(\s*true\s*\)`, 0),
		},
	},
}

// PlainHTTPRule counts cleartext URLs. It never produces a finding.
var PlainHTTPRule = NewRule("plain-http", `http://[^\s"'<>]+`, 0)

// XML namespace hosts excluded from the cleartext tally
var plainHTTPExempt = NewRule("xml-namespace", `^http://(?:schemas\.android\.com|www\.w3\.org|xmlpull\.org|ns\.adobe\.com|schemas\.xmlsoap\.org)`, 0)

// IsPlainHTTPExempt reports whether a cleartext match is an XML namespace URI
func IsPlainHTTPExempt(match string) bool {
	return plainHTTPExempt.Matches(match)
}
