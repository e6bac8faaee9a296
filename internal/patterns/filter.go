package patterns

import (
	"net/url"
	"regexp"
	"strings"
)

// Namespace prefixes of language runtimes and frameworks. Strings starting with
// these are class or package references, not server paths.
var runtimeNamespaces = []string{
	"android/", "androidx/", "java/", "javax/", "kotlin/", "kotlinx/", "dalvik/",
	"com/google/android/", "com/android/", "sun/", "jdk/", "org/w3c/", "org/xml/",
	"landroid/", "landroidx/", "ljava/", "ljavax/", "lkotlin/", "ldalvik/",
	"schemas.android.com", "www.w3.org",
}

// Suffixes of source files and static assets
var sourceFileSuffix = regexp.MustCompile(`(?i)\.(java|kt|kts|smali|class|dex|so|js|mjs|jsx|ts|tsx|css|scss|less|map|png|jpe?g|gif|svg|webp|ico|bmp|ttf|otf|woff2?|eot|mp3|mp4|wav|ogg|webm)$`)

// Accept rules, evaluated in declared order
var backendRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[?&](op|action|cmd|method|operation)=`),
	regexp.MustCompile(`(?i)/(api|rest|service|services|backend)(/|$|\?)`),
	regexp.MustCompile(`(?i)/v\d+(/|$|\?)`),
	regexp.MustCompile(`(?i)\.(php|aspx?|ashx|asmx|jspx?|do|action|cgi|pl|py|rb|cfm)(\?|/|$)`),
	regexp.MustCompile(`(?i)/(admin|auth|oauth2?|upload|uploads|login|logout|signin|signup|register|token|session)(/|$|\?)`),
	regexp.MustCompile(`(?i)\.(json|xml)(\?|$)`),
	regexp.MustCompile(`(?i)/(graphql|gql|webhooks?|socket\.io|sockjs|websocket|ws)(/|$|\?)`),
	regexp.MustCompile(`(?i)/(create|add|insert|new|update|edit|modify|save|delete|remove|destroy|get|fetch|list|search|query|find|upsert|bulk|batch|sync)[a-z_-]*(/|$|\?)`),
	regexp.MustCompile(`(?i)/[a-z][a-z0-9_-]*/(\d+|[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}|\{[^}/]+\}|:[a-z_]+)(/|$|\?)`),
}

var lowercaseSegment = regexp.MustCompile(`/[a-z]`)

// IsLikelyBackendPath decides whether a candidate string is worth treating as
// an API path. False positives are expected; the confidence tier sorts them out.
func IsLikelyBackendPath(candidate string) bool {
	s := strings.TrimSpace(candidate)
	if s == "" {
		return false
	}

	lower := strings.ToLower(strings.TrimPrefix(s, "/"))
	for _, ns := range runtimeNamespaces {
		if strings.HasPrefix(lower, ns) {
			return false
		}
	}

	path := s
	if u, err := url.Parse(s); err == nil && u.Scheme != "" && u.Host != "" {
		path = u.EscapedPath()
		if strings.HasPrefix(strings.ToLower(u.Host), "schemas.android.com") || strings.HasPrefix(strings.ToLower(u.Host), "www.w3.org") {
			return false
		}
	}
	bare := path
	if i := strings.IndexAny(bare, "?#"); i >= 0 {
		bare = bare[:i]
	}
	if sourceFileSuffix.MatchString(bare) {
		return false
	}

	for _, re := range backendRules {
		if re.MatchString(s) {
			return true
		}
	}

	return strings.HasPrefix(path, "/") && len(path) > 3 && lowercaseSegment.MatchString(path)
}
