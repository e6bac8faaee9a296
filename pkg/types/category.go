package types

import "strings"

// Endpoint categories used in the summary
const (
	CategoryAuthentication = "authentication"
	CategoryAdmin          = "admin"
	CategoryUpload         = "upload"
	CategoryUser           = "user"
	CategoryPayment        = "payment"
	CategorySearch         = "search"
	CategoryGraphQL        = "graphql"
	CategoryRealtime       = "realtime"
	CategoryDocumentation  = "documentation"
	CategoryGeneral        = "general"
)

var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{CategoryAuthentication, []string{"login", "logout", "signin", "signup", "register", "auth", "token", "session", "password"}},
	{CategoryAdmin, []string{"admin", "manage", "dashboard"}},
	{CategoryUpload, []string{"upload", "file", "attachment", "media", "image"}},
	{CategoryUser, []string{"user", "profile", "account", "member"}},
	{CategoryPayment, []string{"pay", "order", "cart", "checkout", "billing", "invoice", "subscription"}},
	{CategorySearch, []string{"search", "query", "filter", "find"}},
	{CategoryGraphQL, []string{"graphql"}},
	{CategoryRealtime, []string{"socket", "/ws", "webhook", "stream", "events"}},
	{CategoryDocumentation, []string{"swagger", "openapi", "api-docs"}},
}

// EndpointCategory buckets a URL by the first matching keyword family
func EndpointCategory(url string) string {
	lower := strings.ToLower(url)
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.category
			}
		}
	}
	return CategoryGeneral
}
