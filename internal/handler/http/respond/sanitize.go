package respond

import (
	"regexp"
)

var (
	// credential query parameters used by the upstream providers
	queryKeyPattern = regexp.MustCompile(`(?i)\b(apikey|api_key|token)=([^&\s"]+)`)

	// JSONBin and Finnhub credential headers echoed in transport errors
	headerKeyPattern = regexp.MustCompile(`(?i)(X-Master-Key|X-Finnhub-Token)(["']?\s*[:=]\s*["']?)([^\s"',}]+)`)

	// password inside a DSN
	dbPasswordPattern = regexp.MustCompile(`://([^:/]+):([^@]+)@`)
)

// SanitizeError returns err's message with credentials masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error())
}

// SanitizeString masks credentials in s.
func SanitizeString(s string) string {
	s = queryKeyPattern.ReplaceAllString(s, "$1=****")
	s = headerKeyPattern.ReplaceAllString(s, "$1$2****")
	s = dbPasswordPattern.ReplaceAllString(s, "://$1:****@")
	return s
}
