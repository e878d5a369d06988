package logging

import (
	"net/url"
	"regexp"
	"unicode/utf8"
)

const (
	// MaxTextLogLength bounds free text (summaries, model output, rejected
	// identifiers) in log fields.
	MaxTextLogLength = 200
	// RedactedText replaces secrets.
	RedactedText = "[REDACTED]"
)

// redaction replaces one kind of secret in free text.
type redaction struct {
	pattern *regexp.Regexp
	replace string
}

// secretParam names query parameters that carry credentials, including the
// Logic App shared-access signature.
var secretParam = regexp.MustCompile(`(?i)^(api[_-]?key|apikey|key|sig|signature|token)$`)

var redactions = []redaction{
	{regexp.MustCompile(`(?i)\b(password|pwd|pass)=[^;&\s]+`), "${1}=" + RedactedText},
	{regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._~+/=-]+`), "Bearer " + RedactedText},
	{regexp.MustCompile(`\bpat[A-Za-z0-9]{10,}\.[A-Za-z0-9]+`), RedactedText},
	{regexp.MustCompile(`(?i)\b(api[_-]?key|apikey|key|sig|signature|token)=[^&\s"]+`), "${1}=" + RedactedText},
	{regexp.MustCompile(`://[^:/\s]+:[^@\s]+@`), "://" + RedactedText + "@"},
}

// SanitizeError renders err with credentials removed. net/http errors quote
// the full request URL, which for the webhook relay includes its signature.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return sanitizeText(err.Error())
}

// SanitizeURL redacts userinfo and credential query parameters. Input that
// does not parse as an absolute URL goes through the text rules.
func SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return sanitizeText(raw)
	}
	if u.User != nil {
		u.User = url.User(RedactedText)
	}
	q := u.Query()
	for name := range q {
		if secretParam.MatchString(name) {
			q.Set(name, RedactedText)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func sanitizeText(s string) string {
	for _, r := range redactions {
		s = r.pattern.ReplaceAllString(s, r.replace)
	}
	return s
}

// TruncateString shortens s to at most maxLen bytes plus "...", never
// splitting a UTF-8 sequence.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
