package log

import (
	"regexp"
	"strings"
)

// MaskValue replaces every redacted value.
const MaskValue = "***REDACTED***"

// secretKeys are attribute keys whose value is always masked.
// Keys are compared lower-cased.
var secretKeys = map[string]struct{}{
	"authorization":       {},
	"proxy-authorization": {},
	"cookie":              {},
	"api_key":             {},
	"apikey":              {},
	"api-key":             {},
	"x-api-key":           {},
	"github_token":        {},
	"gh_token":            {},
	"actions_id_token":    {},
	"actions_runtime":     {},
	"netrc":               {},
	"git_askpass":         {},
	"ssh_auth_sock":       {},
	"deploy_key":          {},
}

// secretKeywords mask any key containing one of them. The bare word "key"
// is not listed: "marker_key" and "sort_key" are ordinary document fields.
var secretKeywords = []string{
	"password", "passwd", "secret", "token", "auth", "credential", "private",
}

// tokenPatterns match values that are credentials whatever their key.
var tokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^gh[pousr]_[A-Za-z0-9]{36,}$`),
	regexp.MustCompile(`^github_pat_[A-Za-z0-9_]{22,}$`),
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),
	regexp.MustCompile(`(?i)^(bearer|basic)\s+\S+`),
	regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`),
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),
}

// urlUserinfo matches the userinfo of a url anywhere in a string, including
// a raw url nested behind a proxy prefix.
var urlUserinfo = regexp.MustCompile(`([A-Za-z][A-Za-z0-9+.-]*://)[^/?#\s@]+@`)

// urlSecretParams matches credential query parameters.
var urlSecretParams = regexp.MustCompile(`(?i)([?&](?:access_token|token|private_token|auth|key|sign|sig|signature)=)[^&#\s]+`)

// IsSecretKey reports whether values logged under key must be masked.
func IsSecretKey(key string) bool {
	key = strings.ToLower(key)
	if _, ok := secretKeys[key]; ok {
		return true
	}
	for _, word := range secretKeywords {
		if strings.Contains(key, word) {
			return true
		}
	}
	return false
}

// IsSecretValue reports whether value looks like a credential.
func IsSecretValue(value string) bool {
	for _, p := range tokenPatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// RedactURLs masks userinfo and credential query parameters of every URL
// found in s. The host and path stay readable. Strings without such
// credentials are returned unchanged.
func RedactURLs(s string) string {
	if !strings.Contains(s, "://") {
		return s
	}
	s = urlUserinfo.ReplaceAllString(s, "${1}"+MaskValue+"@")
	return urlSecretParams.ReplaceAllString(s, "${1}"+MaskValue)
}

// Redact returns the form of value that may be logged under key.
func Redact(key, value string) string {
	if IsSecretKey(key) || IsSecretValue(value) {
		return MaskValue
	}
	return RedactURLs(value)
}
