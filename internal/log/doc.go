// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// jsonsweep usually runs inside CI jobs whose environment carries access
// tokens, and the URLs it rewrites may embed credentials. The SecureHandler
// masks:
//   - attributes whose key names a secret (token, password, GITHUB_TOKEN)
//   - values that look like tokens (GitHub tokens, JWTs, bearer headers)
//   - userinfo and token query parameters of URLs, in messages and values
//
// URL credentials are replaced in place so the host and path of a rewritten
// URL remain readable in the log.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("rewrote url", "from", oldURL, "to", newURL)
package log
