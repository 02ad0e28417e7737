package httpclient

import (
	"net/http"

	"github.com/samber/lo"
)

// The golang std http client will handle the headers automatically.
var libManagedHeaders = map[string]bool{
	"Content-Length":    true,
	"Transfer-Encoding": true,
	"Accept-Encoding":   true,
	"Host":              true,
}

var sensitiveHeaders = map[string]bool{
	"Authorization":       true,
	"Api-Key":             true,
	"X-Api-Key":           true,
	"X-Api-Secret":        true,
	"X-Api-Token":         true,
	"Cookie":              true,
	"Set-Cookie":          true,
	"Proxy-Authorization": true,
	"WWW-Authenticate":    true,
}

// MaskSensitiveHeaders replaces credential-bearing header values before they
// reach logs or error output.
func MaskSensitiveHeaders(headers http.Header) http.Header {
	result := make(http.Header, len(headers))
	for key, values := range headers {
		var newValues []string
		if _, ok := sensitiveHeaders[key]; !ok {
			newValues = values
		} else {
			newValues = append(newValues, "******")
		}

		result[key] = newValues
	}

	return result
}

// MergeHTTPHeaders merges the source headers into the destination headers,
// appending non-duplicate values. Sensitive and library-managed headers are
// not merged.
func MergeHTTPHeaders(dest, src http.Header) http.Header {
	if dest == nil {
		dest = make(http.Header, len(src))
	}

	for k, v := range src {
		if sensitiveHeaders[k] || libManagedHeaders[k] {
			continue
		}

		if existingValues, ok := dest[k]; ok {
			dest[k] = lo.Uniq(append(existingValues, v...))
		} else {
			dest[k] = v
		}
	}

	return dest
}
