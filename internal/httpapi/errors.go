package httpapi

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vcsync/vcsync/internal/remote"
)

// handleHTTPError translates a non-2xx response into exactly one importer
// error kind:
//
//	401                      -> Authentication
//	403 with rate-limit text -> RateLimit
//	403 otherwise            -> Authentication
//	404                      -> NotFound
//	5xx or unparsable body   -> ServiceUnavailable
func handleHTTPError(status int, body []byte, service string) error {
	if status >= 500 {
		return remote.NewError(remote.KindServiceUnavailable, service, "service unavailable (HTTP %d)", status)
	}

	message, ok := extractMessage(body)
	if !ok {
		return remote.NewError(remote.KindServiceUnavailable, service, "service unavailable (HTTP %d)", status)
	}

	switch status {
	case 401:
		return remote.NewError(remote.KindAuthentication, service, "%s", message)
	case 403:
		if strings.Contains(strings.ToLower(message), "rate limit") {
			return remote.NewError(remote.KindRateLimit, service, "%s", message)
		}
		return remote.NewError(remote.KindAuthentication, service, "%s", message)
	case 404:
		return remote.NewError(remote.KindNotFound, service, "%s", message)
	default:
		return remote.NewError(remote.KindServiceUnavailable, service, "unexpected HTTP %d: %s", status, message)
	}
}

// extractMessage pulls a human-readable message out of an error body. The
// "message" field may be a string, a nested object, or a number; anything
// non-string is stringified. Returns false when the body is not JSON.
func extractMessage(body []byte) (string, bool) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}
	raw, found := payload["message"]
	if !found {
		return strings.TrimSpace(string(body)), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		return fmt.Sprintf("%v", v), true
	}
	return string(raw), true
}
