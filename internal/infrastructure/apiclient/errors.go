package apiclient

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/diplomatch/portal/internal/core/domain"
)

// Timestamp layouts accepted for blocked_until, most specific first.
var blockedUntilLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// preferredMessageKey names the body key an endpoint reports its failure
// under. Endpoints not listed use detail.
var preferredMessageKey = map[string]string{
	"forgot_password": "error",
	"reset_password":  "error",
}

// decodeError turns a failed response of endpoint into a *domain.RemoteError.
// The body may be a DRF error object, a lockout notice or not JSON at all.
func decodeError(endpoint string, status int, raw []byte) *domain.RemoteError {
	re := &domain.RemoteError{StatusCode: status, Err: statusError(status)}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return re
	}

	re.Message = errorMessage(body, preferredMessageKey[endpoint])
	re.Blocked = parseBool(body["blocked"])
	re.BlockedUntil = parseTime(body["blocked_until"])
	return re
}

// statusError is the cause recorded for a non-2xx response.
type statusError int

func (e statusError) Error() string { return http.StatusText(int(e)) }

// errorMessage picks the human-readable reason: the preferred key, then
// detail, error, message and the first field error.
func errorMessage(body map[string]json.RawMessage, preferred string) string {
	if msg := firstString(body[preferred]); preferred != "" && msg != "" {
		return msg
	}
	for _, key := range []string{"detail", "error", "message", "non_field_errors"} {
		if msg := firstString(body[key]); msg != "" {
			return msg
		}
	}

	keys := make([]string, 0, len(body))
	for k := range body {
		switch k {
		case "blocked", "blocked_until", "code":
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if msg := firstString(body[k]); msg != "" {
			return msg
		}
	}
	return ""
}

// firstString accepts "msg" or ["msg", ...].
func firstString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			if s := firstString(item); s != "" {
				return s
			}
		}
	}
	return ""
}

// parseBool accepts JSON booleans and the stringified forms Django emits.
func parseBool(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "yes":
			return true
		}
	}
	return false
}

func parseTime(raw json.RawMessage) *time.Time {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range blockedUntilLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
