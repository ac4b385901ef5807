package fizzy

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies an API failure.
type Kind string

// Error kinds. Every error returned by the client maps to exactly one.
const (
	KindAuthentication Kind = "authentication"
	KindForbidden      Kind = "forbidden"
	KindNotFound       Kind = "not_found"
	KindValidation     Kind = "validation"
	KindRateLimit      Kind = "rate_limit"
	KindAPI            Kind = "api"
)

// Error is a classified failure from the Fizzy API, or a local validation
// failure raised before any request was sent (Local == true).
type Error struct {
	Kind       Kind
	Status     int
	Message    string
	Resource   string
	ResourceID string
	Fields     map[string][]string
	Local      bool
}

func (e *Error) Error() string {
	var b strings.Builder

	switch e.Kind {
	case KindNotFound:
		b.WriteString(orDefault(e.Resource, "resource"))
		b.WriteString(" not found")
		if e.ResourceID != "" {
			fmt.Fprintf(&b, ": %s", e.ResourceID)
		}
	case KindValidation:
		b.WriteString("validation failed")
		if fields := e.fieldSummary(); fields != "" {
			fmt.Fprintf(&b, ": %s", fields)
		} else if e.Message != "" {
			fmt.Fprintf(&b, ": %s", e.Message)
		}
	default:
		b.WriteString(strings.ReplaceAll(string(e.Kind), "_", " "))
		b.WriteString(" error")
		if e.Message != "" {
			fmt.Fprintf(&b, ": %s", e.Message)
		}
	}

	if e.Status != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.Status)
	}
	return b.String()
}

func (e *Error) fieldSummary() string {
	if len(e.Fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, strings.Join(e.Fields[k], ", ")))
	}
	return strings.Join(parts, "; ")
}

// NewValidationError returns a local validation error for a single field.
func NewValidationError(field, message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: message,
		Fields:  map[string][]string{field: {message}},
		Local:   true,
	}
}

// kindForStatus maps an HTTP status code to an error kind.
func kindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindAuthentication
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusTooManyRequests:
		return KindRateLimit
	default:
		return KindAPI
	}
}

// newResponseError builds an Error from a non-2xx response.
func newResponseError(status int, body []byte, resource, resourceID string) *Error {
	e := &Error{
		Kind:       kindForStatus(status),
		Status:     status,
		Resource:   resource,
		ResourceID: resourceID,
	}

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return e
	}

	var envelope struct {
		Error   string              `json:"error"`
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		e.Message = firstNonEmpty(envelope.Error, envelope.Message)
		if len(envelope.Errors) > 0 {
			e.Fields = envelope.Errors
		}
	}

	// 422 bodies are usually a bare field -> messages map.
	if e.Kind == KindValidation && len(e.Fields) == 0 {
		var fields map[string][]string
		if err := json.Unmarshal(body, &fields); err == nil && len(fields) > 0 {
			e.Fields = fields
		}
	}

	if e.Message == "" && len(e.Fields) == 0 && !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "<") {
		e.Message = truncate(trimmed, 200)
	}

	return e
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsValidation reports whether err is a validation error (local or remote).
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsAuthentication reports whether err is an authentication error.
func IsAuthentication(err error) bool { return KindOf(err) == KindAuthentication }

// IsRateLimit reports whether err is a rate-limit error.
func IsRateLimit(err error) bool { return KindOf(err) == KindRateLimit }

// Describe renders err as an instructive message for an end user. The account
// slug, when known, is included so the user can tell which account the call
// targeted.
func Describe(err error, account string) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}

	where := ""
	if account != "" {
		where = fmt.Sprintf(" in account %s", strings.TrimPrefix(account, "/"))
	}

	switch e.Kind {
	case KindAuthentication:
		return "Authentication failed. Check that FIZZY_TOKEN holds a valid personal access token."
	case KindForbidden:
		return fmt.Sprintf("Access denied%s. Your user may lack permission for this %s.", where, orDefault(e.Resource, "resource"))
	case KindNotFound:
		if e.Resource != "" && e.ResourceID != "" {
			return fmt.Sprintf("%s %s was not found%s. Verify the identifier, or list %ss to find the right one.",
				capitalize(e.Resource), e.ResourceID, where, e.Resource)
		}
		return fmt.Sprintf("The requested %s was not found%s.", orDefault(e.Resource, "resource"), where)
	case KindValidation:
		if e.Local {
			return fmt.Sprintf("Invalid %s: %s", strings.Join(sortedKeys(e.Fields), ", "), e.Message)
		}
		return fmt.Sprintf("The request was rejected%s: %s", where, e.Error())
	case KindRateLimit:
		return "Rate limit exceeded. Wait a moment before retrying."
	default:
		return fmt.Sprintf("Fizzy API error%s: %s", where, e.Error())
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
