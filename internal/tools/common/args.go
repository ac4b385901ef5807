package common

import (
	"strings"

	"github.com/teemow/fizzy-mcp/internal/fizzy"
	"github.com/teemow/fizzy-mcp/internal/tools/batch"
)

// StringArg returns a trimmed string argument, or "" when absent.
func StringArg(args map[string]interface{}, name string) string {
	v, _ := args[name].(string)
	return strings.TrimSpace(v)
}

// RequiredString returns a non-blank string argument.
func RequiredString(args map[string]interface{}, name string) (string, error) {
	v := StringArg(args, name)
	if v == "" {
		return "", fizzy.NewValidationError(name, "is required")
	}
	return v, nil
}

// OptionalString returns a pointer to the argument when it was passed, so
// an explicit empty string can be told apart from an absent one.
func OptionalString(args map[string]interface{}, name string) *string {
	v, ok := args[name].(string)
	if !ok {
		return nil
	}
	return &v
}

// BoolArg returns a boolean argument, false when absent. The strings "true"
// and "false" are accepted as well.
func BoolArg(args map[string]interface{}, name string) bool {
	switch v := args[name].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	}
	return false
}

// HasArg reports whether the argument was passed at all.
func HasArg(args map[string]interface{}, name string) bool {
	v, ok := args[name]
	return ok && v != nil
}

// RequiredNumber returns a positive integer argument such as a card number.
func RequiredNumber(args map[string]interface{}, name string) (int, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return 0, fizzy.NewValidationError(name, "is required")
	}
	n, err := batch.ParsePositiveInt(v, name)
	if err != nil {
		return 0, fizzy.NewValidationError(name, strings.TrimPrefix(err.Error(), name+" "))
	}
	return n, nil
}

// OptionalNumber returns a positive integer argument, or 0 when absent.
func OptionalNumber(args map[string]interface{}, name string) (int, error) {
	if !HasArg(args, name) {
		return 0, nil
	}
	return RequiredNumber(args, name)
}

// NonNegativeNumber returns an integer argument that may be zero, or 0
// when absent.
func NonNegativeNumber(args map[string]interface{}, name string) (int, error) {
	if !HasArg(args, name) {
		return 0, nil
	}
	switch v := args[name].(type) {
	case float64:
		if v < 0 {
			return 0, fizzy.NewValidationError(name, "must not be negative")
		}
		if v == 0 {
			return 0, nil
		}
	case string:
		if strings.TrimSpace(v) == "0" {
			return 0, nil
		}
	}
	return RequiredNumber(args, name)
}

// NumberList returns a list of positive integers from a single value or an
// array, or nil when absent.
func NumberList(args map[string]interface{}, name string) ([]int, error) {
	if !HasArg(args, name) {
		return nil, nil
	}
	numbers, err := batch.ParseIntOrArray(args[name], name)
	if err != nil {
		return nil, fizzy.NewValidationError(name, err.Error())
	}
	return numbers, nil
}

// StringList returns a list of strings from a single value, a JSON array
// string or an array, or nil when absent or empty.
func StringList(args map[string]interface{}, name string) ([]string, error) {
	if !HasArg(args, name) {
		return nil, nil
	}
	if s, ok := args[name].(string); ok && strings.TrimSpace(s) == "" {
		return nil, nil
	}
	if a, ok := args[name].([]interface{}); ok && len(a) == 0 {
		return nil, nil
	}
	values, err := batch.ParseStringOrArray(args[name], name)
	if err != nil {
		return nil, fizzy.NewValidationError(name, err.Error())
	}
	return values, nil
}
