package batch

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome for one item of a batch.
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BatchResult aggregates the per-item results of a batch.
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// jsonArray decodes s when it holds a JSON array. MCP clients frequently
// send arrays as strings.
func jsonArray(s string) ([]any, bool, error) {
	if !strings.HasPrefix(s, "[") {
		return nil, false, nil
	}
	var items []any
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

// ParseStringOrArray accepts a string, a JSON array encoded as a string or
// an array of strings. A string that merely starts with "[" is kept as is.
func ParseStringOrArray(param any, paramName string) ([]string, error) {
	var items []any
	switch v := param.(type) {
	case nil:
		return nil, fmt.Errorf("%s is required", paramName)
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		decoded, ok, _ := jsonArray(v)
		if !ok {
			return []string{v}, nil
		}
		items = decoded
	case []string:
		items = make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
	case []any:
		items = v
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", paramName)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		switch {
		case !ok:
			return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
		case s == "":
			return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
		}
		out = append(out, s)
	}
	return out, nil
}

// ParseIntOrArray accepts a number, a numeric string, a JSON array encoded
// as a string or an array. Every value must be a positive whole number.
func ParseIntOrArray(param any, paramName string) ([]int, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	items, isArray := param.([]any)
	if s, ok := param.(string); ok {
		decoded, ok, err := jsonArray(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("%s is not a valid JSON array: %w", paramName, err)
		}
		items, isArray = decoded, ok
	}
	if !isArray {
		n, err := ParsePositiveInt(param, paramName)
		if err != nil {
			return nil, err
		}
		return []int{n}, nil
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", paramName)
	}
	out := make([]int, 0, len(items))
	for i, item := range items {
		n, err := ParsePositiveInt(item, fmt.Sprintf("%s[%d]", paramName, i))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// ParsePositiveInt converts a JSON number, Go integer or numeric string
// (optionally "#"-prefixed) into a positive int.
func ParsePositiveInt(param any, paramName string) (int, error) {
	var n int
	switch v := param.(type) {
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt32 {
			return 0, fmt.Errorf("%s must be a whole number", paramName)
		}
		n = int(v)
	case int:
		n = v
	case int64:
		n = int(v)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%s must be a whole number", paramName)
		}
		n = int(i)
	case string:
		i, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(v), "#"))
		if err != nil {
			return 0, fmt.Errorf("%s must be a whole number", paramName)
		}
		n = i
	default:
		return 0, fmt.Errorf("%s must be a number", paramName)
	}

	if n <= 0 {
		return 0, fmt.Errorf("%s must be a positive number", paramName)
	}
	return n, nil
}

// ProcessBatch calls fn for every item in order. A failing item is recorded
// and the remaining items still run.
func ProcessBatch[T any](items []T, fn func(item T) (any, error)) []Result {
	results := make([]Result, len(items))
	for i, item := range items {
		id := fmt.Sprint(item)
		if res, err := fn(item); err != nil {
			results[i] = NewErrorResult(id, err)
		} else {
			results[i] = NewSuccessResult(id, res)
		}
	}
	return results
}

// Summarize counts the successes and failures of results.
func Summarize(results []Result) BatchResult {
	br := BatchResult{Total: len(results), Results: results}
	for _, r := range results {
		if r.Status == StatusSuccess {
			br.Successful++
		} else {
			br.Failed++
		}
	}
	return br
}

// NewSuccessResult records a successful item.
func NewSuccessResult(id string, result any) Result {
	return Result{ID: id, Status: StatusSuccess, Result: result}
}

// NewErrorResult records a failed item.
func NewErrorResult(id string, err error) Result {
	return Result{ID: id, Status: StatusError, Error: err.Error()}
}
