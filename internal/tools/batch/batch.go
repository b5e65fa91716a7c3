package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome for one ID of a batch.
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	// ErrorKind classifies the failure, e.g. "not_found".
	ErrorKind string `json:"errorKind,omitempty"`
}

// BatchResult is the JSON document returned by batch tools.
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// Func processes a single ID.
type Func func(ctx context.Context, id string) (string, error)

// KindFunc names the failure class of err. An empty string leaves the
// result's ErrorKind unset.
type KindFunc func(err error) string

// ParseStringOrArray reads an ID list argument given as a single string, an
// array of strings, or a string holding a JSON array. Some MCP clients only
// send the last form. Duplicates are dropped, first occurrence wins.
func ParseStringOrArray(param any, paramName string) ([]string, error) {
	var items []any
	switch v := param.(type) {
	case nil:
		return nil, fmt.Errorf("%s is required", paramName)
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		if !strings.HasPrefix(strings.TrimSpace(v), "[") || json.Unmarshal([]byte(v), &items) != nil {
			return []string{v}, nil
		}
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	case []any:
		items = v
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", paramName)
	}
	ids := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		id, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
		}
		if id == "" {
			return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ProcessBatch runs fn for each id in order and keeps going past failures.
// Once ctx is done the remaining ids fail with the context error and fn is
// not called. kindOf may be nil.
func ProcessBatch(ctx context.Context, ids []string, fn Func, kindOf KindFunc) []Result {
	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			results = append(results, NewErrorResult(id, err, ""))
			continue
		}
		out, err := fn(ctx, id)
		if err != nil {
			kind := ""
			if kindOf != nil {
				kind = kindOf(err)
			}
			results = append(results, NewErrorResult(id, err, kind))
			continue
		}
		results = append(results, NewSuccessResult(id, out))
	}
	return results
}

// Summarize counts the outcomes of results.
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

// FormatResults renders the summary of results as indented JSON.
func FormatResults(results []Result) string {
	out, _ := json.MarshalIndent(Summarize(results), "", "  ")
	return string(out)
}

func NewSuccessResult(id, text string) Result {
	return Result{ID: id, Status: StatusSuccess, Result: text}
}

// NewErrorResult records a failure for id. kind may be empty.
func NewErrorResult(id string, err error, kind string) Result {
	return Result{ID: id, Status: StatusError, Error: err.Error(), ErrorKind: kind}
}
