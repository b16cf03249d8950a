package backend

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// QueryResult is the body returned by GET /query/{query}, rendered as text.
// Fields missing from the body are empty strings.
type QueryResult struct {
	Query    string `json:"query"`
	Response string `json:"response"`
}

// rawResult keeps the fields undecoded so that any JSON value is accepted.
type rawResult struct {
	Query    json.RawMessage `json:"query"`
	Response json.RawMessage `json:"response"`
}

func (r rawResult) result() (QueryResult, error) {
	query, err := fieldText(r.Query)
	if err != nil {
		return QueryResult{}, err
	}
	response, err := fieldText(r.Response)
	if err != nil {
		return QueryResult{}, err
	}
	return QueryResult{Query: query, Response: response}, nil
}

// fieldText renders a field the way a page would interpolate it into text:
// strings as-is, numbers and booleans in their literal form, null as "null",
// arrays joined with commas and objects as "[object Object]".
func fieldText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	return valueText(v), nil
}

func valueText(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if math.Abs(v) >= 1e21 {
			return strconv.FormatFloat(v, 'g', -1, 64)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			if e != nil {
				parts[i] = valueText(e)
			}
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}

// RequestError is returned when the backend answers with a non-2xx status.
// The body is never read in that case.
type RequestError struct {
	StatusCode int
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("HTTP error! Status: %d", e.StatusCode)
}

// ParseError is returned when a 2xx body is not a JSON object.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
