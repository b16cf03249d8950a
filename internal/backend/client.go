// internal/backend/client.go
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// DefaultBaseURL is the query endpoint the widget talks to unless configured otherwise.
const DefaultBaseURL = "http://localhost:8000/query/"

var errNullBody = errors.New("response body is null, expected a JSON object")

// Client calls the query backend.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient creates a query client pointing at baseURL (e.g. http://localhost:8000/query/).
// A zero timeout leaves requests unbounded.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

// URL returns the request URL for query: the base URL with query appended
// as a single segment encoded by EscapeSegment.
func (c *Client) URL(query string) string {
	base := c.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + EscapeSegment(query)
}

// Query issues GET {BaseURL}{query}. Non-2xx statuses yield *RequestError,
// undecodable bodies yield *ParseError, anything else is a transport failure.
func (c *Client) Query(ctx context.Context, query string) (QueryResult, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(query), nil)
	if err != nil {
		return QueryResult{}, fmt.Errorf("build request: %w", err)
	}
	hresp, err := c.httpClient().Do(r)
	if err != nil {
		return QueryResult{}, err
	}
	defer hresp.Body.Close()

	if hresp.StatusCode < 200 || hresp.StatusCode > 299 {
		zap.S().Debugw("query backend rejected request", "status", hresp.StatusCode)
		return QueryResult{}, &RequestError{StatusCode: hresp.StatusCode}
	}

	body, err := io.ReadAll(hresp.Body)
	if err != nil {
		return QueryResult{}, err
	}
	var raw *rawResult
	if err := json.Unmarshal(body, &raw); err != nil {
		return QueryResult{}, &ParseError{Err: err}
	}
	if raw == nil {
		return QueryResult{}, &ParseError{Err: errNullBody}
	}
	res, err := raw.result()
	if err != nil {
		return QueryResult{}, &ParseError{Err: err}
	}
	return res, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}
