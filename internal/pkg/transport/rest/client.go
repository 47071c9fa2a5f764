// Package rest sends JSON requests to a REST API over a retrying HTTP client
// and reports failures with the synchronization error taxonomy: transport
// failures as syncerr transport errors, non successful statuses as syncerr
// API errors carrying the server message.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gabapcia/walletsync/internal/syncerr"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 4 << 10

// HeaderRequestID carries a unique id per request, echoed in server logs.
const HeaderRequestID = "X-Request-Id"

// Request describes one call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header

	// Body is encoded as JSON when not nil.
	Body any
}

// Client sends REST requests.
type Client interface {
	// Do sends req and returns the body of a successful response. The caller
	// must close it.
	Do(ctx context.Context, req Request) (io.ReadCloser, error)
}

type client struct {
	baseURL    string
	httpClient *retryablehttp.Client
}

// Compile-time assertion that client implements the Client interface.
var _ Client = (*client)(nil)

// NewClient returns a Client resolving paths against baseURL.
func NewClient(httpClient *retryablehttp.Client, baseURL string) *client {
	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *client) Do(ctx context.Context, req Request) (io.ReadCloser, error) {
	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, err
		}

		body = bytes.NewReader(raw)
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, err
	}

	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(HeaderRequestID, uuid.NewString())
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, syncerr.Transport(err, "%s %s", req.Method, req.Path)
	}

	if res.StatusCode >= http.StatusOK && res.StatusCode < http.StatusBadRequest {
		return res.Body, nil
	}

	defer res.Body.Close()
	return nil, syncerr.API(res.StatusCode, errorMessage(res.Body))
}

// errorMessage extracts the server message of an error response: the
// "error" or "message" member of a JSON object, or the raw body otherwise.
func errorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}

	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		var text string
		if json.Unmarshal(payload.Error, &text) == nil && text != "" {
			return text
		}

		// some explorers nest {"error": {"message": "..."}}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(payload.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}

		if payload.Message != "" {
			return payload.Message
		}
	}

	return strings.TrimSpace(string(raw))
}
