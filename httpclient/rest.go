package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// JSONResponse wraps a typed, JSON-decoded response.
type JSONResponse[T any] struct {
	StatusCode int
	Data       T
}

// GetJSON performs a GET request and decodes the JSON response into T.
func GetJSON[T any](ctx context.Context, c *Client, path string, query map[string]string) (*JSONResponse[T], error) {
	return doJSON[T](ctx, c, Request{Method: http.MethodGet, Path: path, Query: query})
}

// PostJSON performs a POST request with a JSON body and decodes the response
// into T.
func PostJSON[T any](ctx context.Context, c *Client, path string, body any) (*JSONResponse[T], error) {
	return doJSON[T](ctx, c, Request{Method: http.MethodPost, Path: path, Body: body})
}

// doJSON executes a request and decodes the JSON response. On a non-2xx
// status the body is still decoded when possible, so callers get both the
// typed payload and the classification error.
func doJSON[T any](ctx context.Context, c *Client, req Request) (*JSONResponse[T], error) {
	if req.Headers == nil {
		req.Headers = map[string]string{}
	}
	if _, ok := req.Headers["Accept"]; !ok {
		req.Headers["Accept"] = "application/json"
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		if resp != nil {
			var data T
			if jsonErr := json.Unmarshal(resp.Body, &data); jsonErr == nil {
				return &JSONResponse[T]{StatusCode: resp.StatusCode, Data: data}, err
			}
		}
		return nil, err
	}

	var data T
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &data); err != nil {
			return nil, fmt.Errorf("httpclient: decode response: %w", err)
		}
	}
	return &JSONResponse[T]{StatusCode: resp.StatusCode, Data: data}, nil
}
