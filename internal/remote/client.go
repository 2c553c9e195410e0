// Package remote draws wishes by delegating to an evaluator over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/AaronLay10/WishEngine/internal/fortune"
)

// Endpoint is the evaluator path appended to the base URL.
const Endpoint = "/api/random"

// FallbackMessage is reported when an error response carries no message.
const FallbackMessage = "remote evaluator returned an unexpected response"

const (
	KindRemote  = "remote"
	KindNetwork = "network"
)

// Client implements fortune.Drawer against a remote evaluator.
type Client struct {
	base string
	http *http.Client
}

// NewClient targets the evaluator at baseURL, e.g. "http://localhost:8080".
// A nil httpClient selects one without a client-side timeout; cancel ctx
// to bound a draw.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: httpClient,
	}
}

// URL returns the full evaluator URL.
func (c *Client) URL() string {
	return c.base + Endpoint
}

// Draw posts the wish and decodes the outcome. No retry is attempted.
func (c *Client) Draw(ctx context.Context, machine, message string) (*fortune.Outcome, error) {
	body, err := json.Marshal(fortune.WishRequest{Machine: machine, Message: message})
	if err != nil {
		return nil, fmt.Errorf("marshal wish: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(), bytes.NewReader(body))
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	var out fortune.Outcome
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: FallbackMessage}
	}
	return &out, nil
}

func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || strings.TrimSpace(body.Message) == "" {
		return FallbackMessage
	}
	return body.Message
}

// RemoteError is a non-2xx response from the evaluator.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote evaluator: %d: %s", e.StatusCode, e.Message)
}

func (e *RemoteError) Kind() string {
	return KindRemote
}

// NetworkError is a transport failure before a response was read.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "remote evaluator unreachable: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Kind() string {
	return KindNetwork
}

var _ fortune.Drawer = (*Client)(nil)
