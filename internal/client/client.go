// Package client talks to a running affect server.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lazypower/affect/internal/engine"
)

const (
	DefaultServerURL = "http://127.0.0.1:37780"
	httpTimeout      = 5 * time.Second
)

// Client talks to the affect server.
type Client struct {
	http      *http.Client
	serverURL string
}

// NewClient creates a new HTTP client. An empty serverURL falls back to
// AFFECT_URL, then to http://127.0.0.1:37780.
func NewClient(serverURL string) *Client {
	if serverURL == "" {
		serverURL = os.Getenv("AFFECT_URL")
	}
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	return &Client{
		http:      &http.Client{Timeout: httpTimeout},
		serverURL: strings.TrimSuffix(serverURL, "/"),
	}
}

// URL returns the server base URL.
func (c *Client) URL() string { return c.serverURL }

func (c *Client) do(method, path string, body []byte) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, c.serverURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		return data, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Message: errorMessage(data)}
	}
	return data, nil
}

// StatusError is returned for HTTP responses with status >= 400.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Message)
}

func errorMessage(data []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(data))
}

// Post sends a POST request with JSON body. Returns response body.
func (c *Client) Post(path string, body []byte) ([]byte, error) {
	return c.do(http.MethodPost, path, body)
}

// Put sends a PUT request with JSON body. Returns response body.
func (c *Client) Put(path string, body []byte) ([]byte, error) {
	return c.do(http.MethodPut, path, body)
}

// Get sends a GET request. Returns response body.
func (c *Client) Get(path string) ([]byte, error) {
	return c.do(http.MethodGet, path, nil)
}

// Delete sends a DELETE request. Returns response body.
func (c *Client) Delete(path string) ([]byte, error) {
	return c.do(http.MethodDelete, path, nil)
}

// Healthy checks if the server is reachable.
func (c *Client) Healthy() bool {
	resp, err := c.http.Get(c.serverURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// SendEvent posts a lifecycle event and returns its id.
func (c *Client) SendEvent(kind, desireType string) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"kind":        kind,
		"desire_type": desireType,
	})
	data, err := c.Post("/api/events", body)
	if err != nil {
		return "", err
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode event response: %w", err)
	}
	return resp.ID, nil
}

// Emotions is the /api/emotions response.
type Emotions struct {
	Seq       uint64             `json:"seq"`
	At        time.Time          `json:"at"`
	DecayRate float64            `json:"decay_rate"`
	Emotions  []engine.Intensity `json:"emotions"`
}

// Emotions fetches the current emotion intensities.
func (c *Client) Emotions() (*Emotions, error) {
	var out Emotions
	if err := c.getJSON("/api/emotions", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Desires fetches the tracked desire statuses.
func (c *Client) Desires() ([]engine.DesireStatus, error) {
	var out struct {
		Desires []engine.DesireStatus `json:"desires"`
	}
	if err := c.getJSON("/api/desires", &out); err != nil {
		return nil, err
	}
	return out.Desires, nil
}

// Event is one entry of the server's event log.
type Event struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	DesireType string `json:"desire_type"`
	ReceivedAt int64  `json:"received_at"` // unix millis
}

// Time returns ReceivedAt as a time.Time.
func (e Event) Time() time.Time { return time.UnixMilli(e.ReceivedAt) }

// Events fetches up to limit logged events, newest first, optionally for
// one desire.
func (c *Client) Events(desireType string, limit int) ([]Event, error) {
	q := url.Values{}
	if desireType != "" {
		q.Set("desire", desireType)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/events"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out struct {
		Events []Event `json:"events"`
	}
	if err := c.getJSON(path, &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

// Modulation is one configured modulation row.
type Modulation struct {
	Row     string             `json:"row"`
	Path    string             `json:"path"`
	Factors map[string]float64 `json:"factors"`
}

// GetModulation fetches a configured row.
func (c *Client) GetModulation(row string) (*Modulation, error) {
	var out Modulation
	if err := c.getJSON("/api/modulation/"+url.PathEscape(row), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetModulation replaces a row's factors.
func (c *Client) SetModulation(row string, factors map[string]float64) error {
	body, err := json.Marshal(map[string]any{"factors": factors})
	if err != nil {
		return fmt.Errorf("encode factors: %w", err)
	}
	_, err = c.Put("/api/modulation/"+url.PathEscape(row), body)
	return err
}

// DeleteModulation removes a row.
func (c *Client) DeleteModulation(row string) error {
	_, err := c.Delete("/api/modulation/" + url.PathEscape(row))
	return err
}

// ListModulation returns the configured row names.
func (c *Client) ListModulation() ([]string, error) {
	var out struct {
		Rows []string `json:"rows"`
	}
	if err := c.getJSON("/api/modulation", &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

func (c *Client) getJSON(path string, v any) error {
	data, err := c.Get(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
