// Package cloud talks to the thermostat server: it fetches the program and
// posts status reports.
package cloud

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds every request when the caller does not set one.
const DefaultTimeout = 10 * time.Second

// maxProgramBytes caps how much of a program response is read.
const maxProgramBytes = 64 << 10

// ErrUnexpectedStatus is returned for non-2xx responses.
var ErrUnexpectedStatus = errors.New("unexpected http status")

// Client is a small synchronous HTTP client with a fixed timeout.
type Client struct {
	http *http.Client
}

// NewClient returns a Client whose requests give up after timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

// NewClientWithHTTP wraps an existing *http.Client.
func NewClientWithHTTP(hc *http.Client) *Client {
	return &Client{http: hc}
}

// ProgramURL builds {serverURL}/thermostat/{id}/program.
func ProgramURL(serverURL, id string) string {
	return thermostatURL(serverURL, id, "program")
}

// StatusURL builds {serverURL}/thermostat/{id}/status.
func StatusURL(serverURL, id string) string {
	return thermostatURL(serverURL, id, "status")
}

func thermostatURL(serverURL, id, leaf string) string {
	return strings.TrimRight(serverURL, "/") + "/thermostat/" + url.PathEscape(id) + "/" + leaf
}

// GetProgram returns the raw program payload. A 2xx with an empty body is a
// success with an empty payload.
func (c *Client) GetProgram(ctx context.Context, serverURL, id string) (string, error) {
	endpoint := ProgramURL(serverURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build program request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("get program: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProgramBytes))
	if err != nil {
		return "", fmt.Errorf("read program body: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return "", fmt.Errorf("get program %s: %w", endpoint, err)
	}
	return string(body), nil
}

// FormatStatus renders the status body with two decimals, e.g.
// {"current_temp": 17.00, "heater_on": true}.
func FormatStatus(currentTemp float64, heaterOn bool) []byte {
	return []byte(fmt.Sprintf(`{"current_temp": %.2f, "heater_on": %t}`, currentTemp, heaterOn))
}

// PostStatus reports the current temperature and heater state.
func (c *Client) PostStatus(ctx context.Context, serverURL, id string, currentTemp float64, heaterOn bool) error {
	endpoint := StatusURL(serverURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(FormatStatus(currentTemp, heaterOn)))
	if err != nil {
		return fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post status: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxProgramBytes))

	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("post status %s: %w", endpoint, err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}
	return nil
}
