// Package httputil provides the HTTP plumbing used to fetch remote documents.
package httputil

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/G-USI/wirecrab/wcerrors"
)

// DefaultTimeout bounds a single document fetch made with NewClient.
const DefaultTimeout = 30 * time.Second

// NewClient returns an HTTP client with DefaultTimeout.
func NewClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// IsSuccess reports whether status is a 2xx code.
func IsSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// Get performs one GET request and returns the body and Content-Type header.
// Network failures and non-2xx responses are *wcerrors.TransportError. When
// maxSize is positive, a body larger than maxSize bytes is a
// *wcerrors.ResourceLimitError.
func Get(client *http.Client, rawURL, userAgent string, maxSize int64) ([]byte, string, error) {
	if client == nil {
		client = NewClient()
	}

	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", &wcerrors.TransportError{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req) //nolint:gosec // G107 - fetching user-supplied document URLs is the point
	if err != nil {
		return nil, "", &wcerrors.TransportError{URL: rawURL, Message: "failed to fetch URL", Cause: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if !IsSuccess(resp.StatusCode) {
		return nil, "", &wcerrors.TransportError{URL: rawURL, StatusCode: resp.StatusCode, Message: resp.Status}
	}

	body := io.Reader(resp.Body)
	if maxSize > 0 {
		body = io.LimitReader(resp.Body, maxSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, "", &wcerrors.TransportError{URL: rawURL, StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, "", &wcerrors.ResourceLimitError{
			ResourceType: "file_size",
			Limit:        maxSize,
			Message:      fmt.Sprintf("response from %s is too large", rawURL),
		}
	}

	return data, resp.Header.Get("Content-Type"), nil
}
