// Package datasource provides typed access to the SmartB3 prediction
// backend and to the news feeds shown next to a company.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/smartb3/smartb3/pkg/models"
)

// --- Errors ---

// ErrInvalidPayload is returned when a response body does not match the
// schema of its endpoint.
var ErrInvalidPayload = models.ErrInvalidPayload

// FetchError describes a network or HTTP failure while reading from an
// upstream source.
type FetchError struct {
	URL        string
	StatusCode int // zero for transport errors
	Status     string
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: HTTP %d %s: %s", e.URL, e.StatusCode, e.Status, e.Body)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MissingDataError is returned when the requested company or sector is not
// known upstream.
type MissingDataError struct {
	Kind string // "company", "sector", ...
	Key  string
	Err  error
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

func (e *MissingDataError) Unwrap() error { return e.Err }

// IsMissing reports whether err is a MissingDataError.
func IsMissing(err error) bool {
	var m *MissingDataError
	return errors.As(err, &m)
}

// IsFetchError reports whether err is a FetchError.
func IsFetchError(err error) bool {
	var f *FetchError
	return errors.As(err, &f)
}

// --- Shared HTTP helpers ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "smartb3-dashboard/1.0"

// doGet performs a GET request, returning the response body for status
// codes below 400. The caller is responsible for closing the body.
func doGet(ctx context.Context, client *http.Client, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       string(body),
		}
	}

	return resp.Body, nil
}
