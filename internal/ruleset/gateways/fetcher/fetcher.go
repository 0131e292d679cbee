package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/haukened/rr-ruleset/internal/ruleset/common/log"
	"github.com/haukened/rr-ruleset/internal/ruleset/domain"
)

// Error message constants for consistent error handling
const (
	errBuildRequest = "build request: %w"
	errRequest      = "request failed: %w"
	errReadBody     = "read body: %w"
)

// errEmptyURL is returned when Fetch is called without a source URL.
var errEmptyURL = errors.New("source URL is empty")

// Doer is the subset of *http.Client used by the fetcher.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPFetcher retrieves the source list with a single GET request.
// It applies no timeout, custom headers or retries of its own; the
// injected client's transport defaults are used as-is.
type HTTPFetcher struct {
	client Doer
	logger log.Logger
}

// Options configures an HTTPFetcher. Both fields are optional.
type Options struct {
	// Client defaults to http.DefaultClient.
	Client Doer
	// Logger defaults to a no-op logger.
	Logger log.Logger
}

// New creates an HTTPFetcher from opts.
func New(opts Options) *HTTPFetcher {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	return &HTTPFetcher{client: opts.Client, logger: opts.Logger}
}

// Fetch performs a GET against url and returns the response body as text.
// Any transport failure, non-2xx status or body read failure is returned as
// a *domain.FetchError wrapping the cause.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", &domain.FetchError{URL: url, Err: errEmptyURL}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &domain.FetchError{URL: url, Err: fmt.Errorf(errBuildRequest, err)}
	}

	f.logger.Debug(map[string]any{"url": url}, "fetch_start")
	resp, err := f.client.Do(req)
	if err != nil {
		return "", &domain.FetchError{URL: url, Err: fmt.Errorf(errRequest, err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused; the content is not needed
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &domain.FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        errors.New(resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf(errReadBody, err)}
	}

	f.logger.Debug(map[string]any{
		"url":          url,
		"status":       resp.StatusCode,
		"bytes":        len(body),
		"content_type": resp.Header.Get("Content-Type"),
	}, "fetch_done")
	return string(body), nil
}
