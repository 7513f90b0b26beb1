package caption

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jeeftor/captionctl/internal/constants"
)

// ErrSourceUnavailable marks a transient fetch failure (HTTP 503)
var ErrSourceUnavailable = errors.New("script source unavailable")

// InlineSource serves a script held in memory
type InlineSource string

// Fetch returns the inline script text
func (s InlineSource) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return string(s), nil
}

// FileSource reads a script from the local filesystem
type FileSource struct {
	Path string
}

// Fetch reads the script file
func (s FileSource) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("reading script %s: %w", s.Path, err)
	}
	return string(data), nil
}

// HTTPSource fetches a script with a plain GET
type HTTPSource struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
}

// NewHTTPSource creates an HTTP source using the default fetch timeout
func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{URL: url, Timeout: constants.DefaultFetchTimeout}
}

// Fetch downloads the script. A 503 response returns ErrSourceUnavailable.
func (s *HTTPSource) Fetch(ctx context.Context) (string, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		return "", fmt.Errorf("%w: %s", ErrSourceUnavailable, s.URL)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("unexpected status from %s: %s", s.URL, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	return string(body), nil
}

// SourceFor picks a source for a location: http(s) URLs are fetched, anything
// else is read from disk
func SourceFor(location string) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location)
	}
	return FileSource{Path: location}
}

// DescribeSource names a source for log lines
func DescribeSource(src Source) string {
	switch s := src.(type) {
	case FileSource:
		return s.Path
	case *HTTPSource:
		return s.URL
	case InlineSource:
		return "inline script"
	default:
		return fmt.Sprintf("%T", src)
	}
}
