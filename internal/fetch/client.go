package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// ErrNotFound signals that a source file is absent and no backup URL was
// given to fetch it from.
var ErrNotFound = errors.New("source file not found")

// Client resolves source files, downloading from a backup URL when the local
// path is absent.
type Client struct {
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(timeout time.Duration, log *slog.Logger) *Client {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Open returns a readable stream for path, downloading from backupURL into
// path first when the file is absent.
func (c *Client) Open(ctx context.Context, path, backupURL string) (io.ReadCloser, error) {
	if err := c.Ensure(ctx, path, backupURL); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// Ensure makes sure path exists on disk, fetching it from backupURL when
// absent. Transient download failures are retried with backoff.
func (c *Client) Ensure(ctx context.Context, path, backupURL string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if backupURL == "" {
		return ErrNotFound
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	c.log.Info("source file absent, downloading", "path", path, "url", backupURL)
	var lastErr error
	for attempt := range maxRetries {
		lastErr = c.download(ctx, backupURL, path)
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
		c.log.Warn("retryable download error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("download %s: %w", backupURL, lastErr)
}

// download fetches the URL into dst via a temp file and rename, so a partial
// download never masquerades as the source file.
func (c *Client) download(ctx context.Context, srcURL, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", srcURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &httpStatusError{url: srcURL, status: resp.StatusCode}
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".tabgest-download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename to %s: %w", dst, err)
	}
	return nil
}

type httpStatusError struct {
	url    string
	status int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.url, e.status)
}

const maxRetries = 3

// isRetryable checks if a download error is worth retrying: server-side
// statuses and transport failures are, client errors are not.
func isRetryable(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.status >= 500
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// backoff returns a duration for attempt n (0-indexed) with jitter.
func backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}
