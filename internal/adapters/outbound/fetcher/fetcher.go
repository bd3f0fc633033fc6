package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/openkraft/archlens/internal/domain"
)

const fallbackName = "archive.zip"

var errMissingBody = errors.New("response has no body")

// HTTPFetcher implements domain.ArchiveFetcher over HTTP(S) GET with a
// per-attempt timeout and linear backoff between attempts.
type HTTPFetcher struct {
	client      *http.Client
	timeout     time.Duration
	attempts    int
	backoffStep time.Duration
	userAgent   string
	logger      *zap.Logger
}

type Option func(*HTTPFetcher)

func WithHTTPClient(c *http.Client) Option {
	return func(f *HTTPFetcher) { f.client = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(f *HTTPFetcher) { f.logger = l }
}

func New(cfg domain.FetchConfig, opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:      &http.Client{},
		timeout:     cfg.Timeout,
		attempts:    cfg.Attempts,
		backoffStep: cfg.BackoffStep,
		userAgent:   cfg.UserAgent,
		logger:      zap.NewNop(),
	}
	if f.timeout <= 0 {
		f.timeout = domain.DefaultFetchTimeout
	}
	if f.attempts < 1 {
		f.attempts = domain.DefaultFetchAttempts
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads downloadURL into destDir. On success exactly one file is
// written; on failure no file is left behind and a *domain.DownloadError
// wrapping the last attempt's error is returned.
func (f *HTTPFetcher) Fetch(ctx context.Context, downloadURL, destDir string) (string, error) {
	u, err := url.Parse(downloadURL)
	if err != nil {
		return "", &domain.DownloadError{URL: downloadURL, Attempts: 0, Err: fmt.Errorf("parsing url: %w", err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &domain.DownloadError{URL: downloadURL, Attempts: 0, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}

	dest := filepath.Join(destDir, FileName(u))
	attempt := 0
	operation := func() error {
		attempt++
		return f.attempt(ctx, u.String(), dest)
	}
	notify := func(err error, wait time.Duration) {
		f.logger.Warn("download attempt failed",
			zap.String("url", redact(u)),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", f.attempts),
			zap.Duration("retry_in", wait),
			zap.Error(err),
		)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{step: f.backoffStep}, uint64(f.attempts-1)),
		ctx,
	)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		_ = os.Remove(dest)
		return "", &domain.DownloadError{URL: redact(u), Attempts: attempt, Err: err}
	}

	f.logger.Debug("archive downloaded", zap.String("url", redact(u)), zap.Int("attempts", attempt), zap.String("path", dest))
	return dest, nil
}

// attempt performs one GET bounded by the per-attempt timeout. A failed
// attempt removes whatever it wrote.
func (f *HTTPFetcher) attempt(ctx context.Context, rawURL, dest string) (err error) {
	actx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(actx, http.MethodGet, rawURL, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return errMissingBody
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(dest), err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", filepath.Base(dest), cerr)
		}
		if err != nil {
			_ = os.Remove(dest)
		}
	}()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("streaming archive: %w", err)
	}
	return nil
}

// FileName derives a safe local file name from the URL path.
func FileName(u *url.URL) string {
	base := path.Base(u.Path)
	if base == "" || base == "." || base == "/" {
		return fallbackName
	}
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if strings.Trim(base, "._") == "" {
		return fallbackName
	}
	return base
}

// redact drops query and credentials, which often carry signed tokens.
func redact(u *url.URL) string {
	c := *u
	c.User = nil
	c.RawQuery = ""
	c.Fragment = ""
	return c.String()
}

// linearBackOff waits attempt × step before each retry.
type linearBackOff struct {
	step    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.step
}

func (b *linearBackOff) Reset() { b.attempt = 0 }
