package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/glorpus-work/tikgrab/internal/logger"
	"github.com/glorpus-work/tikgrab/pkg/checksum"
	pkgerrors "github.com/glorpus-work/tikgrab/pkg/errors"
	"github.com/glorpus-work/tikgrab/pkg/fsutil"
)

// ManagerImpl is an HTTP-based download manager with per-item retries,
// exponential backoff, streaming integrity tracking and a bounded-concurrency
// batch mode. Bytes stream directly to the final resolved path; a process
// kill mid-transfer can therefore leave a truncated file at its final name.
type ManagerImpl struct {
	client *http.Client
	opts   Options

	// sem admits one attempt at a time per slot; it is held only while a
	// transfer is actually on the wire, never across backoff sleeps.
	sem chan struct{}

	// sleep is the backoff wait, replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

var _ Manager = (*ManagerImpl)(nil)

// NewManager creates a new download manager from opts.
func NewManager(opts Options) *ManagerImpl {
	opts.applyDefaults()
	return &ManagerImpl{
		client: &http.Client{Timeout: opts.Timeout, Jar: opts.Jar},
		opts:   opts,
		sem:    make(chan struct{}, opts.Concurrency),
		sleep:  sleepContext,
	}
}

// Fetch downloads a single item into dir.
func (m *ManagerImpl) Fetch(ctx context.Context, item Item, dir string) (Result, error) {
	if err := fsutil.EnsureDir(dir); err != nil {
		return Result{}, pkgerrors.Wrap(err, "could not create download dir")
	}
	return m.fetchOne(ctx, item, dir)
}

// FetchAll downloads all items concurrently into dir.
func (m *ManagerImpl) FetchAll(ctx context.Context, items []Item, dir string) ([]Result, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if err := fsutil.EnsureDir(dir); err != nil {
		return nil, pkgerrors.Wrap(err, "could not create download dir")
	}

	var (
		mu       sync.Mutex
		results  []Result
		failures []error
	)
	var wg sync.WaitGroup

	for _, item := range items {
		wg.Add(1)
		go func(item Item) {
			defer wg.Done()
			res, err := m.fetchOne(ctx, item, dir)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, fmt.Errorf("%s: %w", item.URL, err))
				return
			}
			results = append(results, res)
		}(item)
	}

	wg.Wait()
	return results, errors.Join(failures...)
}

// fetchOne runs the attempt loop for one item.
func (m *ManagerImpl) fetchOne(ctx context.Context, item Item, dir string) (Result, error) {
	if item.URL == "" {
		return Result{}, fmt.Errorf("empty URL: %w", pkgerrors.ErrDownloadFailed)
	}
	name := item.Name
	if name == "" {
		name = baseNameFromURL(item.URL)
	}

	backoff := m.opts.InitialBackoff
	var lastErr error
	for attempt := 0; attempt <= m.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := m.sleep(ctx, backoff); err != nil {
				return Result{}, err
			}
			backoff *= 2
		}

		res, err := m.attempt(ctx, item.URL, name, dir)
		if err == nil {
			return res, nil
		}
		if errors.Is(err, pkgerrors.ErrLocalWrite) {
			// Local I/O failures are fatal, not retried.
			return Result{}, err
		}
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}

		lastErr = err
		logger.Warn("download attempt failed", logger.Fields{
			"url":     item.URL,
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}

	return Result{}, &ExhaustedRetriesError{
		URL:      item.URL,
		Attempts: m.opts.MaxRetries + 1,
		Last:     lastErr,
	}
}

// attempt performs one full try: acquire a transfer slot, open the stream,
// resolve the destination, and save the body. The slot is released before the
// caller sleeps its backoff.
func (m *ManagerImpl) attempt(ctx context.Context, rawURL, name, dir string) (Result, error) {
	select {
	case m.sem <- struct{}{}:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	defer func() { <-m.sem }()

	resp, err := m.doRequest(ctx, rawURL)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	// The extension can differ between attempts (redirects, content type),
	// so the destination is resolved fresh each time.
	ext := fsutil.GuessExtension(rawURL, resp.Header.Get("Content-Type"))
	destPath, err := fsutil.BuildDestPath(dir, name, ext)
	if err != nil {
		return Result{}, fmt.Errorf("resolve destination: %v: %w", err, pkgerrors.ErrLocalWrite)
	}

	sum, err := m.saveBody(resp, destPath)
	if err != nil {
		return Result{}, err
	}

	return Result{URL: rawURL, Path: destPath, Checksum: sum}, nil
}

func (m *ManagerImpl) doRequest(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", m.opts.UserAgent)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "request failed")
	}
	// Transport errors and HTTP status errors are retried identically.
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d: %w", resp.StatusCode, pkgerrors.ErrDownloadFailed)
	}
	return resp, nil
}

// saveBody streams the response body to dest in fixed-size chunks, feeding
// every chunk to the integrity tracker after it is written. A failed attempt
// removes its partial file so the next attempt resolves a clean name.
func (m *ManagerImpl) saveBody(resp *http.Response, dest string) (string, error) {
	file, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fsutil.FileModeDefault)
	if err != nil {
		return "", fmt.Errorf("create %s: %v: %w", dest, err, pkgerrors.ErrLocalWrite)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	tracker := checksum.NewTracker()
	buf := make([]byte, m.opts.ChunkSize)
	var downloaded int64
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := file.Write(buf[:n]); writeErr != nil {
				m.discard(file, dest)
				return "", fmt.Errorf("write %s: %v: %w", dest, writeErr, pkgerrors.ErrLocalWrite)
			}
			_, _ = tracker.Write(buf[:n])
			downloaded += int64(n)
			m.opts.Progress.Update(dest, downloaded, total)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			m.discard(file, dest)
			return "", pkgerrors.Wrap(readErr, "read body")
		}
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("close %s: %v: %w", dest, err, pkgerrors.ErrLocalWrite)
	}
	return tracker.HexDigest(), nil
}

func (m *ManagerImpl) discard(file *os.File, dest string) {
	_ = file.Close()
	_ = os.Remove(dest)
}

// baseNameFromURL derives a destination base name from the URL path,
// without its extension (the extension is derived from the response).
func baseNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return fsutil.FallbackName
	}
	base := path.Base(u.Path)
	return strings.TrimSuffix(base, path.Ext(base))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
