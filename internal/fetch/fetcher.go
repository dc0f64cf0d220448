// Package fetch issues polite, rate-limited HTTP GETs against the
// remote sources and hands back parsed HTML documents.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrTerminal marks a fetch whose retry budget is exhausted. It is
// fatal for that single resource only; driving loops move on to the
// next item.
var ErrTerminal = errors.New("fetch: retries exhausted")

const defaultUserAgent = "ligafeed/1.0 (university project; Budapest)"

// PageCache stores raw HTML bodies keyed by URL so re-runs within the
// TTL do not re-hit the remote source. Implementations must degrade
// gracefully: a miss or a cache failure just means a network fetch.
type PageCache interface {
	GetPage(ctx context.Context, url string) (string, bool)
	SetPage(ctx context.Context, url, body string)
}

// Options configures a Fetcher.
type Options struct {
	BaseURL     string
	Delay       time.Duration // politeness delay before every attempt
	MaxAttempts int
	UserAgent   string
	Client      *http.Client
	Cache       PageCache // optional
}

// Fetcher is the single way the pipeline talks to a remote source.
type Fetcher struct {
	client      *http.Client
	limiter     *rate.Limiter
	delay       time.Duration
	maxAttempts int
	baseURL     string
	userAgent   string
	cache       PageCache
	log         *zap.SugaredLogger
}

// New creates a Fetcher.
func New(opts Options, log *zap.SugaredLogger) *Fetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Delay <= 0 {
		opts.Delay = time.Second
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Fetcher{
		client:      client,
		limiter:     rate.NewLimiter(rate.Every(opts.Delay), 1),
		delay:       opts.Delay,
		maxAttempts: opts.MaxAttempts,
		baseURL:     strings.TrimRight(opts.BaseURL, "/") + "/",
		userAgent:   userAgent,
		cache:       opts.Cache,
		log:         log,
	}
}

// URL resolves a possibly relative page reference against the base URL.
func (f *Fetcher) URL(ref string) string {
	if strings.HasPrefix(ref, "http") {
		return ref
	}
	return f.baseURL + strings.TrimLeft(ref, "/")
}

// Fetch downloads and parses one page. Each attempt waits for the
// politeness limiter first; transport and HTTP-status failures are
// retried with linear backoff delay*(attempt+1). When the budget is
// exhausted the returned error wraps ErrTerminal.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (*goquery.Document, error) {
	url := f.URL(ref)

	if f.cache != nil {
		if body, ok := f.cache.GetPage(ctx, url); ok {
			f.log.Debugw("page cache hit", "url", url)
			return goquery.NewDocumentFromReader(strings.NewReader(body))
		}
	}

	var lastErr error
	for attempt := 0; attempt < f.maxAttempts; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := f.get(ctx, url)
		if err == nil {
			if f.cache != nil {
				f.cache.SetPage(ctx, url, body)
			}
			return goquery.NewDocumentFromReader(strings.NewReader(body))
		}
		lastErr = err

		if attempt < f.maxAttempts-1 {
			backoff := f.delay * time.Duration(attempt+1)
			f.log.Warnw("fetch attempt failed, backing off",
				"url", url, "attempt", attempt+1, "max", f.maxAttempts,
				"backoff", backoff, "error", err)
			if err := sleep(ctx, backoff); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("%w: %s after %d attempts: %v", ErrTerminal, url, f.maxAttempts, lastErr)
}

func (f *Fetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "hu-HU,hu;q=0.9,en;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
