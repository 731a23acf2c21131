package service

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"catalogo-armazones/logger"
	"catalogo-armazones/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// URLValidator checks with a HEAD request that image URLs resolve to an image.
// Results are cached per URL for the lifetime of the validator.
type URLValidator struct {
	client  *http.Client
	workers int
	logger  *zap.Logger

	mu    sync.Mutex
	cache map[string]bool
}

// NewURLValidator creates a URLValidator with the given per-request timeout and concurrency
func NewURLValidator(timeout time.Duration, workers int, log *zap.Logger) *URLValidator {
	if workers < 1 {
		workers = 1
	}
	return &URLValidator{
		client:  &http.Client{Timeout: timeout},
		workers: workers,
		logger:  logger.OrNop(log),
		cache:   make(map[string]bool),
	}
}

// Validate reports whether rawURL answers a HEAD request with 200 and an image content type
func (v *URLValidator) Validate(ctx context.Context, rawURL string) bool {
	rawURL = strings.TrimSpace(rawURL)

	v.mu.Lock()
	valid, ok := v.cache[rawURL]
	v.mu.Unlock()
	if ok {
		return valid
	}

	valid = v.check(ctx, rawURL)
	if ctx.Err() != nil {
		return valid
	}

	v.mu.Lock()
	v.cache[rawURL] = valid
	v.mu.Unlock()
	return valid
}

func (v *URLValidator) check(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Debug("image url check failed", zap.String("url", rawURL), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK &&
		strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "image")
}

// ValidateAll checks urls concurrently and delivers the results, in input order,
// on the returned channel. Slots are 1-based positions in urls.
func (v *URLValidator) ValidateAll(ctx context.Context, urls []string) <-chan []models.URLCheck {
	out := make(chan []models.URLCheck, 1)
	go func() {
		defer close(out)
		checks := make([]models.URLCheck, len(urls))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(v.workers)
		for i, u := range urls {
			g.Go(func() error {
				checks[i] = models.URLCheck{Slot: i + 1, URL: u, Valid: v.Validate(gctx, u)}
				return nil
			})
		}
		_ = g.Wait()

		out <- checks
	}()
	return out
}

// CachedResults returns the number of URLs already validated
func (v *URLValidator) CachedResults() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.cache)
}
