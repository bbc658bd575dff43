package providers

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// scrapeUserAgent identifies the assistant politely to the sites we
// read from.
const scrapeUserAgent = "Mozilla/5.0 (compatible; ScoutXI/1.0)"

// scrapeClient is the shared outbound HTTP plumbing for the scraping
// providers: one rate limiter and one circuit breaker per source, so a
// flaky site throttles itself instead of the whole process.
type scrapeClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Logger
}

func newScrapeClient(name string, timeout time.Duration, rps float64, burst, breakerThreshold int, logger *logrus.Logger) *scrapeClient {
	if breakerThreshold < 1 {
		breakerThreshold = 3
	}
	settings := gobreaker.Settings{
		Name:    name,
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= uint32(breakerThreshold) && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "circuit_breaker",
				"service":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Info("Circuit breaker state changed")
		},
	}

	return &scrapeClient{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		breaker:    gobreaker.NewCircuitBreaker(settings),
		logger:     logger,
	}
}

// fetch performs a rate-limited, breaker-protected GET and returns the
// response body.
func (c *scrapeClient) fetch(ctx context.Context, url string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	body, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", scrapeUserAgent)
		req.Header.Set("Accept-Language", "en-US,en;q=0.8")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	})
	if err != nil {
		return "", err
	}
	return body.(string), nil
}

// pageCacheKey hashes URLs so cache keys stay short and free of
// key-separator characters.
func pageCacheKey(url string) string {
	sum := sha1.Sum([]byte(url))
	return fmt.Sprintf("page:%s", hex.EncodeToString(sum[:]))
}
