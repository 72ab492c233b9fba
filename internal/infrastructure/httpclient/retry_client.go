package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"portfolio_reporter/internal/domain/entity"
	"portfolio_reporter/internal/pkg/metrics"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 2 * time.Second
	DefaultTimeout     = 10 * time.Second
)

// Fetcher defines the interface for issuing outbound requests.
type Fetcher interface {
	Fetch(ctx context.Context, req entity.FetchRequest) (*entity.FetchResponse, error)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryClient issues HTTP requests and retries failures with exponential backoff.
// Attempt i (starting at 0) that fails is followed by a wait of baseDelay * 2^i,
// unless it was the last attempt.
type RetryClient struct {
	client         *fasthttp.Client
	logger         *zap.Logger
	maxAttempts    int
	baseDelay      time.Duration
	timeout        time.Duration
	limiter        *rate.Limiter
	defaultHeaders map[string]string
	sleep          SleepFunc
}

// Option configures the RetryClient.
type Option func(*RetryClient)

// WithMaxAttempts sets the total number of attempts per request.
func WithMaxAttempts(n int) Option {
	return func(c *RetryClient) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBaseDelay sets the delay after the first failed attempt.
func WithBaseDelay(d time.Duration) Option {
	return func(c *RetryClient) {
		if d >= 0 {
			c.baseDelay = d
		}
	}
}

// WithTimeout sets the per-attempt timeout used when the context carries no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *RetryClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit throttles attempts to rps per second with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *RetryClient) {
		if rps <= 0 {
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithDefaultHeader adds a header sent on every request unless the request overrides it.
func WithDefaultHeader(key, value string) Option {
	return func(c *RetryClient) {
		c.defaultHeaders[key] = value
	}
}

// WithSleeper replaces the backoff wait, mainly for tests.
func WithSleeper(sleep SleepFunc) Option {
	return func(c *RetryClient) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// NewRetryClient creates a new RetryClient.
func NewRetryClient(logger *zap.Logger, opts ...Option) *RetryClient {
	c := &RetryClient{
		client:         &fasthttp.Client{},
		logger:         logger.Named("RetryClient"),
		maxAttempts:    DefaultMaxAttempts,
		baseDelay:      DefaultBaseDelay,
		timeout:        DefaultTimeout,
		defaultHeaders: map[string]string{"Accept": "application/json"},
		sleep:          sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch implements the Fetcher interface.
// After the final failed attempt it returns the last error wrapped in *entity.TransportError.
func (c *RetryClient) Fetch(ctx context.Context, req entity.FetchRequest) (*entity.FetchResponse, error) {
	host := hostOf(req.URL)
	var lastErr error
	lastStatus := 0

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limit wait: %w", err)
			}
		}

		resp, err := c.do(ctx, req)
		if err == nil {
			metrics.UpstreamAttempts.WithLabelValues(host, "success").Inc()
			return resp, nil
		}

		lastErr = err
		var statusErr *entity.StatusError
		if errors.As(err, &statusErr) {
			lastStatus = statusErr.StatusCode
			metrics.UpstreamAttempts.WithLabelValues(host, "status").Inc()
		} else {
			metrics.UpstreamAttempts.WithLabelValues(host, "error").Inc()
		}

		c.logger.Warn(fmt.Sprintf("Attempt %d failed", attempt+1),
			zap.String("method", req.Method),
			zap.String("url", req.URL),
			zap.Int("attempt", attempt+1),
			zap.Int("maxAttempts", c.maxAttempts),
			zap.Error(err))

		if attempt < c.maxAttempts-1 {
			delay := c.baseDelay * time.Duration(1<<uint(attempt))
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}

	metrics.UpstreamFailures.WithLabelValues(host).Inc()
	c.logger.Error("All attempts failed. Returning the last error",
		zap.String("url", req.URL),
		zap.Int("attempts", c.maxAttempts),
		zap.Error(lastErr))
	return nil, &entity.TransportError{URL: req.URL, Attempts: c.maxAttempts, StatusCode: lastStatus, Err: lastErr}
}

func (c *RetryClient) do(ctx context.Context, r entity.FetchRequest) (*entity.FetchResponse, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	method := r.Method
	if method == "" {
		method = fasthttp.MethodGet
	}
	req.SetRequestURI(r.URL)
	req.Header.SetMethod(method)
	for k, v := range c.defaultHeaders {
		req.Header.Set(k, v)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	if len(r.Body) > 0 {
		req.SetBody(r.Body)
	}

	c.logger.Debug("Sending request", zap.String("method", method), zap.String("url", r.URL))

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("failed to execute request to %s: %w", r.URL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			return nil, fmt.Errorf("failed to execute request to %s with default timeout: %w", r.URL, err)
		}
	}

	status := resp.StatusCode()
	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		return nil, &entity.StatusError{StatusCode: status, Body: string(resp.Body())}
	}

	// The response buffer goes back to the pool on return.
	body := append([]byte(nil), resp.Body()...)
	return &entity.FetchResponse{StatusCode: status, Body: body}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
