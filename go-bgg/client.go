package bgg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the base URL for the BGG XML API.
	BaseURL = "https://boardgamegeek.com/xmlapi2"

	// DefaultUserAgent identifies the marketplace to BGG.
	DefaultUserAgent = "SecondTurnGames/2.0 (info@secondturn.games)"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 15 * time.Second

	// DefaultMinRequestInterval is the minimum delay between two requests.
	DefaultMinRequestInterval = 1000 * time.Millisecond

	// DefaultHourlyLimit is the default number of requests allowed per hour.
	DefaultHourlyLimit = 800

	// DefaultBatchSize is the number of ids sent per /thing batch request.
	DefaultBatchSize = 15

	// defaultRetryAfter is used when a 429 carries no Retry-After header.
	defaultRetryAfter = 5 * time.Second
)

// RequestObserver is notified after every upstream round trip. status is 0
// when no response was received.
type RequestObserver func(endpoint string, status int, elapsed time.Duration)

// Config holds the configuration for the BGG API client.
type Config struct {
	BaseURL            string          // Optional: API base URL (default: BaseURL)
	Token              string          // Optional: BGG API Bearer token
	UserAgent          string          // Optional: User-Agent header (default: DefaultUserAgent)
	Timeout            time.Duration   // Optional: per-request timeout (default: 15s)
	MinRequestInterval time.Duration   // Optional: pacing between requests (default: 1s)
	HourlyLimit        int             // Optional: request budget per hour (default: 800)
	BatchSize          int             // Optional: ids per batch request (default: 15)
	HTTPClient         *http.Client    // Optional: transport (default: new http.Client)
	Logger             *slog.Logger    // Optional: logger (default: slog.Default())
	OnRequest          RequestObserver // Optional: metrics hook
	Now                func() time.Time
}

// Client is the BGG API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string
	timeout    time.Duration
	batchSize  int
	limiter    *rate.Limiter
	budget     *hourlyBudget
	logger     *slog.Logger
	onRequest  RequestObserver
}

// NewClient creates a new BGG API client.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = BaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, newNetworkError("invalid base URL", err)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	interval := cfg.MinRequestInterval
	if interval <= 0 {
		interval = DefaultMinRequestInterval
	}

	hourlyLimit := cfg.HourlyLimit
	if hourlyLimit <= 0 {
		hourlyLimit = DefaultHourlyLimit
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      cfg.Token,
		userAgent:  userAgent,
		timeout:    timeout,
		batchSize:  batchSize,
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		budget:     &hourlyBudget{limit: hourlyLimit, now: now},
		logger:     logger.With("component", "bgg-client"),
		onRequest:  cfg.OnRequest,
	}, nil
}

// RequestCount returns the number of upstream calls in the current hourly window.
func (c *Client) RequestCount() int {
	return c.budget.used()
}

// RemainingBudget returns how many calls are left in the current hourly window.
func (c *Client) RemainingBudget() int {
	return c.budget.remaining()
}

// Get performs a paced, budgeted GET request and returns the UTF-8 XML body.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (string, error) {
	if retryAfter, ok := c.budget.reserve(); !ok {
		return "", newRateLimitError("hourly request budget exhausted", retryAfter)
	}

	// Queueing for a slot is bounded by the caller's context only; the
	// request timeout starts once the slot is granted.
	if err := c.limiter.Wait(ctx); err != nil {
		c.budget.release()
		return "", classifyContextError(ctx, "waiting for request slot", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		c.budget.release()
		return "", newNetworkError("failed to create request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/xml; charset=utf-8")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(endpoint, 0, time.Since(start))
		c.logger.Warn("bgg request failed", "endpoint", endpoint, "error", err)
		return "", classifyContextError(ctx, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.observe(endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		return "", classifyContextError(ctx, "failed to read response body", err)
	}

	c.logger.Debug("bgg request", "endpoint", endpoint, "status", resp.StatusCode, "bytes", len(body))

	if err := statusError(resp); err != nil {
		return "", err
	}

	text, err := decodeUTF8(body)
	if err != nil {
		return "", newInvalidResponseError("response is not valid UTF-8", resp.StatusCode)
	}
	if !looksLikeXML(text) {
		return "", newInvalidResponseError("response is not well-formed XML", resp.StatusCode)
	}

	return text, nil
}

func (c *Client) observe(endpoint string, status int, elapsed time.Duration) {
	if c.onRequest != nil {
		c.onRequest(endpoint, status, elapsed)
	}
}

// statusError maps a non-2xx response onto the error taxonomy.
func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil

	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := defaultRetryAfter
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(strings.TrimSpace(ra)); err == nil && secs >= 0 {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		e := newRateLimitError("rate limit exceeded", retryAfter)
		e.StatusCode = resp.StatusCode
		return e

	case resp.StatusCode == http.StatusBadRequest:
		return newInvalidGameIDError("invalid game id")

	case resp.StatusCode == http.StatusNotFound:
		return newNotFoundError("game not found")

	case resp.StatusCode == http.StatusServiceUnavailable:
		return newUnavailableError("service unavailable", resp.StatusCode)

	default:
		return newUnavailableError(fmt.Sprintf("unexpected status code: %d", resp.StatusCode), resp.StatusCode)
	}
}

// classifyContextError turns transport failures into timeout or network errors.
func classifyContextError(ctx context.Context, message string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return newTimeoutError("request timed out", err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newTimeoutError("request timed out", err)
	}
	// rate.Limiter reports a wait that cannot finish before the deadline
	// without wrapping context.DeadlineExceeded.
	if _, ok := ctx.Deadline(); ok && ctx.Err() == nil && strings.Contains(err.Error(), "deadline") {
		return newTimeoutError("request timed out", err)
	}
	return newNetworkError(message, err)
}

// decodeUTF8 decodes raw bytes as UTF-8, dropping a leading BOM and
// replacing invalid sequences.
func decodeUTF8(body []byte) (string, error) {
	decoded, err := unicode.UTF8BOM.NewDecoder().Bytes(body)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// hourlyBudget counts upstream calls in a rolling one-hour window.
type hourlyBudget struct {
	mu          sync.Mutex
	limit       int
	count       int
	windowStart time.Time
	now         func() time.Time
}

// reserve claims one call from the budget. When the budget is exhausted it
// returns the time left until the window resets.
func (b *hourlyBudget) reserve() (time.Duration, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if b.windowStart.IsZero() || now.Sub(b.windowStart) >= time.Hour {
		b.windowStart = now
		b.count = 0
	}
	if b.count >= b.limit {
		return time.Hour - now.Sub(b.windowStart), false
	}
	b.count++
	return 0, true
}

// release returns a reserved call that never reached the network.
func (b *hourlyBudget) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count > 0 {
		b.count--
	}
}

func (b *hourlyBudget) used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.windowStart.IsZero() && b.now().Sub(b.windowStart) >= time.Hour {
		return 0
	}
	return b.count
}

func (b *hourlyBudget) remaining() int {
	return b.limit - b.used()
}
