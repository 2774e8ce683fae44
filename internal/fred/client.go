package fred

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chartcrime/chartcrime-go/internal/config"
	"github.com/chartcrime/chartcrime-go/internal/models"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultInterval       = time.Second
	defaultMaxRetries     = 6
	defaultMaxBackoff     = 60 * time.Second
	initialBackoff        = 2 * time.Second

	// observationsPageLimit is well above any daily series' window size, so
	// observation fetches never paginate.
	observationsPageLimit = 100000
	// categoryPageSize is FRED's maximum page size for category listings.
	categoryPageSize = 1000
)

// Client talks to the FRED HTTP API. A single shared throttle spaces every
// request and transient failures are retried with capped exponential
// backoff, honoring a server-supplied retry delay when one is present.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	throttle   *Throttle
	timeout    time.Duration
	maxRetries int
	maxBackoff time.Duration
	logger     *logrus.Logger

	sleep func(context.Context, time.Duration) error
}

// NewClient creates a FRED client from configuration. Unset durations fall
// back to provider-friendly defaults.
func NewClient(cfg *config.FREDConfig, logger *logrus.Logger) *Client {
	timeout := parseDurationOr(cfg.RequestTimeout, defaultRequestTimeout)
	interval := parseDurationOr(cfg.MinRequestInterval, defaultInterval)
	maxBackoff := parseDurationOr(cfg.MaxBackoff, defaultMaxBackoff)
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		throttle:   NewThrottle(interval),
		timeout:    timeout,
		maxRetries: maxRetries,
		maxBackoff: maxBackoff,
		logger:     logger,
		sleep:      sleepContext,
	}
}

// Observations fetches daily observations for a series from startDate
// (inclusive) through today, sorted ascending. FRED's "." missing-value
// sentinel is dropped at this boundary.
func (c *Client) Observations(ctx context.Context, seriesID, startDate string) ([]models.Observation, error) {
	params := url.Values{}
	params.Set("series_id", seriesID)
	params.Set("observation_start", startDate)
	params.Set("limit", strconv.Itoa(observationsPageLimit))
	params.Set("sort_order", "asc")

	var response observationsResponse
	if err := c.get(ctx, "series/observations", params, &response); err != nil {
		return nil, err
	}

	observations := make([]models.Observation, 0, len(response.Observations))
	for _, o := range response.Observations {
		if o.Value == "." {
			continue
		}
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"series": seriesID,
				"date":   o.Date,
				"value":  o.Value,
			}).Debug("Skipping unparseable observation value")
			continue
		}
		observations = append(observations, models.Observation{Date: o.Date, Value: v})
	}
	return observations, nil
}

// CategorySeriesIDs lists every series id in a FRED category, paging until a
// short page signals the end.
func (c *Client) CategorySeriesIDs(ctx context.Context, categoryID int) ([]string, error) {
	var ids []string
	for offset := 0; ; offset += categoryPageSize {
		params := url.Values{}
		params.Set("category_id", strconv.Itoa(categoryID))
		params.Set("limit", strconv.Itoa(categoryPageSize))
		params.Set("offset", strconv.Itoa(offset))
		params.Set("sort_order", "asc")

		var response categorySeriesResponse
		if err := c.get(ctx, "category/series", params, &response); err != nil {
			return nil, err
		}
		for _, s := range response.Series {
			ids = append(ids, s.ID)
		}
		if len(response.Series) < categoryPageSize {
			break
		}
	}
	return ids, nil
}

// get performs a throttled GET with the retry budget. Transient failures are
// retried with capped exponential backoff; permanent failures surface
// immediately.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		err := c.doOnce(ctx, endpoint, params, result)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		lastErr = err
		if attempt == c.maxRetries-1 {
			break
		}

		delay := c.retryDelay(attempt, err)
		c.logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"attempt":  attempt + 1,
			"retries":  c.maxRetries,
			"delay":    delay.String(),
			"error":    err.Error(),
		}).Warn("Transient FRED failure, retrying")

		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w (last error: %v)", endpoint, c.maxRetries, ErrRetriesExhausted, lastErr)
}

// retryDelay prefers an explicit server-supplied delay, clamped to the cap,
// over the computed exponential value.
func (c *Client) retryDelay(attempt int, err error) time.Duration {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		if apiErr.RetryAfter > c.maxBackoff {
			return c.maxBackoff
		}
		return apiErr.RetryAfter
	}

	delay := initialBackoff << uint(attempt)
	if delay > c.maxBackoff || delay <= 0 {
		delay = c.maxBackoff
	}
	return delay
}

// doOnce issues a single throttled request bounded by the request timeout
// and classifies the outcome.
func (c *Client) doOnce(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	if err := c.throttle.Wait(ctx); err != nil {
		return err
	}

	query := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	query.Set("api_key", c.apiKey)
	query.Set("file_type", "json")

	requestURL := c.baseURL + "/" + endpoint + "?" + query.Encode()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "chartcrime-go/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network errors and timeouts are transient by definition.
		return &APIError{Kind: KindTransient, Message: err.Error()}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.WithError(err).Debug("Error closing response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Kind: KindTransient, StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if err := classifyStatus(resp, body); err != nil {
		return err
	}

	// FRED reports some errors in-band with HTTP 200; classify those once
	// here so retry logic downstream only ever switches on the error kind.
	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return &APIError{Kind: KindPermanent, StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to unmarshal response: %v", err)}
	}
	if envelope.ErrorCode != 0 {
		kind := KindPermanent
		if envelope.ErrorCode == http.StatusTooManyRequests {
			kind = KindTransient
		}
		return &APIError{
			Kind:       kind,
			StatusCode: resp.StatusCode,
			Code:       envelope.ErrorCode,
			Message:    envelope.ErrorMessage,
		}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return &APIError{Kind: KindPermanent, StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to unmarshal response: %v", err)}
		}
	}
	return nil
}

// classifyStatus maps the HTTP status to the error taxonomy. 2xx passes
// through for in-band inspection.
func classifyStatus(resp *http.Response, body []byte) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusRequestTimeout,
		resp.StatusCode >= 500:
		return &APIError{
			Kind:       KindTransient,
			StatusCode: resp.StatusCode,
			Message:    truncate(string(body), 200),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	default:
		return &APIError{
			Kind:       KindPermanent,
			StatusCode: resp.StatusCode,
			Message:    truncate(string(body), 200),
		}
	}
}

// parseRetryAfter supports the delay-seconds form of the header. The HTTP
// date form is rare enough from FRED that it falls back to the computed
// backoff.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
