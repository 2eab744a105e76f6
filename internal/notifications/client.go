package notifications

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"jeongsim_ledger/internal/model"
	"jeongsim_ledger/internal/retry"
	"jeongsim_ledger/internal/syncer"

	"github.com/rs/zerolog/log"
)

const (
	circuitThreshold = 5
	circuitCooldown  = 30 * time.Second
)

// Client posts plain-text messages to an ntfy topic.
type Client struct {
	httpClient *http.Client
	baseURL    string
	topic      string
	enabled    bool
	priority   string
	policy     retry.Config
	// Circuit breaker state
	failures    int
	lastFailure time.Time
	circuitOpen bool
	mutex       sync.Mutex
	// Failed sheets of the last pull, comma joined
	lastFailedSheets string
	// Metrics
	totalSent    int64
	totalFailed  int64
	totalRetries int64
}

type NotificationError struct {
	Type       string
	StatusCode int
	Attempt    int
	Underlying error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification failed [%s] attempt %d: %v", e.Type, e.Attempt, e.Underlying)
}

func (e *NotificationError) Unwrap() error {
	return e.Underlying
}

func (e *NotificationError) IsRetryable() bool {
	switch e.Type {
	case "network", "server", "timeout", "rate_limit":
		return true
	case "auth", "client", "circuit_open":
		return false
	default:
		return e.StatusCode >= 500
	}
}

// NewClient builds an ntfy client. policy supplies the retry count, backoff
// bounds and per-request timeout.
func NewClient(baseURL, topic string, enabled bool, priority string, policy retry.Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: policy.Timeout,
		},
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		topic:    topic,
		enabled:  enabled,
		priority: priority,
		policy:   policy,
	}
}

func (c *Client) SendNotification(ctx context.Context, message string) error {
	if !c.enabled {
		log.Debug().Msg("Notifications disabled, skipping")
		return nil
	}

	if c.isCircuitOpen() {
		log.Warn().Msg("Circuit breaker open, skipping notification")
		return &NotificationError{
			Type:       "circuit_open",
			Underlying: errors.New("circuit breaker is open"),
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateBackoff(attempt)
			log.Debug().
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("Retrying notification after delay")

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			c.incrementRetries()
		}

		err := c.send(ctx, message, attempt+1)
		if err == nil {
			c.recordSuccess()
			return nil
		}
		lastErr = err

		var notifErr *NotificationError
		if errors.As(err, &notifErr) && !notifErr.IsRetryable() {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Msg("Non-retryable error, giving up")
			c.recordFailure()
			return err
		}

		log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("max_retries", c.policy.MaxRetries).
			Msg("Notification attempt failed")
	}

	c.recordFailure()
	return &NotificationError{
		Type:       "max_retries_exceeded",
		Attempt:    c.policy.MaxRetries + 1,
		Underlying: lastErr,
	}
}

func (c *Client) send(ctx context.Context, message string, attempt int) error {
	url := fmt.Sprintf("%s/%s", c.baseURL, c.topic)

	log.Debug().
		Str("url", url).
		Int("attempt", attempt).
		Msg("Sending notification")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(message))
	if err != nil {
		return &NotificationError{Type: "client", Attempt: attempt, Underlying: err}
	}

	req.Header.Set("Content-Type", "text/plain")
	if c.priority != "" {
		req.Header.Set("Priority", c.priority)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NotificationError{Type: "network", Attempt: attempt, Underlying: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &NotificationError{
			Type:       categorizeHTTPError(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Attempt:    attempt,
			Underlying: fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status),
		}
	}

	log.Debug().
		Int("status_code", resp.StatusCode).
		Int("attempt", attempt).
		Msg("Notification sent successfully")
	return nil
}

// SyncCompleted sends a summary of a pull that changed the stored
// transactions or failed on a different set of sheets than the last one.
func (c *Client) SyncCompleted(ctx context.Context, result syncer.Result) {
	if !c.enabled {
		return
	}
	failed := strings.Join(failedSheets(result), ",")
	c.mutex.Lock()
	newFailures := failed != c.lastFailedSheets
	c.lastFailedSheets = failed
	c.mutex.Unlock()

	if !result.Changed && !newFailures {
		log.Debug().Int("transactions", result.Transactions).Msg("Pull changed nothing, no notification")
		return
	}
	if err := c.SendNotification(ctx, FormatSyncMessage(result)); err != nil {
		log.Warn().Err(err).Msg("Sync notification failed")
	}
}

// TransactionRecorded announces a manually recorded transaction.
func (c *Client) TransactionRecorded(ctx context.Context, tx model.Transaction) {
	if !c.enabled {
		return
	}
	if err := c.SendNotification(ctx, FormatRecordMessage(tx)); err != nil {
		log.Warn().Err(err).Str("id", tx.ID).Msg("Record notification failed")
	}
}

func FormatSyncMessage(result syncer.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📒 Ledger sync: %d transactions (%d sales, %d quotations)\n",
		result.Transactions, result.Sales.Transactions, result.Estimates.Transactions)
	fmt.Fprintf(&sb, "• %d clients, %d products, %d employees\n",
		result.Clients, result.Products, result.Employees)
	if splits := result.Sales.Splits + result.Estimates.Splits; splits > 0 {
		fmt.Fprintf(&sb, "• %d id collisions split\n", splits)
	}
	if unlinked := result.Transactions - result.Linked; unlinked > 0 {
		fmt.Fprintf(&sb, "• %d transactions without a known client\n", unlinked)
	}

	if result.Degraded() {
		fmt.Fprintf(&sb, "⚠️ Failed sheets: %s\n", strings.Join(failedSheets(result), ", "))
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

func failedSheets(result syncer.Result) []string {
	sheets := make([]string, 0, len(result.Failures))
	for sheet := range result.Failures {
		sheets = append(sheets, sheet)
	}
	sort.Strings(sheets)
	return sheets
}

func FormatRecordMessage(tx model.Transaction) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📋 New %s for %s\n", tx.Type.Label(), tx.ClientName)
	fmt.Fprintf(&sb, "• %s, %d items\n", tx.Date, len(tx.Items))
	fmt.Fprintf(&sb, "• Total %s", tx.TotalAmount.StringFixed(0))
	return sb.String()
}

func (c *Client) isCircuitOpen() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.circuitOpen {
		return false
	}

	if time.Since(c.lastFailure) > circuitCooldown {
		c.circuitOpen = false
		c.failures = 0
		log.Info().Msg("Circuit breaker moving to half-open state")
	}
	return c.circuitOpen
}

func (c *Client) recordSuccess() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.totalSent++
	c.failures = 0
	if c.circuitOpen {
		c.circuitOpen = false
		log.Info().Msg("Circuit breaker closed after successful notification")
	}
}

func (c *Client) recordFailure() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.totalFailed++
	c.failures++
	c.lastFailure = time.Now()

	if c.failures >= circuitThreshold && !c.circuitOpen {
		c.circuitOpen = true
		log.Warn().
			Int("failures", c.failures).
			Msg("Circuit breaker opened due to consecutive failures")
	}
}

func (c *Client) incrementRetries() {
	c.mutex.Lock()
	c.totalRetries++
	c.mutex.Unlock()
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := float64(c.policy.BaseDelay) * math.Pow(2, float64(attempt-1))

	// ±25% jitter
	backoff *= 1 + rand.Float64()*0.5 - 0.25

	if maxBackoff := float64(c.policy.MaxDelay); backoff > maxBackoff {
		backoff = maxBackoff
	}
	return time.Duration(backoff)
}

func categorizeHTTPError(statusCode int) string {
	switch {
	case statusCode == 401 || statusCode == 403:
		return "auth"
	case statusCode == 429:
		return "rate_limit"
	case statusCode >= 400 && statusCode < 500:
		return "client"
	case statusCode >= 500:
		return "server"
	default:
		return "unknown"
	}
}

// GetMetrics returns current notification metrics
func (c *Client) GetMetrics() (sent, failed, retries int64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.totalSent, c.totalFailed, c.totalRetries
}
