// Package script talks to the Apps Script web app bound to the ledger
// spreadsheet.
package script

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"jeongsim_ledger/internal/model"
	"jeongsim_ledger/internal/retry"
	"jeongsim_ledger/internal/rows"

	"github.com/rs/zerolog/log"
)

// ErrConnection is returned by TestConnection when the script answers but
// does not report success.
var ErrConnection = errors.New("script did not report success")

type Client struct {
	scriptURL    string
	client       *http.Client
	requestCount int64
	requestMutex sync.Mutex
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func NewClient(scriptURL string) *Client {
	return &Client{
		scriptURL: scriptURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) URL() string {
	return c.scriptURL
}

func (c *Client) incrementRequest() {
	c.requestMutex.Lock()
	c.requestCount++
	c.requestMutex.Unlock()
}

// RequestCount returns the number of requests sent since the last reset.
func (c *Client) RequestCount() int64 {
	c.requestMutex.Lock()
	defer c.requestMutex.Unlock()
	return c.requestCount
}

func (c *Client) ResetRequestCount() {
	c.requestMutex.Lock()
	c.requestCount = 0
	c.requestMutex.Unlock()
}

func (c *Client) endpoint(params url.Values) string {
	if len(params) == 0 {
		return c.scriptURL
	}
	return c.scriptURL + "?" + params.Encode()
}

func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(params), nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	c.incrementRequest()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("script request failed with status %d: %s", resp.StatusCode, preview(body))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}
	return body, nil
}

// FetchRows returns the data rows of sheet, header excluded. A response that
// is not a JSON array is treated as an empty sheet.
func (c *Client) FetchRows(ctx context.Context, sheet string) ([]rows.RawRow, error) {
	log.Debug().Str("sheet", sheet).Msg("Fetching sheet rows from script")

	body, err := c.get(ctx, url.Values{"sheetName": {sheet}})
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		log.Warn().
			Str("sheet", sheet).
			Str("response_preview", preview(trimmed)).
			Msg("Script returned a non-array payload, treating sheet as empty")
		return []rows.RawRow{}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var data []rows.RawRow
	if err := decoder.Decode(&data); err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to decode rows of sheet %s: %w", sheet, err))
	}

	log.Debug().
		Str("sheet", sheet).
		Int("rows", len(data)).
		Msg("Fetched sheet rows")

	return data, nil
}

// TestConnection probes the script with action=test.
func (c *Client) TestConnection(ctx context.Context) error {
	body, err := c.get(ctx, url.Values{"action": {"test"}})
	if err != nil {
		return err
	}

	var status statusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return fmt.Errorf("failed to decode test response: %w", err)
	}
	if status.Status != "success" {
		return fmt.Errorf("%w: status %q %s", ErrConnection, status.Status, status.Message)
	}
	return nil
}

// AppendTransaction posts tx to the script, which appends one row per item to
// the sheet matching the transaction type. The body is sent as text/plain,
// the content type the web app accepts without a preflight.
func (c *Client) AppendTransaction(ctx context.Context, tx model.Transaction) error {
	payload, err := json.Marshal(tx)
	if err != nil {
		return retry.Permanent(fmt.Errorf("failed to encode transaction: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.scriptURL, bytes.NewReader(payload))
	if err != nil {
		return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "text/plain")

	c.incrementRequest()

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("script append failed with status %d: %s", resp.StatusCode, preview(body))
	}

	log.Info().
		Str("transaction_id", tx.ID).
		Int("items", len(tx.Items)).
		Msg("Appended transaction through script")

	return nil
}

func preview(body []byte) string {
	return string(body[:min(200, len(body))])
}
