package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func fastConfig(maxRetries int) Config {
	return Config{
		Name:       "test op",
		MaxRetries: maxRetries,
		BaseDelay:  5 * time.Millisecond,
		MaxDelay:   20 * time.Millisecond,
		Timeout:    time.Second,
	}
}

func TestWithRetry(t *testing.T) {
	errFlaky := errors.New("flaky")

	tests := []struct {
		name        string
		maxRetries  int
		failures    int
		expectErr   bool
		expectCalls int
	}{
		{"first attempt", 3, 0, false, 1},
		{"after retries", 3, 2, false, 3},
		{"exhausted", 2, 10, true, 3},
		{"no retries", 0, 1, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			result, err := WithRetry(context.Background(), fastConfig(tt.maxRetries), func(ctx context.Context) (string, error) {
				calls++
				if calls <= tt.failures {
					return "", errFlaky
				}
				return "rows", nil
			})

			if tt.expectErr {
				if !errors.Is(err, errFlaky) {
					t.Errorf("Expected wrapped flaky error, got %v", err)
				}
				if result != "" {
					t.Errorf("Expected empty result, got %s", result)
				}
			} else {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				if result != "rows" {
					t.Errorf("Expected 'rows', got %s", result)
				}
			}
			if calls != tt.expectCalls {
				t.Errorf("Expected %d calls, got %d", tt.expectCalls, calls)
			}
		})
	}
}

func TestWithRetryErrorNamesOperation(t *testing.T) {
	_, err := WithRetry(context.Background(), fastConfig(1), func(ctx context.Context) (int, error) {
		return 0, errors.New("boom")
	})
	if err == nil || !strings.Contains(err.Error(), "test op failed after 2 attempts") {
		t.Errorf("Expected operation name in error, got %v", err)
	}
}

func TestWithRetryPermanent(t *testing.T) {
	errBadRequest := errors.New("bad request")
	calls := 0
	_, err := WithRetry(context.Background(), fastConfig(5), func(ctx context.Context) (int, error) {
		calls++
		return 0, Permanent(errBadRequest)
	})

	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
	if !errors.Is(err, errBadRequest) || !IsPermanent(err) {
		t.Errorf("Expected permanent bad request, got %v", err)
	}
	if Permanent(nil) != nil {
		t.Error("Expected Permanent(nil) to be nil")
	}
}

func TestDo(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(2), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("once")
		}
		return nil
	})
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
}

func TestWithRetryContextCancellation(t *testing.T) {
	config := fastConfig(5)
	config.BaseDelay = 50 * time.Millisecond
	config.MaxDelay = 200 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := WithRetry(ctx, config, func(ctx context.Context) (string, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return "", errors.New("failure")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if calls > 3 {
		t.Errorf("Expected at most 3 calls due to cancellation, got %d", calls)
	}
}

func TestWithRetryOperationTimeout(t *testing.T) {
	config := fastConfig(0)
	config.Timeout = 20 * time.Millisecond

	_, err := WithRetry(context.Background(), config, func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestCalculateBackoffDelay(t *testing.T) {
	baseDelay := 10 * time.Millisecond
	maxDelay := 100 * time.Millisecond

	tests := []struct {
		attempt     int
		minDelay    time.Duration
		maxExpected time.Duration
	}{
		{0, 5 * time.Millisecond, 15 * time.Millisecond},
		{1, 10 * time.Millisecond, 30 * time.Millisecond},
		{2, 20 * time.Millisecond, 60 * time.Millisecond},
		{3, 40 * time.Millisecond, 100 * time.Millisecond},
		{5, 50 * time.Millisecond, 100 * time.Millisecond},
		{100, 50 * time.Millisecond, 100 * time.Millisecond},
	}

	for _, test := range tests {
		for i := 0; i < 10; i++ {
			result := calculateBackoffDelay(test.attempt, baseDelay, maxDelay)
			if result < test.minDelay || result > test.maxExpected {
				t.Errorf("calculateBackoffDelay(%d) = %v, expected between %v and %v",
					test.attempt, result, test.minDelay, test.maxExpected)
			}
		}
	}
}
