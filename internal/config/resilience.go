package config

import (
	"time"

	"jeongsim_ledger/internal/retry"
)

// ResilienceConfig holds the retry policy of every remote call the ledger
// makes.
type ResilienceConfig struct {
	SyncLoop     retry.Config
	ScriptRead   retry.Config
	SheetRead    retry.Config
	SheetWrite   retry.Config
	Notification retry.Config
}

var DefaultResilienceConfig = ResilienceConfig{
	SyncLoop: retry.Config{
		Name:       "sync",
		MaxRetries: 2,
		BaseDelay:  5 * time.Second,
		MaxDelay:   60 * time.Second,
		Timeout:    2 * time.Minute,
	},
	ScriptRead: retry.Config{
		Name:       "script read",
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   15 * time.Second,
		Timeout:    30 * time.Second,
	},
	SheetRead: retry.Config{
		Name:       "sheet read",
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
		MaxDelay:   30 * time.Second,
		Timeout:    15 * time.Second,
	},
	// Appends are not idempotent, so writes retry only once.
	SheetWrite: retry.Config{
		Name:       "sheet write",
		MaxRetries: 1,
		BaseDelay:  2 * time.Second,
		MaxDelay:   10 * time.Second,
		Timeout:    30 * time.Second,
	},
	Notification: retry.Config{
		Name:       "notification",
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   10 * time.Second,
		Timeout:    10 * time.Second,
	},
}

// Fast returns a copy with every delay and timeout scaled down, for tests
// against local fakes.
func (r ResilienceConfig) Fast() ResilienceConfig {
	scale := func(c retry.Config) retry.Config {
		c.BaseDelay = time.Millisecond
		c.MaxDelay = 5 * time.Millisecond
		c.Timeout = 2 * time.Second
		return c
	}
	return ResilienceConfig{
		SyncLoop:     scale(r.SyncLoop),
		ScriptRead:   scale(r.ScriptRead),
		SheetRead:    scale(r.SheetRead),
		SheetWrite:   scale(r.SheetWrite),
		Notification: scale(r.Notification),
	}
}
