package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"jeongsim_ledger/internal/config"
	"jeongsim_ledger/internal/model"
	"jeongsim_ledger/internal/store"
	"jeongsim_ledger/internal/syncer"
)

func TestParseItem(t *testing.T) {
	tests := []struct {
		raw         string
		name        string
		qty         string
		price       string
		expectError bool
	}{
		{raw: "Widget:2:1000", name: "Widget", qty: "2", price: "1000"},
		{raw: " Bolt M8 : 1.5 : 1,200 ", name: "Bolt M8", qty: "1.5", price: "1200"},
		{raw: "Ratio 1:2:3:400", name: "Ratio 1:2", qty: "3", price: "400"},
		{raw: "Widget", expectError: true},
		{raw: "Widget:2", expectError: true},
		{raw: "Widget:two:1000", expectError: true},
		{raw: "Widget:2:free", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			item, err := parseItem(tt.raw)
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if item.Name != tt.name || item.Quantity.String() != tt.qty || item.UnitPrice.String() != tt.price {
				t.Errorf("Unexpected item: %q %s %s", item.Name, item.Quantity, item.UnitPrice)
			}
		})
	}
}

func TestFilterFlags(t *testing.T) {
	filter, err := filterFlags{txType: "quotation", start: "2024-01-01", client: "acme"}.filter()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if filter.Type != model.TransactionTypeQuotation || filter.StartDate != "2024-01-01" || filter.Client != "acme" {
		t.Errorf("Unexpected filter: %+v", filter)
	}

	if _, err := (filterFlags{txType: "invoice"}).filter(); err == nil {
		t.Error("Expected error for unknown type")
	}
}

func TestRunSyncLoopStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	backend, err := store.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}
	s := syncer.New(syncer.Static(nil), store.NewGateway(backend, model.CompanyInfo{}), syncer.Options{
		Resilience: config.DefaultResilienceConfig.Fast(),
	})
	done := make(chan error, 1)
	go func() { done <- runSyncLoop(ctx, s, 10*time.Millisecond) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean stop, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Sync loop did not stop")
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	if !strings.HasPrefix(out.String(), "ledger dev") {
		t.Errorf("Unexpected version output: %s", out.String())
	}
}
