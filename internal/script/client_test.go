package script

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"jeongsim_ledger/internal/model"
	"jeongsim_ledger/internal/retry"
	"jeongsim_ledger/internal/rows"

	"github.com/shopspring/decimal"
)

func TestFetchRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("sheetName"); got != "data" {
			t.Errorf("Expected sheetName=data, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[["T1","2023-10-15T15:00:00.000Z","거래명세서","",null,"A","","EA",2,"1,000",2000,200,2200,"",""]]`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	data, err := client.FetchRows(context.Background(), "data")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(data) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(data))
	}
	if _, ok := data[0][8].(json.Number); !ok {
		t.Errorf("Expected numbers decoded as json.Number, got %T", data[0][8])
	}
	if data[0][4] != nil {
		t.Errorf("Expected null cell to decode as nil, got %v", data[0][4])
	}
	if got := rows.CellNumber(data[0][9]).String(); got != "1000" {
		t.Errorf("Expected 1000, got %s", got)
	}
	if client.RequestCount() != 1 {
		t.Errorf("Expected 1 request, got %d", client.RequestCount())
	}
}

func TestFetchRowsNonArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"error","message":"sheet not found"}`)
	}))
	defer server.Close()

	data, err := NewClient(server.URL).FetchRows(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("Expected empty rows, got %d", len(data))
	}
}

func TestFetchRowsStatusErrors(t *testing.T) {
	tests := []struct {
		status    int
		permanent bool
	}{
		{http.StatusForbidden, true},
		{http.StatusNotFound, true},
		{http.StatusTooManyRequests, false},
		{http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		_, err := NewClient(server.URL).FetchRows(context.Background(), "data")
		if err == nil {
			t.Errorf("status %d: expected error", tt.status)
		} else if retry.IsPermanent(err) != tt.permanent {
			t.Errorf("status %d: expected permanent=%v, got %v", tt.status, tt.permanent, err)
		}
		server.Close()
	}
}

func TestTestConnection(t *testing.T) {
	status := "success"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") != "test" {
			t.Errorf("Expected action=test, got %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.TestConnection(context.Background()); err != nil {
		t.Errorf("Expected success, got %v", err)
	}

	status = "error"
	if err := client.TestConnection(context.Background()); !errors.Is(err, ErrConnection) {
		t.Errorf("Expected ErrConnection, got %v", err)
	}
}

func TestAppendTransaction(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "text/plain" {
			t.Errorf("Expected text/plain, got %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Failed to decode body: %v", err)
		}
		io.WriteString(w, `{"status":"success"}`)
	}))
	defer server.Close()

	tx := model.Transaction{
		ID:          "T1",
		Type:        model.TransactionTypeStatement,
		ClientName:  "Acme",
		Items:       []model.TransactionItem{},
		TotalAmount: decimal.NewFromInt(1100),
	}
	if err := NewClient(server.URL).AppendTransaction(context.Background(), tx); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if received["id"] != "T1" || received["type"] != "STATEMENT" {
		t.Errorf("Unexpected payload: %v", received)
	}
	if received["totalAmount"] != float64(1100) {
		t.Errorf("Expected numeric totalAmount, got %v", received["totalAmount"])
	}
}
