// Package http serves the ledger over a JSON API.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"jeongsim_ledger/internal/excel"
	"jeongsim_ledger/internal/model"
	"jeongsim_ledger/internal/report"
	"jeongsim_ledger/internal/store"
	"jeongsim_ledger/internal/syncer"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Store is the part of the persistence gateway the API serves.
type Store interface {
	GetTransactions(ctx context.Context) ([]model.Transaction, error)
	GetTransaction(ctx context.Context, id string) (model.Transaction, error)
	SaveTransaction(ctx context.Context, tx model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	GetClients(ctx context.Context) ([]model.Client, error)
	SaveClient(ctx context.Context, client model.Client) error
	DeleteClient(ctx context.Context, id string) error
	GetProducts(ctx context.Context) ([]model.ProductItem, error)
	GetEmployees(ctx context.Context) ([]model.Employee, error)
	GetCompanyInfo(ctx context.Context) (model.CompanyInfo, error)
	SaveCompanyInfo(ctx context.Context, info model.CompanyInfo) error
}

// Ledger is the sync side of the API.
type Ledger interface {
	Pull(ctx context.Context) (syncer.Result, error)
	Record(ctx context.Context, d syncer.Draft) (model.Transaction, error)
	TestConnection(ctx context.Context) error
}

type Handler struct {
	store  Store
	ledger Ledger
}

func NewHandler(store Store, ledger Ledger) *Handler {
	return &Handler{store: store, ledger: ledger}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.filtered(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": txs, "count": len(txs)})
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.store.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *Handler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	var draft syncer.Draft
	if err := decodeJSON(r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.ledger.Record(r.Context(), draft)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, tx)
	case errors.Is(err, syncer.ErrClientRequired), errors.Is(err, syncer.ErrNoItems):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, syncer.ErrRemoteSave):
		writeJSON(w, http.StatusAccepted, map[string]any{"transaction": tx, "warning": err.Error()})
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// PutTransaction replaces a stored transaction. Totals are recomputed from
// the items.
func (h *Handler) PutTransaction(w http.ResponseWriter, r *http.Request) {
	var tx model.Transaction
	if err := decodeJSON(r, &tx); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	if tx.ID != "" && tx.ID != id {
		writeError(w, http.StatusBadRequest, "id does not match path")
		return
	}
	tx.ID = id
	if !tx.Type.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid transaction type")
		return
	}
	if tx.Items == nil {
		tx.Items = []model.TransactionItem{}
	}
	tx.RecomputeTotals()

	if err := h.store.SaveTransaction(r.Context(), tx); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.store.GetClients(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": clients, "count": len(clients)})
}

func (h *Handler) PutClient(w http.ResponseWriter, r *http.Request) {
	var client model.Client
	if err := decodeJSON(r, &client); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	client.ID = chi.URLParam(r, "id")
	if strings.TrimSpace(client.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := h.store.SaveClient(r.Context(), client); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteClient(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.GetProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": products, "count": len(products)})
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.store.GetEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": employees, "count": len(employees)})
}

func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	info, err := h.store.GetCompanyInfo(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) PutCompany(w http.ResponseWriter, r *http.Request) {
	var info model.CompanyInfo
	if err := decodeJSON(r, &info); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.SaveCompanyInfo(r.Context(), info); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	months, err := parseOptionalInt(r.URL.Query().Get("months"), 6)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	txs, err := h.store.GetTransactions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report.ComputeStats(txs, months))
}

// SalesReport returns one line per item of the filtered transactions, as
// JSON or, with format=xlsx, as a workbook.
func (h *Handler) SalesReport(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.filtered(w, r)
	if !ok {
		return
	}
	lines := report.FlattenReport(txs)

	if wantsXLSX(r.URL.Query()) {
		writeXLSX(w, "sales-report.xlsx", func(w io.Writer) error {
			return excel.WriteSalesReport(w, lines)
		})
		return
	}

	supply, tax, amount := report.Totals(txs)
	writeJSON(w, http.StatusOK, map[string]any{
		"items":            lines,
		"count":            len(lines),
		"totalSupplyPrice": supply,
		"totalTax":         tax,
		"totalAmount":      amount,
	})
}

// DeliverySummary merges the items of the filtered transactions by name.
func (h *Handler) DeliverySummary(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.filtered(w, r)
	if !ok {
		return
	}
	items := report.AggregateItems(txs)

	if wantsXLSX(r.URL.Query()) {
		writeXLSX(w, "delivery-summary.xlsx", func(w io.Writer) error {
			return excel.WriteDeliverySummary(w, items)
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledger.Pull(r.Context())
	if err != nil {
		if errors.Is(err, syncer.ErrNoSource) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) TestRemote(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.TestConnection(r.Context()); err != nil {
		if errors.Is(err, syncer.ErrNoSource) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
}

func (h *Handler) filtered(w http.ResponseWriter, r *http.Request) ([]model.Transaction, bool) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	txs, err := h.store.GetTransactions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return filter.Apply(txs), true
}

func parseFilter(query url.Values) (report.Filter, error) {
	filter := report.Filter{
		StartDate: strings.TrimSpace(query.Get("start")),
		EndDate:   strings.TrimSpace(query.Get("end")),
		Floor:     strings.TrimSpace(query.Get("floor")),
		Client:    strings.TrimSpace(query.Get("client")),
		Product:   strings.TrimSpace(query.Get("product")),
	}
	if raw := strings.TrimSpace(query.Get("type")); raw != "" {
		filter.Type = model.TransactionType(strings.ToUpper(raw))
		if !filter.Type.IsValid() {
			return report.Filter{}, fmt.Errorf("invalid type: %s", raw)
		}
	}
	return filter, nil
}

func wantsXLSX(query url.Values) bool {
	return strings.EqualFold(strings.TrimSpace(query.Get("format")), "xlsx")
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func parseOptionalInt(raw string, defaultValue int) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %s", raw)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("value cannot be negative")
	}
	return parsed, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Debug().Err(err).Msg("Failed to write response")
	}
}

// writeXLSX renders the whole workbook before writing headers so a render
// failure still produces an error response.
func writeXLSX(w http.ResponseWriter, filename string, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Debug().Err(err).Msg("Failed to write workbook")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
