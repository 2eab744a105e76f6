package store

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"jeongsim_ledger/internal/model"

	"github.com/rs/zerolog/log"
)

const (
	keyClients      = "jeongsim_clients"
	keyTransactions = "jeongsim_transactions"
	keyCompanyInfo  = "jeongsim_company_info"
	keyProducts     = "jeongsim_products"
	keyEmployees    = "jeongsim_employees"
)

// Gateway is the local persistence gateway. Collections that were never
// saved read as empty.
type Gateway struct {
	backend  Backend
	defaults model.CompanyInfo
	mutex    sync.Mutex
}

// NewGateway wraps backend. defaults is returned by GetCompanyInfo until an
// office record is saved, and its script URL fills in a stored record that
// has none.
func NewGateway(backend Backend, defaults model.CompanyInfo) *Gateway {
	return &Gateway{backend: backend, defaults: defaults}
}

func (g *Gateway) Close() error {
	return g.backend.Close()
}

func load[T any](ctx context.Context, b Backend, key string) ([]T, error) {
	body, err := b.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func save[T any](ctx context.Context, b Backend, key string, values []T) error {
	if values == nil {
		values = []T{}
	}
	body, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := b.Save(ctx, key, body); err != nil {
		return err
	}
	log.Debug().Str("key", key).Int("records", len(values)).Msg("Saved collection")
	return nil
}

// upsert replaces the element with the same id or appends v.
func upsert[T any](values []T, v T, id func(T) string) []T {
	idx := slices.IndexFunc(values, func(existing T) bool { return id(existing) == id(v) })
	if idx >= 0 {
		values[idx] = v
		return values
	}
	return append(values, v)
}

func remove[T any](values []T, target string, id func(T) string) []T {
	return slices.DeleteFunc(values, func(v T) bool { return id(v) == target })
}

func clientID(c model.Client) string           { return c.ID }
func transactionID(t model.Transaction) string { return t.ID }

func (g *Gateway) GetClients(ctx context.Context) ([]model.Client, error) {
	return load[model.Client](ctx, g.backend, keyClients)
}

func (g *Gateway) SaveClients(ctx context.Context, clients []model.Client) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return save(ctx, g.backend, keyClients, clients)
}

func (g *Gateway) SaveClient(ctx context.Context, client model.Client) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	clients, err := load[model.Client](ctx, g.backend, keyClients)
	if err != nil {
		return err
	}
	return save(ctx, g.backend, keyClients, upsert(clients, client, clientID))
}

func (g *Gateway) DeleteClient(ctx context.Context, id string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	clients, err := load[model.Client](ctx, g.backend, keyClients)
	if err != nil {
		return err
	}
	return save(ctx, g.backend, keyClients, remove(clients, id, clientID))
}

// GetTransactions returns all transactions, newest date first.
func (g *Gateway) GetTransactions(ctx context.Context) ([]model.Transaction, error) {
	txs, err := load[model.Transaction](ctx, g.backend, keyTransactions)
	if err != nil {
		return nil, err
	}
	sortByDateDesc(txs)
	return txs, nil
}

func (g *Gateway) GetTransaction(ctx context.Context, id string) (model.Transaction, error) {
	txs, err := load[model.Transaction](ctx, g.backend, keyTransactions)
	if err != nil {
		return model.Transaction{}, err
	}
	idx := slices.IndexFunc(txs, func(t model.Transaction) bool { return t.ID == id })
	if idx < 0 {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return txs[idx], nil
}

// SaveTransactions replaces the whole transaction collection.
func (g *Gateway) SaveTransactions(ctx context.Context, txs []model.Transaction) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	sorted := slices.Clone(txs)
	sortByDateDesc(sorted)
	return save(ctx, g.backend, keyTransactions, sorted)
}

func (g *Gateway) SaveTransaction(ctx context.Context, tx model.Transaction) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	txs, err := load[model.Transaction](ctx, g.backend, keyTransactions)
	if err != nil {
		return err
	}
	txs = upsert(txs, tx, transactionID)
	sortByDateDesc(txs)
	return save(ctx, g.backend, keyTransactions, txs)
}

func (g *Gateway) DeleteTransaction(ctx context.Context, id string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	txs, err := load[model.Transaction](ctx, g.backend, keyTransactions)
	if err != nil {
		return err
	}
	return save(ctx, g.backend, keyTransactions, remove(txs, id, transactionID))
}

func (g *Gateway) GetProducts(ctx context.Context) ([]model.ProductItem, error) {
	return load[model.ProductItem](ctx, g.backend, keyProducts)
}

func (g *Gateway) SaveProducts(ctx context.Context, products []model.ProductItem) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return save(ctx, g.backend, keyProducts, products)
}

func (g *Gateway) GetEmployees(ctx context.Context) ([]model.Employee, error) {
	return load[model.Employee](ctx, g.backend, keyEmployees)
}

func (g *Gateway) SaveEmployees(ctx context.Context, employees []model.Employee) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return save(ctx, g.backend, keyEmployees, employees)
}

func (g *Gateway) GetCompanyInfo(ctx context.Context) (model.CompanyInfo, error) {
	body, err := g.backend.Load(ctx, keyCompanyInfo)
	if errors.Is(err, ErrNotFound) {
		return g.defaults, nil
	}
	if err != nil {
		return model.CompanyInfo{}, err
	}

	var info model.CompanyInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return model.CompanyInfo{}, fmt.Errorf("decode %s: %w", keyCompanyInfo, err)
	}
	if info.GoogleScriptURL == "" {
		info.GoogleScriptURL = g.defaults.GoogleScriptURL
	}
	return info, nil
}

func (g *Gateway) SaveCompanyInfo(ctx context.Context, info model.CompanyInfo) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	body, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encode %s: %w", keyCompanyInfo, err)
	}
	return g.backend.Save(ctx, keyCompanyInfo, body)
}

func sortByDateDesc(txs []model.Transaction) {
	slices.SortStableFunc(txs, func(a, b model.Transaction) int {
		return cmp.Compare(b.Date, a.Date)
	})
}
