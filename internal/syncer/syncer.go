// Package syncer pulls the ledger spreadsheet into the local store and
// records new transactions in both places.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"jeongsim_ledger/internal/config"
	"jeongsim_ledger/internal/model"
	"jeongsim_ledger/internal/reconcile"
	"jeongsim_ledger/internal/resolution"
	"jeongsim_ledger/internal/retry"
	"jeongsim_ledger/internal/rows"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	SalesSheet    string
	EstimateSheet string
	Resilience    config.ResilienceConfig
}

type Syncer struct {
	resolve   Resolver
	store     Store
	opts      Options
	observers []Observer
	obsMutex  sync.RWMutex
	pullMutex sync.Mutex
	now       func() time.Time
	newID     func() string
}

func New(resolve Resolver, store Store, opts Options) *Syncer {
	return &Syncer{
		resolve: resolve,
		store:   store,
		opts:    opts,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Register adds an observer notified after every successful pull.
func (s *Syncer) Register(o Observer) {
	s.obsMutex.Lock()
	s.observers = append(s.observers, o)
	s.obsMutex.Unlock()
}

func (s *Syncer) notify(ctx context.Context, result Result) {
	s.obsMutex.RLock()
	observers := append([]Observer(nil), s.observers...)
	s.obsMutex.RUnlock()

	for _, o := range observers {
		o.SyncCompleted(ctx, result)
	}
}

type sheetKind int

const (
	sheetClients sheetKind = iota
	sheetProducts
	sheetEmployees
	sheetOffice
	sheetSales
	sheetEstimates
	sheetCount
)

// Pull fetches every sheet in parallel and replaces the local copy. A sheet
// that cannot be fetched is treated as empty and listed in Result.Failures;
// Pull fails only when the context ends, every fetch fails, or the store
// rejects a write.
func (s *Syncer) Pull(ctx context.Context) (Result, error) {
	s.pullMutex.Lock()
	defer s.pullMutex.Unlock()

	result := Result{StartedAt: s.now()}

	info, err := s.store.GetCompanyInfo(ctx)
	if err != nil {
		return result, fmt.Errorf("load company info: %w", err)
	}
	remote, err := s.resolve(ctx, info)
	if err != nil {
		return result, err
	}

	names := [sheetCount]string{
		sheetClients:   info.CompanySheet(),
		sheetProducts:  info.ProductSheet(),
		sheetEmployees: info.EmployeeSheet(),
		sheetOffice:    info.OfficeSheet(),
		sheetSales:     s.opts.SalesSheet,
		sheetEstimates: s.opts.EstimateSheet,
	}

	log.Debug().Strs("sheets", names[:]).Msg("Starting pull")

	var (
		data      [sheetCount][]rows.RawRow
		fetchErrs [sheetCount]error
		g         errgroup.Group
	)
	for kind := range sheetCount {
		g.Go(func() error {
			fetched, err := retry.WithRetry(ctx, s.opts.Resilience.SheetRead, func(ctx context.Context) ([]rows.RawRow, error) {
				return remote.FetchRows(ctx, names[kind])
			})
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				fetchErrs[kind] = err
				return nil
			}
			data[kind] = fetched
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	failed := 0
	for kind, err := range fetchErrs {
		if err == nil {
			continue
		}
		failed++
		if result.Failures == nil {
			result.Failures = make(map[string]string)
		}
		result.Failures[names[kind]] = err.Error()
		log.Warn().Err(err).Str("sheet", names[kind]).Msg("Sheet fetch failed, treating as empty")
	}
	if failed == int(sheetCount) {
		return result, fmt.Errorf("all sheet fetches failed: %w", errors.Join(fetchErrs[:]...))
	}

	if err := s.apply(ctx, info, data, &result); err != nil {
		return result, err
	}

	result.FinishedAt = s.now()
	log.Info().
		Int("clients", result.Clients).
		Int("products", result.Products).
		Int("employees", result.Employees).
		Int("transactions", result.Transactions).
		Int("linked", result.Linked).
		Bool("changed", result.Changed).
		Int("failures", len(result.Failures)).
		Dur("duration", result.Duration()).
		Msg("Pull complete")

	s.notify(ctx, result)
	return result, nil
}

func (s *Syncer) apply(ctx context.Context, info model.CompanyInfo, data [sheetCount][]rows.RawRow, result *Result) error {
	clients := rows.ParseClients(data[sheetClients])
	products := rows.ParseProducts(data[sheetProducts])
	employees := rows.ParseEmployees(data[sheetEmployees])

	if len(clients) > 0 {
		if err := s.store.SaveClients(ctx, clients); err != nil {
			return fmt.Errorf("save clients: %w", err)
		}
	}
	if len(products) > 0 {
		if err := s.store.SaveProducts(ctx, products); err != nil {
			return fmt.Errorf("save products: %w", err)
		}
	}
	if len(employees) > 0 {
		if err := s.store.SaveEmployees(ctx, employees); err != nil {
			return fmt.Errorf("save employees: %w", err)
		}
	}
	result.Clients = len(clients)
	result.Products = len(products)
	result.Employees = len(employees)

	if office, ok := rows.ParseOffice(data[sheetOffice]); ok {
		if err := s.store.SaveCompanyInfo(ctx, info.MergeOffice(office)); err != nil {
			return fmt.Errorf("save company info: %w", err)
		}
		result.OfficeUpdated = true
	}

	sales, salesStats := reconcile.ReconcileWithStats(data[sheetSales])
	estimates, estimateStats := reconcile.ReconcileWithStats(data[sheetEstimates])
	result.Sales = salesStats
	result.Estimates = estimateStats

	txs := append(sales, estimates...)
	if len(txs) == 0 {
		return nil
	}

	known := clients
	if len(known) == 0 {
		stored, err := s.store.GetClients(ctx)
		if err != nil {
			return fmt.Errorf("load clients: %w", err)
		}
		known = stored
	}

	linked := resolution.LinkClients(txs, known)
	for _, tx := range linked {
		if tx.ClientID != "" {
			result.Linked++
		}
	}
	stored, err := s.store.GetTransactions(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	result.Transactions = len(linked)
	result.Changed = !sameTransactions(stored, linked)
	if err := s.store.SaveTransactions(ctx, linked); err != nil {
		return fmt.Errorf("save transactions: %w", err)
	}
	return nil
}

// TestConnection probes the configured remote.
func (s *Syncer) TestConnection(ctx context.Context) error {
	info, err := s.store.GetCompanyInfo(ctx)
	if err != nil {
		return fmt.Errorf("load company info: %w", err)
	}
	remote, err := s.resolve(ctx, info)
	if err != nil {
		return err
	}
	return retry.Do(ctx, s.opts.Resilience.ScriptRead, remote.TestConnection)
}
