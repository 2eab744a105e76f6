package app

import (
	"context"
	"fmt"
	"sync"

	"jeongsim_ledger/internal/config"
	"jeongsim_ledger/internal/excel"
	"jeongsim_ledger/internal/model"
	"jeongsim_ledger/internal/notifications"
	"jeongsim_ledger/internal/script"
	"jeongsim_ledger/internal/sheets"
	"jeongsim_ledger/internal/store"
	"jeongsim_ledger/internal/syncer"

	"github.com/rs/zerolog/log"
)

// NewStore opens the configured persistence backend.
func NewStore(ctx context.Context, cfg Config) (*store.Gateway, error) {
	var (
		backend store.Backend
		err     error
	)
	switch cfg.StoreBackend {
	case BackendFile, "":
		backend, err = store.NewFileBackend(cfg.StoreDir)
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
		backend, err = store.NewPostgresBackend(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	if err != nil {
		return nil, err
	}

	log.Debug().Str("backend", cfg.StoreBackend).Msg("Store opened")
	return store.NewGateway(backend, model.CompanyInfo{GoogleScriptURL: cfg.ScriptURL}), nil
}

// NewResolver picks the remote for each sync. For the script source the URL
// saved in the company settings wins over SCRIPT_URL.
func NewResolver(cfg Config) (syncer.Resolver, error) {
	switch cfg.Source {
	case SourceScript, "":
		return func(_ context.Context, info model.CompanyInfo) (syncer.Remote, error) {
			url := info.GoogleScriptURL
			if url == "" {
				url = cfg.ScriptURL
			}
			if url == "" {
				return nil, syncer.ErrNoSource
			}
			return script.NewClient(url), nil
		}, nil

	case SourceSheets:
		var (
			once   sync.Once
			client *sheets.Client
			err    error
		)
		return func(ctx context.Context, _ model.CompanyInfo) (syncer.Remote, error) {
			if cfg.SpreadsheetID == "" {
				return nil, syncer.ErrNoSource
			}
			once.Do(func() {
				client, err = sheets.NewClient(context.WithoutCancel(ctx), cfg.CredentialsFile)
			})
			if err != nil {
				return nil, fmt.Errorf("create sheets client: %w", err)
			}
			return sheets.NewSource(client, cfg.SpreadsheetID, cfg.SalesSheet, cfg.EstimateSheet), nil
		}, nil

	case SourceXLSX:
		if cfg.XLSXFile == "" {
			return syncer.Static(nil), nil
		}
		return syncer.Static(excel.NewSource(cfg.XLSXFile, cfg.SalesSheet, cfg.EstimateSheet)), nil
	}
	return nil, fmt.Errorf("unknown LEDGER_SOURCE %q", cfg.Source)
}

func NewNotifier(cfg Config) *notifications.Client {
	log.Debug().
		Bool("enabled", cfg.NtfyEnabled).
		Str("base_url", cfg.NtfyURL).
		Str("topic", cfg.NtfyTopic).
		Msg("Initializing notification client")

	client := notifications.NewClient(cfg.NtfyURL, cfg.NtfyTopic, cfg.NtfyEnabled, cfg.NtfyPriority, config.DefaultResilienceConfig.Notification)

	if cfg.NtfyEnabled {
		log.Info().Str("topic", cfg.NtfyTopic).Msg("Notifications enabled")
	} else {
		log.Debug().Msg("Notifications disabled")
	}
	return client
}

// Ledger bundles everything a command needs.
type Ledger struct {
	Config Config
	Store  *store.Gateway
	Syncer *syncer.Syncer
}

// NewLedger wires the store, the remote resolver, the syncer and the
// notifier together.
func NewLedger(ctx context.Context, cfg Config) (*Ledger, error) {
	resolve, err := NewResolver(cfg)
	if err != nil {
		return nil, err
	}
	gw, err := NewStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := syncer.New(resolve, gw, syncer.Options{
		SalesSheet:    cfg.SalesSheet,
		EstimateSheet: cfg.EstimateSheet,
		Resilience:    config.DefaultResilienceConfig,
	})
	s.Register(NewNotifier(cfg))

	return &Ledger{Config: cfg, Store: gw, Syncer: s}, nil
}

func (l *Ledger) Close() error {
	return l.Store.Close()
}
