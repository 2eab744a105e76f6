package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"jeongsim_ledger/internal/app"
	"jeongsim_ledger/internal/config"
	"jeongsim_ledger/internal/excel"
	httpapi "jeongsim_ledger/internal/http"
	"jeongsim_ledger/internal/model"
	"jeongsim_ledger/internal/report"
	"jeongsim_ledger/internal/retry"
	"jeongsim_ledger/internal/syncer"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

type filterFlags struct {
	txType  string
	start   string
	end     string
	floor   string
	client  string
	product string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.txType, "type", "", "transaction type: STATEMENT or QUOTATION")
	cmd.Flags().StringVar(&f.start, "start", "", "first date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "last date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.floor, "floor", "", "floor (1층 or 2층)")
	cmd.Flags().StringVar(&f.client, "client", "", "client name substring")
	cmd.Flags().StringVar(&f.product, "product", "", "item name substring")
}

func (f filterFlags) filter() (report.Filter, error) {
	filter := report.Filter{
		StartDate: f.start,
		EndDate:   f.end,
		Floor:     f.floor,
		Client:    f.client,
		Product:   f.product,
	}
	if f.txType != "" {
		filter.Type = model.TransactionType(strings.ToUpper(f.txType))
		if !filter.Type.IsValid() {
			return report.Filter{}, fmt.Errorf("invalid --type %q", f.txType)
		}
	}
	return filter, nil
}

var (
	watch         bool
	interval      time.Duration
	statsFilter   filterFlags
	statsMonths   int
	exportFilter  filterFlags
	exportOut     string
	recordClient  string
	recordItems   []string
	recordType    string
	recordDate    string
	recordFloor   string
	recordMemo    string
	recordContact string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull the spreadsheet into the local store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ledger, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer ledger.Close()

		if !watch {
			result, err := ledger.Syncer.Pull(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		}
		return runSyncLoop(ctx, ledger.Syncer, syncInterval())
	},
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Check that the remote spreadsheet is reachable",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ledger, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer ledger.Close()

		if err := ledger.Syncer.TestConnection(cmd.Context()); err != nil {
			return fmt.Errorf("connection test failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "connection ok")
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ledger, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer ledger.Close()

		server := &http.Server{
			Addr:              ledger.Config.HTTPAddr,
			Handler:           httpapi.NewRouter(httpapi.NewHandler(ledger.Store, ledger.Syncer)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
		if watch {
			g.Go(func() error {
				return runSyncLoop(ctx, ledger.Syncer, syncInterval())
			})
		}
		return g.Wait()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print dashboard figures for the stored statements",
	RunE: func(cmd *cobra.Command, _ []string) error {
		txs, err := loadFiltered(cmd.Context(), statsFilter)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), report.ComputeStats(txs, statsMonths))
	},
}

var exportCmd = &cobra.Command{
	Use:       "export report|summary",
	Short:     "Write a sales report or delivery summary workbook",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"report", "summary"},
	RunE: func(cmd *cobra.Command, args []string) error {
		txs, err := loadFiltered(cmd.Context(), exportFilter)
		if err != nil {
			return err
		}

		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		defer f.Close()

		switch args[0] {
		case "report":
			err = excel.WriteSalesReport(f, report.FlattenReport(txs))
		case "summary":
			err = excel.WriteDeliverySummary(f, report.AggregateItems(txs))
		}
		if err != nil {
			return err
		}

		log.Info().
			Str("kind", args[0]).
			Str("file", exportOut).
			Int("transactions", len(txs)).
			Msg("Export written")
		return f.Close()
	},
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a transaction locally and append it to the spreadsheet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		items := make([]model.TransactionItem, 0, len(recordItems))
		for _, raw := range recordItems {
			item, err := parseItem(raw)
			if err != nil {
				return err
			}
			items = append(items, item)
		}

		ledger, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer ledger.Close()

		tx, err := ledger.Syncer.Record(cmd.Context(), syncer.Draft{
			Date:          recordDate,
			Type:          model.TransactionType(strings.ToUpper(recordType)),
			ClientName:    recordClient,
			ContactPerson: recordContact,
			Floor:         recordFloor,
			Items:         items,
			Memo:          recordMemo,
		})
		if errors.Is(err, syncer.ErrRemoteSave) {
			log.Warn().Err(err).Msg("Transaction kept locally only")
			return printJSON(cmd.OutOrStdout(), tx)
		}
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), tx)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ledger %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	syncCmd.Flags().BoolVar(&watch, "watch", false, "keep syncing on an interval")
	syncCmd.Flags().DurationVar(&interval, "interval", 0, "sync interval (default SYNC_INTERVAL)")
	viper.BindPFlag("SYNC_INTERVAL", syncCmd.Flags().Lookup("interval"))

	serveCmd.Flags().String("addr", "", "listen address (default HTTP_ADDR)")
	serveCmd.Flags().BoolVar(&watch, "watch", false, "also sync on an interval")
	viper.BindPFlag("HTTP_ADDR", serveCmd.Flags().Lookup("addr"))

	statsFilter.register(statsCmd)
	statsCmd.Flags().IntVar(&statsMonths, "months", 6, "number of recent months to show")

	exportFilter.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output .xlsx file (required)")
	exportCmd.MarkFlagRequired("out")

	recordCmd.Flags().StringVar(&recordClient, "client", "", "client name (required)")
	recordCmd.Flags().StringArrayVar(&recordItems, "item", nil, `item as "name:qty:price", repeatable`)
	recordCmd.Flags().StringVar(&recordType, "type", string(model.TransactionTypeStatement), "STATEMENT or QUOTATION")
	recordCmd.Flags().StringVar(&recordDate, "date", "", "date (YYYY-MM-DD, default today)")
	recordCmd.Flags().StringVar(&recordFloor, "floor", "", "floor")
	recordCmd.Flags().StringVar(&recordMemo, "memo", "", "memo")
	recordCmd.Flags().StringVar(&recordContact, "contact", "", "contact person")
	recordCmd.MarkFlagRequired("client")

	rootCmd.AddCommand(syncCmd, testCmd, serveCmd, statsCmd, exportCmd, recordCmd, versionCmd)
}

func syncInterval() time.Duration {
	return app.LoadConfig().SyncInterval
}

// runSyncLoop pulls immediately and then on every tick until ctx ends. A
// failed pull is logged and retried on the next tick.
func runSyncLoop(ctx context.Context, s *syncer.Syncer, every time.Duration) error {
	log.Info().Dur("interval", every).Msg("Starting ledger sync. Running immediately and then on every tick...")

	pull := func() {
		err := retry.Do(ctx, config.DefaultResilienceConfig.SyncLoop, func(ctx context.Context) error {
			_, err := s.Pull(ctx)
			if errors.Is(err, syncer.ErrNoSource) {
				return retry.Permanent(err)
			}
			return err
		})
		if err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("Sync failed")
		}
	}

	pull()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Sync loop stopped")
			return nil
		case <-ticker.C:
			pull()
		}
	}
}

func loadFiltered(ctx context.Context, flags filterFlags) ([]model.Transaction, error) {
	filter, err := flags.filter()
	if err != nil {
		return nil, err
	}

	ledger, err := openLedger(ctx)
	if err != nil {
		return nil, err
	}
	defer ledger.Close()

	txs, err := ledger.Store.GetTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(txs), nil
}

// parseItem reads "name:qty:price". The name may itself contain colons.
func parseItem(raw string) (model.TransactionItem, error) {
	priceAt := strings.LastIndex(raw, ":")
	if priceAt < 0 {
		return model.TransactionItem{}, fmt.Errorf("invalid --item %q, want name:qty:price", raw)
	}
	qtyAt := strings.LastIndex(raw[:priceAt], ":")
	if qtyAt < 0 {
		return model.TransactionItem{}, fmt.Errorf("invalid --item %q, want name:qty:price", raw)
	}

	name := strings.TrimSpace(raw[:qtyAt])
	qty, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(raw[qtyAt+1:priceAt]), ",", ""))
	if err != nil {
		return model.TransactionItem{}, fmt.Errorf("invalid quantity in --item %q: %w", raw, err)
	}
	price, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(raw[priceAt+1:]), ",", ""))
	if err != nil {
		return model.TransactionItem{}, fmt.Errorf("invalid price in --item %q: %w", raw, err)
	}

	return model.TransactionItem{
		Name:      name,
		Unit:      "EA",
		Quantity:  qty,
		UnitPrice: price,
	}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
