package main

import (
	"context"
	"fmt"
	"os"

	"jeongsim_ledger/internal/app"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Sales and quotation ledger synced from a spreadsheet",
	Long: `ledger pulls sales statements and quotations from the office spreadsheet,
reconciles the rows into transactions and keeps a local copy for reporting.

Examples:
  ledger sync
  ledger sync --watch --interval 5m
  ledger serve --addr :8080
  ledger export report --out report.xlsx --start 2024-01-01 --end 2024-01-31
  ledger record --client "Acme" --item "Widget:2:1000"`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	rootCmd.PersistentFlags().String("source", "", "remote source: script, sheets or xlsx")
	rootCmd.PersistentFlags().String("store", "", "store backend: file or postgres")

	viper.BindPFlag("LEDGER_SOURCE", rootCmd.PersistentFlags().Lookup("source"))
	viper.BindPFlag("STORE_BACKEND", rootCmd.PersistentFlags().Lookup("store"))
}

// initConfig loads .env, sets up logging and reads the optional config file.
func initConfig() {
	app.SetupEnvironment()
	app.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
			os.Exit(1)
		}
		log.Debug().Str("file", viper.ConfigFileUsed()).Msg("Using config file")
	}
}

// openLedger builds the ledger from the loaded configuration.
func openLedger(ctx context.Context) (*app.Ledger, error) {
	cfg := app.LoadConfig()
	log.Debug().
		Str("source", cfg.Source).
		Str("store", cfg.StoreBackend).
		Msg("Opening ledger")
	return app.NewLedger(ctx, cfg)
}
