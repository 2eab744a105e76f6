package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	SourceScript = "script"
	SourceSheets = "sheets"
	SourceXLSX   = "xlsx"

	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config is the resolved runtime configuration.
type Config struct {
	Env      string
	LogLevel string

	Source          string
	ScriptURL       string
	SpreadsheetID   string
	CredentialsFile string
	XLSXFile        string
	SalesSheet      string
	EstimateSheet   string

	StoreBackend string
	StoreDir     string
	DatabaseURL  string

	HTTPAddr     string
	SyncInterval time.Duration

	NtfyEnabled  bool
	NtfyURL      string
	NtfyTopic    string
	NtfyPriority string
}

// SetupEnvironment loads .env file and configures zerolog output and log level.
func SetupEnvironment() {
	err := godotenv.Load()

	if os.Getenv("ENV") == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	zerolog.SetGlobalLevel(parseLevel(os.Getenv("LOGLEVEL"), os.Getenv("ENV")))

	// wait until now to report on the .env file so we have the chance to set up logging first
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found or error loading .env file; proceeding with existing environment variables.")
	}
}

func parseLevel(raw, env string) zerolog.Level {
	levelStr := strings.ToLower(strings.TrimSpace(raw))
	switch levelStr {
	case "":
		if env == "production" {
			return zerolog.WarnLevel
		}
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "disabled":
		return zerolog.Disabled
	}

	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
		return zerolog.InfoLevel
	}
	return level
}

// SetDefaults registers every configuration key with its default and turns
// on environment lookup.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("LOGLEVEL", "")
	v.SetDefault("LEDGER_SOURCE", SourceScript)
	v.SetDefault("SCRIPT_URL", "")
	v.SetDefault("SPREADSHEET_ID", "")
	v.SetDefault("GOOGLE_CREDENTIALS_FILE", "credentials.json")
	v.SetDefault("XLSX_FILE", "")
	v.SetDefault("SALES_SHEET", "data")
	v.SetDefault("ESTIMATE_SHEET", "estimate")
	v.SetDefault("STORE_BACKEND", BackendFile)
	v.SetDefault("STORE_DIR", "./data")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("SYNC_INTERVAL", time.Minute)
	v.SetDefault("NTFY_ENABLED", false)
	v.SetDefault("NTFY_URL", "https://ntfy.sh")
	v.SetDefault("NTFY_TOPIC", "jeongsim-ledger")
	v.SetDefault("NTFY_PRIORITY", "")
	v.AutomaticEnv()
}

// LoadConfig reads the global viper instance.
func LoadConfig() Config {
	return LoadConfigFrom(viper.GetViper())
}

func LoadConfigFrom(v *viper.Viper) Config {
	cfg := Config{
		Env:             v.GetString("ENV"),
		LogLevel:        v.GetString("LOGLEVEL"),
		Source:          strings.ToLower(v.GetString("LEDGER_SOURCE")),
		ScriptURL:       strings.TrimSpace(v.GetString("SCRIPT_URL")),
		SpreadsheetID:   strings.TrimSpace(v.GetString("SPREADSHEET_ID")),
		CredentialsFile: v.GetString("GOOGLE_CREDENTIALS_FILE"),
		XLSXFile:        v.GetString("XLSX_FILE"),
		SalesSheet:      v.GetString("SALES_SHEET"),
		EstimateSheet:   v.GetString("ESTIMATE_SHEET"),
		StoreBackend:    strings.ToLower(v.GetString("STORE_BACKEND")),
		StoreDir:        v.GetString("STORE_DIR"),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		HTTPAddr:        v.GetString("HTTP_ADDR"),
		SyncInterval:    v.GetDuration("SYNC_INTERVAL"),
		NtfyEnabled:     v.GetBool("NTFY_ENABLED"),
		NtfyURL:         v.GetString("NTFY_URL"),
		NtfyTopic:       v.GetString("NTFY_TOPIC"),
		NtfyPriority:    v.GetString("NTFY_PRIORITY"),
	}
	if cfg.SyncInterval <= 0 {
		log.Warn().Dur("interval", cfg.SyncInterval).Msg("Invalid SYNC_INTERVAL, using 1m")
		cfg.SyncInterval = time.Minute
	}
	return cfg
}
