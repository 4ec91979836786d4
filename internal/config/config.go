package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full process configuration, read from the environment.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	JWTSecret   string `env:"JWT_SECRET,required,notEmpty"`
	Port        string `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	StaticDir   string `env:"STATIC_DIR" envDefault:"./static"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"10"`

	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	AffidavitTTL time.Duration `env:"AFFIDAVIT_TTL" envDefault:"2h"`

	Storage   Storage
	Email     Email
	Telegram  Telegram
	Sheets    Sheets
	Telemetry Telemetry
}

type Storage struct {
	Backend         string `env:"STORAGE_BACKEND" envDefault:"disk"` // disk|gcs
	Dir             string `env:"STORAGE_DIR" envDefault:"./uploads"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	DocumentsBucket string `env:"DOCUMENTS_BUCKET" envDefault:"documents"`
	GCSBucket       string `env:"GCS_BUCKET"`
	GCSCredentials  string `env:"GCS_CREDENTIALS_FILE"`
}

type Email struct {
	FunctionURL      string `env:"EMAIL_FUNCTION_URL"`
	FunctionKey      string `env:"EMAIL_FUNCTION_KEY"`
	GmailCredentials string `env:"GMAIL_CREDENTIALS_FILE"`
	GmailSender      string `env:"GMAIL_SENDER"`
}

type Telegram struct {
	Token  string `env:"TELEGRAM_BOT_TOKEN"`
	ChatID int64  `env:"TELEGRAM_CHAT_ID"`
}

type Sheets struct {
	Credentials   string `env:"SHEETS_CREDENTIALS_FILE"`
	SpreadsheetID string `env:"SHEETS_SPREADSHEET_ID"`
}

type Telemetry struct {
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"bjj-tournament"`
}

// Load parses the environment and checks cross-field rules.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch strings.ToLower(c.Storage.Backend) {
	case "disk":
	case "gcs":
		if c.Storage.GCSBucket == "" || c.Storage.GCSCredentials == "" {
			return fmt.Errorf("STORAGE_BACKEND=gcs requires GCS_BUCKET and GCS_CREDENTIALS_FILE")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (want disk or gcs)", c.Storage.Backend)
	}
	if c.Email.GmailCredentials != "" && c.Email.GmailSender == "" {
		return fmt.Errorf("GMAIL_CREDENTIALS_FILE requires GMAIL_SENDER")
	}
	if c.Telegram.Token != "" && c.Telegram.ChatID == 0 {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN requires TELEGRAM_CHAT_ID")
	}
	if (c.Sheets.Credentials == "") != (c.Sheets.SpreadsheetID == "") {
		return fmt.Errorf("SHEETS_CREDENTIALS_FILE and SHEETS_SPREADSHEET_ID must be set together")
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + c.Port
}
