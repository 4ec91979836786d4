package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"bjj-tournament/internal"
	"bjj-tournament/internal/affidavit"
	"bjj-tournament/internal/config"
	"bjj-tournament/internal/content"
	"bjj-tournament/internal/export"
	"bjj-tournament/internal/logger"
	"bjj-tournament/internal/metrics"
	"bjj-tournament/internal/notify"
	"bjj-tournament/internal/objectstore"
	"bjj-tournament/internal/options"
	"bjj-tournament/internal/registration"
	"bjj-tournament/internal/store"
	"bjj-tournament/internal/telemetry"
)

const (
	connectTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
	emailTimeout    = 15 * time.Second
)

var noMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger.New(cfg.LogLevel))
	},
}

func init() {
	serveCmd.Flags().BoolVar(&noMigrate, "no-migrate", false, "skip applying database migrations on start")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	pool, err := store.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns, connectTimeout, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	if !noMigrate {
		if err := store.Migrate(cfg.DatabaseURL, "up"); err != nil {
			return err
		}
		log.Info("migrations applied")
	}
	db := store.NewPostgres(pool)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	objects, filesDir, err := newObjectStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	mailer, err := newMailer(ctx, cfg.Email, log)
	if err != nil {
		return err
	}
	alerter, err := newAlerter(cfg.Telegram, log)
	if err != nil {
		return err
	}
	deps := internal.RouterDeps{
		Store:      db,
		Options:    options.NewLoader(db, log, m),
		Affidavits: affidavit.NewIssuer(cfg.JWTSecret, cfg.AffidavitTTL),
		Gatherer:   reg,
		Logger:     log,
		JWTSecret:  cfg.JWTSecret,
		Cookies:    internal.CookieConfig{Secure: cfg.CookieSecure, SessionTTL: cfg.SessionTTL},
		StaticDir:  cfg.StaticDir,
		FilesDir:   filesDir,
	}
	if cfg.Sheets.SpreadsheetID != "" {
		sheets, err := export.NewSheets(ctx, cfg.Sheets.Credentials, cfg.Sheets.SpreadsheetID)
		if err != nil {
			return err
		}
		deps.Sheets = sheets
		log.Info("sheets export enabled", "spreadsheet_id", sheets.SpreadsheetID())
	}

	deps.Content = content.NewService(db, log)
	deps.Submitter = registration.NewController(registration.Deps{
		IDs:      registration.NewIDGenerator(db, log),
		Uploader: registration.NewUploader(objects, cfg.Storage.DocumentsBucket, log, m),
		Records:  db,
		Mailer:   mailer,
		Alerter:  alerter,
		Site:     deps.Content,
		Logger:   log,
		Metrics:  m,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           internal.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("starting http server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server gracefully")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	deps.Submitter.WaitAlerts()
	log.Info("server stopped")
	return nil
}

// newObjectStore returns the document store and, for the disk backend, the
// directory to serve under /files.
func newObjectStore(ctx context.Context, c config.Storage) (objectstore.Store, string, error) {
	if strings.EqualFold(c.Backend, "gcs") {
		gcs, err := objectstore.NewGCS(ctx, c.GCSBucket, c.GCSCredentials)
		return gcs, "", err
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("create storage dir: %w", err)
	}
	return objectstore.NewDisk(c.Dir, c.PublicBaseURL), c.Dir, nil
}

func newMailer(ctx context.Context, c config.Email, log *slog.Logger) (registration.Mailer, error) {
	switch {
	case c.FunctionURL != "":
		log.Info("confirmation emails via email function")
		return notify.NewFunctionInvoker(c.FunctionURL, c.FunctionKey, &http.Client{Timeout: emailTimeout}), nil
	case c.GmailCredentials != "":
		log.Info("confirmation emails via gmail", "sender", c.GmailSender)
		return notify.NewGmailSender(ctx, c.GmailCredentials, c.GmailSender)
	default:
		log.Warn("no email provider configured, confirmation emails disabled")
		return notify.Nop{}, nil
	}
}

func newAlerter(c config.Telegram, log *slog.Logger) (registration.Alerter, error) {
	if c.Token == "" {
		return notify.NopAlerter{}, nil
	}
	t, err := notify.NewTelegramAlerter(c.Token, c.ChatID)
	if err != nil {
		return nil, err
	}
	log.Info("telegram organizer alerts enabled", "chat_id", c.ChatID)
	return t, nil
}
