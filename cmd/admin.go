package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"bjj-tournament/internal/config"
	"bjj-tournament/internal/logger"
	"bjj-tournament/internal/store"
)

const minPasswordLen = 8

var (
	adminEmail    string
	adminPassword string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin console accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	Long: `Create an admin account for the admin console.

The password is taken from --password or, when the flag is absent, from the
ADMIN_PASSWORD environment variable.

Examples:
  bjj-tournament admin create --email organizer@example.com --password 's3cret-pass'
  ADMIN_PASSWORD='s3cret-pass' bjj-tournament admin create --email organizer@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := adminPassword
		if password == "" {
			password = os.Getenv("ADMIN_PASSWORD")
		}
		hash, err := hashPassword(adminEmail, password)
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := logger.New(cfg.LogLevel)
		pool, err := store.Connect(cmd.Context(), cfg.DatabaseURL, 2, connectTimeout, log)
		if err != nil {
			return err
		}
		defer pool.Close()

		db := store.NewPostgres(pool)
		a, err := db.CreateAdmin(cmd.Context(), adminEmail, hash)
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		auditAdminCreated(cmd.Context(), db, log, a.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (%s)\n", a.Email, a.ID)
		return nil
	},
}

type auditWriter interface {
	LogAction(ctx context.Context, actorID *string, action, details string) error
}

func auditAdminCreated(ctx context.Context, audit auditWriter, log *slog.Logger, adminID string) {
	if err := audit.LogAction(ctx, &adminID, "admin_created", "via cli"); err != nil {
		log.WarnContext(ctx, "audit log write failed", "action", "admin_created", "error", err)
	}
}

func hashPassword(email, password string) (string, error) {
	if !strings.Contains(email, "@") {
		return "", errors.New("--email must be an email address")
	}
	if len(password) < minPasswordLen {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "admin email (required)")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "admin password (default $ADMIN_PASSWORD)")
	_ = adminCreateCmd.MarkFlagRequired("email")

	adminCmd.AddCommand(adminCreateCmd)
	rootCmd.AddCommand(adminCmd)
}
