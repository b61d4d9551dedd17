// Command server runs the DevDesk API.
//
//	devdesk                 start the API (same as "devdesk serve")
//	devdesk serve           start the API
//	devdesk migrate up      apply pending migrations
//	devdesk migrate down    roll back the last migration
//	devdesk migrate status  print migration status
//
// Configuration comes from configs/config.yaml, a .env file and DEVDESK_*
// environment variables; see internal/config.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakif/devdesk/internal/auth"
	"github.com/sakif/devdesk/internal/cache"
	"github.com/sakif/devdesk/internal/config"
	"github.com/sakif/devdesk/internal/githubapi"
	"github.com/sakif/devdesk/internal/logger"
	"github.com/sakif/devdesk/internal/mail"
	"github.com/sakif/devdesk/internal/repository/sqlite"
	"github.com/sakif/devdesk/internal/server"
	"github.com/sakif/devdesk/internal/service"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "devdesk",
		Short:         "DevDesk ticket and project tracking API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API",
			RunE:  runServe,
		},
		newMigrateCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads config and builds the logger. The returned func flushes the
// log output.
func setup() (*config.Config, *slog.Logger, func() error, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	slog.SetDefault(log)
	return cfg, log, closeLog, nil
}

func openDB(path string, migrate bool) (*sqlite.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	if migrate {
		return sqlite.New(path)
	}
	return sqlite.Open(path)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, closeLog, err := setup()
	if err != nil {
		return err
	}
	defer closeLog()

	db, err := openDB(cfg.Database.Path, true)
	if err != nil {
		return err
	}
	defer db.Close()

	deps := server.Deps{
		DB: db,
		GitHubClients: func(ctx context.Context, accessToken string) service.GitHubClient {
			return githubapi.NewClient(auth.TokenClient(ctx, accessToken), cfg.GitHub.APIBaseURL)
		},
	}

	if cfg.GitHub.Enabled() {
		deps.OAuth = auth.NewGitHubProvider(auth.GitHubProviderConfig{
			ClientID:     cfg.GitHub.ClientID,
			ClientSecret: cfg.GitHub.ClientSecret,
			CallbackURL:  cfg.GitHub.CallbackURL,
			Scopes:       cfg.GitHub.Scopes,
		})
	} else {
		log.Warn("github.client_id or github.client_secret not set, GitHub login is disabled")
	}

	if cfg.Redis.Enabled() {
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		cancel()
		if err != nil {
			return err
		}
		defer client.Close()
		deps.StateGuard = cache.NewRedisStateGuard(client, "")
	} else {
		log.Info("redis not configured, OAuth state replay protection relies on expiry only")
	}

	if cfg.Mail.Enabled() {
		deps.Mailer = mail.NewMailer(mail.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			FromName: cfg.Mail.FromName,
		})
	}

	srv, err := server.New(cfg, log, deps)
	if err != nil {
		return err
	}
	return srv.Start()
}

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
	}

	run := func(name string, fn func(*sqlite.DB) error) *cobra.Command {
		return &cobra.Command{
			Use:   name,
			Short: "Run goose " + name,
			RunE: func(*cobra.Command, []string) error {
				cfg, log, closeLog, err := setup()
				if err != nil {
					return err
				}
				defer closeLog()

				db, err := openDB(cfg.Database.Path, false)
				if err != nil {
					return err
				}
				defer db.Close()

				if err := fn(db); err != nil {
					return fmt.Errorf("migrate %s: %w", name, err)
				}
				v, err := db.Version()
				if err != nil {
					return err
				}
				log.Info("migration finished", slog.String("command", name), slog.Int64("version", v))
				return nil
			},
		}
	}

	cmd.AddCommand(
		run("up", (*sqlite.DB).MigrateUp),
		run("down", (*sqlite.DB).MigrateDown),
		run("status", (*sqlite.DB).MigrateStatus),
	)
	return cmd
}
