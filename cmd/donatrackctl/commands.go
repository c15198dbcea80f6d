package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/donatrack/donatrack/internal/auth"
	"github.com/donatrack/donatrack/internal/cache"
	"github.com/donatrack/donatrack/internal/config"
	"github.com/donatrack/donatrack/internal/logging"
	"github.com/donatrack/donatrack/internal/model"
	"github.com/donatrack/donatrack/internal/repository"
)

// maxUsernameLength matches the users.username column.
const maxUsernameLength = 50

// store is the persistence the commands need.
type store interface {
	Migrate(ctx context.Context) ([]string, error)
	Seed(ctx context.Context, adminPassword string, hash func(string) (string, error)) (*repository.SeedResult, error)
	CreateUser(ctx context.Context, user *model.User) error
	Close()
}

// opener connects to the database behind databaseURL.
type opener func(ctx context.Context, databaseURL string) (store, error)

func openRepository(ctx context.Context, databaseURL string) (store, error) {
	repo, err := repository.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

type rootOptions struct {
	databaseURL string
	logLevel    string
}

func newRootCmd(open opener) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "donatrackctl",
		Short:         "Administer the Donatrack database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL URL (default: DATABASE_URL or DB_* settings)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	cmd.AddCommand(
		newMigrateCmd(opts, open),
		newSeedCmd(opts, open),
		newUserCmd(opts, open),
	)
	return cmd
}

// connect resolves the database URL and opens the store.
func (o *rootOptions) connect(ctx context.Context, open opener) (store, error) {
	databaseURL := o.databaseURL
	if databaseURL == "" {
		db, err := config.LoadDatabase()
		if err != nil {
			return nil, err
		}
		databaseURL = db.PostgresURL()
	}

	s, err := open(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database %s: %s", logging.RedactURL(databaseURL), logging.SanitizeError(err, databaseURL))
	}
	return s, nil
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	return logging.New(o.logLevel, "text", cmd.ErrOrStderr())
}

func newMigrateCmd(opts *rootOptions, open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.connect(cmd.Context(), open)
			if err != nil {
				return err
			}
			defer s.Close()

			applied, err := s.Migrate(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "schema is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintln(out, "applied", name)
			}
			return nil
		},
	}
}

func newSeedCmd(opts *rootOptions, open opener) *cobra.Command {
	var (
		adminPassword string
		redisURL      string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the admin user and default projects when missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := opts.logger(cmd)

			s, err := opts.connect(ctx, open)
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := s.Seed(ctx, adminPassword, auth.HashPassword)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "admin created: %t\n", result.AdminCreated)
			fmt.Fprintf(out, "projects created: %d\n", result.ProjectsCreated)

			if result.ProjectsCreated > 0 && redisURL != "" {
				invalidateProjectCache(ctx, redisURL, logger)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&adminPassword, "admin-password", envOr("ADMIN_PASSWORD", "admin123"), "Password for a newly created admin user")
	cmd.Flags().StringVar(&redisURL, "redis-url", os.Getenv("REDIS_URL"), "Redis URL whose project cache is cleared after seeding")
	return cmd
}

// invalidateProjectCache drops the cached project list; failures only delay freshness.
func invalidateProjectCache(ctx context.Context, redisURL string, logger *slog.Logger) {
	c, err := cache.New(ctx, redisURL, cache.Options{PoolSize: 1})
	if err != nil {
		logger.Warn("skipping project cache invalidation", "error", logging.SanitizeError(err, redisURL))
		return
	}
	defer c.Close()

	if err := c.InvalidateProjects(ctx); err != nil {
		logger.Warn("failed to invalidate project cache", "error", err)
	}
}

func newUserCmd(opts *rootOptions, open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserCreateCmd(opts, open))
	return cmd
}

func newUserCreateCmd(opts *rootOptions, open opener) *cobra.Command {
	var (
		username      string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user allowed to sign in",
		Long:  "Create a user. The password is read from the first line of standard input.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			username = strings.TrimSpace(username)
			if err := validateUsername(username); err != nil {
				return err
			}

			if !passwordStdin {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			}
			password, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}

			s, err := opts.connect(cmd.Context(), open)
			if err != nil {
				return err
			}
			defer s.Close()

			user := &model.User{Username: username, PasswordHash: hash}
			if err := s.CreateUser(cmd.Context(), user); err != nil {
				if errors.Is(err, repository.ErrUsernameExists) {
					return fmt.Errorf("user %q already exists", username)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created user %q (id %d)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin without prompting")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func validateUsername(username string) error {
	if username == "" {
		return errors.New("username is required")
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return fmt.Errorf("username must be at most %d characters", maxUsernameLength)
	}
	return nil
}

// readPassword returns the first line of r without its line ending.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	return password, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
