package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"dangerous-goods-backend/config"
	"dangerous-goods-backend/db"
	"dangerous-goods-backend/internal/app"
	"dangerous-goods-backend/internal/domain"
	"dangerous-goods-backend/internal/infrastructure/cache"
	"dangerous-goods-backend/internal/infrastructure/messaging"
	pgrepo "dangerous-goods-backend/internal/repository/postgres"
	"dangerous-goods-backend/pkg/logger"
	"dangerous-goods-backend/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var version = "dev"

const commandTimeout = 5 * time.Minute

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dgctl",
		Short:         "Dangerous goods fee service operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := config.LoadConfig()
			logger.Init(cfg.Env, cfg.LogLevel)
		},
	}

	cmd.AddCommand(
		migrateCmd(),
		relabelFeesCmd(),
		settingsCmd(),
		tokenCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "dgctl version %s\n", version)
			},
		},
	)
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			if err := cfg.Validate(); err != nil {
				return err
			}
			return db.RunMigrations(cfg.DBUrl, *logger.Get())
		},
	}
}

func relabelFeesCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "relabel-fees",
		Short: "Rename the dangerous goods fee on settings and past orders",
		Long: `Renames fee lines called --from to --to on orders that contain dangerous
goods, and updates the configured fee label when it is unset or equals --from.

A running API keeps its own in-memory cache. It serves the old settings until
CACHE_SETTINGS_TTL expires (the public fee config for up to 5 minutes, cached
evaluations until CACHE_EVALUATION_TTL). Restart the API to apply the change
at once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsecases(cmd.Context(), func(ctx context.Context, uc *app.Usecases) error {
				report, err := uc.Order.RelabelFees(ctx, from, to)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", domain.LegacyFeeLabel, "Fee name to replace")
	cmd.Flags().StringVar(&to, "to", domain.DefaultFeeLabel, "New fee name")
	return cmd
}

func settingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Print the effective fee settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsecases(cmd.Context(), func(ctx context.Context, uc *app.Usecases) error {
				return printJSON(cmd.OutOrStdout(), uc.Settings.Get(ctx))
			})
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		sub   string
		email string
		role  string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sub == "" {
				return fmt.Errorf("--sub is required")
			}
			switch role {
			case domain.RoleCustomer, domain.RoleShopManager, domain.RoleAdmin:
			default:
				return fmt.Errorf("unknown role %q", role)
			}

			cfg := config.LoadConfig()
			utils.SetSecret(cfg.JWTSecret)

			tok, err := utils.GenerateJWT(sub, email, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&sub, "sub", "", "User id (token subject)")
	cmd.Flags().StringVar(&email, "email", "", "User email")
	cmd.Flags().StringVar(&role, "role", domain.RoleAdmin, "Role: customer, shop_manager or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}

// withUsecases connects to the database and runs fn with the usecase graph.
// Events are never published from the CLI.
func withUsecases(parent context.Context, fn func(ctx context.Context, uc *app.Usecases) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, commandTimeout)
	defer cancel()

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	pool, err := pgrepo.NewPgxPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	memCache := cache.NewMemoryCache(time.Minute, 5*time.Minute)
	uc := app.NewUsecases(cfg, pool, memCache, messaging.NoopPublisher{})
	return fn(ctx, uc)
}

func printJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
