package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/warp/pettycash/config"
	"github.com/warp/pettycash/logging"
	"github.com/warp/pettycash/pettycash"
	"github.com/warp/pettycash/store/memory"
	"github.com/warp/pettycash/store/sqlite"
	"go.uber.org/zap"
)

// =============================================================================
// COMMANDS
// =============================================================================

// Execute is the main entry point called from main.go. ctx is cancelled
// on SIGINT/SIGTERM.
func Execute(ctx context.Context) {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the interactive shell.
func NewRootCommand() *cobra.Command {
	v := config.New()
	var configFile string

	root := &cobra.Command{
		Use:          "pettycash",
		Short:        "Petty cash ledger",
		Long:         "Manage petty cash funds: expense vouchers, approvals, top-ups, reports and the audit trail.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, v, configFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (yaml, json or toml)")
	flags.String("store", config.StoreMemory, "Storage backend: memory or sqlite (in-memory)")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	_ = v.BindPFlag(config.KeyStore, flags.Lookup("store"))
	_ = v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))

	root.AddCommand(
		&cobra.Command{
			Use:   "shell",
			Short: "Interactive menu (default)",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runShell(cmd, v, configFile)
			},
		},
		&cobra.Command{
			Use:   "demo",
			Short: "Run the full workflow with the demo users and print the results",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd, v, configFile, func(ctx context.Context, a *App) error {
					if !a.Config.SeedDemoUsers {
						return fmt.Errorf("demo needs %s=true", config.KeySeedDemoUsers)
					}
					return RunDemo(ctx, a.Console)
				})
			},
		},
	)
	return root
}

func runShell(cmd *cobra.Command, v *viper.Viper, configFile string) error {
	return withApp(cmd, v, configFile, func(ctx context.Context, a *App) error {
		a.Monitor.Start(ctx)
		defer a.Monitor.Stop()
		return NewShell(a.Console).Run(ctx)
	})
}

func withApp(cmd *cobra.Command, v *viper.Viper, configFile string, fn func(context.Context, *App) error) error {
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return err
	}
	log, closeLog, err := logging.New(logging.Options{
		Level:       cfg.LogLevel,
		Development: cfg.LogDevelopment,
		File:        cfg.LogFile,
	})
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := Open(ctx, cfg, log, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// =============================================================================
// APP - Wiring shared by every command
// =============================================================================

// App holds the wired components for one process run.
type App struct {
	Config  config.Config
	Log     *zap.Logger
	Repo    pettycash.Repository
	Ledger  *pettycash.Ledger
	Auth    *pettycash.Auth
	Console *Console
	Monitor *pettycash.BalanceMonitor
}

// Open builds the repository selected by cfg, the ledger and the console,
// and seeds the demo users when configured to.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger, out io.Writer) (*App, error) {
	repo, err := openRepository(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	ledger := pettycash.NewLedger(repo, pettycash.WithLogger(log.Named("ledger")))
	auth := pettycash.NewAuth(repo, cfg.BcryptCost, log.Named("auth"))
	if cfg.SeedDemoUsers {
		if err := auth.SeedDemoUsers(ctx); err != nil {
			repo.Close()
			return nil, err
		}
	}
	log.Info("ledger ready", zap.String("store", cfg.Store))

	return &App{
		Config:  cfg,
		Log:     log,
		Repo:    repo,
		Ledger:  ledger,
		Auth:    auth,
		Console: NewConsole(ledger, auth, out, nil),
		Monitor: pettycash.NewBalanceMonitor(ledger, cfg.ReconcileInterval, log.Named("monitor")),
	}, nil
}

func (a *App) Close() error { return a.Repo.Close() }

func openRepository(ctx context.Context, kind string) (pettycash.Repository, error) {
	switch kind {
	case config.StoreMemory:
		return memory.New(), nil
	case config.StoreSQLite:
		return sqlite.New(ctx)
	default:
		return nil, fmt.Errorf("unknown store %q", kind)
	}
}
