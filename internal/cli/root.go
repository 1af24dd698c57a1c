package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sbenjam1n/assetgen/internal/assets"
	"github.com/sbenjam1n/assetgen/internal/batch"
	"github.com/sbenjam1n/assetgen/internal/config"
	"github.com/sbenjam1n/assetgen/internal/db"
	"github.com/sbenjam1n/assetgen/internal/ledger"
	"github.com/sbenjam1n/assetgen/internal/logging"
	"github.com/sbenjam1n/assetgen/internal/queue"
)

// cacheSize bounds the fragment cache shared by long-running commands.
const cacheSize = 4096

var (
	cfg    *config.Config
	logger *zap.Logger

	rootFlag    string
	verboseFlag bool
	workersFlag int

	rootCmd = &cobra.Command{
		Use:   "assetgen",
		Short: "Generate Python asset modules from JSON rule files",
		Long: `assetgen reads the JSON rule files of every task folder under the
module folder and writes one assets module per task, declaring image,
click, long click, swipe, OCR and list rules as class attributes.

Run the whole project:
  assetgen

Regenerate selected tasks:
  assetgen extract Orochi Component/Shiki`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = logging.New(cfg.LogLevel, cfg.LogFormat, verboseFlag)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), nil)
		},
	}
)

// Execute runs the root command. SIGINT and SIGTERM cancel the context
// handed to every command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "project root (default: working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log at debug level")
	rootCmd.PersistentFlags().IntVar(&workersFlag, "workers", 0, "concurrent task folders (default from config)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(migrateCmd)
}

func initConfig() {
	if rootFlag != "" {
		os.Setenv("ASSETGEN_PROJECT_ROOT", rootFlag)
	}
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if workersFlag > 0 {
		cfg.Workers = workersFlag
	}
}

func newRunID() string {
	return uuid.NewString()
}

func connectDB(ctx context.Context) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("no database configured\nSet ASSETGEN_DATABASE_URL environment variable")
	}
	conn, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w\nSet ASSETGEN_DATABASE_URL environment variable", err)
	}
	return conn, nil
}

func connectRedis() (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("no redis configured\nSet ASSETGEN_REDIS_URL environment variable")
	}
	rdb, err := queue.ConnectRedis(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("%w\nSet ASSETGEN_REDIS_URL environment variable", err)
	}
	return rdb, nil
}

// newDriver builds the batch driver. When a database is configured every
// task outcome goes to the run ledger; a ledger that cannot be reached is
// logged and skipped. The returned func releases the connection.
func newDriver(ctx context.Context, cached bool) (*batch.Driver, func(), error) {
	var opts []batch.Option
	cleanup := func() {}

	if cached {
		cache, err := assets.NewFragmentCache(cacheSize)
		if err != nil {
			return nil, cleanup, err
		}
		opts = append(opts, batch.WithCache(cache))
	}

	if cfg.DatabaseURL != "" {
		conn, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn("run ledger disabled", zap.Error(err))
		} else {
			opts = append(opts, batch.WithRecorder(ledger.New(conn)))
			cleanup = func() { conn.Close() }
		}
	}
	return batch.New(cfg, logger, opts...), cleanup, nil
}
