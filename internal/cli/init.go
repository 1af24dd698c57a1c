package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sbenjam1n/assetgen/internal/config"
	"github.com/sbenjam1n/assetgen/internal/db"
	"github.com/sbenjam1n/assetgen/internal/queue"
)

var minimal bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize an assetgen project",
	Long:  "Initialize project: assetgen.yaml, module and component folders, ledger schema, Redis stream",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		configPath := filepath.Join(cfg.ProjectRoot, config.FileName)
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			if err := cfg.Save(configPath); err != nil {
				return err
			}
			fmt.Println("Created assetgen.yaml")
		} else {
			fmt.Println("assetgen.yaml already exists")
		}

		componentDir := filepath.Join(cfg.TasksRoot(), cfg.ComponentFolder)
		if err := os.MkdirAll(componentDir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", componentDir, err)
		}
		fmt.Printf("Created %s/%s\n", cfg.ModuleFolder, cfg.ComponentFolder)

		if minimal {
			fmt.Println("\nMinimal init complete. Run 'assetgen init' (without --minimal) to set up PostgreSQL and Redis.")
			return nil
		}

		if cfg.DatabaseURL != "" {
			fmt.Println("Connecting to PostgreSQL...")
			conn, err := connectDB(ctx)
			if err != nil {
				return fmt.Errorf("database connection failed: %w", err)
			}
			defer conn.Close()

			if err := db.Migrate(ctx, conn); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Println("Run ledger schema created")
		}

		if cfg.RedisURL != "" {
			fmt.Println("Connecting to Redis...")
			rdb, err := connectRedis()
			if err != nil {
				return fmt.Errorf("redis connection failed: %w", err)
			}
			defer rdb.Close()

			if err := queue.New(rdb).EnsureStream(ctx); err != nil {
				return fmt.Errorf("redis stream setup failed: %w", err)
			}
			fmt.Println("Redis stream created")
		}

		fmt.Println("\nassetgen project initialized.")
		fmt.Println("Next steps:")
		fmt.Printf("  1. Add task folders with JSON rule files under %s/\n", cfg.ModuleFolder)
		fmt.Println("  2. Run: assetgen validate")
		fmt.Println("  3. Run: assetgen")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&minimal, "minimal", false, "Minimal init: assetgen.yaml and folders only")
}
