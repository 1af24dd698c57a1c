package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sbenjam1n/assetgen/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the run ledger migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		conn, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := db.Migrate(ctx, conn); err != nil {
			return err
		}
		fmt.Println("Ledger migrations applied.")
		return nil
	},
}
