package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sbenjam1n/assetgen/internal/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history [task]",
	Short: "Show recent compile runs from the run ledger",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		ctx := cmd.Context()

		conn, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		task := ""
		if len(args) > 0 {
			task = args[0]
		}
		entries, err := ledger.New(conn).History(ctx, task, limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("  (none)")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %-20s %-8s %2d fragments  run=%s\n",
				e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Task, e.Status, e.Fragments, e.RunID)
			if e.Error != "" {
				fmt.Printf("    %s\n", e.Error)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "number of runs to show")
}
