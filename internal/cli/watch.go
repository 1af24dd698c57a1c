package cli

import (
	"github.com/spf13/cobra"

	"github.com/sbenjam1n/assetgen/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate a task's module whenever its rule files change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		debounce, _ := cmd.Flags().GetDuration("debounce")
		initial, _ := cmd.Flags().GetBool("initial")
		ctx := cmd.Context()

		driver, cleanup, err := newDriver(ctx, true)
		if err != nil {
			return err
		}
		defer cleanup()

		if initial {
			if _, err := driver.Run(ctx, newRunID()); err != nil {
				return err
			}
		}

		w, err := watch.New(cfg, driver, logger, newRunID)
		if err != nil {
			return err
		}
		w.SetDebounce(debounce)
		return w.Run(ctx)
	},
}

func init() {
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before a task is rebuilt")
	watchCmd.Flags().Bool("initial", true, "compile every task before watching")
}
