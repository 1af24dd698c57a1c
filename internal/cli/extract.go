package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sbenjam1n/assetgen/internal/batch"
)

var extractCmd = &cobra.Command{
	Use:   "extract [task...]",
	Short: "Regenerate the assets module of every task, or of the named tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(cmd.Context(), args)
	},
}

func runExtract(ctx context.Context, names []string) error {
	driver, cleanup, err := newDriver(ctx, false)
	if err != nil {
		return err
	}
	defer cleanup()

	dirs, err := driver.Tasks()
	if len(names) > 0 {
		dirs, err = driver.Select(names)
	}
	if err != nil {
		return err
	}

	report := driver.RunTasks(ctx, newRunID(), dirs)
	printReport(report)

	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d tasks failed", len(failed), len(report.Tasks))
	}
	return nil
}

func printReport(report *batch.Report) {
	written := 0
	for _, t := range report.Tasks {
		name := filepath.Base(t.Dir)
		if t.Err != nil {
			fmt.Printf("  FAIL %-24s %v\n", name, t.Err)
			continue
		}
		written++
		res := t.Result
		fmt.Printf("  ok   %-24s %d fragments from %d files", name, res.Fragments, res.Files)
		if len(res.Skipped) > 0 {
			fmt.Printf(", %d skipped", len(res.Skipped))
		}
		fmt.Printf(" (%s)\n", t.Duration.Round(time.Millisecond))
	}
	fmt.Printf("\n%d written, %d failed\n", written, len(report.Tasks)-written)
}
