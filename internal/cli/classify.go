package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sbenjam1n/assetgen/internal/assets"
	"github.com/sbenjam1n/assetgen/internal/rule"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <file...>",
	Short: "Print the rule kind each JSON file classifies as, and why",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			f, err := rule.Parse(path, assets.RelDir(cfg.ProjectRoot, path), data)
			if err != nil {
				fmt.Printf("%s: invalid (%v)\n", path, err)
				continue
			}
			c := rule.Classify(f)
			fmt.Printf("%s: %s (%s)\n", path, c.Kind, c.Reason)
		}
		return nil
	},
}
