package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sbenjam1n/assetgen/internal/batch"
	"github.com/sbenjam1n/assetgen/internal/tree"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show task folders and the rule kind of each rule file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dirs, err := batch.New(cfg, logger).Tasks()
		if err != nil {
			return err
		}

		root, err := tree.Build(cfg.TasksRoot(), cfg.ProjectRoot, cfg.Exclude, dirs)
		if err != nil {
			return fmt.Errorf("build tree: %w", err)
		}
		fmt.Println(cfg.ModuleFolder)
		fmt.Print(tree.Format(root, "", true))
		return nil
	},
}
