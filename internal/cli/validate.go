package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sbenjam1n/assetgen/internal/assets"
	"github.com/sbenjam1n/assetgen/internal/batch"
	"github.com/sbenjam1n/assetgen/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate [task...]",
	Short: "Run Tier 0 + Tier 1 validation against the rule files of each task",
	RunE: func(cmd *cobra.Command, args []string) error {
		quiet, _ := cmd.Flags().GetBool("quiet")

		driver := batch.New(cfg, logger)
		dirs, err := driver.Tasks()
		if len(args) > 0 {
			dirs, err = driver.Select(args)
		}
		if err != nil {
			return err
		}

		passed, failed := 0, 0
		for _, dir := range dirs {
			files, err := assets.ScanRuleFiles(dir, cfg.Exclude)
			if err != nil {
				return fmt.Errorf("scan %s: %w", dir, err)
			}
			for _, file := range files {
				result := validator.ValidateFile(file, assets.RelDir(cfg.ProjectRoot, file))
				if result.Passed {
					passed++
					if !quiet {
						fmt.Printf("ok   %s [%s]\n", relToRoot(file), result.Kind)
					}
					continue
				}
				failed++
				fmt.Printf("FAIL %s\n  Tier %d: %s\n", relToRoot(file), result.Tier, formatValidationResult(result))
			}
		}

		fmt.Printf("\n%d passed, %d failed\n", passed, failed)
		if failed > 0 {
			return fmt.Errorf("%d rule files failed validation", failed)
		}
		return nil
	},
}

func formatValidationResult(r *validator.ValidationResult) string {
	if r.Passed {
		return "PASSED"
	}
	result := fmt.Sprintf("FAILED (code %d): %s", r.Code, r.Message)
	for _, d := range r.Details {
		if !d.Passed && d.Fix != "" {
			result += fmt.Sprintf("\n    Fix: %s", d.Fix)
		}
	}
	return result
}

func relToRoot(path string) string {
	if rel, err := filepath.Rel(cfg.ProjectRoot, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

func init() {
	validateCmd.Flags().BoolP("quiet", "q", false, "only print failing files")
}
