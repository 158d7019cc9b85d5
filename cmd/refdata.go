package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sells-group/annotation-qc/internal/refdata"
)

var refdataBaseDir string

var refdataCmd = &cobra.Command{
	Use:   "refdata",
	Short: "Validate the attention-check and gold-standard reference files",
	Long:  "Loads both reference files with the same parser the engine uses at startup and reports how many items loaded. Malformed items are logged and skipped, exactly as at startup.",
	RunE: func(cmd *cobra.Command, args []string) error {
		attPath := resolve(refdataBaseDir, cfg.AttentionChecks.ItemsFile)
		goldPath := resolve(refdataBaseDir, cfg.GoldStandards.ItemsFile)

		attention, err := refdata.LoadAttentionItems(attPath)
		if err != nil {
			fmt.Printf("attention checks: %s: %v\n", attPath, err)
		} else {
			fmt.Printf("attention checks: %s: %d items\n", attPath, len(attention))
		}

		gold, err := refdata.LoadGoldItems(goldPath)
		if err != nil {
			fmt.Printf("gold standards:   %s: %v\n", goldPath, err)
		} else {
			fmt.Printf("gold standards:   %s: %d items\n", goldPath, len(gold))
		}

		return nil
	},
}

func resolve(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func init() {
	refdataCmd.Flags().StringVar(&refdataBaseDir, "base-dir", ".", "Directory reference file paths are resolved against")
	rootCmd.AddCommand(refdataCmd)
}
