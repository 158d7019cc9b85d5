package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/annotation-qc/internal/qc"
)

var metricsBaseDir string

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Construct the engine and print its quality metrics snapshot",
	Long:  "Builds a Manager from the current configuration and prints the metrics snapshot as JSON. State is in-memory only, so this doubles as a configuration and reference-file smoke check.",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := qc.NewManager(cfg, metricsBaseDir)

		out, err := json.MarshalIndent(mgr.Metrics(), "", "  ")
		if err != nil {
			return eris.Wrap(err, "metrics: marshal snapshot")
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	metricsCmd.Flags().StringVar(&metricsBaseDir, "base-dir", ".", "Directory reference file paths are resolved against")
	rootCmd.AddCommand(metricsCmd)
}
