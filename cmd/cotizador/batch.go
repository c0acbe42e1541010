package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <files...>",
		Short: "Classify many briefs concurrently, one JSON line per file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, false)
			if err != nil {
				return err
			}
			cfg.RateOffline = true
			a, err := openApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := a.ClassifyBatch(cmd.Context(), args, cfg.Concurrency)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, r := range results {
				if err := enc.Encode(r); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().Int("concurrency", 0, "Files classified in parallel (0 uses the CPU count)")
	return cmd
}
