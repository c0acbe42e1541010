package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/cotizador/internal/rules"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Show the loaded rules or validate a rules file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if path, _ := cmd.Flags().GetString("check"); path != "" {
				r, err := rules.Load(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: ok (version %s)\n", path, r.Version)
				return nil
			}
			if dump, _ := cmd.Flags().GetBool("dump"); dump {
				_, err := out.Write(rules.DefaultYAML())
				return err
			}

			cfg, err := loadConfig(cmd, false)
			if err != nil {
				return err
			}
			r, err := rules.Load(cfg.RulesPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "version: %s\n", r.Version)
			summary := r.Summary()
			keys := make([]string, 0, len(summary))
			for k := range summary {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "  %-14s %d\n", k, summary[k])
			}
			return nil
		},
	}
	cmd.Flags().String("check", "", "Validate this rules file and exit")
	cmd.Flags().Bool("dump", false, "Print the embedded default rules")
	return cmd
}
