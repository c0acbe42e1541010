package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/cotizador/internal/classify"
	"github.com/hyperifyio/cotizador/internal/render"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved quotes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, true)
			if err != nil {
				return err
			}
			cfg.RateOffline = true
			a, err := openApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			limit, _ := cmd.Flags().GetInt("limit")
			recs, err := a.Store().List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(out, recs)
			}
			if len(recs) == 0 {
				fmt.Fprintln(out, "Sin cotizaciones guardadas.")
				return nil
			}
			for _, r := range recs {
				mods := ""
				for _, m := range r.Weights.Active() {
					mods += string(m)
				}
				fmt.Fprintf(out, "%4d  %s  %-24s %-6s %s\n", r.ID, formatTime(r.CreatedAt), truncate(r.ClientName, 24), mods, render.Money(r.AdjustedUSD))
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum number of quotes")
	cmd.Flags().Bool("json", false, "Print JSON")
	return cmd
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise saved quotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, true)
			if err != nil {
				return err
			}
			cfg.RateOffline = true
			a, err := openApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.Store().Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(out, st)
			}
			fmt.Fprintf(out, "Cotizaciones: %d\n", st.Count)
			fmt.Fprintf(out, "Promedio ajustado: %s\n", render.Money(st.AvgAdjustedUSD))
			fmt.Fprintf(out, "Total ajustado: %s\n", render.Money(st.TotalAdjustedUSD))
			for _, m := range classify.Modules {
				if n := st.Modules[m]; n > 0 {
					fmt.Fprintf(out, "  %s %s: %d\n", m, m.Title(), n)
				}
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print JSON")
	return cmd
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
