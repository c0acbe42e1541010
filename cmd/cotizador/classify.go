package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/cotizador/internal/app"
	"github.com/hyperifyio/cotizador/internal/brief"
	"github.com/hyperifyio/cotizador/internal/classify"
)

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [file|-]",
		Short: "Detect the modules a brief requests",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runClassify,
	}
	cmd.Flags().Bool("json", false, "Print JSON instead of text")
	cmd.Flags().Bool("debug", false, "Print the intermediate signals as JSON")
	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
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

	path := "-"
	if len(args) == 1 {
		path = args[0]
	}
	b, err := readBrief(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		return writeJSON(out, a.Classifier().Debug(b.Text))
	}
	res := a.Classify(b.Text)
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if err := writeJSON(out, map[string]any{
			"weights": res.Weights,
			"levels":  res.Weights.Levels(),
			"reasons": res.Reasons,
		}); err != nil {
			return err
		}
	} else {
		printClassification(out, res)
	}
	if res.Empty() {
		return app.ErrNoModules
	}
	return nil
}

func printClassification(w io.Writer, res classify.Result) {
	active := res.Weights.Active()
	if len(active) == 0 {
		fmt.Fprintln(w, "Sin módulos detectados.")
	}
	for _, m := range active {
		fmt.Fprintf(w, "%s  %-28s %.2f\n", m, classify.LevelName(m, res.Weights[m]), res.Weights[m])
	}
	if len(res.Reasons) > 0 {
		fmt.Fprintln(w, "\nRazones:")
		for _, r := range res.Reasons {
			fmt.Fprintf(w, "- %s\n", r)
		}
	}
}

// readBrief reads path, or r when path is "-".
func readBrief(r io.Reader, path string) (brief.Brief, error) {
	if strings.TrimSpace(path) == "" || path == "-" {
		data, err := io.ReadAll(r)
		if err != nil {
			return brief.Brief{}, fmt.Errorf("read brief: %w", err)
		}
		return brief.Decode(data, ".md")
	}
	if _, err := os.Stat(path); err != nil {
		return brief.Brief{}, fmt.Errorf("read brief: %w", err)
	}
	return brief.Load(path)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
