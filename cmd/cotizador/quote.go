package main

import (
	"github.com/spf13/cobra"
)

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Classify a brief and write the priced quote",
		Long: "quote classifies the brief, prices the detected modules, converts the " +
			"scenarios to COP and writes the quote as Markdown or JSON, with an optional PDF.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, false)
			if err != nil {
				return err
			}
			a, err := openApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Run(cmd.Context())
		},
	}
	f := cmd.Flags()
	f.StringP("input", "i", "-", "Brief file (.md, .txt, .html) or - for stdin")
	f.StringP("output", "o", "cotizacion.md", "Output file, directory, or - for stdout")
	f.String("pdf", "", "Also write a PDF to this path")
	f.String("format", "markdown", "Output format: markdown or json")
	f.Bool("save", false, "Save the quote to the database")
	f.String("client", "", "Client name shown on the quote")
	f.String("client-type", "", "Client type (Corporativo, Regional, PyME, Emprendimiento, Fundacion)")
	f.String("urgency", "", "Urgency (Normal, Rapida, Express)")
	f.String("complexity", "", "Complexity (Baja, Media, Alta)")
	f.Int("languages", 0, "Number of languages")
	f.String("stakeholders", "", "Decision makers: uno, dos, tres_o_mas or a number")
	f.String("relationship", "", "Relationship (Nuevo, Recurrente)")
	return cmd
}
