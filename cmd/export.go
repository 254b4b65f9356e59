package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/lead-intake/internal/export"
	"github.com/sells-group/lead-intake/internal/store"
)

var (
	exportMinConfidence int
	exportLimit         int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Push stored leads to Salesforce",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		leads, err := s.ListLeads(cmd.Context(), store.LeadFilter{
			MinConfidence: exportMinConfidence,
			Limit:         exportLimit,
		})
		if err != nil {
			return err
		}

		sf, err := newSalesforce()
		if err != nil {
			return err
		}

		summary, err := export.NewExporter(sf).Export(cmd.Context(), leads)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func init() {
	exportCmd.Flags().IntVar(&exportMinConfidence, "min-confidence", 50, "only export leads at or above this confidence")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 0, "maximum leads to export (0 = store default)")
	rootCmd.AddCommand(exportCmd)
}
