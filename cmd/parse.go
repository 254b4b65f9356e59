package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-intake/internal/model"
	"github.com/sells-group/lead-intake/internal/parser"
)

var (
	parseUseAI bool
	parseSave  bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse pasted customer data from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		raw, err := readInput(path)
		if err != nil {
			return err
		}

		var result *model.ParseResult
		if parseUseAI {
			pipeline, err := newAIPipeline(newGate())
			if err != nil {
				return err
			}
			result, err = pipeline.Parse(cmd.Context(), raw)
			if err != nil {
				return err
			}
		} else {
			result = parser.New().Parse(raw)
		}

		zap.L().Info("parse complete",
			zap.String("format", string(result.FormatDetected)),
			zap.Int("records", len(result.Records)),
			zap.Int("confidence", result.Confidence),
		)

		if parseSave {
			s, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			batch, err := s.SaveBatch(cmd.Context(), result)
			if err != nil {
				return err
			}
			zap.L().Info("batch saved", zap.String("batch_id", batch.ID))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	parseCmd.Flags().BoolVar(&parseUseAI, "ai", false, "use the Claude extraction pipeline instead of heuristics")
	parseCmd.Flags().BoolVar(&parseSave, "save", false, "persist the parsed batch to the lead store")
	rootCmd.AddCommand(parseCmd)
}
