package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-intake/internal/importer"
	"github.com/sells-group/lead-intake/internal/model"
	"github.com/sells-group/lead-intake/internal/parser"
	"github.com/sells-group/lead-intake/internal/store"
)

var (
	importSheet  string
	importSkip   int
	importSave   bool
	importDedupe bool
)

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Parse customer data from a spreadsheet file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := importer.XLSXToText(args[0], importer.XLSXOptions{
			SheetName: importSheet,
			SkipRows:  importSkip,
		})
		if err != nil {
			return err
		}

		result := parser.New().Parse(text)
		zap.L().Info("import complete",
			zap.String("file", args[0]),
			zap.Int("records", len(result.Records)),
		)

		if importSave || importDedupe {
			s, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			var batch *model.IntakeBatch
			if importDedupe {
				pg, ok := s.(*store.PostgresStore)
				if !ok {
					return eris.New("--dedupe requires the postgres store")
				}
				if err := pg.EnsureEmailUnique(cmd.Context()); err != nil {
					return err
				}
				batch, err = pg.UpsertLeads(cmd.Context(), result)
			} else {
				batch, err = s.SaveBatch(cmd.Context(), result)
			}
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
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "sheet name (default: first sheet)")
	importCmd.Flags().IntVar(&importSkip, "skip-rows", 0, "leading rows to skip")
	importCmd.Flags().BoolVar(&importSave, "save", false, "persist the parsed batch to the lead store")
	importCmd.Flags().BoolVar(&importDedupe, "dedupe", false, "upsert leads by email instead of inserting (postgres only, implies --save)")
	rootCmd.AddCommand(importCmd)
}
