package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var auditWindowHours int

var auditCmd = &cobra.Command{
	Use:   "audit [file]",
	Short: "Scan input for PII and print a compliance report",
	Long:  "Runs the security gate over the input without parsing it: PII detection, masking preview, and content screening, followed by the audit-log compliance report.",
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

		vr, err := newGate().Validate(cmd.Context(), raw, map[string]string{"source": "cli"})
		if err != nil {
			return err
		}

		out := struct {
			Valid       bool     `yaml:"valid"`
			RiskLevel   string   `yaml:"risk_level"`
			PIITypes    []string `yaml:"pii_types,omitempty"`
			Warnings    []string `yaml:"warnings,omitempty"`
			Errors      []string `yaml:"errors,omitempty"`
			MaskPreview string   `yaml:"mask_preview,omitempty"`
		}{
			Valid:     vr.IsValid,
			RiskLevel: string(vr.PIIAnalysis.RiskLevel),
			Warnings:  vr.Warnings,
			Errors:    vr.Errors,
		}
		for _, t := range vr.PIIAnalysis.PIITypes {
			out.PIITypes = append(out.PIITypes, string(t))
		}
		if vr.SanitizedData != raw {
			out.MaskPreview = vr.SanitizedData
		}

		report := auditLog().Report(time.Duration(auditWindowHours) * time.Hour)

		data, err := yaml.Marshal(map[string]any{
			"analysis": out,
			"report":   report,
		})
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	auditCmd.Flags().IntVar(&auditWindowHours, "window-hours", 24, "compliance report window in hours")
	rootCmd.AddCommand(auditCmd)
}
