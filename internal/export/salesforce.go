// Package export pushes parsed leads into Salesforce.
package export

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/lead-intake/internal/model"
	"github.com/sells-group/lead-intake/pkg/salesforce"
)

// Summary reports the outcome of one export run.
type Summary struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Failed  []string `json:"failed,omitempty"`
}

// Exporter maps customer records to Salesforce Lead objects.
type Exporter struct {
	sf salesforce.Client
}

// NewExporter creates an Exporter backed by the given Salesforce client.
func NewExporter(sf salesforce.Client) *Exporter {
	return &Exporter{sf: sf}
}

// Export pushes records to Salesforce as Leads. Records whose email already
// exists as a Lead are skipped, and per-record failures do not stop the run.
func (e *Exporter) Export(ctx context.Context, records []model.CustomerRecord) (*Summary, error) {
	summary := &Summary{}

	var pending []map[string]any
	var pendingNames []string
	for i := range records {
		rec := &records[i]

		existing, err := salesforce.FindLeadByEmail(ctx, e.sf, rec.Email)
		if err != nil {
			return summary, err
		}
		if existing != nil {
			summary.Skipped++
			continue
		}

		pending = append(pending, leadFields(rec))
		pendingNames = append(pendingNames, rec.Name)
	}

	results, err := salesforce.BulkInsertLeads(ctx, e.sf, pending)
	if err != nil {
		return summary, err
	}

	for i, r := range results {
		if r.Success {
			summary.Created++
			continue
		}
		name := fmt.Sprintf("record %d", i+1)
		if i < len(pendingNames) {
			name = pendingNames[i]
		}
		summary.Failed = append(summary.Failed,
			fmt.Sprintf("%s: %s", name, strings.Join(r.Errors, "; ")))
	}

	zap.L().Info("export: salesforce run complete",
		zap.Int("created", summary.Created),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", len(summary.Failed)))
	return summary, nil
}

// leadFields maps a customer record onto Salesforce Lead fields. Door-to-door
// leads are residential, so Company carries the household name.
func leadFields(rec *model.CustomerRecord) map[string]any {
	first, last := splitName(rec.Name)

	source := "Door-to-Door"
	if rec.IsReferral {
		source = "Referral"
	}

	var desc []string
	desc = append(desc, fmt.Sprintf("Install: %s %s", rec.InstallationDate, rec.InstallationTime))
	desc = append(desc, fmt.Sprintf("Plan: %s", rec.LeadSize))
	if rec.OrderNumber != "" {
		desc = append(desc, fmt.Sprintf("Order: %s", rec.OrderNumber))
	}
	if rec.ReferralSource != "" {
		desc = append(desc, fmt.Sprintf("Referred by: %s", rec.ReferralSource))
	}
	if rec.Notes != "" {
		desc = append(desc, rec.Notes)
	}

	return map[string]any{
		"FirstName":   first,
		"LastName":    last,
		"Company":     rec.Name + " (Residential)",
		"Email":       rec.Email,
		"Phone":       rec.Phone,
		"Street":      rec.ServiceAddress,
		"LeadSource":  source,
		"Description": strings.Join(desc, "\n"),
	}
}

// splitName splits a full name into first and last. Single-word names land in
// LastName, which Salesforce requires.
func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", "Unknown"
	}
	if len(parts) == 1 {
		return "", parts[0]
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}
