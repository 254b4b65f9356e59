package ai

import (
	"encoding/json"
	"strings"

	"github.com/sells-group/lead-intake/internal/model"
	"github.com/sells-group/lead-intake/pkg/anthropic"
)

// extractText concatenates all text content blocks from a message response.
func extractText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var parts []string
	for _, block := range resp.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find first { and last }.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// parseFormatResponse decodes the format-detection reply.
func parseFormatResponse(text string) (model.Format, int, error) {
	var result struct {
		Format     string `json:"format"`
		Confidence int    `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(text)), &result); err != nil {
		return "", 0, &MalformedResponseError{Raw: text}
	}

	f := model.Format(strings.ToLower(result.Format))
	valid := false
	for _, known := range model.AllFormats() {
		if known == f {
			valid = true
			break
		}
	}
	if !valid {
		f = model.FormatFreeText
	}

	conf := result.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 100 {
		conf = 100
	}
	return f, conf, nil
}

// wireRecord is the JSON shape the extraction prompt asks for.
type wireRecord struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	ServiceAddress   string `json:"service_address"`
	InstallationDate string `json:"installation_date"`
	InstallationTime string `json:"installation_time"`
	IsReferral       bool   `json:"is_referral"`
	ReferralSource   string `json:"referral_source"`
	LeadSize         string `json:"lead_size"`
	OrderNumber      string `json:"order_number"`
	Notes            string `json:"notes"`
	Confidence       int    `json:"confidence"`
}

// parseExtractionResponse decodes one batch's customer list into builders so
// the heuristic completion pass can apply the same fallbacks and validation
// the heuristic path uses.
func parseExtractionResponse(text string) ([]*model.RecordBuilder, error) {
	var result struct {
		Customers []wireRecord `json:"customers"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(text)), &result); err != nil {
		return nil, &MalformedResponseError{Raw: text}
	}

	out := make([]*model.RecordBuilder, 0, len(result.Customers))
	for _, c := range result.Customers {
		out = append(out, &model.RecordBuilder{
			Name:             c.Name,
			Email:            c.Email,
			Phone:            c.Phone,
			ServiceAddress:   c.ServiceAddress,
			InstallationDate: c.InstallationDate,
			InstallationTime: c.InstallationTime,
			IsReferral:       c.IsReferral,
			ReferralSource:   c.ReferralSource,
			LeadSize:         c.LeadSize,
			OrderNumber:      c.OrderNumber,
			Notes:            c.Notes,
		})
	}
	return out, nil
}

// fieldAdjustment is one suggested correction from the validation call.
type fieldAdjustment struct {
	Index      int    `json:"index"`
	Field      string `json:"field"`
	Value      string `json:"value"`
	Confidence int    `json:"confidence"`
}

// parseValidationResponse decodes the audit reply.
func parseValidationResponse(text string) ([]fieldAdjustment, error) {
	var result struct {
		Adjustments []fieldAdjustment `json:"adjustments"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(text)), &result); err != nil {
		return nil, &MalformedResponseError{Raw: text}
	}
	return result.Adjustments, nil
}

// applyAdjustment writes one correction onto a record by field name.
func applyAdjustment(rec *model.CustomerRecord, adj fieldAdjustment) {
	switch adj.Field {
	case "name":
		rec.Name = adj.Value
	case "email":
		rec.Email = adj.Value
	case "phone":
		rec.Phone = adj.Value
	case "service_address":
		rec.ServiceAddress = adj.Value
	case "installation_date":
		rec.InstallationDate = adj.Value
	case "installation_time":
		rec.InstallationTime = adj.Value
	case "lead_size":
		rec.LeadSize = model.LeadSize(adj.Value)
	}
	if adj.Confidence >= 0 && adj.Confidence <= 100 {
		rec.Confidence = adj.Confidence
	}
}
