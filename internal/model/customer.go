package model

import "strings"

// LeadSize is the service plan tier attached to a lead.
type LeadSize string

const (
	LeadSize500MB LeadSize = "500MB"
	LeadSize1Gig  LeadSize = "1GIG"
	LeadSize2Gig  LeadSize = "2GIG"
)

// AllLeadSizes returns every valid plan tier.
func AllLeadSizes() []LeadSize {
	return []LeadSize{LeadSize500MB, LeadSize1Gig, LeadSize2Gig}
}

// CustomerRecord is a single extracted customer lead. Records are immutable
// once a parse call returns; validation happens before they are emitted.
type CustomerRecord struct {
	ID               string   `json:"id,omitempty"`
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Phone            string   `json:"phone"`
	ServiceAddress   string   `json:"service_address"`
	InstallationDate string   `json:"installation_date"` // ISO YYYY-MM-DD
	InstallationTime string   `json:"installation_time"` // normalized to H:MM AM/PM where possible
	IsReferral       bool     `json:"is_referral"`
	ReferralSource   string   `json:"referral_source,omitempty"`
	LeadSize         LeadSize `json:"lead_size"`
	OrderNumber      string   `json:"order_number,omitempty"`
	Notes            string   `json:"notes,omitempty"`
	Confidence       int      `json:"confidence"` // 0-100
}

// RecordBuilder accumulates fields for one customer while a strategy walks
// the input. All fields are optional until Complete() converts the builder
// into a CustomerRecord with fallbacks applied.
type RecordBuilder struct {
	Name             string
	Email            string
	Phone            string
	ServiceAddress   string
	InstallationDate string
	InstallationTime string
	IsReferral       bool
	ReferralSource   string
	LeadSize         string
	OrderNumber      string
	Notes            string
}

// HasMinimumFields reports whether the builder carries enough identity to be
// emitted as a record: at least one of name, email, or phone.
func (b *RecordBuilder) HasMinimumFields() bool {
	return strings.TrimSpace(b.Name) != "" ||
		strings.TrimSpace(b.Email) != "" ||
		strings.TrimSpace(b.Phone) != ""
}

// IsEmpty reports whether nothing at all has been captured yet.
func (b *RecordBuilder) IsEmpty() bool {
	return b.Name == "" && b.Email == "" && b.Phone == "" &&
		b.ServiceAddress == "" && b.InstallationDate == "" &&
		b.InstallationTime == "" && b.LeadSize == "" && b.OrderNumber == ""
}

// FieldCount returns how many of the six scored fields are populated.
func (b *RecordBuilder) FieldCount() int {
	n := 0
	for _, v := range []string{b.Name, b.Email, b.Phone, b.ServiceAddress, b.InstallationDate, b.InstallationTime} {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}
