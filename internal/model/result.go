package model

// Format identifies the input-shape archetype the classifier selected.
type Format string

const (
	FormatSalesReport   Format = "sales_report"
	FormatSpreadsheet   Format = "spreadsheet"
	FormatPipeDelimited Format = "pipe_delimited"
	FormatStructured    Format = "structured"
	FormatMixed         Format = "mixed"
	FormatFreeText      Format = "free_text"
)

// AllFormats returns every archetype the classifier can choose.
func AllFormats() []Format {
	return []Format{
		FormatSalesReport,
		FormatSpreadsheet,
		FormatPipeDelimited,
		FormatStructured,
		FormatMixed,
		FormatFreeText,
	}
}

// ParseMetadata carries diagnostics about the parsed input.
type ParseMetadata struct {
	TotalLines       int     `json:"total_lines"`
	EmptyLines       int     `json:"empty_lines"`
	HeaderLines      int     `json:"header_lines"`
	DataLines        int     `json:"data_lines"`
	AvgFieldsPerLine float64 `json:"avg_fields_per_line"`

	// AI path only.
	ProcessingMS int     `json:"processing_ms,omitempty"`
	TokensUsed   int     `json:"tokens_used,omitempty"`
	CostEstimate float64 `json:"cost_estimate,omitempty"`
}

// ParseResult is the aggregate output of one parse call.
type ParseResult struct {
	Records        []CustomerRecord `json:"records"`
	FormatDetected Format           `json:"format_detected"`
	Confidence     int              `json:"confidence"`
	Warnings       []string         `json:"warnings"`
	Errors         []string         `json:"errors"`
	Metadata       ParseMetadata    `json:"metadata"`
}
