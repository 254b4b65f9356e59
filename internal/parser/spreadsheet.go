package parser

import (
	"fmt"
	"strings"

	"github.com/sells-group/lead-intake/internal/model"
)

// delimiterPreference is the fixed preference table for delimiter detection:
// character counts are weighted so a tab always beats an equally frequent
// comma, and so on down the list.
var delimiterPreference = []struct {
	delim  string
	weight int
}{
	{"\t", 10},
	{",", 8},
	{"|", 6},
	{";", 5},
	{"  ", 4},
	{":", 3},
	{" - ", 2},
}

// headerKeywords are column-name tokens that mark a spreadsheet header row.
var headerKeywords = []string{
	"name", "email", "phone", "address", "date", "time", "customer", "rep", "id",
}

// detectDelimiter picks the splitting delimiter by weighted character count
// across the sample.
func detectDelimiter(lines []numberedLine) string {
	best := ","
	bestScore := 0
	for _, pref := range delimiterPreference {
		count := 0
		for _, ln := range lines {
			count += strings.Count(ln.text, pref.delim)
		}
		if score := count * pref.weight; score > bestScore {
			best = pref.delim
			bestScore = score
		}
	}
	return best
}

// isHeaderRow reports whether at least 30% of the row's cells look like
// column-name keywords.
func isHeaderRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	hits := 0
	for _, c := range cells {
		lower := strings.ToLower(strings.TrimSpace(c))
		for _, kw := range headerKeywords {
			if strings.Contains(lower, kw) {
				hits++
				break
			}
		}
	}
	return hits*10 >= len(cells)*3
}

// columnField maps a header cell to the builder field it feeds, or "" when
// the column is unmapped.
func columnField(header string) FieldType {
	h := strings.ToLower(strings.TrimSpace(header))
	switch {
	case strings.Contains(h, "email"):
		return FieldEmail
	case strings.Contains(h, "phone") || strings.Contains(h, "tel") || strings.Contains(h, "mobile") || strings.Contains(h, "cell"):
		return FieldPhone
	case strings.Contains(h, "address"):
		return FieldAddress
	case strings.Contains(h, "date") || strings.Contains(h, "install"):
		return FieldDate
	case strings.Contains(h, "time"):
		return FieldTime
	case strings.Contains(h, "plan") || strings.Contains(h, "size") || strings.Contains(h, "speed") || strings.Contains(h, "package"):
		return FieldLeadSize
	case strings.Contains(h, "order") || strings.Contains(h, "id"):
		return FieldOrderNumber
	case strings.Contains(h, "name") || strings.Contains(h, "customer"):
		return FieldName
	default:
		return ""
	}
}

// setBuilderField assigns a raw cell value to the builder slot for a field
// type, without overwriting an earlier value.
func setBuilderField(b *model.RecordBuilder, ft FieldType, value string) {
	v := trimField(value)
	if v == "" {
		return
	}
	switch ft {
	case FieldName:
		if b.Name == "" {
			b.Name = v
		}
	case FieldEmail:
		if b.Email == "" {
			b.Email = v
		}
	case FieldPhone:
		if b.Phone == "" {
			b.Phone = v
		}
	case FieldAddress:
		if b.ServiceAddress == "" {
			b.ServiceAddress = v
		}
	case FieldDate:
		if b.InstallationDate == "" {
			b.InstallationDate = v
		}
	case FieldTime:
		if b.InstallationTime == "" {
			b.InstallationTime = v
		}
	case FieldLeadSize:
		if b.LeadSize == "" {
			b.LeadSize = v
		}
	case FieldOrderNumber:
		if b.OrderNumber == "" {
			b.OrderNumber = v
		}
	}
}

// sniffCell content-types an unmapped cell: extractors are tried from most to
// least distinctive so an email never lands in the name slot.
func sniffCell(b *model.RecordBuilder, cell string) {
	c := strings.TrimSpace(cell)
	if c == "" {
		return
	}
	for _, ft := range []FieldType{FieldEmail, FieldPhone, FieldDate, FieldTime, FieldLeadSize, FieldAddress, FieldOrderNumber, FieldName} {
		if v := ExtractField(ft, c); v != "" {
			setBuilderField(b, ft, v)
			return
		}
	}
}

// parseSpreadsheet handles CSV/TSV exports: one customer per row, columns
// mapped by header names when a header row is present, else content-sniffed
// per cell.
func (p *Parser) parseSpreadsheet(lines []numberedLine, result *model.ParseResult) []*model.RecordBuilder {
	delim := detectDelimiter(lines)

	var headers []string
	rows := lines
	if first := splitCells(lines[0].text, delim); isHeaderRow(first) {
		headers = first
		rows = lines[1:]
		result.Metadata.HeaderLines++
		result.Metadata.DataLines--
	}

	var out []*model.RecordBuilder
	for _, ln := range rows {
		if strings.TrimSpace(ln.text) == "" || isSummaryLine(ln.text) {
			continue
		}
		cells := splitCells(ln.text, delim)

		b := &model.RecordBuilder{}
		if headers != nil {
			for i, cell := range cells {
				if i >= len(headers) {
					break
				}
				if ft := columnField(headers[i]); ft != "" {
					setBuilderField(b, ft, cell)
				} else {
					sniffCell(b, cell)
				}
			}
		} else {
			for _, cell := range cells {
				sniffCell(b, cell)
			}
		}

		if !b.HasMinimumFields() {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: no recognizable fields", ln.num))
			continue
		}
		out = append(out, b)
	}
	return out
}

func splitCells(line, delim string) []string {
	parts := strings.Split(line, delim)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
