package export

import "strings"

// NormalizeFormat coerces format values into known aliases with defaults applied.
func NormalizeFormat(format Format) Format {
	normalized := strings.ToLower(strings.TrimSpace(string(format)))
	switch normalized {
	case "", string(FormatCSV):
		return FormatCSV
	case "excel", "xls":
		return FormatXLSX
	default:
		return Format(normalized)
	}
}

// ContentType returns the MIME type for a format.
func ContentType(format Format) string {
	switch format {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// IsKnownFormat reports whether format normalizes to a supported format.
func IsKnownFormat(format Format) bool {
	switch NormalizeFormat(format) {
	case FormatCSV, FormatJSON, FormatXLSX, FormatPDF:
		return true
	default:
		return false
	}
}
