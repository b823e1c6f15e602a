package export

import (
	"bytes"
	"strings"
	"text/template"
	"time"

	"github.com/goliatone/go-shopadmin/catalog"
)

// DefaultFilenameTemplate names exports like orders_export_2024-03-05.
const DefaultFilenameTemplate = "{{.Entity}}_export_{{.Date}}"

type filenameData struct {
	Entity    string
	Format    string
	Date      string
	Timestamp string
}

// Filename renders the export filename for the entity, format and day.
func Filename(entity catalog.Entity, format Format, now time.Time) (string, error) {
	return renderFilename(DefaultFilenameTemplate, entity, format, now)
}

func renderFilename(pattern string, entity catalog.Entity, format Format, now time.Time) (string, error) {
	if pattern == "" {
		pattern = DefaultFilenameTemplate
	}

	data := filenameData{
		Entity:    string(entity),
		Format:    string(format),
		Date:      now.Format("2006-01-02"),
		Timestamp: now.UTC().Format("20060102T150405Z"),
	}

	tmpl, err := template.New("filename").Parse(pattern)
	if err != nil {
		return "", catalog.NewError(catalog.KindValidation, "invalid filename template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", catalog.NewError(catalog.KindInternal, "filename render failed", err)
	}

	result := strings.TrimSpace(buf.String())
	if result == "" {
		return "", catalog.NewError(catalog.KindValidation, "empty filename", nil)
	}

	ext := "." + string(format)
	if !strings.HasSuffix(strings.ToLower(result), ext) {
		result += ext
	}
	return result, nil
}
