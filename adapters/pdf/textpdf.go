package exportpdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-shopadmin/catalog"
	"github.com/goliatone/go-shopadmin/export"
)

const (
	defaultFontSize   = 8.0
	defaultMargin     = 36.0
	courierCharWidth  = 0.6
	lineHeightFactor  = 1.35
	maxColumnChars    = 28
	columnSeparator   = "  "
	truncationMarker  = "~"
	defaultTextLayout = "LETTER"
)

var pageSizesPoints = map[string][2]float64{
	"A3":     {842, 1191},
	"A4":     {595, 842},
	"A5":     {420, 595},
	"LETTER": {612, 792},
	"LEGAL":  {612, 1008},
}

// TextLayout writes rows as a fixed-width table using the Courier base font.
// Columns are sized to their widest cell, capped so wide text is truncated.
type TextLayout struct {
	FontSize float64
	Margin   float64
	Now      func() time.Time
}

// Render lays out the rows and returns a complete PDF document.
func (l TextLayout) Render(schema export.Schema, rows []export.Row, opts export.RenderOptions) ([]byte, error) {
	formatter, err := export.NewFormatContext(opts.Format)
	if err != nil {
		return nil, err
	}

	width, height, err := pageDimensions(opts.PDF)
	if err != nil {
		return nil, err
	}
	fontSize := l.FontSize
	if fontSize <= 0 {
		fontSize = defaultFontSize
	}
	margin := l.Margin
	if margin <= 0 {
		margin = defaultMargin
	}

	lineHeight := fontSize * lineHeightFactor
	maxChars := int((width - 2*margin) / (fontSize * courierCharWidth))
	linesPerPage := int((height-2*margin)/lineHeight) - 1
	if maxChars < 10 || linesPerPage < 4 {
		return nil, catalog.NewError(catalog.KindValidation, "pdf page too small for text layout", nil)
	}

	cells := make([][]string, 0, len(rows)+1)
	cells = append(cells, schema.Labels())
	for _, row := range rows {
		line := make([]string, len(row))
		for i, value := range row {
			line[i] = formatter.Display(value)
		}
		cells = append(cells, line)
	}
	table := layoutTable(cells, maxChars)

	title := opts.Title
	if title == "" {
		title = "Export"
	}
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	heading := []string{
		clip(title, maxChars),
		clip(fmt.Sprintf("%d rows, generated %s", len(rows), formatter.Display(now())), maxChars),
		"",
		table[0],
		strings.Repeat("-", min(len(table[0]), maxChars)),
	}

	bodyPerPage := linesPerPage - len(heading)
	if bodyPerPage < 1 {
		return nil, catalog.NewError(catalog.KindValidation, "pdf page too small for text layout", nil)
	}

	body := table[1:]
	pageCount := max(1, (len(body)+bodyPerPage-1)/bodyPerPage)
	pages := make([][]string, 0, pageCount)
	for p := 0; p < pageCount; p++ {
		start := p * bodyPerPage
		end := min(start+bodyPerPage, len(body))
		lines := append([]string{}, heading...)
		if start < end {
			lines = append(lines, body[start:end]...)
		}
		pages = append(pages, lines)
	}

	doc := &pdfDocument{width: width, height: height, fontSize: fontSize, margin: margin, lineHeight: lineHeight}
	return doc.write(pages), nil
}

func pageDimensions(opts export.PDFOptions) (float64, float64, error) {
	name := strings.ToUpper(strings.TrimSpace(opts.PageSize))
	if name == "" {
		name = defaultTextLayout
	}
	size, ok := pageSizesPoints[name]
	if !ok {
		return 0, 0, catalog.NewError(catalog.KindValidation, fmt.Sprintf("unsupported pdf page size: %s", opts.PageSize), nil)
	}
	width, height := size[0], size[1]
	landscape := true
	if opts.Landscape != nil {
		landscape = *opts.Landscape
	}
	if landscape {
		width, height = height, width
	}
	return width, height, nil
}

func layoutTable(cells [][]string, maxChars int) []string {
	widths := []int{}
	for _, row := range cells {
		for i, cell := range row {
			n := min(len([]rune(cell)), maxColumnChars)
			if i >= len(widths) {
				widths = append(widths, n)
				continue
			}
			widths[i] = max(widths[i], n)
		}
	}

	lines := make([]string, len(cells))
	for r, row := range cells {
		var b strings.Builder
		for i, cell := range row {
			if i > 0 {
				b.WriteString(columnSeparator)
			}
			cell = clip(cell, widths[i])
			b.WriteString(cell)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-len([]rune(cell))))
			}
		}
		lines[r] = clip(strings.TrimRight(b.String(), " "), maxChars)
	}
	return lines
}

func clip(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + truncationMarker
}

type pdfDocument struct {
	width      float64
	height     float64
	fontSize   float64
	margin     float64
	lineHeight float64

	buf     bytes.Buffer
	offsets []int
}

// write emits catalog, pages tree, font, then a page and content stream per
// page, followed by the xref table.
func (d *pdfDocument) write(pages [][]string) []byte {
	d.buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	pageCount := len(pages)
	// objects: 1 catalog, 2 pages, 3 font, then (page, content) pairs.
	kids := make([]string, pageCount)
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	d.object(1, "<< /Type /Catalog /Pages 2 0 R >>")
	d.object(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pageCount))
	d.object(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding >>")

	for i, lines := range pages {
		pageID := 4 + 2*i
		contentID := pageID + 1
		d.object(pageID, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			num(d.width), num(d.height), contentID))

		stream := d.content(lines, i+1, pageCount)
		d.object(contentID, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := d.buf.Len()
	total := 4 + 2*pageCount
	fmt.Fprintf(&d.buf, "xref\n0 %d\n0000000000 65535 f \n", total)
	for _, off := range d.offsets {
		fmt.Fprintf(&d.buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&d.buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total, xref)
	return d.buf.Bytes()
}

func (d *pdfDocument) object(id int, body string) {
	for len(d.offsets) < id {
		d.offsets = append(d.offsets, 0)
	}
	d.offsets[id-1] = d.buf.Len()
	fmt.Fprintf(&d.buf, "%d 0 obj\n%s\nendobj\n", id, body)
}

func (d *pdfDocument) content(lines []string, page, pages int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "BT\n/F1 %s Tf\n%s TL\n%s %s Td\n", num(d.fontSize), num(d.lineHeight), num(d.margin), num(d.height-d.margin-d.fontSize))
	for _, line := range lines {
		fmt.Fprintf(&b, "(%s) Tj T*\n", escapePDFText(line))
	}
	b.WriteString("ET\n")
	footer := fmt.Sprintf("Page %d of %d", page, pages)
	fmt.Fprintf(&b, "BT\n/F1 %s Tf\n%s %s Td\n(%s) Tj\nET", num(d.fontSize), num(d.margin), num(d.margin/2), escapePDFText(footer))
	return b.String()
}

// escapePDFText escapes string delimiters and maps runes outside Latin-1 to
// "?" since the base font only covers WinAnsi.
func escapePDFText(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r == '\\' || r == '(' || r == ')':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\t':
			b.WriteByte(' ')
		case r < 0x20:
		case r < 0x80:
			b.WriteRune(r)
		case r <= 0xff:
			fmt.Fprintf(&b, "\\%03o", r)
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}

func num(v float64) string {
	return catalog.FormatNumber(float64(int64(v*100)) / 100)
}
