package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goliatone/go-shopadmin/catalog"
	"github.com/xuri/excelize/v2"
)

const (
	excelMaxRows      = 1048576
	defaultSheetName  = "Export"
	defaultDateFormat = "yyyy-mm-dd"
	defaultFloatFmt   = "0.00"
)

// XLSXRenderer renders an excelize workbook with a bold header row.
type XLSXRenderer struct{}

// Render streams rows into an XLSX workbook.
func (r XLSXRenderer) Render(ctx context.Context, schema Schema, rows RowIterator, w io.Writer, opts RenderOptions) (RenderStats, error) {
	formatter, err := NewFormatContext(opts.Format)
	if err != nil {
		return RenderStats{}, err
	}

	file := excelize.NewFile()
	defer func() {
		_ = file.Close()
	}()

	sheetName := opts.XLSX.SheetName
	if sheetName == "" {
		sheetName = defaultSheetName
	}
	if current := file.GetSheetName(0); current != sheetName {
		file.SetSheetName(current, sheetName)
	}

	stream, err := file.NewStreamWriter(sheetName)
	if err != nil {
		return RenderStats{}, err
	}

	styles, err := buildXLSXStyles(file)
	if err != nil {
		return RenderStats{}, err
	}

	headers := make([]any, len(schema.Columns))
	for i, label := range schema.Labels() {
		headers[i] = excelize.Cell{StyleID: styles.headerID, Value: label}
	}
	if err := stream.SetRow("A1", headers); err != nil {
		return RenderStats{}, err
	}
	rowIndex := 2

	maxRows := opts.XLSX.MaxRows
	if maxRows <= 0 || maxRows > excelMaxRows-1 {
		maxRows = excelMaxRows - 1
	}

	stats := RenderStats{}
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		row, err := rows.Next(ctx)
		if err != nil {
			if err == io.EOF {
				break
			}
			return stats, err
		}
		if err := checkRowWidth(row, schema); err != nil {
			return stats, err
		}

		stats.Rows++
		if stats.Rows > int64(maxRows) {
			return stats, catalog.NewError(catalog.KindValidation, "max rows exceeded", nil)
		}

		cells := make([]any, len(row))
		for i, value := range row {
			cells[i] = buildXLSXCell(schema.Columns[i], value, formatter, styles)
		}

		if err := stream.SetRow(fmt.Sprintf("A%d", rowIndex), cells); err != nil {
			return stats, err
		}
		rowIndex++
	}

	if err := stream.Flush(); err != nil {
		return stats, err
	}

	cw := &countingWriter{w: w}
	if _, err := file.WriteTo(cw); err != nil {
		return stats, err
	}
	stats.Bytes = cw.count
	return stats, nil
}

type xlsxStyles struct {
	headerID int
	dateID   int
	floatID  int
}

func buildXLSXStyles(file *excelize.File) (xlsxStyles, error) {
	headerID, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return xlsxStyles{}, err
	}
	dateFmt := defaultDateFormat
	dateID, err := file.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return xlsxStyles{}, err
	}
	floatFmt := defaultFloatFmt
	floatID, err := file.NewStyle(&excelize.Style{CustomNumFmt: &floatFmt})
	if err != nil {
		return xlsxStyles{}, err
	}
	return xlsxStyles{headerID: headerID, dateID: dateID, floatID: floatID}, nil
}

// buildXLSXCell keeps numbers and dates typed so spreadsheets can sort and
// sum them; lists and strings become display text.
func buildXLSXCell(col Column, value any, formatter FormatContext, styles xlsxStyles) excelize.Cell {
	switch v := value.(type) {
	case nil:
		return excelize.Cell{Value: ""}
	case time.Time:
		if v.IsZero() {
			return excelize.Cell{Value: ""}
		}
		return excelize.Cell{Value: formatter.ApplyTimezone(v), StyleID: styles.dateID}
	case float64:
		if col.Name == "id" {
			return excelize.Cell{Value: formatter.Display(v)}
		}
		if v == float64(int64(v)) {
			return excelize.Cell{Value: int64(v)}
		}
		return excelize.Cell{Value: v, StyleID: styles.floatID}
	case int, int64:
		return excelize.Cell{Value: v}
	default:
		return excelize.Cell{Value: formatter.Display(value)}
	}
}
