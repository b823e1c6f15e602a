package export

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// CSVRenderer renders CSV with a header row of labels. Every field is
// double-quoted and embedded quotes are doubled.
type CSVRenderer struct{}

// Render streams rows as CSV.
func (r CSVRenderer) Render(ctx context.Context, schema Schema, rows RowIterator, w io.Writer, opts RenderOptions) (RenderStats, error) {
	cw := &countingWriter{w: w}
	writer := bufio.NewWriter(cw)

	formatter, err := NewFormatContext(opts.Format)
	if err != nil {
		return RenderStats{}, err
	}

	if err := writeQuotedLine(writer, schema.Labels()); err != nil {
		return RenderStats{}, err
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

		record := make([]string, len(row))
		for i, value := range row {
			record[i] = formatter.Display(value)
		}
		if err := writeQuotedLine(writer, record); err != nil {
			return stats, err
		}
		stats.Rows++
	}

	if err := writer.Flush(); err != nil {
		return stats, err
	}
	stats.Bytes = cw.count
	return stats, nil
}

func writeQuotedLine(w *bufio.Writer, fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(QuoteCSV(field)); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\n")
	return err
}

// QuoteCSV wraps a field in double quotes, doubling embedded quotes.
func QuoteCSV(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
