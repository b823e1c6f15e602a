package export

import (
	"context"
	"encoding/json"
	"io"
)

// JSONRenderer renders an indented array of objects keyed by column label.
// Values are display strings and keys keep column order.
type JSONRenderer struct{}

// Render streams rows as a JSON array.
func (r JSONRenderer) Render(ctx context.Context, schema Schema, rows RowIterator, w io.Writer, opts RenderOptions) (RenderStats, error) {
	cw := &countingWriter{w: w}
	stats := RenderStats{}

	formatter, err := NewFormatContext(opts.Format)
	if err != nil {
		return stats, err
	}

	labels := schema.Labels()
	keys := make([][]byte, len(labels))
	for i, label := range labels {
		keys[i], err = json.Marshal(label)
		if err != nil {
			return stats, err
		}
	}

	if _, err := cw.Write([]byte("[")); err != nil {
		return stats, err
	}

	first := true
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

		if !first {
			if _, err := cw.Write([]byte(",")); err != nil {
				return stats, err
			}
		}
		first = false

		if _, err := cw.Write([]byte("\n  {")); err != nil {
			return stats, err
		}
		for i, value := range row {
			payload, err := json.Marshal(formatter.Display(value))
			if err != nil {
				return stats, err
			}
			sep := "\n    "
			if i > 0 {
				sep = ",\n    "
			}
			if _, err := cw.Write([]byte(sep)); err != nil {
				return stats, err
			}
			if _, err := cw.Write(keys[i]); err != nil {
				return stats, err
			}
			if _, err := cw.Write([]byte(": ")); err != nil {
				return stats, err
			}
			if _, err := cw.Write(payload); err != nil {
				return stats, err
			}
		}
		closing := "\n  }"
		if len(row) == 0 {
			closing = "}"
		}
		if _, err := cw.Write([]byte(closing)); err != nil {
			return stats, err
		}
		stats.Rows++
	}

	end := "\n]"
	if first {
		end = "]"
	}
	if _, err := cw.Write([]byte(end)); err != nil {
		return stats, err
	}

	stats.Bytes = cw.count
	return stats, nil
}
