package export

import (
	"context"
	"io"

	"github.com/goliatone/go-shopadmin/catalog"
)

type countingWriter struct {
	w     io.Writer
	count int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.count += int64(n)
	return n, err
}

// RecordIterator yields rows for the schema's columns from records.
type RecordIterator struct {
	schema  *catalog.Schema
	columns []Column
	records []catalog.Record
	pos     int
}

// NewRecordIterator builds an iterator over records.
func NewRecordIterator(schema *catalog.Schema, columns []Column, records []catalog.Record) *RecordIterator {
	return &RecordIterator{schema: schema, columns: columns, records: records}
}

// Next returns the next row or io.EOF.
func (it *RecordIterator) Next(ctx context.Context) (Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if it.pos >= len(it.records) {
		return nil, io.EOF
	}
	rec := it.records[it.pos]
	it.pos++

	row := make(Row, len(it.columns))
	for i, col := range it.columns {
		field, ok := it.schema.Field(col.Name)
		if !ok {
			continue
		}
		row[i] = valueToAny(field.Get(rec))
	}
	return row, nil
}

// Close releases nothing; it exists to satisfy RowIterator.
func (it *RecordIterator) Close() error { return nil }

// Collect drains an iterator.
func Collect(ctx context.Context, rows RowIterator) ([]Row, error) {
	var out []Row
	for {
		row, err := rows.Next(ctx)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, row)
	}
}

func checkRowWidth(row Row, schema Schema) error {
	if len(row) != len(schema.Columns) {
		return catalog.NewError(catalog.KindValidation, "row length does not match schema", nil)
	}
	return nil
}

// SliceIterator replays rows that were already collected.
type SliceIterator struct {
	rows []Row
	pos  int
}

// NewSliceIterator wraps rows in a RowIterator.
func NewSliceIterator(rows []Row) *SliceIterator {
	return &SliceIterator{rows: rows}
}

// Next returns the next row or io.EOF.
func (it *SliceIterator) Next(ctx context.Context) (Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if it.pos >= len(it.rows) {
		return nil, io.EOF
	}
	row := it.rows[it.pos]
	it.pos++
	return row, nil
}

func (it *SliceIterator) Close() error { return nil }
