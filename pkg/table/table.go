// Package table projects the trade log entry of a result array into a
// keyed table for display and export.
package table

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/backview/pkg/result"
	"github.com/samber/lo"
)

// TradeLogIndex is the position of the trade log in the result array
const TradeLogIndex = 12

// Null is shown in place of null cells
const Null = "null"

// RowKey holds the row index so every row carries a stable key. A header
// with the same name takes precedence.
const RowKey = "key"

var ErrSchemaMismatch = errors.New("schema mismatch")

type Column struct {
	Key       string `json:"key"`
	Title     string `json:"title"`
	DataIndex string `json:"dataIndex"`
}

// Row maps a column key to its cell
type Row map[string]any

type Table struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Project reads the trade log of a result array
func Project(arr result.Array) (*Table, error) {
	return ProjectAt(arr, TradeLogIndex)
}

// ProjectAt reads the tabular entry at index. Headers must be unique and
// every row must carry exactly one cell per header.
func ProjectAt(arr result.Array, index int) (*Table, error) {
	entry, err := result.TableAt(arr, index)
	if err != nil {
		return nil, err
	}

	if dups := lo.FindDuplicates(entry.Headers); len(dups) > 0 {
		return nil, fmt.Errorf("%w: duplicate headers %q", ErrSchemaMismatch, dups)
	}
	keyed := !lo.Contains(entry.Headers, RowKey)

	columns := lo.Map(entry.Headers, func(h string, _ int) Column {
		return Column{Key: h, Title: h, DataIndex: h}
	})

	rows := make([]Row, len(entry.Data))
	for i, cells := range entry.Data {
		if len(cells) != len(entry.Headers) {
			return nil, fmt.Errorf("%w: row %d has %d cells for %d headers", ErrSchemaMismatch, i, len(cells), len(entry.Headers))
		}

		row := make(Row, len(cells)+1)
		if keyed {
			row[RowKey] = i
		}
		for j, cell := range cells {
			if cell == nil {
				cell = Null
			}
			row[entry.Headers[j]] = cell
		}
		rows[i] = row
	}

	return &Table{Columns: columns, Rows: rows}, nil
}

// Keys returns the column keys in order
func (t *Table) Keys() []string {
	return lo.Map(t.Columns, func(c Column, _ int) string {
		return c.Key
	})
}

// Records returns the rows as text, ordered by column
func (t *Table) Records() [][]string {
	keys := t.Keys()
	return lo.Map(t.Rows, func(row Row, _ int) []string {
		return lo.Map(keys, func(key string, _ int) string {
			return cellText(row[key])
		})
	})
}

// WriteCSV exports the table with a header line
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Keys()); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// Render prints the table as text
func (t *Table) Render(w io.Writer) {
	writer := tablewriter.NewWriter(w)
	writer.SetHeader(t.Keys())
	writer.SetAutoFormatHeaders(false)
	writer.SetFooterAlignment(tablewriter.ALIGN_RIGHT)
	writer.AppendBulk(t.Records())
	writer.SetFooter(append([]string{fmt.Sprintf("%d trades", len(t.Rows))}, make([]string, max(len(t.Columns)-1, 0))...))
	writer.Render()
}

func cellText(cell any) string {
	switch v := cell.(type) {
	case nil:
		return Null
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		content, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(content)
	}
}
