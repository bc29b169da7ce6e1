package result

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Table is the tabular entry shape {"headers": [...], "data": [[...], ...]}.
// Numeric cells are kept as json.Number, null cells as nil.
type Table struct {
	Headers []string
	Data    [][]any
}

// TableAt reads the tabular entry at index
func TableAt(arr Array, index int) (*Table, error) {
	raw, err := arr.Entry(index)
	if err != nil {
		return nil, err
	}

	var entry struct {
		Headers *[]string          `json:"headers"`
		Data    *[]json.RawMessage `json:"data"`
	}
	if err := unmarshalObject(raw, &entry); err != nil {
		return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformedPayload, index, err)
	}
	if entry.Headers == nil {
		return nil, fmt.Errorf("%w: entry %d has no headers", ErrMalformedPayload, index)
	}
	if entry.Data == nil {
		return nil, fmt.Errorf("%w: entry %d has no data", ErrMalformedPayload, index)
	}

	rows := make([][]any, len(*entry.Data))
	for i, rawRow := range *entry.Data {
		decoder := json.NewDecoder(bytes.NewReader(rawRow))
		decoder.UseNumber()

		var row []any
		if err := decoder.Decode(&row); err != nil {
			return nil, fmt.Errorf("%w: entry %d row %d: %v", ErrMalformedPayload, index, i, err)
		}
		if row == nil {
			return nil, fmt.Errorf("%w: entry %d row %d is not an array", ErrMalformedPayload, index, i)
		}
		rows[i] = row
	}

	return &Table{
		Headers: *entry.Headers,
		Data:    rows,
	}, nil
}
