// Package result gives typed access to the positional result array returned
// by the backtest endpoint.
package result

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Common errors
var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrIndexOutOfRange  = errors.New("index out of range")
)

// Array is the fixed-layout result array. Entries are kept raw and only
// decoded by the accessor for the position being read.
type Array []json.RawMessage

// Response is the body of the backtest endpoint
type Response struct {
	Data Array `json:"data"`
}

// Decode reads a {"data": [...]} response body
func Decode(r io.Reader) (Array, error) {
	var resp Response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: response: %v", ErrMalformedPayload, err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: response has no data array", ErrMalformedPayload)
	}
	return resp.Data, nil
}

// Entry returns the raw entry at index
func (a Array) Entry(index int) (json.RawMessage, error) {
	if index < 0 || index >= len(a) {
		return nil, fmt.Errorf("%w: entry %d, result has %d entries", ErrIndexOutOfRange, index, len(a))
	}
	return a[index], nil
}

// Trace is one x/y series of a plot payload
type Trace struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
	X    Field  `json:"x"`
	Y    Field  `json:"y"`
}

// Payload is the parsed content of a plot entry
type Payload struct {
	Data []Trace `json:"data"`
}

// Trace returns the trace at position i
func (p *Payload) Trace(i int) (*Trace, error) {
	if i < 0 || i >= len(p.Data) {
		return nil, fmt.Errorf("%w: trace %d missing, payload has %d traces", ErrMalformedPayload, i, len(p.Data))
	}
	return &p.Data[i], nil
}

type plotEntry struct {
	Plot *string `json:"plot"`
}

type wrappedEntry struct {
	Value *plotEntry `json:"value"`
}

// PayloadAt parses the plot JSON text carried by the entry at index.
// When wrapped is true the plot field is read from entry.value.plot,
// otherwise from entry.plot.
func PayloadAt(arr Array, index int, wrapped bool) (*Payload, error) {
	raw, err := arr.Entry(index)
	if err != nil {
		return nil, err
	}

	var plot *string
	if wrapped {
		var entry wrappedEntry
		if err := unmarshalObject(raw, &entry); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformedPayload, index, err)
		}
		if entry.Value == nil {
			return nil, fmt.Errorf("%w: entry %d has no value field", ErrMalformedPayload, index)
		}
		plot = entry.Value.Plot
	} else {
		var entry plotEntry
		if err := unmarshalObject(raw, &entry); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformedPayload, index, err)
		}
		plot = entry.Plot
	}

	if plot == nil {
		return nil, fmt.Errorf("%w: entry %d has no plot field", ErrMalformedPayload, index)
	}

	var payload struct {
		Data *[]Trace `json:"data"`
	}
	if err := unmarshalObject([]byte(*plot), &payload); err != nil {
		return nil, fmt.Errorf("%w: entry %d plot: %v", ErrMalformedPayload, index, err)
	}
	if payload.Data == nil {
		return nil, fmt.Errorf("%w: entry %d plot has no data", ErrMalformedPayload, index)
	}

	return &Payload{Data: *payload.Data}, nil
}

// unmarshalObject decodes raw into v and rejects anything that is not a JSON object
func unmarshalObject(raw []byte, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.New("not a JSON object")
	}
	return json.Unmarshal(trimmed, v)
}
