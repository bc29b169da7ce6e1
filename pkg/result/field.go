package result

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/raykavin/backview/pkg/bdata"
)

// FieldKind tells which variant a Field holds
type FieldKind int

const (
	FieldAbsent FieldKind = iota
	FieldLiteral
	FieldEncoded
)

func (k FieldKind) String() string {
	switch k {
	case FieldLiteral:
		return "literal"
	case FieldEncoded:
		return "encoded"
	default:
		return "absent"
	}
}

// Field is a trace axis that is either a literal sequence or an encoded
// buffer. Which one is expected is decided by the chart reading it.
type Field struct {
	kind    FieldKind
	literal []json.RawMessage
	encoded bdata.Buffer
}

// LiteralField builds a literal field from already encoded JSON values
func LiteralField(values ...json.RawMessage) Field {
	return Field{kind: FieldLiteral, literal: values}
}

// EncodedField builds a field holding a packed buffer
func EncodedField(buf bdata.Buffer) Field {
	return Field{kind: FieldEncoded, encoded: buf}
}

// UnmarshalJSON implements json.Unmarshaler.
// Arrays are literal, objects are encoded buffers and a bare scalar is a
// one element literal.
func (f *Field) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*f = Field{}
	case data[0] == '[':
		var values []json.RawMessage
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		*f = LiteralField(values...)
	case data[0] == '{':
		var buf bdata.Buffer
		if err := json.Unmarshal(data, &buf); err != nil {
			return err
		}
		*f = EncodedField(buf)
	default:
		*f = LiteralField(append(json.RawMessage(nil), data...))
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (f Field) MarshalJSON() ([]byte, error) {
	switch f.kind {
	case FieldLiteral:
		return json.Marshal(f.literal)
	case FieldEncoded:
		return json.Marshal(f.encoded)
	default:
		return []byte("null"), nil
	}
}

// Kind returns the variant held by the field
func (f Field) Kind() FieldKind {
	return f.kind
}

// Len returns the number of literal elements; encoded fields report 0
func (f Field) Len() int {
	return len(f.literal)
}

// Raw returns the literal elements
func (f Field) Raw() ([]json.RawMessage, error) {
	if f.kind != FieldLiteral {
		return nil, fmt.Errorf("%w: expected literal sequence, got %s", ErrMalformedPayload, f.kind)
	}
	return f.literal, nil
}

// Encoded returns the packed buffer
func (f Field) Encoded() (bdata.Buffer, error) {
	if f.kind != FieldEncoded {
		return bdata.Buffer{}, fmt.Errorf("%w: expected encoded buffer, got %s", ErrMalformedPayload, f.kind)
	}
	return f.encoded, nil
}

// Floats decodes an encoded field
func (f Field) Floats() ([]float64, error) {
	buf, err := f.Encoded()
	if err != nil {
		return nil, err
	}
	return bdata.Decode(buf)
}

// Numbers parses a literal field whose elements are all JSON numbers
func (f Field) Numbers() ([]float64, error) {
	raw, err := f.Raw()
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(raw))
	for i, r := range raw {
		var n json.Number
		if err := json.Unmarshal(r, &n); err != nil {
			return nil, fmt.Errorf("%w: element %d is not a number: %s", ErrMalformedPayload, i, r)
		}
		v, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrMalformedPayload, i, err)
		}
		values[i] = v
	}
	return values, nil
}

// Labels renders a literal field as text: strings as they are and numbers
// in their shortest decimal form
func (f Field) Labels() ([]string, error) {
	raw, err := f.Raw()
	if err != nil {
		return nil, err
	}

	labels := make([]string, len(raw))
	for i, r := range raw {
		label, err := labelOf(r)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrMalformedPayload, i, err)
		}
		labels[i] = label
	}
	return labels, nil
}

func labelOf(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("not a string or number: %s", raw)
	}
	v, err := n.Float64()
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(v, 'f', -1, 64), nil
}
