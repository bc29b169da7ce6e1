// Package bdata decodes the base64 packed float buffers embedded in plot payloads.
package bdata

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Common errors
var (
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
	ErrMalformedBuffer     = errors.New("malformed buffer")
)

// DType identifies the element type packed in a Buffer
type DType string

// Supported element types. Adding a member here requires a matching case in Decode.
const (
	DTypeFloat64 DType = "f8"
)

// elementSize is the width in bytes of one packed element, per dtype
var elementSize = map[DType]int{
	DTypeFloat64: 8,
}

// Valid reports whether the dtype is one the decoder understands
func (d DType) Valid() bool {
	_, ok := elementSize[d]
	return ok
}

func (d DType) String() string {
	return string(d)
}

// Buffer is the wire form of a packed numeric array: {"bdata": "...", "dtype": "f8"}
type Buffer struct {
	Data  string `json:"bdata"`
	DType DType  `json:"dtype"`
}

// Decode unpacks the buffer into float64 values in their original order.
// Trailing bytes that do not fill a whole element are ignored.
func Decode(buf Buffer) ([]float64, error) {
	if !buf.DType.Valid() {
		return nil, fmt.Errorf("%w: dtype %q", ErrUnsupportedEncoding, buf.DType)
	}

	raw, err := decodeBase64(buf.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBuffer, err)
	}

	switch buf.DType {
	case DTypeFloat64:
		return float64s(raw), nil
	default:
		return nil, fmt.Errorf("%w: dtype %q", ErrUnsupportedEncoding, buf.DType)
	}
}

// Encode packs values as little-endian doubles, the inverse of Decode
func Encode(values []float64) Buffer {
	raw := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(raw[i*8:], math.Float64bits(v))
	}

	return Buffer{
		Data:  base64.StdEncoding.EncodeToString(raw),
		DType: DTypeFloat64,
	}
}

func decodeBase64(data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	if strings.HasSuffix(data, "=") || len(data)%4 == 0 {
		return base64.StdEncoding.DecodeString(data)
	}
	return base64.RawStdEncoding.DecodeString(data)
}

func float64s(raw []byte) []float64 {
	values := make([]float64, len(raw)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return values
}
