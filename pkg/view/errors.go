package view

import (
	"errors"

	"github.com/raykavin/backview/pkg/bdata"
	"github.com/raykavin/backview/pkg/chart"
	"github.com/raykavin/backview/pkg/result"
	"github.com/raykavin/backview/pkg/series"
	"github.com/raykavin/backview/pkg/table"
)

const (
	CodeUnsupportedEncoding = "UNSUPPORTED_ENCODING"
	CodeMalformedPayload    = "MALFORMED_PAYLOAD"
	CodeIndexOutOfRange     = "INDEX_OUT_OF_RANGE"
	CodeEmptySeries         = "EMPTY_SERIES"
	CodeSchemaMismatch      = "SCHEMA_MISMATCH"
	CodeUnknownChart        = "UNKNOWN_CHART"
	CodeInternal            = "INTERNAL_ERROR"
)

var codes = []struct {
	err  error
	code string
}{
	{bdata.ErrUnsupportedEncoding, CodeUnsupportedEncoding},
	{bdata.ErrMalformedBuffer, CodeMalformedPayload},
	{result.ErrMalformedPayload, CodeMalformedPayload},
	{result.ErrIndexOutOfRange, CodeIndexOutOfRange},
	{chart.ErrEmptySeries, CodeEmptySeries},
	{table.ErrSchemaMismatch, CodeSchemaMismatch},
	{series.ErrUnknownChart, CodeUnknownChart},
}

// ErrorCode maps an error to its stable code. Errors outside the decoding
// taxonomy are INTERNAL_ERROR.
func ErrorCode(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// ErrorBody is the wire form of an error
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorBody describes err, nil when there is no error
func NewErrorBody(err error) *ErrorBody {
	if err == nil {
		return nil
	}
	return &ErrorBody{Code: ErrorCode(err), Message: err.Error()}
}
