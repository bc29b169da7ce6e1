package series

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/raykavin/backview/pkg/result"
)

// TimestampLayout is the category label form of every date axis.
// It is fixed width, so labels sort in chronological order.
const TimestampLayout = "2006-01-02 15:04:05"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// FormatTimestamp renders t as a category label in loc
func FormatTimestamp(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(TimestampLayout)
}

// ParseTimestamp reads a plot x value. Numbers are epoch milliseconds,
// strings are dates without zone interpreted in loc.
func ParseTimestamp(raw json.RawMessage, loc *time.Location) (time.Time, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		for _, layout := range timestampLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t.In(loc), nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: unrecognized timestamp %q", result.ErrMalformedPayload, s)
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil || n == "" {
		return time.Time{}, fmt.Errorf("%w: timestamp is not a string or number: %s", result.ErrMalformedPayload, raw)
	}
	ms, err := n.Float64()
	if err != nil || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}, fmt.Errorf("%w: invalid epoch timestamp %s", result.ErrMalformedPayload, n)
	}

	sec, frac := math.Modf(ms / 1000)
	return time.Unix(int64(sec), int64(frac*1e9)).In(loc), nil
}

// timestamps parses every element of a literal field
func timestamps(field result.Field, loc *time.Location) ([]time.Time, error) {
	raw, err := field.Raw()
	if err != nil {
		return nil, err
	}

	times := make([]time.Time, len(raw))
	for i, r := range raw {
		t, err := ParseTimestamp(r, loc)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		times[i] = t
	}
	return times, nil
}
