package series

import (
	"fmt"

	"github.com/raykavin/backview/pkg/result"
	"github.com/samber/lo"
)

// ChartID identifies one chart of the result view
type ChartID string

const (
	PriceAndTrades    ChartID = "price-and-trades"
	BalanceAfterClose ChartID = "balance-after-close"
	TradingProfit     ChartID = "trading-profit"
	RevenueCurve      ChartID = "revenue-curve"
	ReboundCurve      ChartID = "rebound-curve"
	IncomeComparison  ChartID = "income-comparison"
	DurationVsIncome  ChartID = "duration-vs-income"
)

func (id ChartID) String() string {
	return string(id)
}

// Kind is how a chart is drawn
type Kind int

const (
	KindLine Kind = iota
	KindBar
	KindArea
)

func (k Kind) String() string {
	switch k {
	case KindBar:
		return "bar"
	case KindArea:
		return "area"
	default:
		return "line"
	}
}

// XSource describes how categories are read from trace 0
type XSource int

const (
	XTimestamp XSource = iota // literal timestamps, formatted
	XLabel                    // literal labels, kept as they are
	XDecoded                  // encoded numbers
)

// YSource describes how values are read from trace 0
type YSource int

const (
	YLiteral YSource = iota
	YDecoded
)

// Definition is the fixed schema of one chart: where its payload lives in
// the result array and how its axes are encoded
type Definition struct {
	ID      ChartID
	Title   string
	Kind    Kind
	Index   int
	Wrapped bool
	X       XSource
	Y       YSource

	// Styled charts carry the default line style
	Styled bool

	extract func(e *Extractor, arr result.Array, def Definition) (Series, error)
}

// Extract runs the chart's extractor with default options
func (d Definition) Extract(arr result.Array) (Series, error) {
	return NewExtractor().ExtractDefinition(d, arr)
}

var definitions = []Definition{
	{
		ID: PriceAndTrades, Title: "Price and trades", Kind: KindLine,
		Index: 0, Wrapped: false, X: XTimestamp, Y: YDecoded, Styled: true,
		extract: (*Extractor).priceAndTrades,
	},
	{
		ID: BalanceAfterClose, Title: "Balance after close", Kind: KindLine,
		Index: 2, Wrapped: true, X: XTimestamp, Y: YLiteral, Styled: true,
	},
	{
		ID: TradingProfit, Title: "Profit per trade", Kind: KindBar,
		Index: 3, Wrapped: true, X: XTimestamp, Y: YDecoded, Styled: true,
	},
	{
		ID: RevenueCurve, Title: "Cumulative revenue", Kind: KindLine,
		Index: 4, Wrapped: true, X: XTimestamp, Y: YDecoded, Styled: true,
	},
	{
		ID: ReboundCurve, Title: "Rebound curve", Kind: KindArea,
		Index: 5, Wrapped: true, X: XTimestamp, Y: YDecoded, Styled: true,
	},
	{
		ID: IncomeComparison, Title: "Long vs short income", Kind: KindBar,
		Index: 6, Wrapped: true, X: XLabel, Y: YDecoded,
	},
	{
		ID: DurationVsIncome, Title: "Holding duration vs income", Kind: KindBar,
		Index: 7, Wrapped: true, X: XDecoded, Y: YDecoded,
	},
}

var definitionByID = lo.KeyBy(definitions, func(d Definition) ChartID {
	return d.ID
})

// Definitions returns every chart in display order
func Definitions() []Definition {
	return append([]Definition(nil), definitions...)
}

// ChartIDs returns every chart identifier in display order
func ChartIDs() []ChartID {
	return lo.Map(definitions, func(d Definition, _ int) ChartID {
		return d.ID
	})
}

// Lookup returns the definition registered for id
func Lookup(id ChartID) (Definition, error) {
	def, ok := definitionByID[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownChart, id)
	}
	return def, nil
}

// ParseChartID validates a chart identifier
func ParseChartID(s string) (ChartID, error) {
	def, err := Lookup(ChartID(s))
	if err != nil {
		return "", err
	}
	return def.ID, nil
}

// ParseChartIDs validates a list of identifiers, an empty list means all charts
func ParseChartIDs(values []string) ([]ChartID, error) {
	if len(values) == 0 {
		return ChartIDs(), nil
	}

	ids := make([]ChartID, 0, len(values))
	for _, v := range values {
		id, err := ParseChartID(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
