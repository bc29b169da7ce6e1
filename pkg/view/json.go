package view

import (
	"encoding/json"

	"github.com/raykavin/backview/pkg/chart"
	"github.com/raykavin/backview/pkg/metric"
	"github.com/raykavin/backview/pkg/table"
	"github.com/samber/lo"
)

type panelJSON struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Option  chart.Spec      `json:"option,omitempty"`
	Domain  *chart.Domain   `json:"domain,omitempty"`
	Stats   *metric.Summary `json:"stats,omitempty"`
	Dropped int             `json:"dropped,omitempty"`
	Error   *ErrorBody      `json:"error,omitempty"`
}

type viewJSON struct {
	Charts     []panelJSON  `json:"charts"`
	Table      *table.Table `json:"table"`
	TableError *ErrorBody   `json:"table_error,omitempty"`
}

func (p Panel) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.wire())
}

func (p Panel) wire() panelJSON {
	out := panelJSON{
		ID:      p.ID.String(),
		Title:   p.Title,
		Dropped: p.Dropped,
		Error:   NewErrorBody(p.Err),
	}
	if p.Stats != nil && p.Stats.Finite() {
		out.Stats = p.Stats
	}
	if p.Option != nil {
		out.Option = p.Option.ECharts()
		out.Domain = &p.Option.Domain
	}
	return out
}

// MarshalJSON writes {charts:[...], table, table_error}
func (v *View) MarshalJSON() ([]byte, error) {
	return json.Marshal(viewJSON{
		Charts: lo.Map(v.Panels, func(p Panel, _ int) panelJSON {
			return p.wire()
		}),
		Table:      v.Table,
		TableError: NewErrorBody(v.TableErr),
	})
}
