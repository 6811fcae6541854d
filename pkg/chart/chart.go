// Package chart defines the chart specification produced by the responder and
// its render-time validation against the actual result columns.
package chart

import (
	"encoding/json"
	"fmt"

	"github.com/salescope/salescope/pkg/table"
)

// Supported chart types. Anything else resolves to TypeTable.
const (
	TypeLine    = "line"
	TypeBar     = "bar"
	TypePie     = "pie"
	TypeScatter = "scatter"
	TypeTable   = "table"
)

// YAxis holds one or more y-axis columns. Models return either a single
// string or a list, so it accepts both on decode.
type YAxis []string

func (y *YAxis) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*y = nil
		} else {
			*y = YAxis{single}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("y_axis must be a string or a list of strings")
	}
	*y = YAxis(list)
	return nil
}

// Spec is a chart recommendation. Field presence depends on the chart type.
type Spec struct {
	Type           string `json:"chart_type"`
	XAxis          string `json:"x_axis,omitempty"`
	YAxis          YAxis  `json:"y_axis,omitempty"`
	CategoryColumn string `json:"category_column,omitempty"`
	ValueColumn    string `json:"value_column,omitempty"`
	Title          string `json:"title,omitempty"`
	Explanation    string `json:"explanation,omitempty"`
}

// Resolve validates the spec against the columns actually present in tbl.
// Specs referencing missing columns get an error; an unrecognized chart type
// is downgraded to a table rather than rejected, since the data can always be
// shown as-is.
func Resolve(spec *Spec, tbl *table.Table) error {
	if spec == nil {
		return fmt.Errorf("chart spec is nil")
	}
	switch spec.Type {
	case TypeLine, TypeBar, TypeScatter:
		if spec.XAxis == "" || len(spec.YAxis) == 0 {
			return fmt.Errorf("%s chart requires x_axis and y_axis", spec.Type)
		}
		if !hasColumn(tbl, spec.XAxis) {
			return fmt.Errorf("x_axis column %q not present in result", spec.XAxis)
		}
		for _, col := range spec.YAxis {
			if !hasColumn(tbl, col) {
				return fmt.Errorf("y_axis column %q not present in result", col)
			}
		}
	case TypePie:
		if spec.CategoryColumn == "" || spec.ValueColumn == "" {
			return fmt.Errorf("pie chart requires category_column and value_column")
		}
		if !hasColumn(tbl, spec.CategoryColumn) {
			return fmt.Errorf("category column %q not present in result", spec.CategoryColumn)
		}
		if !hasColumn(tbl, spec.ValueColumn) {
			return fmt.Errorf("value column %q not present in result", spec.ValueColumn)
		}
	case TypeTable:
	default:
		spec.Type = TypeTable
	}
	return nil
}

func hasColumn(tbl *table.Table, name string) bool {
	if tbl == nil {
		return false
	}
	for _, col := range tbl.Columns {
		if col == name {
			return true
		}
	}
	return false
}
