// Package table holds the in-memory result-set type shared by the query
// executor, the LLM responder and the report renderer. A Table is always
// owned by a single caller; nothing here is safe for concurrent mutation.
package table

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Row maps a column name to its value.
type Row map[string]any

// Table is an ordered-column result set.
type Table struct {
	Columns []string
	Rows    []Row
	Count   int
}

// New builds a Table from columns and rows.
func New(columns []string, rows []Row) *Table {
	return &Table{
		Columns: columns,
		Rows:    rows,
		Count:   len(rows),
	}
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Head returns a table containing at most n leading rows. Column order is
// shared with the receiver; rows are not copied.
func (t *Table) Head(n int) *Table {
	if t == nil {
		return nil
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return &Table{
		Columns: t.Columns,
		Rows:    t.Rows[:n],
		Count:   n,
	}
}

// Markdown renders the table as a GitHub-style markdown table.
func (t *Table) Markdown() string {
	if t.Empty() {
		return ""
	}
	var sb strings.Builder
	w := tablewriter.NewWriter(&sb)
	w.SetAutoWrapText(false)
	w.SetAutoFormatHeaders(false)
	w.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	w.SetAlignment(tablewriter.ALIGN_LEFT)
	w.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	w.SetCenterSeparator("|")
	w.SetHeader(t.Columns)
	for _, row := range t.Rows {
		values := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			values[i] = FormatValue(row[col])
		}
		w.Append(values)
	}
	w.Render()
	return strings.TrimRight(sb.String(), "\n")
}

// FormatValue formats a single cell for display to the LLM or the terminal.
// Floats are rounded to 2 decimal places to avoid long decimals (like
// 3.3333333333333335) that can confuse the model into thinking they're
// encoded values.
func FormatValue(v any) string {
	switch val := v.(type) {
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%.0f", val)
		}
		return fmt.Sprintf("%.2f", val)
	case float32:
		if val == float32(int32(val)) {
			return fmt.Sprintf("%.0f", val)
		}
		return fmt.Sprintf("%.2f", val)
	case nil:
		return ""
	default:
		s := fmt.Sprintf("%v", v)
		if len(s) > 100 {
			s = s[:97] + "..."
		}
		return s
	}
}

// TruncationMarker is appended when serialized data exceeds its budget.
const TruncationMarker = "\n... (data truncated due to length limit)"

// TruncateMarkdown enforces a character budget on serialized table text.
// The cut happens at the last line boundary before the budget so a row is
// never split mid-line.
func TruncateMarkdown(md string, budget int) string {
	if len(md) <= budget {
		return md
	}
	cut := strings.LastIndex(md[:budget], "\n")
	if cut == -1 {
		cut = budget
	}
	return md[:cut] + TruncationMarker
}
