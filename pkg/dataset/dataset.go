// Package dataset loads the sales-order CSV export into a table.Table.
//
// The export is a headerless, semicolon-separated file with a fixed 30-column
// layout, usually encoded as GBK. Timestamps and numeric fields are parsed
// into typed values; rows that fail to parse a typed cell keep a nil in that
// cell rather than aborting the load.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/salescope/salescope/pkg/table"
)

// Columns is the fixed column layout of the sales-order export, in file order.
var Columns = []string{
	"order_no", "order_time", "order_date", "brand_code", "program_code",
	"order_type", "sales", "item_qty", "item_price", "channel",
	"subchannel", "sub_subchannel", "material_code", "material_name_cn",
	"material_type", "merged_c_code", "tier_code", "first_order_date",
	"is_mtd_active_member_flag", "ytd_active_arr", "r12_active_arr",
	"manager_counter_code", "ba_code", "province_name", "line_city_name",
	"line_city_level", "store_no", "terminal_name", "terminal_code",
	"terminal_region", "default_flag",
}

// Encoding selects the character encoding of the CSV file.
type Encoding string

const (
	EncodingGBK  Encoding = "gbk"
	EncodingUTF8 Encoding = "utf8"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
)

var timestampColumns = map[string]bool{
	"order_time": true,
}

var dateColumns = map[string]bool{
	"order_date":       true,
	"first_order_date": true,
}

var numericColumns = map[string]bool{
	"sales":      true,
	"item_qty":   true,
	"item_price": true,
}

// Load reads the export at path and returns it as a Table.
func Load(path string, enc Encoding) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return Read(f, enc)
}

// Read parses a sales-order export from r.
func Read(r io.Reader, enc Encoding) (*table.Table, error) {
	if enc == EncodingGBK {
		r = transform.NewReader(r, simplifiedchinese.GBK.NewDecoder())
	}

	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = len(Columns)

	var rows []table.Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset record: %w", err)
		}
		row := make(table.Row, len(Columns))
		for i, col := range Columns {
			row[col] = parseCell(col, record[i])
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset contains no rows")
	}
	return table.New(Columns, rows), nil
}

func parseCell(col, raw string) any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if timestampColumns[col] || dateColumns[col] || numericColumns[col] {
			return nil
		}
		return ""
	}

	switch {
	case timestampColumns[col]:
		if t, err := time.Parse(timestampLayout, raw); err == nil {
			return t
		}
		return nil
	case dateColumns[col]:
		if t, err := time.Parse(dateLayout, raw); err == nil {
			return t
		}
		return nil
	case numericColumns[col]:
		// The export uses a comma decimal separator.
		normalized := strings.ReplaceAll(raw, ",", ".")
		if v, err := strconv.ParseFloat(normalized, 64); err == nil {
			return v
		}
		return nil
	default:
		return raw
	}
}
