package dataset

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(overrides map[int]string) string {
	fields := make([]string, len(Columns))
	for i := range fields {
		fields[i] = "v"
	}
	fields[0] = "ORD-001"
	fields[1] = "2024-10-01 10:30:00"
	fields[2] = "2024-10-01"
	fields[6] = "199,90"
	fields[7] = "2"
	fields[8] = "99,95"
	for i, v := range overrides {
		fields[i] = v
	}
	return strings.Join(fields, ";")
}

func TestRead(t *testing.T) {
	data := sampleRecord(nil) + "\n" + sampleRecord(map[int]string{0: "ORD-002", 6: "50"})

	tbl, err := Read(strings.NewReader(data), EncodingUTF8)
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Count)
	assert.Equal(t, Columns, tbl.Columns)

	row := tbl.Rows[0]
	assert.Equal(t, "ORD-001", row["order_no"])
	assert.Equal(t, 199.90, row["sales"])
	assert.Equal(t, 2.0, row["item_qty"])

	ts, ok := row["order_time"].(time.Time)
	require.True(t, ok)
	assert.Equal(t, 2024, ts.Year())

	assert.Equal(t, 50.0, tbl.Rows[1]["sales"])
}

func TestReadBadTypedCellKeepsNil(t *testing.T) {
	data := sampleRecord(map[int]string{6: "not-a-number", 1: "not-a-time"})

	tbl, err := Read(strings.NewReader(data), EncodingUTF8)
	require.NoError(t, err)
	assert.Nil(t, tbl.Rows[0]["sales"])
	assert.Nil(t, tbl.Rows[0]["order_time"])
}

func TestReadEmpty(t *testing.T) {
	_, err := Read(strings.NewReader(""), EncodingUTF8)
	require.Error(t, err)
}

func TestReadWrongFieldCount(t *testing.T) {
	_, err := Read(strings.NewReader("a;b;c"), EncodingUTF8)
	require.Error(t, err)
}
