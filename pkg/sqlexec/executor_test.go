package sqlexec

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salescope/salescope/pkg/logger"
	"github.com/salescope/salescope/pkg/table"
)

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	e, err := New(Config{Logger: logger.New(false)})
	require.NoError(t, err)
	return e
}

func salesTable() *table.Table {
	return table.New([]string{"product", "sales"}, []table.Row{
		{"product": "lipstick", "sales": 120.5},
		{"product": "mascara", "sales": 80.0},
		{"product": "lipstick", "sales": 30.0},
	})
}

func TestExecuteEmptyQuery(t *testing.T) {
	e := newTestExecutor(t)

	for _, sql := range []string{"", "   ", "\n\t"} {
		_, err := e.Execute(context.Background(), sql, salesTable())
		assert.ErrorIs(t, err, ErrEmptyQuery)

		// EmptyQuery wins regardless of table presence.
		_, err = e.Execute(context.Background(), sql, nil)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	}
}

func TestExecuteNoData(t *testing.T) {
	e := newTestExecutor(t)

	_, err := e.Execute(context.Background(), "SELECT 1", nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestExecuteAggregation(t *testing.T) {
	e := newTestExecutor(t)

	result, err := e.Execute(context.Background(),
		`SELECT "product", SUM("sales") AS total FROM df_data GROUP BY "product" ORDER BY total DESC`,
		salesTable())
	require.NoError(t, err)
	require.Equal(t, 2, result.Count)
	assert.Equal(t, []string{"product", "total"}, result.Columns)
	assert.Equal(t, "lipstick", result.Rows[0]["product"])
}

func TestExecuteEngineError(t *testing.T) {
	e := newTestExecutor(t)

	_, err := e.Execute(context.Background(), `SELECT "missing_column" FROM df_data`, salesTable())
	require.Error(t, err)

	var qErr *QueryError
	require.True(t, errors.As(err, &qErr))
	assert.Contains(t, qErr.SQL, "missing_column")
	assert.NotEmpty(t, qErr.Message)
}

func TestExecuteSyntaxError(t *testing.T) {
	e := newTestExecutor(t)

	_, err := e.Execute(context.Background(), "SELEKT * FROM df_data", salesTable())
	var qErr *QueryError
	require.True(t, errors.As(err, &qErr))
}
