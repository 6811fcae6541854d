// Package sqlexec runs SQL against a private in-memory DuckDB engine.
//
// Each Execute call owns its own engine instance: the dataset is registered
// under the fixed name df_data, the query runs, and the engine is released
// before the call returns. Nothing survives across calls, so no locking is
// needed anywhere in this package.
package sqlexec

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/salescope/salescope/pkg/metrics"
	"github.com/salescope/salescope/pkg/table"
)

// TableName is the logical name the dataset is registered under.
const TableName = "df_data"

type Config struct {
	Logger *slog.Logger
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	return nil
}

type Executor struct {
	log *slog.Logger
}

func New(cfg Config) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate executor config: %w", err)
	}
	return &Executor{log: cfg.Logger}, nil
}

// Execute runs sqlText against data registered as df_data and returns the
// full result set. Engine failures come back as *QueryError; precondition
// failures as ErrEmptyQuery / ErrNoData. The empty-query check wins
// regardless of whether data is present.
func (e *Executor) Execute(ctx context.Context, sqlText string, data *table.Table) (*table.Table, error) {
	if strings.TrimSpace(sqlText) == "" {
		return nil, ErrEmptyQuery
	}
	if data == nil {
		return nil, ErrNoData
	}

	result, err := e.run(ctx, sqlText, data)
	if err != nil {
		metrics.SQLQueriesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.SQLQueriesTotal.WithLabelValues("ok").Inc()
	return result, nil
}

func (e *Executor) run(ctx context.Context, sqlText string, data *table.Table) (*table.Table, error) {
	start := time.Now()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, &QueryError{SQL: sqlText, Message: "failed to open engine: " + err.Error()}
	}
	defer db.Close()

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, &QueryError{SQL: sqlText, Message: "failed to get connection: " + err.Error()}
	}
	defer conn.Close()

	if err := registerTable(ctx, conn, data); err != nil {
		return nil, &QueryError{SQL: sqlText, Message: "failed to register dataset: " + err.Error()}
	}

	rows, err := conn.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, &QueryError{SQL: sqlText, Message: err.Error()}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{SQL: sqlText, Message: "failed to get columns: " + err.Error()}
	}

	var resultRows []table.Row
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, &QueryError{SQL: sqlText, Message: "failed to scan row: " + err.Error()}
		}

		row := make(table.Row, len(columns))
		for i, col := range columns {
			switch v := values[i].(type) {
			case []byte:
				row[col] = string(v)
			default:
				row[col] = v
			}
		}
		resultRows = append(resultRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{SQL: sqlText, Message: "error iterating rows: " + err.Error()}
	}

	e.log.Debug("sqlexec: query executed", "rows", len(resultRows), "duration", time.Since(start))
	return table.New(columns, resultRows), nil
}

// registerTable materializes data as a temp table named df_data inside the
// per-call engine instance.
func registerTable(ctx context.Context, conn *sql.Conn, data *table.Table) error {
	defs := make([]string, len(data.Columns))
	for i, col := range data.Columns {
		defs[i] = fmt.Sprintf("%s %s", quoteIdent(col), columnType(data, col))
	}
	createStmt := fmt.Sprintf("CREATE TEMP TABLE %s (%s)", TableName, strings.Join(defs, ", "))
	if _, err := conn.ExecContext(ctx, createStmt); err != nil {
		return err
	}

	if len(data.Rows) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(data.Columns)), ", ")
	insertStmt := fmt.Sprintf("INSERT INTO %s VALUES (%s)", TableName, placeholders)
	stmt, err := conn.PrepareContext(ctx, insertStmt)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range data.Rows {
		args := make([]any, len(data.Columns))
		for i, col := range data.Columns {
			args[i] = row[col]
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

// columnType infers a DuckDB column type from the first non-nil value in the
// column. Columns with no values default to VARCHAR.
func columnType(data *table.Table, col string) string {
	for _, row := range data.Rows {
		switch row[col].(type) {
		case nil:
			continue
		case float64, float32:
			return "DOUBLE"
		case int, int32, int64:
			return "BIGINT"
		case bool:
			return "BOOLEAN"
		case time.Time:
			return "TIMESTAMP"
		default:
			return "VARCHAR"
		}
	}
	return "VARCHAR"
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
