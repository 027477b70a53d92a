// Package dbutil holds helpers shared by the SQL storage backends.
package dbutil

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/daylog/internal/models"
)

// NullText is how SQL NULL is rendered in query results.
const NullText = "NULL"

// CollectRows reads every row of rows into a QueryResult, rendering each value as text.
// Statements that return no result set produce empty Columns and Rows.
func CollectRows(rows *sql.Rows, query string) (models.QueryResult, error) {
	result := models.QueryResult{Query: query, Columns: []string{}, Rows: [][]string{}}

	cols, err := rows.Columns()
	if err != nil {
		return result, err
	}
	result.Columns = cols

	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return result, err
		}
		row := make([]string, len(cols))
		for i, v := range values {
			row[i] = FormatValue(v)
		}
		result.Rows = append(result.Rows, row)
	}
	return result, rows.Err()
}

// FormatValue renders a driver value for display.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return NullText
	case []byte:
		return string(val)
	case string:
		return val
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339)
	case float64:
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprint(val)
	}
}
