package models

// QueryResult holds the output of an ad-hoc admin query. Error is set instead of
// Rows when the database rejected the statement.
type QueryResult struct {
	Query   string     `json:"query"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Error   string     `json:"error,omitempty"`
}
