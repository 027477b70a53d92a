package dbutil

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, "NULL"},
		{[]byte("abc"), "abc"},
		{"x", "x"},
		{int64(42), "42"},
		{2.5, "2.5"},
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2024-03-01"},
		{time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), "2024-03-01T10:30:00Z"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCollectRows(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "rows.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE t (a INTEGER, b TEXT); INSERT INTO t VALUES (1, 'x'), (2, NULL);`); err != nil {
		t.Fatalf("setup: %v", err)
	}

	rows, err := db.Query("SELECT a, b FROM t ORDER BY a")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()

	got, err := CollectRows(rows, "SELECT a, b FROM t ORDER BY a")
	if err != nil {
		t.Fatalf("CollectRows: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, got.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]string{{"1", "x"}, {"2", "NULL"}}, got.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}
