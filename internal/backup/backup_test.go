package backup

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/daylog/internal/constants"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "daylog.db")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE schema_version (version INTEGER PRIMARY KEY);
		INSERT INTO schema_version (version) VALUES (3);
		CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT);
		INSERT INTO notes (body) VALUES ('first'), ('second');
	`)
	require.NoError(t, err)
	return dbPath
}

func countNotes(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&n))
	return n
}

func clock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		t := current
		current = current.Add(time.Minute)
		return t
	}
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	info, err := mgr.Create()
	require.NoError(t, err)
	assert.FileExists(t, info.Path)
	assert.Equal(t, filepath.Join(filepath.Dir(dbPath), constants.BackupDirName), filepath.Dir(info.Path))
	assert.Equal(t, 2, countNotes(t, info.Path))
	assert.Positive(t, info.Size)
}

func TestCreateMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	_, err := mgr.Create()
	assert.Error(t, err)
}

func TestCreateSameSecondGetsSuffix(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	a, err := mgr.Create()
	require.NoError(t, err)
	b, err := mgr.Create()
	require.NoError(t, err)
	assert.NotEqual(t, a.Path, b.Path)
	assert.Equal(t, "daylog-20240301-100000-1.db", b.Name())

	backups, err := mgr.List()
	require.NoError(t, err)
	assert.Len(t, backups, 2)
}

func TestListAndRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = clock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local))

	for i := 0; i < constants.MaxBackups+3; i++ {
		_, err := mgr.Create()
		require.NoError(t, err)
	}

	// Unrelated files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(mgr.Dir(), "notes.txt"), []byte("x"), 0600))

	backups, err := mgr.List()
	require.NoError(t, err)
	require.Len(t, backups, constants.MaxBackups)
	for i := 1; i < len(backups); i++ {
		assert.True(t, backups[i-1].Timestamp.After(backups[i].Timestamp), "backups must be newest first")
	}

	latest, ok, err := mgr.Latest()
	require.NoError(t, err)
	require.True(t, ok)
	want := fmt.Sprintf("daylog-20240301-10%02d00.db", constants.MaxBackups+2)
	assert.Equal(t, want, latest.Name())
}

func TestListEmpty(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "daylog.db"))
	backups, err := mgr.List()
	require.NoError(t, err)
	assert.Empty(t, backups)

	_, ok, err := mgr.Latest()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = clock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local))

	snap, err := mgr.Create()
	require.NoError(t, err)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO notes (body) VALUES ('third')")
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.Equal(t, 3, countNotes(t, dbPath))

	safety, err := mgr.Restore(mgr.Resolve(snap.Name()))
	require.NoError(t, err)
	assert.Equal(t, 2, countNotes(t, dbPath))
	require.NotEmpty(t, safety)
	assert.Equal(t, 3, countNotes(t, safety), "safety backup holds the pre-restore state")
}

func TestRestoreRejectsInvalidFile(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	bogus := filepath.Join(t.TempDir(), "bogus.db")
	require.NoError(t, os.WriteFile(bogus, []byte("not a database"), 0600))

	_, err := mgr.Restore(bogus)
	assert.Error(t, err)
	_, err = mgr.Restore(filepath.Join(t.TempDir(), "absent.db"))
	assert.Error(t, err)
	assert.Equal(t, 2, countNotes(t, dbPath), "database untouched")
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"daylog-20240301-100000.db", true},
		{"daylog-20240301-100000-3.db", true},
		{"daylog-2024.db", false},
		{"other-20240301-100000.db", false},
	}
	for _, tt := range tests {
		if _, ok := parseName(tt.name); ok != tt.ok {
			t.Errorf("parseName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
		}
	}
}
