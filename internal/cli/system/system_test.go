package system

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/daylog/internal/backup"
	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/config"
	"github.com/julianstephens/daylog/internal/oracle"
	"github.com/julianstephens/daylog/internal/storage/sqlite"
	"github.com/julianstephens/daylog/internal/tracker"
)

func setupTestDoctorDB(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	tempDir := t.TempDir()
	store := sqlite.NewStore(filepath.Join(tempDir, "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	cfg := config.Default()
	cfg.ConfigDir = tempDir
	cfg.Timezone = "UTC"
	cfg.AdminEmail = "admin@example.com"
	cfg.Oracle.OpenAIAPIKey = "sk-test"

	var out bytes.Buffer
	ctx := &cli.Context{
		Config:  cfg,
		Store:   store,
		Tracker: tracker.New(store, oracle.NewClassifier(nil), tracker.Options{Location: time.UTC}),
		UserID:  "local",
		Out:     &out,
	}
	return ctx, &out
}

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, out := setupTestDoctorDB(t)

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor command failed on healthy database: %v\n%s", err, out.String())
	}
	for _, want := range []string{
		"✓ Database reachable: OK",
		"✓ Schema version: OK",
		"✓ Migrations complete: OK",
		"✓ Data validation: OK",
		"✓ Classification oracle: OK",
		"⚠ Backups present: WARNING",
		"ℹ Server: not running",
		"All diagnostics passed!",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestDoctorCmd_BackupsPresent(t *testing.T) {
	ctx, out := setupTestDoctorDB(t)
	if _, err := backup.NewManager(ctx.Store.GetConfigPath()).Create(); err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor failed: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Backups present: OK") {
		t.Errorf("expected backups check to pass:\n%s", out.String())
	}
}

func TestDoctorCmd_WarningsDoNotFail(t *testing.T) {
	ctx, out := setupTestDoctorDB(t)
	ctx.Config.AdminEmail = ""
	ctx.Config.Oracle.OpenAIAPIKey = ""

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("warnings should not fail doctor: %v", err)
	}
	if !strings.Contains(out.String(), "⚠ Classification oracle: WARNING") {
		t.Errorf("expected oracle warning:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "⚠ Admin email: WARNING") {
		t.Errorf("expected admin warning:\n%s", out.String())
	}
}

func TestDoctorCmd_BrokenSchema(t *testing.T) {
	ctx, out := setupTestDoctorDB(t)

	db := ctx.Store.GetDB()
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to clear schema_version: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (999)"); err != nil {
		t.Fatalf("failed to set schema version: %v", err)
	}

	err := (&DoctorCmd{}).Run(ctx)
	if err == nil {
		t.Fatal("expected doctor to fail on a future schema version")
	}
	if !strings.Contains(out.String(), "❌ Schema version: FAIL") {
		t.Errorf("expected schema failure in output:\n%s", out.String())
	}
}

func TestDoctorCmd_IntegrityConflict(t *testing.T) {
	ctx, out := setupTestDoctorDB(t)
	if _, err := ctx.EnsureUser(); err != nil {
		t.Fatal(err)
	}
	db := ctx.Store.GetDB()
	if _, err := db.Exec("INSERT INTO activities (user_id, date, habit_id, description, hours) SELECT user_id, 'not-a-date', id, 'bad', 1 FROM habits LIMIT 1"); err != nil {
		t.Fatalf("failed to insert bad activity: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Fatal("expected doctor to fail on an invalid activity date")
	}
	if !strings.Contains(out.String(), "❌ Data validation: FAIL") {
		t.Errorf("expected validation failure in output:\n%s", out.String())
	}
}

func TestDoctorCmd_BadTimezone(t *testing.T) {
	ctx, _ := setupTestDoctorDB(t)
	ctx.Config.Timezone = "Mars/Olympus_Mons"

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("expected doctor to fail on an unknown timezone")
	}
}

func TestMigrateCmd(t *testing.T) {
	ctx, out := setupTestDoctorDB(t)

	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out.String(), "No migrations to apply") {
		t.Errorf("expected up-to-date message:\n%s", out.String())
	}

	out.Reset()
	if err := (&MigrateCmd{Status: true}).Run(ctx); err != nil {
		t.Fatalf("migrate --status failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "Schema version: ") {
		t.Errorf("unexpected status output: %q", out.String())
	}
}

func TestInitCmd(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "daylog.db")
	store := sqlite.NewStore(dbPath)
	t.Cleanup(func() { _ = store.Close() })

	var out bytes.Buffer
	ctx := &cli.Context{
		Store:   store,
		Tracker: tracker.New(store, nil, tracker.Options{}),
		UserID:  "local",
		Out:     &out,
	}

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out.String(), "Initialized daylog storage at: "+dbPath) {
		t.Errorf("unexpected output: %q", out.String())
	}
	habits, err := ctx.Tracker.Habits(ctx.Ctx(), "local")
	if err != nil {
		t.Fatal(err)
	}
	if len(habits) == 0 {
		t.Error("init should seed the CLI user's default habits")
	}

	out.Reset()
	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init --force failed: %v", err)
	}
	if !strings.Contains(out.String(), "Deleted existing database") {
		t.Errorf("expected delete message: %q", out.String())
	}
}

func TestEnsureUserKeepsFirstEmail(t *testing.T) {
	ctx, _ := setupTestDoctorDB(t)
	ctx.Email = "me@example.com"
	if _, err := ctx.EnsureUser(); err != nil {
		t.Fatal(err)
	}

	ctx.Email = "someone-else@example.com"
	user, err := ctx.EnsureUser()
	if err != nil {
		t.Fatal(err)
	}
	if user.Email != "me@example.com" {
		t.Errorf("email = %q, want the address recorded at creation", user.Email)
	}
	stored, err := ctx.Store.GetUser(ctx.Ctx(), "local")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Email != "me@example.com" {
		t.Errorf("stored email = %q, want me@example.com", stored.Email)
	}
}
