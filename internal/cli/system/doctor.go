package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/daylog/internal/backup"
	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/constants"
	"github.com/julianstephens/daylog/internal/lockfile"
	"github.com/julianstephens/daylog/internal/storage"
	"github.com/julianstephens/daylog/internal/validation"
)

const pingTimeout = 5 * time.Second

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	fail := func(name string, err error) {
		ctx.Printf("❌ %s: FAIL\n", name)
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	}
	warn := func(name string, err error) {
		ctx.Printf("⚠ %s: WARNING\n", name)
		ctx.Printf("   %v\n", err)
	}
	ok := func(name string) {
		ctx.Printf("✓ %s: OK\n", name)
	}
	skip := func(name, reason string) {
		ctx.Printf("⊘ %s: SKIPPED (%s)\n", name, reason)
	}

	// Check 1: DB reachable
	dbReachable := false
	if err := checkDBReachable(ctx); err != nil {
		fail("Database reachable", err)
	} else {
		ok("Database reachable")
		dbReachable = true
	}

	// Checks 2-4 need the database
	dbChecks := []struct {
		name  string
		check func(*cli.Context) error
	}{
		{"Schema version", checkSchemaVersion},
		{"Migrations complete", checkMigrationsComplete},
		{"Data validation", checkValidation},
	}
	for _, c := range dbChecks {
		if !dbReachable {
			skip(c.name, "database not reachable")
			continue
		}
		if err := c.check(ctx); err != nil {
			fail(c.name, err)
		} else {
			ok(c.name)
		}
	}

	// Check 5: Oracle configured (warning only)
	if err := checkOracleConfigured(ctx); err != nil {
		warn("Classification oracle", err)
	} else {
		ok("Classification oracle")
	}

	// Check 6: Admin configured (warning only)
	if ctx.Config.AdminEmail == "" {
		warn("Admin email", errors.New("no admin email configured, the admin query page is disabled"))
	} else {
		ok("Admin email")
	}

	// Check 7: Backups present (warning only, SQLite only)
	if ctx.Store.Dialect() != storage.DialectSQLite {
		skip("Backups present", "not a SQLite database")
	} else if err := checkBackupsPresent(ctx); err != nil {
		warn("Backups present", err)
	} else {
		ok("Backups present")
	}

	// Check 8: Clock/timezone sanity
	if err := checkClockTimezone(ctx); err != nil {
		fail("Clock/timezone", err)
	} else {
		ok("Clock/timezone")
	}

	// Check 9: Server lockfile (informational)
	server, err := lockfile.Check(lockfile.Path(ctx.Config.ConfigDir))
	switch {
	case err == nil:
		ctx.Printf("✓ Server: running at %s (PID %d)\n", server.Addr, server.PID)
	case errors.Is(err, lockfile.ErrMalformed):
		warn("Server", err)
	default:
		ctx.Printf("ℹ Server: not running\n")
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if ctx.Store.GetDB() == nil {
		if err := ctx.Store.Load(); err != nil {
			return fmt.Errorf("failed to load database: %w", err)
		}
	}
	pingCtx, cancel := context.WithTimeout(ctx.Ctx(), pingTimeout)
	defer cancel()
	if err := ctx.Store.Ping(pingCtx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	runner, err := migrationRunner(ctx.Store)
	if err != nil {
		return err
	}
	status, err := runner.Status()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	if status.Current > status.Latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", status.Current, status.Latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	runner, err := migrationRunner(ctx.Store)
	if err != nil {
		return err
	}
	status, err := runner.Status()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	if !status.UpToDate() {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'daylog migrate')", status.Current, status.Latest)
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	rows, err := ctx.Store.GetIntegrityRows(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("failed to read activities: %w", err)
	}
	result := validation.CheckActivities(rows)
	if result.HasConflicts() {
		return errors.New(result.FormatReport())
	}
	return nil
}

func checkOracleConfigured(ctx *cli.Context) error {
	settings := ctx.Config.OracleSettings()
	switch settings.Provider {
	case constants.OracleNone:
		return fmt.Errorf("no oracle configured, every activity without a habit is filed under %q", constants.FallbackLabel)
	case constants.OracleOpenAI, constants.OracleGemini:
		if settings.APIKey == "" {
			return fmt.Errorf("%s selected but no API key is set (daylog keyring set %s-api-key)", settings.Provider, settings.Provider)
		}
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'daylog backup create'")
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	if _, err := ctx.Config.Location(); err != nil {
		return err
	}
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
