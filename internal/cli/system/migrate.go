package system

import (
	"fmt"

	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/migration"
	"github.com/julianstephens/daylog/internal/storage"
)

// migrator is implemented by the SQL stores.
type migrator interface {
	MigrationRunner() (*migration.Runner, error)
}

func migrationRunner(store storage.Provider) (*migration.Runner, error) {
	m, ok := store.(migrator)
	if !ok {
		return nil, fmt.Errorf("storage backend %s does not support migrations", store.Dialect())
	}
	if store.GetDB() == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return m.MigrationRunner()
}

type MigrateCmd struct {
	Status bool `help:"Only print the schema version and pending migrations."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	runner, err := migrationRunner(ctx.Store)
	if err != nil {
		return err
	}

	status, err := runner.Status()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	ctx.Printf("Schema version: %d (latest %d)\n", status.Current, status.Latest)

	if c.Status {
		for _, m := range status.Pending {
			ctx.Printf("  pending: %03d_%s\n", m.Version, m.Name)
		}
		return nil
	}

	count, err := runner.ApplyMigrations(func(msg string) {
		ctx.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
