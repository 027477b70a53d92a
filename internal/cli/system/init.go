package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/storage"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting an existing SQLite database before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if ctx.Store.Dialect() != storage.DialectSQLite {
			return fmt.Errorf("--force is only supported for SQLite storage")
		}
		dbPath := ctx.Store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			// Close first so the file is not held open while deleting.
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized daylog storage at: %s\n", ctx.Store.GetConfigPath())

	user, err := ctx.EnsureUser()
	if err != nil {
		return fmt.Errorf("failed to set up user %q: %w", ctx.UserID, err)
	}
	ctx.Printf("CLI user: %s\n", user.ID)
	return nil
}
