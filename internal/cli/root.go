package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/daylog/internal/backup"
	"github.com/julianstephens/daylog/internal/config"
	derrors "github.com/julianstephens/daylog/internal/errors"
	"github.com/julianstephens/daylog/internal/logger"
	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/storage"
	"github.com/julianstephens/daylog/internal/tracker"
)

// Prompter asks the user for values a command was not given. It is nil when
// stdin is not a terminal, in which case commands require flags instead.
type Prompter interface {
	Input(title string, value *string, validate func(string) error) error
	Select(title string, options []string, value *string) error
	Confirm(title string, value *bool) error
}

type Context struct {
	Config  config.Config
	Store   storage.Provider
	Tracker *tracker.Service
	UserID  string
	Email   string
	Prompt  Prompter
	Out     io.Writer
	Base    context.Context
}

// Ctx is the context commands pass to the tracker.
func (c *Context) Ctx() context.Context {
	if c.Base == nil {
		return context.Background()
	}
	return c.Base
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

// Interactive reports whether the user can be prompted.
func (c *Context) Interactive() bool {
	return c.Prompt != nil
}

// EnsureUser records the CLI identity and seeds default habits on first use.
// The email is only recorded when the user is first created.
func (c *Context) EnsureUser() (models.User, error) {
	u := models.User{ID: c.UserID, Username: c.UserID, Email: c.Email}
	existing, err := c.Store.GetUser(c.Ctx(), c.UserID)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, derrors.ErrNotFound):
		return models.User{}, err
	}
	return c.Tracker.EnsureUser(c.Ctx(), u)
}

// PerformAutomaticBackup snapshots a SQLite store and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	if c.Store.Dialect() != storage.DialectSQLite {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// HuhPrompter prompts with single-field huh forms.
type HuhPrompter struct{}

func (HuhPrompter) Input(title string, value *string, validate func(string) error) error {
	input := huh.NewInput().Title(title).Value(value)
	if validate != nil {
		input = input.Validate(validate)
	}
	return huh.NewForm(huh.NewGroup(input)).Run()
}

func (HuhPrompter) Select(title string, options []string, value *string) error {
	opts := make([]huh.Option[string], 0, len(options))
	for _, o := range options {
		opts = append(opts, huh.NewOption(o, o))
	}
	return huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().Title(title).Options(opts...).Value(value),
	)).Run()
}

func (HuhPrompter) Confirm(title string, value *bool) error {
	return huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(title).Affirmative("Yes").Negative("No").Value(value),
	)).Run()
}
