package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"

	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/cli/activities"
	"github.com/julianstephens/daylog/internal/cli/backups"
	"github.com/julianstephens/daylog/internal/cli/habits"
	"github.com/julianstephens/daylog/internal/cli/reports"
	"github.com/julianstephens/daylog/internal/cli/system"
	"github.com/julianstephens/daylog/internal/config"
	"github.com/julianstephens/daylog/internal/constants"
	derrors "github.com/julianstephens/daylog/internal/errors"
	"github.com/julianstephens/daylog/internal/keyring"
	"github.com/julianstephens/daylog/internal/logger"
	"github.com/julianstephens/daylog/internal/oracle"
	"github.com/julianstephens/daylog/internal/storage"
	"github.com/julianstephens/daylog/internal/tracker"
	"github.com/julianstephens/daylog/internal/utils"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path. The database and logs default to its directory." default:"${config_file}"`

	DatabaseURL        string `name:"database-url" help:"PostgreSQL URL or SQLite path (default: daylog.db next to the config file)." env:"DATABASE_URL"`
	AdminEmail         string `help:"Email of the admin allowed to run raw queries." env:"ADMIN_EMAIL"`
	GoogleClientID     string `help:"Google OAuth client ID." env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `help:"Google OAuth client secret." env:"GOOGLE_CLIENT_SECRET"`
	SessionSecret      string `help:"Secret used to sign session cookies." env:"SESSION_SECRET"`
	Oracle             string `help:"Classification backend (openai|gemini|none). Picked from the available API key when empty." env:"DAYLOG_ORACLE"`
	OpenAIAPIKey       string `name:"openai-api-key" help:"OpenAI API key." env:"OPENAI_API_KEY"`
	GeminiAPIKey       string `name:"gemini-api-key" help:"Gemini API key." env:"GEMINI_API_KEY"`
	Timezone           string `help:"IANA timezone that decides what 'today' is." env:"DAYLOG_TIMEZONE"`
	User               string `help:"User ID the CLI acts as." env:"DAYLOG_USER" default:"${default_user}"`
	Email              string `help:"Email of the CLI user, also used for the admin check." env:"DAYLOG_EMAIL"`
	Debug              bool   `help:"Enable debug logging to stderr." env:"DAYLOG_DEBUG"`

	Init     system.InitCmd    `cmd:"" help:"Initialize daylog storage."`
	Migrate  system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Serve    system.ServeCmd   `cmd:"" help:"Run the web dashboard."`
	Tui      system.TuiCmd     `cmd:"" help:"Browse the activity grid in the terminal." default:"1"`
	Activity struct {
		Add    activities.AddCmd    `cmd:"" help:"Log an activity."`
		List   activities.ListCmd   `cmd:"" help:"List activities for a day."`
		Edit   activities.EditCmd   `cmd:"" help:"Edit an activity."`
		Delete activities.DeleteCmd `cmd:"" help:"Delete an activity."`
	} `cmd:"" aliases:"a" help:"Manage activities."`
	Habit  habits.HabitCmd   `cmd:"" help:"Manage habits."`
	Grid   reports.GridCmd   `cmd:"" help:"Show the rolling 365-day activity grid."`
	Totals reports.TotalsCmd `cmd:"" help:"Show total hours per habit or classification."`
	Query  reports.QueryCmd  `cmd:"" help:"Run a raw SQL query (admin only)."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage SQLite database backups."`
	Keyring system.KeyringCmd `cmd:"" help:"Manage secrets stored in the OS keyring."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Log what you did, see where your hours go."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":      constants.Version,
			"config_file":  filepath.Join(constants.DefaultConfigDir, constants.DefaultConfigFile),
			"default_user": constants.DefaultCLIUser,
		},
	)
	command := strings.Fields(kctx.Command())[0]

	cfg, err := loadConfig()
	if err != nil {
		derrors.Fatal(err)
	}
	if err := logger.Init(logger.Config{
		Debug:     cfg.Debug,
		ConfigDir: cfg.ConfigDir,
		Stderr:    command == "serve",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	appCtx := &cli.Context{
		Config: cfg,
		UserID: CLI.User,
		Email:  strings.TrimSpace(CLI.Email),
		Base:   context.Background(),
	}
	if isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd()) {
		appCtx.Prompt = cli.HuhPrompter{}
	}

	// Keyring commands must work before any database is configured.
	if command != "keyring" {
		if err := openStore(appCtx, command); err != nil {
			derrors.Fatal(err)
		}
	}

	err = kctx.Run(appCtx)
	if appCtx.Store != nil {
		_ = appCtx.Store.Close()
	}
	logger.Close()
	derrors.Fatal(err)
}

// loadConfig layers flags and environment over the config file, then fills
// missing secrets from the OS keyring.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadFile(CLI.Config)
	if err != nil {
		return cfg, err
	}
	cfg.Apply(config.Config{
		ConfigDir:          filepath.Dir(utils.ExpandHome(CLI.Config)),
		DatabaseURL:        CLI.DatabaseURL,
		AdminEmail:         CLI.AdminEmail,
		GoogleClientID:     CLI.GoogleClientID,
		GoogleClientSecret: CLI.GoogleClientSecret,
		SessionSecret:      CLI.SessionSecret,
		Timezone:           CLI.Timezone,
		Debug:              CLI.Debug,
		Oracle: config.OracleConfig{
			Provider:     constants.OracleProvider(CLI.Oracle),
			OpenAIAPIKey: CLI.OpenAIAPIKey,
			GeminiAPIKey: CLI.GeminiAPIKey,
		},
	})
	cfg.FillSecrets(keyring.Lookup)
	return cfg, cfg.Validate()
}

func openStore(appCtx *cli.Context, command string) error {
	cfg := appCtx.Config
	store := storage.Open(cfg.DatabaseTarget())

	// Init creates the database itself.
	if command != "init" {
		if err := store.Load(); err != nil {
			return err
		}
	}

	completer, err := oracle.New(appCtx.Ctx(), cfg.OracleSettings())
	if err != nil {
		return fmt.Errorf("failed to set up classification oracle: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	appCtx.Store = store
	appCtx.Tracker = tracker.New(store, oracle.NewClassifier(completer), tracker.Options{
		AdminEmail: cfg.AdminEmail,
		Location:   loc,
	})
	return nil
}
