package constants

import "time"

const (
	AppName           = "daylog"
	Version           = "v0.3.0"
	DefaultConfigDir  = "~/.config/daylog"
	DefaultConfigFile = "config.yaml"
	DefaultDBName     = "daylog.db"
	DefaultListenAddr = "127.0.0.1:5000"
	DefaultCLIUser    = "local"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// GridDays is the number of days covered by the rolling activity grid, today included.
	GridDays = 365

	// FallbackLabel is returned by the classifier when the model reply cannot be resolved.
	FallbackLabel = "other"
	// DefaultEmoji is stored on a habit when emoji generation fails.
	DefaultEmoji = "✨"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "daylog-"
	BackupFileSuffix = ".db"

	// Server lockfile
	ServerLockfileName = "daylog-server.lock"

	// Session
	SessionCookieName = "daylog_session"
	StateCookieName   = "daylog_oauth_state"
	FlashCookieName   = "daylog_flash"
	SessionTTL        = 30 * 24 * time.Hour

	MaxRequestBodyBytes = 1 << 20
)

// DefaultCategories are seeded as habits for a user that has none.
var DefaultCategories = []string{"fitness", "reading", "housework", "drive", "cooking", FallbackLabel}
